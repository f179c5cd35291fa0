package main

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"image"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/example/netsim_playback/visual"
)

//go:embed web/index.html
var indexHTML []byte

// FrameRenderer produces the raster frame currently on display.
type FrameRenderer interface {
	RenderFrame() *image.RGBA
}

// StateProvider reports playback state for the state API.
type StateProvider interface {
	State() PlaybackState
}

// WebServer provides HTTP endpoints for visualization and control.
type WebServer struct {
	mu       sync.Mutex
	addr     string
	renderer FrameRenderer
	state    StateProvider
	commands CommandQueue
	hub      *wsHub
	server   *http.Server
	listener net.Listener
}

// NewWebServer creates a web server instance. Call Start to listen.
func NewWebServer(addr string, renderer FrameRenderer, state StateProvider, commands CommandQueue) *WebServer {
	if commands == nil {
		commands = newCommandQueue(16)
	}
	ws := &WebServer{
		addr:     addr,
		renderer: renderer,
		state:    state,
		commands: commands,
		hub:      newHub(),
	}
	ws.server = &http.Server{
		Addr:              addr,
		Handler:           NewRouter(ws),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return ws
}

func (ws *WebServer) registerHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/", ws.handleIndex)
	mux.HandleFunc("/api/frame.png", ws.handleFramePNG)
	mux.HandleFunc("/api/state", ws.handleState)
	mux.HandleFunc("/api/control", ws.handleControl)
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		ws.hub.handle(ws, w, r)
	})
}

// Start listens on the configured address and serves in a goroutine.
func (ws *WebServer) Start() error {
	ln, err := net.Listen("tcp", ws.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", ws.addr, err)
	}
	ws.mu.Lock()
	ws.listener = ln
	ws.mu.Unlock()
	go func() {
		if err := ws.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			GetLogger().Errorf("web server stopped: %v", err)
		}
	}()
	GetLogger().Infof("Web server started at http://%s", ln.Addr())
	return nil
}

// Addr returns the bound address, or the configured one before Start.
func (ws *WebServer) Addr() string {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if ws.listener != nil {
		return ws.listener.Addr().String()
	}
	return ws.addr
}

// Shutdown stops the HTTP server and closes websocket clients.
func (ws *WebServer) Shutdown(ctx context.Context) error {
	ws.hub.stop()
	return ws.server.Shutdown(ctx)
}

// NotifyRepaint tells connected browsers to fetch a new frame.
func (ws *WebServer) NotifyRepaint(tick int64) {
	ws.hub.broadcastRepaint(tick)
}

// queueCommand enqueues without blocking.
func (ws *WebServer) queueCommand(cmd visual.ControlCommand) bool {
	return ws.commands.Enqueue(cmd)
}

// Commands exposes the queue the replayer reads from.
func (ws *WebServer) Commands() CommandQueue {
	return ws.commands
}

func (ws *WebServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}
