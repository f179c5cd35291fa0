package main

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// wsMessage is pushed to browsers. Frames are fetched separately from
// /api/frame.png; the socket only carries notifications.
type wsMessage struct {
	Type    string `json:"type"`
	Session string `json:"session,omitempty"`
	Tick    int64  `json:"tick"`
}

type wsClient struct {
	id   string
	conn *websocket.Conn
}

type wsHub struct {
	upgrader  websocket.Upgrader
	clients   map[*wsClient]bool
	register  chan *wsClient
	remove    chan *wsClient
	broadcast chan []byte
	done      chan struct{}
	stopOnce  sync.Once
}

func newHub() *wsHub {
	hub := &wsHub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients:   make(map[*wsClient]bool),
		register:  make(chan *wsClient),
		remove:    make(chan *wsClient),
		broadcast: make(chan []byte, 16),
		done:      make(chan struct{}),
	}
	go hub.run()
	return hub
}

func (h *wsHub) run() {
	for {
		select {
		case <-h.done:
			for client := range h.clients {
				client.conn.Close()
			}
			return
		case client := <-h.register:
			h.clients[client] = true
		case client := <-h.remove:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.conn.Close()
			}
		case msg := <-h.broadcast:
			for client := range h.clients {
				if err := client.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
					GetLogger().Warnf("Failed to notify WebSocket client %s: %v", client.id, err)
					delete(h.clients, client)
					client.conn.Close()
				}
			}
		}
	}
}

func (h *wsHub) stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

func (h *wsHub) handle(ws *WebServer, w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		GetLogger().Errorf("WebSocket upgrade failed: %v", err)
		return
	}
	client := &wsClient{id: uuid.NewString(), conn: conn}

	hello := wsMessage{Type: "hello", Session: client.id}
	if ws.state != nil {
		hello.Tick = ws.state.State().Frame.Tick
	}
	if data, err := json.Marshal(hello); err == nil {
		conn.WriteMessage(websocket.TextMessage, data)
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}
	GetLogger().Debugf("WebSocket client %s connected", client.id)

	go func() {
		defer func() {
			select {
			case h.remove <- client:
			case <-h.done:
			}
		}()
		for {
			_, message, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					GetLogger().Warnf("WebSocket error: %v", err)
				}
				break
			}

			var req controlRequest
			if err := json.Unmarshal(message, &req); err == nil {
				if cmd, err := ws.processControlRequest(&req); err == nil {
					ws.queueCommand(*cmd)
				} else {
					GetLogger().Debugf("WebSocket client %s sent bad command: %v", client.id, err)
				}
			}
		}
	}()
}

// broadcastRepaint drops the notification when the hub is saturated.
func (h *wsHub) broadcastRepaint(tick int64) {
	data, err := json.Marshal(wsMessage{Type: "repaint", Tick: tick})
	if err != nil {
		GetLogger().Errorf("Failed to marshal repaint for WebSocket: %v", err)
		return
	}
	select {
	case h.broadcast <- data:
	default:
	}
}
