package main

import (
	"bytes"
	"encoding/json"
	"image/png"
	"net/http"
	"strconv"
)

var frameEncoder = png.Encoder{CompressionLevel: png.BestSpeed}

func (ws *WebServer) handleFramePNG(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if ws.renderer == nil {
		http.Error(w, "No frame available", http.StatusNotFound)
		return
	}
	img := ws.renderer.RenderFrame()
	if img == nil {
		http.Error(w, "No frame available", http.StatusNotFound)
		return
	}
	var buf bytes.Buffer
	if err := frameEncoder.Encode(&buf, img); err != nil {
		GetLogger().Errorf("Failed to encode frame: %v", err)
		http.Error(w, "Failed to encode frame", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Write(buf.Bytes())
}

func (ws *WebServer) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if ws.state == nil {
		http.Error(w, "No state available", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(ws.state.State()); err != nil {
		http.Error(w, "Failed to encode state", http.StatusInternalServerError)
	}
}
