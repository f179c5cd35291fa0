package main

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/example/netsim_playback/playback"
	"github.com/example/netsim_playback/visual"
)

type controlRequest struct {
	Type       string `json:"type"`
	MsPerTick  int    `json:"ms_per_tick,omitempty"`
	ShowLegend *bool  `json:"show_legend,omitempty"`
}

func (ws *WebServer) processControlRequest(req *controlRequest) (*visual.ControlCommand, error) {
	kind, ok := visual.ParseCommandType(req.Type)
	if !ok {
		return nil, invalid("invalid command type: " + req.Type)
	}
	cmd := &visual.ControlCommand{Type: kind}
	switch kind {
	case visual.CommandSpeed:
		if req.MsPerTick < playback.MinMsPerTick || req.MsPerTick > playback.MaxMsPerTick {
			return nil, invalid("ms_per_tick must be within [1,500]")
		}
		cmd.MsPerTick = req.MsPerTick
	case visual.CommandLegend:
		if req.ShowLegend == nil {
			return nil, invalid("show_legend is required")
		}
		cmd.ShowLegend = *req.ShowLegend
	}
	return cmd, nil
}

func (ws *WebServer) handleControl(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	bodyBytes, err := io.ReadAll(io.LimitReader(r.Body, 4096))
	if err != nil {
		GetLogger().Debugf("Error reading request body: %v", err)
		http.Error(w, "Error reading request body", http.StatusBadRequest)
		return
	}
	GetLogger().Debugf("Received /api/control request: Body=%s", string(bodyBytes))

	var req controlRequest
	if err := json.Unmarshal(bodyBytes, &req); err != nil {
		GetLogger().Debugf("Error decoding JSON: %v", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	cmd, err := ws.processControlRequest(&req)
	if err != nil {
		GetLogger().Debugf("Error processing control request: %v", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if !ws.queueCommand(*cmd) {
		GetLogger().Debugf("Command queue full, cannot accept command")
		http.Error(w, "Command queue full", http.StatusServiceUnavailable)
		return
	}

	GetLogger().Debugf("Command queued successfully: Type=%s", cmd.Type)
	w.WriteHeader(http.StatusAccepted)
	w.Write([]byte("Command accepted"))
}
