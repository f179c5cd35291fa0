package main

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/example/netsim_playback/hooks"
	"github.com/example/netsim_playback/playback"
	"github.com/example/netsim_playback/scenario"
)

func TestHeadlessRunWritesFinalFrame(t *testing.T) {
	out := filepath.Join(t.TempDir(), "final.png")
	cfg := DefaultConfig()
	cfg.Render.ShowLegend = true
	cfg.Log.Level = "warn"

	app, err := NewApp(cfg, AppOptions{Headless: true, OutPath: out})
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	if app.server != nil || app.gui != nil {
		t.Fatalf("headless app started a viewer")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	state := app.State()
	if !state.Progress.Done || state.Progress.Index != state.Progress.Total {
		t.Fatalf("replay not finished: %+v", state.Progress)
	}
	if state.Stats.DisplayTick != app.lastTick() {
		t.Fatalf("expected final tick %d on display, got %d", app.lastTick(), state.Stats.DisplayTick)
	}
	if state.Metrics.Rotations == 0 || state.Metrics.Repaints == 0 {
		t.Fatalf("metrics not collected: %+v", state.Metrics)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if img.Bounds().Dx() < cfg.Render.Width || img.Bounds().Dy() < cfg.Render.Height {
		t.Fatalf("frame smaller than configured canvas: %v", img.Bounds())
	}
}

func TestScheduledRunPresentsEveryTick(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Log.Level = "warn"
	cfg.Visual.Mode = VisualModeNone
	cfg.Pacing.Mode = string(playback.ModeScheduled)
	cfg.Pacing.MsPerTick = playback.MinMsPerTick
	cfg.Scenario.Name = "link_failure"

	app, err := NewApp(cfg, AppOptions{})
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	stats := app.engine.Stats()
	if stats.Mode != playback.ModeScheduled {
		t.Fatalf("expected scheduled mode, got %s", stats.Mode)
	}
	if stats.DisplayTick != app.lastTick() {
		t.Fatalf("expected final tick %d, got %d", app.lastTick(), stats.DisplayTick)
	}
	if stats.Presented != stats.Rotations {
		t.Fatalf("throttled producer lost frames: presented %d of %d", stats.Presented, stats.Rotations)
	}
}

func TestNewAppRejectsUnknownScenario(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Scenario.Name = "nowhere"
	if _, err := NewApp(cfg, AppOptions{Headless: true}); !errors.Is(err, scenario.ErrUnknownScenario) {
		t.Fatalf("expected unknown scenario error, got %v", err)
	}
}

func TestNewAppLoadsScenarioFile(t *testing.T) {
	doc, err := scenario.Builtin("link_failure")
	if err != nil {
		t.Fatalf("builtin: %v", err)
	}
	doc.Name = "from_file"
	data, err := scenario.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	path := filepath.Join(t.TempDir(), "trace.yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg := DefaultConfig()
	cfg.Scenario.Path = path
	app, err := NewApp(cfg, AppOptions{Headless: true})
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	if got := app.State().Scenario; got != "from_file" {
		t.Fatalf("expected scenario from_file, got %q", got)
	}
}

func TestLegendToggleReportsRepaintHookErrors(t *testing.T) {
	cfg := DefaultConfig()
	app, err := NewApp(cfg, AppOptions{Headless: true})
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	var logs bytes.Buffer
	previous := GetLogger()
	SetLogger(NewLogger(LogLevelWarn, "PLAYBACK", "text", &logs))
	defer SetLogger(previous)

	var reasons []hooks.RepaintReason
	app.broker.RegisterRepaint(func(ctx *hooks.RepaintContext) error {
		reasons = append(reasons, ctx.Reason)
		return errors.New("viewer gone")
	})

	app.applyLegend(true)
	if !app.pipeline.ShowLegend() {
		t.Fatalf("legend not enabled")
	}
	if len(reasons) == 0 || reasons[len(reasons)-1] != hooks.RepaintControl {
		t.Fatalf("expected a control repaint, got %v", reasons)
	}
	if !strings.Contains(logs.String(), "repaint hook failed") || !strings.Contains(logs.String(), "viewer gone") {
		t.Fatalf("repaint hook error not logged: %q", logs.String())
	}
}
