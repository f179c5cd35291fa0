package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/example/netsim_playback/playback"
	"github.com/example/netsim_playback/render"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := ValidateConfig(cfg); err != nil {
		t.Fatalf("default config rejected: %v", err)
	}
	if cfg.Pacing.MsPerTick != playback.DefaultMsPerTick {
		t.Errorf("expected %d ms/tick, got %d", playback.DefaultMsPerTick, cfg.Pacing.MsPerTick)
	}
	if cfg.Visual.Mode != VisualModeWeb || cfg.Scenario.Name != DefaultScenario {
		t.Errorf("unexpected defaults %+v", cfg)
	}
}

func TestValidateConfigFillsAndClamps(t *testing.T) {
	cfg := &Config{Pacing: PacingConfig{MsPerTick: 9000}}
	if err := ValidateConfig(cfg); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if cfg.Pacing.MsPerTick != playback.MaxMsPerTick {
		t.Errorf("expected speed clamped to %d, got %d", playback.MaxMsPerTick, cfg.Pacing.MsPerTick)
	}
	if cfg.Pacing.Mode != string(playback.ModeBlocking) || cfg.Pacing.Backlog != playback.DefaultBacklog {
		t.Errorf("pacing defaults not applied: %+v", cfg.Pacing)
	}
	if cfg.Render.Width != render.DefaultWidth || cfg.Render.StalledTicks != render.DefaultStalledTicks {
		t.Errorf("render defaults not applied: %+v", cfg.Render)
	}
	if cfg.Log.Format != "text" || cfg.Visual.Listen != DefaultListenAddr {
		t.Errorf("log/visual defaults not applied: %+v %+v", cfg.Log, cfg.Visual)
	}
}

func TestValidateConfigRejectsBadValues(t *testing.T) {
	cases := map[string]func(*Config){
		"log level":   func(c *Config) { c.Log.Level = "loud" },
		"log format":  func(c *Config) { c.Log.Format = "xml" },
		"pacing mode": func(c *Config) { c.Pacing.Mode = "eventually" },
		"backlog":     func(c *Config) { c.Pacing.Backlog = -1 },
		"width":       func(c *Config) { c.Render.Width = -5 },
		"visual mode": func(c *Config) { c.Visual.Mode = "tty" },
	}
	for name, mutate := range cases {
		cfg := DefaultConfig()
		mutate(cfg)
		err := ValidateConfig(cfg)
		var verr *validationError
		if !errors.As(err, &verr) {
			t.Errorf("%s: expected validation error, got %v", name, err)
		}
	}
	if err := ValidateConfig(nil); err == nil {
		t.Errorf("nil config accepted")
	}
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "playback.yaml")
	data := []byte(`
pacing:
  ms_per_tick: 40
  mode: scheduled
render:
  show_legend: true
visual:
  mode: none
scenario:
  name: link_failure
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Pacing.MsPerTick != 40 || cfg.Pacing.Mode != "scheduled" {
		t.Errorf("pacing not loaded: %+v", cfg.Pacing)
	}
	if !cfg.Render.ShowLegend || cfg.Render.Width != render.DefaultWidth {
		t.Errorf("render not merged over defaults: %+v", cfg.Render)
	}
	if cfg.Visual.Mode != VisualModeNone || cfg.Scenario.Name != "link_failure" {
		t.Errorf("unexpected visual/scenario: %+v %+v", cfg.Visual, cfg.Scenario)
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Errorf("missing file accepted")
	}
}

func TestConfigSchemaDescribesSections(t *testing.T) {
	data, err := ConfigSchema()
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	var schema struct {
		Title      string                     `json:"title"`
		Properties map[string]json.RawMessage `json:"properties"`
	}
	if err := json.Unmarshal(data, &schema); err != nil {
		t.Fatalf("decode schema: %v", err)
	}
	for _, section := range []string{"log", "pacing", "render", "visual", "scenario"} {
		if _, ok := schema.Properties[section]; !ok {
			t.Errorf("schema lacks %q section", section)
		}
	}
	if schema.Title == "" {
		t.Errorf("schema has no title")
	}
}
