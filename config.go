package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/example/netsim_playback/playback"
	"github.com/example/netsim_playback/render"
)

// Visual modes.
const (
	VisualModeWeb  = "web"
	VisualModeGUI  = "gui"
	VisualModeNone = "none"
)

const (
	DefaultListenAddr = "127.0.0.1:8080"
	DefaultScenario   = "two_domains"
)

// Config is the process configuration loaded from YAML.
type Config struct {
	Log      LogConfig      `yaml:"log" json:"log"`
	Pacing   PacingConfig   `yaml:"pacing" json:"pacing"`
	Render   RenderConfig   `yaml:"render" json:"render"`
	Visual   VisualConfig   `yaml:"visual" json:"visual"`
	Scenario ScenarioConfig `yaml:"scenario" json:"scenario"`
}

// LogConfig selects log verbosity and output format.
type LogConfig struct {
	Level  string `yaml:"level" json:"level" jsonschema:"enum=debug,enum=info,enum=warn,enum=error"`
	Format string `yaml:"format" json:"format" jsonschema:"enum=text,enum=json"`
}

// PacingConfig controls playback speed and delivery cadence.
type PacingConfig struct {
	MsPerTick int    `yaml:"ms_per_tick" json:"ms_per_tick" jsonschema:"minimum=1,maximum=500"`
	Mode      string `yaml:"mode" json:"mode" jsonschema:"enum=blocking,enum=scheduled"`
	// Backlog bounds the frames a scheduled cadence keeps queued.
	Backlog int `yaml:"backlog" json:"backlog" jsonschema:"minimum=1"`
}

// RenderConfig configures the raster pipeline.
type RenderConfig struct {
	Width        int     `yaml:"width" json:"width" jsonschema:"minimum=1"`
	Height       int     `yaml:"height" json:"height" jsonschema:"minimum=1"`
	ShowLegend   bool    `yaml:"show_legend" json:"show_legend"`
	StalledTicks int64   `yaml:"stalled_ticks" json:"stalled_ticks" jsonschema:"minimum=1"`
	FontSize     float64 `yaml:"font_size" json:"font_size" jsonschema:"minimum=4"`
	IconDir      string  `yaml:"icon_dir,omitempty" json:"icon_dir,omitempty"`
}

// VisualConfig selects the viewer.
type VisualConfig struct {
	Mode   string `yaml:"mode" json:"mode" jsonschema:"enum=web,enum=gui,enum=none"`
	Listen string `yaml:"listen" json:"listen"`
}

// ScenarioConfig names the trace to replay: a built-in name or a file path.
type ScenarioConfig struct {
	Name string `yaml:"name,omitempty" json:"name,omitempty"`
	Path string `yaml:"path,omitempty" json:"path,omitempty"`
	Loop bool   `yaml:"loop" json:"loop"`
}

// DefaultConfig returns the configuration used without a config file.
func DefaultConfig() *Config {
	return &Config{
		Log:    LogConfig{Level: "info", Format: "text"},
		Pacing: PacingConfig{MsPerTick: playback.DefaultMsPerTick, Mode: string(playback.ModeBlocking), Backlog: playback.DefaultBacklog},
		Render: RenderConfig{
			Width:        render.DefaultWidth,
			Height:       render.DefaultHeight,
			StalledTicks: render.DefaultStalledTicks,
			FontSize:     render.DefaultFontSize,
		},
		Visual:   VisualConfig{Mode: VisualModeWeb, Listen: DefaultListenAddr},
		Scenario: ScenarioConfig{Name: DefaultScenario},
	}
}

// LoadConfig reads path over the defaults and validates the result.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}
