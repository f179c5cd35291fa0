package main

import (
	"errors"

	"github.com/example/netsim_playback/playback"
	"github.com/example/netsim_playback/render"
)

type validationError struct {
	msg string
}

func (e *validationError) Error() string {
	return e.msg
}

func invalid(msg string) error {
	return &validationError{msg: msg}
}

// ValidateConfig applies structural checks to Config and populates defaults where required.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}

	if _, err := ParseLogLevel(cfg.Log.Level); err != nil {
		return invalid(err.Error())
	}
	switch cfg.Log.Format {
	case "":
		cfg.Log.Format = "text"
	case "text", "json":
	default:
		return invalid("log.format must be text or json, got " + cfg.Log.Format)
	}

	if _, err := playback.ParseMode(cfg.Pacing.Mode); err != nil {
		return invalid(err.Error())
	}
	if cfg.Pacing.Mode == "" {
		cfg.Pacing.Mode = string(playback.ModeBlocking)
	}
	if cfg.Pacing.MsPerTick <= 0 {
		cfg.Pacing.MsPerTick = playback.DefaultMsPerTick
	}
	cfg.Pacing.MsPerTick = playback.ClampSpeed(cfg.Pacing.MsPerTick)
	if cfg.Pacing.Backlog < 0 {
		return invalid("pacing.backlog must be non-negative")
	}
	if cfg.Pacing.Backlog == 0 {
		cfg.Pacing.Backlog = playback.DefaultBacklog
	}

	if cfg.Render.Width < 0 || cfg.Render.Height < 0 {
		return invalid("render.width and render.height must be non-negative")
	}
	if cfg.Render.Width == 0 {
		cfg.Render.Width = render.DefaultWidth
	}
	if cfg.Render.Height == 0 {
		cfg.Render.Height = render.DefaultHeight
	}
	if cfg.Render.StalledTicks <= 0 {
		cfg.Render.StalledTicks = render.DefaultStalledTicks
	}
	if cfg.Render.FontSize <= 0 {
		cfg.Render.FontSize = render.DefaultFontSize
	}

	switch cfg.Visual.Mode {
	case "":
		cfg.Visual.Mode = VisualModeWeb
	case VisualModeWeb, VisualModeGUI, VisualModeNone:
	default:
		return invalid("visual.mode must be web, gui or none, got " + cfg.Visual.Mode)
	}
	if cfg.Visual.Listen == "" {
		cfg.Visual.Listen = DefaultListenAddr
	}

	if cfg.Scenario.Name == "" && cfg.Scenario.Path == "" {
		cfg.Scenario.Name = DefaultScenario
	}
	return nil
}
