package main

import (
	"context"
	"errors"
	"fmt"
	"image/png"
	"os"
	"time"

	"github.com/example/netsim_playback/core"
	"github.com/example/netsim_playback/hooks"
	"github.com/example/netsim_playback/playback"
	"github.com/example/netsim_playback/plugins/visualization"
	"github.com/example/netsim_playback/render"
	"github.com/example/netsim_playback/scenario"
	"github.com/example/netsim_playback/simulator"
	"github.com/example/netsim_playback/visual"
)

const metricsInterval = 5 * time.Second

// PlaybackState is the snapshot served by the state API.
type PlaybackState struct {
	Scenario   string                `json:"scenario"`
	Stats      playback.Stats        `json:"stats"`
	Progress   simulator.Progress    `json:"progress"`
	Frame      core.Frame            `json:"frame"`
	Topology   core.TopologySnapshot `json:"topology"`
	ShowLegend bool                  `json:"show_legend"`
	Metrics    MetricsSnapshot       `json:"metrics"`
}

// AppOptions adjust how the application runs.
type AppOptions struct {
	// Headless disables every viewer and pacing sleep.
	Headless bool
	// OutPath, when set, receives the final frame as a PNG.
	OutPath string
}

// App wires the playback engine, the renderer, the viewer and the replayed
// trace together.
type App struct {
	cfg  *Config
	opts AppOptions

	broker   *hooks.PluginBroker
	registry *hooks.Registry
	engine   *playback.Engine
	signal   *playback.TickSignal
	scenario *scenario.Scenario
	pipeline *render.Pipeline
	replayer *simulator.Replayer
	metrics  *metricsCollector
	commands CommandQueue

	viewer visual.Visualizer
	server *WebServer
	gui    *FyneVisualizer
}

// NewApp builds the application from a validated configuration.
func NewApp(cfg *Config, opts AppOptions) (*App, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if opts.Headless {
		cfg.Visual.Mode = VisualModeNone
	}
	level, _ := ParseLogLevel(cfg.Log.Level)
	logger := NewLogger(level, "PLAYBACK", cfg.Log.Format, os.Stdout)
	SetLogger(logger)

	sc, err := loadScenario(cfg.Scenario)
	if err != nil {
		return nil, err
	}

	a := &App{
		cfg:      cfg,
		opts:     opts,
		broker:   hooks.NewPluginBroker(),
		signal:   playback.NewTickSignal(0),
		scenario: sc,
		metrics:  newMetricsCollector(metricsInterval),
		commands: newCommandQueue(64),
	}
	a.registry = hooks.NewRegistry(a.broker)
	pacing := playback.NewPacing(cfg.Pacing.MsPerTick)
	a.engine = playback.NewEngine(playback.Options{
		Pacing:  pacing,
		Cadence: a.newCadence(pacing, logger),
		Broker:  a.broker,
		Signal:  a.signal,
		Logger:  logger.Field(),
	})
	a.pipeline = render.NewPipeline(a.engine, sc.Topology, render.Config{
		Width:        cfg.Render.Width,
		Height:       cfg.Render.Height,
		ShowLegend:   cfg.Render.ShowLegend,
		StalledTicks: cfg.Render.StalledTicks,
		FontSize:     cfg.Render.FontSize,
		Icons:        loadIcons(cfg.Render.IconDir),
		Broker:       a.broker,
		Logger:       logger.Field(),
	})
	a.metrics.Install(a.broker)

	if err := a.loadViewer(); err != nil {
		return nil, err
	}

	a.replayer = simulator.NewReplayer(a.engine, sc.Steps, simulator.ReplayerOptions{
		Topology: sc.Topology,
		Commands: a.viewer,
		Loop:     cfg.Scenario.Loop && !opts.Headless,
		Throttle: a.throttle,
		OnLegend: a.applyLegend,
		Logger:   logger.Field(),
	})
	return a, nil
}

func loadScenario(cfg ScenarioConfig) (*scenario.Scenario, error) {
	var (
		doc *scenario.Document
		err error
	)
	if cfg.Path != "" {
		doc, err = scenario.Load(cfg.Path)
	} else {
		doc, err = scenario.Builtin(cfg.Name)
	}
	if err != nil {
		return nil, err
	}
	return scenario.Build(doc)
}

func loadIcons(dir string) render.IconSet {
	procedural := render.NewProceduralIcons()
	if dir == "" {
		return procedural
	}
	themed, err := render.LoadIconDir(dir)
	if err != nil {
		GetLogger().Warnf("Icon directory %s not usable, using built-in icons: %v", dir, err)
		return procedural
	}
	GetLogger().Infof("Loaded %d icons from %s", themed.Len(), dir)
	return render.Layered{themed, procedural}
}

// newCadence picks the delivery cadence. Headless runs never sleep.
func (a *App) newCadence(pacing *playback.Pacing, logger *Logger) playback.Cadence {
	mode, _ := playback.ParseMode(a.cfg.Pacing.Mode)
	if a.opts.Headless || mode == playback.ModeBlocking {
		var sleeper playback.Sleeper
		if a.opts.Headless {
			sleeper = playback.SleeperFunc(func(time.Duration) {})
		}
		return playback.NewBlockingCadence(pacing, sleeper)
	}
	return playback.NewScheduledCadence(pacing, a.cfg.Pacing.Backlog, logger.Field())
}

func (a *App) loadViewer() error {
	factories := map[string]visualization.Factory{
		VisualModeNone: func() (visual.Visualizer, error) {
			return visual.NewNullVisualizer(), nil
		},
		VisualModeWeb: func() (visual.Visualizer, error) {
			a.server = NewWebServer(a.cfg.Visual.Listen, a.pipeline, a, a.commands)
			return NewWebVisualizer(a.server), nil
		},
		VisualModeGUI: func() (visual.Visualizer, error) {
			a.gui = NewFyneVisualizer(a.pipeline, a.commands)
			a.gui.Initialize(a.cfg.Render.Width, a.cfg.Render.Height, a.cfg.Pacing.MsPerTick, a.cfg.Render.ShowLegend)
			return a.gui, nil
		},
	}
	err := visualization.Register(a.registry, visualization.Options{
		Factories: factories,
		Use:       func(v visual.Visualizer) { a.viewer = v },
	})
	if err != nil {
		return fmt.Errorf("register viewers: %w", err)
	}
	if err := a.registry.Load(visualization.PluginName(a.cfg.Visual.Mode)); err != nil {
		return fmt.Errorf("load viewer: %w", err)
	}
	if a.viewer == nil {
		return errors.New("no viewer loaded")
	}
	return nil
}

// throttle keeps the producer from running ahead of a scheduled cadence by
// more than one frame.
func (a *App) throttle(ctx context.Context) {
	if a.engine.Stats().Mode != playback.ModeScheduled {
		return
	}
	for a.engine.Stats().Pending > 1 {
		timer := time.NewTimer(a.engine.Pacing().Interval() / 2)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// applyLegend toggles the legend and repaints the tick on display.
func (a *App) applyLegend(show bool) {
	a.pipeline.SetShowLegend(show)
	tick := a.engine.DisplayFrame().Tick
	if err := a.broker.EmitRepaint(&hooks.RepaintContext{Tick: tick, Reason: hooks.RepaintControl}); err != nil {
		GetLogger().Field().WithError(err).WithField("tick", tick).Warn("repaint hook failed")
	}
}

// State implements StateProvider.
func (a *App) State() PlaybackState {
	return PlaybackState{
		Scenario:   a.scenario.Name,
		Stats:      a.engine.Stats(),
		Progress:   a.replayer.Progress(),
		Frame:      a.engine.DisplayFrame(),
		Topology:   a.scenario.Topology.Snapshot(),
		ShowLegend: a.pipeline.ShowLegend(),
		Metrics:    a.metrics.Snapshot(),
	}
}

// GUI returns the desktop viewer, or nil in other modes. Its ShowAndRun must
// be called from the main goroutine.
func (a *App) GUI() *FyneVisualizer {
	return a.gui
}

// WriteFrame renders the displayed frame to path as a PNG.
func (a *App) WriteFrame(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create frame file: %w", err)
	}
	if err := png.Encode(f, a.pipeline.RenderFrame()); err != nil {
		f.Close()
		return fmt.Errorf("encode frame: %w", err)
	}
	return f.Close()
}

// lastTick is the tick of the final frame the trace produces.
func (a *App) lastTick() int64 {
	steps := a.scenario.Steps
	if len(steps) == 0 {
		return 0
	}
	return steps[len(steps)-1].Event.Tick()
}

// Run replays the trace. Headless runs return once the final frame was shown
// and written. Interactive runs keep serving until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if err := a.engine.Start(ctx); err != nil {
		return fmt.Errorf("start playback: %w", err)
	}
	defer a.engine.Stop()

	if a.server != nil {
		if err := a.server.Start(); err != nil {
			return err
		}
		GetLogger().Infof("Web viewer at http://%s/", a.server.Addr())
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			a.server.Shutdown(shutdownCtx)
		}()
	}
	GetLogger().Infof("Replaying scenario %s: %d events, mode %s, %d ms/tick",
		a.scenario.Name, len(a.scenario.Steps), a.engine.Stats().Mode, a.engine.Pacing().MsPerTick())

	err := a.replayer.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if err == nil {
		a.signal.WaitUntil(ctx, a.lastTick())
		if a.opts.OutPath != "" {
			if werr := a.WriteFrame(a.opts.OutPath); werr != nil {
				return werr
			}
			GetLogger().Infof("Final frame written to %s", a.opts.OutPath)
		}
	}
	stats := a.engine.Stats()
	GetLogger().Infof("Playback stats: ingested=%d late=%d rotations=%d presented=%d renders=%d",
		stats.Ingested, stats.Late, stats.Rotations, stats.Presented, a.pipeline.Rendered())

	if a.viewer.IsHeadless() || a.cfg.Visual.Mode == VisualModeNone {
		return nil
	}
	<-ctx.Done()
	return nil
}

// Close releases viewer resources.
func (a *App) Close() {
	if a.gui != nil {
		a.gui.Close()
	}
}
