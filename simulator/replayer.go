package simulator

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/example/netsim_playback/core"
	"github.com/example/netsim_playback/visual"
)

// Ingestor is the playback surface the replayer drives.
type Ingestor interface {
	AddEvent(ev core.Event)
	Flush()
	Reset()
	CurrentTick() int64
	SetSimulationSpeedInMsPerTick(ms int) int
}

// TopologyEffects receives the state changes an event implies for the
// rendered topology.
type TopologyEffects interface {
	Advance(tick int64)
	NoteEmission(nodeID string, tick int64)
	SetCongestion(nodeID string, level int) error
	SetBroken(linkID string, broken bool) error
	SetPrimary(linkID string, primary bool) error
	SetBackup(linkID string, backup bool) error
	ResetState()
}

// TraceStep is one event of a recorded trace together with the reserved path
// an LspEstablished event sets up.
type TraceStep struct {
	Event  core.Event
	Path   []string
	Backup bool
}

// ReplayerOptions configure a Replayer.
type ReplayerOptions struct {
	Topology TopologyEffects
	Commands ControlSource
	// Loop restarts the trace from the beginning after each pass.
	Loop bool
	// Throttle, when set, is called before each event. Scheduled pacing uses
	// it to keep the producer from flooding the frame backlog.
	Throttle func(ctx context.Context)
	// OnLegend applies legend toggles from the control channel.
	OnLegend func(show bool)
	Logger   logrus.FieldLogger
}

// Progress is a snapshot of replay state.
type Progress struct {
	Index  int  `json:"index"`
	Total  int  `json:"total"`
	Passes int  `json:"passes"`
	Paused bool `json:"paused"`
	Done   bool `json:"done"`
}

// Replayer feeds a recorded trace into the playback engine in order, standing
// in for a live simulation engine. Control commands are handled between
// events.
type Replayer struct {
	engine  Ingestor
	steps   []TraceStep
	opts    ReplayerOptions
	logger  logrus.FieldLogger
	control *ControlLoop
	wake    chan struct{}

	mu       sync.Mutex
	index    int
	passes   int
	paused   bool
	stepping bool
	restart  bool
	done     bool
}

// NewReplayer creates a replayer for steps.
func NewReplayer(engine Ingestor, steps []TraceStep, opts ReplayerOptions) *Replayer {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	r := &Replayer{
		engine: engine,
		steps:  steps,
		opts:   opts,
		logger: logger.WithField("component", "replayer"),
		wake:   make(chan struct{}, 1),
	}
	r.control = NewControlLoop(opts.Commands, func(cmd visual.ControlCommand) { r.HandleCommand(cmd) })
	return r
}

// HandleCommand applies one control command. It always lets the loop continue.
func (r *Replayer) HandleCommand(cmd visual.ControlCommand) bool {
	defer func() {
		select {
		case r.wake <- struct{}{}:
		default:
		}
	}()
	switch cmd.Type {
	case visual.CommandPause:
		r.setPaused(true)
	case visual.CommandResume:
		r.mu.Lock()
		r.paused = false
		r.stepping = false
		r.mu.Unlock()
	case visual.CommandStep:
		r.mu.Lock()
		r.paused = true
		r.stepping = true
		r.mu.Unlock()
	case visual.CommandReset:
		r.resetPlayback()
		r.mu.Lock()
		r.restart = true
		r.done = false
		r.mu.Unlock()
	case visual.CommandSpeed:
		stored := r.engine.SetSimulationSpeedInMsPerTick(cmd.MsPerTick)
		r.logger.WithField("ms_per_tick", stored).Info("playback speed changed")
	case visual.CommandLegend:
		if r.opts.OnLegend != nil {
			r.opts.OnLegend(cmd.ShowLegend)
		}
	case visual.CommandNone:
	default:
		r.logger.WithField("command", cmd.Type).Warn("ignoring unknown control command")
	}
	return true
}

// Run replays the trace until it ends (or forever when looping) or ctx is
// cancelled.
func (r *Replayer) Run(ctx context.Context) error {
	for {
		if err := r.runPass(ctx); err != nil {
			return err
		}
		r.mu.Lock()
		r.passes++
		restart := r.restart
		r.restart = false
		r.mu.Unlock()
		if restart {
			continue
		}
		if !r.opts.Loop {
			r.mu.Lock()
			r.done = true
			r.mu.Unlock()
			r.logger.WithField("events", len(r.steps)).Info("trace replay finished")
			return nil
		}
		r.resetPlayback()
	}
}

func (r *Replayer) runPass(ctx context.Context) error {
	r.setIndex(0)
	for i := 0; i < len(r.steps); {
		if err := r.waitWhilePaused(ctx); err != nil {
			return err
		}
		if r.takeRestart() {
			r.setIndex(0)
			i = 0
			continue
		}
		if r.opts.Throttle != nil {
			r.opts.Throttle(ctx)
		}
		step := r.steps[i]
		rotates := step.Event.Tick() > r.engine.CurrentTick()
		r.apply(step)
		r.engine.AddEvent(step.Event)
		i++
		r.setIndex(i)
		if rotates {
			r.finishStep()
		}
	}
	r.engine.Flush()
	return ctx.Err()
}

func (r *Replayer) waitWhilePaused(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.control.Drain()
		r.mu.Lock()
		blocked := r.paused && !r.stepping && !r.restart
		r.mu.Unlock()
		if !blocked {
			return nil
		}
		if r.opts.Commands == nil {
			select {
			case <-ctx.Done():
			case <-r.wake:
			}
			continue
		}
		r.control.Wait(ctx)
	}
}

// finishStep ends a single step once it produced a rotation.
func (r *Replayer) finishStep() {
	r.mu.Lock()
	r.stepping = false
	r.mu.Unlock()
}

func (r *Replayer) takeRestart() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	restart := r.restart
	r.restart = false
	return restart
}

func (r *Replayer) apply(step TraceStep) {
	topo := r.opts.Topology
	if topo == nil {
		return
	}
	ev := step.Event
	topo.Advance(ev.Tick())
	var err error
	switch src := ev.Source().(type) {
	case core.NodeSource:
		switch ev.Subtype() {
		case core.PacketGenerated:
			topo.NoteEmission(src.NodeID, ev.Tick())
		case core.NodeCongested:
			if payload, ok := ev.Payload().(core.CongestionPayload); ok {
				err = topo.SetCongestion(src.NodeID, payload.Level)
			}
		case core.LspEstablished:
			for _, linkID := range step.Path {
				if step.Backup {
					err = topo.SetBackup(linkID, true)
				} else {
					err = topo.SetPrimary(linkID, true)
				}
				if err != nil {
					break
				}
			}
		}
	case core.LinkSource:
		switch ev.Subtype() {
		case core.LinkBroken:
			err = topo.SetBroken(src.LinkID, true)
		case core.LinkRecovered:
			err = topo.SetBroken(src.LinkID, false)
		}
	}
	if err != nil {
		r.logger.WithError(err).WithFields(logrus.Fields{
			"tick":    ev.Tick(),
			"subtype": ev.Subtype(),
		}).Warn("topology effect not applied")
	}
}

func (r *Replayer) resetPlayback() {
	r.engine.Reset()
	if r.opts.Topology != nil {
		r.opts.Topology.ResetState()
	}
}

func (r *Replayer) setPaused(paused bool) {
	r.mu.Lock()
	r.paused = paused
	r.mu.Unlock()
}

func (r *Replayer) setIndex(i int) {
	r.mu.Lock()
	r.index = i
	r.mu.Unlock()
}

// Progress returns the replay position.
func (r *Replayer) Progress() Progress {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Progress{
		Index:  r.index,
		Total:  len(r.steps),
		Passes: r.passes,
		Paused: r.paused,
		Done:   r.done,
	}
}
