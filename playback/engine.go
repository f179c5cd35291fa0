package playback

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/example/netsim_playback/core"
	"github.com/example/netsim_playback/hooks"
)

// Options configure an Engine. Zero values select defaults.
type Options struct {
	Pacing  *Pacing
	Cadence Cadence
	Broker  *hooks.PluginBroker
	Signal  *TickSignal
	Logger  logrus.FieldLogger
}

// Stats is a point-in-time view of engine state.
type Stats struct {
	Mode         Mode  `json:"mode"`
	CurrentTick  int64 `json:"current_tick"`
	DisplayTick  int64 `json:"display_tick"`
	DisplaySize  int   `json:"display_size"`
	IncomingSize int   `json:"incoming_size"`
	Pending      int   `json:"pending_frames"`
	MsPerTick    int   `json:"ms_per_tick"`

	Ingested  uint64 `json:"ingested"`
	Late      uint64 `json:"late"`
	Rotations uint64 `json:"rotations"`
	Presented uint64 `json:"presented"`
	Resets    uint64 `json:"resets"`
}

// Engine ingests simulation events, groups them by tick and rotates the open
// bucket into the display slot whenever a later tick arrives.
//
// mu guards every field below it. It is never held while pacing or while
// hooks run, and no method holding it calls another method that takes it.
type Engine struct {
	pacing  *Pacing
	cadence Cadence
	broker  *hooks.PluginBroker
	signal  *TickSignal
	logger  logrus.FieldLogger

	mu          sync.Mutex
	incoming    *Buffer
	display     core.Frame
	currentTick int64
	generation  uint64

	ingested  uint64
	late      uint64
	rotations uint64
	presented uint64
	resets    uint64
}

// NewEngine creates an engine with empty buffers and currentTick 0.
func NewEngine(opts Options) *Engine {
	if opts.Pacing == nil {
		opts.Pacing = NewPacing(DefaultMsPerTick)
	}
	if opts.Cadence == nil {
		opts.Cadence = NewBlockingCadence(opts.Pacing, nil)
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	return &Engine{
		pacing:   opts.Pacing,
		cadence:  opts.Cadence,
		broker:   opts.Broker,
		signal:   opts.Signal,
		logger:   opts.Logger.WithField("component", "playback"),
		incoming: NewBuffer(),
	}
}

// Start runs the cadence presentation loop when the cadence needs one.
func (e *Engine) Start(ctx context.Context) error {
	if s, ok := e.cadence.(*ScheduledCadence); ok {
		return s.Start(ctx)
	}
	return nil
}

// Stop halts the cadence presentation loop, if any.
func (e *Engine) Stop() {
	if s, ok := e.cadence.(*ScheduledCadence); ok {
		s.Stop()
	}
}

// AddEvent ingests one event. Events with tick <= currentTick join the open
// bucket. A later tick first rotates the open bucket into the display slot,
// hands the frame to the cadence, and then opens a new bucket holding ev.
func (e *Engine) AddEvent(ev core.Event) {
	if e == nil {
		return
	}
	if e.appendIfCurrent(ev) {
		return
	}

	e.rotateAndDeliver(func(int64) int64 { return ev.Tick() })

	e.mu.Lock()
	defer e.mu.Unlock()
	e.incoming.Insert(ev)
	e.ingested++
}

func (e *Engine) appendIfCurrent(ev core.Event) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if ev.Tick() > e.currentTick {
		return false
	}
	if ev.Tick() < e.currentTick {
		e.late++
		e.logger.WithFields(logrus.Fields{
			"tick":    ev.Tick(),
			"current": e.currentTick,
			"subtype": ev.Subtype(),
		}).Debug("late event joined the open bucket")
	}
	e.incoming.Insert(ev)
	e.ingested++
	return true
}

// Flush rotates the open bucket into the display without opening a later
// tick. Producers call it after the last event of a trace so the final tick
// is shown; currentTick is left unchanged.
func (e *Engine) Flush() {
	if e == nil {
		return
	}
	e.rotateAndDeliver(func(current int64) int64 { return current })
}

func (e *Engine) rotateAndDeliver(nextTick func(current int64) int64) {
	d, next := e.rotate(nextTick)
	if err := e.broker.EmitRotate(&hooks.RotateContext{Frame: d.frame, NextTick: next}); err != nil {
		e.logger.WithError(err).WithField("tick", d.frame.Tick).Warn("rotate hook failed")
	}
	e.cadence.deliver(d, e)
}

// rotate builds the frame for the open bucket and advances currentTick.
func (e *Engine) rotate(nextTick func(current int64) int64) (delivery, int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	frame := core.Frame{Tick: e.currentTick, Events: e.incoming.Drain()}
	next := nextTick(e.currentTick)
	e.currentTick = next
	e.rotations++
	d := delivery{frame: frame, generation: e.generation}
	if e.cadence.Mode() == ModeBlocking {
		e.installLocked(frame)
	}
	return d, next
}

func (e *Engine) installLocked(frame core.Frame) {
	e.display = frame
	e.presented++
}

func (e *Engine) publish(d delivery) bool {
	e.mu.Lock()
	if d.generation != e.generation {
		e.mu.Unlock()
		return false
	}
	e.installLocked(d.frame)
	e.mu.Unlock()
	return true
}

func (e *Engine) requestRepaint(tick int64) {
	e.signal.Update(tick)
	if err := e.broker.EmitRepaint(&hooks.RepaintContext{Tick: tick, Reason: hooks.RepaintRotation}); err != nil {
		e.logger.WithError(err).WithField("tick", tick).Warn("repaint hook failed")
	}
}

// Reset clears both buffers and sets currentTick to 0. Frames queued by a
// scheduled cadence are discarded. One repaint is requested so viewers show
// the cleared state.
func (e *Engine) Reset() {
	if e == nil {
		return
	}
	e.mu.Lock()
	ctx := &hooks.ResetContext{
		DiscardedDisplay:  e.display.Len(),
		DiscardedIncoming: e.incoming.Clear(),
	}
	e.display = core.Frame{}
	e.currentTick = 0
	e.generation++
	e.resets++
	e.mu.Unlock()

	e.cadence.reset()
	e.signal.Reset(0)
	if err := e.broker.EmitReset(ctx); err != nil {
		e.logger.WithError(err).Warn("reset hook failed")
	}
	if err := e.broker.EmitRepaint(&hooks.RepaintContext{Tick: 0, Reason: hooks.RepaintReset}); err != nil {
		e.logger.WithError(err).Warn("repaint hook failed")
	}
}

// DisplayFrame returns the frame currently shown. The frame is immutable, so
// callers may read it without further locking.
func (e *Engine) DisplayFrame() core.Frame {
	if e == nil {
		return core.Frame{}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.display
}

// CurrentTick returns the tick of the open bucket.
func (e *Engine) CurrentTick() int64 {
	if e == nil {
		return 0
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.currentTick
}

// IncomingEvents returns a copy of the open bucket in storage order.
func (e *Engine) IncomingEvents() []core.Event {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.incoming.Events()
}

// SetSimulationSpeedInMsPerTick changes the pacing delay. The new value
// applies from the next rotation. It returns the clamped value.
func (e *Engine) SetSimulationSpeedInMsPerTick(ms int) int {
	if e == nil {
		return 0
	}
	stored := e.pacing.SetSpeed(ms)
	e.logger.WithField("ms_per_tick", stored).Debug("pacing updated")
	return stored
}

// Pacing returns the engine's pacing controller.
func (e *Engine) Pacing() *Pacing {
	if e == nil {
		return nil
	}
	return e.pacing
}

// Stats returns counters and buffer sizes.
func (e *Engine) Stats() Stats {
	if e == nil {
		return Stats{}
	}
	pending := e.cadence.Pending()
	e.mu.Lock()
	defer e.mu.Unlock()
	return Stats{
		Mode:         e.cadence.Mode(),
		CurrentTick:  e.currentTick,
		DisplayTick:  e.display.Tick,
		DisplaySize:  e.display.Len(),
		IncomingSize: e.incoming.Len(),
		Pending:      pending,
		MsPerTick:    e.pacing.MsPerTick(),
		Ingested:     e.ingested,
		Late:         e.late,
		Rotations:    e.rotations,
		Presented:    e.presented,
		Resets:       e.resets,
	}
}
