package playback

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/example/netsim_playback/core"
	"github.com/example/netsim_playback/queue"
)

// Mode selects how rotated frames reach the display.
type Mode string

const (
	// ModeBlocking presents each frame during the rotation and sleeps the
	// pacing interval in the producer's goroutine.
	ModeBlocking Mode = "blocking"
	// ModeScheduled queues frames and presents one per pacing interval from
	// a ticker goroutine; AddEvent never blocks.
	ModeScheduled Mode = "scheduled"
)

// DefaultBacklog bounds the frames a scheduled cadence keeps queued.
const DefaultBacklog = 4096

// ParseMode validates a mode name. The empty string selects ModeBlocking.
func ParseMode(name string) (Mode, error) {
	switch Mode(name) {
	case "", ModeBlocking:
		return ModeBlocking, nil
	case ModeScheduled:
		return ModeScheduled, nil
	default:
		return "", fmt.Errorf("unknown pacing mode %q", name)
	}
}

// Sleeper pauses the calling goroutine.
type Sleeper interface {
	Sleep(d time.Duration)
}

// SleeperFunc adapts a function into a Sleeper.
type SleeperFunc func(time.Duration)

// Sleep calls the underlying function.
func (f SleeperFunc) Sleep(d time.Duration) {
	if f == nil {
		return
	}
	f(d)
}

// RealSleeper sleeps on the wall clock.
var RealSleeper Sleeper = SleeperFunc(time.Sleep)

// delivery is a rotated frame stamped with the reset generation it belongs to.
type delivery struct {
	frame      core.Frame
	generation uint64
}

// presenter is implemented by Engine.
type presenter interface {
	publish(d delivery) bool
	requestRepaint(tick int64)
}

// Cadence decides when rotated frames are shown.
type Cadence interface {
	Mode() Mode
	// Pending reports frames rotated but not yet shown.
	Pending() int
	deliver(d delivery, p presenter)
	reset()
}

// BlockingCadence requests a repaint and sleeps one pacing interval in the
// producer. The engine has already installed the frame.
type BlockingCadence struct {
	pacing  *Pacing
	sleeper Sleeper
}

// NewBlockingCadence creates a blocking cadence. A nil sleeper uses RealSleeper.
func NewBlockingCadence(pacing *Pacing, sleeper Sleeper) *BlockingCadence {
	if sleeper == nil {
		sleeper = RealSleeper
	}
	return &BlockingCadence{pacing: pacing, sleeper: sleeper}
}

// Mode implements Cadence.
func (c *BlockingCadence) Mode() Mode { return ModeBlocking }

// Pending implements Cadence.
func (c *BlockingCadence) Pending() int { return 0 }

func (c *BlockingCadence) deliver(d delivery, p presenter) {
	p.requestRepaint(d.frame.Tick)
	c.sleeper.Sleep(c.pacing.Interval())
}

func (c *BlockingCadence) reset() {}

// ScheduledCadence queues rotated frames in a bounded backlog and presents one
// per pacing interval. When the backlog is full the oldest frame is dropped.
type ScheduledCadence struct {
	pacing *Pacing
	logger logrus.FieldLogger

	mu      sync.Mutex
	backlog *queue.Backlog[delivery]
	target  presenter
	dropped uint64

	wake    chan struct{}
	cancel  context.CancelFunc
	stopped chan struct{}
}

// NewScheduledCadence creates a scheduled cadence. A non-positive capacity
// selects DefaultBacklog.
func NewScheduledCadence(pacing *Pacing, capacity int, logger logrus.FieldLogger) *ScheduledCadence {
	if capacity <= 0 {
		capacity = DefaultBacklog
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	c := &ScheduledCadence{
		pacing: pacing,
		logger: logger,
		wake:   make(chan struct{}, 1),
	}
	c.backlog = queue.NewBacklog("frames", capacity, nil, queue.BacklogHooks[delivery]{
		OnDrop: func(d delivery) {
			c.dropped++
			c.logger.WithField("tick", d.frame.Tick).Warn("frame backlog full, dropping oldest frame")
		},
	})
	return c
}

// Mode implements Cadence.
func (c *ScheduledCadence) Mode() Mode { return ModeScheduled }

// Pending implements Cadence.
func (c *ScheduledCadence) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.backlog.Len()
}

// Dropped returns how many frames were evicted from a full backlog.
func (c *ScheduledCadence) Dropped() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dropped
}

// Start launches the presentation loop. It returns an error if already running.
func (c *ScheduledCadence) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		return errors.New("scheduled cadence already running")
	}
	loopCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.stopped = make(chan struct{})
	go c.loop(loopCtx, c.stopped)
	return nil
}

// Stop cancels the presentation loop and waits for it to exit.
func (c *ScheduledCadence) Stop() {
	c.mu.Lock()
	cancel, stopped := c.cancel, c.stopped
	c.cancel, c.stopped = nil, nil
	c.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-stopped
}

func (c *ScheduledCadence) deliver(d delivery, p presenter) {
	c.mu.Lock()
	c.target = p
	c.backlog.Push(d)
	c.mu.Unlock()
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

func (c *ScheduledCadence) reset() {
	c.mu.Lock()
	n := c.backlog.Clear()
	c.mu.Unlock()
	if n > 0 {
		c.logger.WithField("frames", n).Debug("discarded queued frames on reset")
	}
}

func (c *ScheduledCadence) next() (delivery, presenter, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.backlog.PopFront()
	return d, c.target, ok
}

func (c *ScheduledCadence) loop(ctx context.Context, stopped chan struct{}) {
	defer close(stopped)
	timer := time.NewTimer(0)
	defer timer.Stop()
	<-timer.C

	for {
		d, p, ok := c.next()
		if !ok {
			select {
			case <-ctx.Done():
				return
			case <-c.wake:
				continue
			}
		}
		c.present(d, p)
		timer.Reset(c.pacing.Interval())
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
	}
}

func (c *ScheduledCadence) present(d delivery, p presenter) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.WithField("tick", d.frame.Tick).Errorf("panic while presenting frame: %v", r)
		}
	}()
	if p.publish(d) {
		p.requestRepaint(d.frame.Tick)
	}
}
