package playback

import (
	"sync/atomic"
	"time"
)

const (
	MinMsPerTick     = 1
	MaxMsPerTick     = 500
	DefaultMsPerTick = 10
)

// ClampSpeed bounds a milliseconds-per-tick value to the supported range.
func ClampSpeed(ms int) int {
	if ms < MinMsPerTick {
		return MinMsPerTick
	}
	if ms > MaxMsPerTick {
		return MaxMsPerTick
	}
	return ms
}

// Pacing stores the delay applied once per rotation. The value is read at the
// moment of each rotation, so changes apply from the next one.
type Pacing struct {
	ms atomic.Int64
}

// NewPacing creates a controller; a non-positive value selects the default.
func NewPacing(ms int) *Pacing {
	p := &Pacing{}
	if ms <= 0 {
		ms = DefaultMsPerTick
	}
	p.SetSpeed(ms)
	return p
}

// SetSpeed stores ms clamped to [MinMsPerTick, MaxMsPerTick] and returns the
// stored value.
func (p *Pacing) SetSpeed(ms int) int {
	if p == nil {
		return 0
	}
	ms = ClampSpeed(ms)
	p.ms.Store(int64(ms))
	return ms
}

// MsPerTick returns the configured milliseconds per tick.
func (p *Pacing) MsPerTick() int {
	if p == nil {
		return DefaultMsPerTick
	}
	return int(p.ms.Load())
}

// Interval returns the configured delay as a duration.
func (p *Pacing) Interval() time.Duration {
	return time.Duration(p.MsPerTick()) * time.Millisecond
}
