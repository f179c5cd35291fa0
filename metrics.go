package main

import (
	"sync"
	"time"

	"github.com/example/netsim_playback/hooks"
)

// MetricsSnapshot is the cumulative view reported by the state API.
type MetricsSnapshot struct {
	Rotations    uint64        `json:"rotations"`
	Repaints     uint64        `json:"repaints"`
	Resets       uint64        `json:"resets"`
	Renders      uint64        `json:"renders"`
	RenderFaults uint64        `json:"render_faults"`
	LastRender   time.Duration `json:"last_render_ns"`
}

type metricsCollector struct {
	mu             sync.Mutex
	interval       time.Duration
	now            func() time.Time
	total          MetricsSnapshot
	windowRotates  int
	windowRenders  int
	lastReportTime time.Time
}

func newMetricsCollector(interval time.Duration) *metricsCollector {
	return &metricsCollector{
		interval:       interval,
		now:            time.Now,
		lastReportTime: time.Now(),
	}
}

// Install registers the collector on the playback hooks.
func (m *metricsCollector) Install(broker *hooks.PluginBroker) {
	if m == nil || broker == nil {
		return
	}
	broker.RegisterBundle(hooks.PluginDescriptor{
		Name:        "instrumentation/metrics",
		Category:    hooks.PluginCategoryInstrumentation,
		Description: "playback throughput counters",
	}, hooks.HookBundle{
		Rotate: []hooks.RotateHook{func(*hooks.RotateContext) error {
			m.record(func() {
				m.total.Rotations++
				m.windowRotates++
			})
			return nil
		}},
		Repaint: []hooks.RepaintHook{func(*hooks.RepaintContext) error {
			m.record(func() { m.total.Repaints++ })
			return nil
		}},
		Reset: []hooks.ResetHook{func(*hooks.ResetContext) error {
			m.record(func() { m.total.Resets++ })
			return nil
		}},
		RenderFault: []hooks.RenderFaultHook{func(*hooks.RenderFaultContext) error {
			m.record(func() { m.total.RenderFaults++ })
			return nil
		}},
		FrameRendered: []hooks.FrameRenderedHook{func(ctx *hooks.FrameRenderedContext) error {
			m.record(func() {
				m.total.Renders++
				m.total.LastRender = ctx.Duration
				m.windowRenders++
			})
			return nil
		}},
	})
}

func (m *metricsCollector) record(update func()) {
	m.mu.Lock()
	update()
	m.emitIfNeeded()
	m.mu.Unlock()
}

// Snapshot returns the cumulative counters.
func (m *metricsCollector) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.total
}

func (m *metricsCollector) emitIfNeeded() {
	now := m.now()
	if now.Sub(m.lastReportTime) < m.interval {
		return
	}
	duration := now.Sub(m.lastReportTime).Seconds()
	rotations := float64(m.windowRotates)
	renders := float64(m.windowRenders)
	if duration > 0 {
		rotations /= duration
		renders /= duration
	}
	GetLogger().Infof("Throughput %.1f ticks/s, %.1f frames/s, render faults %d", rotations, renders, m.total.RenderFaults)
	m.windowRotates = 0
	m.windowRenders = 0
	m.lastReportTime = now
}
