package main

import (
	"testing"
	"time"

	"github.com/example/netsim_playback/hooks"
)

func TestMetricsCollectorCountsHooks(t *testing.T) {
	broker := hooks.NewPluginBroker()
	m := newMetricsCollector(time.Hour)
	m.Install(broker)

	broker.EmitRotate(&hooks.RotateContext{NextTick: 3})
	broker.EmitRotate(&hooks.RotateContext{NextTick: 4})
	broker.EmitRepaint(&hooks.RepaintContext{Tick: 3, Reason: hooks.RepaintRotation})
	broker.EmitReset(&hooks.ResetContext{})
	broker.EmitRenderFault(&hooks.RenderFaultContext{Pass: "markers"})
	broker.EmitFrameRendered(&hooks.FrameRenderedContext{Tick: 3, Duration: 2 * time.Millisecond})

	got := m.Snapshot()
	want := MetricsSnapshot{Rotations: 2, Repaints: 1, Resets: 1, Renders: 1, RenderFaults: 1, LastRender: 2 * time.Millisecond}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
	if len(broker.ListPlugins(hooks.PluginCategoryInstrumentation)) != 1 {
		t.Fatalf("metrics plugin not listed")
	}
}

func TestMetricsCollectorReportsPerInterval(t *testing.T) {
	m := newMetricsCollector(time.Second)
	start := time.Unix(1000, 0)
	now := start
	m.now = func() time.Time { return now }
	m.lastReportTime = start

	m.record(func() { m.windowRotates++ })
	if m.windowRotates != 1 {
		t.Fatalf("window reset before the interval elapsed")
	}
	now = start.Add(2 * time.Second)
	m.record(func() { m.windowRotates++ })
	if m.windowRotates != 0 || !m.lastReportTime.Equal(now) {
		t.Fatalf("window not reset after report: %d %v", m.windowRotates, m.lastReportTime)
	}
}
