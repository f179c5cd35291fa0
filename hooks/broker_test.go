package hooks

import (
	"errors"
	"testing"

	"github.com/example/netsim_playback/core"
)

func TestRotateHookSeesFrame(t *testing.T) {
	b := NewPluginBroker()
	var seen core.Frame
	var next int64

	b.RegisterRotate(func(ctx *RotateContext) error {
		seen = ctx.Frame
		next = ctx.NextTick
		return nil
	})

	frame := core.Frame{Tick: 3, Events: []core.Event{
		core.NewEvent(3, core.LspEstablished, core.NodeSource{NodeID: "A"}, nil),
	}}
	if err := b.EmitRotate(&RotateContext{Frame: frame, NextTick: 7}); err != nil {
		t.Fatalf("EmitRotate returned error: %v", err)
	}
	if seen.Tick != 3 || seen.Len() != 1 || next != 7 {
		t.Fatalf("unexpected rotate context frame=%+v next=%d", seen, next)
	}
}

func TestRepaintHookErrorStopsProcessing(t *testing.T) {
	b := NewPluginBroker()
	calls := 0

	b.RegisterRepaint(func(ctx *RepaintContext) error {
		calls++
		return errors.New("hook fail")
	})
	b.RegisterRepaint(func(ctx *RepaintContext) error {
		calls++
		return nil
	})

	err := b.EmitRepaint(&RepaintContext{Tick: 5, Reason: RepaintRotation})
	if err == nil {
		t.Fatalf("expected error from repaint hook")
	}
	if calls != 1 {
		t.Fatalf("expected only first hook to run, calls=%d", calls)
	}
}

func TestBundleRegistersEveryStage(t *testing.T) {
	b := NewPluginBroker()
	order := make([]string, 0, 5)
	record := func(name string) func() error {
		return func() error {
			order = append(order, name)
			return nil
		}
	}
	rotate, repaint, reset, fault, rendered := record("rotate"), record("repaint"), record("reset"), record("fault"), record("rendered")

	desc := PluginDescriptor{Name: "recorder", Category: PluginCategoryInstrumentation}
	b.RegisterBundle(desc, HookBundle{
		Rotate:        []RotateHook{func(*RotateContext) error { return rotate() }},
		Repaint:       []RepaintHook{func(*RepaintContext) error { return repaint() }},
		Reset:         []ResetHook{func(*ResetContext) error { return reset() }},
		RenderFault:   []RenderFaultHook{func(*RenderFaultContext) error { return fault() }},
		FrameRendered: []FrameRenderedHook{func(*FrameRenderedContext) error { return rendered() }},
	})

	_ = b.EmitRotate(&RotateContext{})
	_ = b.EmitRepaint(&RepaintContext{})
	_ = b.EmitReset(&ResetContext{})
	_ = b.EmitRenderFault(&RenderFaultContext{Err: errors.New("bad marker")})
	_ = b.EmitFrameRendered(&FrameRenderedContext{})

	want := []string{"rotate", "repaint", "reset", "fault", "rendered"}
	if len(order) != len(want) {
		t.Fatalf("unexpected hook order: %v", order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("unexpected hook order: %v", order)
		}
	}
	if plugins := b.ListPlugins(PluginCategoryInstrumentation); len(plugins) != 1 || plugins[0].Name != "recorder" {
		t.Fatalf("expected recorder descriptor, got %+v", plugins)
	}
}

func TestNilContextIsIgnored(t *testing.T) {
	b := NewPluginBroker()
	called := false
	b.RegisterReset(func(ctx *ResetContext) error {
		called = true
		return nil
	})
	if err := b.EmitReset(nil); err != nil {
		t.Fatalf("EmitReset(nil) returned error: %v", err)
	}
	var nilBroker *PluginBroker
	if err := nilBroker.EmitRepaint(&RepaintContext{}); err != nil {
		t.Fatalf("nil broker returned error: %v", err)
	}
	if called {
		t.Fatalf("hook should not run for nil context")
	}
}
