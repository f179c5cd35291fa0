package visualization

import (
	"context"
	"errors"
	"testing"

	"github.com/example/netsim_playback/hooks"
	"github.com/example/netsim_playback/visual"
)

type countingViewer struct {
	visual.NullVisualizer
	repaints []int64
}

func (c *countingViewer) RequestRepaint(tick int64) {
	c.repaints = append(c.repaints, tick)
}

func (c *countingViewer) WaitCommand(ctx context.Context) (visual.ControlCommand, bool) {
	return visual.ControlCommand{Type: visual.CommandNone}, false
}

func TestRegisterLoadsViewerAndRoutesRepaints(t *testing.T) {
	reg := hooks.NewRegistry(nil)
	viewer := &countingViewer{}
	var used visual.Visualizer
	err := Register(reg, Options{
		Factories: map[string]Factory{
			"web":  func() (visual.Visualizer, error) { return viewer, nil },
			"none": func() (visual.Visualizer, error) { return visual.NewNullVisualizer(), nil },
		},
		Use: func(v visual.Visualizer) { used = v },
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if got := reg.Names(); len(got) != 2 || got[0] != PluginName("none") || got[1] != PluginName("web") {
		t.Fatalf("unexpected plugin names %v", got)
	}
	if len(reg.Broker().ListPlugins(hooks.PluginCategoryVisualization)) != 2 {
		t.Fatalf("expected metadata for both viewers")
	}

	if err := reg.Load(PluginName("web")); err != nil {
		t.Fatalf("load: %v", err)
	}
	if used != viewer {
		t.Fatalf("loaded viewer not handed over")
	}
	if err := reg.Broker().EmitRepaint(&hooks.RepaintContext{Tick: 9, Reason: hooks.RepaintRotation}); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if len(viewer.repaints) != 1 || viewer.repaints[0] != 9 {
		t.Fatalf("expected one repaint for tick 9, got %v", viewer.repaints)
	}
}

func TestRegisterPropagatesFactoryErrors(t *testing.T) {
	reg := hooks.NewRegistry(nil)
	boom := errors.New("no display")
	err := Register(reg, Options{
		Factories: map[string]Factory{"gui": func() (visual.Visualizer, error) { return nil, boom }},
		Use:       func(visual.Visualizer) {},
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := reg.Load(PluginName("gui")); !errors.Is(err, boom) {
		t.Fatalf("expected factory error, got %v", err)
	}
	if err := Register(reg, Options{}); err == nil {
		t.Fatalf("expected error without Use callback")
	}
}
