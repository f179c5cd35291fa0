package simulator

import (
	"context"
	"testing"
	"time"

	"github.com/example/netsim_playback/core"
	"github.com/example/netsim_playback/hooks"
	"github.com/example/netsim_playback/playback"
	"github.com/example/netsim_playback/visual"
)

type chanSource struct {
	ch chan visual.ControlCommand
}

func newChanSource() *chanSource {
	return &chanSource{ch: make(chan visual.ControlCommand, 16)}
}

func (c *chanSource) NextCommand() (visual.ControlCommand, bool) {
	select {
	case cmd := <-c.ch:
		return cmd, true
	default:
		return visual.ControlCommand{}, false
	}
}

func (c *chanSource) WaitCommand(ctx context.Context) (visual.ControlCommand, bool) {
	select {
	case cmd := <-c.ch:
		return cmd, true
	case <-ctx.Done():
		return visual.ControlCommand{}, false
	}
}

func newReplayFixture(t *testing.T) (*playback.Engine, *core.StaticTopology) {
	t.Helper()
	topo := core.NewStaticTopology()
	for _, n := range []core.NodeView{
		{ID: "G", Kind: core.NodeTrafficGenerator, Position: core.Pt(0, 0)},
		{ID: "E1", Kind: core.NodeLER, Position: core.Pt(100, 0)},
		{ID: "E2", Kind: core.NodeLER, Position: core.Pt(200, 0)},
	} {
		if err := topo.AddNode(n); err != nil {
			t.Fatalf("add node: %v", err)
		}
	}
	for _, l := range []core.LinkView{
		{ID: "GE1", HeadID: "G", TailID: "E1", Kind: core.LinkExternal},
		{ID: "E1E2", HeadID: "E1", TailID: "E2"},
	} {
		if err := topo.AddLink(l); err != nil {
			t.Fatalf("add link: %v", err)
		}
	}
	pacing := playback.NewPacing(1)
	engine := playback.NewEngine(playback.Options{
		Pacing:  pacing,
		Cadence: playback.NewBlockingCadence(pacing, playback.SleeperFunc(func(time.Duration) {})),
	})
	return engine, topo
}

func traceSteps(t *testing.T, topo *core.StaticTopology) []TraceStep {
	t.Helper()
	g, _ := topo.NodeSource("G")
	e1, _ := topo.NodeSource("E1")
	link, _ := topo.LinkSource("E1E2")
	return []TraceStep{
		{Event: core.NewEvent(0, core.PacketGenerated, g, core.PacketPayload{Kind: core.PacketIPv4})},
		{Event: core.NewEvent(1, core.LspEstablished, e1, nil), Path: []string{"E1E2"}},
		{Event: core.NewEvent(2, core.NodeCongested, e1, core.CongestionPayload{Level: 80})},
		{Event: core.NewEvent(3, core.LinkBroken, link, nil)},
		{Event: core.NewEvent(3, core.PacketDiscarded, e1, core.PacketPayload{Kind: core.PacketMPLS})},
	}
}

func TestReplayerAppliesTopologyEffects(t *testing.T) {
	engine, topo := newReplayFixture(t)
	r := NewReplayer(engine, traceSteps(t, topo), ReplayerOptions{Topology: topo})

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	snap := topo.Snapshot()
	if snap.Nodes[1].CongestionLevel != 80 {
		t.Fatalf("expected congestion 80, got %d", snap.Nodes[1].CongestionLevel)
	}
	if !snap.Links[1].Primary || !snap.Links[1].Broken {
		t.Fatalf("expected primary broken link, got %+v", snap.Links[1])
	}
	if snap.Nodes[0].TicksWithoutEmitting != 3 {
		t.Fatalf("expected generator idle for 3 ticks, got %d", snap.Nodes[0].TicksWithoutEmitting)
	}
	display := engine.DisplayFrame()
	if display.Tick != 3 || display.Len() != 2 {
		t.Fatalf("expected the final tick flushed to the display, got %+v", display)
	}
	progress := r.Progress()
	if !progress.Done || progress.Index != progress.Total || progress.Passes != 1 {
		t.Fatalf("unexpected progress %+v", progress)
	}
}

func TestReplayerPauseStepResume(t *testing.T) {
	engine, topo := newReplayFixture(t)
	source := newChanSource()
	r := NewReplayer(engine, traceSteps(t, topo), ReplayerOptions{Topology: topo, Commands: source})
	source.ch <- visual.ControlCommand{Type: visual.CommandPause}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	waitFor(t, func() bool { return r.Progress().Paused })
	if got := r.Progress().Index; got != 0 {
		t.Fatalf("paused replayer advanced to %d", got)
	}

	source.ch <- visual.ControlCommand{Type: visual.CommandStep}
	// The first step runs until an event rotates: tick 0 then tick 1.
	waitFor(t, func() bool { return r.Progress().Index == 2 })
	time.Sleep(20 * time.Millisecond)
	if got := r.Progress().Index; got != 2 {
		t.Fatalf("step ran past one rotation, index=%d", got)
	}
	if display := engine.DisplayFrame(); display.Tick != 0 || display.Len() != 1 {
		t.Fatalf("unexpected display after step %+v", display)
	}

	source.ch <- visual.ControlCommand{Type: visual.CommandResume}
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-ctx.Done():
		t.Fatalf("replayer did not finish after resume")
	}
}

func TestReplayerControlCommands(t *testing.T) {
	engine, topo := newReplayFixture(t)
	legend := false
	r := NewReplayer(engine, traceSteps(t, topo), ReplayerOptions{
		Topology: topo,
		OnLegend: func(show bool) { legend = show },
	})

	r.HandleCommand(visual.ControlCommand{Type: visual.CommandSpeed, MsPerTick: 900})
	if engine.Pacing().MsPerTick() != playback.MaxMsPerTick {
		t.Fatalf("expected clamped speed, got %d", engine.Pacing().MsPerTick())
	}
	r.HandleCommand(visual.ControlCommand{Type: visual.CommandLegend, ShowLegend: true})
	if !legend {
		t.Fatalf("legend toggle not applied")
	}

	engine.AddEvent(core.NewEvent(4, core.LinkBroken, core.LinkSource{LinkID: "E1E2"}, nil))
	_ = topo.SetCongestion("E1", 90)
	r.HandleCommand(visual.ControlCommand{Type: visual.CommandReset})
	if engine.CurrentTick() != 0 || engine.DisplayFrame().Len() != 0 {
		t.Fatalf("reset command did not reset the engine")
	}
	if topo.Snapshot().Nodes[1].CongestionLevel != 0 {
		t.Fatalf("reset command did not reset the topology")
	}
}

func TestRepaintBridgeHonorsHeadless(t *testing.T) {
	broker := hooks.NewPluginBroker()
	var ticks []int64
	bridge := NewRepaintBridge(true, func(tick int64) { ticks = append(ticks, tick) })
	bridge.Install(broker)

	_ = broker.EmitRepaint(&hooks.RepaintContext{Tick: 1})
	bridge.SetHeadless(false)
	_ = broker.EmitRepaint(&hooks.RepaintContext{Tick: 2})

	if len(ticks) != 1 || ticks[0] != 2 || bridge.Sent() != 1 {
		t.Fatalf("unexpected forwarded ticks %v sent=%d", ticks, bridge.Sent())
	}
}

func TestControlLoopSkipsPlaceholders(t *testing.T) {
	source := newChanSource()
	source.ch <- visual.ControlCommand{Type: visual.CommandPause}
	source.ch <- visual.ControlCommand{Type: visual.CommandNone}
	source.ch <- visual.ControlCommand{Type: visual.CommandResume}
	var seen []visual.ControlCommandType
	loop := NewControlLoop(source, func(cmd visual.ControlCommand) {
		seen = append(seen, cmd.Type)
	})
	if n := loop.Drain(); n != 2 {
		t.Fatalf("expected 2 applied commands, got %d", n)
	}
	if len(seen) != 2 || seen[0] != visual.CommandPause || seen[1] != visual.CommandResume || loop.Applied() != 2 {
		t.Fatalf("unexpected commands %v applied=%d", seen, loop.Applied())
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if loop.Wait(ctx) {
		t.Fatalf("wait on a cancelled context applied a command")
	}
	var idle *ControlLoop
	if idle.Drain() != 0 || idle.Wait(ctx) || idle.Applied() != 0 {
		t.Fatalf("nil loop must be inert")
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("condition not met before deadline")
}
