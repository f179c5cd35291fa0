package main

import (
	"context"
	"testing"
	"time"

	"github.com/example/netsim_playback/visual"
)

func TestCommandQueueOrderAndCapacity(t *testing.T) {
	q := newCommandQueue(2)
	if !q.Enqueue(visual.ControlCommand{Type: visual.CommandPause}) {
		t.Fatalf("first enqueue failed")
	}
	if !q.Enqueue(visual.ControlCommand{Type: visual.CommandStep}) {
		t.Fatalf("second enqueue failed")
	}
	if q.Enqueue(visual.ControlCommand{Type: visual.CommandReset}) {
		t.Fatalf("enqueue beyond capacity succeeded")
	}
	if q.Len() != 2 {
		t.Fatalf("expected len 2, got %d", q.Len())
	}
	for _, want := range []visual.ControlCommandType{visual.CommandPause, visual.CommandStep} {
		cmd, ok := q.NextCommand()
		if !ok || cmd.Type != want {
			t.Fatalf("expected %s, got %+v ok=%v", want, cmd, ok)
		}
	}
	if cmd, ok := q.NextCommand(); ok || cmd.Type != visual.CommandNone {
		t.Fatalf("expected empty queue, got %+v", cmd)
	}
}

func TestCommandQueueWaitHonoursContext(t *testing.T) {
	q := newCommandQueue(1)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, ok := q.WaitCommand(ctx); ok {
		t.Fatalf("wait on empty queue returned a command")
	}

	go func() {
		time.Sleep(5 * time.Millisecond)
		q.Enqueue(visual.ControlCommand{Type: visual.CommandResume})
	}()
	cmd, ok := q.WaitCommand(context.Background())
	if !ok || cmd.Type != visual.CommandResume {
		t.Fatalf("expected resume, got %+v ok=%v", cmd, ok)
	}
}

func TestCommandQueueKeepsLatestSpeedAndLegend(t *testing.T) {
	q := newCommandQueue(2)
	for ms := 10; ms <= 400; ms += 10 {
		if !q.Enqueue(visual.ControlCommand{Type: visual.CommandSpeed, MsPerTick: ms}) {
			t.Fatalf("speed %d rejected although it supersedes the queued one", ms)
		}
	}
	if q.Len() != 1 {
		t.Fatalf("expected slider drag to hold one slot, got %d", q.Len())
	}
	q.Enqueue(visual.ControlCommand{Type: visual.CommandLegend, ShowLegend: true})
	if !q.Enqueue(visual.ControlCommand{Type: visual.CommandLegend, ShowLegend: false}) {
		t.Fatalf("legend toggle rejected at capacity")
	}
	if q.Enqueue(visual.ControlCommand{Type: visual.CommandSpeed, MsPerTick: 5}) {
		t.Fatalf("speed behind a legend command must take a new slot")
	}

	speed, _ := q.NextCommand()
	legend, _ := q.NextCommand()
	if speed.Type != visual.CommandSpeed || speed.MsPerTick != 400 {
		t.Fatalf("expected final speed 400, got %+v", speed)
	}
	if legend.Type != visual.CommandLegend || legend.ShowLegend {
		t.Fatalf("expected latest legend state, got %+v", legend)
	}
}

func TestCommandQueueDoesNotMergeDiscreteCommands(t *testing.T) {
	q := newCommandQueue(3)
	for i := 0; i < 3; i++ {
		if !q.Enqueue(visual.ControlCommand{Type: visual.CommandStep}) {
			t.Fatalf("step %d rejected", i)
		}
	}
	if q.Len() != 3 {
		t.Fatalf("each step must be kept, got %d", q.Len())
	}
}
