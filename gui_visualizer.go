package main

import (
	"context"
	"fmt"
	"image"
	"sync/atomic"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/example/netsim_playback/playback"
	"github.com/example/netsim_playback/visual"
)

// FyneVisualizer implements visual.Visualizer with a desktop window. The
// raster pulls frames from the renderer whenever fyne repaints it.
type FyneVisualizer struct {
	app      fyne.App
	window   fyne.Window
	renderer FrameRenderer
	commands CommandQueue
	headless atomic.Bool
	paused   atomic.Bool

	raster      *canvas.Raster
	tickLabel   *widget.Label
	pauseButton *widget.Button
	speedLabel  *widget.Label
}

// NewFyneVisualizer creates the viewer. Initialize builds the window.
func NewFyneVisualizer(renderer FrameRenderer, commands CommandQueue) *FyneVisualizer {
	if commands == nil {
		commands = newCommandQueue(16)
	}
	return &FyneVisualizer{renderer: renderer, commands: commands}
}

// Initialize initializes the GUI window (only called in non-headless mode)
func (v *FyneVisualizer) Initialize(width, height, msPerTick int, showLegend bool) {
	if v.IsHeadless() {
		return
	}
	v.app = app.New()
	v.window = v.app.NewWindow("MPLS Playback")
	v.window.Resize(fyne.NewSize(float32(width), float32(height)+48))

	v.raster = canvas.NewRaster(func(w, h int) image.Image {
		return v.renderer.RenderFrame()
	})
	v.raster.ScaleMode = canvas.ImageScalePixels
	v.tickLabel = widget.NewLabel("0 ns")

	v.pauseButton = widget.NewButton("Pause", func() {
		if v.paused.Load() {
			v.send(visual.ControlCommand{Type: visual.CommandResume})
			v.paused.Store(false)
			v.pauseButton.SetText("Pause")
			return
		}
		v.send(visual.ControlCommand{Type: visual.CommandPause})
		v.paused.Store(true)
		v.pauseButton.SetText("Resume")
	})
	stepButton := widget.NewButton("Step", func() {
		v.paused.Store(true)
		v.pauseButton.SetText("Resume")
		v.send(visual.ControlCommand{Type: visual.CommandStep})
	})
	resetButton := widget.NewButton("Reset", func() {
		v.send(visual.ControlCommand{Type: visual.CommandReset})
	})

	v.speedLabel = widget.NewLabel(speedText(msPerTick))
	speed := widget.NewSlider(playback.MinMsPerTick, playback.MaxMsPerTick)
	speed.SetValue(float64(msPerTick))
	speed.OnChangeEnded = func(value float64) {
		ms := playback.ClampSpeed(int(value))
		v.speedLabel.SetText(speedText(ms))
		v.send(visual.ControlCommand{Type: visual.CommandSpeed, MsPerTick: ms})
	}
	legend := widget.NewCheck("Legend", func(show bool) {
		v.send(visual.ControlCommand{Type: visual.CommandLegend, ShowLegend: show})
	})
	legend.SetChecked(showLegend)

	controls := container.NewHBox(
		v.tickLabel,
		widget.NewSeparator(),
		v.pauseButton,
		stepButton,
		resetButton,
		widget.NewSeparator(),
		v.speedLabel,
		container.NewGridWrap(fyne.NewSize(180, speed.MinSize().Height), speed),
		legend,
	)
	v.window.SetContent(container.NewBorder(controls, nil, nil, nil, v.raster))
}

func speedText(ms int) string {
	return fmt.Sprintf("%d ms/tick", ms)
}

func (v *FyneVisualizer) send(cmd visual.ControlCommand) {
	if !v.commands.Enqueue(cmd) {
		GetLogger().Warnf("GUI command %s dropped: queue full", cmd.Type)
	}
}

// RequestRepaint schedules a raster refresh on the fyne thread.
func (v *FyneVisualizer) RequestRepaint(tick int64) {
	if v.IsHeadless() || v.raster == nil {
		return
	}
	fyne.Do(func() {
		v.tickLabel.SetText(fmt.Sprintf("%d ns", tick))
		v.raster.Refresh()
	})
}

// SetHeadless sets headless mode
func (v *FyneVisualizer) SetHeadless(headless bool) {
	v.headless.Store(headless)
}

// IsHeadless returns whether visualizer is in headless mode
func (v *FyneVisualizer) IsHeadless() bool {
	return v.headless.Load()
}

// NextCommand returns the next queued control command.
func (v *FyneVisualizer) NextCommand() (visual.ControlCommand, bool) {
	return v.commands.NextCommand()
}

// WaitCommand blocks until a control is used or ctx ends.
func (v *FyneVisualizer) WaitCommand(ctx context.Context) (visual.ControlCommand, bool) {
	return v.commands.WaitCommand(ctx)
}

// ShowAndRun shows the window and runs the application (blocks)
func (v *FyneVisualizer) ShowAndRun() {
	if v.IsHeadless() || v.window == nil {
		return
	}
	v.window.ShowAndRun()
}

// Close closes the window
func (v *FyneVisualizer) Close() {
	if v.IsHeadless() || v.window == nil {
		return
	}
	fyne.Do(v.window.Close)
}
