package render

import (
	"errors"
	"fmt"
	"image"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/example/netsim_playback/core"
	"github.com/example/netsim_playback/hooks"
)

// Defaults for Config fields left zero.
const (
	DefaultWidth        = 1024
	DefaultHeight       = 480
	DefaultStalledTicks = 1000

	canvasMargin = 48
)

var (
	ErrMissingIcon = errors.New("no icon for marker")
	ErrMarkerPanic = errors.New("marker draw panicked")
)

// FrameSource hands out the frame currently on display.
type FrameSource interface {
	DisplayFrame() core.Frame
}

// Config configures a Pipeline.
type Config struct {
	Width        int
	Height       int
	ShowLegend   bool
	StalledTicks int64
	FontSize     float64
	Icons        IconSet
	Theme        *Theme
	Broker       *hooks.PluginBroker
	Logger       logrus.FieldLogger
}

// Pipeline turns the displayed frame and a topology snapshot into an image.
type Pipeline struct {
	source       FrameSource
	topology     core.Topology
	icons        IconSet
	theme        Theme
	broker       *hooks.PluginBroker
	logger       logrus.FieldLogger
	width        int
	height       int
	stalledTicks int64
	legend       atomic.Bool
	rendered     atomic.Uint64

	// mu serializes renders; font faces are not safe for concurrent use.
	mu   sync.Mutex
	text *textDrawer
}

type pass struct {
	name string
	draw func(fc *frameContext)
}

var passes = []pass{
	{"background", drawBackground},
	{"domain", drawDomain},
	{"links", drawLinks},
	{"markers", drawMarkers},
	{"nodes", drawNodes},
	{"status", drawStatus},
	{"tick", drawTick},
	{"legend", drawLegend},
}

// PassNames lists the draw passes in execution order.
func PassNames() []string {
	names := make([]string, len(passes))
	for i, p := range passes {
		names[i] = p.name
	}
	return names
}

// NewPipeline builds a pipeline reading frames from source and node/link
// state from topology.
func NewPipeline(source FrameSource, topology core.Topology, cfg Config) *Pipeline {
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	logger = logger.WithField("component", "render")
	p := &Pipeline{
		source:       source,
		topology:     topology,
		icons:        cfg.Icons,
		theme:        DefaultTheme(),
		broker:       cfg.Broker,
		logger:       logger,
		width:        cfg.Width,
		height:       cfg.Height,
		stalledTicks: cfg.StalledTicks,
	}
	if p.icons == nil {
		p.icons = NewProceduralIcons()
	}
	if cfg.Theme != nil {
		p.theme = *cfg.Theme
	}
	if p.width <= 0 {
		p.width = DefaultWidth
	}
	if p.height <= 0 {
		p.height = DefaultHeight
	}
	if p.stalledTicks <= 0 {
		p.stalledTicks = DefaultStalledTicks
	}
	text, err := newTextDrawer(cfg.FontSize)
	if err != nil {
		logger.WithError(err).Warn("falling back to bitmap font")
		text = fallbackTextDrawer()
	}
	p.text = text
	p.legend.Store(cfg.ShowLegend)
	return p
}

// SetShowLegend toggles the legend pass.
func (p *Pipeline) SetShowLegend(show bool) {
	p.legend.Store(show)
}

// ShowLegend reports whether the legend is drawn.
func (p *Pipeline) ShowLegend() bool {
	return p.legend.Load()
}

// Rendered returns the number of frames produced.
func (p *Pipeline) Rendered() uint64 {
	return p.rendered.Load()
}

// RenderFrame snapshots the displayed frame and the topology once and draws
// them.
func (p *Pipeline) RenderFrame() *image.RGBA {
	var frame core.Frame
	if p.source != nil {
		frame = p.source.DisplayFrame()
	}
	var snap core.TopologySnapshot
	if p.topology != nil {
		snap = p.topology.Snapshot()
	}
	return p.Render(frame, snap)
}

// Render draws frame over snap. The same inputs always produce the same pixels.
func (p *Pipeline) Render(frame core.Frame, snap core.TopologySnapshot) *image.RGBA {
	start := time.Now()
	fc := p.draw(frame, snap)
	p.rendered.Add(1)

	for i := range fc.faults {
		if err := p.broker.EmitRenderFault(&fc.faults[i]); err != nil {
			p.logger.WithError(err).Warn("render fault hook failed")
		}
	}
	b := fc.canvas.Bounds()
	ctx := &hooks.FrameRenderedContext{
		Tick:     frame.Tick,
		Markers:  fc.markers,
		Faults:   len(fc.faults),
		Width:    b.Dx(),
		Height:   b.Dy(),
		Duration: time.Since(start),
	}
	if err := p.broker.EmitFrameRendered(ctx); err != nil {
		p.logger.WithError(err).Warn("frame rendered hook failed")
	}
	return fc.canvas.Image()
}

func (p *Pipeline) draw(frame core.Frame, snap core.TopologySnapshot) *frameContext {
	p.mu.Lock()
	defer p.mu.Unlock()
	w, h := p.canvasSize(snap)
	fc := &frameContext{
		canvas:       NewCanvas(w, h),
		frame:        frame,
		snap:         snap,
		theme:        p.theme,
		icons:        p.icons,
		text:         p.text,
		stalledTicks: p.stalledTicks,
		showLegend:   p.legend.Load(),
		logger:       p.logger,
	}
	for _, ps := range passes {
		p.runPass(fc, ps)
	}
	return fc
}

func (p *Pipeline) runPass(fc *frameContext, ps pass) {
	defer func() {
		if r := recover(); r != nil {
			fc.fault(ps.name, "", fmt.Errorf("pass %s panicked: %v", ps.name, r))
		}
	}()
	ps.draw(fc)
}

// canvasSize grows the configured size to fit every node plus a margin.
func (p *Pipeline) canvasSize(snap core.TopologySnapshot) (int, int) {
	ext := NodeExtent(snap)
	w, h := p.width, p.height
	if !ext.Empty() {
		w = max(w, int(math.Ceil(ext.Max.X))+canvasMargin)
		h = max(h, int(math.Ceil(ext.Max.Y))+canvasMargin)
	}
	return w, h
}

// NodeExtent returns the box covering every node icon in snap.
func NodeExtent(snap core.TopologySnapshot) core.Rect {
	var ext core.Rect
	for _, n := range snap.Nodes {
		ext = ext.Union(core.Around(n.Position, NodeIconSize/2, NodeIconSize/2))
	}
	return ext
}

// frameContext is the per-render state shared by the passes.
type frameContext struct {
	canvas       *Canvas
	frame        core.Frame
	snap         core.TopologySnapshot
	theme        Theme
	icons        IconSet
	text         *textDrawer
	stalledTicks int64
	showLegend   bool
	logger       logrus.FieldLogger

	markers int
	faults  []hooks.RenderFaultContext
}

func (fc *frameContext) fault(pass string, subtype core.Subtype, err error) {
	fc.logger.WithFields(logrus.Fields{
		"tick":    fc.frame.Tick,
		"pass":    pass,
		"subtype": subtype,
	}).WithError(err).Warn("skipping malformed draw item")
	fc.faults = append(fc.faults, hooks.RenderFaultContext{
		Tick:    fc.frame.Tick,
		Pass:    pass,
		Subtype: subtype,
		Err:     err,
	})
}

// callout draws label inside a rounded filled box centered on center.
func (fc *frameContext) callout(label string, center core.Point) {
	const pad = 3
	w := float64(fc.text.Measure(label) + 2*pad)
	h := float64(fc.text.LineHeight() + 2*pad)
	box := core.Around(center, w/2, h/2)
	fc.canvas.FillRoundedRect(box, 4, fc.theme.CalloutFill)
	fc.text.Draw(fc.canvas.Image(), label, image.Pt(int(math.Round(box.Min.X))+pad, int(math.Round(box.Min.Y))+pad), fc.theme.CalloutText)
}
