package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/example/netsim_playback/core"
)

// IconSet resolves icon keys to images. Icon returns nil for unknown keys.
type IconSet interface {
	Icon(key core.IconKey) image.Image
}

// Icon sizes in pixels.
const (
	NodeIconSize    = 24
	OverlayIconSize = 10
	MarkerIconSize  = 12
)

// ProceduralIcons draws every known glyph on first use and caches it.
type ProceduralIcons struct {
	mu    sync.Mutex
	cache map[core.IconKey]image.Image
}

// NewProceduralIcons creates an empty procedural icon set.
func NewProceduralIcons() *ProceduralIcons {
	return &ProceduralIcons{cache: make(map[core.IconKey]image.Image)}
}

// Icon implements IconSet.
func (p *ProceduralIcons) Icon(key core.IconKey) image.Image {
	p.mu.Lock()
	defer p.mu.Unlock()
	if img, ok := p.cache[key]; ok {
		return img
	}
	img := drawIcon(key)
	if img != nil {
		p.cache[key] = img
	}
	return img
}

func drawIcon(key core.IconKey) image.Image {
	switch key.Group {
	case core.IconGroupNode:
		return drawNodeIcon(core.NodeKind(key.Name), key.Variant == "selected")
	case core.IconGroupCongestion:
		return drawCongestionIcon(key.Variant)
	case core.IconGroupStatus:
		if key == core.StalledIconKey {
			return drawStalledIcon()
		}
	case core.IconGroupPacket:
		kind := core.PacketKind(key.Name)
		if !kind.Valid() {
			return nil
		}
		c := NewCanvas(MarkerIconSize, MarkerIconSize)
		mid := core.Pt(MarkerIconSize/2, MarkerIconSize/2)
		c.FillEllipse(mid, 5.5, 5.5, color.RGBA{A: 0xff})
		c.FillEllipse(mid, 4.5, 4.5, packetColor(kind))
		return c.Image()
	case core.IconGroupEvent:
		return drawEventIcon(core.Subtype(key.Name), core.PacketKind(key.Variant))
	}
	return nil
}

func drawNodeIcon(kind core.NodeKind, selected bool) image.Image {
	fill, ok := nodeColors[kind]
	if !ok {
		return nil
	}
	c := NewCanvas(NodeIconSize, NodeIconSize)
	mid := core.Pt(NodeIconSize/2, NodeIconSize/2)
	outline := color.RGBA{R: 0x22, G: 0x22, B: 0x22, A: 0xff}
	if selected {
		outline = color.RGBA{R: 0xf2, G: 0xc9, B: 0x4c, A: 0xff}
	}
	var outer, inner []core.Point
	switch kind {
	case core.NodeTrafficGenerator:
		outer, inner = regularPolygon(mid, 11, 24, 0), regularPolygon(mid, 9, 24, 0)
	case core.NodeTrafficSink:
		outer = roundedRectPoints(core.Around(mid, 11, 11), 2)
		inner = roundedRectPoints(core.Around(mid, 9, 9), 1)
	case core.NodeLER, core.NodeActiveLER:
		outer, inner = regularPolygon(mid, 11.5, 6, 0), regularPolygon(mid, 9.5, 6, 0)
	default:
		outer, inner = regularPolygon(mid, 11.5, 4, math.Pi/4), regularPolygon(mid, 9, 4, math.Pi/4)
	}
	c.FillPolygon(outer, outline)
	c.FillPolygon(inner, fill)
	if kind == core.NodeActiveLER || kind == core.NodeActiveLSR {
		c.FillEllipse(mid, 3, 3, color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff})
	}
	return c.Image()
}

func drawCongestionIcon(band string) image.Image {
	fill, ok := bandColors[band]
	if !ok {
		return nil
	}
	c := NewCanvas(OverlayIconSize, OverlayIconSize)
	tri := []core.Point{core.Pt(5, 0), core.Pt(10, 10), core.Pt(0, 10)}
	c.FillPolygon(tri, color.RGBA{A: 0xff})
	c.FillPolygon([]core.Point{core.Pt(5, 2), core.Pt(8.5, 9), core.Pt(1.5, 9)}, fill)
	return c.Image()
}

func drawStalledIcon() image.Image {
	c := NewCanvas(OverlayIconSize, OverlayIconSize)
	mid := core.Pt(5, 5)
	c.FillEllipse(mid, 5, 5, color.RGBA{R: 0x55, G: 0x55, B: 0x55, A: 0xff})
	c.FillEllipse(mid, 3.5, 3.5, color.RGBA{R: 0xee, G: 0xee, B: 0xee, A: 0xff})
	hand := color.RGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xff}
	c.StrokeLine(mid, core.Pt(5, 2), 1.2, hand)
	c.StrokeLine(mid, core.Pt(7.5, 5), 1.2, hand)
	return c.Image()
}

func drawEventIcon(subtype core.Subtype, packet core.PacketKind) image.Image {
	if !subtype.Valid() {
		return nil
	}
	if packet != "" && !packet.Valid() {
		return nil
	}
	fill := packetColor(packet)
	c := NewCanvas(MarkerIconSize, MarkerIconSize)
	mid := core.Pt(MarkerIconSize/2, MarkerIconSize/2)
	black := color.RGBA{A: 0xff}
	switch subtype {
	case core.PacketGenerated:
		c.FillPolygon(regularPolygon(mid, 6, 5, -math.Pi/2), black)
		c.FillPolygon(regularPolygon(mid, 4.5, 5, -math.Pi/2), fill)
	case core.PacketSent:
		c.FillPolygon([]core.Point{core.Pt(1, 1), core.Pt(11, 6), core.Pt(1, 11)}, fill)
	case core.PacketReceived:
		c.FillPolygon([]core.Point{core.Pt(11, 1), core.Pt(1, 6), core.Pt(11, 11)}, fill)
	case core.PacketSwitched:
		c.FillRoundedRect(core.Around(mid, 5, 5), 1, black)
		c.FillRoundedRect(core.Around(mid, 4, 4), 1, fill)
	case core.PacketRouted:
		c.FillPolygon(regularPolygon(mid, 6, 4, 0), black)
		c.FillPolygon(regularPolygon(mid, 4.5, 4, 0), fill)
	case core.PacketOnFly:
		c.FillEllipse(mid, 5, 5, fill)
	case core.PacketDiscarded:
		c.StrokeLine(core.Pt(1, 1), core.Pt(11, 11), 2.5, fill)
		c.StrokeLine(core.Pt(11, 1), core.Pt(1, 11), 2.5, fill)
	case core.NodeCongested:
		return drawCongestionIcon(core.BandMid.String())
	case core.LinkBroken:
		red := color.RGBA{R: 0xd0, G: 0x2b, B: 0x2b, A: 0xff}
		c.StrokeLine(core.Pt(1, 1), core.Pt(11, 11), 2.5, red)
		c.StrokeLine(core.Pt(11, 1), core.Pt(1, 11), 2.5, red)
	case core.LinkRecovered:
		green := color.RGBA{R: 0x1f, G: 0x9d, B: 0x55, A: 0xff}
		c.StrokeLine(core.Pt(6, 1), core.Pt(6, 11), 2.5, green)
		c.StrokeLine(core.Pt(1, 6), core.Pt(11, 6), 2.5, green)
	case core.LspEstablished:
		c.StrokeEllipse(mid, 4.5, 4.5, 1.5, color.RGBA{R: 0x1f, G: 0x9d, B: 0x55, A: 0xff})
	}
	return c.Image()
}

func regularPolygon(center core.Point, r float64, sides int, phase float64) []core.Point {
	pts := make([]core.Point, sides)
	for i := range pts {
		t := phase + 2*math.Pi*float64(i)/float64(sides)
		pts[i] = core.Pt(center.X+r*math.Cos(t), center.Y+r*math.Sin(t))
	}
	return pts
}

// ThemeIcons is a set of PNG icons loaded from a directory. Files are named
// after IconKey.String(), for example node_lsr_selected.png.
type ThemeIcons struct {
	icons map[string]image.Image
}

// LoadIconDir reads every .png file in dir.
func LoadIconDir(dir string) (*ThemeIcons, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read icon dir: %w", err)
	}
	t := &ThemeIcons{icons: make(map[string]image.Image)}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(name), ".png") {
			continue
		}
		img, err := decodePNG(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		t.icons[strings.TrimSuffix(name, filepath.Ext(name))] = img
	}
	return t, nil
}

func decodePNG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open icon: %w", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode icon %s: %w", filepath.Base(path), err)
	}
	return img, nil
}

// Len returns the number of loaded icons.
func (t *ThemeIcons) Len() int {
	if t == nil {
		return 0
	}
	return len(t.icons)
}

// Icon implements IconSet.
func (t *ThemeIcons) Icon(key core.IconKey) image.Image {
	if t == nil {
		return nil
	}
	return t.icons[key.String()]
}

// Layered returns the first non-nil icon from its sets in order.
type Layered []IconSet

// Icon implements IconSet.
func (l Layered) Icon(key core.IconKey) image.Image {
	for _, set := range l {
		if set == nil {
			continue
		}
		if img := set.Icon(key); img != nil {
			return img
		}
	}
	return nil
}
