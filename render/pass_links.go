package render

import (
	"math"

	"github.com/example/netsim_playback/core"
)

// Overlay geometry for reserved paths.
const (
	pathOffset = 3
	pathWidth  = 1.5
)

var (
	brokenDash  = []float64{8, 6}
	primaryDash = []float64{5, 5}
	backupDash  = []float64{2, 5}
)

// LinkStrokeWidth returns the stroke width of a link with the given delay.
// Longer links are drawn thinner.
func LinkStrokeWidth(delay int64) float64 {
	if delay < 0 {
		delay = 0
	}
	return 16 / math.Log(float64(delay)+100)
}

// PathOffset returns the displacement of the primary path overlay of a link
// drawn from head to tail. The backup overlay uses the negated offset.
func PathOffset(head, tail core.Point) core.Point {
	dx, dy := tail.X-head.X, tail.Y-head.Y
	adx, ady := math.Abs(dx), math.Abs(dy)
	switch {
	case ady <= adx/4:
		return core.Pt(0, -pathOffset)
	case adx <= ady/4:
		return core.Pt(pathOffset, 0)
	case dx*dy > 0:
		return core.Pt(pathOffset, -pathOffset)
	default:
		return core.Pt(pathOffset, pathOffset)
	}
}

func drawLinks(fc *frameContext) {
	for _, l := range fc.snap.Links {
		width := LinkStrokeWidth(l.Delay)
		switch {
		case l.Broken:
			fc.canvas.DashedLine(l.Head, l.Tail, width, brokenDash, fc.theme.LinkBroken)
		case l.Kind == core.LinkExternal:
			fc.canvas.StrokeLine(l.Head, l.Tail, width, fc.theme.LinkExternal)
		default:
			fc.canvas.StrokeLine(l.Head, l.Tail, width, fc.theme.LinkInternal)
		}
		off := PathOffset(l.Head, l.Tail)
		if l.Primary {
			fc.canvas.DashedLine(l.Head.Add(off), l.Tail.Add(off), pathWidth, primaryDash, fc.theme.Primary)
		}
		if l.Backup {
			fc.canvas.DashedLine(l.Head.Sub(off), l.Tail.Sub(off), pathWidth, backupDash, fc.theme.Backup)
		}
	}
	for _, l := range fc.snap.Links {
		if l.ShowName && l.Name != "" {
			fc.callout(l.Name, l.Head.Midpoint(l.Tail))
		}
	}
}
