package render

import (
	"image/color"

	"github.com/example/netsim_playback/core"
)

// Overlay anchors relative to the node center.
var (
	congestionOffset = core.Pt(NodeIconSize/2-2, -NodeIconSize/2+2)
	stalledOffset    = core.Pt(-NodeIconSize/2+2, -NodeIconSize/2+2)
)

var missingNode = color.RGBA{R: 0x99, G: 0x99, B: 0x99, A: 0xff}

func drawNodes(fc *frameContext) {
	for _, n := range fc.snap.Nodes {
		if icon := fc.icons.Icon(n.Kind.IconKey(n.Selected)); icon != nil {
			fc.canvas.DrawImage(icon, n.Position)
		} else {
			fc.canvas.FillEllipse(n.Position, NodeIconSize/2, NodeIconSize/2, missingNode)
		}
	}
	for _, n := range fc.snap.Nodes {
		if !n.ShowName || n.Name == "" {
			continue
		}
		below := float64(NodeIconSize/2 + 4 + fc.text.LineHeight()/2 + 3)
		fc.callout(n.Name, n.Position.Add(core.Pt(0, below)))
	}
}

func drawStatus(fc *frameContext) {
	for _, n := range fc.snap.Nodes {
		if band := core.BandFor(n.CongestionLevel); band != core.BandNone {
			fc.canvas.DrawImage(fc.icons.Icon(n.Kind.CongestionIconKey(band)), n.Position.Add(congestionOffset))
		}
		if n.TicksWithoutEmitting > fc.stalledTicks {
			fc.canvas.DrawImage(fc.icons.Icon(core.StalledIconKey), n.Position.Add(stalledOffset))
		}
	}
}
