package render

import "github.com/example/netsim_playback/core"

const domainPad = 26

func drawBackground(fc *frameContext) {
	fc.canvas.Fill(fc.theme.Background)
}

// drawDomain shades the MPLS domain delimited by the border nodes.
func drawDomain(fc *frameContext) {
	var anchors []core.Point
	for _, n := range fc.snap.Nodes {
		if n.Kind.IsBorder() {
			anchors = append(anchors, n.Position)
		}
	}
	if len(anchors) == 0 {
		return
	}
	hull := ConvexHull(anchors)
	switch {
	case len(hull) >= 3:
		outline := expandPolygon(hull, domainPad)
		fc.canvas.FillPolygon(outline, fc.theme.Domain)
		for i := range outline {
			fc.canvas.StrokeLine(outline[i], outline[(i+1)%len(outline)], 1.5, fc.theme.DomainEdge)
		}
	case len(hull) == 2:
		box := boundsOf(hull, domainPad)
		fc.canvas.FillRoundedRect(box, 0, fc.theme.DomainEdge)
		inner := core.Rect{Min: box.Min.Add(core.Pt(1.5, 1.5)), Max: box.Max.Sub(core.Pt(1.5, 1.5))}
		fc.canvas.FillRoundedRect(inner, 0, fc.theme.Domain)
	default:
		fc.canvas.FillEllipse(hull[0], domainPad*2, domainPad*1.5, fc.theme.DomainEdge)
		fc.canvas.FillEllipse(hull[0], domainPad*2-1.5, domainPad*1.5-1.5, fc.theme.Domain)
	}
}
