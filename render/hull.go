package render

import (
	"math"
	"sort"

	"github.com/example/netsim_playback/core"
)

// ConvexHull returns the hull of pts in counter-clockwise order using the
// monotone chain algorithm. Collinear and duplicate points are dropped, so the
// result may have fewer than three points.
func ConvexHull(pts []core.Point) []core.Point {
	if len(pts) < 3 {
		out := make([]core.Point, len(pts))
		copy(out, pts)
		return dedupe(out)
	}
	sorted := make([]core.Point, len(pts))
	copy(sorted, pts)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].X != sorted[j].X {
			return sorted[i].X < sorted[j].X
		}
		return sorted[i].Y < sorted[j].Y
	})
	sorted = dedupe(sorted)
	if len(sorted) < 3 {
		return sorted
	}

	hull := make([]core.Point, 0, 2*len(sorted))
	for _, p := range sorted {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(sorted) - 2; i >= 0; i-- {
		p := sorted[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	return hull[:len(hull)-1]
}

// expandPolygon pushes every vertex away from the centroid by pad pixels.
func expandPolygon(pts []core.Point, pad float64) []core.Point {
	if len(pts) == 0 {
		return nil
	}
	var c core.Point
	for _, p := range pts {
		c = c.Add(p)
	}
	c = c.Scale(1 / float64(len(pts)))
	out := make([]core.Point, len(pts))
	for i, p := range pts {
		d := p.Dist(c)
		if d == 0 {
			out[i] = p
			continue
		}
		out[i] = p.Add(p.Sub(c).Scale(pad / d))
	}
	return out
}

// boundsOf returns the bounding box of pts grown by pad on every side.
func boundsOf(pts []core.Point, pad float64) core.Rect {
	r := core.Rect{
		Min: core.Pt(math.Inf(1), math.Inf(1)),
		Max: core.Pt(math.Inf(-1), math.Inf(-1)),
	}
	for _, p := range pts {
		r.Min.X = math.Min(r.Min.X, p.X-pad)
		r.Min.Y = math.Min(r.Min.Y, p.Y-pad)
		r.Max.X = math.Max(r.Max.X, p.X+pad)
		r.Max.Y = math.Max(r.Max.Y, p.Y+pad)
	}
	return r
}

func cross(o, a, b core.Point) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}

func dedupe(pts []core.Point) []core.Point {
	if len(pts) < 2 {
		return pts
	}
	out := pts[:1]
	for _, p := range pts[1:] {
		if p != out[len(out)-1] {
			out = append(out, p)
		}
	}
	return out
}
