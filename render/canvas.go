package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/vector"

	"github.com/example/netsim_playback/core"
)

// Canvas wraps an RGBA image with the vector primitives the passes need.
// Every shape is rasterized into a mask the size of its own clipped bounding
// box, so small markers stay cheap on large canvases.
type Canvas struct {
	img *image.RGBA
}

// NewCanvas allocates a w x h canvas.
func NewCanvas(w, h int) *Canvas {
	return &Canvas{img: image.NewRGBA(image.Rect(0, 0, w, h))}
}

// Image returns the backing image.
func (c *Canvas) Image() *image.RGBA {
	return c.img
}

// Bounds returns the canvas bounds.
func (c *Canvas) Bounds() image.Rectangle {
	return c.img.Bounds()
}

// Fill paints the whole canvas.
func (c *Canvas) Fill(col color.Color) {
	draw.Draw(c.img, c.img.Bounds(), image.NewUniform(col), image.Point{}, draw.Src)
}

// FillPolygon fills the closed polygon pts.
func (c *Canvas) FillPolygon(pts []core.Point, col color.Color) {
	if len(pts) < 3 {
		return
	}
	c.fillPaths([][]core.Point{pts}, col)
}

func (c *Canvas) fillPaths(paths [][]core.Point, col color.Color) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, path := range paths {
		for _, p := range path {
			minX, minY = math.Min(minX, p.X), math.Min(minY, p.Y)
			maxX, maxY = math.Max(maxX, p.X), math.Max(maxY, p.Y)
		}
	}
	if math.IsInf(minX, 0) {
		return
	}
	box := image.Rect(int(math.Floor(minX)), int(math.Floor(minY)), int(math.Ceil(maxX))+1, int(math.Ceil(maxY))+1)
	clip := box.Intersect(c.img.Bounds())
	if clip.Empty() {
		return
	}
	z := vector.NewRasterizer(clip.Dx(), clip.Dy())
	ox, oy := float64(clip.Min.X), float64(clip.Min.Y)
	for _, path := range paths {
		if len(path) < 3 {
			continue
		}
		z.MoveTo(float32(path[0].X-ox), float32(path[0].Y-oy))
		for _, p := range path[1:] {
			z.LineTo(float32(p.X-ox), float32(p.Y-oy))
		}
		z.ClosePath()
	}
	z.Draw(c.img, clip, image.NewUniform(col), image.Point{})
}

// StrokeLine draws a segment of the given width with butt caps.
func (c *Canvas) StrokeLine(a, b core.Point, width float64, col color.Color) {
	if quad, ok := segmentQuad(a, b, width); ok {
		c.fillPaths([][]core.Point{quad}, col)
	}
}

// DashedLine draws a dashed segment. pattern alternates on/off lengths.
func (c *Canvas) DashedLine(a, b core.Point, width float64, pattern []float64, col color.Color) {
	length := a.Dist(b)
	if length == 0 {
		return
	}
	if len(pattern) == 0 {
		c.StrokeLine(a, b, width, col)
		return
	}
	dir := b.Sub(a).Scale(1 / length)
	var quads [][]core.Point
	pos := 0.0
	for i := 0; pos < length; i++ {
		seg := pattern[i%len(pattern)]
		if seg <= 0 {
			seg = 1
		}
		end := math.Min(pos+seg, length)
		if i%2 == 0 {
			if quad, ok := segmentQuad(a.Add(dir.Scale(pos)), a.Add(dir.Scale(end)), width); ok {
				quads = append(quads, quad)
			}
		}
		pos = end
	}
	if len(quads) > 0 {
		c.fillPaths(quads, col)
	}
}

// FillEllipse fills an axis-aligned ellipse.
func (c *Canvas) FillEllipse(center core.Point, rx, ry float64, col color.Color) {
	c.FillPolygon(ellipsePoints(center, rx, ry), col)
}

// StrokeEllipse outlines an axis-aligned ellipse.
func (c *Canvas) StrokeEllipse(center core.Point, rx, ry, width float64, col color.Color) {
	outer := ellipsePoints(center, rx+width/2, ry+width/2)
	inner := ellipsePoints(center, math.Max(rx-width/2, 0), math.Max(ry-width/2, 0))
	reverse(inner)
	c.fillPaths([][]core.Point{outer, inner}, col)
}

// FillRoundedRect fills r with corners of the given radius.
func (c *Canvas) FillRoundedRect(r core.Rect, radius float64, col color.Color) {
	c.FillPolygon(roundedRectPoints(r, radius), col)
}

// DrawImage composites img centered on center.
func (c *Canvas) DrawImage(img image.Image, center core.Point) {
	if img == nil {
		return
	}
	b := img.Bounds()
	min := image.Pt(int(math.Round(center.X))-b.Dx()/2, int(math.Round(center.Y))-b.Dy()/2)
	draw.Draw(c.img, image.Rectangle{Min: min, Max: min.Add(b.Size())}, img, b.Min, draw.Over)
}

func segmentQuad(a, b core.Point, width float64) ([]core.Point, bool) {
	length := a.Dist(b)
	if length == 0 || width <= 0 {
		return nil, false
	}
	d := b.Sub(a).Scale(1 / length)
	n := core.Pt(-d.Y, d.X).Scale(width / 2)
	return []core.Point{a.Add(n), b.Add(n), b.Sub(n), a.Sub(n)}, true
}

func ellipsePoints(center core.Point, rx, ry float64) []core.Point {
	steps := int(math.Max(12, math.Ceil(math.Max(rx, ry)*1.5)))
	if steps > 96 {
		steps = 96
	}
	pts := make([]core.Point, steps)
	for i := range pts {
		t := 2 * math.Pi * float64(i) / float64(steps)
		pts[i] = core.Pt(center.X+rx*math.Cos(t), center.Y+ry*math.Sin(t))
	}
	return pts
}

func roundedRectPoints(r core.Rect, radius float64) []core.Point {
	w, h := r.Max.X-r.Min.X, r.Max.Y-r.Min.Y
	radius = math.Max(0, math.Min(radius, math.Min(w, h)/2))
	if radius == 0 {
		return []core.Point{r.Min, core.Pt(r.Max.X, r.Min.Y), r.Max, core.Pt(r.Min.X, r.Max.Y)}
	}
	const arcSteps = 4
	corners := []struct {
		c     core.Point
		start float64
	}{
		{core.Pt(r.Max.X-radius, r.Min.Y+radius), -math.Pi / 2},
		{core.Pt(r.Max.X-radius, r.Max.Y-radius), 0},
		{core.Pt(r.Min.X+radius, r.Max.Y-radius), math.Pi / 2},
		{core.Pt(r.Min.X+radius, r.Min.Y+radius), math.Pi},
	}
	pts := make([]core.Point, 0, len(corners)*(arcSteps+1))
	for _, corner := range corners {
		for i := 0; i <= arcSteps; i++ {
			t := corner.start + (math.Pi/2)*float64(i)/arcSteps
			pts = append(pts, core.Pt(corner.c.X+radius*math.Cos(t), corner.c.Y+radius*math.Sin(t)))
		}
	}
	return pts
}

func reverse(pts []core.Point) {
	for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
		pts[i], pts[j] = pts[j], pts[i]
	}
}
