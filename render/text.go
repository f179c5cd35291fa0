package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// DefaultFontSize is the label size in points at 72 DPI.
const DefaultFontSize = 11

// textDrawer measures and draws single line labels. font.Face is not safe for
// concurrent use; the pipeline serializes access.
type textDrawer struct {
	face    font.Face
	ascent  int
	descent int
}

func newTextDrawer(size float64) (*textDrawer, error) {
	if size <= 0 {
		size = DefaultFontSize
	}
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse goregular: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, fmt.Errorf("goregular face: %w", err)
	}
	return newTextDrawerFromFace(face), nil
}

// fallbackTextDrawer uses the fixed 7x13 bitmap face.
func fallbackTextDrawer() *textDrawer {
	return newTextDrawerFromFace(basicfont.Face7x13)
}

func newTextDrawerFromFace(face font.Face) *textDrawer {
	m := face.Metrics()
	return &textDrawer{face: face, ascent: m.Ascent.Ceil(), descent: m.Descent.Ceil()}
}

// LineHeight returns the pixel height of one line.
func (t *textDrawer) LineHeight() int {
	return t.ascent + t.descent
}

// Measure returns the advance width of s in pixels.
func (t *textDrawer) Measure(s string) int {
	return font.MeasureString(t.face, s).Ceil()
}

// Draw renders s with its top-left corner at topLeft.
func (t *textDrawer) Draw(dst draw.Image, s string, topLeft image.Point, col color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: t.face,
		Dot:  fixed.P(topLeft.X, topLeft.Y+t.ascent),
	}
	d.DrawString(s)
}
