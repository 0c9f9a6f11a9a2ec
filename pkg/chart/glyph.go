package chart

import (
	"math"

	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// starInnerRatio is the inner/outer radius ratio of a regular five-point star.
const starInnerRatio = 0.382

// StarGlyph is a filled five-point star with its top point facing up.
type StarGlyph struct{}

// DrawGlyph implements draw.GlyphDrawer.
func (StarGlyph) DrawGlyph(c *draw.Canvas, sty draw.GlyphStyle, pt vg.Point) {
	c.SetColor(sty.Color)
	var p vg.Path
	for i := 0; i < 10; i++ {
		r := sty.Radius
		if i%2 == 1 {
			r *= starInnerRatio
		}
		theta := math.Pi/2 + float64(i)*math.Pi/5
		v := vg.Point{
			X: pt.X + r*vg.Length(math.Cos(theta)),
			Y: pt.Y + r*vg.Length(math.Sin(theta)),
		}
		if i == 0 {
			p.Move(v)
		} else {
			p.Line(v)
		}
	}
	p.Close()
	c.Fill(p)
}

var _ draw.GlyphDrawer = StarGlyph{}
