package chart

import (
	"image/color"
	"math"

	xfont "golang.org/x/image/font"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/font/liberation"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// DefaultHighlight is the instrument rendered as the highlighted series.
const DefaultHighlight = "Spec-S5"

var (
	colorRed   = color.NRGBA{R: 255, A: 255}
	colorBlue  = color.NRGBA{B: 255, A: 255}
	colorBlack = color.NRGBA{A: 255}
)

// Label faces. The bold face is registered as its own regular-weight variant:
// vgpdf embeds every face under its name with no style and would not find it
// again when asked for the "B" style.
var (
	labelRegular = font.Font{Typeface: "Liberation", Variant: "Sans"}
	labelBold    = font.Font{Typeface: "Liberation", Variant: "SansBold"}

	labelFonts = newLabelFonts()
)

func newLabelFonts() *font.Cache {
	coll := liberation.Collection()
	for _, f := range coll {
		if f.Font.Variant == "Sans" && f.Font.Weight == xfont.WeightBold && f.Font.Style == xfont.StyleNormal {
			coll = append(coll, font.Face{Font: labelBold, Face: f.Face})
			break
		}
	}
	return font.NewCache(coll)
}

// Style decides how each row of a panel is drawn and labelled.
type Style struct {
	Highlight string // instrument drawn with the highlighted style

	HighlightColor      color.Color
	SecondaryColor      color.Color
	SecondaryLabelColor color.Color // label colour of non-highlighted rows
	MarkerAlpha         float64

	// SecondaryArea is the marker area in pt² of non-highlighted rows.
	// Highlighted markers get HighlightScale times that area.
	SecondaryArea  float64
	HighlightScale float64

	HighlightFontSize vg.Length
	SecondaryFontSize vg.Length

	LabelOffset    vg.Length // horizontal distance between point and label
	VerticalOffset vg.Length // applied downwards on even rows, upwards on odd rows
	Rotation       float64   // label rotation in degrees about the anchor
}

// DefaultStyle returns the un-rotated style of the correlations figure.
func DefaultStyle() Style {
	return Style{
		Highlight:           DefaultHighlight,
		HighlightColor:      colorRed,
		SecondaryColor:      colorBlue,
		SecondaryLabelColor: colorBlue,
		MarkerAlpha:         0.6,
		SecondaryArea:       100,
		HighlightScale:      4,
		HighlightFontSize:   vg.Points(20),
		SecondaryFontSize:   vg.Points(12),
		LabelOffset:         vg.Points(10),
	}
}

// Mark is the resolved appearance of one row: its marker and its label.
type Mark struct {
	Highlighted bool
	Label       string
	Glyph       draw.GlyphStyle
	Text        text.Style
	Offset      vg.Point // label position relative to the data point
}

// MarkFor maps a row to its mark. index is the row's position in the table;
// labels of even rows go right of the point, odd rows go left.
func (s Style) MarkFor(instrument string, index int) Mark {
	m := Mark{Label: instrument}

	markerColor, labelColor := s.SecondaryColor, s.SecondaryLabelColor
	area, size := s.SecondaryArea, s.SecondaryFontSize
	var shape draw.GlyphDrawer = draw.CircleGlyph{}
	face := labelRegular

	if instrument == s.Highlight {
		m.Highlighted = true
		markerColor, labelColor = s.HighlightColor, s.HighlightColor
		area, size = s.SecondaryArea*s.HighlightScale, s.HighlightFontSize
		shape = StarGlyph{}
		face = labelBold
	}

	m.Glyph = draw.GlyphStyle{
		Color:  withAlpha(markerColor, s.MarkerAlpha),
		Radius: radiusForArea(area),
		Shape:  shape,
	}

	xAlign := text.XLeft
	dx, dy := s.LabelOffset, -s.VerticalOffset
	if index%2 != 0 {
		xAlign = text.XRight
		dx, dy = -s.LabelOffset, s.VerticalOffset
	}
	m.Offset = vg.Point{X: dx, Y: dy}

	m.Text = text.Style{
		Color:    labelColor,
		Font:     font.From(face, size),
		Rotation: s.Rotation * math.Pi / 180,
		XAlign:   xAlign,
		YAlign:   text.YCenter,
		Handler:  text.Plain{Fonts: labelFonts},
	}
	return m
}

// radiusForArea converts a marker area in pt² to a glyph radius.
func radiusForArea(area float64) vg.Length {
	return vg.Points(math.Sqrt(area) / 2)
}

func withAlpha(c color.Color, alpha float64) color.Color {
	if c == nil {
		c = colorBlack
	}
	if alpha <= 0 || alpha >= 1 {
		return c
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A = uint8(math.Round(float64(n.A) * alpha))
	return n
}
