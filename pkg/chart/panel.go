package chart

import (
	"fmt"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/matzehuels/surveyplot/pkg/survey"
)

// Scale selects how an axis maps values to positions.
type Scale int

const (
	Linear Scale = iota
	Log
)

func (s Scale) String() string {
	if s == Log {
		return "log"
	}
	return "linear"
}

// Limits is a closed axis interval.
type Limits struct {
	Min, Max float64
}

// Decoration sizes shared by every panel.
var (
	titleFontSize   = vg.Points(14)
	titlePadding    = vg.Points(20)
	axisFontSize    = vg.Points(20)
	tickFontSize    = vg.Points(20)
	gridAlpha       = 0.2
	autoRangeMargin = 0.05
)

// PanelSpec describes one scatter panel.
type PanelSpec struct {
	X, Y           string // column names
	Title          string
	XLabel, YLabel string
	XScale, YScale Scale
	XLimits        *Limits // nil: derived from the data
	YLimits        *Limits
	YThreshold     *float64 // when set, rows with y <= threshold are dropped
}

// Point is one plotted row.
type Point struct {
	Row        int
	Instrument string
	X, Y       float64
	Mark       Mark
	Clipped    bool // outside the axis limits; neither marker nor label is visible
}

// Panel is a rendered panel ready to be placed in a figure.
type Panel struct {
	Spec   PanelSpec
	Plot   *plot.Plot
	Points []Point
}

// RenderPanel draws spec from t. The instrument column decides styling
// through style.MarkFor. Rows filtered by YThreshold, and rows that cannot
// be placed on a log axis (non-positive or NaN), are left out.
func RenderPanel(t *survey.Table, spec PanelSpec, style Style) (*Panel, error) {
	instruments, err := t.Text(survey.ColInstrument)
	if err != nil {
		return nil, err
	}
	xs, err := t.Numbers(spec.X)
	if err != nil {
		return nil, err
	}
	ys, err := t.Numbers(spec.Y)
	if err != nil {
		return nil, err
	}
	if err := checkLimits(spec.XLimits, spec.XScale); err != nil {
		return nil, &RenderError{Op: "panel", Panel: spec.Title, Err: fmt.Errorf("x: %w", err)}
	}
	if err := checkLimits(spec.YLimits, spec.YScale); err != nil {
		return nil, &RenderError{Op: "panel", Panel: spec.Title, Err: fmt.Errorf("y: %w", err)}
	}

	var points []Point
	for i := range instruments {
		x, y := xs[i], ys[i]
		if spec.YThreshold != nil && !(y > *spec.YThreshold) {
			continue
		}
		if !placeable(x, spec.XScale) || !placeable(y, spec.YScale) {
			continue
		}
		points = append(points, Point{
			Row:        i,
			Instrument: instruments[i],
			X:          x,
			Y:          y,
			Mark:       style.MarkFor(instruments[i], i),
		})
	}

	p := plot.New()
	decorate(p, spec)

	xMin, xMax := axisRange(spec.XLimits, points, spec.XScale, func(pt Point) float64 { return pt.X })
	yMin, yMax := axisRange(spec.YLimits, points, spec.YScale, func(pt Point) float64 { return pt.Y })

	var visible plotter.XYs
	var glyphs []draw.GlyphStyle
	for i := range points {
		pt := &points[i]
		if pt.X < xMin || pt.X > xMax || pt.Y < yMin || pt.Y > yMax {
			pt.Clipped = true
			continue
		}
		visible = append(visible, plotter.XY{X: pt.X, Y: pt.Y})
		glyphs = append(glyphs, pt.Mark.Glyph)
	}

	p.Add(grid{style: draw.LineStyle{
		Color: withAlpha(colorBlack, gridAlpha),
		Width: vg.Points(0.8),
	}})
	if len(visible) > 0 {
		s, err := plotter.NewScatter(visible)
		if err != nil {
			return nil, &RenderError{Op: "panel", Panel: spec.Title, Err: err}
		}
		s.GlyphStyleFunc = func(i int) draw.GlyphStyle { return glyphs[i] }
		p.Add(s, annotations(points))
	}

	// Add widens the axes to the data; the final limits are set afterwards.
	p.X.Min, p.X.Max = xMin, xMax
	p.Y.Min, p.Y.Max = yMin, yMax

	return &Panel{Spec: spec, Plot: p, Points: points}, nil
}

// Visible returns the points that are drawn, in row order.
func (p *Panel) Visible() []Point {
	var out []Point
	for _, pt := range p.Points {
		if !pt.Clipped {
			out = append(out, pt)
		}
	}
	return out
}

func decorate(p *plot.Plot, spec PanelSpec) {
	p.Title.Text = spec.Title
	p.Title.TextStyle.Font = sans(titleFontSize)
	p.Title.Padding = titlePadding

	p.X.Label.Text = spec.XLabel
	p.Y.Label.Text = spec.YLabel
	for _, ax := range []*plot.Axis{&p.X, &p.Y} {
		ax.Label.TextStyle.Font = sans(axisFontSize)
		ax.Tick.Label.Font = sans(tickFontSize)
	}

	applyScale(&p.X, spec.XScale)
	applyScale(&p.Y, spec.YScale)
}

func applyScale(ax *plot.Axis, s Scale) {
	if s == Log {
		ax.Scale = plot.LogScale{}
		ax.Tick.Marker = plot.LogTicks{Prec: -1}
		return
	}
	ax.Scale = plot.LinearScale{}
	ax.Tick.Marker = plot.DefaultTicks{}
}

func sans(size vg.Length) font.Font {
	return font.Font{Typeface: "Liberation", Variant: "Sans", Size: size}
}

func placeable(v float64, s Scale) bool {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return false
	}
	return s != Log || v > 0
}

func checkLimits(l *Limits, s Scale) error {
	if l == nil {
		return nil
	}
	if !(l.Min < l.Max) || math.IsInf(l.Min, 0) || math.IsInf(l.Max, 0) {
		return fmt.Errorf("%w: [%g, %g]", ErrInvalidLimits, l.Min, l.Max)
	}
	if s == Log && l.Min <= 0 {
		return fmt.Errorf("%w: [%g, %g] on a log axis", ErrInvalidLimits, l.Min, l.Max)
	}
	return nil
}

// axisRange returns the limits as given, or the data range widened by a
// margin (in decades on log axes).
func axisRange(l *Limits, points []Point, s Scale, value func(Point) float64) (float64, float64) {
	if l != nil {
		return l.Min, l.Max
	}
	if len(points) == 0 {
		if s == Log {
			return 1, 10
		}
		return 0, 1
	}

	fwd, inv := func(v float64) float64 { return v }, func(v float64) float64 { return v }
	if s == Log {
		fwd, inv = math.Log10, func(v float64) float64 { return math.Pow(10, v) }
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, pt := range points {
		v := fwd(value(pt))
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}
	pad := (hi - lo) * autoRangeMargin
	return inv(lo - pad), inv(hi + pad)
}

// grid draws lines at every major and minor tick of both axes.
type grid struct {
	style draw.LineStyle
}

func (g grid) Plot(c draw.Canvas, p *plot.Plot) {
	trX, trY := p.Transforms(&c)
	for _, tk := range p.X.Tick.Marker.Ticks(p.X.Min, p.X.Max) {
		if tk.Value < p.X.Min || tk.Value > p.X.Max {
			continue
		}
		x := trX(tk.Value)
		c.StrokeLine2(g.style, x, c.Min.Y, x, c.Max.Y)
	}
	for _, tk := range p.Y.Tick.Marker.Ticks(p.Y.Min, p.Y.Max) {
		if tk.Value < p.Y.Min || tk.Value > p.Y.Max {
			continue
		}
		y := trY(tk.Value)
		c.StrokeLine2(g.style, c.Min.X, y, c.Max.X, y)
	}
}

// annotations draws each point's label at its mark offset.
type annotations []Point

func (a annotations) Plot(c draw.Canvas, p *plot.Plot) {
	trX, trY := p.Transforms(&c)
	for _, pt := range a {
		if pt.Clipped {
			continue
		}
		at := vg.Point{X: trX(pt.X), Y: trY(pt.Y)}
		c.FillText(pt.Mark.Text, at.Add(pt.Mark.Offset), pt.Mark.Label)
	}
}

var (
	_ plot.Plotter = grid{}
	_ plot.Plotter = annotations(nil)
)
