package chart

import (
	"bytes"
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgpdf"
	"gonum.org/v1/plot/vg/vgsvg"
)

// Output formats.
const (
	FormatPDF = "pdf"
	FormatPNG = "png"
	FormatSVG = "svg"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatPDF: true,
	FormatPNG: true,
	FormatSVG: true,
}

// ContentType returns the MIME type of a format.
func ContentType(format string) string {
	switch format {
	case FormatPDF:
		return "application/pdf"
	case FormatPNG:
		return "image/png"
	case FormatSVG:
		return "image/svg+xml"
	default:
		return "application/octet-stream"
	}
}

// Layout is the physical page of a figure.
type Layout struct {
	Width, Height vg.Length
	HSpace        float64   // vertical gap between panels, as a fraction of panel height
	Margin        vg.Length // outer padding on every side
	DPI           int       // raster resolution (PNG)
}

// DefaultLayout is a 12in × 25in page with 0.3 panel spacing at 300 DPI.
func DefaultLayout() Layout {
	return Layout{
		Width:  12 * vg.Inch,
		Height: 25 * vg.Inch,
		HSpace: 0.3,
		Margin: 0.2 * vg.Inch,
		DPI:    300,
	}
}

// tiles splits the page into n rows of equal height separated by HSpace.
func (l Layout) tiles(n int) draw.Tiles {
	avail := l.Height - 2*l.Margin
	h := avail / vg.Length(float64(n)+l.HSpace*float64(n-1))
	return draw.Tiles{
		Rows:      n,
		Cols:      1,
		PadTop:    l.Margin,
		PadBottom: l.Margin,
		PadLeft:   l.Margin,
		PadRight:  l.Margin,
		PadY:      h * vg.Length(l.HSpace),
	}
}

// Figure is a vertical stack of panels on one page.
type Figure struct {
	Layout Layout
	Panels []*Panel
}

// Assemble stacks panels top to bottom in the given order.
func Assemble(l Layout, panels ...*Panel) *Figure {
	return &Figure{Layout: l, Panels: panels}
}

// Render draws the whole figure in the given format and returns the encoded
// bytes. Nothing is written anywhere until the canvas is complete.
func (f *Figure) Render(format string) (data []byte, err error) {
	if len(f.Panels) == 0 {
		return nil, &RenderError{Op: "draw", Err: ErrNoPanels}
	}

	var c vg.CanvasWriterTo
	w, h := f.Layout.Width, f.Layout.Height
	switch format {
	case FormatPDF:
		pc := vgpdf.New(w, h)
		pc.EmbedFonts(true)
		c = pc
	case FormatPNG:
		c = vgimg.PngCanvas{Canvas: vgimg.NewWith(vgimg.UseWH(w, h), vgimg.UseDPI(f.Layout.DPI))}
	case FormatSVG:
		c = vgsvg.New(w, h)
	default:
		return nil, &RenderError{Op: "encode", Err: fmt.Errorf("%w: %s", ErrUnknownFormat, format)}
	}

	// gonum reports drawing failures (missing fonts, bad scales) by panicking.
	defer func() {
		if r := recover(); r != nil {
			data, err = nil, &RenderError{Op: "draw", Err: fmt.Errorf("%v", r)}
		}
	}()

	plots := make([][]*plot.Plot, len(f.Panels))
	for i, p := range f.Panels {
		plots[i] = []*plot.Plot{p.Plot}
	}
	canvases := plot.Align(plots, f.Layout.tiles(len(f.Panels)), draw.New(c))
	for i := range plots {
		plots[i][0].Draw(canvases[i][0])
	}

	var buf bytes.Buffer
	if _, err := c.WriteTo(&buf); err != nil {
		return nil, &RenderError{Op: "encode", Err: err}
	}
	return buf.Bytes(), nil
}
