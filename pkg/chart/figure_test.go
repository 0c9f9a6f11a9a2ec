package chart

import (
	"bytes"
	"errors"
	"testing"

	"gonum.org/v1/plot/vg"
)

func smallLayout() Layout {
	l := DefaultLayout()
	l.Width, l.Height, l.DPI = 4*vg.Inch, 8*vg.Inch, 72
	return l
}

func TestFamilyRenderFormats(t *testing.T) {
	tests := []struct {
		format string
		magic  []byte
	}{
		{FormatPDF, []byte("%PDF")},
		{FormatPNG, []byte("\x89PNG")},
		{FormatSVG, []byte("<?xml")},
	}

	for _, fam := range Families() {
		fam.Layout = smallLayout()
		fig, err := fam.Render(scenario(t))
		if err != nil {
			t.Fatalf("%s: %v", fam.Name, err)
		}
		if len(fig.Panels) != len(fam.Panels) {
			t.Errorf("%s: %d panels, want %d", fam.Name, len(fig.Panels), len(fam.Panels))
		}
		for _, tt := range tests {
			t.Run(fam.Name+"/"+tt.format, func(t *testing.T) {
				data, err := fig.Render(tt.format)
				if err != nil {
					t.Fatalf("Render(%s): %v", tt.format, err)
				}
				if !bytes.HasPrefix(data, tt.magic) {
					t.Errorf("Render(%s) starts with %q", tt.format, data[:min(len(data), 8)])
				}
			})
		}
	}
}

func TestRenderPDFWithHighlightedLabel(t *testing.T) {
	for _, fam := range Families() {
		fam.Layout = smallLayout()
		fig, err := fam.Render(scenario(t))
		if err != nil {
			t.Fatal(err)
		}
		highlighted := false
		for _, pt := range fig.Panels[0].Points {
			highlighted = highlighted || pt.Mark.Highlighted
		}
		if !highlighted {
			t.Fatalf("%s: first panel has no highlighted point", fam.Name)
		}

		data, err := fig.Render(FormatPDF)
		if err != nil {
			t.Fatalf("%s: Render(pdf): %v", fam.Name, err)
		}
		if !bytes.HasPrefix(data, []byte("%PDF")) || !bytes.Contains(data, []byte("%%EOF")) {
			t.Errorf("%s: output is not a complete PDF", fam.Name)
		}
	}
}

func TestFigureRenderErrors(t *testing.T) {
	if _, err := Assemble(DefaultLayout()).Render(FormatPDF); !errors.Is(err, ErrNoPanels) {
		t.Errorf("no panels: error = %v", err)
	}

	fam := Correlations()
	fig, err := fam.Render(scenario(t))
	if err != nil {
		t.Fatal(err)
	}
	_, err = fig.Render("gif")
	var re *RenderError
	if !errors.As(err, &re) || !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("unknown format: error = %v", err)
	}
}

func TestLayoutTiles(t *testing.T) {
	l := DefaultLayout()
	for _, n := range []int{3, 4} {
		tiles := l.tiles(n)
		h := (l.Height - tiles.PadTop - tiles.PadBottom - vg.Length(n-1)*tiles.PadY) / vg.Length(n)
		if ratio := float64(tiles.PadY / h); ratio < 0.299 || ratio > 0.301 {
			t.Errorf("n=%d: spacing/panel height = %v, want 0.3", n, ratio)
		}
	}
}

func TestContentType(t *testing.T) {
	tests := map[string]string{
		FormatPDF: "application/pdf",
		FormatPNG: "image/png",
		FormatSVG: "image/svg+xml",
		"bin":     "application/octet-stream",
	}
	for format, want := range tests {
		if got := ContentType(format); got != want {
			t.Errorf("ContentType(%q) = %q, want %q", format, got, want)
		}
	}
}
