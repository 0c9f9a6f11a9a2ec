package chart

import (
	"image/color"
	"math"
	"testing"

	xfont "golang.org/x/image/font"
	"gonum.org/v1/plot/font/liberation"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

func TestMarkForHighlight(t *testing.T) {
	s := DefaultStyle()

	hi := s.MarkFor("Spec-S5", 0)
	lo := s.MarkFor("DESI", 1)

	if !hi.Highlighted || lo.Highlighted {
		t.Fatalf("Highlighted = %v/%v, want true/false", hi.Highlighted, lo.Highlighted)
	}
	if _, ok := hi.Glyph.Shape.(StarGlyph); !ok {
		t.Errorf("highlight shape = %T, want StarGlyph", hi.Glyph.Shape)
	}
	if _, ok := lo.Glyph.Shape.(draw.CircleGlyph); !ok {
		t.Errorf("secondary shape = %T, want CircleGlyph", lo.Glyph.Shape)
	}

	// 4x the area means 2x the radius.
	if got, want := hi.Glyph.Radius, 2*lo.Glyph.Radius; math.Abs(float64(got-want)) > 1e-9 {
		t.Errorf("highlight radius = %v, want %v", got, want)
	}
	if lo.Glyph.Radius != vg.Points(5) {
		t.Errorf("secondary radius = %v, want 5pt", lo.Glyph.Radius)
	}

	if r, g, b, _ := hi.Glyph.Color.RGBA(); r == 0 || g != 0 || b != 0 {
		t.Errorf("highlight colour = %v, want red", hi.Glyph.Color)
	}
	if r, g, b, _ := lo.Glyph.Color.RGBA(); r != 0 || g != 0 || b == 0 {
		t.Errorf("secondary colour = %v, want blue", lo.Glyph.Color)
	}
	if n := color.NRGBAModel.Convert(hi.Glyph.Color).(color.NRGBA); n.A != 153 {
		t.Errorf("marker alpha = %d, want 153", n.A)
	}

	if got := hi.Text.Handler.(text.Plain).Fonts.Lookup(hi.Text.Font, hi.Text.Font.Size).Face; got != sansFace(t, xfont.WeightBold) {
		t.Error("highlight label does not resolve to Liberation Sans Bold")
	}
	if got := lo.Text.Handler.(text.Plain).Fonts.Lookup(lo.Text.Font, lo.Text.Font.Size).Face; got != sansFace(t, xfont.WeightNormal) {
		t.Error("secondary label does not resolve to Liberation Sans Regular")
	}
	// vgpdf only finds embedded faces again when no "B" style is requested.
	if hi.Text.Font.Weight != xfont.WeightNormal {
		t.Errorf("highlight label weight = %v, want the bold face at normal weight", hi.Text.Font.Weight)
	}
	if hi.Text.Font.Size <= lo.Text.Font.Size {
		t.Errorf("highlight font %v should be larger than %v", hi.Text.Font.Size, lo.Text.Font.Size)
	}
	if hi.Label != "Spec-S5" || lo.Label != "DESI" {
		t.Errorf("labels = %q, %q", hi.Label, lo.Label)
	}
}

func TestMarkForCustomHighlight(t *testing.T) {
	s := DefaultStyle()
	s.Highlight = "DESI"
	if !s.MarkFor("DESI", 0).Highlighted {
		t.Error("custom highlight not applied")
	}
	if s.MarkFor("Spec-S5", 0).Highlighted {
		t.Error("default highlight should no longer apply")
	}
}

func TestMarkForAlternation(t *testing.T) {
	s := DefaultStyle()
	for i := 0; i < 6; i++ {
		for _, inst := range []string{"Spec-S5", "Euclid"} {
			m := s.MarkFor(inst, i)
			if i%2 == 0 {
				if m.Offset.X <= 0 || m.Text.XAlign != text.XLeft {
					t.Errorf("%s row %d: offset %v align %v, want right/left-aligned", inst, i, m.Offset.X, m.Text.XAlign)
				}
			} else {
				if m.Offset.X >= 0 || m.Text.XAlign != text.XRight {
					t.Errorf("%s row %d: offset %v align %v, want left/right-aligned", inst, i, m.Offset.X, m.Text.XAlign)
				}
			}
			if m.Offset.Y != 0 || m.Text.Rotation != 0 {
				t.Errorf("%s row %d: correlations style should not offset vertically or rotate", inst, i)
			}
		}
	}
}

func TestTimelineStyleRotation(t *testing.T) {
	s := Timeline().Style

	even := s.MarkFor("DESI", 0)
	odd := s.MarkFor("DESI", 1)

	want := 30 * math.Pi / 180
	if math.Abs(even.Text.Rotation-want) > 1e-12 || math.Abs(odd.Text.Rotation-want) > 1e-12 {
		t.Errorf("rotation = %v/%v, want %v", even.Text.Rotation, odd.Text.Rotation, want)
	}
	if even.Offset.Y >= 0 || odd.Offset.Y <= 0 {
		t.Errorf("vertical offsets = %v/%v, want negative/positive", even.Offset.Y, odd.Offset.Y)
	}
	if r, g, b, _ := even.Text.Color.RGBA(); r != 0 || g != 0 || b != 0 {
		t.Errorf("timeline secondary label colour = %v, want black", even.Text.Color)
	}
	if r, _, _, _ := s.MarkFor("Spec-S5", 0).Text.Color.RGBA(); r == 0 {
		t.Error("timeline highlight label should be red")
	}
}

func TestRadiusForArea(t *testing.T) {
	tests := []struct {
		area float64
		want vg.Length
	}{
		{100, vg.Points(5)},
		{400, vg.Points(10)},
		{36, vg.Points(3)},
	}
	for _, tt := range tests {
		if got := radiusForArea(tt.area); math.Abs(float64(got-tt.want)) > 1e-9 {
			t.Errorf("radiusForArea(%v) = %v, want %v", tt.area, got, tt.want)
		}
	}
}

func sansFace(t *testing.T, weight xfont.Weight) any {
	t.Helper()
	for _, f := range liberation.Collection() {
		if f.Font.Variant == "Sans" && f.Font.Weight == weight && f.Font.Style == xfont.StyleNormal {
			return f.Face
		}
	}
	t.Fatalf("no Liberation Sans face with weight %v", weight)
	return nil
}
