package chart

import (
	"slices"

	"github.com/matzehuels/surveyplot/pkg/survey"
)

// Family names.
const (
	FamilyCorrelations = "correlations"
	FamilyTimeline     = "timeline"
)

// Family is a fixed list of panels rendered into one figure.
type Family struct {
	Name   string
	Output string // default output path
	Panels []PanelSpec
	Style  Style
	Layout Layout
}

// Correlations compares redshift counts, survey area and star RVs on log-log panels.
func Correlations() Family {
	x := &Limits{Min: 1e5, Max: 1e9}
	return Family{
		Name:   FamilyCorrelations,
		Output: "survey_correlations.pdf",
		Style:  DefaultStyle(),
		Layout: DefaultLayout(),
		Panels: []PanelSpec{
			{
				X: survey.ColTotalRedshifts, Y: survey.ColArea,
				Title:  "Survey Area vs. Total Galaxy Redshifts",
				XLabel: "Total Galaxy Redshifts (log scale)",
				YLabel: "Area [deg2] (log scale)",
				XScale: Log, YScale: Log,
				XLimits: x,
			},
			{
				X: survey.ColGalaxyZLow, Y: survey.ColGalaxyZHigh,
				Title:  "Galaxy Redshifts (z > 2.1) vs. Galaxy Redshifts (z < 2.1)",
				XLabel: "Galaxy Redshifts z < 2.1 (log scale)",
				YLabel: "Galaxy Redshifts z > 2.1 (log scale)",
				XScale: Log, YScale: Log,
				XLimits: x,
				YLimits: &Limits{Min: 1e4, Max: 1e9},
			},
			{
				X: survey.ColTotalRedshifts, Y: survey.ColStarRVs,
				Title:  "Stellar RVs vs. Total Galaxy Redshifts",
				XLabel: "Total Galaxy Redshifts (log scale)",
				YLabel: "Number of Star RVs (log scale)",
				XScale: Log, YScale: Log,
				XLimits: x,
				YLimits: &Limits{Min: 1e5, Max: 1e9},
			},
		},
	}
}

// Timeline plots survey metrics against start year. Rows with a value of
// 1 or less are dropped from each panel.
func Timeline() Family {
	style := DefaultStyle()
	style.SecondaryLabelColor = colorBlack
	style.VerticalOffset = 0.1
	style.Rotation = 30
	style.SecondaryArea = 36
	style.HighlightScale = 400.0 / 36

	threshold := 1.0
	years := &Limits{Min: 1998, Max: 2043}
	panel := func(y, title, ylabel string) PanelSpec {
		return PanelSpec{
			X: survey.ColStartYear, Y: y,
			Title:      title,
			XLabel:     "Start Year",
			YLabel:     ylabel,
			XScale:     Linear,
			YScale:     Log,
			XLimits:    years,
			YThreshold: &threshold,
		}
	}

	return Family{
		Name:   FamilyTimeline,
		Output: "survey_stats_comparison.pdf",
		Style:  style,
		Layout: DefaultLayout(),
		Panels: []PanelSpec{
			panel(survey.ColGalaxyZHigh, "Galaxy Redshifts (z > 2.1) by Survey Start Year", "Number of Galaxies (log scale)"),
			panel(survey.ColGalaxyZLow, "Galaxy Redshifts (z < 2.1) by Survey Start Year", "Number of Galaxies (log scale)"),
			panel(survey.ColStarRVs, "Star RVs by Survey Start Year", "Number of Star RVs (log scale)"),
			panel(survey.ColArea, "Survey Area [deg²] by Start Year", "Area [deg²] (log scale)"),
		},
	}
}

// Families returns every predefined family.
func Families() []Family {
	return []Family{Correlations(), Timeline()}
}

// FamilyNames returns the names of the predefined families.
func FamilyNames() []string {
	var names []string
	for _, f := range Families() {
		names = append(names, f.Name)
	}
	return names
}

// Lookup returns the predefined family with the given name.
func Lookup(name string) (Family, bool) {
	fams := Families()
	i := slices.IndexFunc(fams, func(f Family) bool { return f.Name == name })
	if i < 0 {
		return Family{}, false
	}
	return fams[i], true
}

// Columns returns every column the family's panels read.
func (f Family) Columns() []string {
	cols := []string{survey.ColInstrument}
	for _, p := range f.Panels {
		for _, c := range []string{p.X, p.Y} {
			if !slices.Contains(cols, c) {
				cols = append(cols, c)
			}
		}
	}
	return cols
}

// Render draws every panel from t and assembles the figure. Derived columns
// the panels need must already exist on t.
func (f Family) Render(t *survey.Table) (*Figure, error) {
	panels := make([]*Panel, 0, len(f.Panels))
	for _, spec := range f.Panels {
		p, err := RenderPanel(t, spec, f.Style)
		if err != nil {
			return nil, err
		}
		panels = append(panels, p)
	}
	return Assemble(f.Layout, panels...), nil
}
