// Package chart renders survey tables as annotated scatter panels and stacks
// them into figures.
//
// # Overview
//
// Rendering happens in two steps:
//
//  1. [RenderPanel] turns one [PanelSpec] (x/y columns, title, scales, limits,
//     optional y threshold) into a [Panel] backed by a gonum [plot.Plot].
//  2. [Assemble] stacks panels vertically into a [Figure], which [Figure.Render]
//     draws into PDF, PNG or SVG bytes.
//
// The styling of every row comes from [Style.MarkFor], a pure mapping from
// (instrument, row index) to a [Mark]: glyph shape, colour and size, label
// text and font, and label offset/alignment/rotation. Keeping that mapping
// separate from drawing makes it testable without inspecting rendered output.
//
// # Chart Families
//
// The two figures of the survey comparison are predefined:
//
//   - [Correlations]: three log-log panels of redshift counts, area and star RVs
//   - [Timeline]: four panels of survey metrics against start year, rows with
//     y ≤ 1 filtered out and labels rotated by 30°
//
// # Usage
//
//	fam := chart.Correlations()
//	fig, err := fam.Render(table)
//	if err != nil {
//	    return err
//	}
//	pdf, err := fig.Render(chart.FormatPDF)
//
// [plot.Plot]: gonum.org/v1/plot.Plot
package chart
