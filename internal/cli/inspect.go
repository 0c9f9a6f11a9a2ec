package cli

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/surveyplot/pkg/chart"
	"github.com/matzehuels/surveyplot/pkg/pipeline"
	"github.com/matzehuels/surveyplot/pkg/survey"
)

func (c *CLI) inspectCommand() *cobra.Command {
	var input, highlight string
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print the survey table with derived totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.settings()
			return c.runInspect(cmd.Context(),
				firstNonEmpty(input, cfg.Input),
				firstNonEmpty(highlight, cfg.Highlight))
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "survey CSV file")
	cmd.Flags().StringVar(&highlight, "highlight", "", "instrument to highlight (default "+chart.DefaultHighlight+")")
	return cmd
}

func (c *CLI) runInspect(ctx context.Context, input, highlight string) error {
	runner := pipeline.NewRunner(nil, nil, loggerFromContext(ctx))
	tbl, hash, err := runner.Load(ctx, input)
	if err != nil {
		return err
	}

	fmt.Fprintln(c.Out, renderTable(tbl, highlight))
	printKeyValue("source", input)
	printKeyValue("rows", strconv.Itoa(tbl.Len()))
	printKeyValue("sha256", hash[:12])
	return nil
}

// renderTable draws every column of t; the highlighted instrument's row is
// shown in bold red.
func renderTable(t *survey.Table, highlight string) string {
	cols := t.Columns()
	cells := make([][]string, t.Len())
	for i := range cells {
		cells[i] = make([]string, len(cols))
	}

	for j, name := range cols {
		if vals, err := t.Numbers(name); err == nil {
			for i, v := range vals {
				cells[i][j] = formatNumber(v)
			}
			continue
		}
		vals, _ := t.Text(name)
		for i, v := range vals {
			cells[i][j] = v
		}
	}

	instruments, _ := t.Text(survey.ColInstrument)
	header := lipgloss.NewStyle().Bold(true).Foreground(colorCyan).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)
	number := cell.Align(lipgloss.Right)

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		Headers(cols...).
		Rows(cells...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			style := cell
			if cols[col] != survey.ColInstrument {
				style = number
			}
			if row >= 0 && row < len(instruments) && instruments[row] == highlight {
				style = style.Inherit(StyleHighlight)
			}
			return style
		}).
		String()
}

// formatNumber prints integers without a fraction and leaves empty cells blank.
func formatNumber(v float64) string {
	switch {
	case math.IsNaN(v):
		return ""
	case v == math.Trunc(v) && math.Abs(v) < 1e15:
		return strconv.FormatFloat(v, 'f', 0, 64)
	default:
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
}
