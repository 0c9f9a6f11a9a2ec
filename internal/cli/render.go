package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/surveyplot/pkg/chart"
	"github.com/matzehuels/surveyplot/pkg/pipeline"
)

// chartOpts holds the flags shared by the chart commands.
type chartOpts struct {
	input     string // survey CSV; the config or data/all_surveys_specs5.csv when empty
	output    string // output path; the family's fixed name when empty
	formats   string // comma-separated: pdf (default), png, svg
	highlight string // highlighted instrument
	noCache   bool
	refresh   bool
}

func (c *CLI) correlationsCommand() *cobra.Command {
	return c.chartCommand(chart.FamilyCorrelations,
		"Render area, redshift and star RV correlations (survey_correlations.pdf)")
}

func (c *CLI) timelineCommand() *cobra.Command {
	return c.chartCommand(chart.FamilyTimeline,
		"Render survey metrics by start year (survey_stats_comparison.pdf)")
}

func (c *CLI) chartCommand(family, short string) *cobra.Command {
	var opts chartOpts
	cmd := &cobra.Command{
		Use:   family,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCharts(cmd.Context(), []string{family}, opts)
		},
	}
	addChartFlags(cmd, &opts)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (extension is replaced per format)")
	return cmd
}

// allCommand renders both families. Output paths come from the config.
func (c *CLI) allCommand() *cobra.Command {
	var opts chartOpts
	cmd := &cobra.Command{
		Use:   "all",
		Short: "Render every chart family",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCharts(cmd.Context(), chart.FamilyNames(), opts)
		},
	}
	addChartFlags(cmd, &opts)
	return cmd
}

func addChartFlags(cmd *cobra.Command, opts *chartOpts) {
	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "survey CSV file")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): pdf (default), png, svg (comma-separated)")
	cmd.Flags().StringVar(&opts.highlight, "highlight", "", "instrument to highlight (default "+chart.DefaultHighlight+")")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the artifact cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "re-render even when a cached artifact exists")
}

func (c *CLI) runCharts(ctx context.Context, families []string, opts chartOpts) error {
	logger := loggerFromContext(ctx)
	cfg := c.settings()

	formats := parseFormats(opts.formats)
	if err := pipeline.ValidateFormats(formats); err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	for _, family := range families {
		if err := ctx.Err(); err != nil {
			return err
		}

		po := pipeline.Options{
			Family:    family,
			Input:     firstNonEmpty(opts.input, cfg.Input),
			Output:    firstNonEmpty(opts.output, cfg.OutputFor(family)),
			Formats:   formats,
			Highlight: firstNonEmpty(opts.highlight, cfg.Highlight),
			Refresh:   opts.refresh,
			Logger:    logger,
		}

		prog := newProgress(logger)
		res, err := runner.Execute(ctx, po)
		if err != nil {
			return fmt.Errorf("%s: %w", family, err)
		}
		prog.done("Rendered " + family)

		printSuccess("%s", family)
		for _, format := range po.Formats {
			printFile(res.Paths[format])
			if loc := res.Published[format]; loc != "" {
				printDetail("published to %s", loc)
			}
		}
		fam, _ := chart.Lookup(family)
		printStats(res.Stats.Rows, len(fam.Panels), res.CacheInfo.RenderHit())
	}
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
