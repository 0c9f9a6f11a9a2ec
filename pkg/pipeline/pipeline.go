// Package pipeline runs the load → derive → render → write flow shared by the
// CLI and the HTTP server.
//
// # Stages
//
//  1. Load: read the survey CSV and hash its bytes
//  2. Derive: add total_redshifts once, before any panel is drawn
//  3. Render: build the chart family's figure and encode it per format,
//     consulting the artifact cache first
//  4. Write: replace each output file atomically, then optionally publish it
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Family:  chart.FamilyCorrelations,
//	    Formats: []string{chart.FormatPDF},
//	})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(result.Paths[chart.FormatPDF]) // survey_correlations.pdf
//
// With no options beyond Family, a run reads data/all_surveys_specs5.csv and
// writes the family's fixed PDF name in the working directory.
package pipeline

import (
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/surveyplot/pkg/chart"
	"github.com/matzehuels/surveyplot/pkg/survey"
)

// =============================================================================
// Default Values
// =============================================================================

// DefaultInput is the dataset read when Options.Input is empty.
const DefaultInput = survey.DefaultPath

// DefaultFormat is the output format when Options.Formats is empty.
const DefaultFormat = chart.FormatPDF

// =============================================================================
// Options
// =============================================================================

// Options configures one run over one chart family.
type Options struct {
	Family    string   `json:"family"`
	Input     string   `json:"input,omitempty"`
	Output    string   `json:"output,omitempty"` // output path; the extension is swapped per format
	Formats   []string `json:"formats,omitempty"`
	Highlight string   `json:"highlight,omitempty"`
	Refresh   bool     `json:"refresh,omitempty"` // ignore cached artifacts

	// SkipWrite keeps artifacts in memory only. The server sets it.
	SkipWrite bool `json:"-"`

	Logger *log.Logger `json:"-"`

	validated bool
}

// Result is the outcome of a run.
type Result struct {
	RunID     uuid.UUID
	Family    string
	InputHash string

	// Artifacts holds the encoded figure keyed by format.
	Artifacts map[string][]byte

	// Paths holds the written file per format. Empty when SkipWrite is set.
	Paths map[string]string

	// Published holds the object storage location per format.
	Published map[string]string

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats holds timings and sizes of a run.
type Stats struct {
	Rows       int
	LoadTime   time.Duration
	RenderTime time.Duration
	WriteTime  time.Duration
}

// CacheInfo records which formats came from the artifact cache.
type CacheInfo struct {
	Hits   []string
	Misses []string
}

// RenderHit reports whether every artifact came from the cache.
func (c CacheInfo) RenderHit() bool { return len(c.Misses) == 0 && len(c.Hits) > 0 }

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that format is one of pdf, png or svg.
func ValidateFormat(format string) error {
	if !chart.ValidFormats[format] {
		return fmt.Errorf("%w: %q (must be one of: pdf, png, svg)", chart.ErrUnknownFormat, format)
	}
	return nil
}

// ValidateFormats checks every format.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateFamily checks that name is a predefined chart family.
func ValidateFamily(name string) error {
	if _, ok := chart.Lookup(name); !ok {
		return fmt.Errorf("%w %q (must be one of: %s)", chart.ErrUnknownFamily, name, strings.Join(chart.FamilyNames(), ", "))
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks the options and fills in defaults. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := ValidateFamily(o.Family); err != nil {
		return err
	}
	if o.Input == "" {
		o.Input = DefaultInput
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	o.Formats = dedupe(o.Formats)
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Highlight == "" {
		o.Highlight = chart.DefaultHighlight
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// OutputPath returns where the artifact of format is written. Without an
// explicit Output the family's fixed file name is used.
func (o *Options) OutputPath(format string) string {
	out := o.Output
	if out == "" {
		if f, ok := chart.Lookup(o.Family); ok {
			out = f.Output
		}
	}
	ext := filepath.Ext(out)
	if strings.TrimPrefix(ext, ".") == format {
		return out
	}
	return strings.TrimSuffix(out, ext) + "." + format
}

// dedupe drops repeated formats, keeping the first occurrence of each.
func dedupe(formats []string) []string {
	out := make([]string, 0, len(formats))
	for _, f := range formats {
		if !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out
}
