package survey

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"
)

// Column names of the survey dataset.
const (
	ColInstrument     = "instrument"
	ColStartYear      = "start_year"
	ColArea           = "area"
	ColGalaxyZLow     = "galaxy_z_lt_2.1"
	ColGalaxyZHigh    = "galaxy_z_gt_2.1"
	ColStarRVs        = "star_rvs"
	ColTotalRedshifts = "total_redshifts"
)

// DefaultPath is where the dataset lives relative to the working directory.
const DefaultPath = "data/all_surveys_specs5.csv"

// numericColumns must be present and parse as non-negative numbers.
var numericColumns = []string{ColStartYear, ColArea, ColGalaxyZLow, ColGalaxyZHigh, ColStarRVs}

// Table is an in-memory, column-oriented view of the dataset.
// Row order and column order follow the source file.
type Table struct {
	columns []string
	text    map[string][]string
	numbers map[string][]float64
	rows    int
}

// Record is a typed view of one row.
type Record struct {
	Index       int // position in the table, 0-based
	Instrument  string
	StartYear   float64
	Area        float64
	GalaxyZLow  float64
	GalaxyZHigh float64
	StarRVs     float64
}

// TotalRedshifts returns GalaxyZLow + GalaxyZHigh.
func (r Record) TotalRedshifts() float64 { return r.GalaxyZLow + r.GalaxyZHigh }

// Load reads the dataset at path. The file is closed before Load returns.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &DataLoadError{Path: path, Err: err}
	}
	return LoadBytes(path, data)
}

// LoadBytes parses data already read from path. path only labels errors.
func LoadBytes(path string, data []byte) (*Table, error) {
	t, err := Read(bytes.NewReader(data))
	if err != nil {
		var dle *DataLoadError
		if errors.As(err, &dle) {
			dle.Path = path
			return nil, dle
		}
		return nil, &DataLoadError{Path: path, Err: err}
	}
	return t, nil
}

// utf8BOM is skipped at the start of the input; spreadsheet exports often
// carry one.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Read parses CSV data with a header row from r.
func Read(r io.Reader) (*Table, error) {
	br := bufio.NewReader(r)
	if b, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(b, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	cr := csv.NewReader(br)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, &DataLoadError{Err: fmt.Errorf("%w: empty input", ErrMalformed)}
	}
	if err != nil {
		return nil, &DataLoadError{Err: fmt.Errorf("%w: %v", ErrMalformed, err)}
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	if i := slices.Index(header, ""); i >= 0 {
		return nil, &DataLoadError{Err: fmt.Errorf("%w: empty header at position %d", ErrMalformed, i+1)}
	}
	for i, name := range header {
		if slices.Index(header, name) != i {
			return nil, &DataLoadError{Column: name, Err: fmt.Errorf("%w: duplicate column at position %d", ErrMalformed, i+1)}
		}
	}

	var cells [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &DataLoadError{Err: fmt.Errorf("%w: %v", ErrMalformed, err)}
		}
		cells = append(cells, rec)
	}

	return build(header, cells)
}

func build(header []string, cells [][]string) (*Table, error) {
	t := &Table{
		columns: slices.Clone(header),
		text:    make(map[string][]string),
		numbers: make(map[string][]float64),
		rows:    len(cells),
	}

	for _, name := range append([]string{ColInstrument}, numericColumns...) {
		if !slices.Contains(header, name) {
			return nil, missingColumn(name)
		}
	}

	for col, name := range header {
		raw := make([]string, len(cells))
		for row, rec := range cells {
			raw[row] = strings.TrimSpace(rec[col])
		}

		if name == ColInstrument {
			for row, v := range raw {
				if v == "" {
					return nil, &DataLoadError{Column: name, Row: row + 1, Err: fmt.Errorf("%w: empty instrument", ErrInvalidRecord)}
				}
			}
			t.text[name] = raw
			continue
		}

		values, badRow := parseNumbers(raw)
		if badRow < 0 {
			t.numbers[name] = values
			continue
		}
		if slices.Contains(numericColumns, name) {
			return nil, &DataLoadError{Column: name, Row: badRow + 1, Err: fmt.Errorf("%w: not a number: %q", ErrMalformed, raw[badRow])}
		}
		t.text[name] = raw
	}

	for _, name := range numericColumns {
		for row, v := range t.numbers[name] {
			if v < 0 {
				return nil, &DataLoadError{Column: name, Row: row + 1, Err: fmt.Errorf("%w: negative value %g", ErrInvalidRecord, v)}
			}
		}
	}
	return t, nil
}

// parseNumbers converts every cell to float64; empty cells become NaN.
// It returns the index of the first unparsable cell, or -1.
func parseNumbers(raw []string) ([]float64, int) {
	out := make([]float64, len(raw))
	for i, s := range raw {
		if s == "" {
			out[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, i
		}
		out[i] = v
	}
	return out, -1
}

// Len returns the number of rows.
func (t *Table) Len() int { return t.rows }

// Columns returns the column names in source order, including derived columns.
func (t *Table) Columns() []string { return slices.Clone(t.columns) }

// HasColumn reports whether name exists.
func (t *Table) HasColumn(name string) bool { return slices.Contains(t.columns, name) }

// Numbers returns the values of a numeric column. The slice must not be modified.
func (t *Table) Numbers(name string) ([]float64, error) {
	v, ok := t.numbers[name]
	if !ok {
		return nil, missingColumn(name)
	}
	return v, nil
}

// Text returns the values of a text column. The slice must not be modified.
func (t *Table) Text(name string) ([]string, error) {
	v, ok := t.text[name]
	if !ok {
		return nil, missingColumn(name)
	}
	return v, nil
}

// Derive sets column name to the element-wise sum of numeric columns a and b.
// Calling it again recomputes the same values.
func (t *Table) Derive(name, a, b string) error {
	av, err := t.Numbers(a)
	if err != nil {
		return err
	}
	bv, err := t.Numbers(b)
	if err != nil {
		return err
	}
	if _, isText := t.text[name]; isText {
		return &DataLoadError{Column: name, Err: fmt.Errorf("%w: cannot overwrite text column", ErrMalformed)}
	}

	sum := make([]float64, t.rows)
	for i := range sum {
		sum[i] = av[i] + bv[i]
	}
	if !t.HasColumn(name) {
		t.columns = append(t.columns, name)
	}
	t.numbers[name] = sum
	return nil
}

// Records returns a typed view of every row.
func (t *Table) Records() []Record {
	inst := t.text[ColInstrument]
	year := t.numbers[ColStartYear]
	area := t.numbers[ColArea]
	low := t.numbers[ColGalaxyZLow]
	high := t.numbers[ColGalaxyZHigh]
	rvs := t.numbers[ColStarRVs]

	out := make([]Record, t.rows)
	for i := range out {
		out[i] = Record{
			Index:       i,
			Instrument:  inst[i],
			StartYear:   year[i],
			Area:        area[i],
			GalaxyZLow:  low[i],
			GalaxyZHigh: high[i],
			StarRVs:     rvs[i],
		}
	}
	return out
}

// FromRecords builds a table with the standard columns from typed records.
func FromRecords(records []Record) *Table {
	header := append([]string{ColInstrument}, numericColumns...)
	t := &Table{
		columns: header,
		text:    map[string][]string{ColInstrument: make([]string, len(records))},
		numbers: make(map[string][]float64, len(numericColumns)),
		rows:    len(records),
	}
	for _, name := range numericColumns {
		t.numbers[name] = make([]float64, len(records))
	}
	for i, r := range records {
		t.text[ColInstrument][i] = r.Instrument
		t.numbers[ColStartYear][i] = r.StartYear
		t.numbers[ColArea][i] = r.Area
		t.numbers[ColGalaxyZLow][i] = r.GalaxyZLow
		t.numbers[ColGalaxyZHigh][i] = r.GalaxyZHigh
		t.numbers[ColStarRVs][i] = r.StarRVs
	}
	return t
}
