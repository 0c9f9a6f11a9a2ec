package survey

import (
	"errors"
	"fmt"
)

// Sentinel errors wrapped by DataLoadError.
var (
	// ErrMissingColumn is returned when a required or requested column does not exist.
	ErrMissingColumn = errors.New("missing column")

	// ErrMalformed is returned for rows that cannot be parsed (ragged rows, bad numbers).
	ErrMalformed = errors.New("malformed data")

	// ErrInvalidRecord is returned when a row violates a record invariant
	// (empty instrument, negative numeric value).
	ErrInvalidRecord = errors.New("invalid record")
)

// DataLoadError reports a failure to load or access survey data.
type DataLoadError struct {
	Path   string // source file, empty when reading from a stream
	Column string // offending column, if any
	Row    int    // 1-based data row, 0 when not row specific
	Err    error
}

func (e *DataLoadError) Error() string {
	msg := "load survey data"
	if e.Path != "" {
		msg += " " + e.Path
	}
	switch {
	case e.Row > 0 && e.Column != "":
		msg += fmt.Sprintf(": row %d column %q", e.Row, e.Column)
	case e.Row > 0:
		msg += fmt.Sprintf(": row %d", e.Row)
	case e.Column != "":
		msg += fmt.Sprintf(": column %q", e.Column)
	}
	return msg + ": " + e.Err.Error()
}

// Unwrap returns the wrapped error.
func (e *DataLoadError) Unwrap() error { return e.Err }

func missingColumn(name string) error {
	return &DataLoadError{Column: name, Err: ErrMissingColumn}
}
