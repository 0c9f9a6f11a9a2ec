package chart

import "errors"

// Sentinel errors wrapped by RenderError.
var (
	// ErrInvalidLimits is returned for axis limits with min >= max or a
	// non-positive bound on a log axis.
	ErrInvalidLimits = errors.New("invalid axis limits")

	// ErrUnknownFormat is returned for an output format other than pdf, png or svg.
	ErrUnknownFormat = errors.New("unknown output format")

	// ErrUnknownFamily is returned for a chart family name that is not predefined.
	ErrUnknownFamily = errors.New("unknown chart family")

	// ErrNoPanels is returned when a figure has nothing to draw.
	ErrNoPanels = errors.New("figure has no panels")
)

// RenderError reports a failure to draw or encode a figure.
type RenderError struct {
	Op    string // "panel", "draw", "encode", "write", ...
	Panel string // panel title, if the failure is panel specific
	Err   error
}

func (e *RenderError) Error() string {
	msg := "render " + e.Op
	if e.Panel != "" {
		msg += " " + `"` + e.Panel + `"`
	}
	return msg + ": " + e.Err.Error()
}

// Unwrap returns the wrapped error.
func (e *RenderError) Unwrap() error { return e.Err }
