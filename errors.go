package kson

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by chart loading and score-tick generation. Each
// is wrapped with fmt.Errorf("%w: ...") around a reason string so callers
// can errors.Is against the sentinel while still seeing the underlying
// reason.
var (
	// ErrChartParse means the KSH/KSON text could not be parsed at all.
	ErrChartParse = errors.New("kson: chart parse error")

	// ErrMalformedChart means the chart parsed but violates an
	// invariant from the data model (e.g. a laser section with fewer
	// than two graph points).
	ErrMalformedChart = errors.New("kson: malformed chart")
)

func wrapMalformed(reason string) error {
	return fmt.Errorf("%w: %s", ErrMalformedChart, reason)
}

func wrapParse(reason string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrChartParse, fmt.Sprintf(reason, args...))
}
