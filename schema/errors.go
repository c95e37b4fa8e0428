package schema

import (
	"errors"
	"fmt"
)

// ErrInsufficientData marks a computation with too little input to be meaningful.
// The engines never return it; they produce empty results instead. Host layers
// use it to signal "no data" to their callers.
var ErrInsufficientData = errors.New("insufficient data")

// ConfigurationError reports an invalid engine configuration.
// It is raised before any computation or write begins.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration %s: %s", e.Field, e.Reason)
}

// InvariantViolationError reports mindshare shares that do not add up to the fixed total.
// It aborts the affected unit and must never be swallowed.
type InvariantViolationError struct {
	Window Window
	Date   string
	Sum    int
	Want   int
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("mindshare invariant violated for window %s on %s: sum is %d, want %d or 0", e.Window, e.Date, e.Sum, e.Want)
}

// NonConvergenceWarning is carried on authority results when PageRank hit its iteration cap.
// It is informational; the values of the last iteration are still used.
type NonConvergenceWarning struct {
	Iterations int
	Delta      float64
	Tolerance  float64
}

func (w *NonConvergenceWarning) String() string {
	return fmt.Sprintf("pagerank did not converge after %d iterations (delta %.3g > tolerance %.3g)", w.Iterations, w.Delta, w.Tolerance)
}
