// Package errs defines the sentinel error values shared across photofit packages.
//
// Callers can use errors.Is to distinguish input problems (curve rejected
// before any fitting) from convergence problems (fitting attempted and
// abandoned). Errors are wrapped with context at the call site:
//
//	fmt.Errorf("%w: curve %q has %d points", errs.ErrTooFewPoints, id, n)
package errs

import "errors"

var (
	// ErrMissingColumn indicates a required column is absent from the input table.
	ErrMissingColumn = errors.New("required column missing")

	// ErrTooFewPoints indicates a curve has fewer than the minimum number of
	// usable observations for a fit.
	ErrTooFewPoints = errors.New("too few observations")

	// ErrDegenerateCi indicates all Ci values in a curve are identical, leaving
	// the fit underdetermined.
	ErrDegenerateCi = errors.New("degenerate Ci range")

	// ErrNonConvergence indicates the nonlinear optimizer did not reach a
	// minimum within the configured iteration budget.
	ErrNonConvergence = errors.New("optimizer did not converge")

	// ErrUnknownStrategy indicates an unrecognized estimation strategy name.
	ErrUnknownStrategy = errors.New("unknown estimation strategy")

	// ErrEmptyBatch indicates no curves were supplied to a batch fit.
	ErrEmptyBatch = errors.New("no curves in batch")

	// ErrEmptyCurveID indicates a curve has no identifier.
	ErrEmptyCurveID = errors.New("empty curve identifier")

	// ErrDuplicateCurve indicates two curves in a batch share an identifier.
	ErrDuplicateCurve = errors.New("duplicate curve identifier")

	// ErrSingularSystem indicates a linear system arising in estimation is
	// singular and cannot be solved.
	ErrSingularSystem = errors.New("singular linear system")
)
