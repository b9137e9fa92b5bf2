package fit

import (
	"fmt"
	"strings"

	"github.com/leafgas/photofit/fvcb"
)

// PredictedPoint is one (Ci, A) pair of the fitted response, suitable for
// overlaying on the measured scatter.
type PredictedPoint struct {
	Ci float64
	A  float64
}

// FitResult is the immutable outcome of fitting one curve. It is created
// once by the Fitter and never modified afterwards.
type FitResult struct {
	// CurveID is the grouping label of the fitted curve.
	CurveID string
	// GroupID is the stable 64-bit hash of CurveID.
	GroupID uint64
	// Params are the estimated (or fixed) parameters. With temperature
	// correction enabled, rates are normalized to 25 °C.
	Params fvcb.ParameterSet
	// StdErrs are the per-parameter standard errors; NaN where the strategy
	// cannot derive one.
	StdErrs StdErrors
	// Strategy records which estimation strategy produced the result,
	// including after an automatic fallback.
	Strategy Strategy
	// Converged is false only when every applicable strategy failed.
	Converged bool
	// FailReason describes the terminal failure when Converged is false.
	FailReason string
	// RSquared and RMSE describe goodness of fit over the curve's points.
	RSquared float64
	RMSE     float64
	// Residuals are observed minus fitted A, in ascending-Ci order.
	Residuals []float64
	// Fitted are the model predictions at each observed Ci, ascending.
	Fitted []PredictedPoint
	// Sampled is a dense resampling of the fitted response across the
	// observed Ci range, for plotting.
	Sampled []PredictedPoint
	// Limitations labels the binding regime at each observed point.
	Limitations []fvcb.Limitation
	// CiTransition is the regime partition the bilinear strategy used;
	// zero otherwise.
	CiTransition float64
	// Warnings carries physiological plausibility notes. They are
	// informational and never abort a fit.
	Warnings []string
}

// String returns the conventional one-line summary: parameters, strategy
// and goodness of fit.
func (r *FitResult) String() string {
	if !r.Converged {
		return fmt.Sprintf("FitResult{%s: failed (%s)}", r.CurveID, r.FailReason)
	}

	return fmt.Sprintf("FitResult{%s: %s, strategy=%s, R²=%.4f}", r.CurveID, r.Params, r.Strategy, r.RSquared)
}

// Summary returns the parameter block in a printable multi-line form,
// including standard errors and attached warnings.
func (r *FitResult) Summary() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Curve %s (strategy %s, converged %v)\n", r.CurveID, r.Strategy, r.Converged)
	if !r.Converged {
		fmt.Fprintf(&b, "  failure: %s\n", r.FailReason)
		return b.String()
	}

	fmt.Fprintf(&b, "  Vcmax = %8.2f (SE %.2f)\n", r.Params.Vcmax, r.StdErrs.Vcmax)
	fmt.Fprintf(&b, "  Jmax  = %8.2f (SE %.2f)\n", r.Params.Jmax, r.StdErrs.Jmax)
	fmt.Fprintf(&b, "  Rd    = %8.2f (SE %.2f)\n", r.Params.Rd, r.StdErrs.Rd)
	if r.Params.TPU > 0 {
		fmt.Fprintf(&b, "  TPU   = %8.2f (SE %.2f)\n", r.Params.TPU, r.StdErrs.TPU)
	}
	fmt.Fprintf(&b, "  R² = %.4f, RMSE = %.4f\n", r.RSquared, r.RMSE)
	for _, w := range r.Warnings {
		fmt.Fprintf(&b, "  warning: %s\n", w)
	}

	return b.String()
}
