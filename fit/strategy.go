package fit

import (
	"strings"

	"github.com/leafgas/photofit/fvcb"
)

// Strategy selects how parameters are estimated from a curve.
type Strategy int

const (
	// StrategyNonlinear fits all free parameters simultaneously by nonlinear
	// least squares against the full piecewise model. It gives honest
	// asymptotic standard errors but can fail to converge on noisy or
	// non-saturating data.
	StrategyNonlinear Strategy = iota
	// StrategyBilinear estimates parameters in two linearized stages. It is
	// non-iterative and always produces a result on valid input, at the cost
	// of no Jmax standard error and an understated Vcmax standard error.
	StrategyBilinear
)

var strategyNames = map[Strategy]string{
	StrategyNonlinear: "nonlinear",
	StrategyBilinear:  "bilinear",
}

// String returns the strategy label.
func (s Strategy) String() string {
	if name, exists := strategyNames[s]; exists {
		return name
	}

	return "unknown"
}

var strategyFromString = map[string]Strategy{
	"default":   StrategyNonlinear,
	"nonlinear": StrategyNonlinear,
	"bilinear":  StrategyBilinear,
}

// StrategyFromString returns the Strategy for a method name. "default" maps
// to the nonlinear strategy. Returns Strategy(-1) for unknown names.
func StrategyFromString(name string) Strategy {
	if s, exists := strategyFromString[strings.ToLower(name)]; exists {
		return s
	}

	return Strategy(-1)
}

// StdErrors holds per-parameter asymptotic standard errors. A NaN entry means
// the strategy cannot derive that error (the bilinear strategy never reports
// one for Jmax).
type StdErrors struct {
	Vcmax float64
	Jmax  float64
	Rd    float64
	TPU   float64
}

// EstimationOutcome is the uniform product of both strategies.
type EstimationOutcome struct {
	// Params are the point estimates. With temperature correction enabled
	// the rates are normalized to 25 °C.
	Params fvcb.ParameterSet
	// StdErrs are the per-parameter standard errors; NaN where undefined.
	StdErrs StdErrors
	// Converged reports whether the strategy reached a usable estimate.
	Converged bool
	// CiTransition is the Ci partition the bilinear strategy selected;
	// zero for the nonlinear strategy.
	CiTransition float64
	// Warnings carries physiological plausibility notes attached to the
	// estimate. They never abort a fit.
	Warnings []string
}

// estimator is the uniform contract both strategies implement.
type estimator interface {
	estimate(c *Curve, cfg *Config) (*EstimationOutcome, error)
}

// estimator returns the concrete estimator for the strategy.
func (s Strategy) estimator() estimator {
	switch s {
	case StrategyBilinear:
		return &bilinearEstimator{}
	default:
		return &nonlinearEstimator{}
	}
}
