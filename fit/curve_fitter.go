package fit

import (
	"math"

	"github.com/leafgas/photofit/fvcb"
	"github.com/leafgas/photofit/internal/hash"
)

// fitState is the Fitter's progression through one curve.
type fitState int

const (
	statePending fitState = iota
	stateFitting
	stateConverged
	stateFailed
)

// narrowCiSpan is the Ci span (µbar) below which the limitation regimes are
// unlikely to separate, triggering a plausibility warning.
const narrowCiSpan = 200.0

// Fitter fits one curve at a time. It is safe for concurrent use: the
// configuration is immutable after construction and fitting never mutates
// the input curve.
type Fitter struct {
	cfg *Config
}

// NewFitter creates a curve fitter from options.
func NewFitter(opts ...Option) (*Fitter, error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}

	return &Fitter{cfg: cfg}, nil
}

// Fit estimates parameters for one curve.
//
// Fit drives an explicit state machine: Pending → Fitting(strategy) →
// Converged or Failed. When the nonlinear strategy fails, the fitter
// automatically retries with the bilinear strategy before giving up. The
// returned result is never nil; the error is non-nil only for input problems
// (too few points, degenerate Ci), in which case the result carries the
// failure for batch callers that aggregate rather than branch.
func (f *Fitter) Fit(curve *Curve) (*FitResult, error) {
	if err := curve.Validate(); err != nil {
		return failedResult(curve, f.cfg.Method, err.Error()), err
	}

	var (
		state    = statePending
		strategy = f.cfg.Method
		outcome  *EstimationOutcome
		lastErr  error
	)

	for state != stateConverged && state != stateFailed {
		switch state {
		case statePending:
			state = stateFitting

		case stateFitting:
			outcome, lastErr = strategy.estimator().estimate(curve, f.cfg)
			if lastErr == nil && outcome.Converged {
				state = stateConverged
				continue
			}
			if strategy == StrategyNonlinear {
				// ConvergenceFailure is not fatal: retry bilinearly.
				strategy = StrategyBilinear
				continue
			}
			state = stateFailed
		}
	}

	if state == stateFailed {
		reason := "estimation failed"
		if lastErr != nil {
			reason = lastErr.Error()
		}

		return failedResult(curve, strategy, reason), lastErr
	}

	return f.buildResult(curve, strategy, outcome), nil
}

// buildResult packages a converged outcome with its diagnostics.
func (f *Fitter) buildResult(curve *Curve, strategy Strategy, outcome *EstimationOutcome) *FitResult {
	cfg := f.cfg
	model := fvcb.NewModel(cfg.Constants)
	pts := workingPoints(curve, cfg)

	observed := make([]float64, len(pts))
	for i, pt := range pts {
		observed[i] = pt.a
	}
	predicted := modelPredictions(pts, outcome.Params, model, cfg)

	residuals := make([]float64, len(pts))
	fitted := make([]PredictedPoint, len(pts))
	limitations := make([]fvcb.Limitation, len(pts))
	for i, pt := range pts {
		residuals[i] = pt.a - predicted[i]
		fitted[i] = PredictedPoint{Ci: pt.ci, A: predicted[i]}
		p := atLeaf(outcome.Params, pt.tleaf, cfg)
		limitations[i] = fvcb.Classify(model.Rates(p, pt.ci, pt.tleaf, pt.ppfd))
	}

	result := &FitResult{
		CurveID:      curve.ID,
		GroupID:      hash.GroupID(curve.ID),
		Params:       outcome.Params,
		StdErrs:      outcome.StdErrs,
		Strategy:     strategy,
		Converged:    true,
		RSquared:     rSquared(observed, predicted),
		RMSE:         rmse(observed, predicted),
		Residuals:    residuals,
		Fitted:       fitted,
		Sampled:      samplePredicted(pts, outcome.Params, model, cfg),
		Limitations:  limitations,
		CiTransition: outcome.CiTransition,
		Warnings:     append([]string(nil), outcome.Warnings...),
	}

	result.Warnings = append(result.Warnings, plausibilityWarnings(pts, outcome.Params)...)

	return result
}

// samplePredicted resamples the fitted response on an even Ci grid across the
// observed range.
func samplePredicted(pts []point, base fvcb.ParameterSet, model *fvcb.Model, cfg *Config) []PredictedPoint {
	n := cfg.CurvePoints
	if n < 2 || len(pts) == 0 {
		return nil
	}

	// Representative measurement conditions for the resampled response.
	meanT, nT := 0.0, 0
	meanQ := 0.0
	for _, pt := range pts {
		if !math.IsNaN(pt.tleaf) {
			meanT += pt.tleaf
			nT++
		}
		meanQ += pt.ppfd
	}
	tleaf := math.NaN()
	if nT > 0 {
		tleaf = meanT / float64(nT)
	}
	meanQ /= float64(len(pts))

	lo, hi := pts[0].ci, pts[len(pts)-1].ci
	step := (hi - lo) / float64(n-1)

	sampled := make([]PredictedPoint, n)
	for i := range sampled {
		ci := lo + float64(i)*step
		p := atLeaf(base, tleaf, cfg)
		sampled[i] = PredictedPoint{Ci: ci, A: model.Assimilation(p, ci, tleaf, meanQ)}
	}

	return sampled
}

// plausibilityWarnings flags physically questionable fits. Warnings never
// fail a fit; the reporting layer decides what to surface.
func plausibilityWarnings(pts []point, p fvcb.ParameterSet) []string {
	var warnings []string

	if p.Rd < 0 {
		warnings = append(warnings, "estimated Rd is negative")
	}
	if p.Jmax < p.Vcmax {
		warnings = append(warnings, "Jmax below Vcmax; curve may not reach transport limitation")
	}
	if len(pts) > 0 && pts[len(pts)-1].ci-pts[0].ci < narrowCiSpan {
		warnings = append(warnings, "Ci range may be too narrow to separate limitations")
	}

	return warnings
}

func failedResult(curve *Curve, strategy Strategy, reason string) *FitResult {
	return &FitResult{
		CurveID:    curve.ID,
		GroupID:    hash.GroupID(curve.ID),
		Strategy:   strategy,
		Converged:  false,
		FailReason: reason,
	}
}
