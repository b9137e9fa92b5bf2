// Package photofit fits biochemical photosynthesis models to measured leaf
// gas-exchange data.
//
// The module estimates the physiological parameters of the
// Farquhar-von Caemmerer-Berry (FvCB) model of C3 photosynthesis (maximum
// carboxylation rate Vcmax, maximum electron transport rate Jmax, day
// respiration Rd and optionally triose phosphate utilization TPU) from
// measured A-Ci curves, net assimilation versus intercellular CO2.
//
// # Package structure
//
//   - fvcb evaluates the biochemical model: candidate limitation rates,
//     temperature-corrected kinetics, and limitation classification.
//   - fit is the estimation engine: a nonlinear least-squares strategy with
//     automatic fallback to a two-stage linearized strategy, a per-curve
//     state machine, and a failure-isolating batch fitter.
//   - dataset reads tabular gas-exchange input with a configurable column
//     mapping.
//
// # Basic usage
//
// Fitting a single curve:
//
//	curve, _ := photofit.NewCurve("leaf-1", ci, a)
//	result, err := photofit.FitCurve(curve, fit.WithTemperatureCorrection(true))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result) // FitResult{leaf-1: Vcmax=... Jmax=... Rd=..., strategy=nonlinear, R²=...}
//
// Fitting a batch read from CSV:
//
//	curves, _ := dataset.ReadCSV(f, dataset.DefaultVarNames())
//	batch, err := photofit.FitBatch(curves, fit.WithWorkers(4))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, row := range batch.Summary() {
//	    fmt.Println(row)
//	}
//	if report := batch.FailureReport(); report != "" {
//	    fmt.Println(report)
//	}
//
// This package provides convenient top-level wrappers around the fit
// package. For fine-grained control, use the fit and fvcb packages directly.
package photofit

import (
	"github.com/leafgas/photofit/fit"
)

// NewCurve creates a curve from parallel Ci and A slices with leaf
// temperature and irradiance left unmeasured.
func NewCurve(id string, ci, a []float64) (*fit.Curve, error) {
	return fit.NewCurve(id, ci, a)
}

// FitCurve fits one A-Ci curve with the given options.
//
// The default strategy is nonlinear least squares with automatic fallback to
// the bilinear strategy on non-convergence. The error is non-nil only for
// input problems; see fit.Fitter.Fit for the full contract.
func FitCurve(curve *fit.Curve, opts ...fit.Option) (*fit.FitResult, error) {
	fitter, err := fit.NewFitter(opts...)
	if err != nil {
		return nil, err
	}

	return fitter.Fit(curve)
}

// FitBatch fits many curves with shared options, isolating per-curve
// failures. See fit.BatchFitter.FitAll for the full contract.
func FitBatch(curves []*fit.Curve, opts ...fit.Option) (*fit.BatchResult, error) {
	batch, err := fit.NewBatchFitter(opts...)
	if err != nil {
		return nil, err
	}

	return batch.FitAll(curves)
}
