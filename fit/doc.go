// Package fit estimates FvCB model parameters from measured A-Ci curves.
//
// The engine offers two interchangeable estimation strategies behind one
// contract:
//
//   - StrategyNonlinear (the default) fits Vcmax, Jmax, Rd and optionally TPU
//     simultaneously by nonlinear least squares against the full piecewise
//     model, with starting values derived from the data and asymptotic
//     standard errors from the local covariance.
//   - StrategyBilinear partitions observations into Rubisco- and
//     transport-limited regimes at a Ci transition, fits each regime's
//     linearized equation by ordinary regression, and back-substitutes the
//     parameters. It never fails to converge on valid input, but derives no
//     Jmax standard error and understates the Vcmax one.
//
// Fitter coordinates a single curve through an explicit state machine and
// falls back from the nonlinear to the bilinear strategy automatically on
// non-convergence. BatchFitter runs many curves through a bounded worker
// pool, isolating failures per curve and producing a coefficient summary
// table plus a failure report.
//
// # Basic usage
//
//	curve, _ := fit.NewCurve("leaf-1", ci, a)
//	fitter, _ := fit.NewFitter(fit.WithTemperatureCorrection(true))
//	result, err := fitter.Fit(curve)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result) // Vcmax=... Jmax=... Rd=..., strategy=nonlinear
//
// Failures are explicit: a result always reports Converged, the strategy
// that produced it, and any plausibility warnings. Nothing in this package
// signals failure through NaN sentinels.
package fit
