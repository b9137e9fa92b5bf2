package fit

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"

	"github.com/leafgas/photofit/errs"
	"github.com/leafgas/photofit/fvcb"
)

// nonlinearEstimator fits all free parameters simultaneously by minimizing
// the sum of squared residuals of the full piecewise model.
type nonlinearEstimator struct{}

// paramLayout maps free parameters to slots in the optimizer vector.
// A slot of -1 means the parameter is fixed or not estimated.
type paramLayout struct {
	vcmax, jmax, rd, tpu int
	n                    int
}

func layoutFor(cfg *Config, fixedRd *float64) paramLayout {
	lay := paramLayout{vcmax: -1, jmax: -1, rd: -1, tpu: -1}

	if cfg.FixedVcmax == nil {
		lay.vcmax = lay.n
		lay.n++
	}
	if cfg.FixedJmax == nil {
		lay.jmax = lay.n
		lay.n++
	}
	if fixedRd == nil {
		lay.rd = lay.n
		lay.n++
	}
	if cfg.FitTPU {
		lay.tpu = lay.n
		lay.n++
	}

	return lay
}

// assemble builds the base parameter set (25 °C values when temperature
// correction is on) from the optimizer vector plus any fixed values.
func (lay paramLayout) assemble(x []float64, cfg *Config, fixedRd *float64) fvcb.ParameterSet {
	var p fvcb.ParameterSet

	if lay.vcmax >= 0 {
		p.Vcmax = x[lay.vcmax]
	} else {
		p.Vcmax = *cfg.FixedVcmax
	}
	if lay.jmax >= 0 {
		p.Jmax = x[lay.jmax]
	} else {
		p.Jmax = *cfg.FixedJmax
	}
	if lay.rd >= 0 {
		p.Rd = x[lay.rd]
	} else {
		p.Rd = *fixedRd
	}
	if lay.tpu >= 0 {
		p.TPU = x[lay.tpu]
	}

	return p
}

// atLeaf scales the base rates to leaf temperature when temperature
// correction is enabled. Rd and TPU are left uncorrected.
func atLeaf(base fvcb.ParameterSet, tleaf float64, cfg *Config) fvcb.ParameterSet {
	if !cfg.Tcorrect || math.IsNaN(tleaf) {
		return base
	}

	p := base
	p.Vcmax *= cfg.Constants.VcmaxTempFactor(tleaf)
	p.Jmax *= cfg.Constants.JmaxTempFactor(tleaf)

	return p
}

// resolveFixedRd returns the Rd to pin, preferring an explicit option over
// the mean of measured per-point values. Nil means Rd is estimated.
func resolveFixedRd(c *Curve, cfg *Config) *float64 {
	if cfg.FixedRd != nil {
		return cfg.FixedRd
	}
	if rd := measuredRd(c); isFinite(rd) {
		return &rd
	}

	return nil
}

func (e *nonlinearEstimator) estimate(c *Curve, cfg *Config) (*EstimationOutcome, error) {
	pts := workingPoints(c, cfg)
	if len(pts) < MinPoints {
		return nil, fmt.Errorf("%w: %d usable points after corrections", errs.ErrTooFewPoints, len(pts))
	}

	model := fvcb.NewModel(cfg.Constants)
	fixedRd := resolveFixedRd(c, cfg)
	lay := layoutFor(cfg, fixedRd)
	if lay.n == 0 {
		return nil, fmt.Errorf("%w: all parameters fixed, nothing to estimate", errs.ErrNonConvergence)
	}

	x0 := startVector(pts, model, cfg, fixedRd, lay)

	residuals := func(dst []float64, x []float64) {
		base := lay.assemble(x, cfg, fixedRd)
		for i, pt := range pts {
			p := atLeaf(base, pt.tleaf, cfg)
			dst[i] = model.Assimilation(p, pt.ci, pt.tleaf, pt.ppfd) - pt.a
		}
	}

	resid := make([]float64, len(pts))
	objective := func(x []float64) float64 {
		residuals(resid, x)
		ssr := 0.0
		for _, r := range resid {
			ssr += r * r
		}
		if math.IsNaN(ssr) {
			// NaN poisons Nelder-Mead simplex comparisons.
			return math.Inf(1)
		}

		return ssr
	}

	method, err := optimizerFor(cfg.OptimizerMethod)
	if err != nil {
		return nil, err
	}

	problem := optimize.Problem{Func: objective}
	// Derivative-based methods need Grad (and Newton a Hessian); gonum
	// panics rather than erroring when the problem omits a needed function,
	// so supply finite-difference derivatives of the objective.
	if uses, err := method.Uses(optimize.Available{Grad: true, Hess: true}); err == nil {
		if uses.Grad {
			problem.Grad = func(grad, x []float64) {
				fd.Gradient(grad, objective, x, nil)
			}
		}
		if uses.Hess {
			problem.Hess = func(hess *mat.SymDense, x []float64) {
				fd.Hessian(hess, objective, x, nil)
			}
		}
	}
	settings := &optimize.Settings{MajorIterations: cfg.MaxIterations}

	result, err := optimize.Minimize(problem, x0, settings, method)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrNonConvergence, err)
	}

	switch result.Status {
	case optimize.IterationLimit, optimize.FunctionEvaluationLimit, optimize.RuntimeLimit, optimize.Failure, optimize.NotTerminated:
		return nil, fmt.Errorf("%w: optimizer status %v after %d iterations", errs.ErrNonConvergence, result.Status, result.Stats.MajorIterations)
	}

	base := lay.assemble(result.X, cfg, fixedRd)
	if !isFinite(base.Vcmax) || !isFinite(base.Jmax) || !isFinite(base.Rd) || base.Vcmax <= 0 || base.Jmax <= 0 {
		return nil, fmt.Errorf("%w: implausible minimum (%s)", errs.ErrNonConvergence, base)
	}

	outcome := &EstimationOutcome{
		Params:    base,
		StdErrs:   StdErrors{Vcmax: math.NaN(), Jmax: math.NaN(), Rd: math.NaN(), TPU: math.NaN()},
		Converged: true,
	}

	ses, seWarn := asymptoticStdErrors(residuals, result.X, lay, len(pts))
	if seWarn != "" {
		outcome.Warnings = append(outcome.Warnings, seWarn)
	}
	if lay.vcmax >= 0 {
		outcome.StdErrs.Vcmax = ses[lay.vcmax]
	}
	if lay.jmax >= 0 {
		outcome.StdErrs.Jmax = ses[lay.jmax]
	}
	if lay.rd >= 0 {
		outcome.StdErrs.Rd = ses[lay.rd]
	}
	if lay.tpu >= 0 {
		outcome.StdErrs.TPU = ses[lay.tpu]
	}

	return outcome, nil
}

// startVector derives optimizer starting values from the data. The optimizer
// is local, so each guess comes from a cheap linearization of the regime the
// parameter dominates: Rd from extrapolating the low-Ci slope down to the
// compensation point, Vcmax from the Rubisco transform over the lower half of
// the Ci range, Jmax from the transport transform over the upper half.
func startVector(pts []point, model *fvcb.Model, cfg *Config, fixedRd *float64, lay paramLayout) []float64 {
	rd0 := 1.5
	if fixedRd != nil {
		rd0 = *fixedRd
	} else if len(pts) >= 2 {
		low := pts[:min(3, len(pts))]
		xs := make([]float64, len(low))
		ys := make([]float64, len(low))
		for i, pt := range low {
			xs[i] = pt.ci
			ys[i] = pt.a
		}
		a0, b0, _, _ := olsFit(xs, ys, false)
		gammaStar, _ := model.Kinetics(fvcb.ParameterSet{}, low[0].tleaf)
		guess := -(a0 + b0*gammaStar)
		if isFinite(guess) {
			rd0 = clamp(guess, 0.1, 10)
		}
	}

	half := len(pts) / 2
	if half < 2 {
		half = 2
	}

	vc0 := 100.0
	if cfg.FixedVcmax != nil {
		vc0 = *cfg.FixedVcmax
	} else {
		xs := make([]float64, 0, half)
		ys := make([]float64, 0, half)
		for _, pt := range pts[:half] {
			gammaStar, km := model.Kinetics(fvcb.ParameterSet{}, pt.tleaf)
			x := (pt.ci - gammaStar) / (pt.ci + km)
			if cfg.Tcorrect && !math.IsNaN(pt.tleaf) {
				x *= cfg.Constants.VcmaxTempFactor(pt.tleaf)
			}
			xs = append(xs, x)
			ys = append(ys, pt.a+rd0)
		}
		_, slope, _, _ := olsFit(xs, ys, true)
		if isFinite(slope) && slope > 0 {
			vc0 = clamp(slope, 5, 1000)
		}
	}

	j0 := 1.7 * vc0
	if cfg.FixedJmax != nil {
		j0 = *cfg.FixedJmax
	} else {
		upper := pts[len(pts)-half:]
		xs := make([]float64, 0, len(upper))
		ys := make([]float64, 0, len(upper))
		sumQ := 0.0
		for _, pt := range upper {
			gammaStar, _ := model.Kinetics(fvcb.ParameterSet{}, pt.tleaf)
			z := (pt.ci - gammaStar) / (4*pt.ci + 8*gammaStar)
			if cfg.Tcorrect && !math.IsNaN(pt.tleaf) {
				z *= cfg.Constants.JmaxTempFactor(pt.tleaf)
			}
			xs = append(xs, z)
			ys = append(ys, pt.a+rd0)
			sumQ += pt.ppfd
		}
		_, slope, _, _ := olsFit(xs, ys, true)
		if isFinite(slope) && slope > 0 {
			meanQ := sumQ / float64(len(upper))
			j0 = clamp(invertLightResponse(slope, meanQ, cfg.Constants), 5, 2000)
		}
	}

	x0 := make([]float64, lay.n)
	if lay.vcmax >= 0 {
		x0[lay.vcmax] = vc0
	}
	if lay.jmax >= 0 {
		x0[lay.jmax] = j0
	}
	if lay.rd >= 0 {
		x0[lay.rd] = rd0
	}
	if lay.tpu >= 0 {
		maxA := pts[0].a
		for _, pt := range pts {
			maxA = math.Max(maxA, pt.a)
		}
		x0[lay.tpu] = clamp((maxA+rd0)/3, 1, 100)
	}

	return x0
}

// invertLightResponse recovers Jmax from an electron transport rate j observed
// at irradiance q, inverting the non-rectangular hyperbola. When j is outside
// the invertible range, a proportional fallback keeps the guess usable.
func invertLightResponse(j, q float64, c fvcb.Constants) float64 {
	aq := c.Alpha * q
	if j <= 0 || aq <= j {
		return 1.9 * math.Max(j, 1)
	}

	jmax := j * (aq - c.Theta*j) / (aq - j)
	if !isFinite(jmax) || jmax <= j {
		return 1.9 * j
	}

	return jmax
}

// asymptoticStdErrors estimates per-slot standard errors from the local
// covariance sigma² (JᵀJ)⁻¹, with the Jacobian taken by central differences
// at the optimum. Returns NaN slots and a warning when the system is rank
// deficient or there are no residual degrees of freedom.
func asymptoticStdErrors(residuals func(dst, x []float64), x []float64, lay paramLayout, n int) ([]float64, string) {
	k := lay.n
	ses := make([]float64, k)
	for i := range ses {
		ses[i] = math.NaN()
	}

	dof := n - k
	if dof <= 0 {
		return ses, "no residual degrees of freedom for standard errors"
	}

	jac := mat.NewDense(n, k, nil)
	rPlus := make([]float64, n)
	rMinus := make([]float64, n)
	xh := make([]float64, k)

	for j := 0; j < k; j++ {
		h := 1e-6 * math.Max(1, math.Abs(x[j]))

		copy(xh, x)
		xh[j] = x[j] + h
		residuals(rPlus, xh)

		xh[j] = x[j] - h
		residuals(rMinus, xh)

		for i := 0; i < n; i++ {
			jac.Set(i, j, (rPlus[i]-rMinus[i])/(2*h))
		}
	}

	r0 := make([]float64, n)
	residuals(r0, x)
	ssr := 0.0
	for _, r := range r0 {
		ssr += r * r
	}
	sigma2 := ssr / float64(dof)

	var jtj mat.Dense
	jtj.Mul(jac.T(), jac)

	var inv mat.Dense
	if err := inv.Inverse(&jtj); err != nil {
		return ses, "covariance matrix is singular; standard errors unavailable"
	}

	for j := 0; j < k; j++ {
		v := sigma2 * inv.At(j, j)
		if v >= 0 {
			ses[j] = math.Sqrt(v)
		}
	}

	return ses, ""
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
