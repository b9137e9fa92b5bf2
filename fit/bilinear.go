package fit

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/leafgas/photofit/errs"
	"github.com/leafgas/photofit/fvcb"
)

// bilinearEstimator estimates parameters in two non-iterative stages. Points
// below a Ci transition are assumed Rubisco limited and fitted to the
// linearized carboxylation equation (slope Vcmax, intercept -Rd); points
// above are assumed transport limited and fitted through the origin to the
// linearized RuBP regeneration equation, whose slope inverts to Jmax.
//
// The transition is either caller supplied or chosen by scanning every
// partition with at least two points per side and keeping the one whose
// back-substituted parameters give the smallest model residual sum of
// squares. Pure linear algebra: the strategy cannot fail to converge, only
// reject degenerate input.
type bilinearEstimator struct{}

// minRegimePoints is the smallest side of a regime partition: two points fit
// a slope, and an intercept needs one more for any residual at all.
const minRegimePoints = 2

func (e *bilinearEstimator) estimate(c *Curve, cfg *Config) (*EstimationOutcome, error) {
	pts := workingPoints(c, cfg)
	if len(pts) < MinPoints {
		return nil, fmt.Errorf("%w: %d usable points after corrections", errs.ErrTooFewPoints, len(pts))
	}
	if pts[0].ci == pts[len(pts)-1].ci {
		return nil, fmt.Errorf("%w: all Ci identical after corrections", errs.ErrDegenerateCi)
	}

	model := fvcb.NewModel(cfg.Constants)
	fixedRd := resolveFixedRd(c, cfg)

	splits := candidateSplits(pts, cfg.CiTransition)
	if len(splits) == 0 {
		return nil, fmt.Errorf("%w: no Ci partition with %d points per regime", errs.ErrTooFewPoints, minRegimePoints)
	}

	var (
		best    *EstimationOutcome
		bestSSR = math.Inf(1)
	)
	for _, k := range splits {
		outcome, err := e.estimateAt(pts, k, model, cfg, fixedRd)
		if err != nil {
			continue
		}

		ssr := modelSSR(pts, outcome.Params, model, cfg)
		if ssr < bestSSR {
			bestSSR = ssr
			best = outcome
		}
	}

	if best == nil {
		return nil, fmt.Errorf("%w: every regime partition was singular", errs.ErrSingularSystem)
	}

	best.Warnings = append(best.Warnings,
		"bilinear Vcmax standard error is systematically understated",
		"bilinear strategy derives no Jmax standard error",
	)

	return best, nil
}

// candidateSplits returns the partition indices to evaluate: the index k
// splits pts into a Rubisco regime pts[:k] and a transport regime pts[k:].
// A forced transition narrows the scan to the single matching partition when
// it leaves enough points on both sides.
func candidateSplits(pts []point, forced float64) []int {
	n := len(pts)
	if forced > 0 {
		k := 0
		for k < n && pts[k].ci < forced {
			k++
		}
		if k >= minRegimePoints && n-k >= minRegimePoints {
			return []int{k}
		}
		// Forced transition leaves a regime underpopulated; fall through to
		// the scan so the fit still proceeds.
	}

	var splits []int
	for k := minRegimePoints; k <= n-minRegimePoints; k++ {
		splits = append(splits, k)
	}

	return splits
}

func (e *bilinearEstimator) estimateAt(pts []point, k int, model *fvcb.Model, cfg *Config, fixedRd *float64) (*EstimationOutcome, error) {
	low, high := pts[:k], pts[k:]

	vcmax, rd, seVcmax, seRd, err := rubiscoStage(low, model, cfg, fixedRd)
	if err != nil {
		return nil, err
	}

	jmax, err := transportStage(high, rd, model, cfg)
	if err != nil {
		return nil, err
	}

	outcome := &EstimationOutcome{
		Params:       fvcb.ParameterSet{Vcmax: vcmax, Jmax: jmax, Rd: rd},
		StdErrs:      StdErrors{Vcmax: seVcmax, Jmax: math.NaN(), Rd: seRd, TPU: math.NaN()},
		Converged:    true,
		CiTransition: high[0].ci,
	}

	if cfg.FitTPU {
		tpu, warn := tpuStage(high, rd, model, cfg)
		outcome.Params.TPU = tpu
		if warn != "" {
			outcome.Warnings = append(outcome.Warnings, warn)
		}
	}

	return outcome, nil
}

// rubiscoStage fits A = Vcmax * x - Rd over the presumed Rubisco-limited
// points, where x is the carboxylation transform (Ci-Γ*)/(Ci+Km), scaled by
// the Vcmax temperature factor when normalizing to 25 °C.
func rubiscoStage(low []point, model *fvcb.Model, cfg *Config, fixedRd *float64) (vcmax, rd, seVcmax, seRd float64, err error) {
	xs := make([]float64, len(low))
	ys := make([]float64, len(low))
	for i, pt := range low {
		gammaStar, km := model.Kinetics(fvcb.ParameterSet{}, pt.tleaf)
		x := (pt.ci - gammaStar) / (pt.ci + km)
		if cfg.Tcorrect && !math.IsNaN(pt.tleaf) {
			x *= cfg.Constants.VcmaxTempFactor(pt.tleaf)
		}
		xs[i] = x
		ys[i] = pt.a
	}

	switch {
	case cfg.FixedVcmax != nil && fixedRd != nil:
		return *cfg.FixedVcmax, *fixedRd, math.NaN(), math.NaN(), nil

	case cfg.FixedVcmax != nil:
		// Rd is the only unknown: A = Vcmax*x - Rd point by point.
		vcmax = *cfg.FixedVcmax
		resid := make([]float64, len(low))
		for i := range xs {
			resid[i] = vcmax*xs[i] - ys[i]
		}
		rd = stat.Mean(resid, nil)
		seRd = math.Sqrt(stat.Variance(resid, nil) / float64(len(resid)))

		return vcmax, rd, math.NaN(), seRd, nil

	case fixedRd != nil:
		// Regression through the origin on A + Rd.
		rd = *fixedRd
		shifted := make([]float64, len(ys))
		for i := range ys {
			shifted[i] = ys[i] + rd
		}
		_, slope, _, seSlope := olsFit(xs, shifted, true)
		if !isFinite(slope) || slope <= 0 {
			return 0, 0, 0, 0, fmt.Errorf("%w: rubisco stage slope %g", errs.ErrSingularSystem, slope)
		}

		return slope, rd, seSlope, math.NaN(), nil

	default:
		alpha, beta, seAlpha, seBeta := olsFit(xs, ys, false)
		if !isFinite(beta) || beta <= 0 {
			return 0, 0, 0, 0, fmt.Errorf("%w: rubisco stage slope %g", errs.ErrSingularSystem, beta)
		}

		return beta, -alpha, seBeta, seAlpha, nil
	}
}

// transportStage fits A + Rd = J * z through the origin over the presumed
// transport-limited points, where z is the regeneration transform
// (Ci-Γ*)/(4Ci+8Γ*), then inverts the light response at the mean PPFD to
// recover Jmax. The per-point temperature scaling of z is a linearization:
// J is treated as proportional to Jmax, which holds near saturating light.
func transportStage(high []point, rd float64, model *fvcb.Model, cfg *Config) (float64, error) {
	if cfg.FixedJmax != nil {
		return *cfg.FixedJmax, nil
	}

	zs := make([]float64, len(high))
	ys := make([]float64, len(high))
	sumQ := 0.0
	for i, pt := range high {
		gammaStar, _ := model.Kinetics(fvcb.ParameterSet{}, pt.tleaf)
		z := (pt.ci - gammaStar) / (4*pt.ci + 8*gammaStar)
		if cfg.Tcorrect && !math.IsNaN(pt.tleaf) {
			z *= cfg.Constants.JmaxTempFactor(pt.tleaf)
		}
		zs[i] = z
		ys[i] = pt.a + rd
		sumQ += pt.ppfd
	}

	_, slope, _, _ := olsFit(zs, ys, true)
	if !isFinite(slope) || slope <= 0 {
		return 0, fmt.Errorf("%w: transport stage slope %g", errs.ErrSingularSystem, slope)
	}

	meanQ := sumQ / float64(len(high))
	jmax := invertLightResponse(slope, meanQ, cfg.Constants)
	if !isFinite(jmax) || jmax <= 0 {
		return 0, fmt.Errorf("%w: light response inversion failed for J=%g", errs.ErrSingularSystem, slope)
	}

	return jmax, nil
}

// tpuStage back-substitutes a TPU estimate from the highest-Ci points. With
// only linear stages available the estimate is a plain average of the
// per-point inversions, flagged as approximate.
func tpuStage(high []point, rd float64, model *fvcb.Model, cfg *Config) (float64, string) {
	top := high
	if len(top) > 3 {
		top = top[len(top)-3:]
	}

	sum, n := 0.0, 0
	for _, pt := range top {
		gammaStar, _ := model.Kinetics(fvcb.ParameterSet{}, pt.tleaf)
		den := pt.ci - (1+3*cfg.Constants.Alphag)*gammaStar
		if den <= 0 || pt.ci <= gammaStar {
			continue
		}
		sum += (pt.a + rd) * den / (3 * (pt.ci - gammaStar))
		n++
	}

	if n == 0 {
		return 0, "TPU not identifiable from the measured Ci range"
	}

	tpu := sum / float64(n)
	if !isFinite(tpu) || tpu <= 0 {
		return 0, "TPU not identifiable from the measured Ci range"
	}

	return tpu, "bilinear TPU estimate is a back-substituted approximation"
}

// modelPredictions evaluates the model at each working point.
func modelPredictions(pts []point, base fvcb.ParameterSet, model *fvcb.Model, cfg *Config) []float64 {
	pred := make([]float64, len(pts))
	for i, pt := range pts {
		p := atLeaf(base, pt.tleaf, cfg)
		pred[i] = model.Assimilation(p, pt.ci, pt.tleaf, pt.ppfd)
	}

	return pred
}

// modelSSR computes the residual sum of squares of the model over pts.
func modelSSR(pts []point, base fvcb.ParameterSet, model *fvcb.Model, cfg *Config) float64 {
	ssr := 0.0
	for i, pred := range modelPredictions(pts, base, model, cfg) {
		d := pts[i].a - pred
		ssr += d * d
	}

	return ssr
}
