package fit

import (
	"fmt"
	"math"

	"github.com/leafgas/photofit/errs"
)

// MinPoints is the minimum number of distinct-Ci observations required to
// attempt a fit. Fewer leaves the three-parameter model underdetermined.
const MinPoints = 4

// defaultPPFD substitutes for missing irradiance readings. Saturating light
// is the usual measurement condition for A-Ci curves.
const defaultPPFD = 1500.0

// Observation is one measured gas-exchange point. Tleaf, PPFD and Rd may be
// NaN when the instrument did not record them; Tleaf then defaults to the
// 25 °C reference and PPFD to saturating light.
type Observation struct {
	// Ci is the intercellular CO2 concentration (µmol mol⁻¹).
	Ci float64
	// A is the measured net assimilation rate (µmol m⁻² s⁻¹).
	A float64
	// Tleaf is the leaf temperature (°C).
	Tleaf float64
	// PPFD is the photosynthetic photon flux density (µmol m⁻² s⁻¹).
	PPFD float64
	// Rd is an optionally measured day respiration rate (µmol m⁻² s⁻¹).
	Rd float64
}

// Curve is an ordered series of observations from one leaf (or one replicate),
// identified by a grouping label. Fitting never mutates a curve.
type Curve struct {
	// ID is the grouping label the curve was read under.
	ID string
	// Obs are the measured points.
	Obs []Observation
}

// NewCurve creates a curve from parallel Ci and A slices, with Tleaf and PPFD
// left unmeasured. It is a convenience for tests and synthetic data; real
// datasets come from the dataset package.
func NewCurve(id string, ci, a []float64) (*Curve, error) {
	if len(ci) != len(a) {
		return nil, fmt.Errorf("mismatched lengths: %d Ci vs %d A", len(ci), len(a))
	}

	obs := make([]Observation, len(ci))
	for i := range ci {
		obs[i] = Observation{Ci: ci[i], A: a[i], Tleaf: math.NaN(), PPFD: math.NaN(), Rd: math.NaN()}
	}

	return &Curve{ID: id, Obs: obs}, nil
}

// Validate reports whether the curve carries enough information to attempt a
// fit: at least MinPoints usable observations with at least MinPoints distinct
// Ci values. A usable observation has finite Ci and A.
func (c *Curve) Validate() error {
	usable := 0
	distinct := make(map[float64]struct{})

	for _, o := range c.Obs {
		if math.IsNaN(o.Ci) || math.IsInf(o.Ci, 0) || math.IsNaN(o.A) || math.IsInf(o.A, 0) {
			continue
		}
		usable++
		distinct[o.Ci] = struct{}{}
	}

	if usable < MinPoints {
		return fmt.Errorf("%w: curve %q has %d usable points, need %d", errs.ErrTooFewPoints, c.ID, usable, MinPoints)
	}
	if len(distinct) == 1 {
		return fmt.Errorf("%w: curve %q has a single Ci value", errs.ErrDegenerateCi, c.ID)
	}
	if len(distinct) < MinPoints {
		return fmt.Errorf("%w: curve %q has %d distinct Ci values, need %d", errs.ErrTooFewPoints, c.ID, len(distinct), MinPoints)
	}

	return nil
}

// point is a working observation after unit and mesophyll corrections, with
// missing Tleaf/PPFD resolved to their defaults.
type point struct {
	ci    float64
	a     float64
	tleaf float64
	ppfd  float64
}

// workingPoints applies the pressure correction (ppm to µbar via Patm) and
// the optional Ci→Cc mesophyll transform, drops unusable observations, and
// resolves measurement defaults. The result is sorted by ascending Ci.
func workingPoints(c *Curve, cfg *Config) []point {
	pts := make([]point, 0, len(c.Obs))

	for _, o := range c.Obs {
		if math.IsNaN(o.Ci) || math.IsInf(o.Ci, 0) || math.IsNaN(o.A) || math.IsInf(o.A, 0) {
			continue
		}

		ci := o.Ci * cfg.Patm / refPatm
		if cfg.Gmeso > 0 {
			// Ethier & Livingston (2004): the CO2 drawdown through the
			// mesophyll shifts the operating point from Ci to Cc.
			ci -= o.A / cfg.Gmeso
		}

		ppfd := o.PPFD
		if math.IsNaN(ppfd) || ppfd <= 0 {
			ppfd = defaultPPFD
		}

		pts = append(pts, point{ci: ci, a: o.A, tleaf: o.Tleaf, ppfd: ppfd})
	}

	sortPointsByCi(pts)

	return pts
}

func sortPointsByCi(pts []point) {
	// Insertion sort keeps ties in input order; curves are short.
	for i := 1; i < len(pts); i++ {
		v := pts[i]
		j := i - 1
		for j >= 0 && pts[j].ci > v.ci {
			pts[j+1] = pts[j]
			j--
		}
		pts[j+1] = v
	}
}

// measuredRd returns the mean of the measured per-point Rd values, or NaN if
// none were recorded.
func measuredRd(c *Curve) float64 {
	sum, n := 0.0, 0
	for _, o := range c.Obs {
		if !math.IsNaN(o.Rd) && !math.IsInf(o.Rd, 0) {
			sum += o.Rd
			n++
		}
	}
	if n == 0 {
		return math.NaN()
	}

	return sum / float64(n)
}
