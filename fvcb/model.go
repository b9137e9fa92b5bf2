package fvcb

import "math"

// Model evaluates the Farquhar-von Caemmerer-Berry C3 photosynthesis model.
// It is a pure calculator: all state lives in the Constants it was created
// with and the ParameterSet passed to each call.
type Model struct {
	c Constants
}

// NewModel creates a model using the given constant set.
func NewModel(c Constants) *Model {
	return &Model{c: c}
}

// Constants returns the constant set the model was created with.
func (m *Model) Constants() Constants {
	return m.c
}

// CandidateRates holds the three gross limitation rates at one observation,
// before subtracting day respiration. Ap is +Inf when the TPU limitation is
// disabled or inactive at the given Ci.
type CandidateRates struct {
	// Ac is the Rubisco-limited carboxylation rate.
	Ac float64
	// Aj is the electron-transport-limited rate.
	Aj float64
	// Ap is the TPU-limited rate.
	Ap float64
}

// Min returns the binding (smallest) gross rate.
func (r CandidateRates) Min() float64 {
	return math.Min(r.Ac, math.Min(r.Aj, r.Ap))
}

// Kinetics resolves GammaStar and Km for an observation: caller overrides in
// p win, otherwise both are temperature-corrected from the model constants.
// A NaN tleaf means the leaf temperature was not measured; the reference
// temperature is assumed and no correction is applied.
func (m *Model) Kinetics(p ParameterSet, tleaf float64) (gammaStar, km float64) {
	if math.IsNaN(tleaf) {
		tleaf = RefTempC
	}

	gammaStar = p.GammaStar
	if gammaStar <= 0 {
		gammaStar = m.c.GammaStarAt(tleaf)
	}

	km = p.Km
	if km <= 0 {
		km = m.c.KmAt(tleaf)
	}

	return gammaStar, km
}

// ElectronTransport returns the electron transport rate J at irradiance ppfd
// for a given Jmax, from the non-rectangular hyperbola light response with
// curvature Theta and quantum yield Alpha.
func (m *Model) ElectronTransport(jmax, ppfd float64) float64 {
	if jmax <= 0 || ppfd <= 0 {
		return 0
	}

	aq := m.c.Alpha * ppfd
	if m.c.Theta == 0 {
		return aq * jmax / (aq + jmax)
	}

	disc := (aq+jmax)*(aq+jmax) - 4*m.c.Theta*aq*jmax
	if disc < 0 {
		disc = 0
	}

	return (aq + jmax - math.Sqrt(disc)) / (2 * m.c.Theta)
}

// Rates computes the three candidate gross rates at one observation.
// Negative Ci is clamped to zero; between zero and GammaStar the exact
// algebraic rates are used, so every rate passes through zero at the
// compensation point and net assimilation tends to -Rd there.
func (m *Model) Rates(p ParameterSet, ci, tleaf, ppfd float64) CandidateRates {
	if ci < 0 {
		ci = 0
	}

	gammaStar, km := m.Kinetics(p, tleaf)

	ac := p.Vcmax * (ci - gammaStar) / (ci + km)

	j := m.ElectronTransport(p.Jmax, ppfd)
	aj := j * (ci - gammaStar) / (4*ci + 8*gammaStar)

	ap := math.Inf(1)
	if p.TPU > 0 {
		// The alphag variant is inactive below its singularity.
		den := ci - (1+3*m.c.Alphag)*gammaStar
		if den > 0 {
			ap = 3 * p.TPU * (ci - gammaStar) / den
		}
	}

	return CandidateRates{Ac: ac, Aj: aj, Ap: ap}
}

// Assimilation computes net assimilation A = min(Ac, Aj, Ap) - Rd at one
// observation.
func (m *Model) Assimilation(p ParameterSet, ci, tleaf, ppfd float64) float64 {
	return m.Rates(p, ci, tleaf, ppfd).Min() - p.Rd
}
