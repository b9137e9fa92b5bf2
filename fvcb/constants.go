package fvcb

import "math"

// GasConstant is the universal gas constant in J mol⁻¹ K⁻¹.
const GasConstant = 8.314

// RefTempC is the reference leaf temperature in °C at which kinetic constants
// are defined and to which fitted rates are normalized.
const RefTempC = 25.0

const refTempK = RefTempC + 273.15

// Constants holds the physiological constants and temperature-response
// coefficients of the FvCB model. The zero value is not usable; start from
// DefaultConstants and override fields as needed. All energies are in J mol⁻¹,
// concentrations in µmol mol⁻¹ except O2 and Ko which are in mmol mol⁻¹.
type Constants struct {
	// GammaStar25 is the CO2 compensation point without day respiration at 25 °C.
	GammaStar25 float64
	// EaGammaStar is the activation energy for GammaStar.
	EaGammaStar float64

	// Kc25 is the Michaelis-Menten constant of Rubisco for CO2 at 25 °C.
	Kc25 float64
	// EaKc is the activation energy for Kc.
	EaKc float64

	// Ko25 is the Michaelis-Menten constant of Rubisco for O2 at 25 °C (mmol mol⁻¹).
	Ko25 float64
	// EaKo is the activation energy for Ko.
	EaKo float64

	// O2 is the intercellular oxygen concentration (mmol mol⁻¹).
	O2 float64

	// Theta is the curvature of the electron transport light response.
	Theta float64
	// Alpha is the quantum yield of electron transport (mol mol⁻¹).
	Alpha float64

	// Alphag is the fraction of glycolate carbon not returned to the
	// chloroplast, switching the TPU limitation between its variants.
	Alphag float64

	// EaV, EdVC and DelsC are the peaked Arrhenius coefficients for Vcmax.
	// EdVC = 0 disables the deactivation term.
	EaV   float64
	EdVC  float64
	DelsC float64

	// EaJ, EdVJ and DelsJ are the peaked Arrhenius coefficients for Jmax.
	EaJ   float64
	EdVJ  float64
	DelsJ float64
}

// DefaultConstants returns the standard constant set (Bernacchi et al. 2001
// kinetics, Medlyn et al. 2002 temperature responses).
func DefaultConstants() Constants {
	return Constants{
		GammaStar25: 42.75,
		EaGammaStar: 37830.0,
		Kc25:        404.9,
		EaKc:        79430.0,
		Ko25:        278.4,
		EaKo:        36380.0,
		O2:          210.0,
		Theta:       0.85,
		Alpha:       0.24,
		Alphag:      0.0,
		EaV:         82620.87,
		EdVC:        0.0,
		DelsC:       645.1013,
		EaJ:         39676.89,
		EdVJ:        200000.0,
		DelsJ:       641.3615,
	}
}

// Arrhenius scales a rate defined at 25 °C to leaf temperature tleaf (°C)
// using activation energy ea.
func Arrhenius(ea, tleaf float64) float64 {
	tk := tleaf + 273.15

	return math.Exp(ea * (tk - refTempK) / (refTempK * GasConstant * tk))
}

// PeakedArrhenius scales a rate defined at 25 °C to tleaf (°C) with a
// deactivation term. ed = 0 reduces to the plain Arrhenius response.
func PeakedArrhenius(ea, ed, dels, tleaf float64) float64 {
	f := Arrhenius(ea, tleaf)
	if ed == 0 {
		return f
	}

	tk := tleaf + 273.15
	num := 1 + math.Exp((refTempK*dels-ed)/(refTempK*GasConstant))
	den := 1 + math.Exp((tk*dels-ed)/(tk*GasConstant))

	return f * num / den
}

// VcmaxTempFactor returns the multiplier converting Vcmax at 25 °C to Vcmax
// at tleaf.
func (c Constants) VcmaxTempFactor(tleaf float64) float64 {
	return PeakedArrhenius(c.EaV, c.EdVC, c.DelsC, tleaf)
}

// JmaxTempFactor returns the multiplier converting Jmax at 25 °C to Jmax
// at tleaf.
func (c Constants) JmaxTempFactor(tleaf float64) float64 {
	return PeakedArrhenius(c.EaJ, c.EdVJ, c.DelsJ, tleaf)
}

// GammaStarAt returns GammaStar corrected to tleaf.
func (c Constants) GammaStarAt(tleaf float64) float64 {
	return c.GammaStar25 * Arrhenius(c.EaGammaStar, tleaf)
}

// KmAt returns the effective Michaelis-Menten constant for carboxylation,
// Kc(T) * (1 + O2/Ko(T)), corrected to tleaf.
func (c Constants) KmAt(tleaf float64) float64 {
	kc := c.Kc25 * Arrhenius(c.EaKc, tleaf)
	ko := c.Ko25 * Arrhenius(c.EaKo, tleaf)

	return kc * (1 + c.O2/ko)
}
