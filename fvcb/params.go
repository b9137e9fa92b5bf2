package fvcb

import "fmt"

// ParameterSet holds the physiological parameters of one leaf. Vcmax, Jmax,
// Rd and TPU are the quantities estimated from gas-exchange data; GammaStar
// and Km are derived from temperature unless the caller overrides them with
// positive values.
type ParameterSet struct {
	// Vcmax is the maximum Rubisco carboxylation rate (µmol m⁻² s⁻¹).
	Vcmax float64
	// Jmax is the maximum electron transport rate (µmol m⁻² s⁻¹).
	Jmax float64
	// Rd is the day respiration rate (µmol m⁻² s⁻¹).
	Rd float64
	// TPU is the triose phosphate utilization rate (µmol m⁻² s⁻¹).
	// Zero disables the TPU limitation.
	TPU float64
	// GammaStar overrides the temperature-derived CO2 compensation point
	// when positive.
	GammaStar float64
	// Km overrides the temperature-derived effective Michaelis-Menten
	// constant when positive.
	Km float64
}

// String returns the conventional one-line summary of the estimated rates.
func (p ParameterSet) String() string {
	if p.TPU > 0 {
		return fmt.Sprintf("Vcmax=%.1f Jmax=%.1f Rd=%.2f TPU=%.1f", p.Vcmax, p.Jmax, p.Rd, p.TPU)
	}

	return fmt.Sprintf("Vcmax=%.1f Jmax=%.1f Rd=%.2f", p.Vcmax, p.Jmax, p.Rd)
}
