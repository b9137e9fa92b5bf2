// Package fvcb implements the Farquhar-von Caemmerer-Berry biochemical model
// of C3 photosynthesis.
//
// The model expresses net assimilation as the minimum of up to three gross
// limitation rates, less day respiration:
//
//	Ac = Vcmax * (Ci - Γ*) / (Ci + Km)            Rubisco limited
//	Aj = J    * (Ci - Γ*) / (4 Ci + 8 Γ*)         electron transport limited
//	Ap = 3 TPU * (Ci - Γ*) / (Ci - (1+3αg) Γ*)    TPU limited (optional)
//	A  = min(Ac, Aj, Ap) - Rd
//
// J follows a non-rectangular hyperbola light response in PPFD with
// curvature Theta and quantum yield Alpha. Γ* and Km are corrected from
// their 25 °C reference values to leaf temperature with Arrhenius functions;
// Vcmax and Jmax use peaked Arrhenius responses when normalization between
// temperatures is requested.
//
// All default constants come from DefaultConstants (Bernacchi et al. 2001
// kinetics, Medlyn et al. 2002 temperature responses) and can be overridden
// per model instance, so concurrent fits may carry differing constant sets.
//
// This package only evaluates the model. Parameter estimation from measured
// A-Ci curves lives in the fit package.
package fvcb
