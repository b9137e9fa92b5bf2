package fvcb

import "strings"

// Limitation identifies which biochemical process is binding at an observation.
type Limitation int

const (
	// LimitationRubisco marks Rubisco-limited (carboxylation) points.
	LimitationRubisco Limitation = iota
	// LimitationTransport marks electron-transport-limited (RuBP regeneration) points.
	LimitationTransport
	// LimitationTPU marks triose-phosphate-utilization-limited points.
	LimitationTPU
)

var limitationNames = map[Limitation]string{
	LimitationRubisco:   "rubisco",
	LimitationTransport: "transport",
	LimitationTPU:       "tpu",
}

// String returns the limitation label.
func (l Limitation) String() string {
	if name, exists := limitationNames[l]; exists {
		return name
	}

	return "unknown"
}

var limitationFromString = map[string]Limitation{
	"rubisco":   LimitationRubisco,
	"transport": LimitationTransport,
	"tpu":       LimitationTPU,
}

// LimitationFromString returns the Limitation for a label.
// Returns Limitation(-1) for unknown labels.
func LimitationFromString(name string) Limitation {
	if l, exists := limitationFromString[strings.ToLower(name)]; exists {
		return l
	}

	return Limitation(-1)
}

// Classify returns the binding limitation for a set of candidate rates.
// Ties are broken by the fixed order Rubisco < transport < TPU so that
// classification is deterministic.
func Classify(r CandidateRates) Limitation {
	lim := LimitationRubisco
	best := r.Ac

	if r.Aj < best {
		lim = LimitationTransport
		best = r.Aj
	}
	if r.Ap < best {
		lim = LimitationTPU
	}

	return lim
}
