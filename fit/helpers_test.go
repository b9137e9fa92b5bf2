package fit

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/leafgas/photofit/fvcb"
)

// defaultCiGrid spans subsaturating through saturating Ci, with enough points
// on both sides of the Rubisco/transport transition for any strategy.
var defaultCiGrid = []float64{50, 100, 150, 200, 250, 350, 450, 600, 800, 1000, 1200, 1500}

// synthCurve builds a noise-free curve from the model itself, at saturating
// light and the reference temperature.
func synthCurve(t *testing.T, id string, p fvcb.ParameterSet, ci []float64) *Curve {
	t.Helper()

	model := fvcb.NewModel(fvcb.DefaultConstants())
	obs := make([]Observation, len(ci))
	for i, c := range ci {
		obs[i] = Observation{
			Ci:    c,
			A:     model.Assimilation(p, c, fvcb.RefTempC, 1500),
			Tleaf: fvcb.RefTempC,
			PPFD:  1500,
			Rd:    math.NaN(),
		}
	}

	return &Curve{ID: id, Obs: obs}
}

// requireRecovered asserts the estimate matches the truth within relTol.
func requireRecovered(t *testing.T, want, got fvcb.ParameterSet, relTol float64) {
	t.Helper()

	require.InEpsilon(t, want.Vcmax, got.Vcmax, relTol, "Vcmax")
	require.InEpsilon(t, want.Jmax, got.Jmax, relTol, "Jmax")
	require.InEpsilon(t, want.Rd, got.Rd, relTol, "Rd")
}
