package fit

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/leafgas/photofit/fvcb"
)

func TestBilinearRoundTrip(t *testing.T) {
	truth := fvcb.ParameterSet{Vcmax: 100, Jmax: 160, Rd: 1.2}
	curve := synthCurve(t, "bl", truth, defaultCiGrid)

	outcome, err := (&bilinearEstimator{}).estimate(curve, defaultConfig())
	require.NoError(t, err)
	require.True(t, outcome.Converged)

	requireRecovered(t, truth, outcome.Params, 0.01)
}

func TestBilinearDiagnostics(t *testing.T) {
	truth := fvcb.ParameterSet{Vcmax: 100, Jmax: 160, Rd: 1.2}
	curve := synthCurve(t, "bl-diag", truth, defaultCiGrid)

	outcome, err := (&bilinearEstimator{}).estimate(curve, defaultConfig())
	require.NoError(t, err)

	// The selected transition must separate the true regimes (around Ci 270
	// for these parameters).
	require.Greater(t, outcome.CiTransition, 250.0)
	require.Less(t, outcome.CiTransition, 400.0)

	// Documented limitations surface as warnings, not errors.
	require.True(t, math.IsNaN(outcome.StdErrs.Jmax))
	require.Contains(t, outcome.Warnings, "bilinear strategy derives no Jmax standard error")
	require.Contains(t, outcome.Warnings, "bilinear Vcmax standard error is systematically understated")
}

func TestBilinearForcedTransition(t *testing.T) {
	truth := fvcb.ParameterSet{Vcmax: 100, Jmax: 160, Rd: 1.2}
	curve := synthCurve(t, "bl-forced", truth, defaultCiGrid)

	cfg := defaultConfig()
	cfg.CiTransition = 300

	outcome, err := (&bilinearEstimator{}).estimate(curve, cfg)
	require.NoError(t, err)
	requireRecovered(t, truth, outcome.Params, 0.01)

	t.Run("UnusableTransitionFallsBackToScan", func(t *testing.T) {
		cfg := defaultConfig()
		cfg.CiTransition = 10 // below every observed Ci
		outcome, err := (&bilinearEstimator{}).estimate(curve, cfg)
		require.NoError(t, err)
		require.True(t, outcome.Converged)
	})
}

func TestBilinearFixedRd(t *testing.T) {
	truth := fvcb.ParameterSet{Vcmax: 100, Jmax: 160, Rd: 1.2}
	curve := synthCurve(t, "bl-fixed-rd", truth, defaultCiGrid)

	rd := 1.2
	cfg := defaultConfig()
	cfg.FixedRd = &rd

	outcome, err := (&bilinearEstimator{}).estimate(curve, cfg)
	require.NoError(t, err)
	require.Equal(t, rd, outcome.Params.Rd)
	requireRecovered(t, truth, outcome.Params, 0.01)
}

func TestBilinearAlwaysConvergesOnValidInput(t *testing.T) {
	// Awkward but valid curves: few points, uneven spacing, low rates.
	cases := []struct {
		name  string
		truth fvcb.ParameterSet
		ci    []float64
	}{
		{"MinimumPoints", fvcb.ParameterSet{Vcmax: 80, Jmax: 130, Rd: 0.8}, []float64{100, 250, 700, 1400}},
		{"SkewedLow", fvcb.ParameterSet{Vcmax: 120, Jmax: 200, Rd: 2.0}, []float64{60, 80, 100, 120, 900, 1300}},
		{"SkewedHigh", fvcb.ParameterSet{Vcmax: 60, Jmax: 110, Rd: 0.5}, []float64{90, 300, 800, 900, 1000, 1100}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			curve := synthCurve(t, tc.name, tc.truth, tc.ci)
			outcome, err := (&bilinearEstimator{}).estimate(curve, defaultConfig())
			require.NoError(t, err)
			require.True(t, outcome.Converged)
		})
	}
}

func TestBilinearDegenerateInput(t *testing.T) {
	t.Run("TooFewPoints", func(t *testing.T) {
		curve, err := NewCurve("short", []float64{100, 400, 900}, []float64{5, 15, 20})
		require.NoError(t, err)
		_, err = (&bilinearEstimator{}).estimate(curve, defaultConfig())
		require.Error(t, err)
	})

	t.Run("IdenticalCi", func(t *testing.T) {
		curve, err := NewCurve("flat", []float64{400, 400, 400, 400}, []float64{10, 11, 12, 13})
		require.NoError(t, err)
		_, err = (&bilinearEstimator{}).estimate(curve, defaultConfig())
		require.Error(t, err)
	})
}

func TestBilinearTPUBackSubstitution(t *testing.T) {
	truth := fvcb.ParameterSet{Vcmax: 100, Jmax: 180, Rd: 1.0, TPU: 12}
	curve := synthCurve(t, "bl-tpu", truth, defaultCiGrid)

	cfg := defaultConfig()
	cfg.FitTPU = true

	outcome, err := (&bilinearEstimator{}).estimate(curve, cfg)
	require.NoError(t, err)
	require.True(t, outcome.Converged)
	// Back-substitution is approximate; it only needs the right magnitude.
	require.InEpsilon(t, truth.TPU, outcome.Params.TPU, 0.25)
}
