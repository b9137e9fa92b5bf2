package photofit_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/leafgas/photofit"
	"github.com/leafgas/photofit/dataset"
	"github.com/leafgas/photofit/fit"
	"github.com/leafgas/photofit/fvcb"
)

// synthRows renders a synthetic A-Ci curve as CSV rows for the given truth
// parameters at 25 °C and saturating light.
func synthRows(id string, p fvcb.ParameterSet, ci []float64) []string {
	model := fvcb.NewModel(fvcb.DefaultConstants())

	rows := make([]string, len(ci))
	for i, c := range ci {
		a := model.Assimilation(p, c, fvcb.RefTempC, 1500)
		rows[i] = fmt.Sprintf("%s,%.6f,%.1f,25.0,1500", id, a, c)
	}

	return rows
}

func TestEndToEnd(t *testing.T) {
	grid := []float64{50, 100, 150, 200, 250, 350, 450, 600, 800, 1000, 1200, 1500}
	truthA := fvcb.ParameterSet{Vcmax: 95, Jmax: 155, Rd: 1.1}
	truthB := fvcb.ParameterSet{Vcmax: 120, Jmax: 185, Rd: 1.6}

	var sb strings.Builder
	sb.WriteString("Curve,Photo,Ci,Tleaf,PARi\n")
	sb.WriteString(strings.Join(synthRows("leaf-a", truthA, grid), "\n"))
	sb.WriteString("\n")
	sb.WriteString(strings.Join(synthRows("leaf-b", truthB, grid), "\n"))
	sb.WriteString("\n")

	curves, err := dataset.ReadCSV(strings.NewReader(sb.String()), dataset.DefaultVarNames())
	require.NoError(t, err)
	require.Len(t, curves, 2)

	batch, err := photofit.FitBatch(curves, fit.WithWorkers(2))
	require.NoError(t, err)
	require.Empty(t, batch.FailedIDs)

	resA, ok := batch.Result("leaf-a")
	require.True(t, ok)
	require.InEpsilon(t, truthA.Vcmax, resA.Params.Vcmax, 0.01)
	require.InEpsilon(t, truthA.Jmax, resA.Params.Jmax, 0.01)

	resB, ok := batch.Result("leaf-b")
	require.True(t, ok)
	require.InEpsilon(t, truthB.Vcmax, resB.Params.Vcmax, 0.01)

	rows := batch.Summary()
	require.Len(t, rows, 3)
	require.Equal(t, "leaf-a", rows[1][0])
	require.Equal(t, "leaf-b", rows[2][0])
}

func TestFitCurveWrapper(t *testing.T) {
	grid := []float64{80, 150, 250, 400, 700, 1100, 1500}
	truth := fvcb.ParameterSet{Vcmax: 100, Jmax: 160, Rd: 1.2}

	model := fvcb.NewModel(fvcb.DefaultConstants())
	a := make([]float64, len(grid))
	for i, c := range grid {
		a[i] = model.Assimilation(truth, c, fvcb.RefTempC, 1500)
	}

	curve, err := photofit.NewCurve("leaf-w", grid, a)
	require.NoError(t, err)

	result, err := photofit.FitCurve(curve)
	require.NoError(t, err)
	require.True(t, result.Converged)
	require.InEpsilon(t, truth.Vcmax, result.Params.Vcmax, 0.02)
	require.InEpsilon(t, truth.Jmax, result.Params.Jmax, 0.02)

	t.Run("BadOption", func(t *testing.T) {
		_, err := photofit.FitCurve(curve, fit.WithWorkers(-1))
		require.Error(t, err)
	})
}
