package dataset

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/leafgas/photofit/errs"
)

func TestReadCSVGrouping(t *testing.T) {
	input := strings.Join([]string{
		"Curve,Photo,Ci,Tleaf,PARi",
		"leaf-1,5.1,102,25.1,1500",
		"leaf-1,15.2,310,25.0,1500",
		"leaf-2,4.8,98,24.8,1500",
		"leaf-1,22.0,615,25.2,1500",
		"leaf-2,14.9,305,24.9,1500",
	}, "\n")

	curves, err := ReadCSV(strings.NewReader(input), DefaultVarNames())
	require.NoError(t, err)
	require.Len(t, curves, 2)

	// First-appearance order, with rows interleaved across groups.
	require.Equal(t, "leaf-1", curves[0].ID)
	require.Equal(t, "leaf-2", curves[1].ID)
	require.Len(t, curves[0].Obs, 3)
	require.Len(t, curves[1].Obs, 2)

	require.Equal(t, 102.0, curves[0].Obs[0].Ci)
	require.Equal(t, 5.1, curves[0].Obs[0].A)
	require.Equal(t, 25.1, curves[0].Obs[0].Tleaf)
	require.Equal(t, 1500.0, curves[0].Obs[0].PPFD)
	require.True(t, math.IsNaN(curves[0].Obs[0].Rd))
}

// ungroupedVarNames returns the default mapping with grouping disabled.
func ungroupedVarNames() VarNames {
	names := DefaultVarNames()
	names.Group = ""

	return names
}

func TestReadCSVCaseInsensitiveHeaders(t *testing.T) {
	input := "photo,CI,tleaf\n5.1,102,25\n"

	curves, err := ReadCSV(strings.NewReader(input), ungroupedVarNames())
	require.NoError(t, err)
	require.Len(t, curves, 1)
	require.Equal(t, singleCurveID, curves[0].ID)
}

func TestReadCSVMissingGroupColumn(t *testing.T) {
	input := "Photo,Ci\n5.1,102\n"

	// A configured grouping column that the table lacks is an error, not a
	// silent collapse into a single curve.
	_, err := ReadCSV(strings.NewReader(input), DefaultVarNames())
	require.ErrorIs(t, err, errs.ErrMissingColumn)
	require.Contains(t, err.Error(), "Curve")

	// Clearing the group name opts into ungrouped reading.
	curves, err := ReadCSV(strings.NewReader(input), ungroupedVarNames())
	require.NoError(t, err)
	require.Len(t, curves, 1)
	require.Equal(t, singleCurveID, curves[0].ID)
}

func TestReadCSVMissingRequiredColumn(t *testing.T) {
	t.Run("NoALeaf", func(t *testing.T) {
		input := "Ci,Tleaf\n102,25\n"
		_, err := ReadCSV(strings.NewReader(input), DefaultVarNames())
		require.ErrorIs(t, err, errs.ErrMissingColumn)
		require.Contains(t, err.Error(), "Photo")
	})

	t.Run("NoCi", func(t *testing.T) {
		input := "Photo,Tleaf\n5.1,25\n"
		_, err := ReadCSV(strings.NewReader(input), DefaultVarNames())
		require.ErrorIs(t, err, errs.ErrMissingColumn)
		require.Contains(t, err.Error(), "Ci")
	})
}

func TestReadCSVBadRequiredCell(t *testing.T) {
	input := "Photo,Ci\n5.1,102\noops,310\n"

	_, err := ReadCSV(strings.NewReader(input), ungroupedVarNames())
	require.Error(t, err)
	require.Contains(t, err.Error(), "row 3")
	require.Contains(t, err.Error(), "Photo")
}

func TestReadCSVOptionalCells(t *testing.T) {
	input := strings.Join([]string{
		"Photo,Ci,Tleaf,PARi,Rd",
		"5.1,102,,NA,1.2",
		"15.2,310,25.0,1500,nan",
	}, "\n")

	curves, err := ReadCSV(strings.NewReader(input), ungroupedVarNames())
	require.NoError(t, err)
	require.Len(t, curves, 1)

	obs := curves[0].Obs
	require.True(t, math.IsNaN(obs[0].Tleaf))
	require.True(t, math.IsNaN(obs[0].PPFD))
	require.Equal(t, 1.2, obs[0].Rd)
	require.Equal(t, 25.0, obs[1].Tleaf)
	require.True(t, math.IsNaN(obs[1].Rd))
}

func TestReadCSVCustomVarNames(t *testing.T) {
	input := "sample,assim,ci_ubar\nplot-7,5.1,102\n"

	names := VarNames{ALeaf: "assim", Ci: "ci_ubar", Group: "sample"}
	curves, err := ReadCSV(strings.NewReader(input), names)
	require.NoError(t, err)
	require.Len(t, curves, 1)
	require.Equal(t, "plot-7", curves[0].ID)
	require.Equal(t, 5.1, curves[0].Obs[0].A)
}

func TestReadCSVEmptyTable(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("Photo,Ci\n"), ungroupedVarNames())
	require.ErrorIs(t, err, errs.ErrTooFewPoints)
}

func TestReadCSVBlankGroupCell(t *testing.T) {
	input := "Curve,Photo,Ci\n,5.1,102\nleaf-9,15.2,310\n"

	curves, err := ReadCSV(strings.NewReader(input), DefaultVarNames())
	require.NoError(t, err)
	require.Len(t, curves, 2)
	require.Equal(t, singleCurveID, curves[0].ID)
	require.Equal(t, "leaf-9", curves[1].ID)
}
