package hash

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGroupID(t *testing.T) {
	t.Run("Deterministic", func(t *testing.T) {
		require.Equal(t, GroupID("leaf-1"), GroupID("leaf-1"))
	})

	t.Run("DistinctLabels", func(t *testing.T) {
		require.NotEqual(t, GroupID("leaf-1"), GroupID("leaf-2"))
	})

	t.Run("EmptyLabel", func(t *testing.T) {
		// Empty labels still hash to a fixed, nonzero value.
		require.Equal(t, GroupID(""), GroupID(""))
		require.NotZero(t, GroupID(""))
	})
}
