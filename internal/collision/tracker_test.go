package collision

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/leafgas/photofit/errs"
)

func TestTrackerBasics(t *testing.T) {
	tracker := NewTracker()

	require.Equal(t, 0, tracker.Count())
	require.False(t, tracker.HasCollision())

	require.NoError(t, tracker.Track("leaf-1", 0xaaaa))
	require.NoError(t, tracker.Track("leaf-2", 0xbbbb))

	require.Equal(t, 2, tracker.Count())
	require.Equal(t, []string{"leaf-1", "leaf-2"}, tracker.IDs())
	require.False(t, tracker.HasCollision())
}

func TestTrackerEmptyID(t *testing.T) {
	tracker := NewTracker()
	require.ErrorIs(t, tracker.Track("", 0xaaaa), errs.ErrEmptyCurveID)
}

func TestTrackerDuplicateID(t *testing.T) {
	tracker := NewTracker()

	require.NoError(t, tracker.Track("leaf-1", 0xaaaa))
	require.ErrorIs(t, tracker.Track("leaf-1", 0xaaaa), errs.ErrDuplicateCurve)
	require.Equal(t, 1, tracker.Count())
}

func TestTrackerHashCollision(t *testing.T) {
	tracker := NewTracker()

	require.NoError(t, tracker.Track("leaf-1", 0xaaaa))
	require.NoError(t, tracker.Track("leaf-2", 0xaaaa))

	// Distinct identifiers on the same hash are tracked, only flagged.
	require.True(t, tracker.HasCollision())
	require.Equal(t, 2, tracker.Count())
}

func TestTrackerReset(t *testing.T) {
	tracker := NewTracker()

	require.NoError(t, tracker.Track("leaf-1", 0xaaaa))
	require.NoError(t, tracker.Track("leaf-2", 0xaaaa))
	tracker.Reset()

	require.Equal(t, 0, tracker.Count())
	require.False(t, tracker.HasCollision())
	require.NoError(t, tracker.Track("leaf-1", 0xaaaa))
}
