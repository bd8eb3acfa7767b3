package platform

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReserveCommitDecommitRelease(t *testing.T) {
	r, err := Reserve(1024)
	require.NoError(t, err)
	defer r.Release()

	require.Equal(t, ReservedElementCount(), r.ReservedElements())

	slots := r.Slots()
	require.Equal(t, int(r.ReservedElements()), len(slots))
	// Uncommitted pages read as zero without any write.
	require.EqualValues(t, 0, slots[0])
	require.EqualValues(t, 0, slots[100])

	require.NoError(t, r.Commit(0, 10))
	slots[5] = 0xdeadbeef
	require.EqualValues(t, 0xdeadbeef, slots[5])

	require.NoError(t, r.Decommit(0, 10))
	// Freshly re-committed pages are zero-filled again.
	require.NoError(t, r.Commit(0, 10))
	require.EqualValues(t, 0, slots[5])
}

func TestReserveRejectsOversizedMax(t *testing.T) {
	_, err := Reserve(ReservedElementCount() + 1)
	require.Error(t, err)
}

func TestPageSizeLog2IsPositive(t *testing.T) {
	require.Greater(t, PageSizeLog2(), 0)
}
