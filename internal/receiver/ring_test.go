package receiver

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRingPushWithinCapacity(t *testing.T) {
	r := newRing[int](4)
	r.Push(1)
	r.Push(2)
	r.Push(3)

	require.Equal(t, 3, r.Len())
	require.Equal(t, []int{1, 2, 3}, r.Values())

	last, ok := r.Last()
	require.True(t, ok)
	require.Equal(t, 3, last)
}

func TestRingEvictsOldestPastCapacity(t *testing.T) {
	r := newRing[int](3)
	for i := 1; i <= 5; i++ {
		r.Push(i)
	}

	require.Equal(t, 3, r.Len())
	require.Equal(t, []int{3, 4, 5}, r.Values())

	last, ok := r.Last()
	require.True(t, ok)
	require.Equal(t, 5, last)
}

func TestRingLastOnEmpty(t *testing.T) {
	r := newRing[int](2)
	_, ok := r.Last()
	require.False(t, ok)
	require.Equal(t, 0, r.Len())
}

func TestRingZeroCapacityPushIsNoop(t *testing.T) {
	r := newRing[int](0)
	r.Push(1)
	require.Equal(t, 0, r.Len())
	_, ok := r.Last()
	require.False(t, ok)
}
