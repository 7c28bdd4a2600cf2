package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResource_DistributeAndRelease(t *testing.T) {
	r := New(10, nil)
	require.NoError(t, r.Distribute("container-a", 4))
	assert.Equal(t, 6.0, r.Available())
	assert.Equal(t, 4.0, r.Claimed("container-a"))
	assert.Equal(t, 0.4, r.Utilization())

	got := r.Release("container-a", 4)
	assert.Equal(t, 4.0, got)
	assert.Equal(t, 10.0, r.Available())
	assert.Equal(t, 0.0, r.Claimed("container-a"))
}

func TestResource_DistributeExceedsCapacity(t *testing.T) {
	r := New(10, nil)
	require.NoError(t, r.Distribute("a", 10))
	err := r.Distribute("b", 1)
	assert.ErrorIs(t, err, ErrCapacityExceeded)
	assert.Equal(t, 0.0, r.Available())
}

func TestResource_ReleaseAllReleasesEntireClaim(t *testing.T) {
	r := New(10, nil)
	require.NoError(t, r.Distribute("a", 3))
	require.NoError(t, r.Distribute("a", 2))
	got := r.ReleaseAll("a")
	assert.Equal(t, 5.0, got)
	assert.Equal(t, 10.0, r.Available())
}

func TestResource_ReleaseMoreThanHeldClampsToHeld(t *testing.T) {
	r := New(10, nil)
	require.NoError(t, r.Distribute("a", 2))
	got := r.Release("a", 100)
	assert.Equal(t, 2.0, got)
	assert.Equal(t, 10.0, r.Available())
}

func TestResource_UtilizationInPast_TimeWeightedMean(t *testing.T) {
	clock := int64(0)
	r := New(10, func() int64 { return clock })

	// t=0: claim 2 (20% used)
	require.NoError(t, r.Distribute("a", 2))

	// t=5: claim 2 more (40% used) -- first 5 ticks were at 20%
	clock = 5
	require.NoError(t, r.Distribute("b", 2))

	// t=10: sample window [0,10] is half at 20%, half at 40% => mean 30%
	clock = 10
	got := r.UtilizationInPast(10)
	assert.InDelta(t, 0.30, got, 1e-9)
}

func TestResource_UtilizationInPast_ZeroCapacityIsZero(t *testing.T) {
	r := New(0, nil)
	assert.Equal(t, 0.0, r.UtilizationInPast(10))
	assert.Equal(t, 0.0, r.Utilization())
}

func TestResource_DistributeNegativePanics(t *testing.T) {
	r := New(10, nil)
	assert.Panics(t, func() { _ = r.Distribute("a", -1) })
}
