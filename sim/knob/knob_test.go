package knob

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFloat_FixedAlwaysSamplesSameValue(t *testing.T) {
	k := Fixed(3.5)
	assert.Equal(t, 3.5, k.Sample())
	assert.Equal(t, 3.5, k.Sample())
}

func TestFloat_DynamicCallsGenerator(t *testing.T) {
	calls := 0
	k := Dynamic(func() float64 {
		calls++
		return float64(calls)
	})
	assert.Equal(t, 1.0, k.Sample())
	assert.Equal(t, 2.0, k.Sample())
}

func TestFloat_ZeroValueSamplesZero(t *testing.T) {
	var k Float
	assert.Equal(t, 0.0, k.Sample())
}

func TestInt_FixedAlwaysSamplesSameValue(t *testing.T) {
	k := FixedInt(7)
	assert.Equal(t, 7, k.Sample())
	assert.Equal(t, 7, k.Sample())
}

func TestInt_DynamicCallsGenerator(t *testing.T) {
	values := []int{10, 20, 30}
	i := 0
	k := DynamicInt(func() int {
		v := values[i]
		i++
		return v
	})
	assert.Equal(t, 10, k.Sample())
	assert.Equal(t, 20, k.Sample())
	assert.Equal(t, 30, k.Sample())
}
