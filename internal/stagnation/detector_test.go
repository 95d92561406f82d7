package stagnation_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowShopILS/internal/stagnation"
)

type recordingSink struct {
	counts int
	values []float64
}

func (s *recordingSink) RecordLocalOptimumCount() { s.counts++ }

func (s *recordingSink) RecordLocalOptimumValue(v float64) { s.values = append(s.values, v) }

func TestDetector_StagnantAfterFullWindow(t *testing.T) {
	d := stagnation.New(4, false, nil)
	for i := 0; i < 3; i++ {
		d.Observe(7)
		assert.False(t, d.IsStagnant(7), "window not full after %d", i+1)
	}
	d.Observe(7)
	assert.True(t, d.IsStagnant(7))
	assert.False(t, d.IsStagnant(8))
}

func TestDetector_OneDifferentValueBreaksStagnation(t *testing.T) {
	for pos := 0; pos < 4; pos++ {
		d := stagnation.New(4, false, nil)
		for i := 0; i < 4; i++ {
			if i == pos {
				d.Observe(6)
			} else {
				d.Observe(7)
			}
		}
		assert.False(t, d.IsStagnant(7), "different value at %d", pos)
	}
}

func TestDetector_EvictsOldest(t *testing.T) {
	d := stagnation.New(3, false, nil)
	for _, v := range []float64{1, 2, 3, 4, 5} {
		d.Observe(v)
	}
	assert.Equal(t, 3, d.Len())
	assert.Equal(t, 3, d.Cap())
	assert.Equal(t, []float64{3, 4, 5}, d.Values())

	d.Observe(5)
	d.Observe(5)
	assert.True(t, d.IsStagnant(5))
}

func TestDetector_TrendBoundaries(t *testing.T) {
	d := stagnation.New(3, false, nil)
	for i := 0; i < 3; i++ {
		d.Observe(5)
	}
	assert.True(t, d.IsBestImproving(5))
	assert.False(t, d.IsBestImproving(6))
	assert.True(t, d.IsImproving(4))
	assert.False(t, d.IsImproving(5))
}

func TestDetector_TrendUsesMinAndMax(t *testing.T) {
	d := stagnation.New(5, false, nil)
	for _, v := range []float64{10, 3, 8} {
		d.Observe(v)
	}
	assert.True(t, d.IsBestImproving(3))
	assert.False(t, d.IsBestImproving(4))
	assert.True(t, d.IsImproving(9))
	assert.False(t, d.IsImproving(10))
}

func TestDetector_EmptyWindowTrends(t *testing.T) {
	d := stagnation.New(3, false, nil)
	assert.False(t, d.IsBestImproving(1))
	assert.False(t, d.IsImproving(1))
}

func TestDetector_ZeroWindowDisabled(t *testing.T) {
	sink := &recordingSink{}
	d := stagnation.New(0, true, sink)
	for i := 0; i < 10; i++ {
		d.Observe(1)
		assert.False(t, d.IsStagnant(1))
	}
	assert.Zero(t, d.Len())
	assert.Zero(t, sink.counts)
}

func TestDetector_RobustReportsEveryStagnantCall(t *testing.T) {
	sink := &recordingSink{}
	d := stagnation.New(2, true, sink)
	d.Observe(42)
	assert.False(t, d.IsStagnant(42))
	assert.Zero(t, sink.counts)

	d.Observe(42)
	require.True(t, d.IsStagnant(42))
	require.True(t, d.IsStagnant(42))
	assert.False(t, d.IsStagnant(41))

	assert.Equal(t, 2, sink.counts)
	assert.Equal(t, []float64{42, 42}, sink.values)
}

func TestDetector_NotRobustDoesNotReport(t *testing.T) {
	sink := &recordingSink{}
	d := stagnation.New(1, false, sink)
	d.Observe(3)
	assert.True(t, d.IsStagnant(3))
	assert.Zero(t, sink.counts)
}

func TestDetector_RobustWithNilSink(t *testing.T) {
	d := stagnation.New(1, true, nil)
	d.Observe(3)
	assert.True(t, d.IsStagnant(3))
}

func TestDetector_BitwiseEquality(t *testing.T) {
	d := stagnation.New(2, false, nil)
	d.Observe(0)
	d.Observe(math.Copysign(0, -1))
	assert.False(t, d.IsStagnant(0), "-0 and +0 differ bitwise")

	nan := math.NaN()
	d.Observe(nan)
	d.Observe(nan)
	assert.True(t, d.IsStagnant(nan))
}

func TestDetector_ConfigureResets(t *testing.T) {
	d := stagnation.New(2, false, nil)
	d.Observe(1)
	d.Observe(1)
	require.True(t, d.IsStagnant(1))

	d.Configure(3, true)
	assert.Zero(t, d.Len())
	assert.Equal(t, 3, d.Cap())
	assert.True(t, d.Robust())
	assert.False(t, d.IsStagnant(1))

	d.Observe(1)
	d.Reset()
	assert.Zero(t, d.Len())
	assert.Empty(t, d.Values())
}
