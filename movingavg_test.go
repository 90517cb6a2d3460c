package foam

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMovingAverageScalarSaturatesAtWindow(t *testing.T) {
	m := NewMovingAverageScalar(4)
	samples := []float64{2, 4, 6, 8, 10}
	want := []float64{2, 3, 4, 5, 6.25}

	for i, x := range samples {
		got := m.Update(x)
		assert.InDelta(t, want[i], got, 1e-9, "sample %d", i)
	}
	assert.Equal(t, 4, m.Count())
}

func TestMovingAverageScalarDeleteResets(t *testing.T) {
	m := NewMovingAverageScalar(3)
	m.Update(1)
	m.Update(2)
	m.Delete()

	mean, valid := m.Mean()
	assert.False(t, valid)
	assert.Equal(t, 0.0, mean)
	assert.Equal(t, 0, m.Count())

	got := m.Update(5)
	assert.Equal(t, 5.0, got)
	assert.Equal(t, 1, m.Count())
}

func TestMovingAverageArrayResetsOnShapeChange(t *testing.T) {
	m := NewMovingAverageArray(2)
	m.Update2D([]float64{1, 2, 3, 4}, 2, 2)
	data, shape, ok := m.Snapshot()
	assert.True(t, ok)
	assert.Equal(t, []int{2, 2}, shape)
	assert.Equal(t, []float64{1, 2, 3, 4}, data)

	// shape mismatch resets instead of folding
	m.Update2D([]float64{10, 20, 30, 40, 50, 60}, 2, 3)
	data, shape, ok = m.Snapshot()
	assert.True(t, ok)
	assert.Equal(t, []int{2, 3}, shape)
	assert.Equal(t, []float64{10, 20, 30, 40, 50, 60}, data)
}
