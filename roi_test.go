package foam

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildLinearFrame(rows, cols int) *Frame {
	f := NewFrame(rows, cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			f.Set(r, c, float64(r+c))
		}
	}
	return f
}

func TestROISlotAppliesReductionAndProjections(t *testing.T) {
	img := buildLinearFrame(6, 6)
	slot := NewROISlot()
	slot.Geometry = Geometry{X: 1, Y: 1, W: 4, H: 4, Active: true}
	slot.Reduction = ReductionMean

	slot.Apply(100, img)
	require.NotNil(t, slot.FOM)

	// the cropped region is rows/cols [1,5), a[r,c] = r+c, mean over the
	// 4x4 block is the mean of r+c for r,c in [1,4] -> (1+2+3+4)/4 *2 = 5
	assert.InDelta(t, 5.0, *slot.FOM, 1e-9)
	assert.Len(t, slot.ProjX, 4)
	assert.Len(t, slot.ProjY, 4)

	x, y := slot.History.Snapshot()
	assert.Equal(t, []float64{100}, x)
	assert.InDeltaSlice(t, []float64{5.0}, y, 1e-9)
}

func TestROISlotOutsideImageKeepsGeometryClearsOutputs(t *testing.T) {
	img := buildLinearFrame(4, 4)
	slot := NewROISlot()
	slot.Geometry = Geometry{X: 100, Y: 100, W: 4, H: 4, Active: true}

	slot.Apply(5, img)
	assert.Nil(t, slot.FOM)
	assert.Nil(t, slot.ProjX)
	assert.Nil(t, slot.ProjY)
	assert.True(t, slot.Geometry.Active, "geometry/active flag is retained")

	x, y := slot.History.Snapshot()
	assert.Equal(t, []float64{5}, x)
	assert.Equal(t, []float64{0}, y)
}

func TestROIDataComputeDerived(t *testing.T) {
	img := buildLinearFrame(6, 6)
	d := NewROIData()
	d.Slots[0].Geometry = Geometry{X: 0, Y: 0, W: 2, H: 2, Active: true}
	d.Slots[1].Geometry = Geometry{X: 2, Y: 2, W: 2, H: 2, Active: true}
	d.Slots[0].Reduction = ReductionSum
	d.Slots[1].Reduction = ReductionSum

	d.Slots[0].Apply(1, img)
	d.Slots[1].Apply(1, img)

	require.NoError(t, d.ComputeDerived())
	assert.InDelta(t, *d.Slots[0].FOM-*d.Slots[1].FOM, d.Roi1Sub2, 1e-9)
	assert.InDelta(t, *d.Slots[0].FOM+*d.Slots[1].FOM, d.Roi1Add2, 1e-9)
	require.Len(t, d.Proj1Sub2, len(d.Slots[0].ProjX))
}

func TestGeometryIntersectClipsToImageExtent(t *testing.T) {
	g := Geometry{X: -2, Y: -2, W: 6, H: 6}
	clipped, ok := g.Intersect(4, 4)
	require.True(t, ok)
	assert.Equal(t, Geometry{X: 0, Y: 0, W: 4, H: 4}, clipped)

	outside := Geometry{X: 10, Y: 10, W: 2, H: 2}
	_, ok = outside.Intersect(4, 4)
	assert.False(t, ok)
}
