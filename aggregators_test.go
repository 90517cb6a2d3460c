package foam

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorrelationSlotReconfigureSwitchesBackingStore(t *testing.T) {
	slot := &CorrelationSlot{}
	slot.Reconfigure("XGM/OUT", "intensity", 0)
	assert.NotNil(t, slot.raw)
	assert.Nil(t, slot.accum)

	slot.Reconfigure("XGM/OUT", "intensity", 0.5)
	assert.Nil(t, slot.raw)
	require.NotNil(t, slot.accum)
	assert.Equal(t, 0.5, slot.accum.Resolution())
}

func TestCorrelationSlotAppendResolvesAnyDeviceToTrainID(t *testing.T) {
	slot := &CorrelationSlot{}
	slot.Reconfigure("Any", "", 0)
	slot.Append(100, RawValues{}, 42.0)

	x, y := slot.Snapshot()
	assert.Equal(t, []float64{100}, x)
	assert.Equal(t, []float64{42.0}, y)
}

func TestBin1DFoldsIntoNearestCenter(t *testing.T) {
	b := &Bin1D{}
	b.Configure(BinAxis{Centers: []float64{0, 10, 20}}, "fom")

	b.Update(1, 5, nil)
	b.Update(2, 7, nil)
	b.Update(11, 100, nil)

	counts := b.Counts()
	assert.Equal(t, []int{2, 1, 0}, counts)

	avg := b.AvgFOMs()
	assert.InDelta(t, 6.0, avg[0], 1e-9)
	assert.InDelta(t, 100.0, avg[1], 1e-9)
}

func TestBin2DHeatmap(t *testing.T) {
	b := &Bin2D{}
	b.Configure(BinAxis{Centers: []float64{0, 10}}, BinAxis{Centers: []float64{0, 10}})

	b.Update(1, 1, 5)
	b.Update(1, 1, 15)
	b.Update(11, 11, 100)

	hm := b.Heatmap()
	assert.InDelta(t, 10.0, hm[0][0], 1e-9)
	assert.InDelta(t, 100.0, hm[1][1], 1e-9)
}

func TestHistogramAddBucketsByEdges(t *testing.T) {
	h := NewHistogram([]float64{0, 1, 2, 3})
	h.Add(0.5)
	h.Add(1.5)
	h.Add(1.9)
	h.Add(5.0) // outside edges, silently dropped

	assert.Equal(t, []int{1, 2, 0}, h.Counts)
}

func TestConsistentSchemaDetectsDrift(t *testing.T) {
	assert.True(t, ConsistentSchema(map[string]uint64{"a": 5, "b": 5, "c": 5}))
	assert.False(t, ConsistentSchema(map[string]uint64{"a": 5, "b": 6}))
	assert.True(t, ConsistentSchema(map[string]uint64{"a": 5, "b": 6}, "b"))
}
