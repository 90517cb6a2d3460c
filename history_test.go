package foam

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPairDataBoundedAppend(t *testing.T) {
	p := NewPairData(3)
	p.Append(1, 10)
	p.Append(2, 20)
	p.Append(3, 30)
	p.Append(4, 40)

	x, y := p.Snapshot()
	assert.Equal(t, []float64{2, 3, 4}, x)
	assert.Equal(t, []float64{20, 30, 40}, y)
}

func TestAccumulatedPairDataFoldsWithinResolutionWindow(t *testing.T) {
	a := NewAccumulatedPairData(0.1)
	a.Append(2.00, 0.4)

	// a lone sample is also the trailing bin, and a trailing bin below
	// MinBinCount is dropped from reads entirely.
	xs, stats := a.Snapshot()
	assert.Empty(t, xs)
	assert.Empty(t, stats)

	a.Append(2.02, 0.5)
	xs, stats = a.Snapshot()
	require.Len(t, xs, 1)
	assert.InDelta(t, 2.01, xs[0], 1e-9)
	assert.Equal(t, 2, stats[0].Count)
	assert.InDelta(t, 0.45, stats[0].Avg, 1e-9)

	a.Append(2.11, 0.6)
	xs, stats = a.Snapshot()
	require.Len(t, xs, 1)
	assert.InDelta(t, 2.0433333333, xs[0], 1e-6)
	assert.Equal(t, 3, stats[0].Count)
	assert.InDelta(t, 0.5, stats[0].Avg, 1e-9)
}

// TestAccumulatedPairDataMinMaxConvention pins the avg +/- 0.5*stddev
// convention against the worked two-sample case from spec.md scenario 4:
// stddev divides the running sum-of-squares by count (population variance),
// not count-1, matching AccumulatedPairData.__set__ in the original source.
func TestAccumulatedPairDataMinMaxConvention(t *testing.T) {
	a := NewAccumulatedPairData(0.1)
	a.Append(2.00, 0.4)
	a.Append(2.02, 0.5)

	_, stats := a.Snapshot()
	require.Len(t, stats, 1)
	assert.InDelta(t, 0.45, stats[0].Avg, 1e-9)
	assert.InDelta(t, 0.05, stats[0].Stddev, 1e-9)
	assert.InDelta(t, 0.425, stats[0].Min, 1e-9)
	assert.InDelta(t, 0.475, stats[0].Max, 1e-9)
}

func TestAccumulatedPairDataDropsSparseTrailingBin(t *testing.T) {
	a := NewAccumulatedPairData(0.05)
	a.Append(1.0, 1.0)
	a.Append(2.0, 2.0)

	// the first bin is not the trailing bin, so it is surfaced regardless
	// of its count; the second (trailing, still-open) bin has only one
	// sample and is below MinBinCount, so it is dropped from the read.
	xs, stats := a.Snapshot()
	require.Len(t, xs, 1)
	assert.InDelta(t, 1.0, xs[0], 1e-9)
	assert.Equal(t, 1, stats[0].Count)

	a.Append(2.01, 3.0)
	xs, stats = a.Snapshot()
	require.Len(t, xs, 2, "trailing bin now has 2 samples and is surfaced")
	assert.InDelta(t, 1.0, xs[0], 1e-9)
	assert.InDelta(t, 2.005, xs[1], 1e-9)
	assert.Equal(t, 2, stats[1].Count)
}

func TestAccumulatedPairDataPanicsOnNonPositiveResolution(t *testing.T) {
	assert.Panics(t, func() { NewAccumulatedPairData(0) })
}
