package foam

import (
	"math"
	"sync"
)

// MaxCorrelationLength bounds a PairData used for correlation/ROI time
// series.
const MaxCorrelationLength = 3000

// MaxAccumulatedBins bounds an AccumulatedPairData's bin count.
const MaxAccumulatedBins = 600

// MinBinCount is the minimum fold count for a bin to be surfaced on read.
const MinBinCount = 2

// PairData is a bounded, mutex-guarded ordered stream of (x, y) points.
// Readers get point-in-time copies.
type PairData struct {
	mu sync.Mutex
	maxLength int
	x []float64
	y []float64
}

// NewPairData constructs a PairData bounded at maxLength (<=0 uses
// MaxCorrelationLength).
func NewPairData(maxLength int) *PairData {
	if maxLength <= 0 {
		maxLength = MaxCorrelationLength
	}
	return &PairData{maxLength: maxLength}
}

// Append adds a new (x, y) sample, discarding the oldest entry on overflow.
func (p *PairData) Append(x, y float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.x = append(p.x, x)
	p.y = append(p.y, y)
	if len(p.x) > p.maxLength {
		p.x = p.x[1:]
		p.y = p.y[1:]
	}
}

// Snapshot returns copies of the internal x and y sequences.
func (p *PairData) Snapshot() (x, y []float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]float64(nil), p.x...), append([]float64(nil), p.y...)
}

// Reset empties the stream.
func (p *PairData) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.x = nil
	p.y = nil
}

// DataStat is a Welford-online running statistic for one accumulated bin.
//
// Min/Max intentionally expose avg +/- 0.5*stddev rather than literal
// extrema — a presentation convention kept for downstream plot
// compatibility.
type DataStat struct {
	Count int
	Avg float64
	Stddev float64
	Min float64
	Max float64

	m2 float64 // Welford running sum-of-squares-of-differences
}

func (s *DataStat) fold(y float64) {
	s.Count++
	delta := y - s.Avg
	s.Avg += delta / float64(s.Count)
	delta2 := y - s.Avg
	s.m2 += delta * delta2

	variance := 0.0
	if s.Count > 1 {
		variance = s.m2 / float64(s.Count)
	}
	s.Stddev = math.Sqrt(variance)
	s.Min = s.Avg - 0.5*s.Stddev
	s.Max = s.Avg + 0.5*s.Stddev
}

// accumBin is one (x-center, DataStat) pair, with bookkeeping for when a
// new sample falls outside the resolution window and the bin finalizes.
type accumBin struct {
	xCenter float64
	nSamples int // number of samples folded in; xCenter is their running average x
	stat DataStat
}

// AccumulatedPairData folds (x, y) samples into resolution-wide bins using
// Welford's online update.
//
// Invariants: resolution > 0; a bin's count is monotonically nondecreasing
// until it finalizes (a new x lands outside the resolution window); total
// bin count is bounded by MaxAccumulatedBins; a bin with count < MinBinCount
// at the tail is dropped from reads.
type AccumulatedPairData struct {
	mu sync.Mutex
	resolution float64
	bins []*accumBin
}

// NewAccumulatedPairData constructs an accumulator for the given
// resolution. resolution <= 0 panics, matching the stated invariant that
// resolution must be positive.
func NewAccumulatedPairData(resolution float64) *AccumulatedPairData {
	if resolution <= 0 {
		panic("foam: AccumulatedPairData resolution must be > 0")
	}
	return &AccumulatedPairData{resolution: resolution}
}

// Append folds a new (x, y) sample into the trailing bin if x falls within
// `resolution` of that bin's current center, otherwise finalizes the
// trailing bin and opens a new one.
func (a *AccumulatedPairData) Append(x, y float64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.bins) > 0 {
		tail := a.bins[len(a.bins)-1]
		// The window is inclusive; the small relative tolerance keeps a
		// sample lying exactly `resolution` from the center inside it
		// despite floating-point rounding of the running center.
		if math.Abs(x-tail.xCenter) <= a.resolution*(1+1e-9) {
			tail.nSamples++
			tail.xCenter += (x - tail.xCenter) / float64(tail.nSamples)
			tail.stat.fold(y)
			return
		}
	}

	bin := &accumBin{xCenter: x, nSamples: 1}
	bin.stat.fold(y)
	a.bins = append(a.bins, bin)

	if len(a.bins) > MaxAccumulatedBins {
		a.bins = a.bins[1:]
	}
}

// Snapshot returns the bin centers and DataStat values for every finalized
// bin regardless of its fold count, plus the trailing (still-open) bin only
// once it has reached MinBinCount — below that it is too sparse to plot and
// is dropped from the read until another sample arrives.
func (a *AccumulatedPairData) Snapshot() (x []float64, stats []DataStat) {
	a.mu.Lock()
	defer a.mu.Unlock()

	n := len(a.bins)
	for i, b := range a.bins {
		if i == n-1 && b.stat.Count < MinBinCount {
			continue
		}
		x = append(x, b.xCenter)
		stats = append(stats, b.stat)
	}
	return x, stats
}

// Reset empties the accumulator.
func (a *AccumulatedPairData) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.bins = nil
}

// Resolution returns the configured resolution.
func (a *AccumulatedPairData) Resolution() float64 {
	return a.resolution
}
