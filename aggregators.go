package foam

import "github.com/samber/lo"

// CorrelationSlot is one of the four correlation slots.
// It carries (device_id, property, resolution) configuration and rebuilds
// its backing history whenever that triple changes, switching between a raw
// PairData (resolution == 0) and an AccumulatedPairData (resolution > 0).
type CorrelationSlot struct {
	Device string
	Property string
	Resolution float64

	raw *PairData
	accum *AccumulatedPairData
}

// Reconfigure rebuilds the slot's backing history if (device, property,
// resolution) changed.
func (c *CorrelationSlot) Reconfigure(device, property string, resolution float64) {
	if device == c.Device && property == c.Property && resolution == c.Resolution {
		return
	}
	c.Device = device
	c.Property = property
	c.Resolution = resolution
	c.raw = nil
	c.accum = nil
	if resolution > 0 {
		c.accum = NewAccumulatedPairData(resolution)
	} else {
		c.raw = NewPairData(MaxCorrelationLength)
	}
}

// Append folds one (x, fom) sample, resolving x via fetch_property against
// the raw bundle ("Any" resolves to the train id itself).
func (c *CorrelationSlot) Append(tid int64, raw RawValues, fom float64) {
	var x float64
	value, reason := FetchProperty(tid, raw, c.Device, c.Property)
	if value != nil {
		x, _ = toFloat64(value)
	} else if reason == "" && c.Device == "Any" {
		x = float64(tid)
	} else {
		return
	}

	if c.accum != nil {
		c.accum.Append(x, fom)
	} else if c.raw != nil {
		c.raw.Append(x, fom)
	}
}

// Snapshot returns the slot's current history as parallel x/avg-fom
// sequences regardless of which backing variant is active.
func (c *CorrelationSlot) Snapshot() (x, y []float64) {
	if c.accum != nil {
		xs, stats := c.accum.Snapshot()
		ys := make([]float64, len(stats))
		for i, s := range stats {
			ys[i] = s.Avg
		}
		return xs, ys
	}
	if c.raw != nil {
		return c.raw.Snapshot()
	}
	return nil, nil
}

func toFloat64(v interface{}) (float64, bool) {
	switch n := v.(type) {
		case float64:
			return n, true
		case float32:
			return float64(n), true
		case int:
			return float64(n), true
		case int64:
			return float64(n), true
		default:
			return 0, false
	}
}

// CorrelationData holds the four correlation slots.
type CorrelationData struct {
	Slots [4]*CorrelationSlot
}

// NewCorrelationData constructs four empty slots.
func NewCorrelationData() *CorrelationData {
	d := &CorrelationData{}
	for i := range d.Slots {
		d.Slots[i] = &CorrelationSlot{}
	}
	return d
}

// BinAxis is a slow-changing set of bin centers and a label for a 1-D
// binning aggregate.
type BinAxis struct {
	Centers []float64
	Label string
}

// binEntry accumulates count/avg_vfom/avg_fom for one bin center.
type binEntry struct {
	count int
	avgFOM float64
	avgVFOM []float64
}

func (b *binEntry) fold(fom float64, vfom []float64) {
	b.count++
	b.avgFOM += (fom - b.avgFOM) / float64(b.count)
	if b.avgVFOM == nil && len(vfom) > 0 {
		b.avgVFOM = make([]float64, len(vfom))
	}
	for i, v := range vfom {
		if i >= len(b.avgVFOM) {
			break
		}
		b.avgVFOM[i] += (v - b.avgVFOM[i]) / float64(b.count)
	}
}

// Bin1D is a 1-D binning aggregate keyed to a configured axis.
type Bin1D struct {
	Axis BinAxis
	FOMAxis string // the paired FOM source name

	bins []*binEntry
}

// Configure (re)sizes the bin entries to match the axis.
func (b *Bin1D) Configure(axis BinAxis, fomAxis string) {
	b.Axis = axis
	b.FOMAxis = fomAxis
	b.bins = make([]*binEntry, len(axis.Centers))
	for i := range b.bins {
		b.bins[i] = &binEntry{}
	}
}

// Update finds the nearest bin center to x and folds (fom, vfom) into it.
func (b *Bin1D) Update(x, fom float64, vfom []float64) {
	idx := nearestCenter(b.Axis.Centers, x)
	if idx < 0 {
		return
	}
	b.bins[idx].fold(fom, vfom)
}

// Reset clears every bin's accumulator.
func (b *Bin1D) Reset() {
	for _, e := range b.bins {
		*e = binEntry{}
	}
}

// Counts returns the per-bin fold counts; AvgFOMs returns the per-bin
// running FOM averages.
func (b *Bin1D) Counts() []int {
	out := make([]int, len(b.bins))
	for i, e := range b.bins {
		out[i] = e.count
	}
	return out
}

func (b *Bin1D) AvgFOMs() []float64 {
	out := make([]float64, len(b.bins))
	for i, e := range b.bins {
		out[i] = e.avgFOM
	}
	return out
}

func nearestCenter(centers []float64, x float64) int {
	best := -1
	bestDist := 0.0
	for i, c := range centers {
		d := x - c
		if d < 0 {
			d = -d
		}
		if best == -1 || d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}

// Bin2D accumulates a per-bin heatmap row across two axes.
type Bin2D struct {
	XAxis, YAxis BinAxis
	heatmap [][]*binEntry
}

// Configure (re)sizes the 2-D bin grid.
func (b *Bin2D) Configure(xAxis, yAxis BinAxis) {
	b.XAxis = xAxis
	b.YAxis = yAxis
	b.heatmap = make([][]*binEntry, len(yAxis.Centers))
	for i := range b.heatmap {
		b.heatmap[i] = make([]*binEntry, len(xAxis.Centers))
		for j := range b.heatmap[i] {
			b.heatmap[i][j] = &binEntry{}
		}
	}
}

// Update folds fom into the nearest (x, y) bin.
func (b *Bin2D) Update(x, y, fom float64) {
	xi := nearestCenter(b.XAxis.Centers, x)
	yi := nearestCenter(b.YAxis.Centers, y)
	if xi < 0 || yi < 0 {
		return
	}
	b.heatmap[yi][xi].fold(fom, nil)
}

// Reset clears the grid.
func (b *Bin2D) Reset() {
	for _, row := range b.heatmap {
		for _, e := range row {
			*e = binEntry{}
		}
	}
}

// Heatmap returns the per-cell average FOM as a row-major grid.
func (b *Bin2D) Heatmap() [][]float64 {
	out := make([][]float64, len(b.heatmap))
	for i, row := range b.heatmap {
		out[i] = make([]float64, len(row))
		for j, e := range row {
			out[i][j] = e.avgFOM
		}
	}
	return out
}

// Histogram is a simple fixed-bin-edge histogram used for per-train and
// per-pulse FOM distributions.
type Histogram struct {
	Edges []float64
	Counts []int
}

// NewHistogram builds a histogram over len(edges)-1 bins.
func NewHistogram(edges []float64) *Histogram {
	return &Histogram{Edges: edges, Counts: make([]int, maxInt(len(edges)-1, 0))}
}

// Add folds a single FOM value into the histogram.
func (h *Histogram) Add(v float64) {
	for i := 0; i < len(h.Edges)-1; i++ {
		if v >= h.Edges[i] && v < h.Edges[i+1] {
			h.Counts[i]++
			return
		}
	}
}

// StatisticsData holds the per-train and per-POI-pulse FOM histograms.
type StatisticsData struct {
	TrainHistogram *Histogram
	PulseHistograms map[int]*Histogram // keyed by POI pulse index
}

// NewStatisticsData constructs empty histograms against the given edges.
func NewStatisticsData(edges []float64) *StatisticsData {
	return &StatisticsData{
		TrainHistogram: NewHistogram(edges),
		PulseHistograms: make(map[int]*Histogram),
	}
}

// AddPulse folds a per-pulse FOM into the histogram for that POI index,
// creating one on first use.
func (s *StatisticsData) AddPulse(idx int, v float64, edges []float64) {
	h, ok := s.PulseHistograms[idx]
	if !ok {
		h = NewHistogram(edges)
		s.PulseHistograms[idx] = h
	}
	h.Add(v)
}

// ConsistentSchema reports whether a set of named sub-record-style counts
// agree across trains, using lo.Uniq to detect schema drift.
func ConsistentSchema(counts map[string]uint64, ignore ...string) bool {
	skip := make(map[string]struct{}, len(ignore))
	for _, s := range ignore {
		skip[s] = struct{}{}
	}
	vals := make([]uint64, 0, len(counts))
	for k, v := range counts {
		if _, skipped := skip[k]; skipped {
			continue
		}
		vals = append(vals, v)
	}
	return len(lo.Uniq(vals)) <= 1
}
