package foam

import "fmt"

// ReductionKind selects the scalar reduction applied over a region: sum
// or mean.
type ReductionKind int

const (
	ReductionSum ReductionKind = iota
	ReductionMean
)

// Reduce applies the configured reduction to a slice of values.
func (r ReductionKind) Reduce(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	if r == ReductionMean && len(values) > 0 {
		return sum / float64(len(values))
	}
	return sum
}

// Geometry is a rectangular region of interest over the assembled image.
type Geometry struct {
	X, Y, W, H int
	Active bool
}

// Intersect clips the geometry against an image extent, returning the
// clipped rectangle and whether any overlap remains.
func (g Geometry) Intersect(rows, cols int) (Geometry, bool) {
	x0 := maxInt(g.X, 0)
	y0 := maxInt(g.Y, 0)
	x1 := minInt(g.X+g.W, cols)
	y1 := minInt(g.Y+g.H, rows)
	if x1 <= x0 || y1 <= y0 {
		return Geometry{Active: g.Active}, false
	}
	return Geometry{X: x0, Y: y0, W: x1 - x0, H: y1 - y0, Active: g.Active}, true
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Crop extracts the region's pixel values in row-major order.
func (f *Frame) Crop(g Geometry) []float64 {
	out := make([]float64, 0, g.W*g.H)
	for r := g.Y; r < g.Y+g.H; r++ {
		for c := g.X; c < g.X+g.W; c++ {
			out = append(out, f.At(r, c))
		}
	}
	return out
}

// ProjectX sums (or averages) each row, producing a 1-D projection of
// length g.H.
func (f *Frame) ProjectX(g Geometry, reduction ReductionKind) []float64 {
	out := make([]float64, g.H)
	for r := 0; r < g.H; r++ {
		row := make([]float64, g.W)
		for c := 0; c < g.W; c++ {
			row[c] = f.At(g.Y+r, g.X+c)
		}
		out[r] = reduction.Reduce(row)
	}
	return out
}

// ProjectY sums (or averages) each column, producing a 1-D projection of
// length g.W.
func (f *Frame) ProjectY(g Geometry, reduction ReductionKind) []float64 {
	out := make([]float64, g.W)
	for c := 0; c < g.W; c++ {
		col := make([]float64, g.H)
		for r := 0; r < g.H; r++ {
			col[r] = f.At(g.Y+r, g.X+c)
		}
		out[c] = reduction.Reduce(col)
	}
	return out
}

// ROISlot is the per-train output for one of the four ROI geometries.
type ROISlot struct {
	Geometry Geometry
	Reduction ReductionKind

	FOM *float64 // nil once the geometry falls fully outside the image extent
	ProjX []float64
	ProjY []float64
	History *PairData
}

// NewROISlot constructs a slot with its own bounded FOM time series.
func NewROISlot() *ROISlot {
	return &ROISlot{History: NewPairData(MaxCorrelationLength)}
}

// Apply computes the ROI's scalar and projections against masked_mean,
// appending to its time series. When the geometry does not intersect the
// image, outputs reset to nil but the geometry (and its Active flag) is
// retained.
func (s *ROISlot) Apply(tid int64, image *Frame) {
	clipped, ok := s.Geometry.Intersect(image.Rows, image.Cols)
	if !ok {
		s.FOM = nil
		s.ProjX = nil
		s.ProjY = nil
		zero := 0.0
		s.History.Append(float64(tid), zero)
		return
	}

	fom := s.Reduction.Reduce(image.Crop(clipped))
	s.FOM = &fom
	s.ProjX = image.ProjectX(clipped, s.Reduction)
	s.ProjY = image.ProjectY(clipped, s.Reduction)
	s.History.Append(float64(tid), fom)
}

// elementwise applies op to two equal-length slices, returning a new slice.
func elementwise(a, b []float64, op func(x, y float64) float64) ([]float64, error) {
	if len(a) != len(b) {
		return nil, fmt.Errorf("%w: elementwise op length %d vs %d", ErrShapeMismatch, len(a), len(b))
	}
	out := make([]float64, len(a))
	for i := range a {
		out[i] = op(a[i], b[i])
	}
	return out, nil
}

// ROIData is the ProcessedData sub-object for the four ROI geometries plus
// the derived roi1/roi2 combinations.
type ROIData struct {
	Slots [4]*ROISlot

	// Norm is the scalar selectable by the ROI normalizer.
	Norm float64

	Roi1Sub2 float64
	Roi1Add2 float64
	Proj1Sub2 []float64
	Proj1Add2 []float64
	derivedValid bool
}

// NewROIData constructs four empty ROI slots.
func NewROIData() *ROIData {
	d := &ROIData{}
	for i := range d.Slots {
		d.Slots[i] = NewROISlot()
	}
	return d
}

// ComputeDerived fills roi1_sub_roi2, roi1_add_roi2, proj1_sub_proj2,
// proj1_add_proj2 from ROI 1 and ROI 2. Returns a
// ProcessingError (not fatal) if the two ROI projections differ in shape.
func (d *ROIData) ComputeDerived() error {
	r1, r2 := d.Slots[0], d.Slots[1]
	if r1.FOM == nil || r2.FOM == nil {
		d.derivedValid = false
		return nil
	}
	d.Roi1Sub2 = *r1.FOM - *r2.FOM
	d.Roi1Add2 = *r1.FOM + *r2.FOM

	sub, err := elementwise(r1.ProjX, r2.ProjX, func(x, y float64) float64 { return x - y })
	if err != nil {
		return NewProcessingError("roi", "proj1_sub_proj2 shape mismatch", err)
	}
	add, err := elementwise(r1.ProjX, r2.ProjX, func(x, y float64) float64 { return x + y })
	if err != nil {
		return NewProcessingError("roi", "proj1_add_proj2 shape mismatch", err)
	}
	d.Proj1Sub2 = sub
	d.Proj1Add2 = add
	d.derivedValid = true
	return nil
}
