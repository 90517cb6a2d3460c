package foam

import (
	"fmt"
	"math"

	"github.com/samber/lo"
)

// ThresholdMask is an elementwise clamp (low, high); +/-Inf denotes an
// unset bound.
type ThresholdMask struct {
	Low float64
	High float64
}

func defaultThresholdMask() ThresholdMask {
	return ThresholdMask{Low: math.Inf(-1), High: math.Inf(1)}
}

// ImageData is the per-train image state: the conditioned mean image, its
// sparse per-pulse materializations, and the dark/threshold/mask pipeline
// that produces MaskedMean from a raw stack.
type ImageData struct {
	// PixelSize is immutable once set at construction.
	PixelSize float64

	// Images is a sparse vector of per-pulse 2-D arrays (row-major,
	// width/height tracked via Rows/Cols); entries outside POIIndices are
	// left as nil (absent, not zeroed).
	Images []*Frame
	// NImages is len(Images).
	NImages int
	// SlicedIndices are the original pulse positions that survived
	// slicing. Invariant: len(SlicedIndices) == NImages.
	SlicedIndices []int
	// POIIndices index into Images (pulses-of-interest whose single-pulse
	// image must be materialized).
	POIIndices []int

	Background float64

	DarkMean *MovingAverageArray
	NDarkPulses int
	DarkCount int

	ImageMask *Frame // boolean mask, same shape as a single image
	ThresholdMask ThresholdMask
	Reference *Frame

	Mean *Frame
	MaskedMean *Frame
}

// Frame is a simple row-major 2-D float64 array, the in-module stand-in for
// the geometry collaborator's assembled image.
type Frame struct {
	Rows, Cols int
	Data []float64
}

// NewFrame allocates a zeroed frame.
func NewFrame(rows, cols int) *Frame {
	return &Frame{Rows: rows, Cols: cols, Data: make([]float64, rows*cols)}
}

// At returns the value at (r, c).
func (f *Frame) At(r, c int) float64 { return f.Data[r*f.Cols+c] }

// Set assigns the value at (r, c).
func (f *Frame) Set(r, c int, v float64) { f.Data[r*f.Cols+c] = v }

// SameShape reports whether two frames share (Rows, Cols).
func (f *Frame) SameShape(o *Frame) bool {
	return f != nil && o != nil && f.Rows == o.Rows && f.Cols == o.Cols
}

// Clone returns a deep copy.
func (f *Frame) Clone() *Frame {
	if f == nil {
		return nil
	}
	cp := &Frame{Rows: f.Rows, Cols: f.Cols, Data: append([]float64(nil), f.Data...)}
	return cp
}

// NewImageData constructs an ImageData whose pixel size is fixed for its
// lifetime.
func NewImageData(pixelSize float64, window int) *ImageData {
	return &ImageData{
		PixelSize: pixelSize,
		ThresholdMask: defaultThresholdMask(),
		DarkMean: NewMovingAverageArray(window),
	}
}

// FromStack constructs image mean/pulse data from a raw per-pulse stack,
// honoring its construction invariants:
// - a 2-D input rejects SlicedIndices
// - sliced_indices, if supplied for a 3-D stack, must be unique and
// length-match the number of pulses in the stack
//
// stack is a flattened row-major buffer; nPulses == 0 signals a 2-D input
// (a single image, not a per-pulse stack).
func (img *ImageData) FromStack(stack []float64, nPulses, rows, cols int, slicedIndices []int, poiIndices []int) error {
	if nPulses == 0 {
		if len(slicedIndices) != 0 {
			return fmt.Errorf("%w: 2-D input rejects sliced_indices", ErrSlicedIndices)
		}
		frame := &Frame{Rows: rows, Cols: cols, Data: append([]float64(nil), stack...)}
		img.Images = []*Frame{frame}
		img.NImages = 1
		img.SlicedIndices = []int{0}
		img.POIIndices = poiIndices
		img.Mean = frame.Clone()
		return nil
	}

	if len(slicedIndices) == 0 {
		slicedIndices = make([]int, nPulses)
		for i := range slicedIndices {
			slicedIndices[i] = i
		}
	}
	if len(slicedIndices) != nPulses {
		return fmt.Errorf("%w: got %d sliced indices for %d pulses", ErrSlicedIndices, len(slicedIndices), nPulses)
	}
	if len(lo.Uniq(slicedIndices)) != len(slicedIndices) {
		return fmt.Errorf("%w: sliced_indices contains duplicates", ErrSlicedIndices)
	}

	frameSize := rows * cols
	images := make([]*Frame, nPulses)
	poiSet := make(map[int]struct{}, len(poiIndices))
	for _, p := range poiIndices {
		poiSet[p] = struct{}{}
	}
	for i := 0; i < nPulses; i++ {
		if _, want := poiSet[i]; !want {
			continue
		}
		images[i] = &Frame{Rows: rows, Cols: cols, Data: append([]float64(nil), stack[i*frameSize:(i+1)*frameSize]...)}
	}

	img.Images = images
	img.NImages = nPulses
	img.SlicedIndices = append([]int(nil), slicedIndices...)
	img.POIIndices = poiIndices

	img.Mean = meanOfStack(stack, nPulses, rows, cols)
	return nil
}

// meanOfStack computes a NaN-aware per-pixel mean over the pulse axis.
func meanOfStack(stack []float64, nPulses, rows, cols int) *Frame {
	frameSize := rows * cols
	out := NewFrame(rows, cols)
	counts := make([]int, frameSize)

	for p := 0; p < nPulses; p++ {
		base := p * frameSize
		for i := 0; i < frameSize; i++ {
			v := stack[base+i]
			if math.IsNaN(v) {
				continue
			}
			out.Data[i] += v
			counts[i]++
		}
	}
	for i := 0; i < frameSize; i++ {
		if counts[i] == 0 {
			out.Data[i] = math.NaN()
			continue
		}
		out.Data[i] /= float64(counts[i])
	}
	return out
}

// ApplyThreshold clamps every pixel to [Low, High] in place, treating
// infinite bounds as unset.
func (f *Frame) ApplyThreshold(t ThresholdMask) {
	for i, v := range f.Data {
		if v < t.Low {
			f.Data[i] = t.Low
		} else if v > t.High {
			f.Data[i] = t.High
		}
	}
}

// ApplyMask zeroes pixels where mask is nonzero.
func (f *Frame) ApplyMask(mask *Frame) error {
	if mask == nil {
		return nil
	}
	if !f.SameShape(mask) {
		return fmt.Errorf("%w: image mask shape does not match conditioned image", ErrShapeMismatch)
	}
	for i, m := range mask.Data {
		if m != 0 {
			f.Data[i] = 0
		}
	}
	return nil
}

// SubtractScalar subtracts a constant from every pixel in place.
func (f *Frame) SubtractScalar(v float64) {
	for i := range f.Data {
		f.Data[i] -= v
	}
}

// Subtract subtracts another same-shaped frame in place.
func (f *Frame) Subtract(o *Frame) error {
	if !f.SameShape(o) {
		return fmt.Errorf("%w: frame subtraction", ErrShapeMismatch)
	}
	for i := range f.Data {
		f.Data[i] -= o.Data[i]
	}
	return nil
}
