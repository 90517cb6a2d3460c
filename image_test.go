package foam

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageDataFromStack2DRejectsSlicedIndices(t *testing.T) {
	img := NewImageData(1.0, 4)
	err := img.FromStack([]float64{1, 2, 3, 4}, 0, 2, 2, []int{0}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSlicedIndices)
}

func TestImageDataFromStack2DBuildsSingleFrame(t *testing.T) {
	img := NewImageData(1.0, 4)
	require.NoError(t, img.FromStack([]float64{1, 2, 3, 4}, 0, 2, 2, nil, nil))
	assert.Equal(t, 1, img.NImages)
	assert.Equal(t, []int{0}, img.SlicedIndices)
	assert.Equal(t, []float64{1, 2, 3, 4}, img.Mean.Data)
}

func TestImageDataFromStack3DRequiresMatchingSlicedIndices(t *testing.T) {
	img := NewImageData(1.0, 4)
	stack := make([]float64, 3*2*2)
	err := img.FromStack(stack, 3, 2, 2, []int{0, 1}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSlicedIndices)

	err = img.FromStack(stack, 3, 2, 2, []int{0, 1, 1}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSlicedIndices)
}

func TestImageDataFromStack3DOnlyMaterializesPOIImages(t *testing.T) {
	img := NewImageData(1.0, 4)
	stack := []float64{
		1, 1, 1, 1, // pulse 0
		2, 2, 2, 2, // pulse 1
		3, 3, 3, 3, // pulse 2
	}
	require.NoError(t, img.FromStack(stack, 3, 2, 2, []int{0, 1, 2}, []int{1}))
	assert.Equal(t, 3, img.NImages)
	assert.Nil(t, img.Images[0])
	require.NotNil(t, img.Images[1])
	assert.Equal(t, []float64{2, 2, 2, 2}, img.Images[1].Data)
	assert.Nil(t, img.Images[2])

	// the mean is computed over the whole stack regardless of POI filtering
	for _, v := range img.Mean.Data {
		assert.InDelta(t, 2.0, v, 1e-9)
	}
}

func TestMeanOfStackIgnoresNaN(t *testing.T) {
	stack := []float64{
		1, math.NaN(),
		3, math.NaN(),
	}
	out := meanOfStack(stack, 2, 1, 2)
	assert.InDelta(t, 2.0, out.Data[0], 1e-9)
	assert.True(t, math.IsNaN(out.Data[1]))
}

func TestFrameApplyThresholdClampsBounds(t *testing.T) {
	f := &Frame{Rows: 1, Cols: 3, Data: []float64{-5, 0, 5}}
	f.ApplyThreshold(ThresholdMask{Low: -1, High: 1})
	assert.Equal(t, []float64{-1, 0, 1}, f.Data)
}

func TestFrameApplyThresholdUnsetBoundsAreNoOp(t *testing.T) {
	f := &Frame{Rows: 1, Cols: 2, Data: []float64{-1e9, 1e9}}
	f.ApplyThreshold(defaultThresholdMask())
	assert.Equal(t, []float64{-1e9, 1e9}, f.Data)
}

func TestFrameApplyMaskZeroesMaskedPixels(t *testing.T) {
	f := &Frame{Rows: 1, Cols: 3, Data: []float64{1, 2, 3}}
	mask := &Frame{Rows: 1, Cols: 3, Data: []float64{0, 1, 0}}
	require.NoError(t, f.ApplyMask(mask))
	assert.Equal(t, []float64{1, 0, 3}, f.Data)
}

func TestFrameApplyMaskShapeMismatchIsShapeMismatchError(t *testing.T) {
	f := &Frame{Rows: 1, Cols: 3, Data: []float64{1, 2, 3}}
	mask := &Frame{Rows: 1, Cols: 2, Data: []float64{0, 1}}
	err := f.ApplyMask(mask)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrShapeMismatch))
}

func TestFrameSubtractShapeMismatch(t *testing.T) {
	f := &Frame{Rows: 1, Cols: 2, Data: []float64{1, 2}}
	o := &Frame{Rows: 1, Cols: 3, Data: []float64{1, 2, 3}}
	err := f.Subtract(o)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestFrameCloneIsIndependent(t *testing.T) {
	f := &Frame{Rows: 1, Cols: 2, Data: []float64{1, 2}}
	cp := f.Clone()
	cp.Data[0] = 99
	assert.Equal(t, 1.0, f.Data[0])
}
