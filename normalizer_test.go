package foam

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAUCTrapezoidalIntegral(t *testing.T) {
	x := []float64{0, 1, 2, 3}
	y := []float64{1, 1, 1, 1}
	area := AUC(x, y, 0, 3)
	assert.InDelta(t, 3.0, area, 1e-9)
}

func TestAUCClipsToRange(t *testing.T) {
	x := []float64{0, 1, 2, 3, 4}
	y := []float64{0, 1, 1, 1, 0}
	area := AUC(x, y, 1, 3)
	assert.InDelta(t, 2.0, area, 1e-9)
}

func TestNormalizeXGMZeroDenominatorIsProcessingError(t *testing.T) {
	_, _, err := Normalize(NormalizerXGM, []float64{1, 2}, NormalizerInputs{XGMTrainValue: 0}, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrZeroDenominator)
}

func TestNormalizeXGMScalesByTrainValue(t *testing.T) {
	out, denom, err := Normalize(NormalizerXGM, []float64{2, 4}, NormalizerInputs{XGMTrainValue: 2}, "")
	require.NoError(t, err)
	assert.Equal(t, 2.0, denom)
	assert.Equal(t, []float64{1, 2}, out)
}

func TestNormalizeROI34DiffUsesThirdAndFourthROI(t *testing.T) {
	out, denom, err := Normalize(NormalizerROI34Diff, []float64{10}, NormalizerInputs{ROI3Value: 5, ROI4Value: 1}, "")
	require.NoError(t, err)
	assert.Equal(t, 4.0, denom)
	assert.Equal(t, []float64{2.5}, out)
}

func TestNormalizeUnknownKindIsUnknownParameterError(t *testing.T) {
	_, _, err := Normalize(NormalizerKind(99), []float64{1}, NormalizerInputs{}, "")
	require.Error(t, err)
	var upe *UnknownParameterError
	assert.ErrorAs(t, err, &upe)
}
