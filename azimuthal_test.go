package foam

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIntegrator struct {
	q, i []float64
	err error
}

func (f *fakeIntegrator) Integrate(image *Frame, geom AzimuthalGeometry, method IntegrationMethod, integPoints int, integRange AcceptanceRange) ([]float64, []float64, error) {
	return f.q, f.i, f.err
}

func TestComputeAINilImageIsProcessingError(t *testing.T) {
	item := &DataItem{}
	err := ComputeAI(&fakeIntegrator{}, nil, AzimuthalParams{}, item)
	require.Error(t, err)
	var pe *ProcessingError
	assert.ErrorAs(t, err, &pe)
}

func TestComputeAIWrapsIntegratorFailure(t *testing.T) {
	item := &DataItem{}
	boom := errors.New("boom")
	integ := &fakeIntegrator{err: boom}
	err := ComputeAI(integ, NewFrame(2, 2), AzimuthalParams{}, item)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestComputeAISetsVFOMAndUndefinedNormalizerFOMIsAUC(t *testing.T) {
	item := &DataItem{}
	integ := &fakeIntegrator{q: []float64{0, 1, 2, 3}, i: []float64{1, 1, 1, 1}}
	params := AzimuthalParams{
		Normalizer: NormalizerUndefined,
		FOMIntegRange: AcceptanceRange{Low: 0, High: 3},
	}
	require.NoError(t, ComputeAI(integ, NewFrame(2, 2), params, item))

	require.True(t, item.HasVFOM)
	assert.Equal(t, []float64{0, 1, 2, 3}, item.X)
	assert.Equal(t, []float64{1, 1, 1, 1}, item.VFOM)
	assert.InDelta(t, 3.0, item.FOM, 1e-9)
}

func TestComputeAIZeroDenominatorNormalizerIsProcessingError(t *testing.T) {
	item := &DataItem{}
	integ := &fakeIntegrator{q: []float64{0, 1, 2}, i: []float64{1, 1, 1}}
	params := AzimuthalParams{Normalizer: NormalizerXGM}
	err := ComputeAI(integ, NewFrame(2, 2), params, item)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrZeroDenominator)
}
