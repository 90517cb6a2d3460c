package foam

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPumpProbeValidateRejectsOverlappingSameTrainIndices(t *testing.T) {
	pp := NewPumpProbeData(1)
	pp.Mode = PumpProbeSameTrain
	pp.OnIndices = NewPulseIndexMask([]int{0, 1, 2})
	pp.OffIndices = NewPulseIndexMask([]int{2, 3, 4})

	err := pp.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDisjointRequired)
}

func TestPumpProbeValidateAcceptsDisjointIndices(t *testing.T) {
	pp := NewPumpProbeData(1)
	pp.Mode = PumpProbeSameTrain
	pp.OnIndices = NewPulseIndexMask([]int{0, 1, 2})
	pp.OffIndices = NewPulseIndexMask([]int{3, 4, 5})

	assert.NoError(t, pp.Validate())
}

func TestPumpProbeComputeFOMAbsDifference(t *testing.T) {
	pp := NewPumpProbeData(1)
	pp.AbsDifference = true
	pp.VFOMOn = []float64{1, 2, 3}
	pp.VFOMOff = []float64{2, 2, 1}

	require.NoError(t, pp.ComputeFOM(10, ReductionMean))
	// |on-off| = [1, 0, 2]; mean = 1
	assert.InDelta(t, 1.0, pp.FOM, 1e-9)

	x, y := pp.History.Snapshot()
	assert.Equal(t, []float64{10}, x)
	assert.InDeltaSlice(t, []float64{1.0}, y, 1e-9)
}

func TestPumpProbeComputeFOMShapeMismatchIsRecoverable(t *testing.T) {
	pp := NewPumpProbeData(1)
	pp.VFOMOn = []float64{1, 2}
	pp.VFOMOff = []float64{1}

	err := pp.ComputeFOM(1, ReductionSum)
	require.Error(t, err)
	var pe *ProcessingError
	assert.ErrorAs(t, err, &pe)
}

func TestPumpProbeTrainIsOnParity(t *testing.T) {
	pp := &PumpProbeData{Mode: PumpProbeEvenTrainOn}
	assert.True(t, pp.TrainIsOn(100))
	assert.False(t, pp.TrainIsOn(101))

	pp.Mode = PumpProbeOddTrainOn
	assert.True(t, pp.TrainIsOn(101))
	assert.False(t, pp.TrainIsOn(100))
}

func TestPumpProbeSameTrainSplit(t *testing.T) {
	pp := NewPumpProbeData(1)
	pp.Mode = PumpProbeSameTrain
	pp.OnIndices = NewPulseIndexMask([]int{0, 2})
	pp.OffIndices = NewPulseIndexMask([]int{1, 3})

	on, off := pp.SameTrainSplit([]int{0, 1, 2, 3})
	assert.Equal(t, []int{0, 2}, on)
	assert.Equal(t, []int{1, 3}, off)
}
