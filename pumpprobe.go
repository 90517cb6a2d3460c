package foam

import "fmt"

// PumpProbeMode enumerates the pairing strategies.
type PumpProbeMode int

const (
	PumpProbeUndefined PumpProbeMode = iota
	PumpProbePredefinedOff
	PumpProbeSameTrain
	PumpProbeEvenTrainOn
	PumpProbeOddTrainOn
)

// PumpProbeAnalysisType selects which analysis subsystem supplies the
// vector figure-of-merit pair.
type PumpProbeAnalysisType int

const (
	PumpProbeAnalysisUndefined PumpProbeAnalysisType = iota
	PumpProbeAnalysisROI
	PumpProbeAnalysisProjection
	PumpProbeAnalysisAzimuthalIntegration
)

// PumpProbeData holds the pump/probe state.
type PumpProbeData struct {
	AnalysisType PumpProbeAnalysisType
	Mode PumpProbeMode

	OnIndices *PulseIndexMask
	OffIndices *PulseIndexMask

	AbsDifference bool
	Window int

	ImageOn *Frame
	ImageOff *Frame

	VFOMOn []float64
	VFOMOff []float64

	// RoiNormOn/Off hold the ROI-normalizer scalar pair used when the
	// normalizer selection is ROI.
	RoiNormOn float64
	RoiNormOff float64

	onAccum *MovingAverageArray
	offAccum *MovingAverageArray

	FOM float64
	History *PairData
}

// NewPumpProbeData constructs a pump/probe state with the given moving
// average window for its on/off image accumulators.
func NewPumpProbeData(window int) *PumpProbeData {
	return &PumpProbeData{
		Window: window,
		onAccum: NewMovingAverageArray(window),
		offAccum: NewMovingAverageArray(window),
		History: NewPairData(MaxCorrelationLength),
	}
}

// Validate enforces: in SAME_TRAIN mode, on/off index sets must
// be disjoint. Configuration update is rejected before any train is
// processed, matching its boundary behavior.
func (p *PumpProbeData) Validate() error {
	if p.Mode != PumpProbeSameTrain || p.OnIndices == nil || p.OffIndices == nil {
		return nil
	}
	for i := 0; i < MaxPulsesPerTrain; i++ {
		if p.OnIndices.Get(i) && p.OffIndices.Get(i) {
			return fmt.Errorf("%w: pulse index %d", ErrDisjointRequired, i)
		}
	}
	return nil
}

// Reset clears the FOM history, the behavior of the reset flag.
func (p *PumpProbeData) Reset() {
	p.History.Reset()
}

// UpdateImages folds a new on/off image pair through the moving-average
// accumulators.
func (p *PumpProbeData) UpdateImages(on, off *Frame) {
	if on != nil {
		flat := p.onAccum.Update2D(on.Data, on.Rows, on.Cols)
		p.ImageOn = &Frame{Rows: on.Rows, Cols: on.Cols, Data: flat}
	}
	if off != nil {
		flat := p.offAccum.Update2D(off.Data, off.Rows, off.Cols)
		p.ImageOff = &Frame{Rows: off.Rows, Cols: off.Cols, Data: flat}
	}
}

// ComputeFOM derives pp.fom from the normalized delta = vfom_on - vfom_off:
// reduction(|delta|) or reduction(delta) depending on AbsDifference.
func (p *PumpProbeData) ComputeFOM(tid int64, reduction ReductionKind) error {
	delta, err := elementwise(p.VFOMOn, p.VFOMOff, func(on, off float64) float64 { return on - off })
	if err != nil {
		return NewProcessingError("pump_probe", "on/off vfom shape mismatch", err)
	}

	if p.AbsDifference {
		abs := make([]float64, len(delta))
		for i, v := range delta {
			if v < 0 {
				v = -v
			}
			abs[i] = v
		}
		p.FOM = reduction.Reduce(abs)
	} else {
		p.FOM = reduction.Reduce(delta)
	}

	p.History.Append(float64(tid), p.FOM)
	return nil
}

// SameTrainSplit resolves the on/off pulse index subsets for SAME_TRAIN
// mode. In every other mode it returns the full pulse list as "on" and no
// "off" pulses; whether a train counts as on under EVEN/ODD_TRAIN_ON is
// decided separately by TrainIsOn.
func (p *PumpProbeData) SameTrainSplit(allPulses []int) (on, off []int) {
	switch p.Mode {
		case PumpProbeSameTrain:
			if p.OnIndices != nil {
				on = p.OnIndices.Filter(allPulses)
			}
			if p.OffIndices != nil {
				off = p.OffIndices.Filter(allPulses)
			}
		default:
			on = allPulses
	}
	return on, off
}

// TrainIsOn reports whether the given train id should be treated as "on"
// under EVEN_TRAIN_ON/ODD_TRAIN_ON parity pairing.
func (p *PumpProbeData) TrainIsOn(tid int64) bool {
	switch p.Mode {
		case PumpProbeEvenTrainOn:
			return tid%2 == 0
		case PumpProbeOddTrainOn:
			return tid%2 != 0
		default:
			return true
	}
}
