package foam

// MaxPulsesPerTrain bounds the pulse index space: a pulsed FEL
// train can carry up to a few thousand pulses.
const MaxPulsesPerTrain = 2700

// PulseIndexMask is a fixed-length boolean bitmap sized to
// MaxPulsesPerTrain; downstream reductions over pulses consult it.
type PulseIndexMask struct {
	bits [MaxPulsesPerTrain]bool
}

// NewPulseIndexMask builds a mask with every configured index set.
func NewPulseIndexMask(indices []int) *PulseIndexMask {
	m := &PulseIndexMask{}
	m.SetIndices(indices)
	return m
}

// SetIndices clears the mask and sets exactly the given indices.
func (m *PulseIndexMask) SetIndices(indices []int) {
	for i := range m.bits {
		m.bits[i] = false
	}
	for _, idx := range indices {
		if idx >= 0 && idx < MaxPulsesPerTrain {
			m.bits[idx] = true
		}
	}
}

// Get reports whether pulse idx is selected.
func (m *PulseIndexMask) Get(idx int) bool {
	if idx < 0 || idx >= MaxPulsesPerTrain {
		return false
	}
	return m.bits[idx]
}

// Indices returns the selected indices in ascending order.
func (m *PulseIndexMask) Indices() []int {
	var out []int
	for i, v := range m.bits {
		if v {
			out = append(out, i)
		}
	}
	return out
}

// Filter intersects a candidate list of pulse indices against the mask,
// preserving input order.
func (m *PulseIndexMask) Filter(candidates []int) []int {
	out := make([]int, 0, len(candidates))
	for _, c := range candidates {
		if m.Get(c) {
			out = append(out, c)
		}
	}
	return out
}
