package foam

// DataItem carries a scalar figure-of-merit plus an optional companion
// vector figure-of-merit and its x-coordinate.
//
// Invariant: if HasVFOM is false, VFOM and X remain empty.
type DataItem struct {
	X []float64
	VFOM []float64
	FOM float64
	XLabel string
	VFOMLabel string
	HasVFOM bool
}

// SetVFOM installs a vector figure-of-merit and its x-coordinate, setting
// HasVFOM. Passing nil/empty slices clears it instead.
func (d *DataItem) SetVFOM(x, vfom []float64, xLabel, vfomLabel string) {
	if len(x) == 0 || len(vfom) == 0 {
		d.ClearVFOM()
		return
	}
	d.X = x
	d.VFOM = vfom
	d.XLabel = xLabel
	d.VFOMLabel = vfomLabel
	d.HasVFOM = true
}

// ClearVFOM restores the invariant that X/VFOM are empty when HasVFOM is
// false.
func (d *DataItem) ClearVFOM() {
	d.X = nil
	d.VFOM = nil
	d.HasVFOM = false
}
