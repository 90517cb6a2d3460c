package foam

// GeometryDescriptor names either an explicit per-quadrant pixel-offset
// table or a reference to an external geometry file.
type GeometryDescriptor struct {
	QuadrantOffsets map[int][2]int
	FilePath string
}

// ModuleAssembler is the geometry collaborator boundary: "given a
// module-indexed mapping of 2-D arrays and a geometry descriptor... returns
// an assembled 2-D image of the configured image dtype." Geometry assembly
// of modular detectors is explicitly out of scope: this interface
// only fixes the call shape so a processor can depend on it without knowing
// the concrete assembler.
type ModuleAssembler interface {
	Assemble(modules map[int]*Frame, geom GeometryDescriptor) (*Frame, error)
}

// OffsetAssembler is a minimal ModuleAssembler that places each module frame
// at a fixed pixel offset into a larger canvas, for deployments that don't
// need a full external geometry file. It is not the general case: modules
// are assumed equal-shaped and non-overlapping.
type OffsetAssembler struct {
	CanvasRows, CanvasCols int
}

func (a OffsetAssembler) Assemble(modules map[int]*Frame, geom GeometryDescriptor) (*Frame, error) {
	canvas := NewFrame(a.CanvasRows, a.CanvasCols)
	for idx, frame := range modules {
		offset, ok := geom.QuadrantOffsets[idx]
		if !ok || frame == nil {
			continue
		}
		rowOff, colOff := offset[0], offset[1]
		for r := 0; r < frame.Rows; r++ {
			dr := rowOff + r
			if dr < 0 || dr >= canvas.Rows {
				continue
			}
			for c := 0; c < frame.Cols; c++ {
				dc := colOff + c
				if dc < 0 || dc >= canvas.Cols {
					continue
				}
				canvas.Set(dr, dc, frame.At(r, c))
			}
		}
	}
	return canvas, nil
}
