package foam

// ImageConditioningProcessor implements: produce
// ImageData.MaskedMean and maintain the dark-image accumulator.
type ImageConditioningProcessor struct {
	ProcessorName string

	Slicer PulseSlicer
	RecordDarks bool
	DarkWindow int
	Pool *ImageWorkerPool

	poiIndices []int
}

func NewImageConditioningProcessor(pool *ImageWorkerPool) *ImageConditioningProcessor {
	return &ImageConditioningProcessor{ProcessorName: "image_conditioning", Pool: pool, DarkWindow: 1}
}

func (p *ImageConditioningProcessor) Name() string { return p.ProcessorName }

// Update re-reads the pulse slicer, dark-recording flag, and dark window
// from the shared-state snapshot. Absent fields keep the previously cached
// value.
func (p *ImageConditioningProcessor) Update(cfg ConfigSnapshot) error {
	if slicer, ok := cfg.Slice("image.slicer"); ok {
		p.Slicer = slicer
	}
	if v, ok := cfg.Bool("image.record_dark"); ok {
		p.RecordDarks = v
	}
	if w, ok := cfg.Int("image.dark_window"); ok {
		p.DarkWindow = w
	}
	return nil
}

// Process runs the seven-step image conditioning pipeline.
func (p *ImageConditioningProcessor) Process(bundle *CorrelatedBundle) error {
	img := bundle.Processed.Image
	if img == nil {
		return NewProcessingError(p.ProcessorName, "no ImageData present on bundle", nil)
	}

	pidx := bundle.Processed.PIdx
	nPulses := img.NImages
	candidates := make([]int, nPulses)
	for i := range candidates {
		candidates[i] = i
	}
	sliced := p.Slicer.Indices(nPulses)
	surviving := intersectSorted(sliced, candidates)
	if pidx != nil && len(pidx.Indices()) > 0 {
		surviving = pidx.Filter(surviving)
	}

	if img.Mean == nil {
		return NewProcessingError(p.ProcessorName, "mean image not computed", nil)
	}

	if p.RecordDarks {
		p.updateDark(img)
		return nil
	}

	masked := img.Mean.Clone()
	masked.SubtractScalar(img.Background)
	if img.DarkCount > 0 {
		if darkFlat, shape, ok := img.DarkMean.Snapshot(); ok && len(shape) == 2 {
			dark := &Frame{Rows: shape[0], Cols: shape[1], Data: darkFlat}
			if err := masked.Subtract(dark); err != nil {
				return NewProcessingError(p.ProcessorName, "dark frame shape mismatch", err)
			}
		}
	}
	masked.ApplyThreshold(img.ThresholdMask)
	if err := masked.ApplyMask(img.ImageMask); err != nil {
		// edge case: mask shape mismatch against the conditioned
		// image is fatal, unlike the generally-recoverable background
		// subtraction shape mismatch above.
		return NewFatalProcessingError(p.ProcessorName, "image mask shape mismatch", err)
	}
	img.MaskedMean = masked

	p.materializePOI(img, surviving)
	return nil
}

// updateDark folds the train's mean image into the dark accumulator and
// increments DarkCount, skipping the rest of conditioning for this train.
// The individual pulses of the stack are not folded one by one; only their
// per-train mean is.
func (p *ImageConditioningProcessor) updateDark(img *ImageData) {
	img.DarkMean.SetWindow(p.DarkWindow)
	if img.Mean != nil {
		img.DarkMean.Update2D(img.Mean.Data, img.Mean.Rows, img.Mean.Cols)
	}
	img.DarkCount++
}

// materializePOI builds the conditioned single-pulse images for every
// configured point of interest, parallelized across the pool when
// available.
func (p *ImageConditioningProcessor) materializePOI(img *ImageData, surviving []int) {
	poi := intersectSorted(img.POIIndices, surviving)

	materialize := func(idx int) {
		if idx < 0 || idx >= len(img.Images) || img.Images[idx] == nil {
			return
		}
		frame := img.Images[idx].Clone()
		frame.SubtractScalar(img.Background)
		frame.ApplyThreshold(img.ThresholdMask)
		_ = frame.ApplyMask(img.ImageMask)
		img.Images[idx] = frame
	}

	if p.Pool != nil && len(poi) > 1 {
		p.Pool.ParallelPulses(poi, materialize)
		return
	}
	for _, idx := range poi {
		materialize(idx)
	}
}

func intersectSorted(a, b []int) []int {
	set := make(map[int]struct{}, len(b))
	for _, v := range b {
		set[v] = struct{}{}
	}
	out := make([]int, 0, len(a))
	for _, v := range a {
		if _, ok := set[v]; ok {
			out = append(out, v)
		}
	}
	return out
}
