package foam

// XGMData holds train-level beam-intensity readings and their on/off split.
type XGMData struct {
	TrainIntensity float64
	OnIntensity float64
	OffIntensity float64
	PulseIntensity []float64
}

// PulseData is the per-pulse slice of AI, ROI, and XGM outputs.
type PulseData struct {
	AI DataItem
	ROI [4]DataItem
	XGM []float64
}

// ProcessedData is the per-train state produced by the processor chain.
type ProcessedData struct {
	TID int64

	Image *ImageData
	XGM XGMData
	ROI *ROIData
	AI DataItem
	PP *PumpProbeData
	Corr *CorrelationData
	Bin1 [2]*Bin1D
	Bin2 *Bin2D
	St *StatisticsData
	Pulse PulseData
	PIdx *PulseIndexMask
}

// NewProcessedData constructs an empty, train-keyed ProcessedData ready to
// be mutated by the processor chain.
func NewProcessedData(tid int64) *ProcessedData {
	return &ProcessedData{
		TID: tid,
		ROI: NewROIData(),
		PP: NewPumpProbeData(1),
		Corr: NewCorrelationData(),
		Bin1: [2]*Bin1D{{}, {}},
		Bin2: &Bin2D{},
		St: NewStatisticsData(defaultHistogramEdges()),
		PIdx: NewPulseIndexMask(nil),
	}
}

func defaultHistogramEdges() []float64 {
	edges := make([]float64, 51)
	for i := range edges {
		edges[i] = -5.0 + float64(i)*0.2
	}
	return edges
}
