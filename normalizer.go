package foam

import "fmt"

// NormalizerKind enumerates the normalizer choices.
type NormalizerKind int

const (
	NormalizerUndefined NormalizerKind = iota
	NormalizerAUC
	NormalizerXGM
	NormalizerROI
	NormalizerROI34Sum
	NormalizerROI34Diff
)

// AUC computes the trapezoidal integral of y over x restricted to
// [rangeLow, rangeHigh].
func AUC(x, y []float64, rangeLow, rangeHigh float64) float64 {
	var area float64
	for i := 1; i < len(x); i++ {
		x0, x1 := x[i-1], x[i]
		if x1 < rangeLow || x0 > rangeHigh {
			continue
		}
		lo := max64(x0, rangeLow)
		hi := min64(x1, rangeHigh)
		if hi <= lo {
			continue
		}
		// linear-interpolate y at the clipped bounds before trapezoidal sum
		frac0 := (lo - x0) / (x1 - x0)
		frac1 := (hi - x0) / (x1 - x0)
		y0 := y[i-1] + frac0*(y[i]-y[i-1])
		y1 := y[i-1] + frac1*(y[i]-y[i-1])
		area += 0.5 * (y0 + y1) * (hi - lo)
	}
	return area
}

func max64(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func min64(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// NormalizerInputs bundles everything a normalizer might read from, since
// different normalizer kinds pull from different parts of ProcessedData.
type NormalizerInputs struct {
	X, VFOM []float64
	AUCRange AcceptanceRange

	XGMTrainValue float64
	XGMOnValue float64
	XGMOffValue float64

	ROINorm float64
	ROINormOn float64
	ROINormOff float64

	ROI3Value float64
	ROI4Value float64
}

// Normalize applies the selected normalizer to vfom, returning the
// normalized vector and the scalar denominator used (for provenance). A
// missing or zero denominator is a ProcessingError carrying the reason.
func Normalize(kind NormalizerKind, vfom []float64, in NormalizerInputs, pumpProbeSide string) ([]float64, float64, error) {
	switch kind {
		case NormalizerUndefined:
			return vfom, 1, nil

		case NormalizerAUC:
			denom := AUC(in.X, vfom, in.AUCRange.Low, in.AUCRange.High)
			if denom == 0 {
				return nil, 0, NewProcessingError("normalizer", "AUC integral is zero", ErrZeroDenominator)
			}
			return scale(vfom, 1/denom), denom, nil

		case NormalizerXGM:
			denom := in.XGMTrainValue
			if pumpProbeSide == "on" {
				denom = in.XGMOnValue
			} else if pumpProbeSide == "off" {
				denom = in.XGMOffValue
			}
			if denom == 0 {
				return nil, 0, NewProcessingError("normalizer", "XGM intensity is zero", ErrZeroDenominator)
			}
			return scale(vfom, 1/denom), denom, nil

		case NormalizerROI:
			denom := in.ROINorm
			if pumpProbeSide == "on" {
				denom = in.ROINormOn
			} else if pumpProbeSide == "off" {
				denom = in.ROINormOff
			}
			if denom == 0 {
				return nil, 0, NewProcessingError("normalizer", "ROI norm scalar is zero", ErrZeroDenominator)
			}
			return scale(vfom, 1/denom), denom, nil

		case NormalizerROI34Sum:
			denom := in.ROI3Value + in.ROI4Value
			if denom == 0 {
				return nil, 0, NewProcessingError("normalizer", "ROI3+ROI4 is zero", ErrZeroDenominator)
			}
			return scale(vfom, 1/denom), denom, nil

		case NormalizerROI34Diff:
			denom := in.ROI3Value - in.ROI4Value
			if denom == 0 {
				return nil, 0, NewProcessingError("normalizer", "ROI3-ROI4 is zero", ErrZeroDenominator)
			}
			return scale(vfom, 1/denom), denom, nil

		default:
			return nil, 0, &UnknownParameterError{Processor: "normalizer", Parameter: "kind", Value: fmt.Sprint(kind)}
	}
}

func scale(v []float64, factor float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = x * factor
	}
	return out
}
