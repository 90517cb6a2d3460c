package decode

import (
	"bytes"
	"encoding/binary"
	"time"
)

type calibrationHdrBase struct {
	ObservedSeconds int32
	ObservedNanoSeconds int32
	AppliedSeconds int32
	AppliedNanoSeconds int32
	NumPoints int32
}

// CalibrationScale is the fixed-point scale applied to q and reference
// intensity samples.
const CalibrationScale float32 = 10000

// CalibrationProfile is a reference azimuthal-integration curve (q vs.
// reference intensity) recorded alongside a run and used to sanity-check
// the AUC normalizer's output.
type CalibrationProfile struct {
	ObservedTimestamp time.Time
	AppliedTimestamp time.Time
	Q []float32
	Reference []float32
}

// CalibrationProfileRec decodes a CALIBRATION record.
func CalibrationProfileRec(buffer []byte) CalibrationProfile {
	reader := bytes.NewReader(buffer)

	var hdr calibrationHdrBase
	_ = binary.Read(reader, binary.BigEndian, &hdr)

	n := int(hdr.NumPoints)
	qRaw := make([]int32, n)
	refRaw := make([]int32, n)
	_ = binary.Read(reader, binary.BigEndian, &qRaw)
	_ = binary.Read(reader, binary.BigEndian, &refRaw)

	q := make([]float32, n)
	ref := make([]float32, n)
	for i := 0; i < n; i++ {
		q[i] = float32(qRaw[i]) / CalibrationScale
		ref[i] = float32(refRaw[i]) / CalibrationScale
	}

	return CalibrationProfile{
		ObservedTimestamp: time.Unix(int64(hdr.ObservedSeconds), int64(hdr.ObservedNanoSeconds)).UTC(),
		AppliedTimestamp: time.Unix(int64(hdr.AppliedSeconds), int64(hdr.AppliedNanoSeconds)).UTC(),
		Q: q,
		Reference: ref,
	}
}
