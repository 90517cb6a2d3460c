package decode

import (
	"bytes"
	"encoding/binary"
	"time"
)

type auxHdrBase struct {
	Seconds int32
	NanoSeconds int32
	Measurements int16
}

// AuxScale is the fixed-point scale applied to every channel sample.
const AuxScale float32 = 100

// AuxReading holds one train's per-pulse auxiliary device samples — the
// XGM beam-intensity and beam-position channels that supply a scalar per
// train or per pulse for use as a normalizer.
type AuxReading struct {
	Timestamp []time.Time
	Intensity []float32
	XPos []float32
	YPos []float32
	Spare []float32
}

type auxSampleBase struct {
	TimeOffsetMs int16
	Intensity int16
	XPos int16
	YPos int16
	Spare int16
}

// DecodeAuxReading decodes an AUX record: an 8-byte base timestamp plus a
// 2-byte measurement count, followed by that many fixed-point samples,
// each a millisecond offset from the base timestamp plus four scaled
// channel values.
func DecodeAuxReading(buffer []byte) AuxReading {
	reader := bytes.NewReader(buffer)

	var hdr auxHdrBase
	_ = binary.Read(reader, binary.BigEndian, &hdr)
	base := time.Unix(int64(hdr.Seconds), int64(hdr.NanoSeconds)).UTC()

	n := int(hdr.Measurements)
	aux := AuxReading{
		Timestamp: make([]time.Time, n),
		Intensity: make([]float32, n),
		XPos: make([]float32, n),
		YPos: make([]float32, n),
		Spare: make([]float32, n),
	}

	var sample auxSampleBase
	for i := 0; i < n; i++ {
		_ = binary.Read(reader, binary.BigEndian, &sample)
		aux.Timestamp[i] = base.Add(time.Duration(sample.TimeOffsetMs) * time.Millisecond)
		aux.Intensity[i] = float32(sample.Intensity) / AuxScale
		aux.XPos[i] = float32(sample.XPos) / AuxScale
		aux.YPos[i] = float32(sample.YPos) / AuxScale
		aux.Spare[i] = float32(sample.Spare) / AuxScale
	}

	return aux
}
