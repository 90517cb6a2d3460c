package decode

import (
	"bytes"
	"encoding/binary"
	"time"
)

type summaryBase struct {
	FirstSeconds int32
	FirstNanoSeconds int32
	LastSeconds int32
	LastNanoSeconds int32
	MinTrainID int64
	MaxTrainID int64
	SourceCount int32
}

// RunSummary gives the temporal and train-id extent of a recording, plus
// the set of source keys it carries.
type RunSummary struct {
	Start time.Time
	End time.Time
	MinTrainID int64
	MaxTrainID int64
	SourceKeys []string
}

// RunSummaryRec decodes a SUMMARY record, normally the final record in a
// recording, written once the whole run's extent is known.
func RunSummaryRec(buffer []byte) RunSummary {
	var base summaryBase
	reader := bytes.NewReader(buffer)
	_ = binary.Read(reader, binary.BigEndian, &base)

	keys := make([]string, 0, base.SourceCount)
	idx := 36 // fixed portion of summaryBase: 4*4 + 8*2 + 4 = 36
	for i := int32(0); i < base.SourceCount; i++ {
		keys = append(keys, readLengthPrefixed(buffer, &idx))
	}

	return RunSummary{
		Start: time.Unix(int64(base.FirstSeconds), int64(base.FirstNanoSeconds)).UTC(),
		End: time.Unix(int64(base.LastSeconds), int64(base.LastNanoSeconds)).UTC(),
		MinTrainID: base.MinTrainID,
		MaxTrainID: base.MaxTrainID,
		SourceKeys: keys,
	}
}
