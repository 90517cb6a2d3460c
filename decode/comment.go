package decode

import (
	"bytes"
	"encoding/binary"
	"time"
)

type commentBase struct {
	Seconds int32
	NanoSeconds int32
	TrainID int64
}

// Comment is an operator annotation tied to a train id, for marking events
// worth revisiting later in a recorded run (e.g. "detector gain changed").
type Comment struct {
	Timestamp time.Time
	TrainID int64
	Value string
}

// CommentRec decodes a COMMENT record.
func CommentRec(buffer []byte) Comment {
	var base commentBase
	reader := bytes.NewReader(buffer)
	_ = binary.Read(reader, binary.BigEndian, &base)

	return Comment{
		Timestamp: time.Unix(int64(base.Seconds), int64(base.NanoSeconds)).UTC(),
		TrainID: base.TrainID,
		Value: string(buffer[16:]),
	}
}
