package decode

import (
	"encoding/binary"
	"time"
)

// History documents processing that produced the recording: when it was
// written, by whom, on which machine, and with what invocation.
type History struct {
	Timestamp time.Time
	MachineName string
	OperatorName string
	Command string
	Note string
}

func readLengthPrefixed(buffer []byte, idx *int) string {
	size := int(binary.BigEndian.Uint16(buffer[*idx : *idx+2]))
	*idx += 2
	s := string(buffer[*idx : *idx+size])
	*idx += size
	return s
}

// HistoryRec decodes a HISTORY record: an 8-byte timestamp followed by four
// length-prefixed strings (machine name, operator name, command, note).
func HistoryRec(buffer []byte) History {
	seconds := int64(binary.BigEndian.Uint32(buffer[0:4]))
	nanoSeconds := int64(binary.BigEndian.Uint32(buffer[4:8]))

	idx := 8
	machineName := readLengthPrefixed(buffer, &idx)
	operatorName := readLengthPrefixed(buffer, &idx)
	command := readLengthPrefixed(buffer, &idx)
	note := readLengthPrefixed(buffer, &idx)

	return History{
		Timestamp: time.Unix(seconds, nanoSeconds).UTC(),
		MachineName: machineName,
		OperatorName: operatorName,
		Command: command,
		Note: note,
	}
}
