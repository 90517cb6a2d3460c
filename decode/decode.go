// Package decode reads the on-disk recording format used to replay a run
// of the FEL-detector pipeline offline. A recording is a flat sequence of
// length-prefixed records: every record starts with a RecordHdr giving its
// kind and byte size, so a reader can skip records it does not recognise
// without parsing their bodies.
package decode

// RecordID identifies the kind of the record that follows a RecordHdr.
type RecordID uint16

const (
	_ RecordID = iota
	HEADER
	PACKET
	PARAMETERS
	COMMENT
	HISTORY
	SUMMARY
	AUX
	CALIBRATION
)

// recordNames labels RecordID values for log output.
var recordNames = map[RecordID]string{
	HEADER: "HEADER",
	PACKET: "PACKET",
	PARAMETERS: "PARAMETERS",
	COMMENT: "COMMENT",
	HISTORY: "HISTORY",
	SUMMARY: "SUMMARY",
	AUX: "AUX",
	CALIBRATION: "CALIBRATION",
}

func (id RecordID) String() string {
	if name, ok := recordNames[id]; ok {
		return name
	}
	return "UNKNOWN"
}
