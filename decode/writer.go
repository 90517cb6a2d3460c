package decode

import (
	"bytes"
	"encoding/binary"

	foam "github.com/foam-go/foam"
)

// Writer appends records to an in-memory recording buffer, the mirror
// image of Recording.Next — used by tests to build fixtures and available
// to any future "record a run" tooling without needing a live detector
// feed.
type Writer struct {
	buf bytes.Buffer
}

// Bytes returns the encoded recording built so far.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

func (w *Writer) writeRecord(id RecordID, body []byte) {
	binary.Write(&w.buf, binary.BigEndian, uint32(len(body)))
	binary.Write(&w.buf, binary.BigEndian, uint16(id))
	binary.Write(&w.buf, binary.BigEndian, uint16(0)) // reserved
	w.buf.Write(body)
}

// WriteHeader appends a HEADER record.
func (w *Writer) WriteHeader(formatVersion string) {
	w.writeRecord(HEADER, []byte(formatVersion))
}

func writeString(buf *bytes.Buffer, s string) {
	binary.Write(buf, binary.BigEndian, uint16(len(s)))
	buf.WriteString(s)
}

// WritePacket appends a PACKET record for trainID carrying values, where
// each property's payload is either a float64 (scalar) or a []float64
// (vector) — the inverse of PacketRec.
func (w *Writer) WritePacket(trainID int64, values foam.RawValues) {
	var body bytes.Buffer
	binary.Write(&body, binary.BigEndian, trainID)
	binary.Write(&body, binary.BigEndian, uint16(len(values)))

	for device, props := range values {
		writeString(&body, device)
		binary.Write(&body, binary.BigEndian, uint16(len(props)))
		for name, v := range props {
			writeString(&body, name)
			switch value := v.(type) {
				case float64:
					body.WriteByte(kindScalar)
					binary.Write(&body, binary.BigEndian, value)
				case []float64:
					body.WriteByte(kindVector)
					binary.Write(&body, binary.BigEndian, uint32(len(value)))
					binary.Write(&body, binary.BigEndian, value)
				default:
					panic("decode: WritePacket: unsupported value type")
			}
		}
	}

	w.writeRecord(PACKET, body.Bytes())
}

// WriteComment appends a COMMENT record.
func (w *Writer) WriteComment(trainID int64, seconds, nanoSeconds int32, value string) {
	var body bytes.Buffer
	binary.Write(&body, binary.BigEndian, seconds)
	binary.Write(&body, binary.BigEndian, nanoSeconds)
	binary.Write(&body, binary.BigEndian, trainID)
	body.WriteString(value)
	w.writeRecord(COMMENT, body.Bytes())
}
