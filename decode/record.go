package decode

import (
	"encoding/binary"
)

// Stream caters for a generic reader so the recording format can be
// driven by a plain file on disk or an in-memory byte buffer.
type Stream interface {
	Read(p []byte) (int, error)
	Seek(offset int64, whence int) (int64, error)
}

// Tell reports the stream's current byte offset without moving it.
func Tell(stream Stream) (int64, error) {
	return stream.Seek(0, 1)
}

// RecordHdr describes one record: its kind, the size of its body, and the
// byte offset the body starts at. This format never checksums records.
type RecordHdr struct {
	ID RecordID
	DataSize uint32
	ByteIndex int64
}

// NewRecordHdr decodes the fixed eight-byte record header immediately
// preceding a record's body: a uint32 body size followed by a uint16
// record kind and two reserved bytes for future use.
func NewRecordHdr(stream Stream) (*RecordHdr, error) {
	var blob struct {
		DataSize uint32
		ID uint16
		Reserved uint16
	}
	if err := binary.Read(stream, binary.BigEndian, &blob); err != nil {
		return nil, err
	}
	pos, err := Tell(stream)
	if err != nil {
		return nil, err
	}
	return &RecordHdr{ID: RecordID(blob.ID), DataSize: blob.DataSize, ByteIndex: pos}, nil
}
