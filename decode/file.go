package decode

import (
	"io"
	"os"

	foam "github.com/foam-go/foam"
)

// Record is one decoded entry from a recording, tagged by Kind with only
// the matching field populated.
type Record struct {
	Kind RecordID
	Header *Header
	Packet *foam.RawTrainBundle
	Parameters map[string]interface{}
	Comment *Comment
	History *History
	Summary *RunSummary
	Aux *AuxReading
	Calibration *CalibrationProfile
}

// Recording sequentially decodes the length-prefixed record stream written
// by a pipeline run. Records are flat and self-contained: none carries
// state forward to the next.
type Recording struct {
	stream Stream
	closer io.Closer
}

// Open opens path for sequential record decoding.
func Open(path string) (*Recording, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &Recording{stream: f, closer: f}, nil
}

// NewRecording wraps an already-open Stream, for decoding an in-memory
// recording (tests, or a recording streamed in from an object store).
func NewRecording(stream Stream) *Recording {
	return &Recording{stream: stream}
}

// Close releases the underlying file, if Open was used to create r.
func (r *Recording) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// Next decodes the next record in the stream. It returns io.EOF once the
// stream is exhausted.
func (r *Recording) Next() (Record, error) {
	hdr, err := NewRecordHdr(r.stream)
	if err != nil {
		return Record{}, err
	}

	buffer := make([]byte, hdr.DataSize)
	if _, err := io.ReadFull(r.stream, buffer); err != nil {
		return Record{}, err
	}

	switch hdr.ID {
		case HEADER:
			h := DecodeHeader(buffer)
			return Record{Kind: HEADER, Header: &h}, nil
		case PACKET:
			bundle, err := PacketRec(buffer)
			if err != nil {
				return Record{}, err
			}
			return Record{Kind: PACKET, Packet: &bundle}, nil
		case PARAMETERS:
			return Record{Kind: PARAMETERS, Parameters: ParametersRec(buffer)}, nil
		case COMMENT:
			c := CommentRec(buffer)
			return Record{Kind: COMMENT, Comment: &c}, nil
		case HISTORY:
			h := HistoryRec(buffer)
			return Record{Kind: HISTORY, History: &h}, nil
		case SUMMARY:
			s := RunSummaryRec(buffer)
			return Record{Kind: SUMMARY, Summary: &s}, nil
		case AUX:
			a := DecodeAuxReading(buffer)
			return Record{Kind: AUX, Aux: &a}, nil
		case CALIBRATION:
			c := CalibrationProfileRec(buffer)
			return Record{Kind: CALIBRATION, Calibration: &c}, nil
		default:
			// Unknown record kinds are skipped rather than treated as fatal,
			// so a newer recording's extra record types don't break an older
			// reader: the record-size prefix lets us skip a body without
			// understanding it.
			return r.Next()
	}
}
