package decode

// Header carries the recording format version used to write the file, so
// a reader encountering an unfamiliar PACKET body layout can at least
// report which version it was written under.
type Header struct {
	FormatVersion string
}

// DecodeHeader constructs a Header by decoding the HEADER record, which is
// always the first record in a recording.
func DecodeHeader(buffer []byte) Header {
	return Header{FormatVersion: string(buffer)}
}
