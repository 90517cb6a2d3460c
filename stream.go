package foam

import (
	"bytes"
	"encoding/binary"

	tiledb "github.com/TileDB-Inc/TileDB-Go"
)

// Stream abstracts over a VFS-backed file handle and an in-memory byte
// buffer so mask/geometry loading doesn't care which one it got — persisted
// artifacts may live on a local filesystem or an object store.
// *tiledb.VFSfh and *bytes.Reader both satisfy it.
type Stream interface {
	Read(p []byte) (int, error)
	Seek(offset int64, whence int) (int64, error)
}

// GenericStream optionally slurps a VFS handle fully into memory before
// returning it as a Stream, trading a single large read for avoiding
// repeated small round-trips to a remote object store on subsequent seeks.
func GenericStream(stream *tiledb.VFSfh, size uint64, inMemory bool) (Stream, error) {
	if !inMemory {
		return stream, nil
	}
	buffer := make([]byte, size)
	if err := binary.Read(stream, binary.BigEndian, &buffer); err != nil {
		return nil, err
	}
	return bytes.NewReader(buffer), nil
}
