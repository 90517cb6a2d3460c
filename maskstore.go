package foam

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	tiledb "github.com/TileDB-Inc/TileDB-Go"
)

// MaskStore loads the pipeline's only persisted artifacts — image-mask
// .npy files and geometry files — through TileDB's VFS abstraction so a
// local path and an object-store URI are handled identically, narrowed
// here to read-only whole-file loads rather than streamed record access.
type MaskStore struct {
	ctx *tiledb.Context
	vfs *tiledb.VFS
	config *tiledb.Config
}

// NewMaskStore opens a VFS context rooted at no particular URI; configUri,
// if non-empty, loads a TileDB config file from that path instead of the
// library defaults.
func NewMaskStore(configUri string) (*MaskStore, error) {
	var (
		config *tiledb.Config
		err error
	)
	if configUri == "" {
		config, err = tiledb.NewConfig()
	} else {
		config, err = tiledb.LoadConfig(configUri)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMaskLoad, err)
	}

	ctx, err := tiledb.NewContext(config)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMaskLoad, err)
	}

	vfs, err := tiledb.NewVFS(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMaskLoad, err)
	}

	return &MaskStore{ctx: ctx, vfs: vfs, config: config}, nil
}

// Close releases the underlying TileDB handles.
func (m *MaskStore) Close() {
	m.vfs.Free()
	m.ctx.Free()
	m.config.Free()
}

// LoadMask reads a boolean 2-D mask stored as a .npy file at uri and
// returns it as a Frame (non-zero entries mark masked-out pixels, per
// ImageMask's convention in image.go). A mask of any other dimensionality
// is rejected with an error.
func (m *MaskStore) LoadMask(uri string) (*Frame, error) {
	raw, err := m.readAll(uri)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMaskLoad, err)
	}
	rows, cols, data, err := decodeNpyBoolFrame(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMaskLoad, err)
	}
	return &Frame{Rows: rows, Cols: cols, Data: data}, nil
}

// LoadGeometryDescriptor reads a geometry file of "module row col" lines
// (see parseQuadrantOffsets) and returns a GeometryDescriptor carrying the
// parsed per-quadrant pixel offsets and the file's uri.
func (m *MaskStore) LoadGeometryDescriptor(uri string) (GeometryDescriptor, error) {
	raw, err := m.readAll(uri)
	if err != nil {
		return GeometryDescriptor{}, fmt.Errorf("%w: %v", ErrMaskLoad, err)
	}
	offsets, err := parseQuadrantOffsets(raw)
	if err != nil {
		return GeometryDescriptor{}, fmt.Errorf("%w: %v", ErrMaskLoad, err)
	}
	return GeometryDescriptor{QuadrantOffsets: offsets, FilePath: uri}, nil
}

// Discover recursively walks uri via the VFS and returns every file whose
// basename matches pattern (e.g. "*.npy").
func (m *MaskStore) Discover(uri, pattern string) ([]string, error) {
	var items []string
	if err := m.trawl(uri, pattern, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMaskLoad, err)
	}
	return items, nil
}

func (m *MaskStore) trawl(uri, pattern string, items *[]string) error {
	dirs, files, err := m.vfs.List(uri)
	if err != nil {
		return err
	}

	for _, file := range files {
		match, err := filepath.Match(pattern, filepath.Base(file))
		if err != nil {
			return err
		}
		if match {
			*items = append(*items, file)
		}
	}

	for _, dir := range dirs {
		if err := m.trawl(dir, pattern, items); err != nil {
			return err
		}
	}
	return nil
}

// OpenStream opens uri through the VFS and optionally slurps it fully into
// memory, handing back the generic Stream abstraction.
func (m *MaskStore) OpenStream(uri string, inMemory bool) (Stream, error) {
	handler, err := m.vfs.Open(uri, tiledb.TILEDB_VFS_READ)
	if err != nil {
		return nil, err
	}
	size, err := m.vfs.FileSize(uri)
	if err != nil {
		return nil, err
	}
	return GenericStream(handler, size, inMemory)
}

func (m *MaskStore) readAll(uri string) ([]byte, error) {
	handler, err := m.vfs.Open(uri, tiledb.TILEDB_VFS_READ)
	if err != nil {
		return nil, err
	}
	defer handler.Close()

	size, err := m.vfs.FileSize(uri)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, size)
	if _, err := io.ReadFull(handler, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// decodeNpyBoolFrame parses the minimal subset of the .npy format needed for
// a 2-D boolean array: magic + version, a little-endian uint16 header
// length, an ASCII dict header naming shape and dtype, then raw bytes (one
// byte per element for bool/int8 dtypes).
func decodeNpyBoolFrame(raw []byte) (rows, cols int, data []float64, err error) {
	const magic = "\x93NUMPY"
	if len(raw) < 10 || string(raw[:6]) != magic {
		return 0, 0, nil, fmt.Errorf("not a .npy file")
	}
	headerLen := int(binary.LittleEndian.Uint16(raw[8:10]))
	headerStart := 10
	header := string(raw[headerStart : headerStart+headerLen])

	shape, shapeErr := parseNpyShape(header)
	if shapeErr != nil {
		return 0, 0, nil, shapeErr
	}
	if len(shape) != 2 {
		return 0, 0, nil, fmt.Errorf("expected a 2-D mask, got shape %v", shape)
	}
	rows, cols = shape[0], shape[1]

	body := raw[headerStart+headerLen:]
	if len(body) < rows*cols {
		return 0, 0, nil, fmt.Errorf("truncated .npy body: want %d elements, have %d bytes", rows*cols, len(body))
	}

	data = make([]float64, rows*cols)
	for i := 0; i < rows*cols; i++ {
		if body[i] != 0 {
			data[i] = 1
		}
	}
	return rows, cols, data, nil
}

// parseNpyShape extracts the "shape": (r, c) tuple from a .npy ASCII
// header dict without a full Python-literal parser.
func parseNpyShape(header string) ([]int, error) {
	key := "'shape':"
	idx := strings.Index(header, key)
	if idx < 0 {
		return nil, fmt.Errorf("no shape key in .npy header")
	}
	rest := header[idx+len(key):]
	open := strings.Index(rest, "(")
	close := strings.Index(rest, ")")
	if open < 0 || close < 0 || close < open {
		return nil, fmt.Errorf("malformed shape tuple in .npy header")
	}
	parts := splitTrim(rest[open+1: close])
	shape := make([]int, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		v, err := strconv.Atoi(p)
		if err != nil {
			return nil, err
		}
		shape = append(shape, v)
	}
	return shape, nil
}

// parseQuadrantOffsets reads a small text geometry file, one "module row
// col" triple per line, into the offset table consumed by OffsetAssembler.
func parseQuadrantOffsets(raw []byte) (map[int][2]int, error) {
	offsets := make(map[int][2]int)
	scanner := bufio.NewScanner(strings.NewReader(string(raw)))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 3 {
			return nil, fmt.Errorf("malformed geometry line %q: want 'module row col'", line)
		}
		idx, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, err
		}
		row, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, err
		}
		col, err := strconv.Atoi(fields[2])
		if err != nil {
			return nil, err
		}
		offsets[idx] = [2]int{row, col}
	}
	return offsets, scanner.Err()
}
