package foam

import (
	"encoding/json"
	"errors"
	"fmt"

	tiledb "github.com/TileDB-Inc/TileDB-Go"
	stgpsr "github.com/yuin/stagparser"
)

// ErrCreateArrayAttr groups failures building a TileDB attribute/filter
// pipeline.
var ErrCreateArrayAttr = errors.New("error creating tiledb array attribute")

// ArrayOpen opens a TileDB array in the given mode, freeing the handle on
// any failure after allocation.
func ArrayOpen(ctx *tiledb.Context, uri string, mode tiledb.QueryType) (*tiledb.Array, error) {
	array, err := tiledb.NewArray(ctx, uri)
	if err != nil {
		return nil, err
	}
	if err := array.Open(mode); err != nil {
		array.Free()
		return nil, err
	}
	return array, nil
}

// AddFilters sequentially appends compression filters to a filter pipeline.
func AddFilters(filterList *tiledb.FilterList, filters ...*tiledb.Filter) error {
	for _, filt := range filters {
		if err := filterList.AddFilter(filt); err != nil {
			return err
		}
	}
	return nil
}

// ZstdFilter builds a Zstandard compression filter at the given level.
func ZstdFilter(ctx *tiledb.Context, level int32) (*tiledb.Filter, error) {
	filt, err := tiledb.NewFilter(ctx, tiledb.TILEDB_FILTER_ZSTD)
	if err != nil {
		return nil, err
	}
	if err := filt.SetOption(tiledb.TILEDB_COMPRESSION_LEVEL, level); err != nil {
		filt.Free()
		return nil, err
	}
	return filt, nil
}

// Lz4Filter builds an LZ4 compression filter at the given level.
func Lz4Filter(ctx *tiledb.Context, level int32) (*tiledb.Filter, error) {
	filt, err := tiledb.NewFilter(ctx, tiledb.TILEDB_FILTER_LZ4)
	if err != nil {
		return nil, err
	}
	if err := filt.SetOption(tiledb.TILEDB_COMPRESSION_LEVEL, level); err != nil {
		filt.Free()
		return nil, err
	}
	return filt, nil
}

// GzipFilter builds a deflate compression filter at the given level.
func GzipFilter(ctx *tiledb.Context, level int32) (*tiledb.Filter, error) {
	filt, err := tiledb.NewFilter(ctx, tiledb.TILEDB_FILTER_GZIP)
	if err != nil {
		return nil, err
	}
	if err := filt.SetOption(tiledb.TILEDB_COMPRESSION_LEVEL, level); err != nil {
		filt.Free()
		return nil, err
	}
	return filt, nil
}

// AttachFilters sets the same filter pipeline on every attribute given.
func AttachFilters(filterList *tiledb.FilterList, attrs ...*tiledb.Attribute) error {
	for _, attr := range attrs {
		if err := attr.SetFilterList(filterList); err != nil {
			return err
		}
	}
	return nil
}

// CreateAttr builds one TileDB attribute plus its compression filter
// pipeline from a struct tag, trimmed to the scalar dtypes the telemetry
// archive actually needs (int64, uint64, float64, string), since archive
// records here are flat per-train summaries rather than variable-length
// arrays.
//
// Supported dtype tag values: int64, uint64, float64, string. Supported
// filter tag names: zstd(level=N), lz4(level=N), gzip(level=N).
func CreateAttr(fieldName string, filterDefs []stgpsr.Definition, dtype string, schema *tiledb.ArraySchema, ctx *tiledb.Context) error {
	var tdbType tiledb.Datatype
	switch dtype {
		case "int64":
			tdbType = tiledb.TILEDB_INT64
		case "uint64":
			tdbType = tiledb.TILEDB_UINT64
		case "float64":
			tdbType = tiledb.TILEDB_FLOAT64
		case "string":
			tdbType = tiledb.TILEDB_STRING_UTF8
		default:
			return fmt.Errorf("%w: unsupported dtype %q for %s", ErrCreateArrayAttr, dtype, fieldName)
	}

	filterList, err := tiledb.NewFilterList(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCreateArrayAttr, err)
	}
	defer filterList.Free()

	for _, filter := range filterDefs {
		level := int32(6)
		if lvl, ok := filter.Attribute("level"); ok {
			if n, ok := lvl.(int64); ok {
				level = int32(n)
			}
		}
		var filt *tiledb.Filter
		var filtErr error
		switch filter.Name() {
			case "zstd":
				filt, filtErr = ZstdFilter(ctx, level)
			case "lz4":
				filt, filtErr = Lz4Filter(ctx, level)
			case "gzip":
				filt, filtErr = GzipFilter(ctx, level)
			default:
				continue
		}
		if filtErr != nil {
			return fmt.Errorf("%w: %v", ErrCreateArrayAttr, filtErr)
		}
		defer filt.Free()
		if err := filterList.AddFilter(filt); err != nil {
			return fmt.Errorf("%w: %v", ErrCreateArrayAttr, err)
		}
	}

	attr, err := tiledb.NewAttribute(ctx, fieldName, tdbType)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCreateArrayAttr, err)
	}
	defer attr.Free()

	if err := AttachFilters(filterList, attr); err != nil {
		return fmt.Errorf("%w: %v", ErrCreateArrayAttr, err)
	}
	if err := schema.AddAttributes(attr); err != nil {
		return fmt.Errorf("%w: %v", ErrCreateArrayAttr, err)
	}
	return nil
}

// WriteArrayMetadata JSON-encodes md and attaches it to the array at uri
// under key.
func WriteArrayMetadata(ctx *tiledb.Context, uri, key string, md any) error {
	array, err := ArrayOpen(ctx, uri, tiledb.TILEDB_WRITE)
	if err != nil {
		return fmt.Errorf("opening (w) tiledb array %s: %w", uri, err)
	}
	defer array.Free()
	defer array.Close()

	jsn, err := json.Marshal(md)
	if err != nil {
		return fmt.Errorf("serializing metadata to json: %w", err)
	}
	if err := array.PutMetadata(key, string(jsn)); err != nil {
		return fmt.Errorf("writing metadata to array %s: %w", uri, err)
	}
	return nil
}
