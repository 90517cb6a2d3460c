package foam

import (
	"fmt"
	"reflect"

	tiledb "github.com/TileDB-Inc/TileDB-Go"
	stgpsr "github.com/yuin/stagparser"
)

// telemetryRecordSchema tags the fields persisted per train to the
// telemetry archive array; its filters/tiledb struct tags are parsed with
// the same stagparser library the shared-state config decoder in config.go
// uses for its "shared" tag.
type telemetryRecordSchema struct {
	TrainID int64 `tiledb:"dtype=int64,ftype=dim"`
	Drops int64 `tiledb:"dtype=int64,ftype=attr" filters:"zstd(level=16)"`
	UnknownParameters int64 `tiledb:"dtype=int64,ftype=attr" filters:"zstd(level=16)"`
	ProcessingErrors int64 `tiledb:"dtype=int64,ftype=attr" filters:"zstd(level=16)"`
}

// TelemetryArchive persists per-train telemetry snapshots as TileDB array
// metadata, giving the operator a durable record of drop, unknown-parameter,
// and processing-error counts beyond the in-process Telemetry counters'
// process lifetime.
type TelemetryArchive struct {
	ctx *tiledb.Context
	uri string
}

// NewTelemetryArchive opens ctx against an existing array at uri; the array
// itself is provisioned out of band by EnsureTelemetrySchema.
func NewTelemetryArchive(ctx *tiledb.Context, uri string) *TelemetryArchive {
	return &TelemetryArchive{ctx: ctx, uri: uri}
}

// EnsureTelemetrySchema creates the sparse array backing the archive if it
// does not already exist, deriving its attribute/filter pipeline from
// telemetryRecordSchema's struct tags via CreateAttr.
func EnsureTelemetrySchema(ctx *tiledb.Context, uri string) error {
	schema, err := tiledb.NewArraySchema(ctx, tiledb.TILEDB_SPARSE)
	if err != nil {
		return fmt.Errorf("new array schema: %w", err)
	}
	defer schema.Free()

	domain, err := tiledb.NewDomain(ctx)
	if err != nil {
		return fmt.Errorf("new domain: %w", err)
	}
	defer domain.Free()

	dim, err := tiledb.NewDimension(ctx, "TrainID", tiledb.TILEDB_INT64, []int64{0, 1 << 40}, int64(1024))
	if err != nil {
		return fmt.Errorf("new dimension: %w", err)
	}
	if err := domain.AddDimensions(dim); err != nil {
		return fmt.Errorf("add dimension: %w", err)
	}
	if err := schema.SetDomain(domain); err != nil {
		return fmt.Errorf("set domain: %w", err)
	}

	rec := telemetryRecordSchema{}
	filterDefs, _ := stgpsr.ParseStruct(&rec, "filters")
	tdbDefs, _ := stgpsr.ParseStruct(&rec, "tiledb")

	typ := reflect.TypeOf(rec)
	for i := 0; i < typ.NumField(); i++ {
		name := typ.Field(i).Name
		tags := make(map[string]stgpsr.Definition, len(tdbDefs[name]))
		for _, d := range tdbDefs[name] {
			tags[d.Name()] = d
		}
		if ftype, ok := tags["ftype"]; ok {
			if v, _ := ftype.Attribute("ftype"); v == "dim" {
				continue // dimension fields are modeled on the domain, not as attributes
			}
		}
		dtypeDef, ok := tags["dtype"]
		if !ok {
			continue
		}
		dtype, _ := dtypeDef.Attribute("dtype")
		if err := CreateAttr(name, filterDefs[name], dtype.(string), schema, ctx); err != nil {
			return err
		}
	}

	array, err := tiledb.NewArray(ctx, uri)
	if err != nil {
		return fmt.Errorf("new array: %w", err)
	}
	defer array.Free()
	return array.Create(schema)
}

// Record writes one train's telemetry snapshot into the array's metadata,
// keyed by train id, using WriteArrayMetadata.
func (a *TelemetryArchive) Record(trainID int64, snap TelemetrySnapshot) error {
	key := fmt.Sprintf("train_%d", trainID)
	return WriteArrayMetadata(a.ctx, a.uri, key, snap)
}

// TelemetrySnapshot is the JSON-friendly shape of Telemetry's counters,
// archived per train by TelemetryArchive.Record.
type TelemetrySnapshot struct {
	Drops int64 `json:"drops"`
	UnknownParameters int64 `json:"unknown_parameters"`
	ProcessingErrors int64 `json:"processing_errors"`
}

// JSONSnapshot returns t's counters in a struct ready for JSON serialization.
func (t *Telemetry) JSONSnapshot() TelemetrySnapshot {
	drops, unknown, processing := t.Snapshot()
	return TelemetrySnapshot{Drops: drops, UnknownParameters: unknown, ProcessingErrors: processing}
}
