package foam

import (
	"fmt"
)

// SourceMetadata is attached per retained source after Transform, carrying
// the train id and source type forward alongside the transformed values.
type SourceMetadata struct {
	TrainID int64
	SourceType string
}

// RawTrainBundle is the pair of device->values and device->metadata maps
// delivered by the raw-data feed for one packet. All metadata
// entries in one packet must agree on the train id.
type RawTrainBundle struct {
	Values RawValues
	Metadata map[string]map[string]interface{}
}

// trainIDsIn extracts the set of distinct train ids referenced by a
// packet's metadata, keyed under "timestamp.tid".
func trainIDsIn(meta map[string]map[string]interface{}) ([]int64, error) {
	seen := make(map[int64]struct{})
	for _, fields := range meta {
		raw, ok := fields["timestamp.tid"]
		if !ok {
			continue
		}
		tid, err := toInt64(raw)
		if err != nil {
			return nil, err
		}
		seen[tid] = struct{}{}
	}
	out := make([]int64, 0, len(seen))
	for tid := range seen {
		out = append(out, tid)
	}
	return out, nil
}

func toInt64(v interface{}) (int64, error) {
	switch n := v.(type) {
		case int64:
			return n, nil
		case int:
			return int64(n), nil
		case int32:
			return int64(n), nil
		case uint64:
			return int64(n), nil
		case float64:
			// encoding/json decodes numbers into interface{} as float64; the
			// raw-data feed's train ids always arrive as whole numbers.
			return int64(n), nil
		default:
			return 0, fmt.Errorf("unexpected train id type %T", v)
	}
}

// Transform rewrites a raw packet against the catalog, producing the
// filtered values/metadata maps keyed by source key plus the packet's
// single train id.
//
// It is fatal (returns an error) if the packet's metadata disagrees on the
// train id across devices; it returns empty maps, -1 and a nil error if no
// train id is present at all.
func Transform(packet RawTrainBundle, catalog *Catalog, sourceType string) (RawValues, map[string]*SourceMetadata, int64, error) {
	tids, err := trainIDsIn(packet.Metadata)
	if err != nil {
		return nil, nil, -1, err
	}
	if len(tids) == 0 {
		return RawValues{}, map[string]*SourceMetadata{}, -1, nil
	}
	if len(tids) > 1 {
		return nil, nil, -1, ErrMultipleTrainIds
	}
	tid := tids[0]

	outRaw := make(RawValues)
	outMeta := make(map[string]*SourceMetadata)

	for _, key := range catalog.Keys() {
		d, _ := catalog.Get(key)

		if d.IsModular() {
			nested := make(map[string]interface{})
			for _, idx := range d.Modules {
				device := d.ExpandModule(idx)
				if props, ok := packet.Values[device]; ok {
					nested[device] = props
				}
			}
			if len(nested) == 0 {
				continue
			}
			outRaw[key] = nested
			outMeta[key] = &SourceMetadata{TrainID: tid, SourceType: sourceType}
			continue
		}

		value, reason := FetchProperty(tid, packet.Values, d.Device, d.Property, d.PropertySuffixRetry...)
		if value == nil && reason != "" {
			// Not present; skip the entry silently.
			continue
		}
		if value == nil {
			continue
		}
		outRaw[key] = map[string]interface{}{d.Property: value}
		outMeta[key] = &SourceMetadata{TrainID: tid, SourceType: sourceType}
	}

	return outRaw, outMeta, tid, nil
}
