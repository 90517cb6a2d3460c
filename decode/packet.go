package decode

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	foam "github.com/foam-go/foam"
)

// Value kinds a PACKET record's per-property payload may take.
const (
	kindScalar uint8 = iota
	kindVector
)

// PacketRec decodes a PACKET record into the (values, metadata) shape the
// raw-data feed collaborator delivers, using the generic device/property
// layout this pipeline correlates on.
//
// Wire layout: int64 train id; uint16 device count; per device, a
// length-prefixed name, a uint16 property count, and per property a
// length-prefixed name, a one-byte value kind, then either a single
// float64 (scalar) or a uint32 length followed by that many float64s
// (vector) — enough to carry a scalar XGM reading or a vector ROI/AI
// projection through a recorded run.
func PacketRec(buffer []byte) (foam.RawTrainBundle, error) {
	reader := bytes.NewReader(buffer)

	var trainID int64
	if err := binary.Read(reader, binary.BigEndian, &trainID); err != nil {
		return foam.RawTrainBundle{}, fmt.Errorf("decode: packet train id: %w", err)
	}
	var deviceCount uint16
	if err := binary.Read(reader, binary.BigEndian, &deviceCount); err != nil {
		return foam.RawTrainBundle{}, fmt.Errorf("decode: packet device count: %w", err)
	}

	values := make(foam.RawValues, deviceCount)
	metadata := make(map[string]map[string]interface{}, deviceCount)

	for d := uint16(0); d < deviceCount; d++ {
		name, err := readString(reader)
		if err != nil {
			return foam.RawTrainBundle{}, fmt.Errorf("decode: device name: %w", err)
		}

		var propCount uint16
		if err := binary.Read(reader, binary.BigEndian, &propCount); err != nil {
			return foam.RawTrainBundle{}, fmt.Errorf("decode: property count for %q: %w", name, err)
		}

		props := make(map[string]interface{}, propCount)
		for p := uint16(0); p < propCount; p++ {
			propName, err := readString(reader)
			if err != nil {
				return foam.RawTrainBundle{}, fmt.Errorf("decode: property name on %q: %w", name, err)
			}

			var kind uint8
			if err := binary.Read(reader, binary.BigEndian, &kind); err != nil {
				return foam.RawTrainBundle{}, fmt.Errorf("decode: value kind for %s.%s: %w", name, propName, err)
			}

			switch kind {
				case kindScalar:
					var v float64
					if err := binary.Read(reader, binary.BigEndian, &v); err != nil {
						return foam.RawTrainBundle{}, fmt.Errorf("decode: scalar value for %s.%s: %w", name, propName, err)
					}
					props[propName] = v
				case kindVector:
					var length uint32
					if err := binary.Read(reader, binary.BigEndian, &length); err != nil {
						return foam.RawTrainBundle{}, fmt.Errorf("decode: vector length for %s.%s: %w", name, propName, err)
					}
					v := make([]float64, length)
					if err := binary.Read(reader, binary.BigEndian, &v); err != nil {
						return foam.RawTrainBundle{}, fmt.Errorf("decode: vector value for %s.%s: %w", name, propName, err)
					}
					props[propName] = v
				default:
					return foam.RawTrainBundle{}, fmt.Errorf("decode: unknown value kind %d for %s.%s", kind, name, propName)
			}
		}

		values[name] = props
		metadata[name] = map[string]interface{}{"timestamp.tid": trainID}
	}

	return foam.RawTrainBundle{Values: values, Metadata: metadata}, nil
}

func readString(reader *bytes.Reader) (string, error) {
	var length uint16
	if err := binary.Read(reader, binary.BigEndian, &length); err != nil {
		return "", err
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(reader, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}
