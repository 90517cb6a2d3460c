package foam

import (
	"fmt"
	"strconv"
	"strings"
)

// RawValues is the `device -> {property -> payload}` mapping delivered by
// the raw-data feed collaborator.
type RawValues map[string]map[string]interface{}

// FetchProperty resolves (device, property) against a raw values map,
// following:
// - empty device or property -> (nil, "") ("not-activated")
// - device name "Any" -> (tid, "")
// - otherwise raw[device][property], retried with the device descriptor's
// PropertySuffixRetry suffixes on miss; missing device/property returns
// (nil, reason).
func FetchProperty(tid int64, raw RawValues, device, property string, retrySuffixes ...string) (interface{}, string) {
	if device == "" || property == "" {
		return nil, ""
	}
	if device == "Any" {
		return tid, ""
	}

	props, ok := raw[device]
	if !ok {
		return nil, fmt.Sprintf("device %q not present in train", device)
	}

	suffixes := retrySuffixes
	if len(suffixes) == 0 {
		suffixes = []string{"", ".value"}
	}

	for _, suffix := range suffixes {
		if v, ok := props[property+suffix]; ok {
			return v, ""
		}
	}
	return nil, fmt.Sprintf("property %q not present on device %q", property, device)
}

// ParsedRange is the result of parsing a shared-state "(a, b)" tuple string.
type ParsedRange struct {
	Low float64
	High float64
}

// ParsedSlice is the result of parsing a shared-state "[a, b]" slice string,
// where either bound may be the literal "None" for an open end.
type ParsedSlice struct {
	Begin *int
	End *int
}

// ParseTuple parses the textual form "(a, b)" into a ParsedRange.
func ParseTuple(s string) (ParsedRange, error) {
	inner, err := unwrap(s, '(', ')')
	if err != nil {
		return ParsedRange{}, err
	}
	parts := splitTrim(inner)
	if len(parts) != 2 {
		return ParsedRange{}, fmt.Errorf("tuple %q does not have exactly two elements", s)
	}
	low, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return ParsedRange{}, err
	}
	high, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return ParsedRange{}, err
	}
	return ParsedRange{Low: low, High: high}, nil
}

// ParseList parses the textual form "[a, b,...]" into a float64 slice.
func ParseList(s string) ([]float64, error) {
	inner, err := unwrap(s, '[', ']')
	if err != nil {
		return nil, err
	}
	parts := splitTrim(inner)
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// ParseSlice parses the textual form "[a, b]" into a ParsedSlice, using the
// "None" literal for an unset slice bound.
func ParseSlice(s string) (ParsedSlice, error) {
	inner, err := unwrap(s, '[', ']')
	if err != nil {
		return ParsedSlice{}, err
	}
	parts := splitTrim(inner)
	if len(parts) != 2 {
		return ParsedSlice{}, fmt.Errorf("slice %q does not have exactly two elements", s)
	}

	var result ParsedSlice
	if parts[0] != "None" {
		v, err := strconv.Atoi(parts[0])
		if err != nil {
			return ParsedSlice{}, err
		}
		result.Begin = &v
	}
	if parts[1] != "None" {
		v, err := strconv.Atoi(parts[1])
		if err != nil {
			return ParsedSlice{}, err
		}
		result.End = &v
	}
	return result, nil
}

func unwrap(s string, open, close byte) (string, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != open || s[len(s)-1] != close {
		return "", fmt.Errorf("malformed value %q: expected enclosing %q %q", s, open, close)
	}
	return s[1: len(s)-1], nil
}

func splitTrim(s string) []string {
	raw := strings.Split(s, ",")
	out := make([]string, len(raw))
	for i, v := range raw {
		out[i] = strings.TrimSpace(v)
	}
	return out
}
