package foam

import (
	"reflect"
	"strconv"

	stgpsr "github.com/yuin/stagparser"
)

// SharedState is the key/value collaborator boundary: a
// hash-namespace per concern, consumed as text, with get/set/batch-get,
// integer/float increment, and publish/subscribe. All operations return
// (nil, false) on connection failure, in which case a reader should treat
// a missing configuration value as "no change" and reuse its cached value.
type SharedState interface {
	Get(namespace, field string) (string, bool)
	GetAll(namespace string) (map[string]string, bool)
	GetMany(namespace string, fields []string) (map[string]string, bool)
	Set(namespace, field, value string) (created bool, ok bool)
	IncrInt(namespace, field string, n int64) (int64, bool)
	IncrFloat(namespace, field string, x float64) (float64, bool)
	Publish(channel, message string) bool
	Subscribe(channel string) (<-chan string, func())
}

// ConfigSnapshot is a config-snapshot object assembled once per train by
// the scheduler and passed immutably to processors; processors never call
// the shared-state backend directly from inside Process.
type ConfigSnapshot struct {
	fields map[string]string
}

// NewConfigSnapshot reads every field in namespace from state in a single
// batch call. A connection failure yields an
// empty, valid snapshot so processors fall back to cached values.
func NewConfigSnapshot(state SharedState, namespace string) ConfigSnapshot {
	fields, ok := state.GetAll(namespace)
	if !ok {
		return ConfigSnapshot{fields: map[string]string{}}
	}
	return ConfigSnapshot{fields: fields}
}

// String returns the raw text value for a field, or "" if absent.
func (c ConfigSnapshot) String(field string) (string, bool) {
	v, ok := c.fields[field]
	return v, ok
}

// Float64 parses a field as a float, returning (0, false) rather than an
// error when the value isn't parseable.
func (c ConfigSnapshot) Float64(field string) (float64, bool) {
	s, ok := c.fields[field]
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func (c ConfigSnapshot) Int(field string) (int, bool) {
	s, ok := c.fields[field]
	if !ok {
		return 0, false
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return v, true
}

func (c ConfigSnapshot) Bool(field string) (bool, bool) {
	s, ok := c.fields[field]
	if !ok {
		return false, false
	}
	return s == "true" || s == "1", true
}

// Range parses a field using the tuple textual convention "(low, high)".
func (c ConfigSnapshot) Range(field string) (AcceptanceRange, bool) {
	s, ok := c.fields[field]
	if !ok {
		return AcceptanceRange{}, false
	}
	r, err := ParseTuple(s)
	if err != nil {
		return AcceptanceRange{}, false
	}
	return AcceptanceRange{Low: r.Low, High: r.High}, true
}

// Slice parses a field using the "[a, b]" convention with "None" for open
// ends.
func (c ConfigSnapshot) Slice(field string) (PulseSlicer, bool) {
	s, ok := c.fields[field]
	if !ok {
		return PulseSlicer{}, false
	}
	ps, err := ParseSlice(s)
	if err != nil {
		return PulseSlicer{}, false
	}
	return PulseSlicer{Begin: ps.Begin, End: ps.End, Step: 1}, true
}

// sharedPropertyTag is the struct-tag convention used by DecodeInto, driven
// by stagparser's ParseStruct: it walks the struct once, returning every
// field's tag definitions, which the caller then maps by field name.
const sharedPropertyTag = "shared"

// DecodeInto resolves, for every field of dst (a pointer to struct) tagged
// `shared:"field=some_name"`, the snapshot value for that field name,
// writing it into the matching numeric/string/bool struct field via
// reflection. Fields without a recognized shared tag are left untouched so
// callers can pre-populate defaults — the same tolerance a connection
// failure requires, leaving the previously cached value in place.
func (c ConfigSnapshot) DecodeInto(dst interface{}) error {
	defs, err := stgpsr.ParseStruct(dst, sharedPropertyTag)
	if err != nil {
		return err
	}

	values := reflectValueOf(dst)
	for fieldName, fieldDefs := range defs {
		for _, def := range fieldDefs {
			attr, ok := def.Attribute("field")
			name, isString := attr.(string)
			if !ok || !isString || name == "" {
				continue
			}
			raw, present := c.fields[name]
			if !present {
				continue
			}
			assignField(values, fieldName, raw)
		}
	}
	return nil
}

func reflectValueOf(dst interface{}) reflect.Value {
	return reflect.ValueOf(dst).Elem()
}

// assignField sets a field by name to raw's parsed value, matching the
// destination field's kind. Unsupported kinds are left untouched.
func assignField(v reflect.Value, fieldName, raw string) {
	field := v.FieldByName(fieldName)
	if !field.IsValid() || !field.CanSet() {
		return
	}
	switch field.Kind() {
		case reflect.String:
			field.SetString(raw)
		case reflect.Bool:
			field.SetBool(raw == "true" || raw == "1")
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
				field.SetInt(n)
			}
		case reflect.Float32, reflect.Float64:
			if f, err := strconv.ParseFloat(raw, 64); err == nil {
				field.SetFloat(f)
			}
	}
}

// SharedProperty is a named, inheritable configuration slot populated from
// the shared-state collaborator at update() time and propagated to
// children by name.
type SharedProperty struct {
	Name string
	Value string
	Set bool
}

// Inherit copies the value from a parent's property of the same name if
// this property has not yet been set locally.
func (p *SharedProperty) Inherit(parent SharedProperty) {
	if !p.Set && parent.Set {
		p.Value = parent.Value
		p.Set = true
	}
}
