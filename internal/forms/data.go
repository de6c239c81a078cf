package forms

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// ErrNotObject is returned when submitted data is not a JSON object.
var ErrNotObject = errors.New("data must be a JSON object")

// Field is a single submitted name/value pair.
type Field struct {
	Name  string
	Value any
}

// Data holds submitted field values in the order they appeared in the request.
// Fields decoded from JSON keep their submitted text, so numbers and nested
// objects render exactly as sent. The zero value is an undefined, empty set of
// fields.
type Data struct {
	keys    []string
	values  map[string]any
	raw     map[string]json.RawMessage
	defined bool
}

// NewData builds Data from fields; a repeated name keeps its first position
// and its last value.
func NewData(fields ...Field) Data {
	d := Data{
		values:  make(map[string]any, len(fields)),
		raw:     make(map[string]json.RawMessage),
		defined: true,
	}
	for _, f := range fields {
		d.set(f.Name, f.Value)
	}
	return d
}

func (d *Data) set(name string, value any) {
	if _, exists := d.values[name]; !exists {
		d.keys = append(d.keys, name)
	}
	d.values[name] = value
	delete(d.raw, name)
}

func (d *Data) setRaw(name string, value gjson.Result) {
	d.set(name, value.Value())
	d.raw[name] = json.RawMessage(value.Raw)
}

// UnmarshalJSON decodes a JSON object and keeps its key order.
func (d *Data) UnmarshalJSON(b []byte) error {
	if !gjson.ValidBytes(b) {
		return errors.New("data: invalid JSON")
	}

	res := gjson.ParseBytes(b)
	if res.Type == gjson.Null {
		return nil
	}
	if !res.IsObject() {
		return ErrNotObject
	}

	*d = NewData()
	res.ForEach(func(key, value gjson.Result) bool {
		d.setRaw(key.String(), value)
		return true
	})

	return nil
}

// MarshalJSON encodes the fields as a JSON object in submitted order.
func (d Data) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range d.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		if err := d.writeValue(&buf, key); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (d Data) writeValue(buf *bytes.Buffer, key string) error {
	if raw, ok := d.raw[key]; ok {
		return json.Compact(buf, raw)
	}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(d.values[key]); err != nil {
		return err
	}
	// Encode terminates with a newline
	buf.Truncate(buf.Len() - 1)
	return nil
}

// Defined reports whether the data came from an actual JSON object.
func (d Data) Defined() bool {
	return d.defined
}

// Has reports whether name was submitted, whatever its value.
func (d Data) Has(name string) bool {
	_, ok := d.values[name]
	return ok
}

// Get returns the decoded value submitted for name. Numbers decode to
// float64; use Text or Raw for the exact submitted form.
func (d Data) Get(name string) (any, bool) {
	v, ok := d.values[name]
	return v, ok
}

// Raw returns the JSON text submitted for name. Fields added with NewData are
// encoded on demand.
func (d Data) Raw(name string) (json.RawMessage, bool) {
	if _, ok := d.values[name]; !ok {
		return nil, false
	}
	var buf bytes.Buffer
	if err := d.writeValue(&buf, name); err != nil {
		return nil, false
	}
	return json.RawMessage(buf.Bytes()), true
}

// Text returns the value for name formatted for display, and whether it was
// submitted. Strings are returned verbatim, null as the empty string, and
// everything else as compact JSON in its submitted form.
func (d Data) Text(name string) (string, bool) {
	v, ok := d.values[name]
	if !ok {
		return "", false
	}
	switch v.(type) {
	case nil, string:
		return FormatValue(v), true
	}
	if raw, ok := d.Raw(name); ok {
		return string(raw), true
	}
	return FormatValue(v), true
}

// Fields returns the submitted pairs in order.
func (d Data) Fields() []Field {
	out := make([]Field, 0, len(d.keys))
	for _, key := range d.keys {
		out = append(out, Field{Name: key, Value: d.values[key]})
	}
	return out
}

// Len returns the number of submitted fields.
func (d Data) Len() int {
	return len(d.keys)
}

// FormatValue renders a decoded JSON value as display text.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(val); err != nil {
			return ""
		}
		return strings.TrimSuffix(buf.String(), "\n")
	}
}
