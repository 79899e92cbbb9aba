package export

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Record is one formatted work. It marshals its keys in insertion order,
// matching the resolved field order instead of Go's map ordering. The
// output layout is a compatibility contract for downstream consumers.
type Record struct {
	keys   []string
	values map[string]any
}

func newRecord(capacity int) Record {
	return Record{
		keys:   make([]string, 0, capacity),
		values: make(map[string]any, capacity),
	}
}

func (r *Record) set(key string, value any) {
	if _, exists := r.values[key]; !exists {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Get returns the value stored under key and whether the key is present.
func (r Record) Get(key string) (any, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Keys returns the record's keys in output order.
func (r Record) Keys() []string {
	return append([]string(nil), r.keys...)
}

// MarshalJSON writes the record as an object with keys in insertion order
// and without HTML escaping.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyJSON, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(keyJSON)
		buf.WriteByte(':')
		if err := encodeValue(&buf, r.values[key]); err != nil {
			return nil, fmt.Errorf("marshaling field %q: %w", key, err)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// encodeValue marshals one value without escaping HTML characters, so DOIs
// and abstracts survive byte-for-byte.
func encodeValue(buf *bytes.Buffer, v any) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	// Encode appends a newline; the object is mid-construction.
	buf.Truncate(buf.Len() - 1)
	return nil
}
