package serializer

import (
	"bytes"
	"encoding/json"
)

// Representation is a wire ready mapping that keeps its field order.
type Representation struct {
	keys   []string
	values map[string]any
}

func newRepresentation(size int) *Representation {
	return &Representation{
		keys:   make([]string, 0, size),
		values: make(map[string]any, size),
	}
}

func (r *Representation) set(key string, value any) {
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Get returns the value stored under key.
func (r Representation) Get(key string) (any, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Keys returns the field names in output order.
func (r Representation) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Map converts the representation, nested ones included, to plain maps.
func (r Representation) Map() map[string]any {
	out := make(map[string]any, len(r.keys))
	for _, k := range r.keys {
		if nested, ok := r.values[k].(Representation); ok {
			out[k] = nested.Map()
			continue
		}
		out[k] = r.values[k]
	}
	return out
}

// MarshalJSON writes the fields in table order.
func (r Representation) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
