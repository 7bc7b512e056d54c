package data

import (
	"bytes"
	"encoding/json"
)

// Dictionary key conventions, shared by the import engine and all hooks:
//   - attribute values are stored under "@" + <attribute name>
//   - engine-generated attributes carry a further "@" marker on the attribute name itself
//     (e.g. dict key "@@timestamp" is the internally generated attribute "@timestamp")
//   - character data is stored under "_value"
//   - the namespace prefix of the element is stored under "@@ns"
const (
	AttrPrefix   = "@"
	TextKey      = "_value"
	NamespaceKey = "@@ns"

	// RefAttr marks a node as a reference to another object rather than a literal value.
	RefAttr = "idref"

	// TimestampMarker and EmbeddedTypeMarker are attribute names generated by the import
	// engine on reference nodes (note the internal "@" marker prefix).
	TimestampMarker    = "@timestamp"
	EmbeddedTypeMarker = "@embedded_type_info"
)

// Dict is an insertion-ordered string-keyed mapping used as the dictionary representation of
// an XML element. Values are strings (attributes, character data), *Dict (a child element) or
// []*Dict (repeated child elements of the same name).
type Dict struct {
	keys   []string
	values map[string]interface{}
}

func NewDict() *Dict {
	return &Dict{
		values: make(map[string]interface{}),
	}
}

// Set stores the value under the key, keeping the first-insertion position for existing keys.
func (d *Dict) Set(key string, value interface{}) {
	if _, exists := d.values[key]; !exists {
		d.keys = append(d.keys, key)
	}
	d.values[key] = value
}

func (d *Dict) Get(key string) (interface{}, bool) {
	v, ok := d.values[key]
	return v, ok
}

func (d *Dict) GetString(key string) (string, bool) {
	v, ok := d.values[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// GetDict returns the child dictionary under the key. When repeated elements collapsed into a
// list, the first entry is returned (first-match policy, mirroring the element accessors).
func (d *Dict) GetDict(key string) (*Dict, bool) {
	v, ok := d.values[key]
	if !ok {
		return nil, false
	}
	switch c := v.(type) {
	case *Dict:
		return c, true
	case []*Dict:
		if len(c) > 0 {
			return c[0], true
		}
	}
	return nil, false
}

// Keys returns the keys in insertion order.
func (d *Dict) Keys() []string {
	out := make([]string, len(d.keys))
	copy(out, d.keys)
	return out
}

func (d *Dict) Len() int {
	return len(d.keys)
}

// SetPath inserts the leaf value at the end of the given key path, creating intermediate
// dictionaries along the way.
func (d *Dict) SetPath(leaf interface{}, path ...string) {
	if len(path) == 0 {
		return
	}
	current := d
	for _, segment := range path[:len(path)-1] {
		next, ok := current.GetDict(segment)
		if !ok {
			next = NewDict()
			current.Set(segment, next)
		}
		current = next
	}
	current.Set(path[len(path)-1], leaf)
}

// MarshalJSON renders the dictionary as a JSON object in key insertion order.
func (d *Dict) MarshalJSON() ([]byte, error) {
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
		v, err := json.Marshal(d.values[key])
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
