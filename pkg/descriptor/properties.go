package descriptor

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/buger/jsonparser"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Properties is the insertion-ordered property map. Order is the order in
// which the host lists properties within a section.
type Properties struct {
	m *orderedmap.OrderedMap[string, *Property]

	// duplicates records names declared more than once, reported by Validate.
	duplicates []string
}

// NewProperties builds a property map in argument order.
func NewProperties(props ...*Property) *Properties {
	ps := &Properties{m: orderedmap.New[string, *Property]()}
	for _, p := range props {
		ps.add(p)
	}
	return ps
}

func (ps *Properties) add(p *Property) {
	if _, exists := ps.m.Get(p.Name); exists {
		ps.duplicates = append(ps.duplicates, p.Name)
		return
	}
	ps.m.Set(p.Name, p)
}

// Len returns the number of properties.
func (ps *Properties) Len() int {
	if ps == nil || ps.m == nil {
		return 0
	}
	return ps.m.Len()
}

// Get returns the named property.
func (ps *Properties) Get(name string) (*Property, bool) {
	if ps == nil || ps.m == nil {
		return nil, false
	}
	return ps.m.Get(name)
}

// All returns the properties in declaration order.
func (ps *Properties) All() []*Property {
	if ps == nil || ps.m == nil {
		return nil
	}
	out := make([]*Property, 0, ps.m.Len())
	for pair := ps.m.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}

// Names returns the property names in declaration order.
func (ps *Properties) Names() []string {
	all := ps.All()
	out := make([]string, len(all))
	for i, p := range all {
		out[i] = p.Name
	}
	return out
}

// MarshalJSON writes the properties as an object in declaration order.
func (ps *Properties) MarshalJSON() ([]byte, error) {
	if ps == nil || ps.m == nil {
		return []byte("{}"), nil
	}
	return ps.m.MarshalJSON()
}

// UnmarshalJSON reads a properties object. Keys are walked with jsonparser
// so that a repeated key is recorded instead of silently overwritten.
func (ps *Properties) UnmarshalJSON(data []byte) error {
	ps.m = orderedmap.New[string, *Property]()
	ps.duplicates = nil

	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	return jsonparser.ObjectEach(data, func(key, value []byte, dataType jsonparser.ValueType, offset int) error {
		name, err := jsonparser.ParseString(key)
		if err != nil {
			return fmt.Errorf("property key %q: %w", key, err)
		}
		if dataType != jsonparser.Object {
			return fmt.Errorf("property %q: expected object, got %s", name, dataType)
		}
		var p Property
		if err := json.Unmarshal(value, &p); err != nil {
			return fmt.Errorf("property %q: %w", name, err)
		}
		p.Name = name
		ps.add(&p)
		return nil
	})
}

// MarshalJSON writes the options, putting Item or ItemFields under "item".
func (o Options) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	wrote := false
	if o.Choices != nil {
		data, err := json.Marshal(o.Choices)
		if err != nil {
			return nil, err
		}
		buf.WriteString(`"options":`)
		buf.Write(data)
		wrote = true
	}
	var item []byte
	var err error
	switch {
	case o.ItemFields != nil:
		item, err = o.ItemFields.MarshalJSON()
	case o.Item != nil:
		item, err = json.Marshal(o.Item)
	}
	if err != nil {
		return nil, err
	}
	if item != nil {
		if wrote {
			buf.WriteByte(',')
		}
		buf.WriteString(`"item":`)
		buf.Write(item)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads options. An "item" whose "type" key holds a string is
// a single FieldSchema; otherwise it is a field map for an Object item.
func (o *Options) UnmarshalJSON(data []byte) error {
	*o = Options{}

	if raw, dataType, _, err := jsonparser.Get(data, "options"); err == nil && dataType != jsonparser.Null {
		if err := json.Unmarshal(raw, &o.Choices); err != nil {
			return fmt.Errorf("options: %w", err)
		}
	}

	raw, dataType, _, err := jsonparser.Get(data, "item")
	if err != nil || dataType == jsonparser.Null {
		return nil
	}
	if dataType != jsonparser.Object {
		return fmt.Errorf("item: expected object, got %s", dataType)
	}

	if _, typeKind, _, err := jsonparser.Get(raw, "type"); err == nil && typeKind == jsonparser.String {
		var fs FieldSchema
		if err := json.Unmarshal(raw, &fs); err != nil {
			return fmt.Errorf("item: %w", err)
		}
		o.Item = &fs
		return nil
	}

	fields := orderedmap.New[string, *FieldSchema]()
	err = eachField(raw, func(key string, value []byte) error {
		var fs FieldSchema
		if err := json.Unmarshal(value, &fs); err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
		fields.Set(key, &fs)
		return nil
	})
	if err != nil {
		return fmt.Errorf("item fields: %w", err)
	}
	o.ItemFields = fields
	return nil
}

// eachField walks the members of a JSON object in document order and
// rejects a key that appears twice. String members are passed with their
// quotes so that value can be decoded as JSON.
func eachField(data []byte, fn func(key string, value []byte) error) error {
	seen := make(map[string]bool)
	return jsonparser.ObjectEach(data, func(rawKey, value []byte, dataType jsonparser.ValueType, _ int) error {
		key, err := jsonparser.ParseString(rawKey)
		if err != nil {
			return fmt.Errorf("key %q: %w", rawKey, err)
		}
		if seen[key] {
			return fmt.Errorf("duplicate key %q", key)
		}
		seen[key] = true
		if dataType == jsonparser.String {
			quoted := make([]byte, 0, len(value)+2)
			quoted = append(quoted, '"')
			quoted = append(quoted, value...)
			value = append(quoted, '"')
		}
		return fn(key, value)
	})
}
