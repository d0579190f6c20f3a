package descriptor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Kind tags the variant held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindBool
	KindNumber
	KindList
	KindObject
)

// String returns the lower-case kind name used in error messages.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindList:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Object is an insertion-ordered string-keyed map of values.
type Object = orderedmap.OrderedMap[string, Value]

// Value is a tagged variant used for default values, example payloads and
// current property values. The zero Value is null.
type Value struct {
	kind Kind
	str  string
	b    bool
	num  float64
	list []Value
	obj  *Object
}

// Field is one key/value pair used to build an object Value.
type Field struct {
	Key   string
	Value Value
}

func Null() Value              { return Value{} }
func String(s string) Value    { return Value{kind: KindString, str: s} }
func Bool(b bool) Value        { return Value{kind: KindBool, b: b} }
func Number(n float64) Value   { return Value{kind: KindNumber, num: n} }
func List(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: KindList, list: items}
}

// Strings builds a list Value of strings.
func Strings(items ...string) Value {
	list := make([]Value, len(items))
	for i, s := range items {
		list[i] = String(s)
	}
	return List(list...)
}

// ObjectOf builds an object Value preserving the order of fields.
// A repeated key keeps its first position and takes the last value.
func ObjectOf(fields ...Field) Value {
	obj := orderedmap.New[string, Value]()
	for _, f := range fields {
		obj.Set(f.Key, f.Value)
	}
	return Value{kind: KindObject, obj: obj}
}

// F is shorthand for a Field literal.
func F(key string, v Value) Field { return Field{Key: key, Value: v} }

// Ptr returns a pointer to v, for optional Value fields.
func (v Value) Ptr() *Value { return &v }

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

func (v Value) AsString() (string, bool) { return v.str, v.kind == KindString }
func (v Value) AsBool() (bool, bool)     { return v.b, v.kind == KindBool }
func (v Value) AsNumber() (float64, bool) {
	return v.num, v.kind == KindNumber
}

// AsList returns the list elements. The slice must not be modified.
func (v Value) AsList() ([]Value, bool) { return v.list, v.kind == KindList }

// Len returns the element count of a list or the key count of an object.
func (v Value) Len() int {
	switch v.kind {
	case KindList:
		return len(v.list)
	case KindObject:
		return v.obj.Len()
	}
	return 0
}

// Keys returns the object keys in insertion order, or nil for non-objects.
func (v Value) Keys() []string {
	if v.kind != KindObject {
		return nil
	}
	keys := make([]string, 0, v.obj.Len())
	for pair := v.obj.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Get returns the value stored under key in an object Value.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != KindObject {
		return Value{}, false
	}
	return v.obj.Get(key)
}

// Truthy reports whether the value counts as "set" for visibility
// predicates: false, 0, "" and null are falsy; lists and objects are truthy.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindString:
		return v.str != ""
	case KindBool:
		return v.b
	case KindNumber:
		return v.num != 0
	case KindList, KindObject:
		return true
	}
	return false
}

// Equal compares two values deeply. Object key order is significant.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindString:
		return v.str == o.str
	case KindBool:
		return v.b == o.b
	case KindNumber:
		return v.num == o.num
	case KindList:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(o.list[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if v.obj.Len() != o.obj.Len() {
			return false
		}
		a, b := v.obj.Oldest(), o.obj.Oldest()
		for a != nil && b != nil {
			if a.Key != b.Key || !a.Value.Equal(b.Value) {
				return false
			}
			a, b = a.Next(), b.Next()
		}
		return true
	}
	return false
}

// String renders the value as compact JSON.
func (v Value) String() string {
	data, err := v.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("<%s>", v.kind)
	}
	return string(data)
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindString:
		return json.Marshal(v.str)
	case KindBool:
		return strconv.AppendBool(nil, v.b), nil
	case KindNumber:
		return strconv.AppendFloat(nil, v.num, 'f', -1, 64), nil
	case KindList:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, item := range v.list {
			if i > 0 {
				buf.WriteByte(',')
			}
			data, err := item.MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(data)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	case KindObject:
		return v.obj.MarshalJSON()
	}
	return nil, fmt.Errorf("cannot marshal value of kind %d", v.kind)
}

// UnmarshalJSON implements json.Unmarshaler, keeping object key order.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("empty JSON value")
	}
	switch data[0] {
	case 'n':
		*v = Null()
		return nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*v = Bool(b)
		return nil
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = String(s)
		return nil
	case '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		items := make([]Value, len(raw))
		for i, r := range raw {
			if err := items[i].UnmarshalJSON(r); err != nil {
				return fmt.Errorf("[%d]: %w", i, err)
			}
		}
		*v = List(items...)
		return nil
	case '{':
		obj := orderedmap.New[string, Value]()
		err := eachField(data, func(key string, raw []byte) error {
			var item Value
			if err := item.UnmarshalJSON(raw); err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			obj.Set(key, item)
			return nil
		})
		if err != nil {
			return err
		}
		*v = Value{kind: KindObject, obj: obj}
		return nil
	default:
		var n float64
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("invalid JSON value: %w", err)
		}
		*v = Number(n)
		return nil
	}
}

// Values holds the current value of each property, keyed by property name.
type Values map[string]Value

// Clone returns a shallow copy of the map.
func (vs Values) Clone() Values {
	out := make(Values, len(vs))
	for k, v := range vs {
		out[k] = v
	}
	return out
}

// Fingerprint renders the values for the given keys as a stable string.
// Keys are sorted; a missing key renders as "-".
func (vs Values) Fingerprint(keys []string) string {
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)
	var buf bytes.Buffer
	for _, k := range sorted {
		buf.WriteString(k)
		buf.WriteByte('=')
		if v, ok := vs[k]; ok {
			buf.WriteString(v.String())
		} else {
			buf.WriteByte('-')
		}
		buf.WriteByte(';')
	}
	return buf.String()
}

// DecodeValues parses a JSON object into Values.
func DecodeValues(data []byte) (Values, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse values: %w", err)
	}
	out := make(Values, len(raw))
	for k, r := range raw {
		var v Value
		if err := v.UnmarshalJSON(r); err != nil {
			return nil, fmt.Errorf("value %q: %w", k, err)
		}
		out[k] = v
	}
	return out, nil
}
