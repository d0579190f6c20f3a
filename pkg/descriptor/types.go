// Package descriptor models the static configuration record a page-builder
// host reads to render a component's property panel and to register the
// events a component instance can trigger.
//
// A Descriptor is built once, validated, and never mutated afterwards. The
// JSON field names match the host's record shape exactly.
package descriptor

import (
	"sort"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ValueType is the declared type tag of a property or item field.
type ValueType string

const (
	TypeText       ValueType = "Text"
	TypeTextSelect ValueType = "TextSelect"
	TypeBoolean    ValueType = "Boolean"
	TypeNumber     ValueType = "Number"
	TypeColor      ValueType = "Color"
	TypeLength     ValueType = "Length"
	TypeArray      ValueType = "Array"
	TypeObject     ValueType = "Object"
	TypeCollection ValueType = "Collection"
)

var validTypes = map[ValueType]bool{
	TypeText:       true,
	TypeTextSelect: true,
	TypeBoolean:    true,
	TypeNumber:     true,
	TypeColor:      true,
	TypeLength:     true,
	TypeArray:      true,
	TypeObject:     true,
	TypeCollection: true,
}

// Valid reports whether t is one of the known type tags.
func (t ValueType) Valid() bool { return validTypes[t] }

// LocalizedText maps a locale code ("en", "fr") to display text.
type LocalizedText map[string]string

// DefaultLocale is used when a label has no entry for the requested locale.
const DefaultLocale = "en"

// Localize returns the text for locale, falling back to DefaultLocale and
// then to the entry of the alphabetically first locale.
func Localize(text LocalizedText, locale string) string {
	if s, ok := text[locale]; ok {
		return s
	}
	if s, ok := text[DefaultLocale]; ok {
		return s
	}
	if len(text) == 0 {
		return ""
	}
	locales := make([]string, 0, len(text))
	for l := range text {
		locales = append(locales, l)
	}
	sort.Strings(locales)
	return text[locales[0]]
}

// Descriptor is the root record.
type Descriptor struct {
	Editor        Editor         `json:"editor"`
	TriggerEvents []TriggerEvent `json:"triggerEvents"`
	Properties    *Properties    `json:"properties"`
}

// Editor holds editor metadata and the section ordering of both panels.
type Editor struct {
	Label                         LocalizedText `json:"label"`
	Icon                          string        `json:"icon"`
	Bubble                        *Bubble       `json:"bubble,omitempty"`
	CustomStylePropertiesOrder    []string      `json:"customStylePropertiesOrder"`
	CustomSettingsPropertiesOrder []string      `json:"customSettingsPropertiesOrder"`
}

// Bubble is the small badge shown on the component in the canvas.
type Bubble struct {
	Icon string `json:"icon"`
}

// TriggerEvent declares an event a component instance can emit.
// Event is an example payload; it documents shape only.
type TriggerEvent struct {
	Name    string        `json:"name"`
	Label   LocalizedText `json:"label"`
	Event   Value         `json:"event"`
	Default bool          `json:"default,omitempty"`
}

// Property declares one configurable property.
type Property struct {
	// Name is the key in the properties map.
	Name         string        `json:"-"`
	Label        LocalizedText `json:"label"`
	Type         ValueType     `json:"type"`
	Section      string        `json:"section"`
	Bindable     bool          `json:"bindable,omitempty"`
	Options      *Options      `json:"options,omitempty"`
	DefaultValue *Value        `json:"defaultValue,omitempty"`
	Hidden       *Condition    `json:"hidden,omitempty"`
}

// HasDefault reports whether the property declares a default value.
func (p *Property) HasDefault() bool { return p.DefaultValue != nil }

// Choice is one entry of a TextSelect option list.
type Choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// FieldSchema types an Array item or a field of an Object item.
type FieldSchema struct {
	Type     ValueType `json:"type"`
	Bindable bool      `json:"bindable,omitempty"`
	Options  *Options  `json:"options,omitempty"`
}

// Fields is the ordered field schema of an Object item.
type Fields = orderedmap.OrderedMap[string, *FieldSchema]

// NamedField pairs a field name with its schema for NewFields.
type NamedField struct {
	Name   string
	Schema *FieldSchema
}

// NewFields builds an ordered field schema.
func NewFields(fields ...NamedField) *Fields {
	m := orderedmap.New[string, *FieldSchema]()
	for _, f := range fields {
		m.Set(f.Name, f.Schema)
	}
	return m
}

// Options is the sub-schema attached to a property or field. Choices apply
// to TextSelect. Item types the elements of an Array; ItemFields types the
// keys of an Object. Both serialize under "item".
type Options struct {
	Choices    []Choice
	Item       *FieldSchema
	ItemFields *Fields
}

// ChoiceValues returns the option values in declaration order.
func (o *Options) ChoiceValues() []string {
	if o == nil {
		return nil
	}
	out := make([]string, len(o.Choices))
	for i, c := range o.Choices {
		out[i] = c.Value
	}
	return out
}

func (o *Options) hasChoice(value string) bool {
	for _, c := range o.Choices {
		if c.Value == value {
			return true
		}
	}
	return false
}

// Panel identifies one of the two host configuration panels.
type Panel string

const (
	PanelStyle    Panel = "style"
	PanelSettings Panel = "settings"
)
