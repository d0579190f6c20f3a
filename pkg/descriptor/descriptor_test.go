package descriptor

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Helpers ---

func minimalValidDescriptor() *Descriptor {
	return &Descriptor{
		Editor: Editor{
			Label:                         LocalizedText{"en": "Widget"},
			Icon:                          "box",
			CustomStylePropertiesOrder:    []string{"look"},
			CustomSettingsPropertiesOrder: []string{"data"},
		},
		TriggerEvents: []TriggerEvent{
			{Name: "widget:click", Label: LocalizedText{"en": "On click"}, Event: ObjectOf(F("x", Number(0))), Default: true},
		},
		Properties: NewProperties(
			&Property{Name: "enabled", Label: LocalizedText{"en": "Enabled"}, Type: TypeBoolean, Section: "look", DefaultValue: Bool(true).Ptr()},
			&Property{
				Name: "size", Label: LocalizedText{"en": "Size"}, Type: TypeTextSelect, Section: "look",
				Options:      &Options{Choices: []Choice{{Value: "sm", Label: "Small"}, {Value: "lg", Label: "Large"}}},
				DefaultValue: String("sm").Ptr(),
				Hidden:       HiddenUnless("enabled"),
			},
			&Property{Name: "source", Label: LocalizedText{"en": "Source"}, Type: TypeCollection, Section: "data", Bindable: true},
		),
	}
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func errorsContain(t *testing.T, errs []error, substr string) {
	t.Helper()
	for _, err := range errs {
		if strings.Contains(err.Error(), substr) {
			return
		}
	}
	t.Errorf("no error contains %q; got %v", substr, errs)
}

// --- Validate() tests ---

func TestValidate_MinimalValid(t *testing.T) {
	assert.Empty(t, minimalValidDescriptor().Validate())
}

func TestValidate_UnknownSection(t *testing.T) {
	d := minimalValidDescriptor()
	p, _ := d.Property("source")
	p.Section = "nowhere"
	errorsContain(t, d.Validate(), `property "source": references unknown section "nowhere"`)
}

func TestValidate_MissingSection(t *testing.T) {
	d := minimalValidDescriptor()
	p, _ := d.Property("source")
	p.Section = ""
	errorsContain(t, d.Validate(), "section is required")
}

func TestValidate_SectionInBothPanels(t *testing.T) {
	d := minimalValidDescriptor()
	d.Editor.CustomSettingsPropertiesOrder = append(d.Editor.CustomSettingsPropertiesOrder, "look")
	errorsContain(t, d.Validate(), `section "look" already declared in the style panel`)
}

func TestValidate_DuplicateEvent(t *testing.T) {
	d := minimalValidDescriptor()
	d.TriggerEvents = append(d.TriggerEvents, TriggerEvent{Name: "widget:click"})
	errorsContain(t, d.Validate(), `event "widget:click": duplicate event name`)
}

func TestValidate_DuplicateProperty(t *testing.T) {
	d := minimalValidDescriptor()
	d.Properties = NewProperties(append(d.Properties.All(),
		&Property{Name: "enabled", Label: LocalizedText{"en": "Again"}, Type: TypeText, Section: "look"})...)
	errs := d.Validate()
	errorsContain(t, errs, `property "enabled": duplicate property name`)
	assert.Equal(t, 3, d.Properties.Len())
}

func TestValidate_DefaultTypeMismatch(t *testing.T) {
	tests := []struct {
		name  string
		typ   ValueType
		value Value
		want  string
	}{
		{"text given number", TypeText, Number(1), "Text expects string, got number"},
		{"boolean given string", TypeBoolean, String("yes"), "Boolean expects boolean, got string"},
		{"number given bool", TypeNumber, Bool(true), "Number expects number, got boolean"},
		{"color given null", TypeColor, Null(), "Color expects string, got null"},
		{"array given object", TypeArray, ObjectOf(), "Array expects array, got object"},
		{"collection given string", TypeCollection, String("x"), "Collection expects null, array or object"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := minimalValidDescriptor()
			d.Properties = NewProperties(&Property{
				Name: "p", Label: LocalizedText{"en": "P"}, Type: tt.typ, Section: "look", DefaultValue: tt.value.Ptr(),
			})
			errorsContain(t, d.Validate(), tt.want)
		})
	}
}

func TestValidate_TextSelectDefaultNotInOptions(t *testing.T) {
	d := minimalValidDescriptor()
	p, _ := d.Property("size")
	p.DefaultValue = String("xl").Ptr()
	errorsContain(t, d.Validate(), `"xl" is not one of the options sm, lg`)
}

func TestValidate_TextSelectWithoutOptions(t *testing.T) {
	d := minimalValidDescriptor()
	p, _ := d.Property("size")
	p.Options = nil
	errorsContain(t, d.Validate(), "TextSelect requires a non-empty option list")
}

func TestValidate_UnknownType(t *testing.T) {
	d := minimalValidDescriptor()
	p, _ := d.Property("source")
	p.Type = "Date"
	errorsContain(t, d.Validate(), `unknown type "Date"`)
}

func TestValidate_ObjectItemKeys(t *testing.T) {
	item := &FieldSchema{Type: TypeObject, Options: &Options{ItemFields: NewFields(
		NamedField{Name: "name", Schema: &FieldSchema{Type: TypeText}},
		NamedField{Name: "required", Schema: &FieldSchema{Type: TypeBoolean}},
	)}}

	tests := []struct {
		name  string
		value Value
		want  string
	}{
		{"missing key", List(ObjectOf(F("name", String("a")))), "[0]: missing fields required"},
		{"extra key", List(ObjectOf(F("name", String("a")), F("required", Bool(true)), F("x", Null()))), "[0]: undeclared fields x"},
		{"wrong field type", List(ObjectOf(F("name", String("a")), F("required", String("no")))), `field "required": Boolean expects boolean`},
		{"element not object", List(String("a")), "[0]: Object expects object, got string"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := minimalValidDescriptor()
			d.Properties = NewProperties(&Property{
				Name: "fields", Label: LocalizedText{"en": "Fields"}, Type: TypeArray, Section: "look",
				Options: &Options{Item: item}, DefaultValue: tt.value.Ptr(),
			})
			errorsContain(t, d.Validate(), tt.want)
		})
	}
}

func TestValidate_HiddenPredicate(t *testing.T) {
	t.Run("self reference", func(t *testing.T) {
		d := minimalValidDescriptor()
		p, _ := d.Property("size")
		p.Hidden = HiddenUnless("size")
		errorsContain(t, d.Validate(), "predicate references its own value")
	})
	t.Run("unknown property", func(t *testing.T) {
		d := minimalValidDescriptor()
		p, _ := d.Property("size")
		p.Hidden = HiddenUnless("ghost")
		errorsContain(t, d.Validate(), `references unknown property "ghost"`)
	})
	t.Run("equals without value", func(t *testing.T) {
		d := minimalValidDescriptor()
		p, _ := d.Property("size")
		p.Hidden = &Condition{Property: "enabled", Op: OpEquals}
		errorsContain(t, d.Validate(), `operator "equals" requires a value`)
	})
	t.Run("unknown operator", func(t *testing.T) {
		d := minimalValidDescriptor()
		p, _ := d.Property("size")
		p.Hidden = &Condition{Property: "enabled", Op: "matches"}
		errorsContain(t, d.Validate(), `unknown operator "matches"`)
	})
}

func TestValidate_MultipleDefaultEventsAllowed(t *testing.T) {
	d := minimalValidDescriptor()
	d.TriggerEvents = append(d.TriggerEvents, TriggerEvent{Name: "widget:hover", Label: LocalizedText{"en": "On hover"}, Default: true})
	assert.Empty(t, d.Validate())
	ev, ok := d.DefaultEvent()
	require.True(t, ok)
	assert.Equal(t, "widget:click", ev.Name)
}

// --- New / Parse tests ---

func TestNew_RejectsInvalid(t *testing.T) {
	d := minimalValidDescriptor()
	_, err := New(d.Editor, d.TriggerEvents, NewProperties(&Property{Name: "x", Label: LocalizedText{"en": "X"}, Type: TypeText, Section: "missing"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "descriptor validation failed")
}

func TestMustNew_Panics(t *testing.T) {
	assert.Panics(t, func() {
		MustNew(Editor{}, nil, NewProperties())
	})
}

func TestParse_DuplicatePropertyKey(t *testing.T) {
	data := `{
		"editor": {"label": {"en": "W"}, "icon": "x", "customStylePropertiesOrder": ["a"], "customSettingsPropertiesOrder": []},
		"triggerEvents": [],
		"properties": {
			"p": {"label": {"en": "P"}, "type": "Text", "section": "a"},
			"p": {"label": {"en": "P2"}, "type": "Text", "section": "a"}
		}
	}`
	_, err := Parse([]byte(data))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `property "p": duplicate property name`)
}

func TestParseFormat_DuplicatePropertyEveryFormat(t *testing.T) {
	jsonSource := `{
		"editor": {"label": {"en": "W"}, "icon": "x", "customStylePropertiesOrder": ["a"], "customSettingsPropertiesOrder": []},
		"triggerEvents": [],
		"properties": {
			"color": {"label": {"en": "First"}, "type": "Text", "section": "a", "defaultValue": "red"},
			"color": {"label": {"en": "Second"}, "type": "Number", "section": "a", "defaultValue": 3}
		}
	}`
	yamlSource := `editor:
  label: {en: W}
  icon: x
  customStylePropertiesOrder: [a]
  customSettingsPropertiesOrder: []
triggerEvents: []
properties:
  color:
    label: {en: First}
    type: Text
    section: a
    defaultValue: red
  color:
    label: {en: Second}
    type: Number
    section: a
    defaultValue: 3
`

	tests := []struct {
		format Format
		source string
		errMsg string
	}{
		{FormatJSON, jsonSource, `property "color": duplicate property name`},
		{FormatJSONC, "// two colors\n" + jsonSource, `property "color": duplicate property name`},
		{FormatYAML, yamlSource, `line 13: duplicate key "color"`},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			d, err := ParseFormat([]byte(tt.source), tt.format)
			require.Error(t, err)
			assert.Nil(t, d)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestParse_DuplicateNestedKeys(t *testing.T) {
	wrap := func(prop string) string {
		return `{
			"editor": {"label": {"en": "W"}, "icon": "x", "customStylePropertiesOrder": ["a"], "customSettingsPropertiesOrder": []},
			"triggerEvents": [],
			"properties": {"p": ` + prop + `}
		}`
	}
	tests := []struct {
		name   string
		prop   string
		errMsg string
	}{
		{
			name: "item field",
			prop: `{"label": {"en": "P"}, "type": "Object", "section": "a",
				"options": {"item": {"k": {"type": "Text"}, "k": {"type": "Number"}}}}`,
			errMsg: `duplicate key "k"`,
		},
		{
			name:   "object default",
			prop:   `{"label": {"en": "P"}, "type": "Collection", "section": "a", "defaultValue": {"x": 1, "x": 2}}`,
			errMsg: `duplicate key "x"`,
		},
		{
			name:   "label locale",
			prop:   `{"label": {"en": "P", "en": "Q"}, "type": "Text", "section": "a"}`,
			errMsg: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(wrap(tt.prop)))
			if tt.errMsg == "" {
				// LocalizedText is a plain map; the last locale entry wins.
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestValue_UnmarshalStringMembers(t *testing.T) {
	var v Value
	require.NoError(t, json.Unmarshal([]byte(`{"s": "a\"b", "n": null, "list": ["x"]}`), &v))
	s, _ := v.Get("s")
	str, ok := s.AsString()
	require.True(t, ok)
	assert.Equal(t, `a"b`, str)
	assert.Equal(t, []string{"s", "n", "list"}, v.Keys())
}

func TestParse_InvalidJSON(t *testing.T) {
	_, err := Parse([]byte(`{"editor":`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse descriptor JSON")
}

func TestParse_RoundTrip(t *testing.T) {
	original := minimalValidDescriptor()
	data, err := json.Marshal(original)
	require.NoError(t, err)

	decoded, err := Parse(data)
	require.NoError(t, err)

	again, err := json.Marshal(decoded)
	require.NoError(t, err)
	assert.Equal(t, string(data), string(again))
	assert.Equal(t, []string{"enabled", "size", "source"}, decoded.PropertyNames())

	size, ok := decoded.Property("size")
	require.True(t, ok)
	assert.Equal(t, &Condition{Property: "enabled", Op: OpFalsy}, size.Hidden)
}

func TestLoadFile_JSONC(t *testing.T) {
	path := writeTemp(t, "widget.jsonc", `{
		// editor metadata
		"editor": {"label": {"en": "W"}, "icon": "x",
			"customStylePropertiesOrder": ["a"], "customSettingsPropertiesOrder": []},
		"triggerEvents": [],
		"properties": {
			/* a toggle */
			"on": {"label": {"en": "On"}, "type": "Boolean", "section": "a", "defaultValue": false},
		},
	}`)
	d, err := LoadFile(path)
	require.NoError(t, err)
	p, ok := d.Property("on")
	require.True(t, ok)
	b, _ := p.DefaultValue.AsBool()
	assert.False(t, b)
}

func TestLoadFile_YAMLPreservesOrder(t *testing.T) {
	path := writeTemp(t, "widget.yaml", `
editor:
  label: {en: W}
  icon: x
  customStylePropertiesOrder: [a]
  customSettingsPropertiesOrder: []
triggerEvents:
  - name: "w:go"
    label: {en: Go}
    event: {zeta: null, alpha: 1}
properties:
  zoom:
    label: {en: Zoom}
    type: Number
    section: a
    defaultValue: 2.5
  auto:
    label: {en: Auto}
    type: Boolean
    section: a
    defaultValue: true
  mode:
    label: {en: Mode}
    type: Text
    section: a
    defaultValue: fast
    hidden: {property: auto, op: truthy}
`)
	d, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"zoom", "auto", "mode"}, d.PropertyNames())
	assert.Equal(t, []string{"zeta", "alpha"}, d.TriggerEvents[0].Event.Keys())
	assert.True(t, d.IsHidden("mode", nil))
	assert.False(t, d.IsHidden("mode", Values{"auto": Bool(false)}))
}

func TestLoadFile_UnsupportedExtension(t *testing.T) {
	_, err := LoadFile(writeTemp(t, "widget.txt", "{}"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported descriptor file extension")
}

// --- Resolution tests ---

func TestWithDefaults_DoesNotOverride(t *testing.T) {
	d := minimalValidDescriptor()
	in := Values{"enabled": Bool(false)}
	out := d.WithDefaults(in)
	assert.Len(t, in, 1)
	b, _ := out["enabled"].AsBool()
	assert.False(t, b)
	s, _ := out["size"].AsString()
	assert.Equal(t, "sm", s)
	_, has := out["source"]
	assert.False(t, has)
}

func TestVisibleProperties(t *testing.T) {
	d := minimalValidDescriptor()
	assert.Equal(t, []string{"enabled", "size", "source"}, d.VisibleProperties(nil))
	assert.Equal(t, []string{"enabled", "source"}, d.VisibleProperties(Values{"enabled": Bool(false)}))
}

func TestLayout_FollowsPanelOrder(t *testing.T) {
	d := minimalValidDescriptor()
	d.Editor.CustomStylePropertiesOrder = []string{"z-last", "look"}
	d.Properties = NewProperties(append(d.Properties.All(),
		&Property{Name: "zed", Label: LocalizedText{"en": "Z"}, Type: TypeText, Section: "z-last"})...)
	require.Empty(t, d.Validate())

	layout := d.Layout(PanelStyle, nil)
	require.Len(t, layout, 2)
	assert.Equal(t, "z-last", layout[0].Section)
	assert.Equal(t, []string{"enabled", "size"}, layout[1].Properties)

	settings := d.Layout(PanelSettings, nil)
	require.Len(t, settings, 1)
	assert.Equal(t, []string{"source"}, settings[0].Properties)
}

func TestDependencies(t *testing.T) {
	d := minimalValidDescriptor()
	assert.Equal(t, []string{"enabled"}, d.Dependencies())
}

func TestLocalize(t *testing.T) {
	text := LocalizedText{"en": "Hello", "fr": "Bonjour"}
	assert.Equal(t, "Bonjour", Localize(text, "fr"))
	assert.Equal(t, "Hello", Localize(text, "de"))
	assert.Equal(t, "Hola", Localize(LocalizedText{"es": "Hola"}, "de"))
	assert.Equal(t, "", Localize(nil, "en"))
}

func TestLocalize_FallbackIsStable(t *testing.T) {
	text := LocalizedText{"fr": "Bonjour", "de": "Hallo", "es": "Hola", "it": "Ciao"}
	for i := 0; i < 50; i++ {
		require.Equal(t, "Hallo", Localize(text, "ja"))
	}
}

func TestSections_ReturnsCopy(t *testing.T) {
	d := minimalValidDescriptor()
	want := d.Sections(PanelStyle)
	require.NotEmpty(t, want)

	got := d.Sections(PanelStyle)
	got[0] = "mutated"

	assert.Equal(t, want, d.Sections(PanelStyle))
	assert.Equal(t, want, d.Editor.CustomStylePropertiesOrder)
}

func TestProblems(t *testing.T) {
	assert.Nil(t, Problems(nil))
	assert.Equal(t, []string{"boom"}, Problems(errors.New("boom")))

	d := minimalValidDescriptor()
	d.Editor.Label = nil
	d.Editor.Icon = ""
	data, err := json.Marshal(d)
	require.NoError(t, err)
	_, err = Parse(data)
	require.Error(t, err)

	msgs := Problems(fmt.Errorf("widget.json: %w", err))
	assert.Equal(t, len(d.Validate()), len(msgs))
	assert.Contains(t, msgs, "editor: label is required")
	for _, m := range msgs {
		assert.NotContains(t, m, "descriptor validation failed")
	}
}
