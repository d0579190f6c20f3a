package descriptor

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Problems flattens an error carrying joined validation errors into one
// message per problem. A nil error yields nil.
func Problems(err error) []string {
	if err == nil {
		return nil
	}
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		var out []string
		for _, e := range joined.Unwrap() {
			out = append(out, e.Error())
		}
		return out
	}
	return []string{err.Error()}
}

// Validate checks the descriptor for internal consistency.
// Returns a slice of validation errors (empty slice if valid).
func (d *Descriptor) Validate() []error {
	var errs []error

	// Editor metadata.
	if len(d.Editor.Label) == 0 {
		errs = append(errs, fmt.Errorf("editor: label is required"))
	}
	sections := make(map[string]Panel)
	for _, order := range []struct {
		panel Panel
		field string
		names []string
	}{
		{PanelStyle, "customStylePropertiesOrder", d.Editor.CustomStylePropertiesOrder},
		{PanelSettings, "customSettingsPropertiesOrder", d.Editor.CustomSettingsPropertiesOrder},
	} {
		for i, name := range order.names {
			if name == "" {
				errs = append(errs, fmt.Errorf("editor %s[%d]: section name is required", order.field, i))
				continue
			}
			if prev, dup := sections[name]; dup {
				errs = append(errs, fmt.Errorf("editor %s[%d]: section %q already declared in the %s panel", order.field, i, name, prev))
				continue
			}
			sections[name] = order.panel
		}
	}

	// Trigger events.
	eventNames := make(map[string]bool, len(d.TriggerEvents))
	for i, ev := range d.TriggerEvents {
		if ev.Name == "" {
			errs = append(errs, fmt.Errorf("triggerEvents[%d]: name is required", i))
			continue
		}
		if eventNames[ev.Name] {
			errs = append(errs, fmt.Errorf("event %q: duplicate event name", ev.Name))
			continue
		}
		eventNames[ev.Name] = true
	}

	// Properties.
	if d.Properties == nil {
		errs = append(errs, fmt.Errorf("properties are required"))
		return errs
	}
	for _, name := range d.Properties.duplicates {
		errs = append(errs, fmt.Errorf("property %q: duplicate property name", name))
	}
	for _, p := range d.Properties.All() {
		errs = append(errs, d.validateProperty(p, sections)...)
	}

	return errs
}

func (d *Descriptor) validateProperty(p *Property, sections map[string]Panel) []error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("property %q: %s", p.Name, fmt.Sprintf(format, args...)))
	}

	if p.Name == "" {
		return []error{fmt.Errorf("property with empty name")}
	}
	if len(p.Label) == 0 {
		fail("label is required")
	}

	if p.Section == "" {
		fail("section is required")
	} else if _, ok := sections[p.Section]; !ok {
		fail("references unknown section %q", p.Section)
	}

	schema := FieldSchema{Type: p.Type, Bindable: p.Bindable, Options: p.Options}
	if err := checkSchema(&schema); err != nil {
		fail("%v", err)
		return errs
	}

	if p.DefaultValue != nil {
		if err := conforms(&schema, *p.DefaultValue); err != nil {
			fail("defaultValue: %v", err)
		}
	}

	if p.Hidden != nil {
		if err := p.Hidden.validate(); err != nil {
			fail("%v", err)
		} else if p.Hidden.Property == p.Name {
			fail("hidden: predicate references its own value")
		} else if _, ok := d.Properties.Get(p.Hidden.Property); !ok {
			fail("hidden: references unknown property %q", p.Hidden.Property)
		}
	}

	return errs
}

// checkSchema validates a type tag and the options it carries.
func checkSchema(s *FieldSchema) error {
	if s.Type == "" {
		return fmt.Errorf("type is required")
	}
	if !s.Type.Valid() {
		return fmt.Errorf("unknown type %q", s.Type)
	}

	switch s.Type {
	case TypeTextSelect:
		if s.Options == nil || len(s.Options.Choices) == 0 {
			return fmt.Errorf("TextSelect requires a non-empty option list")
		}
		seen := make(map[string]bool, len(s.Options.Choices))
		for _, c := range s.Options.Choices {
			if seen[c.Value] {
				return fmt.Errorf("duplicate option value %q", c.Value)
			}
			seen[c.Value] = true
		}
	case TypeArray:
		if s.Options != nil && s.Options.ItemFields != nil {
			return fmt.Errorf("Array item must be a single schema, not a field map")
		}
		if s.Options != nil && s.Options.Item != nil {
			if err := checkSchema(s.Options.Item); err != nil {
				return fmt.Errorf("item: %w", err)
			}
		}
	case TypeObject:
		if s.Options != nil && s.Options.Item != nil {
			return fmt.Errorf("Object item must be a field map")
		}
		if s.Options != nil && s.Options.ItemFields != nil {
			for pair := s.Options.ItemFields.Oldest(); pair != nil; pair = pair.Next() {
				if pair.Value == nil {
					return fmt.Errorf("field %q: schema is required", pair.Key)
				}
				if err := checkSchema(pair.Value); err != nil {
					return fmt.Errorf("field %q: %w", pair.Key, err)
				}
			}
		}
	}
	return nil
}

// conforms checks that v matches the declared schema.
func conforms(s *FieldSchema, v Value) error {
	switch s.Type {
	case TypeText, TypeColor, TypeLength:
		if v.Kind() != KindString {
			return kindMismatch(s.Type, v)
		}
	case TypeTextSelect:
		str, ok := v.AsString()
		if !ok {
			return kindMismatch(s.Type, v)
		}
		if !s.Options.hasChoice(str) {
			return fmt.Errorf("%q is not one of the options %s", str, strings.Join(s.Options.ChoiceValues(), ", "))
		}
	case TypeBoolean:
		if v.Kind() != KindBool {
			return kindMismatch(s.Type, v)
		}
	case TypeNumber:
		if v.Kind() != KindNumber {
			return kindMismatch(s.Type, v)
		}
	case TypeCollection:
		// Collections are bound by the host; only an unset placeholder or
		// literal data is meaningful as a default.
		switch v.Kind() {
		case KindNull, KindList, KindObject:
		default:
			return kindMismatch(s.Type, v)
		}
	case TypeArray:
		items, ok := v.AsList()
		if !ok {
			return kindMismatch(s.Type, v)
		}
		if s.Options == nil || s.Options.Item == nil {
			return nil
		}
		for i, item := range items {
			if err := conforms(s.Options.Item, item); err != nil {
				return fmt.Errorf("[%d]: %w", i, err)
			}
		}
	case TypeObject:
		if v.Kind() != KindObject {
			return kindMismatch(s.Type, v)
		}
		if s.Options == nil || s.Options.ItemFields == nil {
			return nil
		}
		return conformsFields(s.Options.ItemFields, v)
	}
	return nil
}

// conformsFields requires v to carry exactly the declared keys.
func conformsFields(fields *Fields, v Value) error {
	var missing, extra []string
	for pair := fields.Oldest(); pair != nil; pair = pair.Next() {
		fv, ok := v.Get(pair.Key)
		if !ok {
			missing = append(missing, pair.Key)
			continue
		}
		if err := conforms(pair.Value, fv); err != nil {
			return fmt.Errorf("field %q: %w", pair.Key, err)
		}
	}
	for _, k := range v.Keys() {
		if _, ok := fields.Get(k); !ok {
			extra = append(extra, k)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("missing fields %s", strings.Join(missing, ", "))
	}
	if len(extra) > 0 {
		sort.Strings(extra)
		return fmt.Errorf("undeclared fields %s", strings.Join(extra, ", "))
	}
	return nil
}

func kindMismatch(t ValueType, v Value) error {
	return fmt.Errorf("%s expects %s, got %s", t, expectedKind(t), v.Kind())
}

func expectedKind(t ValueType) string {
	switch t {
	case TypeBoolean:
		return "boolean"
	case TypeNumber:
		return "number"
	case TypeArray:
		return "array"
	case TypeObject:
		return "object"
	case TypeCollection:
		return "null, array or object"
	default:
		return "string"
	}
}
