package descriptor

import (
	"errors"
	"fmt"
)

// New assembles a descriptor and validates it. The returned descriptor is
// treated as immutable by every consumer in this module.
func New(editor Editor, events []TriggerEvent, props *Properties) (*Descriptor, error) {
	d := &Descriptor{
		Editor:        editor,
		TriggerEvents: events,
		Properties:    props,
	}
	if errs := d.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("descriptor validation failed: %w", errors.Join(errs...))
	}
	return d, nil
}

// MustNew is New for descriptors declared in code; it panics on an invalid
// declaration.
func MustNew(editor Editor, events []TriggerEvent, props *Properties) *Descriptor {
	d, err := New(editor, events, props)
	if err != nil {
		panic(err)
	}
	return d
}

// Property looks up a property by name.
func (d *Descriptor) Property(name string) (*Property, bool) {
	return d.Properties.Get(name)
}

// PropertyNames returns the property names in declaration order.
func (d *Descriptor) PropertyNames() []string {
	return d.Properties.Names()
}

// Event looks up a trigger event by name.
func (d *Descriptor) Event(name string) (*TriggerEvent, bool) {
	for i := range d.TriggerEvents {
		if d.TriggerEvents[i].Name == name {
			return &d.TriggerEvents[i], true
		}
	}
	return nil, false
}

// EventNames returns the event identifiers in declaration order.
func (d *Descriptor) EventNames() []string {
	out := make([]string, len(d.TriggerEvents))
	for i, ev := range d.TriggerEvents {
		out[i] = ev.Name
	}
	return out
}

// DefaultEvent returns the first event flagged as default.
func (d *Descriptor) DefaultEvent() (*TriggerEvent, bool) {
	for i := range d.TriggerEvents {
		if d.TriggerEvents[i].Default {
			return &d.TriggerEvents[i], true
		}
	}
	return nil, false
}

// PanelOf returns the panel a section belongs to.
func (d *Descriptor) PanelOf(section string) (Panel, bool) {
	for _, s := range d.Editor.CustomStylePropertiesOrder {
		if s == section {
			return PanelStyle, true
		}
	}
	for _, s := range d.Editor.CustomSettingsPropertiesOrder {
		if s == section {
			return PanelSettings, true
		}
	}
	return "", false
}

// Sections returns a copy of the ordered section names of a panel.
func (d *Descriptor) Sections(panel Panel) []string {
	switch panel {
	case PanelStyle:
		return append([]string(nil), d.Editor.CustomStylePropertiesOrder...)
	case PanelSettings:
		return append([]string(nil), d.Editor.CustomSettingsPropertiesOrder...)
	}
	return nil
}

// Dependencies returns the properties referenced by any hidden predicate,
// in declaration order of the first referencing property.
func (d *Descriptor) Dependencies() []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range d.Properties.All() {
		if p.Hidden == nil || seen[p.Hidden.Property] {
			continue
		}
		seen[p.Hidden.Property] = true
		out = append(out, p.Hidden.Property)
	}
	return out
}
