package descriptor

// SectionLayout is one group of the host panel: a section and its visible
// properties in declaration order.
type SectionLayout struct {
	Section    string   `json:"section"`
	Properties []string `json:"properties"`
}

// Defaults returns the declared default of every property that has one.
func (d *Descriptor) Defaults() Values {
	out := make(Values)
	for _, p := range d.Properties.All() {
		if p.DefaultValue != nil {
			out[p.Name] = *p.DefaultValue
		}
	}
	return out
}

// WithDefaults returns a copy of values where every undefined property
// takes its declared default. The input is not modified.
func (d *Descriptor) WithDefaults(values Values) Values {
	out := values.Clone()
	for _, p := range d.Properties.All() {
		if _, ok := out[p.Name]; ok || p.DefaultValue == nil {
			continue
		}
		out[p.Name] = *p.DefaultValue
	}
	return out
}

// IsHidden evaluates the named property's predicate against values after
// defaults are applied. Unknown properties and properties without a
// predicate are visible.
func (d *Descriptor) IsHidden(name string, values Values) bool {
	p, ok := d.Properties.Get(name)
	if !ok || p.Hidden == nil {
		return false
	}
	return p.Hidden.Func()(d.WithDefaults(values))
}

// Visibility maps every property name to whether it is visible.
func (d *Descriptor) Visibility(values Values) map[string]bool {
	resolved := d.WithDefaults(values)
	out := make(map[string]bool, d.Properties.Len())
	for _, p := range d.Properties.All() {
		out[p.Name] = !p.Hidden.Hidden(resolved)
	}
	return out
}

// VisibleProperties returns the visible property names in declaration order.
func (d *Descriptor) VisibleProperties(values Values) []string {
	resolved := d.WithDefaults(values)
	var out []string
	for _, p := range d.Properties.All() {
		if !p.Hidden.Hidden(resolved) {
			out = append(out, p.Name)
		}
	}
	return out
}

// Layout groups the visible properties of a panel by section, in the
// panel's section order. Sections with no visible property are omitted.
func (d *Descriptor) Layout(panel Panel, values Values) []SectionLayout {
	resolved := d.WithDefaults(values)
	bySection := make(map[string][]string)
	for _, p := range d.Properties.All() {
		if p.Hidden.Hidden(resolved) {
			continue
		}
		bySection[p.Section] = append(bySection[p.Section], p.Name)
	}

	var out []SectionLayout
	for _, section := range d.Sections(panel) {
		if props := bySection[section]; len(props) > 0 {
			out = append(out, SectionLayout{Section: section, Properties: props})
		}
	}
	return out
}
