package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gnana997/wwspec/pkg/descriptor"
)

// ComponentSummary is the listing view of a registered component.
type ComponentSummary struct {
	Name       string `json:"name"`
	Label      string `json:"label"`
	Icon       string `json:"icon,omitempty"`
	Source     string `json:"source,omitempty"`
	Properties int    `json:"properties"`
	Events     int    `json:"events"`
}

// PropertySummary is the flattened view of one property definition.
type PropertySummary struct {
	Component string                `json:"component"`
	Name      string                `json:"name"`
	Label     string                `json:"label"`
	Type      descriptor.ValueType  `json:"type"`
	Section   string                `json:"section"`
	Panel     descriptor.Panel      `json:"panel"`
	Bindable  bool                  `json:"bindable,omitempty"`
	Default   *descriptor.Value     `json:"defaultValue,omitempty"`
	Options   []string              `json:"options,omitempty"`
	Hidden    *descriptor.Condition `json:"hidden,omitempty"`
}

// PropertySearchResult holds a property match with the reason it matched.
type PropertySearchResult struct {
	PropertySummary
	MatchReason string `json:"match_reason"`
}

// QueryService provides read-only query methods over a catalog.
// Labels are rendered in Locale, falling back to English.
type QueryService struct {
	Catalog *Catalog
	Locale  string
}

// NewQueryService creates a QueryService over cat.
func NewQueryService(cat *Catalog) *QueryService {
	return &QueryService{Catalog: cat, Locale: descriptor.DefaultLocale}
}

func (q *QueryService) entry(component string) (*Entry, error) {
	e, ok := q.Catalog.Get(component)
	if !ok {
		return nil, fmt.Errorf("component %q not found", component)
	}
	return e, nil
}

// ListComponents returns components whose name or label contains keyword,
// case-insensitively. An empty keyword lists everything.
func (q *QueryService) ListComponents(keyword string) []ComponentSummary {
	keyword = strings.ToLower(keyword)
	result := make([]ComponentSummary, 0)
	for _, e := range q.Catalog.Entries() {
		d := e.Descriptor
		label := descriptor.Localize(d.Editor.Label, q.Locale)
		if keyword != "" &&
			!strings.Contains(strings.ToLower(e.Name), keyword) &&
			!strings.Contains(strings.ToLower(label), keyword) {
			continue
		}
		result = append(result, ComponentSummary{
			Name:       e.Name,
			Label:      label,
			Icon:       d.Editor.Icon,
			Source:     e.Source,
			Properties: d.Properties.Len(),
			Events:     len(d.TriggerEvents),
		})
	}
	return result
}

// GetComponent looks up a component by name.
func (q *QueryService) GetComponent(name string) (*Entry, bool) {
	return q.Catalog.Get(name)
}

// ListEvents returns a copy of the trigger events of a component.
func (q *QueryService) ListEvents(component string) ([]descriptor.TriggerEvent, error) {
	e, err := q.entry(component)
	if err != nil {
		return nil, err
	}
	events := make([]descriptor.TriggerEvent, len(e.Descriptor.TriggerEvents))
	for i, ev := range e.Descriptor.TriggerEvents {
		label := make(descriptor.LocalizedText, len(ev.Label))
		for locale, text := range ev.Label {
			label[locale] = text
		}
		ev.Label = label
		events[i] = ev
	}
	return events, nil
}

// ListProperties returns a component's properties in declaration order,
// optionally restricted to one section.
func (q *QueryService) ListProperties(component, section string) ([]PropertySummary, error) {
	e, err := q.entry(component)
	if err != nil {
		return nil, err
	}
	if section != "" {
		if _, ok := e.Descriptor.PanelOf(section); !ok {
			return nil, fmt.Errorf("component %q has no section %q", component, section)
		}
	}

	result := make([]PropertySummary, 0)
	for _, p := range e.Descriptor.Properties.All() {
		if section != "" && p.Section != section {
			continue
		}
		result = append(result, q.summarize(e, p))
	}
	return result, nil
}

// SearchProperties matches query case-insensitively against property
// names, labels in every locale, and section names across all components.
func (q *QueryService) SearchProperties(query string) []PropertySearchResult {
	query = strings.ToLower(query)
	if query == "" {
		return nil
	}

	var results []PropertySearchResult
	for _, e := range q.Catalog.Entries() {
		for _, p := range e.Descriptor.Properties.All() {
			reason := matchProperty(p, query)
			if reason == "" {
				continue
			}
			results = append(results, PropertySearchResult{
				PropertySummary: q.summarize(e, p),
				MatchReason:     reason,
			})
		}
	}
	return results
}

func matchProperty(p *descriptor.Property, query string) string {
	if strings.Contains(strings.ToLower(p.Name), query) {
		return "name"
	}
	locales := make([]string, 0, len(p.Label))
	for locale := range p.Label {
		locales = append(locales, locale)
	}
	sort.Strings(locales)
	for _, locale := range locales {
		if strings.Contains(strings.ToLower(p.Label[locale]), query) {
			return "label:" + locale
		}
	}
	if strings.Contains(strings.ToLower(p.Section), query) {
		return "section"
	}
	return ""
}

func (q *QueryService) summarize(e *Entry, p *descriptor.Property) PropertySummary {
	panel, _ := e.Descriptor.PanelOf(p.Section)
	s := PropertySummary{
		Component: e.Name,
		Name:      p.Name,
		Label:     descriptor.Localize(p.Label, q.Locale),
		Type:      p.Type,
		Section:   p.Section,
		Panel:     panel,
		Bindable:  p.Bindable,
		Default:   p.DefaultValue,
		Hidden:    p.Hidden,
	}
	if p.Options != nil {
		s.Options = p.Options.ChoiceValues()
	}
	return s
}
