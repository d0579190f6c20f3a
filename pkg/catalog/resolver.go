package catalog

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/gnana997/wwspec/pkg/descriptor"
)

// DefaultResolverCacheSize bounds the number of cached layouts.
const DefaultResolverCacheSize = 512

// Resolver computes visibility and panel layouts for catalog components.
// Layouts are cached per component revision, panel and the values of the
// properties that predicates reference; all other values cannot change
// the result.
type Resolver struct {
	catalog *Catalog
	cache   *lru.Cache[string, []descriptor.SectionLayout]
	logger  *slog.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

// ResolverStats reports cache effectiveness.
type ResolverStats struct {
	Entries int   `json:"entries"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
}

// NewResolver creates a Resolver over cat. A non-positive size selects
// DefaultResolverCacheSize.
func NewResolver(cat *Catalog, size int, logger *slog.Logger) (*Resolver, error) {
	if size <= 0 {
		size = DefaultResolverCacheSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	cache, err := lru.New[string, []descriptor.SectionLayout](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create layout cache: %w", err)
	}
	return &Resolver{catalog: cat, cache: cache, logger: logger}, nil
}

// Visibility maps every property of a component to whether it is visible
// for values. Undefined values take their defaults.
func (r *Resolver) Visibility(component string, values descriptor.Values) (map[string]bool, error) {
	e, ok := r.catalog.Get(component)
	if !ok {
		return nil, fmt.Errorf("component %q not found", component)
	}
	return e.Descriptor.Visibility(values), nil
}

// Layout returns the visible properties of a panel grouped by section.
func (r *Resolver) Layout(component string, panel descriptor.Panel, values descriptor.Values) ([]descriptor.SectionLayout, error) {
	e, ok := r.catalog.Get(component)
	if !ok {
		return nil, fmt.Errorf("component %q not found", component)
	}
	if panel != descriptor.PanelStyle && panel != descriptor.PanelSettings {
		return nil, fmt.Errorf("unknown panel %q (must be %s or %s)", panel, descriptor.PanelStyle, descriptor.PanelSettings)
	}

	d := e.Descriptor
	key := fmt.Sprintf("%s|%d|%s|%s", e.Name, e.Revision, panel,
		d.WithDefaults(values).Fingerprint(d.Dependencies()))

	if layout, ok := r.cache.Get(key); ok {
		r.hits.Add(1)
		return cloneLayout(layout), nil
	}
	r.misses.Add(1)

	layout := d.Layout(panel, values)
	r.cache.Add(key, layout)
	r.logger.Debug("layout resolved", "component", component, "panel", panel, "sections", len(layout))
	return cloneLayout(layout), nil
}

// Purge drops every cached layout.
func (r *Resolver) Purge() {
	r.cache.Purge()
}

// Stats returns cache counters.
func (r *Resolver) Stats() ResolverStats {
	return ResolverStats{
		Entries: r.cache.Len(),
		Hits:    r.hits.Load(),
		Misses:  r.misses.Load(),
	}
}

func cloneLayout(in []descriptor.SectionLayout) []descriptor.SectionLayout {
	out := make([]descriptor.SectionLayout, len(in))
	for i, s := range in {
		out[i] = descriptor.SectionLayout{
			Section:    s.Section,
			Properties: append([]string(nil), s.Properties...),
		}
	}
	return out
}
