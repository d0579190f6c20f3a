// Package catalog keeps the set of component descriptors known to a host
// and answers lookups, searches and layout queries over them.
package catalog

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/gnana997/wwspec/catalogs"
	"github.com/gnana997/wwspec/pkg/descriptor"
)

// SourceBuiltin marks entries registered from the bundled catalogs.
const SourceBuiltin = "builtin"

// Entry is a registered component descriptor.
type Entry struct {
	Name       string                 `json:"name"`
	Source     string                 `json:"source,omitempty"`
	Descriptor *descriptor.Descriptor `json:"descriptor"`

	// Revision increases every time the catalog stores a descriptor.
	// Cached results keyed on it go stale when the entry is replaced.
	Revision uint64 `json:"-"`
}

// Catalog is a concurrency-safe registry of descriptors by component name.
// Entries keep their registration order.
type Catalog struct {
	mu       sync.RWMutex
	entries  map[string]*Entry
	order    []string
	revision uint64
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{entries: make(map[string]*Entry)}
}

// NewBuiltin creates a catalog holding the bundled descriptors.
func NewBuiltin() *Catalog {
	c := New()
	for _, b := range catalogs.Builtin() {
		if err := c.Register(b.Name, SourceBuiltin, b.New()); err != nil {
			panic(fmt.Sprintf("builtin descriptor %q: %v", b.Name, err))
		}
	}
	return c
}

// Register adds a descriptor under name. The descriptor is validated again
// and a name that is already registered is rejected.
func (c *Catalog) Register(name, source string, d *descriptor.Descriptor) error {
	if err := checkEntry(name, d); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.entries[name]; ok {
		return fmt.Errorf("component %q: already registered from %s", name, existing.Source)
	}
	c.store(name, source, d)
	return nil
}

// Put registers or replaces the descriptor under name and reports whether
// an entry was replaced.
func (c *Catalog) Put(name, source string, d *descriptor.Descriptor) (bool, error) {
	if err := checkEntry(name, d); err != nil {
		return false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	_, replaced := c.entries[name]
	c.store(name, source, d)
	return replaced, nil
}

func (c *Catalog) store(name, source string, d *descriptor.Descriptor) {
	if _, ok := c.entries[name]; !ok {
		c.order = append(c.order, name)
	}
	c.revision++
	c.entries[name] = &Entry{Name: name, Source: source, Descriptor: d, Revision: c.revision}
}

func checkEntry(name string, d *descriptor.Descriptor) error {
	if name == "" {
		return fmt.Errorf("component name is required")
	}
	if d == nil {
		return fmt.Errorf("component %q: descriptor is nil", name)
	}
	if errs := d.Validate(); len(errs) > 0 {
		return fmt.Errorf("component %q: descriptor validation failed: %w", name, errors.Join(errs...))
	}
	return nil
}

// Remove drops a component and reports whether it was registered.
func (c *Catalog) Remove(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.removeLocked(name)
}

// RemoveSource drops every component loaded from the given file and
// returns their names.
func (c *Catalog) RemoveSource(path string) []string {
	path = filepath.Clean(path)

	c.mu.Lock()
	defer c.mu.Unlock()
	var removed []string
	for _, name := range append([]string(nil), c.order...) {
		if e := c.entries[name]; e.Source != SourceBuiltin && filepath.Clean(e.Source) == path {
			c.removeLocked(name)
			removed = append(removed, name)
		}
	}
	return removed
}

func (c *Catalog) removeLocked(name string) bool {
	if _, ok := c.entries[name]; !ok {
		return false
	}
	delete(c.entries, name)
	for i, n := range c.order {
		if n == name {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	c.revision++
	return true
}

// Get looks up a component by name.
func (c *Catalog) Get(name string) (*Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[name]
	return e, ok
}

// Names returns component names in registration order.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.order...)
}

// Entries returns all entries in registration order.
func (c *Catalog) Entries() []*Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Entry, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.entries[name])
	}
	return out
}

// Len returns the number of registered components.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}
