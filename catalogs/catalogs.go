// Package catalogs provides the component descriptors shipped with wwspec.
package catalogs

import "github.com/gnana997/wwspec/pkg/descriptor"

// Constructor builds a fresh descriptor.
type Constructor func() *descriptor.Descriptor

// Builtin returns the bundled descriptors by catalog name, in a stable order.
func Builtin() []Named {
	return []Named{
		{Name: EmailComposerName, New: EmailComposer},
	}
}

// Named pairs a catalog name with its constructor.
type Named struct {
	Name string
	New  Constructor
}
