// Package catalog reads the externally supplied transformation and site
// catalogs and answers one question for the graph builder: which executable
// runs a given stage on a given site.
//
// The catalogs are read-only. They are loaded once per invocation and passed
// explicitly to the builder through the Resolver interface.
package catalog

import (
	"github.com/lsst-dm/Daxgen/internal/errs"
	"github.com/lsst-dm/Daxgen/internal/model"
)

// Binding is the executable resolved for a (transformation, site) pair.
type Binding struct {
	Transformation string
	Site           string
	PFN            string
	Type           string
	Arch           string
	OS             string
	Profile        model.Profile
}

// Resolver looks up bindings. Implementations return an
// *errs.UnresolvedBindingError when no binding exists.
type Resolver interface {
	Resolve(transformation, site string) (Binding, error)
}

// Table is an in-memory Resolver built from the catalogs.
type Table struct {
	bindings map[tableKey]Binding
}

type tableKey struct {
	transformation string
	site           string
}

var _ Resolver = (*Table)(nil)

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{bindings: make(map[tableKey]Binding)}
}

// Add registers a binding, replacing any binding for the same pair.
func (t *Table) Add(b Binding) {
	t.bindings[tableKey{b.Transformation, b.Site}] = b
}

// Len returns the number of registered bindings.
func (t *Table) Len() int {
	return len(t.bindings)
}

// Resolve implements Resolver.
func (t *Table) Resolve(transformation, site string) (Binding, error) {
	b, ok := t.bindings[tableKey{transformation, site}]
	if !ok {
		return Binding{}, &errs.UnresolvedBindingError{Stage: transformation, Site: site}
	}
	b.Profile = model.Profile{}.Merge(b.Profile)
	return b, nil
}
