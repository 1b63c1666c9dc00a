package graph

import (
	"github.com/lsst-dm/Daxgen/internal/catalog"
	"github.com/lsst-dm/Daxgen/internal/model"
	"github.com/lsst-dm/Daxgen/internal/nodeid"
)

// DataUnit is a concrete piece of data: a role bound to a key. Units are
// values; two units with the same role and key are the same unit.
type DataUnit struct {
	Role string
	Key  nodeid.Key

	// External is true for units no node produces. URL and Site locate the
	// replica of a declared raw input and are empty otherwise.
	External bool
	URL      string
	Site     string
}

// Address returns the structured identifier of the unit.
func (u DataUnit) Address() nodeid.Address {
	return nodeid.NewAddress(u.Role, u.Key)
}

// ID returns the canonical `role[axis=value,...]` identifier.
func (u DataUnit) ID() string {
	return u.Address().String()
}

// TaskNode is one invocation of a stage bound to a group of data units.
type TaskNode struct {
	ID    nodeid.Address
	Stage string
	// Members are the unit keys of the group this node covers.
	Members  []nodeid.Key
	Consumes []DataUnit
	Produces []DataUnit

	Binding catalog.Binding
	// Wrapper is set when jobs run through a wrapper transformation.
	Wrapper       *catalog.Binding
	Profile       model.Profile
	Arguments     []string
	CaptureOutput bool

	index int
}

// Key returns the group key of the node.
func (n *TaskNode) Key() nodeid.Key {
	return n.ID.Key
}

// Index returns the creation position of the node in its graph.
func (n *TaskNode) Index() int {
	return n.index
}

// Transformation returns the name of the executable the job invokes.
func (n *TaskNode) Transformation() string {
	if n.Wrapper != nil {
		return n.Wrapper.Transformation
	}
	return n.Binding.Transformation
}

// Edge means Child consumes at least one unit produced by Parent.
type Edge struct {
	Parent string
	Child  string
}
