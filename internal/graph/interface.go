package graph

// Graph is the read-only view of a sealed workflow graph. It is the only
// surface the serializer and the exporters see.
type Graph interface {
	// Name is the workflow name.
	Name() string

	// Sealed reports whether edges have been derived and checked.
	Sealed() bool

	// Nodes returns all task nodes in creation order.
	Nodes() []*TaskNode

	// Node looks up a task node by its canonical id.
	Node(id string) (*TaskNode, bool)

	// Edges returns the derived edges ordered by child, then parent creation
	// position.
	Edges() []Edge

	// DependenciesOf returns the parents of the node in creation order.
	DependenciesOf(id string) ([]*TaskNode, error)

	// ProducerOf returns the node producing the unit with the given id.
	ProducerOf(unitID string) (*TaskNode, bool)

	// Units returns every unit produced or consumed by some node, in order of
	// first appearance.
	Units() []DataUnit

	// TopologicalOrder returns the nodes such that parents precede children.
	TopologicalOrder() ([]*TaskNode, error)
}
