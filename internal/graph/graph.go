package graph

import (
	"fmt"
	"sort"

	"github.com/lsst-dm/Daxgen/internal/dag"
	"github.com/lsst-dm/Daxgen/internal/errs"
)

// WorkflowGraph is the set of task nodes and derived edges of one run. It is
// owned by a single builder until Seal; afterwards it is read-only.
type WorkflowGraph struct {
	name   string
	nodes  []*TaskNode
	byID   map[string]*TaskNode
	sealed bool

	// producers maps a unit id to the node producing it.
	producers map[string]*TaskNode
	// externalReaders maps an external unit id to the first node reading it.
	externalReaders map[string]*TaskNode
	byRole          map[string][]DataUnit
	units           map[string]DataUnit
	unitOrder       []string

	edges []Edge
	dag   *dag.Graph
}

var _ Graph = (*WorkflowGraph)(nil)

// New creates an empty graph for the named workflow.
func New(name string) *WorkflowGraph {
	return &WorkflowGraph{
		name:            name,
		byID:            make(map[string]*TaskNode),
		producers:       make(map[string]*TaskNode),
		externalReaders: make(map[string]*TaskNode),
		byRole:          make(map[string][]DataUnit),
		units:           make(map[string]DataUnit),
		dag:             dag.New(),
	}
}

// AddNode appends n to the graph. It fails when one of n's outputs already
// has a producer, or when an earlier node consumed it as an external unit.
// Consumed units that are not external must already have a producer.
func (g *WorkflowGraph) AddNode(n *TaskNode) error {
	if g.sealed {
		return fmt.Errorf("graph %q is sealed: cannot add node %s", g.name, n.ID)
	}
	id := n.ID.String()
	if _, dup := g.byID[id]; dup {
		return errs.Malformedf(n.Stage, "duplicate task node %s", id)
	}

	for _, u := range n.Consumes {
		uid := u.ID()
		producer, produced := g.producers[uid]
		switch {
		case !u.External && !produced:
			return &errs.MalformedInputError{Stage: n.Stage, Role: u.Role,
				Reason: fmt.Sprintf("unit %s has no producer", uid)}
		case u.External && produced:
			return &errs.MalformedInputError{Stage: n.Stage, Role: u.Role,
				Reason: fmt.Sprintf("unit %s is produced by %s and cannot be read as external", uid, producer.ID)}
		}
	}

	for _, u := range n.Produces {
		uid := u.ID()
		if first, ok := g.producers[uid]; ok {
			return &errs.SingleWriterViolationError{
				Unit:        uid,
				First:       first.ID.String(),
				FirstStage:  first.Stage,
				Second:      id,
				SecondStage: n.Stage,
			}
		}
		if reader, ok := g.externalReaders[uid]; ok {
			return &errs.CycleDetectedError{
				Stages: []string{reader.Stage, n.Stage},
				Reason: fmt.Sprintf("unit %s is read by %s before %s produces it", uid, reader.ID, id),
			}
		}
	}

	n.index = len(g.nodes)
	g.nodes = append(g.nodes, n)
	g.byID[id] = n

	for _, u := range n.Consumes {
		uid := u.ID()
		if u.External {
			if _, ok := g.externalReaders[uid]; !ok {
				g.externalReaders[uid] = n
			}
		}
		g.addUnit(u)
	}
	for _, u := range n.Produces {
		u.External = false
		g.producers[u.ID()] = n
		g.byRole[u.Role] = append(g.byRole[u.Role], u)
		g.addUnit(u)
	}
	return nil
}

func (g *WorkflowGraph) addUnit(u DataUnit) {
	uid := u.ID()
	if _, ok := g.units[uid]; ok {
		return
	}
	g.units[uid] = u
	g.unitOrder = append(g.unitOrder, uid)
}

// Produced returns the units of role produced so far, in creation order.
func (g *WorkflowGraph) Produced(role string) []DataUnit {
	return g.byRole[role]
}

// Seal derives the edges, checks the graph for cycles and freezes it.
func (g *WorkflowGraph) Seal() error {
	if g.sealed {
		return nil
	}

	for _, n := range g.nodes {
		g.dag.AddNode(n.ID.String())
	}

	for _, child := range g.nodes {
		seen := make(map[int]bool)
		var parents []*TaskNode
		for _, u := range child.Consumes {
			if u.External {
				continue
			}
			parent := g.producers[u.ID()]
			if seen[parent.index] {
				continue
			}
			seen[parent.index] = true
			parents = append(parents, parent)
		}
		sort.Slice(parents, func(i, j int) bool { return parents[i].index < parents[j].index })

		for _, parent := range parents {
			if err := g.dag.AddEdge(parent.ID.String(), child.ID.String()); err != nil {
				return &errs.CycleDetectedError{Stages: []string{child.Stage}, Reason: err.Error()}
			}
			g.edges = append(g.edges, Edge{Parent: parent.ID.String(), Child: child.ID.String()})
		}
	}

	if err := g.dag.DetectCycles(); err != nil {
		return err
	}

	g.sealed = true
	return nil
}

// Sealed reports whether Seal has succeeded.
func (g *WorkflowGraph) Sealed() bool {
	return g.sealed
}

// Name implements Graph.
func (g *WorkflowGraph) Name() string {
	return g.name
}

// Nodes implements Graph.
func (g *WorkflowGraph) Nodes() []*TaskNode {
	return append([]*TaskNode(nil), g.nodes...)
}

// Node implements Graph.
func (g *WorkflowGraph) Node(id string) (*TaskNode, bool) {
	n, ok := g.byID[id]
	return n, ok
}

// Edges implements Graph.
func (g *WorkflowGraph) Edges() []Edge {
	return append([]Edge(nil), g.edges...)
}

// DependenciesOf implements Graph.
func (g *WorkflowGraph) DependenciesOf(id string) ([]*TaskNode, error) {
	ids, err := g.dag.Dependencies(id)
	if err != nil {
		return nil, err
	}
	return g.lookup(ids), nil
}

// ProducerOf implements Graph.
func (g *WorkflowGraph) ProducerOf(unitID string) (*TaskNode, bool) {
	n, ok := g.producers[unitID]
	return n, ok
}

// Units implements Graph.
func (g *WorkflowGraph) Units() []DataUnit {
	out := make([]DataUnit, len(g.unitOrder))
	for i, uid := range g.unitOrder {
		out[i] = g.units[uid]
	}
	return out
}

// TopologicalOrder implements Graph.
func (g *WorkflowGraph) TopologicalOrder() ([]*TaskNode, error) {
	ids, err := g.dag.TopologicalOrder()
	if err != nil {
		return nil, err
	}
	return g.lookup(ids), nil
}

func (g *WorkflowGraph) lookup(ids []string) []*TaskNode {
	out := make([]*TaskNode, len(ids))
	for i, id := range ids {
		out[i] = g.byID[id]
	}
	return out
}
