// Package serialize renders a sealed workflow graph into the artifacts handed
// to external tooling: the abstract workflow document for the planner, one
// execution descriptor per task for the executor and, optionally, a node-link
// export of the bipartite task/data graph.
//
// Rendering happens entirely in memory. Nothing is written until every
// artifact has been produced, and the same graph always renders to the same
// bytes: collections are emitted in creation or sorted order and no timestamps
// are recorded.
package serialize
