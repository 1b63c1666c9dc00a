// Package dag is the dependency layer of the generator. It stores directed
// edges between string node IDs, detects cycles and produces a deterministic
// topological order.
//
// Iteration follows node insertion order, never map order, so two graphs built
// by the same sequence of calls always report identical orders and witnesses.
package dag
