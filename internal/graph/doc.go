// Package graph holds the workflow graph produced by the builder: task nodes,
// the data units they consume and produce, and the edges derived from them.
//
// # Lifecycle
//
//  1. **Population:** the builder creates a WorkflowGraph and adds nodes in
//     creation order. AddNode enforces the single-writer rule and rejects a
//     unit that is produced after an earlier node already read it as external.
//  2. **Sealing:** Seal derives the edges from the produced and consumed sets,
//     loads them into a dag.Graph and runs cycle detection.
//  3. **Serialization:** consumers only see the read-only Graph interface.
//
// Edges are never authored directly. Every listing (nodes, units, edges) is in
// creation order, so two graphs built from the same input are identical.
package graph
