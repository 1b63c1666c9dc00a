/*
Package builder constructs the workflow graph. It is the bridge between the
static pipeline model (the 'model' package), the enumerated data units (the
'dataset' package) and the catalogs (the 'catalog' package).

The primary artifact produced by this package is a sealed *graph.WorkflowGraph.

The graph construction is a multi-phase process:

 1. Structural validation: the pipeline is checked statically. Roles must be
    produced by an earlier stage or declared as raw inputs, and no stage may
    consume a role that only it or a later stage produces.

 2. Node creation: stages are visited in declared order and each group of the
    plan becomes one TaskNode with the id `stage[group key]`. While the node is
    created its consumed units are resolved against the units produced so far.
    A unit nobody has produced yet is external and introduces no edge.

 3. Binding and rendering: every node receives the catalog binding of its
    stage on the target site, the merged resource profile and the rendered
    argument list.

 4. Sealing: once every node exists, edges are derived from the produced and
    consumed sets and the DAG's cycle detection runs as a final check.

The first violation encountered is returned. Nodes are validated in creation
order, so the same input always reports the same error.
*/
package builder
