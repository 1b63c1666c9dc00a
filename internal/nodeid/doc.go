// internal/nodeid/doc.go

/*
Package nodeid provides a structured, type-safe representation for the
identifiers of task nodes and data units, based on the canonical format
`name[axis=value,...]`.

A Key is the set of axis=value dimensions that locates a unit inside the
dataset, kept sorted by axis name. An Address couples a name (a stage name
for task nodes, a role for data units) with a Key. Because the key is sorted,
the same logical address always renders to the same string, which makes ids
stable across runs.

Examples:

	processCcd[ccd=0,visit=903334]
	calexp[ccd=0,visit=903334]
	coaddTempExp[patch=1,1,tract=0]
	makeSkyMap

This package enforces the identifier schema and centralizes all
formatting and parsing logic.
*/
package nodeid
