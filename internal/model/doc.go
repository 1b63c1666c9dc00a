// SPDX-License-Identifier: MIT
//
// Package model provides the Go struct representation of a pipeline
// declaration. Its core purpose is to create a strongly-typed, in-memory model
// of the user's definitions by parsing the raw HCL files.
//
// # Core Concepts
//
// The model is built around a few key structures:
//
//   - Pipeline: The root container. It aggregates every axis, input and stage
//     parsed from one or more .hcl files, in declaration order.
//
//   - Axis: A named dimension of the dataset (visit, ccd, tract, patch, ...)
//     with its literal values, an optional integer range and exclusions.
//
//   - Input: A raw data role that no stage produces. Units of this role are
//     the boundary of the workflow and carry an optional replica URL template.
//
//   - Stage: One step of the pipeline template. It names the roles it consumes
//     and produces, its fan-out rule, its selection and argument templates and
//     its resource profile.
//
//   - FSInfo: Metadata that links every definition back to its source file.
//
// Why a separate model package?
//
// Expressions such as `where`, `arguments` and input URLs depend on the
// dataset key of each task, so they cannot be evaluated while parsing. The
// model keeps them as raw hcl.Expression values and performs every check that
// does not need the dataset: names, fan-out shapes, role resolution, stage
// ordering and the variables each template is allowed to see. By the time the
// enumerator and the graph builder run, the declaration is structurally sound.
package model
