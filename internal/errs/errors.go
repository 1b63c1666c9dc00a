// Package errs defines the failures that abort workflow generation.
//
// Every error in this package matches ErrGraphConstruction with errors.Is and
// identifies the offending stage and, where one exists, the DataUnit key. None
// of them is recoverable: a caller that receives one must not write artifacts.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

// ErrGraphConstruction is the common kind of all generation failures.
var ErrGraphConstruction = errors.New("workflow graph construction failed")

// EmptyInputError reports a selection that produced no DataUnits.
type EmptyInputError struct {
	Stage string
	Axis  string
}

func (e *EmptyInputError) Error() string {
	switch {
	case e.Axis != "" && e.Stage != "":
		return fmt.Sprintf("stage %q: axis %q resolves to no values", e.Stage, e.Axis)
	case e.Axis != "":
		return fmt.Sprintf("axis %q resolves to no values", e.Axis)
	default:
		return fmt.Sprintf("stage %q: selection yields no data units", e.Stage)
	}
}

func (e *EmptyInputError) Unwrap() error { return ErrGraphConstruction }

// SingleWriterViolationError reports a DataUnit claimed by two producers.
type SingleWriterViolationError struct {
	Unit        string
	First       string
	FirstStage  string
	Second      string
	SecondStage string
}

func (e *SingleWriterViolationError) Error() string {
	return fmt.Sprintf("data unit %q is produced by %q (stage %q) and %q (stage %q)",
		e.Unit, e.First, e.FirstStage, e.Second, e.SecondStage)
}

func (e *SingleWriterViolationError) Unwrap() error { return ErrGraphConstruction }

// CycleDetectedError reports either a stage ordering violation or a cycle
// found among task nodes. Path holds the nodes of the witness cycle in order.
type CycleDetectedError struct {
	Stages []string
	Path   []string
	Reason string
}

func (e *CycleDetectedError) Error() string {
	var sb strings.Builder
	sb.WriteString("cycle detected")
	if len(e.Stages) > 0 {
		sb.WriteString(" between stages ")
		sb.WriteString(quoteJoin(e.Stages, ", "))
	}
	if len(e.Path) > 0 {
		sb.WriteString(": ")
		sb.WriteString(strings.Join(e.Path, " -> "))
	}
	if e.Reason != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Reason)
	}
	return sb.String()
}

func (e *CycleDetectedError) Unwrap() error { return ErrGraphConstruction }

// UnresolvedBindingError reports a stage with no executable on the target site.
type UnresolvedBindingError struct {
	Stage string
	Site  string
}

func (e *UnresolvedBindingError) Error() string {
	return fmt.Sprintf("stage %q has no executable binding for site %q", e.Stage, e.Site)
}

func (e *UnresolvedBindingError) Unwrap() error { return ErrGraphConstruction }

// MalformedInputError reports a pipeline declaration that cannot be turned
// into a graph: unknown roles, bad identifiers, invalid expressions.
type MalformedInputError struct {
	Stage  string
	Role   string
	Reason string
	Err    error
}

func (e *MalformedInputError) Error() string {
	var parts []string
	if e.Stage != "" {
		parts = append(parts, fmt.Sprintf("stage %q", e.Stage))
	}
	if e.Role != "" {
		parts = append(parts, fmt.Sprintf("role %q", e.Role))
	}
	reason := e.Reason
	if reason == "" {
		reason = "malformed input"
	}
	if e.Err != nil {
		reason = fmt.Sprintf("%s: %v", reason, e.Err)
	}
	parts = append(parts, reason)
	return strings.Join(parts, ": ")
}

func (e *MalformedInputError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrGraphConstruction}
	}
	return []error{ErrGraphConstruction, e.Err}
}

// Malformedf builds a MalformedInputError for a stage.
func Malformedf(stage, format string, args ...any) error {
	return &MalformedInputError{Stage: stage, Reason: fmt.Sprintf(format, args...)}
}

func quoteJoin(items []string, sep string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	return strings.Join(quoted, sep)
}
