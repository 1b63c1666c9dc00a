package expr

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/lsst-dm/Daxgen/internal/hclutil"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// Functions returns the functions available to pipeline templates.
func Functions() map[string]function.Function {
	return map[string]function.Function{
		"upper":   stdlib.UpperFunc,
		"lower":   stdlib.LowerFunc,
		"format":  stdlib.FormatFunc,
		"join":    stdlib.JoinFunc,
		"split":   stdlib.SplitFunc,
		"concat":  stdlib.ConcatFunc,
		"range":   stdlib.RangeFunc,
		"replace": stdlib.ReplaceFunc,
	}
}

// NewEvalContext builds an evaluation context exposing the given variables
// and the template functions.
func NewEvalContext(vars map[string]cty.Value) *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: vars,
		Functions: Functions(),
	}
}

// EvalBool evaluates a selection expression. A missing expression selects everything.
func EvalBool(e hcl.Expression, vars map[string]cty.Value) (bool, error) {
	if e == nil {
		return true, nil
	}

	val, diags := e.Value(NewEvalContext(vars))
	if diags.HasErrors() {
		return false, diags
	}
	if val.IsNull() || !val.IsKnown() || !val.Type().Equals(cty.Bool) {
		return false, fmt.Errorf("%s: expression must evaluate to true or false", e.Range())
	}
	return val.True(), nil
}

// EvalString evaluates a template to a single string.
func EvalString(e hcl.Expression, vars map[string]cty.Value) (string, error) {
	val, diags := e.Value(NewEvalContext(vars))
	if diags.HasErrors() {
		return "", diags
	}
	s, err := hclutil.ValueString(val)
	if err != nil {
		return "", fmt.Errorf("%s: %w", e.Range(), err)
	}
	return s, nil
}

// EvalStrings evaluates a list template to a slice of strings.
func EvalStrings(e hcl.Expression, vars map[string]cty.Value) ([]string, error) {
	if e == nil {
		return nil, nil
	}

	val, diags := e.Value(NewEvalContext(vars))
	if diags.HasErrors() {
		return nil, diags
	}
	out, err := hclutil.ValueStrings(val)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", e.Range(), err)
	}
	return out, nil
}
