package expr

import (
	"maps"
	"slices"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/lsst-dm/Daxgen/internal/hclutil"
	"github.com/zclconf/go-cty/cty/function"
)

// usage is what a set of argument and condition templates pulls from the
// evaluation context: the dimension variables they read and the functions
// they call, each with the range of its first occurrence.
type usage struct {
	refs  []hcl.Traversal
	calls []call
}

type call struct {
	name  string
	where hcl.Range
}

func scan(exprs []hcl.Expression) usage {
	refs := make(map[string]hcl.Traversal)
	calls := make(map[string]hcl.Range)

	for _, e := range exprs {
		for _, tr := range e.Variables() {
			refs[hclutil.TraversalKey(tr)] = tr
		}
		// Variables() skips function names; only native syntax carries them.
		node, ok := e.(hclsyntax.Node)
		if !ok {
			continue
		}
		hclsyntax.VisitAll(node, func(n hclsyntax.Node) hcl.Diagnostics {
			if fc, ok := n.(*hclsyntax.FunctionCallExpr); ok {
				if _, seen := calls[fc.Name]; !seen {
					calls[fc.Name] = fc.NameRange
				}
			}
			return nil
		})
	}

	var u usage
	for _, key := range slices.Sorted(maps.Keys(refs)) {
		u.refs = append(u.refs, refs[key])
	}
	for _, name := range slices.Sorted(maps.Keys(calls)) {
		u.calls = append(u.calls, call{name: name, where: calls[name]})
	}
	return u
}

// outOfScope lists the references whose root is not a dimension of the
// stage, in reference order.
func (u usage) outOfScope(allowed []string) []hcl.Traversal {
	var out []hcl.Traversal
	for _, ref := range u.refs {
		if !slices.Contains(allowed, ref.RootName()) {
			out = append(out, ref)
		}
	}
	return out
}

// unknownCalls lists the calls to functions missing from funcs.
func (u usage) unknownCalls(funcs map[string]function.Function) []call {
	var out []call
	for _, c := range u.calls {
		if _, ok := funcs[c.name]; !ok {
			out = append(out, c)
		}
	}
	return out
}
