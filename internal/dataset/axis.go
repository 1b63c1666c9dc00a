package dataset

import (
	"fmt"

	"github.com/lsst-dm/Daxgen/internal/errs"
	"github.com/lsst-dm/Daxgen/internal/hclutil"
	"github.com/lsst-dm/Daxgen/internal/model"
	"github.com/lsst-dm/Daxgen/internal/nodeid"
	"github.com/zclconf/go-cty/cty"
)

// MaxAxisValues bounds how many values a single axis may resolve to.
const MaxAxisValues = 1 << 20

// Axis is a fully resolved axis: its values in declaration order together
// with their canonical string form.
type Axis struct {
	Name    string
	Values  []cty.Value
	Strings []string

	byString map[string]cty.Value
}

// Len returns the number of values on the axis.
func (a *Axis) Len() int { return len(a.Strings) }

// Value returns the typed value for a canonical string.
func (a *Axis) Value(s string) (cty.Value, bool) {
	v, ok := a.byString[s]
	return v, ok
}

// ResolveAxis expands literal values and the optional range, drops duplicates
// and exclusions, and checks every value is usable inside an identifier.
func ResolveAxis(decl *model.Axis) (*Axis, error) {
	axis := &Axis{Name: decl.Name, byString: make(map[string]cty.Value)}

	excluded := make(map[string]struct{}, len(decl.Exclude))
	for _, v := range decl.Exclude {
		s, err := hclutil.ValueString(v)
		if err != nil {
			return nil, &errs.MalformedInputError{Reason: fmt.Sprintf("axis %q: invalid exclude value", decl.Name), Err: err}
		}
		excluded[s] = struct{}{}
	}

	add := func(v cty.Value) error {
		s, err := hclutil.ValueString(v)
		if err != nil {
			return &errs.MalformedInputError{Reason: fmt.Sprintf("axis %q: invalid value", decl.Name), Err: err}
		}
		if !nodeid.ValidValue(s) {
			return &errs.MalformedInputError{Reason: fmt.Sprintf("axis %q: value %q is not a valid identifier", decl.Name, s)}
		}
		if _, skip := excluded[s]; skip {
			return nil
		}
		if _, dup := axis.byString[s]; dup {
			return nil
		}
		axis.byString[s] = v
		axis.Values = append(axis.Values, v)
		axis.Strings = append(axis.Strings, s)
		return nil
	}

	for _, v := range decl.Values {
		if err := add(v); err != nil {
			return nil, err
		}
	}
	if r := decl.Range; r != nil && r.From <= r.To {
		step := r.Stride()
		// Unsigned difference stays exact for any From <= To.
		steps := (uint64(r.To) - uint64(r.From)) / uint64(step)
		if steps >= uint64(MaxAxisValues-axis.Len()) {
			return nil, &errs.MalformedInputError{
				Reason: fmt.Sprintf("axis %q: range %d..%d expands to more than %d values", decl.Name, r.From, r.To, MaxAxisValues),
			}
		}
		for n := uint64(0); n <= steps; n++ {
			v := int64(r.From) + int64(n)*int64(step)
			if err := add(cty.NumberIntVal(v)); err != nil {
				return nil, err
			}
		}
	}

	if axis.Len() == 0 {
		return nil, &errs.EmptyInputError{Axis: decl.Name}
	}
	return axis, nil
}
