// internal/nodeid/address.go
package nodeid

import (
	"strconv"
	"strings"
)

// String serializes the Address into its canonical `name[axis=value,...]` form.
// An address with an empty key renders as the bare name.
func (a Address) String() string {
	if len(a.Key) == 0 {
		return a.Name
	}

	var sb strings.Builder
	sb.WriteString(a.Name)
	sb.WriteRune('[')
	sb.WriteString(a.Key.String())
	sb.WriteRune(']')
	return sb.String()
}

// Equal checks for structural equality between two addresses.
func (a Address) Equal(other Address) bool {
	return a.Name == other.Name && a.Key.Equal(other.Key)
}

// Compare orders addresses by name, then by key.
func (a Address) Compare(other Address) int {
	if c := strings.Compare(a.Name, other.Name); c != 0 {
		return c
	}
	return a.Key.Compare(other.Key)
}

// Compare orders keys dimension by dimension using CompareValues. A key that
// is a prefix of another sorts first.
func (k Key) Compare(other Key) int {
	for i := 0; i < len(k) && i < len(other); i++ {
		if c := strings.Compare(k[i].Axis, other[i].Axis); c != 0 {
			return c
		}
		if c := CompareValues(k[i].Value, other[i].Value); c != 0 {
			return c
		}
	}
	switch {
	case len(k) < len(other):
		return -1
	case len(k) > len(other):
		return 1
	}
	return 0
}

// CompareValues orders axis values naturally: integers numerically and
// before any non-integer value, everything else lexically.
func CompareValues(a, b string) int {
	ai, aErr := strconv.ParseInt(a, 10, 64)
	bi, bErr := strconv.ParseInt(b, 10, 64)
	switch {
	case aErr == nil && bErr == nil:
		switch {
		case ai < bi:
			return -1
		case ai > bi:
			return 1
		}
		return 0
	case aErr == nil:
		return -1
	case bErr == nil:
		return 1
	}
	return strings.Compare(a, b)
}
