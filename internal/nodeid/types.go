// internal/nodeid/types.go
package nodeid

import (
	"sort"
	"strings"
)

// Dim is a single axis=value coordinate of a Key.
type Dim struct {
	Axis  string
	Value string
}

// Key is an ordered list of dimensions, sorted by axis name, with each axis
// present at most once. The zero value is the empty key.
type Key []Dim

// NewKey builds a Key from an axis to value mapping.
func NewKey(values map[string]string) Key {
	key := make(Key, 0, len(values))
	for axis, value := range values {
		key = append(key, Dim{Axis: axis, Value: value})
	}
	sort.Slice(key, func(i, j int) bool { return key[i].Axis < key[j].Axis })
	return key
}

// KeyOf builds a Key from alternating axis, value arguments.
func KeyOf(pairs ...string) Key {
	if len(pairs)%2 != 0 {
		panic("nodeid: KeyOf requires axis/value pairs")
	}
	values := make(map[string]string, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		values[pairs[i]] = pairs[i+1]
	}
	return NewKey(values)
}

// String renders the key in its canonical `axis=value,...` form.
func (k Key) String() string {
	var sb strings.Builder
	for i, d := range k {
		if i > 0 {
			sb.WriteRune(',')
		}
		sb.WriteString(d.Axis)
		sb.WriteRune('=')
		sb.WriteString(d.Value)
	}
	return sb.String()
}

// Get returns the value of the given axis.
func (k Key) Get(axis string) (string, bool) {
	i := sort.Search(len(k), func(i int) bool { return k[i].Axis >= axis })
	if i < len(k) && k[i].Axis == axis {
		return k[i].Value, true
	}
	return "", false
}

// Axes returns the axis names of the key in sorted order.
func (k Key) Axes() []string {
	axes := make([]string, len(k))
	for i, d := range k {
		axes[i] = d.Axis
	}
	return axes
}

// Map returns the key as an axis to value mapping.
func (k Key) Map() map[string]string {
	m := make(map[string]string, len(k))
	for _, d := range k {
		m[d.Axis] = d.Value
	}
	return m
}

// Project keeps only the dimensions whose axis is listed.
func (k Key) Project(axes []string) Key {
	keep := make(map[string]struct{}, len(axes))
	for _, a := range axes {
		keep[a] = struct{}{}
	}
	projected := make(Key, 0, len(axes))
	for _, d := range k {
		if _, ok := keep[d.Axis]; ok {
			projected = append(projected, d)
		}
	}
	return projected
}

// Agrees reports whether both keys carry the same value on every axis they share.
func (k Key) Agrees(other Key) bool {
	i, j := 0, 0
	for i < len(k) && j < len(other) {
		switch {
		case k[i].Axis < other[j].Axis:
			i++
		case k[i].Axis > other[j].Axis:
			j++
		default:
			if k[i].Value != other[j].Value {
				return false
			}
			i++
			j++
		}
	}
	return true
}

// Equal reports structural equality.
func (k Key) Equal(other Key) bool {
	if len(k) != len(other) {
		return false
	}
	for i := range k {
		if k[i] != other[i] {
			return false
		}
	}
	return true
}

// Address is the structured representation of a node or data unit identifier.
type Address struct {
	Name string
	Key  Key
}

// NewAddress creates an address for the given name and key.
func NewAddress(name string, key Key) Address {
	return Address{Name: name, Key: key}
}
