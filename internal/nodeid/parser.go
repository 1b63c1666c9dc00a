// internal/nodeid/parser.go
package nodeid

import (
	"fmt"
	"regexp"
	"strings"
)

// nameRegex matches stage names, role names and axis names.
var nameRegex = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)

// valueRegex matches axis values. Values may contain commas (e.g. patch `1,1`)
// but never `=`, brackets, dots, whitespace or path separators.
var valueRegex = regexp.MustCompile(`^[A-Za-z0-9_,:+-]+$`)

// addressRegex splits `name[key]` into its parts.
var addressRegex = regexp.MustCompile(`^([^\[\]]+)(?:\[(.*)\])?$`)

// ValidName reports whether s can be used as a stage, role or axis name.
func ValidName(s string) bool {
	return nameRegex.MatchString(s)
}

// ValidValue reports whether s can be used as an axis value.
func ValidValue(s string) bool {
	return valueRegex.MatchString(s)
}

// Parse creates an Address by parsing its canonical string representation.
func Parse(rawID string) (Address, error) {
	if rawID == "" {
		return Address{}, fmt.Errorf("identifier cannot be empty")
	}

	matches := addressRegex.FindStringSubmatch(rawID)
	if matches == nil {
		return Address{}, fmt.Errorf("invalid identifier format: %q", rawID)
	}

	name := matches[1]
	if !ValidName(name) {
		return Address{}, fmt.Errorf("invalid name: %q", name)
	}

	if !strings.Contains(rawID, "[") {
		return NewAddress(name, nil), nil
	}

	key, err := parseKey(matches[2])
	if err != nil {
		return Address{}, fmt.Errorf("identifier %q: %w", rawID, err)
	}
	return NewAddress(name, key), nil
}

// parseKey parses `axis=value,...`. A comma-separated fragment without `=`
// belongs to the previous value, which is how values like `1,1` survive.
func parseKey(raw string) (Key, error) {
	if raw == "" {
		return nil, fmt.Errorf("key cannot be empty when brackets are present")
	}

	values := make(map[string]string)
	var order []string
	for _, fragment := range strings.Split(raw, ",") {
		axis, value, found := strings.Cut(fragment, "=")
		if !found {
			if len(order) == 0 {
				return nil, fmt.Errorf("key fragment %q has no axis", fragment)
			}
			last := order[len(order)-1]
			values[last] += "," + fragment
			continue
		}
		if !ValidName(axis) {
			return nil, fmt.Errorf("invalid axis name: %q", axis)
		}
		if _, dup := values[axis]; dup {
			return nil, fmt.Errorf("duplicate axis: %q", axis)
		}
		values[axis] = value
		order = append(order, axis)
	}

	for i, axis := range order {
		if i > 0 && order[i-1] >= axis {
			return nil, fmt.Errorf("axes must be sorted: %q after %q", axis, order[i-1])
		}
		if !ValidValue(values[axis]) {
			return nil, fmt.Errorf("invalid value for axis %q: %q", axis, values[axis])
		}
	}

	return NewKey(values), nil
}
