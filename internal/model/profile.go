// SPDX-License-Identifier: MIT
//
// This file defines resource profiles and the parsing of `profile` blocks.
package model

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/lsst-dm/Daxgen/internal/hclutil"
)

// DefaultProfileNamespace is used for profile keys that carry no namespace.
const DefaultProfileNamespace = "pegasus"

// Profile maps `namespace.key` to a value.
type Profile map[string]string

// Merge returns a new profile where later layers override earlier ones.
func (p Profile) Merge(layers ...Profile) Profile {
	out := make(Profile, len(p))
	for k, v := range p {
		out[k] = v
	}
	for _, layer := range layers {
		for k, v := range layer {
			out[k] = v
		}
	}
	return out
}

// Keys returns the profile keys in sorted order.
func (p Profile) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SplitProfileKey splits `namespace.key` at the first dot. A key with no dot
// belongs to DefaultProfileNamespace.
func SplitProfileKey(key string) (namespace, name string) {
	if ns, k, ok := strings.Cut(key, "."); ok {
		return ns, k
	}
	return DefaultProfileNamespace, key
}

// parseProfileBlocks merges every `profile "<namespace>" { key = value }`
// block into a single Profile. Values must be literal strings, numbers or bools.
func parseProfileBlocks(blocks hcl.Blocks) (Profile, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	profile := Profile{}

	for _, block := range blocks.OfType("profile") {
		namespace := block.Labels[0]
		attrs, attrDiags := block.Body.JustAttributes()
		diags = append(diags, attrDiags...)
		if attrDiags.HasErrors() {
			continue
		}

		for name, attr := range attrs {
			val, valDiags := attr.Expr.Value(nil)
			diags = append(diags, valDiags...)
			if valDiags.HasErrors() {
				continue
			}
			s, err := hclutil.ValueString(val)
			if err != nil {
				diags = append(diags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Invalid profile value",
					Detail:   fmt.Sprintf("Profile %s.%s: %v.", namespace, name, err),
					Subject:  attr.Expr.Range().Ptr(),
				})
				continue
			}
			profile[namespace+"."+name] = s
		}
	}

	return profile, diags
}
