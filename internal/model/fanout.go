// SPDX-License-Identifier: MIT
//
// This file centralizes the parsing and normalization of a stage's fan-out rule.
//
// Every rule is reduced to the same shape: the stage reads the cross product of
// its `dimensions`, and one task is created per distinct projection of those
// units onto `group_by`. per_unit groups by every dimension, singleton groups
// by none, per_group by an explicit subset. Downstream code only looks at
// GroupBy and never branches on the rule itself.
package model

import (
	"fmt"
	"slices"

	"github.com/hashicorp/hcl/v2"
)

// FanOut selects how a stage's units are mapped onto tasks.
type FanOut string

const (
	FanOutPerUnit   FanOut = "per_unit"
	FanOutPerGroup  FanOut = "per_group"
	FanOutSingleton FanOut = "singleton"
)

// ParseFanOut validates a fan-out keyword.
func ParseFanOut(s string) (FanOut, error) {
	switch FanOut(s) {
	case FanOutPerUnit, FanOutPerGroup, FanOutSingleton:
		return FanOut(s), nil
	}
	return "", fmt.Errorf("unknown fanout %q: must be %q, %q or %q", s, FanOutPerUnit, FanOutPerGroup, FanOutSingleton)
}

// normalizeGrouping fills stage.GroupBy according to the fan-out rule.
func normalizeGrouping(stage *Stage, groupBy []string, hasGroupBy bool, subject *hcl.Range) hcl.Diagnostics {
	diag := func(detail string) hcl.Diagnostics {
		return hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Invalid grouping",
			Detail:   detail,
			Subject:  subject,
		}}
	}

	switch stage.FanOut {
	case FanOutPerUnit:
		if hasGroupBy && !sameSet(groupBy, stage.Dimensions) {
			return diag(fmt.Sprintf("Stage %q fans out per unit; \"group_by\" must be omitted or equal to \"dimensions\".", stage.Name))
		}
		stage.GroupBy = slices.Clone(stage.Dimensions)
	case FanOutPerGroup:
		if len(groupBy) == 0 {
			return diag(fmt.Sprintf("Stage %q fans out per group and needs a non-empty \"group_by\".", stage.Name))
		}
		for _, axis := range groupBy {
			if !slices.Contains(stage.Dimensions, axis) {
				return diag(fmt.Sprintf("Stage %q groups by %q, which is not one of its dimensions.", stage.Name, axis))
			}
		}
		stage.GroupBy = slices.Clone(groupBy)
	case FanOutSingleton:
		if len(groupBy) > 0 {
			return diag(fmt.Sprintf("Stage %q is a singleton and cannot declare \"group_by\".", stage.Name))
		}
		stage.GroupBy = nil
	}
	return nil
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for _, x := range a {
		if !slices.Contains(b, x) {
			return false
		}
	}
	return true
}
