// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package engine

import "github.com/zclconf/go-cty/cty"

// GroupingKey walks the active instruction chain from the innermost
// activation outwards and returns the first grouping key found.
func (s *State) GroupingKey() (cty.Value, error) {
	a := s.groupCarrier()
	if a == nil {
		return cty.NilVal, &NoActiveContextError{Function: "current_grouping_key"}
	}
	return a.groupingKey, nil
}

// CurrentGroup returns the members of the group whose key GroupingKey would
// return.
func (s *State) CurrentGroup() ([]cty.Value, error) {
	a := s.groupCarrier()
	if a == nil {
		return nil, &NoActiveContextError{Function: "current_group"}
	}
	return a.group, nil
}

func (s *State) groupCarrier() *Activation {
	for a := s.active; a != nil; a = a.parent {
		if a.hasKey {
			return a
		}
	}
	return nil
}

// setGroup marks a as carrying the given grouping key and members.
func (a *Activation) setGroup(key cty.Value, members []cty.Value) {
	a.hasKey = true
	a.groupingKey = key
	a.group = members
}
