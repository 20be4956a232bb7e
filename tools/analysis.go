/* Copyright 2018 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package tools has utilities for examining and rendering decision
// tables.
package tools

import (
	"sort"

	"github.com/Comcast/matchbox/core"
)

// SpecAnalysis is a summary of a Spec along with some possible
// problems.
type SpecAnalysis struct {
	spec *core.Spec

	Errors    []string `json:"errors,omitempty"`
	Decisions int      `json:"decisions"`
	Arms      int      `json:"arms"`
	Guards    int      `json:"guards"`

	// Actions are the distinct action tokens.
	Actions []string `json:"actions,omitempty"`

	// Interpreters are the interpreters that guards use.
	Interpreters []string `json:"interpreters,omitempty"`

	// Untyped are the Decisions that don't declare a type (and
	// therefore get no exhaustiveness checking).
	Untyped []string `json:"untyped,omitempty"`

	// UndeclaredTypes are types that Decisions name but the Spec
	// doesn't declare.
	UndeclaredTypes []string `json:"undeclaredTypes,omitempty"`

	// UnusedTypes are declared types that no Decision names.
	UnusedTypes []string `json:"unusedTypes,omitempty"`

	// Uncovered maps a Decision name to the cases that no
	// unguarded arm handles.  Requires a compiled Spec.
	Uncovered map[string][]string `json:"uncovered,omitempty"`

	// Unreachable maps a Decision name to the indexes of arms
	// that can never be chosen.  Requires a compiled Spec.
	Unreachable map[string][]int `json:"unreachable,omitempty"`
}

// Analyze examines the Spec.
//
// Counts and declarations come from the Spec's sources.  Coverage
// requires a compiled Spec.  If the Spec isn't compiled, Errors says
// so, and Uncovered and Unreachable are empty.
func Analyze(s *core.Spec) (*SpecAnalysis, error) {

	a := SpecAnalysis{
		spec:      s,
		Decisions: len(s.Decisions),
		Errors:    make([]string, 0, 8),
	}

	var (
		actions      = make(map[string]bool)
		interpreters = make(map[string]bool)
		undeclared   = make(map[string]bool)
		used         = make(map[string]bool)
		untyped      = make(map[string]bool)
	)

	for name, d := range s.Decisions {
		if d == nil {
			continue
		}
		if d.Type == "" {
			untyped[name] = true
		} else {
			used[d.Type] = true
			if t, have := s.Types[d.Type]; !have || t == nil {
				undeclared[d.Type] = true
			}
		}
		for _, arm := range d.Arms {
			if arm == nil {
				continue
			}
			a.Arms++
			if arm.Action != "" {
				actions[arm.Action] = true
			}
			if arm.Guarded() {
				a.Guards++
				if arm.GuardSource != nil {
					interpreters[arm.GuardSource.Interpreter] = true
				}
			}
		}
	}

	unused := make(map[string]bool)
	for name := range s.Types {
		if !used[name] {
			unused[name] = true
		}
	}

	a.Actions = keysToStringSlice(actions)
	a.Interpreters = keysToStringSlice(interpreters)
	a.Untyped = keysToStringSlice(untyped)
	a.UndeclaredTypes = keysToStringSlice(undeclared)
	a.UnusedTypes = keysToStringSlice(unused)

	if !s.Compiled() {
		a.Errors = append(a.Errors, "spec not compiled: no coverage")
		return &a, nil
	}

	cov, err := s.Exhaustiveness()
	if err != nil {
		return nil, err
	}
	for _, c := range cov {
		if 0 < len(c.Uncovered) {
			if a.Uncovered == nil {
				a.Uncovered = make(map[string][]string)
			}
			a.Uncovered[c.Decision] = c.Uncovered
		}
		if 0 < len(c.Unreachable) {
			if a.Unreachable == nil {
				a.Unreachable = make(map[string][]int)
			}
			a.Unreachable[c.Decision] = c.Unreachable
		}
	}

	return &a, nil
}

// Problems reports whether the analysis found anything worth
// complaining about.
func (a *SpecAnalysis) Problems() bool {
	return 0 < len(a.Errors) ||
		0 < len(a.UndeclaredTypes) ||
		0 < len(a.Uncovered) ||
		0 < len(a.Unreachable)
}

// keysToStringSlice returns the map's keys in sorted order.
func keysToStringSlice(m map[string]bool) []string {
	var list []string
	for key := range m {
		list = append(list, key)
	}
	sort.Strings(list)
	return list
}
