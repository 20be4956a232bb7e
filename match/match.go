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

// Package match implements the core pattern matcher.
//
// A MatchSet is an ordered list of Arms.  Each Arm has a Pattern, an
// optional Guard, and an opaque Action token.  Attempt finds the first
// Arm whose Pattern matches the given Value and whose Guard (if any)
// admits the resulting Bindings.
//
// Matching is purely functional.  Values and Patterns are immutable,
// and every attempt writes only to its own fresh Bindings, so a
// Matcher can be used from any number of goroutines at once.
package match

import (
	"sort"
	"strconv"
)

// Bindings is a map from names (introduced by Binding patterns) to
// the Values they matched.
type Bindings map[string]Value

func NewBindings() Bindings {
	return make(Bindings, 8)
}

// Copy makes a shallow copy of the Bindings.
//
// Since Values are immutable, a shallow copy is all anybody needs.
func (bs Bindings) Copy() Bindings {
	acc := make(Bindings, len(bs))
	for k, v := range bs {
		acc[k] = v
	}
	return acc
}

// Names returns the bound names in sorted order.
func (bs Bindings) Names() []string {
	acc := make([]string, 0, len(bs))
	for k := range bs {
		acc = append(acc, k)
	}
	sort.Strings(acc)
	return acc
}

// Interface renders the Bindings as plain Go data.
func (bs Bindings) Interface() map[string]interface{} {
	acc := make(map[string]interface{}, len(bs))
	for k, v := range bs {
		acc[k] = v.Interface()
	}
	return acc
}

func (bs Bindings) MarshalJSON() ([]byte, error) {
	return EncodeJSON(bs.Interface())
}

// Guard can reject bindings produced by an otherwise matching Arm.
//
// A Guard should not have side effects.  Allow returns an error only
// when the guard itself can't be evaluated.
type Guard interface {
	Allow(bs Bindings) (bool, error)
}

// GuardFunc makes a Guard out of a Go predicate.
type GuardFunc func(bs Bindings) bool

func (f GuardFunc) Allow(bs Bindings) (bool, error) {
	return f(bs), nil
}

// Arm is a Pattern, an optional Guard, and an Action token that the
// caller can use to decide what to do after a match.
type Arm struct {
	pattern Pattern
	guard   Guard
	action  string
}

// NewArm makes an Arm.  The guard can be nil.
func NewArm(p Pattern, g Guard, action string) (*Arm, error) {
	if p == nil {
		return nil, &BadPattern{nil, "nil pattern"}
	}
	if err := Check(p); err != nil {
		return nil, err
	}
	return &Arm{
		pattern: p,
		guard:   g,
		action:  action,
	}, nil
}

// MustArm is NewArm that panics on error.
func MustArm(p Pattern, g Guard, action string) *Arm {
	a, err := NewArm(p, g, action)
	if err != nil {
		panic(err)
	}
	return a
}

func (a *Arm) Pattern() Pattern { return a.pattern }
func (a *Arm) Guard() Guard     { return a.guard }
func (a *Arm) Guarded() bool    { return a.guard != nil }
func (a *Arm) Action() string   { return a.action }

// WithGuard returns a copy of the Arm with the given Guard.
//
// The Pattern has already been checked, so this is cheap enough to
// call on each attempt.
func (a *Arm) WithGuard(g Guard) *Arm {
	return &Arm{
		pattern: a.pattern,
		guard:   g,
		action:  a.action,
	}
}

// MatchSet is an ordered list of Arms.  Order matters: the first Arm
// that matches wins.
type MatchSet []*Arm

// Result is the outcome of Attempt.
//
// When Matched is false, Arm is -1 and Bindings is empty.
type Result struct {
	Matched  bool     `json:"matched"`
	Arm      int      `json:"arm"`
	Action   string   `json:"action,omitempty"`
	Bindings Bindings `json:"bindings"`
}

// NoMatch returns a fresh Result representing no match.
func NoMatch() *Result {
	return &Result{
		Arm:      -1,
		Bindings: Bindings{},
	}
}

// ArmTrace reports what happened when an Arm was considered.
type ArmTrace struct {
	Arm      int      `json:"arm"`
	Matched  bool     `json:"matched"`
	Guarded  bool     `json:"guarded,omitempty"`
	Allowed  bool     `json:"allowed"`
	Bindings Bindings `json:"bindings,omitempty"`
	Error    string   `json:"error,omitempty"`
}

type Matcher struct {
	// Trace, if not nil, is called each time an Arm is
	// considered.
	//
	// The ArmTrace's Bindings are the bindings produced by the
	// Arm's pattern (if it matched), even if the guard then
	// rejected them.  Those bindings go nowhere else.
	Trace func(t *ArmTrace)
}

var DefaultMatcher = &Matcher{}

// Attempt finds the first Arm that matches the Value.
//
// An Arm matches when its Pattern matches structurally and its Guard
// (if any) allows the Bindings that the Pattern produced.  Each Arm
// gets a fresh environment, and a Guard sees only its own Arm's
// Bindings.
//
// The returned error is not nil only if a Guard couldn't be
// evaluated.  Not matching is not an error: the Result just says so.
func (m *Matcher) Attempt(v Value, arms MatchSet) (*Result, error) {
	for i, a := range arms {
		if a == nil {
			continue
		}
		bs := NewBindings()
		matched := m.match(a.pattern, v, bs)

		t := &ArmTrace{
			Arm:     i,
			Matched: matched,
			Guarded: a.guard != nil,
		}

		if !matched {
			m.trace(t)
			continue
		}
		if m.Trace != nil {
			t.Bindings = bs.Copy()
		}

		if a.guard != nil {
			// The guard gets its own copy so that it can't
			// touch what we return.
			ok, err := a.guard.Allow(bs.Copy())
			if err != nil {
				t.Error = err.Error()
				m.trace(t)
				return NoMatch(), &GuardError{Arm: i, Err: err}
			}
			if !ok {
				m.trace(t)
				continue
			}
		}

		t.Allowed = true
		m.trace(t)

		return &Result{
			Matched:  true,
			Arm:      i,
			Action:   a.action,
			Bindings: bs,
		}, nil
	}

	return NoMatch(), nil
}

func (m *Matcher) trace(t *ArmTrace) {
	if m.Trace != nil {
		m.Trace(t)
	}
}

// Match matches a single pattern against a value.
//
// Returns nil bindings and false if the pattern doesn't match.
func (m *Matcher) Match(p Pattern, v Value) (Bindings, bool) {
	bs := NewBindings()
	if !m.match(p, v, bs) {
		return nil, false
	}
	return bs, true
}

// match extends bs with the bindings from matching p against v.
//
// If match returns false, bs can contain junk, and the caller should
// throw bs away.
func (m *Matcher) match(p Pattern, v Value, bs Bindings) bool {
	switch pp := p.(type) {
	case *Wildcard:
		return true

	case *Binding:
		bs[pp.name] = v
		return true

	case *LiteralEq:
		l, is := v.(*Leaf)
		return is && pp.leaf != nil && scalarEqual(l.x, pp.leaf.x)

	case *TuplePat:
		t, is := v.(*Tuple)
		if !is || len(t.elems) != len(pp.elems) {
			return false
		}
		for i, e := range pp.elems {
			if !m.match(e, t.elems[i], bs) {
				return false
			}
		}
		return true

	case *RecordPat:
		r, is := v.(*Record)
		if !is {
			return false
		}
		if !pp.rest && len(r.fields) != len(pp.fields) {
			// Since pattern field names are unique, equal
			// sizes plus presence of every pattern field
			// means equal key sets.
			return false
		}
		for _, f := range pp.fields {
			fv, have := r.Get(f.Name)
			if !have {
				return false
			}
			if !m.match(f.Pattern, fv, bs) {
				return false
			}
		}
		return true

	case *VariantPat:
		x, is := v.(*Variant)
		if !is || x.tag != pp.tag {
			return false
		}
		if pp.payload == nil {
			return x.payload == nil
		}
		if x.payload == nil {
			return false
		}
		return m.match(pp.payload, x.payload, bs)

	default:
		return false
	}
}

// GuardError reports that a Guard failed to execute.
type GuardError struct {
	Arm int
	Err error
}

func (e *GuardError) Error() string {
	return "guard error at arm " + strconv.Itoa(e.Arm) + ": " + e.Err.Error()
}

func (e *GuardError) Unwrap() error {
	return e.Err
}

// Attempt uses the DefaultMatcher.
func Attempt(v Value, arms MatchSet) (*Result, error) {
	return DefaultMatcher.Attempt(v, arms)
}

// Match uses the DefaultMatcher.
func Match(p Pattern, v Value) (Bindings, bool) {
	return DefaultMatcher.Match(p, v)
}
