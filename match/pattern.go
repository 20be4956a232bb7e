/* Copyright 2019 Comcast Cable Communications Management, LLC
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

package match

import (
	"sort"
	"strings"
)

// Pattern is the structural description that a Value is matched
// against.
//
// The implementations are *Wildcard, *Binding, *LiteralEq, *TuplePat,
// *RecordPat, and *VariantPat.  Patterns are immutable, and every
// Pattern that can be constructed is well-formed: composite
// constructors reject duplicate binding names and duplicate record
// fields.
type Pattern interface {
	String() string

	// Binds returns the names this pattern binds, in left-to-right
	// order.
	Binds() []string

	pattern()
}

// Wildcard matches anything and binds nothing.
type Wildcard struct{}

// Wild returns the Wildcard.
func Wild() *Wildcard { return wildcard }

var wildcard = &Wildcard{}

func (p *Wildcard) pattern()        {}
func (p *Wildcard) String() string  { return "_" }
func (p *Wildcard) Binds() []string { return nil }

// Binding matches anything and binds its name to the matched Value.
type Binding struct {
	name string
}

// Bind makes a Binding.  An empty name is reported when the Binding
// is used in a composite pattern or an Arm.
func Bind(name string) *Binding { return &Binding{name} }

func (p *Binding) pattern()        {}
func (p *Binding) String() string  { return p.name }
func (p *Binding) Binds() []string { return []string{p.name} }

// Name returns the name that this Binding binds.
func (p *Binding) Name() string { return p.name }

// LiteralEq matches a Leaf that's equal to its own Leaf.
type LiteralEq struct {
	leaf *Leaf
}

// Lit makes a LiteralEq.
func Lit(l *Leaf) *LiteralEq { return &LiteralEq{l} }

func (p *LiteralEq) pattern()        {}
func (p *LiteralEq) String() string  { return p.leaf.String() }
func (p *LiteralEq) Binds() []string { return nil }

// Leaf returns the literal.
func (p *LiteralEq) Leaf() *Leaf { return p.leaf }

// TuplePat matches a Tuple of the same arity element-wise.
type TuplePat struct {
	elems []Pattern
	binds []string
}

// NewTuplePat makes a TuplePat.
func NewTuplePat(ps ...Pattern) (*TuplePat, error) {
	binds, err := gatherBinds(ps)
	if err != nil {
		return nil, err
	}
	elems := make([]Pattern, len(ps))
	copy(elems, ps)
	return &TuplePat{elems, binds}, nil
}

func (p *TuplePat) pattern()        {}
func (p *TuplePat) Binds() []string { return p.binds }

// Len returns the arity.
func (p *TuplePat) Len() int { return len(p.elems) }

// At returns the i-th element pattern.
func (p *TuplePat) At(i int) Pattern { return p.elems[i] }

func (p *TuplePat) String() string {
	ss := make([]string, len(p.elems))
	for i, e := range p.elems {
		ss[i] = e.String()
	}
	return "(" + strings.Join(ss, ", ") + ")"
}

// FieldPat is a named Pattern in a RecordPat.
type FieldPat struct {
	Name    string
	Pattern Pattern
}

// FP makes a FieldPat.
func FP(name string, p Pattern) FieldPat {
	return FieldPat{name, p}
}

// RecordPat matches a Record.
//
// Every named field must be present and must match.  When Rest is
// false, the Record must not have any other fields.
type RecordPat struct {
	fields []FieldPat
	rest   bool
	binds  []string
}

// NewRecordPat makes a RecordPat.  Naming a field twice is an error
// (*DuplicateField).
func NewRecordPat(rest bool, fs ...FieldPat) (*RecordPat, error) {
	seen := make(map[string]bool, len(fs))
	ps := make([]Pattern, len(fs))
	for i, f := range fs {
		if seen[f.Name] {
			return nil, &DuplicateField{f.Name}
		}
		seen[f.Name] = true
		ps[i] = f.Pattern
	}
	binds, err := gatherBinds(ps)
	if err != nil {
		return nil, err
	}
	fields := make([]FieldPat, len(fs))
	copy(fields, fs)
	return &RecordPat{fields, rest, binds}, nil
}

func (p *RecordPat) pattern()        {}
func (p *RecordPat) Binds() []string { return p.binds }

// Rest reports whether extra record fields are ignored.
func (p *RecordPat) Rest() bool { return p.rest }

// Fields returns a copy of the field patterns.
func (p *RecordPat) Fields() []FieldPat {
	acc := make([]FieldPat, len(p.fields))
	copy(acc, p.fields)
	return acc
}

func (p *RecordPat) String() string {
	ss := make([]string, 0, len(p.fields)+1)
	for _, f := range p.fields {
		ss = append(ss, f.Name+": "+f.Pattern.String())
	}
	if p.rest {
		ss = append(ss, "..")
	}
	return "{" + strings.Join(ss, ", ") + "}"
}

// VariantPat matches a Variant with the same tag.
//
// If the payload pattern is nil, the Variant must not have a payload.
// Otherwise the Variant must have a payload that matches.
type VariantPat struct {
	tag     string
	payload Pattern
}

// NewVariantPat makes a VariantPat.  The payload pattern can be nil.
func NewVariantPat(tag string, payload Pattern) (*VariantPat, error) {
	if tag == "" {
		return nil, &BadPattern{payload, "empty variant tag"}
	}
	if payload != nil {
		if _, err := gatherBinds([]Pattern{payload}); err != nil {
			return nil, err
		}
	}
	return &VariantPat{tag, payload}, nil
}

func (p *VariantPat) pattern() {}

func (p *VariantPat) Binds() []string {
	if p.payload == nil {
		return nil
	}
	return p.payload.Binds()
}

// Tag returns the tag this pattern requires.
func (p *VariantPat) Tag() string { return p.tag }

// Payload returns the payload pattern, if any.
func (p *VariantPat) Payload() (Pattern, bool) { return p.payload, p.payload != nil }

func (p *VariantPat) String() string {
	if p.payload == nil {
		return p.tag
	}
	if t, is := p.payload.(*TuplePat); is {
		return p.tag + t.String()
	}
	return p.tag + "(" + p.payload.String() + ")"
}

// gatherBinds collects the binding names of the given patterns and
// complains about repeated or empty names.
func gatherBinds(ps []Pattern) ([]string, error) {
	var acc []string
	seen := make(map[string]bool)
	for _, p := range ps {
		if missingPattern(p) {
			return nil, &BadPattern{ps, "nil subpattern"}
		}
		if l, is := p.(*LiteralEq); is && missing(l.leaf) {
			return nil, &BadPattern{ps, "literal without a scalar"}
		}
		for _, name := range p.Binds() {
			if name == "" {
				return nil, &BadPattern{p, "empty binding name"}
			}
			if seen[name] {
				return nil, &DuplicateBinding{name}
			}
			seen[name] = true
			acc = append(acc, name)
		}
	}
	return acc, nil
}

func missingPattern(p Pattern) bool {
	switch pp := p.(type) {
	case nil:
		return true
	case *Wildcard:
		return pp == nil
	case *Binding:
		return pp == nil
	case *LiteralEq:
		return pp == nil
	case *TuplePat:
		return pp == nil
	case *RecordPat:
		return pp == nil
	case *VariantPat:
		return pp == nil
	}
	return false
}

// Check verifies that a pattern is well-formed.
//
// Composite patterns are checked when they are constructed, so this
// function really only has work to do for a bare Binding or
// LiteralEq.
func Check(p Pattern) error {
	_, err := gatherBinds([]Pattern{p})
	return err
}

// Must panics if err is not nil.  Otherwise returns the pattern.
func Must(p Pattern, err error) Pattern {
	if err != nil {
		panic(err)
	}
	return p
}

// SortedBinds returns the names bound by the pattern in sorted
// order.
func SortedBinds(p Pattern) []string {
	acc := append([]string(nil), p.Binds()...)
	sort.Strings(acc)
	return acc
}
