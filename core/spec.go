package core

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"sort"

	"github.com/Comcast/matchbox/match"

	"github.com/jsccast/yaml"
)

// Spec is a decision table: a set of named Decisions, each of which
// is an ordered list of arms, plus the declarations of the closed
// types those Decisions examine.
//
// If a Spec includes arms with GuardSources, then the Spec should be
// Compiled before use.  In fact every Spec must be Compiled before
// Decide will use it, since compilation parses the patterns.
type Spec struct {
	// Name is the generic name for this table.  Something like
	// "route-requests".
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Version is the version of this table.  Something like
	// "1.2".
	Version string `json:"version,omitempty" yaml:"version,omitempty"`

	// Id should be a globally unique identifier.  See SetId.
	Id string `json:"id,omitempty" yaml:"id,omitempty"`

	// Doc is general documentation about how this specification
	// works.  Can be Markdown.
	Doc string `json:"doc,omitempty" yaml:"doc,omitempty"`

	// Types declares closed types by name.  A Decision can name
	// one of these types in order to get an exhaustiveness
	// report.
	Types map[string]*TypeDecl `json:"types,omitempty" yaml:"types,omitempty"`

	// Decisions is the content of the table.
	Decisions map[string]*Decision `json:"decisions,omitempty" yaml:"decisions,omitempty"`

	compiled bool
}

// TagDecl declares one case of a tagged type.
type TagDecl struct {
	Name    string `json:"name" yaml:"name"`
	Payload bool   `json:"payload,omitempty" yaml:"payload,omitempty"`
	Doc     string `json:"doc,omitempty" yaml:"doc,omitempty"`
}

// TypeDecl declares a closed type: either the booleans or a set of
// tags.
type TypeDecl struct {
	Doc  string    `json:"doc,omitempty" yaml:"doc,omitempty"`
	Bool bool      `json:"bool,omitempty" yaml:"bool,omitempty"`
	Tags []TagDecl `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// Shape gives the match.Shape for the declared type.
func (t *TypeDecl) Shape() match.Shape {
	if t.Bool {
		return match.BoolShape()
	}
	ts := make([]match.TagShape, len(t.Tags))
	for i, tag := range t.Tags {
		ts[i] = match.TagShape{
			Tag:     tag.Name,
			Payload: tag.Payload,
		}
	}
	return match.Shape{Tags: ts}
}

// Decision is an ordered list of arms.
type Decision struct {
	Doc string `json:"doc,omitempty" yaml:"doc,omitempty"`

	// Type optionally names a TypeDecl in the Spec.
	Type string `json:"type,omitempty" yaml:"type,omitempty"`

	// Arms is the list (ordered) of arms.  The first arm that
	// matches wins.
	Arms []*ArmSource `json:"arms,omitempty" yaml:"arms,omitempty"`

	arms match.MatchSet
}

// Copy makes a deep copy of the Decision.  The copy is not compiled.
func (d *Decision) Copy() *Decision {
	if d == nil {
		return nil
	}
	arms := make([]*ArmSource, len(d.Arms))
	for i, a := range d.Arms {
		arms[i] = a.Copy()
	}
	return &Decision{
		Doc:  d.Doc,
		Type: d.Type,
		Arms: arms,
	}
}

// MatchSet returns the compiled arms, which will be nil if the
// Decision hasn't been compiled.
//
// Guarded arms in this MatchSet evaluate their guards with a
// background context and no Props.  Use Spec.Decide to provide
// either.
func (d *Decision) MatchSet() match.MatchSet {
	return d.arms
}

// ArmSource is the serializable form of an arm.
type ArmSource struct {
	Doc string `json:"doc,omitempty" yaml:"doc,omitempty"`

	// Pattern is in the generic form that match.ParsePattern
	// accepts (or is already a match.Pattern).  No Pattern
	// matches anything.
	Pattern interface{} `json:"pattern,omitempty" yaml:"pattern,omitempty"`

	// Guard is an optional procedure that will prevent the arm
	// from being chosen if the procedure returns false.
	Guard Guard `json:"-" yaml:"-"`

	// GuardSource, if given, can be compiled to a Guard.
	GuardSource *GuardSource `json:"guard,omitempty" yaml:"guard,omitempty"`

	// Action is the opaque token reported when this arm wins.
	Action string `json:"action,omitempty" yaml:"action,omitempty"`
}

// MarshalJSON writes the Pattern so that float literals stay floats.
func (a ArmSource) MarshalJSON() ([]byte, error) {
	type arm ArmSource
	b := arm(a)
	if b.Pattern != nil {
		b.Pattern = match.JSONData(b.Pattern)
	}
	return json.Marshal(b)
}

// Copy doesn't actually copy the Pattern or Guard.
func (a *ArmSource) Copy() *ArmSource {
	if a == nil {
		return nil
	}
	return &ArmSource{
		Doc:         a.Doc,
		Pattern:     a.Pattern,
		Guard:       a.Guard,
		GuardSource: a.GuardSource.Copy(),
		Action:      a.Action,
	}
}

// Guarded reports whether the arm has a guard (compiled or not).
func (a *ArmSource) Guarded() bool {
	return a.Guard != nil || a.GuardSource != nil
}

// ParseSpec parses a Spec from JSON or YAML.
//
// The result isn't compiled.
func ParseSpec(bs []byte) (*Spec, error) {
	var spec Spec
	if err := yaml.Unmarshal(bs, &spec); err != nil {
		return nil, err
	}
	return &spec, nil
}

// Copy makes a deep copy of the Spec.  The copy is not compiled.
func (spec *Spec) Copy(version string) *Spec {
	if version == "" {
		version = spec.Version
	}
	types := make(map[string]*TypeDecl, len(spec.Types))
	for name, t := range spec.Types {
		if t == nil {
			continue
		}
		tags := make([]TagDecl, len(t.Tags))
		copy(tags, t.Tags)
		types[name] = &TypeDecl{
			Doc:  t.Doc,
			Bool: t.Bool,
			Tags: tags,
		}
	}
	ds := make(map[string]*Decision, len(spec.Decisions))
	for name, d := range spec.Decisions {
		ds[name] = d.Copy()
	}

	return &Spec{
		Name:      spec.Name,
		Version:   version,
		Doc:       spec.Doc,
		Types:     types,
		Decisions: ds,
	}
}

// DecisionNames returns the names of the Decisions in sorted order.
func (spec *Spec) DecisionNames() []string {
	acc := make([]string, 0, len(spec.Decisions))
	for name := range spec.Decisions {
		acc = append(acc, name)
	}
	sort.Strings(acc)
	return acc
}

// Compiled reports whether Compile has succeeded.
func (spec *Spec) Compiled() bool {
	return spec.compiled
}

// Compile parses all patterns and compiles all GuardSources into
// Guards.
//
// If force is false, arms that already have a Guard keep it.
//
// Nothing changes unless every Decision compiles: a failure leaves
// the Spec as it was.
func (spec *Spec) Compile(ctx context.Context, interpreters map[string]Interpreter, force bool) error {

	var (
		sets   = make(map[string]match.MatchSet, len(spec.Decisions))
		guards = make(map[*ArmSource]Guard)
	)

	// Sorted so that the first error reported is deterministic.
	for _, name := range spec.DecisionNames() {
		d := spec.Decisions[name]
		if d == nil {
			d = &Decision{}
		}

		if d.Type != "" {
			if t, have := spec.Types[d.Type]; !have || t == nil {
				return &UnknownType{spec, name, d.Type}
			}
		}

		// Indexes line up with d.Arms.  A nil ArmSource gives a
		// nil Arm, which is never chosen.
		arms := make(match.MatchSet, len(d.Arms))
		for i, a := range d.Arms {
			if a == nil {
				continue
			}
			var p match.Pattern = match.Wild()
			if a.Pattern != nil {
				var err error
				if p, err = match.ParsePattern(a.Pattern); err != nil {
					return &BadArm{name, i, err}
				}
			}

			guard := a.Guard
			if a.GuardSource != nil && (force || a.Guard == nil) {
				var err error
				if guard, err = a.GuardSource.Compile(ctx, interpreters); err != nil {
					return &BadArm{name, i, err}
				}
				guards[a] = guard
			}

			var g match.Guard
			if guard != nil {
				g = &boundGuard{
					ctx:   context.Background(),
					guard: guard,
				}
			}

			arm, err := match.NewArm(p, g, a.Action)
			if err != nil {
				return &BadArm{name, i, err}
			}
			arms[i] = arm
		}
		sets[name] = arms
	}

	if spec.Decisions == nil {
		spec.Decisions = make(map[string]*Decision)
	}
	for a, g := range guards {
		a.Guard = g
	}
	for name, arms := range sets {
		d := spec.Decisions[name]
		if d == nil {
			d = &Decision{}
			spec.Decisions[name] = d
		}
		d.arms = arms
	}

	spec.compiled = true

	return nil
}

// Hash computes the Base64-encoded SHA256 hash of the given data.
func Hash(data []byte) string {
	h := sha256.New()
	h.Write(data)
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

// SetId generates and sets the Id of the Spec based on its JSON
// representation (without any previous Id).
//
// Warning: Specs that are identical outside of their native Guards
// will get the same id.  Use Spec.Version to differentiate them.
func (spec *Spec) SetId() (string, error) {
	spec.Id = ""
	js, err := json.Marshal(spec)
	if err != nil {
		return "", err
	}
	spec.Id = Hash(js)
	return spec.Id, nil
}
