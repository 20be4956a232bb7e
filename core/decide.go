package core

import (
	"context"

	"github.com/Comcast/matchbox/match"
)

var (
	// TracesInitialCap is the initial capacity for Traces buffers.
	TracesInitialCap = 16
)

// Traces holds trace messages.
type Traces struct {
	Messages []interface{} `json:"messages,omitempty" yaml:"messages,omitempty"`
}

// NewTraces creates an initialized Traces.
//
// The Messages array has TracesInitialCap initial capacity.
func NewTraces() *Traces {
	return &Traces{
		Messages: make([]interface{}, 0, TracesInitialCap),
	}
}

func (ts *Traces) Add(xs ...interface{}) {
	ts.Messages = append(ts.Messages, xs...)
}

// Decided is the outcome of Decide.
type Decided struct {
	// Decision is the name of the Decision.
	Decision string `json:"decision"`

	// Result is never nil.  Result.Matched says whether an arm
	// was chosen.
	Result *match.Result `json:"result"`

	// Traces has a *match.ArmTrace for each arm considered.
	Traces *Traces `json:"traces,omitempty" yaml:"traces,omitempty"`
}

// Decide runs the named Decision against the given Value.
//
// The returned error is not nil if the Spec isn't compiled, if the
// Decision doesn't exist, or if a guard failed.  In the last case,
// the returned Decided is still useful for its Traces.
func (s *Spec) Decide(ctx context.Context, name string, v match.Value, props Props) (*Decided, error) {
	if !s.compiled {
		return nil, &SpecNotCompiled{s}
	}

	d, have := s.Decisions[name]
	if !have || d == nil {
		return nil, &UnknownDecision{s, name}
	}

	decided := &Decided{
		Decision: name,
		Traces:   NewTraces(),
	}

	m := &match.Matcher{
		Trace: func(t *match.ArmTrace) {
			decided.Traces.Add(t)
		},
	}

	r, err := m.Attempt(v, d.bind(ctx, props))
	decided.Result = r

	return decided, err
}

// bind returns the Decision's arms with guards that will see the
// given context and props.
func (d *Decision) bind(ctx context.Context, props Props) match.MatchSet {
	arms := d.arms
	copied := false
	for i, a := range d.arms {
		if a == nil || !a.Guarded() {
			continue
		}
		g, is := a.Guard().(*boundGuard)
		if !is {
			continue
		}
		if !copied {
			arms = append(match.MatchSet(nil), d.arms...)
			copied = true
		}
		arms[i] = a.WithGuard(&boundGuard{
			ctx:   ctx,
			guard: g.guard,
			props: props,
		})
	}
	return arms
}

// DecideEach runs the named Decision against each Value in order.
//
// Processing stops at the first error.  The Decided values so far
// are returned along with that error.
func (s *Spec) DecideEach(ctx context.Context, name string, vs []match.Value, props Props) ([]*Decided, error) {
	acc := make([]*Decided, 0, len(vs))
	for _, v := range vs {
		if err := ctx.Err(); err != nil {
			return acc, err
		}
		decided, err := s.Decide(ctx, name, v, props)
		if decided != nil {
			acc = append(acc, decided)
		}
		if err != nil {
			return acc, err
		}
	}
	return acc, nil
}

// Coverage is the static exhaustiveness report for one Decision.
type Coverage struct {
	Decision string `json:"decision"`

	// Type is the Decision's declared type, if any.
	Type string `json:"type,omitempty"`

	// Uncovered lists the cases of the Type that no unguarded
	// arm handles.  Always empty if there's no Type.
	Uncovered []string `json:"uncovered,omitempty"`

	// Unreachable lists the indexes of the arms that come after
	// an unguarded catch-all arm.
	Unreachable []int `json:"unreachable,omitempty"`
}

// Exhaustive reports whether the Decision covers every case of its
// Type (if any).
func (c *Coverage) Exhaustive() bool {
	return len(c.Uncovered) == 0
}

// Exhaustiveness reports coverage for every Decision, sorted by
// Decision name.
//
// This report is advisory.  Decide never consults it.
func (s *Spec) Exhaustiveness() ([]*Coverage, error) {
	if !s.compiled {
		return nil, &SpecNotCompiled{s}
	}
	acc := make([]*Coverage, 0, len(s.Decisions))
	for _, name := range s.DecisionNames() {
		d := s.Decisions[name]
		c := &Coverage{
			Decision:    name,
			Type:        d.Type,
			Unreachable: match.Unreachable(d.arms),
		}
		if d.Type != "" {
			if t, have := s.Types[d.Type]; have && t != nil {
				c.Uncovered = match.Uncovered(d.arms, t.Shape())
			}
		}
		acc = append(acc, c)
	}
	return acc, nil
}
