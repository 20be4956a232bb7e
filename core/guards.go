package core

import (
	"context"
	"fmt"

	"github.com/Comcast/matchbox/match"
)

var (
	// DefaultInterpreters will be used in GuardSource.Compile if
	// the given nil interpreters.
	DefaultInterpreters = make(map[string]Interpreter)
)

// Props are extra, read-only data that a Guard can see in addition
// to its Bindings.
type Props map[string]interface{}

func (ps Props) Copy() Props {
	acc := make(Props, len(ps))
	for p, v := range ps {
		acc[p] = v
	}
	return acc
}

// Interpreter can optionally compile and execute code for guards.
type Interpreter interface {
	// Compile can make something that helps when Exec()ing the
	// code later.
	Compile(ctx context.Context, code interface{}) (interface{}, error)

	// Exec executes the code, which should say whether the
	// Bindings are acceptable.  The result of previous Compile()
	// might be provided.
	Exec(ctx context.Context, bs match.Bindings, props Props, code interface{}, compiled interface{}) (bool, error)
}

// Guard decides whether an arm's Bindings are acceptable.
type Guard interface {
	Exec(context.Context, match.Bindings, Props) (bool, error)
}

// FuncGuard is a wrapper around a Go function.
type FuncGuard struct {
	F func(context.Context, match.Bindings, Props) (bool, error) `json:"-" yaml:"-"`
}

// Exec runs the given guard.  A nil FuncGuard admits everything.
func (g *FuncGuard) Exec(ctx context.Context, bs match.Bindings, props Props) (bool, error) {
	if g == nil || g.F == nil {
		return true, nil
	}
	return g.F(ctx, bs, props)
}

// GuardSource can be compiled to a Guard.
type GuardSource struct {
	Interpreter string      `json:"interpreter,omitempty" yaml:"interpreter,omitempty"`
	Source      interface{} `json:"source" yaml:"source"`
}

// Copy makes a shallow copy.
func (g *GuardSource) Copy() *GuardSource {
	if g == nil {
		return nil
	}
	return &GuardSource{
		Interpreter: g.Interpreter,
		Source:      g.Source,
	}
}

// Compile attempts to compile the GuardSource into a Guard using
// the given interpreters, which defaults to DefaultInterpreters.
func (g *GuardSource) Compile(ctx context.Context, interpreters map[string]Interpreter) (Guard, error) {
	if interpreters == nil {
		interpreters = DefaultInterpreters
	}

	interpreter, have := interpreters[g.Interpreter]
	if !have {
		return nil, fmt.Errorf("%w: %q", InterpreterNotFound, g.Interpreter)
	}

	x, err := interpreter.Compile(ctx, g.Source)
	if err != nil {
		return nil, err
	}

	return &FuncGuard{
		F: func(ctx context.Context, bs match.Bindings, props Props) (bool, error) {
			return interpreter.Exec(ctx, bs, props, g.Source, x)
		},
	}, nil
}

// boundGuard adapts a Guard to match.Guard for a single Decide call.
type boundGuard struct {
	ctx   context.Context
	guard Guard
	props Props
}

func (g *boundGuard) Allow(bs match.Bindings) (bool, error) {
	return g.guard.Exec(g.ctx, bs, g.props)
}
