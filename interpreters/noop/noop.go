package noop

import (
	"context"
	"log"

	"github.com/Comcast/matchbox/core"
	"github.com/Comcast/matchbox/match"
)

// Interpreter is an core.Interpreter whose guards admit everything.
type Interpreter struct {
	// Silent, if true, will suppress warning log messages.
	Silent bool
}

func (i *Interpreter) Compile(ctx context.Context, code interface{}) (interface{}, error) {
	if !i.Silent {
		log.Printf("warning: Using noop Interpreter for compilation")
	}
	return nil, nil
}

func (i *Interpreter) Exec(ctx context.Context, bs match.Bindings, props core.Props, code interface{}, compiled interface{}) (bool, error) {
	if !i.Silent {
		log.Printf("warning: Using noop Interpreter for execution")
	}
	return true, nil
}

func NewInterpreter() *Interpreter {
	return &Interpreter{}
}
