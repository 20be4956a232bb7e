package core

// These errors are user errors, not internal errors.

import (
	"errors"
	"strconv"
)

var (
	// InterpreterNotFound occurs when you try to Compile a
	// GuardSource, and the required interpreter isn't in the
	// given map of interpreters.
	InterpreterNotFound = errors.New("interpreter not found")
)

// SpecNotCompiled occurs when a Spec is used (say via Decide()) before
// it has been Compile()ed.
type SpecNotCompiled struct {
	Spec *Spec
}

func (e *SpecNotCompiled) Error() string {
	return `spec "` + e.Spec.Name + `" not compiled`
}

// UnknownDecision occurs when Decide is asked for a decision that
// isn't in the Spec.
type UnknownDecision struct {
	Spec     *Spec
	Decision string
}

func (e *UnknownDecision) Error() string {
	return `decision "` + e.Decision + `" not found in spec "` + e.Spec.Name + `"`
}

// UnknownType occurs when a Decision refers to a type that the Spec
// doesn't declare.
type UnknownType struct {
	Spec     *Spec
	Decision string
	Type     string
}

func (e *UnknownType) Error() string {
	return `decision "` + e.Decision + `" in spec "` + e.Spec.Name + `" ` +
		`has unknown type "` + e.Type + `"`
}

// BadArm occurs when an arm's pattern or guard doesn't compile.
type BadArm struct {
	Decision string
	Arm      int
	Err      error
}

func (e *BadArm) Error() string {
	return `decision "` + e.Decision + `" arm ` + strconv.Itoa(e.Arm) + `: ` + e.Err.Error()
}

func (e *BadArm) Unwrap() error {
	return e.Err
}
