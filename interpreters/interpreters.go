// Package interpreters assembles the standard guard interpreters.
package interpreters

import (
	"github.com/Comcast/matchbox/core"
	"github.com/Comcast/matchbox/interpreters/ecmascript"
	"github.com/Comcast/matchbox/interpreters/noop"
)

// Standard returns the interpreters that the commands use.
//
// If libs isn't nil, it resolves require()s in guards for the
// "ecmascript-libs" interpreter.
func Standard(libs ecmascript.LibraryProvider) map[string]core.Interpreter {
	is := make(map[string]core.Interpreter)

	es := ecmascript.NewInterpreter()
	is["ecmascript"] = es
	is["ecmascript-5.1"] = es

	ext := ecmascript.NewInterpreter()
	ext.Extended = true
	is["ecmascript-ext"] = ext
	is["ecmascript-5.1-ext"] = ext
	is["goja"] = ext

	is["noop"] = noop.NewInterpreter()

	if libs != nil {
		withLibs := ecmascript.NewInterpreter()
		withLibs.Extended = true
		withLibs.LibraryProvider = libs
		is["ecmascript-libs"] = withLibs
	}

	return is
}
