/* Copyright 2018-2019 Comcast Cable Communications Management, LLC
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

// Package ecmascript provides an ECMAScript-compatible guard
// interpreter.
package ecmascript

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Comcast/matchbox/core"
	"github.com/Comcast/matchbox/match"

	"github.com/dop251/goja"
	"github.com/google/uuid"
	"github.com/gorhill/cronexpr"
)

var (
	// InterruptedMessage is the string value of Interrupted.
	InterruptedMessage = "RuntimeError: timeout"

	// Interrupted is returned by Exec if the execution is
	// interrupted.
	Interrupted = errors.New(InterruptedMessage)

	// DefaultTimeout is the Timeout for Interpreters made by
	// NewInterpreter.
	DefaultTimeout = time.Second
)

// init adds a Interpreter as one of the DefaultInterpreters
func init() {
	core.DefaultInterpreters["ecmascript"] = NewInterpreter()
}

// Interpreter implements core.Intepreter using Goja, which is a
// Go implementation of ECMAScript 5.1+.
//
// A guard's source is the body of a function.  The truthiness of
// what that function returns decides whether the guard admits the
// arm's bindings.
//
// See https://github.com/dop251/goja.
type Interpreter struct {

	// Testing is used to expose or hide some runtime
	// capabilities.
	Test bool

	// Extended adds some additional properties.
	Extended bool

	// Timeout, if positive, limits each execution.
	Timeout time.Duration

	// LibraryProvider resolves the names given to top-level
	// require() calls.  If nil, require() isn't supported.
	LibraryProvider LibraryProvider
}

// NewInterpreter makes a new Interpreter.
func NewInterpreter() *Interpreter {
	return &Interpreter{
		Timeout: DefaultTimeout,
	}
}

func wrapSrc(src string) string {
	return fmt.Sprintf("(function() {\n%s\n}());\n", src)
}

// AsSource extracts code from a guard's source, which is either a
// string or a map with "code" and optional "requires" properties.
func AsSource(src interface{}) (code string, libs []string, err error) {
	switch vv := src.(type) {
	case string:
		code = vv
	case map[string]interface{}:
		return parseSource(vv)
	default:
		err = fmt.Errorf("bad ECMAScript source (%T)", src)
	}
	return
}

func parseSource(vv map[string]interface{}) (code string, libs []string, err error) {
	s, is := vv["code"].(string)
	if !is {
		err = errors.New("bad ECMAScript guard code")
		return
	}
	code = s

	switch vv := vv["requires"].(type) {
	case nil:
	case string:
		libs = []string{vv}
	case []string:
		libs = vv
	case []interface{}:
		libs = make([]string, 0, len(vv))
		for _, x := range vv {
			s, is := x.(string)
			if !is {
				err = errors.New("bad library")
				return
			}
			libs = append(libs, s)
		}
	default:
		err = errors.New("bad requires")
	}

	return
}

// Compile calls goja.Compile after inlining any libraries.
//
// See BenchmarkPrecompile and BenchmarkNoPrecompile for a comparison
// of what compilation can do for you.
func (i *Interpreter) Compile(ctx context.Context, src interface{}) (interface{}, error) {
	code, libs, err := AsSource(src)
	if err != nil {
		return nil, err
	}

	if 0 < len(libs) || mightRequire(code) {
		if i.LibraryProvider == nil {
			if 0 < len(libs) {
				return nil, errors.New("no LibraryProvider for requires")
			}
		} else {
			prefix := ""
			for _, name := range libs {
				lib, err := i.LibraryProvider(ctx, name)
				if err != nil {
					return nil, err
				}
				prefix += lib + "\n"
			}
			if code, err = InlineRequires(ctx, code, i.LibraryProvider); err != nil {
				return nil, err
			}
			code = prefix + code
		}
	}

	code = wrapSrc(code)

	obj, err := goja.Compile("", code, true)
	if err != nil {
		return nil, errors.New(err.Error() + ": " + code)
	}

	return obj, nil
}

func protest(o *goja.Runtime, x interface{}) {
	panic(o.ToValue(x))
}

func export(x interface{}) interface{} {
	if v, is := x.(goja.Value); is {
		return v.Export()
	}
	return x
}

// Exec implements the Interpreter method of the same name.
//
// The following properties are available from the runtime at _.
//
// These two things are most important:
//
//	bindings: the bindings as plain data (a fresh copy).
//	props: core.Props
//
// Extended properties (enabled by interpreter's Extended property):
//
//	randstr(): generate a random string.
//	cronNext(s): Return a string representing (RFC3999Nano) the
//	  next time for the given crontab expression.
//	match(pat, val): Run the pattern matcher.  Returns the
//	  bindings or null.
//
// Testing properties (enabled by the interpreter's Test property):
//
//	sleep(ms): sleep for the given number of milliseconds.
//	log(x): log the given thing.
func (i *Interpreter) Exec(ctx context.Context, bs match.Bindings, props core.Props, src interface{}, compiled interface{}) (bool, error) {
	var p *goja.Program
	if compiled == nil {
		var err error
		if compiled, err = i.Compile(ctx, src); err != nil {
			return false, err
		}
	}
	var is bool
	if p, is = compiled.(*goja.Program); !is {
		return false, fmt.Errorf("ECMAScript bad compilation: %T %#v", compiled, compiled)
	}

	env := map[string]interface{}{}
	if props == nil {
		env["props"] = map[string]interface{}{}
	} else {
		env["props"] = map[string]interface{}(props.Copy())
	}

	// Bindings.Interface makes new maps and slices, so the guard
	// can scribble on what it gets.
	env["bindings"] = bs.Interface()

	o := goja.New()

	o.Set("_", env)

	if i.Extended {
		env["randstr"] = func() interface{} {
			return uuid.NewString()
		}

		// cronNext parses the given string as a crontab expression
		// using github.com/gorhill/cronexpr.  Returns the next time
		// as a string formatted in time.RFC3339Nano (UTC).
		env["cronNext"] = func(x interface{}) interface{} {
			cronExpr, is := export(x).(string)
			if !is {
				protest(o, "not a string")
			}

			c, err := cronexpr.Parse(cronExpr)
			if err != nil {
				protest(o, err.Error())
			}
			return c.Next(time.Now()).UTC().Format(time.RFC3339Nano)
		}

		// match is a utility that invokes the pattern matcher.
		env["match"] = func(pat, val goja.Value) interface{} {
			if pat == nil || val == nil {
				protest(o, "match needs a pattern and a value")
			}
			p, err := match.ParsePattern(pat.Export())
			if err != nil {
				protest(o, err.Error())
			}
			v, err := match.ParseValue(val.Export())
			if err != nil {
				protest(o, err.Error())
			}
			found, ok := match.Match(p, v)
			if !ok {
				return nil
			}
			return found.Interface()
		}
	}

	if i.Test {

		env["sleep"] = func(n interface{}) interface{} {
			n = export(n)
			ms, is := n.(int64)
			if !is {
				panic(fmt.Sprintf("a %T is not an %T", n, ms))
			}
			time.Sleep(time.Duration(ms) * time.Millisecond)
			return nil
		}

		env["log"] = func(x interface{}) interface{} {
			x = export(x)
			js, err := json.Marshal(&x)
			if err != nil {
				log.Println("ecmascript.log (can't marshal: " + err.Error() + ")")
			} else {
				log.Println(string(js))
			}

			return x
		}
	}

	// We want to make sure that the following goroutine is
	// terminated as soon as possible.
	var (
		ictx   context.Context
		cancel context.CancelFunc
	)
	if 0 < i.Timeout {
		ictx, cancel = context.WithTimeout(ctx, i.Timeout)
	} else {
		ictx, cancel = context.WithCancel(ctx)
	}
	done := make(chan struct{})
	go func() {
		select {
		case <-ictx.Done():
			o.Interrupt(InterruptedMessage)
		case <-done:
		}
	}()

	v, err := RunProgram(o, p)
	close(done)
	cancel()

	if err != nil {
		if _, is := err.(*goja.InterruptedError); is {
			return false, Interrupted
		}
		return false, err
	}

	if v == nil {
		return false, nil
	}

	return v.ToBoolean(), nil
}

func RunProgram(o *goja.Runtime, p *goja.Program) (v goja.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s", r)
		}
	}()
	return o.RunProgram(p)
}
