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

// Package core provides decision tables built on the match package.
//
// The primary type is Spec(ification), and the primary method is
// Decide().  A Spec is a set of named Decisions.  Each Decision is an
// ordered list of arms, and each arm has a pattern, an optional
// guard, and an opaque action token.  Decide finds the first arm
// whose pattern matches a given Value and whose guard (if any) admits
// the pattern's Bindings.
//
// A Spec can use arbitrary code for guards.  When a Spec is
// Compiled, the compiler looks for GuardSources, each of which should
// specify an Interpreter.  An Interpreter should know how to Compile
// and Exec a GuardSource.  Alternately, a native Spec can provide a
// FuncGuard implemented in Go.
//
// A guard should not block or perform any IO.  It just says yes or
// no.  What an action token means is entirely up to the package
// user.
//
// To use this package, make a Spec (or ParseSpec one from JSON or
// YAML).  Then Compile() it.  You might also want to look at its
// Exhaustiveness().  Then Decide.
package core
