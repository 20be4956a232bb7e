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

// These errors are construction-time errors.  They are reported when a
// Value or Pattern is built, never during matching.  Not matching is
// not an error.

import "fmt"

// DuplicateBinding occurs when a pattern would bind the same name
// twice.
type DuplicateBinding struct {
	Name string
}

func (e *DuplicateBinding) Error() string {
	return `duplicate binding "` + e.Name + `" in pattern`
}

// DuplicateField occurs when a Record or a RecordPat names the same
// field twice.
type DuplicateField struct {
	Name string
}

func (e *DuplicateField) Error() string {
	return `duplicate field "` + e.Name + `"`
}

// BadPattern occurs when a pattern is malformed in some other way
// (an empty binding name, an empty variant tag, and so on).
type BadPattern struct {
	Pattern interface{}
	Problem string
}

func (e *BadPattern) Error() string {
	return "bad pattern: " + e.Problem
}

// BadValue occurs when a Value can't be constructed from the given
// data.
type BadValue struct {
	Value   interface{}
	Problem string
}

func (e *BadValue) Error() string {
	return "bad value: " + e.Problem
}

// UnknownPatternType is an error that includes the thing that's
// causing the trouble.
type UnknownPatternType struct {
	Pattern interface{}
}

func (e *UnknownPatternType) Error() string {
	return fmt.Sprintf("unknown pattern type %T", e.Pattern)
}
