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

// Static coverage analysis.  Nothing here looks at a Value.

// TagShape is one case of a closed tagged type.
type TagShape struct {
	Tag     string `json:"tag" yaml:"tag"`
	Payload bool   `json:"payload,omitempty" yaml:",omitempty"`
}

// Shape describes the closed set of top-level shapes that a value of
// some type can have.
//
// If Bool is true, the shape is the boolean type, and the cases are
// "true" and "false".  Otherwise the cases are the Tags.
type Shape struct {
	Bool bool       `json:"bool,omitempty" yaml:",omitempty"`
	Tags []TagShape `json:"tags,omitempty" yaml:",omitempty"`
}

// BoolShape is the Shape for booleans.
func BoolShape() Shape {
	return Shape{Bool: true}
}

// EnumShape makes a Shape for variants without payloads.
func EnumShape(tags ...string) Shape {
	ts := make([]TagShape, len(tags))
	for i, tag := range tags {
		ts[i] = TagShape{Tag: tag}
	}
	return Shape{Tags: ts}
}

// Cases returns the names of the cases of the Shape in declared order.
func (s Shape) Cases() []string {
	if s.Bool {
		return []string{"true", "false"}
	}
	acc := make([]string, len(s.Tags))
	for i, t := range s.Tags {
		acc[i] = t.Tag
	}
	return acc
}

// Uncovered reports the cases of the Shape that no Arm's top-level
// pattern covers.
//
// Guarded Arms never count as covering anything since we can't
// know statically what a guard will say.  A variant payload counts as
// covered only when the payload pattern is a Wildcard or a Binding.
// That's conservative: a tuple of wildcards might cover a tuple
// payload, but we don't know the payload's shape.
func Uncovered(arms MatchSet, s Shape) []string {
	covered := make(map[string]bool)

	for _, a := range arms {
		if a == nil || a.guard != nil {
			continue
		}
		if irrefutable(a.pattern) {
			return nil
		}
		if s.Bool {
			if l, is := a.pattern.(*LiteralEq); is && l.leaf != nil {
				if b, is := l.leaf.x.(bool); is {
					if b {
						covered["true"] = true
					} else {
						covered["false"] = true
					}
				}
			}
			continue
		}
		vp, is := a.pattern.(*VariantPat)
		if !is {
			continue
		}
		for _, t := range s.Tags {
			if t.Tag != vp.tag {
				continue
			}
			if t.Payload {
				if vp.payload != nil && irrefutable(vp.payload) {
					covered[t.Tag] = true
				}
			} else if vp.payload == nil {
				covered[t.Tag] = true
			}
		}
	}

	var acc []string
	for _, c := range s.Cases() {
		if !covered[c] {
			acc = append(acc, c)
		}
	}
	return acc
}

// Exhaustive reports whether Uncovered is empty.
func Exhaustive(arms MatchSet, s Shape) bool {
	return len(Uncovered(arms, s)) == 0
}

// Unreachable returns the indexes of the Arms that follow an
// unguarded Arm whose pattern matches everything.
func Unreachable(arms MatchSet) []int {
	var acc []int
	shadowed := false
	for i, a := range arms {
		if a == nil {
			continue
		}
		if shadowed {
			acc = append(acc, i)
			continue
		}
		if a.guard == nil && irrefutable(a.pattern) {
			shadowed = true
		}
	}
	return acc
}

func irrefutable(p Pattern) bool {
	switch p.(type) {
	case *Wildcard, *Binding:
		return true
	}
	return false
}
