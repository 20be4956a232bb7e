/* Copyright 2018 Comcast Cable Communications Management, LLC
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

package tools

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	. "github.com/Comcast/matchbox/core"
	"github.com/Comcast/matchbox/match"
)

type MermaidOpts struct {
	// ShowPatterns will result in an edge label that's the JSON
	// representation of the arm's pattern.
	ShowPatterns bool `json:"showPatterns"`

	// ActionFill is the fill color of for action nodes.  Does not
	// apply if ActionClass is set.
	ActionFill string `json:"actionFill,omitempty"`

	// ActionClass will be the CSS class for action nodes.
	ActionClass string `json:"actionClass,omitempty"`

	PrettyPatterns bool `json:"prettyPatterns,omitempty"`
}

// DefaultMermaidOpts are used when Mermaid gets nil options.
var DefaultMermaidOpts = MermaidOpts{
	ShowPatterns:   true,
	ActionFill:     "#bcf2db",
	PrettyPatterns: true,
}

// patternData returns the arm's pattern in its generic form.
func patternData(a *ArmSource) interface{} {
	switch p := a.Pattern.(type) {
	case nil:
		return "?"
	case match.Pattern:
		return match.PatternInterface(p)
	default:
		return p
	}
}

// Mermaid makes a Mermaid (https://mermaidjs.github.io/) input file
// for the given Spec.
//
// Each Decision is a node with an edge per arm to that arm's action.
// Guarded arms get dotted edges.
func Mermaid(spec *Spec, w io.WriteCloser, opts *MermaidOpts) error {

	if opts == nil {
		opts = &DefaultMermaidOpts
	}

	fmt.Fprintf(w, "graph LR\n")

	num := 0
	nid := func() string {
		num++
		return fmt.Sprintf("n%d", num)
	}

	for _, name := range spec.DecisionNames() {
		d := spec.Decisions[name]
		if d == nil {
			continue
		}
		did := nid()
		fmt.Fprintf(w, "  %s((\"%s\"))\n", did, name)

		actions := make(map[string]string)
		for i, a := range d.Arms {
			if a == nil {
				continue
			}
			action := a.Action
			if action == "" {
				action = "(none)"
			}
			aid, have := actions[action]
			if !have {
				aid = nid()
				actions[action] = aid
				fmt.Fprintf(w, "  %s[\"%s\"]\n", aid, action)
				switch {
				case opts.ActionClass != "":
					fmt.Fprintf(w, "  class %s %s\n", aid, opts.ActionClass)
				case opts.ActionFill != "":
					fmt.Fprintf(w, "  style %s fill:%s\n", aid, opts.ActionFill)
				}
			}

			label := fmt.Sprintf("%d", i)
			if opts.ShowPatterns {
				var (
					p   = patternData(a)
					bs  []byte
					err error
				)
				bs, err = json.Marshal(p)
				if opts.PrettyPatterns && 40 < len(bs) {
					bs, err = json.MarshalIndent(p, "", "  ")
				}
				if err != nil {
					return err
				}
				js := strings.Replace(string(bs), `"`, `'`, -1)
				label = fmt.Sprintf("%d: <pre>%s</pre>", i, js)
			}

			arrow := "-->"
			if a.Guarded() {
				arrow = "-.->"
			}
			fmt.Fprintf(w, "  %s -- \"%s\" %s %s\n", did, label, arrow, aid)
		}
	}

	fmt.Fprintf(w, "\n")

	return w.Close()
}
