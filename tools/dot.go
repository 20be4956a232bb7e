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

// dot -Tpng g.dot > g.png

import (
	"fmt"
	"io"
	"strings"

	. "github.com/Comcast/matchbox/core"

	"gopkg.in/yaml.v2"
)

func htmlEscape(s string) string {
	s = strings.Replace(s, "&", `&amp;`, -1)
	s = strings.Replace(s, "<", `&lt;`, -1)
	s = strings.Replace(s, ">", `&gt;`, -1)
	return s
}

// Dot makes a Graphviz dot file for the given Spec.
//
// If decided isn't nil, the edge for the arm that it chose is red.
func Dot(spec *Spec, w io.Writer, decided *Decided) error {

	fmt.Fprintf(w, "digraph G {\n")
	fmt.Fprintf(w, `  graph [ordering=out,rankdir=LR,nodesep=0.3,ranksep=0.6]
  node [shape="record" style="rounded,filled"]
  edge [fontsize = "12"]
`)

	for k, name := range spec.DecisionNames() {
		d := spec.Decisions[name]
		if d == nil {
			continue
		}

		label := htmlEscape(name)
		if d.Type != "" {
			label += "<BR/><FONT POINT-SIZE='8'>" + htmlEscape(d.Type) + "</FONT>"
		}
		if d.Doc != "" {
			doc := d.Doc
			if 40 < len(doc) {
				period := strings.Index(doc, ". ")
				if 0 < period {
					doc = doc[0 : period+1]
				}
			}
			label += "<BR/><FONT POINT-SIZE='8'>" + htmlEscape(doc) + "</FONT>"
		}
		did := fmt.Sprintf("d%d", k)
		fmt.Fprintf(w, "  %s [shape=\"record\", style=\"filled,bold\", fillcolor=\"#2d93ad\", label=<%s> ]\n",
			did, label)

		for i, a := range d.Arms {
			if a == nil {
				continue
			}
			aid := fmt.Sprintf("d%da%d", k, i)
			style := "filled"
			if a.Action == "" {
				style += ",dashed"
			}
			fmt.Fprintf(w, "  %s [shape=\"note\", style=\"%s\", fillcolor=\"#99ddc8\", label=<%s> ]\n",
				aid, style, htmlEscape(a.Action))

			var label string
			if bs, err := yaml.Marshal(patternData(a)); err != nil {
				label = htmlEscape(err.Error())
			} else {
				label = htmlEscape(string(bs))
			}
			label = strings.Replace(label, "\n", `<BR ALIGN="LEFT"/>`, -1)

			if a.GuardSource != nil {
				var src string
				if s, is := a.GuardSource.Source.(string); is {
					src = s
				} else {
					src = fmt.Sprintf("%#v", a.GuardSource.Source)
				}
				label += `<FONT POINT-SIZE="6">` +
					`<BR/>` + strings.Replace(htmlEscape(src)+"\n", "\n", `<BR ALIGN="LEFT"/>`, -1) + `<BR/>` +
					`</FONT>`
			} else if a.Guard != nil {
				label += `<BR ALIGN="LEFT"/>guarded<BR ALIGN="LEFT"/>`
			}

			color := "black"
			if decided != nil && decided.Decision == name && decided.Result != nil && decided.Result.Arm == i {
				color = "red"
			}

			label = fmt.Sprintf("%d/%d %s", i+1, len(d.Arms), label)
			fmt.Fprintf(w, "  %s -> %s [ color=\"%s\" label = <%s> ]\n",
				did, aid, color, label)
		}
	}

	fmt.Fprintf(w, "}\n")

	return nil
}
