package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"

	"github.com/Comcast/matchbox/core"
	. "github.com/Comcast/matchbox/util/testutil"

	md "github.com/russross/blackfriday/v2"
)

// RenderSpecHTML writes an HTML rendering of the Spec.  Docs are
// Markdown.
//
// If the Spec is compiled, each Decision also gets its coverage.
func RenderSpecHTML(s *core.Spec, out io.Writer) error {
	f := func(format string, args ...interface{}) {
		fmt.Fprintf(out, format+"\n", args...)
	}

	coverage := make(map[string]*core.Coverage)
	if s.Compiled() {
		cov, err := s.Exhaustiveness()
		if err != nil {
			return err
		}
		for _, c := range cov {
			coverage[c.Decision] = c
		}
	}

	f(`<div class="specDoc doc">%s</div>`, md.Run([]byte(s.Doc)))

	if 0 < len(s.Types) {
		f(`<div class="types"><table>`)
		for _, name := range sortedTypeNames(s) {
			t := s.Types[name]
			if t == nil {
				continue
			}
			f(`<tr class="type"><td><span id="type-%s" class="typeName">%s</span></td><td>`,
				html.EscapeString(name), html.EscapeString(name))
			if t.Doc != "" {
				f(`<div class="typeDoc doc">%s</div>`, md.Run([]byte(t.Doc)))
			}
			if t.Bool {
				f(`<div class="tags"><code>true</code> <code>false</code></div>`)
			}
			if 0 < len(t.Tags) {
				f(`<ul class="tags">`)
				for _, tag := range t.Tags {
					payload := ""
					if tag.Payload {
						payload = "(&hellip;)"
					}
					f(`<li><code>%s%s</code>%s</li>`, html.EscapeString(tag.Name), payload,
						md.Run([]byte(tag.Doc)))
				}
				f(`</ul>`)
			}
			f(`</td></tr>`)
		}
		f(`</table></div>`)
	}

	f(`<div class="decisions"><table>`)
	for _, name := range s.DecisionNames() {
		d := s.Decisions[name]
		if d == nil {
			continue
		}
		id := html.EscapeString(name)
		f(`<tr class="decision"><td><span id="%s" class="decisionName">%s</span></td><td>`, id, id)

		if d.Doc != "" {
			f(`<div class="decisionDoc doc">%s</div>`, md.Run([]byte(d.Doc)))
		}
		if d.Type != "" {
			t := html.EscapeString(d.Type)
			f(`<div>type: <a href="#type-%s"><span class="decisionType">%s</span></a></div>`, t, t)
		}
		if c, have := coverage[name]; have {
			for _, tag := range c.Uncovered {
				f(`<div class="uncovered">not covered: <code>%s</code></div>`, html.EscapeString(tag))
			}
		}

		unreachable := make(map[int]bool)
		if c, have := coverage[name]; have {
			for _, i := range c.Unreachable {
				unreachable[i] = true
			}
		}

		f(`<div class="arms">`)
		f(`<table>`)
		for i, a := range d.Arms {
			if a == nil {
				continue
			}
			class := "arm"
			if unreachable[i] {
				class += " unreachable"
			}
			f(`<tr class="%s"><td><div class="armNum">%d</div></td><td>`, class, i)
			f(`<table>`)
			if a.Doc != "" {
				f(`<tr><td></td><td>doc</td>`)
				f(`<td><div class="armDoc doc">%s</div></td></tr>`, md.Run([]byte(a.Doc)))
			}
			f(`<tr><td></td><td>pattern</td>`)
			f(`<td><code>%s</code></td></tr>`, html.EscapeString(JS(patternData(a))))
			if a.GuardSource != nil {
				f(`<tr><td></td><td>guard</td>`)
				f(`<td><div class="code"><pre>%s</pre></div></td></tr>`,
					html.EscapeString(fmt.Sprintf("%v", a.GuardSource.Source)))
			} else if a.Guard != nil {
				f(`<tr><td></td><td>guard</td><td>native</td></tr>`)
			}
			if a.Action != "" {
				f(`<tr><td></td><td>action</td>`)
				f(`<td><code class="action">%s</code></td></tr>`, html.EscapeString(a.Action))
			}
			f(`</table>`)
			f(`</td></tr>`)
		}
		f(`</table>`)
		f(`</div>`)
		f(`</td></tr>`)
	}
	f(`</table></div>`)

	return nil
}

// RenderSpecPage writes a complete HTML page for the Spec.
//
// If includeSource is true, the page includes the Spec's JSON as
// the variable thisSpec.
func RenderSpecPage(s *core.Spec, out io.Writer, cssFiles []string, includeSource bool) error {

	if cssFiles == nil {
		cssFiles = []string{"/static/spec-html.css"}
	}

	fmt.Fprintf(out, `<!DOCTYPE html>
<meta charset="utf-8">
<html>
  <head>
  <title>%s</title>
`, html.EscapeString(s.Name))

	if includeSource {
		js, err := json.Marshal(s)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, `
  <script>
  var thisSpec = %s;
  </script>
`, js)
	}

	for _, cssFile := range cssFiles {
		fmt.Fprintf(out, "  <link href=\"%s\" rel=\"stylesheet\">\n", cssFile)
	}

	fmt.Fprintf(out, `
  </head>
  <body>
    <h1>%s</h1>
`, html.EscapeString(s.Name))

	if err := RenderSpecHTML(s, out); err != nil {
		return err
	}

	fmt.Fprintf(out, `
  </body>
</html>
`)

	return nil
}

// ReadAndRenderSpecPage reads (with inlining), compiles, and renders
// the Spec in the given file.
func ReadAndRenderSpecPage(filename string, cssFiles []string, out io.Writer, interpreters map[string]core.Interpreter, includeSource bool) error {
	specSrc, err := ReadFileWithInlines(filename)
	if err != nil {
		return err
	}
	spec, err := core.ParseSpec(specSrc)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err = spec.Compile(ctx, interpreters, true); err != nil {
		return err
	}

	return RenderSpecPage(spec, out, cssFiles, includeSource)
}

func sortedTypeNames(s *core.Spec) []string {
	m := make(map[string]bool, len(s.Types))
	for name := range s.Types {
		m[name] = true
	}
	return keysToStringSlice(m)
}
