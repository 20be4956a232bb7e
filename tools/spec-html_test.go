package tools

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Comcast/matchbox/interpreters"
)

func TestRenderSpecHTML(t *testing.T) {

	t.Run("withoutSource", func(t *testing.T) {
		out := bytes.NewBuffer(make([]byte, 0, 1024*128))

		err := ReadAndRenderSpecPage("testdata/signals.yaml", []string{"spec.css"}, out, interpreters.Standard(nil), false)
		if err != nil {
			t.Fatal(err)
		}
		got := out.String()
		for _, want := range []string{
			"<title>signals</title>",
			"<strong>traffic signals</strong>",
			`not covered: <code>Red</code>`,
			`class="arm unreachable"`,
			`return color === &#34;yellow&#34;;`,
		} {
			if !strings.Contains(got, want) {
				t.Fatalf("no %q in\n%s", want, got)
			}
		}
		if strings.Contains(got, "thisSpec") {
			t.Fatal("shouldn't include source")
		}
	})

	t.Run("withSource", func(t *testing.T) {
		out := bytes.NewBuffer(make([]byte, 0, 1024*128))

		err := ReadAndRenderSpecPage("testdata/signals.yaml", []string{"spec.css"}, out, interpreters.Standard(nil), true)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(out.String(), "var thisSpec = {") {
			t.Fatal("no source")
		}
	})

	t.Run("missing", func(t *testing.T) {
		out := &bytes.Buffer{}
		if err := ReadAndRenderSpecPage("testdata/nope.yaml", nil, out, nil, false); err == nil {
			t.Fatal("should have complained")
		}
	})
}
