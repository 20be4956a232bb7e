package tools

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/Comcast/matchbox/match"
)

func TestDot(t *testing.T) {
	spec := signals(t, true)
	d, err := spec.Decide(context.Background(), "go", match.Unit("Yellow"), nil)
	if err != nil {
		t.Fatal(err)
	}

	out := &bytes.Buffer{}
	if err = Dot(spec, out, d); err != nil {
		t.Fatal(err)
	}
	got := out.String()
	if !strings.HasPrefix(got, "digraph G {") || !strings.HasSuffix(got, "}\n") {
		t.Fatal(got)
	}
	if !strings.Contains(got, `d0 -> d0a2 [ color="red"`) {
		t.Fatalf("chosen arm not highlighted:\n%s", got)
	}
	if strings.Contains(got, `d0 -> d0a0 [ color="red"`) {
		t.Fatalf("wrong arm highlighted:\n%s", got)
	}
	if !strings.Contains(got, "_.bindings.a === _.bindings.b") {
		t.Fatalf("no guard:\n%s", got)
	}
}
