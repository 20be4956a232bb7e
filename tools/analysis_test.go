package tools

import (
	"context"
	"reflect"
	"testing"

	"github.com/Comcast/matchbox/core"
	. "github.com/Comcast/matchbox/util/testutil"
)

func TestAnalysis(t *testing.T) {
	a, err := Analyze(signals(t, true))
	if err != nil {
		t.Fatal(err)
	}

	if a.Decisions != 2 || a.Arms != 6 || a.Guards != 2 {
		t.Fatalf("bad counts: %s", JS(a))
	}
	if len(a.Errors) != 0 {
		t.Fatal(a.Errors)
	}

	for _, c := range []struct {
		what      string
		got, want interface{}
	}{
		{"actions", a.Actions, []string{"caution", "different", "go", "hurry", "never", "same"}},
		{"interpreters", a.Interpreters, []string{"ecmascript"}},
		{"untyped", a.Untyped, []string{"pair"}},
		{"unused", a.UnusedTypes, []string{"Unused"}},
		{"uncovered", a.Uncovered, map[string][]string{"go": {"Red", "Flashing"}}},
		{"unreachable", a.Unreachable, map[string][]int{"pair": {2}}},
	} {
		if !reflect.DeepEqual(c.got, c.want) {
			t.Fatalf("%s: got %s, wanted %s", c.what, JS(c.got), JS(c.want))
		}
	}
	if 0 < len(a.UndeclaredTypes) {
		t.Fatal(a.UndeclaredTypes)
	}
	if !a.Problems() {
		t.Fatal("should have problems")
	}
}

func TestAnalysisUncompiled(t *testing.T) {
	spec := signals(t, false)
	spec.Decisions["pair"].Type = "Nope"
	a, err := Analyze(spec)
	if err != nil {
		t.Fatal(err)
	}
	if len(a.Errors) != 1 || a.Uncovered != nil {
		t.Fatal(JS(a))
	}
	if len(a.UndeclaredTypes) != 1 || a.UndeclaredTypes[0] != "Nope" {
		t.Fatal(JS(a))
	}
}

func TestAnalysisClean(t *testing.T) {
	spec, err := core.OptionalSpec(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	a, err := Analyze(spec)
	if err != nil {
		t.Fatal(err)
	}
	if a.Problems() {
		t.Fatal(JS(a))
	}
}
