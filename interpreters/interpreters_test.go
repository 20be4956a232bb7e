package interpreters

import (
	"context"
	"testing"

	"github.com/Comcast/matchbox/core"
	"github.com/Comcast/matchbox/interpreters/ecmascript"
	"github.com/Comcast/matchbox/match"
)

func TestStandard(t *testing.T) {
	is := Standard(nil)
	for _, name := range []string{"ecmascript", "ecmascript-ext", "goja", "noop"} {
		if _, have := is[name]; !have {
			t.Fatalf("no %s", name)
		}
	}
	if _, have := is["ecmascript-libs"]; have {
		t.Fatal("ecmascript-libs without a provider")
	}

	is = Standard(ecmascript.MakeMapLibraryProvider(map[string]string{
		"even": "function even(n) { return n % 2 == 0; }",
	}))
	if _, have := is["ecmascript-libs"]; !have {
		t.Fatal("no ecmascript-libs")
	}
}

func TestStandardSpec(t *testing.T) {
	src := `
name: parity
decisions:
  parity:
    arms:
      - pattern: ["?n"]
        guard:
          interpreter: ecmascript-libs
          source: |
            require("even");
            return even(_.bindings.n);
        action: even
      - pattern: ["?n"]
        guard:
          interpreter: ecmascript
          source: return _.bindings.n % 2 == 1;
        action: odd
`
	spec, err := core.ParseSpec([]byte(src))
	if err != nil {
		t.Fatal(err)
	}
	is := Standard(ecmascript.MakeMapLibraryProvider(map[string]string{
		"even": "function even(n) { return n % 2 == 0; }",
	}))
	ctx := context.Background()
	if err = spec.Compile(ctx, is, true); err != nil {
		t.Fatal(err)
	}
	for n, want := range map[int64]string{2: "even", 3: "odd"} {
		d, err := spec.Decide(ctx, "parity", match.MustTuple(match.Int(n)), nil)
		if err != nil {
			t.Fatal(err)
		}
		if d.Result.Action != want {
			t.Fatalf("%d: got %q", n, d.Result.Action)
		}
	}
	d, err := spec.Decide(ctx, "parity", match.MustTuple(match.Str("x")), nil)
	if err != nil {
		t.Fatal(err)
	}
	if d.Result.Matched {
		t.Fatalf("shouldn't have matched: %#v", d.Result)
	}
}
