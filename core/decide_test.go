package core

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Comcast/matchbox/match"
	. "github.com/Comcast/matchbox/util/testutil"
)

func fooBar(x int64, y match.Value) match.Value {
	return match.MustRecord(match.F("x", match.Int(x)), match.F("y", y))
}

func TestDecideOptional(t *testing.T) {
	ctx := context.Background()
	spec, err := OptionalSpec(ctx)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		value  match.Value
		arm    int
		action string
		n      match.Value
	}{
		{match.MustVariant("AnI32", match.Int(5)), 0, "int", match.Int(5)},
		{match.Unit("Nothing"), 1, "nothing", nil},
		{match.Unit("Something"), -1, "", nil},
		{match.MustVariant("Nothing", match.Int(1)), -1, "", nil},
	}
	for _, tc := range tests {
		t.Run(tc.value.String(), func(t *testing.T) {
			d, err := spec.Decide(ctx, "optional", tc.value, nil)
			if err != nil {
				t.Fatal(err)
			}
			r := d.Result
			if r.Arm != tc.arm || r.Action != tc.action || r.Matched != (tc.arm >= 0) {
				t.Fatalf("got %s", JS(r))
			}
			if !match.Equal(r.Bindings["n"], tc.n) {
				t.Fatalf("n = %v", r.Bindings["n"])
			}
			if d.Decision != "optional" {
				t.Fatal(d.Decision)
			}
		})
	}
}

func TestDecideTraces(t *testing.T) {
	ctx := context.Background()
	spec, err := OptionalSpec(ctx)
	if err != nil {
		t.Fatal(err)
	}
	d, err := spec.Decide(ctx, "foobar", fooBar(5, match.MustVariant("AnI32", match.Int(7))), nil)
	if err != nil {
		t.Fatal(err)
	}
	if d.Result.Action != "different" {
		t.Fatal(JS(d.Result))
	}
	if n := len(d.Traces.Messages); n != 3 {
		t.Fatalf("%d traces: %s", n, JS(d.Traces))
	}
	rejected, is := d.Traces.Messages[1].(*match.ArmTrace)
	if !is {
		t.Fatalf("%T", d.Traces.Messages[1])
	}
	if !rejected.Matched || !rejected.Guarded || rejected.Allowed {
		t.Fatal(JS(rejected))
	}
	if !match.Equal(rejected.Bindings["m"], match.Int(7)) {
		t.Fatal(JS(rejected))
	}
}

func TestDecideErrors(t *testing.T) {
	ctx := context.Background()
	s := &Spec{
		Name: "errors",
		Decisions: map[string]*Decision{
			"d": {
				Arms: []*ArmSource{
					{
						Pattern:     "?x",
						GuardSource: &GuardSource{Interpreter: "equals", Source: "fail"},
					},
				},
			},
		},
	}

	var nc *SpecNotCompiled
	if _, err := s.Decide(ctx, "d", match.Int(1), nil); !errors.As(err, &nc) {
		t.Fatalf("expected SpecNotCompiled, got %v", err)
	}
	if _, err := s.Exhaustiveness(); !errors.As(err, &nc) {
		t.Fatalf("expected SpecNotCompiled, got %v", err)
	}

	if err := s.Compile(ctx, testInterpreters(), true); err != nil {
		t.Fatal(err)
	}

	var ud *UnknownDecision
	if _, err := s.Decide(ctx, "nope", match.Int(1), nil); !errors.As(err, &ud) {
		t.Fatalf("expected UnknownDecision, got %v", err)
	}

	d, err := s.Decide(ctx, "d", match.Int(1), nil)
	var ge *match.GuardError
	if !errors.As(err, &ge) {
		t.Fatalf("expected a GuardError, got %v", err)
	}
	if d == nil || d.Result.Matched || len(d.Traces.Messages) != 1 {
		t.Fatalf("unexpected %s", JS(d))
	}
}

func TestDecideProps(t *testing.T) {
	ctx := context.Background()
	s := &Spec{
		Decisions: map[string]*Decision{
			"d": {
				Arms: []*ArmSource{
					{
						Pattern:     "?x",
						GuardSource: &GuardSource{Interpreter: "equals", Source: "props"},
						Action:      "allowed",
					},
					{
						Action: "fallback",
					},
				},
			},
		},
	}
	if err := s.Compile(ctx, testInterpreters(), true); err != nil {
		t.Fatal(err)
	}

	d, err := s.Decide(ctx, "d", match.Int(1), Props{"ok": true})
	if err != nil {
		t.Fatal(err)
	}
	if d.Result.Action != "allowed" {
		t.Fatal(JS(d.Result))
	}

	if d, err = s.Decide(ctx, "d", match.Int(1), nil); err != nil {
		t.Fatal(err)
	}
	if d.Result.Action != "fallback" || len(d.Result.Bindings) != 0 {
		t.Fatal(JS(d.Result))
	}
}

type ctxKey string

func TestDecideContext(t *testing.T) {
	var (
		key  = ctxKey("who")
		seen interface{}
	)
	s := &Spec{
		Decisions: map[string]*Decision{
			"d": {
				Arms: []*ArmSource{
					{
						Pattern: "?x",
						Guard: &FuncGuard{
							F: func(ctx context.Context, bs match.Bindings, props Props) (bool, error) {
								seen = ctx.Value(key)
								return true, nil
							},
						},
					},
				},
			},
		},
	}
	ctx := context.Background()
	if err := s.Compile(ctx, nil, true); err != nil {
		t.Fatal(err)
	}
	ctx = context.WithValue(ctx, key, "me")
	if _, err := s.Decide(ctx, "d", match.Int(1), nil); err != nil {
		t.Fatal(err)
	}
	if seen != "me" {
		t.Fatalf("guard saw %v", seen)
	}

	// The MatchSet's own guard has a background context.
	seen = nil
	r, err := match.Attempt(match.Int(1), s.Decisions["d"].MatchSet())
	if err != nil {
		t.Fatal(err)
	}
	if !r.Matched || seen != nil {
		t.Fatalf("matched %v saw %v", r.Matched, seen)
	}
}

func TestDecideEach(t *testing.T) {
	ctx := context.Background()
	spec, err := OptionalSpec(ctx)
	if err != nil {
		t.Fatal(err)
	}
	vs := []match.Value{
		match.Unit("Nothing"),
		match.MustVariant("AnI32", match.Int(1)),
	}
	ds, err := spec.DecideEach(ctx, "optional", vs, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(ds) != 2 || ds[0].Result.Action != "nothing" || ds[1].Result.Action != "int" {
		t.Fatal(JS(ds))
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if ds, err = spec.DecideEach(cancelled, "optional", vs, nil); err == nil || len(ds) != 0 {
		t.Fatalf("expected cancellation, got %v with %d", err, len(ds))
	}
}

func TestExhaustiveness(t *testing.T) {
	ctx := context.Background()
	spec, err := OptionalSpec(ctx)
	if err != nil {
		t.Fatal(err)
	}
	// Drop the Nothing arm and add an unreachable one.
	d := spec.Decisions["optional"]
	d.Arms = []*ArmSource{
		d.Arms[0],
		{Pattern: "?", Action: "other"},
		{Pattern: map[string]interface{}{"@tag": "Nothing"}},
	}
	if err = spec.Compile(ctx, nil, false); err != nil {
		t.Fatal(err)
	}
	cov, err := spec.Exhaustiveness()
	if err != nil {
		t.Fatal(err)
	}
	if len(cov) != 2 {
		t.Fatal(JS(cov))
	}
	foobar, optional := cov[0], cov[1]
	if foobar.Decision != "foobar" || foobar.Type != "" || !foobar.Exhaustive() {
		t.Fatal(JS(foobar))
	}
	if optional.Decision != "optional" || !optional.Exhaustive() {
		t.Fatal(JS(optional))
	}
	if len(optional.Unreachable) != 1 || optional.Unreachable[0] != 2 {
		t.Fatal(JS(optional))
	}

	d.Arms = d.Arms[:1]
	if err = spec.Compile(ctx, nil, false); err != nil {
		t.Fatal(err)
	}
	if cov, err = spec.Exhaustiveness(); err != nil {
		t.Fatal(err)
	}
	if got := cov[1].Uncovered; len(got) != 1 || got[0] != "Nothing" {
		t.Fatal(JS(cov[1]))
	}
}

func TestConcurrentDecide(t *testing.T) {
	ctx := context.Background()
	spec, err := OptionalSpec(ctx)
	if err != nil {
		t.Fatal(err)
	}
	var wg sync.WaitGroup
	errs := make(chan error, 64)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			d, err := spec.Decide(ctx, "foobar", fooBar(int64(i%3), match.MustVariant("AnI32", match.Int(1))), nil)
			if err != nil {
				errs <- err
				return
			}
			want := "different"
			switch i % 3 {
			case 0:
				want = "zero"
			case 1:
				want = "same"
			}
			if d.Result.Action != want {
				errs <- errors.New("got " + d.Result.Action + " wanted " + want)
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatal(err)
	}
}
