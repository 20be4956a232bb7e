package tools

import (
	"context"
	"testing"

	"github.com/Comcast/matchbox/core"
	"github.com/Comcast/matchbox/interpreters"
)

func signals(t *testing.T, compile bool) *core.Spec {
	bs, err := ReadFileWithInlines("testdata/signals.yaml")
	if err != nil {
		t.Fatal(err)
	}
	spec, err := core.ParseSpec(bs)
	if err != nil {
		t.Fatal(err)
	}
	if compile {
		if err = spec.Compile(context.Background(), interpreters.Standard(nil), true); err != nil {
			t.Fatal(err)
		}
	}
	return spec
}
