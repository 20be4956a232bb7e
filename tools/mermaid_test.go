package tools

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

type nopCloser struct {
	io.Writer
	closed bool
}

func (c *nopCloser) Close() error {
	c.closed = true
	return nil
}

func TestMermaid(t *testing.T) {
	var (
		buf = &bytes.Buffer{}
		out = &nopCloser{Writer: buf}
	)

	if err := Mermaid(signals(t, true), out, nil); err != nil {
		t.Fatal(err)
	}
	if !out.closed {
		t.Fatal("not closed")
	}

	got := buf.String()
	for _, want := range []string{
		"graph LR",
		`n1(("go"))`,
		`["caution"]`,
		`-.->`,
		`'@tag':'Green'`,
		"style n2 fill:#bcf2db",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("no %q in\n%s", want, got)
		}
	}
}

func TestMermaidClass(t *testing.T) {
	buf := &bytes.Buffer{}
	opts := &MermaidOpts{ActionClass: "action"}
	if err := Mermaid(signals(t, false), &nopCloser{Writer: buf}, opts); err != nil {
		t.Fatal(err)
	}
	got := buf.String()
	if !strings.Contains(got, "class n2 action") || strings.Contains(got, "<pre>") {
		t.Fatal(got)
	}
}
