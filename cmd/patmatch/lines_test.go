package main

import (
	"io"
	"strings"
	"testing"
)

func TestScannerSource(t *testing.T) {
	src := linesFrom(strings.NewReader("1\n\n\"two\"\n"), "d")
	defer src.Close()
	if src.Interactive() {
		t.Fatal("a reader isn't a terminal")
	}
	var got []string
	for {
		line, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, line)
	}
	if strings.Join(got, "|") != `1||"two"` {
		t.Fatalf("got %q", got)
	}
}

func TestScannerSourceLongLine(t *testing.T) {
	long := `"` + strings.Repeat("x", 200*1024) + `"`
	src := linesFrom(strings.NewReader(long+"\n1\n"), "d")
	line, err := src.Next()
	if err != nil {
		t.Fatal(err)
	}
	if line != long {
		t.Fatalf("got %d bytes", len(line))
	}
	if line, err = src.Next(); err != nil || line != "1" {
		t.Fatalf("got %q %v", line, err)
	}
}
