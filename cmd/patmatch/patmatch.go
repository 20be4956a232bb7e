/* Copyright 2018-2019 Comcast Cable Communications Management, LLC
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

// Package main is a little command-line utility to invoke pattern matching.
//
// Match a single pattern:
//
//	patmatch -p '{"likes":"?liked","@rest":true}' -v '{"likes":["tacos","chips"],"n":1}'
//
// Run a decision from a table for each value (one JSON value per
// line) on stdin.  When stdin is a terminal, you get a prompt:
//
//	patmatch -s specs/signals.yaml -d go < values.json
//
// Report coverage or render a table:
//
//	patmatch -s specs/signals.yaml -x
//	patmatch -s specs/signals.yaml -mermaid > signals.mermaid
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/Comcast/matchbox/core"
	"github.com/Comcast/matchbox/interpreters"
	"github.com/Comcast/matchbox/interpreters/ecmascript"
	"github.com/Comcast/matchbox/match"
	"github.com/Comcast/matchbox/tools"

	"github.com/mattn/go-isatty"
)

func main() {
	pretty := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	if err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, pretty); err != nil {
		log.Fatal(err)
	}
}

type opts struct {
	specFile, decision, valueJS, patternJS, propsJS, wantJS, libDir string

	analyze, html, mermaid, dot bool

	bench int
}

func parseFlags(args []string) (*opts, error) {
	var (
		o  opts
		fs = flag.NewFlagSet("patmatch", flag.ContinueOnError)
	)

	fs.StringVar(&o.specFile, "s", "", "spec filename (YAML or JSON)")
	fs.StringVar(&o.decision, "d", "", "decision in the spec")
	fs.StringVar(&o.valueJS, "v", "", "value in JSON (otherwise read one per line from stdin)")
	fs.StringVar(&o.patternJS, "p", "", "pattern in JSON")
	fs.StringVar(&o.propsJS, "props", "", "guard properties in JSON")
	fs.StringVar(&o.wantJS, "w", "", "wanted bindings in JSON (with -p)")
	fs.StringVar(&o.libDir, "i", ".", "directory for guard libraries")
	fs.BoolVar(&o.analyze, "x", false, "report analysis and coverage")
	fs.BoolVar(&o.html, "html", false, "render the spec as HTML")
	fs.BoolVar(&o.mermaid, "mermaid", false, "render the spec as Mermaid")
	fs.BoolVar(&o.dot, "dot", false, "render the spec as Graphviz dot")
	fs.IntVar(&o.bench, "bench", 0, "number of times to run (and report time)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if o.patternJS == "" && o.specFile == "" {
		return nil, errors.New("need a pattern (-p) or a spec (-s)")
	}
	if o.patternJS != "" && o.specFile != "" {
		return nil, errors.New("-p and -s don't mix")
	}

	return &o, nil
}

type printer struct {
	out    io.Writer
	pretty bool
}

func (p *printer) print(x interface{}) error {
	var (
		js  []byte
		err error
	)
	if p.pretty {
		js, err = json.MarshalIndent(x, "", "  ")
	} else {
		js, err = json.Marshal(x)
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(p.out, "%s\n", js)
	return err
}

type closer struct {
	io.Writer
}

func (c *closer) Close() error {
	return nil
}

func run(ctx context.Context, args []string, in io.Reader, out io.Writer, pretty bool) error {
	o, err := parseFlags(args)
	if err != nil {
		return err
	}

	p := &printer{
		out:    out,
		pretty: pretty,
	}

	if o.patternJS != "" {
		return runPattern(o, p)
	}

	specSrc, err := tools.ReadFileWithInlines(o.specFile)
	if err != nil {
		return err
	}
	spec, err := core.ParseSpec(specSrc)
	if err != nil {
		return err
	}
	interps := interpreters.Standard(ecmascript.MakeFileLibraryProvider(o.libDir))
	if err = spec.Compile(ctx, interps, true); err != nil {
		return err
	}

	switch {
	case o.analyze:
		a, err := tools.Analyze(spec)
		if err != nil {
			return err
		}
		return p.print(a)
	case o.html:
		return tools.RenderSpecPage(spec, out, nil, false)
	case o.mermaid:
		return tools.Mermaid(spec, &closer{out}, nil)
	case o.dot:
		return tools.Dot(spec, out, nil)
	}

	if o.decision == "" {
		return errors.New("need a decision (-d)")
	}

	var props core.Props
	if o.propsJS != "" {
		if err = json.Unmarshal([]byte(o.propsJS), &props); err != nil {
			return err
		}
	}

	decide := func(js []byte) error {
		v, err := match.ParseValueJSON(js)
		if err != nil {
			return err
		}
		if 0 < o.bench {
			if err = bench(o.bench, func() error {
				_, err := spec.Decide(ctx, o.decision, v, props)
				return err
			}); err != nil {
				return err
			}
		}
		d, err := spec.Decide(ctx, o.decision, v, props)
		if err != nil {
			return err
		}
		return p.print(d.Result)
	}

	if o.valueJS != "" {
		return decide([]byte(o.valueJS))
	}

	lines := linesFrom(in, o.decision)
	defer lines.Close()
	for {
		line, err := lines.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		if err = decide([]byte(line)); err != nil {
			if !lines.Interactive() {
				return err
			}
			fmt.Fprintf(out, "error: %v\n", err)
		}
	}
}

func runPattern(o *opts, p *printer) error {
	pat, err := match.ParsePatternJSON([]byte(o.patternJS))
	if err != nil {
		return err
	}
	if o.valueJS == "" {
		return errors.New("need a value (-v)")
	}
	v, err := match.ParseValueJSON([]byte(o.valueJS))
	if err != nil {
		return err
	}

	if 0 < o.bench {
		if err = bench(o.bench, func() error {
			match.Match(pat, v)
			return nil
		}); err != nil {
			return err
		}
	}

	bs, matched := match.Match(pat, v)

	if o.wantJS != "" {
		x, err := match.DecodeJSON(strings.NewReader(o.wantJS))
		if err != nil {
			return err
		}
		m, is := x.(map[string]interface{})
		if !is {
			return errors.New("wanted bindings should be a JSON object")
		}
		want := make(match.Bindings, len(m))
		for name, y := range m {
			if want[name], err = match.ParseValue(y); err != nil {
				return err
			}
		}
		return p.print(matched && sameBindings(want, bs))
	}

	if !matched {
		return p.print(nil)
	}
	return p.print(bs)
}

func sameBindings(x, y match.Bindings) bool {
	if len(x) != len(y) {
		return false
	}
	for name, v := range x {
		if !match.Equal(v, y[name]) {
			return false
		}
	}
	return true
}

func bench(n int, f func() error) error {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	allocs := stats.TotalAlloc
	then := time.Now()
	for i := 0; i < n; i++ {
		if err := f(); err != nil {
			return err
		}
	}
	elapsed := time.Now().Sub(then)
	meanNanos := elapsed.Nanoseconds() / int64(n)

	runtime.ReadMemStats(&stats)
	allocated := (stats.TotalAlloc - allocs) / uint64(n)

	log.Printf("%d iterations, %d mean ns/op, %d mean bytes allocated per op", n, meanNanos, allocated)
	return nil
}
