// Package main is a tool for converting and modifying decision
// tables.
//
//	spectool yamltojson -p < signals.yaml
//	spectool addMissingArms -a todo < signals.yaml > signals-full.yaml
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/Comcast/matchbox/core"
	"github.com/Comcast/matchbox/tools"

	"github.com/jsccast/yaml"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// readSpec reads a spec from in, expanding any %inline directives
// relative to the current directory.
func readSpec(in io.Reader) (*core.Spec, error) {
	bs, err := tools.ReadAllWithInlines(in, ".")
	if err != nil {
		return nil, err
	}
	if len(bs) == 0 {
		bs = []byte(DefaultSpecYAML)
	}
	return core.ParseSpec(bs)
}

func run(args []string, in io.Reader, out, errOut io.Writer) error {

	if len(args) < 1 {
		Usage(errOut)
		return fmt.Errorf("need a subcommand")
	}

	switch args[0] {
	case "yamltojson":
		pretty := false

		switch len(args) {
		case 1:
		case 2:
			if args[1] != "-p" {
				return fmt.Errorf("unsupported args: %v", args[1:])
			}
			pretty = true
		default:
			return fmt.Errorf("unsupported args: %v", args[1:])
		}

		s, err := readSpec(in)
		if err != nil {
			return err
		}

		var bs []byte
		if pretty {
			bs, err = json.MarshalIndent(&s, "", "  ")
		} else {
			bs, err = json.Marshal(&s)
		}
		if err != nil {
			return err
		}

		_, err = fmt.Fprintf(out, "%s\n", bs)
		return err

	case "jsontoyaml":

		bs, err := io.ReadAll(in)
		if err != nil {
			return err
		}

		var s *core.Spec

		if err = json.Unmarshal(bs, &s); err != nil {
			return err
		}

		if bs, err = yaml.Marshal(&s); err != nil {
			return err
		}

		_, err = out.Write(bs)
		return err

	default:

		mod, have := Mods[args[0]]
		if !have {
			Usage(errOut)
			return fmt.Errorf("unknown subcommand \"%s\"", args[0])
		}

		fs := mod.Flags()
		fs.SetOutput(errOut)
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}

		s, err := readSpec(in)
		if err != nil {
			return err
		}

		if err := mod.F(s, errOut); err != nil {
			return err
		}

		bs, err := yaml.Marshal(&s)
		if err != nil {
			return err
		}

		_, err = out.Write(bs)
		return err
	}
}

func Usage(w io.Writer) {
	fmt.Fprintf(w, "Subcommands:\n\n")
	names := make([]string, 0, len(Mods))
	for name := range Mods {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		mod := Mods[name]
		fs := mod.Flags()
		fs.SetOutput(w)
		fmt.Fprintf(w, "Usage of %s:\n", name)
		fs.PrintDefaults()
		fmt.Fprintln(w, "  "+mod.Doc())
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "Usage of yamltojson:\n")
	fmt.Fprintf(w, "  -p    pretty-print\n\n")
	fmt.Fprintf(w, "Usage of jsontoyaml: (no arguments)\n\n")
}

var DefaultSpecYAML = `decisions: {}
`
