package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/Comcast/matchbox/core"
	"github.com/Comcast/matchbox/interpreters/noop"
	"github.com/Comcast/matchbox/match"
	"github.com/Comcast/matchbox/tools"

	"github.com/jsccast/yaml"
)

var Mods = map[string]Mod{
	"addCatchAll":    &AddCatchAllMod{},
	"addMissingArms": &AddMissingArmsMod{},
	"setId":          &SetIdMod{},
	"analyze":        &Analyzer{},
	"graph":          &Grapher{},
}

var (
	NoDecision = errors.New("no such decision")
	NotTyped   = errors.New("decision has no type")
)

// Mod is a modification (or inspection) of a Spec.
type Mod interface {
	// F can write diagnostics to the given Writer.
	F(*core.Spec, io.Writer) error
	Doc() string
	Flags() *flag.FlagSet
}

// decisions returns the named decision or all decisions if name is
// empty.
func decisions(s *core.Spec, name string) ([]string, error) {
	if name == "" {
		return s.DecisionNames(), nil
	}
	if _, have := s.Decisions[name]; !have {
		return nil, NoDecision
	}
	return []string{name}, nil
}

// compileWithoutGuards compiles the Spec with guards that all use
// the noop interpreter.  We only need the patterns.
func compileWithoutGuards(s *core.Spec) error {
	n := &noop.Interpreter{Silent: true}
	is := make(map[string]core.Interpreter)
	for _, d := range s.Decisions {
		if d == nil {
			continue
		}
		for _, a := range d.Arms {
			if a != nil && a.GuardSource != nil {
				is[a.GuardSource.Interpreter] = n
			}
		}
	}
	return s.Compile(context.Background(), is, true)
}

// AddCatchAll appends an unguarded wildcard arm with the given action
// to each named Decision that doesn't already end with one.
//
// The Spec's Doc is updated to note that this processing has
// occurred.
func AddCatchAll(s *core.Spec, decision, action string) error {
	names, err := decisions(s, decision)
	if err != nil {
		return err
	}
	if err = compileWithoutGuards(s); err != nil {
		return err
	}

	for _, name := range names {
		d := s.Decisions[name]
		arms := d.MatchSet()
		if 0 < len(arms) {
			last := arms[len(arms)-1]
			if last != nil && !last.Guarded() {
				if _, is := last.Pattern().(*match.Wildcard); is {
					continue
				}
			}
		}
		d.Arms = append(d.Arms, &core.ArmSource{
			Doc:     "Added catch-all.",
			Pattern: "?",
			Action:  action,
		})
	}

	s.Doc = s.Doc + fmt.Sprintf(`

This spec has been processed by AddCatchAll with action "%s".
`, action)

	return nil
}

type AddCatchAllMod struct {
	Decision string
	Action   string
}

func (c *AddCatchAllMod) Doc() string {
	return `Adds a catch-all arm with the given action to decisions.`
}

func (c *AddCatchAllMod) Flags() *flag.FlagSet {
	flags := flag.NewFlagSet("addCatchAll", flag.ContinueOnError)

	flags.StringVar(&c.Decision, "d", "", "decision (all if empty)")
	flags.StringVar(&c.Action, "a", "default", "action")

	return flags
}

func (c *AddCatchAllMod) F(s *core.Spec, w io.Writer) error {
	return AddCatchAll(s, c.Decision, c.Action)
}

// AddMissingArms appends an arm for each case of a typed Decision's
// type that no unguarded arm covers.  Arm actions are the given
// prefix plus the case.
func AddMissingArms(s *core.Spec, decision, prefix string) (int, error) {
	names, err := decisions(s, decision)
	if err != nil {
		return 0, err
	}
	if err = compileWithoutGuards(s); err != nil {
		return 0, err
	}
	cov, err := s.Exhaustiveness()
	if err != nil {
		return 0, err
	}
	uncovered := make(map[string][]string, len(cov))
	for _, c := range cov {
		uncovered[c.Decision] = c.Uncovered
	}

	added := 0
	for _, name := range names {
		d := s.Decisions[name]
		if d.Type == "" {
			if decision != "" {
				return 0, NotTyped
			}
			continue
		}
		t := s.Types[d.Type]
		for _, c := range uncovered[name] {
			var pattern interface{}
			if t.Bool {
				pattern = map[string]interface{}{match.LitKey: c == "true"}
			} else {
				p := map[string]interface{}{match.TagKey: c}
				for _, tag := range t.Tags {
					if tag.Name == c && tag.Payload {
						p[match.PayloadKey] = "?"
					}
				}
				pattern = p
			}
			d.Arms = append(d.Arms, &core.ArmSource{
				Pattern: pattern,
				Action:  prefix + c,
			})
			added++
		}
	}

	return added, nil
}

type AddMissingArmsMod struct {
	Decision string
	Prefix   string
}

func (c *AddMissingArmsMod) Doc() string {
	return `Adds arms for the cases of a decision's type that no arm covers.`
}

func (c *AddMissingArmsMod) Flags() *flag.FlagSet {
	flags := flag.NewFlagSet("addMissingArms", flag.ContinueOnError)

	flags.StringVar(&c.Decision, "d", "", "decision (all if empty)")
	flags.StringVar(&c.Prefix, "a", "", "prefix for actions")

	return flags
}

func (c *AddMissingArmsMod) F(s *core.Spec, w io.Writer) error {
	n, err := AddMissingArms(s, c.Decision, c.Prefix)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "added %d arms\n", n)
	return nil
}

type SetIdMod struct {
}

func (m *SetIdMod) F(s *core.Spec, w io.Writer) error {
	_, err := s.SetId()
	return err
}

func (m *SetIdMod) Doc() string {
	return "Sets the spec's id to the hash of its content."
}

func (m *SetIdMod) Flags() *flag.FlagSet {
	return flag.NewFlagSet("setId", flag.ContinueOnError)
}

type Analyzer struct {
}

func (m *Analyzer) F(s *core.Spec, w io.Writer) error {
	if err := compileWithoutGuards(s); err != nil {
		return err
	}
	a, err := tools.Analyze(s)
	if err != nil {
		return err
	}
	bs, err := yaml.Marshal(&a)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s\n", bs)

	return nil
}

func (m *Analyzer) Doc() string {
	return "Writes an analysis to stderr."
}

func (m *Analyzer) Flags() *flag.FlagSet {
	return flag.NewFlagSet("analyze", flag.ContinueOnError)
}

type Grapher struct {
	OutputFilename string
}

func (m *Grapher) F(s *core.Spec, w io.Writer) error {
	f, err := os.Create(m.OutputFilename)
	if err != nil {
		return err
	}
	if err = tools.Dot(s, f, nil); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (m *Grapher) Doc() string {
	return "Writes a Graphviz dot file."
}

func (m *Grapher) Flags() *flag.FlagSet {
	fs := flag.NewFlagSet("graph", flag.ContinueOnError)
	fs.StringVar(&m.OutputFilename, "o", "spec.dot", "output filename")
	return fs
}
