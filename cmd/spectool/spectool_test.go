package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Comcast/matchbox/core"
	"github.com/Comcast/matchbox/match"
	"github.com/Comcast/matchbox/tools"

	"github.com/stretchr/testify/require"
)

func runTool(t *testing.T, in string, args ...string) (string, string) {
	var out, errOut bytes.Buffer
	require.NoError(t, run(args, strings.NewReader(in), &out, &errOut))
	return out.String(), errOut.String()
}

func lights(t *testing.T) string {
	bs, err := os.ReadFile("testdata/lights.yaml")
	require.NoError(t, err)
	return string(bs)
}

func TestYAMLToJSONAndBack(t *testing.T) {
	js, _ := runTool(t, lights(t), "yamltojson")
	require.Contains(t, js, `"name":"lights"`)

	pretty, _ := runTool(t, lights(t), "yamltojson", "-p")
	require.Contains(t, pretty, "\n  \"name\": \"lights\"")

	y, _ := runTool(t, js, "jsontoyaml")
	s, err := core.ParseSpec([]byte(y))
	require.NoError(t, err)
	require.Equal(t, "lights", s.Name)
	require.Len(t, s.Decisions["go"].Arms, 2)
}

func TestAddMissingArms(t *testing.T) {
	y, diag := runTool(t, lights(t), "addMissingArms", "-a", "todo-")
	require.Contains(t, diag, "added 4 arms")

	s, err := core.ParseSpec([]byte(y))
	require.NoError(t, err)
	require.NoError(t, compileWithoutGuards(s))
	a, err := tools.Analyze(s)
	require.NoError(t, err)
	require.Empty(t, a.Uncovered)
	require.Contains(t, a.Actions, "todo-Flashing")
	require.Contains(t, a.Actions, "todo-false")

	d, err := s.Decide(context.Background(), "go", match.Unit("Red"), nil)
	require.NoError(t, err)
	require.Equal(t, "todo-Red", d.Result.Action)
}

func TestAddMissingArmsErrors(t *testing.T) {
	var out, errOut bytes.Buffer
	err := run([]string{"addMissingArms", "-d", "pair"}, strings.NewReader(lights(t)), &out, &errOut)
	require.Equal(t, NotTyped, err)
	err = run([]string{"addMissingArms", "-d", "nope"}, strings.NewReader(lights(t)), &out, &errOut)
	require.Equal(t, NoDecision, err)
}

func TestAddCatchAll(t *testing.T) {
	y, _ := runTool(t, lights(t), "addCatchAll", "-a", "ignore")
	s, err := core.ParseSpec([]byte(y))
	require.NoError(t, err)
	for _, name := range []string{"go", "power", "pair"} {
		arms := s.Decisions[name].Arms
		require.Equal(t, "ignore", arms[len(arms)-1].Action, name)
	}
	require.Contains(t, s.Doc, "AddCatchAll")

	// Again doesn't add more.
	again, _ := runTool(t, y, "addCatchAll", "-a", "ignore")
	s2, err := core.ParseSpec([]byte(again))
	require.NoError(t, err)
	require.Len(t, s2.Decisions["go"].Arms, len(s.Decisions["go"].Arms))
}

func TestSetId(t *testing.T) {
	y, _ := runTool(t, lights(t), "setId")
	s, err := core.ParseSpec([]byte(y))
	require.NoError(t, err)
	require.NotEmpty(t, s.Id)
}

func TestAnalyzeAndGraph(t *testing.T) {
	_, diag := runTool(t, lights(t), "analyze")
	require.Contains(t, diag, "uncovered")

	filename := filepath.Join(t.TempDir(), "g.dot")
	runTool(t, lights(t), "graph", "-o", filename)
	bs, err := os.ReadFile(filename)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(bs), "digraph G {"))
}

func TestBadSubcommands(t *testing.T) {
	for _, args := range [][]string{
		{},
		{"nope"},
		{"yamltojson", "-x"},
		{"addCatchAll", "-bogus"},
	} {
		var out, errOut bytes.Buffer
		require.Error(t, run(args, strings.NewReader(""), &out, &errOut), "%v", args)
	}
}

func TestYAMLToJSONKeepsFloats(t *testing.T) {
	src := `
decisions:
  d:
    arms:
      - pattern: 2.0
        action: float
      - pattern: 2
        action: int
`
	js, _ := runTool(t, src, "yamltojson")
	require.Contains(t, js, `"pattern":2.0`)

	for _, bs := range []string{src, js} {
		s, err := core.ParseSpec([]byte(bs))
		require.NoError(t, err)
		require.NoError(t, s.Compile(context.Background(), nil, true))

		d, err := s.Decide(context.Background(), "d", match.Float(2), nil)
		require.NoError(t, err)
		require.Equal(t, "float", d.Result.Action, bs)

		d, err = s.Decide(context.Background(), "d", match.Int(2), nil)
		require.NoError(t, err)
		require.Equal(t, "int", d.Result.Action, bs)
	}
}
