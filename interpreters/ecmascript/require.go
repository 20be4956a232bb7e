package ecmascript

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/parser"
)

// LibraryProvider resolves a library name to ECMAScript source.
type LibraryProvider func(ctx context.Context, name string) (string, error)

// MakeFileLibraryProvider resolves names of the form "file://NAME"
// relative to the given directory.
func MakeFileLibraryProvider(dir string) LibraryProvider {
	return func(ctx context.Context, name string) (string, error) {
		parts := strings.SplitN(name, "://", 2)
		if 2 != len(parts) {
			return "", fmt.Errorf("bad link '%s'", name)
		}
		if parts[0] != "file" {
			return "", fmt.Errorf("unknown protocol '%s'", parts[0])
		}
		filename := filepath.Clean("/" + parts[1])
		bs, err := os.ReadFile(filepath.Join(dir, filename))
		if err != nil {
			return "", err
		}
		return string(bs), nil
	}
}

// MakeMapLibraryProvider resolves names using the given map.
func MakeMapLibraryProvider(srcs map[string]string) LibraryProvider {
	return func(ctx context.Context, name string) (string, error) {
		src, have := srcs[name]
		if !have {
			return "", fmt.Errorf("undefined library '%s'", name)
		}
		return src, nil
	}
}

func mightRequire(src string) bool {
	return strings.Contains(src, "require(")
}

// requireHeader lets us parse guard code, which is a function body
// that can use 'return'.
const requireHeader = "function guard() {\n"

// InlineRequires replaces top-level require("NAME") statements in
// guard code with the source that the provider gives for NAME.
//
// Inlining happens before compilation so that guards (and their
// libraries) can be precompiled.
func InlineRequires(ctx context.Context, src string, provider LibraryProvider) (string, error) {

	p, err := parser.ParseFile(nil, "", requireHeader+src+"\n}", 0)
	if err != nil {
		return "", err
	}
	if len(p.Body) != 1 {
		return "", fmt.Errorf("unexpected guard structure")
	}
	fd, is := p.Body[0].(*ast.FunctionDeclaration)
	if !is || fd.Function == nil || fd.Function.Body == nil {
		return "", fmt.Errorf("unexpected guard structure")
	}

	type required struct {
		from, to int
		name     string
	}

	var (
		requires = make([]required, 0, 8)
		offset   = len(requireHeader) + 1 // file.Idx is 1-based
	)

	for _, s := range fd.Function.Body.List {
		exps, is := s.(*ast.ExpressionStatement)
		if !is {
			continue
		}

		call, is := exps.Expression.(*ast.CallExpression)
		if !is {
			continue
		}

		id, is := call.Callee.(*ast.Identifier)
		if !is || id.Name != "require" {
			continue
		}
		if len(call.ArgumentList) != 1 {
			return "", fmt.Errorf("bad require args: %#v", call.ArgumentList)
		}

		lit, is := call.ArgumentList[0].(*ast.StringLiteral)
		if !is {
			return "", fmt.Errorf("bad require arg: %#v", call.ArgumentList[0])
		}

		requires = append(requires, required{
			from: int(exps.Idx0()) - offset,
			to:   int(exps.Idx1()) - offset,
			name: string(lit.Value),
		})
	}

	if len(requires) == 0 {
		return src, nil
	}

	var (
		acc    strings.Builder
		cursor int
	)
	for _, r := range requires {
		if r.from < cursor || len(src) < r.to {
			return "", fmt.Errorf("can't locate require(%q)", r.name)
		}
		lib, err := provider(ctx, r.name)
		if err != nil {
			return "", err
		}
		acc.WriteString(src[cursor:r.from])
		acc.WriteString(lib)
		acc.WriteString("\n")
		cursor = r.to
	}
	acc.WriteString(src[cursor:])

	return acc.String(), nil
}
