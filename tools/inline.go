/* Copyright 2018 Comcast Cable Communications Management, LLC
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

package tools

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"regexp"
)

var inlinePattern = regexp.MustCompile(`%inline *\("([^"]*)"\)`)

// Inline replaces '%inline("NAME")' with f(NAME).
//
// When the directive is alone on its line, every line of the
// replacement gets the directive's indentation.  That way a guard's
// code can live in its own file and still land inside a YAML block
// scalar.
func Inline(bs []byte, f func(string) ([]byte, error)) ([]byte, error) {
	var (
		acc    = make([]byte, 0, len(bs))
		cursor = 0
	)
	for _, loc := range inlinePattern.FindAllSubmatchIndex(bs, -1) {
		from, to := loc[0], loc[1]
		name := string(bs[loc[2]:loc[3]])

		replacement, err := f(name)
		if err != nil {
			return nil, err
		}

		if indent, alone := lineIndent(bs, from, to); alone {
			replacement = bytes.TrimRight(replacement, "\n")
			replacement = bytes.ReplaceAll(replacement, []byte("\n"), append([]byte("\n"), indent...))
		}

		acc = append(acc, bs[cursor:from]...)
		acc = append(acc, replacement...)
		cursor = to
	}
	acc = append(acc, bs[cursor:]...)

	return acc, nil
}

// lineIndent returns the whitespace that precedes bs[from:to] on its
// line and whether that span is otherwise alone on the line.
func lineIndent(bs []byte, from, to int) ([]byte, bool) {
	start := bytes.LastIndexByte(bs[:from], '\n') + 1
	indent := bs[start:from]
	if len(bytes.TrimLeft(indent, " \t")) != 0 {
		return nil, false
	}
	rest := bs[to:]
	if end := bytes.IndexByte(rest, '\n'); 0 <= end {
		rest = rest[:end]
	}
	if len(bytes.TrimSpace(rest)) != 0 {
		return nil, false
	}
	return indent, true
}

func dirReader(dir string) func(string) ([]byte, error) {
	return func(name string) ([]byte, error) {
		return os.ReadFile(filepath.Join(dir, name))
	}
}

// ReadFileWithInlines is a replacement for os.ReadFile that adds
// automatic Inline()ing based on the directory obtained from the
// filename.
//
// '%inline("NAME")' is replaced with ReadFile(NAME).
func ReadFileWithInlines(filename string) ([]byte, error) {
	bs, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return Inline(bs, dirReader(filepath.Dir(filename)))
}

// ReadAllWithInlines is a replacement for io.ReadAll that adds
// automatic Inline()ing based on the given directory.
func ReadAllWithInlines(in io.Reader, dir string) ([]byte, error) {
	bs, err := io.ReadAll(in)
	if err != nil {
		return nil, err
	}
	return Inline(bs, dirReader(dir))
}
