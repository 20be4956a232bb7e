package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/peterh/liner"
)

// maxLine is the longest input line (one JSON value) we'll read.
const maxLine = 64 << 20

// lineSource gives one input line per call and io.EOF at the end.
type lineSource interface {
	Next() (string, error)
	Close() error

	// Interactive sources report bad input and keep going.
	Interactive() bool
}

type scannerSource struct {
	s *bufio.Scanner
}

func (s *scannerSource) Next() (string, error) {
	if s.s.Scan() {
		return s.s.Text(), nil
	}
	if err := s.s.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

func (s *scannerSource) Close() error      { return nil }
func (s *scannerSource) Interactive() bool { return false }

// promptSource reads values at a prompt with line editing and
// history.
type promptSource struct {
	ln     *liner.State
	prompt string
}

func newPromptSource(prompt string) *promptSource {
	ln := liner.NewLiner()
	ln.SetCtrlCAborts(true)
	return &promptSource{
		ln:     ln,
		prompt: prompt,
	}
}

func (s *promptSource) Next() (string, error) {
	line, err := s.ln.Prompt(s.prompt)
	if errors.Is(err, liner.ErrPromptAborted) {
		return "", io.EOF
	}
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(line) != "" {
		s.ln.AppendHistory(line)
	}
	return line, nil
}

func (s *promptSource) Close() error      { return s.ln.Close() }
func (s *promptSource) Interactive() bool { return true }

// linesFrom prompts when in is a terminal and otherwise just scans.
func linesFrom(in io.Reader, decision string) lineSource {
	if f, is := in.(*os.File); is && isatty.IsTerminal(f.Fd()) {
		return newPromptSource(fmt.Sprintf("%s> ", decision))
	}
	s := bufio.NewScanner(in)
	s.Buffer(make([]byte, 64*1024), maxLine)
	return &scannerSource{s}
}
