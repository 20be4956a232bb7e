// Package util has a few small things that don't have a better home.
package util

import "log"

// Logger is a log.Printf that can be switched off.
//
// The zero value (and a nil Logger) logs nothing.
type Logger struct {
	// Prefix goes in front of every format.
	Prefix string

	// Enabled, when false, makes Logf do nothing.
	Enabled bool
}

// Logf calls log.Printf if the Logger is enabled.
func (l *Logger) Logf(format string, args ...interface{}) {
	if l == nil || !l.Enabled {
		return
	}
	log.Printf(l.Prefix+format, args...)
}
