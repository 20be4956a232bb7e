// Package matchbox provides decision tables built on a structural
// pattern matcher.
//
// The matcher itself is in package 'match'.  Package 'core' wraps
// it in named, versioned tables (Specs) with guards written in
// pluggable languages.  Some command-line tools are in `cmd`.
package matchbox
