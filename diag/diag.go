// Package diag is the diagnostic surface shared by the lexer, record parser
// and resolver: a severity-tagged message tied to a source Position, and the
// callback-based sink that the top-level Load contract (spec §6) requires.
package diag

import (
	"fmt"

	"github.com/sixfiveohtwo/dbginfo/token"
)

// Severity classifies a Diagnostic. The callback model is intrinsic to the
// load contract: a Sink sees every Warning too, even on a successful load.
type Severity int

const (
	Warning Severity = iota
	Error
	Fatal
)

func (s Severity) String() string {
	switch s {
	case Warning:
		return "warning"
	case Error:
		return "error"
	case Fatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Diagnostic is one warning/error/fatal condition raised while loading a
// debug info file.
type Diagnostic struct {
	Severity Severity
	Pos      token.Position
	Message  string
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s: %s", d.Pos, d.Severity, d.Message)
}

// Sink receives one Diagnostic at a time, in the order they are raised.
// Consumers must not assume a successful load produced zero Sink calls.
type Sink func(Diagnostic)

// List accumulates diagnostics for callers that want a post-hoc summary in
// addition to (or instead of) a live Sink; mirrors the teacher's ErrorList.
type List struct {
	Diagnostics []Diagnostic
	errorCount  int
}

// Add appends d to the list and forwards it to sink, if sink is non-nil.
// It is the single place Severity==Error is counted, so HasErrors stays
// correct regardless of call site.
func (l *List) Add(d Diagnostic, sink Sink) {
	l.Diagnostics = append(l.Diagnostics, d)
	if d.Severity == Error {
		l.errorCount++
	}
	if sink != nil {
		sink(d)
	}
}

// HasErrors reports whether any Error-severity diagnostic was recorded.
// Warnings and fatals are not counted: a Fatal diagnostic aborts the load
// before List is consulted.
func (l *List) HasErrors() bool {
	return l.errorCount > 0
}

// ErrorCount returns the number of Error-severity diagnostics recorded.
func (l *List) ErrorCount() int {
	return l.errorCount
}
