// Package dbginfo is the top-level entry point: Load reads a cc65-style
// debug information file end to end — lex, parse every record line,
// resolve the cross-reference graph, build the query indices — and hands
// back a State a caller queries through package query.
package dbginfo

import (
	"errors"
	"fmt"
	"os"

	"github.com/sixfiveohtwo/dbginfo/database"
	"github.com/sixfiveohtwo/dbginfo/diag"
	"github.com/sixfiveohtwo/dbginfo/query"
	"github.com/sixfiveohtwo/dbginfo/record"
	"github.com/sixfiveohtwo/dbginfo/resolver"
	"github.com/sixfiveohtwo/dbginfo/token"
)

// FormatMajor and FormatMinor are the debug info format version this
// package implements; see VersionPolicy for how a file's own version
// interacts with them.
const (
	FormatMajor = 2
	FormatMinor = 0
)

// VersionPolicy controls how Load reacts to a file whose version does not
// exactly match FormatMajor/FormatMinor.
type VersionPolicy struct {
	// AcceptNewerMinor allows a file with MajorVersion == FormatMajor and
	// MinorVersion > FormatMinor to load with a warning instead of
	// failing outright. Default true, matching the reference loader.
	AcceptNewerMinor bool
	// AcceptNewerMajor allows a file with MajorVersion > FormatMajor to
	// attempt a load (with a warning) instead of refusing immediately.
	// Default true, matching the reference loader's "will proceed but
	// probably fail" behavior.
	AcceptNewerMajor bool
}

// DefaultVersionPolicy matches the reference implementation's behavior.
func DefaultVersionPolicy() VersionPolicy {
	return VersionPolicy{AcceptNewerMinor: true, AcceptNewerMajor: true}
}

// State is a fully loaded, resolved debug info file: a frozen Database
// plus a ready-to-use Q over it.
type State struct {
	DB    *database.Database
	Query query.Q
}

// Load reads and resolves the debug info file at path, reporting every
// diagnostic raised along the way to sink (sink may be nil). A fatal
// condition stops Load at once: the file could not be opened, it is
// missing the mandatory leading version record, or its major version is
// older than this package supports. Load also returns an error, with no
// State, when policy rejects a newer version or when parsing or
// resolution raised any Error-severity diagnostic (bad ids, missing
// attributes); every diagnostic that explains why was already delivered
// to sink before Load returns.
func Load(path string, sink diag.Sink, policy VersionPolicy) (*State, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		msg := fmt.Sprintf("cannot open input file %q: %s", path, err)
		emit(sink, diag.Fatal, token.Position{File: path}, msg)
		return nil, errors.New(msg)
	}

	var errCount int
	countingSink := func(d diag.Diagnostic) {
		if d.Severity == diag.Error {
			errCount++
		}
		if sink != nil {
			sink(d)
		}
	}

	lx := token.NewLexer(src, path, countingSink)
	p := record.NewParser(lx, path, countingSink)

	if p.NextLineKind() != token.KwVersion {
		msg := "\"version\" keyword missing in first line - this is not a valid debug info file"
		emit(sink, diag.Fatal, token.Position{File: path}, msg)
		return nil, errors.New(msg)
	}

	major, minor, ok := p.ParseVersion()
	if !ok {
		return nil, errors.New("malformed version record")
	}

	switch {
	case major < FormatMajor:
		msg := fmt.Sprintf(
			"this is an old version of the debug info format that is no longer "+
				"supported. version found = %d.%d, version supported = %d.%d",
			major, minor, FormatMajor, FormatMinor)
		emit(sink, diag.Fatal, token.Position{File: path}, msg)
		return nil, errors.New(msg)

	case major == FormatMajor && minor > FormatMinor:
		if !policy.AcceptNewerMinor {
			msg := fmt.Sprintf(
				"debug info format minor version %d.%d is newer than supported %d.%d",
				major, minor, FormatMajor, FormatMinor)
			emit(sink, diag.Error, token.Position{File: path}, msg)
			return nil, errors.New(msg)
		}
		emit(sink, diag.Warning, token.Position{File: path}, fmt.Sprintf(
			"this is a slightly newer version of the debug info format. it might "+
				"work, but you may get errors about unknown keywords. version found "+
				"= %d.%d, version supported = %d.%d", major, minor, FormatMajor, FormatMinor))

	case major > FormatMajor:
		if !policy.AcceptNewerMajor {
			msg := fmt.Sprintf(
				"debug info format major version %d is newer than supported %d",
				major, FormatMajor)
			emit(sink, diag.Error, token.Position{File: path}, msg)
			return nil, errors.New(msg)
		}
		emit(sink, diag.Warning, token.Position{File: path}, fmt.Sprintf(
			"the format of this debug info file is newer than what we know. "+
				"will proceed but probably fail. version found = %d.%d, version "+
				"supported = %d.%d", major, minor, FormatMajor, FormatMinor))
	}

	p.SkipRestOfLine()

	db := &database.Database{}

	for !p.AtEOF() {
		kind := p.NextLineKind()
		if p.AtEOF() {
			break
		}
		switch kind {
		case token.KwFile:
			if f, ok := p.ParseFile(); ok {
				db.PutFile(f)
			}
		case token.KwInfo:
			if h, ok := p.ParseInfo(); ok {
				db.GrowCapacityHints(h.File, h.Lib, h.Line, h.Module, h.Scope, h.Segment, h.Span, h.Sym)
			}
		case token.KwLib:
			if l, ok := p.ParseLibrary(); ok {
				db.PutLibrary(l)
			}
		case token.KwLine:
			if l, ok := p.ParseLine(); ok {
				db.PutLine(l)
			}
		case token.KwMod:
			if m, ok := p.ParseModule(); ok {
				db.PutModule(m)
			}
		case token.KwScope:
			if s, ok := p.ParseScope(); ok {
				db.PutScope(s)
			}
		case token.KwSeg:
			if s, ok := p.ParseSegment(); ok {
				db.PutSegment(s)
			}
		case token.KwSpan:
			if s, ok := p.ParseSpan(); ok {
				db.PutSpan(s)
			}
		case token.KwSym:
			if s, ok := p.ParseSym(); ok {
				db.PutSymbol(s)
			}
		case token.Ident:
			emit(sink, diag.Warning, token.Position{File: path}, "unknown keyword - skipping")
			p.SkipRestOfLine()
			continue
		default:
			emit(sink, diag.Error, token.Position{File: path}, "unexpected record keyword")
			p.SkipRestOfLine()
			continue
		}
		p.SkipRestOfLine()
	}

	if errCount > 0 {
		return nil, fmt.Errorf("%d error(s) while parsing %s", errCount, path)
	}

	resolveErrs := resolver.Resolve(db, countingSink)
	if resolveErrs > 0 {
		return nil, fmt.Errorf("%d error(s) while resolving %s", resolveErrs, path)
	}

	return &State{DB: db, Query: query.New(db)}, nil
}

func emit(sink diag.Sink, sev diag.Severity, pos token.Position, msg string) {
	if sink != nil {
		sink(diag.Diagnostic{Severity: sev, Pos: pos, Message: msg})
	}
}
