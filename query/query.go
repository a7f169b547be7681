// Package query is the read-only surface over a resolved database.Database.
// Every function here returns record values, never pointers into the
// Database. The slice-valued fields of a returned record (File.ModuleIDs,
// Module.Files, Span.Lines and the like) are not copied: they share their
// backing arrays with the Database.
package query

import (
	"sort"

	"github.com/sixfiveohtwo/dbginfo/database"
)

// Q wraps a resolved Database with the query operations spec callers need.
// It holds no state of its own beyond the pointer; all of its methods are
// safe for concurrent use since the Database they read is frozen after
// resolution.
type Q struct {
	db *database.Database
}

// New wraps db for querying. db must already be resolved.
func New(db *database.Database) Q {
	return Q{db: db}
}

// FileByID returns the File with the given id and true, or the zero File
// and false if id is out of range.
func (q Q) FileByID(id database.ID) (database.File, bool) {
	if int(id) >= len(q.db.Files) {
		return database.File{}, false
	}
	return q.db.Files[id], true
}

// FileByName returns the File matching name, preferring (on ties) the
// entry with the oldest MTime then the smallest Size, per FilesByName's
// ascending sort order.
func (q Q) FileByName(name string) (database.File, bool) {
	i := sort.Search(len(q.db.FilesByName), func(i int) bool {
		return q.db.Files[q.db.FilesByName[i]].Name >= name
	})
	if i < len(q.db.FilesByName) && q.db.Files[q.db.FilesByName[i]].Name == name {
		return q.db.Files[q.db.FilesByName[i]], true
	}
	return database.File{}, false
}

// ModuleByID returns the Module with the given id and true, or the zero
// Module and false if id is out of range.
func (q Q) ModuleByID(id database.ID) (database.Module, bool) {
	if int(id) >= len(q.db.Modules) {
		return database.Module{}, false
	}
	return q.db.Modules[id], true
}

// ModuleByName returns the Module matching name.
func (q Q) ModuleByName(name string) (database.Module, bool) {
	i := sort.Search(len(q.db.ModulesByName), func(i int) bool {
		return q.db.Modules[q.db.ModulesByName[i]].Name >= name
	})
	if i < len(q.db.ModulesByName) && q.db.Modules[q.db.ModulesByName[i]].Name == name {
		return q.db.Modules[q.db.ModulesByName[i]], true
	}
	return database.Module{}, false
}

// ScopeByID returns the Scope with the given id and true, or the zero
// Scope and false if id is out of range.
func (q Q) ScopeByID(id database.ID) (database.Scope, bool) {
	if int(id) >= len(q.db.Scopes) {
		return database.Scope{}, false
	}
	return q.db.Scopes[id], true
}

// ScopesInModule returns every Scope belonging to module, sorted by name.
func (q Q) ScopesInModule(module database.ID) []database.Scope {
	m, ok := q.ModuleByID(module)
	if !ok {
		return nil
	}
	out := make([]database.Scope, 0, len(m.Scopes))
	for _, id := range m.Scopes {
		out = append(out, q.db.Scopes[id])
	}
	return out
}

// SegmentByID returns the Segment with the given id and true, or the zero
// Segment and false if id is out of range.
func (q Q) SegmentByID(id database.ID) (database.Segment, bool) {
	if int(id) >= len(q.db.Segments) {
		return database.Segment{}, false
	}
	return q.db.Segments[id], true
}

// SegmentByName returns the Segment matching name.
func (q Q) SegmentByName(name string) (database.Segment, bool) {
	i := sort.Search(len(q.db.SegmentsByName), func(i int) bool {
		return q.db.Segments[q.db.SegmentsByName[i]].Name >= name
	})
	if i < len(q.db.SegmentsByName) && q.db.Segments[q.db.SegmentsByName[i]].Name == name {
		return q.db.Segments[q.db.SegmentsByName[i]], true
	}
	return database.Segment{}, false
}

// LineByFileAndLine returns every Line record for file at lineNumber; a
// source line can expand to more than one Line record (e.g. through macro
// expansion), so callers receive a slice even though the common case has
// exactly one element. db.Lines itself stays in id order; this binary
// searches the (file, line number)-sorted secondary index instead.
func (q Q) LineByFileAndLine(file database.ID, lineNumber uint64) []database.Line {
	idx := q.db.LinesByFileAndLine
	lo := sort.Search(len(idx), func(i int) bool {
		l := q.db.Lines[idx[i]]
		if l.File != file {
			return l.File >= file
		}
		return l.LineNumber >= lineNumber
	})
	var out []database.Line
	for i := lo; i < len(idx); i++ {
		l := q.db.Lines[idx[i]]
		if l.File != file || l.LineNumber != lineNumber {
			break
		}
		out = append(out, l)
	}
	return out
}

// LinesInFile returns every Line belonging to file, in ascending line
// number order.
func (q Q) LinesInFile(file database.ID) []database.Line {
	idx := q.db.LinesByFileAndLine
	lo := sort.Search(len(idx), func(i int) bool {
		return q.db.Lines[idx[i]].File >= file
	})
	var out []database.Line
	for i := lo; i < len(idx); i++ {
		l := q.db.Lines[idx[i]]
		if l.File != file {
			break
		}
		out = append(out, l)
	}
	return out
}

// SymbolByID returns the Symbol with the given id and true, or the zero
// Symbol and false if id is out of range.
func (q Q) SymbolByID(id database.ID) (database.Symbol, bool) {
	if int(id) >= len(q.db.Symbols) {
		return database.Symbol{}, false
	}
	return q.db.Symbols[id], true
}

// SymbolsByName returns every Symbol named name (names need not be
// unique across scopes), in ascending id order.
func (q Q) SymbolsByName(name string) []database.Symbol {
	lo := sort.Search(len(q.db.SymbolsByName), func(i int) bool {
		return q.db.Symbols[q.db.SymbolsByName[i]].Name >= name
	})
	var out []database.Symbol
	for i := lo; i < len(q.db.SymbolsByName) && q.db.Symbols[q.db.SymbolsByName[i]].Name == name; i++ {
		out = append(out, q.db.Symbols[q.db.SymbolsByName[i]])
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out
}

// SymbolsInRange returns every label Symbol whose Value falls in
// [lo, hi], ordered by value then name. Equate symbols never match since
// they denote constants, not addresses.
func (q Q) SymbolsInRange(lo, hi int64) []database.Symbol {
	start := sort.Search(len(q.db.SymbolsByValue), func(i int) bool {
		return q.db.Symbols[q.db.SymbolsByValue[i]].Value >= lo
	})
	var out []database.Symbol
	for i := start; i < len(q.db.SymbolsByValue); i++ {
		s := q.db.Symbols[q.db.SymbolsByValue[i]]
		if s.Value > hi {
			break
		}
		if s.Type == database.SymLabel {
			out = append(out, s)
		}
	}
	return out
}

// SpansByAddress returns every Span covering addr, in ascending start
// address order (ties broken by span id).
func (q Q) SpansByAddress(addr uint64) []database.Span {
	handles := q.db.SpanIndex.Lookup(addr)
	out := make([]database.Span, 0, len(handles))
	for _, h := range handles {
		out = append(out, q.db.Spans[h])
	}
	return out
}

// SpanByID returns the Span with the given id and true, or the zero Span
// and false if id is out of range.
func (q Q) SpanByID(id database.ID) (database.Span, bool) {
	if int(id) >= len(q.db.Spans) {
		return database.Span{}, false
	}
	return q.db.Spans[id], true
}

// LibraryByID returns the Library with the given id and true, or the zero
// Library and false if id is out of range.
func (q Q) LibraryByID(id database.ID) (database.Library, bool) {
	if int(id) >= len(q.db.Libs) {
		return database.Library{}, false
	}
	return q.db.Libs[id], true
}

// FileCount, ModuleCount, ScopeCount, SegmentCount, SpanCount, LineCount
// and SymbolCount report the number of records of each kind, for callers
// building progress bars or summaries without walking a collection.
func (q Q) FileCount() int    { return len(q.db.Files) }
func (q Q) ModuleCount() int  { return len(q.db.Modules) }
func (q Q) ScopeCount() int   { return len(q.db.Scopes) }
func (q Q) SegmentCount() int { return len(q.db.Segments) }
func (q Q) SpanCount() int    { return len(q.db.Spans) }
func (q Q) LineCount() int    { return len(q.db.Lines) }
func (q Q) SymbolCount() int  { return len(q.db.Symbols) }
