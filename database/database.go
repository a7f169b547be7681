// Package database defines the record kinds of a cc65-style debug info file
// and the Database that holds them, keyed by the dense integer ids the
// producer assigns. Relations between records are held as ids throughout —
// both before and after resolution — per the "intrusive handle table"
// approach in spec.md's design notes: an id *is* the reference, so looking
// one up is always a slice index, and there is no separate pointer-mutation
// pass to keep in sync with the id-valued one.
package database

import "github.com/sixfiveohtwo/dbginfo/addrindex"

// ID is a dense, producer-assigned record identifier: ID i of kind K lives
// at index i of that kind's by-id slice.
type ID = uint32

// NoID marks an absent optional reference (cc65's CC65_INV_ID).
const NoID ID = 0xFFFFFFFF

// ScopeType is the lexical/structural kind of a Scope.
type ScopeType int

const (
	ScopeGlobal ScopeType = iota
	ScopeModule
	ScopeScope
	ScopeStruct
	ScopeEnum
)

// LineType classifies the origin of a source Line.
type LineType int

const (
	LineAsm LineType = iota
	LineExternal
	LineMacro
)

// SegmentKind is a segment's read/write access attribute.
type SegmentKind int

const (
	SegmentReadOnly SegmentKind = iota
	SegmentReadWrite
)

// SymbolKind distinguishes a named address (Label) from a named constant
// (Equate); only Labels participate in address-range queries.
type SymbolKind int

const (
	SymEquate SymbolKind = iota
	SymLabel
)

// File is one source file, identified by path. ModuleIDs is the id-valued
// "mod = a+b+c" list from the record; resolution never collapses it into
// something else, it only validates each id and appends the back-reference
// into the referenced Module.
type File struct {
	ID        ID
	Name      string
	Size      uint64
	MTime     uint64
	ModuleIDs []ID
}

// Library groups modules drawn from a single object-file archive member.
type Library struct {
	ID   ID
	Name string
}

// Module is the object produced by compiling/assembling one File.
type Module struct {
	ID        ID
	Name      string
	MainFile  ID
	Library   ID // NoID if the module belongs to no library
	MainScope ID // NoID until the resolver finds the module's parentless scope
	Files     []ID // back-reference: files whose ModuleIDs include this module
	Scopes    []ID // back-reference: scopes whose Module is this module
}

// Scope is a lexical or structural grouping within a Module.
type Scope struct {
	ID       ID
	Module   ID
	Name     string
	Type     ScopeType
	Size     uint64
	Parent   ID // NoID for a module's main scope
	Label    ID // NoID if the scope has no label symbol
	SpanIDs  []ID
}

// Segment is a named, addressed output region that spans are declared
// relative to.
type Segment struct {
	ID          ID
	Name        string
	Start       uint64
	Size        uint64
	Kind        SegmentKind
	HasOutput   bool
	OutputName  string
	OutputOffs  uint64
}

// Span is a maximal contiguous address range produced by one assembly
// fragment. Start/End are absolute addresses once the resolver has added
// Segment.Start; End is inclusive.
type Span struct {
	ID      ID
	Segment ID
	Start   uint64
	End     uint64
	Scopes  []ID // back-reference, populated by the resolver
	Lines   []ID // back-reference: lines whose SpanIDs include this span
}

// Line is one source-line record; a line may cover several Spans (or none,
// for a line with no generated code).
type Line struct {
	ID           ID
	File         ID
	LineNumber   uint64
	Type         LineType
	MacroNesting uint64
	SpanIDs      []ID
}

// Symbol is either a label (denotes an address) or an equate (denotes a
// constant). Exactly one of Scope/Parent is set at parse time; the resolver
// fills in Scope from Parent.Scope for symbols that only had a parent.
type Symbol struct {
	ID      ID
	Name    string
	Type    SymbolKind
	Value   int64
	Size    uint64
	Segment ID // NoID if none
	Scope   ID // NoID until resolved for parent-only symbols
	Parent  ID // NoID if none
	File    ID // NoID; carried for data-model fidelity, unused by resolution
}

// Database holds every record of every kind plus the sorted secondary
// indices built during resolution. It is built single-writer during parsing
// and resolution, then frozen: once Load returns successfully, a Database is
// safe for concurrent read-only use without synchronization.
type Database struct {
	Files    []File
	Libs     []Library
	Lines    []Line
	Modules  []Module
	Scopes   []Scope
	Segments []Segment
	Spans    []Span
	Symbols  []Symbol

	// Secondary indices, built by the resolver once every record kind has
	// been cross-linked. Each holds ids into the slice above it indexes,
	// ordered by the stated comparator.
	FilesByName        []ID // name, then mtime, then size
	ModulesByName      []ID // name
	SegmentsByName     []ID // name
	SymbolsByName      []ID // name
	SymbolsByValue     []ID // (value, name)
	LinesByFileAndLine []ID // (file, line number); Lines itself stays in id order

	// SpanIndex answers "which spans cover address a" in O(log n).
	SpanIndex addrindex.Index
}

// growTo extends the slice len to at least n. Any newly created elements
// are holes, not records: markHole stamps each one's ID to NoID so the
// resolver can tell a genuinely unpopulated slot (an id the producer never
// emitted) apart from a real id-0 record, rather than trusting the
// language's own T{} zero value.
func growTo[T any](s []T, n int, markHole func(*T)) []T {
	if len(s) >= n {
		return s
	}
	old := len(s)
	s = append(s, make([]T, n-old)...)
	for i := old; i < len(s); i++ {
		markHole(&s[i])
	}
	return s
}

// growCap reserves capacity for at least n elements without touching len,
// for the "info" record's advisory counts: a hint is a preallocation
// request, not a promise that n records exist, so it must never fabricate
// zero-value records the resolver would mistake for real ones.
func growCap[T any](s []T, n int) []T {
	if cap(s) >= n {
		return s
	}
	grown := make([]T, len(s), n)
	copy(grown, s)
	return grown
}

// PutFile installs f at f.ID, growing Files and filling any intervening
// holes with an ID of NoID so the resolver can reject them as missing
// records rather than treating them as id-0 files.
func (d *Database) PutFile(f File) {
	d.Files = growTo(d.Files, int(f.ID)+1, func(h *File) { h.ID = NoID })
	d.Files[f.ID] = f
}

// PutLibrary installs l at l.ID.
func (d *Database) PutLibrary(l Library) {
	d.Libs = growTo(d.Libs, int(l.ID)+1, func(h *Library) { h.ID = NoID })
	d.Libs[l.ID] = l
}

// PutLine installs l at l.ID.
func (d *Database) PutLine(l Line) {
	d.Lines = growTo(d.Lines, int(l.ID)+1, func(h *Line) { h.ID = NoID })
	d.Lines[l.ID] = l
}

// PutModule installs m at m.ID.
func (d *Database) PutModule(m Module) {
	d.Modules = growTo(d.Modules, int(m.ID)+1, func(h *Module) { h.ID = NoID })
	d.Modules[m.ID] = m
}

// PutScope installs s at s.ID.
func (d *Database) PutScope(s Scope) {
	d.Scopes = growTo(d.Scopes, int(s.ID)+1, func(h *Scope) { h.ID = NoID })
	d.Scopes[s.ID] = s
}

// PutSegment installs s at s.ID.
func (d *Database) PutSegment(s Segment) {
	d.Segments = growTo(d.Segments, int(s.ID)+1, func(h *Segment) { h.ID = NoID })
	d.Segments[s.ID] = s
}

// PutSpan installs s at s.ID.
func (d *Database) PutSpan(s Span) {
	d.Spans = growTo(d.Spans, int(s.ID)+1, func(h *Span) { h.ID = NoID })
	d.Spans[s.ID] = s
}

// PutSymbol installs s at s.ID.
func (d *Database) PutSymbol(s Symbol) {
	d.Symbols = growTo(d.Symbols, int(s.ID)+1, func(h *Symbol) { h.ID = NoID })
	d.Symbols[s.ID] = s
}

// GrowCapacityHints reserves capacity in every by-id collection per an
// "info" record's advisory counts, so real records fill in without
// repeated reallocation. It never changes any collection's length: an
// over-hinted count must not leave phantom unpopulated records behind for
// the resolver to trip over.
func (d *Database) GrowCapacityHints(file, lib, line, module, scope, segment, span, sym int) {
	d.Files = growCap(d.Files, file)
	d.Libs = growCap(d.Libs, lib)
	d.Lines = growCap(d.Lines, line)
	d.Modules = growCap(d.Modules, module)
	d.Scopes = growCap(d.Scopes, scope)
	d.Segments = growCap(d.Segments, segment)
	d.Spans = growCap(d.Spans, span)
	d.Symbols = growCap(d.Symbols, sym)
}
