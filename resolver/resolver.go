// Package resolver turns a Database populated with raw, unresolved
// records into a fully cross-linked object graph: every id-valued
// relation is checked against the collection it names, back-references
// are installed on the far end, and the sorted secondary indices that the
// query package relies on are built.
//
// Resolution runs in seven passes, strictly in this order, because later
// passes assume earlier ones already validated the ids they depend on
// (scopes need modules resolved first, spans need segments, symbols need
// scopes and segments). The order is load-bearing, not cosmetic — do not
// reorder these calls.
package resolver

import (
	"fmt"
	"sort"

	"github.com/sixfiveohtwo/dbginfo/addrindex"
	"github.com/sixfiveohtwo/dbginfo/database"
	"github.com/sixfiveohtwo/dbginfo/diag"
	"github.com/sixfiveohtwo/dbginfo/token"
)

// Resolve runs all seven resolution passes over db, reporting every
// cross-reference problem it finds through sink. It returns the number of
// Error-severity diagnostics raised; callers treat a nonzero count as
// resolution failure (spec: a database with dangling references never
// reaches the resolved state). Cycles among scope parents are not
// detected.
func Resolve(db *database.Database, sink diag.Sink) int {
	var errs int
	report := func(format string, args ...any) {
		errs++
		if sink != nil {
			sink(diag.Diagnostic{Severity: diag.Error, Pos: token.Position{}, Message: fmt.Sprintf(format, args...)})
		}
	}

	processFileInfo(db, report)
	processLineInfo(db, report)
	processModInfo(db, report)
	processScopeInfo(db, report)
	processSegInfo(db, report)
	processSpanInfo(db, report)
	processSymInfo(db, report)

	return errs
}

// processFileInfo resolves each File's ModuleIDs into validated ids,
// installs File back-references on the referenced Module, and sorts
// per-file/per-module listings by name.
func processFileInfo(db *database.Database, report func(string, ...any)) {
	for i := range db.Files {
		f := &db.Files[i]
		if f.ID == database.NoID {
			report("missing record id %d", i)
			continue
		}
		valid := f.ModuleIDs[:0]
		for _, modID := range f.ModuleIDs {
			if int(modID) >= len(db.Modules) || db.Modules[modID].ID == database.NoID {
				report("invalid module id %d for file with id %d", modID, f.ID)
				continue
			}
			valid = append(valid, modID)
			m := &db.Modules[modID]
			m.Files = append(m.Files, f.ID)
		}
		f.ModuleIDs = valid
	}

	for i := range db.Modules {
		m := &db.Modules[i]
		if m.ID == database.NoID {
			continue
		}
		sort.Slice(m.Files, func(a, b int) bool {
			return db.Files[m.Files[a]].Name < db.Files[m.Files[b]].Name
		})
	}

	db.FilesByName = make([]database.ID, 0, len(db.Files))
	for i := range db.Files {
		if db.Files[i].ID == database.NoID {
			continue
		}
		db.FilesByName = append(db.FilesByName, db.Files[i].ID)
	}
	sort.Slice(db.FilesByName, func(a, b int) bool {
		fa, fb := db.Files[db.FilesByName[a]], db.Files[db.FilesByName[b]]
		if fa.Name != fb.Name {
			return fa.Name < fb.Name
		}
		if fa.MTime != fb.MTime {
			return fa.MTime < fb.MTime
		}
		return fa.Size < fb.Size
	})
}

// processLineInfo validates each Line.File reference, resolves each Line's
// SpanIDs into a Span.Lines back-reference, and builds the
// (file, line number)-sorted secondary index LineByFileAndLine/LinesInFile
// query over — db.Lines itself is never reordered, so it stays in id
// order (Lines[i].ID == i) the way every other by-id collection does.
func processLineInfo(db *database.Database, report func(string, ...any)) {
	for i := range db.Lines {
		l := &db.Lines[i]
		if l.ID == database.NoID {
			report("missing record id %d", i)
			continue
		}
		if int(l.File) >= len(db.Files) || db.Files[l.File].ID == database.NoID {
			report("invalid file id %d for line with id %d", l.File, l.ID)
		}

		valid := l.SpanIDs[:0]
		for _, spanID := range l.SpanIDs {
			if int(spanID) >= len(db.Spans) || db.Spans[spanID].ID == database.NoID {
				report("invalid span id %d for line with id %d", spanID, l.ID)
				continue
			}
			valid = append(valid, spanID)
			sp := &db.Spans[spanID]
			sp.Lines = append(sp.Lines, l.ID)
		}
		l.SpanIDs = valid
	}

	db.LinesByFileAndLine = make([]database.ID, 0, len(db.Lines))
	for i := range db.Lines {
		if db.Lines[i].ID == database.NoID {
			continue
		}
		db.LinesByFileAndLine = append(db.LinesByFileAndLine, db.Lines[i].ID)
	}
	sort.Slice(db.LinesByFileAndLine, func(a, b int) bool {
		la, lb := db.Lines[db.LinesByFileAndLine[a]], db.Lines[db.LinesByFileAndLine[b]]
		if la.File != lb.File {
			return la.File < lb.File
		}
		return la.LineNumber < lb.LineNumber
	})
}

// processModInfo resolves each Module's MainFile and Library references.
func processModInfo(db *database.Database, report func(string, ...any)) {
	for i := range db.Modules {
		m := &db.Modules[i]
		if m.ID == database.NoID {
			report("missing record id %d", i)
			continue
		}
		if int(m.MainFile) >= len(db.Files) || db.Files[m.MainFile].ID == database.NoID {
			report("invalid file id %d for module with id %d", m.MainFile, m.ID)
			m.MainFile = database.NoID
		}
		if m.Library != database.NoID && (int(m.Library) >= len(db.Libs) || db.Libs[m.Library].ID == database.NoID) {
			report("invalid library id %d for module with id %d", m.Library, m.ID)
			m.Library = database.NoID
		}
	}

	db.ModulesByName = make([]database.ID, 0, len(db.Modules))
	for i := range db.Modules {
		if db.Modules[i].ID == database.NoID {
			continue
		}
		db.ModulesByName = append(db.ModulesByName, db.Modules[i].ID)
	}
	sort.Slice(db.ModulesByName, func(a, b int) bool {
		return db.Modules[db.ModulesByName[a]].Name < db.Modules[db.ModulesByName[b]].Name
	})
}

// processScopeInfo resolves each Scope's Module, Parent, Label and span
// ids, installs back-references, assigns each Module's MainScope (the one
// parentless scope it must have), and sorts per-module scope listings.
func processScopeInfo(db *database.Database, report func(string, ...any)) {
	for i := range db.Modules {
		db.Modules[i].MainScope = database.NoID
	}

	for i := range db.Scopes {
		s := &db.Scopes[i]
		if s.ID == database.NoID {
			report("missing record id %d", i)
			continue
		}

		if int(s.Module) >= len(db.Modules) || db.Modules[s.Module].ID == database.NoID {
			report("invalid module id %d for scope with id %d", s.Module, s.ID)
		} else {
			m := &db.Modules[s.Module]
			m.Scopes = append(m.Scopes, s.ID)
			if s.Parent == database.NoID {
				m.MainScope = s.ID
			}
		}

		if s.Parent != database.NoID && (int(s.Parent) >= len(db.Scopes) || db.Scopes[s.Parent].ID == database.NoID) {
			report("invalid parent scope id %d for scope with id %d", s.Parent, s.ID)
			s.Parent = database.NoID
		}

		if s.Label != database.NoID && (int(s.Label) >= len(db.Symbols) || db.Symbols[s.Label].ID == database.NoID) {
			report("invalid label id %d for scope with id %d", s.Label, s.ID)
			s.Label = database.NoID
		}

		valid := s.SpanIDs[:0]
		for _, spanID := range s.SpanIDs {
			if int(spanID) >= len(db.Spans) || db.Spans[spanID].ID == database.NoID {
				report("invalid span id %d for scope with id %d", spanID, s.ID)
				continue
			}
			valid = append(valid, spanID)
			sp := &db.Spans[spanID]
			sp.Scopes = append(sp.Scopes, s.ID)
		}
		s.SpanIDs = valid
	}

	for i := range db.Modules {
		m := &db.Modules[i]
		if m.ID == database.NoID {
			continue
		}
		if m.MainScope == database.NoID {
			report("module with id %d has no main scope", m.ID)
		}
		sort.Slice(m.Scopes, func(a, b int) bool {
			return db.Scopes[m.Scopes[a]].Name < db.Scopes[m.Scopes[b]].Name
		})
	}
}

// processSegInfo sorts the segment-by-name secondary index. Segments
// carry no id-valued references to validate.
func processSegInfo(db *database.Database, report func(string, ...any)) {
	db.SegmentsByName = make([]database.ID, 0, len(db.Segments))
	for i := range db.Segments {
		if db.Segments[i].ID == database.NoID {
			report("missing record id %d", i)
			continue
		}
		db.SegmentsByName = append(db.SegmentsByName, db.Segments[i].ID)
	}
	sort.Slice(db.SegmentsByName, func(a, b int) bool {
		return db.Segments[db.SegmentsByName[a]].Name < db.Segments[db.SegmentsByName[b]].Name
	})
}

// processSpanInfo resolves each Span's Segment reference, rebases its
// Start/End by the segment's load address, and builds the address index
// used for address-to-span lookup.
func processSpanInfo(db *database.Database, report func(string, ...any)) {
	inputs := make([]addrindex.SpanInput, 0, len(db.Spans))
	for i := range db.Spans {
		sp := &db.Spans[i]
		if sp.ID == database.NoID {
			report("missing record id %d", i)
			continue
		}
		if int(sp.Segment) >= len(db.Segments) || db.Segments[sp.Segment].ID == database.NoID {
			report("invalid segment id %d for span with id %d", sp.Segment, sp.ID)
			continue
		}
		seg := db.Segments[sp.Segment]
		sp.Start += seg.Start
		sp.End += seg.Start
		inputs = append(inputs, addrindex.SpanInput{Handle: sp.ID, Start: sp.Start, End: sp.End})
	}
	db.SpanIndex = addrindex.Build(inputs)
}

// processSymInfo resolves each Symbol's Segment, Scope and Parent
// references in a first pass, then in a second pass fills in Scope for
// symbols that only named a Parent (the "cheap local" pattern: a symbol
// scoped to its enclosing label rather than declared with its own scope).
func processSymInfo(db *database.Database, report func(string, ...any)) {
	for i := range db.Symbols {
		s := &db.Symbols[i]
		if s.ID == database.NoID {
			report("missing record id %d", i)
			continue
		}

		if s.Segment != database.NoID && (int(s.Segment) >= len(db.Segments) || db.Segments[s.Segment].ID == database.NoID) {
			report("invalid segment id %d for symbol with id %d", s.Segment, s.ID)
			s.Segment = database.NoID
		}
		if s.Scope != database.NoID && (int(s.Scope) >= len(db.Scopes) || db.Scopes[s.Scope].ID == database.NoID) {
			report("invalid scope id %d for symbol with id %d", s.Scope, s.ID)
			s.Scope = database.NoID
		}
		if s.Parent != database.NoID && (int(s.Parent) >= len(db.Symbols) || db.Symbols[s.Parent].ID == database.NoID) {
			report("invalid parent id %d for symbol with id %d", s.Parent, s.ID)
			s.Parent = database.NoID
		}
	}

	for i := range db.Symbols {
		s := &db.Symbols[i]
		if s.ID == database.NoID || s.Scope != database.NoID {
			continue
		}
		if s.Parent == database.NoID {
			report("symbol with id %d has no parent and no scope", s.ID)
			continue
		}
		parent := db.Symbols[s.Parent]
		if parent.Scope == database.NoID {
			report("symbol with id %d has parent %d without a scope", s.ID, parent.ID)
			continue
		}
		s.Scope = parent.Scope
	}

	db.SymbolsByName = make([]database.ID, 0, len(db.Symbols))
	for i := range db.Symbols {
		if db.Symbols[i].ID == database.NoID {
			continue
		}
		db.SymbolsByName = append(db.SymbolsByName, db.Symbols[i].ID)
	}
	sort.Slice(db.SymbolsByName, func(a, b int) bool {
		return db.Symbols[db.SymbolsByName[a]].Name < db.Symbols[db.SymbolsByName[b]].Name
	})

	db.SymbolsByValue = make([]database.ID, 0, len(db.Symbols))
	for i := range db.Symbols {
		if db.Symbols[i].ID == database.NoID {
			continue
		}
		db.SymbolsByValue = append(db.SymbolsByValue, db.Symbols[i].ID)
	}
	sort.Slice(db.SymbolsByValue, func(a, b int) bool {
		sa, sb := db.Symbols[db.SymbolsByValue[a]], db.Symbols[db.SymbolsByValue[b]]
		if sa.Value != sb.Value {
			return sa.Value < sb.Value
		}
		return sa.Name < sb.Name
	})
}
