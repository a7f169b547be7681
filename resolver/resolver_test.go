package resolver_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sixfiveohtwo/dbginfo/database"
	"github.com/sixfiveohtwo/dbginfo/diag"
	"github.com/sixfiveohtwo/dbginfo/resolver"
)

func TestResolve_FileModuleBackReferencesAndSortedIndex(t *testing.T) {
	db := &database.Database{
		Files: []database.File{
			{ID: 0, Name: "b.s", ModuleIDs: []database.ID{0}},
			{ID: 1, Name: "a.s", ModuleIDs: []database.ID{0}},
		},
		Modules: []database.Module{
			{ID: 0, Name: "m", MainFile: 0, Library: database.NoID},
		},
		Scopes: []database.Scope{
			{ID: 0, Module: 0, Name: "global", Parent: database.NoID, Label: database.NoID},
		},
	}

	errs := resolver.Resolve(db, nil)
	require.Equal(t, 0, errs)

	assert.ElementsMatch(t, []database.ID{0, 1}, db.Modules[0].Files)
	assert.Equal(t, database.ID(1), db.Files[db.FilesByName[0]].ID, "a.s sorts before b.s")
	assert.Equal(t, database.ID(0), db.Modules[0].MainScope)
}

func TestResolve_InvalidModuleIDOnFileIsDroppedAndReported(t *testing.T) {
	db := &database.Database{
		Files:   []database.File{{ID: 0, Name: "a.s", ModuleIDs: []database.ID{99}}},
		Modules: nil,
	}
	var diags []diag.Diagnostic
	errs := resolver.Resolve(db, func(d diag.Diagnostic) { diags = append(diags, d) })

	assert.Greater(t, errs, 0)
	assert.Empty(t, db.Files[0].ModuleIDs, "the dangling module id must not survive resolution")
	assert.NotEmpty(t, diags)
}

func TestResolve_ModuleWithoutMainScopeIsAnError(t *testing.T) {
	db := &database.Database{
		Files:   []database.File{{ID: 0, Name: "m.s"}},
		Modules: []database.Module{{ID: 0, Name: "m", MainFile: 0, Library: database.NoID}},
		Scopes: []database.Scope{
			{ID: 0, Module: 0, Name: "nested", Parent: 5, Label: database.NoID},
		},
	}
	errs := resolver.Resolve(db, nil)
	assert.Greater(t, errs, 0, "every module must end up with a parentless scope")
}

func TestResolve_SymbolScopeFilledInFromParent(t *testing.T) {
	db := &database.Database{
		Files:   []database.File{{ID: 0, Name: "m.s"}},
		Modules: []database.Module{{ID: 0, Name: "m", MainFile: 0, Library: database.NoID}},
		Scopes: []database.Scope{
			{ID: 0, Module: 0, Name: "global", Parent: database.NoID, Label: database.NoID},
		},
		Symbols: []database.Symbol{
			{ID: 0, Name: "_outer", Scope: 0, Parent: database.NoID, Segment: database.NoID},
			{ID: 1, Name: "_inner", Scope: database.NoID, Parent: 0, Segment: database.NoID},
		},
	}
	errs := resolver.Resolve(db, nil)
	require.Equal(t, 0, errs)
	assert.Equal(t, database.ID(0), db.Symbols[1].Scope)
}

func TestResolve_SymbolWithNoScopeAndNoParentIsAnError(t *testing.T) {
	db := &database.Database{
		Files:   []database.File{{ID: 0, Name: "m.s"}},
		Modules: []database.Module{{ID: 0, Name: "m", MainFile: 0, Library: database.NoID}},
		Scopes: []database.Scope{
			{ID: 0, Module: 0, Name: "global", Parent: database.NoID, Label: database.NoID},
		},
		Symbols: []database.Symbol{
			{ID: 0, Name: "_orphan", Scope: database.NoID, Parent: database.NoID, Segment: database.NoID},
		},
	}
	errs := resolver.Resolve(db, nil)
	assert.Greater(t, errs, 0)
}

func TestResolve_SpanStartEndRebasedBySegmentStartAndIndexed(t *testing.T) {
	db := &database.Database{
		Segments: []database.Segment{
			{ID: 0, Name: "CODE", Start: 0x8000, Size: 0x1000, Kind: database.SegmentReadOnly},
		},
		Spans: []database.Span{
			{ID: 0, Segment: 0, Start: 0x10, End: 0x1F},
		},
	}
	errs := resolver.Resolve(db, nil)
	require.Equal(t, 0, errs)
	assert.Equal(t, uint64(0x8010), db.Spans[0].Start)
	assert.Equal(t, uint64(0x801F), db.Spans[0].End)
	assert.ElementsMatch(t, []uint32{0}, db.SpanIndex.Lookup(0x8015))
}

func TestResolve_ScopeSpanBackReference(t *testing.T) {
	db := &database.Database{
		Files:    []database.File{{ID: 0, Name: "m.s"}},
		Segments: []database.Segment{{ID: 0, Name: "CODE", Start: 0, Size: 0x100}},
		Modules:  []database.Module{{ID: 0, Name: "m", MainFile: 0, Library: database.NoID}},
		Scopes: []database.Scope{
			{ID: 0, Module: 0, Name: "global", Parent: database.NoID, Label: database.NoID, SpanIDs: []database.ID{0}},
		},
		Spans: []database.Span{{ID: 0, Segment: 0, Start: 0, End: 0xF}},
	}
	errs := resolver.Resolve(db, nil)
	require.Equal(t, 0, errs)
	assert.Equal(t, []database.ID{0}, db.Spans[0].Scopes)
}

func TestResolve_LineSpanBackReference(t *testing.T) {
	db := &database.Database{
		Files:    []database.File{{ID: 0, Name: "m.s"}},
		Segments: []database.Segment{{ID: 0, Name: "CODE", Start: 0, Size: 0x100}},
		Spans:    []database.Span{{ID: 0, Segment: 0, Start: 0, End: 0xF}},
		Lines: []database.Line{
			{ID: 0, File: 0, LineNumber: 10, SpanIDs: []database.ID{0}},
		},
	}
	errs := resolver.Resolve(db, nil)
	require.Equal(t, 0, errs)
	assert.Equal(t, []database.ID{0}, db.Spans[0].Lines, "a line's SpanIDs must back-link into Span.Lines")
}

func TestResolve_LinesStayInIDOrderButIndexIsSortedByFileAndLineNumber(t *testing.T) {
	db := &database.Database{
		Files: []database.File{{ID: 0, Name: "m.s"}},
		Lines: []database.Line{
			{ID: 0, File: 0, LineNumber: 30},
			{ID: 1, File: 0, LineNumber: 10},
			{ID: 2, File: 0, LineNumber: 20},
		},
	}
	errs := resolver.Resolve(db, nil)
	require.Equal(t, 0, errs)

	for i := range db.Lines {
		assert.Equal(t, database.ID(i), db.Lines[i].ID, "resolution must never reorder the by-id Lines collection")
	}

	require.Len(t, db.LinesByFileAndLine, 3)
	var got []uint64
	for _, id := range db.LinesByFileAndLine {
		got = append(got, db.Lines[id].LineNumber)
	}
	assert.Equal(t, []uint64{10, 20, 30}, got, "the secondary index must be sorted by line number within a file")
}

func TestResolve_MissingRecordIDIsRejected(t *testing.T) {
	db := &database.Database{
		Files: []database.File{{ID: 0, Name: "a.s"}},
	}
	db.Files = append(db.Files, database.File{ID: database.NoID})
	db.Files = append(db.Files, database.File{ID: 2, Name: "c.s"})

	var diags []diag.Diagnostic
	errs := resolver.Resolve(db, func(d diag.Diagnostic) { diags = append(diags, d) })
	assert.Greater(t, errs, 0, "a hole left by a missing id must be reported, not silently skipped")
	assert.NotEmpty(t, diags)
}
