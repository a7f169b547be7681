package main

import (
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/sixfiveohtwo/dbginfo/database"
	"github.com/sixfiveohtwo/dbginfo/dbginfo"
	"github.com/sixfiveohtwo/dbginfo/query"
	"github.com/sixfiveohtwo/dbginfo/resolver"
)

func testState(t *testing.T) *dbginfo.State {
	t.Helper()
	db := &database.Database{
		Files:   []database.File{{ID: 0, Name: "main.s"}},
		Modules: []database.Module{{ID: 0, Name: "main", MainFile: 0, Library: database.NoID}},
		Scopes: []database.Scope{
			{ID: 0, Module: 0, Name: "global", Parent: database.NoID, Label: 0, SpanIDs: []database.ID{0}},
		},
		Segments: []database.Segment{{ID: 0, Name: "CODE", Start: 0x8000, Size: 0x1000}},
		Spans:    []database.Span{{ID: 0, Segment: 0, Start: 0, End: 0xF}},
		Symbols: []database.Symbol{
			{ID: 0, Name: "_start", Type: database.SymLabel, Value: 0x8000, Scope: 0, Parent: database.NoID, Segment: 0},
		},
	}
	if errs := resolver.Resolve(db, nil); errs != 0 {
		t.Fatalf("test fixture failed to resolve: %d errors", errs)
	}
	return &dbginfo.State{DB: db, Query: query.New(db)}
}

func newTestBrowser(t *testing.T) *Browser {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("failed to init simulation screen: %v", err)
	}
	t.Cleanup(screen.Fini)
	return NewBrowserWithScreen(testState(t), screen)
}

func TestPopulateModuleList_AddsEveryModule(t *testing.T) {
	b := newTestBrowser(t)
	if got := b.ModuleList.GetItemCount(); got != 1 {
		t.Fatalf("got %d module list entries, want 1", got)
	}
}

func TestShowModule_PopulatesScopeAndSymbolViews(t *testing.T) {
	b := newTestBrowser(t)
	b.showModule(0)

	if !strings.Contains(b.ScopeView.GetText(true), "global") {
		t.Fatalf("scope view missing the module's scope, got %q", b.ScopeView.GetText(true))
	}
	if !strings.Contains(b.SymbolView.GetText(true), "_start") {
		t.Fatalf("symbol view missing the scope's label symbol, got %q", b.SymbolView.GetText(true))
	}
}

func TestHandleAddressEntered_ShowsCoveringSpans(t *testing.T) {
	b := newTestBrowser(t)
	b.CommandLine.SetText("0x8005")
	b.handleAddressEntered(tcell.KeyEnter)

	text := b.SpanView.GetText(true)
	if !strings.Contains(text, "span 0") {
		t.Fatalf("expected the covering span to be listed, got %q", text)
	}
	if b.CommandLine.GetText() != "" {
		t.Fatalf("command line should be cleared after a successful lookup")
	}
}

func TestHandleAddressEntered_InvalidAddressReportsError(t *testing.T) {
	b := newTestBrowser(t)
	b.CommandLine.SetText("not-an-address")
	b.handleAddressEntered(tcell.KeyEnter)

	if !strings.Contains(b.SpanView.GetText(true), "invalid address") {
		t.Fatalf("expected an invalid-address message, got %q", b.SpanView.GetText(true))
	}
}

func TestHandleAddressEntered_IgnoresNonEnterKeys(t *testing.T) {
	b := newTestBrowser(t)
	b.CommandLine.SetText("0x8005")
	b.handleAddressEntered(tcell.KeyEscape)

	if b.SpanView.GetText(true) != "" {
		t.Fatalf("a non-Enter key must not trigger a lookup, got %q", b.SpanView.GetText(true))
	}
}
