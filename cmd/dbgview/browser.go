package main

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/sixfiveohtwo/dbginfo/database"
	"github.com/sixfiveohtwo/dbginfo/dbginfo"
)

// Browser is the text user interface over a loaded dbginfo.State.
type Browser struct {
	State *dbginfo.State
	App   *tview.Application
	Pages *tview.Pages

	ModuleList  *tview.List
	ScopeView   *tview.TextView
	SymbolView  *tview.TextView
	SpanView    *tview.TextView
	CommandLine *tview.InputField

	MainLayout *tview.Flex

	currentModule database.ID
}

// NewBrowser builds a Browser over state. It does not start the event
// loop; call Run for that.
func NewBrowser(state *dbginfo.State) *Browser {
	return newBrowser(state, tview.NewApplication())
}

// NewBrowserWithScreen builds a Browser driven by an already-configured
// tcell screen (a tcell.SimulationScreen in tests) instead of a real
// terminal, so view-population logic can be exercised without a tty.
func NewBrowserWithScreen(state *dbginfo.State, screen tcell.Screen) *Browser {
	app := tview.NewApplication().SetScreen(screen)
	return newBrowser(state, app)
}

func newBrowser(state *dbginfo.State, app *tview.Application) *Browser {
	b := &Browser{
		State: state,
		App:   app,
	}
	b.initializeViews()
	b.buildLayout()
	b.setupKeyBindings()
	b.populateModuleList()
	return b
}

func (b *Browser) initializeViews() {
	b.ModuleList = tview.NewList().ShowSecondaryText(false)
	b.ModuleList.SetBorder(true).SetTitle(" Modules ")

	b.ScopeView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true)
	b.ScopeView.SetBorder(true).SetTitle(" Scopes ")

	b.SymbolView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true)
	b.SymbolView.SetBorder(true).SetTitle(" Symbols ")

	b.SpanView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true)
	b.SpanView.SetBorder(true).SetTitle(" Spans at address ")

	b.CommandLine = tview.NewInputField().SetLabel("addr> ").SetFieldWidth(0)
	b.CommandLine.SetBorder(true).SetTitle(" Go to address (hex) ")
	b.CommandLine.SetDoneFunc(b.handleAddressEntered)
}

func (b *Browser) buildLayout() {
	right := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(b.ScopeView, 0, 1, false).
		AddItem(b.SymbolView, 0, 2, false)

	content := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(b.ModuleList, 0, 1, true).
		AddItem(right, 0, 2, false).
		AddItem(b.SpanView, 0, 1, false)

	b.MainLayout = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(content, 0, 5, true).
		AddItem(b.CommandLine, 3, 0, false)

	b.Pages = tview.NewPages().AddPage("main", b.MainLayout, true, true)
}

func (b *Browser) setupKeyBindings() {
	b.App.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyCtrlC:
			b.App.Stop()
			return nil
		case tcell.KeyTab:
			b.App.SetFocus(b.CommandLine)
			return nil
		}
		return event
	})
}

func (b *Browser) populateModuleList() {
	for i := 0; i < b.State.Query.ModuleCount(); i++ {
		m, ok := b.State.Query.ModuleByID(database.ID(i))
		if !ok {
			continue
		}
		id := m.ID
		b.ModuleList.AddItem(m.Name, "", 0, func() {
			b.showModule(id)
		})
	}
	if b.State.Query.ModuleCount() > 0 {
		b.showModule(0)
	}
}

func (b *Browser) showModule(id database.ID) {
	b.currentModule = id
	m, ok := b.State.Query.ModuleByID(id)
	if !ok {
		return
	}

	var scopes strings.Builder
	for _, s := range b.State.Query.ScopesInModule(id) {
		fmt.Fprintf(&scopes, "[%d] %s (size %d)\n", s.ID, s.Name, s.Size)
	}
	b.ScopeView.SetText(scopes.String())

	var syms strings.Builder
	for _, sID := range m.Scopes {
		s, ok := b.State.Query.ScopeByID(sID)
		if !ok || s.Label == database.NoID {
			continue
		}
		sym, ok := b.State.Query.SymbolByID(s.Label)
		if !ok {
			continue
		}
		fmt.Fprintf(&syms, "%s = 0x%x\n", sym.Name, sym.Value)
	}
	b.SymbolView.SetText(syms.String())
}

func (b *Browser) handleAddressEntered(key tcell.Key) {
	if key != tcell.KeyEnter {
		return
	}
	text := strings.TrimSpace(b.CommandLine.GetText())
	text = strings.TrimPrefix(text, "0x")
	var addr uint64
	if _, err := fmt.Sscanf(text, "%x", &addr); err != nil {
		b.SpanView.SetText("[red]invalid address[white]")
		return
	}

	var out strings.Builder
	for _, sp := range b.State.Query.SpansByAddress(addr) {
		seg, _ := b.State.Query.SegmentByID(sp.Segment)
		fmt.Fprintf(&out, "span %d in %s: [0x%x,0x%x]\n", sp.ID, seg.Name, sp.Start, sp.End)
	}
	if out.Len() == 0 {
		out.WriteString("no span covers this address\n")
	}
	b.SpanView.SetText(out.String())
	b.CommandLine.SetText("")
}

// Run starts the terminal event loop. It blocks until the user quits.
func (b *Browser) Run() error {
	return b.App.SetRoot(b.Pages, true).SetFocus(b.ModuleList).Run()
}
