// Package tui implements a read-only terminal viewer for a compiled
// Bessambly artifact (the "bessambly -tui" mode). There is no running
// core to step or break on, only the instruction buffer, symbol table
// and encoded words a single compile produced.
package tui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/stanimation3d/bessambly/ir"
	"github.com/stanimation3d/bessambly/symtab"
)

// Artifact is the compiled output the viewer displays.
type Artifact struct {
	SourceFile string
	Source     []string
	Buffer     *ir.Buffer
	Symbols    *symtab.Table
	Words      []uint32
}

// TUI is the text viewer over a single Artifact.
type TUI struct {
	artifact Artifact

	App        *tview.Application
	MainLayout *tview.Flex

	SourceView      *tview.TextView
	DisassemblyView *tview.TextView
	SymbolsView     *tview.TextView
	StatusView      *tview.TextView
}

// New builds a TUI over artifact. Call Run to take over the terminal.
func New(artifact Artifact) *TUI {
	t := &TUI{
		artifact: artifact,
		App:      tview.NewApplication(),
	}
	t.initializeViews()
	t.buildLayout()
	t.setupKeyBindings()
	t.RefreshAll()
	return t
}

func (t *TUI) initializeViews() {
	t.SourceView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true)
	t.SourceView.SetBorder(true).SetTitle(" Source ")

	t.DisassemblyView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(false)
	t.DisassemblyView.SetBorder(true).SetTitle(" Instructions ")

	t.SymbolsView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true)
	t.SymbolsView.SetBorder(true).SetTitle(" Symbols ")

	t.StatusView = tview.NewTextView().SetDynamicColors(true)
	t.StatusView.SetBorder(true).SetTitle(" Status ")
}

func (t *TUI) buildLayout() {
	top := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(t.SourceView, 0, 2, false).
		AddItem(t.DisassemblyView, 0, 3, false).
		AddItem(t.SymbolsView, 0, 2, false)

	t.MainLayout = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(top, 0, 5, false).
		AddItem(t.StatusView, 3, 0, false)
}

func (t *TUI) setupKeyBindings() {
	t.App.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyCtrlC, tcell.KeyEscape:
			t.App.Stop()
			return nil
		}
		if event.Rune() == 'q' {
			t.App.Stop()
			return nil
		}
		return event
	})
}

// RefreshAll re-renders every panel from the artifact.
func (t *TUI) RefreshAll() {
	t.SourceView.Clear()
	for i, line := range t.artifact.Source {
		fmt.Fprintf(t.SourceView, "%4d  %s\n", i+1, line)
	}

	t.DisassemblyView.Clear()
	for i, inst := range t.artifact.Buffer.Instructions {
		addr := ir.AddressOf(i)
		word := uint32(0)
		if i < len(t.artifact.Words) {
			word = t.artifact.Words[i]
		}
		fmt.Fprintf(t.DisassemblyView, "%04x:  %08x  %s\n", addr, word, describe(inst))
	}

	t.SymbolsView.Clear()
	for name, sym := range t.artifact.Symbols.All() {
		fmt.Fprintf(t.SymbolsView, "%-16s %04x\n", name, sym.Address)
	}

	t.StatusView.Clear()
	fmt.Fprintf(t.StatusView, "%s — %d instructions, %d symbols  (q to quit)",
		t.artifact.SourceFile, t.artifact.Buffer.Len(), t.artifact.Symbols.Len())
}

func describe(inst ir.Instruction) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-5s rd=x%-2d rs1=x%-2d rs2=x%-2d imm=%d", inst.Op, inst.Rd, inst.Rs1, inst.Rs2, inst.Imm)
	if inst.Target != "" {
		fmt.Fprintf(&b, " -> %s", inst.Target)
	}
	return b.String()
}

// Run takes over the terminal until the user quits.
func (t *TUI) Run() error {
	return t.App.SetRoot(t.MainLayout, true).EnableMouse(true).Run()
}
