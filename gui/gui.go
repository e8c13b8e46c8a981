// Package gui implements a minimal desktop viewer for a compiled
// Bessambly artifact. There is no running core to inspect, only the
// instruction buffer, symbol table and encoded words a single compile
// produced.
package gui

import (
	"fmt"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

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

// GUI is the desktop viewer over a single Artifact.
type GUI struct {
	artifact Artifact

	App    fyne.App
	Window fyne.Window

	SourceView      *widget.TextGrid
	DisassemblyView *widget.TextGrid
	SymbolsList     *widget.List
	StatusLabel     *widget.Label

	symbolNames []string
}

// Run builds and shows a GUI for artifact, blocking until the window is
// closed.
func Run(artifact Artifact) {
	g := newGUI(artifact)
	g.Window.ShowAndRun()
}

func newGUI(artifact Artifact) *GUI {
	myApp := app.New()
	myWindow := myApp.NewWindow("Bessambly Artifact Viewer")

	g := &GUI{
		artifact: artifact,
		App:      myApp,
		Window:   myWindow,
	}

	g.initializeViews()
	g.buildLayout()

	myWindow.Resize(fyne.NewSize(1100, 700))
	return g
}

func (g *GUI) initializeViews() {
	g.SourceView = widget.NewTextGrid()
	g.SourceView.SetText(strings.Join(g.artifact.Source, "\n"))

	g.DisassemblyView = widget.NewTextGrid()
	var disasm strings.Builder
	for i, inst := range g.artifact.Buffer.Instructions {
		word := uint32(0)
		if i < len(g.artifact.Words) {
			word = g.artifact.Words[i]
		}
		fmt.Fprintf(&disasm, "%04x:  %08x  %s\n", ir.AddressOf(i), word, inst.Op)
	}
	g.DisassemblyView.SetText(disasm.String())

	for name := range g.artifact.Symbols.All() {
		g.symbolNames = append(g.symbolNames, name)
	}
	g.SymbolsList = widget.NewList(
		func() int { return len(g.symbolNames) },
		func() fyne.CanvasObject { return widget.NewLabel("template") },
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			name := g.symbolNames[id]
			sym, _ := g.artifact.Symbols.Lookup(name)
			obj.(*widget.Label).SetText(fmt.Sprintf("%-16s %04x", name, sym.Address))
		},
	)

	g.StatusLabel = widget.NewLabel(fmt.Sprintf("%s — %d instructions, %d symbols",
		g.artifact.SourceFile, g.artifact.Buffer.Len(), g.artifact.Symbols.Len()))
}

func (g *GUI) buildLayout() {
	sourcePanel := container.NewBorder(widget.NewLabel("Source"), nil, nil, nil,
		container.NewScroll(g.SourceView))
	disasmPanel := container.NewBorder(widget.NewLabel("Instructions"), nil, nil, nil,
		container.NewScroll(g.DisassemblyView))
	symbolsPanel := container.NewBorder(widget.NewLabel("Symbols"), nil, nil, nil,
		container.NewScroll(g.SymbolsList))

	top := container.NewHSplit(sourcePanel, disasmPanel)
	top.SetOffset(0.4)

	main := container.NewVSplit(top, symbolsPanel)
	main.SetOffset(0.75)

	content := container.NewBorder(nil, g.StatusLabel, nil, nil, main)
	g.Window.SetContent(content)
}
