// Package semantic implements the two-pass semantic analyzer: pass 1
// collects label definitions into a symbol table, pass 2 verifies every
// goto/if-goto target resolves.
//
// Pass 1 advances its instruction-index counter by one for every
// statement, including label definitions themselves — a deliberately
// preserved, internally inconsistent indexing quirk. Downstream, the
// lowerer does not reuse this counter for branch-target addressing; see
// the lower package.
package semantic

import (
	"github.com/stanimation3d/bessambly/ast"
	"github.com/stanimation3d/bessambly/errs"
	"github.com/stanimation3d/bessambly/symtab"
)

// Analyze runs both passes over prog and returns the populated symbol
// table. Either pass's failure is fatal and returned immediately.
func Analyze(prog *ast.Program) (*symtab.Table, *errs.CompileError) {
	table := symtab.New()

	if err := collectLabels(prog, table); err != nil {
		return nil, err
	}
	if err := verifyJumps(prog, table); err != nil {
		return nil, err
	}
	return table, nil
}

// collectLabels is pass 1.
func collectLabels(prog *ast.Program, table *symtab.Table) *errs.CompileError {
	var index uint32
	for _, stmt := range prog.Statements {
		if stmt.Kind == ast.StmtLabel {
			if err := table.Insert(stmt.Label, symtab.Label, index); err != nil {
				return errs.New(errs.Semantic, stmt.Line, "%s", err)
			}
		}
		index++
	}
	return nil
}

// verifyJumps is pass 2.
func verifyJumps(prog *ast.Program, table *symtab.Table) *errs.CompileError {
	for _, stmt := range prog.Statements {
		switch stmt.Kind {
		case ast.StmtGoto:
			if err := verifyTarget(table, stmt.Target, stmt.Line); err != nil {
				return err
			}
		case ast.StmtIfGoto:
			if err := verifyTarget(table, stmt.Target, stmt.Line); err != nil {
				return err
			}
		}
	}
	return nil
}

func verifyTarget(table *symtab.Table, name string, line int) *errs.CompileError {
	sym, ok := table.Lookup(name)
	if !ok || sym.Kind != symtab.Label {
		return errs.New(errs.Semantic, line, "unknown label %q", name)
	}
	return nil
}
