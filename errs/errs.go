// Package errs defines the closed error taxonomy used throughout the
// compiler pipeline: Syntax, Semantic and System errors, each carrying a
// source line number so the driver can print a single, line-qualified
// diagnostic and abort.
package errs

import "fmt"

// Kind classifies a CompileError.
type Kind int

const (
	Syntax Kind = iota
	Semantic
	System
)

func (k Kind) String() string {
	switch k {
	case Syntax:
		return "syntax error"
	case Semantic:
		return "semantic error"
	case System:
		return "error"
	default:
		return "error"
	}
}

// CompileError is a single, line-qualified diagnostic.
type CompileError struct {
	Kind    Kind
	Line    int
	Message string
}

func (e *CompileError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s: %s", e.Line, e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// New builds a CompileError.
func New(kind Kind, line int, format string, args ...any) *CompileError {
	return &CompileError{Kind: kind, Line: line, Message: fmt.Sprintf(format, args...)}
}

// List collects errors encountered while lexing or parsing. The pipeline
// is fail-fast: in practice only the first error is ever appended before
// compilation aborts, but List exists so a component can batch sibling
// diagnostics (e.g. lexer errors), should a caller want them.
type List struct {
	Errors []*CompileError
}

func (l *List) Add(err *CompileError) {
	l.Errors = append(l.Errors, err)
}

func (l *List) HasErrors() bool {
	return len(l.Errors) > 0
}

func (l *List) Error() string {
	if len(l.Errors) == 0 {
		return ""
	}
	return l.Errors[0].Error()
}
