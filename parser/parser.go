// Package parser implements the Bessambly recursive-descent parser: a
// two-token window over the lexer's token stream, producing an ast.Program.
// Newline tokens are statement separators and are silently
// skipped between statements; there is no error recovery or multi-error
// batching — the first violated expectation aborts with its token's line
// number.
package parser

import (
	"github.com/stanimation3d/bessambly/ast"
	"github.com/stanimation3d/bessambly/errs"
	"github.com/stanimation3d/bessambly/lexer"
	"github.com/stanimation3d/bessambly/token"
)

// Parser holds a current + peek token window over a Lexer.
type Parser struct {
	l *lexer.Lexer

	cur  token.Token
	peek token.Token

	// primeErr holds a lex error surfaced while priming the two-token
	// window in New, before Parse has a chance to check anything. It is
	// returned by the first call to Parse rather than being discarded.
	primeErr *errs.CompileError
}

// New creates a Parser over the given source text.
func New(input string) *Parser {
	p := &Parser{l: lexer.New(input)}
	cur, err := p.l.NextToken()
	p.cur = cur
	if err != nil {
		p.primeErr = err
		return p
	}
	peek, err := p.l.NextToken()
	p.peek = peek
	if err != nil {
		p.primeErr = err
	}
	return p
}

func (p *Parser) advance() *errs.CompileError {
	p.cur = p.peek
	next, err := p.l.NextToken()
	if err != nil {
		return err
	}
	p.peek = next
	return nil
}

func (p *Parser) skipNewlines() *errs.CompileError {
	for p.cur.Type == token.NEWLINE {
		if err := p.advance(); err != nil {
			return err
		}
	}
	return nil
}

func (p *Parser) expect(t token.Type, what string) *errs.CompileError {
	if p.cur.Type != t {
		return errs.New(errs.Syntax, p.cur.Line, "expected %s, got %q", what, p.cur.Lexeme)
	}
	return nil
}

// Parse consumes the entire token stream and returns the resulting
// program, or the first syntax/lexical error encountered.
func (p *Parser) Parse() (*ast.Program, *errs.CompileError) {
	if p.primeErr != nil {
		return nil, p.primeErr
	}

	prog := &ast.Program{}

	for {
		if err := p.skipNewlines(); err != nil {
			return nil, err
		}
		if p.cur.Type == token.EOF {
			return prog, nil
		}

		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		prog.Statements = append(prog.Statements, stmt)
	}
}

func (p *Parser) parseStatement() (ast.Statement, *errs.CompileError) {
	switch p.cur.Type {
	case token.GOTO:
		return p.parseGoto()
	case token.IF:
		return p.parseIfGoto()
	case token.MEM:
		return p.parseAssignment()
	case token.IDENT:
		if p.peek.Type == token.COLON {
			return p.parseLabelDef()
		}
		return p.parseAssignment()
	default:
		return ast.Statement{}, errs.New(errs.Syntax, p.cur.Line, "unexpected token %q", p.cur.Lexeme)
	}
}

func (p *Parser) parseLabelDef() (ast.Statement, *errs.CompileError) {
	line := p.cur.Line
	name := p.cur.Lexeme
	if err := p.advance(); err != nil { // consume identifier
		return ast.Statement{}, err
	}
	if err := p.expect(token.COLON, "':'"); err != nil {
		return ast.Statement{}, err
	}
	if err := p.advance(); err != nil { // consume ':'
		return ast.Statement{}, err
	}
	return ast.Statement{Kind: ast.StmtLabel, Line: line, Label: name}, nil
}

func (p *Parser) parseGoto() (ast.Statement, *errs.CompileError) {
	line := p.cur.Line
	if err := p.advance(); err != nil { // consume 'goto'
		return ast.Statement{}, err
	}
	if err := p.expect(token.IDENT, "label name"); err != nil {
		return ast.Statement{}, err
	}
	target := p.cur.Lexeme
	if err := p.advance(); err != nil { // consume identifier
		return ast.Statement{}, err
	}
	return ast.Statement{Kind: ast.StmtGoto, Line: line, Target: target}, nil
}

func (p *Parser) parseIfGoto() (ast.Statement, *errs.CompileError) {
	line := p.cur.Line
	if err := p.advance(); err != nil { // consume 'if'
		return ast.Statement{}, err
	}

	left, err := p.parseOperand()
	if err != nil {
		return ast.Statement{}, err
	}

	if !p.cur.Type.IsCondition() {
		return ast.Statement{}, errs.New(errs.Syntax, p.cur.Line, "expected a condition operator, got %q", p.cur.Lexeme)
	}
	cond := p.cur.Type
	if err := p.advance(); err != nil { // consume condop
		return ast.Statement{}, err
	}

	right, err := p.parseOperand()
	if err != nil {
		return ast.Statement{}, err
	}

	if err := p.expect(token.GOTO, "'goto'"); err != nil {
		return ast.Statement{}, err
	}
	if err := p.advance(); err != nil { // consume 'goto'
		return ast.Statement{}, err
	}

	if err := p.expect(token.IDENT, "label name"); err != nil {
		return ast.Statement{}, err
	}
	target := p.cur.Lexeme
	if err := p.advance(); err != nil { // consume identifier
		return ast.Statement{}, err
	}

	return ast.Statement{
		Kind: ast.StmtIfGoto, Line: line,
		Left: left, Cond: cond, Right: right, Target: target,
	}, nil
}

func (p *Parser) parseAssignment() (ast.Statement, *errs.CompileError) {
	line := p.cur.Line

	dest, err := p.parseDest()
	if err != nil {
		return ast.Statement{}, err
	}

	if err := p.expect(token.ASSIGN, "'='"); err != nil {
		return ast.Statement{}, err
	}
	if err := p.advance(); err != nil { // consume '='
		return ast.Statement{}, err
	}

	expr, err := p.parseExpression()
	if err != nil {
		return ast.Statement{}, err
	}

	return ast.Statement{Kind: ast.StmtAssign, Line: line, Dest: dest, Expr: expr}, nil
}

// parseDest parses an assignment destination: an identifier (register) or
// MEM[integer]. An immediate is never valid here — the grammar itself
// makes that true, since the only bracketed form is MEM[...], and bare
// identifiers are always treated as registers.
func (p *Parser) parseDest() (ast.Operand, *errs.CompileError) {
	if p.cur.Type == token.MEM {
		return p.parseMemOperand()
	}
	if p.cur.Type == token.IDENT {
		name := p.cur.Lexeme
		line := p.cur.Line
		if err := p.advance(); err != nil {
			return ast.Operand{}, err
		}
		return ast.Operand{Kind: ast.OpRegister, Name: name, Line: line}, nil
	}
	return ast.Operand{}, errs.New(errs.Syntax, p.cur.Line, "expected assignment destination, got %q", p.cur.Lexeme)
}

// parseOperand parses an identifier, integer literal, or MEM[integer].
func (p *Parser) parseOperand() (ast.Operand, *errs.CompileError) {
	switch p.cur.Type {
	case token.MEM:
		return p.parseMemOperand()
	case token.IDENT:
		name := p.cur.Lexeme
		line := p.cur.Line
		if err := p.advance(); err != nil {
			return ast.Operand{}, err
		}
		return ast.Operand{Kind: ast.OpRegister, Name: name, Line: line}, nil
	case token.INT:
		val := p.cur.Value
		line := p.cur.Line
		if err := p.advance(); err != nil {
			return ast.Operand{}, err
		}
		return ast.Operand{Kind: ast.OpImmediate, Value: val, Line: line}, nil
	default:
		return ast.Operand{}, errs.New(errs.Syntax, p.cur.Line, "expected an operand, got %q", p.cur.Lexeme)
	}
}

// parseMemOperand parses MEM[integer]; MEM must enclose a single integer
// literal, never an identifier or expression.
func (p *Parser) parseMemOperand() (ast.Operand, *errs.CompileError) {
	line := p.cur.Line
	if err := p.advance(); err != nil { // consume 'MEM'
		return ast.Operand{}, err
	}
	if err := p.expect(token.LBRACKET, "'['"); err != nil {
		return ast.Operand{}, err
	}
	if err := p.advance(); err != nil { // consume '['
		return ast.Operand{}, err
	}
	if err := p.expect(token.INT, "an integer memory address"); err != nil {
		return ast.Operand{}, errs.New(errs.Syntax, p.cur.Line, "invalid memory address: MEM[...] must enclose a single integer literal")
	}
	addr := p.cur.Value
	if err := p.advance(); err != nil { // consume integer
		return ast.Operand{}, err
	}
	if err := p.expect(token.RBRACKET, "']'"); err != nil {
		return ast.Operand{}, err
	}
	if err := p.advance(); err != nil { // consume ']'
		return ast.Operand{}, err
	}
	return ast.Operand{Kind: ast.OpMemory, Memory: addr, Line: line}, nil
}

// parseExpression parses operand [ binop operand ]. Binary expressions are
// one level deep by design — the parser does not build a precedence tree.
func (p *Parser) parseExpression() (ast.Expression, *errs.CompileError) {
	left, err := p.parseOperand()
	if err != nil {
		return ast.Expression{}, err
	}

	if !p.cur.Type.IsBinOp() {
		return ast.Expression{Left: left}, nil
	}

	op := p.cur.Type
	if err := p.advance(); err != nil { // consume binop
		return ast.Expression{}, err
	}

	right, err := p.parseOperand()
	if err != nil {
		return ast.Expression{}, err
	}

	return ast.Expression{Left: left, IsBin: true, Op: op, Right: right}, nil
}
