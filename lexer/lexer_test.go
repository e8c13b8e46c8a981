package lexer_test

import (
	"testing"

	"github.com/stanimation3d/bessambly/lexer"
	"github.com/stanimation3d/bessambly/token"
)

func TestLexer_SimpleAssignment(t *testing.T) {
	l := lexer.New("A = 10")

	tok, err := l.NextToken()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok.Type != token.IDENT || tok.Lexeme != "A" {
		t.Fatalf("expected identifier A, got %v", tok)
	}

	tok, err = l.NextToken()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok.Type != token.ASSIGN {
		t.Fatalf("expected '=', got %v", tok)
	}

	tok, err = l.NextToken()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok.Type != token.INT || tok.Value != 10 {
		t.Fatalf("expected integer 10, got %v", tok)
	}
}

func TestLexer_Keywords(t *testing.T) {
	l := lexer.New("if goto MEM")

	want := []token.Type{token.IF, token.GOTO, token.MEM, token.EOF}
	for i, w := range want {
		tok, err := l.NextToken()
		if err != nil {
			t.Fatalf("token %d: unexpected error: %v", i, err)
		}
		if tok.Type != w {
			t.Fatalf("token %d: expected %v, got %v", i, w, tok.Type)
		}
	}
}

func TestLexer_TwoCharOperators(t *testing.T) {
	cases := []struct {
		in   string
		want token.Type
	}{
		{"==", token.EQ},
		{"!=", token.NE},
		{"<=", token.LE},
		{">=", token.GE},
		{"<", token.LT},
		{">", token.GT},
	}

	for _, c := range cases {
		l := lexer.New(c.in)
		tok, err := l.NextToken()
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", c.in, err)
		}
		if tok.Type != c.want {
			t.Errorf("%q: expected %v, got %v", c.in, c.want, tok.Type)
		}
	}
}

func TestLexer_HexLiteral(t *testing.T) {
	l := lexer.New("0x10")
	tok, err := l.NextToken()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok.Type != token.INT || tok.Value != 16 {
		t.Fatalf("expected 16, got %v", tok)
	}
}

func TestLexer_LineComment(t *testing.T) {
	l := lexer.New("A = 1 // comment\nB = 2")

	var types []token.Type
	for {
		tok, err := l.NextToken()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		types = append(types, tok.Type)
		if tok.Type == token.EOF {
			break
		}
	}

	want := []token.Type{
		token.IDENT, token.ASSIGN, token.INT, token.NEWLINE,
		token.IDENT, token.ASSIGN, token.INT, token.EOF,
	}
	if len(types) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %v", len(want), len(types), types)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("token %d: expected %v, got %v", i, want[i], types[i])
		}
	}
}

func TestLexer_LineNumbers(t *testing.T) {
	l := lexer.New("A = 1\nB = 2\n")

	var lastLine int
	for {
		tok, err := l.NextToken()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if tok.Type == token.EOF {
			break
		}
		lastLine = tok.Line
	}
	if lastLine != 2 {
		t.Fatalf("expected last token on line 2, got %d", lastLine)
	}
}

func TestLexer_SolitaryBangIsError(t *testing.T) {
	l := lexer.New("!")
	_, err := l.NextToken()
	if err == nil {
		t.Fatal("expected error for solitary '!'")
	}
}

func TestLexer_UnexpectedCharacter(t *testing.T) {
	l := lexer.New("$")
	_, err := l.NextToken()
	if err == nil {
		t.Fatal("expected error for unexpected character")
	}
}

func TestLexer_IdentifierLengthBound(t *testing.T) {
	long := ""
	for i := 0; i < token.MaxLexemeLen+1; i++ {
		long += "a"
	}
	l := lexer.New(long)
	_, err := l.NextToken()
	if err == nil {
		t.Fatal("expected error for over-long identifier")
	}
}

func TestLexer_MemKeyword(t *testing.T) {
	l := lexer.New("MEM[0x10]")
	toks, err := l.TokenizeAll()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []token.Type{token.MEM, token.LBRACKET, token.INT, token.RBRACKET, token.EOF}
	if len(toks) != len(want) {
		t.Fatalf("expected %d tokens, got %d", len(want), len(toks))
	}
	for i := range want {
		if toks[i].Type != want[i] {
			t.Errorf("token %d: expected %v, got %v", i, want[i], toks[i].Type)
		}
	}
}
