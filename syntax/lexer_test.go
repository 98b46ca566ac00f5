package syntax

import (
	"bufio"
	"strings"
	"testing"

	"lunec/report"
)

// lexAll tokenizes src completely, failing the test on any lexical error.
func lexAll(t *testing.T, src string) []*Token {
	t.Helper()

	lexer, err := NewLexer("test.lune", bufio.NewReader(strings.NewReader(src)))
	if err != nil {
		t.Fatalf("lexer init failed: %s", err.Name)
	}

	var toks []*Token
	for {
		tok, err := lexer.NextToken()
		if err != nil {
			t.Fatalf("unexpected lexical error: %s", err.Name)
		}
		toks = append(toks, tok)
		if tok.Kind == EOF {
			return toks
		}
	}
}

// lexError tokenizes src until a lexical error occurs and returns it.
func lexError(t *testing.T, src string) *report.CompileError {
	t.Helper()

	lexer, err := NewLexer("test.lune", bufio.NewReader(strings.NewReader(src)))
	if err != nil {
		return err
	}

	for {
		tok, err := lexer.NextToken()
		if err != nil {
			return err
		}
		if tok.Kind == EOF {
			t.Fatal("expected a lexical error")
			return nil
		}
	}
}

func TestLexKeywordsAndSymbols(t *testing.T) {
	toks := lexAll(t, "fn main() i32 { return x_1; }")

	wantKinds := []int{FUNCTION, SYMBOL, LPAREN, RPAREN, TYPE_I32, LBRACE, RETURN, SYMBOL, SEMICOLON, RBRACE, EOF}
	if len(toks) != len(wantKinds) {
		t.Fatalf("got %d tokens, want %d", len(toks), len(wantKinds))
	}
	for i, want := range wantKinds {
		if toks[i].Kind != want {
			t.Errorf("token %d: kind = %d, want %d", i, toks[i].Kind, want)
		}
	}

	if toks[1].Value != "main" {
		t.Errorf("function name token = %q, want %q", toks[1].Value, "main")
	}
	if toks[7].Value != "x_1" {
		t.Errorf("identifier token = %q, want %q", toks[7].Value, "x_1")
	}
}

func TestLexOperators(t *testing.T) {
	toks := lexAll(t, "== != <= >= < > && || = ... & * / % + -")

	wantKinds := []int{EQ, NEQ, LTEQ, GTEQ, LT, GT, LAND, LOR, ASSIGN, ELLIPSIS, AMPERSAND, STAR, SLASH, PERCENT, PLUS, MINUS, EOF}
	for i, want := range wantKinds {
		if toks[i].Kind != want {
			t.Errorf("token %d: kind = %d, want %d", i, toks[i].Kind, want)
		}
	}
}

func TestLexNumericLiterals(t *testing.T) {
	toks := lexAll(t, "42 1_000 3.25 1_0.5_0")

	wants := []struct {
		kind  int
		value string
	}{
		{CONSTANT_INTEGER, "42"},
		{CONSTANT_INTEGER, "1000"},
		{CONSTANT_FLOAT, "3.25"},
		{CONSTANT_FLOAT, "10.50"},
	}

	for i, want := range wants {
		if toks[i].Kind != want.kind || toks[i].Value != want.value {
			t.Errorf("token %d = (%d, %q), want (%d, %q)", i, toks[i].Kind, toks[i].Value, want.kind, want.value)
		}
	}
}

func TestLexStringEscapes(t *testing.T) {
	toks := lexAll(t, `"a\tb\r\n\"\\"`)

	if toks[0].Kind != CONSTANT_STRING {
		t.Fatalf("kind = %d, want CONSTANT_STRING", toks[0].Kind)
	}
	if toks[0].Value != "a\tb\r\n\"\\" {
		t.Errorf("unescaped value = %q", toks[0].Value)
	}
}

func TestLexComments(t *testing.T) {
	toks := lexAll(t, "a // line comment\nb /* block\ncomment */ c")

	var names []string
	for _, tok := range toks {
		if tok.Kind == SYMBOL {
			names = append(names, tok.Value)
		}
	}

	if len(names) != 3 || names[0] != "a" || names[1] != "b" || names[2] != "c" {
		t.Errorf("symbols = %v, want [a b c]", names)
	}
}

func TestLexPositions(t *testing.T) {
	toks := lexAll(t, "ab\n  cd")

	if toks[0].Pos.Ln != 1 || toks[0].Pos.Col != 1 {
		t.Errorf("first token at %d:%d, want 1:1", toks[0].Pos.Ln, toks[0].Pos.Col)
	}
	if toks[1].Pos.Ln != 2 || toks[1].Pos.Col != 3 {
		t.Errorf("second token at %d:%d, want 2:3", toks[1].Pos.Ln, toks[1].Pos.Col)
	}
}

func TestLexByteOrderMark(t *testing.T) {
	toks := lexAll(t, "\xEF\xBB\xBFfn")
	if toks[0].Kind != FUNCTION {
		t.Errorf("kind after BOM = %d, want FUNCTION", toks[0].Kind)
	}

	if err := lexError(t, "\xEF\xBBfn"); err.Name != report.ErrIllegalFileFormat {
		t.Errorf("truncated BOM error = %s, want IllegalFileFormat", err.Name)
	}
}

func TestLexErrors(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"!x", report.ErrUnexpectedCharactor},
		{"|x", report.ErrUnexpectedCharactor},
		{"..", report.ErrUnexpectedCharactor},
		{"#", report.ErrUnexpectedCharactor},
		{`"\q"`, report.ErrUnexpectedCharactor},
		{"/* open", report.ErrUnexpectedEof},
		{`"open`, report.ErrUnexpectedEof},
	}

	for _, tc := range cases {
		if err := lexError(t, tc.src); err.Name != tc.want {
			t.Errorf("%q: error = %s, want %s", tc.src, err.Name, tc.want)
		}
	}
}
