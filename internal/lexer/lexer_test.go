package lexer

import (
	"testing"

	"kipper/internal/diag"
	"kipper/internal/source"
	"kipper/internal/token"
)

func lexAll(t *testing.T, src string) []token.Token {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.kip", []byte(src))
	bag := diag.NewBag(16)
	lx := New(fs.Get(id), bag)
	var toks []token.Token
	for {
		tk := lx.Next()
		toks = append(toks, tk)
		if tk.Kind == token.EOF {
			break
		}
	}
	return toks
}

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, tk := range toks {
		out[i] = tk.Kind
	}
	return out
}

func TestLexSimpleAssignment(t *testing.T) {
	toks := lexAll(t, "x = 1 + 2")
	got := kinds(toks)
	want := []token.Kind{token.Ident, token.Assign, token.IntLit, token.Plus, token.IntLit, token.EOF}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestLexNewlineIsSeparatorUnlessBracketed(t *testing.T) {
	toks := lexAll(t, "a\nb")
	got := kinds(toks)
	want := []token.Kind{token.Ident, token.EOL, token.Ident, token.EOF}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	bracketed := lexAll(t, "[1,\n2]")
	for _, tk := range bracketed {
		if tk.Kind == token.EOL {
			t.Errorf("newline inside brackets should not produce EOL")
		}
	}
}

func TestLexStringLiteralNoEscapes(t *testing.T) {
	toks := lexAll(t, `"foo"`)
	if toks[0].Kind != token.StringLit || toks[0].Text != "foo" {
		t.Errorf("got %+v", toks[0])
	}
}

func TestLexUnterminatedStringReportsDiagnostic(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.kip", []byte(`"unterminated`))
	bag := diag.NewBag(16)
	lx := New(fs.Get(id), bag)
	lx.Next()
	if !bag.HasErrors() {
		t.Errorf("expected a diagnostic for unterminated string")
	}
	if bag.Items()[0].Code != diag.CodeUnterminatedString {
		t.Errorf("got code %v", bag.Items()[0].Code)
	}
}

func TestLexLineComment(t *testing.T) {
	toks := lexAll(t, "a # comment\nb")
	got := kinds(toks)
	want := []token.Kind{token.Ident, token.EOL, token.Ident, token.EOF}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestLexKeywordsAndOperators(t *testing.T) {
	toks := lexAll(t, "function f() { return a++ && !b; }")
	got := kinds(toks)
	foundFunction := false
	foundAndAnd := false
	foundBang := false
	for _, k := range got {
		switch k {
		case token.KwFunction:
			foundFunction = true
		case token.AndAnd:
			foundAndAnd = true
		case token.Bang:
			foundBang = true
		}
	}
	if !foundFunction || !foundAndAnd || !foundBang {
		t.Errorf("missing expected tokens in %v", got)
	}
}
