package ast_test

import (
	"bytes"
	"strings"
	"testing"

	"kipper/internal/ast"
	"kipper/internal/diag"
	"kipper/internal/parser"
	"kipper/internal/source"
)

func TestFprintRendersStatementsAndExpressions(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.kip", []byte("function add(a, b) { return a + b; }\nPrint(add(1, 2));"))
	bag := diag.NewBag(32)
	file := parser.Parse(fs.Get(id), bag)
	if bag.HasErrors() {
		t.Fatalf("parse errors: %v", bag.Items())
	}

	var out bytes.Buffer
	if err := ast.Fprint(&out, file); err != nil {
		t.Fatalf("Fprint: %v", err)
	}

	got := out.String()
	for _, want := range []string{"(func-decl add (a b)\n", "(binary +\n", "(call", "(ident add)"} {
		if !strings.Contains(got, want) {
			t.Fatalf("output missing %q; got:\n%s", want, got)
		}
	}
}

func TestFprintHandlesEveryLiteralKind(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.kip", []byte(`x = [1, 2.5, "s", true, null, undefined, {a: 1}];`))
	bag := diag.NewBag(32)
	file := parser.Parse(fs.Get(id), bag)
	if bag.HasErrors() {
		t.Fatalf("parse errors: %v", bag.Items())
	}

	var out bytes.Buffer
	if err := ast.Fprint(&out, file); err != nil {
		t.Fatalf("Fprint: %v", err)
	}
	got := out.String()
	for _, want := range []string{"(int 1)", "(float 2.5)", `(string "s")`, "(bool true)", "(null)", "(undefined)", "(object"} {
		if !strings.Contains(got, want) {
			t.Fatalf("output missing %q; got:\n%s", want, got)
		}
	}
}
