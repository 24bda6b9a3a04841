package parser

import (
	"testing"

	"kipper/internal/ast"
	"kipper/internal/diag"
	"kipper/internal/source"
)

func parseSrc(t *testing.T, src string) (*ast.File, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.kip", []byte(src))
	bag := diag.NewBag(32)
	f := Parse(fs.Get(id), bag)
	return f, bag
}

func TestParseForLoop(t *testing.T) {
	f, bag := parseSrc(t, "for (i = 0; i < 3; i = i + 1) { Print(i); }")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}
	if len(f.Stmts) != 1 {
		t.Fatalf("want 1 top-level statement, got %d", len(f.Stmts))
	}
	if _, ok := f.Stmts[0].(*ast.For); !ok {
		t.Fatalf("want *ast.For, got %T", f.Stmts[0])
	}
}

func TestParseFunctionDecl(t *testing.T) {
	f, bag := parseSrc(t, "function f(a, b) { return a + b; }\nPrint(f(2, 3));")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}
	if len(f.Stmts) != 2 {
		t.Fatalf("want 2 statements, got %d: %#v", len(f.Stmts), f.Stmts)
	}
	fd, ok := f.Stmts[0].(*ast.FuncDecl)
	if !ok {
		t.Fatalf("want *ast.FuncDecl, got %T", f.Stmts[0])
	}
	if fd.Name != "f" || len(fd.Params) != 2 {
		t.Fatalf("got %+v", fd)
	}
}

func TestParseObjectAndMemberAssign(t *testing.T) {
	f, bag := parseSrc(t, "obj = {a: 1, b: {c: 2}};\nobj.b.c = obj.b.c + 40;")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}
	if len(f.Stmts) != 2 {
		t.Fatalf("want 2 statements, got %d", len(f.Stmts))
	}
}

func TestParseBreakOutsideLoopReportsDiagnostic(t *testing.T) {
	_, bag := parseSrc(t, "break;")
	if !bag.HasErrors() {
		t.Fatalf("expected a diagnostic for break outside a loop")
	}
	if bag.Items()[0].Code != diag.CodeIllegalBreak {
		t.Fatalf("got code %v", bag.Items()[0].Code)
	}
}

func TestParseTernaryAndLogical(t *testing.T) {
	f, bag := parseSrc(t, "x = a && b || c ? 1 : 2;")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}
	es, ok := f.Stmts[0].(*ast.ExprStmt)
	if !ok {
		t.Fatalf("want *ast.ExprStmt, got %T", f.Stmts[0])
	}
	assign, ok := es.X.(*ast.Assign)
	if !ok {
		t.Fatalf("want *ast.Assign, got %T", es.X)
	}
	if _, ok := assign.Value.(*ast.Ternary); !ok {
		t.Fatalf("want *ast.Ternary, got %T", assign.Value)
	}
}

func TestParseArrayPushCall(t *testing.T) {
	f, bag := parseSrc(t, "var = [];\nfor (i=0; i<1000; i=i+1) var.push(i);")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}
	if len(f.Stmts) != 2 {
		t.Fatalf("want 2 statements, got %d", len(f.Stmts))
	}
}
