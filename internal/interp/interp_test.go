package interp_test

import (
	"bytes"
	"testing"

	"kipper/internal/diag"
	"kipper/internal/heap"
	"kipper/internal/interp"
	"kipper/internal/parser"
	"kipper/internal/runtime"
	"kipper/internal/source"
	"kipper/internal/value"
)

// runProgram parses and runs src against a fresh Interpreter with the
// standard builtins installed, returning whatever Print wrote and the
// file's own completion value.
func runProgram(t *testing.T, src string, cfg heap.Config) (string, value.Word) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.kip", []byte(src))
	bag := diag.NewBag(64)
	file := parser.Parse(fs.Get(id), bag)
	if bag.HasErrors() {
		t.Fatalf("parse errors: %v", bag.Items())
	}

	h := heap.New(cfg)
	i := interp.New(h)
	var out bytes.Buffer
	if err := runtime.Install(i, &out); err != nil {
		t.Fatalf("install builtins: %v", err)
	}
	result, err := i.RunFile(file)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	return out.String(), result
}

func smallHeap() heap.Config {
	return heap.Config{HeapSizeBytes: 1 << 16, TenureThreshold: 3}
}

func TestForLoopPrintsEachIteration(t *testing.T) {
	out, _ := runProgram(t, "for (i = 0; i < 3; i = i + 1) { Print(i); }", smallHeap())
	if out != "0\n1\n2\n" {
		t.Fatalf("got %q", out)
	}
}

func TestFunctionCallAddsArguments(t *testing.T) {
	out, _ := runProgram(t, "function add(a, b) { return a + b; }\nPrint(add(2, 3));", smallHeap())
	if out != "5\n" {
		t.Fatalf("got %q", out)
	}
}

func TestArraySurvivesGCAfterManyPushes(t *testing.T) {
	src := `
arr = [];
for (i = 0; i < 1000; i = i + 1) {
	arr.push(i);
}
Print(arr.length);
Print(arr[999]);
Print(arr[0]);
`
	out, _ := runProgram(t, src, smallHeap())
	if out != "1000\n999\n0\n" {
		t.Fatalf("got %q", out)
	}
}

func TestStringNumberCoercionBothDirections(t *testing.T) {
	src := `
Print("count: " + 5);
Print(1 + "2");
`
	out, _ := runProgram(t, src, smallHeap())
	if out != "count: 5\n12\n" {
		t.Fatalf("got %q", out)
	}
}

func TestNestedObjectPropertyReadModifyWrite(t *testing.T) {
	src := `
obj = {a: 1, b: {c: 2}};
obj.b.c = obj.b.c + 40;
Print(obj.b.c);
Print(obj.a);
`
	out, _ := runProgram(t, src, smallHeap())
	if out != "42\n1\n" {
		t.Fatalf("got %q", out)
	}
}

func TestManyShortLivedStringsUnderDefaultHeap(t *testing.T) {
	src := `
count = 0;
for (i = 0; i < 10000; i = i + 1) {
	s = "item-" + i;
	if (s.length > 0) {
		count = count + 1;
	}
}
Print(count);
`
	out, _ := runProgram(t, src, heap.DefaultConfig())
	if out != "10000\n" {
		t.Fatalf("got %q", out)
	}
}

func TestAssertFailureIsRuntimeErrorNotPanic(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.kip", []byte(`Assert(1 == 2, "nope");`))
	bag := diag.NewBag(64)
	file := parser.Parse(fs.Get(id), bag)
	if bag.HasErrors() {
		t.Fatalf("parse errors: %v", bag.Items())
	}

	h := heap.New(smallHeap())
	i := interp.New(h)
	var out bytes.Buffer
	if err := runtime.Install(i, &out); err != nil {
		t.Fatalf("install builtins: %v", err)
	}
	_, err := i.RunFile(file)
	rerr, ok := err.(*interp.RuntimeError)
	if !ok {
		t.Fatalf("want *interp.RuntimeError, got %T (%v)", err, err)
	}
	if rerr.Kind != "AssertionError" {
		t.Fatalf("got kind %q", rerr.Kind)
	}
}
