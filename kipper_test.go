package kipper

import (
	"bytes"
	"errors"
	"testing"

	"kipper/internal/heap"
)

func initFresh(t *testing.T, out *bytes.Buffer) {
	t.Helper()
	Configure(Options{HeapSizeBytes: 1 << 16, TenureThreshold: 3, Stdout: out})
	if err := Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	t.Cleanup(Shutdown)
}

func TestCompileRunGlobalReturnsLastValue(t *testing.T) {
	var out bytes.Buffer
	initFresh(t, &out)

	s, err := Compile("test.kip", "x = 40; x + 2;")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	v, err := s.RunGlobal()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := v.ToFloat64(); got != 42 {
		t.Fatalf("got %v", got)
	}
}

func TestCompileSyntaxErrorNeverPanics(t *testing.T) {
	_, err := Compile("bad.kip", "function ( { }")
	if err == nil {
		t.Fatal("want a SyntaxError")
	}
	var synErr *SyntaxError
	if !errors.As(err, &synErr) {
		t.Fatalf("want *SyntaxError, got %T", err)
	}
}

func TestContextPushAndResolveRoundTrip(t *testing.T) {
	var out bytes.Buffer
	initFresh(t, &out)

	ctx := RootContext()
	if err := ctx.Push("greeting", NewInt(7)); err != nil {
		t.Fatalf("Push: %v", err)
	}
	v, ok := ctx.Resolve("greeting")
	if !ok {
		t.Fatal("want Resolve to find 'greeting'")
	}
	if v.ToFloat64() != 7 {
		t.Fatalf("got %v", v.ToFloat64())
	}
	if _, ok := ctx.Resolve("nope"); ok {
		t.Fatal("want Resolve to miss an unbound name")
	}
}

func TestValueConstructorsAndPredicates(t *testing.T) {
	var out bytes.Buffer
	initFresh(t, &out)

	n := NewInt(5)
	if !n.IsNumber() || n.IsString() {
		t.Fatalf("NewInt predicates wrong: %+v", n)
	}
	s, err := NewString([]byte("hi"))
	if err != nil {
		t.Fatalf("NewString: %v", err)
	}
	if !s.IsString() || s.ToString() != "hi" {
		t.Fatalf("NewString roundtrip failed: %q", s.ToString())
	}
	arr, err := NewArray(3)
	if err != nil {
		t.Fatalf("NewArray: %v", err)
	}
	if !arr.IsArray() || !arr.IsObject() {
		t.Fatalf("NewArray predicates wrong: %+v", arr)
	}
	obj, err := NewObject()
	if err != nil {
		t.Fatalf("NewObject: %v", err)
	}
	if !obj.IsObject() || obj.IsArray() {
		t.Fatalf("NewObject predicates wrong: %+v", obj)
	}
	if !NewBoolean(true).ToBoolean() {
		t.Fatal("NewBoolean(true).ToBoolean() should be true")
	}
	if !Undefined().IsUndefined() || !Null().IsNull() {
		t.Fatal("Undefined()/Null() predicates wrong")
	}
}

func TestNewFunctionIsCallableFromGoAndScript(t *testing.T) {
	var out bytes.Buffer
	initFresh(t, &out)

	fn, err := NewFunction("double", []string{"x"}, func(self Value, args []Value) (Value, error) {
		return NewNumber(args[0].ToFloat64() * 2), nil
	})
	if err != nil {
		t.Fatalf("NewFunction: %v", err)
	}
	result, err := fn.Call(Undefined(), NewInt(21))
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if result.ToFloat64() != 42 {
		t.Fatalf("got %v", result.ToFloat64())
	}

	s, err := Compile("test.kip", "double(10);")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	v, err := s.RunGlobal()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if v.ToFloat64() != 20 {
		t.Fatalf("got %v", v.ToFloat64())
	}
}

func TestNestedFunctionResolvesEnclosingCallLocals(t *testing.T) {
	var out bytes.Buffer
	initFresh(t, &out)

	s, err := Compile("test.kip", `
		function outer() {
			y = 5;
			function inner() {
				return y + 1;
			}
			return inner();
		}
		outer();
	`)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	v, err := s.RunGlobal()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if v.ToFloat64() != 6 {
		t.Fatalf("got %v, want inner() to resolve outer()'s local y through the call chain", v.ToFloat64())
	}
}

func TestAssertionFailureSurfacesAsRuntimeError(t *testing.T) {
	var out bytes.Buffer
	initFresh(t, &out)

	s, err := Compile("test.kip", `Assert(1 == 2, "boom");`)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	_, runErr := s.RunGlobal()
	var rerr *RuntimeError
	if !errors.As(runErr, &rerr) {
		t.Fatalf("want *RuntimeError, got %T (%v)", runErr, runErr)
	}
	if rerr.Kind != AssertionError {
		t.Fatalf("got kind %v", rerr.Kind)
	}
}

func TestOutOfMemoryErrorUnwrapsToHeapSentinel(t *testing.T) {
	err := &OutOfMemoryError{Err: heap.ErrOutOfMemory}
	if !errors.Is(err, heap.ErrOutOfMemory) {
		t.Fatal("OutOfMemoryError should unwrap to heap.ErrOutOfMemory")
	}
}
