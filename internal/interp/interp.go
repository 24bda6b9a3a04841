// Package interp implements the AST evaluator: expression and statement
// dispatch, the reference (lvalue) abstraction, the completion protocol,
// and function-call semantics. It depends on heap for allocation and GC
// safety and on binding for lexical scoping, but knows nothing about the
// concrete builtins a host installs — those are registered through
// DefineNativeFunction/RegisterInterceptor by the runtime package.
package interp

import (
	"fmt"

	"kipper/internal/ast"
	"kipper/internal/binding"
	"kipper/internal/handle"
	"kipper/internal/heap"
	"kipper/internal/value"
)

// NativeFunc is the signature every host-installed builtin implements.
// self is the dotted-call receiver (Undefined for a bare call).
type NativeFunc func(i *Interpreter, self value.Word, args []value.Word) (value.Word, error)

// Interceptor is a property-read shortcut consulted before a KSObject's
// HashTable, matched by the accessed object's Kind and property name.
type Interceptor struct {
	Kind heap.Kind
	Key  string
	Fn   func(i *Interpreter, obj value.Addr) value.Word
}

// Interpreter is the process-wide evaluator state: the heap, the root
// binding context, the root handle scope, and the builtin registries.
// Exactly one exists per runtime instance.
type Interpreter struct {
	Heap    *heap.Heap
	Root    *binding.Context
	Handles *handle.Scope

	natives      []NativeFunc
	astBodies    []*ast.Block
	interceptors []Interceptor
}

// New wires a fresh Interpreter to h, registering the root context and
// root handle scope as permanent GC roots.
func New(h *heap.Heap) *Interpreter {
	root := binding.NewRoot()
	hs := handle.NewRootScope()
	h.PushRoot(root)
	h.PushRoot(hs)
	return &Interpreter{Heap: h, Root: root, Handles: hs}
}

// DefineNativeFunction allocates a native Function bound to name in the
// root context. The params list is informational only for native
// functions; NativeFunc receives the raw args slice regardless.
func (i *Interpreter) DefineNativeFunction(name string, params []string, fn NativeFunc) error {
	nameAddr, err := i.Heap.Symbols().Intern([]byte(name))
	if err != nil {
		return err
	}
	paramsAddr, err := i.internedParams(params)
	if err != nil {
		return err
	}
	idx := len(i.natives)
	i.natives = append(i.natives, fn)
	fnAddr, err := i.Heap.AllocateFunction(value.FromAddr(nameAddr), value.FromAddr(paramsAddr), true, uint64(idx), heap.Tenured)
	if err != nil {
		return err
	}
	i.Root.Push(nameAddr, value.FromAddr(fnAddr))
	return nil
}

// RegisterNative appends fn to the native-function registry without
// binding any name to it, returning the index a Function object's body
// field should carry. Used for builtins reachable only through a
// property interceptor (e.g. KSArray's "push"), never as a bare name.
func (i *Interpreter) RegisterNative(fn NativeFunc) (uint64, error) {
	idx := uint64(len(i.natives))
	i.natives = append(i.natives, fn)
	return idx, nil
}

// RegisterInterceptor installs a property-read shortcut; the runtime
// package uses this to wire up "length" on KSArray/String and "push" on
// KSArray.
func (i *Interpreter) RegisterInterceptor(kind heap.Kind, key string, fn func(*Interpreter, value.Addr) value.Word) {
	i.interceptors = append(i.interceptors, Interceptor{Kind: kind, Key: key, Fn: fn})
}

// enterHandles opens a nested handle scope, registers it as a GC root in
// place of the currently active one, and returns a function that
// restores the previous scope. Every block and call frame brackets its
// execution with this so handles allocated inside never outlive it.
func (i *Interpreter) enterHandles() func() {
	child := i.Handles.Enter()
	i.Heap.PushRoot(child)
	prev := i.Handles
	i.Handles = child
	return func() {
		i.Handles = prev
		i.Heap.PopRoot()
		child.Exit()
	}
}

func (i *Interpreter) internedParams(params []string) (value.Addr, error) {
	arr, err := i.Heap.AllocateArray(uint32(len(params)), heap.Tenured)
	if err != nil {
		return 0, err
	}
	for idx, p := range params {
		a, err := i.Heap.Symbols().Intern([]byte(p))
		if err != nil {
			return 0, err
		}
		i.Heap.ArraySet(arr, uint32(idx), value.FromAddr(a))
	}
	return arr, nil
}

// RunFile hoists every top-level function declaration into the root
// context, then executes the file's statements in order. Any non-NORMAL
// completion reaching here (return/break/continue at top level) is
// rejected by the parser, never the evaluator, so it is folded to NORMAL
// defensively rather than treated as an error.
// RunFile's value result is the last statement's completion
// value (Undefined if the file was empty or its last statement carries
// none), letting an embedder treat a script like an expression.
func (i *Interpreter) RunFile(file *ast.File) (value.Word, error) {
	return i.RunFileIn(i.Root, file)
}

// RunFileIn is RunFile generalized to an arbitrary binding context,
// letting an embedder run a Script against bindings it pushed itself
// rather than always against the interpreter's root context.
func (i *Interpreter) RunFileIn(ctx *binding.Context, file *ast.File) (value.Word, error) {
	if err := i.hoistFunctions(ctx, file.Stmts); err != nil {
		return value.Undefined, err
	}
	last := value.Undefined
	for _, stmt := range file.Stmts {
		c, err := i.execStmt(ctx, stmt)
		if err != nil {
			return value.Undefined, err
		}
		last = c.Value
	}
	return last, nil
}

func (i *Interpreter) hoistFunctions(ctx *binding.Context, stmts []ast.Stmt) error {
	for _, stmt := range stmts {
		decl, ok := stmt.(*ast.FuncDecl)
		if !ok {
			continue
		}
		if err := i.defineASTFunction(ctx, decl); err != nil {
			return err
		}
	}
	return nil
}

func (i *Interpreter) defineASTFunction(ctx *binding.Context, decl *ast.FuncDecl) error {
	nameAddr, err := i.Heap.Symbols().Intern([]byte(decl.Name))
	if err != nil {
		return err
	}
	paramsAddr, err := i.internedParams(decl.Params)
	if err != nil {
		return err
	}
	bodyIdx := len(i.astBodies)
	i.astBodies = append(i.astBodies, decl.Body)
	fnAddr, err := i.Heap.AllocateFunction(value.FromAddr(nameAddr), value.FromAddr(paramsAddr), false, uint64(bodyIdx), heap.Fresh)
	if err != nil {
		return err
	}
	ctx.Push(nameAddr, value.FromAddr(fnAddr))
	return nil
}

// RuntimeError is any error raised by evaluation itself (as opposed to a
// Go-level plumbing error like allocation failure bubbling from the
// heap). Kind distinguishes the taxonomy the embedding boundary sees.
type RuntimeError struct {
	Kind    string
	Message string
}

func (e *RuntimeError) Error() string { return fmt.Sprintf("%s: %s", e.Kind, e.Message) }

func referenceError(format string, args ...any) *RuntimeError {
	return &RuntimeError{Kind: "ReferenceError", Message: fmt.Sprintf(format, args...)}
}

func notAFunctionError(format string, args ...any) *RuntimeError {
	return &RuntimeError{Kind: "NotAFunctionError", Message: fmt.Sprintf(format, args...)}
}
