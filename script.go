package kipper

import (
	"errors"

	"kipper/internal/ast"
	"kipper/internal/diag"
	"kipper/internal/heap"
	"kipper/internal/interp"
	"kipper/internal/parser"
	"kipper/internal/source"
)

// Script is a parsed, not-yet-run program. Compile never touches the
// heap, so a Script can be built before Initialize.
type Script struct {
	name string
	file *source.File
	ast  *ast.File
}

// Compile parses code, returning a *SyntaxError if it contains any
// diagnostics at Error severity or above.
func Compile(name, code string) (*Script, error) {
	fs := source.NewFileSet()
	id := fs.AddVirtual(name, []byte(code))
	file := fs.Get(id)

	bag := diag.NewBag(100)
	astFile := parser.Parse(file, bag)
	if bag.HasErrors() {
		return nil, &SyntaxError{Diagnostics: bag.Items()}
	}
	return &Script{name: name, file: file, ast: astFile}, nil
}

// Run executes s's top-level statements against ctx's binding context,
// returning the last statement's completion value.
func (s *Script) Run(ctx Context) (Value, error) {
	w, err := ctx.rt.Interp.RunFileIn(ctx.ctx, s.ast)
	if err != nil {
		return Value{}, translateRunErr(err)
	}
	return wrap(ctx.rt, w), nil
}

// RunGlobal is a convenience for the common case of running against the
// live runtime's root context.
func (s *Script) RunGlobal() (Value, error) {
	return s.Run(RootContext())
}

func translateRunErr(err error) error {
	var rerr *interp.RuntimeError
	if errors.As(err, &rerr) {
		return &RuntimeError{Kind: RuntimeErrorKind(rerr.Kind), Message: rerr.Message}
	}
	if errors.Is(err, heap.ErrOutOfMemory) {
		return &OutOfMemoryError{Err: err}
	}
	return err
}
