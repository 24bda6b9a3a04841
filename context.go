package kipper

import (
	"kipper/internal/binding"
	"kipper/internal/runtime"
)

// Context wraps a lexical binding context, letting a host push and
// resolve names before and after running a Script.
type Context struct {
	ctx *binding.Context
	rt  *runtime.Runtime
}

// RootContext returns the live runtime's root context.
func RootContext() Context {
	rt := currentOrPanic()
	return Context{ctx: rt.Interp.Root, rt: rt}
}

// Push binds name to val in c, overwriting any existing binding of the
// same name in c's own frame.
func (c Context) Push(name string, val Value) error {
	addr, err := c.rt.Heap.Symbols().Intern([]byte(name))
	if err != nil {
		return err
	}
	c.ctx.Push(addr, val.w)
	return nil
}

// Resolve looks up name in c or any of its ancestors, reporting whether
// a binding was found.
func (c Context) Resolve(name string) (Value, bool) {
	addr, err := c.rt.Heap.Symbols().Intern([]byte(name))
	if err != nil {
		return Value{}, false
	}
	w, ok := c.ctx.Resolve(addr)
	if !ok {
		return Value{}, false
	}
	return wrap(c.rt, w), true
}
