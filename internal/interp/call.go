package interp

import (
	"kipper/internal/ast"
	"kipper/internal/binding"
	"kipper/internal/handle"
	"kipper/internal/heap"
	"kipper/internal/value"
)

// evalCall evaluates a call expression: the callee is read as a
// Reference so a dotted call (obj.method()) can bind 'self' to obj,
// arguments are evaluated left to right, and the bound Function is
// invoked.
func (i *Interpreter) evalCall(ctx *binding.Context, n *ast.Call) (value.Word, error) {
	var self value.Word = value.Undefined
	var fn value.Word
	if member, ok := n.Callee.(*ast.Member); ok {
		base, err := i.evalExpr(ctx, member.Target)
		if err != nil {
			return value.Undefined, err
		}
		self = base
		propAddr, err := i.Heap.Symbols().Intern([]byte(member.Name))
		if err != nil {
			return value.Undefined, err
		}
		fn, err = i.getProperty(base, propAddr)
		if err != nil {
			return value.Undefined, err
		}
	} else {
		ref, err := i.evalReference(ctx, n.Callee)
		if err != nil {
			return value.Undefined, err
		}
		fn, err = i.GetValue(ref)
		if err != nil {
			return value.Undefined, err
		}
	}

	selfHdl := i.Handles.New(self)
	fnHdl := i.Handles.New(fn)

	args := make([]value.Word, len(n.Args))
	for idx, argExpr := range n.Args {
		w, err := i.evalExpr(ctx, argExpr)
		if err != nil {
			return value.Undefined, err
		}
		args[idx] = w
	}

	return i.Call(ctx, fnHdl.Get(), selfHdl.Get(), args)
}

// Call invokes fn (which must be a Function value) with self bound as
// the receiver and args passed positionally; missing trailing arguments
// bind to Undefined, and extras are still reachable through the
// "arguments_" binding, matching the observable source behavior. The new
// call frame is a child of ctx, the caller's own context, so a function
// declared inside another function's body resolves the enclosing
// function's locals through the call chain rather than only through the
// global scope. Callers with no script-level context of their own (the
// embedding API) pass i.Root.
func (i *Interpreter) Call(ctx *binding.Context, fn, self value.Word, args []value.Word) (value.Word, error) {
	if !value.IsHeapObject(fn) || i.Heap.Kind(value.AsAddr(fn)) != heap.KindFunction {
		return value.Undefined, notAFunctionError("value is not callable")
	}
	fnAddr := value.AsAddr(fn)
	isNative, idx := i.Heap.FunctionBody(fnAddr)

	selfHdl := i.Handles.New(self)
	fnHdl := i.Handles.New(fn)
	argHdls := make([]handle.Handle, len(args))
	for k, a := range args {
		argHdls[k] = i.Handles.New(a)
	}
	argsArr, err := i.Heap.AllocateKSArray(uint32(len(args)), heap.Fresh)
	if err != nil {
		return value.Undefined, err
	}
	self, fnAddr = selfHdl.Get(), value.AsAddr(fnHdl.Get())
	for k := range args {
		args[k] = argHdls[k].Get()
	}
	argsHdl := i.Handles.New(value.FromAddr(argsArr))
	for idx, a := range args {
		i.Heap.KSArraySet(value.AsAddr(argsHdl.Get()), uint32(idx), a)
	}

	if isNative {
		return i.natives[idx](i, self, args)
	}

	frame := binding.NewChild(ctx)
	defer frame.Exit()
	frame.SetSelf(self)
	defer i.enterHandles()()

	argumentsAddr, err := i.Heap.Symbols().Intern([]byte("arguments_"))
	if err != nil {
		return value.Undefined, err
	}
	frame.Push(argumentsAddr, argsHdl.Get())

	params := value.AsAddr(i.Heap.FunctionParams(fnAddr))
	paramCount := i.Heap.ArrayLen(params)
	for p := uint32(0); p < paramCount; p++ {
		nameWord := i.Heap.ArrayGet(params, p)
		var arg value.Word = value.Undefined
		if int(p) < len(args) {
			arg = args[p]
		}
		frame.Push(value.AsAddr(nameWord), arg)
	}

	body := i.astBodies[idx]
	if err := i.hoistFunctions(frame, body.Stmts); err != nil {
		return value.Undefined, err
	}
	for _, stmt := range body.Stmts {
		c, err := i.execStmt(frame, stmt)
		if err != nil {
			return value.Undefined, err
		}
		if c.Type == Return {
			return c.Value, nil
		}
		if isAbrupt(c) {
			break
		}
	}
	return value.Undefined, nil
}
