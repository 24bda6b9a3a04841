package interp

import (
	"kipper/internal/ast"
	"kipper/internal/binding"
	"kipper/internal/heap"
	"kipper/internal/value"
)

// evalExpr dispatches on node kind and returns the value the expression
// produces.
func (i *Interpreter) evalExpr(ctx *binding.Context, expr ast.Expr) (value.Word, error) {
	switch n := expr.(type) {
	case *ast.Ident:
		nameAddr, err := i.Heap.Symbols().Intern([]byte(n.Name))
		if err != nil {
			return value.Undefined, err
		}
		w, _ := ctx.Resolve(nameAddr)
		return w, nil
	case *ast.IntLit:
		return value.FromInt32(n.Value), nil
	case *ast.FloatLit:
		return value.FromFloat64(n.Value), nil
	case *ast.StringLit:
		a, err := i.Heap.AllocateString([]byte(n.Value), heap.Fresh)
		if err != nil {
			return value.Undefined, err
		}
		return value.FromAddr(a), nil
	case *ast.BoolLit:
		return value.FromBool(n.Value), nil
	case *ast.NullLit:
		return value.Null, nil
	case *ast.UndefinedLit:
		return value.Undefined, nil
	case *ast.ArrayLit:
		return i.evalArrayLit(ctx, n)
	case *ast.ObjectLit:
		return i.evalObjectLit(ctx, n)
	case *ast.Unary:
		return i.evalUnary(ctx, n)
	case *ast.Postfix:
		return i.evalPostfix(ctx, n)
	case *ast.Binary:
		return i.evalBinary(ctx, n)
	case *ast.Assign:
		return i.evalAssign(ctx, n)
	case *ast.Ternary:
		return i.evalTernary(ctx, n)
	case *ast.Call:
		return i.evalCall(ctx, n)
	case *ast.Index:
		ref, err := i.evalReference(ctx, n)
		if err != nil {
			return value.Undefined, err
		}
		return i.GetValue(ref)
	case *ast.Member:
		ref, err := i.evalReference(ctx, n)
		if err != nil {
			return value.Undefined, err
		}
		return i.GetValue(ref)
	default:
		return value.Undefined, referenceError("unhandled expression node %T", expr)
	}
}

func (i *Interpreter) evalArrayLit(ctx *binding.Context, n *ast.ArrayLit) (value.Word, error) {
	arr, err := i.Heap.AllocateKSArray(uint32(len(n.Elements)), heap.Fresh)
	if err != nil {
		return value.Undefined, err
	}
	hdl := i.Handles.New(value.FromAddr(arr))
	for idx, elem := range n.Elements {
		w, err := i.evalExpr(ctx, elem)
		if err != nil {
			return value.Undefined, err
		}
		i.Heap.KSArraySet(value.AsAddr(hdl.Get()), uint32(idx), w)
	}
	return hdl.Get(), nil
}

func (i *Interpreter) evalObjectLit(ctx *binding.Context, n *ast.ObjectLit) (value.Word, error) {
	obj, err := i.Heap.AllocateKSObject(heap.Fresh)
	if err != nil {
		return value.Undefined, err
	}
	hdl := i.Handles.New(value.FromAddr(obj))
	for idx, key := range n.Keys {
		w, err := i.evalExpr(ctx, n.Values[idx])
		if err != nil {
			return value.Undefined, err
		}
		keyAddr, err := i.Heap.Symbols().Intern([]byte(key))
		if err != nil {
			return value.Undefined, err
		}
		if err := i.Heap.SetProperty(value.AsAddr(hdl.Get()), keyAddr, w); err != nil {
			return value.Undefined, err
		}
	}
	return hdl.Get(), nil
}

func (i *Interpreter) evalUnary(ctx *binding.Context, n *ast.Unary) (value.Word, error) {
	if n.Op == ast.UnaryPreIncr || n.Op == ast.UnaryPreDecr {
		return i.evalIncrDecr(ctx, n.Operand, n.Op == ast.UnaryPreIncr, false)
	}
	w, err := i.evalExpr(ctx, n.Operand)
	if err != nil {
		return value.Undefined, err
	}
	switch n.Op {
	case ast.UnaryPlus:
		return i.ToNumber(w), nil
	case ast.UnaryMinus:
		return value.MakeFit(-i.ToFloat64(w)), nil
	case ast.UnaryNot:
		return value.FromBool(!i.ToBoolean(w)), nil
	default:
		return value.Undefined, referenceError("unhandled unary operator")
	}
}

func (i *Interpreter) evalPostfix(ctx *binding.Context, n *ast.Postfix) (value.Word, error) {
	return i.evalIncrDecr(ctx, n.Operand, n.Op == ast.PostfixIncr, true)
}

// evalIncrDecr implements both prefix and postfix ++/--. The result's
// representation follows the operand's: an int32 operand stays int32, a
// HeapNumber operand stays a HeapNumber (MakeFit is deliberately not
// applied here, matching the documented HeapNumber increment behavior),
// anything else becomes a double. postfix reports the pre-modification
// value; prefix reports the post-modification value.
func (i *Interpreter) evalIncrDecr(ctx *binding.Context, target ast.Expr, increment, postfix bool) (value.Word, error) {
	ref, err := i.evalReference(ctx, target)
	if err != nil {
		return value.Undefined, err
	}
	before, err := i.GetValue(ref)
	if err != nil {
		return value.Undefined, err
	}
	delta := 1.0
	if !increment {
		delta = -1.0
	}

	var after value.Word
	switch {
	case value.IsInt32(before):
		after = value.FromInt32(value.AsInt32(before) + int32(delta))
	case i.isHeapNumber(before):
		addr, err := i.Heap.AllocateHeapNumber(i.Heap.HeapNumberValue(value.AsAddr(before))+int64(delta), heap.Fresh)
		if err != nil {
			return value.Undefined, err
		}
		after = value.FromAddr(addr)
	default:
		after = value.FromFloat64(i.ToFloat64(before) + delta)
	}

	if err := i.SetValue(ref, after); err != nil {
		return value.Undefined, err
	}
	if postfix {
		return before, nil
	}
	return after, nil
}

func (i *Interpreter) evalBinary(ctx *binding.Context, n *ast.Binary) (value.Word, error) {
	if n.Op == ast.OpAnd || n.Op == ast.OpOr {
		return i.evalLogical(ctx, n)
	}
	left, err := i.evalExpr(ctx, n.Left)
	if err != nil {
		return value.Undefined, err
	}
	leftHdl := i.Handles.New(left)
	right, err := i.evalExpr(ctx, n.Right)
	if err != nil {
		return value.Undefined, err
	}
	left = leftHdl.Get()

	switch n.Op {
	case ast.OpAdd:
		return i.evalAdd(left, right)
	case ast.OpSub:
		return value.MakeFit(i.ToFloat64(left) - i.ToFloat64(right)), nil
	case ast.OpMul:
		return value.MakeFit(i.ToFloat64(left) * i.ToFloat64(right)), nil
	case ast.OpDiv:
		return value.MakeFit(i.ToFloat64(left) / i.ToFloat64(right)), nil
	case ast.OpMod:
		return value.MakeFit(floatMod(i.ToFloat64(left), i.ToFloat64(right))), nil
	case ast.OpEq:
		return value.FromBool(i.Equals(left, right)), nil
	case ast.OpNotEq:
		return value.FromBool(!i.Equals(left, right)), nil
	case ast.OpLt:
		return value.FromBool(i.ToFloat64(left) < i.ToFloat64(right)), nil
	case ast.OpLtEq:
		return value.FromBool(i.ToFloat64(left) <= i.ToFloat64(right)), nil
	case ast.OpGt:
		return value.FromBool(i.ToFloat64(left) > i.ToFloat64(right)), nil
	case ast.OpGtEq:
		return value.FromBool(i.ToFloat64(left) >= i.ToFloat64(right)), nil
	default:
		return value.Undefined, referenceError("unhandled binary operator")
	}
}

func floatMod(a, b float64) float64 {
	m := a - b*float64(int64(a/b))
	return m
}

func (i *Interpreter) evalAdd(left, right value.Word) (value.Word, error) {
	if i.isString(left) || i.isString(right) {
		leftBytes := i.ToStringBytes(left)
		rightBytes := i.ToStringBytes(right)
		buf := make([]byte, 0, len(leftBytes)+len(rightBytes))
		buf = append(buf, leftBytes...)
		buf = append(buf, rightBytes...)
		a, err := i.Heap.AllocateString(buf, heap.Fresh)
		if err != nil {
			return value.Undefined, err
		}
		return value.FromAddr(a), nil
	}
	return value.MakeFit(i.ToFloat64(left) + i.ToFloat64(right)), nil
}

// evalLogical implements && and || with short-circuit evaluation: only
// the side needed to decide the result is evaluated, so a right operand
// with side effects only runs when the left side didn't already decide
// the outcome.
func (i *Interpreter) evalLogical(ctx *binding.Context, n *ast.Binary) (value.Word, error) {
	left, err := i.evalExpr(ctx, n.Left)
	if err != nil {
		return value.Undefined, err
	}
	if n.Op == ast.OpAnd {
		if !i.ToBoolean(left) {
			return left, nil
		}
		return i.evalExpr(ctx, n.Right)
	}
	if i.ToBoolean(left) {
		return left, nil
	}
	return i.evalExpr(ctx, n.Right)
}

func (i *Interpreter) evalAssign(ctx *binding.Context, n *ast.Assign) (value.Word, error) {
	ref, err := i.evalReference(ctx, n.Target)
	if err != nil {
		return value.Undefined, err
	}
	rhs, err := i.evalExpr(ctx, n.Value)
	if err != nil {
		return value.Undefined, err
	}
	if n.Op != ast.AssignSet {
		current, err := i.GetValue(ref)
		if err != nil {
			return value.Undefined, err
		}
		switch n.Op {
		case ast.AssignAdd:
			rhs, err = i.evalAdd(current, rhs)
		case ast.AssignSub:
			rhs = value.MakeFit(i.ToFloat64(current) - i.ToFloat64(rhs))
		case ast.AssignMul:
			rhs = value.MakeFit(i.ToFloat64(current) * i.ToFloat64(rhs))
		case ast.AssignDiv:
			rhs = value.MakeFit(i.ToFloat64(current) / i.ToFloat64(rhs))
		case ast.AssignMod:
			rhs = value.MakeFit(floatMod(i.ToFloat64(current), i.ToFloat64(rhs)))
		}
		if err != nil {
			return value.Undefined, err
		}
	}
	if err := i.SetValue(ref, rhs); err != nil {
		return value.Undefined, err
	}
	return rhs, nil
}

func (i *Interpreter) evalTernary(ctx *binding.Context, n *ast.Ternary) (value.Word, error) {
	cond, err := i.evalExpr(ctx, n.Cond)
	if err != nil {
		return value.Undefined, err
	}
	if i.ToBoolean(cond) {
		return i.evalExpr(ctx, n.Then)
	}
	return i.evalExpr(ctx, n.Else)
}
