package interp

import (
	"kipper/internal/ast"
	"kipper/internal/binding"
)

// execStmt executes stmt in ctx and returns the Completion it produces.
// Only Block, While, For, and function bodies ever see an abrupt
// completion from a nested statement; every other statement either
// propagates one unchanged or never produces one.
func (i *Interpreter) execStmt(ctx *binding.Context, stmt ast.Stmt) (Completion, error) {
	switch n := stmt.(type) {
	case *ast.Block:
		return i.execBlock(ctx, n)
	case *ast.ExprStmt:
		w, err := i.evalExpr(ctx, n.X)
		if err != nil {
			return Completion{}, err
		}
		return Completion{Type: Normal, Value: w}, nil
	case *ast.If:
		return i.execIf(ctx, n)
	case *ast.While:
		return i.execWhile(ctx, n)
	case *ast.For:
		return i.execFor(ctx, n)
	case *ast.Return:
		return i.execReturn(ctx, n)
	case *ast.Break:
		return Completion{Type: Break}, nil
	case *ast.Continue:
		return Completion{Type: Continue}, nil
	case *ast.FuncDecl:
		// already hoisted; re-executing the declaration is a no-op
		return normal(), nil
	default:
		return Completion{}, referenceError("unhandled statement node %T", stmt)
	}
}

// execBlock runs a brace-delimited statement list in a fresh child
// context and handle scope, hoisting any function declarations it
// directly contains first.
func (i *Interpreter) execBlock(parent *binding.Context, n *ast.Block) (Completion, error) {
	child := binding.NewChild(parent)
	defer child.Exit()
	defer i.enterHandles()()
	if err := i.hoistFunctions(child, n.Stmts); err != nil {
		return Completion{}, err
	}
	for _, stmt := range n.Stmts {
		c, err := i.execStmt(child, stmt)
		if err != nil {
			return Completion{}, err
		}
		if isAbrupt(c) {
			return c, nil
		}
	}
	return normal(), nil
}

func (i *Interpreter) execIf(ctx *binding.Context, n *ast.If) (Completion, error) {
	cond, err := i.evalExpr(ctx, n.Cond)
	if err != nil {
		return Completion{}, err
	}
	if i.ToBoolean(cond) {
		return i.execStmt(ctx, n.Then)
	}
	if n.Else != nil {
		return i.execStmt(ctx, n.Else)
	}
	return normal(), nil
}

func (i *Interpreter) execWhile(ctx *binding.Context, n *ast.While) (Completion, error) {
	for {
		cond, err := i.evalExpr(ctx, n.Cond)
		if err != nil {
			return Completion{}, err
		}
		if !i.ToBoolean(cond) {
			return normal(), nil
		}
		c, err := i.execStmt(ctx, n.Body)
		if err != nil {
			return Completion{}, err
		}
		switch c.Type {
		case Break:
			return normal(), nil
		case Return:
			return c, nil
		}
	}
}

func (i *Interpreter) execFor(ctx *binding.Context, n *ast.For) (Completion, error) {
	if n.Init != nil {
		if _, err := i.evalExpr(ctx, n.Init); err != nil {
			return Completion{}, err
		}
	}
	for {
		if n.Cond != nil {
			cond, err := i.evalExpr(ctx, n.Cond)
			if err != nil {
				return Completion{}, err
			}
			if !i.ToBoolean(cond) {
				return normal(), nil
			}
		}
		c, err := i.execStmt(ctx, n.Body)
		if err != nil {
			return Completion{}, err
		}
		switch c.Type {
		case Break:
			return normal(), nil
		case Return:
			return c, nil
		}
		if n.Post != nil {
			if _, err := i.evalExpr(ctx, n.Post); err != nil {
				return Completion{}, err
			}
		}
	}
}

func (i *Interpreter) execReturn(ctx *binding.Context, n *ast.Return) (Completion, error) {
	if n.Value == nil {
		return Completion{Type: Return}, nil
	}
	w, err := i.evalExpr(ctx, n.Value)
	if err != nil {
		return Completion{}, err
	}
	return Completion{Type: Return, Value: w}, nil
}
