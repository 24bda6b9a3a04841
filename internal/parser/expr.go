package parser

import (
	"strconv"

	"kipper/internal/ast"
	"kipper/internal/diag"
	"kipper/internal/token"
)

// parseExpr parses a full expression, including assignment, at the lowest
// precedence used by statement contexts (expression statements, for
// clauses, call arguments).
func (p *Parser) parseExpr() ast.Expr {
	return p.parseAssign()
}

func (p *Parser) parseAssign() ast.Expr {
	left := p.parseTernary()
	op, ok := assignOpFor(p.cur.Kind)
	if !ok {
		return left
	}
	p.advance()
	right := p.parseAssign() // right-associative
	n := &ast.Assign{Op: op, Target: left, Value: right}
	n.Sp = left.Span().Cover(right.Span())
	return n
}

func assignOpFor(k token.Kind) (ast.AssignOp, bool) {
	switch k {
	case token.Assign:
		return ast.AssignSet, true
	case token.PlusAssign:
		return ast.AssignAdd, true
	case token.MinusAssign:
		return ast.AssignSub, true
	case token.StarAssign:
		return ast.AssignMul, true
	case token.SlashAssign:
		return ast.AssignDiv, true
	case token.PercentAssign:
		return ast.AssignMod, true
	}
	return 0, false
}

func (p *Parser) parseTernary() ast.Expr {
	cond := p.parseOr()
	if !p.at(token.Question) {
		return cond
	}
	p.advance()
	then := p.parseAssign()
	p.expect(token.Colon)
	els := p.parseAssign()
	n := &ast.Ternary{Cond: cond, Then: then, Else: els}
	n.Sp = cond.Span().Cover(els.Span())
	return n
}

func (p *Parser) parseOr() ast.Expr {
	left := p.parseAnd()
	for p.at(token.OrOr) {
		p.advance()
		right := p.parseAnd()
		n := &ast.Binary{Op: ast.OpOr, Left: left, Right: right}
		n.Sp = left.Span().Cover(right.Span())
		left = n
	}
	return left
}

func (p *Parser) parseAnd() ast.Expr {
	left := p.parseEquality()
	for p.at(token.AndAnd) {
		p.advance()
		right := p.parseEquality()
		n := &ast.Binary{Op: ast.OpAnd, Left: left, Right: right}
		n.Sp = left.Span().Cover(right.Span())
		left = n
	}
	return left
}

func (p *Parser) parseEquality() ast.Expr {
	left := p.parseRelational()
	for p.at(token.EqEq) || p.at(token.BangEq) {
		op := ast.OpEq
		if p.at(token.BangEq) {
			op = ast.OpNotEq
		}
		p.advance()
		right := p.parseRelational()
		n := &ast.Binary{Op: op, Left: left, Right: right}
		n.Sp = left.Span().Cover(right.Span())
		left = n
	}
	return left
}

func (p *Parser) parseRelational() ast.Expr {
	left := p.parseAdditive()
	for {
		var op ast.BinaryOp
		switch p.cur.Kind {
		case token.Lt:
			op = ast.OpLt
		case token.LtEq:
			op = ast.OpLtEq
		case token.Gt:
			op = ast.OpGt
		case token.GtEq:
			op = ast.OpGtEq
		default:
			return left
		}
		p.advance()
		right := p.parseAdditive()
		n := &ast.Binary{Op: op, Left: left, Right: right}
		n.Sp = left.Span().Cover(right.Span())
		left = n
	}
}

func (p *Parser) parseAdditive() ast.Expr {
	left := p.parseMultiplicative()
	for p.at(token.Plus) || p.at(token.Minus) {
		op := ast.OpAdd
		if p.at(token.Minus) {
			op = ast.OpSub
		}
		p.advance()
		right := p.parseMultiplicative()
		n := &ast.Binary{Op: op, Left: left, Right: right}
		n.Sp = left.Span().Cover(right.Span())
		left = n
	}
	return left
}

func (p *Parser) parseMultiplicative() ast.Expr {
	left := p.parseUnary()
	for {
		var op ast.BinaryOp
		switch p.cur.Kind {
		case token.Star:
			op = ast.OpMul
		case token.Slash:
			op = ast.OpDiv
		case token.Percent:
			op = ast.OpMod
		default:
			return left
		}
		p.advance()
		right := p.parseUnary()
		n := &ast.Binary{Op: op, Left: left, Right: right}
		n.Sp = left.Span().Cover(right.Span())
		left = n
	}
}

func (p *Parser) parseUnary() ast.Expr {
	start := p.cur.Span
	switch p.cur.Kind {
	case token.Plus:
		p.advance()
		operand := p.parseUnary()
		n := &ast.Unary{Op: ast.UnaryPlus, Operand: operand}
		n.Sp = start.Cover(operand.Span())
		return n
	case token.Minus:
		p.advance()
		operand := p.parseUnary()
		n := &ast.Unary{Op: ast.UnaryMinus, Operand: operand}
		n.Sp = start.Cover(operand.Span())
		return n
	case token.Bang:
		p.advance()
		operand := p.parseUnary()
		n := &ast.Unary{Op: ast.UnaryNot, Operand: operand}
		n.Sp = start.Cover(operand.Span())
		return n
	case token.PlusPlus:
		p.advance()
		operand := p.parseUnary()
		n := &ast.Unary{Op: ast.UnaryPreIncr, Operand: operand}
		n.Sp = start.Cover(operand.Span())
		return n
	case token.MinusMinus:
		p.advance()
		operand := p.parseUnary()
		n := &ast.Unary{Op: ast.UnaryPreDecr, Operand: operand}
		n.Sp = start.Cover(operand.Span())
		return n
	default:
		return p.parsePostfix()
	}
}

func (p *Parser) parsePostfix() ast.Expr {
	x := p.parseCallOrMemberChain()
	for p.at(token.PlusPlus) || p.at(token.MinusMinus) {
		op := ast.PostfixIncr
		if p.at(token.MinusMinus) {
			op = ast.PostfixDecr
		}
		end := p.cur.Span
		p.advance()
		n := &ast.Postfix{Op: op, Operand: x}
		n.Sp = x.Span().Cover(end)
		x = n
	}
	return x
}

// parseCallOrMemberChain parses a primary expression followed by any
// number of call/index/member suffixes, e.g. a.b[c](d).e
func (p *Parser) parseCallOrMemberChain() ast.Expr {
	x := p.parsePrimary()
	for {
		switch p.cur.Kind {
		case token.LParen:
			x = p.parseCallSuffix(x)
		case token.LBracket:
			x = p.parseIndexSuffix(x)
		case token.Dot:
			x = p.parseMemberSuffix(x)
		default:
			return x
		}
	}
}

func (p *Parser) parseCallSuffix(callee ast.Expr) ast.Expr {
	p.advance() // (
	var args []ast.Expr
	for !p.at(token.RParen) && !p.at(token.EOF) {
		args = append(args, p.parseAssign())
		if p.at(token.Comma) {
			p.advance()
		}
	}
	end := p.cur.Span
	p.expect(token.RParen)
	n := &ast.Call{Callee: callee, Args: args}
	n.Sp = callee.Span().Cover(end)
	return n
}

func (p *Parser) parseIndexSuffix(target ast.Expr) ast.Expr {
	p.advance() // [
	key := p.parseExpr()
	end := p.cur.Span
	p.expect(token.RBracket)
	n := &ast.Index{Target: target, Key: key}
	n.Sp = target.Span().Cover(end)
	return n
}

func (p *Parser) parseMemberSuffix(target ast.Expr) ast.Expr {
	p.advance() // .
	name := p.expect(token.Ident)
	n := &ast.Member{Target: target, Name: name.Text}
	n.Sp = target.Span().Cover(name.Span)
	return n
}

func (p *Parser) parsePrimary() ast.Expr {
	tok := p.cur
	switch tok.Kind {
	case token.Ident:
		p.advance()
		n := &ast.Ident{Name: tok.Text}
		n.Sp = tok.Span
		return n
	case token.IntLit:
		p.advance()
		v, err := strconv.ParseInt(tok.Text, 10, 64)
		if err != nil || v < int64(minInt32) || v > int64(maxInt32) {
			// out-of-int32-range integer literals are represented as doubles
			f, _ := strconv.ParseFloat(tok.Text, 64)
			n := &ast.FloatLit{Value: f}
			n.Sp = tok.Span
			return n
		}
		n := &ast.IntLit{Value: int32(v)}
		n.Sp = tok.Span
		return n
	case token.FloatLit:
		p.advance()
		f, _ := strconv.ParseFloat(tok.Text, 64)
		n := &ast.FloatLit{Value: f}
		n.Sp = tok.Span
		return n
	case token.StringLit:
		p.advance()
		n := &ast.StringLit{Value: tok.Text}
		n.Sp = tok.Span
		return n
	case token.KwTrue, token.KwFalse:
		p.advance()
		n := &ast.BoolLit{Value: tok.Kind == token.KwTrue}
		n.Sp = tok.Span
		return n
	case token.KwNull:
		p.advance()
		n := &ast.NullLit{}
		n.Sp = tok.Span
		return n
	case token.KwUndefined:
		p.advance()
		n := &ast.UndefinedLit{}
		n.Sp = tok.Span
		return n
	case token.LParen:
		p.advance()
		x := p.parseExpr()
		p.expect(token.RParen)
		return x
	case token.LBracket:
		return p.parseArrayLit()
	case token.LBrace:
		return p.parseObjectLit()
	default:
		p.errorf(diag.CodeUnexpectedToken, "unexpected token %s in expression", tok.Kind)
		p.advance()
		n := &ast.UndefinedLit{}
		n.Sp = tok.Span
		return n
	}
}

const minInt32 = -2147483648
const maxInt32 = 2147483647

func (p *Parser) parseArrayLit() ast.Expr {
	start := p.cur.Span
	p.advance() // [
	var elems []ast.Expr
	for !p.at(token.RBracket) && !p.at(token.EOF) {
		elems = append(elems, p.parseAssign())
		if p.at(token.Comma) {
			p.advance()
		}
	}
	end := p.cur.Span
	p.expect(token.RBracket)
	n := &ast.ArrayLit{Elements: elems}
	n.Sp = start.Cover(end)
	return n
}

func (p *Parser) parseObjectLit() ast.Expr {
	start := p.cur.Span
	p.advance() // {
	var keys []string
	var vals []ast.Expr
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		var key string
		switch p.cur.Kind {
		case token.Ident:
			key = p.cur.Text
			p.advance()
		case token.StringLit:
			key = p.cur.Text
			p.advance()
		default:
			key = p.expect(token.Ident).Text
		}
		p.expect(token.Colon)
		val := p.parseAssign()
		keys = append(keys, key)
		vals = append(vals, val)
		if p.at(token.Comma) {
			p.advance()
		}
	}
	end := p.cur.Span
	p.expect(token.RBrace)
	n := &ast.ObjectLit{Keys: keys, Values: vals}
	n.Sp = start.Cover(end)
	return n
}
