package parser

import (
	"kipper/internal/ast"
	"kipper/internal/diag"
	"kipper/internal/token"
)

func (p *Parser) parseStmt() ast.Stmt {
	switch p.cur.Kind {
	case token.LBrace:
		return p.parseBlock()
	case token.KwIf:
		return p.parseIf()
	case token.KwWhile:
		return p.parseWhile()
	case token.KwFor:
		return p.parseFor()
	case token.KwFunction:
		return p.parseFuncDecl()
	case token.KwReturn:
		return p.parseReturn()
	case token.KwBreak:
		return p.parseBreak()
	case token.KwContinue:
		return p.parseContinue()
	default:
		return p.parseExprStmt()
	}
}

func (p *Parser) parseBlock() *ast.Block {
	start := p.cur.Span
	p.expect(token.LBrace)
	p.skipEOLs()
	var stmts []ast.Stmt
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		stmts = append(stmts, p.parseStmt())
		p.skipEOLs()
	}
	end := p.cur.Span
	p.expect(token.RBrace)
	b := &ast.Block{Stmts: stmts}
	b.Sp = start.Cover(end)
	return b
}

func (p *Parser) parseIf() ast.Stmt {
	start := p.cur.Span
	p.advance() // if
	p.expect(token.LParen)
	cond := p.parseExpr()
	p.expect(token.RParen)
	p.skipOptionalEOLBeforeBlock()
	then := p.parseStmt()
	var els ast.Stmt
	p.skipEOLs()
	if p.at(token.KwElse) {
		p.advance()
		p.skipOptionalEOLBeforeBlock()
		els = p.parseStmt()
	}
	n := &ast.If{Cond: cond, Then: then, Else: els}
	n.Sp = start.Cover(then.Span())
	return n
}

// skipOptionalEOLBeforeBlock allows `if (c)\n{ ... }` style without treating
// the newline as ending the statement.
func (p *Parser) skipOptionalEOLBeforeBlock() {
	for p.at(token.EOL) {
		p.advance()
	}
}

func (p *Parser) parseWhile() ast.Stmt {
	start := p.cur.Span
	p.advance() // while
	p.expect(token.LParen)
	cond := p.parseExpr()
	p.expect(token.RParen)
	p.skipOptionalEOLBeforeBlock()
	p.loopDep++
	body := p.parseStmt()
	p.loopDep--
	n := &ast.While{Cond: cond, Body: body}
	n.Sp = start.Cover(body.Span())
	return n
}

func (p *Parser) parseFor() ast.Stmt {
	start := p.cur.Span
	p.advance() // for
	p.expect(token.LParen)
	var init, cond, post ast.Expr
	if !p.at(token.Semicolon) {
		init = p.parseExpr()
	}
	p.expect(token.Semicolon)
	if !p.at(token.Semicolon) {
		cond = p.parseExpr()
	}
	p.expect(token.Semicolon)
	if !p.at(token.RParen) {
		post = p.parseExpr()
	}
	p.expect(token.RParen)
	p.skipOptionalEOLBeforeBlock()
	p.loopDep++
	body := p.parseStmt()
	p.loopDep--
	n := &ast.For{Init: init, Cond: cond, Post: post, Body: body}
	n.Sp = start.Cover(body.Span())
	return n
}

func (p *Parser) parseFuncDecl() ast.Stmt {
	start := p.cur.Span
	p.advance() // function
	name := p.expect(token.Ident).Text
	p.expect(token.LParen)
	var params []string
	for !p.at(token.RParen) && !p.at(token.EOF) {
		param := p.expect(token.Ident)
		if param.Kind != token.Ident {
			break
		}
		params = append(params, param.Text)
		if p.at(token.Comma) {
			p.advance()
		}
	}
	p.expect(token.RParen)
	p.funcDep++
	body := p.parseBlock()
	p.funcDep--
	n := &ast.FuncDecl{Name: name, Params: params, Body: body}
	n.Sp = start.Cover(body.Span())
	return n
}

func (p *Parser) parseReturn() ast.Stmt {
	start := p.cur.Span
	p.advance() // return
	if p.funcDep == 0 {
		p.bag.Add(diag.NewError(diag.CodeIllegalReturn, start, "return outside of a function"))
	}
	var val ast.Expr
	if !p.atStmtEnd() {
		val = p.parseExpr()
	}
	n := &ast.Return{Value: val}
	n.Sp = start
	p.finishStmt()
	return n
}

func (p *Parser) parseBreak() ast.Stmt {
	start := p.cur.Span
	p.advance()
	if p.loopDep == 0 {
		p.bag.Add(diag.NewError(diag.CodeIllegalBreak, start, "break outside of a loop"))
	}
	n := &ast.Break{}
	n.Sp = start
	p.finishStmt()
	return n
}

func (p *Parser) parseContinue() ast.Stmt {
	start := p.cur.Span
	p.advance()
	if p.loopDep == 0 {
		p.bag.Add(diag.NewError(diag.CodeIllegalContinue, start, "continue outside of a loop"))
	}
	n := &ast.Continue{}
	n.Sp = start
	p.finishStmt()
	return n
}

func (p *Parser) parseExprStmt() ast.Stmt {
	x := p.parseExpr()
	n := &ast.ExprStmt{X: x}
	n.Sp = x.Span()
	p.finishStmt()
	return n
}

// atStmtEnd reports whether the cursor sits at a token that legally ends
// the current statement without consuming it.
func (p *Parser) atStmtEnd() bool {
	switch p.cur.Kind {
	case token.EOL, token.Semicolon, token.EOF, token.RBrace:
		return true
	}
	return false
}

// finishStmt consumes a single trailing ';' or EOL if present; both are
// optional at the end of a line.
func (p *Parser) finishStmt() {
	if p.at(token.Semicolon) || p.at(token.EOL) {
		p.advance()
	}
}
