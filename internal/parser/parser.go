// Package parser builds an ast.File from a token stream using ordinary
// recursive descent with precedence climbing for expressions.
package parser

import (
	"fmt"

	"kipper/internal/ast"
	"kipper/internal/diag"
	"kipper/internal/lexer"
	"kipper/internal/source"
	"kipper/internal/token"
)

// Parser consumes tokens from a Lexer and reports errors into a diag.Bag.
type Parser struct {
	file    *source.File
	lx      *lexer.Lexer
	bag     *diag.Bag
	cur     token.Token
	peeked  *token.Token
	loopDep int // nesting depth of breakable loops
	funcDep int // nesting depth of function bodies
}

// Parse parses a whole file and returns its AST. Errors are reported into
// bag; the caller should check bag.HasErrors() before evaluating the result.
func Parse(file *source.File, bag *diag.Bag) *ast.File {
	p := &Parser{file: file, lx: lexer.New(file, bag), bag: bag}
	p.advance()
	var stmts []ast.Stmt
	p.skipEOLs()
	for p.cur.Kind != token.EOF {
		stmts = append(stmts, p.parseStmt())
		p.skipEOLs()
	}
	return &ast.File{Stmts: stmts}
}

func (p *Parser) advance() {
	if p.peeked != nil {
		p.cur = *p.peeked
		p.peeked = nil
		return
	}
	p.cur = p.lx.Next()
}

func (p *Parser) peek() token.Token {
	if p.peeked == nil {
		tk := p.lx.Next()
		p.peeked = &tk
	}
	return *p.peeked
}

func (p *Parser) at(k token.Kind) bool { return p.cur.Kind == k }

func (p *Parser) skipEOLs() {
	for p.cur.Kind == token.EOL || p.cur.Kind == token.Semicolon {
		p.advance()
	}
}

// expect consumes the current token if it matches k, else reports a
// diagnostic and leaves the cursor in place so parsing can keep limping
// along far enough to surface more than one error per run.
func (p *Parser) expect(k token.Kind) token.Token {
	if p.cur.Kind != k {
		p.errorf(diag.CodeExpectedToken, "expected %s, got %s", k, p.cur.Kind)
		return p.cur
	}
	tok := p.cur
	p.advance()
	return tok
}

func (p *Parser) errorf(code diag.Code, format string, args ...any) {
	if p.bag == nil {
		return
	}
	p.bag.Add(diag.NewError(code, p.cur.Span, fmt.Sprintf(format, args...)))
}
