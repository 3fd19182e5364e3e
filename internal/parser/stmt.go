package parser

import (
	"cflat/internal/ast"
	"cflat/internal/token"
)

func (p *Parser) parseStmt() ast.Stmt {
	pos := p.position()
	switch {
	case p.match(token.If):
		return p.parseIf(pos)
	case p.match(token.While):
		return p.parseWhile(pos)
	case p.match(token.Return):
		return p.parseReturn(pos)
	case p.match(token.Break):
		p.expect(token.Semicolon)
		return &ast.BreakStmt{Pos: pos}
	case p.match(token.Continue):
		p.expect(token.Semicolon)
		return &ast.ContinueStmt{Pos: pos}
	default:
		return p.parseAssignOrCallStmt(pos)
	}
}

func (p *Parser) parseStmtList() []ast.Stmt {
	var stmts []ast.Stmt
	for !p.check(token.CloseBrace) {
		stmts = append(stmts, p.parseStmt())
	}
	return stmts
}

func (p *Parser) parseIf(pos ast.Position) *ast.IfStmt {
	p.expect(token.OpenParen)
	guard := p.parseExp()
	p.expect(token.CloseParen)
	p.expect(token.OpenBrace)
	then := p.parseStmtList()
	p.expect(token.CloseBrace)

	var els []ast.Stmt
	if p.match(token.Else) {
		elsePos := p.position()
		if p.match(token.If) {
			els = []ast.Stmt{p.parseIf(elsePos)}
		} else {
			p.expect(token.OpenBrace)
			els = p.parseStmtList()
			p.expect(token.CloseBrace)
		}
	}
	return &ast.IfStmt{Pos: pos, Guard: guard, Then: then, Else: els}
}

func (p *Parser) parseWhile(pos ast.Position) *ast.WhileStmt {
	p.expect(token.OpenParen)
	guard := p.parseExp()
	p.expect(token.CloseParen)
	p.expect(token.OpenBrace)
	body := p.parseStmtList()
	p.expect(token.CloseBrace)
	return &ast.WhileStmt{Pos: pos, Guard: guard, Body: body}
}

func (p *Parser) parseReturn(pos ast.Position) *ast.ReturnStmt {
	if p.match(token.Semicolon) {
		return &ast.ReturnStmt{Pos: pos}
	}
	e := p.parseExp()
	p.expect(token.Semicolon)
	return &ast.ReturnStmt{Pos: pos, Expr: e}
}

// parseAssignOrCallStmt disambiguates the two statement forms that start
// with a bare expression: an assignment (`lval-shaped-exp = rhs;`) once
// a Gets token follows, or a call used for its side effect
// (`callee(args);`) otherwise.
func (p *Parser) parseAssignOrCallStmt(pos ast.Position) ast.Stmt {
	e := p.parseExp()

	if p.match(token.Gets) {
		lval := p.expToLval(e)
		rhs := p.parseRhs()
		p.expect(token.Semicolon)
		return &ast.AssignStmt{Pos: pos, Lval: lval, Rhs: rhs}
	}

	call, ok := e.(*ast.CallExp)
	if !ok {
		p.fail()
	}
	p.expect(token.Semicolon)
	return &ast.CallStmt{Pos: pos, Callee: call.Callee, Args: call.Args}
}

// expToLval reinterprets the subset of Exp shapes that are also valid
// assignment targets as the corresponding Lval node. Anything outside
// {Id, Deref, ArrayIndex, Field} is a syntax error: it can only have
// reached here because Gets followed it.
func (p *Parser) expToLval(e ast.Exp) ast.Lval {
	switch n := e.(type) {
	case *ast.IdExp:
		return &ast.IdLval{Pos: n.Pos, Name: n.Name}

	case *ast.UnOpExp:
		if n.Op != ast.Deref {
			p.fail()
		}
		return &ast.DerefLval{Pos: n.Pos, Base: p.expToLval(n.Operand)}

	case *ast.ArrayIndexExp:
		return &ast.ArrayIndexLval{Pos: n.Pos, Base: p.expToLval(n.Base), Index: n.Index}

	case *ast.FieldExp:
		return &ast.FieldLval{Pos: n.Pos, Base: p.expToLval(n.Base), Field: n.Field}
	}

	p.fail()
	return nil
}

func (p *Parser) parseRhs() ast.Rhs {
	pos := p.position()
	if p.check(token.New) {
		p.expect(token.New)
		typ := p.parseType()
		size := p.parseAllocSize(pos)
		return &ast.RhsNew{Pos: pos, Type: typ, Size: size}
	}
	e := p.parseExp()
	return &ast.RhsExp{Pos: pos, Expr: e}
}
