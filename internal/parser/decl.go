package parser

import (
	"cflat/internal/ast"
	"cflat/internal/token"
	"cflat/internal/types"
)

func (p *Parser) parseGlobal() *ast.Global {
	pos := p.position()
	p.expect(token.Let)
	name := p.expect(token.Id).Lexeme
	p.expect(token.Colon)
	typ := p.parseType()
	p.expect(token.Semicolon)
	return &ast.Global{Pos: pos, Name: name, Type: typ}
}

func (p *Parser) parseExtern() *ast.Extern {
	pos := p.position()
	p.expect(token.Extern)
	name := p.expect(token.Id).Lexeme
	p.expect(token.Colon)
	typ := p.parseType()
	fn, ok := typ.(types.Fn)
	if !ok {
		p.fail()
	}
	p.expect(token.Semicolon)
	return &ast.Extern{Pos: pos, Name: name, Type: fn}
}

func (p *Parser) parseStructDecl() *ast.StructDecl {
	pos := p.position()
	p.expect(token.Struct)
	name := p.expect(token.Id).Lexeme
	p.expect(token.OpenBrace)

	var fields []*ast.FieldDecl
	if !p.check(token.CloseBrace) {
		fields = append(fields, p.parseFieldDecl())
		for p.match(token.Comma) {
			fields = append(fields, p.parseFieldDecl())
		}
	}
	p.expect(token.CloseBrace)
	return &ast.StructDecl{Pos: pos, Name: name, Fields: fields}
}

func (p *Parser) parseFieldDecl() *ast.FieldDecl {
	pos := p.position()
	name := p.expect(token.Id).Lexeme
	p.expect(token.Colon)
	typ := p.parseType()
	return &ast.FieldDecl{Pos: pos, Name: name, Type: typ}
}

func (p *Parser) parseFunction() *ast.Function {
	pos := p.position()
	p.expect(token.Fn)
	name := p.expect(token.Id).Lexeme
	p.expect(token.OpenParen)
	params := p.parseParamList()
	p.expect(token.CloseParen)

	var ret types.Type
	if p.match(token.Arrow) {
		ret = p.parseType()
	}

	p.expect(token.OpenBrace)

	// Locals are declared as a leading run of `let` lines and lifted into
	// Function.Locals rather than the statement stream — cflat has no
	// Let statement kind, and the Lowerer processes every local's
	// initializer before any Body statement runs, so source-level
	// declarations must precede the first ordinary statement.
	var locals []*ast.LocalDecl
	for p.check(token.Let) {
		locals = append(locals, p.parseLocalDecl())
	}

	var body []ast.Stmt
	for !p.check(token.CloseBrace) {
		body = append(body, p.parseStmt())
	}
	p.expect(token.CloseBrace)

	return &ast.Function{Pos: pos, Name: name, Params: params, RetType: ret, Locals: locals, Body: body}
}

func (p *Parser) parseParamList() []*ast.Param {
	if p.check(token.CloseParen) {
		return nil
	}
	params := []*ast.Param{p.parseParam()}
	for p.match(token.Comma) {
		params = append(params, p.parseParam())
	}
	return params
}

func (p *Parser) parseParam() *ast.Param {
	pos := p.position()
	name := p.expect(token.Id).Lexeme
	p.expect(token.Colon)
	typ := p.parseType()
	return &ast.Param{Pos: pos, Name: name, Type: typ}
}

func (p *Parser) parseLocalDecl() *ast.LocalDecl {
	pos := p.position()
	p.expect(token.Let)
	name := p.expect(token.Id).Lexeme
	p.expect(token.Colon)
	typ := p.parseType()
	var init ast.Exp
	if p.match(token.Gets) {
		init = p.parseExp()
	}
	p.expect(token.Semicolon)
	return &ast.LocalDecl{Pos: pos, Name: name, Type: typ, Init: init}
}

// parseType parses cflat's type syntax: `int`, a struct-name identifier,
// `&T` for a pointer, `(T1, T2, ...) -> (T|_)` for a function signature,
// `(T)` with no arrow after it as a grouping of T, and the bare `_` marker (legal only in a function type's return
// position, meaning "no return value").
func (p *Parser) parseType() types.Type {
	switch {
	case p.match(token.Underscore):
		return nil

	case p.match(token.Int):
		return types.Int{}

	case p.match(token.Address):
		elem := p.parseType()
		return types.Ptr{Elem: elem}

	case p.match(token.OpenParen):
		var params []types.Type
		if !p.check(token.CloseParen) {
			params = append(params, p.parseType())
			for p.match(token.Comma) {
				params = append(params, p.parseType())
			}
		}
		p.expect(token.CloseParen)
		if len(params) == 1 && !p.check(token.Arrow) {
			return params[0]
		}
		p.expect(token.Arrow)
		ret := p.parseType()
		return types.Fn{Params: params, Ret: ret}

	case p.check(token.Id):
		name := p.advance().Lexeme
		return types.Struct{Name: name}
	}

	p.fail()
	return nil
}
