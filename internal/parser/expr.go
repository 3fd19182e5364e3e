package parser

import (
	"strconv"

	"cflat/internal/ast"
	"cflat/internal/token"
)

// parseExp climbs precedence in four tiers, from loosest to tightest:
// comparison, additive, multiplicative, unary/postfix/primary. cflat has
// no assignment-as-expression and no logical && / ||, so this is the
// whole of the language's operator grammar.
func (p *Parser) parseExp() ast.Exp {
	return p.parseComparison()
}

func (p *Parser) parseComparison() ast.Exp {
	left := p.parseAdditive()
	for {
		op, ok := comparisonOp(p.cur().Kind)
		if !ok {
			return left
		}
		pos := p.position()
		p.advance()
		right := p.parseAdditive()
		left = &ast.BinOpExp{Pos: pos, Op: op, Left: left, Right: right}
	}
}

func comparisonOp(k token.Kind) (ast.BinOp, bool) {
	switch k {
	case token.Equal:
		return ast.Eq, true
	case token.NotEq:
		return ast.Neq, true
	case token.Lt:
		return ast.Lt, true
	case token.Lte:
		return ast.Lte, true
	case token.Gt:
		return ast.Gt, true
	case token.Gte:
		return ast.Gte, true
	default:
		return 0, false
	}
}

func (p *Parser) parseAdditive() ast.Exp {
	left := p.parseMultiplicative()
	for {
		var op ast.BinOp
		switch p.cur().Kind {
		case token.Plus:
			op = ast.Add
		case token.Dash:
			op = ast.Sub
		default:
			return left
		}
		pos := p.position()
		p.advance()
		right := p.parseMultiplicative()
		left = &ast.BinOpExp{Pos: pos, Op: op, Left: left, Right: right}
	}
}

func (p *Parser) parseMultiplicative() ast.Exp {
	left := p.parseUnary()
	for {
		var op ast.BinOp
		switch p.cur().Kind {
		case token.Star:
			op = ast.Mul
		case token.Slash:
			op = ast.Div
		default:
			return left
		}
		pos := p.position()
		p.advance()
		right := p.parseUnary()
		left = &ast.BinOpExp{Pos: pos, Op: op, Left: left, Right: right}
	}
}

func (p *Parser) parseUnary() ast.Exp {
	pos := p.position()
	switch p.cur().Kind {
	case token.Dash:
		p.advance()
		return &ast.UnOpExp{Pos: pos, Op: ast.Neg, Operand: p.parseUnary()}
	case token.Star:
		p.advance()
		return &ast.UnOpExp{Pos: pos, Op: ast.Deref, Operand: p.parseUnary()}
	case token.Address:
		p.advance()
		return &ast.UnOpExp{Pos: pos, Op: ast.Addr, Operand: p.parseUnary()}
	default:
		return p.parsePostfix()
	}
}

// parsePostfix chains Call, ArrayIndex and Field suffixes left to right
// onto a primary expression, e.g. `a.b[1].c(2)`.
func (p *Parser) parsePostfix() ast.Exp {
	e := p.parsePrimary()
	for {
		pos := e.NodePos()
		switch {
		case p.match(token.OpenParen):
			args := p.parseArgList()
			p.expect(token.CloseParen)
			e = &ast.CallExp{Pos: pos, Callee: e, Args: args}

		case p.match(token.OpenBracket):
			index := p.parseExp()
			p.expect(token.CloseBracket)
			e = &ast.ArrayIndexExp{Pos: pos, Base: e, Index: index}

		case p.match(token.Dot):
			field := p.expect(token.Id).Lexeme
			e = &ast.FieldExp{Pos: pos, Base: e, Field: field}

		default:
			return e
		}
	}
}

func (p *Parser) parseArgList() []ast.Exp {
	if p.check(token.CloseParen) {
		return nil
	}
	args := []ast.Exp{p.parseExp()}
	for p.match(token.Comma) {
		args = append(args, p.parseExp())
	}
	return args
}

func (p *Parser) parsePrimary() ast.Exp {
	pos := p.position()
	switch {
	case p.check(token.Num):
		tok := p.advance()
		v, err := strconv.ParseInt(tok.Lexeme, 10, 64)
		if err != nil {
			p.fail()
		}
		return &ast.NumExp{Pos: pos, Value: v}

	case p.check(token.Id):
		tok := p.advance()
		return &ast.IdExp{Pos: pos, Name: tok.Lexeme}

	case p.match(token.Nil):
		return &ast.NilExp{Pos: pos}

	case p.match(token.OpenParen):
		e := p.parseExp()
		p.expect(token.CloseParen)
		return e

	case p.check(token.New):
		return p.parseNewExp(pos)
	}

	p.fail()
	return nil
}

// parseNewExp parses `new T` or `new T[n]`. A bare `new T` with no
// bracket defaults its Size to the literal 1 — meaningful for a scalar
// or single-struct allocation; the Lowerer overrides this default with
// the struct's real field count when T names a struct (see
// lowerAllocSize), so this default only ever takes literal effect for a
// scalar int allocation.
func (p *Parser) parseNewExp(pos ast.Position) ast.Exp {
	p.expect(token.New)
	typ := p.parseType()
	size := p.parseAllocSize(pos)
	return &ast.NewExp{Pos: pos, Type: typ, Size: size}
}

func (p *Parser) parseAllocSize(pos ast.Position) ast.Exp {
	if p.match(token.OpenBracket) {
		size := p.parseExp()
		p.expect(token.CloseBracket)
		return size
	}
	return &ast.NumExp{Pos: pos, Value: 1}
}
