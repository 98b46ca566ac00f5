package syntax

import (
	"lunec/ast"
)

// parseExpr parses a binary expression using a precedence climb: values and
// their leading operators are shifted onto a stack and reduced whenever the
// incoming operator binds no tighter than the operator on top.
func (p *Parser) parseExpr() (ast.Expr, bool) {
	type shifted struct {
		op   *Token // nil for the leading value
		expr ast.Expr
	}

	value, ok := p.parseValue()
	if !ok {
		return nil, false
	}
	stack := []shifted{{op: nil, expr: value}}

	priority := func(op *Token) int {
		if op == nil {
			return 0
		}
		return op.Priority()
	}

	for {
		top := &stack[len(stack)-1]

		if priority(top.op) < p.tok.Priority() {
			opTok := p.tok
			if !p.next() {
				return nil, false
			}
			if value, ok = p.parseValue(); !ok {
				return nil, false
			}
			stack = append(stack, shifted{op: opTok, expr: value})
		} else if top.op == nil {
			return top.expr, true
		} else {
			rhs := stack[len(stack)-1]
			lhs := stack[len(stack)-2]
			stack = stack[:len(stack)-2]

			node := &ast.BinaryOp{
				ExprBase: ast.NewExprBaseOn(rhs.op.Pos),
				Op:       ast.Oper{Kind: rhs.op.Kind, Name: rhs.op.Value, Pos: rhs.op.Pos},
				Lhs:      lhs.expr,
				Rhs:      rhs.expr,
			}

			stack = append(stack, shifted{op: lhs.op, expr: node})
		}
	}
}

// parseValue parses a single expression value: a parenthesized expression, a
// variable reference or call, a unary negation, an array aggregate, a
// constant literal, or a cast.
func (p *Parser) parseValue() (ast.Expr, bool) {
	switch p.tok.Kind {
	case LPAREN:
		if !p.next() {
			return nil, false
		}
		expr, ok := p.parseExpr()
		if !ok || !p.expect(RPAREN) {
			return nil, false
		}
		return expr, true
	case SYMBOL:
		ref, ok := p.parseVarRef()
		if !ok {
			return nil, false
		}

		if p.got(LPAREN) {
			if !p.next() {
				return nil, false
			}

			args, ok := p.parseExprList(RPAREN)
			if !ok || !p.expect(RPAREN) {
				return nil, false
			}

			return &ast.Call{ExprBase: ast.NewExprBaseOn(ref.Pos()), Name: ref.Name, Args: args}, true
		}

		return ref, true
	case MINUS:
		opTok := p.tok
		if !p.next() {
			return nil, false
		}

		operand, ok := p.parseValue()
		if !ok {
			return nil, false
		}

		return &ast.UnaryOp{
			ExprBase: ast.NewExprBaseOn(opTok.Pos),
			Op:       ast.Oper{Kind: opTok.Kind, Name: opTok.Value, Pos: opTok.Pos},
			Operand:  operand,
		}, true
	case LBRACKET:
		start := p.tok.Pos
		if !p.next() {
			return nil, false
		}

		elems, ok := p.parseExprList(RBRACKET)
		if !ok || !p.expect(RBRACKET) {
			return nil, false
		}

		return &ast.ArrayLit{ExprBase: ast.NewExprBaseOn(start), Elems: elems}, true
	}

	if IsConstant(p.tok.Kind) {
		lit := &ast.Literal{
			ExprBase: ast.NewExprBaseOn(p.tok.Pos),
			Kind:     literalKindOf(p.tok.Kind),
			Lexeme:   p.tok.Value,
		}
		if !p.next() {
			return nil, false
		}
		return lit, true
	}

	if IsTypeName(p.tok.Kind) {
		return p.parseCast()
	}

	p.reject()
	return nil, false
}

// parseCast parses an explicit cast `type '(' expr ')'`.
func (p *Parser) parseCast() (ast.Expr, bool) {
	destType, ok := p.parseType()
	if !ok {
		return nil, false
	}

	if !p.expect(LPAREN) {
		return nil, false
	}

	src, ok := p.parseExpr()
	if !ok || !p.expect(RPAREN) {
		return nil, false
	}

	return &ast.Cast{ExprBase: ast.NewExprBaseOn(destType.Pos()), DestType: destType, Src: src}, true
}

// parseVarRef parses a variable reference path:
// `NAME ('[' expr ']')? ('.' varref)?`.
func (p *Parser) parseVarRef() (*ast.VarRef, bool) {
	name := p.tok
	if !p.expect(SYMBOL) {
		return nil, false
	}

	ref := &ast.VarRef{ExprBase: ast.NewExprBaseOn(name.Pos), Name: name.Value}

	if p.got(LBRACKET) {
		if !p.next() {
			return nil, false
		}

		index, ok := p.parseExpr()
		if !ok || !p.expect(RBRACKET) {
			return nil, false
		}
		ref.Index = index
	}

	if p.got(DOT) {
		if !p.next() {
			return nil, false
		}

		member, ok := p.parseVarRef()
		if !ok {
			return nil, false
		}
		ref.Member = member
	}

	return ref, true
}

// parseExprList parses a comma-separated expression list terminated by the
// given closing token kind.  The list may be empty; the closing token is not
// consumed.
func (p *Parser) parseExprList(closer int) ([]ast.Expr, bool) {
	if p.got(closer) {
		return nil, true
	}

	var exprs []ast.Expr
	for {
		expr, ok := p.parseExpr()
		if !ok {
			return nil, false
		}
		exprs = append(exprs, expr)

		if !p.got(COMMA) {
			break
		}
		if !p.next() {
			return nil, false
		}
	}

	return exprs, true
}

// literalKindOf maps a constant token kind to its AST literal kind.
func literalKindOf(tokKind int) int {
	switch tokKind {
	case CONSTANT_BOOL:
		return ast.LitBool
	case CONSTANT_INTEGER:
		return ast.LitInt
	case CONSTANT_FLOAT:
		return ast.LitFloat
	default:
		return ast.LitString
	}
}
