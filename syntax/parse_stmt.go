package syntax

import (
	"lunec/ast"
	"lunec/report"
)

// parseBlock parses a braced statement list.
func (p *Parser) parseBlock() (*ast.Block, bool) {
	start := p.tok.Pos
	if !p.expect(LBRACE) {
		return nil, false
	}

	block := &ast.Block{ASTBase: ast.NewASTBaseOn(start)}
	for {
		switch p.tok.Kind {
		case LET:
			stmt, ok := p.parseLet()
			if !ok || !p.expect(SEMICOLON) {
				return nil, false
			}
			block.Stmts = append(block.Stmts, stmt)
		case IF:
			stmt, ok := p.parseIf()
			if !ok {
				return nil, false
			}
			block.Stmts = append(block.Stmts, stmt)
		case WHILE:
			stmt, ok := p.parseWhile()
			if !ok {
				return nil, false
			}
			block.Stmts = append(block.Stmts, stmt)
		case SYMBOL:
			stmt, ok := p.parseAssignOrCall()
			if !ok || !p.expect(SEMICOLON) {
				return nil, false
			}
			block.Stmts = append(block.Stmts, stmt)
		case RETURN:
			stmt, ok := p.parseReturn()
			if !ok || !p.expect(SEMICOLON) {
				return nil, false
			}
			block.Stmts = append(block.Stmts, stmt)
		case BREAK:
			stmt := &ast.BreakStmt{ASTBase: ast.NewASTBaseOn(p.tok.Pos)}
			if !p.next() || !p.expect(SEMICOLON) {
				return nil, false
			}
			block.Stmts = append(block.Stmts, stmt)
		case SEMICOLON:
			// Empty statement.
			if !p.next() {
				return nil, false
			}
		default:
			block.End = p.tok.Pos
			if !p.expect(RBRACE) {
				return nil, false
			}
			return block, true
		}
	}
}

// parseLet parses a variable declaration:
// `let NAME type? ('=' ('new' type)? expr?)?`.  At least one of the type
// label and the initializer must be present.
func (p *Parser) parseLet() (*ast.LetStmt, bool) {
	letTok := p.tok
	if !p.expect(LET) {
		return nil, false
	}

	name := p.tok
	if !p.expect(SYMBOL) {
		return nil, false
	}

	let := &ast.LetStmt{
		ASTBase: ast.NewASTBaseOn(letTok.Pos),
		Name:    name.Value,
		NamePos: name.Pos,
	}

	if IsTypeName(p.tok.Kind) || p.got(SYMBOL) || p.got(LBRACKET) {
		typ, ok := p.parseType()
		if !ok {
			return nil, false
		}
		let.Type = typ
	}

	if let.Type != nil {
		if p.got(SEMICOLON) {
			return let, true
		}
	} else if !p.got(ASSIGN) {
		p.errorOn(letTok, report.ErrTypeOrInitializerMustBeSpecified)
		return nil, false
	}

	if !p.expect(ASSIGN) {
		return nil, false
	}

	if p.got(NEW) {
		if !p.next() {
			return nil, false
		}

		newType, ok := p.parseType()
		if !ok {
			return nil, false
		}
		newType.VT.IsRef = true
		let.IsHeap = true

		if let.Type != nil {
			if !let.Type.VT.Equals(newType.VT) {
				p.errorOn(letTok, report.ErrTypeMismatch)
				return nil, false
			}
		} else {
			let.Type = newType
		}

		if p.got(SEMICOLON) {
			return let, true
		}
	}

	init, ok := p.parseExpr()
	if !ok {
		return nil, false
	}
	let.Init = init

	return let, true
}

// parseIf parses an if statement with an optional else block or else-if
// chain.  An `else if` parses as an else block holding the nested if.
func (p *Parser) parseIf() (*ast.IfStmt, bool) {
	start := p.tok.Pos
	if !p.expect(IF) {
		return nil, false
	}

	cond, ok := p.parseExpr()
	if !ok {
		return nil, false
	}

	then, ok := p.parseBlock()
	if !ok {
		return nil, false
	}

	stmt := &ast.IfStmt{ASTBase: ast.NewASTBaseOn(start), Cond: cond, Then: then}

	if p.got(ELSE) {
		elsePos := p.tok.Pos
		if !p.next() {
			return nil, false
		}

		if p.got(IF) {
			elseIf, ok := p.parseIf()
			if !ok {
				return nil, false
			}
			stmt.Else = &ast.Block{
				ASTBase: ast.NewASTBaseOn(elsePos),
				Stmts:   []ast.Node{elseIf},
			}
		} else {
			if stmt.Else, ok = p.parseBlock(); !ok {
				return nil, false
			}
		}
	}

	return stmt, true
}

// parseWhile parses a while loop.
func (p *Parser) parseWhile() (*ast.WhileStmt, bool) {
	start := p.tok.Pos
	if !p.expect(WHILE) {
		return nil, false
	}

	cond, ok := p.parseExpr()
	if !ok {
		return nil, false
	}

	body, ok := p.parseBlock()
	if !ok {
		return nil, false
	}

	return &ast.WhileStmt{ASTBase: ast.NewASTBaseOn(start), Cond: cond, Body: body}, true
}

// parseReturn parses a return statement with an optional value.
func (p *Parser) parseReturn() (*ast.ReturnStmt, bool) {
	start := p.tok.Pos
	if !p.expect(RETURN) {
		return nil, false
	}

	stmt := &ast.ReturnStmt{ASTBase: ast.NewASTBaseOn(start)}
	if !p.got(SEMICOLON) {
		value, ok := p.parseExpr()
		if !ok {
			return nil, false
		}
		stmt.Value = value
	}

	return stmt, true
}

// parseAssignOrCall parses a statement beginning with a symbol: either an
// assignment to a variable path or a call statement.
func (p *Parser) parseAssignOrCall() (ast.Node, bool) {
	ref, ok := p.parseVarRef()
	if !ok {
		return nil, false
	}

	switch p.tok.Kind {
	case LPAREN:
		if !p.next() {
			return nil, false
		}

		args, ok := p.parseExprList(RPAREN)
		if !ok {
			return nil, false
		}

		if !p.expect(RPAREN) {
			return nil, false
		}

		call := &ast.Call{ExprBase: ast.NewExprBaseOn(ref.Pos()), Name: ref.Name, Args: args}
		return call, true
	case ASSIGN:
		assignPos := p.tok.Pos
		if !p.next() {
			return nil, false
		}

		value, ok := p.parseExpr()
		if !ok {
			return nil, false
		}

		return &ast.AssignStmt{ASTBase: ast.NewASTBaseOn(assignPos), Dest: ref, Value: value}, true
	}

	p.reject()
	return nil, false
}
