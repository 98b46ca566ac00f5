package syntax

import (
	"bufio"

	"lunec/ast"
	"lunec/report"
	"lunec/types"
)

// Parser is the parser for a Lune source file: a recursive descent parser
// over the token stream with a precedence-climbing expression parser.  All
// parsing functions assume that they begin with the parser centered on the
// first token of their production and consume every token of the production,
// leaving the parser on the next token.  The parser stops at the first error.
type Parser struct {
	lexer *Lexer
	path  string

	// tok is the current token the parser is positioned on.
	tok *Token

	errs []*report.CompileError
}

// NewParser creates a new parser for the given source file.
func NewParser(path string, r *bufio.Reader) *Parser {
	p := &Parser{path: path}

	lexer, err := NewLexer(path, r)
	if err != nil {
		p.errs = append(p.errs, err)
		return p
	}

	p.lexer = lexer
	return p
}

// Errors returns the errors recorded while parsing.
func (p *Parser) Errors() []*report.CompileError {
	return p.errs
}

// Parse parses the source file into a compile unit: any number of structs,
// an optional `extern "C"` block of foreign declarations, then the native
// functions.
func (p *Parser) Parse() (*ast.CompileUnit, bool) {
	if p.lexer == nil || !p.next() {
		return nil, false
	}

	cu := &ast.CompileUnit{Path: p.path}

	for p.got(STRUCT) {
		sd, ok := p.parseStruct()
		if !ok {
			return nil, false
		}
		cu.Structs = append(cu.Structs, sd)
	}

	if p.got(EXTERN) {
		if !p.next() {
			return nil, false
		}

		externType := p.tok
		if !p.expect(CONSTANT_STRING) {
			return nil, false
		}
		if externType.Value != "C" {
			p.errorOn(externType, report.ErrInvalidExternType)
			return nil, false
		}

		if !p.expect(LBRACE) {
			return nil, false
		}

		for p.got(FUNCTION) {
			fn, ok := p.parseForeignDecl()
			if !ok {
				return nil, false
			}
			cu.Funcs = append(cu.Funcs, fn)
		}

		if !p.expect(RBRACE) {
			return nil, false
		}
	}

	for p.got(FUNCTION) {
		fn, ok := p.parseFunc()
		if !ok {
			return nil, false
		}
		cu.Funcs = append(cu.Funcs, fn)
	}

	if !p.got(EOF) {
		p.reject()
		return nil, false
	}

	return cu, true
}

// -----------------------------------------------------------------------------

// parseStruct parses `struct NAME { (NAME type)* }`.
func (p *Parser) parseStruct() (*ast.StructDef, bool) {
	start := p.tok.Pos
	if !p.expect(STRUCT) {
		return nil, false
	}

	name := p.tok
	if !p.expect(SYMBOL) {
		return nil, false
	}

	if !p.expect(LBRACE) {
		return nil, false
	}

	sd := &ast.StructDef{ASTBase: ast.NewASTBaseOn(start), Name: name.Value}
	for p.got(SYMBOL) {
		memberName := p.tok
		if !p.next() {
			return nil, false
		}

		typ, ok := p.parseType()
		if !ok {
			return nil, false
		}

		sd.Members = append(sd.Members, &ast.VarDecl{
			ASTBase: ast.NewASTBaseOn(memberName.Pos),
			Name:    memberName.Value,
			Type:    typ,
		})
	}

	if !p.expect(RBRACE) {
		return nil, false
	}

	return sd, true
}

// parseForeignDecl parses a foreign C function declaration inside an extern
// block: `fn NAME ( params? (',' '...')? ) type? ;`.
func (p *Parser) parseForeignDecl() (*ast.FuncDef, bool) {
	fn, ok := p.parseSignature(true)
	if !ok {
		return nil, false
	}

	if p.got(SEMICOLON) {
		fn.ReturnType = p.voidType()
	} else {
		if fn.ReturnType, ok = p.parseType(); !ok {
			return nil, false
		}
	}

	if !p.expect(SEMICOLON) {
		return nil, false
	}

	fn.Foreign = true
	return fn, true
}

// parseFunc parses a native function definition:
// `fn NAME ( params? ) type? block`.
func (p *Parser) parseFunc() (*ast.FuncDef, bool) {
	fn, ok := p.parseSignature(false)
	if !ok {
		return nil, false
	}

	if p.got(LBRACE) {
		fn.ReturnType = p.voidType()
	} else {
		if fn.ReturnType, ok = p.parseType(); !ok {
			return nil, false
		}
	}

	if fn.Body, ok = p.parseBlock(); !ok {
		return nil, false
	}

	return fn, true
}

// parseSignature parses `fn NAME ( params? )` up to but excluding the return
// type.  A trailing `...` parameter is only accepted for foreign
// declarations; a parameter of plain void type is rejected for native
// functions.
func (p *Parser) parseSignature(foreign bool) (*ast.FuncDef, bool) {
	start := p.tok.Pos
	if !p.expect(FUNCTION) {
		return nil, false
	}

	name := p.tok
	if !p.expect(SYMBOL) {
		return nil, false
	}

	fn := &ast.FuncDef{
		ASTBase: ast.NewASTBaseOn(start),
		Name:    name.Value,
		NamePos: name.Pos,
	}

	if !p.expect(LPAREN) {
		return nil, false
	}

	for p.got(SYMBOL) {
		paramName := p.tok
		if !p.next() {
			return nil, false
		}

		typ, ok := p.parseType()
		if !ok {
			return nil, false
		}

		if !foreign && typ.VT.Kind == types.KindVoid && typ.VT.PtrDepth == 0 {
			p.errorAt(typ.Pos(), report.ErrArgumentCanNotBeVoidType)
			return nil, false
		}

		fn.Params = append(fn.Params, &ast.VarDecl{
			ASTBase: ast.NewASTBaseOn(paramName.Pos),
			Name:    paramName.Value,
			Type:    typ,
		})

		if !p.got(COMMA) {
			break
		}
		if !p.next() {
			return nil, false
		}

		if foreign && p.got(ELLIPSIS) {
			fn.Variadic = true
			if !p.next() {
				return nil, false
			}
			break
		}
	}

	if !p.expect(RPAREN) {
		return nil, false
	}

	return fn, true
}

// -----------------------------------------------------------------------------

// parseType parses a type label: `('[' size ']')* primtype`.  The array
// sizes are kept as expressions; analysis resolves them to constants.
func (p *Parser) parseType() (*ast.TypeNode, bool) {
	start := p.tok.Pos

	var sizes []ast.Expr
	for p.got(LBRACKET) {
		if !p.next() {
			return nil, false
		}

		size, ok := p.parseValue()
		if !ok {
			return nil, false
		}
		sizes = append(sizes, size)

		if !p.expect(RBRACKET) {
			return nil, false
		}
	}

	tn, ok := p.parsePrimType()
	if !ok {
		return nil, false
	}

	if len(sizes) > 0 {
		*tn = ast.TypeNode{
			ASTBase:   ast.NewASTBaseOn(start),
			VT:        tn.VT,
			SizeExprs: sizes,
		}
	}

	return tn, true
}

// parsePrimType parses a primitive or struct type name followed by an
// optional `&` reference marker or a run of `*` pointer markers.
func (p *Parser) parsePrimType() (*ast.TypeNode, bool) {
	tok := p.tok
	if !IsTypeName(tok.Kind) && tok.Kind != SYMBOL {
		p.reject()
		return nil, false
	}
	if !p.next() {
		return nil, false
	}

	tn := &ast.TypeNode{ASTBase: ast.NewASTBaseOn(tok.Pos)}
	if tok.Kind == SYMBOL {
		tn.VT = types.ValueType{Kind: types.KindStruct, StructName: tok.Value}
	} else {
		tn.VT = types.Prim(typeKindOf(tok.Kind))
	}

	if p.got(AMPERSAND) {
		if !p.next() {
			return nil, false
		}
		tn.VT.IsRef = true
	} else {
		for p.got(STAR) {
			if !p.next() {
				return nil, false
			}
			tn.VT.PtrDepth++
		}
	}

	return tn, true
}

// voidType synthesizes a void type node for omitted return types.
func (p *Parser) voidType() *ast.TypeNode {
	return &ast.TypeNode{
		ASTBase: ast.NewASTBaseOn(p.tok.Pos),
		VT:      types.Prim(types.KindVoid),
	}
}

// typeKindOf maps a type-name token kind to its basic kind.
func typeKindOf(tokKind int) types.Kind {
	switch tokKind {
	case TYPE_VOID:
		return types.KindVoid
	case TYPE_BOOL:
		return types.KindBool
	case TYPE_I8:
		return types.KindI8
	case TYPE_I16:
		return types.KindI16
	case TYPE_I32:
		return types.KindI32
	case TYPE_I64:
		return types.KindI64
	case TYPE_U8:
		return types.KindU8
	case TYPE_U16:
		return types.KindU16
	case TYPE_U32:
		return types.KindU32
	case TYPE_U64:
		return types.KindU64
	case TYPE_F32:
		return types.KindF32
	case TYPE_F64:
		return types.KindF64
	}

	return types.KindUndefined
}

// -----------------------------------------------------------------------------

// next moves the parser forward one token.
func (p *Parser) next() bool {
	tok, err := p.lexer.NextToken()
	if err != nil {
		p.errs = append(p.errs, err)
		return false
	}

	p.tok = tok
	return true
}

// got returns true if the parser is on a token of the given kind.
func (p *Parser) got(kind int) bool {
	return p.tok.Kind == kind
}

// expect asserts that the parser is on a token of the given kind and moves
// past it.  On a mismatch an UnexpectedToken error is recorded.
func (p *Parser) expect(kind int) bool {
	if p.tok.Kind != kind {
		p.reject()
		return false
	}

	return p.next()
}

// reject records an UnexpectedToken error on the current token.
func (p *Parser) reject() {
	p.errorOn(p.tok, report.ErrUnexpectedToken)
}

// errorOn records an error positioned on the given token.
func (p *Parser) errorOn(tok *Token, name string) {
	p.errs = append(p.errs, report.NewError(name, p.path, tok.Pos))
}

// errorAt records an error at the given position.
func (p *Parser) errorAt(pos *report.TextPos, name string) {
	p.errs = append(p.errs, report.NewError(name, p.path, pos))
}
