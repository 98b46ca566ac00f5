package ast

import "lunec/report"

// The abstract interface for all AST nodes.
type Node interface {
	// The position of the first token of the node.
	Pos() *report.TextPos
}

// A utility base struct for all AST nodes.
type ASTBase struct {
	pos *report.TextPos
}

// NewASTBaseOn creates a new AST base at the given position.
func NewASTBaseOn(pos *report.TextPos) ASTBase {
	return ASTBase{pos: pos}
}

func (ab ASTBase) Pos() *report.TextPos {
	return ab.pos
}

// Oper is an operator used in the AST.  Kind is the token kind of the
// operator; Name is its lexeme.
type Oper struct {
	Kind int
	Name string
	Pos  *report.TextPos
}
