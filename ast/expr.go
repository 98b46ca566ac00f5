package ast

import (
	"lunec/report"
	"lunec/types"

	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/value"
)

// Expr represents an expression node.  Analysis resolves every surviving
// expression to a concrete value type and an emitted IR value; untyped
// literal expressions additionally carry their folded constant value so that
// consumers can re-materialise them at a concrete width.
type Expr interface {
	Node

	// Type is the resolved value type of the expression.
	Type() types.ValueType

	// SetType sets the resolved value type of the expression.
	SetType(types.ValueType)

	// Value is the IR value the expression was lowered to.
	Value() value.Value

	// SetValue sets the IR value the expression was lowered to.
	SetValue(value.Value)

	// Base returns the expression base of the node.
	Base() *ExprBase
}

// ExprBase is the base struct for all expressions.
type ExprBase struct {
	ASTBase

	typ types.ValueType
	val value.Value

	// The folded constant value of the expression, valid when the resolved
	// type is the corresponding untyped literal kind.
	FoldBool  bool
	FoldInt   int64
	FoldFloat float64
	FoldStr   string
}

// NewExprBaseOn creates a new expression base at the given position.
func NewExprBaseOn(pos *report.TextPos) ExprBase {
	return ExprBase{ASTBase: NewASTBaseOn(pos)}
}

func (eb *ExprBase) Type() types.ValueType {
	return eb.typ
}

func (eb *ExprBase) SetType(typ types.ValueType) {
	eb.typ = typ
}

func (eb *ExprBase) Value() value.Value {
	return eb.val
}

func (eb *ExprBase) SetValue(val value.Value) {
	eb.val = val
}

func (eb *ExprBase) Base() *ExprBase {
	return eb
}

// -----------------------------------------------------------------------------

// Enumeration of literal kinds.
const (
	LitBool = iota
	LitInt
	LitFloat
	LitString
)

// Literal represents a single constant literal.  Kind is one of the
// enumerated literal kinds and Lexeme the literal's lexeme (for string
// literals, the unescaped content).
type Literal struct {
	ExprBase

	Kind   int
	Lexeme string
}

// ArrayLit represents an array aggregate constant `[v0, ..., vn-1]`.
type ArrayLit struct {
	ExprBase

	Elems []Expr

	// Variants holds the parallel IR materialisations of the aggregate, one
	// per concrete element kind the untyped elements could still become.  A
	// key present with a nil constant marks a target whose range at least one
	// element failed; coercing the aggregate to that target is an error.
	Variants map[types.Kind]constant.Constant
}

// VarRef represents a variable reference with an optional index and member
// path: `name`, `name[i]`, `name.m`, `name[i].m[j].n`, ...
type VarRef struct {
	ExprBase

	Name   string
	Index  Expr    // nil if not indexed
	Member *VarRef // nil if no member access

	// Ptr is the pointer to the referenced storage.  It is nil for function
	// parameters, whose handle is the SSA value itself.
	Ptr value.Value
}

// UnaryOp represents a unary operator application.
type UnaryOp struct {
	ExprBase

	Op      Oper
	Operand Expr
}

// BinaryOp represents a binary operator application.
type BinaryOp struct {
	ExprBase

	Op       Oper
	Lhs, Rhs Expr
}

// Call represents a function call.  Calls may appear both as expressions and
// as statements.
type Call struct {
	ExprBase

	Name string
	Args []Expr
}

// Cast represents an explicit type cast `T(expr)`.
type Cast struct {
	ExprBase

	DestType *TypeNode
	Src      Expr
}
