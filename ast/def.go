package ast

import (
	"lunec/report"
	"lunec/types"

	"github.com/llir/llvm/ir"
	lltypes "github.com/llir/llvm/ir/types"
)

// TypeNode is the AST form of a type label.  Array dimensions are parsed as
// expressions and resolved to constants during analysis, at which point the
// value type's ArraySizes are filled in and the IR type is computed.
type TypeNode struct {
	ASTBase

	VT types.ValueType

	// The unresolved array size expressions, outermost first.
	SizeExprs []Expr

	// The IR type the value type lowers to; set once the node is resolved.
	IR lltypes.Type

	// Whether the node has been resolved.  Type nodes attached to function
	// signatures are resolved once during declaration and reused afterwards.
	Resolved bool
}

// VarDecl is a name/type pair: a struct member or a function parameter.
type VarDecl struct {
	ASTBase

	Name string
	Type *TypeNode
}

// StructDef represents a struct definition.
type StructDef struct {
	ASTBase

	Name    string
	Members []*VarDecl

	// The IR struct type bound to the struct's name.  Its body holds the
	// two-word object header followed by the declared members.
	IRType *lltypes.StructType
}

// MemberIndex returns the declared index of the named member, or -1 if the
// struct has no such member.
func (sd *StructDef) MemberIndex(name string) int {
	for i, member := range sd.Members {
		if member.Name == name {
			return i
		}
	}

	return -1
}

// FuncDef represents a function definition or foreign declaration.
type FuncDef struct {
	ASTBase

	Name       string
	NamePos    *report.TextPos
	Params     []*VarDecl
	Variadic   bool
	ReturnType *TypeNode

	// The function body.  Foreign functions have no body.
	Body *Block

	// Whether the function is a foreign C declaration.
	Foreign bool

	// The declared IR function.
	IR *ir.Func
}

// CompileUnit is the AST produced from a single source file.
type CompileUnit struct {
	Path string

	Structs []*StructDef
	Funcs   []*FuncDef
}

// FindFunction returns the first function in declaration order with the given
// name, or nil if there is none.
func (cu *CompileUnit) FindFunction(name string) *FuncDef {
	for _, fn := range cu.Funcs {
		if fn.Name == name {
			return fn
		}
	}

	return nil
}
