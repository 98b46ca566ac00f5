package ast

import (
	"strings"
	"testing"

	"lunec/types"
)

func TestPrintUnit(t *testing.T) {
	cu := &CompileUnit{
		Path: "test.lune",
		Structs: []*StructDef{
			{
				Name: "Point",
				Members: []*VarDecl{
					{Name: "x", Type: &TypeNode{VT: types.Prim(types.KindI32)}},
				},
			},
		},
		Funcs: []*FuncDef{
			{
				Name:       "printf",
				Foreign:    true,
				Variadic:   true,
				Params:     []*VarDecl{{Name: "fmt", Type: &TypeNode{VT: types.ValueType{Kind: types.KindI8, PtrDepth: 1}}}},
				ReturnType: &TypeNode{VT: types.Prim(types.KindI32)},
			},
			{
				Name:       "main",
				ReturnType: &TypeNode{VT: types.Prim(types.KindI32)},
				Body: &Block{
					Stmts: []Node{
						&LetStmt{
							Name: "x",
							Init: &Literal{Kind: LitInt, Lexeme: "1"},
						},
						&ReturnStmt{
							Value: &BinaryOp{
								Op:  Oper{Name: "+"},
								Lhs: &VarRef{Name: "x"},
								Rhs: &Literal{Kind: LitInt, Lexeme: "2"},
							},
						},
					},
				},
			},
		},
	}

	sb := &strings.Builder{}
	NewPrinter(sb).PrintUnit(cu)
	out := sb.String()

	for _, fragment := range []string{
		"struct Point {",
		"x i32",
		"extern \"C\" {",
		"fn printf(fmt i8*, ...) i32;",
		"fn main() i32 {",
		"let x = 1;",
		"return (x) + (2);",
	} {
		if !strings.Contains(out, fragment) {
			t.Errorf("dump does not contain %q:\n%s", fragment, out)
		}
	}
}

func TestPrintStringLiteralEscapes(t *testing.T) {
	sb := &strings.Builder{}
	p := NewPrinter(sb)
	p.printExpr(&Literal{Kind: LitString, Lexeme: "a\tb\n"})

	if sb.String() != `"a\tb\n"` {
		t.Errorf("string literal printed as %s", sb.String())
	}
}
