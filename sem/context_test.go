package sem

import (
	"testing"

	"lunec/ast"
	"lunec/types"

	"github.com/llir/llvm/ir"
	lltypes "github.com/llir/llvm/ir/types"
)

func TestScopeLookupOrder(t *testing.T) {
	ctx := NewContext()

	ctx.PushScope()
	ctx.Declare("x", types.Prim(types.KindI32), nil)
	ctx.Declare("y", types.Prim(types.KindBool), nil)

	ctx.PushScope()
	ctx.Declare("x", types.Prim(types.KindF64), nil)

	// The inner binding shadows the outer one.
	if sym := ctx.Lookup("x"); sym == nil || sym.Type.Kind != types.KindF64 {
		t.Fatalf("inner x should shadow the outer binding")
	}

	// Outer bindings stay visible through inner scopes.
	if sym := ctx.Lookup("y"); sym == nil || sym.Type.Kind != types.KindBool {
		t.Fatalf("outer y should be visible from the inner scope")
	}

	ctx.PopScope()
	if sym := ctx.Lookup("x"); sym == nil || sym.Type.Kind != types.KindI32 {
		t.Fatalf("popping a scope should restore the outer binding")
	}

	if ctx.Lookup("z") != nil {
		t.Error("unbound names should not resolve")
	}
}

func TestScopeShadowingWithinOneScope(t *testing.T) {
	ctx := NewContext()
	ctx.PushScope()
	ctx.Declare("x", types.Prim(types.KindI32), nil)
	ctx.Declare("x", types.Prim(types.KindI64), nil)

	// Within one scope, the most recent binding wins.
	if sym := ctx.Lookup("x"); sym == nil || sym.Type.Kind != types.KindI64 {
		t.Error("the most recent binding should shadow within a scope")
	}
}

func TestPopEmptyScopeStack(t *testing.T) {
	ctx := NewContext()
	if ctx.PopScope() {
		t.Error("popping an empty scope stack should fail")
	}
	if len(ctx.Diags) == 0 {
		t.Error("popping an empty scope stack should record a diagnostic")
	}
}

func TestLoopExitStack(t *testing.T) {
	ctx := NewContext()
	if ctx.CurrentLoopExit() != nil {
		t.Error("no loop exit should be active initially")
	}

	f := ir.NewFunc("f", lltypes.Void)
	outer := f.NewBlock("")
	inner := f.NewBlock("")

	ctx.PushLoopExit(outer)
	ctx.PushLoopExit(inner)
	if ctx.CurrentLoopExit() != inner {
		t.Error("the innermost loop exit should be current")
	}

	ctx.PopLoopExit()
	if ctx.CurrentLoopExit() != outer {
		t.Error("popping should restore the enclosing loop exit")
	}

	ctx.PopLoopExit()
	if ctx.CurrentLoopExit() != nil {
		t.Error("the loop exit stack should be empty again")
	}
}

func TestFindFunctionDeclarationOrder(t *testing.T) {
	ctx := NewContext()

	first := &ast.FuncDef{Name: "f"}
	shadowed := &ast.FuncDef{Name: "f"}
	ctx.AddUnit(&ast.CompileUnit{Funcs: []*ast.FuncDef{first, {Name: "g"}}})
	ctx.AddUnit(&ast.CompileUnit{Funcs: []*ast.FuncDef{shadowed}})

	if ctx.FindFunction("f") != first {
		t.Error("lookup should return the first declaration across units")
	}
	if ctx.FindFunction("g") == nil {
		t.Error("g should be found")
	}
	if ctx.FindFunction("h") != nil {
		t.Error("unknown functions should not resolve")
	}
}
