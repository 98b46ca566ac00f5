package walk

import (
	"math"

	"lunec/ast"
	"lunec/report"
	"lunec/types"

	"github.com/llir/llvm/ir/constant"
	lltypes "github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

// walkStmt emits a single statement.
func (w *Walker) walkStmt(stmt ast.Node) bool {
	switch v := stmt.(type) {
	case *ast.LetStmt:
		return w.walkLet(v)
	case *ast.AssignStmt:
		return w.walkAssign(v)
	case *ast.IfStmt:
		return w.walkIf(v)
	case *ast.WhileStmt:
		return w.walkWhile(v)
	case *ast.ReturnStmt:
		return w.walkReturn(v)
	case *ast.BreakStmt:
		return w.walkBreak(v)
	case *ast.Call:
		// A call in statement position; its value, if any, is discarded.
		return w.walkCall(v)
	}

	w.ctx.RecordDiag("statement node of unknown kind")
	return false
}

// walkLet emits a variable declaration.  Stack storage is allocated in the
// function's entry block regardless of the let's lexical position; `new`
// additionally allocates and initializes a heap object and stores its pointer
// into the stack slot.
func (w *Walker) walkLet(v *ast.LetStmt) bool {
	if v.Init != nil {
		if !w.walkExpr(v.Init) {
			return false
		}
	}

	if v.Type == nil {
		inferred, ok := w.inferLetType(v)
		if !ok {
			return false
		}
		v.Type = inferred
	}

	if !w.resolveTypeNode(v.Type) {
		return false
	}

	ptr := w.entry.NewAlloca(v.Type.IR)

	if v.IsHeap {
		if !w.emitNewObject(v, ptr) {
			return false
		}
	} else {
		var val value.Value
		if v.Init != nil {
			if !v.Type.VT.CompatibleWith(v.Init.Type()) {
				return w.error(v.Pos(), report.ErrTypeMismatch)
			}

			var ok bool
			if val, ok = w.coerceConstant(v.Init, v.Type.VT); !ok {
				return false
			}
		} else {
			val = w.zeroValue(v.Type.IR)
		}

		w.block.NewStore(val, ptr)
	}

	declared := v.Type.VT
	declared.IsArg = false
	return w.ctx.Declare(v.Name, declared, ptr)
}

// inferLetType infers the type of a let binding from its initializer: untyped
// bool becomes bool, untyped int becomes i32 (failing if the folded value is
// outside the 32-bit signed range), untyped float becomes f64, and untyped
// string becomes i8*.  Aggregates apply the same rules to their element kind.
// Already-concrete initializer types are taken as they are.
func (w *Walker) inferLetType(v *ast.LetStmt) (*ast.TypeNode, bool) {
	vt := v.Init.Type()
	vt.IsArg = false

	switch vt.Kind {
	case types.KindUntypedBool:
		vt.Kind = types.KindBool
	case types.KindUntypedInt:
		if len(vt.ArraySizes) == 0 {
			n := v.Init.Base().FoldInt
			if n < math.MinInt32 || n > math.MaxInt32 {
				return nil, w.error(v.NamePos, report.ErrConstantTooLarge)
			}
		} else {
			lit, ok := v.Init.(*ast.ArrayLit)
			if !ok || lit.Variants[types.KindI32] == nil {
				return nil, w.error(v.NamePos, report.ErrConstantTooLarge)
			}
		}
		vt.Kind = types.KindI32
	case types.KindUntypedFloat:
		vt.Kind = types.KindF64
	case types.KindUntypedString:
		vt.Kind = types.KindI8
		vt.PtrDepth = 1
	}

	tn := &ast.TypeNode{ASTBase: ast.NewASTBaseOn(v.NamePos), VT: vt}
	return tn, true
}

// emitNewObject lowers `= new T`: call malloc with the size of the boxed
// object type, cast the raw allocation, store the object pointer into the
// stack slot, and initialize the header (reference count one, reserved type
// id zero) and the payload.
func (w *Walker) emitNewObject(v *ast.LetStmt, ptr value.Value) bool {
	vt := v.Type.VT

	var box *lltypes.StructType
	if vt.Kind == types.KindStruct {
		box = w.structTypes[vt.StructName]
	} else {
		box = w.boxTypes[vt.Kind]
	}
	if box == nil {
		w.ctx.RecordDiag("new of unboxable type " + vt.Repr())
		return false
	}

	raw := w.block.NewCall(w.malloc, w.sizeOf(box))
	obj := w.block.NewBitCast(raw, lltypes.NewPointer(box))
	w.block.NewStore(obj, ptr)

	var initVal value.Value
	if v.Init != nil {
		if !vt.CompatibleWith(v.Init.Type()) {
			return w.error(v.Pos(), report.ErrTypeMismatch)
		}

		var ok bool
		if initVal, ok = w.coerceConstant(v.Init, vt); !ok {
			return false
		}
	}

	zero := constant.NewInt(lltypes.I32, 0)
	field := func(obj value.Value, index int64) value.Value {
		return w.block.NewGetElementPtr(box, obj, zero, constant.NewInt(lltypes.I32, index))
	}

	w.block.NewStore(constant.NewInt(w.sizeType(), 1), field(obj, 0))
	w.block.NewStore(constant.NewInt(w.typeIDType(), 0), field(obj, 1))

	if vt.Kind == types.KindStruct {
		sd := w.structs[vt.StructName]
		var src value.Value
		if initVal != nil {
			// The initializer is another object of the same reference type:
			// copy its payload memberwise.
			src = initVal
		}
		for i, member := range sd.Members {
			dst := field(obj, int64(2+i))
			if src != nil {
				from := w.block.NewGetElementPtr(box, src, zero, constant.NewInt(lltypes.I32, int64(2+i)))
				w.block.NewStore(w.block.NewLoad(member.Type.IR, from), dst)
			} else {
				w.block.NewStore(w.zeroValue(member.Type.IR), dst)
			}
		}
	} else {
		if initVal == nil {
			initVal = w.zeroValue(box.Fields[2])
		}
		w.block.NewStore(initVal, field(obj, 2))
	}

	return true
}

// walkAssign emits an assignment.  The destination must not be a function
// parameter; the value must be compatible with the destination's type, with
// untyped constants coerced to it.
func (w *Walker) walkAssign(v *ast.AssignStmt) bool {
	if !w.walkVarRef(v.Dest, true) {
		return false
	}
	if v.Dest.Type().IsArg {
		return w.error(v.Pos(), report.ErrCanNotOverwriteArgument)
	}

	if !w.walkExpr(v.Value) {
		return false
	}
	if !v.Value.Type().CompatibleWith(v.Dest.Type()) {
		return w.error(v.Pos(), report.ErrTypeMismatch)
	}

	val, ok := w.coerceConstant(v.Value, v.Dest.Type())
	if !ok {
		return false
	}

	w.block.NewStore(val, v.Dest.Ptr)
	return true
}

// walkReturn emits a return statement and marks the rest of the block
// unreachable.
func (w *Walker) walkReturn(v *ast.ReturnStmt) bool {
	rt := w.ctx.ReturnType()
	rt.IsArg = false

	if v.Value == nil {
		if rt.Kind != types.KindVoid || rt.PtrDepth != 0 || rt.IsRef {
			return w.error(v.Pos(), report.ErrTypeMismatch)
		}
		w.block.NewRet(nil)
	} else if !w.walkReturnValue(v, rt) {
		return false
	}

	w.ctx.SetBreaked(true)
	w.ctx.SetReturned(true)
	return true
}

func (w *Walker) walkReturnValue(v *ast.ReturnStmt, rt types.ValueType) bool {
	if !w.walkExpr(v.Value) {
		return false
	}
	vt := v.Value.Type()

	if vt.PtrDepth == 0 && len(vt.ArraySizes) == 0 && !vt.IsRef && vt.Kind != types.KindUntypedString {
		// A scalar return: untyped constants coerce to the return type;
		// anything else must match it exactly (modulo argument-ness).
		if rt.PtrDepth != 0 || len(rt.ArraySizes) != 0 {
			return w.error(v.Pos(), report.ErrTypeMismatch)
		}

		switch vt.Kind {
		case types.KindUntypedBool:
			if rt.Kind != types.KindBool {
				return w.error(v.Pos(), report.ErrTypeMismatch)
			}
			w.block.NewRet(v.Value.Value())
		case types.KindUntypedInt:
			if !types.IsIntegerKind(rt.Kind) && rt.Kind != types.KindF32 && rt.Kind != types.KindF64 {
				return w.error(v.Pos(), report.ErrTypeMismatch)
			}
			val, ok := w.coerceConstant(v.Value, rt)
			if !ok {
				return false
			}
			w.block.NewRet(val)
		case types.KindUntypedFloat:
			if rt.Kind != types.KindF32 && rt.Kind != types.KindF64 {
				return w.error(v.Pos(), report.ErrTypeMismatch)
			}
			val, ok := w.coerceConstant(v.Value, rt)
			if !ok {
				return false
			}
			w.block.NewRet(val)
		default:
			vt.IsArg = false
			if !vt.Equals(rt) {
				return w.error(v.Pos(), report.ErrTypeMismatch)
			}
			w.block.NewRet(v.Value.Value())
		}

		return true
	}

	// Aggregate, pointer, string, and reference returns go through the
	// compatibility predicate.
	if !rt.CompatibleWith(vt) {
		return w.error(v.Pos(), report.ErrTypeMismatch)
	}

	val, ok := w.coerceConstant(v.Value, rt)
	if !ok {
		return false
	}

	w.block.NewRet(val)
	return true
}

// walkBreak emits a branch to the innermost loop exit and marks the rest of
// the block unreachable.
func (w *Walker) walkBreak(v *ast.BreakStmt) bool {
	exit := w.ctx.CurrentLoopExit()
	if exit == nil {
		return w.error(v.Pos(), report.ErrInvalidBreak)
	}

	w.block.NewBr(exit)
	w.ctx.SetBreaked(true)
	return true
}
