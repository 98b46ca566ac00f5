package walk

import (
	"lunec/ast"
	"lunec/report"
	"lunec/types"

	lltypes "github.com/llir/llvm/ir/types"
)

// resolveTypeNode resolves a type label: it validates the reference form,
// resolves the array size expressions to positive integer constants, checks
// struct names, and computes the IR type.  Type nodes attached to function
// signatures are resolved once and reused.
func (w *Walker) resolveTypeNode(tn *ast.TypeNode) bool {
	if tn.Resolved {
		return true
	}

	if tn.VT.IsRef && tn.VT.Kind == types.KindVoid {
		return w.error(tn.Pos(), report.ErrInvalidReferenceType)
	}

	for _, sizeExpr := range tn.SizeExprs {
		size, ok := w.evalArraySize(sizeExpr)
		if !ok {
			return false
		}
		tn.VT.ArraySizes = append(tn.VT.ArraySizes, size)
	}

	if tn.VT.Kind == types.KindStruct {
		if _, ok := w.structs[tn.VT.StructName]; !ok {
			return w.error(tn.Pos(), report.ErrUndefinedSymbol)
		}
	}

	irType, ok := w.convValueType(tn.VT)
	if !ok {
		return false
	}

	tn.IR = irType
	tn.Resolved = true
	return true
}

// convValueType translates a value type to its IR type.  Scalars map to the
// IR primitives; a reference type maps to a pointer to the header-boxed
// object type of its base; pointer depth wraps the result in pointer types;
// array dimensions wrap it in array types, the first dimension outermost.
func (w *Walker) convValueType(vt types.ValueType) (lltypes.Type, bool) {
	var t lltypes.Type

	switch {
	case vt.IsRef:
		if vt.Kind == types.KindStruct {
			st, ok := w.structTypes[vt.StructName]
			if !ok {
				w.ctx.RecordDiag("reference to unknown struct " + vt.StructName)
				return nil, false
			}
			t = lltypes.NewPointer(st)
		} else {
			box, ok := w.boxTypes[vt.Kind]
			if !ok {
				w.ctx.RecordDiag("reference to unboxable kind " + vt.Repr())
				return nil, false
			}
			t = lltypes.NewPointer(box)
		}
	case vt.Kind == types.KindVoid && vt.PtrDepth > 0:
		// There is no void element type in the backend: void* is i8*.
		t = lltypes.I8
	default:
		var ok bool
		if t, ok = w.scalarType(vt); !ok {
			return nil, false
		}
	}

	for i := 0; i < vt.PtrDepth; i++ {
		t = lltypes.NewPointer(t)
	}

	for i := len(vt.ArraySizes) - 1; i >= 0; i-- {
		if vt.ArraySizes[i] <= 0 {
			w.ctx.RecordDiag("non-positive array size survived resolution")
			return nil, false
		}
		t = lltypes.NewArray(uint64(vt.ArraySizes[i]), t)
	}

	return t, true
}

// scalarType translates the basic kind of a value type to its IR primitive.
func (w *Walker) scalarType(vt types.ValueType) (lltypes.Type, bool) {
	switch vt.Kind {
	case types.KindVoid:
		return lltypes.Void, true
	case types.KindBool, types.KindUntypedBool:
		return lltypes.I1, true
	case types.KindI8, types.KindU8:
		return lltypes.I8, true
	case types.KindI16, types.KindU16:
		return lltypes.I16, true
	case types.KindI32, types.KindU32:
		return lltypes.I32, true
	case types.KindI64, types.KindU64, types.KindUntypedInt:
		return lltypes.I64, true
	case types.KindF32:
		return lltypes.Float, true
	case types.KindF64, types.KindUntypedFloat:
		return lltypes.Double, true
	case types.KindUntypedString:
		return lltypes.I8Ptr, true
	case types.KindStruct:
		if st, ok := w.structTypes[vt.StructName]; ok {
			return st, true
		}
		w.ctx.RecordDiag("unknown struct " + vt.StructName)
		return nil, false
	}

	w.ctx.RecordDiag("untranslatable kind " + vt.Repr())
	return nil, false
}

// intIRType returns the IR integer type of a sized integer kind.
func intIRType(kind types.Kind) *lltypes.IntType {
	switch types.IntKindBits(kind) {
	case 1:
		return lltypes.I1
	case 8:
		return lltypes.I8
	case 16:
		return lltypes.I16
	case 32:
		return lltypes.I32
	default:
		return lltypes.I64
	}
}
