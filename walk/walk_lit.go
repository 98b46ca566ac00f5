package walk

import (
	"lunec/ast"
	"lunec/report"
	"lunec/types"

	"github.com/llir/llvm/ir/constant"
	lltypes "github.com/llir/llvm/ir/types"
)

// intVariantKinds are the concrete element kinds an untyped integer aggregate
// is materialised for.
var intVariantKinds = []types.Kind{
	types.KindI8, types.KindI16, types.KindI32, types.KindI64,
	types.KindU8, types.KindU16, types.KindU32, types.KindU64,
}

// walkArrayLit analyzes an array aggregate constant.  Every element must be a
// constant expression of the identical untyped type; the aggregate's type is
// the element type with one new outer array dimension.
//
// Because the elements are untyped, the aggregate's concrete element type is
// not known here: an IR array constant is materialised in parallel for every
// concrete type that could still receive it, range-checked per element.  A
// nil entry marks a target some element is out of range for; coercing the
// aggregate to that target later is an error.
func (w *Walker) walkArrayLit(v *ast.ArrayLit) bool {
	for _, elem := range v.Elems {
		if !w.walkExpr(elem) {
			return false
		}
	}

	if len(v.Elems) == 0 {
		return w.error(v.Pos(), report.ErrEachElementMustHaveIdenticallyType)
	}

	elemType := v.Elems[0].Type()
	elemType.IsArg = false
	if !elemType.IsUntyped() {
		return w.error(v.Pos(), report.ErrEachElementMustHaveIdenticallyType)
	}
	for _, elem := range v.Elems[1:] {
		other := elem.Type()
		if !other.IsUntyped() || !other.Equals(elemType) {
			return w.error(v.Pos(), report.ErrEachElementMustHaveIdenticallyType)
		}
	}

	vt := elemType
	vt.ArraySizes = append([]int64{int64(len(v.Elems))}, elemType.ArraySizes...)
	v.SetType(vt)

	v.Variants = make(map[types.Kind]constant.Constant)
	switch elemType.Kind {
	case types.KindUntypedBool:
		return w.materializeVariant(v, types.KindBool)
	case types.KindUntypedInt:
		for _, kind := range intVariantKinds {
			if !w.materializeVariant(v, kind) {
				return false
			}
		}
		return true
	case types.KindUntypedFloat:
		return w.materializeVariant(v, types.KindF32) && w.materializeVariant(v, types.KindF64)
	case types.KindUntypedString:
		return w.materializeVariant(v, types.KindUntypedString)
	}

	w.ctx.RecordDiag("aggregate of kind " + elemType.Repr())
	return false
}

// materializeVariant builds the IR array constant of an aggregate for one
// concrete element kind.  An element out of range for the kind marks the
// whole variant nil.
func (w *Walker) materializeVariant(v *ast.ArrayLit, kind types.Kind) bool {
	elems := make([]constant.Constant, 0, len(v.Elems))
	for _, elem := range v.Elems {
		c, inRange, ok := w.variantElem(elem, kind)
		if !ok {
			return false
		}
		if !inRange {
			v.Variants[kind] = nil
			return true
		}
		elems = append(elems, c)
	}

	arrType := lltypes.NewArray(uint64(len(elems)), elems[0].Type())
	v.Variants[kind] = constant.NewArray(arrType, elems...)
	return true
}

// variantElem materialises one aggregate element at the given concrete kind.
// The second return value reports whether the element is in range for the
// kind; the third is the hard-failure flag.
func (w *Walker) variantElem(elem ast.Expr, kind types.Kind) (constant.Constant, bool, bool) {
	if nested, ok := elem.(*ast.ArrayLit); ok {
		variant := nested.Variants[kind]
		return variant, variant != nil, true
	}

	switch elem.Type().Kind {
	case types.KindUntypedBool:
		return constant.NewBool(elem.Base().FoldBool), true, true
	case types.KindUntypedInt:
		n := elem.Base().FoldInt
		if !intInRange(n, kind) {
			return nil, false, true
		}
		return constant.NewInt(intIRType(kind), n), true, true
	case types.KindUntypedFloat:
		f := elem.Base().FoldFloat
		if kind == types.KindF32 {
			return constant.NewFloat(lltypes.Float, float64(float32(f))), true, true
		}
		return constant.NewFloat(lltypes.Double, f), true, true
	case types.KindUntypedString:
		c, ok := elem.Value().(constant.Constant)
		if !ok {
			w.ctx.RecordDiag("string element without constant materialisation")
			return nil, false, false
		}
		return c, true, true
	}

	w.ctx.RecordDiag("aggregate element of kind " + elem.Type().Repr())
	return nil, false, false
}

// intInRange reports whether a folded integer fits the given sized kind.
// The 64-bit kinds accept every folded value: the backing representation is
// already 64 bits wide.
func intInRange(n int64, kind types.Kind) bool {
	switch kind {
	case types.KindI8:
		return -128 <= n && n <= 127
	case types.KindI16:
		return -32768 <= n && n <= 32767
	case types.KindI32:
		return -2147483648 <= n && n <= 2147483647
	case types.KindU8:
		return 0 <= n && n <= 255
	case types.KindU16:
		return 0 <= n && n <= 65535
	case types.KindU32:
		return 0 <= n && n <= 4294967295
	default:
		return true
	}
}
