package walk

import (
	"lunec/ast"
	"lunec/report"
	"lunec/types"

	"github.com/llir/llvm/ir/constant"
	lltypes "github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

// coerceConstant produces an IR value of the target's type from a source
// expression.  Typed sources pass through unchanged: compatibility has
// already been checked by the caller.  Untyped scalar constants are
// re-materialised at the target's width from their folded value; untyped
// aggregates select the pre-materialised parallel constant for the target
// element type, which is an error if an element was out of range for it.
func (w *Walker) coerceConstant(src ast.Expr, target types.ValueType) (value.Value, bool) {
	st := src.Type()
	if !st.IsUntyped() || st.PtrDepth != 0 {
		return src.Value(), true
	}

	if len(st.ArraySizes) == 0 {
		switch {
		case st.Kind == types.KindUntypedInt && types.IsIntegerKind(target.Kind):
			n := src.Base().FoldInt
			if !intInRange(n, target.Kind) {
				return nil, w.error(src.Pos(), report.ErrTypeMismatch)
			}
			return constant.NewInt(intIRType(target.Kind), n), true
		case st.Kind == types.KindUntypedInt && target.Kind == types.KindF32:
			return constant.NewFloat(lltypes.Float, float64(float32(src.Base().FoldInt))), true
		case st.Kind == types.KindUntypedInt && target.Kind == types.KindF64:
			return constant.NewFloat(lltypes.Double, float64(src.Base().FoldInt)), true
		case st.Kind == types.KindUntypedFloat && target.Kind == types.KindF32:
			return constant.NewFloat(lltypes.Float, float64(float32(src.Base().FoldFloat))), true
		}

		// Untyped bools and strings already carry the single materialisation
		// the target expects.
		return src.Value(), true
	}

	lit, ok := src.(*ast.ArrayLit)
	if !ok {
		w.ctx.RecordDiag("aggregate coercion of non-aggregate expression")
		return nil, false
	}

	variant, ok := lit.Variants[variantKey(target)]
	if !ok || variant == nil {
		return nil, w.error(src.Pos(), report.ErrTypeMismatch)
	}

	return variant, true
}

// variantKey maps a coercion target to the aggregate variant materialised for
// it.
func variantKey(target types.ValueType) types.Kind {
	if target.Kind == types.KindI8 && target.PtrDepth == 1 {
		return types.KindUntypedString
	}
	return target.Kind
}
