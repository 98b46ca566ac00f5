package walk

import (
	"math"
	"strconv"

	"lunec/ast"
	"lunec/report"
	"lunec/syntax"
	"lunec/types"

	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	lltypes "github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

// walkExpr analyzes and lowers an expression.  On success the node carries
// its resolved value type and its emitted IR value.
func (w *Walker) walkExpr(expr ast.Expr) bool {
	switch v := expr.(type) {
	case *ast.Literal:
		return w.walkLiteral(v)
	case *ast.ArrayLit:
		return w.walkArrayLit(v)
	case *ast.VarRef:
		return w.walkVarRef(v, false)
	case *ast.UnaryOp:
		return w.walkUnaryOp(v)
	case *ast.BinaryOp:
		return w.walkBinaryOp(v)
	case *ast.Call:
		return w.walkCall(v)
	case *ast.Cast:
		return w.walkCast(v)
	}

	w.ctx.RecordDiag("expression node of unknown kind")
	return false
}

// walkLiteral analyzes a constant literal.  The node's type is the matching
// untyped literal kind; its folded value is kept for later coercion to a
// concrete type.
func (w *Walker) walkLiteral(lit *ast.Literal) bool {
	switch lit.Kind {
	case ast.LitBool:
		lit.FoldBool = lit.Lexeme == "true"
		lit.SetValue(constant.NewBool(lit.FoldBool))
		lit.SetType(types.Prim(types.KindUntypedBool))
	case ast.LitInt:
		n, err := strconv.ParseInt(lit.Lexeme, 10, 64)
		if err != nil {
			return w.error(lit.Pos(), report.ErrConstantTooLarge)
		}
		lit.FoldInt = n
		lit.SetValue(constant.NewInt(lltypes.I64, n))
		lit.SetType(types.Prim(types.KindUntypedInt))
	case ast.LitFloat:
		f, err := strconv.ParseFloat(lit.Lexeme, 64)
		if err != nil {
			return w.error(lit.Pos(), report.ErrConstantTooLarge)
		}
		lit.FoldFloat = f
		lit.SetValue(constant.NewFloat(lltypes.Double, f))
		lit.SetType(types.Prim(types.KindUntypedFloat))
	case ast.LitString:
		lit.FoldStr = lit.Lexeme
		lit.SetValue(w.stringConstant(lit.Lexeme))
		lit.SetType(types.Prim(types.KindUntypedString))
	default:
		w.ctx.RecordDiag("literal of unknown kind")
		return false
	}

	return true
}

// walkVarRef analyzes a variable reference path.  A plain parameter resolves
// to its SSA value directly; everything else resolves to a storage pointer,
// loaded unless the reference is the destination of an assignment.
func (w *Walker) walkVarRef(v *ast.VarRef, lhs bool) bool {
	sym := w.ctx.Lookup(v.Name)
	if sym == nil {
		return w.error(v.Pos(), report.ErrUndefinedSymbol)
	}

	if sym.Type.IsArg {
		if v.Index == nil && v.Member == nil {
			v.SetType(sym.Type)
			v.SetValue(sym.Value)
			return true
		}

		// Parameters are bare SSA values: they have no storage to address
		// into.
		if lhs {
			return w.error(v.Pos(), report.ErrCanNotOverwriteArgument)
		}
		return w.error(v.Pos(), report.ErrTypeMismatch)
	}

	cur := sym.Type
	ptr := sym.Value

	ref := v
	for {
		if ref.Index != nil {
			var ok bool
			if ptr, cur, ok = w.lowerIndex(ptr, cur, ref.Index); !ok {
				return false
			}
		}

		if ref.Member == nil {
			break
		}
		ref = ref.Member

		var ok bool
		if ptr, cur, ok = w.lowerMember(ptr, cur, ref); !ok {
			return false
		}
	}

	cur.IsArg = false
	v.SetType(cur)
	v.Ptr = ptr

	if !lhs {
		irType, ok := w.convValueType(cur)
		if !ok {
			return false
		}
		v.SetValue(w.block.NewLoad(irType, ptr))
	}

	return true
}

// lowerIndex lowers one `[i]` step of a variable path to a gep into the
// array's storage.
func (w *Walker) lowerIndex(ptr value.Value, cur types.ValueType, index ast.Expr) (value.Value, types.ValueType, bool) {
	if len(cur.ArraySizes) == 0 {
		return nil, cur, w.error(index.Pos(), report.ErrTypeMismatch)
	}

	if !w.walkExpr(index) {
		return nil, cur, false
	}

	it := index.Type()
	if it.PtrDepth != 0 || len(it.ArraySizes) != 0 ||
		!(types.IsIntegerKind(it.Kind) || it.Kind == types.KindUntypedInt) {

		return nil, cur, w.error(index.Pos(), report.ErrTypeMismatch)
	}

	arrType, ok := w.convValueType(cur)
	if !ok {
		return nil, cur, false
	}

	elem := cur
	elem.ArraySizes = cur.ArraySizes[1:]

	gep := w.block.NewGetElementPtr(arrType, ptr, constant.NewInt(lltypes.I32, 0), index.Value())
	return gep, elem, true
}

// lowerMember lowers one `.name` step of a variable path to a gep against the
// struct's declared member list.  Reference bases are dereferenced first.
// Members sit behind the two header slots of the object layout.
func (w *Walker) lowerMember(ptr value.Value, cur types.ValueType, member *ast.VarRef) (value.Value, types.ValueType, bool) {
	if cur.Kind != types.KindStruct || cur.PtrDepth != 0 || len(cur.ArraySizes) != 0 {
		return nil, cur, w.error(member.Pos(), report.ErrTypeMismatch)
	}

	sd, ok := w.structs[cur.StructName]
	if !ok {
		return nil, cur, w.error(member.Pos(), report.ErrUndefinedSymbol)
	}
	st := w.structTypes[cur.StructName]

	if cur.IsRef {
		objType, ok := w.convValueType(cur)
		if !ok {
			return nil, cur, false
		}
		ptr = w.block.NewLoad(objType, ptr)
	}

	index := sd.MemberIndex(member.Name)
	if index < 0 {
		return nil, cur, w.error(member.Pos(), report.ErrUndefinedSymbol)
	}

	field := sd.Members[index].Type.VT
	field.IsArg = false

	gep := w.block.NewGetElementPtr(st, ptr,
		constant.NewInt(lltypes.I32, 0), constant.NewInt(lltypes.I32, int64(2+index)))
	return gep, field, true
}

// walkUnaryOp analyzes a unary negation.  Negation of an untyped constant
// folds in the compiler; negating the most negative 64-bit integer overflows
// and is an error.
func (w *Walker) walkUnaryOp(v *ast.UnaryOp) bool {
	if !w.walkExpr(v.Operand) {
		return false
	}

	vt := v.Operand.Type()
	vt.IsArg = false
	if !vt.IsArithmetic() || len(vt.ArraySizes) != 0 {
		return w.error(v.Op.Pos, report.ErrNotArithmeticType)
	}

	if v.Op.Kind != syntax.MINUS {
		w.ctx.RecordDiag("unary operator " + v.Op.Name)
		return false
	}

	switch vt.Kind {
	case types.KindUntypedInt:
		n := v.Operand.Base().FoldInt
		if n == math.MinInt64 {
			return w.error(v.Op.Pos, report.ErrConstantTooLarge)
		}
		v.FoldInt = -n
		v.SetValue(constant.NewInt(lltypes.I64, -n))
	case types.KindUntypedFloat:
		v.FoldFloat = -v.Operand.Base().FoldFloat
		v.SetValue(constant.NewFloat(lltypes.Double, v.FoldFloat))
	default:
		if types.IsFloatKind(vt.Kind) {
			v.SetValue(w.block.NewFNeg(v.Operand.Value()))
		} else {
			v.SetValue(w.block.NewSub(constant.NewInt(intIRType(vt.Kind), 0), v.Operand.Value()))
		}
	}

	v.SetType(vt)
	return true
}

// walkCall analyzes a function call: the callee is found in the global
// function namespace, fixed arguments are checked and coerced against the
// declared parameters, and variadic extras are passed through in whatever
// concrete type they analyzed to.
func (w *Walker) walkCall(v *ast.Call) bool {
	fn := w.ctx.FindFunction(v.Name)
	if fn == nil {
		return w.error(v.Pos(), report.ErrUndefinedSymbol)
	}

	var args []value.Value
	for i, arg := range v.Args {
		if !w.walkExpr(arg) {
			return false
		}

		if i < len(fn.Params) {
			paramType := fn.Params[i].Type.VT
			if !arg.Type().CompatibleWith(paramType) {
				return w.error(arg.Pos(), report.ErrTypeMismatch)
			}

			val, ok := w.coerceConstant(arg, paramType)
			if !ok {
				return false
			}
			args = append(args, val)
		} else {
			if !fn.Variadic {
				return w.error(v.Pos(), report.ErrInvalidCallArgumentLength)
			}
			args = append(args, arg.Value())
		}
	}

	if len(v.Args) < len(fn.Params) {
		return w.error(v.Pos(), report.ErrInvalidCallArgumentLength)
	}

	v.SetValue(w.block.NewCall(fn.IR, args...))

	rt := fn.ReturnType.VT
	rt.IsArg = false
	v.SetType(rt)
	return true
}

// walkCast analyzes an explicit cast.  Casts are defined on scalar numeric
// and boolean types only; pointer and reference operands are rejected.
func (w *Walker) walkCast(v *ast.Cast) bool {
	if !w.walkExpr(v.Src) {
		return false
	}
	if !w.resolveTypeNode(v.DestType) {
		return false
	}

	st := v.Src.Type()
	dt := v.DestType.VT

	if st.IsRef || st.PtrDepth != 0 || len(st.ArraySizes) != 0 ||
		dt.IsRef || dt.PtrDepth != 0 || len(dt.ArraySizes) != 0 ||
		st.Kind == types.KindStruct || dt.Kind == types.KindStruct ||
		st.Kind == types.KindVoid || dt.Kind == types.KindVoid ||
		st.Kind == types.KindUntypedString {

		return w.error(v.Pos(), report.ErrTypeMismatch)
	}

	val, ok := w.emitCast(st.Kind, v.Src.Value(), dt.Kind)
	if !ok {
		return false
	}

	dt.IsArg = false
	v.SetValue(val)
	v.SetType(dt)
	return true
}

// emitCast emits the IR conversion from one scalar kind to another.
func (w *Walker) emitCast(src types.Kind, val value.Value, dst types.Kind) (value.Value, bool) {
	if src == dst {
		return val, true
	}

	dstType, ok := w.scalarType(types.Prim(dst))
	if !ok {
		return nil, false
	}
	dstFloat := types.IsFloatKind(dst)

	switch {
	case src == types.KindF32:
		switch {
		case dst == types.KindF64:
			return w.block.NewFPExt(val, dstType), true
		case types.IsSignedKind(dst):
			return w.block.NewFPToSI(val, dstType), true
		default:
			return w.block.NewFPToUI(val, dstType), true
		}
	case src == types.KindF64 || src == types.KindUntypedFloat:
		switch {
		case dst == types.KindF64:
			return val, true
		case dst == types.KindF32:
			return w.block.NewFPTrunc(val, dstType), true
		case types.IsSignedKind(dst):
			return w.block.NewFPToSI(val, dstType), true
		default:
			return w.block.NewFPToUI(val, dstType), true
		}
	case types.IsSignedKind(src):
		if dstFloat {
			return w.block.NewSIToFP(val, dstType), true
		}
		return w.truncOrExt(val, dstType)
	default:
		// Unsigned integers and booleans.
		if dstFloat {
			return w.block.NewUIToFP(val, dstType), true
		}
		return w.truncOrExt(val, dstType)
	}
}

// truncOrExt truncates or zero-extends an integer value to the destination
// width, or passes it through when the widths already match.
func (w *Walker) truncOrExt(val value.Value, dstType lltypes.Type) (value.Value, bool) {
	srcInt, ok := val.Type().(*lltypes.IntType)
	if !ok {
		w.ctx.RecordDiag("integer conversion on non-integer value")
		return nil, false
	}
	dstInt, ok := dstType.(*lltypes.IntType)
	if !ok {
		w.ctx.RecordDiag("integer conversion to non-integer type")
		return nil, false
	}

	switch {
	case dstInt.BitSize < srcInt.BitSize:
		return w.block.NewTrunc(val, dstType), true
	case srcInt.BitSize < dstInt.BitSize:
		return w.block.NewZExt(val, dstType), true
	default:
		return val, true
	}
}

// -----------------------------------------------------------------------------

// walkBinaryOp analyzes a binary operator application.  The operand types
// must be compatible; an untyped side is coerced to the other side's type;
// the operator is validated against the operand class; and applications over
// two untyped constants fold to a constant in the compiler.
func (w *Walker) walkBinaryOp(v *ast.BinaryOp) bool {
	if !w.walkExpr(v.Lhs) || !w.walkExpr(v.Rhs) {
		return false
	}

	lhsType := v.Lhs.Type()
	rhsType := v.Rhs.Type()
	if !lhsType.CompatibleWith(rhsType) {
		return w.error(v.Op.Pos, report.ErrTypeMismatch)
	}

	var lhsVal, rhsVal value.Value
	var target types.ValueType
	if lhsType.IsUntyped() {
		var ok bool
		if lhsVal, ok = w.coerceConstant(v.Lhs, rhsType); !ok {
			return false
		}
		rhsVal = v.Rhs.Value()
		target = rhsType
	} else {
		var ok bool
		if rhsVal, ok = w.coerceConstant(v.Rhs, lhsType); !ok {
			return false
		}
		lhsVal = v.Lhs.Value()
		target = lhsType
	}
	target.IsArg = false

	if !w.checkOperand(v.Op, lhsType, v.Lhs) {
		return false
	}

	if lhsType.IsUntyped() && rhsType.IsUntyped() {
		return w.foldBinaryOp(v, target)
	}

	return w.emitBinaryOp(v, target, lhsVal, rhsVal)
}

// checkOperand validates an operator against its operand class.
func (w *Walker) checkOperand(op ast.Oper, operandType types.ValueType, operand ast.Expr) bool {
	scalar := len(operandType.ArraySizes) == 0

	switch op.Kind {
	case syntax.PLUS, syntax.MINUS, syntax.STAR, syntax.SLASH, syntax.PERCENT:
		if !scalar || !operandType.IsArithmetic() {
			return w.error(operand.Pos(), report.ErrNotArithmeticType)
		}
	case syntax.LT, syntax.LTEQ, syntax.GT, syntax.GTEQ:
		if !scalar || !operandType.IsComparable() {
			return w.error(operand.Pos(), report.ErrNotComparableType)
		}
	case syntax.EQ, syntax.NEQ:
		if !scalar || !operandType.IsEquatable() {
			return w.error(operand.Pos(), report.ErrNotBeAbleToEqualType)
		}
	case syntax.LAND, syntax.LOR:
		if !scalar || !operandType.IsBool() {
			return w.error(operand.Pos(), report.ErrTypeMismatch)
		}
	default:
		w.ctx.RecordDiag("binary operator " + op.Name)
		return false
	}

	return true
}

// emitBinaryOp emits the IR instruction for a binary operator over values of
// the target type, selecting the signed, unsigned, or float variant from the
// target's kind.
func (w *Walker) emitBinaryOp(v *ast.BinaryOp, target types.ValueType, lhs, rhs value.Value) bool {
	float := types.IsFloatKind(target.Kind)
	signed := types.IsSignedKind(target.Kind)

	var result value.Value
	resultType := target

	switch v.Op.Kind {
	case syntax.PLUS:
		if float {
			result = w.block.NewFAdd(lhs, rhs)
		} else {
			result = w.block.NewAdd(lhs, rhs)
		}
	case syntax.MINUS:
		if float {
			result = w.block.NewFSub(lhs, rhs)
		} else {
			result = w.block.NewSub(lhs, rhs)
		}
	case syntax.STAR:
		if float {
			result = w.block.NewFMul(lhs, rhs)
		} else {
			result = w.block.NewMul(lhs, rhs)
		}
	case syntax.SLASH:
		switch {
		case float:
			result = w.block.NewFDiv(lhs, rhs)
		case signed:
			result = w.block.NewSDiv(lhs, rhs)
		default:
			result = w.block.NewUDiv(lhs, rhs)
		}
	case syntax.PERCENT:
		switch {
		case float:
			result = w.block.NewFRem(lhs, rhs)
		case signed:
			result = w.block.NewSRem(lhs, rhs)
		default:
			result = w.block.NewURem(lhs, rhs)
		}
	case syntax.LT, syntax.LTEQ, syntax.GT, syntax.GTEQ, syntax.EQ, syntax.NEQ:
		if float {
			result = w.block.NewFCmp(floatPreds[v.Op.Kind], lhs, rhs)
		} else {
			result = w.block.NewICmp(intPreds(v.Op.Kind, signed), lhs, rhs)
		}
		resultType = types.Prim(types.KindBool)
	case syntax.LAND:
		result = w.block.NewAnd(lhs, rhs)
		resultType = types.Prim(types.KindBool)
	case syntax.LOR:
		result = w.block.NewOr(lhs, rhs)
		resultType = types.Prim(types.KindBool)
	default:
		w.ctx.RecordDiag("binary operator " + v.Op.Name)
		return false
	}

	v.SetValue(result)
	v.SetType(resultType)
	return true
}

// floatPreds maps comparison operators to their ordered float predicates.
var floatPreds = map[int]enum.FPred{
	syntax.LT:   enum.FPredOLT,
	syntax.LTEQ: enum.FPredOLE,
	syntax.GT:   enum.FPredOGT,
	syntax.GTEQ: enum.FPredOGE,
	syntax.EQ:   enum.FPredOEQ,
	syntax.NEQ:  enum.FPredONE,
}

// intPreds returns the integer predicate of a comparison operator, signed or
// unsigned by the operand type.  Equality does not distinguish signedness.
func intPreds(opKind int, signed bool) enum.IPred {
	switch opKind {
	case syntax.EQ:
		return enum.IPredEQ
	case syntax.NEQ:
		return enum.IPredNE
	}

	if signed {
		switch opKind {
		case syntax.LT:
			return enum.IPredSLT
		case syntax.LTEQ:
			return enum.IPredSLE
		case syntax.GT:
			return enum.IPredSGT
		default:
			return enum.IPredSGE
		}
	}

	switch opKind {
	case syntax.LT:
		return enum.IPredULT
	case syntax.LTEQ:
		return enum.IPredULE
	case syntax.GT:
		return enum.IPredUGT
	default:
		return enum.IPredUGE
	}
}

// foldBinaryOp folds a binary operator over two untyped constant operands.
// The result is itself an untyped constant: arithmetic keeps the operand
// kind, comparisons and logical operators yield an untyped bool.
func (w *Walker) foldBinaryOp(v *ast.BinaryOp, target types.ValueType) bool {
	lhs := v.Lhs.Base()
	rhs := v.Rhs.Base()

	switch target.Kind {
	case types.KindUntypedInt:
		switch v.Op.Kind {
		case syntax.PLUS:
			v.FoldInt = lhs.FoldInt + rhs.FoldInt
		case syntax.MINUS:
			v.FoldInt = lhs.FoldInt - rhs.FoldInt
		case syntax.STAR:
			v.FoldInt = lhs.FoldInt * rhs.FoldInt
		case syntax.SLASH:
			if rhs.FoldInt == 0 {
				return w.error(v.Op.Pos, report.ErrConstantTooLarge)
			}
			v.FoldInt = lhs.FoldInt / rhs.FoldInt
		case syntax.PERCENT:
			if rhs.FoldInt == 0 {
				return w.error(v.Op.Pos, report.ErrConstantTooLarge)
			}
			v.FoldInt = lhs.FoldInt % rhs.FoldInt
		case syntax.LT:
			return w.setFoldBool(v, lhs.FoldInt < rhs.FoldInt)
		case syntax.LTEQ:
			return w.setFoldBool(v, lhs.FoldInt <= rhs.FoldInt)
		case syntax.GT:
			return w.setFoldBool(v, lhs.FoldInt > rhs.FoldInt)
		case syntax.GTEQ:
			return w.setFoldBool(v, lhs.FoldInt >= rhs.FoldInt)
		case syntax.EQ:
			return w.setFoldBool(v, lhs.FoldInt == rhs.FoldInt)
		case syntax.NEQ:
			return w.setFoldBool(v, lhs.FoldInt != rhs.FoldInt)
		}
		v.SetValue(constant.NewInt(lltypes.I64, v.FoldInt))
		v.SetType(types.Prim(types.KindUntypedInt))
	case types.KindUntypedFloat:
		switch v.Op.Kind {
		case syntax.PLUS:
			v.FoldFloat = lhs.FoldFloat + rhs.FoldFloat
		case syntax.MINUS:
			v.FoldFloat = lhs.FoldFloat - rhs.FoldFloat
		case syntax.STAR:
			v.FoldFloat = lhs.FoldFloat * rhs.FoldFloat
		case syntax.SLASH:
			v.FoldFloat = lhs.FoldFloat / rhs.FoldFloat
		case syntax.PERCENT:
			v.FoldFloat = math.Mod(lhs.FoldFloat, rhs.FoldFloat)
		case syntax.LT:
			return w.setFoldBool(v, lhs.FoldFloat < rhs.FoldFloat)
		case syntax.LTEQ:
			return w.setFoldBool(v, lhs.FoldFloat <= rhs.FoldFloat)
		case syntax.GT:
			return w.setFoldBool(v, lhs.FoldFloat > rhs.FoldFloat)
		case syntax.GTEQ:
			return w.setFoldBool(v, lhs.FoldFloat >= rhs.FoldFloat)
		case syntax.EQ:
			return w.setFoldBool(v, lhs.FoldFloat == rhs.FoldFloat)
		case syntax.NEQ:
			return w.setFoldBool(v, lhs.FoldFloat != rhs.FoldFloat)
		}
		v.SetValue(constant.NewFloat(lltypes.Double, v.FoldFloat))
		v.SetType(types.Prim(types.KindUntypedFloat))
	case types.KindUntypedBool:
		switch v.Op.Kind {
		case syntax.EQ:
			return w.setFoldBool(v, lhs.FoldBool == rhs.FoldBool)
		case syntax.NEQ:
			return w.setFoldBool(v, lhs.FoldBool != rhs.FoldBool)
		case syntax.LAND:
			return w.setFoldBool(v, lhs.FoldBool && rhs.FoldBool)
		case syntax.LOR:
			return w.setFoldBool(v, lhs.FoldBool || rhs.FoldBool)
		}
		w.ctx.RecordDiag("fold of operator " + v.Op.Name + " over booleans")
		return false
	default:
		w.ctx.RecordDiag("fold over kind " + target.Repr())
		return false
	}

	return true
}

// setFoldBool finishes a folded comparison or logical application.
func (w *Walker) setFoldBool(v *ast.BinaryOp, result bool) bool {
	v.FoldBool = result
	v.SetValue(constant.NewBool(result))
	v.SetType(types.Prim(types.KindUntypedBool))
	return true
}
