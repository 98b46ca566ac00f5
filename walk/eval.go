package walk

import (
	"math"
	"strconv"

	"lunec/ast"
	"lunec/report"
	"lunec/syntax"
	"lunec/types"
)

// constVal is the result of pure constant evaluation: a folded literal value
// tagged with its untyped kind.
type constVal struct {
	kind types.Kind

	b bool
	i int64
	f float64
}

// evalArraySize resolves an array size expression to a positive integer
// constant.  Anything else is an ArraySizeMustBeConstantInteger error.
func (w *Walker) evalArraySize(expr ast.Expr) (int64, bool) {
	cv, ok := evalConst(expr)
	if !ok || cv.kind != types.KindUntypedInt || cv.i <= 0 {
		return 0, w.error(expr.Pos(), report.ErrArraySizeMustBeConstantInteger)
	}

	return cv.i, true
}

// evalConst evaluates a constant expression without emitting any IR.  It is
// used where a constant is needed before any basic block is open, such as
// array sizes in struct bodies and function signatures.  Expressions that are
// not compile-time constants simply report false.
func evalConst(expr ast.Expr) (constVal, bool) {
	switch v := expr.(type) {
	case *ast.Literal:
		return evalLiteral(v)
	case *ast.UnaryOp:
		return evalUnary(v)
	case *ast.BinaryOp:
		return evalBinary(v)
	}

	return constVal{}, false
}

func evalLiteral(lit *ast.Literal) (constVal, bool) {
	switch lit.Kind {
	case ast.LitBool:
		return constVal{kind: types.KindUntypedBool, b: lit.Lexeme == "true"}, true
	case ast.LitInt:
		n, err := strconv.ParseInt(lit.Lexeme, 10, 64)
		if err != nil {
			return constVal{}, false
		}
		return constVal{kind: types.KindUntypedInt, i: n}, true
	case ast.LitFloat:
		f, err := strconv.ParseFloat(lit.Lexeme, 64)
		if err != nil {
			return constVal{}, false
		}
		return constVal{kind: types.KindUntypedFloat, f: f}, true
	}

	return constVal{}, false
}

func evalUnary(v *ast.UnaryOp) (constVal, bool) {
	if v.Op.Kind != syntax.MINUS {
		return constVal{}, false
	}

	cv, ok := evalConst(v.Operand)
	if !ok {
		return constVal{}, false
	}

	switch cv.kind {
	case types.KindUntypedInt:
		if cv.i == math.MinInt64 {
			return constVal{}, false
		}
		cv.i = -cv.i
		return cv, true
	case types.KindUntypedFloat:
		cv.f = -cv.f
		return cv, true
	}

	return constVal{}, false
}

func evalBinary(v *ast.BinaryOp) (constVal, bool) {
	lhs, ok := evalConst(v.Lhs)
	if !ok {
		return constVal{}, false
	}
	rhs, ok := evalConst(v.Rhs)
	if !ok || lhs.kind != rhs.kind {
		return constVal{}, false
	}

	switch lhs.kind {
	case types.KindUntypedInt:
		return evalIntBinary(v.Op.Kind, lhs.i, rhs.i)
	case types.KindUntypedFloat:
		return evalFloatBinary(v.Op.Kind, lhs.f, rhs.f)
	case types.KindUntypedBool:
		switch v.Op.Kind {
		case syntax.LAND:
			return constVal{kind: types.KindUntypedBool, b: lhs.b && rhs.b}, true
		case syntax.LOR:
			return constVal{kind: types.KindUntypedBool, b: lhs.b || rhs.b}, true
		case syntax.EQ:
			return constVal{kind: types.KindUntypedBool, b: lhs.b == rhs.b}, true
		case syntax.NEQ:
			return constVal{kind: types.KindUntypedBool, b: lhs.b != rhs.b}, true
		}
	}

	return constVal{}, false
}

func evalIntBinary(opKind int, lhs, rhs int64) (constVal, bool) {
	boolResult := func(b bool) (constVal, bool) {
		return constVal{kind: types.KindUntypedBool, b: b}, true
	}
	intResult := func(i int64) (constVal, bool) {
		return constVal{kind: types.KindUntypedInt, i: i}, true
	}

	switch opKind {
	case syntax.PLUS:
		return intResult(lhs + rhs)
	case syntax.MINUS:
		return intResult(lhs - rhs)
	case syntax.STAR:
		return intResult(lhs * rhs)
	case syntax.SLASH:
		if rhs == 0 {
			return constVal{}, false
		}
		return intResult(lhs / rhs)
	case syntax.PERCENT:
		if rhs == 0 {
			return constVal{}, false
		}
		return intResult(lhs % rhs)
	case syntax.LT:
		return boolResult(lhs < rhs)
	case syntax.LTEQ:
		return boolResult(lhs <= rhs)
	case syntax.GT:
		return boolResult(lhs > rhs)
	case syntax.GTEQ:
		return boolResult(lhs >= rhs)
	case syntax.EQ:
		return boolResult(lhs == rhs)
	case syntax.NEQ:
		return boolResult(lhs != rhs)
	}

	return constVal{}, false
}

func evalFloatBinary(opKind int, lhs, rhs float64) (constVal, bool) {
	boolResult := func(b bool) (constVal, bool) {
		return constVal{kind: types.KindUntypedBool, b: b}, true
	}
	floatResult := func(f float64) (constVal, bool) {
		return constVal{kind: types.KindUntypedFloat, f: f}, true
	}

	switch opKind {
	case syntax.PLUS:
		return floatResult(lhs + rhs)
	case syntax.MINUS:
		return floatResult(lhs - rhs)
	case syntax.STAR:
		return floatResult(lhs * rhs)
	case syntax.SLASH:
		return floatResult(lhs / rhs)
	case syntax.PERCENT:
		return floatResult(math.Mod(lhs, rhs))
	case syntax.LT:
		return boolResult(lhs < rhs)
	case syntax.LTEQ:
		return boolResult(lhs <= rhs)
	case syntax.GT:
		return boolResult(lhs > rhs)
	case syntax.GTEQ:
		return boolResult(lhs >= rhs)
	case syntax.EQ:
		return boolResult(lhs == rhs)
	case syntax.NEQ:
		return boolResult(lhs != rhs)
	}

	return constVal{}, false
}
