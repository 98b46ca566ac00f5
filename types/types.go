package types

// Kind enumerates the basic kinds a value type can have.  The Untyped* kinds
// are the literal kinds produced by constant expressions: they are not
// spellable in source and survive only until a concrete type is supplied by
// the surrounding context.
type Kind int

const (
	KindUndefined Kind = iota

	KindVoid
	KindBool
	KindI8
	KindI16
	KindI32
	KindI64
	KindU8
	KindU16
	KindU32
	KindU64
	KindF32
	KindF64
	KindStruct

	KindUntypedBool
	KindUntypedInt
	KindUntypedFloat
	KindUntypedString
)

// ValueType is the central value descriptor of the type model.
type ValueType struct {
	// The basic kind of the type.
	Kind Kind

	// The name of the struct for struct kinds.
	StructName string

	// The pointer depth of the type; zero means not a pointer.
	PtrDepth int

	// Whether the value is a heap object accessed through a pointer to a
	// two-word header.
	IsRef bool

	// Whether the value originates as a function parameter and is therefore
	// read-only in source.
	IsArg bool

	// The array dimensions of the type, outermost first; empty means scalar.
	ArraySizes []int64
}

// Prim returns a new scalar value type of the given kind.
func Prim(kind Kind) ValueType {
	return ValueType{Kind: kind}
}

// Equals returns whether two value types are equal.  All fields except IsArg
// participate in the comparison.
func (vt ValueType) Equals(other ValueType) bool {
	if vt.Kind != other.Kind ||
		vt.StructName != other.StructName ||
		vt.PtrDepth != other.PtrDepth ||
		vt.IsRef != other.IsRef ||
		len(vt.ArraySizes) != len(other.ArraySizes) {

		return false
	}

	for i, size := range vt.ArraySizes {
		if size != other.ArraySizes[i] {
			return false
		}
	}

	return true
}

// IsUntyped returns whether the type is an untyped literal kind.
func (vt ValueType) IsUntyped() bool {
	switch vt.Kind {
	case KindUntypedBool, KindUntypedInt, KindUntypedFloat, KindUntypedString:
		return true
	}

	return false
}

// IsArithmetic returns whether the type supports the arithmetic operators.
func (vt ValueType) IsArithmetic() bool {
	if vt.PtrDepth != 0 {
		return false
	}

	switch vt.Kind {
	case KindI8, KindI16, KindI32, KindI64, KindU8, KindU16, KindU32, KindU64,
		KindF32, KindF64, KindUntypedInt, KindUntypedFloat:

		return true
	}

	return false
}

// IsComparable returns whether the type supports the ordering operators.
func (vt ValueType) IsComparable() bool {
	return vt.IsArithmetic()
}

// IsEquatable returns whether the type supports the equality operators.
func (vt ValueType) IsEquatable() bool {
	return vt.IsArithmetic() || vt.IsBool()
}

// IsBool returns whether the type is boolean.
func (vt ValueType) IsBool() bool {
	return vt.PtrDepth == 0 && (vt.Kind == KindBool || vt.Kind == KindUntypedBool)
}

// IsString returns whether the type is the string type: a single pointer to i8.
func (vt ValueType) IsString() bool {
	return vt.Kind == KindI8 && vt.PtrDepth == 1
}

// CompatibleWith returns whether a value of this type may appear where the
// other type is expected, or vice versa.  Compatibility is a symmetric
// pairwise coercion predicate, not a subtyping relation: beyond equality, it
// only admits pairs with equal array dimensions where one side is an untyped
// literal kind whose family matches the other side's concrete kind.
func (vt ValueType) CompatibleWith(other ValueType) bool {
	if vt.Equals(other) {
		return true
	}

	if len(vt.ArraySizes) != len(other.ArraySizes) {
		return false
	}
	for i, size := range vt.ArraySizes {
		if size != other.ArraySizes[i] {
			return false
		}
	}

	return vt.coercesTo(other) || other.coercesTo(vt)
}

// coercesTo returns whether vt is an untyped literal kind whose family
// matches the concrete type conc.
func (vt ValueType) coercesTo(conc ValueType) bool {
	if vt.PtrDepth != 0 {
		return false
	}

	switch vt.Kind {
	case KindUntypedInt:
		// Integer literals also coerce to the float kinds: `let y f64 = 2`
		// binds y to 2.0.
		return conc.PtrDepth == 0 && (IsIntegerKind(conc.Kind) || conc.Kind == KindF32 || conc.Kind == KindF64)
	case KindUntypedFloat:
		return conc.PtrDepth == 0 && (conc.Kind == KindF32 || conc.Kind == KindF64)
	case KindUntypedBool:
		return conc.PtrDepth == 0 && conc.Kind == KindBool
	case KindUntypedString:
		return conc.IsString()
	}

	return false
}

// IsIntegerKind returns whether kind is a sized integer kind.
func IsIntegerKind(kind Kind) bool {
	switch kind {
	case KindI8, KindI16, KindI32, KindI64, KindU8, KindU16, KindU32, KindU64:
		return true
	}

	return false
}

// IsSignedKind returns whether kind is a signed integer kind.  The untyped
// integer kind counts as signed: its backing representation is a signed
// 64-bit integer.
func IsSignedKind(kind Kind) bool {
	switch kind {
	case KindI8, KindI16, KindI32, KindI64, KindUntypedInt:
		return true
	}

	return false
}

// IsUnsignedKind returns whether kind is an unsigned integer kind.
func IsUnsignedKind(kind Kind) bool {
	switch kind {
	case KindU8, KindU16, KindU32, KindU64:
		return true
	}

	return false
}

// IsFloatKind returns whether kind is a floating-point kind.
func IsFloatKind(kind Kind) bool {
	return kind == KindF32 || kind == KindF64 || kind == KindUntypedFloat
}

// IntKindBits returns the bit width of a sized integer kind.  The untyped
// integer kind is 64 bits wide.
func IntKindBits(kind Kind) int {
	switch kind {
	case KindI8, KindU8:
		return 8
	case KindI16, KindU16:
		return 16
	case KindI32, KindU32:
		return 32
	case KindI64, KindU64, KindUntypedInt:
		return 64
	case KindBool, KindUntypedBool:
		return 1
	}

	return 0
}
