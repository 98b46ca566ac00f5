package types

import (
	"strconv"
	"strings"
)

// kindNames maps each basic kind to its source spelling.  Untyped kinds have
// no source spelling; their names here are used only in diagnostics and the
// debug AST dump.
var kindNames = map[Kind]string{
	KindVoid:          "void",
	KindBool:          "bool",
	KindI8:            "i8",
	KindI16:           "i16",
	KindI32:           "i32",
	KindI64:           "i64",
	KindU8:            "u8",
	KindU16:           "u16",
	KindU32:           "u32",
	KindU64:           "u64",
	KindF32:           "f32",
	KindF64:           "f64",
	KindUntypedBool:   "untyped bool",
	KindUntypedInt:    "untyped int",
	KindUntypedFloat:  "untyped float",
	KindUntypedString: "untyped string",
}

// Repr returns the display form of the value type.
func (vt ValueType) Repr() string {
	sb := &strings.Builder{}

	for _, size := range vt.ArraySizes {
		sb.WriteByte('[')
		sb.WriteString(strconv.FormatInt(size, 10))
		sb.WriteByte(']')
	}

	if vt.Kind == KindStruct {
		sb.WriteString(vt.StructName)
	} else {
		sb.WriteString(kindNames[vt.Kind])
	}

	if vt.IsRef {
		sb.WriteByte('&')
	}

	sb.WriteString(strings.Repeat("*", vt.PtrDepth))

	return sb.String()
}
