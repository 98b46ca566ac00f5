// Package walk implements the semantic middle-end: a single bottom-up pass
// over the AST that performs symbol resolution, type checking, and constant
// folding while emitting LLVM IR side-by-side through the llir builder.
package walk

import (
	"fmt"
	"strconv"

	"lunec/ast"
	"lunec/report"
	"lunec/sem"
	"lunec/types"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	lltypes "github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

// Walker analyzes compile units and lowers them into a single LLVM module.
// Analysis and lowering are interleaved: every walk method type-checks its
// node, records errors on the shared context, and appends instructions to the
// currently open basic block.
type Walker struct {
	ctx *sem.Context
	mod *ir.Module

	// The compile unit being walked.
	unit *ast.CompileUnit

	// The function being defined, its entry block, and the block instructions
	// are currently appended to.  Stack allocations always go to the entry
	// block regardless of their lexical position.
	fn    *ast.FuncDef
	entry *ir.Block
	block *ir.Block

	// The struct definitions and their IR types, by name.
	structs     map[string]*ast.StructDef
	structTypes map[string]*lltypes.StructType

	// The header-boxed object types for the built-in value kinds, used for
	// reference types such as `i32&`.
	boxTypes map[types.Kind]*lltypes.StructType

	// The declaration of the C allocator `new` lowers to.
	malloc *ir.Func

	// Counter for naming interned string globals.
	strCount int
}

// boxedKinds lists the value kinds that have a boxed object type, with the
// names their IR struct types are interned under.
var boxedKinds = []struct {
	kind types.Kind
	name string
}{
	{types.KindBool, ".bool"},
	{types.KindI8, ".i8"},
	{types.KindI16, ".i16"},
	{types.KindI32, ".i32"},
	{types.KindI64, ".i64"},
	{types.KindU8, ".u8"},
	{types.KindU16, ".u16"},
	{types.KindU32, ".u32"},
	{types.KindU64, ".u64"},
	{types.KindF32, ".f32"},
	{types.KindF64, ".f64"},
}

// NewWalker creates a walker lowering into the given module.  The module is
// seeded with the built-in declarations: the boxed object types and the
// external `malloc` used by `new`.
func NewWalker(ctx *sem.Context, mod *ir.Module) *Walker {
	w := &Walker{
		ctx:         ctx,
		mod:         mod,
		structs:     make(map[string]*ast.StructDef),
		structTypes: make(map[string]*lltypes.StructType),
		boxTypes:    make(map[types.Kind]*lltypes.StructType),
	}

	w.malloc = mod.NewFunc("malloc", lltypes.I8Ptr, ir.NewParam("", w.sizeType()))
	w.malloc.Linkage = enum.LinkageExternal

	for _, boxed := range boxedKinds {
		payload, _ := w.scalarType(types.Prim(boxed.kind))
		st := lltypes.NewStruct(w.sizeType(), w.typeIDType(), payload)
		mod.NewTypeDef(boxed.name, st)
		w.boxTypes[boxed.kind] = st
	}

	return w
}

// WalkUnit analyzes and lowers one compile unit.  The unit must already have
// been added to the context.  It returns false as soon as any subtree fails;
// at least one error or internal diagnostic has been recorded by then.
func (w *Walker) WalkUnit(cu *ast.CompileUnit) bool {
	w.unit = cu

	// Struct types are declared before any body is filled so that members may
	// refer to other structs.
	for _, sd := range cu.Structs {
		if !w.declareStruct(sd) {
			return false
		}
	}
	for _, sd := range cu.Structs {
		if !w.defineStructBody(sd) {
			return false
		}
	}

	// Functions are likewise declared signature-first so that bodies may call
	// functions defined later in the file.
	for _, fn := range cu.Funcs {
		if !w.declareFunc(fn) {
			return false
		}
	}
	for _, fn := range cu.Funcs {
		if !w.defineFunc(fn) {
			return false
		}
	}

	return true
}

// -----------------------------------------------------------------------------

// error records a compile error at the given position and returns false so
// that walk methods can fail in a single statement.
func (w *Walker) error(pos *report.TextPos, name string) bool {
	w.ctx.AddError(report.NewError(name, w.unit.Path, pos))
	return false
}

// sizeType returns the IR integer type with the width of the platform's
// size_t: the width of the reference-count slot of every object header.
func (w *Walker) sizeType() *lltypes.IntType {
	if strconv.IntSize == 32 {
		return lltypes.I32
	}
	return lltypes.I64
}

// typeIDType returns the IR type of the type-id slot of an object header.
func (w *Walker) typeIDType() *lltypes.IntType {
	return lltypes.I32
}

// stringConstant interns a string as a private null-terminated global byte
// array and returns the pointer to its first byte.
func (w *Walker) stringConstant(s string) constant.Constant {
	global := w.mod.NewGlobalDef(fmt.Sprintf(".str.%d", w.strCount), constant.NewCharArrayFromString(s+"\x00"))
	w.strCount++
	global.Linkage = enum.LinkagePrivate
	global.Immutable = true

	zero := constant.NewInt(lltypes.I32, 0)
	return constant.NewGetElementPtr(lltypes.NewArray(uint64(len(s)+1), lltypes.I8), global, zero, zero)
}

// zeroValue returns the zero constant of the given IR type.
func (w *Walker) zeroValue(t lltypes.Type) constant.Constant {
	switch t := t.(type) {
	case *lltypes.IntType:
		return constant.NewInt(t, 0)
	case *lltypes.FloatType:
		return constant.NewFloat(t, 0)
	case *lltypes.PointerType:
		return constant.NewNull(t)
	default:
		return constant.NewZeroInitializer(t)
	}
}

// sizeOf emits the size-of computation for a type: the address of element one
// of a null pointer, converted to the size type.
func (w *Walker) sizeOf(t lltypes.Type) value.Value {
	end := w.block.NewGetElementPtr(t, constant.NewNull(lltypes.NewPointer(t)), constant.NewInt(lltypes.I32, 1))
	return w.block.NewPtrToInt(end, w.sizeType())
}
