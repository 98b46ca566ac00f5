package walk

import (
	"lunec/ast"
	"lunec/report"
	"lunec/types"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/enum"
	lltypes "github.com/llir/llvm/ir/types"
)

// declareStruct declares an IR struct type bound to the struct's name.  The
// body is filled later so that members may refer to structs declared after
// this one.
func (w *Walker) declareStruct(sd *ast.StructDef) bool {
	st := lltypes.NewStruct()
	w.mod.NewTypeDef(sd.Name, st)

	sd.IRType = st
	w.structs[sd.Name] = sd
	w.structTypes[sd.Name] = st
	return true
}

// defineStructBody fills a declared struct type: the two-word object header
// (reference count, type id) followed by the declared members in source
// order.
func (w *Walker) defineStructBody(sd *ast.StructDef) bool {
	fields := []lltypes.Type{w.sizeType(), w.typeIDType()}

	for _, member := range sd.Members {
		if !w.resolveTypeNode(member.Type) {
			return false
		}
		fields = append(fields, member.Type.IR)
	}

	sd.IRType.Fields = fields
	return true
}

// declareFunc declares a function signature with external linkage.  Bodies
// are emitted afterwards so that calls may reference functions declared later
// in the unit.
func (w *Walker) declareFunc(fn *ast.FuncDef) bool {
	if !w.resolveTypeNode(fn.ReturnType) {
		return false
	}

	var params []*ir.Param
	for _, param := range fn.Params {
		if !w.resolveTypeNode(param.Type) {
			return false
		}
		param.Type.VT.IsArg = true
		params = append(params, ir.NewParam(param.Name, param.Type.IR))
	}

	irFunc := w.mod.NewFunc(fn.Name, fn.ReturnType.IR, params...)
	irFunc.Sig.Variadic = fn.Variadic
	irFunc.Linkage = enum.LinkageExternal

	fn.IR = irFunc
	return true
}

// defineFunc emits the body of a native function.  Foreign declarations have
// no body.
func (w *Walker) defineFunc(fn *ast.FuncDef) bool {
	if fn.Body == nil {
		return true
	}

	entry := fn.IR.NewBlock("")
	w.fn = fn
	w.entry = entry

	w.ctx.PushScope()
	for i, param := range fn.Params {
		w.ctx.Declare(param.Name, param.Type.VT, fn.IR.Params[i])
	}

	w.ctx.SetReturnType(fn.ReturnType.VT)
	if !w.walkBlock(fn.Body, entry, nil) {
		return false
	}
	w.ctx.PopScope()

	if !w.ctx.Returned() {
		rt := fn.ReturnType.VT
		if rt.Kind == types.KindVoid && rt.PtrDepth == 0 && !rt.IsRef {
			last := w.ctx.LastBlock()
			if last == nil {
				last = entry
			}
			last.NewRet(nil)
		} else {
			return w.error(fn.Body.End, report.ErrMissingReturn)
		}
	}

	w.ctx.SetReturned(false)
	w.ctx.SetLastBlock(nil)
	return true
}
