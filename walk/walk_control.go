package walk

import (
	"lunec/ast"
	"lunec/report"
	"lunec/types"

	"github.com/llir/llvm/ir"
)

// walkBlock emits the statements of a block into the basic block bb.  If the
// block falls through (no break or return) and a successor was provided, an
// unconditional branch to the successor terminates it; otherwise the caller
// must ensure termination.  A statement after a break or return is an error.
func (w *Walker) walkBlock(b *ast.Block, bb *ir.Block, successor *ir.Block) bool {
	prev := w.block
	w.block = bb

	w.ctx.PushScope()
	for _, stmt := range b.Stmts {
		if w.ctx.Breaked() || w.ctx.Returned() {
			return w.error(stmt.Pos(), report.ErrCanNotGiveInstructionAfterBreakOrReturn)
		}
		if !w.walkStmt(stmt) {
			return false
		}
	}
	w.ctx.PopScope()

	if successor != nil && !w.ctx.Breaked() && !w.ctx.Returned() {
		w.block.NewBr(successor)
	}

	w.ctx.SetBreaked(false)
	w.block = prev
	return true
}

// walkIf emits an if statement.  Both arms branch to a fresh successor block;
// control continues there.  The context counts as returned only if both arms
// returned on every path, an absent else counting as an open path.
func (w *Walker) walkIf(v *ast.IfStmt) bool {
	if !w.walkExpr(v.Cond) {
		return false
	}
	if !v.Cond.Type().CompatibleWith(types.Prim(types.KindBool)) {
		return w.error(v.Cond.Pos(), report.ErrTypeMismatch)
	}

	successor := w.fn.IR.NewBlock("")
	w.ctx.SetLastBlock(successor)

	thenBlock := w.fn.IR.NewBlock("")
	if !w.walkBlock(v.Then, thenBlock, successor) {
		return false
	}
	thenReturned := w.ctx.Returned()
	w.ctx.SetReturned(false)
	w.ctx.SetLastBlock(successor)

	elseReturned := false
	if v.Else != nil {
		elseBlock := w.fn.IR.NewBlock("")
		if !w.walkBlock(v.Else, elseBlock, successor) {
			return false
		}
		elseReturned = w.ctx.Returned()
		w.ctx.SetReturned(false)
		w.ctx.SetLastBlock(successor)

		w.block.NewCondBr(v.Cond.Value(), thenBlock, elseBlock)
	} else {
		w.block.NewCondBr(v.Cond.Value(), thenBlock, successor)
	}

	w.block = successor

	if thenReturned && elseReturned {
		// Every path through the if returns: the successor is unreachable,
		// but it still needs its one terminator.
		w.ctx.SetReturned(true)
		w.ctx.SetBreaked(true)
		if w.fn.ReturnType.VT.Kind == types.KindVoid && w.fn.ReturnType.VT.PtrDepth == 0 {
			successor.NewRet(nil)
		} else {
			successor.NewRet(w.zeroValue(w.fn.ReturnType.IR))
		}
	}

	return true
}

// walkWhile emits a while loop: a condition block, the body with a back-edge
// to the condition, and a successor block that doubles as the break target.
func (w *Walker) walkWhile(v *ast.WhileStmt) bool {
	condBlock := w.fn.IR.NewBlock("")
	w.block.NewBr(condBlock)
	w.block = condBlock

	if !w.walkExpr(v.Cond) {
		return false
	}
	if !v.Cond.Type().CompatibleWith(types.Prim(types.KindBool)) {
		return w.error(v.Cond.Pos(), report.ErrTypeMismatch)
	}

	successor := w.fn.IR.NewBlock("")
	w.ctx.SetLastBlock(successor)
	w.ctx.PushLoopExit(successor)

	bodyBlock := w.fn.IR.NewBlock("")
	w.block.NewCondBr(v.Cond.Value(), bodyBlock, successor)

	if !w.walkBlock(v.Body, bodyBlock, condBlock) {
		return false
	}
	w.ctx.SetLastBlock(successor)
	w.ctx.PopLoopExit()

	w.block = successor
	w.ctx.SetReturned(false)
	return true
}
