// Package sem holds the per-compilation state shared by the semantic
// analyzer: the compile units, the accumulated errors, the symbol scopes, and
// the lowering state that ties analysis to the IR being built.
package sem

import (
	"fmt"
	"path/filepath"
	"runtime"

	"lunec/ast"
	"lunec/report"
	"lunec/types"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/value"
)

// Symbol is a named local binding: its resolved type and its IR handle.  For
// function parameters the handle is the SSA value itself; for everything else
// it is a pointer to the variable's storage.
type Symbol struct {
	Name  string
	Type  types.ValueType
	Value value.Value
}

// scope is an ordered list of symbols; later entries shadow earlier ones.
type scope []*Symbol

// Diag is a structured internal diagnostic.  Diagnostics mark invariant
// violations inside the compiler itself; they never fire on a normal compile
// of valid input.
type Diag struct {
	// The compiler source site that recorded the diagnostic.
	Site string

	// An optional free-form note.
	Note string
}

// Context is the state of one compiler invocation.
type Context struct {
	// The compile units under compilation, in the order they were added.
	Units []*ast.CompileUnit

	// The errors recorded so far, in traversal order.
	Errors []*report.CompileError

	// The internal diagnostics recorded so far.
	Diags []Diag

	scopes    []scope
	loopExits []*ir.Block

	lastBlock *ir.Block
	breaked   bool
	returned  bool

	returnType types.ValueType
}

// NewContext creates a new empty compilation context.
func NewContext() *Context {
	return &Context{}
}

// AddUnit appends a compile unit to the context.
func (c *Context) AddUnit(cu *ast.CompileUnit) {
	c.Units = append(c.Units, cu)
}

// AddError appends a compile error to the context's error list.
func (c *Context) AddError(err *report.CompileError) {
	c.Errors = append(c.Errors, err)
}

// RecordDiag appends an internal diagnostic, capturing the caller's source
// site.
func (c *Context) RecordDiag(note string) {
	site := "unknown"
	if _, file, line, ok := runtime.Caller(1); ok {
		site = fmt.Sprintf("%s:%d", filepath.Base(file), line)
	}

	c.Diags = append(c.Diags, Diag{Site: site, Note: note})
}

// -----------------------------------------------------------------------------

// PushScope pushes a new empty symbol scope.
func (c *Context) PushScope() {
	c.scopes = append(c.scopes, nil)
}

// PopScope removes the innermost symbol scope.  Popping an empty scope stack
// is an internal error.
func (c *Context) PopScope() bool {
	if len(c.scopes) == 0 {
		c.RecordDiag("scope stack underflow")
		return false
	}

	c.scopes = c.scopes[:len(c.scopes)-1]
	return true
}

// Declare appends a symbol to the innermost scope.  Shadowing an existing
// binding, in this or any outer scope, is allowed.
func (c *Context) Declare(name string, typ types.ValueType, val value.Value) bool {
	if len(c.scopes) == 0 {
		c.RecordDiag("declare with no open scope")
		return false
	}

	top := len(c.scopes) - 1
	c.scopes[top] = append(c.scopes[top], &Symbol{Name: name, Type: typ, Value: val})
	return true
}

// Lookup finds the symbol bound to name, searching scopes innermost-out and,
// within a scope, most-recent-first.  It returns nil if the name is unbound.
func (c *Context) Lookup(name string) *Symbol {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		sc := c.scopes[i]
		for j := len(sc) - 1; j >= 0; j-- {
			if sc[j].Name == name {
				return sc[j]
			}
		}
	}

	return nil
}

// FindFunction finds the first function with the given name, scanning the
// compile units in the order they were added and each unit's functions in
// declaration order.  Function names live in a single global namespace.
func (c *Context) FindFunction(name string) *ast.FuncDef {
	for _, cu := range c.Units {
		if fn := cu.FindFunction(name); fn != nil {
			return fn
		}
	}

	return nil
}

// -----------------------------------------------------------------------------

// PushLoopExit pushes the successor block `break` transfers control to within
// the loop being entered.
func (c *Context) PushLoopExit(block *ir.Block) {
	c.loopExits = append(c.loopExits, block)
}

// PopLoopExit removes the innermost loop exit.
func (c *Context) PopLoopExit() {
	if len(c.loopExits) == 0 {
		c.RecordDiag("loop exit stack underflow")
		return
	}

	c.loopExits = c.loopExits[:len(c.loopExits)-1]
}

// CurrentLoopExit returns the innermost loop exit, or nil when no loop is
// active.
func (c *Context) CurrentLoopExit() *ir.Block {
	if len(c.loopExits) == 0 {
		return nil
	}

	return c.loopExits[len(c.loopExits)-1]
}

// -----------------------------------------------------------------------------

// SetLastBlock records the IR block most recently opened at the current
// nesting level.
func (c *Context) SetLastBlock(block *ir.Block) {
	c.lastBlock = block
}

// LastBlock returns the IR block most recently opened at the current nesting
// level.
func (c *Context) LastBlock() *ir.Block {
	return c.lastBlock
}

// SetBreaked sets whether the current block has an unreachable tail following
// a break.
func (c *Context) SetBreaked(flag bool) {
	c.breaked = flag
}

// Breaked returns whether the current block has an unreachable tail following
// a break.
func (c *Context) Breaked() bool {
	return c.breaked
}

// SetReturned sets whether the current block has an unreachable tail
// following a return.
func (c *Context) SetReturned(flag bool) {
	c.returned = flag
}

// Returned returns whether the current block has an unreachable tail
// following a return.
func (c *Context) Returned() bool {
	return c.returned
}

// SetReturnType sets the declared return type of the function whose body is
// being analyzed.
func (c *Context) SetReturnType(typ types.ValueType) {
	c.returnType = typ
}

// ReturnType returns the declared return type of the function whose body is
// being analyzed.
func (c *Context) ReturnType() types.ValueType {
	return c.returnType
}
