// Package cmd is the top-level driver package for the Lune compiler: it
// parses the command line, runs the compilation pipeline, and writes the
// outputs.
package cmd

import (
	"bufio"
	"fmt"
	"os"

	"lunec/ast"
	"lunec/report"
	"lunec/sem"
	"lunec/syntax"
	"lunec/walk"

	"github.com/llir/llvm/ir"
)

const usage = `Usage: lunec <source file>`

// Compiler represents the state of one compiler invocation.
type Compiler struct {
	srcPath string
	config  *Config
}

// RunCompiler is the main entry point for the compiler.  It should be called
// directly from main with the process exit code as its result.  The compiler
// takes exactly one positional argument: the path of the source file.
func RunCompiler() int {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, usage)
		return 1
	}

	config, err := LoadConfig(os.Args[1])
	if err != nil {
		report.DisplayFatalMessage(err.Error())
		return 1
	}

	c := &Compiler{srcPath: os.Args[1], config: config}
	return c.Run()
}

// Run executes the compilation pipeline: parse, dump the debug AST, analyze
// and lower, and write the textual IR.  Errors are written to stderr one line
// per error; the exit code is zero only for a clean compile.
func (c *Compiler) Run() int {
	file, err := os.Open(c.srcPath)
	if err != nil {
		if c.config.logLevel() >= LogLevelError {
			report.DisplayFatalMessage(err.Error())
		}
		return 1
	}
	defer file.Close()

	parser := syntax.NewParser(c.srcPath, bufio.NewReader(file))
	cu, ok := parser.Parse()
	if !ok {
		report.WriteErrors(os.Stderr, parser.Errors())
		return 1
	}

	if !c.writeASTDump(cu) {
		return 1
	}

	ctx := sem.NewContext()
	ctx.AddUnit(cu)

	mod := ir.NewModule()
	walker := walk.NewWalker(ctx, mod)
	if !walker.WalkUnit(cu) || len(ctx.Errors) > 0 {
		report.WriteErrors(os.Stderr, ctx.Errors)
		if c.config.logLevel() == LogLevelVerbose {
			for _, diag := range ctx.Diags {
				fmt.Fprintf(os.Stderr, "%s\t%s\n", diag.Site, diag.Note)
			}
		}
		return 1
	}

	if !c.writeIR(mod) {
		return 1
	}

	if c.config.logLevel() == LogLevelVerbose {
		report.DisplayInfoMessage("Compiled", fmt.Sprintf("%s -> %s, %s", c.srcPath, c.config.ASTOut, c.config.IROut))
	}

	return 0
}

// writeASTDump writes the debug AST dump of the parsed unit.
func (c *Compiler) writeASTDump(cu *ast.CompileUnit) bool {
	out, err := os.Create(c.config.ASTOut)
	if err != nil {
		if c.config.logLevel() >= LogLevelError {
			report.DisplayFatalMessage(err.Error())
		}
		return false
	}
	defer out.Close()

	ast.NewPrinter(out).PrintUnit(cu)
	return true
}

// writeIR writes the textual IR of the lowered module.
func (c *Compiler) writeIR(mod *ir.Module) bool {
	out, err := os.Create(c.config.IROut)
	if err != nil {
		if c.config.logLevel() >= LogLevelError {
			report.DisplayFatalMessage(err.Error())
		}
		return false
	}
	defer out.Close()

	if _, err := out.WriteString(mod.String()); err != nil {
		if c.config.logLevel() >= LogLevelError {
			report.DisplayFatalMessage(err.Error())
		}
		return false
	}

	return true
}
