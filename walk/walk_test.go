package walk

import (
	"bufio"
	"strings"
	"testing"

	"lunec/report"
	"lunec/sem"
	"lunec/syntax"

	"github.com/llir/llvm/ir"
)

// lower parses and lowers src, returning the textual IR and any semantic
// errors.  Parse failures fail the test immediately.
func lower(t *testing.T, src string) (string, []*report.CompileError) {
	t.Helper()

	p := syntax.NewParser("test.lune", bufio.NewReader(strings.NewReader(src)))
	cu, ok := p.Parse()
	if !ok {
		t.Fatalf("parse failed: %v", p.Errors())
	}

	ctx := sem.NewContext()
	ctx.AddUnit(cu)

	mod := ir.NewModule()
	w := NewWalker(ctx, mod)
	if !w.WalkUnit(cu) || len(ctx.Errors) > 0 {
		if len(ctx.Errors) == 0 {
			t.Fatalf("walk failed without errors; diagnostics: %v", ctx.Diags)
		}
		return "", ctx.Errors
	}

	return mod.String(), nil
}

// lowerOK lowers src and fails the test on any error.
func lowerOK(t *testing.T, src string) string {
	t.Helper()

	irText, errs := lower(t, src)
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	return irText
}

// lowerErr lowers src expecting errors and returns the first error name.
func lowerErr(t *testing.T, src string) string {
	t.Helper()

	_, errs := lower(t, src)
	if len(errs) == 0 {
		t.Fatal("expected a semantic error")
	}

	return errs[0].Name
}

// mustContain asserts that every fragment occurs in the IR text.
func mustContain(t *testing.T, irText string, fragments ...string) {
	t.Helper()

	for _, fragment := range fragments {
		if !strings.Contains(irText, fragment) {
			t.Errorf("IR does not contain %q:\n%s", fragment, irText)
		}
	}
}

// -----------------------------------------------------------------------------

func TestHelloWorld(t *testing.T) {
	irText := lowerOK(t, `
		extern "C" {
			fn printf(fmt i8*, ...) i32;
		}

		fn main() i32 {
			printf("hello\n");
			return 0;
		}
	`)

	mustContain(t, irText,
		"declare external i32 @printf",
		"call i32 (i8*, ...) @printf",
		"ret i32 0",
		`c"hello\0A\00"`,
	)
}

func TestCallArgumentCoercion(t *testing.T) {
	irText := lowerOK(t, `
		fn f(n i32) i32 {
			return n + 1;
		}

		fn main() i32 {
			return f(41);
		}
	`)

	mustContain(t, irText, "call i32 @f(i32 41)", "add i32")
}

func TestArrayConstant(t *testing.T) {
	irText := lowerOK(t, `
		fn main() i32 {
			let xs [3]i32 = [1, 2, 3];
			return xs[1];
		}
	`)

	mustContain(t, irText,
		"alloca [3 x i32]",
		"[3 x i32] [i32 1, i32 2, i32 3]",
		"getelementptr [3 x i32]",
	)
}

func TestLetInference(t *testing.T) {
	irText := lowerOK(t, `
		fn main() i32 {
			let x = 1;
			let y f64 = 2;
			let b = true;
			let s = "abc";
			return 0;
		}
	`)

	mustContain(t, irText,
		"alloca i32",
		"alloca double",
		"store double 2",
		"alloca i1",
		"alloca i8*",
	)
}

func TestEqualityKindMismatch(t *testing.T) {
	name := lowerErr(t, `
		fn main() bool {
			let x i32 = 1;
			let y bool = true;
			return x == y;
		}
	`)

	if name != report.ErrTypeMismatch {
		t.Errorf("error = %s, want TypeMismatch", name)
	}
}

func TestStatementAfterBreak(t *testing.T) {
	name := lowerErr(t, `
		fn main() i32 {
			while true {
				break;
				break;
			}
			return 0;
		}
	`)

	if name != report.ErrCanNotGiveInstructionAfterBreakOrReturn {
		t.Errorf("error = %s, want CanNotGiveInstructionAfterBreakOrReturn", name)
	}
}

func TestStatementAfterReturn(t *testing.T) {
	name := lowerErr(t, `
		fn main() i32 {
			return 0;
			let x = 1;
		}
	`)

	if name != report.ErrCanNotGiveInstructionAfterBreakOrReturn {
		t.Errorf("error = %s, want CanNotGiveInstructionAfterBreakOrReturn", name)
	}
}

func TestBreakOutsideLoop(t *testing.T) {
	name := lowerErr(t, `
		fn main() i32 {
			break;
			return 0;
		}
	`)

	if name != report.ErrInvalidBreak {
		t.Errorf("error = %s, want InvalidBreak", name)
	}
}

func TestIntegerLiteralOverflow(t *testing.T) {
	name := lowerErr(t, `
		fn main() i32 {
			let x i64 = 9223372036854775808;
			return 0;
		}
	`)

	if name != report.ErrConstantTooLarge {
		t.Errorf("error = %s, want ConstantTooLarge", name)
	}
}

func TestNarrowBindingOutOfRange(t *testing.T) {
	name := lowerErr(t, `
		fn main() i32 {
			let x u8 = 256;
			return 0;
		}
	`)

	if name != report.ErrTypeMismatch {
		t.Errorf("error = %s, want TypeMismatch", name)
	}
}

func TestInferenceRangeError(t *testing.T) {
	name := lowerErr(t, `
		fn main() i32 {
			let x = 4294967296;
			return 0;
		}
	`)

	if name != report.ErrConstantTooLarge {
		t.Errorf("error = %s, want ConstantTooLarge", name)
	}
}

func TestDoubleNegationFolds(t *testing.T) {
	irText := lowerOK(t, `
		fn main() i32 {
			return -(-5);
		}
	`)

	mustContain(t, irText, "ret i32 5")
}

func TestNegationOverflow(t *testing.T) {
	name := lowerErr(t, `
		fn main() i64 {
			return -(-9223372036854775807 - 1);
		}
	`)

	if name != report.ErrConstantTooLarge {
		t.Errorf("error = %s, want ConstantTooLarge", name)
	}
}

func TestMissingReturn(t *testing.T) {
	name := lowerErr(t, `
		fn main() i32 {
			let x = 1;
		}
	`)

	if name != report.ErrMissingReturn {
		t.Errorf("error = %s, want MissingReturn", name)
	}
}

func TestBothArmsReturning(t *testing.T) {
	irText := lowerOK(t, `
		fn pick(c bool) i32 {
			if c {
				return 1;
			}
			else {
				return 2;
			}
		}
	`)

	mustContain(t, irText, "ret i32 1", "ret i32 2")
}

func TestVoidFallthroughReturn(t *testing.T) {
	irText := lowerOK(t, `
		fn noop() {
			let x = 1;
		}
	`)

	mustContain(t, irText, "ret void")
}

func TestVoidFallthroughAfterIf(t *testing.T) {
	irText := lowerOK(t, `
		fn f(c bool) {
			if c {
				let x = 1;
			}
		}
	`)

	mustContain(t, irText, "ret void")
}

func TestWhileLowering(t *testing.T) {
	irText := lowerOK(t, `
		fn count(n i32) i32 {
			let i i32 = 0;
			while i < n {
				i = i + 1;
			}
			return i;
		}
	`)

	mustContain(t, irText, "icmp slt i32", "br i1", "add i32")
}

func TestUnsignedOperatorSelection(t *testing.T) {
	irText := lowerOK(t, `
		fn f(a u32, b u32) u32 {
			return a / b;
		}

		fn g(a u32, b u32) bool {
			return a < b;
		}
	`)

	mustContain(t, irText, "udiv i32", "icmp ult i32")
}

func TestFloatOperatorSelection(t *testing.T) {
	irText := lowerOK(t, `
		fn f(a f64, b f64) f64 {
			return a / b;
		}

		fn g(a f64, b f64) bool {
			return a < b;
		}
	`)

	mustContain(t, irText, "fdiv double", "fcmp olt double")
}

func TestCastLowering(t *testing.T) {
	irText := lowerOK(t, `
		fn f(a f64) i32 {
			return i32(a);
		}

		fn g(a i32) f64 {
			return f64(a);
		}

		fn h(a u16) u64 {
			return u64(a);
		}
	`)

	mustContain(t, irText, "fptosi double", "sitofp i32", "zext i16")
}

func TestHeapAllocation(t *testing.T) {
	irText := lowerOK(t, `
		fn main() i32 {
			let x = new i32 7;
			return 0;
		}
	`)

	mustContain(t, irText,
		"@malloc",
		"bitcast i8*",
		"store i32 7",
	)

	// The header is initialized: reference count one.
	if !strings.Contains(irText, "store i64 1") && !strings.Contains(irText, "store i32 1") {
		t.Errorf("missing reference count initialisation:\n%s", irText)
	}
}

func TestStructMembers(t *testing.T) {
	irText := lowerOK(t, `
		struct Point {
			x i32
			y i32
		}

		fn main() i32 {
			let p Point;
			p.x = 3;
			p.y = 4;
			return p.x;
		}
	`)

	mustContain(t, irText, "getelementptr %Point", "store i32 3", "store i32 4")
}

func TestUndefinedMember(t *testing.T) {
	name := lowerErr(t, `
		struct Point {
			x i32
		}

		fn main() i32 {
			let p Point;
			return p.z;
		}
	`)

	if name != report.ErrUndefinedSymbol {
		t.Errorf("error = %s, want UndefinedSymbol", name)
	}
}

func TestArgumentOverwrite(t *testing.T) {
	name := lowerErr(t, `
		fn f(n i32) i32 {
			n = 1;
			return n;
		}
	`)

	if name != report.ErrCanNotOverwriteArgument {
		t.Errorf("error = %s, want CanNotOverwriteArgument", name)
	}
}

func TestUndefinedSymbols(t *testing.T) {
	if name := lowerErr(t, "fn f() i32 { return x; }"); name != report.ErrUndefinedSymbol {
		t.Errorf("variable error = %s, want UndefinedSymbol", name)
	}
	if name := lowerErr(t, "fn f() { g(); }"); name != report.ErrUndefinedSymbol {
		t.Errorf("call error = %s, want UndefinedSymbol", name)
	}
}

func TestCallArity(t *testing.T) {
	src := `
		fn f(a i32, b i32) i32 {
			return a;
		}

		fn main() i32 {
			return f(%s);
		}
	`

	if name := lowerErr(t, strings.Replace(src, "%s", "1", 1)); name != report.ErrInvalidCallArgumentLength {
		t.Errorf("too few: error = %s, want InvalidCallArgumentLength", name)
	}
	if name := lowerErr(t, strings.Replace(src, "%s", "1, 2, 3", 1)); name != report.ErrInvalidCallArgumentLength {
		t.Errorf("too many: error = %s, want InvalidCallArgumentLength", name)
	}
}

func TestOperandClassErrors(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"fn f(a bool, b bool) bool { return a + b; }", report.ErrNotArithmeticType},
		{"fn f(a bool, b bool) bool { return a < b; }", report.ErrNotComparableType},
		{"fn f(a i8*, b i8*) bool { return a == b; }", report.ErrNotBeAbleToEqualType},
		{"fn f(a i32, b i32) bool { return a && b; }", report.ErrTypeMismatch},
	}

	for _, tc := range cases {
		if name := lowerErr(t, tc.src); name != tc.want {
			t.Errorf("%q: error = %s, want %s", tc.src, name, tc.want)
		}
	}
}

func TestLogicalFoldAndLowering(t *testing.T) {
	irText := lowerOK(t, `
		fn f(a bool) bool {
			return a && true;
		}

		fn main() bool {
			return true || false;
		}
	`)

	mustContain(t, irText, "and i1", "ret i1 true")
}

func TestArraySizeMustBeConstant(t *testing.T) {
	name := lowerErr(t, `
		fn f(n i32) {
			let xs [n]i32;
		}
	`)

	if name != report.ErrArraySizeMustBeConstantInteger {
		t.Errorf("error = %s, want ArraySizeMustBeConstantInteger", name)
	}
}

func TestConstantArraySizeExpression(t *testing.T) {
	irText := lowerOK(t, `
		fn f() {
			let xs [(2 + 1)]i32;
		}
	`)

	mustContain(t, irText, "alloca [3 x i32]")
}

func TestAggregateElementTypesMustMatch(t *testing.T) {
	cases := []string{
		"fn f() { let xs [2]i32 = [1, true]; }",
		"fn f() { let xs [2]i32 = [1, 2.5]; }",
	}

	for _, src := range cases {
		if name := lowerErr(t, src); name != report.ErrEachElementMustHaveIdenticallyType {
			t.Errorf("%q: error = %s, want EachElementMustHaveIdenticallyType", src, name)
		}
	}
}

func TestAggregateOutOfRangeForTarget(t *testing.T) {
	name := lowerErr(t, `
		fn f() {
			let xs [2]u8 = [1, 256];
		}
	`)

	if name != report.ErrTypeMismatch {
		t.Errorf("error = %s, want TypeMismatch", name)
	}
}

func TestNestedAggregate(t *testing.T) {
	irText := lowerOK(t, `
		fn f() {
			let m [2][2]i32 = [[1, 2], [3, 4]];
		}
	`)

	mustContain(t, irText, "alloca [2 x [2 x i32]]", "[2 x i32] [i32 1, i32 2]")
}

func TestStringArray(t *testing.T) {
	irText := lowerOK(t, `
		fn f() {
			let xs [2]i8* = ["a", "b"];
		}
	`)

	mustContain(t, irText, "alloca [2 x i8*]")
}

func TestInvalidReferenceType(t *testing.T) {
	name := lowerErr(t, `
		fn f() {
			let x void&;
		}
	`)

	if name != report.ErrInvalidReferenceType {
		t.Errorf("error = %s, want InvalidReferenceType", name)
	}
}

func TestVoidPointerLowersToBytePointer(t *testing.T) {
	irText := lowerOK(t, `
		fn f(p void*) {
		}
	`)

	mustContain(t, irText, "i8* %p")
}

func TestCastOfPointerRejected(t *testing.T) {
	name := lowerErr(t, `
		fn f(p i8*) i32 {
			return i32(p);
		}
	`)

	if name != report.ErrTypeMismatch {
		t.Errorf("error = %s, want TypeMismatch", name)
	}
}

func TestEveryBlockTerminates(t *testing.T) {
	irText := lowerOK(t, `
		fn f(n i32) i32 {
			let total i32 = 0;
			let i i32 = 0;
			while i < n {
				if i == 3 {
					break;
				}
				total = total + i;
				i = i + 1;
			}
			if total > 10 {
				return total;
			}
			return 0;
		}
	`)

	// Every basic block of the printed IR ends in exactly one terminator: a
	// line starting a new block (or closing the function) must be preceded by
	// a branch or return.
	var prev string
	for _, line := range strings.Split(irText, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if strings.HasSuffix(trimmed, ":") || trimmed == "}" {
			if prev != "" && !strings.HasSuffix(prev, "{") && !isTerminator(prev) {
				t.Fatalf("block before %q ends with %q, not a terminator:\n%s", trimmed, prev, irText)
			}
		}
		prev = trimmed
	}
}

func isTerminator(instr string) bool {
	return strings.HasPrefix(instr, "br ") || strings.HasPrefix(instr, "ret ") || instr == "ret void"
}
