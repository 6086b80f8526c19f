package ir

import (
	"testing"

	"github.com/belijzajac/wisnialang/internal/lexer"
	"github.com/belijzajac/wisnialang/internal/parser"
	"github.com/belijzajac/wisnialang/internal/sema"
	"github.com/belijzajac/wisnialang/internal/token"
)

func lowerSource(t *testing.T, src string) *Context {
	t.Helper()
	toks, err := lexer.Tokenize("test.wsn", []byte(src))
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	root, err := parser.Parse(toks)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	funcs, err := sema.Resolve(root)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	ctx, err := Lower(root, funcs)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	return ctx
}

func TestLowerDivisionEmitsSingleOperandIDIV(t *testing.T) {
	ctx := lowerSource(t, "fn main() { int x = 6 / 2; }")
	var found *Instruction
	for _, instr := range ctx.Instructions {
		if instr.Op == IDIV {
			found = instr
			break
		}
	}
	if found == nil {
		t.Fatal("no IDIV instruction emitted")
	}
	if found.Arg2 != nil {
		t.Errorf("IDIV should be a single-operand instruction, got Arg2 = %v", found.Arg2)
	}
	if found.Target == nil || found.Arg1 == nil {
		t.Fatalf("IDIV = %+v, want non-nil Target and Arg1", found)
	}
	if found.Target.Name() == found.Arg1.Name() {
		t.Errorf("IDIV target and divisor should be distinct temps, both are %q", found.Target.Name())
	}
}

func TestLowerArithmeticReusesTargetAsThirdOperand(t *testing.T) {
	ctx := lowerSource(t, "fn main() { int x = 1 + 2; }")
	var found *Instruction
	for _, instr := range ctx.Instructions {
		if instr.Op == IADD {
			found = instr
			break
		}
	}
	if found == nil {
		t.Fatal("no IADD instruction emitted")
	}
	if found.Target == nil || found.Arg1 == nil || found.Arg2 == nil {
		t.Fatalf("IADD = %+v, want three operands", found)
	}
	if found.Target.Name() != found.Arg1.Name() {
		t.Errorf("IADD target %q should double as arg1, got arg1 %q", found.Target.Name(), found.Arg1.Name())
	}
}

func TestLowerMainCallsBuiltinExit(t *testing.T) {
	ctx := lowerSource(t, "fn main() {}")
	last := ctx.Instructions[ctx.UserEnd-1]
	if last.Op != CALL {
		t.Fatalf("last instruction = %v, want CALL", last.Op)
	}
	if last.Arg1.Name() != ModuleNames[ModuleExit] {
		t.Errorf("last CALL target = %q, want %q", last.Arg1.Name(), ModuleNames[ModuleExit])
	}
	if !ctx.ModuleUsed(ModuleExit) {
		t.Error("ModuleExit should be marked used")
	}
}

func TestLowerPrintIntCallsBuiltinPrintNumber(t *testing.T) {
	ctx := lowerSource(t, "fn main() { print(1); }")
	if !ctx.ModuleUsed(ModulePrintNumber) {
		t.Error("ModulePrintNumber should be marked used")
	}
	if ctx.ModuleUsed(ModulePrintBoolean) || ctx.ModuleUsed(ModuleStringLength) {
		t.Error("unrelated built-ins should not be marked used")
	}
}

func TestLowerPrintStringLiteralSkipsStringLengthBuiltin(t *testing.T) {
	ctx := lowerSource(t, `fn main() { print("hi"); }`)
	if ctx.ModuleUsed(ModuleStringLength) {
		t.Error("a compile-time-known string literal should not call __builtin_calculate_string_length")
	}
	var sawLen, sawPtr bool
	for _, instr := range ctx.Instructions {
		if instr.Op != MOV || instr.Target == nil {
			continue
		}
		if instr.Target.Type == token.REGISTER && instr.Target.Register() == token.RDX {
			sawLen = true
		}
		if instr.Target.Type == token.REGISTER && instr.Target.Register() == token.RSI {
			sawPtr = true
		}
	}
	if !sawLen || !sawPtr {
		t.Error("expected direct RDX/RSI loads for a literal string print")
	}
}

func TestLowerPrintStringVariableCallsStringLengthBuiltin(t *testing.T) {
	ctx := lowerSource(t, `fn main() { string s = "hi"; print(s); }`)
	if !ctx.ModuleUsed(ModuleStringLength) {
		t.Error("printing a string variable should call __builtin_calculate_string_length")
	}
}

func TestLowerFunctionStartsAreMarkedInReverseSourceOrder(t *testing.T) {
	ctx := lowerSource(t, "fn helper() -> int { return 1; } fn main() { helper(); }")
	// main is lowered first (reverse source order) so it lands at instruction 0.
	if len(ctx.FuncStarts) != 2 {
		t.Fatalf("got %d func starts, want 2", len(ctx.FuncStarts))
	}
	if ctx.FuncStarts[0] != 0 {
		t.Errorf("FuncStarts[0] = %d, want 0 (main emitted first)", ctx.FuncStarts[0])
	}
	first := ctx.Instructions[0]
	if first.Op == LABEL {
		t.Error("main's first instruction should not be a LABEL (only non-main functions get one)")
	}
}

func TestLowerUserEndPrecedesBuiltinModules(t *testing.T) {
	ctx := lowerSource(t, "fn main() { print(1); }")
	if ctx.UserEnd <= 0 || ctx.UserEnd >= len(ctx.Instructions) {
		t.Fatalf("UserEnd = %d, want strictly between 0 and %d", ctx.UserEnd, len(ctx.Instructions))
	}
	builtinLabel := ctx.Instructions[ctx.UserEnd]
	if builtinLabel.Op != LABEL {
		t.Fatalf("first instruction past UserEnd = %v, want LABEL", builtinLabel.Op)
	}
	if builtinLabel.Target.Name() != ModuleNames[ModulePrintNumber] {
		t.Errorf("first built-in label = %q, want %q", builtinLabel.Target.Name(), ModuleNames[ModulePrintNumber])
	}
}

func TestLowerBreakOutsideLoopFails(t *testing.T) {
	toks, err := lexer.Tokenize("test.wsn", []byte("fn main() { break; }"))
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	root, err := parser.Parse(toks)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	funcs, err := sema.Resolve(root)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if _, err := Lower(root, funcs); err == nil {
		t.Fatal("expected an error lowering break outside of a loop")
	}
}

func TestLowerWhileLoopBreakJumpsToEndLabel(t *testing.T) {
	ctx := lowerSource(t, "fn main() { while (1 == 1) { break; } }")
	var endLbl *token.Token
	for _, instr := range ctx.Instructions[:ctx.UserEnd] {
		if instr.Op == LABEL && instr.Target.Name() != "" {
			// last LABEL emitted for the while construct is its end label
			endLbl = instr.Target
		}
	}
	var brokeTo string
	for _, instr := range ctx.Instructions {
		if instr.Op == JMP && instr.Arg1 != nil {
			brokeTo = instr.Arg1.Name()
		}
	}
	if brokeTo == "" {
		t.Fatal("no JMP emitted for break")
	}
	if endLbl == nil || brokeTo != endLbl.Name() {
		// at least confirm the jump target matches some LABEL definition in the list
		found := false
		for _, instr := range ctx.Instructions {
			if instr.Op == LABEL && instr.Target.Name() == brokeTo {
				found = true
			}
		}
		if !found {
			t.Errorf("break JMP target %q has no matching LABEL definition", brokeTo)
		}
	}
}

// A call to a non-void function leaves pushes one ahead of pops: the
// returning callee PUSHes its value instead of writing R15 directly, and
// that extra push is consumed by the caller's existing restore-loop POP
// R15 rather than by a POP instruction of its own. See
// TestLowerReturnValueIsPushedAndCapturedAfterRegisterRestore.
func TestLowerFunctionCallSavesAndRestoresAllocatableRegisters(t *testing.T) {
	ctx := lowerSource(t, "fn helper(int a) -> int { return a; } fn main() { helper(1); }")
	pushes, pops := 0, 0
	for _, instr := range ctx.Instructions {
		switch instr.Op {
		case PUSH:
			pushes++
		case POP:
			pops++
		}
	}
	if pushes == 0 || pushes != pops+1 {
		t.Errorf("pushes = %d, pops = %d, want pushes == pops+1 (one unmatched push for the return value)", pushes, pops)
	}
}

func TestLowerVoidFunctionCallSavesAndRestoresAllocatableRegisters(t *testing.T) {
	ctx := lowerSource(t, "fn helper() { print(1); } fn main() { helper(); }")
	pushes, pops := 0, 0
	for _, instr := range ctx.Instructions {
		switch instr.Op {
		case PUSH:
			pushes++
		case POP:
			pops++
		}
	}
	if pushes == 0 || pushes != pops {
		t.Errorf("pushes = %d, pops = %d, want equal nonzero counts for a void call", pushes, pops)
	}
}

// Confirms the exact call-convention ordering spec.md's Call convention
// section describes: a returning function PUSHes its value (never a direct
// MOV into R15), and the caller captures R15 into a temp only after all 15
// registers have been popped back, not before. The restore loop's first
// POP (R15, last in token.AllocatableOrder) is what actually lands the
// pushed return value in R15.
func TestLowerReturnValueIsPushedAndCapturedAfterRegisterRestore(t *testing.T) {
	ctx := lowerSource(t, "fn helper(int a) -> int { return a; } fn main() { int x = helper(1); print(x); }")

	var sawDirectR15Mov bool
	for _, instr := range ctx.Instructions {
		if instr.Op == MOV && instr.Target != nil &&
			instr.Target.Type == token.REGISTER && instr.Target.Register() == token.R15 {
			sawDirectR15Mov = true
		}
	}
	if sawDirectR15Mov {
		t.Error("a returning function should PUSH its value, not MOV directly into R15")
	}

	callIdx := -1
	for i, instr := range ctx.Instructions {
		if instr.Op == CALL && instr.Arg1 != nil && instr.Arg1.Name() == "helper" {
			callIdx = i
			break
		}
	}
	if callIdx == -1 {
		t.Fatal("no CALL to helper found")
	}

	// The restore loop is the contiguous run of POPs immediately following
	// the CALL; only it (not some later, unrelated POP) bounds the capture.
	lastPopIdx := callIdx
	for i := callIdx + 1; i < len(ctx.Instructions) && ctx.Instructions[i].Op == POP; i++ {
		lastPopIdx = i
	}
	if lastPopIdx == callIdx {
		t.Fatal("no POP found restoring registers immediately after the call")
	}

	captureIdx := -1
	for i := lastPopIdx + 1; i < len(ctx.Instructions); i++ {
		instr := ctx.Instructions[i]
		if instr.Op == MOV && instr.Arg1 != nil && instr.Arg1.Type == token.REGISTER && instr.Arg1.Register() == token.R15 {
			captureIdx = i
			break
		}
	}
	if captureIdx == -1 {
		t.Error("no MOV capturing R15 found after the restore loop completes")
	}
}

func TestLowerEveryLabelDefinitionIsUnique(t *testing.T) {
	ctx := lowerSource(t, `fn main() {
		int i = 0;
		while (i == 0) {
			if (i == 0) {
				i = 1;
			}
		}
		while (i == 1) {
			i = 2;
		}
	}`)
	seen := make(map[string]bool)
	for _, instr := range ctx.Instructions {
		if instr.Op != LABEL {
			continue
		}
		name := instr.Target.Name()
		if seen[name] {
			t.Errorf("duplicate label definition %q", name)
		}
		seen[name] = true
	}
}
