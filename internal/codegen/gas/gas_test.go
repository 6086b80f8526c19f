package gas

import (
	"strings"
	"testing"

	"github.com/belijzajac/wisnialang/internal/ir"
	"github.com/belijzajac/wisnialang/internal/token"
)

func reg(r token.Register) *token.Token { return token.New(token.REGISTER, r, token.Position{}) }
func lit(n int32) *token.Token          { return token.New(token.LIT_INT, n, token.Position{}) }
func lbl(name string) *token.Token      { return token.New(token.LABEL, name, token.Position{}) }

func TestGenerateRendersMovWithATTOperandOrder(t *testing.T) {
	instrs := ir.List{ir.New(ir.MOV, reg(token.RAX), lit(5), nil)}
	out := Generate(instrs)
	if !strings.Contains(out, "movq $5, %rax") {
		t.Errorf("got %q, want a movq with source before destination", out)
	}
}

func TestGenerateRendersLabelWithColon(t *testing.T) {
	instrs := ir.List{ir.New(ir.LABEL, lbl("main"), nil, nil)}
	out := Generate(instrs)
	if !strings.Contains(out, "main:\n") {
		t.Errorf("got %q, want a label line", out)
	}
}

func TestGenerateRendersSingleOperandIDIV(t *testing.T) {
	instrs := ir.List{ir.New(ir.IDIV, reg(token.RAX), reg(token.RCX), nil)}
	out := Generate(instrs)
	if !strings.Contains(out, "idivq %rcx") {
		t.Errorf("got %q, want a single-operand idivq", out)
	}
	if strings.Contains(out, "%rax") {
		t.Errorf("got %q, IDIV's target should not appear (implicit RAX:RDX dividend)", out)
	}
}

func TestGenerateRendersCallAndRet(t *testing.T) {
	instrs := ir.List{
		ir.New(ir.CALL, nil, lbl("helper"), nil),
		ir.New(ir.RET, nil, nil, nil),
	}
	out := Generate(instrs)
	if !strings.Contains(out, "call helper") {
		t.Errorf("got %q, want a call instruction", out)
	}
	if !strings.Contains(out, "ret") {
		t.Errorf("got %q, want a ret instruction", out)
	}
}

func TestGenerateFallsBackToCommentForUnmappedOperation(t *testing.T) {
	instrs := ir.List{ir.New(ir.IEQ, reg(token.RAX), reg(token.RCX), nil)}
	out := Generate(instrs)
	if !strings.Contains(out, "#") {
		t.Errorf("got %q, want a comment fallback for an operation with no AT&T mnemonic", out)
	}
}
