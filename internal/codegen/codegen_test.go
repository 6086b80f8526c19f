package codegen

import (
	"bytes"
	"testing"

	"github.com/belijzajac/wisnialang/internal/elfimage"
	"github.com/belijzajac/wisnialang/internal/ir"
	"github.com/belijzajac/wisnialang/internal/token"
)

func regTok(r token.Register) *token.Token {
	return token.New(token.REGISTER, r, token.Position{})
}

func litInt(v int32) *token.Token {
	return token.New(token.LIT_INT, v, token.Position{})
}

func generate(t *testing.T, instrs ir.List) (text, data []byte) {
	t.Helper()
	text, data, err := Generate(instrs)
	if err != nil {
		t.Fatalf("Generate: unexpected error: %v", err)
	}
	return text, data
}

func TestGenerateMovImmediate(t *testing.T) {
	instrs := ir.List{ir.New(ir.MOV, regTok(token.RAX), litInt(42), nil)}
	text, _ := generate(t, instrs)
	want := append(append([]byte{}, movImmTable[token.RAX]...), 42, 0, 0, 0)
	if !bytes.Equal(text, want) {
		t.Errorf("got % x, want % x", text, want)
	}
}

func TestGenerateMovRegisterPair(t *testing.T) {
	instrs := ir.List{ir.New(ir.MOV, regTok(token.RAX), regTok(token.RCX), nil)}
	text, _ := generate(t, instrs)
	// RAX (index 0, low) <- RCX (index 1, low): both low -> movRex.topLeft = 0x48
	want := []byte{0x48, 0x89, regPairModRM(0, 1, false)}
	if !bytes.Equal(text, want) {
		t.Errorf("got % x, want % x", text, want)
	}
}

func TestGenerateMovStringLiteralGoesToDataSection(t *testing.T) {
	strTok := token.New(token.LIT_STR, "hi", token.Position{})
	instrs := ir.List{ir.New(ir.MOV, regTok(token.RAX), strTok, nil)}
	text, data := generate(t, instrs)
	if string(data) != "hi" {
		t.Fatalf("data = %q, want %q", data, "hi")
	}
	wantPrefix := movImmTable[token.RAX]
	if !bytes.HasPrefix(text, wantPrefix) {
		t.Fatalf("text = % x, want prefix % x", text, wantPrefix)
	}
	gotAddr := le32(text[len(wantPrefix):])
	wantAddr := uint32(elfimage.VirtText) + 0 + uint32(len(text)) + uint32(elfimage.TextOffset)
	if gotAddr != wantAddr {
		t.Errorf("patched string address = %#x, want %#x", gotAddr, wantAddr)
	}
}

func TestGenerateIAddImmediateAndRegister(t *testing.T) {
	target := regTok(token.RBX)
	instrs := ir.List{ir.New(ir.IADD, target, target, litInt(7))}
	text, _ := generate(t, instrs)
	want := append(append([]byte{}, addImmTable[token.RBX]...), 7, 0, 0, 0)
	if !bytes.Equal(text, want) {
		t.Errorf("got % x, want % x", text, want)
	}
}

func TestGenerateISubEdxEsiSpecialCase(t *testing.T) {
	instrs := ir.List{ir.New(ir.ISUB, regTok(token.EDX), regTok(token.EDX), regTok(token.ESI))}
	text, _ := generate(t, instrs)
	want := []byte{0x29, 0xf2}
	if !bytes.Equal(text, want) {
		t.Errorf("got % x, want % x", text, want)
	}
}

func TestGenerateIMulUsesSwappedModRM(t *testing.T) {
	target := regTok(token.RCX)
	src := regTok(token.RBX)
	instrs := ir.List{ir.New(ir.IMUL, target, target, src)}
	text, _ := generate(t, instrs)
	fi, si := token.RCX.Index(), token.RBX.Index()
	want := []byte{mulRex.pick(fi < 8, si < 8), 0x0f, 0xaf, regPairModRM(fi, si, true)}
	if !bytes.Equal(text, want) {
		t.Errorf("got % x, want % x", text, want)
	}
}

func TestGenerateIDivIsSingleOperand(t *testing.T) {
	// division's lowering shape: Target=temp, Arg1=divisor, Arg2=nil — the
	// generator must read only the divisor, never the target
	instrs := ir.List{ir.New(ir.IDIV, regTok(token.RAX), regTok(token.RCX), nil)}
	text, _ := generate(t, instrs)
	want := divTable[token.RCX]
	if !bytes.Equal(text, want) {
		t.Errorf("got % x, want % x", text, want)
	}
}

func TestGeneratePushPopExtendedRegisterPrefix(t *testing.T) {
	instrs := ir.List{
		ir.New(ir.PUSH, nil, regTok(token.R8), nil),
		ir.New(ir.POP, nil, regTok(token.R8), nil),
	}
	text, _ := generate(t, instrs)
	want := append(append([]byte{}, pushTable[token.R8]...), popTable[token.R8]...)
	if !bytes.Equal(text, want) {
		t.Errorf("got % x, want % x", text, want)
	}
}

func TestGenerateUnhandledOperationErrors(t *testing.T) {
	_, _, err := Generate(ir.List{ir.New(ir.Operation(9999), nil, nil, nil)})
	if err == nil {
		t.Fatal("expected an error for an unhandled operation")
	}
}

func TestGenerateJumpForwardPatch(t *testing.T) {
	label := token.New(token.LABEL, "L0", token.Position{})
	instrs := ir.List{
		ir.New(ir.JMP, nil, label, nil),
		ir.New(ir.INC, regTok(token.RAX), nil, nil),
		ir.New(ir.LABEL, nil, label, nil),
	}
	text, _ := generate(t, instrs)
	// jmp is 2 bytes (0xeb + disp8) at offset 0; the fixup records the disp8
	// placeholder at offset 1, and the label ends up at offset 2+3=5
	jumpOffset := 1
	labelOffset := 5
	wantDisp := byte(0xff - (jumpOffset - labelOffset))
	if text[0] != 0xeb {
		t.Fatalf("got opcode %#x, want 0xeb", text[0])
	}
	if text[1] != wantDisp {
		t.Errorf("got displacement %#x, want %#x", text[1], wantDisp)
	}
}

func TestGenerateCallPatch(t *testing.T) {
	label := token.New(token.LABEL, "fn", token.Position{})
	instrs := ir.List{
		ir.New(ir.LABEL, nil, label, nil),
		ir.New(ir.RET, nil, nil, nil),
		ir.New(ir.CALL, nil, label, nil),
	}
	text, _ := generate(t, instrs)
	// label at offset 0; ret at offset 0 (1 byte); call opcode at offset 1,
	// its 4-byte operand starts at offset 2
	callOperandOffset := 2
	labelOffset := 0
	diff := uint32(callOperandOffset - labelOffset + 4)
	want := uint32(0xffffffff) - (diff - 1)
	got := le32(text[callOperandOffset:])
	if got != want {
		t.Errorf("got call operand %#x, want %#x", got, want)
	}
}

func TestGenerateCallToMissingLabelErrors(t *testing.T) {
	missing := token.New(token.LABEL, "nowhere", token.Position{})
	_, _, err := Generate(ir.List{ir.New(ir.CALL, nil, missing, nil)})
	if err == nil {
		t.Fatal("expected an error calling an undefined label")
	}
}

func le32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
