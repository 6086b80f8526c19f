package ir

import "github.com/belijzajac/wisnialang/internal/token"

// The four built-in runtime routines are expressed as IR rather than raw
// byte blobs (spec §9 "Built-ins as IR"), so they flow through the same
// register-allocator/emitter path as user code. Each is appended, in this
// fixed order if referenced, after every user function (spec §4.2 "Built-in
// modules"). They are marked "do not allocate" (internal/regalloc skips
// them) since every operand here is already a physical register.

func reg(r token.Register, pos token.Position) *token.Token {
	return token.New(token.REGISTER, r, pos)
}

func imm(n int32, pos token.Position) *token.Token {
	return token.New(token.LIT_INT, n, pos)
}

func label(name string, pos token.Position) *token.Token {
	return token.New(token.LABEL, name, pos)
}

var zeroPos = token.Position{}

// EmitBuiltinModules appends whichever of the four built-ins were marked
// used during lowering, in fixed order.
func (c *Context) EmitBuiltinModules() {
	if c.ModuleUsed(ModuleStringLength) {
		c.emitStringLength()
	}
	if c.ModuleUsed(ModulePrintNumber) {
		c.emitPrintNumber()
	}
	if c.ModuleUsed(ModulePrintBoolean) {
		c.emitPrintBoolean()
	}
	if c.ModuleUsed(ModuleExit) {
		c.emitExit()
	}
}

// emitStringLength: __builtin_calculate_string_length — takes the string
// pointer in RSI, leaves length in RDX, preserves RSI (spec §6).
func (c *Context) emitStringLength() {
	p := zeroPos
	c.Emit(New(LABEL, label(ModuleNames[ModuleStringLength], p), nil, nil))
	c.Emit(New(PUSH, nil, reg(token.RSI, p), nil))
	c.Emit(New(XOR, nil, reg(token.RDX, p), reg(token.RDX, p)))
	loop := label(".L_strlen_loop", p)
	exit := label(".L_strlen_exit", p)
	c.Emit(New(LABEL, loop, nil, nil))
	c.Emit(New(CMP_BYTE_PTR, nil, reg(token.RSI, p), imm(0, p)))
	c.Emit(New(JE, nil, exit, nil))
	c.Emit(New(INC, reg(token.RDX, p), nil, nil))
	c.Emit(New(INC, reg(token.RSI, p), nil, nil))
	c.Emit(New(JMP, nil, loop, nil))
	c.Emit(New(LABEL, exit, nil, nil))
	c.Emit(New(POP, nil, reg(token.RSI, p), nil))
	c.Emit(New(RET, nil, nil, nil))
}

// emitPrintNumber: __builtin_print_number — prints the unsigned 64-bit
// number in RDI to stdout in base 10 via a 16-byte stack buffer filled
// backwards, then write(1, buf, len) (spec §6).
func (c *Context) emitPrintNumber() {
	p := zeroPos
	c.Emit(New(LABEL, label(ModuleNames[ModulePrintNumber], p), nil, nil))
	for _, r := range []token.Register{token.RAX, token.RCX, token.R11, token.RSI, token.RDX} {
		c.Emit(New(PUSH, nil, reg(r, p), nil))
	}
	c.Emit(New(MOV, reg(token.RAX, p), reg(token.RDI, p), nil))
	c.Emit(New(MOV, reg(token.RCX, p), imm(10, p), nil))
	c.Emit(New(MOV, reg(token.RSI, p), reg(token.RSP, p), nil))
	c.Emit(New(ISUB, reg(token.RSP, p), imm(16, p), nil))

	loop := label(".L_printnum_loop", p)
	c.Emit(New(LABEL, loop, nil, nil))
	c.Emit(New(XOR, nil, reg(token.EDX, p), reg(token.EDX, p)))
	c.Emit(New(IDIV, nil, reg(token.RCX, p), nil))
	c.Emit(New(IADD, reg(token.EDX, p), imm(48, p), nil))
	c.Emit(New(DEC, reg(token.RSI, p), nil, nil))
	c.Emit(New(MOV_MEMORY, nil, reg(token.RSI, p), reg(token.DL, p)))
	c.Emit(New(TEST, nil, reg(token.RAX, p), reg(token.RAX, p)))
	c.Emit(New(JNZ, nil, loop, nil))

	c.Emit(New(MOV, reg(token.RAX, p), imm(1, p), nil))
	c.Emit(New(MOV, reg(token.RDI, p), imm(1, p), nil))
	c.Emit(New(LEA, reg(token.EDX, p), imm(16, p), nil))
	c.Emit(New(ISUB, reg(token.EDX, p), reg(token.ESI, p), nil))
	c.Emit(New(SYSCALL, nil, nil, nil))
	c.Emit(New(IADD, reg(token.RSP, p), imm(16, p), nil))

	for i := len(pnSaved) - 1; i >= 0; i-- {
		c.Emit(New(POP, nil, reg(pnSaved[i], p), nil))
	}
	c.Emit(New(RET, nil, nil, nil))
}

var pnSaved = []token.Register{token.RAX, token.RCX, token.R11, token.RSI, token.RDX}

// emitPrintBoolean: __builtin_print_boolean — "true" (len 4) if RDI != 0,
// else "false" (len 5), via write syscall (spec §6).
func (c *Context) emitPrintBoolean() {
	p := zeroPos
	c.Emit(New(LABEL, label(ModuleNames[ModulePrintBoolean], p), nil, nil))
	for _, r := range []token.Register{token.RAX, token.RCX, token.R11, token.RSI, token.RDX} {
		c.Emit(New(PUSH, nil, reg(r, p), nil))
	}
	falseLbl := label(".L_printbool_false", p)
	skipLbl := label(".L_printbool_skip", p)
	c.Emit(New(CMP, nil, reg(token.RDI, p), imm(0, p)))
	c.Emit(New(JZ, nil, falseLbl, nil))
	c.Emit(New(MOV, reg(token.RDX, p), imm(4, p), nil))
	c.Emit(New(MOV, reg(token.RSI, p), token.New(token.LIT_STR, "true", p), nil))
	c.Emit(New(JMP, nil, skipLbl, nil))
	c.Emit(New(LABEL, falseLbl, nil, nil))
	c.Emit(New(MOV, reg(token.RDX, p), imm(5, p), nil))
	c.Emit(New(MOV, reg(token.RSI, p), token.New(token.LIT_STR, "false", p), nil))
	c.Emit(New(LABEL, skipLbl, nil, nil))
	c.Emit(New(MOV, reg(token.RAX, p), imm(1, p), nil))
	c.Emit(New(MOV, reg(token.RDI, p), imm(1, p), nil))
	c.Emit(New(SYSCALL, nil, nil, nil))
	for i := len(pnSaved) - 1; i >= 0; i-- {
		c.Emit(New(POP, nil, reg(pnSaved[i], p), nil))
	}
	c.Emit(New(RET, nil, nil, nil))
}

// emitExit: __builtin_exit — syscall(60, 0) (spec §6).
func (c *Context) emitExit() {
	p := zeroPos
	c.Emit(New(LABEL, label(ModuleNames[ModuleExit], p), nil, nil))
	c.Emit(New(XOR, nil, reg(token.RDI, p), reg(token.RDI, p)))
	c.Emit(New(MOV, reg(token.RAX, p), imm(60, p), nil))
	c.Emit(New(SYSCALL, nil, nil, nil))
}
