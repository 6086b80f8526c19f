// Package gas renders a lowered, allocated instruction list as GAS (AT&T
// syntax) assembly text — a human-readable stand-in for the raw machine
// code internal/codegen emits, useful for inspecting what register
// allocation and peephole optimisation produced before committing to bytes.
// It does not feed the ELF writer; internal/codegen.Generate is the only
// path that produces the actual executable.
package gas

import (
	"fmt"
	"strings"

	"github.com/belijzajac/wisnialang/internal/ir"
	"github.com/belijzajac/wisnialang/internal/token"
)

// mnemonics maps an IR operation to its AT&T mnemonic where one exists.
// Operations with no direct instruction (e.g. comparison-as-value ops,
// which never reach codegen) are rendered with their IR name as a comment.
var mnemonics = map[ir.Operation]string{
	ir.IADD: "addq", ir.ISUB: "subq", ir.IMUL: "imulq", ir.IDIV: "idivq",
	ir.INC: "incq", ir.DEC: "decq",
	ir.CMP: "cmpq", ir.CMP_BYTE_PTR: "cmpb",
	ir.XOR: "xorq", ir.TEST: "testq",
	ir.JMP: "jmp", ir.JE: "je", ir.JZ: "jz", ir.JNE: "jne", ir.JNZ: "jnz",
	ir.JL: "jl", ir.JLE: "jle", ir.JG: "jg", ir.JGE: "jge",
	ir.LEA: "leaq", ir.MOV: "movq", ir.MOV_MEMORY: "movb",
	ir.PUSH: "pushq", ir.POP: "popq",
	ir.CALL: "call", ir.SYSCALL: "syscall", ir.RET: "ret",
}

// Generate renders instrs as a ".text"-section assembly listing, one
// instruction per line, AT&T operand order (source before destination).
func Generate(instrs ir.List) string {
	var out strings.Builder
	out.WriteString(".section .text\n")
	for _, instr := range instrs {
		writeInstruction(&out, instr)
	}
	return out.String()
}

func writeInstruction(out *strings.Builder, instr *ir.Instruction) {
	switch instr.Op {
	case ir.LABEL:
		fmt.Fprintf(out, "%s:\n", operand(instr.Target))
		return
	case ir.NOP:
		out.WriteString("    nop\n")
		return
	case ir.SYSCALL, ir.RET:
		fmt.Fprintf(out, "    %s\n", mnemonics[instr.Op])
		return
	}

	mnem, ok := mnemonics[instr.Op]
	if !ok {
		fmt.Fprintf(out, "    # %s\n", instr.String())
		return
	}

	switch {
	case instr.Op == ir.JMP || instr.Op == ir.JE || instr.Op == ir.JZ || instr.Op == ir.JNE ||
		instr.Op == ir.JNZ || instr.Op == ir.JL || instr.Op == ir.JLE || instr.Op == ir.JG || instr.Op == ir.JGE:
		fmt.Fprintf(out, "    %s %s\n", mnem, operand(instr.Arg1))
	case instr.Op == ir.CALL:
		fmt.Fprintf(out, "    call %s\n", operand(instr.Arg1))
	case instr.Op == ir.PUSH:
		fmt.Fprintf(out, "    pushq %s\n", operand(instr.Arg1))
	case instr.Op == ir.POP && instr.Target != nil:
		fmt.Fprintf(out, "    popq %s\n", operand(instr.Target))
	case instr.Op == ir.POP:
		fmt.Fprintf(out, "    popq %s\n", operand(instr.Arg1))
	case instr.Op == ir.INC || instr.Op == ir.DEC:
		fmt.Fprintf(out, "    %s %s\n", mnem, operand(instr.Target))
	case instr.Op == ir.IDIV:
		fmt.Fprintf(out, "    %s %s\n", mnem, operand(instr.Arg1))
	case instr.Op == ir.CMP || instr.Op == ir.CMP_BYTE_PTR || instr.Op == ir.TEST || instr.Op == ir.XOR:
		fmt.Fprintf(out, "    %s %s, %s\n", mnem, operand(instr.Arg2), operand(instr.Arg1))
	case instr.Op == ir.MOV_MEMORY:
		fmt.Fprintf(out, "    %s %s, (%s)\n", mnem, operand(instr.Arg2), operand(instr.Arg1))
	case instr.Target != nil && instr.Arg1 != nil && instr.Arg2 != nil:
		fmt.Fprintf(out, "    %s %s, %s\n", mnem, operand(instr.Arg2), operand(instr.Target))
	case instr.Target != nil && instr.Arg1 != nil:
		fmt.Fprintf(out, "    %s %s, %s\n", mnem, operand(instr.Arg1), operand(instr.Target))
	default:
		fmt.Fprintf(out, "    # %s\n", instr.String())
	}
}

// operand renders a single token as an AT&T-syntax operand: %reg for a
// physical register, $imm for a literal, a bare name for a label, and a
// leading-percent pseudo-register for anything regalloc left unplaced
// (an unresolved ident or a spill) so the listing stays legible even for
// IR that never reached the emitter.
func operand(t *token.Token) string {
	if t == nil {
		return "?"
	}
	switch t.Type {
	case token.REGISTER:
		return "%" + t.Register().String()
	case token.LIT_INT:
		return fmt.Sprintf("$%d", t.Value)
	case token.LABEL:
		return t.Name()
	default:
		return "%" + t.Name()
	}
}
