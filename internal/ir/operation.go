// Package ir holds the three-address instruction model (spec §3) and the
// AST-to-IR lowering visitor (spec §4.2), including the four built-in
// runtime modules (spec §4.2 "Built-in modules", §6). The instruction
// shape and constructor-per-operation idiom follow the teacher's
// internal/core.Op / Shift/Add/Zero/... functions, generalised from a
// single Arg field to the three-operand Target/Arg1/Arg2 spec.md needs.
package ir

// Operation enumerates every instruction opcode spec §3 names.
type Operation int

const (
	NOP Operation = iota

	IADD
	FADD
	ISUB
	FSUB
	IMUL
	FMUL
	IDIV
	FDIV
	INC
	DEC

	IEQ
	FEQ
	ILT
	FLT
	ILE
	FLE
	IGT
	FGT
	IGE
	FGE
	INE
	FNE

	CMP
	CMP_BYTE_PTR

	NOT
	AND
	OR
	XOR
	TEST

	JMP
	JE
	JZ
	JNE
	JNZ
	JL
	JLE
	JG
	JGE

	LEA
	MOV
	MOV_MEMORY
	PUSH
	POP

	CALL
	SYSCALL
	LABEL
	RET
)

var opNames = map[Operation]string{
	NOP: "NOP", IADD: "IADD", FADD: "FADD", ISUB: "ISUB", FSUB: "FSUB",
	IMUL: "IMUL", FMUL: "FMUL", IDIV: "IDIV", FDIV: "FDIV", INC: "INC", DEC: "DEC",
	IEQ: "IEQ", FEQ: "FEQ", ILT: "ILT", FLT: "FLT", ILE: "ILE", FLE: "FLE",
	IGT: "IGT", FGT: "FGT", IGE: "IGE", FGE: "FGE", INE: "INE", FNE: "FNE",
	CMP: "CMP", CMP_BYTE_PTR: "CMP_BYTE_PTR",
	NOT: "NOT", AND: "AND", OR: "OR", XOR: "XOR", TEST: "TEST",
	JMP: "JMP", JE: "JE", JZ: "JZ", JNE: "JNE", JNZ: "JNZ", JL: "JL", JLE: "JLE", JG: "JG", JGE: "JGE",
	LEA: "LEA", MOV: "MOV", MOV_MEMORY: "MOV_MEMORY", PUSH: "PUSH", POP: "POP",
	CALL: "CALL", SYSCALL: "SYSCALL", LABEL: "LABEL", RET: "RET",
}

func (o Operation) String() string {
	if s, ok := opNames[o]; ok {
		return s
	}
	return "OP?"
}
