package codegen

import (
	"github.com/belijzajac/wisnialang/internal/ir"
	"github.com/belijzajac/wisnialang/internal/token"
)

// Per-register byte tables transcribed from MachineCodeTable.hpp and the
// literal-opcode lambdas inline in CodeGenerator.cpp. Each table gives the
// fixed REX+opcode(+ModRM) prefix for one operation applied to one
// register; the varying operand (an immediate, or a second register via
// the 4x4 matrix in matrix.go) is appended by the caller.

var movImmTable = map[token.Register][]byte{
	token.RAX: {0x48, 0xc7, 0xc0}, token.RCX: {0x48, 0xc7, 0xc1},
	token.RDX: {0x48, 0xc7, 0xc2}, token.RBX: {0x48, 0xc7, 0xc3},
	token.RSP: {0x48, 0xc7, 0xc4}, token.RBP: {0x48, 0xc7, 0xc5},
	token.RSI: {0x48, 0xc7, 0xc6}, token.RDI: {0x48, 0xc7, 0xc7},
	token.R8: {0x49, 0xc7, 0xc0}, token.R9: {0x49, 0xc7, 0xc1},
	token.R10: {0x49, 0xc7, 0xc2}, token.R11: {0x49, 0xc7, 0xc3},
	token.R12: {0x49, 0xc7, 0xc4}, token.R13: {0x49, 0xc7, 0xc5},
	token.R14: {0x49, 0xc7, 0xc6}, token.R15: {0x49, 0xc7, 0xc7},
}

var leaTable = map[token.Register][]byte{
	token.EDX: {0x8d, 0x94, 0x24},
}

var cmpImmTable = map[token.Register][]byte{
	token.RAX: {0x48, 0x3d},
	token.RCX: {0x48, 0x81, 0xf9}, token.RDX: {0x48, 0x81, 0xfa},
	token.RBX: {0x48, 0x81, 0xfb}, token.RSP: {0x48, 0x81, 0xfc},
	token.RBP: {0x48, 0x81, 0xfd}, token.RSI: {0x48, 0x81, 0xfe},
	token.RDI: {0x48, 0x81, 0xff},
	token.R8:  {0x49, 0x81, 0xf8}, token.R9: {0x49, 0x81, 0xf9},
	token.R10: {0x49, 0x81, 0xfa}, token.R11: {0x49, 0x81, 0xfb},
	token.R12: {0x49, 0x81, 0xfc}, token.R13: {0x49, 0x81, 0xfd},
	token.R14: {0x49, 0x81, 0xfe}, token.R15: {0x49, 0x81, 0xff},
}

var addImmTable = map[token.Register][]byte{
	token.RAX: {0x48, 0x05},
	token.RCX: {0x48, 0x81, 0xc1}, token.RDX: {0x48, 0x81, 0xc2},
	token.RBX: {0x48, 0x81, 0xc3}, token.RSP: {0x48, 0x81, 0xc4},
	token.RBP: {0x48, 0x81, 0xc5}, token.RSI: {0x48, 0x81, 0xc6},
	token.RDI: {0x48, 0x81, 0xc7},
	token.R8:  {0x49, 0x81, 0xc0}, token.R9: {0x49, 0x81, 0xc1},
	token.R10: {0x49, 0x81, 0xc2}, token.R11: {0x49, 0x81, 0xc3},
	token.R12: {0x49, 0x81, 0xc4}, token.R13: {0x49, 0x81, 0xc5},
	token.R14: {0x49, 0x81, 0xc6}, token.R15: {0x49, 0x81, 0xc7},
	token.EDX: {0x81, 0xc2},
}

var subImmTable = map[token.Register][]byte{
	token.RAX: {0x48, 0x2d},
	token.RCX: {0x48, 0x81, 0xe9}, token.RDX: {0x48, 0x81, 0xea},
	token.RBX: {0x48, 0x81, 0xeb}, token.RSP: {0x48, 0x81, 0xec},
	token.RBP: {0x48, 0x81, 0xed}, token.RSI: {0x48, 0x81, 0xee},
	token.RDI: {0x48, 0x81, 0xef},
	token.R8:  {0x49, 0x81, 0xe8}, token.R9: {0x49, 0x81, 0xe9},
	token.R10: {0x49, 0x81, 0xea}, token.R11: {0x49, 0x81, 0xeb},
	token.R12: {0x49, 0x81, 0xec}, token.R13: {0x49, 0x81, 0xed},
	token.R14: {0x49, 0x81, 0xee}, token.R15: {0x49, 0x81, 0xef},
}

var mulImmTable = map[token.Register][]byte{
	token.RAX: {0x48, 0x69, 0xc0}, token.RCX: {0x48, 0x69, 0xc9},
	token.RDX: {0x48, 0x69, 0xd2}, token.RBX: {0x48, 0x69, 0xdb},
	token.RSP: {0x48, 0x69, 0xe4}, token.RBP: {0x48, 0x69, 0xed},
	token.RSI: {0x48, 0x69, 0xf6}, token.RDI: {0x48, 0x69, 0xff},
	token.R8:  {0x4d, 0x69, 0xc0}, token.R9: {0x4d, 0x69, 0xc9},
	token.R10: {0x4d, 0x69, 0xd2}, token.R11: {0x4d, 0x69, 0xdb},
	token.R12: {0x4d, 0x69, 0xe4}, token.R13: {0x4d, 0x69, 0xed},
	token.R14: {0x4d, 0x69, 0xf6}, token.R15: {0x4d, 0x69, 0xff},
}

var cmpPtrTable = map[token.Register][]byte{
	token.RAX: {0x80, 0x38}, token.RCX: {0x80, 0x39}, token.RDX: {0x80, 0x3a},
	token.RBX: {0x80, 0x3b}, token.RSP: {0x80, 0x3c}, token.RBP: {0x80, 0x7d},
	token.RSI: {0x80, 0x3e}, token.RDI: {0x80, 0x3f},
	token.R8:  {0x41, 0x80, 0x38}, token.R9: {0x41, 0x80, 0x39},
	token.R10: {0x41, 0x80, 0x3a}, token.R11: {0x41, 0x80, 0x3b},
	token.R12: {0x41, 0x80, 0x3c}, token.R13: {0x41, 0x80, 0x7d},
	token.R14: {0x41, 0x80, 0x3e}, token.R15: {0x41, 0x80, 0x3f},
}

var pushTable = map[token.Register][]byte{
	token.RAX: {0x50}, token.RCX: {0x51}, token.RDX: {0x52}, token.RBX: {0x53},
	token.RSP: {0x54}, token.RBP: {0x55}, token.RSI: {0x56}, token.RDI: {0x57},
	token.R8:  {0x41, 0x50}, token.R9: {0x41, 0x51}, token.R10: {0x41, 0x52}, token.R11: {0x41, 0x53},
	token.R12: {0x41, 0x54}, token.R13: {0x41, 0x55}, token.R14: {0x41, 0x56}, token.R15: {0x41, 0x57},
}

var popTable = map[token.Register][]byte{
	token.RAX: {0x58}, token.RCX: {0x59}, token.RDX: {0x5a}, token.RBX: {0x5b},
	token.RSP: {0x5c}, token.RBP: {0x5d}, token.RSI: {0x5e}, token.RDI: {0x5f},
	token.R8:  {0x41, 0x58}, token.R9: {0x41, 0x59}, token.R10: {0x41, 0x5a}, token.R11: {0x41, 0x5b},
	token.R12: {0x41, 0x5c}, token.R13: {0x41, 0x5d}, token.R14: {0x41, 0x5e}, token.R15: {0x41, 0x5f},
}

var incTable = map[token.Register][]byte{
	token.RAX: {0x48, 0xff, 0xc0}, token.RCX: {0x48, 0xff, 0xc1},
	token.RDX: {0x48, 0xff, 0xc2}, token.RBX: {0x48, 0xff, 0xc3},
	token.RSP: {0x48, 0xff, 0xc4}, token.RBP: {0x48, 0xff, 0xc5},
	token.RSI: {0x48, 0xff, 0xc6}, token.RDI: {0x48, 0xff, 0xc7},
	token.R8:  {0x49, 0xff, 0xc0}, token.R9: {0x49, 0xff, 0xc1},
	token.R10: {0x49, 0xff, 0xc2}, token.R11: {0x49, 0xff, 0xc3},
	token.R12: {0x49, 0xff, 0xc4}, token.R13: {0x49, 0xff, 0xc5},
	token.R14: {0x49, 0xff, 0xc6}, token.R15: {0x49, 0xff, 0xc7},
}

var decTable = map[token.Register][]byte{
	token.RAX: {0x48, 0xff, 0xc8}, token.RCX: {0x48, 0xff, 0xc9},
	token.RDX: {0x48, 0xff, 0xca}, token.RBX: {0x48, 0xff, 0xcb},
	token.RSP: {0x48, 0xff, 0xcc}, token.RBP: {0x48, 0xff, 0xcd},
	token.RSI: {0x48, 0xff, 0xce}, token.RDI: {0x48, 0xff, 0xcf},
	token.R8:  {0x49, 0xff, 0xc8}, token.R9: {0x49, 0xff, 0xc9},
	token.R10: {0x49, 0xff, 0xca}, token.R11: {0x49, 0xff, 0xcb},
	token.R12: {0x49, 0xff, 0xcc}, token.R13: {0x49, 0xff, 0xcd},
	token.R14: {0x49, 0xff, 0xce}, token.R15: {0x49, 0xff, 0xcf},
}

var divTable = map[token.Register][]byte{
	token.RAX: {0x48, 0xf7, 0xf0}, token.RCX: {0x48, 0xf7, 0xf1},
	token.RDX: {0x48, 0xf7, 0xf2}, token.RBX: {0x48, 0xf7, 0xf3},
	token.RSP: {0x48, 0xf7, 0xf4}, token.RBP: {0x48, 0xf7, 0xf5},
	token.RSI: {0x48, 0xf7, 0xf6}, token.RDI: {0x48, 0xf7, 0xf7},
	token.R8:  {0x49, 0xf7, 0xf0}, token.R9: {0x49, 0xf7, 0xf1},
	token.R10: {0x49, 0xf7, 0xf2}, token.R11: {0x49, 0xf7, 0xf3},
	token.R12: {0x49, 0xf7, 0xf4}, token.R13: {0x49, 0xf7, 0xf5},
	token.R14: {0x49, 0xf7, 0xf6}, token.R15: {0x49, 0xf7, 0xf7},
}

var xorSameTable = map[token.Register][]byte{
	token.RAX: {0x48, 0x31, 0xc0}, token.RCX: {0x48, 0x31, 0xc9},
	token.RDX: {0x48, 0x31, 0xd2}, token.RBX: {0x48, 0x31, 0xdb},
	token.RSP: {0x48, 0x31, 0xe4}, token.RBP: {0x48, 0x31, 0xed},
	token.RSI: {0x48, 0x31, 0xf6}, token.RDI: {0x48, 0x31, 0xff},
	token.R8:  {0x4d, 0x31, 0xc0}, token.R9: {0x4d, 0x31, 0xc9},
	token.R10: {0x4d, 0x31, 0xd2}, token.R11: {0x4d, 0x31, 0xdb},
	token.R12: {0x4d, 0x31, 0xe4}, token.R13: {0x4d, 0x31, 0xed},
	token.R14: {0x4d, 0x31, 0xf6}, token.R15: {0x4d, 0x31, 0xff},
	token.EDX: {0x31, 0xd2},
}

var testSameTable = map[token.Register][]byte{
	token.RAX: {0x48, 0x85, 0xc0}, token.RCX: {0x48, 0x85, 0xc9},
	token.RDX: {0x48, 0x85, 0xd2}, token.RBX: {0x48, 0x85, 0xdb},
	token.RSP: {0x48, 0x85, 0xe4}, token.RBP: {0x48, 0x85, 0xed},
	token.RSI: {0x48, 0x85, 0xf6}, token.RDI: {0x48, 0x85, 0xff},
	token.R8:  {0x4d, 0x85, 0xc0}, token.R9: {0x4d, 0x85, 0xc9},
	token.R10: {0x4d, 0x85, 0xd2}, token.R11: {0x4d, 0x85, 0xdb},
	token.R12: {0x4d, 0x85, 0xe4}, token.R13: {0x4d, 0x85, 0xed},
	token.R14: {0x4d, 0x85, 0xf6}, token.R15: {0x4d, 0x85, 0xff},
}

// jumpOpcodes maps each jump operation to its one-byte short-jump opcode
// (spec §4.6: all control-flow jumps in this emitter are short, 1-byte
// relative displacement).
var jumpOpcodes = map[ir.Operation]byte{
	ir.JMP: 0xeb,
	ir.JE:  0x74, ir.JZ: 0x74,
	ir.JLE: 0x7e, ir.JG: 0x7f,
	ir.JNE: 0x75, ir.JNZ: 0x75,
	ir.JL: 0x7c, ir.JGE: 0x7d,
}
