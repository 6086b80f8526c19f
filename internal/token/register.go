package token

// Register enumerates the x86-64 general-purpose registers, the emitter's
// register-pair aliases, and the SPILLED sentinel the allocator writes when
// it runs out of physical registers.
type Register int

const (
	NOREG Register = iota
	RAX
	RCX
	RDX
	RBX
	RSP
	RBP
	RSI
	RDI
	R8
	R9
	R10
	R11
	R12
	R13
	R14
	R15

	// Sub-register aliases the emitter needs for specific byte sequences
	// (§4.6: the print-number/print-boolean built-ins and CMP_BYTE_PTR).
	EDX
	ESI
	DL

	// SPILLED marks an interval the allocator could not place in a physical
	// register. See internal/regalloc; spilling is not materialised further
	// (spec §9 "Spilling").
	SPILLED
)

var registerNames = [...]string{
	NOREG: "NOREG", RAX: "rax", RCX: "rcx", RDX: "rdx", RBX: "rbx", RSP: "rsp",
	RBP: "rbp", RSI: "rsi", RDI: "rdi", R8: "r8", R9: "r9", R10: "r10",
	R11: "r11", R12: "r12", R13: "r13", R14: "r14", R15: "r15",
	EDX: "edx", ESI: "esi", DL: "dl", SPILLED: "SPILLED",
}

func (r Register) String() string {
	if int(r) >= 0 && int(r) < len(registerNames) && registerNames[r] != "" {
		return registerNames[r]
	}
	return "REG?"
}

// AllocatableOrder is the fixed 15-register allocation pool and scan order
// used by internal/regalloc (spec §4.3 step 3) and by the function-call
// convention's push/pop sequence (spec §4.2 "Call convention"). RSP is
// deliberately excluded.
var AllocatableOrder = [15]Register{
	RAX, RCX, RDX, RBX, RBP, RSI, RDI, R8, R9, R10, R11, R12, R13, R14, R15,
}

// CanonicalOrder is the full 16-register universe in the order the 4x4
// emitter matrix (spec §4.7) indexes by: RSP sits between RBX and RBP here,
// unlike AllocatableOrder which excludes it entirely.
var CanonicalOrder = [16]Register{
	RAX, RCX, RDX, RBX, RSP, RBP, RSI, RDI, R8, R9, R10, R11, R12, R13, R14, R15,
}

// Index returns r's position in CanonicalOrder, used to pick the REX
// quadrant (low half index < 8) and the 3-bit register field (index % 8).
func (r Register) Index() int {
	for i, c := range CanonicalOrder {
		if c == r {
			return i
		}
	}
	return -1
}

// Low reports whether r's canonical index is below 8, i.e. encodable
// without the extended-register REX bit.
func (r Register) Low() bool {
	return r.Index() < 8
}
