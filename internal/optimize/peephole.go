// Package optimize implements the single peephole pass spec §4.4
// describes, grounded on the original's IROptimization::removeRedundantInstructions
// (src/backend/optimize/IROptimization.cpp).
package optimize

import "github.com/belijzajac/wisnialang/internal/ir"

// RemoveRedundantMoves drops every `MOV target, arg1` whose target and
// arg1 already name the same physical register — a no-op left behind once
// register allocation happens to assign a variable the register it was
// already read from. The pass is a single filtering sweep and is
// idempotent: running it twice removes nothing more the second time.
func RemoveRedundantMoves(instrs ir.List) ir.List {
	out := instrs[:0:0]
	for _, instr := range instrs {
		if isRedundantMove(instr) {
			continue
		}
		out = append(out, instr)
	}
	return out
}

func isRedundantMove(instr *ir.Instruction) bool {
	if instr.Op != ir.MOV {
		return false
	}
	if instr.Target == nil || instr.Arg1 == nil || instr.Arg2 != nil {
		return false
	}
	if instr.Target.Type != instr.Arg1.Type {
		return false
	}
	return instr.Target.String() == instr.Arg1.String()
}
