package codegen

// quadRex holds the four REX-prefix bytes a register-pair instruction picks
// between, selected by whether each operand's canonical index is below 8
// (spec §4.7's 4x4 matrix, src/backend/codegen/CodeGenerator.cpp's
// emitMove/emitCmp/emitAdd/emitSub/emitMul quadrant blocks).
type quadRex struct {
	topLeft, topRight, bottomLeft, bottomRight byte
}

func (q quadRex) pick(firstLow, secondLow bool) byte {
	switch {
	case firstLow && secondLow:
		return q.topLeft
	case firstLow && !secondLow:
		return q.topRight
	case !firstLow && secondLow:
		return q.bottomLeft
	default:
		return q.bottomRight
	}
}

var (
	movRex = quadRex{0x48, 0x4c, 0x49, 0x4d}
	cmpRex = quadRex{0x48, 0x4c, 0x49, 0x4d}
	addRex = quadRex{0x48, 0x4c, 0x49, 0x4d}
	subRex = quadRex{0x48, 0x4c, 0x49, 0x4d}
	mulRex = quadRex{0x48, 0x49, 0x4c, 0x4d}
)

// regPairModRM computes the ModRM byte for a register-register instruction.
// first/second play the (dst, src)-like roles the original's per-call-site
// assignRegisters destructuring assigns; swap picks IMUL's transposed
// formula (spec §4.7: "IMUL's ModRM swaps the two index terms").
func regPairModRM(first, second int, swap bool) byte {
	if swap {
		return byte(0xc0 + (second % 8) + 8*(first%8))
	}
	return byte(0xc0 + 8*(second%8) + (first % 8))
}
