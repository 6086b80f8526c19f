package ir

import (
	"fmt"

	"github.com/belijzajac/wisnialang/internal/token"
)

// Instruction is the quadruple (operation, target?, arg1?, arg2?) spec §3
// describes. Each operand slot is either nil or a shared *token.Token;
// register allocation (internal/regalloc) mutates the pointed-to Token in
// place, which is why Instruction stores pointers rather than values.
type Instruction struct {
	Op     Operation
	Target *token.Token
	Arg1   *token.Token
	Arg2   *token.Token
}

func New(op Operation, target, arg1, arg2 *token.Token) *Instruction {
	return &Instruction{Op: op, Target: target, Arg1: arg1, Arg2: arg2}
}

// String renders an instruction for the "-d ir" dump, e.g. "IADD _t0, _t1".
func (i *Instruction) String() string {
	switch {
	case i.Target != nil && i.Arg1 != nil && i.Arg2 != nil:
		return fmt.Sprintf("%s %s, %s, %s", i.Op, i.Target, i.Arg1, i.Arg2)
	case i.Target != nil && i.Arg1 != nil:
		return fmt.Sprintf("%s %s, %s", i.Op, i.Target, i.Arg1)
	case i.Target != nil:
		return fmt.Sprintf("%s %s", i.Op, i.Target)
	case i.Arg1 != nil:
		return fmt.Sprintf("%s %s", i.Op, i.Arg1)
	default:
		return i.Op.String()
	}
}

// Operands returns the non-nil operand slots, in target/arg1/arg2 order —
// the exact set internal/regalloc's interval collection and rewrite passes
// (spec §4.3 steps 1 and 4) iterate over.
func (i *Instruction) Operands() []*token.Token {
	var ops []*token.Token
	if i.Target != nil {
		ops = append(ops, i.Target)
	}
	if i.Arg1 != nil {
		ops = append(ops, i.Arg1)
	}
	if i.Arg2 != nil {
		ops = append(ops, i.Arg2)
	}
	return ops
}

// List is the ordered, mutable instruction sequence every stage after
// lowering consumes and hands forward (spec §3 "Instruction sequence").
type List []*Instruction

func (l List) String() string {
	s := ""
	for _, i := range l {
		s += i.String() + "\n"
	}
	return s
}
