// Package regalloc implements linear-scan register allocation (spec §4.3),
// grounded directly on the original implementation's
// RegisterAllocator::allocate (src/backend/register/RegisterAllocator.cpp)
// since the teacher repo has no allocator of its own to generalise.
package regalloc

import (
	"sort"

	"github.com/belijzajac/wisnialang/internal/ir"
	"github.com/belijzajac/wisnialang/internal/token"
)

// liveInterval tracks one named variable's first-def/last-use span within a
// single function's instruction segment.
type liveInterval struct {
	name     string
	start    int
	end      int
	register token.Register
}

// Allocate assigns physical registers to every user-function segment
// recorded in ctx.FuncStarts, mutating each operand Token in place via
// SetRegister. Built-in module instructions (ctx.UserEnd onward) are left
// untouched — their operands are already physical registers (spec §4.3:
// "do not allocate").
func Allocate(ctx *ir.Context) {
	bounds := append(append([]int{}, ctx.FuncStarts...), ctx.UserEnd)
	for i := 0; i < len(bounds)-1; i++ {
		allocateSegment(ctx.Instructions[bounds[i]:bounds[i+1]])
	}
}

func allocateSegment(instrs ir.List) {
	intervals := collectIntervals(instrs)
	scan(intervals)
	rewrite(instrs, intervals)
}

// variableName returns the operand's variable name, or "" if the operand is
// nil or already a physical register (spec §4.3 step 1).
func variableName(t *token.Token) string {
	if t == nil || t.Type == token.REGISTER {
		return ""
	}
	if !t.IsIdent() {
		return ""
	}
	return t.Name()
}

// collectIntervals walks the instruction segment once, recording each
// variable name's first appearance as start and its last as end (spec
// §4.3 step 1).
func collectIntervals(instrs ir.List) []*liveInterval {
	seen := make(map[string]*liveInterval)
	var order []*liveInterval

	for i, instr := range instrs {
		for _, operand := range instr.Operands() {
			name := variableName(operand)
			if name == "" {
				continue
			}
			if iv, ok := seen[name]; ok {
				iv.end = i
				continue
			}
			iv := &liveInterval{name: name, start: i, end: i}
			seen[name] = iv
			order = append(order, iv)
		}
	}

	sort.SliceStable(order, func(i, j int) bool { return order[i].start < order[j].start })
	return order
}

// registerPool tracks which of the 15 allocatable registers are currently
// assigned to a live interval.
type registerPool struct {
	assigned map[token.Register]bool
}

func newRegisterPool() *registerPool {
	p := &registerPool{assigned: make(map[token.Register]bool, len(token.AllocatableOrder))}
	for _, r := range token.AllocatableOrder {
		p.assigned[r] = false
	}
	return p
}

func (p *registerPool) take() (token.Register, bool) {
	for _, r := range token.AllocatableOrder {
		if !p.assigned[r] {
			p.assigned[r] = true
			return r, true
		}
	}
	return token.NOREG, false
}

func (p *registerPool) release(r token.Register) { p.assigned[r] = false }

// scan is the linear-scan core (spec §4.3 steps 2-3): process intervals in
// start order, expire anything that has ended, hand out the lowest free
// register from token.AllocatableOrder, or mark SPILLED when the pool is
// exhausted.
func scan(intervals []*liveInterval) {
	pool := newRegisterPool()
	var active []*liveInterval

	for _, cur := range intervals {
		kept := active[:0]
		for _, a := range active {
			if a.end <= cur.start {
				pool.release(a.register)
				continue
			}
			kept = append(kept, a)
		}
		active = kept

		if r, ok := pool.take(); ok {
			cur.register = r
			active = append(active, cur)
		} else {
			cur.register = token.SPILLED
		}
	}
}

// rewrite mutates every operand that matches a live interval's variable
// name to the REGISTER type holding its assigned register (spec §4.3 step
// 4). Spilled intervals are still rewritten to the SPILLED sentinel so
// later stages can see the overflow rather than silently misencoding it.
func rewrite(instrs ir.List, intervals []*liveInterval) {
	byName := make(map[string]token.Register, len(intervals))
	for _, iv := range intervals {
		byName[iv.name] = iv.register
	}

	for _, instr := range instrs {
		for _, operand := range instr.Operands() {
			name := variableName(operand)
			if name == "" {
				continue
			}
			if r, ok := byName[name]; ok {
				operand.SetRegister(r)
			}
		}
	}
}
