// Package vm provides a reference interpreter for a lowered, pre-allocation
// instruction list — a test oracle that executes IR directly in Go so
// behavioural properties (what a program prints, what a function returns)
// can be checked without assembling, linking, or running a real ELF64
// binary. It understands the same call convention, control-flow jump
// table, and built-in-module protocol internal/ir/lower.go emits; the four
// built-in modules are treated as intrinsics rather than interpreted
// instruction-by-instruction, since their bodies manipulate raw registers
// and memory addresses this interpreter does not model.
package vm

import (
	"fmt"
	"io"
	"os"

	"github.com/belijzajac/wisnialang/internal/ir"
	"github.com/belijzajac/wisnialang/internal/token"
)

// VMOption configures a VM (the teacher's functional-options pattern,
// reduced to what this interpreter needs — no input/EOF handling, since the
// source language's `read` statement is not lowered, see
// internal/ir/lower.go's VisitReadStmt).
type VMOption func(*VM)

// WithOutput sets the writer stdout (print/write) is sent to. Defaults to
// os.Stdout.
func WithOutput(w io.Writer) VMOption {
	return func(v *VM) { v.output = w }
}

// VM interprets a lowered instruction list.
type VM struct {
	output io.Writer

	instrs ir.List
	labels map[string]int
	vars   map[string]any // identifier/temp name -> int64, string, or bool
	regs   map[token.Register]any
	stack  []any
	pc     int
}

// NewVM creates an interpreter ready to Run an instruction list.
func NewVM(opts ...VMOption) *VM {
	v := &VM{output: os.Stdout}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Run executes instrs from its first user-function segment (index 0, since
// internal/ir/lower.go emits main first) through the implicit exit call.
func (v *VM) Run(instrs ir.List) error {
	v.instrs = instrs
	v.labels = make(map[string]int)
	v.vars = make(map[string]any)
	v.regs = make(map[token.Register]any)
	v.stack = nil
	v.pc = 0

	for i, instr := range instrs {
		if instr.Op == ir.LABEL {
			v.labels[instr.Target.Name()] = i
		}
	}

	for v.pc < len(instrs) {
		instr := instrs[v.pc]
		jumped, err := v.step(instr)
		if err != nil {
			return err
		}
		if !jumped {
			v.pc++
		}
	}
	return nil
}

// step executes one instruction, returning true if it already updated pc
// (a taken jump, call, or return) so the caller should not advance it.
func (v *VM) step(instr *ir.Instruction) (bool, error) {
	switch instr.Op {
	case ir.LABEL, ir.NOP:
		return false, nil

	case ir.MOV:
		v.set(instr.Target, v.get(instr.Arg1))
		return false, nil

	case ir.IADD:
		v.set(instr.Target, v.intOf(instr.Arg1)+v.intOf(instr.Arg2))
		return false, nil
	case ir.ISUB:
		v.set(instr.Target, v.intOf(instr.Arg1)-v.intOf(instr.Arg2))
		return false, nil
	case ir.IMUL:
		v.set(instr.Target, v.intOf(instr.Arg1)*v.intOf(instr.Arg2))
		return false, nil
	case ir.IDIV:
		divisor := v.intOf(instr.Arg1)
		if divisor == 0 {
			return false, &RuntimeError{Msg: "division by zero", Pos: instr.Arg1.Pos, PC: v.pc}
		}
		v.set(instr.Target, v.intOf(instr.Target)/divisor)
		return false, nil
	case ir.INC:
		v.set(instr.Target, v.intOf(instr.Target)+1)
		return false, nil
	case ir.DEC:
		v.set(instr.Target, v.intOf(instr.Target)-1)
		return false, nil

	case ir.CMP:
		v.regs[cmpFlag] = v.intOf(instr.Arg1) - v.intOf(instr.Arg2)
		return false, nil

	case ir.JMP:
		return v.jumpTo(instr.Arg1)
	case ir.JE:
		return v.jumpIf(v.flag() == 0, instr.Arg1)
	case ir.JNE:
		return v.jumpIf(v.flag() != 0, instr.Arg1)
	case ir.JL:
		return v.jumpIf(v.flag() < 0, instr.Arg1)
	case ir.JLE:
		return v.jumpIf(v.flag() <= 0, instr.Arg1)
	case ir.JG:
		return v.jumpIf(v.flag() > 0, instr.Arg1)
	case ir.JGE:
		return v.jumpIf(v.flag() >= 0, instr.Arg1)
	case ir.JZ:
		return v.jumpIf(v.flag() == 0, instr.Arg1)
	case ir.JNZ:
		return v.jumpIf(v.flag() != 0, instr.Arg1)

	case ir.PUSH:
		v.stack = append(v.stack, v.get(instr.Arg1))
		return false, nil
	case ir.POP:
		target := instr.Target
		if target == nil {
			target = instr.Arg1
		}
		v.set(target, v.pop())
		return false, nil

	case ir.CALL:
		return v.call(instr.Arg1)
	case ir.RET:
		target := v.pop()
		n, ok := target.(int64)
		if !ok {
			return false, &RuntimeError{Msg: "return address is not a program counter", PC: v.pc}
		}
		v.pc = int(n)
		return true, nil

	case ir.SYSCALL:
		return false, v.syscall()

	default:
		return false, &RuntimeError{Msg: "unsupported operation " + instr.Op.String(), PC: v.pc}
	}
}

var cmpFlag = token.Register(-1) // sentinel key into regs, never a real register

func (v *VM) flag() int64 { return v.intOf2(v.regs[cmpFlag]) }

func (v *VM) jumpTo(target *token.Token) (bool, error) {
	idx, ok := v.labels[target.Name()]
	if !ok {
		return false, &RuntimeError{Msg: "no such label " + target.Name(), Pos: target.Pos, PC: v.pc}
	}
	v.pc = idx
	return true, nil
}

func (v *VM) jumpIf(cond bool, target *token.Token) (bool, error) {
	if !cond {
		return false, nil
	}
	return v.jumpTo(target)
}

// call dispatches to a built-in intrinsic, or simulates a hardware CALL
// (push the return pc, jump to the label) for a user function.
func (v *VM) call(target *token.Token) (bool, error) {
	switch target.Name() {
	case ir.ModuleNames[ir.ModulePrintNumber]:
		fmt.Fprintf(v.output, "%d", v.intOf2(v.regs[token.RDI]))
		return false, nil
	case ir.ModuleNames[ir.ModulePrintBoolean]:
		if v.intOf2(v.regs[token.RDI]) != 0 {
			fmt.Fprint(v.output, "true")
		} else {
			fmt.Fprint(v.output, "false")
		}
		return false, nil
	case ir.ModuleNames[ir.ModuleStringLength]:
		return false, nil // length is only needed by the inline write sequence, which reads the string value directly
	case ir.ModuleNames[ir.ModuleExit]:
		v.pc = len(v.instrs)
		return true, nil
	}

	idx, ok := v.labels[target.Name()]
	if !ok {
		return false, &RuntimeError{Msg: "call to undefined function " + target.Name(), Pos: target.Pos, PC: v.pc}
	}
	v.stack = append(v.stack, int64(v.pc+1))
	v.pc = idx
	return true, nil
}

// syscall handles the inline write(1, rsi, rdx) sequence internal/ir/
// lower.go's emitInlineWrite produces for print(string) — it never calls a
// built-in module, so it must be handled at the raw SYSCALL site.
func (v *VM) syscall() error {
	if v.intOf2(v.regs[token.RAX]) != 1 {
		return nil // only the write syscall is modelled
	}
	s, ok := v.regs[token.RSI].(string)
	if !ok {
		return &RuntimeError{Msg: "write syscall with a non-string RSI", PC: v.pc}
	}
	fmt.Fprint(v.output, s)
	return nil
}

func (v *VM) pop() any {
	n := len(v.stack)
	val := v.stack[n-1]
	v.stack = v.stack[:n-1]
	return val
}

// get resolves an operand token to its current value: a literal's own
// value, a register's stored value, or a variable/temp's stored value.
func (v *VM) get(t *token.Token) any {
	switch t.Type {
	case token.REGISTER:
		return v.regs[t.Register()]
	case token.LIT_INT:
		return int64(t.Value.(int32))
	case token.LIT_BOOL:
		if t.Value.(bool) {
			return int64(1)
		}
		return int64(0)
	case token.LIT_STR:
		return t.Value.(string)
	default:
		return v.vars[t.Name()]
	}
}

// set stores val under whatever operand t addresses.
func (v *VM) set(t *token.Token, val any) {
	if t.Type == token.REGISTER {
		v.regs[t.Register()] = val
		return
	}
	v.vars[t.Name()] = val
}

func (v *VM) intOf(t *token.Token) int64  { return v.intOf2(v.get(t)) }
func (v *VM) intOf2(val any) int64 {
	switch n := val.(type) {
	case int64:
		return n
	case int32:
		return int64(n)
	case bool:
		if n {
			return 1
		}
		return 0
	default:
		return 0
	}
}
