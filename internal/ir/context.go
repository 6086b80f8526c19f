package ir

import "github.com/belijzajac/wisnialang/internal/token"

// Module identifies one of the four built-in runtime routines (spec §4.2
// "Built-in modules", §6).
type Module int

const (
	ModuleStringLength Module = iota
	ModulePrintNumber
	ModulePrintBoolean
	ModuleExit
)

// ModuleNames gives each built-in its fixed external name, used as the
// CALL target (spec §6).
var ModuleNames = map[Module]string{
	ModuleStringLength: "__builtin_calculate_string_length",
	ModulePrintNumber:  "__builtin_print_number",
	ModulePrintBoolean: "__builtin_print_boolean",
	ModuleExit:         "__builtin_exit",
}

// Context owns everything one compilation's IR lowering produces: the
// instruction list so far, the running temporary/label counters, and which
// built-in modules have been referenced. Spec §5 requires these "used"
// flags to live inside the per-compilation context rather than as package
// globals (unlike the original's static array) — this struct is exactly
// that encapsulation.
type Context struct {
	Instructions List
	tempCounter  int
	labelCounter map[string]int // per-construct counter, keyed by "while"/"for"/"if"
	moduleUsed   [4]bool
	breakLabels  []*token.Token // stack of enclosing loop end-labels, for `break`

	// FuncStarts holds the index, into Instructions, where each user
	// function's instructions begin — internal/regalloc allocates each
	// function's live intervals independently (spec §4.3: "operating per
	// user function"), since two functions may reuse the same variable
	// name. UserEnd is the index where the built-in modules begin; nothing
	// from UserEnd onward is allocated; their operands are already
	// physical registers.
	FuncStarts []int
	UserEnd    int
}

func NewContext() *Context {
	return &Context{labelCounter: make(map[string]int)}
}

// NewTemp synthesises the next `_t<k>` temporary (spec §3 "Temporary
// variable").
func (c *Context) NewTemp(pos token.Position) *token.Token {
	name := tempName(c.tempCounter)
	c.tempCounter++
	return token.Ident(name, pos)
}

func tempName(k int) string {
	return "_t" + itoa(k)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// NewLabel synthesises the next label in a construct's counter sequence
// (spec §4.2 "Control-flow lowering": the counter is shared across all
// instances of the same construct).
func (c *Context) NewLabel(construct, suffix string, pos token.Position) *token.Token {
	n := c.labelCounter[construct]
	name := ".L" + itoa(n) + "_" + construct + "_" + suffix
	return token.New(token.LABEL, name, pos)
}

// BumpLabelCounter advances construct's counter once all of its labels for
// this instance have been minted, so the next `while`/`for`/`if` gets a
// fresh number.
func (c *Context) BumpLabelCounter(construct string) {
	c.labelCounter[construct]++
}

func (c *Context) MarkModuleUsed(m Module) { c.moduleUsed[m] = true }
func (c *Context) ModuleUsed(m Module) bool { return c.moduleUsed[m] }

func (c *Context) PushBreakLabel(l *token.Token) { c.breakLabels = append(c.breakLabels, l) }
func (c *Context) PopBreakLabel()                { c.breakLabels = c.breakLabels[:len(c.breakLabels)-1] }
func (c *Context) CurrentBreakLabel() *token.Token {
	if len(c.breakLabels) == 0 {
		return nil
	}
	return c.breakLabels[len(c.breakLabels)-1]
}

func (c *Context) Emit(i *Instruction) { c.Instructions = append(c.Instructions, i) }

// MarkFuncStart records the current instruction-list length as the start of
// a new user function's segment.
func (c *Context) MarkFuncStart() { c.FuncStarts = append(c.FuncStarts, len(c.Instructions)) }

// MarkUserEnd records the current instruction-list length as the boundary
// past which built-in modules are appended and never allocated.
func (c *Context) MarkUserEnd() { c.UserEnd = len(c.Instructions) }
