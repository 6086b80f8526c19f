package vm

import (
	"fmt"

	"github.com/belijzajac/wisnialang/internal/token"
)

// RuntimeError represents an error raised while interpreting a lowered
// instruction list — an unresolved call target, a jump to a label that was
// never defined, an operation this interpreter does not model. Carries the
// offending instruction's position the same way internal/wisniaerr's stage
// errors do.
type RuntimeError struct {
	Msg string
	Pos token.Position
	PC  int
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("runtime error at PC %d (%s): %s", e.PC, e.Pos, e.Msg)
}
