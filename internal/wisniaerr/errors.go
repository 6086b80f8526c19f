// Package wisniaerr collects the typed error kinds spec.md §7 names, one
// struct per originating stage. Each mirrors the teacher's
// internal/vm.RuntimeError: a message, the offending token's position when
// one is available, and an Error() that always includes the position
// (token.Position leaves out the file name when it is empty).
package wisniaerr

import (
	"fmt"

	"github.com/belijzajac/wisnialang/internal/token"
)

// LexerError: unrecognised character, unterminated string or block comment,
// numeric literal with trailing garbage.
type LexerError struct {
	Msg string
	Pos token.Position
}

func (e *LexerError) Error() string {
	return fmt.Sprintf("lexer error at %s: %s", e.Pos, e.Msg)
}

// TokenError: integer literal out of 32-bit range, wrong operand access.
type TokenError struct {
	Msg string
	Pos token.Position
}

func (e *TokenError) Error() string {
	return fmt.Sprintf("token error at %s: %s", e.Pos, e.Msg)
}

// ParserError: missing expected token, unsupported type, malformed global
// construct, constant-expression with unknown shape.
type ParserError struct {
	Msg string
	Pos token.Position
}

func (e *ParserError) Error() string {
	return fmt.Sprintf("parser error at %s: %s", e.Pos, e.Msg)
}

// SemanticError: undefined name, missing main, multiple definitions of a
// function, non-void function lacks return, call arity mismatch.
type SemanticError struct {
	Msg string
	Pos token.Position
}

func (e *SemanticError) Error() string {
	return fmt.Sprintf("semantic error at %s: %s", e.Pos, e.Msg)
}

// InstructionError: IR lowering cannot map a construct to operations.
type InstructionError struct {
	Msg string
	Pos token.Position
}

func (e *InstructionError) Error() string {
	return fmt.Sprintf("instruction error at %s: %s", e.Pos, e.Msg)
}

// NotImplementedError: unary ops, class codegen, foreach, continue, read,
// class fields, elif, ctor/dtor, float in print.
type NotImplementedError struct {
	Msg string
	Pos token.Position
}

func (e *NotImplementedError) Error() string {
	return fmt.Sprintf("not implemented at %s: %s", e.Pos, e.Msg)
}

// CodeGenerationError: emitter encountered an operand shape it cannot
// encode, or patch-time label lookup failed.
type CodeGenerationError struct {
	Msg string
	Pos token.Position
}

func (e *CodeGenerationError) Error() string {
	return fmt.Sprintf("code generation error at %s: %s", e.Pos, e.Msg)
}
