package main

import (
	"fmt"

	"github.com/belijzajac/wisnialang/internal/ast"
	"github.com/belijzajac/wisnialang/internal/codegen"
	"github.com/belijzajac/wisnialang/internal/ir"
	"github.com/belijzajac/wisnialang/internal/lexer"
	"github.com/belijzajac/wisnialang/internal/optimize"
	"github.com/belijzajac/wisnialang/internal/parser"
	"github.com/belijzajac/wisnialang/internal/regalloc"
	"github.com/belijzajac/wisnialang/internal/sema"
	"github.com/belijzajac/wisnialang/internal/token"
)

// tokenize, treeify and resolveNames mirror cmd/bfcc's one-stage-per-call
// style (cmdIR/cmdRun each re-run the stages they need rather than sharing
// a single compile() entry point); built and dump commands do the same here
// since each needs to stop and print at a different stage.

func tokenize(file string, src []byte) ([]*token.Token, error) {
	return lexer.Tokenize(file, src)
}

func treeify(toks []*token.Token) (*ast.Root, error) {
	return parser.Parse(toks)
}

func resolveNames(root *ast.Root) (map[string]*sema.FnSig, error) {
	return sema.Resolve(root)
}

func lowerAndFinish(root *ast.Root, funcs map[string]*sema.FnSig) (ir.List, error) {
	ctx, err := ir.Lower(root, funcs)
	if err != nil {
		return nil, err
	}
	regalloc.Allocate(ctx)
	return optimize.RemoveRedundantMoves(ctx.Instructions), nil
}

func compileToMachineCode(file string, src []byte) (text, data []byte, err error) {
	toks, err := tokenize(file, src)
	if err != nil {
		return nil, nil, err
	}
	root, err := treeify(toks)
	if err != nil {
		return nil, nil, err
	}
	funcs, err := resolveNames(root)
	if err != nil {
		return nil, nil, err
	}
	instrs, err := lowerAndFinish(root, funcs)
	if err != nil {
		return nil, nil, err
	}
	return codegen.Generate(instrs)
}

func dumpTokens(toks []*token.Token) string {
	var out string
	for _, t := range toks {
		out += fmt.Sprintf("%d:%d\t%s\n", t.Pos.Line, t.Pos.Column, t.String())
	}
	return out
}

func dumpIR(instrs ir.List) string {
	var out string
	for _, i := range instrs {
		out += i.String() + "\n"
	}
	return out
}
