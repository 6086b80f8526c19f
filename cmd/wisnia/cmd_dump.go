package main

import (
	"encoding/hex"
	"fmt"
	"path/filepath"

	"github.com/belijzajac/wisnialang/internal/ast"
	"github.com/belijzajac/wisnialang/internal/codegen"
	"github.com/belijzajac/wisnialang/internal/codegen/gas"
)

// runDump prints one intermediate compilation stage instead of building,
// stopping as early as the requested stage allows (cmd/bfcc's separate
// tokens/ir subcommands, folded into one -d/--dump flag per SPEC_FULL's
// external-interface contract).
func runDump(file, stage string) error {
	file = filepath.Clean(file)
	src, err := readSource(file)
	if err != nil {
		return err
	}

	toks, err := tokenize(file, src)
	if err != nil {
		return err
	}
	if stage == "tokens" {
		fmt.Print(dumpTokens(toks))
		return nil
	}

	root, err := treeify(toks)
	if err != nil {
		return err
	}
	if stage == "ast" {
		fmt.Print(ast.Dump(root))
		return nil
	}

	funcs, err := resolveNames(root)
	if err != nil {
		return err
	}
	if stage == "ir" {
		instrs, err := lowerAndFinish(root, funcs)
		if err != nil {
			return err
		}
		fmt.Print(dumpIR(instrs))
		return nil
	}

	instrs, err := lowerAndFinish(root, funcs)
	if err != nil {
		return err
	}
	if stage == "asm" {
		fmt.Print(gas.Generate(instrs))
		return nil
	}

	// stage == "code"
	text, data, err := codegen.Generate(instrs)
	if err != nil {
		return err
	}
	fmt.Printf("text (%d bytes):\n%s\n", len(text), hex.Dump(text))
	fmt.Printf("data (%d bytes):\n%s\n", len(data), hex.Dump(data))
	return nil
}
