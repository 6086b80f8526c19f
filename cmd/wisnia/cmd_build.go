package main

import (
	"fmt"
	"path/filepath"

	"github.com/belijzajac/wisnialang/internal/elfimage"
)

// runBuild compiles file straight through to an ELF64 executable, defaulting
// the output path to a.out in the current directory the way the original
// compiler does (the -o/--output flag registered in main.go still lets
// tests pick a temp path instead).
func runBuild(file, output string) error {
	file = filepath.Clean(file)
	src, err := readSource(file)
	if err != nil {
		return err
	}

	text, data, err := compileToMachineCode(file, src)
	if err != nil {
		return err
	}

	outFile := output
	if outFile == "" {
		outFile = "a.out"
	}
	if err := elfimage.WriteFile(outFile, text, data); err != nil {
		return err
	}

	fmt.Printf("built %s -> %s\n", file, outFile)
	return nil
}
