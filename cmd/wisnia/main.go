// Command wisnia compiles a single .wsn source file straight to a native
// ELF64 Linux executable: lex, parse, resolve, lower to IR, allocate
// registers, peephole-optimise, emit x86-64, wrap in ELF (cmd/bfcc/main.go's
// overall shape, translated onto cobra per oisee-z80-optimizer/cmd/z80opt).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var validDumpStages = map[string]bool{"tokens": true, "ast": true, "ir": true, "asm": true, "code": true}

func newRootCmd() *cobra.Command {
	var dump, output string

	cmd := &cobra.Command{
		Use:          "wisnia <file>.wsn",
		Short:        "WisniaLang ahead-of-time compiler",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dump != "" {
				if !validDumpStages[dump] {
					return fmt.Errorf("unknown --dump stage %q, want one of tokens|ast|ir|asm|code", dump)
				}
				return runDump(args[0], dump)
			}
			return runBuild(args[0], output)
		},
	}
	cmd.Flags().StringVarP(&dump, "dump", "d", "", "print an intermediate stage instead of building (tokens|ast|ir|asm|code)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output executable path (default: a.out)")
	return cmd
}

func readSource(path string) ([]byte, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return src, nil
}
