package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cwbudde/irc/internal/term"
)

var dumpIR1Cmd = &cobra.Command{
	Use:   "dump-ir1",
	Short: "Print the fixture program's IR1 term tree",
	Long: `dump-ir1 builds the built-in fixture program and renders its three
top-level terms (the identity function, the counter global, and the
complex-typed box global) with term.Dump, the IR1 equivalent of
ir2.Disassemble.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fx, err := buildFixture()
		if err != nil {
			return err
		}
		fmt.Println("-- identity --")
		fmt.Print(term.Dump(fx.identity))
		fmt.Println("-- counter --")
		fmt.Print(term.Dump(fx.counter))
		fmt.Println("-- box --")
		fmt.Print(term.Dump(fx.box))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dumpIR1Cmd)
}
