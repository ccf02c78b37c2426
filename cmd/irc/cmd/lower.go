package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cwbudde/irc/internal/ir2"
	"github.com/cwbudde/irc/internal/lower"
)

var lowerCmd = &cobra.Command{
	Use:   "lower",
	Short: "Lower the fixture's identity function to IR2 and disassemble it",
	Long: `lower runs the fixture program's identity function through
lower.LowerFunction and prints the resulting ir2.Function with
ir2.Disassemble, the IR1->IR2 half of this core's pipeline.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fx, err := buildFixture()
		if err != nil {
			return err
		}
		fn, _, err := lower.LowerFunction(fx.ctx, fx.identity, fx.life)
		if err != nil {
			printDiagnostic(err)
			return err
		}
		fmt.Print(ir2.Disassemble(fn))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(lowerCmd)
}
