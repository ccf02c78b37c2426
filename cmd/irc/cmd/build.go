package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cwbudde/irc/internal/globals"
	"github.com/cwbudde/irc/internal/ir2"
)

var targetConfigPath string

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Schedule the fixture's globals into a module and print it",
	Long: `build declares the fixture's counter and box globals with
internal/globals, requests both, and prints the resulting ir2.Module:
every global's mangled name, constant or synthesized initialiser, and
the constructor/destructor priority order (spec §4.5).

If --target-config names a YAML file, it is loaded and one property
lookup ("word_size") is printed as a demonstration of
collab.TargetCallback; it otherwise has no effect on this core's
output, which carries no per-target properties of its own.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fx, err := buildFixture()
		if err != nil {
			return err
		}

		cfg, err := loadTargetConfig(targetConfigPath)
		if err != nil {
			return err
		}
		if targetConfigPath != "" {
			var cb yamlTargetCallback
			if v, ok := cb.TargetProperty(cfg.Build, cfg.Host, "word_size"); ok {
				fmt.Printf("target property word_size = %v\n", v)
			} else {
				fmt.Println("target property word_size not set")
			}
		}

		b := globals.NewBuilder(fx.ctx, fx.life, "fixture")
		b.Declare(fx.counter, []string{"fixture", "counter"})
		b.Declare(fx.box, []string{"fixture", "box"})
		if err := b.Request(fx.counter); err != nil {
			printDiagnostic(err)
			return err
		}
		if err := b.Request(fx.box); err != nil {
			printDiagnostic(err)
			return err
		}
		if err := b.Schedule(); err != nil {
			printDiagnostic(err)
			return err
		}

		return (&printingModuleSink{}).EmitModule(b.Module)
	},
}

// printingModuleSink is a trivial collab.ModuleSink that renders the
// scheduled module to stdout; a real embedder would instead hand mod to
// its own object-file or JIT emitter.
type printingModuleSink struct{}

func (printingModuleSink) EmitModule(mod *ir2.Module) error {
	fmt.Printf("module %s\n", mod.Name)
	for _, g := range mod.Globals {
		fmt.Printf("  global %s linkage=%s", g.Name, g.Linkage)
		switch {
		case g.Const != nil:
			fmt.Print(" const")
		case g.Init != nil:
			fmt.Printf(" ctor priority=%d", g.Priority)
			if g.Fini != nil {
				fmt.Print(" dtor")
			}
		}
		fmt.Println()
	}
	fmt.Printf("  constructors: %d, destructors: %d\n", len(mod.Constructors), len(mod.Destructors))
	return nil
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().StringVar(&targetConfigPath, "target-config", "", "optional YAML file with build/host target property maps")
}
