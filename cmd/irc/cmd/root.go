package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/cwbudde/irc/internal/diag"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "irc",
	Short: "IR1 to IR2 compiler core demonstration shell",
	Long: `irc drives the term/dispatch/lower/globals pipeline against a
built-in fixture program, standing in for a real parser and macro
front end (both out of scope for this core). Use it to inspect each
pipeline stage: the constructed IR1 terms, the lowered IR2 function
bodies, and the final scheduled module.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored diagnostic output")
	rootCmd.PersistentFlags().Bool("json", false, "report diagnostics as a JSON object instead of plain text")
}

// printDiagnostic reports err to stderr. Plain text coloring the Kind
// red when err is one of this core's diag.Diagnostic values (spec §7);
// with --json, a single JSON object instead, built field by field with
// sjson rather than a literal struct marshal so a future Note list can
// be appended without reshaping a fmt.Sprintf string.
func printDiagnostic(err error) {
	asJSON, _ := rootCmd.PersistentFlags().GetBool("json")
	d, isDiagnostic := err.(*diag.Diagnostic)

	if asJSON {
		doc := "{}"
		if isDiagnostic {
			doc, _ = sjson.Set(doc, "kind", d.Kind.String())
			doc, _ = sjson.Set(doc, "message", d.Message)
			doc, _ = sjson.Set(doc, "location", d.Location.String())
			for i, n := range d.Notes {
				doc, _ = sjson.Set(doc, fmt.Sprintf("notes.%d.message", i), n.Message)
				doc, _ = sjson.Set(doc, fmt.Sprintf("notes.%d.location", i), n.Location.String())
			}
		} else {
			doc, _ = sjson.Set(doc, "message", err.Error())
		}
		// Re-read the whole document back out through gjson rather than
		// printing the local var, so the printed line always reflects
		// exactly what went into the document above.
		fmt.Fprintln(os.Stderr, gjson.Get(doc, "@this").Raw)
		return
	}

	if noColor, _ := rootCmd.PersistentFlags().GetBool("no-color"); noColor {
		color.NoColor = true
	}
	if isDiagnostic {
		fmt.Fprintln(os.Stderr, color.RedString("error[%s]: %s", d.Kind, d.Message))
		return
	}
	fmt.Fprintln(os.Stderr, color.RedString("error: %s", err))
}

func exitWithError(err error) {
	printDiagnostic(err)
	os.Exit(1)
}
