// Command irc is a thin demonstration shell over the IR1->IR2 core: it
// builds a fixed fixture program (standing in for a real parser/macro
// front end, out of scope per this core's own design), then runs it
// through term construction, function lowering, and global scheduling,
// printing the result of each stage.
package main

import (
	"os"

	"github.com/cwbudde/irc/cmd/irc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
