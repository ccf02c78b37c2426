package cmd

import (
	"fmt"

	"github.com/cwbudde/irc/internal/collab"
	"github.com/cwbudde/irc/internal/diag"
	"github.com/cwbudde/irc/internal/term"
)

// The fixture program never touches source text or macros, so it needs
// no real Parser or MacroEvaluator; these test doubles exist only so
// this shell can link against every collab interface named in spec §6
// rather than only the ones the fixture happens to exercise.

type noParser struct{}

func (noParser) Parse(source []byte, start, end int, loc diag.Location) (*collab.ParseTree, error) {
	return nil, fmt.Errorf("irc: no parser wired; %q is a fixed in-memory fixture", "cmd/irc")
}

type noMacroEvaluator struct{}

func (noMacroEvaluator) EvalMacro(macro *term.Term, args []*collab.ParseTree, ctx collab.EvalContext, target collab.MacroTarget) (*term.Term, error) {
	return nil, fmt.Errorf("irc: no macro evaluator wired")
}

type noPlatformLoader struct{}

func (noPlatformLoader) Load(descriptor collab.PropertyValue) (collab.LibraryHandle, error) {
	return nil, fmt.Errorf("irc: no platform loader wired for %v", descriptor)
}

// emptyEvalContext resolves nothing; a real embedder's EvalContext would
// be backed by whatever name resolution its parser has already done.
type emptyEvalContext struct{}

func (emptyEvalContext) Lookup(name string) (*term.Term, bool) { return nil, false }
func (emptyEvalContext) ExtraOverloads() []*term.Term          { return nil }

var (
	_ collab.Parser         = noParser{}
	_ collab.MacroEvaluator = noMacroEvaluator{}
	_ collab.PlatformLoader = noPlatformLoader{}
	_ collab.EvalContext    = emptyEvalContext{}
	_ collab.TargetCallback = yamlTargetCallback{}
)
