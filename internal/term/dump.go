package term

import (
	"fmt"
	"strings"
)

// Dump renders t as an indented text tree, one term per line tagged with
// its Kind, Mode and Seq (spec §3's "stable, printable handle" guarantee
// for identity terms), in the spirit of the teacher's bytecode
// disassembler. Used by cmd/irc's dump-ir1 subcommand and by this
// package's tests, so an IR1 construction regression shows up as
// readable text instead of a struct dump.
func Dump(t *Term) string {
	var sb strings.Builder
	dumpNode(&sb, t, 0, map[*Term]bool{})
	return sb.String()
}

// dumpNode walks t depth-first. A pure (hash-consed) term can be shared
// by many parents; seen guards only against re-expanding an *identity*
// term already expanded anywhere earlier in the same dump (a later
// occurrence prints as "..."; seen is never cleared) — a shared pure leaf
// like a PrimitiveType is printed again at each occurrence, matching how
// the teacher's disassembler reprints a repeated constant operand rather
// than aliasing it.
func dumpNode(sb *strings.Builder, t *Term, depth int, seen map[*Term]bool) {
	indent := strings.Repeat("  ", depth)
	if t == nil {
		fmt.Fprintf(sb, "%s<nil>\n", indent)
		return
	}
	fmt.Fprintf(sb, "%s%s#%d [%s]%s\n", indent, t.kind, t.seq, t.mode, dumpDetail(t))
	if !t.pure {
		if seen[t] {
			fmt.Fprintf(sb, "%s  ...\n", indent)
			return
		}
		seen[t] = true
	}
	for _, c := range children(t) {
		dumpNode(sb, c, depth+1, seen)
	}
}

// dumpDetail renders the one or two fields of t's payload that make a
// dump line distinguishable from its siblings (a name, a literal value),
// leaving everything else to the child lines dumpNode prints beneath it.
func dumpDetail(t *Term) string {
	switch d := t.data.(type) {
	case AnonymousData:
		if d.label != "" {
			return fmt.Sprintf(" %q", d.label)
		}
	case ParameterData:
		return fmt.Sprintf(" depth=%d index=%d", d.Depth, d.Index)
	case PrimitiveData:
		return fmt.Sprintf(" %q", d.Name)
	case IntegerValueData:
		return fmt.Sprintf(" %d", d.Value)
	case StringValueData:
		return fmt.Sprintf(" %q", d.Value)
	case StatementData:
		return fmt.Sprintf(" mode=%d", d.StmtMode)
	case *GlobalVariableData:
		return fmt.Sprintf(" %q linkage=%s", d.Name, d.Linkage)
	case *FunctionData:
		return fmt.Sprintf(" %q linkage=%s", d.Name, d.Linkage)
	case *GenericTypeData:
		return fmt.Sprintf(" %q", d.Name)
	case ExternalGlobalData:
		return fmt.Sprintf(" %q", d.Name)
	case LibrarySymbolData:
		return fmt.Sprintf(" %s!%s", d.Library, d.Symbol)
	case *OverloadSiteData:
		return fmt.Sprintf(" %q", d.Name)
	case *OverloadValueData:
		return fmt.Sprintf(" static=%v", d.Static)
	}
	return ""
}
