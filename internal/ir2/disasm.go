package ir2

import (
	"fmt"
	"strings"
)

// Disassemble renders fn as indented text, one instruction per line, in
// the spirit of the teacher's bytecode disassembler (internal/bytecode
// exposed debug instruction printing keyed on Opcode.String()). Used by
// cmd/irc's lower subcommand and by go-snaps fixture tests so that a
// lowering regression shows up as a readable diff instead of a struct dump.
func Disassemble(fn *Function) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "function %s(", fn.Name)
	for i, p := range fn.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "v%d", p.Value.ID)
	}
	sb.WriteString(")\n")
	for _, b := range fn.Blocks {
		disasmBlock(&sb, b)
	}
	return sb.String()
}

func disasmBlock(sb *strings.Builder, b *Block) {
	fmt.Fprintf(sb, "%s:\n", b.Name)
	for _, in := range b.Instr {
		disasmInstr(sb, in)
	}
	if b.Term != nil {
		disasmTerm(sb, b.Term)
	}
}

// hasDst reports whether op's instruction form produces a Dst value.
// OpFreeAlloc and OpStore only consume operands.
func hasDst(op Op) bool {
	switch op {
	case OpFreeAlloc, OpStore:
		return false
	default:
		return true
	}
}

func disasmInstr(sb *strings.Builder, in Instr) {
	sb.WriteString("  ")
	if hasDst(in.Op) {
		fmt.Fprintf(sb, "v%d = ", in.Dst.ID)
	}
	sb.WriteString(in.Op.String())
	for _, op := range in.Operands {
		fmt.Fprintf(sb, " v%d", op.ID)
	}
	if in.Op == OpCall {
		fmt.Fprintf(sb, " callee=v%d", in.Callee.ID)
	}
	if in.Op == OpPhi {
		for _, e := range in.Edges {
			fmt.Fprintf(sb, " [%s: v%d]", e.From.Name, e.Value.ID)
		}
	}
	sb.WriteString("\n")
}

func disasmTerm(sb *strings.Builder, t *Terminator) {
	switch t.Kind {
	case TermBranch:
		fmt.Fprintf(sb, "  br %s\n", t.Then.Name)
	case TermCondBranch:
		fmt.Fprintf(sb, "  condbr v%d, %s, %s\n", t.Cond.ID, t.Then.Name, t.Else.Name)
	case TermReturn:
		if t.ReturnVal == nil {
			sb.WriteString("  ret\n")
		} else {
			fmt.Fprintf(sb, "  ret v%d\n", t.ReturnVal.ID)
		}
	case TermJumpTo:
		if t.JumpArg == nil {
			fmt.Fprintf(sb, "  jump %s\n", t.Target.Name)
		} else {
			fmt.Fprintf(sb, "  jump %s, v%d\n", t.Target.Name, t.JumpArg.ID)
		}
	}
}
