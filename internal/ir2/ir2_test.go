package ir2

import (
	"testing"

	"github.com/cwbudde/irc/internal/term"
	"github.com/gkampitakis/go-snaps/snaps"
)

// TestDisassembleIdentityFunction covers spec §8 scenario 1: a hand-built
// IR2 identity function with no allocas disassembles to a single register
// return. Uses go-snaps the way the teacher's fixture_test.go does, so a
// regression in block/instruction shape shows up as a snapshot diff.
func TestDisassembleIdentityFunction(t *testing.T) {
	ctx := term.NewCompileContext()
	b := term.NewBuilder(ctx)
	i32 := b.Primitive("i32")

	fn := NewFunction("identity", []Param{{Value: Value{Kind: ValueRegister, ID: 0, Type: i32}, Mode: term.ParamFunctional}}, i32)
	ret := fn.Params[0].Value
	fn.Entry.Term = &Terminator{Kind: TermReturn, ReturnVal: &ret}

	snaps.MatchSnapshot(t, Disassemble(fn))
}

// TestDisassembleStructDestructor covers spec §8 scenario 2's shape: two
// allocas each followed by a matching freea on the return path.
func TestDisassembleStructDestructor(t *testing.T) {
	ctx := term.NewCompileContext()
	b := term.NewBuilder(ctx)
	i32 := b.Primitive("i32")

	fn := NewFunction("make_two", nil, i32)
	slot0 := Value{Kind: ValueSlot, ID: 0, Type: i32}
	slot1 := Value{Kind: ValueSlot, ID: 1, Type: i32}
	fn.Entry.Append(Instr{Op: OpAlloca, Dst: slot0, Type: i32})
	fn.Entry.Append(Instr{Op: OpAlloca, Dst: slot1, Type: i32})
	fn.Entry.Append(Instr{Op: OpFreeAlloc, Operands: []Value{slot1}})
	fn.Entry.Append(Instr{Op: OpFreeAlloc, Operands: []Value{slot0}})
	fn.Entry.Term = &Terminator{Kind: TermReturn}

	snaps.MatchSnapshot(t, Disassemble(fn))
}
