package lower

import (
	"github.com/cwbudde/irc/internal/ir2"
	"github.com/cwbudde/irc/internal/term"
)

// arm is one candidate exit of a merge: the block it exits from, the
// value it produced there, and the mode it was produced under (bottom
// arms are discarded before merge per spec §4.4.4).
type arm struct {
	block *ir2.Block
	value ir2.Value
	mode  term.Mode
}

// armRank linearises the lattice `functional < rref ≤ lref < stack` for
// LUB computation (spec §4.4.4, §9 Open Question: "this spec mandates
// LUB by the storage-class lattice"). rref and lref share one rank, so
// the join does not tell them apart; a complex-typed value at rest (mode value) is
// the top of the lattice, forcing a shared stack slot.
func armRank(a arm, resultType *term.Term) int {
	switch {
	case resultType.Storage() == term.StorageComplex && a.mode == term.ModeValue:
		return 2 // materialised into the merge's stack slot
	case a.mode == term.ModeLRef || a.mode == term.ModeRRef:
		return 1
	default:
		return 0 // functional / by-value register
	}
}

// mergeKind classifies the join result: a register-joined value (via
// phi) or a stack slot that every arm must materialise into.
type mergeKind int

const (
	mergeRegister mergeKind = iota
	mergeStack
)

// joinArms computes the merge of divergent paths (spec §4.4.4): discards
// bottom arms, takes the pointwise join of the remaining arms' storage
// classes, and either builds a phi (register join) or allocates a shared
// stack slot that each arm must initialise into.
func (fs *FuncState) joinArms(arms []arm, resultType *term.Term, into *ir2.Block) (ir2.Value, error) {
	live := make([]arm, 0, len(arms))
	for _, a := range arms {
		if a.mode == term.ModeBottom {
			continue
		}
		live = append(live, a)
	}
	if len(live) == 0 {
		// every arm was bottom: the merge itself never normally returns.
		return ir2.Value{}, nil
	}

	kind := mergeRegister
	for _, a := range live {
		if armRank(a, resultType) == 2 {
			kind = mergeStack
		}
	}

	if kind == mergeStack {
		slot := fs.fresh(ir2.ValueSlot, resultType)
		fs.switchTo(fs.fn.Entry)
		fs.emit(ir2.Instr{Op: ir2.OpAlloca, Dst: slot, Type: resultType})
		for _, a := range live {
			if err := fs.initValue(resultType, slot); err != nil {
				return ir2.Value{}, err
			}
			if err := fs.moveInto(resultType, slot, a.value); err != nil {
				return ir2.Value{}, err
			}
		}
		fs.switchTo(into)
		return slot, nil
	}

	dst := fs.fresh(ir2.ValueRegister, resultType)
	edges := make([]ir2.PhiEdge, len(live))
	for i, a := range live {
		edges[i] = ir2.PhiEdge{From: a.block, Value: a.value}
	}
	fs.switchTo(into)
	fs.emit(ir2.Instr{Op: ir2.OpPhi, Dst: dst, Type: resultType, Edges: edges})
	return dst, nil
}
