// Package ir2 is the typed SSA-ish output form of function lowering
// (spec §4.4): basic blocks ending in a terminator, plus an instruction
// list of allocas, loads, stores, calls, arithmetic/functional operations
// and "free-stack-alloc" sentinel markers.
//
// Grounded on the teacher's internal/bytecode/instruction.go, which
// defines a flat bytecode stream as an Opcode enum plus operand slots.
// This package generalizes that flat-stream shape into an explicit
// block/instruction graph, since spec §4.4 requires basic blocks with
// branch targets rather than a single linear instruction tape.
package ir2

import "github.com/cwbudde/irc/internal/term"

// ValueKind distinguishes how a Value is held across block boundaries.
type ValueKind int

const (
	ValueRegister ValueKind = iota // SSA register (phi-joinable)
	ValueSlot                     // a stack address (alloca result)
)

// Value is a reference to an IR2 value: either a virtual register or a
// stack slot, both identified by a monotonically increasing id unique
// within the owning Function.
type Value struct {
	Kind ValueKind
	ID   int
	Type *term.Term
}

// Op enumerates the instruction opcodes of spec §4.4: "alloca, load,
// store, call, arithmetic/functional operations, and sentinel
// 'free-stack-alloc' markers."
type Op int

const (
	OpAlloca     Op = iota // allocate a stack slot of a given type
	OpFreeAlloc            // sentinel: release an alloca's storage (cleanup marker)
	OpLoad                 // load from a slot into a register
	OpStore                // store a register's value into a slot
	OpCall                 // call a function value with argument values
	OpArithmetic           // a functional arithmetic/logical primitive
	OpFunctional           // evaluate a pure term directly into a register (FunctionalEvaluate)
	OpPhi                  // merge-point phi node over named predecessor edges
)

func (o Op) String() string {
	switch o {
	case OpAlloca:
		return "alloca"
	case OpFreeAlloc:
		return "freea"
	case OpLoad:
		return "load"
	case OpStore:
		return "store"
	case OpCall:
		return "call"
	case OpArithmetic:
		return "arith"
	case OpFunctional:
		return "functional"
	case OpPhi:
		return "phi"
	default:
		return "unknown"
	}
}

// PhiEdge is one incoming edge of an OpPhi instruction: the predecessor
// block it comes from and the value carried on that edge.
type PhiEdge struct {
	From  *Block
	Value Value
}

// Instr is a single IR2 instruction. Which fields are meaningful depends
// on Op; this mirrors the teacher's flat-operand instruction record
// (instruction.go) rather than one Go type per opcode, since the set of
// opcodes is small and stable.
type Instr struct {
	Op       Op
	Dst      Value        // result, for instructions that produce one
	Type     *term.Term   // the IR1 type this instruction realises, where relevant
	Operands []Value      // source operands (slot for load/store target, call args, ...)
	Callee   Value        // OpCall only
	Source   *term.Term   // the originating IR1 term, for diagnostics and OpFunctional/OpArithmetic
	Edges    []PhiEdge    // OpPhi only
}

// Terminator ends a Block: branch, conditional branch, return, or
// jump-to a JumpTarget's block (spec §4.4: "branch, conditional branch,
// return, jump-to").
type TermKind int

const (
	TermBranch TermKind = iota
	TermCondBranch
	TermReturn
	TermJumpTo
)

type Terminator struct {
	Kind      TermKind
	Cond      Value    // TermCondBranch only
	Then      *Block   // TermBranch, TermCondBranch
	Else      *Block   // TermCondBranch only
	ReturnVal *Value   // TermReturn only; nil for a void return
	Target    *Block   // TermJumpTo only
	JumpArg   *Value   // TermJumpTo only
}

// Block is a basic block: a straight-line instruction list ending in
// exactly one Terminator. Terminator is nil only while the block is
// still under construction by the lowerer.
type Block struct {
	Name  string
	Instr []Instr
	Term  *Terminator
}

// Append adds instr to b and returns instr.Dst for chaining.
func (b *Block) Append(instr Instr) Value {
	b.Instr = append(b.Instr, instr)
	return instr.Dst
}

// Param is one formal parameter of a lowered Function: its IR2 value
// (a register for by-value/functional parameters, a slot for output/io
// parameters passed by address) and the IR1 mode it was declared with.
type Param struct {
	Value Value
	Mode  term.ParamMode
}

// Function is one lowered IR1 Function: a parameter list, an entry
// block, and the full set of blocks reachable from it. Grounded on the
// teacher's compiler_core.go functionInfo (name, arity, upvalue slots),
// generalized from "slot indices into a single stack frame" to
// "independently addressable basic blocks."
type Function struct {
	Name   string
	Params []Param
	Result *term.Term
	Entry  *Block
	Blocks []*Block
}

// NewFunction allocates a Function with a fresh, unterminated entry block.
func NewFunction(name string, params []Param, result *term.Term) *Function {
	entry := &Block{Name: "entry"}
	return &Function{Name: name, Params: params, Result: result, Entry: entry, Blocks: []*Block{entry}}
}

// NewBlock allocates and registers a new block under fn, named for
// debugging/disassembly (spec §6 IR2 module sink consumes a body
// instruction graph; names make that graph legible in dumps).
func (fn *Function) NewBlock(name string) *Block {
	b := &Block{Name: name}
	fn.Blocks = append(fn.Blocks, b)
	return b
}

// Global is an IR2 module-scope symbol: either a constant-initialised
// value or a body-bearing Function, per spec §6's "IR2 module sink"
// contract (stable mangled name, type, linkage, initialiser-or-body).
type Global struct {
	Name     string // mangled name, per internal/globals
	Type     *term.Term
	Linkage  term.Linkage
	Const    *term.Term // set when the global lowers to a pure constant
	Init     *Function  // the synthesised initialiser, or a function global's lowered body
	Fini     *Function  // set when the type is complex and needs a destructor
	Priority int        // constructor/destructor ordering, assigned by internal/globals
}

// Module is the IR2 output of lowering one term.Module: its globals in
// the order their builds complete, plus the derived
// constructor/destructor priority lists.
type Module struct {
	Name         string
	Globals      []*Global
	Constructors []*Global // Globals with a synthesised initialiser, ordered by Priority ascending
	Destructors  []*Global // Globals with Fini, ordered by Priority descending
}
