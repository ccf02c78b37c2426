// Package lower converts term.Term function bodies (IR1) into ir2.Function
// basic-block form (spec §4.4): explicit stack slots, inserted
// constructor/destructor calls honoring the lifecycle protocol, and
// exception-safe cleanup stacks across blocks, jump groups and
// try/finally.
//
// Grounded on the teacher's internal/bytecode/compiler_functions.go and
// compiler_statements.go, which thread a single Compiler struct carrying
// locals, a loopContext stack and a functionInfo record through a
// recursive-descent lowering of AST statements into bytecode. This
// package generalizes that single mutable Compiler into FuncState: the
// same "thread one state value through a recursive walk, push/pop scoped
// contexts" shape, retargeted from a flat opcode tape to the explicit
// block graph of internal/ir2.
package lower

import (
	"github.com/cwbudde/irc/internal/diag"
	"github.com/cwbudde/irc/internal/ir2"
	"github.com/cwbudde/irc/internal/term"
)

// CleanupKind distinguishes a cleanup that must run on every scope exit
// from one that only runs on the exceptional path (spec §4.4.1).
type CleanupKind int

const (
	CleanupNormal CleanupKind = iota
	CleanupExceptionOnly
)

// Cleanup is one entry of the LIFO cleanup stack: a destructor call, a
// TryFinally's finally body, or a stack-slot free. Emit appends the
// cleanup's instructions to blk.
type Cleanup struct {
	Kind CleanupKind
	Emit func(fs *FuncState, blk *ir2.Block) error
}

// jumpInfo is what a JumpTarget resolves to once its enclosing JumpGroup
// has allocated it: the block to branch to, where to route the carried
// argument, and the cleanup-stack depth active at the target (so JumpTo
// knows how many cleanups to run on the way out).
type jumpInfo struct {
	block        *ir2.Block
	argMode      term.ResultMode
	slot         *ir2.Value // by-value entries share one slot per spec §4.4.2
	cleanupDepth int
}

// FuncState is the function state threaded through lowering (spec §4.4):
// a scope chain, a cleanup stack, a jump map, the set of globals this
// body depends on (for internal/globals scheduling), and the ambient
// active-implementation list from IntroduceImplementation (spec §4.6).
type FuncState struct {
	ctx    *term.CompileContext
	fn     *ir2.Function
	cur    *ir2.Block
	nextID int

	scope    map[*term.Term]ir2.Value
	cleanups []Cleanup
	jumps    map[*term.Term]*jumpInfo

	dependentGlobals map[*term.Term]bool
	activeImpls      []*term.Term
	staticOps        []staticOpsEntry

	life Lifecycle
}

// staticOpsEntry memoises one Static Implementation's instantiation
// against a concrete wildcard binding, keyed by term identity (pure
// terms intern, so two Lookups of the same concrete arguments yield
// identical *term.Term pointers). Scanned linearly rather than held in
// a map, mirroring the source's own generated-implementation list
// (TvmFunctionState::generated_implementation_list, a SharedList walked
// end to end by tvm_check_implementation) rather than a hashed cache.
type staticOpsEntry struct {
	impl      *term.Term
	wildcards []*term.Term
	ops       *Ops
}

// newFuncState allocates a FuncState whose current block is fn's entry.
func newFuncState(ctx *term.CompileContext, fn *ir2.Function, life Lifecycle) *FuncState {
	return &FuncState{
		ctx:              ctx,
		fn:               fn,
		cur:              fn.Entry,
		scope:            make(map[*term.Term]ir2.Value),
		jumps:            make(map[*term.Term]*jumpInfo),
		dependentGlobals: make(map[*term.Term]bool),
		life:             life,
	}
}

// fresh allocates a new IR2 value id, used for both registers and slots.
func (fs *FuncState) fresh(kind ir2.ValueKind, typ *term.Term) ir2.Value {
	v := ir2.Value{Kind: kind, ID: fs.nextID, Type: typ}
	fs.nextID++
	return v
}

// emit appends instr to the current block and returns its Dst.
func (fs *FuncState) emit(instr ir2.Instr) ir2.Value {
	return fs.cur.Append(instr)
}

// switchTo makes blk the current block; subsequent emit calls append to it.
func (fs *FuncState) switchTo(blk *ir2.Block) { fs.cur = blk }

// newBlock allocates a fresh block under the function under lowering.
func (fs *FuncState) newBlock(name string) *ir2.Block { return fs.fn.NewBlock(name) }

// pushCleanup records c and returns the cleanup-stack depth at which it
// was pushed (i.e. the depth to unwind back to in order to remove it).
func (fs *FuncState) pushCleanup(c Cleanup) int {
	fs.cleanups = append(fs.cleanups, c)
	return len(fs.cleanups)
}

// popCleanup removes the most recently pushed cleanup without running it
// (used when a scope exits normally past its own lexical end, where the
// cleanup was already emitted inline).
func (fs *FuncState) popCleanup() {
	fs.cleanups = fs.cleanups[:len(fs.cleanups)-1]
}

// unwindTo emits every cleanup from the current stack top down to (but
// not including) targetDepth, in LIFO order, into blk (spec §4.4.1: "walk
// the cleanup stack from the current top down to the target's cleanup
// depth, emitting each cleanup's body in order"). exceptionPath selects
// whether CleanupExceptionOnly entries are included.
func (fs *FuncState) unwindTo(blk *ir2.Block, targetDepth int, exceptionPath bool) error {
	for i := len(fs.cleanups) - 1; i >= targetDepth; i-- {
		c := fs.cleanups[i]
		if c.Kind == CleanupExceptionOnly && !exceptionPath {
			continue
		}
		if err := c.Emit(fs, blk); err != nil {
			return err
		}
	}
	return nil
}

// noteDependency records that the body being lowered demands global g,
// for internal/globals to schedule (spec §4.5).
func (fs *FuncState) noteDependency(g *term.Term) {
	fs.dependentGlobals[g] = true
}

// Dependencies returns the set of globals the just-lowered body demanded.
func (fs *FuncState) Dependencies() []*term.Term {
	out := make([]*term.Term, 0, len(fs.dependentGlobals))
	for g := range fs.dependentGlobals {
		out = append(out, g)
	}
	return out
}

func internalError(detail string) error {
	return diag.New(diag.InternalInvariant, diag.Location{}, diag.MsgInternalInvariant, detail)
}
