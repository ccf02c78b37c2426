package lower

import (
	"github.com/cwbudde/irc/internal/diag"
	"github.com/cwbudde/irc/internal/dispatch"
	"github.com/cwbudde/irc/internal/ir2"
	"github.com/cwbudde/irc/internal/term"
)

// Ops bundles the resolved function values for one complex type's
// lifecycle (spec §4.4.3): init, fini, clear, move, move_init, and
// optionally copy/copy_init (a type may disable copy while still being
// movable).
type Ops struct {
	Init, Fini, Clear, Move, MoveInit *term.Term
	Copy, CopyInit                    *term.Term // nil if Copyable is not implemented
}

// Lifecycle holds the two well-known Interface sites the lowerer queries
// for every complex-typed value it constructs, destroys, moves, or
// copies. Injected rather than global, per spec §9 ("CompileContext...
// is an owning scope, not a process global").
type Lifecycle struct {
	Movable  *term.Term // Interface site; Implementation payload is *Ops (Copy/CopyInit left nil)
	Copyable *term.Term // Interface site; Implementation payload is *Ops (Copy/CopyInit set)
}

// resolve looks up typ's lifecycle operations, merging the Movable
// implementation's required ops with the Copyable implementation's copy
// ops, if present. A type with no Movable implementation fails with
// the error dispatch.Lookup returns for it (OverloadNotFound): every
// complex type must be at least movable.
func (fs *FuncState) resolve(typ *term.Term) (*Ops, error) {
	mv, err := dispatch.Lookup(fs.life.Movable, []*term.Term{typ}, fs.activeImpls)
	if err != nil {
		return nil, err
	}
	ops, err := fs.instantiate(mv)
	if err != nil {
		return nil, err
	}
	result := *ops

	if fs.life.Copyable != nil {
		if cp, err := dispatch.Lookup(fs.life.Copyable, []*term.Term{typ}, fs.activeImpls); err == nil {
			if cpOps, err := fs.instantiate(cp); err == nil && cpOps != nil {
				result.Copy, result.CopyInit = cpOps.Copy, cpOps.CopyInit
			}
		}
	}
	return &result, nil
}

// instantiate resolves cand's payload to concrete *Ops (spec §4.3 last
// paragraph, §4.6). A Dynamic implementation (Static == false) names an
// already-concrete, already-in-scope witness — introduced via
// IntroduceImplementation, never a module-level template — so its
// payload is used exactly as given, with no specialization and no
// caching across call sites. A Static implementation is the default
// case (attached directly to an Interface site): its payload is
// instantiated once per distinct wildcard binding and the instantiation
// memoised in fs.staticOps, so repeated lookups of the same concrete
// parameters return the identical *Ops rather than re-running the
// factory, mirroring the one-definition-rule global the source
// synthesises per (interface, concrete-parameter-list)
// (TvmObjectCompilerBase::get_implementation, tvm_check_implementation).
func (fs *FuncState) instantiate(cand *dispatch.Candidate) (*Ops, error) {
	vd := cand.Value.Data().(*term.OverloadValueData)

	if !vd.Static {
		ops, ok := vd.Payload.(*Ops)
		if !ok || ops == nil {
			return nil, internalError("dynamic implementation payload is not *lower.Ops")
		}
		return ops, nil
	}

	for _, e := range fs.staticOps {
		if e.impl == cand.Value && sameWildcards(e.wildcards, cand.Wildcards) {
			return e.ops, nil
		}
	}

	var ops *Ops
	switch payload := vd.Payload.(type) {
	case *Ops:
		ops = payload
	case func([]*term.Term) (*Ops, error):
		var err error
		ops, err = payload(cand.Wildcards)
		if err != nil {
			return nil, err
		}
	default:
		return nil, internalError("static implementation payload is neither *lower.Ops nor a wildcard factory")
	}
	if ops == nil {
		return nil, internalError("static implementation payload resolved to a nil *lower.Ops")
	}

	fs.staticOps = append(fs.staticOps, staticOpsEntry{
		impl:      cand.Value,
		wildcards: append([]*term.Term(nil), cand.Wildcards...),
		ops:       ops,
	})
	return ops, nil
}

func sameWildcards(a, b []*term.Term) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// emitCallVoid lowers a bare call to fn with args into blk, discarding the
// result (used for init/fini/clear/move calls, which operate by side
// effect on addresses passed as arguments).
func (fs *FuncState) emitCallVoid(blk *ir2.Block, fn *term.Term, args ...ir2.Value) error {
	callee, err := fs.lowerAddress(fn)
	if err != nil {
		return err
	}
	saved := fs.cur
	fs.cur = blk
	fs.emit(ir2.Instr{Op: ir2.OpCall, Callee: callee, Operands: args, Source: fn})
	fs.cur = saved
	return nil
}

// initValue runs typ's init at dst, pushing a matching Fini cleanup;
// for a non-complex typ it emits nothing (spec §4.4.3,
// §4.4.1: "every construction that creates a value of complex type
// pushes a destructor cleanup").
func (fs *FuncState) initValue(typ *term.Term, dst ir2.Value) error {
	if typ.Storage() != term.StorageComplex {
		return nil // primitive types: a memory copy or no-op, nothing to push
	}
	ops, err := fs.resolve(typ)
	if err != nil {
		return err
	}
	if err := fs.emitCallVoid(fs.cur, ops.Init, dst); err != nil {
		return err
	}
	fs.pushCleanup(Cleanup{Kind: CleanupNormal, Emit: func(fs *FuncState, blk *ir2.Block) error {
		return fs.emitCallVoid(blk, ops.Fini, dst)
	}})
	return nil
}

// moveInto runs typ's move_init from src into dst (src is consumed, no
// fini owed on src afterward by this call path — the caller's cleanup
// for src must have already been retired); for a non-complex typ it
// emits a plain store instead.
func (fs *FuncState) moveInto(typ *term.Term, dst, src ir2.Value) error {
	if typ.Storage() != term.StorageComplex {
		fs.emit(ir2.Instr{Op: ir2.OpStore, Operands: []ir2.Value{dst, src}})
		return nil
	}
	ops, err := fs.resolve(typ)
	if err != nil {
		return err
	}
	return fs.emitCallVoid(fs.cur, ops.MoveInit, dst, src)
}

// copyInto runs typ's copy_init from src into dst. Raises
// LifecycleForbidden if typ disabled Copyable (spec §4.4.3, §7).
func (fs *FuncState) copyInto(typ *term.Term, dst, src ir2.Value) error {
	if typ.Storage() != term.StorageComplex {
		fs.emit(ir2.Instr{Op: ir2.OpStore, Operands: []ir2.Value{dst, src}})
		return nil
	}
	ops, err := fs.resolve(typ)
	if err != nil {
		return err
	}
	if ops.CopyInit == nil {
		return diag.New(diag.LifecycleForbidden, diag.Location{}, diag.MsgLifecycleForbidden, typ.Kind().String(), "copy")
	}
	return fs.emitCallVoid(fs.cur, ops.CopyInit, dst, src)
}
