package lower

import (
	"github.com/cwbudde/irc/internal/ir2"
	"github.com/cwbudde/irc/internal/term"
)

// LowerFunction converts fn (a KindFunction term) into an ir2.Function,
// binding each parameter to a fresh entry-block value and lowering the
// body per spec §4.4. life supplies the Movable/Copyable interface sites
// the lifecycle protocol (§4.4.3) queries for complex-typed values.
func LowerFunction(ctx *term.CompileContext, fn *term.Term, life Lifecycle) (*ir2.Function, *FuncState, error) {
	fnData := fn.Data().(*term.FunctionData)
	fnType := fnData.Type.Data().(term.FunctionTypeData)

	params := make([]ir2.Param, len(fnData.Params))
	ir2fn := ir2.NewFunction(fnData.Name, nil, fnType.ResultType)
	fs := newFuncState(ctx, ir2fn, life)

	for i, anon := range fnData.Params {
		kind := ir2.ValueRegister
		if fnType.Params[i].Mode == term.ParamOutput || fnType.Params[i].Mode == term.ParamIO {
			kind = ir2.ValueSlot
		}
		v := fs.fresh(kind, anon.Type())
		fs.scope[anon] = v
		params[i] = ir2.Param{Value: v, Mode: fnType.Params[i].Mode}
	}
	ir2fn.Params = params

	if fnData.Body == nil {
		return ir2fn, fs, nil // external/declared-only function: no body to lower
	}

	result, err := fs.lowerValue(fnData.Body)
	if err != nil {
		return nil, nil, err
	}
	if fs.cur.Term == nil {
		if err := fs.unwindTo(fs.cur, 0, false); err != nil {
			return nil, nil, err
		}
		fs.cur.Term = &ir2.Terminator{Kind: ir2.TermReturn, ReturnVal: &result}
	}
	return ir2fn, fs, nil
}

// lowerValue lowers t, a term appearing in value (not address) position,
// to an ir2.Value in the current block.
func (fs *FuncState) lowerValue(t *term.Term) (ir2.Value, error) {
	switch t.Kind() {
	case term.KindAnonymous:
		v, ok := fs.scope[t]
		if !ok {
			return ir2.Value{}, internalError("Anonymous referenced outside its binding scope")
		}
		return v, nil

	case term.KindBlock:
		return fs.lowerBlock(t)
	case term.KindIfThenElse:
		return fs.lowerIfThenElse(t)
	case term.KindJumpGroup:
		return fs.lowerJumpGroup(t)
	case term.KindJumpTo:
		return fs.lowerJumpTo(t)
	case term.KindTryFinally:
		return fs.lowerTryFinally(t)
	case term.KindFunctionCall:
		return fs.lowerFunctionCall(t)
	case term.KindFunctionalEvaluate:
		return fs.lowerValue(t.Data().(term.FunctionalEvaluateData).Inner)
	case term.KindIntroduceImplementation:
		return fs.lowerIntroduceImplementation(t)
	case term.KindInitializePointer:
		return fs.lowerInitializePointer(t)
	case term.KindFinalizePointer:
		return ir2.Value{}, fs.lowerFinalizePointer(t)
	case term.KindAssignPointer:
		return fs.lowerAssignPointer(t)
	case term.KindGlobalVariable, term.KindFunction, term.KindExternalGlobal, term.KindLibrarySymbol:
		fs.noteDependency(t)
		return fs.lowerAddress(t)
	default:
		// Any other pure term (constants, pointer/type constructors,
		// address arithmetic) evaluates directly into a register; IR2
		// treats its internal shape as opaque beyond the block graph
		// (spec §6: "a body instruction graph").
		if !t.Pure() {
			return ir2.Value{}, internalError("non-pure term has no dedicated lowering rule: " + t.Kind().String())
		}
		dst := fs.fresh(ir2.ValueRegister, t.Type())
		fs.emit(ir2.Instr{Op: ir2.OpFunctional, Dst: dst, Type: t.Type(), Source: t})
		return dst, nil
	}
}

// lowerAddress lowers t to the address of its storage (used for a
// FunctionCall callee, and for module-scope symbol references).
func (fs *FuncState) lowerAddress(t *term.Term) (ir2.Value, error) {
	switch t.Kind() {
	case term.KindGlobalVariable, term.KindFunction, term.KindExternalGlobal, term.KindLibrarySymbol:
		fs.noteDependency(t)
		dst := fs.fresh(ir2.ValueSlot, t.Type())
		fs.emit(ir2.Instr{Op: ir2.OpFunctional, Dst: dst, Type: t.Type(), Source: t})
		return dst, nil
	case term.KindAnonymous:
		v, ok := fs.scope[t]
		if !ok {
			return ir2.Value{}, internalError("Anonymous referenced outside its binding scope")
		}
		return v, nil
	default:
		return fs.lowerValue(t)
	}
}

// lowerBlock lowers a Block per spec §4.4.2: bind each statement
// according to its StatementMode, then lower the tail, then unwind
// cleanups pushed inside this block back to its entry depth.
func (fs *FuncState) lowerBlock(t *term.Term) (ir2.Value, error) {
	bd := t.Data().(term.BlockData)
	entryDepth := len(fs.cleanups)

	for _, stmt := range bd.Statements {
		sd := stmt.Data().(term.StatementData)
		v, err := fs.lowerValue(sd.Value)
		if err != nil {
			return ir2.Value{}, err
		}
		switch sd.StmtMode {
		case term.StatementFunctional, term.StatementRef:
			fs.scope[stmt] = v
		case term.StatementValue:
			slot := fs.fresh(ir2.ValueSlot, sd.Value.Type())
			fs.emit(ir2.Instr{Op: ir2.OpAlloca, Dst: slot, Type: sd.Value.Type()})
			if err := fs.initValue(sd.Value.Type(), slot); err != nil {
				return ir2.Value{}, err
			}
			if err := fs.moveInto(sd.Value.Type(), slot, v); err != nil {
				return ir2.Value{}, err
			}
			fs.scope[stmt] = slot
		case term.StatementDestroy:
			// value discarded; any cleanup it required has already been
			// pushed by lowerValue and will run at block exit below.
		}
		if sd.Value.IsBottom() {
			return ir2.Value{}, nil // unreachable tail: block itself is bottom
		}
	}

	var result ir2.Value
	if bd.Tail != nil {
		v, err := fs.lowerValue(bd.Tail)
		if err != nil {
			return ir2.Value{}, err
		}
		result = v
	}

	if err := fs.unwindTo(fs.cur, entryDepth, false); err != nil {
		return ir2.Value{}, err
	}
	fs.cleanups = fs.cleanups[:entryDepth]
	return result, nil
}

// lowerIfThenElse lowers a conditional per spec §4.4.2: branch to two
// fresh blocks, lower each arm, then merge.
func (fs *FuncState) lowerIfThenElse(t *term.Term) (ir2.Value, error) {
	d := t.Data().(term.IfThenElseData)
	cond, err := fs.lowerValue(d.Cond)
	if err != nil {
		return ir2.Value{}, err
	}
	thenBlk := fs.newBlock("if.then")
	elseBlk := fs.newBlock("if.else")
	joinBlk := fs.newBlock("if.join")
	fs.cur.Term = &ir2.Terminator{Kind: ir2.TermCondBranch, Cond: cond, Then: thenBlk, Else: elseBlk}

	var arms []arm
	fs.switchTo(thenBlk)
	if thenVal, err := fs.lowerValue(d.Then); err != nil {
		return ir2.Value{}, err
	} else if !d.Then.IsBottom() {
		exit := fs.cur
		exit.Term = &ir2.Terminator{Kind: ir2.TermBranch, Then: joinBlk}
		arms = append(arms, arm{block: exit, value: thenVal, mode: d.Then.Mode()})
	}

	fs.switchTo(elseBlk)
	if elseVal, err := fs.lowerValue(d.Else); err != nil {
		return ir2.Value{}, err
	} else if !d.Else.IsBottom() {
		exit := fs.cur
		exit.Term = &ir2.Terminator{Kind: ir2.TermBranch, Then: joinBlk}
		arms = append(arms, arm{block: exit, value: elseVal, mode: d.Else.Mode()})
	}

	return fs.joinArms(arms, t.Type(), joinBlk)
}

// lowerJumpGroup allocates the merge point for every JumpTarget entry
// (a shared stack slot for by-value arguments, a phi otherwise per spec
// §4.4.2), lowers the init expression and every entry body, then joins.
func (fs *FuncState) lowerJumpGroup(t *term.Term) (ir2.Value, error) {
	d := t.Data().(term.JumpGroupData)
	joinBlk := fs.newBlock("jump.join")
	entryDepth := len(fs.cleanups)

	var sharedSlot *ir2.Value
	needsSlot := false
	for _, e := range d.Entries {
		td := e.Target.Data().(term.JumpTargetData)
		if td.ArgMode == term.ResultByValue && td.ArgType != nil && td.ArgType.Storage() == term.StorageComplex {
			needsSlot = true
		}
	}
	if needsSlot {
		slot := fs.fresh(ir2.ValueSlot, t.Type())
		fs.switchTo(fs.fn.Entry)
		fs.emit(ir2.Instr{Op: ir2.OpAlloca, Dst: slot, Type: t.Type()})
		sharedSlot = &slot
	}

	for _, e := range d.Entries {
		td := e.Target.Data().(term.JumpTargetData)
		blk := fs.newBlock("jump.entry")
		fs.jumps[e.Target] = &jumpInfo{block: blk, argMode: td.ArgMode, slot: sharedSlot, cleanupDepth: entryDepth}
	}

	initVal, err := fs.lowerValue(d.Init)
	if err != nil {
		return ir2.Value{}, err
	}

	var arms []arm
	if !d.Init.IsBottom() {
		exit := fs.cur
		exit.Term = &ir2.Terminator{Kind: ir2.TermBranch, Then: joinBlk}
		arms = append(arms, arm{block: exit, value: initVal, mode: d.Init.Mode()})
	}
	for _, e := range d.Entries {
		ji := fs.jumps[e.Target]
		fs.switchTo(ji.block)
		v, err := fs.lowerValue(e.Body)
		if err != nil {
			return ir2.Value{}, err
		}
		if !e.Body.IsBottom() {
			exit := fs.cur
			exit.Term = &ir2.Terminator{Kind: ir2.TermBranch, Then: joinBlk}
			arms = append(arms, arm{block: exit, value: v, mode: e.Body.Mode()})
		}
	}

	for _, e := range d.Entries {
		delete(fs.jumps, e.Target)
	}
	if sharedSlot != nil {
		// The shared argument slot is also the group's merge slot.
		for _, a := range arms {
			fs.switchTo(a.block)
			if err := fs.initValue(t.Type(), *sharedSlot); err != nil {
				return ir2.Value{}, err
			}
			if err := fs.moveInto(t.Type(), *sharedSlot, a.value); err != nil {
				return ir2.Value{}, err
			}
		}
		fs.switchTo(joinBlk)
		return *sharedSlot, nil
	}
	return fs.joinArms(arms, t.Type(), joinBlk)
}

// lowerJumpTo materialises arg into the target's argument slot (for a
// by-value entry, via the lifecycle protocol) or passes it through
// directly (functional/lvalue/rvalue), runs cleanups down to the
// target's depth, then emits the branch (spec §4.4.2).
func (fs *FuncState) lowerJumpTo(t *term.Term) (ir2.Value, error) {
	d := t.Data().(term.JumpToData)
	ji, ok := fs.jumps[d.Target]
	if !ok {
		return ir2.Value{}, internalError("JumpTo target not registered by an enclosing JumpGroup")
	}

	argVal, err := fs.lowerValue(d.Arg)
	if err != nil {
		return ir2.Value{}, err
	}

	if ji.argMode == term.ResultByValue && ji.slot != nil {
		if err := fs.initValue(d.Arg.Type(), *ji.slot); err != nil {
			return ir2.Value{}, err
		}
		if err := fs.moveInto(d.Arg.Type(), *ji.slot, argVal); err != nil {
			return ir2.Value{}, err
		}
		argVal = *ji.slot
	}

	if err := fs.unwindTo(fs.cur, ji.cleanupDepth, false); err != nil {
		return ir2.Value{}, err
	}
	fs.cur.Term = &ir2.Terminator{Kind: ir2.TermJumpTo, Target: ji.block, JumpArg: &argVal}
	return ir2.Value{}, nil
}

// lowerTryFinally pushes a finally cleanup, lowers the try body, then
// pops and runs the cleanup inline on the normal-exit path (spec
// §4.4.2).
func (fs *FuncState) lowerTryFinally(t *term.Term) (ir2.Value, error) {
	d := t.Data().(term.TryFinallyData)
	kind := CleanupNormal
	if d.ExceptionOnly {
		kind = CleanupExceptionOnly
	}
	fs.pushCleanup(Cleanup{Kind: kind, Emit: func(fs *FuncState, blk *ir2.Block) error {
		saved := fs.cur
		fs.cur = blk
		_, err := fs.lowerValue(d.Finally)
		fs.cur = saved
		return err
	}})
	v, err := fs.lowerValue(d.Try)
	if err != nil {
		return ir2.Value{}, err
	}
	if !d.Try.IsBottom() {
		if err := fs.unwindTo(fs.cur, len(fs.cleanups)-1, false); err != nil {
			return ir2.Value{}, err
		}
	}
	fs.popCleanup()
	return v, nil
}

// lowerIntroduceImplementation pushes d.Implementations onto the ambient
// active-implementation list for the duration of lowering d.Body, then
// pops them (spec §4.6): while this list is non-empty, every lifecycle
// lookup passes it as dispatch.Lookup's extraContext (see
// internal/lower/lifecycle.go), so the introduced implementations join
// the site's own values as candidates. They take no precedence over
// those values: the most specific match wins, and an equally specific
// site value makes the lookup ambiguous.
func (fs *FuncState) lowerIntroduceImplementation(t *term.Term) (ir2.Value, error) {
	d := t.Data().(term.IntroduceImplementationData)
	depth := len(fs.activeImpls)
	fs.activeImpls = append(fs.activeImpls, d.Implementations...)
	v, err := fs.lowerValue(d.Body)
	fs.activeImpls = fs.activeImpls[:depth]
	if err != nil {
		return ir2.Value{}, err
	}
	return v, nil
}

// lowerFunctionCall lowers callee and every argument, spilling
// register-typed by-value arguments to a fresh stack slot that is freed
// again right after the call (no cleanup entry is pushed for it), and
// passing a destination slot as an implicit trailing argument for
// complex-by-value results (spec §4.4.2).
func (fs *FuncState) lowerFunctionCall(t *term.Term) (ir2.Value, error) {
	d := t.Data().(term.FunctionCallData)
	callee, err := fs.lowerAddress(d.Callee)
	if err != nil {
		return ir2.Value{}, err
	}

	operands := make([]ir2.Value, 0, len(d.Args)+1)
	var spilled []ir2.Value
	for _, a := range d.Args {
		v, err := fs.lowerValue(a)
		if err != nil {
			return ir2.Value{}, err
		}
		if a.Type() != nil && a.Type().Storage() == term.StoragePrimitive && a.Mode() == term.ModeValue {
			slot := fs.fresh(ir2.ValueSlot, a.Type())
			fs.emit(ir2.Instr{Op: ir2.OpAlloca, Dst: slot, Type: a.Type()})
			if err := fs.moveInto(a.Type(), slot, v); err != nil {
				return ir2.Value{}, err
			}
			spilled = append(spilled, slot)
			v = slot
		}
		operands = append(operands, v)
	}

	// The call is the spilled slots' entire lifetime: free them
	// immediately after, rather than leaving them on the enclosing
	// scope's cleanup stack (spec §4.4.1's stack discipline applies to
	// every alloca, not only lexically-scoped locals).
	freeSpills := func() {
		for _, s := range spilled {
			fs.emit(ir2.Instr{Op: ir2.OpFreeAlloc, Operands: []ir2.Value{s}})
		}
	}

	if t.Type() != nil && t.Type().Storage() == term.StorageComplex {
		sret := fs.fresh(ir2.ValueSlot, t.Type())
		fs.emit(ir2.Instr{Op: ir2.OpAlloca, Dst: sret, Type: t.Type()})
		operands = append(operands, sret)
		fs.emit(ir2.Instr{Op: ir2.OpCall, Callee: callee, Operands: operands, Source: t})
		freeSpills()
		return sret, nil
	}

	dst := fs.fresh(ir2.ValueRegister, t.Type())
	fs.emit(ir2.Instr{Op: ir2.OpCall, Dst: dst, Callee: callee, Operands: operands, Source: t})
	freeSpills()
	return dst, nil
}

func (fs *FuncState) lowerInitializePointer(t *term.Term) (ir2.Value, error) {
	d := t.Data().(term.InitializePointerData)
	ptr, err := fs.lowerAddress(d.Pointer)
	if err != nil {
		return ir2.Value{}, err
	}
	val, err := fs.lowerValue(d.Value)
	if err != nil {
		return ir2.Value{}, err
	}
	typ := d.Value.Type()
	if err := fs.initValue(typ, ptr); err != nil {
		return ir2.Value{}, err
	}
	return ir2.Value{}, fs.moveInto(typ, ptr, val)
}

func (fs *FuncState) lowerFinalizePointer(t *term.Term) error {
	d := t.Data().(term.FinalizePointerData)
	ptr, err := fs.lowerAddress(d.Pointer)
	if err != nil {
		return err
	}
	typ := d.Pointer.Type()
	ops, err := fs.resolve(typ)
	if err != nil {
		return err
	}
	return fs.emitCallVoid(fs.cur, ops.Fini, ptr)
}

func (fs *FuncState) lowerAssignPointer(t *term.Term) (ir2.Value, error) {
	d := t.Data().(term.AssignPointerData)
	ptr, err := fs.lowerAddress(d.Pointer)
	if err != nil {
		return ir2.Value{}, err
	}
	val, err := fs.lowerValue(d.Value)
	if err != nil {
		return ir2.Value{}, err
	}
	return ir2.Value{}, fs.copyInto(d.Value.Type(), ptr, val)
}
