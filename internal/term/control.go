package term

// This file implements the control-flow and effect subkinds of spec §3.
// Unlike the pure constructors in types.go/values.go, every constructor
// here allocates a fresh identity node: "equal inputs yield distinct
// nodes" (spec §4.1).

// StatementMode classifies how a Block binds one of its statements
// (spec §4.4.2).
type StatementMode int

const (
	StatementFunctional StatementMode = iota
	StatementRef
	StatementValue
	StatementDestroy
)

// BlockData is the payload of a KindBlock term.
type BlockData struct {
	Statements []*Term
	Tail       *Term
}

// StatementData is the payload of a KindStatement term.
type StatementData struct {
	StmtMode StatementMode
	Value    *Term
}

// IfThenElseData is the payload of a KindIfThenElse term.
type IfThenElseData struct{ Cond, Then, Else *Term }

// JumpEntry is one entry of a JumpGroup: an expression to evaluate when
// control reaches this entry of the group.
type JumpEntry struct {
	Target *Term // the JumpTarget this entry feeds
	Body   *Term
}

// JumpGroupData is the payload of a KindJumpGroup term.
type JumpGroupData struct {
	Init    *Term
	Entries []JumpEntry
}

// JumpTargetData is the payload of a KindJumpTarget term: a labelled
// multi-entry point with one argument slot.
type JumpTargetData struct {
	ArgType *Term
	ArgMode ResultMode
}

// JumpToData is the payload of a KindJumpTo term.
type JumpToData struct {
	Target *Term
	Arg    *Term
}

// TryFinallyData is the payload of a KindTryFinally term.
type TryFinallyData struct {
	Try           *Term
	Finally       *Term
	ExceptionOnly bool
}

// InitializePointerData is the payload of a KindInitializePointer term.
type InitializePointerData struct {
	Pointer *Term
	Value   *Term
}

// FinalizePointerData is the payload of a KindFinalizePointer term.
type FinalizePointerData struct{ Pointer *Term }

// AssignPointerData is the payload of a KindAssignPointer term.
type AssignPointerData struct {
	Pointer *Term
	Value   *Term
}

// FunctionCallData is the payload of a KindFunctionCall term.
type FunctionCallData struct {
	Callee *Term
	Args   []*Term
}

// IntroduceImplementationData is the payload of a
// KindIntroduceImplementation term: Implementations (each a KindImplementation
// term) are extra lookup candidates for the duration of lowering Body
// (spec §4.6); see IntroduceImplementation.
type IntroduceImplementationData struct {
	Implementations []*Term
	Body            *Term
}

// FunctionalEvaluateData is the payload of a KindFunctionalEvaluate term:
// an effect-tree boundary wrapping a pure sub-evaluation (used when a
// macro/evaluate-context must be invoked but its result is otherwise
// pure; spec §6 "Macro evaluator").
type FunctionalEvaluateData struct{ Inner *Term }

// Block constructs a fresh block whose type is resultType exactly as the
// caller supplies it. Neither this constructor nor the lowerer derives
// the block's type from its tail; nothing applies Anonymize to it.
func (b *Builder) Block(resultType *Term, mode Mode, statements []*Term, tail *Term) *Term {
	bottom := tail != nil && tail.IsBottom()
	for _, s := range statements {
		if s.IsBottom() {
			bottom = true
		}
	}
	m := mode
	if bottom {
		m = ModeBottom
	}
	t := &Term{kind: KindBlock, typ: resultType, mode: m, pure: false,
		data: BlockData{Statements: append([]*Term(nil), statements...), Tail: tail}}
	return b.freshIdentity(t)
}

// Statement binds value under mode within an enclosing Block.
func (b *Builder) Statement(value *Term, mode StatementMode) *Term {
	t := &Term{kind: KindStatement, typ: value.typ, mode: value.mode, pure: false,
		data: StatementData{StmtMode: mode, Value: value}}
	return b.freshIdentity(t)
}

// IfThenElse constructs a fresh conditional. Its mode is bottom only if
// both arms are bottom (bottom is absorbing only in strict positions;
// a conditional is not strict in both of its arms).
func (b *Builder) IfThenElse(resultType *Term, cond, then, els *Term) *Term {
	mode := ModeValue
	if then.IsBottom() && els.IsBottom() {
		mode = ModeBottom
	}
	t := &Term{kind: KindIfThenElse, typ: resultType, mode: mode, pure: false,
		data: IfThenElseData{Cond: cond, Then: then, Else: els}}
	return b.freshIdentity(t)
}

// JumpTarget declares a fresh labelled multi-entry point accepting one
// argument of argType under argMode.
func (b *Builder) JumpTarget(argType *Term, argMode ResultMode) *Term {
	t := &Term{kind: KindJumpTarget, typ: argType, mode: ModeValue, pure: false,
		data: JumpTargetData{ArgType: argType, ArgMode: argMode}}
	return b.freshIdentity(t)
}

// JumpGroup constructs a fresh jump group whose type is resultType as the
// caller supplies it. internal/lower merges the init expression and the
// entries by storage class (§4.4.4) but takes this type as given; it does
// not compute a type of its own.
func (b *Builder) JumpGroup(resultType *Term, init *Term, entries []JumpEntry) *Term {
	t := &Term{kind: KindJumpGroup, typ: resultType, mode: ModeValue, pure: false,
		data: JumpGroupData{Init: init, Entries: append([]JumpEntry(nil), entries...)}}
	return b.freshIdentity(t)
}

// JumpTo constructs a fresh transfer of control to target carrying arg.
func (b *Builder) JumpTo(target *Term, arg *Term) *Term {
	t := &Term{kind: KindJumpTo, typ: nil, mode: ModeBottom, pure: false,
		data: JumpToData{Target: target, Arg: arg}}
	return b.freshIdentity(t)
}

// TryFinally constructs a fresh try/finally. exceptionOnly marks the
// finally cleanup as running only on the exceptional exit path.
func (b *Builder) TryFinally(try, finally *Term, exceptionOnly bool) *Term {
	t := &Term{kind: KindTryFinally, typ: try.typ, mode: try.mode, pure: false,
		data: TryFinallyData{Try: try, Finally: finally, ExceptionOnly: exceptionOnly}}
	return b.freshIdentity(t)
}

// InitializePointer constructs a fresh in-place construction of value at
// pointer's target, per the lifecycle protocol (spec §4.4.3).
func (b *Builder) InitializePointer(pointer, value *Term) *Term {
	t := &Term{kind: KindInitializePointer, typ: nil, mode: ModeValue, pure: false,
		data: InitializePointerData{Pointer: pointer, Value: value}}
	return b.freshIdentity(t)
}

// FinalizePointer constructs a fresh destructor call at pointer's target.
func (b *Builder) FinalizePointer(pointer *Term) *Term {
	t := &Term{kind: KindFinalizePointer, typ: nil, mode: ModeValue, pure: false,
		data: FinalizePointerData{Pointer: pointer}}
	return b.freshIdentity(t)
}

// AssignPointer constructs a fresh non-initializing assignment of value
// into pointer's target (invokes move/copy per spec §4.4.3, not init).
func (b *Builder) AssignPointer(pointer, value *Term) *Term {
	t := &Term{kind: KindAssignPointer, typ: nil, mode: ModeValue, pure: false,
		data: AssignPointerData{Pointer: pointer, Value: value}}
	return b.freshIdentity(t)
}

// FunctionCall constructs a fresh call of callee (must be an lref to a
// function pointer, enforced by the lowerer) with args.
func (b *Builder) FunctionCall(resultType *Term, resultMode Mode, callee *Term, args []*Term) *Term {
	mode := resultMode
	if callee.IsBottom() {
		mode = ModeBottom
	}
	for _, a := range args {
		if a.IsBottom() {
			mode = ModeBottom
		}
	}
	t := &Term{kind: KindFunctionCall, typ: resultType, mode: mode, pure: false,
		data: FunctionCallData{Callee: callee, Args: append([]*Term(nil), args...)}}
	return b.freshIdentity(t)
}

// FunctionalEvaluate wraps inner (a pure term produced by invoking a
// macro/evaluate-context) as an effect-tree boundary node.
func (b *Builder) FunctionalEvaluate(inner *Term) *Term {
	t := &Term{kind: KindFunctionalEvaluate, typ: inner.typ, mode: inner.mode, pure: false,
		data: FunctionalEvaluateData{Inner: inner}}
	return b.freshIdentity(t)
}

// IntroduceImplementation wraps body so that, for the duration of lowering
// it, implementations are lookup candidates alongside the site's own
// values (spec §4.6). They take no precedence over those values: the most
// specific match wins, and an equally specific site value makes the
// lookup ambiguous.
func (b *Builder) IntroduceImplementation(implementations []*Term, body *Term) *Term {
	t := &Term{kind: KindIntroduceImplementation, typ: body.typ, mode: body.mode, pure: false,
		data: IntroduceImplementationData{
			Implementations: append([]*Term(nil), implementations...),
			Body:            body,
		}}
	return b.freshIdentity(t)
}
