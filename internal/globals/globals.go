// Package globals implements the demand-driven global-symbol scheduler
// of spec §4.5: a per-global status map, a DFS that lowers a requested
// symbol's body (recursively requesting whatever globals it depends
// on), constant-vs-synthesised-constructor classification of
// initialisers, topological constructor/destructor priority assignment,
// and the base-31 trie-based symbol mangler (§4.5.1, internal/globals
// mangle.go).
//
// Grounded on the teacher's internal/bytecode/compiler_core.go, which
// caches one functionInfo/globalVar slot per declaration and resolves
// forward references lazily; this package generalizes that single-module
// cache into an explicit status machine since spec §4.5 requires cycle
// detection and priority scheduling the teacher's linker never needed.
package globals

import (
	"sort"

	"github.com/cwbudde/irc/internal/diag"
	"github.com/cwbudde/irc/internal/ir2"
	"github.com/cwbudde/irc/internal/lower"
	"github.com/cwbudde/irc/internal/term"
)

// Status is a global's scheduling state (spec §4.5): ready (never
// requested), in-progress (DFS currently lowering it), built (body
// lowered, initialiser/constructor not yet scheduled into priority
// order), built-all (fully scheduled).
type Status int

const (
	StatusReady Status = iota
	StatusInProgress
	StatusBuilt
	StatusBuiltAll
)

// entry is the scheduler's bookkeeping record for one requested global.
type entry struct {
	global      *ir2.Global
	deps        []*term.Term // globals this one's body/initialiser demands
	priority    int
	hasCtorDtor bool // true for a GlobalVariable with a synthesised ctor/dtor, and for a GlobalStatement
}

// Builder schedules and lowers a term.Module's globals into an
// ir2.Module on demand. One Builder owns exactly one output module and
// must not be shared across CompileContexts (spec §5).
type Builder struct {
	ctx  *term.CompileContext
	life lower.Lifecycle

	mangler     *Mangler
	paths       map[*term.Term][]string
	anonCounter int

	status  map[*term.Term]Status
	entries map[*term.Term]*entry

	pending []*term.Term
	queued  map[*term.Term]bool

	Module *ir2.Module
}

// NewBuilder returns a Builder that will populate an ir2.Module named
// moduleName. life supplies the Movable/Copyable sites internal/lower
// needs to lower any function body containing complex-typed locals.
func NewBuilder(ctx *term.CompileContext, life lower.Lifecycle, moduleName string) *Builder {
	return &Builder{
		ctx:     ctx,
		life:    life,
		mangler: NewMangler(),
		paths:   make(map[*term.Term][]string),
		status:  make(map[*term.Term]Status),
		entries: make(map[*term.Term]*entry),
		queued:  make(map[*term.Term]bool),
		Module:  &ir2.Module{Name: moduleName},
	}
}

// Declare records g's logical source-location path (outermost scope
// name first), used by the mangler (spec §4.5.1). Call before the first
// Request(g); an undeclared global mangles from a per-builder counter
// instead, so the scheduler never panics on a missing declaration but
// still never collides two undeclared globals onto the same name.
func (b *Builder) Declare(g *term.Term, path []string) {
	b.paths[g] = path
}

func (b *Builder) pathFor(g *term.Term) []string {
	if p, ok := b.paths[g]; ok {
		return p
	}
	path := []string{"anon" + encodeBase31(b.anonCounter)}
	b.anonCounter++
	return path
}

func describeGlobal(g *term.Term) string {
	switch g.Kind() {
	case term.KindGlobalVariable:
		return g.Data().(*term.GlobalVariableData).Name
	case term.KindFunction:
		return g.Data().(*term.FunctionData).Name
	default:
		return g.Kind().String()
	}
}

// Request demand-schedules g (spec §4.5 "Scheduling"): if g is already
// built this is a no-op; if g is on the current DFS stack this raises
// CircularGlobal; otherwise it lowers g's body (recursively requesting
// whatever data it depends on, and queuing whatever functions it calls)
// and marks it built.
func (b *Builder) Request(g *term.Term) error {
	if err := b.requestOne(g); err != nil {
		return err
	}
	return b.drainPending()
}

// requestOne runs the cycle-checked DFS step for g alone, without
// draining b.pending; callers that recurse into it (via
// scheduleDependencies) leave draining to their outermost Request call.
func (b *Builder) requestOne(g *term.Term) error {
	switch b.status[g] {
	case StatusBuilt, StatusBuiltAll:
		return nil
	case StatusInProgress:
		return diag.New(diag.CircularGlobal, diag.Location{}, diag.MsgCircularGlobal, describeGlobal(g))
	}
	b.status[g] = StatusInProgress
	e, err := b.build(g)
	if err != nil {
		return err
	}
	b.entries[g] = e
	b.status[g] = StatusBuilt
	b.Module.Globals = append(b.Module.Globals, e.global)
	return nil
}

// drainPending resolves every function queued by scheduleDependencies.
// A function is only ever referenced by address at its call sites, so
// queuing (rather than a synchronous requestOne) is what lets direct and
// mutual recursion lower without tripping the CircularGlobal check.
func (b *Builder) drainPending() error {
	for len(b.pending) > 0 {
		fn := b.pending[0]
		b.pending = b.pending[1:]
		if err := b.requestOne(fn); err != nil {
			return err
		}
	}
	return nil
}

// withoutSelf drops self from deps: a global's own address, used as the
// write target of its synthesised constructor/destructor or as the
// callee of a direct recursive call, is not a real scheduling
// dependency and must never reappear in an entry's stored deps (else
// Schedule's priority DFS would flag ordinary recursion as circular).
func withoutSelf(self *term.Term, deps []*term.Term) []*term.Term {
	out := deps[:0:0]
	for _, d := range deps {
		if d != self {
			out = append(out, d)
		}
	}
	return out
}

// scheduleDependencies resolves every global in deps (which must
// already exclude self, see withoutSelf). A KindFunction dependency is
// only ever referenced by address at its call sites, so it is queued
// rather than required synchronously — this is what lets direct and
// mutual function recursion lower without tripping CircularGlobal.
func (b *Builder) scheduleDependencies(deps []*term.Term) error {
	for _, dep := range deps {
		if dep.Kind() == term.KindFunction {
			if !b.queued[dep] && b.status[dep] == StatusReady {
				b.queued[dep] = true
				b.pending = append(b.pending, dep)
			}
			continue
		}
		if err := b.requestOne(dep); err != nil {
			return err
		}
	}
	return nil
}

// build lowers g's body per its kind and returns its scheduler entry.
func (b *Builder) build(g *term.Term) (*entry, error) {
	switch g.Kind() {
	case term.KindFunction:
		return b.buildFunction(g)
	case term.KindGlobalVariable:
		return b.buildVariable(g)
	case term.KindGlobalStatement:
		return b.buildGlobalStatement(g)
	case term.KindExternalGlobal:
		d := g.Data().(term.ExternalGlobalData)
		return &entry{global: &ir2.Global{Name: d.Name, Type: d.Type, Linkage: term.LinkageNone}}, nil
	case term.KindLibrarySymbol:
		d := g.Data().(term.LibrarySymbolData)
		return &entry{global: &ir2.Global{Name: d.Symbol, Type: d.Type, Linkage: term.LinkageNone}}, nil
	default:
		return nil, diag.New(diag.InternalInvariant, diag.Location{}, diag.MsgInternalInvariant,
			"globals.Request called on a non-module-scope term: "+g.Kind().String())
	}
}

func (b *Builder) buildFunction(g *term.Term) (*entry, error) {
	fd := g.Data().(*term.FunctionData)
	name := b.mangler.Mangle(b.pathFor(g), fd.Linkage)
	ir2fn, fs, err := lower.LowerFunction(b.ctx, g, b.life)
	if err != nil {
		return nil, err
	}
	ir2fn.Name = name

	deps := withoutSelf(g, fs.Dependencies())
	if err := b.scheduleDependencies(deps); err != nil {
		return nil, err
	}
	return &entry{
		global: &ir2.Global{Name: name, Type: fd.Type, Linkage: fd.Linkage, Init: ir2fn},
		deps:   deps,
	}, nil
}

// buildVariable classifies g's initialiser per spec §4.5: a value that
// folds to a pure constant lowers directly to a constant-initialised
// global; anything else synthesises a constructor function (and, for a
// complex-typed global, a destructor) run at module load, leaving the
// global's static value undef (represented as a nil Const).
func (b *Builder) buildVariable(g *term.Term) (*entry, error) {
	gd := g.Data().(*term.GlobalVariableData)
	name := b.mangler.Mangle(b.pathFor(g), gd.Linkage)

	if gd.Init == nil {
		return &entry{global: &ir2.Global{Name: name, Type: g.Type(), Linkage: gd.Linkage}}, nil
	}

	deps := map[*term.Term]bool{}
	if err := b.tryConst(gd.Init, deps); err == nil {
		depList := withoutSelf(g, depSlice(deps))
		if err := b.scheduleDependencies(depList); err != nil {
			return nil, err
		}
		return &entry{
			global: &ir2.Global{Name: name, Type: g.Type(), Linkage: gd.Linkage, Const: gd.Init},
			deps:   depList,
		}, nil
	}

	ctorFn, ctorFs, err := b.synthesizeCtor(g, gd)
	if err != nil {
		return nil, err
	}
	deps2 := withoutSelf(g, ctorFs.Dependencies())
	if err := b.scheduleDependencies(deps2); err != nil {
		return nil, err
	}

	out := &ir2.Global{Name: name, Type: g.Type(), Linkage: gd.Linkage, Init: ctorFn}
	if g.Type() != nil && g.Type().Storage() == term.StorageComplex {
		dtorFn, dtorFs, err := b.synthesizeDtor(g)
		if err != nil {
			return nil, err
		}
		out.Fini = dtorFn
		dtorDeps := withoutSelf(g, dtorFs.Dependencies())
		if err := b.scheduleDependencies(dtorDeps); err != nil {
			return nil, err
		}
		deps2 = append(deps2, dtorDeps...)
	}
	return &entry{global: out, deps: deps2, hasCtorDtor: true}, nil
}

// buildGlobalStatement synthesises a nullary void function running
// stmt's effect at module load; it has no associated storage, so it
// never carries a destructor (spec §4.5: a GlobalStatement is a
// top-level effect, not a variable).
func (b *Builder) buildGlobalStatement(g *term.Term) (*entry, error) {
	gsd := g.Data().(term.GlobalStatementData)
	name := b.mangler.Mangle(b.pathFor(g), term.LinkageNone)

	builder := term.NewBuilder(b.ctx)
	body := builder.Block(nil, term.ModeValue, []*term.Term{builder.Statement(gsd.Stmt, term.StatementDestroy)}, nil)
	voidType, err := builder.FunctionType(nil, term.ResultByValue, nil)
	if err != nil {
		return nil, err
	}
	fn := builder.Function(voidType, name+".init", nil, body, term.LinkageNone)
	ctorFn, ctorFs, err := lower.LowerFunction(b.ctx, fn, b.life)
	if err != nil {
		return nil, err
	}

	deps := withoutSelf(fn, ctorFs.Dependencies())
	if err := b.scheduleDependencies(deps); err != nil {
		return nil, err
	}
	return &entry{
		global:      &ir2.Global{Name: name, Linkage: term.LinkageNone, Init: ctorFn},
		deps:        deps,
		hasCtorDtor: true,
	}, nil
}

// synthesizeCtor builds a nullary void function that initialises g's
// storage (starting from undef, per spec §4.5) with gd.Init at module
// load, via the lifecycle protocol's init path rather than an assignment
// (there is no prior value at g to clear or replace).
func (b *Builder) synthesizeCtor(g *term.Term, gd *term.GlobalVariableData) (*ir2.Function, *lower.FuncState, error) {
	builder := term.NewBuilder(b.ctx)
	init := builder.InitializePointer(g, gd.Init)
	body := builder.Block(nil, term.ModeValue, []*term.Term{builder.Statement(init, term.StatementDestroy)}, nil)
	voidType, err := builder.FunctionType(nil, term.ResultByValue, nil)
	if err != nil {
		return nil, nil, err
	}
	ctor := builder.Function(voidType, g.Data().(*term.GlobalVariableData).Name+".ctor", nil, body, term.LinkageNone)
	return lower.LowerFunction(b.ctx, ctor, b.life)
}

// synthesizeDtor builds a nullary void function that finalises g's
// current value at module teardown.
func (b *Builder) synthesizeDtor(g *term.Term) (*ir2.Function, *lower.FuncState, error) {
	builder := term.NewBuilder(b.ctx)
	fin := builder.FinalizePointer(g)
	body := builder.Block(nil, term.ModeValue, []*term.Term{builder.Statement(fin, term.StatementDestroy)}, nil)
	voidType, err := builder.FunctionType(nil, term.ResultByValue, nil)
	if err != nil {
		return nil, nil, err
	}
	dtor := builder.Function(voidType, g.Data().(*term.GlobalVariableData).Name+".dtor", nil, body, term.LinkageNone)
	return lower.LowerFunction(b.ctx, dtor, b.life)
}

// tryConst attempts to fold t into a pure compile-time constant,
// recording any module-scope globals it references along the way.
// Raises NotGlobal the moment it encounters a term shape that cannot be
// represented as a constant (spec §4.5: "a dedicated exception raised
// by the functional-builder callback").
func (b *Builder) tryConst(t *term.Term, deps map[*term.Term]bool) error {
	if t == nil {
		return nil
	}
	switch t.Kind() {
	case term.KindIntegerValue, term.KindStringValue, term.KindDefaultValue:
		return nil
	case term.KindStructValue:
		for _, f := range t.Data().(term.StructValueData).Fields {
			if err := b.tryConst(f, deps); err != nil {
				return err
			}
		}
		return nil
	case term.KindArrayValue:
		for _, e := range t.Data().(term.ArrayValueData).Elements {
			if err := b.tryConst(e, deps); err != nil {
				return err
			}
		}
		return nil
	case term.KindUnionValue:
		return b.tryConst(t.Data().(term.UnionValueData).Value, deps)
	case term.KindMovableValue:
		return b.tryConst(t.Data().(term.MovableValueData).Value, deps)
	case term.KindPointerTo:
		// Taking a global's address is always a link-time constant,
		// regardless of whether its own initialiser folds to one.
		return b.tryConstAddress(t.Data().(term.PointerToData).Target, deps)
	case term.KindGlobalVariable:
		// Reading another variable's value (as opposed to its address)
		// is only a constant if that variable is itself one; request it
		// first so its own classification is settled.
		if err := b.requestOne(t); err != nil {
			return err
		}
		e := b.entries[t]
		if e == nil || e.global.Const == nil {
			return diag.New(diag.NotGlobal, diag.Location{}, diag.MsgNotGlobal, t.Kind().String())
		}
		deps[t] = true
		return nil
	case term.KindFunction, term.KindExternalGlobal, term.KindLibrarySymbol:
		deps[t] = true
		return nil
	default:
		return diag.New(diag.NotGlobal, diag.Location{}, diag.MsgNotGlobal, t.Kind().String())
	}
}

// tryConstAddress classifies the target of a PointerTo: any module-scope
// symbol has a link-time-known address, so address-of is always a
// constant even when the target's own value is dynamically initialised.
func (b *Builder) tryConstAddress(t *term.Term, deps map[*term.Term]bool) error {
	switch t.Kind() {
	case term.KindGlobalVariable, term.KindFunction, term.KindExternalGlobal, term.KindLibrarySymbol:
		deps[t] = true
		return nil
	default:
		return diag.New(diag.NotGlobal, diag.Location{}, diag.MsgNotGlobal, t.Kind().String())
	}
}

func depSlice(deps map[*term.Term]bool) []*term.Term {
	out := make([]*term.Term, 0, len(deps))
	for d := range deps {
		out = append(out, d)
	}
	return out
}

// Schedule topologically orders every requested global that carries a
// constructor (Init) or destructor (Fini) by its dependency edges,
// assigning priority = 1 + max(dependency priorities), and populates
// Module.Constructors (ascending) and Module.Destructors (descending)
// (spec §4.5 "After all bodies are lowered..."). A dependency cycle
// among constructor-bearing globals raises CircularGlobal.
func (b *Builder) Schedule() error {
	visiting := make(map[*term.Term]bool)
	done := make(map[*term.Term]bool)

	var visit func(g *term.Term) (int, error)
	visit = func(g *term.Term) (int, error) {
		e, ok := b.entries[g]
		if !ok {
			return 0, nil // an external/library symbol: no priority of its own
		}
		if done[g] {
			return e.priority, nil
		}
		if visiting[g] {
			return 0, diag.New(diag.CircularGlobal, diag.Location{}, diag.MsgCircularGlobal, describeGlobal(g))
		}
		visiting[g] = true
		best := 0
		for _, dep := range e.deps {
			// A called function has no load-time side effect of its own
			// (only a variable's ctor/dtor does), so it never contributes
			// to priority; skipping it also keeps (mutually) recursive
			// functions from looping this DFS.
			if dep.Kind() == term.KindFunction {
				continue
			}
			p, err := visit(dep)
			if err != nil {
				return 0, err
			}
			if p+1 > best {
				best = p + 1
			}
		}
		visiting[g] = false
		done[g] = true
		e.priority = best
		e.global.Priority = best
		return best, nil
	}

	var ctorBearing []*term.Term
	for g, e := range b.entries {
		if e.hasCtorDtor {
			ctorBearing = append(ctorBearing, g)
		}
	}
	for _, g := range ctorBearing {
		if _, err := visit(g); err != nil {
			return err
		}
		b.status[g] = StatusBuiltAll
	}

	sort.SliceStable(ctorBearing, func(i, j int) bool {
		return b.entries[ctorBearing[i]].priority < b.entries[ctorBearing[j]].priority
	})
	for _, g := range ctorBearing {
		b.Module.Constructors = append(b.Module.Constructors, b.entries[g].global)
	}

	var dtorBearing []*term.Term
	for g, e := range b.entries {
		if e.global.Fini != nil {
			dtorBearing = append(dtorBearing, g)
		}
	}
	sort.SliceStable(dtorBearing, func(i, j int) bool {
		return b.entries[dtorBearing[i]].priority > b.entries[dtorBearing[j]].priority
	})
	for _, g := range dtorBearing {
		b.Module.Destructors = append(b.Module.Destructors, b.entries[g].global)
	}
	return nil
}
