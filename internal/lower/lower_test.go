package lower

import (
	"fmt"
	"strings"
	"testing"

	"github.com/cwbudde/irc/internal/ir2"
	"github.com/cwbudde/irc/internal/term"
)

func newLifecycle(b *term.Builder, metatype *term.Term) Lifecycle {
	wildcard := b.Parameter(metatype, 0, 0)
	movable := b.Interface("Movable", 1, []*term.Term{wildcard})
	wildcard2 := b.Parameter(metatype, 0, 0)
	copyable := b.Interface("Copyable", 1, []*term.Term{wildcard2})
	return Lifecycle{Movable: movable, Copyable: copyable}
}

// registerComplex attaches Movable (and optionally Copyable) witnesses
// for typ, keyed by a no-op *term.Function standing in for each lifecycle
// entry point (the test never executes these; it only checks that
// lowering calls the right one at the right point).
func registerComplex(b *term.Builder, life Lifecycle, typ *term.Term) *Ops {
	fn := func(name string) *term.Term {
		voidFn, _ := b.FunctionType(nil, term.ResultByValue, nil)
		return b.Function(voidFn, name, nil, nil, term.LinkageNone)
	}
	ops := &Ops{
		Init: fn("init"), Fini: fn("fini"), Clear: fn("clear"),
		Move: fn("move"), MoveInit: fn("move_init"),
		Copy: fn("copy"), CopyInit: fn("copy_init"),
	}
	// Attached directly to the Movable/Copyable sites (module scope), so
	// Static rather than dynamic, per spec §4.6.
	b.Implementation(life.Movable, 0, []*term.Term{typ}, nil, true, ops)
	b.Implementation(life.Copyable, 0, []*term.Term{typ}, nil, true, ops)
	return ops
}

// TestLowerIdentityFunction covers spec §8 scenario 1: the identity
// function λ(x: i32).x, built directly at i32, lowers with no allocas
// and a single return of the parameter.
func TestLowerIdentityFunction(t *testing.T) {
	ctx := term.NewCompileContext()
	b := term.NewBuilder(ctx)
	i32 := b.Primitive("i32")
	metatype := b.Metatype()
	life := newLifecycle(b, metatype)

	x := b.Anonymous(i32, term.ModeValue, "x")
	fnType, err := b.FunctionType([]term.FunctionParam{{Type: i32, Mode: term.ParamFunctional}}, term.ResultFunctional, i32)
	if err != nil {
		t.Fatalf("FunctionType: %v", err)
	}
	fn := b.Function(fnType, "identity", []*term.Term{x}, x, term.LinkageNone)

	ir2fn, _, err := LowerFunction(ctx, fn, life)
	if err != nil {
		t.Fatalf("LowerFunction: %v", err)
	}
	if len(ir2fn.Blocks) != 1 {
		t.Fatalf("expected a single block, got %d", len(ir2fn.Blocks))
	}
	for _, in := range ir2fn.Entry.Instr {
		if in.Op == ir2.OpAlloca {
			t.Fatalf("identity function must not allocate any stack slots")
		}
	}
	if ir2fn.Entry.Term == nil || ir2fn.Entry.Term.Kind != ir2.TermReturn {
		t.Fatalf("expected the entry block to end in a return")
	}
	if ir2fn.Entry.Term.ReturnVal.ID != ir2fn.Params[0].Value.ID {
		t.Fatalf("expected the return value to be the parameter unchanged")
	}
}

// TestLowerStructDestructorOrder covers spec §8 scenario 2: a block
// that constructs two complex-typed locals must destroy them in reverse
// construction order on the exit path.
func TestLowerStructDestructorOrder(t *testing.T) {
	ctx := term.NewCompileContext()
	b := term.NewBuilder(ctx)
	metatype := b.Metatype()
	life := newLifecycle(b, metatype)

	complexT := b.StructType("Complex", []term.Member{{Name: "payload", Type: b.Primitive("i64")}})
	// Force storage=complex for the test type directly: StructType's
	// automatic rule only marks a struct complex if a member already is,
	// so build a one-member wrapper over a type we mark complex via a
	// GenericType shell (the only constructor in internal/term that lets
	// a caller assert storage=complex directly).
	wrapper := b.NewGenericType("ComplexBox", nil, true)
	b.SetBody(wrapper, func(self *term.Term, params []*term.Term) (*term.Term, error) {
		return complexT, nil
	})
	complexBoxed := b.TypeInstance(wrapper, nil)
	ops := registerComplex(b, life, complexBoxed)

	ctor := b.DefaultValue(complexBoxed)
	s1 := b.Statement(ctor, term.StatementValue)
	s2 := b.Statement(ctor, term.StatementValue)
	blk := b.Block(nil, term.ModeValue, []*term.Term{s1, s2}, nil)

	fnType, err := b.FunctionType(nil, term.ResultByValue, nil)
	if err != nil {
		t.Fatalf("FunctionType: %v", err)
	}
	fn := b.Function(fnType, "make_two", nil, blk, term.LinkageNone)

	ir2fn, _, err := LowerFunction(ctx, fn, life)
	if err != nil {
		t.Fatalf("LowerFunction: %v", err)
	}

	var finiCalls []ir2.Value
	for _, in := range ir2fn.Entry.Instr {
		if in.Op == ir2.OpCall && in.Source == ops.Fini {
			finiCalls = append(finiCalls, in.Operands[0])
		}
	}
	if len(finiCalls) != 2 {
		t.Fatalf("expected 2 destructor calls, got %d", len(finiCalls))
	}
	// Construction order is s1's slot then s2's slot (lower ids allocated
	// first); destructor order must be reversed: s2 then s1.
	if !(finiCalls[0].ID > finiCalls[1].ID) {
		t.Fatalf("expected destructors to run in reverse construction order, got ids %v", finiCalls)
	}
}

// TestLowerJumpGroupUnionSlot covers spec §8 scenario 5: when any entry
// of a jump group carries a complex-typed by-value argument, every entry
// of that group shares one stack slot rather than allocating one per
// target.
func TestLowerJumpGroupUnionSlot(t *testing.T) {
	ctx := term.NewCompileContext()
	b := term.NewBuilder(ctx)
	metatype := b.Metatype()
	life := newLifecycle(b, metatype)

	complexT := b.StructType("Complex", []term.Member{{Name: "payload", Type: b.Primitive("i64")}})
	wrapper := b.NewGenericType("ComplexBox", nil, true)
	b.SetBody(wrapper, func(self *term.Term, params []*term.Term) (*term.Term, error) {
		return complexT, nil
	})
	complexBoxed := b.TypeInstance(wrapper, nil)
	registerComplex(b, life, complexBoxed)

	target1 := b.JumpTarget(complexBoxed, term.ResultByValue)
	target2 := b.JumpTarget(complexBoxed, term.ResultByValue)

	cond := b.IntegerValue(b.Primitive("i32"), 1)
	jump1 := b.JumpTo(target1, b.DefaultValue(complexBoxed))
	jump2 := b.JumpTo(target2, b.DefaultValue(complexBoxed))
	init := b.IfThenElse(nil, cond, jump1, jump2)

	entries := []term.JumpEntry{
		{Target: target1, Body: b.DefaultValue(complexBoxed)},
		{Target: target2, Body: b.DefaultValue(complexBoxed)},
	}
	group := b.JumpGroup(complexBoxed, init, entries)

	fnType, err := b.FunctionType(nil, term.ResultByValue, complexBoxed)
	if err != nil {
		t.Fatalf("FunctionType: %v", err)
	}
	fn := b.Function(fnType, "pick", nil, group, term.LinkageNone)

	ir2fn, _, err := LowerFunction(ctx, fn, life)
	if err != nil {
		t.Fatalf("LowerFunction: %v", err)
	}

	var slots []int
	for _, blk := range ir2fn.Blocks {
		for _, in := range blk.Instr {
			if in.Op == ir2.OpAlloca {
				slots = append(slots, in.Dst.ID)
			}
		}
	}
	if len(slots) != 1 {
		t.Fatalf("expected exactly one shared stack slot across both jump targets, got %d allocas (ids %v)", len(slots), slots)
	}
}

// TestLowerIntroduceImplementationShadow covers spec §4.6: an
// Implementation introduced via IntroduceImplementation resolves during
// the lowering of its wrapped body even though it is never attached to
// the Movable interface site itself, and is gone again once lowering
// leaves that body.
func TestLowerIntroduceImplementationShadow(t *testing.T) {
	ctx := term.NewCompileContext()
	b := term.NewBuilder(ctx)
	metatype := b.Metatype()
	life := newLifecycle(b, metatype)

	complexT := b.StructType("Complex", []term.Member{{Name: "payload", Type: b.Primitive("i64")}})
	wrapper := b.NewGenericType("ComplexBox", nil, true)
	b.SetBody(wrapper, func(self *term.Term, params []*term.Term) (*term.Term, error) {
		return complexT, nil
	})
	complexBoxed := b.TypeInstance(wrapper, nil)

	// Attach the witness to an unrelated site so dispatch.Lookup(life.Movable, ...)
	// cannot see it directly; it is visible only through the shadow.
	scratchWildcard := b.Parameter(metatype, 0, 0)
	scratchSite := b.Interface("scratch", 1, []*term.Term{scratchWildcard})
	fn := func(name string) *term.Term {
		voidFn, _ := b.FunctionType(nil, term.ResultByValue, nil)
		return b.Function(voidFn, name, nil, nil, term.LinkageNone)
	}
	ops := &Ops{
		Init: fn("init"), Fini: fn("fini"), Clear: fn("clear"),
		Move: fn("move"), MoveInit: fn("move_init"),
	}
	// Dynamic (not Static): an implementation reached only through
	// IntroduceImplementation is, per spec §4.6, the in-scope witness
	// itself rather than a module-level template to instantiate.
	introduced := b.Implementation(scratchSite, 0, []*term.Term{complexBoxed}, nil, false, ops)

	ctor := b.DefaultValue(complexBoxed)
	body := b.Block(nil, term.ModeValue, []*term.Term{b.Statement(ctor, term.StatementValue)}, nil)
	shadowed := b.IntroduceImplementation([]*term.Term{introduced}, body)

	fnType, err := b.FunctionType(nil, term.ResultByValue, nil)
	if err != nil {
		t.Fatalf("FunctionType: %v", err)
	}

	withShadow := b.Function(fnType, "with_shadow", nil, shadowed, term.LinkageNone)
	if _, _, err := LowerFunction(ctx, withShadow, life); err != nil {
		t.Fatalf("LowerFunction under IntroduceImplementation: %v", err)
	}

	withoutShadow := b.Function(fnType, "without_shadow", nil, body, term.LinkageNone)
	if _, _, err := LowerFunction(ctx, withoutShadow, life); err == nil {
		t.Fatalf("expected lowering to fail once outside the IntroduceImplementation scope")
	}
}

// TestLowerStaticImplementationInstantiatesPerWildcard covers spec §4.6's
// one-definition-rule-by-(interface,parameters) guarantee for Static
// implementations: a single Static Implementation declared over a
// wildcard pattern is instantiated once per distinct concrete type
// matched against it, and a second lookup of an already-seen type
// within the same lowering pass reuses that instantiation rather than
// calling its factory again.
func TestLowerStaticImplementationInstantiatesPerWildcard(t *testing.T) {
	ctx := term.NewCompileContext()
	b := term.NewBuilder(ctx)
	metatype := b.Metatype()
	life := newLifecycle(b, metatype)

	boxed := func(name string) *term.Term {
		complexT := b.StructType(name, []term.Member{{Name: "payload", Type: b.Primitive("i64")}})
		wrapper := b.NewGenericType(name, nil, true)
		b.SetBody(wrapper, func(self *term.Term, params []*term.Term) (*term.Term, error) {
			return complexT, nil
		})
		return b.TypeInstance(wrapper, nil)
	}
	typeA := boxed("BoxA")
	typeB := boxed("BoxB")

	fn := func(name string) *term.Term {
		voidFn, _ := b.FunctionType(nil, term.ResultByValue, nil)
		return b.Function(voidFn, name, nil, nil, term.LinkageNone)
	}
	calls := 0
	factory := func(wildcards []*term.Term) (*Ops, error) {
		calls++
		suffix := fmt.Sprintf("_%d", calls)
		return &Ops{
			Init: fn("init" + suffix), Fini: fn("fini" + suffix), Clear: fn("clear" + suffix),
			Move: fn("move" + suffix), MoveInit: fn("move_init" + suffix),
		}, nil
	}
	b.Implementation(life.Movable, 1, []*term.Term{b.Parameter(metatype, 0, 0)}, nil, true, factory)

	s1 := b.Statement(b.DefaultValue(typeA), term.StatementValue)
	s2 := b.Statement(b.DefaultValue(typeA), term.StatementValue)
	s3 := b.Statement(b.DefaultValue(typeB), term.StatementValue)
	blk := b.Block(nil, term.ModeValue, []*term.Term{s1, s2, s3}, nil)

	fnType, err := b.FunctionType(nil, term.ResultByValue, nil)
	if err != nil {
		t.Fatalf("FunctionType: %v", err)
	}
	irFn := b.Function(fnType, "multi_box", nil, blk, term.LinkageNone)

	ir2fn, _, err := LowerFunction(ctx, irFn, life)
	if err != nil {
		t.Fatalf("LowerFunction: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected the factory to run once per distinct type (2), ran %d times", calls)
	}

	var finiSources []*term.Term
	for _, in := range ir2fn.Entry.Instr {
		if in.Op == ir2.OpCall && strings.HasPrefix(in.Source.Data().(*term.FunctionData).Name, "fini") {
			finiSources = append(finiSources, in.Source)
		}
	}
	if len(finiSources) != 3 {
		t.Fatalf("expected 3 destructor calls, got %d", len(finiSources))
	}
	// Destructors run in reverse construction order (s3, s2, s1): index 0
	// is typeB's (s3), indices 1 and 2 are both typeA's (s2 then s1) and
	// must be the identical *term.Term — the cached instantiation, not
	// two separately built ones.
	if finiSources[1] != finiSources[2] {
		t.Fatalf("expected both typeA destructions to share one cached Fini, got %v and %v", finiSources[1], finiSources[2])
	}
	if finiSources[0] == finiSources[1] {
		t.Fatalf("expected typeB's destructor to differ from typeA's cached one")
	}
}
