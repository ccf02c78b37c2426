package globals

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/cwbudde/irc/internal/diag"
	"github.com/cwbudde/irc/internal/lower"
	"github.com/cwbudde/irc/internal/term"
)

func newBuilderForTest(t *testing.T, ctx *term.CompileContext) *Builder {
	t.Helper()
	b := term.NewBuilder(ctx)
	metatype := b.Metatype()
	movable := b.Interface("Movable", 1, []*term.Term{b.Parameter(metatype, 0, 0)})
	copyable := b.Interface("Copyable", 1, []*term.Term{b.Parameter(metatype, 0, 0)})
	return NewBuilder(ctx, lower.Lifecycle{Movable: movable, Copyable: copyable}, "test")
}

// TestMangleStructuralSharing covers spec §4.5.1: a repeated path prefix
// is back-referenced rather than respelled, and two distinct globals
// under that shared prefix still mangle to distinct names.
func TestMangleStructuralSharing(t *testing.T) {
	m := NewMangler()
	n1 := m.Mangle([]string{"Mod", "Widget", "draw"}, term.LinkageNone)
	n2 := m.Mangle([]string{"Mod", "Widget", "resize"}, term.LinkageNone)
	n3 := m.Mangle([]string{"Mod", "Widget", "draw"}, term.LinkageNone)

	if n1 == n2 {
		t.Fatalf("distinct leaf names must mangle distinctly, got %q twice", n1)
	}
	if n1 != n3 {
		t.Fatalf("mangling the same path twice must be deterministic: %q vs %q", n1, n3)
	}
	// n2 shares the "Mod.Widget" prefix with n1; that prefix was already
	// indexed by n1's mangling, so n2 must be shorter than spelling the
	// whole path out again would require.
	if len(n2) >= len("Mod")+len("Widget")+len("resize")+6 {
		t.Fatalf("expected prefix sharing to shorten n2, got %q", n2)
	}
}

// TestMangleLocalLinkageCounter covers spec §4.5.1's per-context counter
// suffix for local-linkage symbols: two locals with identical paths still
// mangle distinctly.
func TestMangleLocalLinkageCounter(t *testing.T) {
	m := NewMangler()
	a := m.Mangle([]string{"Mod", "tmp"}, term.LinkageLocal)
	b := m.Mangle([]string{"Mod", "tmp"}, term.LinkageLocal)
	if a == b {
		t.Fatalf("two local-linkage symbols with the same path must not collide, got %q twice", a)
	}
}

// TestMangleDeterministicAcrossInstances covers spec §4.5.1's determinism
// guarantee from a different angle than TestMangleStructuralSharing: two
// independent Manglers fed the identical path sequence must produce the
// identical name sequence, not merely internally-consistent names within
// one Mangler's own lifetime.
func TestMangleDeterministicAcrossInstances(t *testing.T) {
	paths := [][]string{
		{"Mod", "Widget", "draw"},
		{"Mod", "Widget", "resize"},
		{"Mod", "Gadget", "draw"},
	}
	mangle := func() []string {
		m := NewMangler()
		var names []string
		for _, p := range paths {
			names = append(names, m.Mangle(p, term.LinkageNone))
		}
		return names
	}
	want, got := mangle(), mangle()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mangling the same path sequence twice must be deterministic (-want +got):\n%s", diff)
	}
}

// TestCircularGlobal covers spec §8 scenario 4: two globals whose
// initialisers each reference the other raise CircularGlobal instead of
// looping forever.
func TestCircularGlobal(t *testing.T) {
	ctx := term.NewCompileContext()
	sb := newBuilderForTest(t, ctx)
	tb := term.NewBuilder(ctx)

	i32 := tb.Primitive("i32")
	a := tb.GlobalVariable(i32, "a", term.LinkageLocal)
	bb := tb.GlobalVariable(i32, "b", term.LinkageLocal)

	// Each initialiser is a FunctionCall on the other global's address so
	// that tryConst's NotGlobal rejection forces constructor synthesis and
	// the scheduler's demand-DFS walks into a cycle.
	aBody := tb.Block(i32, term.ModeValue, nil, tb.FunctionCall(i32, term.ModeValue, bb, nil))
	bBody := tb.Block(i32, term.ModeValue, nil, tb.FunctionCall(i32, term.ModeValue, a, nil))
	tb.SetInit(a, aBody)
	tb.SetInit(bb, bBody)

	sb.Declare(a, []string{"test", "a"})
	sb.Declare(bb, []string{"test", "b"})

	err := sb.Request(a)
	if err == nil {
		t.Fatalf("expected CircularGlobal, got no error")
	}
	d, ok := err.(*diag.Diagnostic)
	if !ok || d.Kind != diag.CircularGlobal {
		t.Fatalf("expected a CircularGlobal diagnostic, got %v", err)
	}
}

// TestScheduleConstantGlobal covers the non-cyclic half of spec §4.5: a
// pure-constant initialiser lowers directly with no synthesised
// constructor and never appears in Module.Constructors.
func TestScheduleConstantGlobal(t *testing.T) {
	ctx := term.NewCompileContext()
	sb := newBuilderForTest(t, ctx)
	tb := term.NewBuilder(ctx)

	i32 := tb.Primitive("i32")
	g := tb.GlobalVariable(i32, "answer", term.LinkageLocal)
	tb.SetInit(g, tb.IntegerValue(i32, 42))
	sb.Declare(g, []string{"test", "answer"})

	if err := sb.Request(g); err != nil {
		t.Fatalf("Request: %v", err)
	}
	if err := sb.Schedule(); err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if len(sb.Module.Constructors) != 0 {
		t.Fatalf("a pure-constant global must not synthesise a constructor")
	}
	if len(sb.Module.Globals) != 1 || sb.Module.Globals[0].Const == nil {
		t.Fatalf("expected a single constant-initialised global")
	}
}

// TestSchedulePriorityOrder covers spec §4.5's priority assignment: a
// constructor whose initialiser depends on another constructor-bearing
// global must be scheduled strictly after it.
func TestSchedulePriorityOrder(t *testing.T) {
	ctx := term.NewCompileContext()
	sb := newBuilderForTest(t, ctx)
	tb := term.NewBuilder(ctx)

	i32 := tb.Primitive("i32")
	base := tb.GlobalVariable(i32, "base", term.LinkageLocal)
	derived := tb.GlobalVariable(i32, "derived", term.LinkageLocal)

	// base's initialiser is a call (forces constructor synthesis, not a
	// constant fold); derived's initialiser reads base's value, which is
	// not a constant, so derived gets a constructor too and depends on base.
	baseBody := tb.Block(i32, term.ModeValue, nil, tb.FunctionCall(i32, term.ModeValue, base, nil))
	tb.SetInit(base, baseBody)
	tb.SetInit(derived, base)

	sb.Declare(base, []string{"test", "base"})
	sb.Declare(derived, []string{"test", "derived"})

	if err := sb.Request(derived); err != nil {
		t.Fatalf("Request: %v", err)
	}
	if err := sb.Schedule(); err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if len(sb.Module.Constructors) != 2 {
		t.Fatalf("expected 2 synthesised constructors, got %d", len(sb.Module.Constructors))
	}
	if sb.Module.Constructors[0].Name != sb.entries[base].global.Name {
		t.Fatalf("base must be constructed before derived")
	}
}
