package dispatch

import (
	"testing"

	"github.com/cwbudde/irc/internal/diag"
	"github.com/cwbudde/irc/internal/term"
)

// TestLookupSingleMatch covers spec §8 scenario 3: a single implementation
// whose pattern matches the call arguments is selected outright.
func TestLookupSingleMatch(t *testing.T) {
	ctx := term.NewCompileContext()
	b := term.NewBuilder(ctx)
	metatype := b.Metatype()
	i32 := b.Primitive("i32")
	i64 := b.Primitive("i64")

	site := b.Interface("Printable", 1, []*term.Term{b.Parameter(metatype, 0, 0)})
	b.Implementation(site, 1, []*term.Term{i32}, nil, false, "print-i32")

	cand, err := Lookup(site, []*term.Term{i32}, nil)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if cand.Value.Data().(*term.OverloadValueData).Payload != "print-i32" {
		t.Fatalf("Lookup returned the wrong implementation")
	}

	if _, err := Lookup(site, []*term.Term{i64}, nil); err == nil {
		t.Fatalf("expected OverloadNotFound for an argument with no matching implementation")
	} else if d, ok := err.(*diag.Diagnostic); !ok || d.Kind != diag.OverloadNotFound {
		t.Fatalf("expected an OverloadNotFound diagnostic, got %v", err)
	}
}

// TestLookupMostSpecific covers spec §8 scenario 3's overload-resolution
// half: a generic implementation and a concrete i32 override both match an
// i32 argument, and the concrete one (whose pattern is strictly more
// specific) is selected without ambiguity.
func TestLookupMostSpecific(t *testing.T) {
	ctx := term.NewCompileContext()
	b := term.NewBuilder(ctx)
	metatype := b.Metatype()
	i32 := b.Primitive("i32")

	site := b.Interface("Printable", 1, []*term.Term{b.Parameter(metatype, 0, 0)})
	wildcard := b.Parameter(metatype, 0, 0)
	b.Implementation(site, 1, []*term.Term{wildcard}, nil, false, "print-generic")
	b.Implementation(site, 0, []*term.Term{i32}, nil, false, "print-i32")

	cand, err := Lookup(site, []*term.Term{i32}, nil)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if cand.Value.Data().(*term.OverloadValueData).Payload != "print-i32" {
		t.Fatalf("expected the concrete i32 implementation to win over the generic one")
	}
}

// TestLookupAmbiguous covers spec §8: two incomparable implementations
// matching the same arguments must raise OverloadAmbiguous rather than
// pick one arbitrarily.
func TestLookupAmbiguous(t *testing.T) {
	ctx := term.NewCompileContext()
	b := term.NewBuilder(ctx)
	metatype := b.Metatype()
	i32 := b.Primitive("i32")
	i64 := b.Primitive("i64")

	site := b.Interface("Convert", 2, []*term.Term{b.Parameter(metatype, 0, 0), b.Parameter(metatype, 0, 1)})

	// Two implementations, each wildcard in a different position, neither
	// more specific than the other for the argument pair (i32, i64).
	w0 := b.Parameter(metatype, 0, 0)
	b.Implementation(site, 1, []*term.Term{i32, w0}, nil, false, "from-i32")

	w1 := b.Parameter(metatype, 0, 0)
	b.Implementation(site, 1, []*term.Term{w1, i64}, nil, false, "to-i64")

	_, err := Lookup(site, []*term.Term{i32, i64}, nil)
	if err == nil {
		t.Fatalf("expected OverloadAmbiguous for two incomparable matches")
	}
	d, ok := err.(*diag.Diagnostic)
	if !ok || d.Kind != diag.OverloadAmbiguous {
		t.Fatalf("expected an OverloadAmbiguous diagnostic, got %v", err)
	}
}

// TestLookupExtraContext covers spec §4.3 step 1(b): a value supplied only
// via extraContext (not attached to the site) still participates.
func TestLookupExtraContext(t *testing.T) {
	ctx := term.NewCompileContext()
	b := term.NewBuilder(ctx)
	metatype := b.Metatype()
	i32 := b.Primitive("i32")

	site := b.Interface("Printable", 1, []*term.Term{b.Parameter(metatype, 0, 0)})
	extra := b.Implementation(site, 0, []*term.Term{i32}, nil, false, "from-context")

	cand, err := Lookup(site, []*term.Term{i32}, []*term.Term{extra})
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if cand.Value != extra {
		t.Fatalf("expected the extra-context implementation to be found")
	}
}
