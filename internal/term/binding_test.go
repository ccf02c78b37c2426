package term

import "testing"

// TestParameterizeSpecializeRoundTrip covers spec §8: for all terms t and
// anonymous lists xs with the free anonymouses of t included in xs,
// specialize(parameterize(t, xs), xs) = t.
func TestParameterizeSpecializeRoundTrip(t *testing.T) {
	ctx := NewCompileContext()
	b := NewBuilder(ctx)
	i32 := b.Primitive("i32")
	x := b.Anonymous(i32, ModeValue, "x")
	y := b.Anonymous(i32, ModeValue, "y")

	original := b.StructType("Pair", []Member{{Name: "a", Type: x.typ}, {Name: "b", Type: y.typ}})
	// Build a term that actually mentions x and y: a struct value.
	original = b.StructValue(original, []*Term{x, y})

	xs := []*Term{x, y}
	bound := Parameterize(b, original, xs)
	if !NoFreeAnonymous(bound) {
		t.Fatalf("parameterize left a free Anonymous")
	}

	back, err := Specialize(b, bound, xs)
	if err != nil {
		t.Fatalf("specialize: %v", err)
	}
	if back != original {
		t.Fatalf("specialize(parameterize(t, xs), xs) != t:\n  got  %#v\n  want %#v", back.data, original.data)
	}
}

// TestIdentityFunctionSpecialize covers spec §8 scenario 1: the identity
// function, specialized at a concrete type, reduces to a bare parameter
// reference.
func TestIdentityFunctionSpecialize(t *testing.T) {
	ctx := NewCompileContext()
	b := NewBuilder(ctx)
	i32 := b.Primitive("i32")
	metatype := b.Metatype()

	typeParam := b.Anonymous(metatype, ModeValue, "T")
	valueParam := b.Anonymous(typeParam, ModeValue, "x")

	// body: x, closed over [T, x] so x is Parameter(depth=0, index=1).
	bound := Parameterize(b, valueParam, []*Term{typeParam, valueParam})

	xVal := b.IntegerValue(i32, 7)
	result, err := Specialize(b, bound, []*Term{i32, xVal})
	if err != nil {
		t.Fatalf("specialize: %v", err)
	}
	if result != xVal {
		t.Fatalf("specializing the identity function body did not yield the argument unchanged")
	}

	// Too few values for the index present at depth 0 is IndexOutOfRange.
	if _, err := Specialize(b, bound, []*Term{i32}); err == nil {
		t.Fatalf("expected IndexOutOfRange when fewer values than the referenced index are supplied")
	}
}

// TestMatchReflexive covers spec §8: match(t, t) returns true with an
// empty wildcard list.
func TestMatchReflexive(t *testing.T) {
	ctx := NewCompileContext()
	b := NewBuilder(ctx)
	i32 := b.Primitive("i32")
	ptr := b.PointerType(i32)
	if !Match(ptr, ptr, nil) {
		t.Fatalf("match(t, t) with no wildcards should succeed")
	}
}

// TestMatchWildcard covers the overload-resolution building block: a
// pattern with one wildcard matches any concrete pointee and records it.
func TestMatchWildcard(t *testing.T) {
	ctx := NewCompileContext()
	b := NewBuilder(ctx)
	i32 := b.Primitive("i32")
	metatype := b.Metatype()

	wildcardParam := b.Parameter(metatype, 0, 0)
	pattern := b.PointerType(wildcardParam)
	value := b.PointerType(i32)

	bindings := make([]*Term, 1)
	if !Match(pattern, value, bindings) {
		t.Fatalf("expected Pointer(wildcard) to match Pointer(i32)")
	}
	if bindings[0] != i32 {
		t.Fatalf("expected wildcard to bind to i32, got %v", bindings[0])
	}

	// A second, inconsistent occurrence of the same wildcard must fail.
	two := b.Parameter(metatype, 0, 0)
	conflictPattern := b.StructType("Pair", []Member{{Name: "a", Type: wildcardParam}, {Name: "b", Type: two}})
	i64 := b.Primitive("i64")
	conflictValue := b.StructType("Pair", []Member{{Name: "a", Type: i32}, {Name: "b", Type: i64}})
	if Match(conflictPattern, conflictValue, make([]*Term, 1)) {
		t.Fatalf("expected conflicting bindings for the same wildcard to fail")
	}
}
