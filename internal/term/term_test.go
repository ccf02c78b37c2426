package term

import (
	"strings"
	"testing"
)

func TestInterningIdempotent(t *testing.T) {
	ctx := NewCompileContext()
	b := NewBuilder(ctx)

	i32a := b.Primitive("i32")
	i32b := b.Primitive("i32")
	if i32a != i32b {
		t.Fatalf("Primitive(i32) constructed twice did not intern to the same pointer")
	}

	ptrA := b.PointerType(i32a)
	ptrB := b.PointerType(i32b)
	if ptrA != ptrB {
		t.Fatalf("PointerType(i32) did not intern to the same pointer")
	}

	structA := b.StructType("S", []Member{{Name: "a", Type: i32a}})
	structB := b.StructType("S", []Member{{Name: "a", Type: i32b}})
	if structA != structB {
		t.Fatalf("StructType did not intern to the same pointer for identical members")
	}

	structDiff := b.StructType("S", []Member{{Name: "b", Type: i32a}})
	if structA == structDiff {
		t.Fatalf("StructType interned two distinct structs to the same pointer")
	}
}

func TestEffectTermsAreFreshEachTime(t *testing.T) {
	ctx := NewCompileContext()
	b := NewBuilder(ctx)
	i32 := b.Primitive("i32")
	v := b.IntegerValue(i32, 1)

	blockA := b.Block(i32, ModeValue, nil, v)
	blockB := b.Block(i32, ModeValue, nil, v)
	if blockA == blockB {
		t.Fatalf("two Blocks built from identical inputs must be distinct identity nodes")
	}
}

func TestRecursiveGenericInternsOneInstance(t *testing.T) {
	ctx := NewCompileContext()
	b := NewBuilder(ctx)
	i32 := b.Primitive("i32")

	metatype := b.Metatype()
	list := b.NewGenericType("List", []*Term{metatype}, true)
	b.SetBody(list, func(self *Term, params []*Term) (*Term, error) {
		tParam := params[0]
		tail := b.PointerType(b.TypeInstance(self, []*Term{tParam}))
		return b.StructType("List", []Member{
			{Name: "head", Type: tParam},
			{Name: "tail", Type: tail},
		}), nil
	})

	inst1 := b.TypeInstance(list, []*Term{i32})
	inst2 := b.TypeInstance(list, []*Term{i32})
	if inst1 != inst2 {
		t.Fatalf("TypeInstance(List, i32) requested twice produced distinct nodes")
	}

	body, err := b.Body(list)
	if err != nil {
		t.Fatalf("Body(list): %v", err)
	}
	if body.Kind() != KindStructType {
		t.Fatalf("expected struct body, got %s", body.Kind())
	}
}

func TestNoFreeAnonymous(t *testing.T) {
	ctx := NewCompileContext()
	b := NewBuilder(ctx)
	i32 := b.Primitive("i32")
	x := b.Anonymous(i32, ModeValue, "x")

	if NoFreeAnonymous(x) {
		t.Fatalf("expected NoFreeAnonymous to report false for a bare Anonymous")
	}

	bound := Parameterize(b, x, []*Term{x})
	if !NoFreeAnonymous(bound) {
		t.Fatalf("expected NoFreeAnonymous to report true once x is parameterized away")
	}
}

func TestDumpRendersNamesAndNesting(t *testing.T) {
	ctx := NewCompileContext()
	b := NewBuilder(ctx)
	i32 := b.Primitive("i32")
	x := b.Anonymous(i32, ModeValue, "x")
	one := b.IntegerValue(i32, 1)
	blk := b.Block(i32, ModeValue, []*Term{b.Statement(one, StatementFunctional)}, x)

	out := Dump(blk)
	for _, want := range []string{"Block#", "Statement#", "IntegerValue#3 [value] 1", `Anonymous#`, `"x"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("Dump output missing %q:\n%s", want, out)
		}
	}
}

func TestDumpTypeInstanceOverGenericType(t *testing.T) {
	ctx := NewCompileContext()
	b := NewBuilder(ctx)
	metatype := b.Metatype()
	i32 := b.Primitive("i32")

	list := b.NewGenericType("List", []*Term{metatype}, true)
	b.SetBody(list, func(self *Term, params []*Term) (*Term, error) {
		tail := b.PointerType(b.TypeInstance(self, params))
		return b.StructType("List", []Member{
			{Name: "head", Type: params[0]},
			{Name: "tail", Type: tail},
		}), nil
	})
	inst := b.TypeInstance(list, []*Term{i32})

	// TypeInstance's children stop at the GenericType node itself (its
	// delayed body is reached only via Body(), not a struct field Walk
	// can see), so dumping never forces the self-referential body.
	out := Dump(inst)
	if !strings.Contains(out, "TypeInstance#") || !strings.Contains(out, "GenericType#") {
		t.Fatalf("expected dump to name both the instance and its generic:\n%s", out)
	}
}
