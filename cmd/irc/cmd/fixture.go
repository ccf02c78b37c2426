package cmd

import (
	"github.com/cwbudde/irc/internal/lower"
	"github.com/cwbudde/irc/internal/term"
)

// fixture is the built-in demonstration program every subcommand below
// drives through the pipeline, standing in for a real parser and macro
// front end (both out of scope for this core, spec §1 Non-goals).
type fixture struct {
	ctx  *term.CompileContext
	b    *term.Builder
	life lower.Lifecycle

	identity *term.Term // pure i32 identity function
	counter  *term.Term // GlobalVariable needing a synthesized constructor only
	box      *term.Term // complex-typed GlobalVariable; its DefaultValue initialiser folds to a constant, so no constructor or destructor
}

// buildFixture constructs identity, counter and box fresh against a new
// CompileContext, so every subcommand invocation starts from a clean
// arena (spec §9).
func buildFixture() (*fixture, error) {
	ctx := term.NewCompileContext()
	b := term.NewBuilder(ctx)
	metatype := b.Metatype()
	i32 := b.Primitive("i32")

	wildcard := b.Parameter(metatype, 0, 0)
	movable := b.Interface("Movable", 1, []*term.Term{wildcard})
	life := lower.Lifecycle{Movable: movable}

	x := b.Anonymous(i32, term.ModeValue, "x")
	identType, err := b.FunctionType([]term.FunctionParam{{Type: i32, Mode: term.ParamFunctional}}, term.ResultFunctional, i32)
	if err != nil {
		return nil, err
	}
	identity := b.Function(identType, "identity", []*term.Term{x}, x, term.LinkageOneDefinition)

	nextIDType, err := b.FunctionType(nil, term.ResultByValue, i32)
	if err != nil {
		return nil, err
	}
	nextID := b.Function(nextIDType, "next_id", nil, b.IntegerValue(i32, 1), term.LinkageNone)
	counter := b.GlobalVariable(i32, "counter", term.LinkageOneDefinition)
	b.SetInit(counter, b.FunctionCall(i32, term.ModeValue, nextID, nil))

	boxStorage := b.StructType("Box", []term.Member{{Name: "value", Type: i32}})
	boxGeneric := b.NewGenericType("BoxShell", nil, true)
	b.SetBody(boxGeneric, func(self *term.Term, params []*term.Term) (*term.Term, error) {
		return boxStorage, nil
	})
	boxType := b.TypeInstance(boxGeneric, nil)
	registerLifecycle(b, life, boxType)

	box := b.GlobalVariable(boxType, "box", term.LinkageOneDefinition)
	b.SetInit(box, b.DefaultValue(boxType))

	return &fixture{ctx: ctx, b: b, life: life, identity: identity, counter: counter, box: box}, nil
}

// registerLifecycle attaches a trivial Movable witness to typ: every
// operation is an empty nullary function, enough for the lowerer to
// synthesise constructors and destructors without the fixture needing
// any real runtime behavior.
func registerLifecycle(b *term.Builder, life lower.Lifecycle, typ *term.Term) {
	fn := func(name string) *term.Term {
		voidType, _ := b.FunctionType(nil, term.ResultByValue, nil)
		return b.Function(voidType, name, nil, nil, term.LinkageNone)
	}
	ops := &lower.Ops{
		Init:     fn("box_init"),
		Fini:     fn("box_fini"),
		Clear:    fn("box_clear"),
		Move:     fn("box_move"),
		MoveInit: fn("box_move_init"),
	}
	// Attached directly to the Movable site (module scope), not via
	// IntroduceImplementation, so this is Static (spec §4.6) rather than
	// a dynamic in-scope witness; see internal/lower/lifecycle.go.
	b.Implementation(life.Movable, 0, []*term.Term{typ}, nil, true, ops)
}
