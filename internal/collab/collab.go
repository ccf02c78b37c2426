// Package collab declares the core's injected collaborator contracts
// (spec §6): the concrete-syntax parser, the macro evaluation context and
// evaluator, the per-target property callback, the platform loader used
// only by the JIT path, and the IR2 module sink. The core binds none of
// these to a concrete implementation; it only calls through the
// interfaces below.
//
// Grounded on the teacher's internal/interp/contracts.contracts.go: a
// small neutral package of interfaces that exists solely so two sides of
// a boundary (there, interpreter/evaluator; here, the term/ir2 core and
// whatever drives it) can be wired without importing each other.
package collab

import (
	"github.com/cwbudde/irc/internal/diag"
	"github.com/cwbudde/irc/internal/ir2"
	"github.com/cwbudde/irc/internal/term"
)

// ParseTree is the only shape the core consumes from a parsed source
// range: a statement list, an expression tree, or a bare token
// expression. The core never inspects concrete syntax beyond this.
type ParseTree struct {
	Statements []*ParseTree
	Expr       *ParseTree
	Token      string
}

// Parser turns a byte range of source text into a ParseTree. Its own
// lexing/grammar is out of scope (spec §1); the core only ever calls it
// through this one entry point.
type Parser interface {
	Parse(source []byte, start, end int, loc diag.Location) (*ParseTree, error)
}

// EvalContext resolves an identifier to an already-constructed IR1 term
// and supplies whatever OverloadValues (Implementation/Metadata terms)
// the macro system has brought into scope beyond what a type's own
// Implementation table carries (spec §6, "overload-extension hook").
type EvalContext interface {
	Lookup(name string) (*term.Term, bool)
	ExtraOverloads() []*term.Term
}

// MacroTarget tags what shape a macro evaluation is expected to produce.
type MacroTarget int

const (
	MacroTargetTerm MacroTarget = iota
	MacroTargetType
	MacroTargetAggregateMember
)

// MacroEvaluator evaluates a macro IR1 value against parse-tree
// arguments. The core never interprets a macro body itself — it routes
// the call and uses only the returned term.
type MacroEvaluator interface {
	EvalMacro(macro *term.Term, args []*ParseTree, ctx EvalContext, target MacroTarget) (*term.Term, error)
}

// PropertyValue is an opaque, collaborator-defined configuration leaf
// (an integer width, a library-symbol descriptor such as
// {"type":"c","name":"foo"}, a JIT flag, ...). The core never interprets
// its shape beyond handing it back to whichever collaborator asked.
type PropertyValue = any

// TargetCallback fetches a property by name from the build/host target
// property maps (spec §6). Used for per-target integer widths, library
// symbol names, and JIT configuration.
type TargetCallback interface {
	TargetProperty(build, host map[string]PropertyValue, name string) (PropertyValue, bool)
}

// LibraryHandle is a loaded shared library's symbol table, used only by
// the JIT path (spec §6); the core never dereferences the returned
// pointer itself.
type LibraryHandle interface {
	Symbol(name string) (uintptr, error)
	Close() error
}

// PlatformLoader loads a shared library described by a PropertyValue
// (the same shape a TargetCallback hands back for a library symbol).
type PlatformLoader interface {
	Load(descriptor PropertyValue) (LibraryHandle, error)
}

// ModuleSink receives a fully scheduled ir2.Module: emitted functions,
// global variables, and the constructor/destructor priority lists
// assigned by internal/globals (spec §6, "IR2 module sink"). Every
// symbol it sees already carries a stable mangled name, a type, a
// linkage, and either a constant value or a body.
type ModuleSink interface {
	EmitModule(mod *ir2.Module) error
}
