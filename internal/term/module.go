package term

// Linkage classifies the external visibility of a module-global, per the
// spec §3 Module description and the §6 IR2 module sink contract.
type Linkage int

const (
	LinkageNone Linkage = iota
	LinkageLocal
	LinkagePrivate
	LinkageOneDefinition
	LinkagePublic
)

func (l Linkage) String() string {
	switch l {
	case LinkageNone:
		return "none"
	case LinkageLocal:
		return "local"
	case LinkagePrivate:
		return "private"
	case LinkageOneDefinition:
		return "one-definition"
	case LinkagePublic:
		return "public"
	default:
		return "linkage?"
	}
}

// GlobalVariableData is the payload of a KindGlobalVariable term.
type GlobalVariableData struct {
	Name    string
	Linkage Linkage
	Init    *Term // nil if never requested/lowered yet
}

// FunctionData is the payload of a KindFunction term.
type FunctionData struct {
	Name    string
	Type    *Term
	Params  []*Term // Anonymous placeholders, one per FunctionType parameter
	Body    *Term   // nil for an external/declared-only function
	Linkage Linkage
}

// GlobalStatementData is the payload of a KindGlobalStatement term: a
// top-level effect run once, used by globals whose initializer is not a
// pure value (spec §4.5).
type GlobalStatementData struct{ Stmt *Term }

// ExternalGlobalData is the payload of a KindExternalGlobal term: a
// global defined in another module or the host program.
type ExternalGlobalData struct {
	Name string
	Type *Term
}

// LibrarySymbolData is the payload of a KindLibrarySymbol term: a symbol
// imported from a native shared library via the platform loader (spec §6).
type LibrarySymbolData struct {
	Library string
	Symbol  string
	Type    *Term
}

// GlobalEvaluateData is the payload of a KindGlobalEvaluate term: a
// module-scope value produced by a one-shot delayed evaluation (spec §9
// "Delayed values").
type GlobalEvaluateData struct{ Promise *Delayed }

// GlobalVariable declares a fresh module-global variable slot. Its
// initializer is attached later (the value may not be known until the
// driver requests it; spec §4.5 scheduling is demand-driven).
func (b *Builder) GlobalVariable(typ *Term, name string, linkage Linkage) *Term {
	t := &Term{kind: KindGlobalVariable, typ: typ, mode: ModeLRef, pure: false,
		data: &GlobalVariableData{Name: name, Linkage: linkage}}
	return b.freshIdentity(t)
}

// SetInit attaches g's initializer value. g must be a KindGlobalVariable
// term produced by this Builder's context.
func (b *Builder) SetInit(g *Term, init *Term) {
	g.data.(*GlobalVariableData).Init = init
}

// Function declares a fresh module-scope function symbol.
func (b *Builder) Function(typ *Term, name string, params []*Term, body *Term, linkage Linkage) *Term {
	t := &Term{kind: KindFunction, typ: typ, mode: ModeLRef, pure: false,
		data: &FunctionData{Name: name, Type: typ, Params: append([]*Term(nil), params...), Body: body, Linkage: linkage}}
	return b.freshIdentity(t)
}

// GlobalStatement wraps stmt as a module-scope effect.
func (b *Builder) GlobalStatement(stmt *Term) *Term {
	t := &Term{kind: KindGlobalStatement, typ: nil, mode: ModeValue, pure: false,
		data: GlobalStatementData{Stmt: stmt}}
	return b.freshIdentity(t)
}

// ExternalGlobal declares a reference to a global owned by another
// module or the host program.
func (b *Builder) ExternalGlobal(typ *Term, name string) *Term {
	t := &Term{kind: KindExternalGlobal, typ: typ, mode: ModeLRef, pure: false,
		data: ExternalGlobalData{Name: name, Type: typ}}
	return b.freshIdentity(t)
}

// LibrarySymbol declares a reference to a symbol resolved through the
// platform loader (spec §6).
func (b *Builder) LibrarySymbol(typ *Term, library, symbol string) *Term {
	t := &Term{kind: KindLibrarySymbol, typ: typ, mode: ModeLRef, pure: false,
		data: LibrarySymbolData{Library: library, Symbol: symbol, Type: typ}}
	return b.freshIdentity(t)
}

// GlobalEvaluate wraps promise as a module-scope delayed value.
func (b *Builder) GlobalEvaluate(typ *Term, promise *Delayed) *Term {
	t := &Term{kind: KindGlobalEvaluate, typ: typ, mode: ModeValue, pure: false,
		data: GlobalEvaluateData{Promise: promise}}
	return b.freshIdentity(t)
}

// Module is a named collection of module-globals with per-global linkage
// tracking (spec §3).
type Module struct {
	Name    string
	globals []*Term
}

// NewModule returns an empty, named Module.
func NewModule(name string) *Module { return &Module{Name: name} }

// Add appends g (a module-scope term: GlobalVariable, Function,
// GlobalStatement, ExternalGlobal, LibrarySymbol or GlobalEvaluate) to
// the module, owned from this point on.
func (m *Module) Add(g *Term) { m.globals = append(m.globals, g) }

// Globals returns the module's globals in declaration order.
func (m *Module) Globals() []*Term { return m.globals }
