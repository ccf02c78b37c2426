package term

import "github.com/cwbudde/irc/internal/diag"

// ParamMode classifies a function-type parameter (spec §4.1).
type ParamMode int

const (
	ParamInput ParamMode = iota
	ParamOutput
	ParamIO
	ParamRValue
	ParamFunctional
	ParamPhantom
)

// ResultMode classifies a function-type result (spec §4.1).
type ResultMode int

const (
	ResultByValue ResultMode = iota
	ResultFunctional
	ResultLValue
	ResultRValue
)

// FunctionParam is one parameter slot of a FunctionType.
type FunctionParam struct {
	Type *Term
	Mode ParamMode
}

// FunctionTypeData is the payload of a KindFunctionType term.
type FunctionTypeData struct {
	Params     []FunctionParam
	Result     ResultMode
	ResultType *Term
}

// Member is one field of a struct or union type.
type Member struct {
	Name string
	Type *Term
}

// PrimitiveData is the payload of a KindPrimitiveType term.
type PrimitiveData struct{ Name string }

// PointerData is the payload of a KindPointerType term.
type PointerData struct{ Pointee *Term }

// ArrayData is the payload of a KindArrayType term. Size < 0 means an
// open/dynamic array.
type ArrayData struct {
	Elem *Term
	Size int64
}

// StructData is the payload of a KindStructType term.
type StructData struct {
	Name    string
	Members []Member
}

// UnionData is the payload of a KindUnionType term.
type UnionData struct {
	Name    string
	Members []Member
}

// TypeInstanceData is the payload of a KindTypeInstance term: the
// application of a recursive GenericType to a tuple of type arguments.
type TypeInstanceData struct {
	Generic *Term
	Args    []*Term
}

// UpRef is one link of an upward-reference path: "a value of some type
// known to lie at offset Index inside Outer, with Next continuing the
// path toward the outermost enclosing aggregate" (spec §3/§4.1). A nil
// Next is the path terminator.
type UpRef struct {
	Outer *Term
	Index int
	Next  *UpRef
}

// DerivedTypeData is the payload of a KindDerivedType term: "a value of
// type Value known to lie at offset UpRef inside some enclosing
// aggregate" (spec §4.1). Per the spec's Open Question resolution,
// pointers are untagged unless wrapped in a DerivedType: PointerData
// itself carries no upward-reference field.
type DerivedTypeData struct {
	Value *Term
	UpRef *UpRef
}

// BinderData is the shared payload of Exists/ForAll parameterised types:
// a tuple of parameter domains plus a body mentioning Parameter(depth=0, k)
// for each bound domain.
type BinderData struct {
	Domains []*Term
	Body    *Term
}

// ParameterData is the payload of a KindParameter term: a de-Bruijn
// indexed bound variable.
type ParameterData struct {
	Depth int
	Index int
}

// AnonymousData is the payload of a KindAnonymous term: an unbound
// placeholder representing a function parameter or pattern variable.
// Anonymous terms are identity-addressed even though they denote pure
// values, because two distinct anonymouses of the same type must never
// be confused by structural equality (spec §4.2: "distinct
// Anonymous/Statement references match only themselves").
type AnonymousData struct{ label string }

// Primitive returns the interned primitive type named name (e.g. "i32",
// "bool"). Primitive types are register-representable with trivial
// lifecycle (spec §3 type-info "primitive").
func (b *Builder) Primitive(name string) *Term {
	t := &Term{kind: KindPrimitiveType, typ: b.Metatype(), mode: ModeValue, pure: true, storage: StoragePrimitive, data: PrimitiveData{Name: name}}
	return b.internPure(t)
}

// PointerType returns the interned pointer-to-pointee type. Pointers are
// themselves primitive (register-representable).
func (b *Builder) PointerType(pointee *Term) *Term {
	t := &Term{kind: KindPointerType, typ: b.Metatype(), mode: ModeValue, pure: true, storage: StoragePrimitive, data: PointerData{Pointee: pointee}}
	return b.internPure(t)
}

// ArrayType returns the interned array type of the given element type and
// size; size < 0 denotes an open/dynamic array. Storage class follows the
// element: an array of complex elements is itself complex.
func (b *Builder) ArrayType(elem *Term, size int64) *Term {
	t := &Term{kind: KindArrayType, typ: b.Metatype(), mode: ModeValue, pure: true, storage: elem.storage, data: ArrayData{Elem: elem, Size: size}}
	return b.internPure(t)
}

// StructType returns the interned struct type. A struct with any complex
// member is itself complex; otherwise primitive.
func (b *Builder) StructType(name string, members []Member) *Term {
	storage := StoragePrimitive
	for _, m := range members {
		if m.Type.storage == StorageComplex {
			storage = StorageComplex
			break
		}
	}
	t := &Term{kind: KindStructType, typ: b.Metatype(), mode: ModeValue, pure: true, storage: storage, data: StructData{Name: name, Members: members}}
	return b.internPure(t)
}

// UnionType returns the interned union type, storage class computed the
// same way as StructType.
func (b *Builder) UnionType(name string, members []Member) *Term {
	storage := StoragePrimitive
	for _, m := range members {
		if m.Type.storage == StorageComplex {
			storage = StorageComplex
			break
		}
	}
	t := &Term{kind: KindUnionType, typ: b.Metatype(), mode: ModeValue, pure: true, storage: storage, data: UnionData{Name: name, Members: members}}
	return b.internPure(t)
}

// FunctionType returns the interned function type. Phantom parameters
// must precede every non-phantom parameter (spec §4.1); violating this
// raises MalformedTerm.
func (b *Builder) FunctionType(params []FunctionParam, result ResultMode, resultType *Term) (*Term, error) {
	seenNonPhantom := false
	for _, p := range params {
		if p.Mode == ParamPhantom {
			if seenNonPhantom {
				return nil, diag.New(diag.MalformedTerm, diag.Location{}, diag.MsgMalformedMode, "phantom-after-non-phantom", KindFunctionType)
			}
		} else {
			seenNonPhantom = true
		}
	}
	t := &Term{kind: KindFunctionType, typ: b.Metatype(), mode: ModeValue, pure: true, storage: StoragePrimitive,
		data: FunctionTypeData{Params: append([]FunctionParam(nil), params...), Result: result, ResultType: resultType}}
	return b.internPure(t), nil
}

// TypeInstance returns the interned application of generic to args. The
// intern table guarantees a single node per (generic, args) tuple
// regardless of how many times it is requested (spec §8 scenario 6).
func (b *Builder) TypeInstance(generic *Term, args []*Term) *Term {
	storage := StoragePrimitive
	if gd, ok := generic.data.(*GenericTypeData); ok && gd.complex {
		storage = StorageComplex
	}
	t := &Term{kind: KindTypeInstance, typ: b.Metatype(), mode: ModeValue, pure: true, storage: storage,
		data: TypeInstanceData{Generic: generic, Args: append([]*Term(nil), args...)}}
	return b.internPure(t)
}

// DerivedType returns the interned (value, upref) pair described in
// spec §4.1.
func (b *Builder) DerivedType(value *Term, upref *UpRef) *Term {
	t := &Term{kind: KindDerivedType, typ: b.Metatype(), mode: ModeValue, pure: true, storage: value.storage,
		data: DerivedTypeData{Value: value, UpRef: upref}}
	return b.internPure(t)
}

// Exists returns the interned existential binder over domains with body.
// Used by Anonymize (spec §4.2) to close over out-of-scope values.
func (b *Builder) Exists(domains []*Term, body *Term) *Term {
	t := &Term{kind: KindExists, typ: b.Metatype(), mode: ModeValue, pure: true, storage: StorageNone,
		data: BinderData{Domains: append([]*Term(nil), domains...), Body: body}}
	return b.internPure(t)
}

// ForAll returns the interned universal binder over domains with body.
func (b *Builder) ForAll(domains []*Term, body *Term) *Term {
	t := &Term{kind: KindForAll, typ: b.Metatype(), mode: ModeValue, pure: true, storage: StorageNone,
		data: BinderData{Domains: append([]*Term(nil), domains...), Body: body}}
	return b.internPure(t)
}

// Parameter returns the interned de-Bruijn bound variable of typ at
// (depth, index).
func (b *Builder) Parameter(typ *Term, depth, index int) *Term {
	t := &Term{kind: KindParameter, typ: typ, mode: ModeValue, pure: true, storage: StorageNone,
		data: ParameterData{Depth: depth, Index: index}}
	return b.internPure(t)
}

// Anonymous returns a fresh, identity-addressed placeholder of typ and
// mode. Two calls never return the same node even with identical
// arguments: Anonymous terms are "interned by identity" (spec §3 table).
func (b *Builder) Anonymous(typ *Term, mode Mode, label string) *Term {
	t := &Term{kind: KindAnonymous, typ: typ, mode: mode, pure: true, storage: StorageNone, data: AnonymousData{label: label}}
	return b.freshIdentity(t)
}
