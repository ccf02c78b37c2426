package term

import "golang.org/x/text/unicode/norm"

// This file implements the functional-constant and address-arithmetic
// subkinds of spec §3: Constructor values (Struct/Array/Union/Integer/
// String/Default/Movable/UpRef) and ElementValue/PointerTo/
// PointerTarget/OuterValue. All are pure and therefore interned;
// constructing the same value twice yields the identical pointer.

// StructValueData is the payload of a KindStructValue term.
type StructValueData struct {
	StructType *Term
	Fields     []*Term
}

// ArrayValueData is the payload of a KindArrayValue term.
type ArrayValueData struct {
	ArrayType *Term
	Elements  []*Term
}

// UnionValueData is the payload of a KindUnionValue term: a tagged
// constant picking one union member.
type UnionValueData struct {
	UnionType *Term
	Tag       int
	Value     *Term
}

// IntegerValueData is the payload of a KindIntegerValue term.
type IntegerValueData struct {
	IntType *Term
	Value   int64
}

// StringValueData is the payload of a KindStringValue term.
type StringValueData struct{ Value string }

// DefaultValueData is the payload of a KindDefaultValue term: the
// canonical zero value of a type.
type DefaultValueData struct{ Of *Term }

// MovableValueData is the payload of a KindMovableValue term: a pure cast
// marking an otherwise-lvalue-shaped constant as movable in lowering.
type MovableValueData struct{ Value *Term }

// UpRefValueData is the payload of a KindUpRefValue term: a compile-time
// constant upward-reference path used to recover an enclosing pointer.
type UpRefValueData struct{ Path *UpRef }

// ElementValueData is the payload of a KindElementValue term: the pure
// value of member/index Index of Base.
type ElementValueData struct {
	Base  *Term
	Index int
}

// PointerToData is the payload of a KindPointerTo term: address-of.
type PointerToData struct{ Target *Term }

// PointerTargetData is the payload of a KindPointerTarget term:
// dereference.
type PointerTargetData struct{ Pointer *Term }

// OuterValueData is the payload of a KindOuterValue term: recovering a
// pointer to the enclosing aggregate named by Path from Inner.
type OuterValueData struct {
	Inner *Term
	Path  *UpRef
}

// StructValue returns the interned struct constant.
func (b *Builder) StructValue(structType *Term, fields []*Term) *Term {
	t := &Term{kind: KindStructValue, typ: structType, mode: ModeValue, pure: true, storage: StorageNone,
		data: StructValueData{StructType: structType, Fields: append([]*Term(nil), fields...)}}
	return b.internPure(t)
}

// ArrayValue returns the interned array constant.
func (b *Builder) ArrayValue(arrayType *Term, elements []*Term) *Term {
	t := &Term{kind: KindArrayValue, typ: arrayType, mode: ModeValue, pure: true, storage: StorageNone,
		data: ArrayValueData{ArrayType: arrayType, Elements: append([]*Term(nil), elements...)}}
	return b.internPure(t)
}

// UnionValue returns the interned tagged union constant.
func (b *Builder) UnionValue(unionType *Term, tag int, value *Term) *Term {
	t := &Term{kind: KindUnionValue, typ: unionType, mode: ModeValue, pure: true, storage: StorageNone,
		data: UnionValueData{UnionType: unionType, Tag: tag, Value: value}}
	return b.internPure(t)
}

// IntegerValue returns the interned integer constant of intType.
func (b *Builder) IntegerValue(intType *Term, value int64) *Term {
	t := &Term{kind: KindIntegerValue, typ: intType, mode: ModeValue, pure: true, storage: StorageNone,
		data: IntegerValueData{IntType: intType, Value: value}}
	return b.internPure(t)
}

// StringValue returns the interned string constant. value is first
// brought to Unicode NFC form so two source literals that spell the same
// text with different combining-character compositions still intern to
// one term (spec §3's "structurally equal terms are identical" applied
// to the one constant kind whose structural equality isn't obvious from
// its bytes alone).
func (b *Builder) StringValue(stringType *Term, value string) *Term {
	if !norm.NFC.IsNormalString(value) {
		value = norm.NFC.String(value)
	}
	t := &Term{kind: KindStringValue, typ: stringType, mode: ModeValue, pure: true, storage: StorageNone,
		data: StringValueData{Value: value}}
	return b.internPure(t)
}

// DefaultValue returns the interned canonical zero value of typ.
func (b *Builder) DefaultValue(typ *Term) *Term {
	t := &Term{kind: KindDefaultValue, typ: typ, mode: ModeValue, pure: true, storage: StorageNone,
		data: DefaultValueData{Of: typ}}
	return b.internPure(t)
}

// MovableValue marks value as movable for lowering's lifecycle protocol
// (spec §4.4.3): the lowerer prefers move_init over copy_init when the
// initializer is wrapped in MovableValue.
func (b *Builder) MovableValue(value *Term) *Term {
	t := &Term{kind: KindMovableValue, typ: value.typ, mode: value.mode, pure: value.pure, storage: StorageNone,
		data: MovableValueData{Value: value}}
	return b.internPure(t)
}

// UpRefValue returns the interned compile-time constant naming path.
func (b *Builder) UpRefValue(pointerType *Term, path *UpRef) *Term {
	t := &Term{kind: KindUpRefValue, typ: pointerType, mode: ModeValue, pure: true, storage: StorageNone,
		data: UpRefValueData{Path: path}}
	return b.internPure(t)
}

// ElementValue returns the interned pure projection of member/index index
// out of base.
func (b *Builder) ElementValue(elemType *Term, base *Term, index int) *Term {
	t := &Term{kind: KindElementValue, typ: elemType, mode: ModeValue, pure: base.pure, storage: StorageNone,
		data: ElementValueData{Base: base, Index: index}}
	return b.internPure(t)
}

// PointerTo returns the interned address-of target. target must be
// addressable (mode lref); the pointer type wraps target's type.
func (b *Builder) PointerTo(target *Term) *Term {
	ptrType := b.PointerType(target.typ)
	t := &Term{kind: KindPointerTo, typ: ptrType, mode: ModeValue, pure: target.pure, storage: StorageNone,
		data: PointerToData{Target: target}}
	return b.internPure(t)
}

// PointerTarget returns the interned dereference of pointer, yielding an
// lvalue of the pointer's pointee type.
func (b *Builder) PointerTarget(pointer *Term) *Term {
	pd := pointer.typ.data.(PointerData)
	t := &Term{kind: KindPointerTarget, typ: pd.Pointee, mode: ModeLRef, pure: pointer.pure, storage: StorageNone,
		data: PointerTargetData{Pointer: pointer}}
	return b.internPure(t)
}

// OuterValue recovers a pointer to the enclosing aggregate named by path
// from inner, per the upward-reference design of spec §3/§4.1.
func (b *Builder) OuterValue(outerPointerType *Term, inner *Term, path *UpRef) *Term {
	t := &Term{kind: KindOuterValue, typ: outerPointerType, mode: ModeValue, pure: inner.pure, storage: StorageNone,
		data: OuterValueData{Inner: inner, Path: path}}
	return b.internPure(t)
}
