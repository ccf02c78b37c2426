// Package term implements the core's universal IR1 node (spec §3), its
// structural-hash interning pool, and the binding algebra of spec §4.2.
//
// Per the REDESIGN FLAG of spec §9, Term is a single tagged variant rather
// than the teacher's per-node-kind Go types (internal/ast in the teacher
// had one struct per AST production): every Term carries a Kind
// discriminator and a kind-specific payload in data, and code that would
// have been a method on a concrete node type becomes a case arm in a
// Visitor (see visitor.go).
package term

import "fmt"

// Kind discriminates the tagged variant. One constant per row of the
// spec §3 term-subkind table.
type Kind int

const (
	KindMetatype Kind = iota
	KindPrimitiveType
	KindPointerType
	KindArrayType
	KindStructType
	KindUnionType
	KindFunctionType
	KindTypeInstance
	KindDerivedType
	KindExists
	KindForAll
	KindParameter
	KindAnonymous

	KindStructValue
	KindArrayValue
	KindUnionValue
	KindIntegerValue
	KindStringValue
	KindDefaultValue
	KindMovableValue
	KindUpRefValue

	KindElementValue
	KindPointerTo
	KindPointerTarget
	KindOuterValue

	KindBlock
	KindStatement
	KindIfThenElse
	KindJumpGroup
	KindJumpTarget
	KindJumpTo

	KindTryFinally
	KindInitializePointer
	KindFinalizePointer
	KindAssignPointer
	KindFunctionCall
	KindFunctionalEvaluate
	KindIntroduceImplementation

	KindGlobalVariable
	KindFunction
	KindGlobalStatement
	KindExternalGlobal
	KindLibrarySymbol
	KindGlobalEvaluate

	KindGenericType

	KindInterface
	KindImplementation
	KindMetadataType
	KindMetadata
)

var kindNames = map[Kind]string{
	KindMetatype: "Metatype", KindPrimitiveType: "PrimitiveType",
	KindPointerType: "PointerType", KindArrayType: "ArrayType",
	KindStructType: "StructType", KindUnionType: "UnionType",
	KindFunctionType: "FunctionType", KindTypeInstance: "TypeInstance",
	KindDerivedType: "DerivedType", KindExists: "Exists", KindForAll: "ForAll",
	KindParameter: "Parameter", KindAnonymous: "Anonymous",
	KindStructValue: "StructValue", KindArrayValue: "ArrayValue",
	KindUnionValue: "UnionValue", KindIntegerValue: "IntegerValue",
	KindStringValue: "StringValue", KindDefaultValue: "DefaultValue",
	KindMovableValue: "MovableValue", KindUpRefValue: "UpRefValue",
	KindElementValue: "ElementValue", KindPointerTo: "PointerTo",
	KindPointerTarget: "PointerTarget", KindOuterValue: "OuterValue",
	KindBlock: "Block", KindStatement: "Statement",
	KindIfThenElse: "IfThenElse", KindJumpGroup: "JumpGroup",
	KindJumpTarget: "JumpTarget", KindJumpTo: "JumpTo",
	KindTryFinally: "TryFinally", KindInitializePointer: "InitializePointer",
	KindFinalizePointer: "FinalizePointer", KindAssignPointer: "AssignPointer",
	KindFunctionCall: "FunctionCall", KindFunctionalEvaluate: "FunctionalEvaluate",
	KindIntroduceImplementation: "IntroduceImplementation",
	KindGlobalVariable: "GlobalVariable", KindFunction: "Function",
	KindGlobalStatement: "GlobalStatement", KindExternalGlobal: "ExternalGlobal",
	KindLibrarySymbol: "LibrarySymbol", KindGlobalEvaluate: "GlobalEvaluate",
	KindGenericType: "GenericType", KindInterface: "Interface",
	KindImplementation: "Implementation", KindMetadataType: "MetadataType",
	KindMetadata: "Metadata",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Mode classifies how a term's value is held (spec §3).
type Mode int

const (
	ModeValue Mode = iota
	ModeLRef
	ModeRRef
	ModeBottom
)

func (m Mode) String() string {
	switch m {
	case ModeValue:
		return "value"
	case ModeLRef:
		return "lref"
	case ModeRRef:
		return "rref"
	case ModeBottom:
		return "bottom"
	default:
		return "mode?"
	}
}

// StorageClass describes, for a term that denotes a type, its storage
// discipline (spec §3's type-info descriptor).
type StorageClass int

const (
	StorageNone StorageClass = iota
	StorageMetatype
	StoragePrimitive
	StorageComplex
)

func (s StorageClass) String() string {
	switch s {
	case StorageNone:
		return "none"
	case StorageMetatype:
		return "metatype"
	case StoragePrimitive:
		return "primitive"
	case StorageComplex:
		return "complex"
	default:
		return "storage?"
	}
}

// Term is the universal IR1 node (spec §3). Pure terms are hash-consed:
// structurally equal pure terms share one *Term (intern invariant).
// Effect/identity terms (blocks, statements, jumps, function bodies,
// module-scope symbols) are allocated fresh on every construction and are
// compared by pointer.
type Term struct {
	kind    Kind
	typ     *Term // the Metatype singleton is its own type; nil for terms built without a type (see Type)
	mode    Mode
	pure    bool
	storage StorageClass

	// hash is the structural hash for pure terms; unused (zero) for
	// identity terms, which are never looked up by hash.
	hash uint64

	// data holds the kind-specific payload; see types.go, values.go,
	// control.go, module.go and generic.go for the payload structs.
	data any

	// seq disambiguates identity terms and gives every term a stable,
	// printable handle independent of pointer value (useful for
	// deterministic dumps/snapshots).
	seq uint64
}

// Kind returns the term's discriminator.
func (t *Term) Kind() Kind { return t.kind }

// Type returns the term's type (another Term). The Metatype singleton's
// type is itself. Terms built without a type return nil: JumpTo,
// InitializePointer, FinalizePointer, AssignPointer, GlobalStatement,
// Interface, MetadataType, Implementation and Metadata terms, and any
// Block, IfThenElse or JumpGroup whose caller passed a nil type.
func (t *Term) Type() *Term { return t.typ }

// Mode returns the term's value mode.
func (t *Term) Mode() Mode { return t.mode }

// Pure reports whether evaluating t has no observable effect.
func (t *Term) Pure() bool { return t.pure }

// Storage returns the storage class when t denotes a type; StorageNone
// otherwise.
func (t *Term) Storage() StorageClass { return t.storage }

// Seq returns a stable, process-local identity number, primarily for
// deterministic text dumps of identity (non-interned) terms.
func (t *Term) Seq() uint64 { return t.seq }

// Data returns the kind-specific payload. Callers type-assert against the
// payload type documented alongside the Kind's constructor.
func (t *Term) Data() any { return t.data }

func (t *Term) String() string {
	return fmt.Sprintf("%s#%d", t.kind, t.seq)
}

// IsBottom reports whether t's mode is ModeBottom. Per spec §3, bottom is
// absorbing: any term taking a bottom argument in a strict position must
// itself be constructed as bottom by its constructor.
func (t *Term) IsBottom() bool { return t.mode == ModeBottom }
