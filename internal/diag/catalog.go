package diag

// Message Catalog
//
// Standardised, lowercase, present-tense error message formats used across
// term construction, static dispatch and lowering. Keeping these as named
// constants (rather than inline fmt.Sprintf literals scattered through the
// core) lets every call site and every test refer to the same wording.

const (
	// Term construction (internal/term)
	MsgTypeMismatchKind    = "expected term kind %s, got %s"
	MsgTypeMismatchArity   = "constructor %s expects %d children, got %d"
	MsgMalformedNotType    = "term %s does not denote a type"
	MsgMalformedMode       = "term has invalid mode %s for kind %s"
	MsgBottomEscaped       = "bottom-moded term used in a position that must return"

	// Binding algebra (internal/term)
	MsgIndexOutOfRange = "parameter index %d at depth 0 exceeds %d bound locals"
	MsgFreeAnonymous   = "anonymous term %p escaped its defining scope unclosed"

	// Static dispatch (internal/dispatch)
	MsgOverloadNotFound   = "no implementation of %s matches argument shapes %s"
	MsgOverloadAmbiguous  = "ambiguous implementations of %s for %s: %s"

	// Lifecycle (internal/lower)
	MsgLifecycleForbidden = "type %s disables %s; a copy/move was required here"
	MsgCleanupUnbalanced  = "cleanup stack left with %d unmatched entries at scope exit"

	// Global scheduling (internal/globals)
	MsgCircularGlobal  = "circular initializer dependency: %s"
	MsgCircularGeneric = "generic %s's body construction recursively demands its own body"
	MsgNotGlobal       = "value cannot be lowered as a pure constant: %s"

	// Internal invariants
	MsgInternalInvariant = "internal invariant violated: %s"
)
