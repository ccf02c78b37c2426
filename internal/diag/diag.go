// Package diag provides the core's structured diagnostic records and the
// error-kind taxonomy shared by term construction, static dispatch and
// function lowering.
package diag

import (
	"fmt"
	"strings"
)

// Kind classifies a diagnostic by the taxonomy of spec §7.
type Kind int

const (
	// ParseError originates in the parser callback; fatal to the unit.
	ParseError Kind = iota
	// TypeMismatch is raised by a term constructor or the lowerer when
	// term kinds disagree.
	TypeMismatch
	// MalformedTerm is raised when a term fails a structural invariant.
	MalformedTerm
	// IndexOutOfRange is raised when a parameter index escapes its binder.
	IndexOutOfRange
	// OverloadNotFound is raised by the resolver when no candidate matches.
	OverloadNotFound
	// OverloadAmbiguous is raised when more than one candidate is maximal.
	OverloadAmbiguous
	// CircularGlobal is raised by the global scheduler on a dependency cycle.
	CircularGlobal
	// CircularGeneric is raised when a generic's body construction
	// recursively demands its own resolved body.
	CircularGeneric
	// LifecycleForbidden is raised when a move/copy is required but disabled.
	LifecycleForbidden
	// NotGlobal is an internal control-flow signal; it must never escape
	// the global builder (§7).
	NotGlobal
	// InternalInvariant marks a core bug; fatal, aborts with diagnostic.
	InternalInvariant
)

// fatal reports whether a Kind short-circuits further work on its unit.
func (k Kind) fatal() bool {
	switch k {
	case ParseError, InternalInvariant:
		return true
	default:
		return false
	}
}

func (k Kind) String() string {
	switch k {
	case ParseError:
		return "ParseError"
	case TypeMismatch:
		return "TypeMismatch"
	case MalformedTerm:
		return "MalformedTerm"
	case IndexOutOfRange:
		return "IndexOutOfRange"
	case OverloadNotFound:
		return "OverloadNotFound"
	case OverloadAmbiguous:
		return "OverloadAmbiguous"
	case CircularGlobal:
		return "CircularGlobal"
	case CircularGeneric:
		return "CircularGeneric"
	case LifecycleForbidden:
		return "LifecycleForbidden"
	case NotGlobal:
		return "NotGlobal"
	case InternalInvariant:
		return "InternalInvariant"
	default:
		return "Unknown"
	}
}

// Location is a primary or supplementary source-location reference.
// The core treats locations as opaque descriptors handed to it by the
// parser callback (spec §6); it never parses or formats file contents.
type Location struct {
	File   string
	Line   int
	Column int
}

func (l Location) String() string {
	if l.File == "" {
		return fmt.Sprintf("%d:%d", l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// Note is a supplementary location carrying its own message, e.g. "other
// candidate declared here".
type Note struct {
	Location Location
	Message  string
}

// Diagnostic is a single structured compile error (spec §6, "IR2 module
// sink" / "Exit codes" contract: structured records, not formatted text).
type Diagnostic struct {
	Kind     Kind
	Message  string
	Location Location
	Notes    []Note
}

func (d *Diagnostic) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: %s: %s", d.Location, d.Kind, d.Message)
	for _, n := range d.Notes {
		fmt.Fprintf(&sb, "\n  note: %s: %s", n.Location, n.Message)
	}
	return sb.String()
}

// New builds a Diagnostic with no supplementary notes.
func New(kind Kind, loc Location, format string, args ...any) *Diagnostic {
	return &Diagnostic{Kind: kind, Message: fmt.Sprintf(format, args...), Location: loc}
}

// WithNote appends a supplementary location+message and returns d for chaining.
func (d *Diagnostic) WithNote(loc Location, format string, args ...any) *Diagnostic {
	d.Notes = append(d.Notes, Note{Location: loc, Message: fmt.Sprintf(format, args...)})
	return d
}

// Context collects the local errors raised while compiling one unit, and
// tracks whether a fatal diagnostic has short-circuited further work.
//
// Every CompileContext owns exactly one Context (spec §5: "a compilation
// action is atomic... partially-constructed state is unwound"). NotGlobal
// is deliberately not a Kind constructors here can emit: it is caught
// inside the global builder (internal/globals) and converted into
// initializer synthesis before it would ever reach this collector.
type Context struct {
	errs  []*Diagnostic
	fatal bool
}

// NewContext returns an empty diagnostic collector.
func NewContext() *Context {
	return &Context{}
}

// Report records d. If d is fatal-tagged, subsequent non-fatal work on the
// same unit should stop; callers check Fatal() at their own granularity.
func (c *Context) Report(d *Diagnostic) {
	c.errs = append(c.errs, d)
	if d.Kind.fatal() {
		c.fatal = true
	}
}

// Fatal reports whether a fatal-tagged diagnostic has been recorded.
func (c *Context) Fatal() bool { return c.fatal }

// Errors returns all diagnostics recorded so far, in report order.
func (c *Context) Errors() []*Diagnostic { return c.errs }

// HasErrors reports whether any diagnostic has been recorded. A non-empty
// error list at the end of a driver request is a user-visible compilation
// failure (spec §7).
func (c *Context) HasErrors() bool { return len(c.errs) > 0 }
