package term

import "github.com/cwbudde/irc/internal/diag"

// delayedState is the state of a one-shot memoised thunk (spec §9
// "Delayed values"): {ready(closure), running, done(value), failed}.
type delayedState int

const (
	delayedPending delayedState = iota
	delayedRunning
	delayedDone
	delayedFailed
)

// Delayed is a one-shot memoised thunk producing a *Term. Reentrant
// evaluation (the thunk, directly or transitively, forcing itself again
// before it first returns) raises CircularGeneric. Per spec §9's Open
// Question resolution, a Delayed that has already failed re-raises the
// same error on every subsequent Force call rather than silently
// returning a stale or zero value.
type Delayed struct {
	state delayedState
	thunk func() (*Term, error)
	value *Term
	err   error
}

// NewDelayed wraps thunk as a pending one-shot evaluation.
func NewDelayed(thunk func() (*Term, error)) *Delayed {
	return &Delayed{state: delayedPending, thunk: thunk}
}

// Force evaluates the thunk at most once and memoises the result.
func (d *Delayed) Force() (*Term, error) {
	switch d.state {
	case delayedDone:
		return d.value, nil
	case delayedFailed:
		return nil, d.err
	case delayedRunning:
		err := diag.New(diag.CircularGeneric, diag.Location{}, diag.MsgCircularGeneric, "<delayed>")
		d.state = delayedFailed
		d.err = err
		return nil, err
	}
	d.state = delayedRunning
	v, err := d.thunk()
	if err != nil {
		d.state = delayedFailed
		d.err = err
		return nil, err
	}
	d.state = delayedDone
	d.value = v
	d.thunk = nil
	return v, nil
}

// GenericTypeData is the payload of a KindGenericType term (spec §4.7).
// Construction is two-phase: NewGenericType allocates the shell with
// Params already bound to fresh Anonymous placeholders and an empty
// Delayed body; SetBody supplies the callback that produces the body in
// terms of those placeholders, evaluated at most once.
type GenericTypeData struct {
	Name       string
	Params     []*Term // Anonymous placeholders, fresh per GenericType
	body       *Delayed
	complex    bool
	siteValues []*Term // overload values attached directly to this generic
}

// NewGenericType allocates a GenericType shell: a fresh, empty-bodied
// recursive type definition whose parameters are available immediately
// so that a bodyFn given to SetBody can reference the generic itself
// (e.g. via TypeInstance(self, ...)) before the body exists.
func (b *Builder) NewGenericType(name string, paramTypes []*Term, complex bool) *Term {
	params := make([]*Term, len(paramTypes))
	for i, pt := range paramTypes {
		params[i] = b.Anonymous(pt, ModeValue, name)
	}
	t := &Term{kind: KindGenericType, typ: b.Metatype(), mode: ModeValue, pure: true, storage: StorageMetatype,
		data: &GenericTypeData{Name: name, Params: params, complex: complex}}
	return b.freshIdentity(t)
}

// SetBody installs bodyFn as generic's one-shot delayed body. bodyFn
// receives generic itself (already present, so TypeInstance(generic, ...)
// can be formed inside it) and the fresh Anonymous parameter placeholders,
// and returns the body term expressed in terms of those placeholders.
// SetBody then closes the body over its own parameters via Parameterize,
// so repeated TypeInstance applications specialize a single bound body
// (spec §4.7: "the resulting body is then parameterized against those
// anonymouses").
func (b *Builder) SetBody(generic *Term, bodyFn func(self *Term, params []*Term) (*Term, error)) {
	gd := generic.data.(*GenericTypeData)
	gd.body = NewDelayed(func() (*Term, error) {
		raw, err := bodyFn(generic, gd.Params)
		if err != nil {
			return nil, err
		}
		return Parameterize(b, raw, gd.Params), nil
	})
}

// Body forces and returns generic's body term, bound against its own
// parameters (apply Specialize with the TypeInstance's Args to recover a
// concrete instantiation).
func (b *Builder) Body(generic *Term) (*Term, error) {
	gd := generic.data.(*GenericTypeData)
	return gd.body.Force()
}

// AttachOverloadValue registers value (an Implementation or Metadata) as
// applying to every instantiation of generic (spec §4.3 step 1(c): "for
// every argument that is or contains a TypeInstance, the overloads
// attached to that generic").
func (b *Builder) AttachOverloadValue(generic *Term, value *Term) {
	gd := generic.data.(*GenericTypeData)
	gd.siteValues = append(gd.siteValues, value)
}

// GenericSiteValues returns the overload values attached directly to
// generic via AttachOverloadValue.
func GenericSiteValues(generic *Term) []*Term {
	gd := generic.data.(*GenericTypeData)
	return gd.siteValues
}

// ---- Interface / Implementation / MetadataType / Metadata ----

// OverloadSiteData is the shared payload of Interface and MetadataType
// terms (spec §3 "OverloadType/OverloadValue pair"): a pattern with a
// wildcard count, plus the values directly attached to this site.
type OverloadSiteData struct {
	Name       string
	NWildcards int
	Pattern    []*Term
	Values     []*Term
}

// OverloadValueData is the shared payload of Implementation and Metadata
// terms: a concrete instantiation pattern plus its payload.
type OverloadValueData struct {
	NWildcards        int
	Pattern           []*Term
	PatternInterfaces []*Term // other interfaces this implementation depends on
	DerivedParams     []*Term // parameters supplied to PatternInterfaces
	Static            bool    // false: dynamic, Payload is already the in-scope witness
	Payload           any     // e.g. a *term.Term naming the witness function/value
}

// Payload's shape depends on Static (spec §4.3, §4.6):
//
//   - Static == false (dynamic): Payload names the witness directly —
//     a value already in scope, introduced via IntroduceImplementation
//     (spec §4.4) rather than declared on a generic's site. It is used
//     as-is every lookup; there is no template to instantiate, matching
//     the source's "value is a direct reference to the correct value
//     for the interface" (Implementation.hpp's dynamic field).
//   - Static == true (the default for a site-attached Implementation):
//     Payload may be the already-concrete witness (NWildcards == 0, no
//     instantiation needed) or a `func([]*Term) (T, error)` factory
//     keyed by the matched wildcard bindings, one call per distinct
//     (Implementation, wildcards) pair with the result memoised by the
//     caller — mirroring the one-definition-rule global the source
//     synthesises per (interface, concrete-parameter-list)
//     (TvmObjectCompilerBase::get_implementation).

// Interface declares a fresh abstract-operation site with the given
// pattern.
func (b *Builder) Interface(name string, nWildcards int, pattern []*Term) *Term {
	t := &Term{kind: KindInterface, typ: nil, mode: ModeValue, pure: false,
		data: &OverloadSiteData{Name: name, NWildcards: nWildcards, Pattern: append([]*Term(nil), pattern...)}}
	return b.freshIdentity(t)
}

// MetadataType declares a fresh compile-time-value site with the given
// pattern.
func (b *Builder) MetadataType(name string, nWildcards int, pattern []*Term) *Term {
	t := &Term{kind: KindMetadataType, typ: nil, mode: ModeValue, pure: false,
		data: &OverloadSiteData{Name: name, NWildcards: nWildcards, Pattern: append([]*Term(nil), pattern...)}}
	return b.freshIdentity(t)
}

// Implementation attaches a fresh concrete witness to site (an
// Interface), and returns it.
func (b *Builder) Implementation(site *Term, nWildcards int, pattern []*Term, patternInterfaces []*Term, static bool, payload any) *Term {
	t := &Term{kind: KindImplementation, typ: nil, mode: ModeValue, pure: false,
		data: &OverloadValueData{NWildcards: nWildcards, Pattern: append([]*Term(nil), pattern...),
			PatternInterfaces: append([]*Term(nil), patternInterfaces...), Static: static, Payload: payload}}
	b.freshIdentity(t)
	sd := site.data.(*OverloadSiteData)
	sd.Values = append(sd.Values, t)
	return t
}

// Metadata attaches a fresh compile-time value to site (a MetadataType).
func (b *Builder) Metadata(site *Term, nWildcards int, pattern []*Term, payload any) *Term {
	t := &Term{kind: KindMetadata, typ: nil, mode: ModeValue, pure: false,
		data: &OverloadValueData{NWildcards: nWildcards, Pattern: append([]*Term(nil), pattern...), Payload: payload}}
	b.freshIdentity(t)
	sd := site.data.(*OverloadSiteData)
	sd.Values = append(sd.Values, t)
	return t
}
