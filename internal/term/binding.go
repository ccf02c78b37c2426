package term

import "github.com/cwbudde/irc/internal/diag"

// This file implements the binding algebra of spec §4.2:
// Parameterize, Specialize, Anonymize and Match. All four share one
// depth-tracking recursive walk (walkKind below) that crosses Exists/
// ForAll binders — the only node kinds that shift de Bruijn depth.

// leaf reports whether t's kind never needs depth-aware rewriting: it is
// either module-scope (owned by a Module, never nested inside a binding
// scope) or a dispatch-site term. These are returned unchanged by every
// operation in this file.
func leaf(k Kind) bool {
	switch k {
	case KindGlobalVariable, KindFunction, KindGlobalStatement, KindExternalGlobal,
		KindLibrarySymbol, KindGlobalEvaluate, KindGenericType,
		KindInterface, KindImplementation, KindMetadataType, KindMetadata:
		return true
	default:
		return false
	}
}

// ---- Parameterize ----

// Parameterize replaces free occurrences of each Anonymous in locals by
// Parameter(depth, index), where depth counts the Exists/ForAll binders
// crossed between the root of term and the occurrence (spec §4.2).
func Parameterize(b *Builder, t *Term, locals []*Term) *Term {
	return paramRec(b, t, locals, 0)
}

func paramRec(b *Builder, t *Term, locals []*Term, depth int) *Term {
	if t == nil || leaf(t.kind) {
		return t
	}
	if t.kind == KindAnonymous {
		for k, loc := range locals {
			if loc == t {
				return b.Parameter(t.typ, depth, k)
			}
		}
		return t
	}
	return rebuildAtDepth(b, t, depth, func(child *Term, childDepth int) *Term {
		return paramRec(b, child, locals, childDepth)
	})
}

// ---- Specialize ----

// Specialize replaces Parameter(depth=0, index=k) with values[k],
// decrementing the depth of every Parameter found deeper than 0 (spec
// §4.2). An index at depth 0 that is >= len(values) is IndexOutOfRange.
func Specialize(b *Builder, t *Term, values []*Term) (*Term, error) {
	return specRec(b, t, values, 0)
}

func specRec(b *Builder, t *Term, values []*Term, depth int) (*Term, error) {
	if t == nil || leaf(t.kind) {
		return t, nil
	}
	if t.kind == KindParameter {
		pd := t.data.(ParameterData)
		if pd.Depth < depth {
			return t, nil // bound by an intervening binder; untouched
		}
		if pd.Depth == depth {
			if pd.Index < 0 || pd.Index >= len(values) {
				return nil, diag.New(diag.IndexOutOfRange, diag.Location{}, diag.MsgIndexOutOfRange, pd.Index, len(values))
			}
			return values[pd.Index], nil
		}
		return b.Parameter(t.typ, pd.Depth-1, pd.Index), nil
	}
	var firstErr error
	result := rebuildAtDepth(b, t, depth, func(child *Term, childDepth int) *Term {
		if firstErr != nil {
			return child
		}
		r, err := specRec(b, child, values, childDepth)
		if err != nil {
			firstErr = err
			return child
		}
		return r
	})
	if firstErr != nil {
		return nil, firstErr
	}
	return result, nil
}

// ---- Anonymize ----

// Anonymize replaces every reference to a term in statements, or to any
// other non-pure node reachable from term, with a fresh Parameter bound
// by a new outermost Exists — yielding a pure term whose type safely
// outlives the statements about to go out of scope (spec §4.2, used to
// compute a block's result type over its own locals).
func Anonymize(b *Builder, t *Term, statements []*Term) *Term {
	var freshDomains []*Term
	var captured []*Term
	index := func(target *Term) int {
		for i, c := range captured {
			if c == target {
				return i
			}
		}
		return -1
	}
	needsCapture := func(target *Term) bool {
		if !target.pure {
			return true
		}
		for _, s := range statements {
			if s == target {
				return true
			}
		}
		return false
	}
	var rec func(t *Term, depth int) *Term
	rec = func(t *Term, depth int) *Term {
		if t == nil || leaf(t.kind) {
			return t
		}
		if needsCapture(t) {
			i := index(t)
			if i < 0 {
				i = len(captured)
				captured = append(captured, t)
				freshDomains = append(freshDomains, t.typ)
			}
			return b.Parameter(t.typ, depth, i)
		}
		return rebuildAtDepth(b, t, depth, func(child *Term, childDepth int) *Term {
			return rec(child, childDepth)
		})
	}
	body := rec(t, 0)
	if len(captured) == 0 {
		return t
	}
	return b.Exists(freshDomains, body)
}

// ---- Match ----

// Match performs first-order unification of pattern against value,
// filling wildcards (spec §4.2). A Parameter at the pattern's current
// binder depth is a wildcard slot; Anonymous/Statement references in the
// pattern match only the identical node in value.
func Match(pattern, value *Term, wildcards []*Term) bool {
	bindings := make([]*Term, len(wildcards))
	ok := matchRec(pattern, value, bindings, 0)
	if ok {
		copy(wildcards, bindings)
	}
	return ok
}

func matchRec(pattern, value *Term, bindings []*Term, depth int) bool {
	if pattern == value {
		return true
	}
	if pattern == nil || value == nil {
		return false
	}
	if pattern.kind == KindParameter {
		pd := pattern.data.(ParameterData)
		if pd.Depth == depth {
			if pd.Index < 0 || pd.Index >= len(bindings) {
				return false
			}
			if bindings[pd.Index] == nil {
				bindings[pd.Index] = value
				return true
			}
			return bindings[pd.Index] == value
		}
	}
	if pattern.kind == KindAnonymous {
		return pattern == value
	}
	if pattern.kind != value.kind {
		return false
	}
	switch pd := pattern.data.(type) {
	case PrimitiveData:
		vd := value.data.(PrimitiveData)
		return pd.Name == vd.Name
	case PointerData:
		vd := value.data.(PointerData)
		return matchRec(pd.Pointee, vd.Pointee, bindings, depth)
	case ArrayData:
		vd := value.data.(ArrayData)
		return pd.Size == vd.Size && matchRec(pd.Elem, vd.Elem, bindings, depth)
	case StructData:
		vd := value.data.(StructData)
		if len(pd.Members) != len(vd.Members) {
			return false
		}
		for i := range pd.Members {
			if pd.Members[i].Name != vd.Members[i].Name || !matchRec(pd.Members[i].Type, vd.Members[i].Type, bindings, depth) {
				return false
			}
		}
		return true
	case TypeInstanceData:
		vd := value.data.(TypeInstanceData)
		if len(pd.Args) != len(vd.Args) || !matchRec(pd.Generic, vd.Generic, bindings, depth) {
			return false
		}
		for i := range pd.Args {
			if !matchRec(pd.Args[i], vd.Args[i], bindings, depth) {
				return false
			}
		}
		return true
	case DerivedTypeData:
		vd := value.data.(DerivedTypeData)
		return matchRec(pd.Value, vd.Value, bindings, depth) && equalUpRef(pd.UpRef, vd.UpRef)
	case BinderData:
		vd := value.data.(BinderData)
		if len(pd.Domains) != len(vd.Domains) {
			return false
		}
		for i := range pd.Domains {
			if !matchRec(pd.Domains[i], vd.Domains[i], bindings, depth) {
				return false
			}
		}
		return matchRec(pd.Body, vd.Body, bindings, depth+1)
	case ElementValueData:
		vd := value.data.(ElementValueData)
		return pd.Index == vd.Index && matchRec(pd.Base, vd.Base, bindings, depth)
	case IntegerValueData:
		vd := value.data.(IntegerValueData)
		return pd.Value == vd.Value && matchRec(pd.IntType, vd.IntType, bindings, depth)
	case StringValueData:
		vd := value.data.(StringValueData)
		return pd.Value == vd.Value
	default:
		return pattern == value
	}
}

// rebuildAtDepth reconstructs t from its children, applying fn to each
// child (with depth incremented if t is a binder). Matches the hash.go
// kind set one-for-one.
func rebuildAtDepth(b *Builder, t *Term, depth int, fn func(child *Term, childDepth int) *Term) *Term {
	switch d := t.data.(type) {
	case PrimitiveData:
		return t
	case PointerData:
		return b.PointerType(fn(d.Pointee, depth))
	case ArrayData:
		return b.ArrayType(fn(d.Elem, depth), d.Size)
	case StructData:
		members := make([]Member, len(d.Members))
		for i, m := range d.Members {
			members[i] = Member{Name: m.Name, Type: fn(m.Type, depth)}
		}
		return b.StructType(d.Name, members)
	case UnionData:
		members := make([]Member, len(d.Members))
		for i, m := range d.Members {
			members[i] = Member{Name: m.Name, Type: fn(m.Type, depth)}
		}
		return b.UnionType(d.Name, members)
	case FunctionTypeData:
		params := make([]FunctionParam, len(d.Params))
		for i, p := range d.Params {
			params[i] = FunctionParam{Type: fn(p.Type, depth), Mode: p.Mode}
		}
		var resultType *Term
		if d.ResultType != nil {
			resultType = fn(d.ResultType, depth)
		}
		ft, _ := b.FunctionType(params, d.Result, resultType)
		return ft
	case TypeInstanceData:
		args := make([]*Term, len(d.Args))
		for i, a := range d.Args {
			args[i] = fn(a, depth)
		}
		return b.TypeInstance(fn(d.Generic, depth), args)
	case DerivedTypeData:
		return b.DerivedType(fn(d.Value, depth), d.UpRef)
	case BinderData:
		domains := make([]*Term, len(d.Domains))
		for i, dom := range d.Domains {
			domains[i] = fn(dom, depth)
		}
		body := fn(d.Body, depth+1)
		if t.kind == KindExists {
			return b.Exists(domains, body)
		}
		return b.ForAll(domains, body)
	case ParameterData:
		return t
	case StructValueData:
		fields := make([]*Term, len(d.Fields))
		for i, f := range d.Fields {
			fields[i] = fn(f, depth)
		}
		return b.StructValue(fn(d.StructType, depth), fields)
	case ArrayValueData:
		elems := make([]*Term, len(d.Elements))
		for i, e := range d.Elements {
			elems[i] = fn(e, depth)
		}
		return b.ArrayValue(fn(d.ArrayType, depth), elems)
	case UnionValueData:
		return b.UnionValue(fn(d.UnionType, depth), d.Tag, fn(d.Value, depth))
	case IntegerValueData:
		return b.IntegerValue(fn(d.IntType, depth), d.Value)
	case StringValueData:
		return t
	case DefaultValueData:
		return b.DefaultValue(fn(d.Of, depth))
	case MovableValueData:
		return b.MovableValue(fn(d.Value, depth))
	case UpRefValueData:
		return t
	case ElementValueData:
		return b.ElementValue(t.typ, fn(d.Base, depth), d.Index)
	case PointerToData:
		return b.PointerTo(fn(d.Target, depth))
	case PointerTargetData:
		return b.PointerTarget(fn(d.Pointer, depth))
	case OuterValueData:
		return b.OuterValue(t.typ, fn(d.Inner, depth), d.Path)

	case BlockData:
		stmts := make([]*Term, len(d.Statements))
		for i, s := range d.Statements {
			stmts[i] = fn(s, depth)
		}
		var tail *Term
		if d.Tail != nil {
			tail = fn(d.Tail, depth)
		}
		return b.Block(t.typ, t.mode, stmts, tail)
	case StatementData:
		return b.Statement(fn(d.Value, depth), d.StmtMode)
	case IfThenElseData:
		return b.IfThenElse(t.typ, fn(d.Cond, depth), fn(d.Then, depth), fn(d.Else, depth))
	case JumpGroupData:
		entries := make([]JumpEntry, len(d.Entries))
		for i, e := range d.Entries {
			entries[i] = JumpEntry{Target: e.Target, Body: fn(e.Body, depth)}
		}
		var init *Term
		if d.Init != nil {
			init = fn(d.Init, depth)
		}
		return b.JumpGroup(t.typ, init, entries)
	case JumpTargetData:
		return t
	case JumpToData:
		var arg *Term
		if d.Arg != nil {
			arg = fn(d.Arg, depth)
		}
		return b.JumpTo(d.Target, arg)
	case TryFinallyData:
		return b.TryFinally(fn(d.Try, depth), fn(d.Finally, depth), d.ExceptionOnly)
	case InitializePointerData:
		return b.InitializePointer(fn(d.Pointer, depth), fn(d.Value, depth))
	case FinalizePointerData:
		return b.FinalizePointer(fn(d.Pointer, depth))
	case AssignPointerData:
		return b.AssignPointer(fn(d.Pointer, depth), fn(d.Value, depth))
	case FunctionCallData:
		args := make([]*Term, len(d.Args))
		for i, a := range d.Args {
			args[i] = fn(a, depth)
		}
		return b.FunctionCall(t.typ, t.mode, fn(d.Callee, depth), args)
	case FunctionalEvaluateData:
		return b.FunctionalEvaluate(fn(d.Inner, depth))
	case IntroduceImplementationData:
		impls := make([]*Term, len(d.Implementations))
		for i, im := range d.Implementations {
			impls[i] = fn(im, depth)
		}
		return b.IntroduceImplementation(impls, fn(d.Body, depth))
	default:
		return t
	}
}
