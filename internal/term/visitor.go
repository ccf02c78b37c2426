package term

// Visitor is the single dispatch interface replacing the teacher's
// per-class vtables (spec §9 REDESIGN FLAG): Visit is called once per
// node in preorder; returning false stops the walk below that node.
type Visitor interface {
	Visit(t *Term) bool
}

type visitorFunc func(t *Term) bool

func (f visitorFunc) Visit(t *Term) bool { return f(t) }

// Walk traverses t and its children in preorder, calling v.Visit on each
// node reached. Unlike Parameterize/Specialize/Anonymize, Walk does not
// rebuild anything — it is purely for inspection (e.g. the "no Anonymous
// reachable" check of NoFreeAnonymous).
func Walk(v Visitor, t *Term) {
	if t == nil || !v.Visit(t) {
		return
	}
	for _, c := range children(t) {
		Walk(v, c)
	}
}

// children returns t's immediate child terms, independent of whether t is
// pure or identity-addressed.
func children(t *Term) []*Term {
	switch d := t.data.(type) {
	case PointerData:
		return []*Term{d.Pointee}
	case ArrayData:
		return []*Term{d.Elem}
	case StructData:
		return memberTypes(d.Members)
	case UnionData:
		return memberTypes(d.Members)
	case FunctionTypeData:
		out := make([]*Term, 0, len(d.Params)+1)
		for _, p := range d.Params {
			out = append(out, p.Type)
		}
		if d.ResultType != nil {
			out = append(out, d.ResultType)
		}
		return out
	case TypeInstanceData:
		return append([]*Term{d.Generic}, d.Args...)
	case DerivedTypeData:
		return []*Term{d.Value}
	case BinderData:
		return append(append([]*Term{}, d.Domains...), d.Body)
	case StructValueData:
		return append([]*Term{d.StructType}, d.Fields...)
	case ArrayValueData:
		return append([]*Term{d.ArrayType}, d.Elements...)
	case UnionValueData:
		return []*Term{d.UnionType, d.Value}
	case IntegerValueData:
		return []*Term{d.IntType}
	case DefaultValueData:
		return []*Term{d.Of}
	case MovableValueData:
		return []*Term{d.Value}
	case ElementValueData:
		return []*Term{d.Base}
	case PointerToData:
		return []*Term{d.Target}
	case PointerTargetData:
		return []*Term{d.Pointer}
	case OuterValueData:
		return []*Term{d.Inner}
	case BlockData:
		return append(append([]*Term{}, d.Statements...), d.Tail)
	case StatementData:
		return []*Term{d.Value}
	case IfThenElseData:
		return []*Term{d.Cond, d.Then, d.Else}
	case JumpGroupData:
		out := []*Term{d.Init}
		for _, e := range d.Entries {
			out = append(out, e.Body)
		}
		return out
	case JumpToData:
		return []*Term{d.Arg}
	case TryFinallyData:
		return []*Term{d.Try, d.Finally}
	case InitializePointerData:
		return []*Term{d.Pointer, d.Value}
	case FinalizePointerData:
		return []*Term{d.Pointer}
	case AssignPointerData:
		return []*Term{d.Pointer, d.Value}
	case FunctionCallData:
		return append([]*Term{d.Callee}, d.Args...)
	case FunctionalEvaluateData:
		return []*Term{d.Inner}
	case IntroduceImplementationData:
		return append(append([]*Term{}, d.Implementations...), d.Body)
	default:
		return nil
	}
}

func memberTypes(ms []Member) []*Term {
	out := make([]*Term, len(ms))
	for i, m := range ms {
		out[i] = m.Type
	}
	return out
}

// NoFreeAnonymous reports true when no Anonymous node is reachable from
// t. Module.Add does not call it: inserting a module-global whose body
// still reaches an Anonymous is not rejected.
func NoFreeAnonymous(t *Term) bool {
	clean := true
	Walk(visitorFunc(func(n *Term) bool {
		if n.kind == KindAnonymous {
			clean = false
			return false
		}
		return clean
	}), t)
	return clean
}
