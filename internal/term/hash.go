package term

// structuralHash and structuralEqual implement the "visitor-driven
// hashing and comparison" design note of spec §9: one case per Kind,
// generated by hand here rather than via reflection, so the intern
// table's lookup stays a single switch. Adding a field to a kind's
// payload means adding it to both functions below — the two are kept
// side by side for that reason.
//
// Because every child *Term referenced from a pure term's payload is
// itself either already interned (pure: pointer equality already implies
// structural equality) or identity-addressed (Anonymous/Statement:
// correctly compared only by pointer per spec §4.2), comparing child
// fields with Go's == is sufficient — no recursive structural descent
// into children is needed, only into this term's own scalar/slice
// fields.

func childKey(t *Term) uint64 {
	if t == nil {
		return 0
	}
	if t.pure {
		return t.hash
	}
	return t.seq
}

func structuralHash(t *Term) uint64 {
	h := uint64(t.kind) + 1
	switch d := t.data.(type) {
	case PrimitiveData:
		h = mixHash(h, hashString(d.Name))
	case PointerData:
		h = mixHash(h, childKey(d.Pointee))
	case ArrayData:
		h = mixHash(h, childKey(d.Elem), uint64(d.Size))
	case StructData:
		h = mixHash(h, hashString(d.Name))
		for _, m := range d.Members {
			h = mixHash(h, hashString(m.Name), childKey(m.Type))
		}
	case UnionData:
		h = mixHash(h, hashString(d.Name))
		for _, m := range d.Members {
			h = mixHash(h, hashString(m.Name), childKey(m.Type))
		}
	case FunctionTypeData:
		h = mixHash(h, uint64(d.Result), childKey(d.ResultType))
		for _, p := range d.Params {
			h = mixHash(h, uint64(p.Mode), childKey(p.Type))
		}
	case TypeInstanceData:
		h = mixHash(h, childKey(d.Generic))
		for _, a := range d.Args {
			h = mixHash(h, childKey(a))
		}
	case DerivedTypeData:
		h = mixHash(h, childKey(d.Value), hashUpRef(d.UpRef))
	case BinderData:
		h = mixHash(h, childKey(d.Body))
		for _, dom := range d.Domains {
			h = mixHash(h, childKey(dom))
		}
	case ParameterData:
		h = mixHash(h, uint64(d.Depth), uint64(d.Index))
	case StructValueData:
		h = mixHash(h, childKey(d.StructType))
		for _, f := range d.Fields {
			h = mixHash(h, childKey(f))
		}
	case ArrayValueData:
		h = mixHash(h, childKey(d.ArrayType))
		for _, e := range d.Elements {
			h = mixHash(h, childKey(e))
		}
	case UnionValueData:
		h = mixHash(h, childKey(d.UnionType), uint64(d.Tag), childKey(d.Value))
	case IntegerValueData:
		h = mixHash(h, childKey(d.IntType), uint64(d.Value))
	case StringValueData:
		h = mixHash(h, hashString(d.Value))
	case DefaultValueData:
		h = mixHash(h, childKey(d.Of))
	case MovableValueData:
		h = mixHash(h, childKey(d.Value))
	case UpRefValueData:
		h = mixHash(h, hashUpRef(d.Path))
	case ElementValueData:
		h = mixHash(h, childKey(d.Base), uint64(d.Index))
	case PointerToData:
		h = mixHash(h, childKey(d.Target))
	case PointerTargetData:
		h = mixHash(h, childKey(d.Pointer))
	case OuterValueData:
		h = mixHash(h, childKey(d.Inner), hashUpRef(d.Path))
	default:
		// Metatype and any identity-only kind reaching here (should not
		// happen: internPure is only ever called on pure constructors).
	}
	return h
}

func hashUpRef(u *UpRef) uint64 {
	if u == nil {
		return 0xdeadbeef
	}
	return mixHash(hashUpRef(u.Next), childKey(u.Outer), uint64(u.Index))
}

func equalUpRef(a, b *UpRef) bool {
	for a != nil && b != nil {
		if a.Outer != b.Outer || a.Index != b.Index {
			return false
		}
		a, b = a.Next, b.Next
	}
	return a == nil && b == nil
}

func structuralEqual(x, y *Term) bool {
	if x.kind != y.kind || x.typ != y.typ || x.mode != y.mode || x.storage != y.storage {
		return false
	}
	switch a := x.data.(type) {
	case PrimitiveData:
		b := y.data.(PrimitiveData)
		return a.Name == b.Name
	case PointerData:
		b := y.data.(PointerData)
		return a.Pointee == b.Pointee
	case ArrayData:
		b := y.data.(ArrayData)
		return a.Elem == b.Elem && a.Size == b.Size
	case StructData:
		b := y.data.(StructData)
		return equalName(a.Name, b.Name) && equalMembers(a.Members, b.Members)
	case UnionData:
		b := y.data.(UnionData)
		return equalName(a.Name, b.Name) && equalMembers(a.Members, b.Members)
	case FunctionTypeData:
		b := y.data.(FunctionTypeData)
		if a.Result != b.Result || a.ResultType != b.ResultType || len(a.Params) != len(b.Params) {
			return false
		}
		for i := range a.Params {
			if a.Params[i].Mode != b.Params[i].Mode || a.Params[i].Type != b.Params[i].Type {
				return false
			}
		}
		return true
	case TypeInstanceData:
		b := y.data.(TypeInstanceData)
		if a.Generic != b.Generic || len(a.Args) != len(b.Args) {
			return false
		}
		for i := range a.Args {
			if a.Args[i] != b.Args[i] {
				return false
			}
		}
		return true
	case DerivedTypeData:
		b := y.data.(DerivedTypeData)
		return a.Value == b.Value && equalUpRef(a.UpRef, b.UpRef)
	case BinderData:
		b := y.data.(BinderData)
		if a.Body != b.Body || len(a.Domains) != len(b.Domains) {
			return false
		}
		for i := range a.Domains {
			if a.Domains[i] != b.Domains[i] {
				return false
			}
		}
		return true
	case ParameterData:
		b := y.data.(ParameterData)
		return a.Depth == b.Depth && a.Index == b.Index
	case StructValueData:
		b := y.data.(StructValueData)
		if a.StructType != b.StructType || len(a.Fields) != len(b.Fields) {
			return false
		}
		for i := range a.Fields {
			if a.Fields[i] != b.Fields[i] {
				return false
			}
		}
		return true
	case ArrayValueData:
		b := y.data.(ArrayValueData)
		if a.ArrayType != b.ArrayType || len(a.Elements) != len(b.Elements) {
			return false
		}
		for i := range a.Elements {
			if a.Elements[i] != b.Elements[i] {
				return false
			}
		}
		return true
	case UnionValueData:
		b := y.data.(UnionValueData)
		return a.UnionType == b.UnionType && a.Tag == b.Tag && a.Value == b.Value
	case IntegerValueData:
		b := y.data.(IntegerValueData)
		return a.IntType == b.IntType && a.Value == b.Value
	case StringValueData:
		b := y.data.(StringValueData)
		return a.Value == b.Value
	case DefaultValueData:
		b := y.data.(DefaultValueData)
		return a.Of == b.Of
	case MovableValueData:
		b := y.data.(MovableValueData)
		return a.Value == b.Value
	case UpRefValueData:
		b := y.data.(UpRefValueData)
		return equalUpRef(a.Path, b.Path)
	case ElementValueData:
		b := y.data.(ElementValueData)
		return a.Base == b.Base && a.Index == b.Index
	case PointerToData:
		b := y.data.(PointerToData)
		return a.Target == b.Target
	case PointerTargetData:
		b := y.data.(PointerTargetData)
		return a.Pointer == b.Pointer
	case OuterValueData:
		b := y.data.(OuterValueData)
		return a.Inner == b.Inner && equalUpRef(a.Path, b.Path)
	default:
		return x == y
	}
}

func equalName(a, b string) bool { return a == b }

func equalMembers(a, b []Member) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Name != b[i].Name || a[i].Type != b[i].Type {
			return false
		}
	}
	return true
}
