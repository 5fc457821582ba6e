package types

import "github.com/NunaInc/nudl-go/internal/nudlerr"

// nullableIsAncestorOf implements spec §4.3: Nullable<X> is an ancestor
// of other if either Null or X is, unless other is itself Nullable (then
// the generic structural walk applies).
func (t *TypeSpec) nullableIsAncestorOf(other *TypeSpec) bool {
	if other.TypeID == NullableID {
		cur := other
		for cur != nil {
			if t.TypeID == cur.TypeID {
				return t.hasAncestorParameters(cur)
			}
			cur = cur.Ancestor
		}
		return false
	}
	if len(t.Parameters) == 0 {
		return false
	}
	return t.Parameters[0].IsAncestorOf(other) || t.Parameters[len(t.Parameters)-1].IsAncestorOf(other)
}

func (t *TypeSpec) nullableIsConvertibleFrom(other *TypeSpec) bool {
	if other.TypeID == NullableID {
		cur := other
		for cur != nil {
			if t.TypeID == cur.TypeID {
				return t.hasConvertibleParameters(cur)
			}
			cur = cur.Ancestor
		}
		return false
	}
	if len(t.Parameters) == 0 {
		return false
	}
	return t.Parameters[0].IsConvertibleFrom(other) || t.Parameters[len(t.Parameters)-1].IsConvertibleFrom(other)
}

// newNullableBinder implements the precise Nullable binding rules of
// spec §4.3:
//   Null.Bind([T])            -> Nullable<T>, unless T already nullable (-> T)
//   Nullable.Bind([Null, T])  -> Nullable<T>
//   Nullable.Bind([T])        -> Nullable<T>, unless T is Null (invalid) or
//                                already Nullable<X> (-> Nullable<X>, i.e. no
//                                double-wrap, so Nullable<Nullable<T>> never
//                                gets constructed in the first place)
func newNullableBinder(nullType *TypeSpec) binder {
	return func(self *TypeSpec, args []BindArg) (*TypeSpec, error) {
		types, err := typesFromArgs(args)
		if err != nil {
			return nil, nudlerr.Wrap(nudlerr.InvalidArgument, err, "creating bound Nullable from parameters")
		}
		var nullableBind *TypeSpec
		switch {
		case len(types) == 2:
			if types[0].TypeID == NullID {
				nullableBind = types[1]
			} else if types[1].TypeID == NullID {
				nullableBind = types[0]
			}
		case len(types) == 1 && types[0].TypeID == NullableID:
			nullableBind = types[0].Parameters[len(types[0].Parameters)-1]
		}
		if len(types) != 1 && nullableBind == nil {
			return nil, nudlerr.New(nudlerr.InvalidArgument,
				"nullable type requires exactly one parameter for binding. provided: %d", len(types))
		}
		argType := nullableBind
		if argType == nil {
			argType = types[0]
		}

		if len(self.Parameters) == 0 {
			if argType.TypeID == NullID {
				return nil, nudlerr.New(nudlerr.InvalidArgument, "cannot bind type Null as an argument to a Nullable type")
			}
			return makeNullable(self, nullType, argType), nil
		}
		if !self.IsAncestorOf(argType) {
			return nil, nudlerr.New(nudlerr.InvalidArgument,
				"cannot bind type %s to %s", self.FullName(), argType.FullName())
		}
		if nullableBind == nil {
			return makeNullable(self, nullType, argType), nil
		}
		if nullableBind.TypeID == NullID {
			return nullableBind.Clone(), nil
		}
		return makeNullable(self, nullType, nullableBind), nil
	}
}

func makeNullable(self, nullType, inner *TypeSpec) *TypeSpec {
	result := self.Clone()
	result.Parameters = []*TypeSpec{nullType, inner}
	result.isBoundSelf = true
	return result
}

// newNullBinder implements spec §4.3: binding Null with X produces
// Nullable<X> unless X is already Nullable, in which case X itself is
// returned unchanged.
func newNullBinder(nullableType *TypeSpec) binder {
	return func(self *TypeSpec, args []BindArg) (*TypeSpec, error) {
		types, err := typesFromArgs(args)
		if err != nil {
			return nil, nudlerr.Wrap(nudlerr.InvalidArgument, err, "binding Null")
		}
		if len(types) != 1 {
			return nil, nudlerr.New(nudlerr.InvalidArgument, "Null.Bind expects exactly one type argument")
		}
		if types[0].TypeID == NullableID {
			return types[0], nil
		}
		return nullableType.Bind(args)
	}
}
