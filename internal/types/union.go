package types

import "github.com/NunaInc/nudl-go/internal/nudlerr"

// unionIsAncestorOf implements spec §4.3: a Union is an ancestor of other
// if any of its alternatives is, unless other is itself a Union, in which
// case the generic structural walk applies.
func (t *TypeSpec) unionIsAncestorOf(other *TypeSpec) bool {
	if other.TypeID == UnionID {
		cur := other
		for cur != nil {
			if t.TypeID == cur.TypeID {
				return t.hasAncestorParameters(cur)
			}
			cur = cur.Ancestor
		}
		return false
	}
	for _, p := range t.Parameters {
		if p.IsAncestorOf(other) {
			return true
		}
	}
	return false
}

func (t *TypeSpec) unionIsConvertibleFrom(other *TypeSpec) bool {
	if other.TypeID == UnionID {
		return t.unionIsAncestorOf(other)
	}
	for _, p := range t.Parameters {
		if p.IsConvertibleFrom(other) {
			return true
		}
	}
	return false
}

// newUnionBinder returns the custom binder for the Union type: Bind with
// a single argument either narrows to that argument (if it is one of the
// union's own alternatives) or, on an unparameterized Union, constructs a
// fresh normalized Union from >= 2 arguments.
func newUnionBinder() binder {
	return func(self *TypeSpec, args []BindArg) (*TypeSpec, error) {
		if len(self.Parameters) > 0 {
			if len(args) != 1 {
				return self.genericBind(args)
			}
			types, err := typesFromArgs(args)
			if err != nil {
				return nil, nudlerr.Wrap(nudlerr.InvalidArgument, err, "creating bound Union from parameters")
			}
			if self.IsAncestorOf(types[0]) {
				return types[0].Clone(), nil
			}
			return nil, nudlerr.New(nudlerr.InvalidArgument,
				"cannot bind any of arguments of %s to %s", self.FullName(), types[0].FullName())
		}
		types, err := typesFromArgs(args)
		if err != nil {
			return nil, nudlerr.Wrap(nudlerr.InvalidArgument, err, "creating bound Union from parameters")
		}
		sorted := sortedUnionTypes(types)
		if len(sorted) < 2 {
			return nil, nudlerr.New(nudlerr.InvalidArgument,
				"cannot build a Union with less than two type parameters: %d vs %d", len(sorted), len(args))
		}
		result := self.Clone()
		result.Parameters = sorted
		result.isBoundSelf = true
		result.updateBindingStore(args)
		return result, nil
	}
}
