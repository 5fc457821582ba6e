package expr

import (
	"strings"

	"github.com/NunaInc/nudl-go/internal/nudlerr"
	"github.com/NunaInc/nudl-go/internal/types"
)

// ArrayDefinition is an array literal: `[elem1, elem2, ...]`.
//
// Grounded on expression.h's ArrayDefinitionExpression and spec §4.6's
// "unify element types to their least common ancestor in the lattice;
// reject if no common ancestor exists except Any".
type ArrayDefinition struct {
	Base

	base *types.BaseTypesStore
}

// NewArrayDefinition constructs an array literal from elements.
func NewArrayDefinition(scope Scope, base *types.BaseTypesStore, elements []Expression) *ArrayDefinition {
	a := &ArrayDefinition{Base: NewBase(KindArrayDefinition, scope, elements), base: base}
	a.Init(a)
	return a
}

func (a *ArrayDefinition) negotiateType(hint *types.TypeSpec) (*types.TypeSpec, error) {
	elemHint := elementHint(hint, a.base.Array)
	elemTypes, err := negotiateAll(a.children, elemHint)
	if err != nil {
		return nil, err
	}
	elem := commonAncestor(elemTypes, a.base.Any)
	if elem.TypeID == types.AnyID {
		for _, t := range elemTypes {
			if t.TypeID != types.AnyID {
				return nil, nudlerr.New(nudlerr.InvalidArgument,
					"array elements have no common ancestor other than Any")
			}
		}
	}
	return a.base.Array.Bind([]types.BindArg{types.TypeArg(elem)})
}

func (a *ArrayDefinition) DebugString() string { return debugChildren("ArrayDefinition", a.children) }

func (a *ArrayDefinition) Clone(override CloneOverride) Expression {
	return NewArrayDefinition(a.scope, a.base, cloneChildren(a.children, override))
}

// MapDefinition is a map literal: `[key1: val1, key2: val2, ...]`, built
// from an interleaved (key, value, key, value, ...) element list.
//
// Grounded on expression.h's MapDefinitionExpression.
type MapDefinition struct {
	Base

	base *types.BaseTypesStore
}

// NewMapDefinition constructs a map literal from an interleaved
// key/value element list (must have even length).
func NewMapDefinition(scope Scope, base *types.BaseTypesStore, elements []Expression) *MapDefinition {
	m := &MapDefinition{Base: NewBase(KindMapDefinition, scope, elements), base: base}
	m.Init(m)
	return m
}

func (m *MapDefinition) negotiateType(hint *types.TypeSpec) (*types.TypeSpec, error) {
	if len(m.children)%2 != 0 {
		return nil, nudlerr.New(nudlerr.InvalidArgument, "map definition has an odd number of key/value elements")
	}
	var keyHint, valHint *types.TypeSpec
	if hint != nil && hint.TypeID == types.MapID && len(hint.Parameters) == 2 {
		keyHint, valHint = hint.Parameters[0], hint.Parameters[1]
	}
	var keys, vals []*types.TypeSpec
	for i := 0; i < len(m.children); i += 2 {
		k, err := m.children[i].NegotiateType(keyHint)
		if err != nil {
			return nil, err
		}
		v, err := m.children[i+1].NegotiateType(valHint)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
		vals = append(vals, v)
	}
	keyType := commonAncestor(keys, m.base.Any)
	valType := commonAncestor(vals, m.base.Any)
	return m.base.Map.Bind([]types.BindArg{types.TypeArg(keyType), types.TypeArg(valType)})
}

func (m *MapDefinition) DebugString() string { return debugChildren("MapDefinition", m.children) }

func (m *MapDefinition) Clone(override CloneOverride) Expression {
	return NewMapDefinition(m.scope, m.base, cloneChildren(m.children, override))
}

// TupleDefinition is a named-tuple literal:
// `{name1: type1? = val1, name2: type2? = val2, ...}`.
//
// Grounded on expression.h's TupleDefinitionExpression: names_/types_
// (a per-slot optional declared type) alongside the value elements.
type TupleDefinition struct {
	Base

	base  *types.BaseTypesStore
	names []string
	decls []*types.TypeSpec // per-slot declared type, nil if not annotated
}

// NewTupleDefinition constructs a tuple literal. names/decls/elements must
// have equal length; a nil decls[i] means the slot has no explicit type
// annotation and is inferred from elements[i].
func NewTupleDefinition(scope Scope, base *types.BaseTypesStore, names []string, decls []*types.TypeSpec, elements []Expression) *TupleDefinition {
	t := &TupleDefinition{Base: NewBase(KindTupleDefinition, scope, elements), base: base, names: names, decls: decls}
	t.Init(t)
	return t
}

func (t *TupleDefinition) Names() []string { return t.names }

func (t *TupleDefinition) CheckSizes() error {
	if len(t.names) != len(t.children) || len(t.decls) != len(t.children) {
		return nudlerr.New(nudlerr.InvalidArgument,
			"tuple definition name/type/value counts differ: %d/%d/%d", len(t.names), len(t.decls), len(t.children))
	}
	return nil
}

func (t *TupleDefinition) negotiateType(hint *types.TypeSpec) (*types.TypeSpec, error) {
	if err := t.CheckSizes(); err != nil {
		return nil, err
	}
	args := make([]types.BindArg, len(t.children))
	for i, child := range t.children {
		var slotHint *types.TypeSpec
		if t.decls[i] != nil {
			slotHint = t.decls[i]
		}
		valType, err := child.NegotiateType(slotHint)
		if err != nil {
			return nil, err
		}
		if t.decls[i] != nil && !t.decls[i].IsAncestorOf(valType) {
			return nil, nudlerr.New(nudlerr.InvalidArgument,
				"tuple field `%s` declared as %s cannot hold value of type %s",
				t.names[i], t.decls[i].FullName(), valType.FullName())
		}
		args[i] = types.TypeArg(valType)
	}
	result, err := t.base.Tuple.Bind(args)
	if err != nil {
		return nil, err
	}
	result.ParameterNames = append([]string(nil), t.names...)
	return result, nil
}

func (t *TupleDefinition) DebugString() string {
	return "TupleDefinition{" + strings.Join(t.names, ", ") + "}"
}

func (t *TupleDefinition) Clone(override CloneOverride) Expression {
	return NewTupleDefinition(t.scope, t.base, append([]string(nil), t.names...),
		append([]*types.TypeSpec(nil), t.decls...), cloneChildren(t.children, override))
}

func elementHint(hint *types.TypeSpec, container *types.TypeSpec) *types.TypeSpec {
	if hint == nil || hint.TypeID != container.TypeID || len(hint.Parameters) != 1 {
		return nil
	}
	return hint.Parameters[0]
}

func negotiateAll(children []Expression, hint *types.TypeSpec) ([]*types.TypeSpec, error) {
	out := make([]*types.TypeSpec, len(children))
	for i, c := range children {
		t, err := c.NegotiateType(hint)
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}
