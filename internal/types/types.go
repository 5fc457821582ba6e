// Package types implements the TypeSpec lattice and TypeStore of spec
// §4.3-§4.4: the built-in hierarchy, ancestry/equality/convertibility,
// Bind/Build, synthesized generators, local-name unification, and the
// per-scope/global type registries.
//
// Grounded on the original NunaInc/nudl analyzer's type_spec.{h,cc},
// types.{h,cc}, type_utils.{h,cc} and type_store.{h,cc}, and on the shape
// of cuelang.org/go/internal/core/adt's discriminated value-with-parameters
// lattice (expr.go) for the Go-idiomatic translation (structs + methods
// instead of a C++ class hierarchy with virtual overrides).
package types

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/NunaInc/nudl-go/internal/names"
	"github.com/NunaInc/nudl-go/internal/nudlerr"

	"github.com/google/uuid"
	"github.com/mpvl/unique"
)

// BindArg is one argument to Bind/Build: either an int (e.g. Decimal<p,s>
// precision/scale) or a *TypeSpec.
type BindArg struct {
	Int   int
	Type  *TypeSpec
	IsInt bool
}

// IntArg constructs an integer BindArg.
func IntArg(v int) BindArg { return BindArg{Int: v, IsInt: true} }

// TypeArg constructs a type BindArg.
func TypeArg(t *TypeSpec) BindArg { return BindArg{Type: t} }

// binder is the per-type-id hook for custom Bind/Build behavior (Null,
// Union, Nullable, the parametric generators, Decimal). Types that don't
// need one use the generic clone-and-substitute path.
type binder func(self *TypeSpec, args []BindArg) (*TypeSpec, error)

// TypeSpec is the central entity of spec §3: a node in the type lattice.
type TypeSpec struct {
	TypeID          ID
	name            string
	MemberStore     *MemberStore
	isBoundSelf     bool
	Ancestor        *TypeSpec
	Parameters      []*TypeSpec
	ParameterNames  []string // optional per-slot names (Tuple/Function/Struct)
	OriginalBind    *TypeSpec
	LocalName       string
	DefinitionScope *names.ScopeName

	bind  binder
	build binder // defaults to bind, per spec "Build(args) ... default: same as Bind"

	// fields below are only meaningful for Decimal instances.
	DecimalPrecision, DecimalScale int
}

// Name is the type's display name, e.g. "Array" or "Array<Int>" once
// parameters are rendered by FullName.
func (t *TypeSpec) Name() string { return t.name }

// FullName renders the type with its parameters, e.g. "Array<Int>".
func (t *TypeSpec) FullName() string {
	name := t.name
	if t.LocalName != "" {
		name = fmt.Sprintf("{%s: %s}", t.LocalName, name)
	}
	if len(t.Parameters) == 0 {
		return name
	}
	parts := make([]string, len(t.Parameters))
	for i, p := range t.Parameters {
		if i < len(t.ParameterNames) && t.ParameterNames[i] != "" {
			parts[i] = t.ParameterNames[i] + ":" + p.FullName()
		} else {
			parts[i] = p.FullName()
		}
	}
	return fmt.Sprintf("%s<%s>", name, strings.Join(parts, ","))
}

// IsIterable reports whether the type descends from Iterable.
func (t *TypeSpec) IsIterable() bool {
	if t.TypeID == IterableID {
		return true
	}
	if t.Ancestor != nil {
		return t.Ancestor.IsIterable()
	}
	return false
}

// ResultType returns the "element type" shortcut used by the iterable
// ancestry relaxation (last parameter, for an Iterable type) and, for
// Function<A1,...,An,R>, the declared return type R (also its last
// parameter, by the §4.3 convention that a Function's final parameter
// slot is its result type).
func (t *TypeSpec) ResultType() *TypeSpec {
	if (t.IsIterable() || t.TypeID == FunctionID) && len(t.Parameters) > 0 {
		return t.Parameters[len(t.Parameters)-1]
	}
	return nil
}

func (t *TypeSpec) isResultTypeComparable(other *TypeSpec) bool {
	return len(t.Parameters) == 1 && other.ResultType() != nil && t.IsIterable() && other.IsIterable()
}

// IsBound reports whether this type is itself bound and every parameter
// is bound.
func (t *TypeSpec) IsBound() bool {
	if !t.isBoundSelf {
		return false
	}
	for _, p := range t.Parameters {
		if !p.IsBound() {
			return false
		}
	}
	return true
}

// IsAncestorOf reports whether t is an ancestor of other: reflexive,
// transitive, and respecting parameter variance (covariant over all
// parameters, with the iterable result-type shortcut for arity
// mismatches). Per spec §9 Open Questions, function-parameter variance is
// deliberately left covariant (see DESIGN.md).
func (t *TypeSpec) IsAncestorOf(other *TypeSpec) bool {
	switch t.TypeID {
	case UnionID:
		return t.unionIsAncestorOf(other)
	case NullableID:
		return t.nullableIsAncestorOf(other)
	}
	cur := other
	for cur != nil {
		if t.TypeID == cur.TypeID {
			return t.hasAncestorParameters(cur)
		}
		cur = cur.Ancestor
	}
	return false
}

func (t *TypeSpec) hasAncestorParameters(other *TypeSpec) bool {
	if len(t.Parameters) == 0 {
		return true
	}
	if len(t.Parameters) != len(other.Parameters) {
		if t.isResultTypeComparable(other) {
			return t.Parameters[0].IsAncestorOf(other.ResultType())
		}
		return false
	}
	for i, p := range t.Parameters {
		if !p.IsAncestorOf(other.Parameters[i]) {
			return false
		}
	}
	return true
}

// IsEqual reports whether t and other share a type-id and have pairwise
// equal parameters.
func (t *TypeSpec) IsEqual(other *TypeSpec) bool {
	if t == other {
		return true
	}
	if other == nil || t.TypeID != other.TypeID || len(t.Parameters) != len(other.Parameters) {
		return false
	}
	for i, p := range t.Parameters {
		if !p.IsEqual(other.Parameters[i]) {
			return false
		}
	}
	return true
}

// IsConvertibleFrom reports whether a value of type other may convert to
// t: identical to ancestry for bound parameters, but recursive ancestry
// (not strict equality) is required for unbound parameters; Union is
// convertible from any alternative; Nullable from its inner type and Null;
// the synthesizing generators accept any instance tagged with themselves
// as original-bind.
func (t *TypeSpec) IsConvertibleFrom(other *TypeSpec) bool {
	switch t.TypeID {
	case UnionID:
		return t.unionIsConvertibleFrom(other)
	case NullableID:
		return t.nullableIsConvertibleFrom(other)
	case TupleJoinID, DatasetAggregateID, DatasetJoinID:
		return other.OriginalBind == t || t.IsAncestorOf(other)
	}
	cur := other
	for cur != nil {
		if t.TypeID == cur.TypeID {
			return t.hasConvertibleParameters(cur)
		}
		cur = cur.Ancestor
	}
	return false
}

func (t *TypeSpec) hasConvertibleParameters(other *TypeSpec) bool {
	if len(t.Parameters) == 0 {
		return true
	}
	if len(t.Parameters) != len(other.Parameters) {
		if t.isResultTypeComparable(other) {
			return t.Parameters[0].IsConvertibleFrom(other.ResultType())
		}
		return false
	}
	for i, p := range t.Parameters {
		if p.IsBound() {
			if !other.Parameters[i].IsEqual(p) {
				return false
			}
		} else if !p.IsConvertibleFrom(other.Parameters[i]) {
			return false
		}
	}
	return true
}

// Clone produces a shallow copy of t (same member store, fresh copies of
// the Parameters and ParameterNames slices) suitable as the basis for Bind.
func (t *TypeSpec) Clone() *TypeSpec {
	clone := *t
	clone.Parameters = append([]*TypeSpec(nil), t.Parameters...)
	clone.ParameterNames = append([]string(nil), t.ParameterNames...)
	return &clone
}

// Bind substitutes the parameter list, producing a concrete instance, and
// rekeys the member store to a bound child keyed by the canonical binding
// signature. Types with a custom binder (Union, Nullable, Null, the
// synthesizing generators, Decimal) use it instead of the generic path.
func (t *TypeSpec) Bind(args []BindArg) (*TypeSpec, error) {
	if t.bind != nil {
		return t.bind(t, args)
	}
	return t.genericBind(args)
}

// Build defaults to Bind, as in the source; Union, Nullable and the
// synthesizing generators set build to the same function as their bind.
func (t *TypeSpec) Build(args []BindArg) (*TypeSpec, error) {
	if t.build != nil {
		return t.build(t, args)
	}
	return t.Bind(args)
}

func (t *TypeSpec) genericBind(args []BindArg) (*TypeSpec, error) {
	types, err := typesFromArgs(args)
	if err != nil {
		return nil, nudlerr.Wrap(nudlerr.InvalidArgument, err, "binding %s", t.FullName())
	}
	result := t.Clone()
	result.Parameters = types
	result.isBoundSelf = true
	if len(t.ParameterNames) == len(types) {
		result.ParameterNames = append([]string(nil), t.ParameterNames...)
	} else {
		result.ParameterNames = make([]string, len(types))
	}
	result.updateBindingStore(args)
	return result, nil
}

func typesFromArgs(args []BindArg) ([]*TypeSpec, error) {
	types := make([]*TypeSpec, len(args))
	for i, a := range args {
		if a.IsInt {
			return nil, nudlerr.New(nudlerr.InvalidArgument, "unexpected int argument at position %d", i)
		}
		if a.Type == nil {
			return nil, nudlerr.New(nudlerr.InvalidArgument, "nil type argument at position %d", i)
		}
		types[i] = a.Type
	}
	return types, nil
}

// updateBindingStore rekeys t.MemberStore to the bound child registered
// under this binding's canonical signature, unless every argument is Any
// (i.e. nothing was actually constrained).
func (t *TypeSpec) updateBindingStore(args []BindArg) {
	numNonAny := 0
	for _, a := range args {
		if !a.IsInt && a.Type != nil && a.Type.TypeID != AnyID {
			numNonAny++
		}
	}
	if numNonAny == 0 || t.MemberStore == nil {
		return
	}
	sig := bindingSignature(args)
	bound := t.MemberStore.AddBinding(sig, t)
	t.MemberStore.RemoveMemberType(t)
	t.MemberStore = bound
}

// TypeSignature is the stable opaque per-type string used to key bound
// children and route overload calls.
func (t *TypeSpec) TypeSignature() string {
	s := t.name
	if len(t.Parameters) == 0 {
		return s
	}
	parts := make([]string, len(t.Parameters))
	for i, p := range t.Parameters {
		parts[i] = p.TypeSignature()
	}
	return s + "__" + strings.Join(parts, "_") + "__"
}

// bindingSignature computes the canonical "TS_<sig1>_s_<sig2>_..._" key
// used for member-store binding. Int arguments are embedded as "_i_<n>".
func bindingSignature(args []BindArg) string {
	parts := make([]string, len(args))
	for i, a := range args {
		if a.IsInt {
			parts[i] = fmt.Sprintf("_i_%d", a.Int)
		} else {
			parts[i] = a.Type.TypeSignature()
		}
	}
	return "TS_" + strings.Join(parts, "_s_") + "_"
}

// disambiguate appends a fresh uuid fragment to base, giving a name that
// does not collide with another synthesized one. Nothing calls it:
// DatasetAggregate and DatasetJoin name their synthesized structs from
// the fresh type-id the counter issues.
func disambiguate(base string, counter *TypeIDCounter) string {
	_ = counter
	return base + "_" + uuid.New().String()[:8]
}

// sortedUnionTypes implements spec §4.3 Union normalization: dedup, then
// stable-sort with Null first and otherwise alphabetical by full name.
// mpvl/unique backs the dedup pass, mirroring the teacher's own use of
// mpvl/unique for CUE disjunction term deduplication.
func sortedUnionTypes(params []*TypeSpec) []*TypeSpec {
	keyed := make([]string, len(params))
	byKey := map[string]*TypeSpec{}
	for i, p := range params {
		k := p.TypeSignature()
		keyed[i] = k
		if _, ok := byKey[k]; !ok {
			byKey[k] = p
		}
	}
	sort.Strings(keyed)
	unique.Strings(&keyed)
	out := make([]*TypeSpec, 0, len(keyed))
	for _, k := range keyed {
		out = append(out, byKey[k])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TypeID == NullID {
			return true
		}
		if out[j].TypeID == NullID {
			return false
		}
		return out[i].FullName() < out[j].FullName()
	})
	return out
}

// decimalName renders "Decimal<p,s>".
func decimalName(precision, scale int) string {
	return "Decimal<" + strconv.Itoa(precision) + "," + strconv.Itoa(scale) + ">"
}
