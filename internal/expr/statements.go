package expr

import (
	"github.com/NunaInc/nudl-go/internal/nameobj"
	"github.com/NunaInc/nudl-go/internal/names"
	"github.com/NunaInc/nudl-go/internal/nudlerr"
	"github.com/NunaInc/nudl-go/internal/types"
)

// Nop is a no-operation expression, usually created on pragmas; it may
// wrap a single child kept around for diagnostics/emission.
type Nop struct {
	Base
}

// NewNop constructs a no-op, optionally wrapping child.
func NewNop(scope Scope, child Expression) *Nop {
	var children []Expression
	if child != nil {
		children = []Expression{child}
	}
	n := &Nop{Base: NewBase(KindNop, scope, children)}
	n.Init(n)
	return n
}

func (n *Nop) negotiateType(hint *types.TypeSpec) (*types.TypeSpec, error) {
	return nil, nil
}

func (n *Nop) DebugString() string { return "Nop()" }

func (n *Nop) Clone(override CloneOverride) Expression {
	var child Expression
	if len(n.children) == 1 {
		child = cloneOne(n.children[0], override)
	}
	return NewNop(n.scope, child)
}

// AssignTarget is the slice of vars.VarBase that Assignment needs: the
// already-typechecked destination (Assign has already been called with
// value by the time an Assignment node is built, per expression.h's
// comment on the class).
type AssignTarget interface {
	nameobj.NamedObject
	TypeSpec() *types.TypeSpec
}

// Assignment represents `<var> = <value>` once var.Assign(value) has
// already run: the node itself is a side-effect record, not a place where
// typechecking happens.
//
// Grounded on expression.h's Assignment: name_/var_/has_type_spec_/
// is_initial_assignment_, and spec §4.6 "returns Null type (statement-
// like), side-effects the bound var".
type Assignment struct {
	Base

	nameValue           names.ScopedName
	variable            AssignTarget
	hasTypeSpec         bool
	isInitialAssignment bool
}

// NewAssignment constructs an assignment of value to variable, named name
// in scope. hasTypeSpec records whether the source wrote an explicit type
// annotation; isInitialAssignment records whether this is the variable's
// declaring assignment (as opposed to a later re-assignment).
func NewAssignment(scope Scope, name names.ScopedName, variable AssignTarget, value Expression, hasTypeSpec, isInitialAssignment bool) *Assignment {
	a := &Assignment{
		Base:                NewBase(KindAssignment, scope, []Expression{value}),
		nameValue:           name,
		variable:            variable,
		hasTypeSpec:         hasTypeSpec,
		isInitialAssignment: isInitialAssignment,
	}
	a.Init(a)
	return a
}

func (a *Assignment) Name() names.ScopedName { return a.nameValue }
func (a *Assignment) Var() AssignTarget      { return a.variable }
func (a *Assignment) HasTypeSpec() bool      { return a.hasTypeSpec }
func (a *Assignment) IsInitialAssignment() bool { return a.isInitialAssignment }
func (a *Assignment) Value() Expression      { return a.children[0] }

func (a *Assignment) NamedObject() (nameobj.NamedObject, bool) { return a.variable, true }

func (a *Assignment) negotiateType(hint *types.TypeSpec) (*types.TypeSpec, error) {
	if a.variable == nil {
		return nil, nudlerr.New(nudlerr.Internal, "assignment to %s has no bound variable", a.nameValue.FullName())
	}
	return nil, nil
}

func (a *Assignment) DebugString() string {
	return "Assignment(" + a.nameValue.FullName() + " = " + a.Value().DebugString() + ")"
}

func (a *Assignment) Clone(override CloneOverride) Expression {
	return NewAssignment(a.scope, a.nameValue, a.variable, cloneOne(a.Value(), override), a.hasTypeSpec, a.isInitialAssignment)
}

// EmptyStruct is the special `[]` construct, standing in for an empty
// Array, Set, Map, or Tuple until a type hint disambiguates it.
//
// Grounded on expression.h's EmptyStruct and spec §4.6's "initial type is
// unresolved; hint chooses among Array, Set, Map, or empty Tuple".
type EmptyStruct struct {
	Base

	base *types.BaseTypesStore
}

// NewEmptyStruct constructs an empty-struct literal; base supplies the
// built-in Array/Set/Map/Tuple types used to resolve the hint.
func NewEmptyStruct(scope Scope, base *types.BaseTypesStore) *EmptyStruct {
	e := &EmptyStruct{Base: NewBase(KindEmptyStruct, scope, nil), base: base}
	e.Init(e)
	return e
}

func (e *EmptyStruct) negotiateType(hint *types.TypeSpec) (*types.TypeSpec, error) {
	if hint == nil {
		return e.base.Tuple, nil
	}
	switch hint.TypeID {
	case types.ArrayID, types.SetID, types.MapID, types.TupleID:
		return hint, nil
	default:
		if e.base.Array.IsAncestorOf(hint) || e.base.Set.IsAncestorOf(hint) ||
			e.base.Map.IsAncestorOf(hint) || hint.TypeID == types.AnyID {
			return e.base.Tuple, nil
		}
		return nil, nudlerr.New(nudlerr.InvalidArgument,
			"cannot resolve empty struct `[]` against hint type %s", hint.FullName())
	}
}

func (e *EmptyStruct) DebugString() string { return "EmptyStruct([])" }

func (e *EmptyStruct) Clone(override CloneOverride) Expression {
	return NewEmptyStruct(e.scope, e.base)
}
