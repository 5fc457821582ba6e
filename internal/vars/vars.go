// Package vars implements the assignable-object family of spec §4.5:
// Var, Parameter, Argument, and Field, all sharing VarBase's assignment
// typechecking and lazy per-instance field reparenting.
//
// Grounded on the original NunaInc/nudl analyzer's vars.h/.cc.
package vars

import (
	"fmt"

	"github.com/NunaInc/nudl-go/internal/nameobj"
	"github.com/NunaInc/nudl-go/internal/nudlerr"
	"github.com/NunaInc/nudl-go/internal/types"
)

// TypedExpression is the sliver of the expression tree VarBase needs:
// negotiating a concrete type against an assignment-site hint. Satisfied
// by internal/expr's Expression implementations.
type TypedExpression interface {
	NegotiateType(hint *types.TypeSpec) (*types.TypeSpec, error)
}

// VarBase is the common base of every assignable name: a var, a
// parameter, an argument, or a struct field. It wraps the assigned type's
// member store (so `x.field` resolves through the type lattice) and
// tracks every expression ever assigned to it, per spec §4.5.
//
// Grounded on vars.cc's VarBase: GetName's per-instance field cloning
// (local_fields_map_/local_fields_), the two-list assignment/failed-
// assignment split in Assign, and GetRootVar's field-to-owning-var walk.
type VarBase struct {
	*nameobj.WrappedStore

	kind         nameobj.Kind
	originalType *types.TypeSpec
	typeSpec     *types.TypeSpec
	parentStore  nameobj.NameStore
	hasParent    bool

	localFields    map[string]nameobj.NamedObject
	assignments    []TypedExpression
	assignTypes    []*types.TypeSpec
	failedAssigns  []TypedExpression
}

// newVarBase wraps typeSpec's member store under the given kind. kind is
// kept on VarBase itself (rather than left to WrappedStore's promoted
// Kind/FullName) because WrappedStore.Base is constructed with the wrapped
// store's own kind (KindTypeMemberStore), which would otherwise leak into
// every diagnostic message.
func newVarBase(name string, kind nameobj.Kind, typeSpec *types.TypeSpec, parentStore nameobj.NameStore) *VarBase {
	wrapped := nameobj.NewWrappedStore(name, typeSpec.MemberStore)
	v := &VarBase{
		WrappedStore: wrapped,
		kind:         kind,
		originalType: typeSpec,
		typeSpec:     typeSpec,
		parentStore:  parentStore,
		hasParent:    parentStore != nil,
		localFields:  map[string]nameobj.NamedObject{},
	}
	wrapped.Init(v)
	return v
}

// Kind overrides WrappedStore's promoted Kind (which would report the
// wrapped member store's KindTypeMemberStore) with the variable's own.
func (v *VarBase) Kind() nameobj.Kind { return v.kind }

// FullName overrides WrappedStore's promoted FullName for the same reason.
func (v *VarBase) FullName() string {
	return fmt.Sprintf("%s named: `%s`", v.kind, v.Name())
}

// TypeSpec returns the variable's current (possibly still-unbound) type.
func (v *VarBase) TypeSpec() *types.TypeSpec { return v.typeSpec }

// OriginalType returns the type the variable was declared with, before any
// narrowing performed by Assign.
func (v *VarBase) OriginalType() *types.TypeSpec { return v.originalType }

// ParentStore returns the store this variable lives in, if any (shadows
// WrappedStore's embedded Base so Field/root-var lookups see the real
// parent rather than the wrapped member store's).
func (v *VarBase) ParentStore() (nameobj.NameStore, bool) {
	if !v.hasParent {
		return nil, false
	}
	return v.parentStore, true
}

// Assignments returns every expression ever successfully assigned, in
// order.
func (v *VarBase) Assignments() []TypedExpression { return v.assignments }

// AssignTypes returns the concrete type each successful assignment
// negotiated, parallel to Assignments.
func (v *VarBase) AssignTypes() []*types.TypeSpec { return v.assignTypes }

// FailedAssignments returns every expression that failed to typecheck
// against this variable, kept for diagnostics rather than discarded.
func (v *VarBase) FailedAssignments() []TypedExpression { return v.failedAssigns }

// Assign typechecks expression against the variable's declared type and,
// the first time an unbound/Union-typed variable receives a concrete
// value, narrows TypeSpec to that value's type. Returns the same
// expression back (a hook point for an eventual auto-conversion wrapper).
//
// Grounded on vars.cc's VarBase::Assign: the exact two-error-message split
// (violates the original declared type vs. violates the most recently
// narrowed type) and the narrowing condition (unbound-and-not-Function, or
// Union, and the new type isn't Null) are reproduced verbatim.
func (v *VarBase) Assign(expression TypedExpression) (TypedExpression, error) {
	typeSpec, err := expression.NegotiateType(v.typeSpec)
	if err != nil {
		v.failedAssigns = append(v.failedAssigns, expression)
		return nil, err
	}
	if !v.originalType.IsAncestorOf(typeSpec) {
		v.failedAssigns = append(v.failedAssigns, expression)
		return nil, nudlerr.New(nudlerr.InvalidArgument,
			"cannot assign an expression of type: %s to %s originally declared as: %s",
			typeSpec.FullName(), v.FullName(), v.originalType.FullName())
	}
	if !v.typeSpec.IsAncestorOf(typeSpec) {
		v.failedAssigns = append(v.failedAssigns, expression)
		return nil, nudlerr.New(nudlerr.InvalidArgument,
			"cannot assign an expression of type: %s to %s that was last assigned to: %s",
			typeSpec.FullName(), v.FullName(), v.typeSpec.FullName())
	}
	if (!v.typeSpec.IsBound() && v.typeSpec.TypeID != types.FunctionID || v.typeSpec.TypeID == types.UnionID) &&
		typeSpec.TypeID != types.NullID {
		v.typeSpec = typeSpec
	}
	v.assignTypes = append(v.assignTypes, typeSpec)
	v.assignments = append(v.assignments, expression)
	return expression, nil
}

// GetName overrides the wrapped member-store lookup to hand back a
// per-instance clone of any field/var-kind result, so chained field access
// (`x.y.z`) reparents correctly instead of returning the shared prototype
// registered on the type.
func (v *VarBase) GetName(localName string) (nameobj.NamedObject, error) {
	if existing, ok := v.localFields[localName]; ok {
		return existing, nil
	}
	obj, err := v.WrappedStore.GetName(localName)
	if err != nil {
		return nil, err
	}
	if !IsVarKind(obj) {
		return obj, nil
	}
	clonable, ok := obj.(interface{ Clone(parentStore nameobj.NameStore) nameobj.NamedObject })
	if !ok {
		return obj, nil
	}
	local := clonable.Clone(v)
	v.localFields[localName] = local
	return local, nil
}

// AddName is unsupported on a variable-typed name object: new members
// belong on the type, not on an instance.
func (v *VarBase) AddName(localName string, obj nameobj.NamedObject) error {
	return nudlerr.New(nudlerr.Unimplemented,
		"cannot add a name %s to a variable typed name object %s", localName, v.FullName())
}

// AddChildStore is unsupported for the same reason as AddName.
func (v *VarBase) AddChildStore(localName string, store nameobj.NameStore) error {
	return nudlerr.New(nudlerr.Unimplemented,
		"cannot add a child store %s to a variable typed name object %s", localName, v.FullName())
}

// IsVarKind reports whether obj is a Field, Var, Parameter, or Argument.
func IsVarKind(obj nameobj.NamedObject) bool {
	switch obj.Kind() {
	case nameobj.KindVariable, nameobj.KindParameter, nameobj.KindArgument, nameobj.KindField:
		return true
	default:
		return false
	}
}

// GetRootVar walks up the parent-store chain while it stays within
// variable-kind objects, returning the topmost one: for a Field, this is
// the struct-typed Var/Parameter/Argument it was obtained from. Operates
// at the nameobj.NamedObject level rather than concrete *VarBase, since
// the parent-store chain is made of the Var/Parameter/Argument/Field
// wrapper values (the ones whose Kind() is meaningful), not the embedded
// VarBase itself.
func GetRootVar(v nameobj.NamedObject) nameobj.NamedObject {
	root := v
	for {
		parent, ok := root.ParentStore()
		if !ok || !IsVarKind(parent) {
			return root
		}
		root = parent
	}
}

// Var is a variable in a function or module scope.
type Var struct {
	*VarBase
}

// NewVar constructs a module/function-scoped variable.
func NewVar(name string, typeSpec *types.TypeSpec, parentStore nameobj.NameStore) *Var {
	return &Var{VarBase: newVarBase(name, nameobj.KindVariable, typeSpec, parentStore)}
}

func (v *Var) Clone(parentStore nameobj.NameStore) nameobj.NamedObject {
	return &Var{VarBase: newVarBase(v.Name(), v.kind, v.originalType, parentStore)}
}

// Parameter is a module-level configuration parameter.
type Parameter struct {
	*Var
}

// NewParameter constructs a module-scoped configuration parameter.
func NewParameter(name string, typeSpec *types.TypeSpec, parentStore nameobj.NameStore) *Parameter {
	return &Parameter{Var: &Var{VarBase: newVarBase(name, nameobj.KindParameter, typeSpec, parentStore)}}
}

func (p *Parameter) Clone(parentStore nameobj.NameStore) nameobj.NamedObject {
	return NewParameter(p.Name(), p.originalType, parentStore)
}

// Argument is a function parameter (named "argument" to distinguish it
// from the module-level Parameter above).
type Argument struct {
	*Var
}

// NewArgument constructs a function-scoped argument.
func NewArgument(name string, typeSpec *types.TypeSpec, parentStore nameobj.NameStore) *Argument {
	return &Argument{Var: &Var{VarBase: newVarBase(name, nameobj.KindArgument, typeSpec, parentStore)}}
}

func (a *Argument) Clone(parentStore nameobj.NameStore) nameobj.NamedObject {
	return NewArgument(a.Name(), a.originalType, parentStore)
}

// Field is a member of a struct-based VarBase: obtained lazily by
// GetName, reparented to the instance it was accessed through.
type Field struct {
	*VarBase
	parentType *types.TypeSpec
}

// NewField constructs a struct field bound to parentType, owned by
// parentStore (always present: a bare Field with no owner is a bug).
func NewField(name string, typeSpec, parentType *types.TypeSpec, parentStore nameobj.NameStore) *Field {
	return &Field{VarBase: newVarBase(name, nameobj.KindField, typeSpec, parentStore), parentType: parentType}
}

// ParentType is the struct type this field belongs to.
func (f *Field) ParentType() *types.TypeSpec { return f.parentType }

// FullName renders the field's name plus the struct it belongs to, per
// vars.cc's Field::full_name.
func (f *Field) FullName() string {
	return fmt.Sprintf("%s of %s", f.VarBase.FullName(), f.parentType.FullName())
}

func (f *Field) Clone(parentStore nameobj.NameStore) nameobj.NamedObject {
	return NewField(f.Name(), f.originalType, f.parentType, parentStore)
}
