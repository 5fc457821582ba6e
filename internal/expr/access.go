package expr

import (
	"fmt"

	"github.com/NunaInc/nudl-go/internal/nameobj"
	"github.com/NunaInc/nudl-go/internal/names"
	"github.com/NunaInc/nudl-go/internal/nudlerr"
	"github.com/NunaInc/nudl-go/internal/types"
)

// Index accesses a value in a collection by a (runtime) index expression.
//
// Grounded on expression.h's IndexExpression and spec §4.6's "type is
// computed from the collection's IndexedType()".
type Index struct {
	Base

	base *types.BaseTypesStore
}

// NewIndex constructs object[index].
func NewIndex(scope Scope, base *types.BaseTypesStore, object, index Expression) *Index {
	i := &Index{Base: NewBase(KindIndex, scope, []Expression{object, index}), base: base}
	i.Init(i)
	return i
}

func (i *Index) ObjectExpression() Expression { return i.children[0] }
func (i *Index) IndexExpression() Expression  { return i.children[1] }

// GetIndexedType computes the element type objectType yields when indexed:
// an Iterable's element type (its last parameter: Array, Set, Generator,
// ...), or Map's value (second) parameter. Dataset does not descend from
// Iterable and is rejected.
// Exported per spec's note that the original keeps this public for testing.
func (i *Index) GetIndexedType(objectType *types.TypeSpec) (*types.TypeSpec, error) {
	switch {
	case i.base.Map.IsAncestorOf(objectType) && len(objectType.Parameters) == 2:
		return objectType.Parameters[1], nil
	case i.base.Iterable.IsAncestorOf(objectType) && len(objectType.Parameters) >= 1:
		return objectType.ResultType(), nil
	default:
		return nil, nudlerr.New(nudlerr.InvalidArgument,
			"cannot index into type %s", objectType.FullName())
	}
}

func (i *Index) negotiateType(hint *types.TypeSpec) (*types.TypeSpec, error) {
	objType, err := i.ObjectExpression().NegotiateType(nil)
	if err != nil {
		return nil, err
	}
	if _, err := i.IndexExpression().NegotiateType(nil); err != nil {
		return nil, err
	}
	return i.GetIndexedType(objType)
}

func (i *Index) DebugString() string {
	return fmt.Sprintf("Index(%s[%s])", i.ObjectExpression().DebugString(), i.IndexExpression().DebugString())
}

func (i *Index) Clone(override CloneOverride) Expression {
	return NewIndex(i.scope, i.base, cloneOne(i.ObjectExpression(), override), cloneOne(i.IndexExpression(), override))
}

// TupleIndex is an Index specialized for a compile-time-constant integer
// index into a Tuple, where the result type is the specific slot's type
// rather than a unified element type.
//
// Grounded on expression.h's TupleIndexExpression.
type TupleIndex struct {
	*Index

	index int
}

// NewTupleIndex constructs a tuple index access at the given compile-time
// index (the caller is responsible for having validated that
// indexExpression evaluates to this constant).
func NewTupleIndex(scope Scope, base *types.BaseTypesStore, object, indexExpression Expression, index int) *TupleIndex {
	t := &TupleIndex{Index: NewIndex(scope, base, object, indexExpression), index: index}
	t.kind = KindTupleIndex
	t.Init(t)
	return t
}

func (t *TupleIndex) Position() int { return t.index }

func (t *TupleIndex) GetIndexedType(objectType *types.TypeSpec) (*types.TypeSpec, error) {
	if objectType.TypeID != types.TupleID && objectType.TypeID != types.StructID {
		return nil, nudlerr.New(nudlerr.InvalidArgument,
			"tuple index requires a Tuple or Struct, found %s", objectType.FullName())
	}
	if t.index < 0 || t.index >= len(objectType.Parameters) {
		return nil, nudlerr.New(nudlerr.InvalidArgument,
			"tuple index %d out of range for %s", t.index, objectType.FullName())
	}
	return objectType.Parameters[t.index], nil
}

func (t *TupleIndex) negotiateType(hint *types.TypeSpec) (*types.TypeSpec, error) {
	objType, err := t.ObjectExpression().NegotiateType(nil)
	if err != nil {
		return nil, err
	}
	return t.GetIndexedType(objType)
}

func (t *TupleIndex) Clone(override CloneOverride) Expression {
	return NewTupleIndex(t.scope, t.base, cloneOne(t.ObjectExpression(), override), cloneOne(t.IndexExpression(), override), t.index)
}

// DotAccess resolves name in the left-hand expression's type's member
// store: `left.name`.
//
// Grounded on expression.h's DotAccessExpression and spec §4.6's
// "resolves the name in the left-hand type's member store".
type DotAccess struct {
	Base

	name   names.ScopeName
	object typedNamedObject
}

// NewDotAccess constructs left.name, already resolved to object (e.g. a
// vars.Field obtained via VarBase.GetName on left's negotiated type).
func NewDotAccess(scope Scope, left Expression, name names.ScopeName, object typedNamedObject) *DotAccess {
	d := &DotAccess{Base: NewBase(KindDotAccess, scope, []Expression{left}), name: name, object: object}
	d.Init(d)
	return d
}

func (d *DotAccess) Left() Expression      { return d.children[0] }
func (d *DotAccess) Name() names.ScopeName { return d.name }
func (d *DotAccess) Object() nameobj.NamedObject { return d.object }

func (d *DotAccess) NamedObject() (nameobj.NamedObject, bool) { return d.object, true }

func (d *DotAccess) negotiateType(hint *types.TypeSpec) (*types.TypeSpec, error) {
	if _, err := d.Left().NegotiateType(nil); err != nil {
		return nil, err
	}
	if d.object == nil {
		return nil, nudlerr.New(nudlerr.NotFound, "cannot resolve `%s` on %s", d.name.Name(), d.Left().DebugString())
	}
	return d.object.TypeSpec(), nil
}

func (d *DotAccess) DebugString() string {
	return fmt.Sprintf("DotAccess(%s.%s)", d.Left().DebugString(), d.name.Name())
}

func (d *DotAccess) Clone(override CloneOverride) Expression {
	return NewDotAccess(d.scope, cloneOne(d.Left(), override), d.name, d.object)
}
