package expr

import (
	"fmt"

	"github.com/NunaInc/nudl-go/internal/nameobj"
	"github.com/NunaInc/nudl-go/internal/names"
	"github.com/NunaInc/nudl-go/internal/nudlerr"
	"github.com/NunaInc/nudl-go/internal/types"
)

// typedNamedObject is the slice of nameobj.NamedObject an Identifier needs
// to compute its own type. internal/vars's Var/Parameter/Argument/Field
// already expose TypeSpec() directly; a function or module (once
// internal/funcs/internal/scope exist) is expected to expose its "as a
// value" type - the function type, or the module type - under the same
// method name, per spec §4.6's "for function-kind objects, returns the
// function type; for modules, the module type".
type typedNamedObject interface {
	nameobj.NamedObject
	TypeSpec() *types.TypeSpec
}

// Identifier accesses a named object resolved earlier by scope lookup.
//
// Grounded on expression.h's Identifier: scoped_name_/object_, and the
// spec §4.6 contract "returns the referenced object's type; for
// function-kind objects, returns the function type; for modules, the
// module type" - all folded into the typedNamedObject.TypeSpec seam so Identifier
// doesn't need to special-case every NamedObject kind itself.
type Identifier struct {
	Base

	scopedName names.ScopedName
	object     typedNamedObject
}

// NewIdentifier constructs an identifier resolving to object under
// scopedName.
func NewIdentifier(scope Scope, scopedName names.ScopedName, object typedNamedObject) *Identifier {
	i := &Identifier{Base: NewBase(KindIdentifier, scope, nil), scopedName: scopedName, object: object}
	i.Init(i)
	return i
}

func (i *Identifier) ScopedName() names.ScopedName { return i.scopedName }
func (i *Identifier) Object() nameobj.NamedObject  { return i.object }

func (i *Identifier) NamedObject() (nameobj.NamedObject, bool) {
	return i.object, true
}

func (i *Identifier) negotiateType(hint *types.TypeSpec) (*types.TypeSpec, error) {
	if i.object == nil {
		return nil, nudlerr.New(nudlerr.Internal, "identifier %s resolves to no object", i.scopedName.FullName())
	}
	return i.object.TypeSpec(), nil
}

func (i *Identifier) DebugString() string {
	return fmt.Sprintf("Identifier(%s)", i.scopedName.FullName())
}

func (i *Identifier) Clone(override CloneOverride) Expression {
	return NewIdentifier(i.scope, i.scopedName, i.object)
}
