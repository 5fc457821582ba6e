package types

import (
	"sort"

	"github.com/NunaInc/nudl-go/internal/nameobj"
	"github.com/NunaInc/nudl-go/internal/names"
	"github.com/NunaInc/nudl-go/internal/nudlerr"
)

// MemberStore is the "what members does this type have" store of spec
// §3 TypeMemberStore. It wraps a nameobj.BaseStore (fields/methods) and
// threads the binding graph: a shared ancestor store, bound-child stores
// keyed by a canonical binding signature, a back-link to a binding
// parent, and the set of TypeSpecs using this store as their member
// store.
//
// Grounded on the original NunaInc/nudl analyzer's TypeMemberStore
// (type_spec.h/.cc): AddBinding/RemoveBinding/SetupBindingParent/
// RemoveBindingParent/AddMemberType/RemoveMemberType reproduce that
// destructor-sequence contract (spec §9 "Cyclic member-store graph"),
// adapted from C++ shared_ptr/raw-pointer ownership to Go's GC with
// explicit nil-ing of back-references instead of weak pointers.
type MemberStore struct {
	*nameobj.BaseStore

	typeSpec      *TypeSpec
	ancestor      nameobj.NameStore
	bindingParent *MemberStore
	bindingSig    string
	boundChildren map[string]*MemberStore
	memberTypes   map[*TypeSpec]struct{}
}

// NewMemberStore constructs a member store describing typeSpec, with the
// given shared ancestor store (borrowed, not owned).
func NewMemberStore(name string, typeSpec *TypeSpec, ancestor nameobj.NameStore) *MemberStore {
	base := nameobj.NewBaseStore(name, nameobj.KindTypeMemberStore)
	s := &MemberStore{BaseStore: base, typeSpec: typeSpec, ancestor: ancestor, boundChildren: map[string]*MemberStore{}, memberTypes: map[*TypeSpec]struct{}{}}
	base.Init(s)
	return s
}

// TypeSpec returns the type this store describes.
func (m *MemberStore) TypeSpec() *TypeSpec { return m.typeSpec }

// BindingParent returns the store this one is a bound child of, if any.
func (m *MemberStore) BindingParent() (*MemberStore, bool) {
	if m.bindingParent == nil {
		return nil, false
	}
	return m.bindingParent, true
}

// BoundChildren returns the binding-signature-keyed bound child stores.
func (m *MemberStore) BoundChildren() map[string]*MemberStore { return m.boundChildren }

// AddBinding registers (or returns the existing) bound child store for
// signature, describing boundType; its binding-parent is set to m.
func (m *MemberStore) AddBinding(signature string, boundType *TypeSpec) *MemberStore {
	if existing, ok := m.boundChildren[signature]; ok {
		return existing
	}
	child := NewMemberStore(m.Name()+"."+signature, boundType, m.ancestor)
	child.SetupBindingParent(signature, m)
	m.boundChildren[signature] = child
	return child
}

// RemoveBinding drops the bound child registered under signature.
func (m *MemberStore) RemoveBinding(signature string) {
	if child, ok := m.boundChildren[signature]; ok {
		child.bindingParent = nil
		delete(m.boundChildren, signature)
	}
}

// SetupBindingParent sets the back-link to the store m is registered under
// signature within parent.
func (m *MemberStore) SetupBindingParent(signature string, parent *MemberStore) {
	m.bindingSig = signature
	m.bindingParent = parent
}

// RemoveBindingParent clears the back-link to the binding parent, per the
// destructor sequence of spec §9 (avoids use-after-free if either side is
// dropped first).
func (m *MemberStore) RemoveBindingParent() {
	if m.bindingParent != nil {
		delete(m.bindingParent.boundChildren, m.bindingSig)
		m.bindingParent = nil
	}
}

// AddMemberType records that memberType uses m as its member store.
func (m *MemberStore) AddMemberType(memberType *TypeSpec) {
	m.memberTypes[memberType] = struct{}{}
}

// RemoveMemberType stops tracking memberType as a user of m.
func (m *MemberStore) RemoveMemberType(memberType *TypeSpec) {
	delete(m.memberTypes, memberType)
}

// Lookup resolves localName against the binding graph in the order
// mandated by spec §3: self -> bound children whose type is an ancestor
// of queried -> binding parent -> ancestor.
func (m *MemberStore) Lookup(localName string, queried *TypeSpec) (nameobj.NamedObject, error) {
	if m.HasName(localName) {
		return m.GetName(localName)
	}
	if queried != nil {
		keys := make([]string, 0, len(m.boundChildren))
		for key := range m.boundChildren {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			child := m.boundChildren[key]
			if child.typeSpec != nil && child.typeSpec.IsAncestorOf(queried) {
				if obj, err := child.Lookup(localName, queried); err == nil {
					return obj, nil
				}
			}
		}
	}
	if m.bindingParent != nil {
		if obj, err := m.bindingParent.Lookup(localName, queried); err == nil {
			return obj, nil
		}
	}
	if m.ancestor != nil {
		if obj, err := m.ancestor.GetName(localName); err == nil {
			return obj, nil
		}
	}
	return nil, nudlerr.New(nudlerr.NotFound, "cannot find member `%s` on type %s", localName, m.Name())
}

// FindName implements nameobj.NameStore using the binding-graph lookup
// order instead of the plain child-store walk.
func (m *MemberStore) FindName(lookupScope names.ScopeName, scopedName names.ScopedName) (nameobj.NamedObject, error) {
	if lookupScope.Empty() {
		return m.Lookup(scopedName.Name, m.typeSpec)
	}
	return m.BaseStore.FindName(lookupScope, scopedName)
}
