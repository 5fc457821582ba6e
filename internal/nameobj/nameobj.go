// Package nameobj implements the uniform handle and lookup protocol of
// spec §4.2: NamedObject, NameStore, and the base/wrapped store flavors.
//
// Grounded on the original NunaInc/nudl analyzer's named_object.h/.cc:
// BaseNameStore's flat map + child-store map, the cycle guard on AddName,
// and the shortest-prefix-first FindChildStore walk are reproduced as-is.
package nameobj

import (
	"fmt"
	"sort"
	"strings"

	"github.com/NunaInc/nudl-go/internal/names"
	"github.com/NunaInc/nudl-go/internal/nudlerr"
)

// Kind is the closed set of NamedObject kinds from spec §3.
type Kind int

const (
	KindUnknown Kind = iota
	KindVariable
	KindParameter
	KindArgument
	KindField
	KindScope
	KindFunction
	KindMethod
	KindConstructor
	KindLambda
	KindModule
	KindType
	KindFunctionGroup
	KindMethodGroup
	KindTypeMemberStore
)

func (k Kind) String() string {
	switch k {
	case KindVariable:
		return "Variable"
	case KindParameter:
		return "Parameter"
	case KindArgument:
		return "Argument"
	case KindField:
		return "Field"
	case KindScope:
		return "Scope"
	case KindFunction:
		return "Function"
	case KindMethod:
		return "Method"
	case KindConstructor:
		return "Constructor"
	case KindLambda:
		return "Lambda"
	case KindModule:
		return "Module"
	case KindType:
		return "Type"
	case KindFunctionGroup:
		return "FunctionGroup"
	case KindMethodGroup:
		return "MethodGroup"
	case KindTypeMemberStore:
		return "TypeMemberStore"
	default:
		return "Unknown"
	}
}

// NamedObject is the abstract handle every addressable entity implements.
type NamedObject interface {
	// Name is the object's simple name.
	Name() string
	// Kind is the object's closed kind tag.
	Kind() Kind
	// NameStore is the store this object exposes for member lookup, if
	// any (e.g. a TypeSpec exposes its TypeMemberStore).
	NameStore() (NameStore, bool)
	// ParentStore is the store this object lives in, if any.
	ParentStore() (NameStore, bool)
	// FullName is a descriptive name for diagnostics.
	FullName() string
}

// IsAncestorOf reports whether obj's parent-store chain reaches self.
func IsAncestorOf(self, obj NamedObject) bool {
	for obj != nil {
		if obj == self {
			return true
		}
		parent, ok := obj.ParentStore()
		if !ok {
			return false
		}
		obj = parent
	}
	return false
}

// Base is an embeddable NamedObject implementation most concrete handles
// (variables, functions, types...) build on.
type Base struct {
	name   string
	kind   Kind
	parent NameStore
}

// NewBase constructs a Base with the given simple name and kind.
func NewBase(name string, kind Kind) Base { return Base{name: name, kind: kind} }

func (b *Base) Name() string { return b.name }
func (b *Base) Kind() Kind   { return b.kind }
func (b *Base) NameStore() (NameStore, bool) {
	return nil, false
}
func (b *Base) ParentStore() (NameStore, bool) {
	if b.parent == nil {
		return nil, false
	}
	return b.parent, true
}
func (b *Base) SetParentStore(store NameStore) { b.parent = store }
func (b *Base) FullName() string {
	return fmt.Sprintf("%s named: `%s`", b.kind, b.name)
}

// NameStore resolves scoped names to NamedObjects and composes child
// stores, per spec §4.2.
type NameStore interface {
	NamedObject

	// FindName resolves scoped_name looked up from lookup_scope.
	FindName(lookupScope names.ScopeName, scopedName names.ScopedName) (NamedObject, error)
	// AddName adds a locally-named object, not owned by the store.
	AddName(localName string, obj NamedObject) error
	// HasName reports whether localName is directly present.
	HasName(localName string) bool
	// GetName returns the object registered directly under localName
	// (no scope-prefix walking); an empty localName returns the store
	// itself.
	GetName(localName string) (NamedObject, error)
	// AddChildStore registers a child store under localName, not owned.
	AddChildStore(localName string, store NameStore) error
	// AddOwnedChildStore registers and takes ownership of a child store.
	AddOwnedChildStore(localName string, store NameStore) error
	// FindChildStore resolves a nested store for lookupScope.
	FindChildStore(lookupScope names.ScopeName) (NameStore, error)
	// DefinedNames lists every locally-registered name, sorted.
	DefinedNames() []string
	// DebugNames renders the store's contents for diagnostics.
	DebugNames() string
}

// NormalizeLocalName strips a leading "::" from local_name.
func NormalizeLocalName(localName string) string {
	return strings.TrimPrefix(localName, "::")
}

// BaseStore is the plain dictionary + child-store dictionary flavor of
// NameStore.
type BaseStore struct {
	Base
	named       map[string]NamedObject
	childStores map[string]NameStore
	owned       []NameStore
	self        NameStore // set via Init so FindChildStore(empty) can return the interface value
}

// NewBaseStore constructs an empty BaseStore. The NameStore value
// embedding this BaseStore must be recorded with Init after embedding (so
// FindChildStore can return itself as an interface value).
func NewBaseStore(name string, kind Kind) *BaseStore {
	return &BaseStore{
		Base:        NewBase(name, kind),
		named:       map[string]NamedObject{},
		childStores: map[string]NameStore{},
	}
}

// Init records the outer NameStore value (the one embedding this
// BaseStore) so that FindName/FindChildStore can return it for an empty
// scope. Must be called once after construction.
func (s *BaseStore) Init(self NameStore) { s.self = self }

func (s *BaseStore) NameStore() (NameStore, bool) {
	if s.self != nil {
		return s.self, true
	}
	return nil, false
}

func (s *BaseStore) AddName(localName string, obj NamedObject) error {
	if IsAncestorOf(obj, s.self) {
		return nudlerr.New(nudlerr.FailedPrecondition,
			"don't create object chains: %s => %s", obj.FullName(), s.FullName())
	}
	key := NormalizeLocalName(localName)
	if existing, ok := s.named[key]; ok {
		return nudlerr.New(nudlerr.AlreadyExists,
			"%s already contains local object: %s under local name: %s, while adding: %s",
			s.FullName(), existing.FullName(), localName, obj.FullName())
	}
	s.named[key] = obj
	return nil
}

func (s *BaseStore) HasName(localName string) bool {
	if localName == "" {
		return true
	}
	_, ok := s.named[NormalizeLocalName(localName)]
	return ok
}

func (s *BaseStore) GetName(localName string) (NamedObject, error) {
	if localName == "" {
		return s.self, nil
	}
	obj, ok := s.named[NormalizeLocalName(localName)]
	if !ok {
		return nil, nudlerr.New(nudlerr.NotFound,
			"cannot find local name: `%s` in %s", localName, s.FullName())
	}
	return obj, nil
}

func (s *BaseStore) AddChildStore(localName string, store NameStore) error {
	key := NormalizeLocalName(localName)
	if existing, ok := s.childStores[key]; ok {
		return nudlerr.New(nudlerr.AlreadyExists,
			"%s already contains child store: %s registered under local name: %s; while adding child store: %s",
			s.FullName(), existing.FullName(), localName, store.FullName())
	}
	if err := s.AddName(key, store); err != nil {
		return err
	}
	s.childStores[key] = store
	return nil
}

func (s *BaseStore) AddOwnedChildStore(localName string, store NameStore) error {
	if err := s.AddChildStore(localName, store); err != nil {
		return err
	}
	s.owned = append(s.owned, store)
	return nil
}

// FindChildStore walks increasing-length prefixes of lookupScope, trying
// each registered child store in turn and recursing into the remaining
// suffix; it returns the first prefix whose child store resolves the
// whole suffix. An empty lookupScope resolves to the store itself.
func (s *BaseStore) FindChildStore(lookupScope names.ScopeName) (NameStore, error) {
	if lookupScope.Empty() {
		return s.self, nil
	}
	for i := 1; i <= lookupScope.Size(); i++ {
		prefix := NormalizeLocalName(lookupScope.PrefixName(i))
		child, ok := s.childStores[prefix]
		if !ok {
			continue
		}
		if result, err := child.FindChildStore(lookupScope.SuffixScopeName(i)); err == nil {
			return result, nil
		}
	}
	return nil, nudlerr.New(nudlerr.NotFound,
		"cannot find `%s` in: %s", lookupScope.Name(), s.FullName())
}

// FindName resolves scopedName.Name within the child store found for
// scopedName.Scope; lookupScope is not consulted.
func (s *BaseStore) FindName(lookupScope names.ScopeName, scopedName names.ScopedName) (NamedObject, error) {
	store, err := s.FindChildStore(scopedName.Scope)
	if err != nil {
		return nil, nudlerr.Wrap(nudlerr.NotFound, err, "finding in: %s", s.FullName())
	}
	return store.GetName(scopedName.Name)
}

func (s *BaseStore) DefinedNames() []string {
	out := make([]string, 0, len(s.named))
	for k := range s.named {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (s *BaseStore) DebugNames() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Name Store: %s / %s\n", s.Name(), s.FullName())
	names := s.DefinedNames()
	lines := make([]string, 0, len(names))
	for _, n := range names {
		lines = append(lines, fmt.Sprintf("  %s : %s", n, s.named[n].FullName()))
	}
	b.WriteString(strings.Join(lines, "\n"))
	return b.String()
}

// WrappedStore forwards every operation to an underlying store but
// reports its own name in diagnostics; a lookup that resolves to the
// underlying store is rewritten to resolve to the wrapper.
type WrappedStore struct {
	Base
	wrapped NameStore
	self    NameStore
}

// NewWrappedStore constructs a store that forwards to wrapped under the
// given display name.
func NewWrappedStore(name string, wrapped NameStore) *WrappedStore {
	return &WrappedStore{Base: NewBase(name, wrapped.Kind()), wrapped: wrapped}
}

// Init records the outer NameStore value embedding this WrappedStore.
func (s *WrappedStore) Init(self NameStore) { s.self = self }

func (s *WrappedStore) NameStore() (NameStore, bool) { return s.self, true }

func (s *WrappedStore) FindName(lookupScope names.ScopeName, scopedName names.ScopedName) (NamedObject, error) {
	obj, err := s.wrapped.FindName(lookupScope, scopedName)
	if err != nil {
		return nil, err
	}
	if obj == s.wrapped {
		return s.self, nil
	}
	return obj, nil
}

func (s *WrappedStore) AddName(localName string, obj NamedObject) error {
	return s.wrapped.AddName(localName, obj)
}
func (s *WrappedStore) HasName(localName string) bool { return s.wrapped.HasName(localName) }
func (s *WrappedStore) GetName(localName string) (NamedObject, error) {
	obj, err := s.wrapped.GetName(localName)
	if err != nil {
		return nil, err
	}
	if obj == s.wrapped {
		return s.self, nil
	}
	return obj, nil
}
func (s *WrappedStore) AddChildStore(localName string, store NameStore) error {
	return s.wrapped.AddChildStore(localName, store)
}
func (s *WrappedStore) AddOwnedChildStore(localName string, store NameStore) error {
	return s.wrapped.AddOwnedChildStore(localName, store)
}
func (s *WrappedStore) FindChildStore(lookupScope names.ScopeName) (NameStore, error) {
	store, err := s.wrapped.FindChildStore(lookupScope)
	if err != nil {
		return nil, err
	}
	if store == s.wrapped {
		return s.self, nil
	}
	return store, nil
}
func (s *WrappedStore) DefinedNames() []string { return s.wrapped.DefinedNames() }
func (s *WrappedStore) DebugNames() string      { return s.wrapped.DebugNames() }
