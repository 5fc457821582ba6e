package types

import (
	"strconv"
	"strings"

	"github.com/NunaInc/nudl-go/internal/names"
	"github.com/NunaInc/nudl-go/internal/nudlerr"
)

// TypeRequest is the Go-idiomatic stand-in for the original analyzer's
// pb.TypeSpec DSL node: a request to find-or-bind a named type, optionally
// parameterized, optionally a "local type" declaration (the `{T: Int}`
// syntax that introduces a type alias scoped to a function/struct body).
//
// Grounded on original_source/nudl/analysis/type_store.cc's FindType /
// FindTypeLocal, which pattern-match on the equivalent proto fields.
type TypeRequest struct {
	IsLocalType bool
	Identifier  string // e.g. "Array" or "mymodule.Foo"; empty local name means "use the aliased type's own name"
	Arguments   []TypeRequestArg
}

// TypeRequestArg is one bind argument within a TypeRequest: either an
// integer literal (Decimal<10,2>) or a nested TypeRequest.
type TypeRequestArg struct {
	IsInt    bool
	IntValue int
	Nested   *TypeRequest
}

// RegistrationCallback runs whenever a new type is declared in scopeName;
// used by the scope/emit layers to react to freshly-registered struct and
// function types (spec §4.4 "post-registration callback hook").
type RegistrationCallback func(t *TypeSpec) error

// TypeStore is the common interface of the global registry and its
// per-scope children, mirroring original_source/nudl/analysis/type_store.h.
type TypeStore interface {
	FindType(lookupScope names.ScopeName, req TypeRequest) (*TypeSpec, error)
	FindTypeByName(name string) (*TypeSpec, error)
	DeclareType(scopeName names.ScopeName, name string, typeSpec *TypeSpec) (*TypeSpec, error)
	ScopeName() names.ScopeName
	DebugNames() string
	GlobalStore() *GlobalTypeStore
}

// GlobalTypeStore is the root TypeStore: a built-in base store plus one
// ScopeTypeStore per module, with alias support and registration hooks.
type GlobalTypeStore struct {
	base      *BaseTypesStore
	scopes    map[string]*ScopeTypeStore
	order     []*ScopeTypeStore
	callbacks map[string]RegistrationCallback
}

// NewGlobalTypeStore constructs a global store with a freshly bootstrapped
// built-in hierarchy.
func NewGlobalTypeStore() *GlobalTypeStore {
	return &GlobalTypeStore{
		base:      NewBaseTypesStore(),
		scopes:    map[string]*ScopeTypeStore{},
		callbacks: map[string]RegistrationCallback{},
	}
}

// Base returns the built-in hierarchy this global store wraps.
func (g *GlobalTypeStore) Base() *BaseTypesStore { return g.base }

func (g *GlobalTypeStore) GlobalStore() *GlobalTypeStore { return g }

func (g *GlobalTypeStore) ScopeName() names.ScopeName { return names.Empty }

func (g *GlobalTypeStore) DebugNames() string {
	var b strings.Builder
	b.WriteString("Global store with ")
	b.WriteString(strconv.Itoa(len(g.scopes)))
	b.WriteString(" subscopes\n")
	for _, s := range g.order {
		b.WriteString("> Substore: ")
		b.WriteString(s.scopeName.Name())
		b.WriteString("\n")
		b.WriteString(s.DebugNames())
	}
	b.WriteString("Base store:\n")
	for name := range g.base.byName {
		b.WriteString("Type: ")
		b.WriteString(name)
		b.WriteString("\n")
	}
	return b.String()
}

// FindStore looks up the per-module store registered under name (module
// name or alias).
func (g *GlobalTypeStore) FindStore(name string) (*ScopeTypeStore, bool) {
	s, ok := g.scopes[name]
	return s, ok
}

// AddScope registers a fresh, empty ScopeTypeStore for scopeName.
func (g *GlobalTypeStore) AddScope(scopeName names.ScopeName) (*ScopeTypeStore, error) {
	if _, ok := g.scopes[scopeName.Name()]; ok {
		return nil, nudlerr.New(nudlerr.AlreadyExists, "cannot overwrite module %s", scopeName.Name())
	}
	s := &ScopeTypeStore{scopeName: scopeName, global: g, types: map[string]*TypeSpec{}}
	g.scopes[scopeName.Name()] = s
	g.order = append(g.order, s)
	return s, nil
}

// AddAlias registers aliasName as an additional key resolving to the store
// already registered under scopeName.
func (g *GlobalTypeStore) AddAlias(scopeName, aliasName names.ScopeName) error {
	if _, ok := g.scopes[aliasName.Name()]; ok {
		return nudlerr.New(nudlerr.AlreadyExists, "a type scope named %s already exists", aliasName.Name())
	}
	s, ok := g.scopes[scopeName.Name()]
	if !ok {
		return nudlerr.New(nudlerr.NotFound, "cannot find a type scope named %s for adding an alias to it", scopeName.Name())
	}
	g.scopes[aliasName.Name()] = s
	return nil
}

// AddRegistrationCallback installs callback, invoked once per type
// declared under scopeName (replacing any previous callback for it).
func (g *GlobalTypeStore) AddRegistrationCallback(scopeName names.ScopeName, callback RegistrationCallback) {
	g.callbacks[scopeName.Name()] = callback
}

// RemoveRegistrationCallback drops the callback for scopeName, if any.
func (g *GlobalTypeStore) RemoveRegistrationCallback(scopeName names.ScopeName) {
	delete(g.callbacks, scopeName.Name())
}

func (g *GlobalTypeStore) callRegistrationCallback(scopeName names.ScopeName, t *TypeSpec) error {
	cb, ok := g.callbacks[scopeName.Name()]
	if !ok {
		return nil
	}
	return cb(t)
}

// FindType resolves req, walking lookupScope from its full length down to
// the global scope and trying each prefix's substore before falling back
// to the built-in store for unscoped identifiers. Faithfully mirrors
// GlobalTypeStore::FindType's prefix-descent loop order (longest prefix
// first, NOT the shortest-prefix child-store search used by NameStore
// member lookup in package nameobj -- the two algorithms are deliberately
// different in the original analyzer).
func (g *GlobalTypeStore) FindType(lookupScope names.ScopeName, req TypeRequest) (*TypeSpec, error) {
	if req.IsLocalType {
		store, ok := g.FindStore(lookupScope.Name())
		if !ok {
			return nil, nudlerr.New(nudlerr.NotFound, "scope for lookup %s not created", lookupScope.Name())
		}
		return store.FindType(lookupScope, req)
	}
	typeName, err := names.ParseScopedName(req.Identifier)
	if err != nil {
		return nil, nudlerr.Wrap(nudlerr.InvalidArgument, err, "obtaining type specification")
	}
	for i := lookupScope.Size() + 1; i > 0; i-- {
		prefix := lookupScope.PrefixScopeName(i - 1)
		crtName := prefix.Subscope(typeName.Scope)
		if store, ok := g.FindStore(crtName.Name()); ok {
			if store.HasType(typeName.Name) {
				return store.FindType(lookupScope, req)
			}
		}
	}
	if typeName.Scope.Empty() {
		return g.base.findTypeBuiltin(lookupScope, req)
	}
	return nil, nudlerr.New(nudlerr.NotFound, "cannot find type named `%s`, from module `%s`", typeName.FullName(), lookupScope.Name())
}

// FindTypeByName looks up a base (unparameterized) type directly by its
// built-in name, bypassing scope resolution.
func (g *GlobalTypeStore) FindTypeByName(name string) (*TypeSpec, error) {
	return g.base.FindTypeByName(name)
}

// DeclareType registers typeSpec under name within scopeName, creating the
// scope store on first use.
func (g *GlobalTypeStore) DeclareType(scopeName names.ScopeName, name string, typeSpec *TypeSpec) (*TypeSpec, error) {
	store, ok := g.scopes[scopeName.Name()]
	if !ok {
		var err error
		store, err = g.AddScope(scopeName)
		if err != nil {
			return nil, err
		}
	}
	return store.DeclareType(scopeName, name, typeSpec)
}

// ScopeTypeStore is a single module's type registry: locally declared
// struct/function/local-alias types, resolved relative to the global
// store for anything it does not itself define.
type ScopeTypeStore struct {
	scopeName names.ScopeName
	global    *GlobalTypeStore
	types     map[string]*TypeSpec
}

func (s *ScopeTypeStore) GlobalStore() *GlobalTypeStore { return s.global }
func (s *ScopeTypeStore) ScopeName() names.ScopeName    { return s.scopeName }

// HasType reports whether typeName is declared directly in this scope.
func (s *ScopeTypeStore) HasType(typeName string) bool {
	_, ok := s.types[typeName]
	return ok
}

func (s *ScopeTypeStore) DebugNames() string {
	var b strings.Builder
	b.WriteString("Scope Type Store: ")
	b.WriteString(s.scopeName.Name())
	b.WriteString("\n")
	for name, t := range s.types {
		b.WriteString("Type: ")
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(t.FullName())
		b.WriteString("\n")
	}
	return b.String()
}

// FindType resolves req against this scope's locally declared types,
// building a parameterized instance through TypeSpec.Build when
// req.Arguments is non-empty.
func (s *ScopeTypeStore) FindType(lookupScope names.ScopeName, req TypeRequest) (*TypeSpec, error) {
	if req.IsLocalType {
		return s.findTypeLocal(lookupScope, req)
	}
	typeName, err := names.ParseScopedName(req.Identifier)
	if err != nil {
		return nil, nudlerr.Wrap(nudlerr.InvalidArgument, err, "obtaining type name")
	}
	spec, ok := s.types[typeName.Name]
	if !ok {
		return nil, nudlerr.New(nudlerr.NotFound, "cannot find type `%s` in scope `%s`", typeName.Name, s.scopeName.Name())
	}
	if len(req.Arguments) == 0 {
		return spec, nil
	}
	args, err := s.bindArgs(lookupScope, req.Arguments)
	if err != nil {
		return nil, err
	}
	bound, err := spec.Build(args)
	if err != nil {
		return nil, nudlerr.Wrap(nudlerr.InvalidArgument, err, "binding type %s", spec.Name())
	}
	bound.DefinitionScope = &lookupScope
	return bound, nil
}

func (s *ScopeTypeStore) bindArgs(lookupScope names.ScopeName, reqArgs []TypeRequestArg) ([]BindArg, error) {
	args := make([]BindArg, len(reqArgs))
	for i, a := range reqArgs {
		if a.IsInt {
			args[i] = IntArg(a.IntValue)
			continue
		}
		sub, err := s.global.FindType(lookupScope, *a.Nested)
		if err != nil {
			return nil, nudlerr.Wrap(nudlerr.InvalidArgument, err, "finding subtype")
		}
		args[i] = TypeArg(sub)
	}
	return args, nil
}

func (s *ScopeTypeStore) findTypeLocal(lookupScope names.ScopeName, req TypeRequest) (*TypeSpec, error) {
	if lookupScope.Name() != s.scopeName.Name() {
		return nil, nudlerr.New(nudlerr.Internal, "declaring local type in a wrong scope: %s vs %s", lookupScope.Name(), s.scopeName.Name())
	}
	typeName, err := names.ParseScopedName(req.Identifier)
	if err != nil {
		return nil, nudlerr.Wrap(nudlerr.InvalidArgument, err, "obtaining module name")
	}
	if !typeName.Scope.Empty() {
		return nil, nudlerr.New(nudlerr.InvalidArgument, "local type name should not contain a module specifier: %s", req.Identifier)
	}
	existing, hasExisting := s.types[typeName.Name]
	if len(req.Arguments) == 0 {
		if hasExisting {
			return existing, nil
		}
		return s.declareLocalAnyType(typeName.Name)
	}
	if len(req.Arguments) != 1 || req.Arguments[0].IsInt {
		return nil, nudlerr.New(nudlerr.InvalidArgument, "local type declaration expects a single type argument for %s", typeName.Name)
	}
	if hasExisting {
		return nil, nudlerr.New(nudlerr.AlreadyExists, "cannot redefine local type %s", typeName.Name)
	}
	sub, err := s.global.FindType(lookupScope, *req.Arguments[0].Nested)
	if err != nil {
		return nil, nudlerr.Wrap(nudlerr.InvalidArgument, err, "finding subtype for registering local type %s", typeName.Name)
	}
	return s.DeclareType(lookupScope, typeName.Name, sub.Clone())
}

func (s *ScopeTypeStore) declareLocalAnyType(name string) (*TypeSpec, error) {
	sub, err := s.global.FindType(names.Empty, TypeRequest{Identifier: "Any"})
	if err != nil {
		return nil, nudlerr.Wrap(nudlerr.Internal, err, "cannot find type Any for named local type registration of %s", name)
	}
	return s.DeclareType(s.scopeName, name, sub.Clone())
}

// FindTypeByName looks up name directly within this scope's local types.
func (s *ScopeTypeStore) FindTypeByName(name string) (*TypeSpec, error) {
	t, ok := s.types[name]
	if !ok {
		return nil, nudlerr.New(nudlerr.NotFound, "cannot find type `%s` in scope `%s`", name, s.scopeName.Name())
	}
	return t, nil
}

// DeclareType registers typeSpec under name (defaulting to the type's own
// name), firing the global store's registration callback for this scope.
func (s *ScopeTypeStore) DeclareType(scopeName names.ScopeName, name string, typeSpec *TypeSpec) (*TypeSpec, error) {
	if name == "" {
		name = typeSpec.Name()
	} else {
		typeSpec.LocalName = name
	}
	if _, ok := s.types[name]; ok {
		return nil, nudlerr.New(nudlerr.AlreadyExists, "cannot redeclare existing type `%s` in scope `%s`", name, s.scopeName.Name())
	}
	typeSpec.DefinitionScope = &s.scopeName
	s.types[name] = typeSpec
	if s.global != nil {
		if err := s.global.callRegistrationCallback(s.scopeName, typeSpec); err != nil {
			return nil, err
		}
	}
	return typeSpec, nil
}

// findTypeBuiltin resolves req against the built-in hierarchy: a direct
// name lookup, then Build with any requested arguments.
func (b *BaseTypesStore) findTypeBuiltin(lookupScope names.ScopeName, req TypeRequest) (*TypeSpec, error) {
	typeName, err := names.ParseScopedName(req.Identifier)
	if err != nil {
		return nil, nudlerr.Wrap(nudlerr.InvalidArgument, err, "obtaining built-in type name")
	}
	spec, ok := b.byName[typeName.Name]
	if !ok {
		return nil, nudlerr.New(nudlerr.NotFound, "cannot find built-in type `%s`", typeName.Name)
	}
	if len(req.Arguments) == 0 {
		return spec, nil
	}
	args := make([]BindArg, len(req.Arguments))
	for i, a := range req.Arguments {
		if a.IsInt {
			args[i] = IntArg(a.IntValue)
			continue
		}
		sub, err := b.findTypeBuiltin(lookupScope, *a.Nested)
		if err != nil {
			return nil, err
		}
		args[i] = TypeArg(sub)
	}
	bound, err := spec.Build(args)
	if err != nil {
		return nil, nudlerr.Wrap(nudlerr.InvalidArgument, err, "binding built-in type %s", spec.Name())
	}
	return bound, nil
}

// FindTypeByName exposes a direct built-in lookup for GlobalTypeStore.
func (b *BaseTypesStore) FindTypeByName(name string) (*TypeSpec, error) {
	t, ok := b.byName[name]
	if !ok {
		return nil, nudlerr.New(nudlerr.NotFound, "cannot find type `%s`", name)
	}
	return t, nil
}
