// Package scope implements spec §4.8's Module/Scope component: a
// NameStore hosting a module's types, variables, functions, nested
// modules, and imports, tied to its own per-scope type registry.
//
// Grounded on spec §3's "Module / Scope... A NameStore hosting types,
// variables, functions, nested modules, and imports; records
// parse/analysis timings and a dependency set" and §4.8's prose; no
// original-source module.h/scope.h survives in this retrieval pack (only
// dependency_analyzer.h/.cc do), so the NameStore/child-store wiring
// below reuses internal/nameobj.BaseStore exactly as internal/types'
// ScopeTypeStore already does for the type lattice, and the
// parent/child tree idiom follows cuelang.org/go/internal/core/adt's
// Vertex (composite.go): a scope is a node that owns its children and
// carries a back-reference into the surrounding store graph.
package scope

import (
	"time"

	"github.com/NunaInc/nudl-go/internal/expr"
	"github.com/NunaInc/nudl-go/internal/funcs"
	"github.com/NunaInc/nudl-go/internal/nameobj"
	"github.com/NunaInc/nudl-go/internal/names"
	"github.com/NunaInc/nudl-go/internal/nudlerr"
	"github.com/NunaInc/nudl-go/internal/types"
)

// Module is a single compilation unit's scope: it exposes a NameStore
// for the entities declared in it and owns the expressions parsed at
// its top level, in declaration order.
//
// Grounded on spec §3/§4.8's Module/Scope description; satisfies
// internal/expr's Scope and ModuleRef seams, and internal/expr's
// identifier typedNamedObject seam ("for modules, returns the module
// type").
type Module struct {
	*nameobj.BaseStore

	scopeName  names.ScopeName
	global     *types.GlobalTypeStore
	typeStore  *types.ScopeTypeStore
	moduleType *types.TypeSpec

	expressions  []expr.Expression
	dependencies map[string]*Module

	parseDuration    time.Duration
	hasParseDuration bool

	analysisDuration    time.Duration
	hasAnalysisDuration bool

	mainFunction *funcs.Function
}

// NewModule declares a fresh module scope named scopeName, registering
// its type registry with global.
func NewModule(scopeName names.ScopeName, global *types.GlobalTypeStore) (*Module, error) {
	typeStore, err := global.AddScope(scopeName)
	if err != nil {
		return nil, err
	}
	m := &Module{
		BaseStore:    nameobj.NewBaseStore(scopeName.Name(), nameobj.KindModule),
		scopeName:    scopeName,
		global:       global,
		typeStore:    typeStore,
		moduleType:   global.Base().Module,
		dependencies: map[string]*Module{},
	}
	m.BaseStore.Init(m)
	return m, nil
}

// ScopeName returns the module's own scope name.
func (m *Module) ScopeName() names.ScopeName { return m.scopeName }

// TypeSpec returns the built-in Module type, per spec §4.6's "for
// modules, the module type" (satisfies internal/expr's typedNamedObject
// seam, so a module can be the object of an Identifier).
func (m *Module) TypeSpec() *types.TypeSpec { return m.moduleType }

// TypeStore returns this module's own type registry.
func (m *Module) TypeStore() *types.ScopeTypeStore { return m.typeStore }

// GlobalTypeStore returns the shared global type registry.
func (m *Module) GlobalTypeStore() *types.GlobalTypeStore { return m.global }

// AddExpression appends e to the module's top-level expression list, in
// declaration order.
func (m *Module) AddExpression(e expr.Expression) { m.expressions = append(m.expressions, e) }

// Expressions returns the module's top-level expressions, in declaration
// order.
func (m *Module) Expressions() []expr.Expression { return m.expressions }

// FunctionGroup returns the FunctionGroup registered locally under name,
// creating an empty one on first use. Fails if a different kind of
// object already occupies that name.
func (m *Module) FunctionGroup(name string) (*funcs.FunctionGroup, error) {
	if m.HasName(name) {
		obj, err := m.GetName(name)
		if err != nil {
			return nil, err
		}
		group, ok := obj.(*funcs.FunctionGroup)
		if !ok {
			return nil, nudlerr.New(nudlerr.AlreadyExists,
				"%s already names a %s, not a function group, in module %s", name, obj.Kind(), m.FullName())
		}
		return group, nil
	}
	group := funcs.NewFunctionGroup(name)
	if err := m.AddName(name, group); err != nil {
		return nil, err
	}
	return group, nil
}

// Import registers dep as a child store reachable under alias (or, if
// alias is empty, under dep's own name), per spec §4.8's "Imports
// create a child store under an alias (or the full module name)", and
// records dep in this module's dependency set.
func (m *Module) Import(alias string, dep *Module) error {
	key := alias
	if key == "" {
		key = dep.Name()
	}
	if err := m.AddChildStore(key, dep); err != nil {
		return err
	}
	m.dependencies[dep.scopeName.Name()] = dep
	return nil
}

// Dependencies returns the set of modules imported directly into this
// one, keyed by their own scope name.
func (m *Module) Dependencies() map[string]*Module {
	out := make(map[string]*Module, len(m.dependencies))
	for k, v := range m.dependencies {
		out[k] = v
	}
	return out
}

// SetMainFunction records the module's entry-point function, per spec's
// "A main function, if present, also produces a separate runnable
// entry-point file" and the original's Module::main_function.
func (m *Module) SetMainFunction(fn *funcs.Function) { m.mainFunction = fn }

// MainFunction returns the module's entry-point function, if one was
// declared.
func (m *Module) MainFunction() (*funcs.Function, bool) {
	return m.mainFunction, m.mainFunction != nil
}

// SetParseDuration records how long parsing this module took.
func (m *Module) SetParseDuration(d time.Duration) {
	m.parseDuration = d
	m.hasParseDuration = true
}

// ParseDuration returns the duration recorded by SetParseDuration, if
// any.
func (m *Module) ParseDuration() (time.Duration, bool) {
	return m.parseDuration, m.hasParseDuration
}

// SetAnalysisDuration records how long semantic analysis of this module
// took.
func (m *Module) SetAnalysisDuration(d time.Duration) {
	m.analysisDuration = d
	m.hasAnalysisDuration = true
}

// AnalysisDuration returns the duration recorded by SetAnalysisDuration,
// if any.
func (m *Module) AnalysisDuration() (time.Duration, bool) {
	return m.analysisDuration, m.hasAnalysisDuration
}
