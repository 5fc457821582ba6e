// Package expr implements the expression tree of spec §4.6: every node
// negotiates its static type against an optional hint, caching the result,
// and can be deep-cloned with a per-node substitution hook (used by
// function instantiation to copy a lambda body into a fresh binding).
//
// Grounded on the original NunaInc/nudl analyzer's expression.h (the node
// variant list and per-node contracts below are one-to-one with its class
// hierarchy); the discriminated-interface/embedding translation of that
// C++ class hierarchy follows cuelang.org/go/internal/core/adt's Expr
// interface (expr.go) and its Clone-with-substitution idiom (copy.go).
package expr

import (
	"github.com/NunaInc/nudl-go/internal/nameobj"
	"github.com/NunaInc/nudl-go/internal/nudlerr"
	"github.com/NunaInc/nudl-go/internal/types"
)

// Kind is the closed set of expression node kinds (pb.ExpressionKind in the
// original, where it tags an on-wire proto node).
type Kind int

const (
	KindUnknown Kind = iota
	KindNop
	KindAssignment
	KindEmptyStruct
	KindLiteral
	KindIdentifier
	KindFunctionResult
	KindArrayDefinition
	KindMapDefinition
	KindTupleDefinition
	KindIf
	KindBlock
	KindIndex
	KindTupleIndex
	KindLambda
	KindDotAccess
	KindFunctionCall
	KindImportStatement
	KindFunctionDefinition
	KindSchemaDefinition
	KindTypeDefinition
)

func (k Kind) String() string {
	switch k {
	case KindNop:
		return "Nop"
	case KindAssignment:
		return "Assignment"
	case KindEmptyStruct:
		return "EmptyStruct"
	case KindLiteral:
		return "Literal"
	case KindIdentifier:
		return "Identifier"
	case KindFunctionResult:
		return "FunctionResult"
	case KindArrayDefinition:
		return "ArrayDefinition"
	case KindMapDefinition:
		return "MapDefinition"
	case KindTupleDefinition:
		return "TupleDefinition"
	case KindIf:
		return "If"
	case KindBlock:
		return "Block"
	case KindIndex:
		return "Index"
	case KindTupleIndex:
		return "TupleIndex"
	case KindLambda:
		return "Lambda"
	case KindDotAccess:
		return "DotAccess"
	case KindFunctionCall:
		return "FunctionCall"
	case KindImportStatement:
		return "ImportStatement"
	case KindFunctionDefinition:
		return "FunctionDefinition"
	case KindSchemaDefinition:
		return "SchemaDefinition"
	case KindTypeDefinition:
		return "TypeDefinition"
	default:
		return "Unknown"
	}
}

// Scope is the slice of internal/scope's eventual Scope type that the
// expression tree needs: a name store expressions resolve identifiers
// and member accesses against. Kept as a minimal seam (like
// vars.TypedExpression) so internal/expr doesn't need to import a scope
// package that in turn wants to hold expressions.
type Scope interface {
	nameobj.NameStore
}

// Visitor is called in-order for an expression and its children; per
// VisitExpressions's contract, returning false from Visit stops the whole
// remaining walk: the current node's children and every node not yet
// visited are skipped.
type Visitor interface {
	Visit(e Expression) bool
}

// CloneOverride substitutes a replacement for e during Clone, or returns
// nil to clone e as normal; used by function instantiation to rewrite
// argument identifiers inside a copied lambda body.
type CloneOverride func(e Expression) Expression

// Expression is the common interface of every tree node. NegotiateType's
// signature is exactly vars.TypedExpression's, so every Expression can be
// assigned to a vars.VarBase directly.
type Expression interface {
	Kind() Kind
	Scope() Scope
	Children() []Expression
	NamedObject() (nameobj.NamedObject, bool)
	SetNamedObject(obj nameobj.NamedObject)
	ContainsFunctionExit() bool
	VisitExpressions(visitor Visitor) bool
	StaticValue() (interface{}, bool)
	StoredTypeSpec() (*types.TypeSpec, bool)
	NegotiateType(hint *types.TypeSpec) (*types.TypeSpec, error)
	Clone(override CloneOverride) Expression
	DebugString() string
	IsDefaultReturn() bool
	SetIsDefaultReturn()
}

// typeNegotiator is the per-node hook Base.NegotiateType dispatches to;
// every concrete node type implements it, analogous to the original's
// protected virtual NegotiateType.
type typeNegotiator interface {
	negotiateType(hint *types.TypeSpec) (*types.TypeSpec, error)
}

// Base is the embeddable common implementation of Expression: it owns the
// scope/children/cached-type bookkeeping so concrete nodes only implement
// negotiateType, Clone, and DebugString.
//
// Grounded on expression.h's Expression base class: scope_, children_,
// type_spec_/type_hint_ caching pair, named_object_, is_default_return_.
type Base struct {
	self Expression // set via Init; required for dynamic dispatch to negotiateType

	kind        Kind
	scope       Scope
	children    []Expression
	typeSpec    *types.TypeSpec
	typeHint    *types.TypeSpec
	namedObject nameobj.NamedObject
	isDefault   bool
}

// NewBase constructs a Base for a node of the given kind, scope, and
// children. Concrete constructors call this, then Init(self).
func NewBase(kind Kind, scope Scope, children []Expression) Base {
	return Base{kind: kind, scope: scope, children: children}
}

// Init records the outer Expression value embedding this Base, required so
// NegotiateType can dispatch to the concrete node's negotiateType and
// VisitExpressions can hand the visitor the right dynamic value.
func (b *Base) Init(self Expression) { b.self = self }

func (b *Base) Kind() Kind        { return b.kind }
func (b *Base) Scope() Scope      { return b.scope }
func (b *Base) Children() []Expression { return b.children }

func (b *Base) NamedObject() (nameobj.NamedObject, bool) {
	if b.namedObject == nil {
		return nil, false
	}
	return b.namedObject, true
}

func (b *Base) SetNamedObject(obj nameobj.NamedObject) { b.namedObject = obj }

// ContainsFunctionExit defaults to false; If/Block/FunctionResult override.
func (b *Base) ContainsFunctionExit() bool { return false }

// VisitExpressions visits self then, if that returned true, every child in
// order, short-circuiting on the first false.
func (b *Base) VisitExpressions(visitor Visitor) bool {
	if !visitor.Visit(b.self) {
		return false
	}
	for _, c := range b.children {
		if !c.VisitExpressions(visitor) {
			return false
		}
	}
	return true
}

// StaticValue defaults to "not a compile-time constant"; Literal overrides.
func (b *Base) StaticValue() (interface{}, bool) { return nil, false }

func (b *Base) StoredTypeSpec() (*types.TypeSpec, bool) {
	if b.typeSpec == nil {
		return nil, false
	}
	return b.typeSpec, true
}

// NegotiateType returns the cached type if NegotiateType already succeeded
// once, else dispatches to the concrete node's negotiateType and caches
// the result, mirroring the original's public TypeSpec()/protected
// NegotiateType() split collapsed into one cached call.
func (b *Base) NegotiateType(hint *types.TypeSpec) (*types.TypeSpec, error) {
	if b.typeSpec != nil {
		return b.typeSpec, nil
	}
	n, ok := b.self.(typeNegotiator)
	if !ok {
		return nil, nudlerr.New(nudlerr.Internal,
			"expression %s does not implement negotiateType", b.kind)
	}
	typeSpec, err := n.negotiateType(hint)
	if err != nil {
		return nil, err
	}
	b.typeSpec = typeSpec
	b.typeHint = hint
	return typeSpec, nil
}

func (b *Base) IsDefaultReturn() bool    { return b.isDefault }
func (b *Base) SetIsDefaultReturn()      { b.isDefault = true }

// cloneChildren clones every child via cloneOne, used by nodes with plain
// child lists (Block, ArrayDefinition, ...).
func cloneChildren(children []Expression, override CloneOverride) []Expression {
	out := make([]Expression, len(children))
	for i, c := range children {
		out[i] = cloneOne(c, override)
	}
	return out
}

// cloneOne applies override to e first (per CloneOverride's contract: a nil
// result means "clone normally"), else deep-clones e.
func cloneOne(e Expression, override CloneOverride) Expression {
	if e == nil {
		return nil
	}
	if override != nil {
		if replaced := override(e); replaced != nil {
			return replaced
		}
	}
	return e.Clone(override)
}

// commonAncestor finds a type all of items descend from, walking the first
// item's ancestor chain upward until one dominates every item, falling back
// to anyType if items is empty or shares nothing more specific. Grounded on
// spec §4.6's "unify element types to their least common ancestor... reject
// if no common ancestor exists except Any" (type_spec.h's single-inheritance
// Ancestor chain makes this walk well-defined; Union's own multi-parent
// ancestry is handled by TypeSpec.IsAncestorOf itself).
func commonAncestor(items []*types.TypeSpec, anyType *types.TypeSpec) *types.TypeSpec {
	if len(items) == 0 {
		return anyType
	}
	candidate := items[0]
outer:
	for candidate != nil {
		for _, t := range items {
			if !candidate.IsAncestorOf(t) {
				candidate = candidate.Ancestor
				continue outer
			}
		}
		return candidate
	}
	return anyType
}

func debugChildren(name string, children []Expression) string {
	s := name + "("
	for i, c := range children {
		if i > 0 {
			s += ", "
		}
		s += c.DebugString()
	}
	return s + ")"
}
