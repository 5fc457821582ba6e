package expr

import (
	"github.com/NunaInc/nudl-go/internal/nudlerr"
	"github.com/NunaInc/nudl-go/internal/types"
)

// If is a composed if/elif/.../else expression: condition[i] guards
// expression[i]; an optional trailing expression with no matching
// condition is the else branch.
//
// Grounded on expression.h's IfExpression and spec §4.6's "returns the
// common ancestor of branch types; ContainsFunctionExit is true iff every
// branch (including else) returns".
type If struct {
	Base

	base       *types.BaseTypesStore
	numConds   int // len(condition); children holds condition... then expression...
}

// NewIf constructs an if expression. len(expressions) must equal
// len(conditions) (no else) or len(conditions)+1 (with else).
func NewIf(scope Scope, base *types.BaseTypesStore, conditions, expressions []Expression) *If {
	children := make([]Expression, 0, len(conditions)+len(expressions))
	children = append(children, conditions...)
	children = append(children, expressions...)
	i := &If{Base: NewBase(KindIf, scope, children), base: base, numConds: len(conditions)}
	i.Init(i)
	return i
}

func (i *If) Condition() []Expression  { return i.children[:i.numConds] }
func (i *If) Expression() []Expression { return i.children[i.numConds:] }
func (i *If) hasElse() bool            { return len(i.Expression()) > i.numConds }

func (i *If) negotiateType(hint *types.TypeSpec) (*types.TypeSpec, error) {
	conds := i.Condition()
	branches := i.Expression()
	if len(branches) != i.numConds && len(branches) != i.numConds+1 {
		return nil, nudlerr.New(nudlerr.InvalidArgument,
			"if expression has %d conditions but %d branches", i.numConds, len(branches))
	}
	for _, c := range conds {
		condType, err := c.NegotiateType(i.base.Bool)
		if err != nil {
			return nil, err
		}
		if !i.base.Bool.IsAncestorOf(condType) {
			return nil, nudlerr.New(nudlerr.InvalidArgument,
				"if condition must be Bool, found %s", condType.FullName())
		}
	}
	branchTypes, err := negotiateAll(branches, hint)
	if err != nil {
		return nil, err
	}
	return commonAncestor(branchTypes, i.base.Any), nil
}

func (i *If) ContainsFunctionExit() bool {
	if !i.hasElse() {
		return false
	}
	for _, e := range i.Expression() {
		if !e.ContainsFunctionExit() {
			return false
		}
	}
	return true
}

func (i *If) DebugString() string { return debugChildren("If", i.children) }

func (i *If) Clone(override CloneOverride) Expression {
	conds := cloneChildren(i.Condition(), override)
	branches := cloneChildren(i.Expression(), override)
	return NewIf(i.scope, i.base, conds, branches)
}

// Block is a sequence of expressions executed one after another; its type
// is the type of the last expression.
//
// Grounded on expression.h's ExpressionBlock and spec §4.6's "type is the
// type of the last expression; ContainsFunctionExit iff any child does".
type Block struct {
	Base
}

// NewBlock constructs a block from children, executed in order.
func NewBlock(scope Scope, children []Expression) *Block {
	b := &Block{Base: NewBase(KindBlock, scope, children)}
	b.Init(b)
	return b
}

func (b *Block) negotiateType(hint *types.TypeSpec) (*types.TypeSpec, error) {
	if len(b.children) == 0 {
		return nil, nudlerr.New(nudlerr.InvalidArgument, "empty expression block has no type")
	}
	for _, c := range b.children[:len(b.children)-1] {
		if _, err := c.NegotiateType(nil); err != nil {
			return nil, err
		}
	}
	return b.children[len(b.children)-1].NegotiateType(hint)
}

func (b *Block) ContainsFunctionExit() bool {
	for _, c := range b.children {
		if c.ContainsFunctionExit() {
			return true
		}
	}
	return false
}

func (b *Block) DebugString() string { return debugChildren("Block", b.children) }

func (b *Block) Clone(override CloneOverride) Expression {
	return NewBlock(b.scope, cloneChildren(b.children, override))
}
