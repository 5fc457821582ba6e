package expr

import (
	"fmt"

	"github.com/NunaInc/nudl-go/internal/nameobj"
	"github.com/NunaInc/nudl-go/internal/nudlerr"
	"github.com/NunaInc/nudl-go/internal/types"
)

// Binding is the slice of internal/funcs's eventual FunctionBinding that
// FunctionCall needs: the already-overload-resolved callee, exposing its
// chosen concrete result type. Kept as a minimal seam for the same reason
// as vars.TypedExpression and expr.Scope: overload resolution (spec §4.7)
// lives in internal/funcs, which will itself hold expr.Expression values
// (default-value expressions, function bodies), so expr cannot import it.
type Binding interface {
	ResultType() *types.TypeSpec
	DebugString() string
}

// FunctionCall performs overload resolution (done by the caller, producing
// binding) and evaluates to the chosen function's result type; it records
// the set of functions the call depends on, for the emitter to enumerate
// required specializations. That set holds only the directly resolved
// callee; functions the callee itself calls are not included, and are
// reached through the calls inside the callee's body when it is emitted.
//
// Grounded on expression.h's FunctionCallExpression and spec §4.6/§4.7's
// overload-resolution and result-type contract.
type FunctionCall struct {
	Base

	binding        Binding
	isMethodCall   bool
	hasLeft        bool
	dependentFuncs map[nameobj.NamedObject]struct{}
}

// NewFunctionCall constructs a call to binding, with optional left (the
// receiver expression for a method call, i.e. `left.f(args...)`) and
// positional/keyword-resolved argument expressions (in the order binding
// expects them).
func NewFunctionCall(scope Scope, binding Binding, left Expression, args []Expression, isMethodCall bool) *FunctionCall {
	var children []Expression
	hasLeft := left != nil
	if hasLeft {
		children = append(children, left)
	}
	children = append(children, args...)
	f := &FunctionCall{
		Base:           NewBase(KindFunctionCall, scope, children),
		binding:        binding,
		isMethodCall:   isMethodCall,
		hasLeft:        hasLeft,
		dependentFuncs: map[nameobj.NamedObject]struct{}{},
	}
	f.Init(f)
	return f
}

func (f *FunctionCall) FunctionBinding() Binding { return f.binding }
func (f *FunctionCall) IsMethodCall() bool       { return f.isMethodCall }

func (f *FunctionCall) LeftExpression() (Expression, bool) {
	if !f.hasLeft {
		return nil, false
	}
	return f.children[0], true
}

func (f *FunctionCall) ArgumentExpressions() []Expression {
	if f.hasLeft {
		return f.children[1:]
	}
	return f.children
}

// DependentFunctions is the set of functions this call requires to be
// emitted: the directly resolved callee only, not its own dependencies.
func (f *FunctionCall) DependentFunctions() map[nameobj.NamedObject]struct{} { return f.dependentFuncs }

// SetDependentFunctions replaces the recorded dependent-function set.
func (f *FunctionCall) SetDependentFunctions(funcs map[nameobj.NamedObject]struct{}) {
	f.dependentFuncs = funcs
}

func (f *FunctionCall) negotiateType(hint *types.TypeSpec) (*types.TypeSpec, error) {
	if f.binding == nil {
		return nil, nudlerr.New(nudlerr.Internal, "function call has no resolved binding")
	}
	return f.binding.ResultType(), nil
}

func (f *FunctionCall) DebugString() string {
	return fmt.Sprintf("FunctionCall(%s, %d args)", f.binding.DebugString(), len(f.ArgumentExpressions()))
}

func (f *FunctionCall) Clone(override CloneOverride) Expression {
	var left Expression
	if l, ok := f.LeftExpression(); ok {
		left = cloneOne(l, override)
	}
	return NewFunctionCall(f.scope, f.binding, left, cloneChildren(f.ArgumentExpressions(), override), f.isMethodCall)
}

// LambdaFunction is the slice of internal/funcs.Function a lambda captures:
// enough to expose its function type and identity as a NamedObject.
type LambdaFunction interface {
	nameobj.NamedObject
	TypeSpec() *types.TypeSpec
}

// LambdaGroup is the slice of internal/funcs.FunctionGroup a lambda
// registers its instance into, per spec §4.6's "the lambda's function is
// added to its group".
type LambdaGroup interface {
	AddInstance(fn LambdaFunction) error
}

// Lambda is a function-literal expression: its type is its captured
// function's type.
//
// Grounded on expression.h's LambdaExpression.
type Lambda struct {
	Base

	function LambdaFunction
	group    LambdaGroup
}

// NewLambda constructs a lambda wrapping function; the function is
// registered into group when the lambda's type is negotiated.
func NewLambda(scope Scope, function LambdaFunction, group LambdaGroup) *Lambda {
	l := &Lambda{Base: NewBase(KindLambda, scope, nil), function: function, group: group}
	l.Init(l)
	return l
}

func (l *Lambda) LambdaFunction() LambdaFunction { return l.function }
func (l *Lambda) LambdaGroup() LambdaGroup       { return l.group }

func (l *Lambda) NamedObject() (nameobj.NamedObject, bool) { return l.function, true }

func (l *Lambda) negotiateType(hint *types.TypeSpec) (*types.TypeSpec, error) {
	if l.group != nil {
		if err := l.group.AddInstance(l.function); err != nil {
			return nil, err
		}
	}
	return l.function.TypeSpec(), nil
}

func (l *Lambda) DebugString() string { return fmt.Sprintf("Lambda(%s)", l.function.Name()) }

func (l *Lambda) Clone(override CloneOverride) Expression {
	return NewLambda(l.scope, l.function, l.group)
}

// ResultKind is the closed set of ways a function exits, per
// pb.FunctionResultKind in the original.
type ResultKind int

const (
	ResultPass ResultKind = iota
	ResultReturn
	ResultYield
)

func (k ResultKind) String() string {
	switch k {
	case ResultPass:
		return "pass"
	case ResultReturn:
		return "return"
	case ResultYield:
		return "yield"
	default:
		return "unknown"
	}
}

// ResultParentFunction is the slice of internal/funcs.Function a
// FunctionResult needs: identity for DebugString/named_object, plus the
// hook to constrain the enclosing function to Generator on a yield, per
// spec §4.6's "yield constrains the enclosing function to be a Generator".
type ResultParentFunction interface {
	nameobj.NamedObject
	EnsureGenerator() error
}

// FunctionResult is a pass/return/yield exit from a function body.
//
// Grounded on expression.h's FunctionResultExpression and spec §4.6's
// "return type is its child's type; yield constrains the enclosing
// function to be a Generator".
type FunctionResult struct {
	Base

	resultKind     ResultKind
	parentFunction ResultParentFunction
	hasExpression  bool
}

// NewFunctionResult constructs a pass/return/yield node; expression may be
// nil only for a bare `pass`.
func NewFunctionResult(scope Scope, parentFunction ResultParentFunction, resultKind ResultKind, expression Expression) *FunctionResult {
	var children []Expression
	hasExpr := expression != nil
	if hasExpr {
		children = []Expression{expression}
	}
	f := &FunctionResult{
		Base:           NewBase(KindFunctionResult, scope, children),
		resultKind:     resultKind,
		parentFunction: parentFunction,
		hasExpression:  hasExpr,
	}
	f.Init(f)
	return f
}

func (f *FunctionResult) ResultKind() ResultKind             { return f.resultKind }
func (f *FunctionResult) ParentFunction() ResultParentFunction { return f.parentFunction }

func (f *FunctionResult) NamedObject() (nameobj.NamedObject, bool) {
	return f.parentFunction, true
}

func (f *FunctionResult) ContainsFunctionExit() bool { return true }

func (f *FunctionResult) negotiateType(hint *types.TypeSpec) (*types.TypeSpec, error) {
	if f.resultKind == ResultYield {
		if err := f.parentFunction.EnsureGenerator(); err != nil {
			return nil, err
		}
	}
	if !f.hasExpression {
		return nil, nil
	}
	return f.children[0].NegotiateType(hint)
}

func (f *FunctionResult) DebugString() string {
	if !f.hasExpression {
		return f.resultKind.String() + "()"
	}
	return fmt.Sprintf("%s(%s)", f.resultKind, f.children[0].DebugString())
}

func (f *FunctionResult) Clone(override CloneOverride) Expression {
	var expression Expression
	if f.hasExpression {
		expression = cloneOne(f.children[0], override)
	}
	return NewFunctionResult(f.scope, f.parentFunction, f.resultKind, expression)
}
