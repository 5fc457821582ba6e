// Package funcs implements spec §4.7's Function/FunctionGroup/
// FunctionBinding trio: function declarations, their overload-resolution
// group, and the already-resolved callee a FunctionCall binds to.
//
// Function and FunctionGroup have no original-source implementation to
// translate: original_source/nudl/analysis/expression.h and types.h only
// forward-declare "class Function" and "class FunctionGroup" (the
// original's definitions live outside this retrieval pack). This package
// is grounded instead on: types.h's fully-defined TypeFunction interface
// (arguments/result_type/first_default_value_index, reproduced here as
// Function's own fields, and function_instances, kept on FunctionGroup),
// spec §4.7's prose resolution
// algorithm, and internal/types/rebinder.go's already-ported
// LocalNamesRebinder, which step (c) of that algorithm feeds per argument.
package funcs

import (
	"github.com/NunaInc/nudl-go/internal/expr"
	"github.com/NunaInc/nudl-go/internal/nameobj"
	"github.com/NunaInc/nudl-go/internal/nudlerr"
	"github.com/NunaInc/nudl-go/internal/types"
	"github.com/NunaInc/nudl-go/internal/vars"
)

// State is a Function's position in spec §4.7's state machine.
type State int

const (
	StateDeclared State = iota
	StateAbstract
	StateConcrete
	StateEmitted
	StateError
)

func (s State) String() string {
	switch s {
	case StateDeclared:
		return "declared"
	case StateAbstract:
		return "abstract"
	case StateConcrete:
		return "concrete"
	case StateEmitted:
		return "emitted"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Function is a single overload candidate: a name, its argument list, a
// Function-family TypeSpec built from those arguments plus a result type,
// an optional body, and optional per-argument default values.
//
// Grounded on types.h's TypeFunction (arguments/result_type/
// first_default_value_index/function_instances) and spec §4.7's state
// machine and default-value rules; satisfies internal/expr's LambdaFunction,
// ResultParentFunction, and DefinedFunction seams.
type Function struct {
	nameobj.Base

	typeSpec  *types.TypeSpec
	arguments []*vars.Argument

	defaultValues             []expr.Expression
	firstDefaultValueIndex    int
	hasFirstDefaultValueIndex bool

	body    expr.Expression
	hasBody bool

	isGenerator    bool
	skipConversion bool
	state          State
	err            error

	group *FunctionGroup
	base  *types.BaseTypesStore
}

// NewFunction declares a function named name over arguments, returning
// resultType, against base's built-in Function type. The function starts
// Concrete if every argument and the result type is already bound, else
// Abstract, per spec §4.7's state diagram.
func NewFunction(name string, arguments []*vars.Argument, resultType *types.TypeSpec, base *types.BaseTypesStore) (*Function, error) {
	bindArgs := make([]types.BindArg, 0, len(arguments)+1)
	paramNames := make([]string, 0, len(arguments)+1)
	for _, a := range arguments {
		bindArgs = append(bindArgs, types.TypeArg(a.TypeSpec()))
		paramNames = append(paramNames, a.Name())
	}
	bindArgs = append(bindArgs, types.TypeArg(resultType))
	paramNames = append(paramNames, "")

	typeSpec, err := base.Function.Bind(bindArgs)
	if err != nil {
		return nil, nudlerr.Wrap(nudlerr.InvalidArgument, err, "declaring function %s", name)
	}
	typeSpec.ParameterNames = paramNames

	f := &Function{
		Base:          nameobj.NewBase(name, nameobj.KindFunction),
		typeSpec:      typeSpec,
		arguments:     append([]*vars.Argument(nil), arguments...),
		defaultValues: make([]expr.Expression, len(arguments)),
		base:          base,
	}
	if typeSpec.IsBound() {
		f.state = StateConcrete
	} else {
		f.state = StateAbstract
	}
	return f, nil
}

// TypeSpec returns the function's own Function-family type.
func (f *Function) TypeSpec() *types.TypeSpec { return f.typeSpec }

// Arguments returns the function's declared parameter list.
func (f *Function) Arguments() []*vars.Argument { return f.arguments }

// State returns the function's current state-machine state.
func (f *Function) State() State { return f.state }

// IsGenerator reports whether a yield has constrained this function to be
// a Generator function.
func (f *Function) IsGenerator() bool { return f.isGenerator }

func (f *Function) resultType() *types.TypeSpec { return f.typeSpec.ResultType() }

// ResultType returns the function's declared (or, for an instantiation,
// concrete) result type.
func (f *Function) ResultType() *types.TypeSpec { return f.resultType() }

// Group returns the FunctionGroup this function was registered into, if
// any.
func (f *Function) Group() (*FunctionGroup, bool) {
	if f.group == nil {
		return nil, false
	}
	return f.group, true
}

// Body returns the function's analyzed body, if one has been set.
func (f *Function) Body() (expr.Expression, bool) {
	if !f.hasBody {
		return nil, false
	}
	return f.body, true
}

// SetBody records body as the function's implementation. A function may
// only have its body set once.
func (f *Function) SetBody(body expr.Expression) error {
	if f.hasBody {
		return nudlerr.New(nudlerr.FailedPrecondition, "function %s already has a body", f.FullName())
	}
	f.body = body
	f.hasBody = true
	return nil
}

// DefaultValue returns the i-th argument's default value expression, if
// one was set.
func (f *Function) DefaultValue(i int) (expr.Expression, bool) {
	if i < 0 || i >= len(f.defaultValues) || f.defaultValues[i] == nil {
		return nil, false
	}
	return f.defaultValues[i], true
}

// SetDefaultValue type-checks value against the i-th argument's declared
// type, in the function's own scope, and records it as that argument's
// default, per spec §4.7's "default values are expressions, owned by the
// declaring function, type-checked in its scope at definition time".
func (f *Function) SetDefaultValue(i int, value expr.Expression) error {
	if i < 0 || i >= len(f.arguments) {
		return nudlerr.New(nudlerr.InvalidArgument, "argument index %d out of range for %s", i, f.FullName())
	}
	if _, err := f.arguments[i].Assign(value); err != nil {
		return nudlerr.Wrap(nudlerr.InvalidArgument, err,
			"default value for argument %s of %s", f.arguments[i].Name(), f.FullName())
	}
	f.defaultValues[i] = value
	return nil
}

// FinalizeDefaultValues computes first_default_value_index from the
// leftmost argument carrying a default value. It may be called only once;
// the result is immutable thereafter, per spec §4.7.
func (f *Function) FinalizeDefaultValues() error {
	if f.hasFirstDefaultValueIndex {
		return nudlerr.New(nudlerr.FailedPrecondition,
			"first default value index already computed for %s", f.FullName())
	}
	idx := len(f.arguments)
	for i, dv := range f.defaultValues {
		if dv != nil {
			idx = i
			break
		}
	}
	f.firstDefaultValueIndex = idx
	f.hasFirstDefaultValueIndex = true
	return nil
}

// FirstDefaultValueIndex returns the leftmost defaulted-argument index
// computed by FinalizeDefaultValues, if it has run.
func (f *Function) FirstDefaultValueIndex() (int, bool) {
	if !f.hasFirstDefaultValueIndex {
		return 0, false
	}
	return f.firstDefaultValueIndex, true
}

// EnsureGenerator satisfies expr.ResultParentFunction: a yield inside the
// function body constrains it to be a Generator function; it is rejected
// once the function's result type is bound to something else.
func (f *Function) EnsureGenerator() error {
	if f.isGenerator {
		return nil
	}
	result := f.resultType()
	if result != nil && result.IsBound() && result.TypeID != types.GeneratorID {
		return nudlerr.New(nudlerr.InvalidArgument, "yield requires a Generator function, found %s", f.FullName())
	}
	f.isGenerator = true
	return nil
}

// SetSkipConversion marks the function's own name (and its call sites) as
// exempt from the emitter's identifier-renaming table, per spec §6
// "Names marked skip_conversion are emitted verbatim" (the original's
// Function::is_skip_conversion, set for natively-named built-ins whose
// Python spelling must match exactly).
func (f *Function) SetSkipConversion(skip bool) { f.skipConversion = skip }

// IsSkipConversion reports whether SetSkipConversion(true) was called.
func (f *Function) IsSkipConversion() bool { return f.skipConversion }

// MarkEmitted transitions a Concrete function to Emitted.
func (f *Function) MarkEmitted() error {
	if f.state != StateConcrete {
		return nudlerr.New(nudlerr.FailedPrecondition,
			"cannot emit %s: not concrete (state: %s)", f.FullName(), f.state)
	}
	f.state = StateEmitted
	return nil
}

// SetError transitions the function to the terminal Error state, carrying
// the diagnostic that caused it.
func (f *Function) SetError(err error) {
	f.state = StateError
	f.err = err
}

// Err returns the diagnostic attached by SetError, if the function is in
// the Error state.
func (f *Function) Err() (error, bool) {
	if f.err == nil {
		return nil, false
	}
	return f.err, true
}

// Instantiate produces a concrete specialization of an abstract function
// for newTypeSpec (typically the result of a LocalNamesRebinder's
// RebuildFunctionWithComponents), cloning the declared body with its
// argument identifiers rewritten to the new instance's own arguments, and
// registering the instance into the function's group. Grounded on spec
// §4.7's "function instances... shared between the call-site and the
// FunctionGroup via its function_instances set".
func (f *Function) Instantiate(newTypeSpec *types.TypeSpec) (*Function, error) {
	if newTypeSpec.IsEqual(f.typeSpec) {
		return f, nil
	}
	if len(newTypeSpec.Parameters) != len(f.arguments)+1 {
		return nil, nudlerr.New(nudlerr.Internal,
			"instantiation type %s has wrong arity for %s", newTypeSpec.FullName(), f.FullName())
	}

	newArgs := make([]*vars.Argument, len(f.arguments))
	override := map[nameobj.NamedObject]nameobj.NamedObject{}
	for i, arg := range f.arguments {
		newArg := vars.NewArgument(arg.Name(), newTypeSpec.Parameters[i], nil)
		newArgs[i] = newArg
		override[arg] = newArg
	}

	instance := &Function{
		Base:                      nameobj.NewBase(f.Name(), nameobj.KindFunction),
		typeSpec:                  newTypeSpec,
		arguments:                 newArgs,
		defaultValues:             f.defaultValues,
		firstDefaultValueIndex:    f.firstDefaultValueIndex,
		hasFirstDefaultValueIndex: f.hasFirstDefaultValueIndex,
		isGenerator:               f.isGenerator,
		group:                     f.group,
		base:                      f.base,
		state:                     StateConcrete,
	}
	if f.hasBody {
		instance.body = cloneWithArguments(f.body, override)
		instance.hasBody = true
	}
	if f.group != nil {
		if err := f.group.AddInstance(instance); err != nil {
			return nil, err
		}
	}
	return instance, nil
}

// cloneWithArguments deep-clones body, rewriting every identifier that
// resolves to a key of override into a fresh identifier over the
// corresponding value, so a copied function body refers to its own
// argument instances rather than the original's.
func cloneWithArguments(body expr.Expression, override map[nameobj.NamedObject]nameobj.NamedObject) expr.Expression {
	return body.Clone(func(e expr.Expression) expr.Expression {
		id, ok := e.(*expr.Identifier)
		if !ok {
			return nil
		}
		obj, ok := id.NamedObject()
		if !ok {
			return nil
		}
		newObj, ok := override[obj]
		if !ok {
			return nil
		}
		newArg, ok := newObj.(*vars.Argument)
		if !ok {
			return nil
		}
		return expr.NewIdentifier(id.Scope(), id.ScopedName(), newArg)
	})
}
