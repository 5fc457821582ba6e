package funcs_test

import (
	"testing"

	"github.com/cockroachdb/apd/v3"
	"github.com/go-quicktest/qt"

	"github.com/NunaInc/nudl-go/internal/expr"
	"github.com/NunaInc/nudl-go/internal/funcs"
	"github.com/NunaInc/nudl-go/internal/types"
	"github.com/NunaInc/nudl-go/internal/vars"
)

func TestNewFunctionIsConcreteWhenFullyBound(t *testing.T) {
	base := types.NewBaseTypesStore()
	argA := vars.NewArgument("a", base.Int, nil)
	argB := vars.NewArgument("b", base.Int, nil)

	fn, err := funcs.NewFunction("add", []*vars.Argument{argA, argB}, base.Int, base)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(fn.State(), funcs.StateConcrete))
	qt.Assert(t, qt.IsTrue(fn.ResultType().IsEqual(base.Int)))
}

func TestNewFunctionIsAbstractWithLocalName(t *testing.T) {
	base := types.NewBaseTypesStore()
	tParam := base.Numeric.Clone()
	tParam.LocalName = "T"

	argA := vars.NewArgument("a", tParam, nil)
	argB := vars.NewArgument("b", tParam, nil)

	fn, err := funcs.NewFunction("add", []*vars.Argument{argA, argB}, tParam, base)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(fn.State(), funcs.StateAbstract))
}

func TestResolveCallInstantiatesAbstractFunction(t *testing.T) {
	base := types.NewBaseTypesStore()
	tParam := base.Numeric.Clone()
	tParam.LocalName = "T"

	argA := vars.NewArgument("a", tParam, nil)
	argB := vars.NewArgument("b", tParam, nil)
	fn, err := funcs.NewFunction("add", []*vars.Argument{argA, argB}, tParam, base)
	qt.Assert(t, qt.IsNil(err))

	group := funcs.NewFunctionGroup("add")
	qt.Assert(t, qt.IsNil(group.AddCandidate(fn)))

	litA := expr.NewLiteral(nil, base.Int, int64(1), "1", base)
	litB := expr.NewLiteral(nil, base.Int, int64(2), "2", base)

	binding, err := funcs.ResolveCall(group, "add", []expr.Expression{litA, litB}, nil)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsTrue(binding.ResultType().IsEqual(base.Int)))
	qt.Assert(t, qt.Equals(binding.Function().State(), funcs.StateConcrete))
	qt.Assert(t, qt.IsTrue(binding.Function() != fn))
	qt.Assert(t, qt.Equals(len(group.Instances()), 1))
}

func TestResolveCallRejectsIncompatibleLocalNameBinding(t *testing.T) {
	base := types.NewBaseTypesStore()
	tParam := base.Numeric.Clone()
	tParam.LocalName = "T"

	argA := vars.NewArgument("a", tParam, nil)
	argB := vars.NewArgument("b", tParam, nil)
	fn, err := funcs.NewFunction("add", []*vars.Argument{argA, argB}, tParam, base)
	qt.Assert(t, qt.IsNil(err))

	group := funcs.NewFunctionGroup("add")
	qt.Assert(t, qt.IsNil(group.AddCandidate(fn)))

	decimalType, err := base.Decimal.Bind([]types.BindArg{types.IntArg(10), types.IntArg(2)})
	qt.Assert(t, qt.IsNil(err))
	decimalVal, _, err := apd.NewFromString("1.50")
	qt.Assert(t, qt.IsNil(err))

	litA := expr.NewLiteral(nil, base.Int, int64(1), "1", base)
	litB := expr.NewLiteral(nil, decimalType, decimalVal, "1.50", nil)

	_, err = funcs.ResolveCall(group, "add", []expr.Expression{litA, litB}, nil)
	qt.Assert(t, qt.IsNotNil(err))
}

func TestResolveCallRejectsMissingRequiredArgument(t *testing.T) {
	base := types.NewBaseTypesStore()
	argA := vars.NewArgument("a", base.Int, nil)
	argB := vars.NewArgument("b", base.Int, nil)
	fn, err := funcs.NewFunction("add", []*vars.Argument{argA, argB}, base.Int, base)
	qt.Assert(t, qt.IsNil(err))

	group := funcs.NewFunctionGroup("add")
	qt.Assert(t, qt.IsNil(group.AddCandidate(fn)))

	litA := expr.NewLiteral(nil, base.Int, int64(1), "1", base)
	_, err = funcs.ResolveCall(group, "add", []expr.Expression{litA}, nil)
	qt.Assert(t, qt.IsNotNil(err))
}

func TestResolveCallFallsBackToDefaultValue(t *testing.T) {
	base := types.NewBaseTypesStore()
	argA := vars.NewArgument("a", base.Int, nil)
	argB := vars.NewArgument("b", base.Int, nil)
	fn, err := funcs.NewFunction("f", []*vars.Argument{argA, argB}, base.Int, base)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(fn.State(), funcs.StateConcrete))

	defaultVal := expr.NewLiteral(nil, base.Int, int64(5), "5", base)
	qt.Assert(t, qt.IsNil(fn.SetDefaultValue(1, defaultVal)))
	qt.Assert(t, qt.IsNil(fn.FinalizeDefaultValues()))
	idx, ok := fn.FirstDefaultValueIndex()
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(idx, 1))

	group := funcs.NewFunctionGroup("f")
	qt.Assert(t, qt.IsNil(group.AddCandidate(fn)))

	litA := expr.NewLiteral(nil, base.Int, int64(1), "1", base)
	binding, err := funcs.ResolveCall(group, "f", []expr.Expression{litA}, nil)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(len(binding.Arguments()), 2))
	qt.Assert(t, qt.IsTrue(binding.Arguments()[1].IsDefault))
}

func TestResolveCallAcceptsKeywordArguments(t *testing.T) {
	base := types.NewBaseTypesStore()
	argA := vars.NewArgument("a", base.Int, nil)
	argB := vars.NewArgument("b", base.String, nil)
	fn, err := funcs.NewFunction("f", []*vars.Argument{argA, argB}, base.Bool, base)
	qt.Assert(t, qt.IsNil(err))

	group := funcs.NewFunctionGroup("f")
	qt.Assert(t, qt.IsNil(group.AddCandidate(fn)))

	litA := expr.NewLiteral(nil, base.Int, int64(1), "1", base)
	litB := expr.NewLiteral(nil, base.String, "s", `"s"`, nil)

	binding, err := funcs.ResolveCall(group, "f", nil, map[string]expr.Expression{"b": litB, "a": litA})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsTrue(binding.ResultType().IsEqual(base.Bool)))
}

func TestFunctionSkipConversionDefaultsFalse(t *testing.T) {
	base := types.NewBaseTypesStore()
	fn, err := funcs.NewFunction("f", nil, base.Int, base)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsFalse(fn.IsSkipConversion()))
	fn.SetSkipConversion(true)
	qt.Assert(t, qt.IsTrue(fn.IsSkipConversion()))
}

func TestFunctionEnsureGeneratorRejectsNonGeneratorResult(t *testing.T) {
	base := types.NewBaseTypesStore()
	fn, err := funcs.NewFunction("f", nil, base.Int, base)
	qt.Assert(t, qt.IsNil(err))
	err = fn.EnsureGenerator()
	qt.Assert(t, qt.IsNotNil(err))
}

func TestFunctionEnsureGeneratorAcceptsGeneratorResult(t *testing.T) {
	base := types.NewBaseTypesStore()
	genOfInt, err := base.Generator.Bind([]types.BindArg{types.TypeArg(base.Int)})
	qt.Assert(t, qt.IsNil(err))

	fn, err := funcs.NewFunction("gen", nil, genOfInt, base)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsNil(fn.EnsureGenerator()))
	qt.Assert(t, qt.IsTrue(fn.IsGenerator()))
}

func TestFunctionSetBodyIsOnlyAllowedOnce(t *testing.T) {
	base := types.NewBaseTypesStore()
	fn, err := funcs.NewFunction("f", nil, base.Int, base)
	qt.Assert(t, qt.IsNil(err))

	body := expr.NewLiteral(nil, base.Int, int64(1), "1", base)
	qt.Assert(t, qt.IsNil(fn.SetBody(body)))
	qt.Assert(t, qt.IsNotNil(fn.SetBody(body)))
}

func TestFunctionMarkEmittedRequiresConcreteState(t *testing.T) {
	base := types.NewBaseTypesStore()
	tParam := base.Numeric.Clone()
	tParam.LocalName = "T"
	fn, err := funcs.NewFunction("id", []*vars.Argument{vars.NewArgument("a", tParam, nil)}, tParam, base)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(fn.State(), funcs.StateAbstract))
	qt.Assert(t, qt.IsNotNil(fn.MarkEmitted()))
}
