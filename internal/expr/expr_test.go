package expr_test

import (
	"testing"

	"github.com/cockroachdb/apd/v3"
	"github.com/go-quicktest/qt"

	"github.com/NunaInc/nudl-go/internal/expr"
	"github.com/NunaInc/nudl-go/internal/nameobj"
	"github.com/NunaInc/nudl-go/internal/names"
	"github.com/NunaInc/nudl-go/internal/nudlerr"
	"github.com/NunaInc/nudl-go/internal/types"
)

// fakeObject is a minimal nameobj.NamedObject/typedNamedObject stand-in for
// tests that don't need a real vars.Var/funcs.Function.
type fakeObject struct {
	name     string
	kind     nameobj.Kind
	typeSpec *types.TypeSpec
}

func (f *fakeObject) Name() string                         { return f.name }
func (f *fakeObject) Kind() nameobj.Kind                    { return f.kind }
func (f *fakeObject) NameStore() (nameobj.NameStore, bool)  { return nil, false }
func (f *fakeObject) ParentStore() (nameobj.NameStore, bool) { return nil, false }
func (f *fakeObject) FullName() string                      { return f.name }
func (f *fakeObject) TypeSpec() *types.TypeSpec             { return f.typeSpec }

func (f *fakeObject) EnsureGenerator() error { return nil }

type failingGenerator struct{ fakeObject }

func (f *failingGenerator) EnsureGenerator() error {
	return nudlerr.New(nudlerr.InvalidArgument, "yield requires a Generator function, found %s", f.name)
}

func TestLiteralNarrowsIntToHintWidth(t *testing.T) {
	base := types.NewBaseTypesStore()
	lit := expr.NewLiteral(nil, base.Int, int64(12), "12", base)
	got, err := lit.NegotiateType(base.Int8)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(got.TypeID, base.Int8.TypeID))

	// Cached: a second call with a different hint must return the same
	// already-negotiated type.
	got2, err := lit.NegotiateType(base.Int16)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(got2.TypeID, base.Int8.TypeID))
}

func TestLiteralLeavesOutOfRangeValueUnnarrowed(t *testing.T) {
	base := types.NewBaseTypesStore()
	lit := expr.NewLiteral(nil, base.Int, int64(1000), "1000", base)
	got, err := lit.NegotiateType(base.Int8)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(got.TypeID, base.Int.TypeID))
}

func TestLiteralDecimalCheckedAgainstBoundPrecision(t *testing.T) {
	base := types.NewBaseTypesStore()
	d, err := base.Decimal.Bind([]types.BindArg{types.IntArg(3), types.IntArg(1)})
	qt.Assert(t, qt.IsNil(err))

	ok, _, err := apd.NewFromString("12.5")
	qt.Assert(t, qt.IsNil(err))
	lit := expr.NewLiteral(nil, d, ok, "12.5", nil)
	_, err = lit.NegotiateType(nil)
	qt.Assert(t, qt.IsNil(err))

	tooBig, _, err := apd.NewFromString("1234.5")
	qt.Assert(t, qt.IsNil(err))
	overflowing := expr.NewLiteral(nil, d, tooBig, "1234.5", nil)
	_, err = overflowing.NegotiateType(nil)
	qt.Assert(t, qt.IsNotNil(err))
}

func TestIdentifierReturnsObjectType(t *testing.T) {
	base := types.NewBaseTypesStore()
	obj := &fakeObject{name: "x", kind: nameobj.KindVariable, typeSpec: base.String}
	id := expr.NewIdentifier(nil, names.ScopedName{Name: "x"}, obj)
	got, err := id.NegotiateType(nil)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsTrue(got.IsEqual(base.String)))
}

func TestArrayDefinitionUnifiesToCommonAncestor(t *testing.T) {
	base := types.NewBaseTypesStore()
	elems := []expr.Expression{
		expr.NewLiteral(nil, base.Int, int64(1), "1", base),
		expr.NewLiteral(nil, base.Int, int64(2), "2", base),
	}
	arr := expr.NewArrayDefinition(nil, base, elems)
	got, err := arr.NegotiateType(nil)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(got.TypeID, base.Array.TypeID))
	qt.Assert(t, qt.Equals(len(got.Parameters), 1))
	qt.Assert(t, qt.Equals(got.Parameters[0].TypeID, base.Int.TypeID))
}

func TestEmptyStructResolvesAgainstArrayHint(t *testing.T) {
	base := types.NewBaseTypesStore()
	arrayOfInt, err := base.Array.Bind([]types.BindArg{types.TypeArg(base.Int)})
	qt.Assert(t, qt.IsNil(err))

	empty := expr.NewEmptyStruct(nil, base)
	got, err := empty.NegotiateType(arrayOfInt)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsTrue(got.IsEqual(arrayOfInt)))
}

func TestEmptyStructDefaultsToTupleWithoutHint(t *testing.T) {
	base := types.NewBaseTypesStore()
	empty := expr.NewEmptyStruct(nil, base)
	got, err := empty.NegotiateType(nil)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(got.TypeID, base.Tuple.TypeID))
}

func TestIfReturnsCommonAncestorAndTracksExit(t *testing.T) {
	base := types.NewBaseTypesStore()
	cond := expr.NewLiteral(nil, base.Bool, true, "true", nil)
	thenBranch := expr.NewFunctionResult(nil, &fakeObject{name: "f", kind: nameobj.KindFunction},
		expr.ResultReturn, expr.NewLiteral(nil, base.Int, int64(1), "1", base))
	elseBranch := expr.NewFunctionResult(nil, &fakeObject{name: "f", kind: nameobj.KindFunction},
		expr.ResultReturn, expr.NewLiteral(nil, base.Int, int64(2), "2", base))

	ifExpr := expr.NewIf(nil, base, []expr.Expression{cond}, []expr.Expression{thenBranch, elseBranch})
	got, err := ifExpr.NegotiateType(nil)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(got.TypeID, base.Int.TypeID))
	qt.Assert(t, qt.IsTrue(ifExpr.ContainsFunctionExit()))
}

func TestIfWithoutElseNeverContainsFunctionExit(t *testing.T) {
	base := types.NewBaseTypesStore()
	cond := expr.NewLiteral(nil, base.Bool, true, "true", nil)
	thenBranch := expr.NewFunctionResult(nil, &fakeObject{name: "f", kind: nameobj.KindFunction},
		expr.ResultReturn, expr.NewLiteral(nil, base.Int, int64(1), "1", base))

	ifExpr := expr.NewIf(nil, base, []expr.Expression{cond}, []expr.Expression{thenBranch})
	_, err := ifExpr.NegotiateType(nil)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsFalse(ifExpr.ContainsFunctionExit()))
}

func TestBlockTypeIsLastExpressionType(t *testing.T) {
	base := types.NewBaseTypesStore()
	block := expr.NewBlock(nil, []expr.Expression{
		expr.NewLiteral(nil, base.Int, int64(1), "1", base),
		expr.NewLiteral(nil, base.String, "s", `"s"`, nil),
	})
	got, err := block.NegotiateType(nil)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsTrue(got.IsEqual(base.String)))
}

func TestIndexOnArrayYieldsElementType(t *testing.T) {
	base := types.NewBaseTypesStore()
	arrayOfInt, err := base.Array.Bind([]types.BindArg{types.TypeArg(base.Int)})
	qt.Assert(t, qt.IsNil(err))
	obj := expr.NewIdentifier(nil, names.ScopedName{Name: "a"}, &fakeObject{name: "a", typeSpec: arrayOfInt})
	idx := expr.NewIndex(nil, base, obj, expr.NewLiteral(nil, base.Int, int64(0), "0", base))

	got, err := idx.NegotiateType(nil)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsTrue(got.IsEqual(base.Int)))
}

func TestTupleIndexYieldsSlotType(t *testing.T) {
	base := types.NewBaseTypesStore()
	tuple, err := base.Tuple.Bind([]types.BindArg{types.TypeArg(base.Int), types.TypeArg(base.String)})
	qt.Assert(t, qt.IsNil(err))
	obj := expr.NewIdentifier(nil, names.ScopedName{Name: "t"}, &fakeObject{name: "t", typeSpec: tuple})
	idx := expr.NewTupleIndex(nil, base, obj, expr.NewLiteral(nil, base.Int, int64(1), "1", base), 1)

	got, err := idx.NegotiateType(nil)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsTrue(got.IsEqual(base.String)))
}

func TestDotAccessResolvesToObjectType(t *testing.T) {
	base := types.NewBaseTypesStore()
	left := expr.NewIdentifier(nil, names.ScopedName{Name: "row"}, &fakeObject{name: "row", typeSpec: base.Struct})
	field := &fakeObject{name: "name", typeSpec: base.String}
	scopeName, err := names.ParseScopeName("name")
	qt.Assert(t, qt.IsNil(err))
	access := expr.NewDotAccess(nil, left, scopeName, field)

	got, err := access.NegotiateType(nil)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsTrue(got.IsEqual(base.String)))
}

type fakeBinding struct{ result *types.TypeSpec }

func (f fakeBinding) ResultType() *types.TypeSpec { return f.result }
func (f fakeBinding) DebugString() string         { return "fakeBinding" }

func TestFunctionCallReturnsBindingResultType(t *testing.T) {
	base := types.NewBaseTypesStore()
	call := expr.NewFunctionCall(nil, fakeBinding{result: base.Bool}, nil, nil, false)
	got, err := call.NegotiateType(nil)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsTrue(got.IsEqual(base.Bool)))
}

func TestFunctionResultYieldRejectsNonGenerator(t *testing.T) {
	base := types.NewBaseTypesStore()
	parent := &failingGenerator{fakeObject{name: "f", kind: nameobj.KindFunction}}
	yield := expr.NewFunctionResult(nil, parent, expr.ResultYield, expr.NewLiteral(nil, base.Int, int64(1), "1", base))
	_, err := yield.NegotiateType(nil)
	qt.Assert(t, qt.IsNotNil(err))
}

func TestFunctionResultContainsFunctionExit(t *testing.T) {
	base := types.NewBaseTypesStore()
	parent := &fakeObject{name: "f", kind: nameobj.KindFunction}
	ret := expr.NewFunctionResult(nil, parent, expr.ResultReturn, expr.NewLiteral(nil, base.Int, int64(1), "1", base))
	qt.Assert(t, qt.IsTrue(ret.ContainsFunctionExit()))
}

func TestCloneProducesIndependentValueWithSameDebugString(t *testing.T) {
	base := types.NewBaseTypesStore()
	arr := expr.NewArrayDefinition(nil, base, []expr.Expression{
		expr.NewLiteral(nil, base.Int, int64(1), "1", base),
	})
	clone := arr.Clone(nil)
	qt.Assert(t, qt.Equals(clone.DebugString(), arr.DebugString()))
	qt.Assert(t, qt.IsTrue(clone != arr))
}
