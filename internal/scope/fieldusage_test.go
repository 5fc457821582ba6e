package scope_test

import (
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/NunaInc/nudl-go/internal/expr"
	"github.com/NunaInc/nudl-go/internal/funcs"
	"github.com/NunaInc/nudl-go/internal/nameobj"
	"github.com/NunaInc/nudl-go/internal/names"
	"github.com/NunaInc/nudl-go/internal/scope"
	"github.com/NunaInc/nudl-go/internal/types"
	"github.com/NunaInc/nudl-go/internal/vars"
)

func TestFieldUsageVisitorRecordsDirectFieldAccess(t *testing.T) {
	base := types.NewBaseTypesStore()
	root := vars.NewVar("row", base.Struct, nil)
	field := vars.NewField("name", base.String, base.Struct, root)

	scopedName, err := names.ParseScopedName("name")
	qt.Assert(t, qt.IsNil(err))
	ident := expr.NewIdentifier(nil, scopedName, field)

	v := scope.NewFieldUsageVisitor()
	ident.VisitExpressions(v)

	used, ok := v.UsedFields(base.Struct)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.DeepEquals(used, []string{"name"}))
}

func TestFieldUsageVisitorWalksNestedFieldParents(t *testing.T) {
	base := types.NewBaseTypesStore()
	innerStruct := base.Struct.Clone()
	outerStruct := base.Struct.Clone()

	root := vars.NewVar("row", outerStruct, nil)
	outerField := vars.NewField("inner", innerStruct, outerStruct, root)
	innerField := vars.NewField("name", base.String, innerStruct, outerField)

	scopedName, err := names.ParseScopedName("name")
	qt.Assert(t, qt.IsNil(err))
	ident := expr.NewIdentifier(nil, scopedName, innerField)

	v := scope.NewFieldUsageVisitor()
	ident.VisitExpressions(v)

	usedInner, ok := v.UsedFields(innerStruct)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.DeepEquals(usedInner, []string{"name"}))

	usedOuter, ok := v.UsedFields(outerStruct)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.DeepEquals(usedOuter, []string{"inner"}))
}

func TestFieldUsageVisitorDescendsIntoCalledFunctionBody(t *testing.T) {
	base := types.NewBaseTypesStore()
	root := vars.NewVar("row", base.Struct, nil)
	field := vars.NewField("name", base.String, base.Struct, root)

	innerScopedName, err := names.ParseScopedName("name")
	qt.Assert(t, qt.IsNil(err))
	innerIdent := expr.NewIdentifier(nil, innerScopedName, field)

	fn, err := funcs.NewFunction("reader", nil, base.String, base)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsNil(fn.SetBody(innerIdent)))

	binding := &fakeBinding{result: base.String}
	call := expr.NewFunctionCall(nil, binding, nil, nil, false)
	call.SetDependentFunctions(map[nameobj.NamedObject]struct{}{fn: {}})

	v := scope.NewFieldUsageVisitor()
	call.VisitExpressions(v)

	used, ok := v.UsedFields(base.Struct)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.DeepEquals(used, []string{"name"}))
}

type fakeBinding struct {
	result *types.TypeSpec
}

func (f *fakeBinding) ResultType() *types.TypeSpec { return f.result }
func (f *fakeBinding) DebugString() string         { return "fakeBinding" }
