package scope_test

import (
	"testing"
	"time"

	"github.com/go-quicktest/qt"

	"github.com/NunaInc/nudl-go/internal/expr"
	"github.com/NunaInc/nudl-go/internal/funcs"
	"github.com/NunaInc/nudl-go/internal/names"
	"github.com/NunaInc/nudl-go/internal/scope"
	"github.com/NunaInc/nudl-go/internal/types"
	"github.com/NunaInc/nudl-go/internal/vars"
)

func newModule(t *testing.T, name string) (*scope.Module, *types.GlobalTypeStore) {
	t.Helper()
	global := types.NewGlobalTypeStore()
	scopeName, err := names.ParseScopeName(name)
	qt.Assert(t, qt.IsNil(err))
	m, err := scope.NewModule(scopeName, global)
	qt.Assert(t, qt.IsNil(err))
	return m, global
}

func TestNewModuleExposesModuleType(t *testing.T) {
	m, global := newModule(t, "mymod")
	qt.Assert(t, qt.IsTrue(m.TypeSpec().IsEqual(global.Base().Module)))
	qt.Assert(t, qt.Equals(m.ScopeName().Name(), "mymod"))
}

func TestModuleAddExpressionPreservesOrder(t *testing.T) {
	m, _ := newModule(t, "mymod")
	base := types.NewBaseTypesStore()
	a := expr.NewLiteral(nil, base.Int, int64(1), "1", base)
	b := expr.NewLiteral(nil, base.Int, int64(2), "2", base)
	m.AddExpression(a)
	m.AddExpression(b)
	qt.Assert(t, qt.DeepEquals(m.Expressions(), []expr.Expression{a, b}))
}

func TestModuleFunctionGroupIsCreatedOnceAndReused(t *testing.T) {
	m, _ := newModule(t, "mymod")
	g1, err := m.FunctionGroup("add")
	qt.Assert(t, qt.IsNil(err))
	g2, err := m.FunctionGroup("add")
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsTrue(g1 == g2))
}

func TestModuleFunctionGroupRejectsNameCollision(t *testing.T) {
	m, _ := newModule(t, "mymod")
	base := types.NewBaseTypesStore()
	qt.Assert(t, qt.IsNil(m.AddName("add", vars.NewVar("add", base.Int, nil))))
	_, err := m.FunctionGroup("add")
	qt.Assert(t, qt.IsNotNil(err))
}

func TestModuleImportRegistersChildStoreAndDependency(t *testing.T) {
	global := types.NewGlobalTypeStore()
	mainScope, err := names.ParseScopeName("main")
	qt.Assert(t, qt.IsNil(err))
	mainMod, err := scope.NewModule(mainScope, global)
	qt.Assert(t, qt.IsNil(err))

	libScope, err := names.ParseScopeName("lib")
	qt.Assert(t, qt.IsNil(err))
	libMod, err := scope.NewModule(libScope, global)
	qt.Assert(t, qt.IsNil(err))

	qt.Assert(t, qt.IsNil(mainMod.Import("l", libMod)))

	found, err := mainMod.FindChildStore(mustScope(t, "l"))
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsTrue(found == libMod))

	deps := mainMod.Dependencies()
	qt.Assert(t, qt.Equals(len(deps), 1))
	qt.Assert(t, qt.IsTrue(deps["lib"] == libMod))
}

func mustScope(t *testing.T, name string) names.ScopeName {
	t.Helper()
	s, err := names.ParseScopeName(name)
	qt.Assert(t, qt.IsNil(err))
	return s
}

func TestModuleMainFunctionAbsentByDefault(t *testing.T) {
	m, _ := newModule(t, "mymod")
	_, ok := m.MainFunction()
	qt.Assert(t, qt.IsFalse(ok))

	base := types.NewBaseTypesStore()
	fn, err := funcs.NewFunction("main", nil, base.Int, base)
	qt.Assert(t, qt.IsNil(err))
	m.SetMainFunction(fn)
	got, ok := m.MainFunction()
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.IsTrue(got == fn))
}

func TestModuleRecordsParseAndAnalysisDurations(t *testing.T) {
	m, _ := newModule(t, "mymod")
	_, ok := m.ParseDuration()
	qt.Assert(t, qt.IsFalse(ok))

	m.SetParseDuration(5 * time.Millisecond)
	d, ok := m.ParseDuration()
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(d, 5*time.Millisecond))

	m.SetAnalysisDuration(10 * time.Millisecond)
	d, ok = m.AnalysisDuration()
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(d, 10*time.Millisecond))
}
