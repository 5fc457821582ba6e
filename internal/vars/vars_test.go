package vars_test

import (
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/NunaInc/nudl-go/internal/types"
	"github.com/NunaInc/nudl-go/internal/vars"
)

type fakeExpr struct {
	result *types.TypeSpec
	err    error
}

func (f fakeExpr) NegotiateType(hint *types.TypeSpec) (*types.TypeSpec, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func TestVarAssignNarrowsUnionTypeToChosenAlternative(t *testing.T) {
	base := types.NewBaseTypesStore()
	union, err := base.Union.Bind([]types.BindArg{types.TypeArg(base.Int), types.TypeArg(base.String)})
	qt.Assert(t, qt.IsNil(err))

	v := vars.NewVar("x", union, nil)
	qt.Assert(t, qt.IsTrue(v.TypeSpec().IsEqual(union)))

	assigned, err := v.Assign(fakeExpr{result: base.String})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsNotNil(assigned))
	qt.Assert(t, qt.Equals(len(v.Assignments()), 1))
	qt.Assert(t, qt.IsTrue(v.TypeSpec().IsEqual(base.String)))
}

func TestVarAssignRejectsIncompatibleType(t *testing.T) {
	base := types.NewBaseTypesStore()
	v := vars.NewVar("x", base.String, nil)
	_, err := v.Assign(fakeExpr{result: base.Int})
	qt.Assert(t, qt.IsNotNil(err))
	qt.Assert(t, qt.Equals(len(v.FailedAssignments()), 1))
}

func TestFieldFullNameIncludesParentType(t *testing.T) {
	base := types.NewBaseTypesStore()
	field := vars.NewField("name", base.String, base.Struct, vars.NewVar("row", base.Struct, nil))
	qt.Assert(t, qt.Equals(field.Kind().String(), "Field"))
	qt.Assert(t, qt.IsTrue(len(field.FullName()) > 0))
}

func TestGetRootVarWalksThroughFields(t *testing.T) {
	base := types.NewBaseTypesStore()
	root := vars.NewVar("row", base.Struct, nil)
	field := vars.NewField("name", base.String, base.Struct, root)
	got := vars.GetRootVar(field)
	qt.Assert(t, qt.Equals(got.Kind().String(), "Variable"))
}
