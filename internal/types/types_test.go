package types_test

import (
	"testing"

	"github.com/NunaInc/nudl-go/internal/types"
	"github.com/go-quicktest/qt"
)

func TestBuiltinAncestry(t *testing.T) {
	base := types.NewBaseTypesStore()
	qt.Assert(t, qt.IsTrue(base.Numeric.IsAncestorOf(base.Int)))
	qt.Assert(t, qt.IsTrue(base.Any.IsAncestorOf(base.String)))
	qt.Assert(t, qt.IsFalse(base.String.IsAncestorOf(base.Int)))
	qt.Assert(t, qt.IsTrue(base.Int.IsAncestorOf(base.Int)))
}

func TestUnionBindRequiresTwoTypes(t *testing.T) {
	base := types.NewBaseTypesStore()
	_, err := base.Union.Bind([]types.BindArg{types.TypeArg(base.Int)})
	qt.Assert(t, qt.IsNotNil(err))

	union, err := base.Union.Bind([]types.BindArg{types.TypeArg(base.Int), types.TypeArg(base.String)})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(len(union.Parameters), 2))
}

func TestUnionNormalizesNullFirstAndDeduplicates(t *testing.T) {
	base := types.NewBaseTypesStore()
	union, err := base.Union.Bind([]types.BindArg{
		types.TypeArg(base.String),
		types.TypeArg(base.Null),
		types.TypeArg(base.Int),
		types.TypeArg(base.Int),
	})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(len(union.Parameters), 3))
	qt.Assert(t, qt.Equals(union.Parameters[0].TypeID, base.Null.TypeID))
}

func TestNullableBindWrapsOnce(t *testing.T) {
	base := types.NewBaseTypesStore()
	nullable, err := base.Nullable.Bind([]types.BindArg{types.TypeArg(base.String)})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(nullable.TypeID, base.Nullable.TypeID))
	qt.Assert(t, qt.Equals(len(nullable.Parameters), 2))

	rewrapped, err := base.Nullable.Bind([]types.BindArg{types.TypeArg(nullable)})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsTrue(rewrapped.IsEqual(nullable)))
}

func TestNullBindRejectsNullArgument(t *testing.T) {
	base := types.NewBaseTypesStore()
	_, err := base.Null.Bind([]types.BindArg{types.TypeArg(base.Null)})
	qt.Assert(t, qt.IsNotNil(err))
}

func TestDecimalBindValidatesPrecisionAndScale(t *testing.T) {
	base := types.NewBaseTypesStore()
	d, err := base.Decimal.Bind([]types.BindArg{types.IntArg(10), types.IntArg(2)})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(d.DecimalPrecision, 10))
	qt.Assert(t, qt.Equals(d.DecimalScale, 2))

	_, err = base.Decimal.Bind([]types.BindArg{types.IntArg(2), types.IntArg(10)})
	qt.Assert(t, qt.IsNotNil(err))
}

func TestTupleJoinFlattensParameters(t *testing.T) {
	base := types.NewBaseTypesStore()
	tuple, err := base.Tuple.Bind([]types.BindArg{types.TypeArg(base.Int), types.TypeArg(base.String)})
	qt.Assert(t, qt.IsNil(err))

	joined, err := base.TupleJoin.Bind([]types.BindArg{types.TypeArg(tuple), types.TypeArg(base.Bool)})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(len(joined.Parameters), 3))
	qt.Assert(t, qt.Equals(joined.TypeID, base.Tuple.TypeID))
}

func TestDatasetAggregateSynthesizesStruct(t *testing.T) {
	base := types.NewBaseTypesStore()

	countSpec, err := base.Tuple.Bind([]types.BindArg{types.TypeArg(base.Int)})
	qt.Assert(t, qt.IsNil(err))
	countSpec.ParameterNames = []string{"my_count"}

	sumSpec, err := base.Tuple.Bind([]types.BindArg{types.TypeArg(base.Int)})
	qt.Assert(t, qt.IsNil(err))
	sumSpec.ParameterNames = []string{"my_sum"}

	input, err := base.Tuple.Bind([]types.BindArg{types.TypeArg(base.Struct), types.TypeArg(countSpec), types.TypeArg(sumSpec)})
	qt.Assert(t, qt.IsNil(err))
	input.ParameterNames = []string{"", "count", "sum"}

	result, err := base.DatasetAggregate.Bind([]types.BindArg{types.TypeArg(input)})
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(result.TypeID, base.Dataset.TypeID))
	qt.Assert(t, qt.Equals(len(result.Parameters), 1))

	synthesized := result.Parameters[0]
	qt.Assert(t, qt.Equals(len(synthesized.Parameters), 2))
	qt.Assert(t, qt.DeepEquals(synthesized.ParameterNames, []string{"my_count", "my_sum"}))
}
