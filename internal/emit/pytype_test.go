package emit

import (
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/NunaInc/nudl-go/internal/types"
)

func TestPythonTypeRefBuiltin(t *testing.T) {
	base := types.NewBaseTypesStore()
	name, imps, err := pythonTypeRef(base.Int)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(name, "int"))
	qt.Assert(t, qt.HasLen(imps, 0))
}

func TestPythonTypeRefNeedsImport(t *testing.T) {
	base := types.NewBaseTypesStore()
	name, imps, err := pythonTypeRef(base.Decimal)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(name, "decimal.Decimal"))
	qt.Assert(t, qt.DeepEquals(imps, []string{"decimal"}))
}

func TestPythonTypeRefArraySubscriptsElementType(t *testing.T) {
	base := types.NewBaseTypesStore()
	arrOfInt, err := base.Array.Bind([]types.BindArg{types.TypeArg(base.Int)})
	qt.Assert(t, qt.IsNil(err))
	name, imps, err := pythonTypeRef(arrOfInt)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(name, "typing.List[int]"))
	qt.Assert(t, qt.DeepEquals(imps, []string{"typing"}))
}

func TestPythonTypeRefMapSubscriptsKeyAndValue(t *testing.T) {
	base := types.NewBaseTypesStore()
	mapOfStringToDate, err := base.Map.Bind([]types.BindArg{types.TypeArg(base.String), types.TypeArg(base.Date)})
	qt.Assert(t, qt.IsNil(err))
	name, imps, err := pythonTypeRef(mapOfStringToDate)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(name, "typing.Dict[str, datetime.date]"))
	qt.Assert(t, qt.DeepEquals(imps, []string{"typing", "datetime"}))
}

func TestPythonTypeRefNullableSubscriptsInnerOnly(t *testing.T) {
	base := types.NewBaseTypesStore()
	nullableInt, err := base.Nullable.Bind([]types.BindArg{types.TypeArg(base.Int)})
	qt.Assert(t, qt.IsNil(err))
	name, _, err := pythonTypeRef(nullableInt)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(name, "typing.Optional[int]"))
}

func TestDefaultFieldFactory(t *testing.T) {
	base := types.NewBaseTypesStore()
	name, ok := defaultFieldFactory(base.Array)
	qt.Assert(t, qt.IsTrue(ok))
	qt.Assert(t, qt.Equals(name, "list"))

	_, ok = defaultFieldFactory(base.Int)
	qt.Assert(t, qt.IsFalse(ok))
}

func TestStructTypeNamePrefersLocalName(t *testing.T) {
	base := types.NewBaseTypesStore()
	structType := base.Int.Clone()
	structType.TypeID = types.StructID
	structType.LocalName = "Point"
	qt.Assert(t, qt.Equals(structTypeName(structType), "Point"))
}
