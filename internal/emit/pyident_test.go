package emit

import (
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/NunaInc/nudl-go/internal/funcs"
	"github.com/NunaInc/nudl-go/internal/nameobj"
	"github.com/NunaInc/nudl-go/internal/types"
	"github.com/NunaInc/nudl-go/internal/vars"
)

func TestPythonSafeNamePassesThroughOrdinaryName(t *testing.T) {
	qt.Assert(t, qt.Equals(pythonSafeName("compute_total", nil), "compute_total"))
}

func TestPythonSafeNameRenamesKeyword(t *testing.T) {
	qt.Assert(t, qt.Equals(pythonSafeName("class", nil), "class__nudl"))
}

func TestPythonSafeNameRenamesBuiltin(t *testing.T) {
	qt.Assert(t, qt.Equals(pythonSafeName("len", nil), "len__nudl"))
}

func TestPythonSafeNameRenamesDunderShapedName(t *testing.T) {
	qt.Assert(t, qt.Equals(pythonSafeName("__init__", nil), "__init____nudl"))
}

func TestPythonSafeNameFieldIsExemptFromBuiltinCollision(t *testing.T) {
	base := types.NewBaseTypesStore()
	structType := base.Int.Clone()
	field := vars.NewField("len", base.Int, structType, nil)
	qt.Assert(t, qt.Equals(pythonSafeName("len", field), "len"))
}

func TestPythonSafeNameSkipConversionFunctionUnchanged(t *testing.T) {
	base := types.NewBaseTypesStore()
	fn, err := funcs.NewFunction("class", nil, base.Int, base)
	qt.Assert(t, qt.IsNil(err))
	fn.SetSkipConversion(true)
	qt.Assert(t, qt.Equals(pythonSafeName("class", fn), "class"))
}

func TestPythonSafeNameRenamesDottedPathPerSegment(t *testing.T) {
	qt.Assert(t, qt.Equals(pythonSafeName("mod.len", nil), "mod.len__nudl"))
}

func TestIsPythonKeywordAndBuiltin(t *testing.T) {
	qt.Assert(t, qt.IsTrue(isPythonKeyword("import")))
	qt.Assert(t, qt.IsFalse(isPythonKeyword("compute")))
	qt.Assert(t, qt.IsTrue(isPythonBuiltin("zip")))
	qt.Assert(t, qt.IsTrue(isPythonBuiltin("os")))
	qt.Assert(t, qt.IsFalse(isPythonBuiltin("nudl")))
}

func TestIsPythonSpecialName(t *testing.T) {
	qt.Assert(t, qt.IsTrue(isPythonSpecialName("__name__")))
	qt.Assert(t, qt.IsFalse(isPythonSpecialName("__half")))
}

var _ nameobj.NamedObject = (*vars.Field)(nil)
