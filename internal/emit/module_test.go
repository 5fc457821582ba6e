package emit_test

import (
	"strings"
	"testing"

	"github.com/go-quicktest/qt"

	"github.com/NunaInc/nudl-go/internal/emit"
	"github.com/NunaInc/nudl-go/internal/expr"
	"github.com/NunaInc/nudl-go/internal/funcs"
	"github.com/NunaInc/nudl-go/internal/names"
	"github.com/NunaInc/nudl-go/internal/scope"
	"github.com/NunaInc/nudl-go/internal/types"
	"github.com/NunaInc/nudl-go/internal/vars"
)

func newTestModule(t *testing.T, name string) (*scope.Module, *types.BaseTypesStore) {
	t.Helper()
	base := types.NewBaseTypesStore()
	global := types.NewGlobalTypeStore()
	scopeName, err := names.ParseScopeName(name)
	qt.Assert(t, qt.IsNil(err))
	m, err := scope.NewModule(scopeName, global)
	qt.Assert(t, qt.IsNil(err))
	return m, base
}

func TestConvertModuleRendersAssignmentAndImports(t *testing.T) {
	m, base := newTestModule(t, "mymod")

	x := vars.NewVar("x", base.Int, m)
	qt.Assert(t, qt.IsNil(m.AddName("x", x)))
	scopedName, err := names.ParseScopedName("x")
	qt.Assert(t, qt.IsNil(err))
	lit := expr.NewLiteral(nil, base.Int, int64(1), "1", base)
	assign := expr.NewAssignment(nil, scopedName, x, lit, true, true)
	m.AddExpression(assign)

	result, err := emit.ConvertModule(m, nil)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(len(result.Files), 1))
	qt.Assert(t, qt.Equals(result.Files[0].Name, "mymod.py"))
	qt.Assert(t, qt.IsTrue(strings.Contains(result.Files[0].Content, "import nudl")))
	qt.Assert(t, qt.IsTrue(strings.Contains(result.Files[0].Content, "from nudl_builtins import *")))
	qt.Assert(t, qt.IsTrue(strings.Contains(result.Files[0].Content, "x: int = 1")))
	qt.Assert(t, qt.IsTrue(strings.Contains(result.Files[0].Content, "Module Name: mymod")))
}

func TestConvertModuleWithMainFunctionProducesEntryPointFile(t *testing.T) {
	m, base := newTestModule(t, "mymod")

	fn, err := funcs.NewFunction("main", nil, base.Int, base)
	qt.Assert(t, qt.IsNil(err))
	ret := expr.NewFunctionResult(nil, fn, expr.ResultReturn, expr.NewLiteral(nil, base.Int, int64(0), "0", base))
	qt.Assert(t, qt.IsNil(fn.SetBody(ret)))
	m.SetMainFunction(fn)

	result, err := emit.ConvertModule(m, nil)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(len(result.Files), 2))

	var mainFile, modFile *emit.ConvertedFile
	for i := range result.Files {
		switch result.Files[i].Name {
		case "mymod_main.py":
			mainFile = &result.Files[i]
		case "mymod.py":
			modFile = &result.Files[i]
		}
	}
	qt.Assert(t, qt.IsNotNil(mainFile))
	qt.Assert(t, qt.IsNotNil(modFile))
	qt.Assert(t, qt.IsTrue(strings.Contains(mainFile.Content, `if __name__ == "__main__":`)))
	qt.Assert(t, qt.IsTrue(strings.Contains(mainFile.Content, "mymod.main()")))
	qt.Assert(t, qt.IsTrue(strings.Contains(modFile.Content, "def main(")))
}

func TestConvertModuleRendersSchemaAndOpenAPISideFile(t *testing.T) {
	m, base := newTestModule(t, "mymod")

	structType, err := base.Struct.Build([]types.BindArg{types.TypeArg(base.Int), types.TypeArg(base.String)})
	qt.Assert(t, qt.IsNil(err))
	structType.ParameterNames = []string{"count", "label"}
	m.AddExpression(expr.NewSchemaDefinition(nil, structType, base.Null))

	result, err := emit.ConvertModule(m, nil)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.Equals(len(result.Files), 2))

	var modFile, schemaFile *emit.ConvertedFile
	for i := range result.Files {
		switch result.Files[i].Name {
		case "mymod.py":
			modFile = &result.Files[i]
		case "mymod.schema.json":
			schemaFile = &result.Files[i]
		}
	}
	qt.Assert(t, qt.IsNotNil(modFile))
	qt.Assert(t, qt.IsNotNil(schemaFile))
	qt.Assert(t, qt.IsTrue(strings.Contains(modFile.Content, "@dataclasses.dataclass")))
	qt.Assert(t, qt.IsTrue(strings.Contains(modFile.Content, "# type_id:")))
	qt.Assert(t, qt.IsTrue(strings.Contains(schemaFile.Content, `"count"`)))
	qt.Assert(t, qt.IsTrue(strings.Contains(schemaFile.Content, `"label"`)))
}

func TestConvertModuleSkipsBuiltinsSelfImport(t *testing.T) {
	m, _ := newTestModule(t, "nudl_builtins")
	result, err := emit.ConvertModule(m, nil)
	qt.Assert(t, qt.IsNil(err))
	qt.Assert(t, qt.IsFalse(strings.Contains(result.Files[0].Content, "from nudl_builtins import *")))
}
