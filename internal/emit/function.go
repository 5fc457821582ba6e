package emit

import (
	"fmt"
	"strings"

	"github.com/NunaInc/nudl-go/internal/expr"
	"github.com/NunaInc/nudl-go/internal/funcs"
	"github.com/NunaInc/nudl-go/internal/nudlerr"
	"github.com/NunaInc/nudl-go/internal/types"
)

// ensureFunctionEmitted emits fn's def statement the first time it is
// reached from a call site or lambda, per spec §4.9's "a set of seen
// functions... so each is emitted once" and python_converter.cc's
// Register/IsRegistered dedup pair. A function already marked Emitted by
// the analyzer (fn.State() == StateEmitted) or already seen this module is
// a no-op.
func ensureFunctionEmitted(fn *funcs.Function, st *State) error {
	if st.isFuncSeen(fn) {
		return nil
	}
	st.markFuncSeen(fn)
	if fn.State() == funcs.StateEmitted {
		return nil
	}
	return convertFunctionDef(fn, st)
}

// convertFunctionDefinitionStatement handles a FunctionDefinition node
// reached directly in the module's statement stream (as opposed to one
// reached transitively through a call site's DependentFunctions).
func convertFunctionDefinitionStatement(f *expr.FunctionDefinition, st *State) error {
	fn, ok := f.DefFunction().(*funcs.Function)
	if !ok {
		return nudlerr.New(nudlerr.Internal, "function definition holds an unexpected function type")
	}
	return ensureFunctionEmitted(fn, st)
}

// convertFunctionDef renders one concrete function as `def name(args) ->
// result:` followed by its indented body, per python_converter.cc's
// ConvertFunctionDefinition. An Abstract function (one never resolved to a
// concrete instance) has nothing to emit, per spec §4.7's "only a Concrete
// function is ever emitted".
func convertFunctionDef(fn *funcs.Function, st *State) error {
	if fn.State() != funcs.StateConcrete && fn.State() != funcs.StateEmitted {
		return nil
	}
	if fn.IsSkipConversion() {
		return nil
	}

	args := fn.Arguments()
	firstDefault, hasDefault := fn.FirstDefaultValueIndex()
	params := make([]string, len(args))
	for i, a := range args {
		typeName, imps, err := pythonTypeRef(a.TypeSpec())
		if err != nil {
			return err
		}
		st.importPackages(imps)
		param := fmt.Sprintf("%s: %s", pythonSafeName(a.Name(), a), typeName)
		if hasDefault && i >= firstDefault {
			if dv, ok := fn.DefaultValue(i); ok {
				value, err := ConvertValue(dv, st)
				if err != nil {
					return err
				}
				param = fmt.Sprintf("%s = %s", param, value)
			}
		}
		params[i] = param
	}

	resultRef := "None"
	if result := fn.ResultType(); result != nil {
		var err error
		var resultImps []string
		resultRef, resultImps, err = pythonTypeRef(result)
		st.importPackages(resultImps)
		if err != nil {
			return err
		}
		if fn.IsGenerator() {
			st.importPackage("collections.abc")
			resultRef = fmt.Sprintf("collections.abc.Iterable[%s]", resultRef)
		}
	}

	st.WriteLine("def %s(%s) -> %s:", objectPythonName(fn), strings.Join(params, ", "), resultRef)
	st.indentIn()
	body, hasBody := fn.Body()
	if !hasBody {
		st.WriteLine("pass")
	} else if body.Kind() == expr.KindBlock {
		if err := convertBlockStatement(body.(*expr.Block), st); err != nil {
			st.indentOut()
			return err
		}
	} else if err := ConvertStatement(body, st); err != nil {
		st.indentOut()
		return err
	}
	st.indentOut()
	if err := fn.MarkEmitted(); err != nil && fn.State() != funcs.StateEmitted {
		return err
	}
	return nil
}

// convertSchemaDefinitionStatement emits a Struct-id TypeSpec's
// @dataclasses.dataclass class, per python_converter.cc's
// ConvertStructType. Struct types have no separate TypeStruct class in
// this port; a struct's fields are its Parameters/ParameterNames, and its
// per-field NamedObject lookup goes through the shared MemberStore (see
// GetStructTypeName's grounding note in pytype.go).
func convertSchemaDefinitionStatement(s *expr.SchemaDefinition, st *State) error {
	st.recordSchemaDef(s.DefSchema())
	proto, err := s.DefSchema().DebugProto(st.cfg.ShortProto)
	if err != nil {
		return err
	}
	for _, line := range strings.Split(strings.TrimRight(proto, "\n"), "\n") {
		st.WriteLine("# %s", line)
	}
	return convertStructType(s.DefSchema(), st)
}

func convertStructType(schema *types.TypeSpec, st *State) error {
	if st.isStructSeen(schema) {
		return nil
	}
	st.markStructSeen(schema)
	st.importPackage("dataclasses")

	st.WriteLine("@dataclasses.dataclass")
	st.WriteLine("class %s:", structTypeName(schema))
	st.indentIn()
	if len(schema.Parameters) == 0 {
		st.WriteLine("pass")
	}
	for i, fieldType := range schema.Parameters {
		fieldName := ""
		if i < len(schema.ParameterNames) {
			fieldName = schema.ParameterNames[i]
		}
		fieldRef, imps, err := pythonTypeRef(fieldType)
		if err != nil {
			st.indentOut()
			return err
		}
		st.importPackages(imps)
		if factory, ok := defaultFieldFactory(fieldType); ok {
			st.WriteLine("%s: %s = dataclasses.field(default_factory=%s)",
				pythonSafeName(fieldName, nil), fieldRef, factory)
		} else {
			st.WriteLine("%s: %s", pythonSafeName(fieldName, nil), fieldRef)
		}
	}
	st.indentOut()
	return nil
}

// convertTypeDefinitionStatement emits a `type` alias as a plain Python
// assignment of the aliased type's own reference, per the source grammar's
// `type Name = OtherType` declaration having no dedicated Python construct
// beyond assigning the referenced type object itself.
func convertTypeDefinitionStatement(t *expr.TypeDefinition, st *State) error {
	defined := t.DefinedTypeSpec()
	if defined.TypeID == types.StructID {
		if err := convertStructType(defined, st); err != nil {
			return err
		}
	}
	ref, imps, err := pythonTypeRef(defined)
	if err != nil {
		return err
	}
	st.importPackages(imps)
	st.WriteLine("%s = %s", pythonSafeName(t.TypeName(), nil), ref)
	return nil
}

// ConvertMainFunction renders the separate entry-point file's call into
// the already-converted module, per python_converter.cc's
// ConvertMainFunction: `absl.app.run(lambda _: <module>.<fn>())` becomes
// a plain guarded call against the imported module (fn's own def already
// lives in the module's own file; the entry point only invokes it).
func ConvertMainFunction(fn *funcs.Function, moduleName string, st *State) error {
	st.WriteLine(`if __name__ == "__main__":`)
	st.indentIn()
	st.WriteLine("%s.%s()", moduleName, objectPythonName(fn))
	st.indentOut()
	return nil
}
