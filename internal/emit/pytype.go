package emit

import (
	"strings"

	"github.com/NunaInc/nudl-go/internal/nudlerr"
	"github.com/NunaInc/nudl-go/internal/types"
)

// pythonType names a Python spelling for a built-in type-id, plus the
// import it requires (empty for the handful that need none).
type pythonType struct {
	name   string
	import_ string
}

// pythonTypeNames is copied from python_converter.cc's PythonTypeName
// table: every built-in type-id's Python spelling and owning import.
// StructID has no entry here; struct types route through structTypeName
// instead, same as the original's AddTypeName special-casing STRUCT_ID.
var pythonTypeNames = map[types.ID]pythonType{
	types.AnyID:          {"typing.Any", "typing"},
	types.NullID:         {"None", ""},
	types.NumericID:      {"nudl.Numeric", "nudl"},
	types.IntID:          {"int", ""},
	types.Int8ID:         {"int", ""},
	types.Int16ID:        {"int", ""},
	types.Int32ID:        {"int", ""},
	types.UIntID:         {"int", ""},
	types.UInt8ID:        {"int", ""},
	types.UInt16ID:       {"int", ""},
	types.UInt32ID:       {"int", ""},
	types.StringID:       {"str", ""},
	types.BytesID:        {"bytes", ""},
	types.BoolID:         {"bool", ""},
	types.Float32ID:      {"float", ""},
	types.Float64ID:      {"float", ""},
	types.DateID:         {"datetime.date", "datetime"},
	types.DateTimeID:     {"datetime.datetime", "datetime"},
	types.TimeIntervalID: {"datetime.timedelta", "datetime"},
	types.TimestampID:    {"float", ""},
	types.DecimalID:      {"decimal.Decimal", "decimal"},
	types.IterableID:     {"collections.abc.Iterable", "collections.abc"},
	types.ArrayID:        {"typing.List", "typing"},
	types.TupleID:        {"typing.Tuple", "typing"},
	types.SetID:          {"typing.Set", "typing"},
	types.MapID:          {"typing.Dict", "typing"},
	types.FunctionID:     {"collections.abc.Callable", "collections.abc"},
	types.UnionID:        {"typing.Union", "typing"},
	types.NullableID:     {"typing.Optional", "typing"},
	types.DatasetID:      {"nudl.dataset.DatasetStep", "nudl.dataset"},
	types.TypeID_:        {"type", ""},
	types.ModuleID:       {"types.ModuleType", "types"},
	types.IntegralID:     {"int", ""},
	types.ContainerID:    {"collections.abc.Collection", "collections.abc"},
	types.GeneratorID:    {"collections.abc.Iterable", "collections.abc"},
}

// isExternalType reports whether typeSpec was declared outside of
// currentModule, mirroring python_converter.cc's IsExternalType.
func isExternalType(typeSpec *types.TypeSpec, currentModule string) bool {
	return typeSpec.DefinitionScope != nil &&
		!typeSpec.DefinitionScope.Empty() &&
		typeSpec.DefinitionScope.Name() != currentModule
}

// structTypeName renders a Struct-id TypeSpec's Python class name,
// preferring LocalName over Name per spec's local-name unification and
// python_converter.cc's GetStructTypeName (object parameter retained so a
// future externally-qualified-name pass can key off it the same way the
// original keys PythonSafeName off the type_spec itself).
func structTypeName(typeSpec *types.TypeSpec) string {
	name := typeSpec.Name()
	if typeSpec.LocalName != "" {
		name = typeSpec.LocalName
	}
	return pythonSafeName(name, nil)
}

// pythonTypeRef renders typeSpec as a Python type reference plus the
// imports it requires, per python_converter.cc's AddTypeName/
// PythonTypeName. Struct types render as their own class name; every
// other recognized type-id looks up pythonTypeNames, then — for the
// parameterized generics — recurses into Parameters and renders a `[...]`
// subscript the same way AddTypeName walks type_spec->parameters() for
// List/Dict/Set/Union/Optional/Function rather than emitting the bare
// alias. An unrecognized type-id is an Unimplemented error, mirroring the
// original's "Don't know how to convert" UnimplementedError.
func pythonTypeRef(typeSpec *types.TypeSpec) (string, []string, error) {
	if typeSpec.TypeID == types.StructID {
		return structTypeName(typeSpec), nil, nil
	}
	pt, ok := pythonTypeNames[typeSpec.TypeID]
	if !ok {
		return "", nil, nudlerr.New(nudlerr.Unimplemented, "don't know how to convert: %s", typeSpec.FullName())
	}
	imports := []string{}
	if pt.import_ != "" {
		imports = append(imports, pt.import_)
	}

	subscript, subImports, err := pythonTypeSubscript(typeSpec)
	if err != nil {
		return "", nil, err
	}
	imports = append(imports, subImports...)
	if subscript == "" {
		return pt.name, imports, nil
	}
	return pt.name + "[" + subscript + "]", imports, nil
}

// pythonTypeSubscript renders the `[...]` parameter list for a
// parameterized generic, empty for every type-id with no Python generic
// subscript (the scalars, and every type-id pythonTypeRef already renders
// bare). Nullable's Parameters are [nullType, inner]; only inner is
// subscripted, since `typing.Optional[X]` already spells the nullability
// `typing.Optional` itself names. Function's Parameters are
// [arg1,...,argN, result] per TypeSpec.ResultType; Callable's subscript is
// `[[arg1,...,argN], result]`.
func pythonTypeSubscript(typeSpec *types.TypeSpec) (string, []string, error) {
	var params []*types.TypeSpec
	switch typeSpec.TypeID {
	case types.ArrayID, types.SetID, types.IterableID, types.ContainerID, types.GeneratorID, types.TupleID, types.UnionID, types.MapID:
		params = typeSpec.Parameters
	case types.NullableID:
		if len(typeSpec.Parameters) > 0 {
			params = typeSpec.Parameters[len(typeSpec.Parameters)-1:]
		}
	case types.FunctionID:
		return pythonCallableSubscript(typeSpec)
	default:
		return "", nil, nil
	}
	if len(params) == 0 {
		return "", nil, nil
	}
	var imports []string
	parts := make([]string, len(params))
	for i, p := range params {
		ref, imps, err := pythonTypeRef(p)
		if err != nil {
			return "", nil, err
		}
		parts[i] = ref
		imports = append(imports, imps...)
	}
	return strings.Join(parts, ", "), imports, nil
}

func pythonCallableSubscript(typeSpec *types.TypeSpec) (string, []string, error) {
	if len(typeSpec.Parameters) == 0 {
		return "", nil, nil
	}
	args := typeSpec.Parameters[:len(typeSpec.Parameters)-1]
	result := typeSpec.Parameters[len(typeSpec.Parameters)-1]

	var imports []string
	argRefs := make([]string, len(args))
	for i, a := range args {
		ref, imps, err := pythonTypeRef(a)
		if err != nil {
			return "", nil, err
		}
		argRefs[i] = ref
		imports = append(imports, imps...)
	}
	resultRef, imps, err := pythonTypeRef(result)
	if err != nil {
		return "", nil, err
	}
	imports = append(imports, imps...)
	return "[" + strings.Join(argRefs, ", ") + "], " + resultRef, imports, nil
}

// defaultFieldFactory names the Python expression that produces a fresh
// zero value for typeSpec, for use as a dataclasses.field(default_factory=...)
// argument, per python_converter.cc's DefaultFieldFactory table.
func defaultFieldFactory(typeSpec *types.TypeSpec) (string, bool) {
	switch typeSpec.TypeID {
	case types.ArrayID, types.IterableID, types.ContainerID:
		return "list", true
	case types.SetID:
		return "set", true
	case types.MapID:
		return "dict", true
	case types.TupleID:
		return "tuple", true
	case types.StringID:
		return "str", true
	case types.BytesID:
		return "bytes", true
	case types.StructID:
		return structTypeName(typeSpec), true
	default:
		return "", false
	}
}
