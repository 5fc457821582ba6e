package types

import (
	"fmt"

	"github.com/NunaInc/nudl-go/internal/names"
	"github.com/NunaInc/nudl-go/internal/nudlerr"
)

// newDecimalBinder implements Decimal<precision,scale>: two int arguments,
// a positive precision and 0 <= scale <= precision, per spec §4.3's
// Decimal entry.
// Grounded on original_source/nudl/analysis/types.cc's TypeDecimal::Bind,
// adapted to back the bound value with github.com/cockroachdb/apd/v3 for
// arithmetic (see internal/types's Decimal-consuming callers in package
// vars/expr).
func newDecimalBinder() binder {
	return func(self *TypeSpec, args []BindArg) (*TypeSpec, error) {
		if len(args) != 2 || !args[0].IsInt || !args[1].IsInt {
			return nil, nudlerr.New(nudlerr.InvalidArgument,
				"Decimal requires exactly two integer arguments: precision, scale")
		}
		precision, scale := args[0].Int, args[1].Int
		if precision <= 0 || scale < 0 || scale > precision {
			return nil, nudlerr.New(nudlerr.InvalidArgument,
				"invalid Decimal<%d,%d>: require 0 < precision, 0 <= scale <= precision", precision, scale)
		}
		result := self.Clone()
		result.isBoundSelf = true
		result.DecimalPrecision = precision
		result.DecimalScale = scale
		result.name = decimalName(precision, scale)
		result.updateBindingStore(args)
		return result, nil
	}
}

// newFunctionBinder implements Function<arg1,...,argN,Result>.Bind(args):
// like the generic clone-and-substitute path, but preserves the declared
// argument names when rebinding over an existing Function type of the same
// arity, so a concrete instantiation produced by internal/funcs's overload
// resolution still reports its original argument names.
// Grounded on types.cc's TypeFunction::Bind/BindWithComponents, which keep
// TypeFunction::Argument::name fixed across a rebind of argument types.
func newFunctionBinder() binder {
	return func(self *TypeSpec, args []BindArg) (*TypeSpec, error) {
		types, err := typesFromArgs(args)
		if err != nil {
			return nil, nudlerr.Wrap(nudlerr.InvalidArgument, err, "binding %s", self.FullName())
		}
		result := self.Clone()
		result.Parameters = types
		result.isBoundSelf = true
		if len(self.ParameterNames) == len(types) {
			result.ParameterNames = append([]string(nil), self.ParameterNames...)
		} else {
			result.ParameterNames = make([]string, len(types))
		}
		result.updateBindingStore(args)
		return result, nil
	}
}

// newTupleJoinBinder implements TupleJoin.Bind(args): flattens any tuple
// argument into the parameter list while preserving names, returning a
// fresh plain Tuple. Grounded on types.cc's TypeTupleJoin::Bind.
func newTupleJoinBinder() binder {
	return func(self *TypeSpec, args []BindArg) (*TypeSpec, error) {
		if len(args) == 0 {
			return nil, nudlerr.New(nudlerr.InvalidArgument, "cannot bind an empty joined tuple")
		}
		types, err := typesFromArgs(args)
		if err != nil {
			return nil, nudlerr.Wrap(nudlerr.InvalidArgument, err, "extracting types for %s", self.FullName())
		}
		var params []*TypeSpec
		var paramNames []string
		for _, t := range types {
			if t.TypeID != TupleID {
				params = append(params, t)
				paramNames = append(paramNames, "")
				continue
			}
			if len(t.Parameters) != len(t.ParameterNames) {
				return nil, nudlerr.New(nudlerr.Internal, "malformed tuple type %s: parameter/name count mismatch", t.FullName())
			}
			params = append(params, t.Parameters...)
			paramNames = append(paramNames, t.ParameterNames...)
		}
		result := self.Ancestor // the plain Tuple type this generator descends from
		for result != nil && result.TypeID != TupleID {
			result = result.Ancestor
		}
		if result == nil {
			return nil, nudlerr.New(nudlerr.Internal, "TupleJoin has no Tuple ancestor")
		}
		out := result.Clone()
		out.Parameters = params
		out.ParameterNames = paramNames
		out.isBoundSelf = true
		out.OriginalBind = self
		return out, nil
	}
}

// fieldNamer assigns unique field names to synthesized struct fields,
// defaulting unnamed/"_unnamed" slots to "arg_<n>", per types.cc's
// anonymous NameKeeper helper used by both aggregate and join synthesis.
type fieldNamer struct {
	index int
	known map[string]bool
}

func newFieldNamer() *fieldNamer { return &fieldNamer{known: map[string]bool{}} }

func (n *fieldNamer) fieldName(proposed string) (string, error) {
	n.index++
	var result string
	switch {
	case proposed == "" || proposed == "_unnamed":
		j := n.index
		for n.known[fmt.Sprintf("arg_%d", j)] {
			j++
		}
		result = fmt.Sprintf("arg_%d", j)
	case n.known[proposed]:
		return "", nudlerr.New(nudlerr.InvalidArgument, "duplicated field name: `%s`", proposed)
	default:
		v, err := names.ValidatedName(proposed)
		if err != nil {
			return "", nudlerr.Wrap(nudlerr.InvalidArgument, err, "invalid field name `%s`", proposed)
		}
		result = v
	}
	n.known[result] = true
	return result, nil
}

// newDatasetAggregateBinder implements DatasetAggregate.Bind([tuple]) per
// spec §4.3 and spec example: the tuple's head names the input row type,
// the remaining slots are {aggregate_kind: tuple<field_name: field_type>}.
// A fresh struct type is synthesized with one field per slot, its type
// derived from the aggregate kind, and the whole thing is wrapped in
// Dataset<synthesized_struct> with OriginalBind pointing back to self.
// Grounded on types.cc's DatasetAggregate::Bind/AggregateFieldType.
func newDatasetAggregateBinder(base *BaseTypesStore, counter *TypeIDCounter) binder {
	return func(self *TypeSpec, args []BindArg) (*TypeSpec, error) {
		if len(args) != 1 {
			return nil, nudlerr.New(nudlerr.InvalidArgument, "expecting exactly one argument to build an aggregate type")
		}
		types, err := typesFromArgs(args)
		if err != nil {
			return nil, nudlerr.Wrap(nudlerr.InvalidArgument, err, "extracting types for %s", self.FullName())
		}
		spec := types[0]
		if spec.TypeID != TupleID || len(spec.Parameters) < 2 {
			return nil, nudlerr.New(nudlerr.InvalidArgument,
				"type argument for building an aggregate is expected to be a tuple with two members or more. Found: %s", spec.FullName())
		}
		baseType := spec.Parameters[0]
		namer := newFieldNamer()
		var fields []*TypeSpec
		var fieldNames []string
		for i := 1; i < len(spec.Parameters); i++ {
			aggregateKind := spec.ParameterNames[i]
			crt := spec.Parameters[i]
			if crt.TypeID != TupleID || len(crt.Parameters) == 0 {
				return nil, nudlerr.New(nudlerr.InvalidArgument,
					"aggregation specification is badly built at index %d, aggregate type %s. Found: %s", i, aggregateKind, crt.FullName())
			}
			fieldName, err := namer.fieldName(crt.ParameterNames[0])
			if err != nil {
				return nil, nudlerr.Wrap(nudlerr.InvalidArgument, err, "in aggregation specification at index %d", i)
			}
			fieldType, err := aggregateFieldType(base, aggregateKind, crt.Parameters[0])
			if err != nil {
				return nil, nudlerr.Wrap(nudlerr.InvalidArgument, err,
					"determining the field type for aggregate at index %d, field name %s, aggregate type %s", i, fieldName, aggregateKind)
			}
			fields = append(fields, fieldType)
			fieldNames = append(fieldNames, fieldName)
		}
		structType := base.Struct.Clone()
		structType.TypeID = counter.Next()
		structType.name = fmt.Sprintf("_Aggregate_%s_%d", baseType.Name(), structType.TypeID)
		structType.Parameters = fields
		structType.ParameterNames = fieldNames
		structType.isBoundSelf = true
		structType.MemberStore = NewMemberStore(structType.name, structType, nil)

		result := base.Dataset.Clone()
		result.name = "_Dataset" + structType.name
		result.Parameters = []*TypeSpec{structType}
		result.isBoundSelf = true
		result.OriginalBind = self
		return result, nil
	}
}

// aggregateFieldType derives a synthesized aggregate field's type from its
// aggregate kind, per types.cc's DatasetAggregate::AggregateFieldType.
func aggregateFieldType(base *BaseTypesStore, aggregateType string, typeSpec *TypeSpec) (*TypeSpec, error) {
	if typeSpec.TypeID == FunctionID {
		rt := typeSpec.ResultType()
		if rt == nil {
			return nil, nudlerr.New(nudlerr.InvalidArgument, "abstract function provided in aggregation specification: %s", typeSpec.FullName())
		}
		typeSpec = rt
	}
	switch aggregateType {
	case "count":
		return base.Int, nil
	case "to_set":
		return base.Set.Bind([]BindArg{TypeArg(typeSpec)})
	case "to_array":
		return base.Array.Bind([]BindArg{TypeArg(typeSpec)})
	case "sum", "mean":
		if !base.Numeric.IsAncestorOf(typeSpec) {
			return nil, nudlerr.New(nudlerr.InvalidArgument,
				"aggregate type `%s` expects a numeric value to aggregate. Found: %s", aggregateType, typeSpec.FullName())
		}
		return typeSpec, nil
	default:
		return typeSpec, nil
	}
}

// isProperJoinType reports whether crt is a valid right-side join
// specification: tuple<dataset-or-array-of-dataset, key-function>.
func isProperJoinType(crt *TypeSpec) bool {
	if crt.TypeID != TupleID || len(crt.Parameters) != 2 || crt.Parameters[1].TypeID != FunctionID {
		return false
	}
	dataset := crt.Parameters[0]
	if dataset.TypeID == DatasetID {
		return true
	}
	if dataset.TypeID == ArrayID && dataset.ResultType() != nil && dataset.ResultType().TypeID == DatasetID {
		return true
	}
	return false
}

// joinBuilder accumulates the synthesized join-result struct fields.
// Grounded on types.cc's anonymous JoinBuilder helper inside DatasetJoin::Bind.
type joinBuilder struct {
	base        *BaseTypesStore
	leftType    *TypeSpec
	keyType     *TypeSpec
	fields      []*TypeSpec
	fieldNames  []string
	namer       *fieldNamer
}

func newJoinBuilder(base *BaseTypesStore) *joinBuilder {
	return &joinBuilder{base: base, namer: newFieldNamer()}
}

func (j *joinBuilder) processLeft(arg, key *TypeSpec) error {
	if j.leftType != nil {
		return nudlerr.New(nudlerr.Internal, "multiple processLeft calls")
	}
	if arg.TypeID != StructID {
		return nudlerr.New(nudlerr.InvalidArgument,
			"expecting a dataset type bound to a struct as the first join argument. Got: %s", arg.FullName())
	}
	if key.TypeID != FunctionID || key.ResultType() == nil {
		return nudlerr.New(nudlerr.InvalidArgument,
			"expecting a valid function type as the second argument in the join specification. Got: %s", key.FullName())
	}
	for _, name := range arg.ParameterNames {
		if _, err := j.namer.fieldName(name); err != nil {
			return nudlerr.Wrap(nudlerr.InvalidArgument, err, "for field in the left join structure: %s", arg.FullName())
		}
	}
	j.fields = append(j.fields, arg.Parameters...)
	j.fieldNames = append(j.fieldNames, arg.ParameterNames...)
	j.leftType = arg
	j.keyType = key.ResultType()
	return nil
}

func (j *joinBuilder) processJoinComponent(crt *TypeSpec, joinField string) error {
	if !isProperJoinType(crt) {
		return nudlerr.New(nudlerr.InvalidArgument,
			"invalid tuple type argument for specification of right side of the join. We expect a tuple with a dataset or array of datasets and a key function. Got: %s", crt.FullName())
	}
	joinName := crt.ParameterNames[0]
	dtype := crt.Parameters[0]
	var structType *TypeSpec
	composed := false
	if dtype.TypeID == DatasetID {
		if len(dtype.Parameters) == 0 || dtype.Parameters[0].TypeID != StructID {
			return nudlerr.New(nudlerr.InvalidArgument, "join dataset inner type not specified or not a structure: %s", dtype.FullName())
		}
		structType = dtype.Parameters[0]
	} else {
		composed = true
		inner := dtype.ResultType()
		if inner == nil || len(inner.Parameters) == 0 || inner.Parameters[0].TypeID != StructID {
			return nudlerr.New(nudlerr.InvalidArgument, "join dataset inner type not specified or not a structure: %s", dtype.FullName())
		}
		structType = inner.Parameters[0]
	}
	return j.processRight(joinName, joinField, structType, crt.Parameters[1], composed)
}

func (j *joinBuilder) processRight(joinName, joinField string, structType, key *TypeSpec, composed bool) error {
	if j.leftType == nil {
		return nudlerr.New(nudlerr.Internal, "need to call processLeft first")
	}
	if key.TypeID != FunctionID || key.ResultType() == nil {
		return nudlerr.New(nudlerr.InvalidArgument,
			"expecting a valid function type as the second argument in the join specification. Got: %s", key.FullName())
	}
	if !key.ResultType().IsEqual(j.keyType) {
		return nudlerr.New(nudlerr.InvalidArgument,
			"right side expression of a join differs from what was presented on the left side. Found: %s expecting: %s",
			key.ResultType().FullName(), j.keyType.FullName())
	}
	if composed && joinName != "right_multi_array" {
		return nudlerr.New(nudlerr.InvalidArgument, "invalid join name: %s for joining with dataset array", joinName)
	}
	fieldName, err := j.namer.fieldName(joinField)
	if err != nil {
		return nudlerr.Wrap(nudlerr.InvalidArgument, err, "for right join specification: %s", key.FullName())
	}
	var joinType *TypeSpec
	switch joinName {
	case "right":
		joinType, err = j.base.Nullable.Bind([]BindArg{TypeArg(structType)})
	case "right_multi", "right_multi_array":
		joinType, err = j.base.Array.Bind([]BindArg{TypeArg(structType)})
	default:
		return nudlerr.New(nudlerr.InvalidArgument, "invalid join name specification: %s", joinName)
	}
	if err != nil {
		return nudlerr.Wrap(nudlerr.InvalidArgument, err, "building the join field type for %s", joinName)
	}
	j.fields = append(j.fields, joinType)
	j.fieldNames = append(j.fieldNames, fieldName)
	if composed {
		indexFieldName, err := j.namer.fieldName(fieldName + "_index")
		if err != nil {
			return nudlerr.Wrap(nudlerr.InvalidArgument, err, "adding an index field name to array-based join specification: %s", key.FullName())
		}
		indexType, err := j.base.Array.Bind([]BindArg{TypeArg(j.base.Int)})
		if err != nil {
			return nudlerr.Wrap(nudlerr.InvalidArgument, err, "building the join index field type")
		}
		j.fields = append(j.fields, indexType)
		j.fieldNames = append(j.fieldNames, indexFieldName)
	}
	return nil
}

func (j *joinBuilder) buildResult(counter *TypeIDCounter) (*TypeSpec, error) {
	if j.leftType == nil {
		return nil, nudlerr.New(nudlerr.InvalidArgument, "no left structure to join with was specified")
	}
	structType := j.base.Struct.Clone()
	structType.TypeID = counter.Next()
	structType.name = fmt.Sprintf("_Join_%s_%d", j.leftType.Name(), structType.TypeID)
	structType.Parameters = j.fields
	structType.ParameterNames = j.fieldNames
	structType.isBoundSelf = true
	structType.MemberStore = NewMemberStore(structType.name, structType, nil)
	return structType, nil
}

// newDatasetJoinBinder implements DatasetJoin.Bind([struct, key_fn,
// joins_tuple]) per spec §4.3: synthesizes a struct copying the left
// struct's fields plus, per right-side join slot, a Nullable<right_struct>
// (right), Array<right_struct> (right_multi), or Array<right_struct> plus
// Array<Int> index field (right_multi_array). Grounded on types.cc's
// DatasetJoin::Bind and its JoinBuilder helper.
func newDatasetJoinBinder(base *BaseTypesStore, counter *TypeIDCounter) binder {
	return func(self *TypeSpec, args []BindArg) (*TypeSpec, error) {
		if len(args) != 3 {
			return nil, nudlerr.New(nudlerr.InvalidArgument, "expecting exactly three arguments to build a join type")
		}
		types, err := typesFromArgs(args)
		if err != nil {
			return nil, nudlerr.Wrap(nudlerr.InvalidArgument, err, "extracting types for %s", self.FullName())
		}
		joinsSpec := types[2]
		if joinsSpec.TypeID != TupleID {
			return nil, nudlerr.New(nudlerr.InvalidArgument,
				"expecting the third type argument for building a join to be a tuple. Got: %s", joinsSpec.FullName())
		}
		builder := newJoinBuilder(base)
		if err := builder.processLeft(types[0], types[1]); err != nil {
			return nil, err
		}
		for i, p := range joinsSpec.Parameters {
			if err := builder.processJoinComponent(p, joinsSpec.ParameterNames[i]); err != nil {
				return nil, nudlerr.Wrap(nudlerr.InvalidArgument, err, "processing right join specification at index %d", i)
			}
		}
		structType, err := builder.buildResult(counter)
		if err != nil {
			return nil, nudlerr.Wrap(nudlerr.InvalidArgument, err, "building join result type")
		}
		result := base.Dataset.Clone()
		result.name = "_Dataset" + structType.name
		result.Parameters = []*TypeSpec{structType}
		result.isBoundSelf = true
		result.OriginalBind = self
		return result, nil
	}
}
