package types

import (
	"github.com/NunaInc/nudl-go/internal/nudlerr"
)

// isNullType, isAnyType, isTupleType, isNullableType, isFunctionType mirror
// TypeUtils's single-type-id predicates from type_utils.cc; kept local since
// the rebinder is their only caller so far.
func isNullType(t *TypeSpec) bool     { return t.TypeID == NullID }
func isAnyType(t *TypeSpec) bool      { return t.TypeID == AnyID }
func isTupleType(t *TypeSpec) bool    { return t.TypeID == TupleID }
func isNullableType(t *TypeSpec) bool { return t.TypeID == NullableID }
func isFunctionType(t *TypeSpec) bool { return t.TypeID == FunctionID }

// findUnionMatch returns the most specific member of srcParam (if it's a
// Union) that is an ancestor of typeSpec, so a generic local name bound
// through a Union slot records the narrowest branch rather than the Union
// itself.
func findUnionMatch(srcParam, typeSpec *TypeSpec) *TypeSpec {
	if srcParam.TypeID != UnionID {
		return srcParam
	}
	best := srcParam
	for _, param := range srcParam.Parameters {
		if param.IsAncestorOf(typeSpec) && (best == srcParam || best.IsAncestorOf(param)) {
			best = param
		}
	}
	return best
}

// LocalNamesRebinder unifies a function's (or generic type's) local type
// names against the actual argument types of a call, then rebuilds the
// original type substituting the unified bindings.
//
// Grounded on original_source/nudl/analysis/type_spec.h/.cc's
// LocalNamesRebinder: ProcessType unifies one declared/actual pair and
// records it per local name; RebuildType (or RebuildFunctionWithComponents,
// for a whole function signature) replays the original shape with the
// unified bindings substituted in. Used by internal/funcs's overload
// resolution (spec §4.7 step c).
type LocalNamesRebinder struct {
	localTypes map[string]*TypeSpec
}

// NewLocalNamesRebinder constructs an empty rebinder.
func NewLocalNamesRebinder() *LocalNamesRebinder {
	return &LocalNamesRebinder{localTypes: map[string]*TypeSpec{}}
}

func (r *LocalNamesRebinder) recordLocalName(srcParam, typeSpec *TypeSpec) error {
	if srcParam.LocalName == "" {
		return nil
	}
	existing, ok := r.localTypes[srcParam.LocalName]
	if !ok {
		r.localTypes[srcParam.LocalName] = typeSpec
		return nil
	}
	if existing.IsEqual(typeSpec) {
		return nil
	}
	swapTypes := func(t1, t2 *TypeSpec) (bool, error) {
		if t2.IsBound() && (!t1.IsBound() || t1.IsAncestorOf(t2)) {
			return true, nil
		}
		if !t1.IsConvertibleFrom(t2) && !t2.IsConvertibleFrom(t1) {
			return false, nudlerr.New(nudlerr.InvalidArgument,
				"named type: %s is bound to two incompatible (sub)argument types: %s and %s",
				srcParam.LocalName, t1.FullName(), t2.FullName())
		}
		return false, nil
	}
	t1, t2 := existing, typeSpec
	switch {
	case isNullType(t1):
		switch {
		case isAnyType(t2): // unchanged
		case isNullableType(t2):
			r.localTypes[srcParam.LocalName] = t2
		default:
			bound, err := t1.Bind([]BindArg{TypeArg(t2)})
			if err != nil {
				return err
			}
			r.localTypes[srcParam.LocalName] = bound
		}
	case isNullableType(t1):
		switch {
		case isNullType(t2): // unchanged
		case isNullableType(t2):
			doSwap, err := swapTypes(t1, t2)
			if err != nil {
				return err
			}
			if doSwap {
				r.localTypes[srcParam.LocalName] = t2
			}
		default:
			doSwap, err := swapTypes(t1.Parameters[len(t1.Parameters)-1], t2)
			if err != nil {
				return err
			}
			if doSwap {
				bound, err := t1.Bind([]BindArg{TypeArg(t2)})
				if err != nil {
					return err
				}
				r.localTypes[srcParam.LocalName] = bound
			}
		}
	case isAnyType(t1):
		doSwap, err := swapTypes(t1, t2)
		if err != nil {
			return err
		}
		if doSwap {
			r.localTypes[srcParam.LocalName] = t2
		}
	case isNullType(t2):
		bound, err := t2.Bind([]BindArg{TypeArg(t1)})
		if err != nil {
			return err
		}
		r.localTypes[srcParam.LocalName] = bound
	case isNullableType(t2):
		doSwap, err := swapTypes(t1, t2.Parameters[len(t2.Parameters)-1])
		if err != nil {
			return err
		}
		if doSwap {
			r.localTypes[srcParam.LocalName] = t2
		} else {
			bound, err := t2.Bind([]BindArg{TypeArg(t1)})
			if err != nil {
				return err
			}
			r.localTypes[srcParam.LocalName] = bound
		}
	default:
		doSwap, err := swapTypes(t1, t2)
		if err != nil {
			return err
		}
		if doSwap {
			r.localTypes[srcParam.LocalName] = t1
		}
	}
	return nil
}

// ProcessType unifies srcParam (the declared, possibly-generic type) against
// typeSpec (the actual type observed at the call site), recording local
// names and recursing into matching parameter positions.
func (r *LocalNamesRebinder) ProcessType(srcParam, typeSpec *TypeSpec) error {
	if err := r.recordLocalName(srcParam, typeSpec); err != nil {
		return err
	}
	original := srcParam
	srcParam = findUnionMatch(srcParam, typeSpec)
	if original != srcParam {
		if err := r.recordLocalName(srcParam, typeSpec); err != nil {
			return err
		}
	}
	if isFunctionType(srcParam) {
		if !isFunctionType(typeSpec) || len(srcParam.Parameters) == 0 {
			return nudlerr.New(nudlerr.InvalidArgument,
				"cannot process type for rebinding: %s with non-function or unbound type hint: %s",
				srcParam.FullName(), typeSpec.FullName())
		}
		if len(typeSpec.Parameters) == 0 {
			return nil // not yet bound
		}
		numTypeParams := len(typeSpec.Parameters) - 1
		numSrcParams := len(srcParam.Parameters) - 1
		for i := 0; i < numSrcParams && i < numTypeParams; i++ {
			if err := r.ProcessType(srcParam.Parameters[i], typeSpec.Parameters[i]); err != nil {
				return nudlerr.Wrap(nudlerr.InvalidArgument, err,
					"in subtype %d of %s and %s", i, srcParam.FullName(), typeSpec.FullName())
			}
		}
		if err := r.ProcessType(srcParam.Parameters[len(srcParam.Parameters)-1], typeSpec.Parameters[len(typeSpec.Parameters)-1]); err != nil {
			return nudlerr.Wrap(nudlerr.InvalidArgument, err,
				"in return type of function types %s and %s", srcParam.FullName(), typeSpec.FullName())
		}
		return nil
	}
	if len(typeSpec.Parameters) == len(srcParam.Parameters) {
		for i := range typeSpec.Parameters {
			if err := r.ProcessType(srcParam.Parameters[i], typeSpec.Parameters[i]); err != nil {
				return nudlerr.Wrap(nudlerr.InvalidArgument, err,
					"in subtype %d of %s and %s", i, srcParam.FullName(), typeSpec.FullName())
			}
		}
	}
	return nil
}

// RebuildType replays srcParam's shape, substituting any local name that
// ProcessType unified to a concrete type, and binding through typeSpec's
// own parameters where srcParam supplies fewer of its own.
func (r *LocalNamesRebinder) RebuildType(srcParam, typeSpec *TypeSpec) (*TypeSpec, error) {
	srcParam = findUnionMatch(srcParam, typeSpec)
	if typeSpec.OriginalBind != nil && typeSpec.OriginalBind == srcParam {
		return typeSpec, nil
	}
	isFunction := isFunctionType(srcParam)
	numTypeParams := len(typeSpec.Parameters)
	numSrcParams := len(srcParam.Parameters)
	if isFunction {
		if !isFunctionType(typeSpec) || numSrcParams == 0 || numTypeParams == 0 {
			return nil, nudlerr.New(nudlerr.InvalidArgument,
				"cannot rebuild type: %s with non-function or unbound type hint: %s",
				srcParam.FullName(), typeSpec.FullName())
		}
		numTypeParams--
		numSrcParams--
	}
	needsRebinding := false
	args := make([]BindArg, 0, numSrcParams)
	for i := 0; i < numSrcParams; i++ {
		paramType := srcParam.Parameters[i]
		paramTypeSpec := paramType
		if i < numTypeParams {
			paramTypeSpec = typeSpec.Parameters[i]
		}
		newType, err := r.RebuildType(paramType, paramTypeSpec)
		if err != nil {
			return nil, err
		}
		if newType != paramType {
			needsRebinding = true
		}
		args = append(args, TypeArg(newType))
	}
	for i := numSrcParams; i < numTypeParams; i++ {
		args = append(args, TypeArg(typeSpec.Parameters[i]))
	}
	if isFunction {
		newType, err := r.RebuildType(srcParam.Parameters[len(srcParam.Parameters)-1], typeSpec.Parameters[len(typeSpec.Parameters)-1])
		if err != nil {
			return nil, err
		}
		if newType != srcParam.Parameters[len(srcParam.Parameters)-1] {
			needsRebinding = true
		}
		args = append(args, TypeArg(newType))
	}
	var recorded *TypeSpec
	if srcParam.LocalName != "" {
		if t, ok := r.localTypes[srcParam.LocalName]; ok {
			recorded = t
			if !needsRebinding {
				return t, nil
			}
		}
	}
	if !needsRebinding {
		return typeSpec, nil
	}
	newType, err := typeSpec.Bind(args)
	if err != nil {
		return nil, nudlerr.Wrap(nudlerr.InvalidArgument, err,
			"binding type dependent of changed local type names: %s binding: %s",
			srcParam.FullName(), typeSpec.FullName())
	}
	if isTupleType(newType) {
		newType.updateNamesFrom(typeSpec)
		newType.updateNamesFrom(srcParam)
	}
	if recorded != nil {
		r.localTypes[srcParam.LocalName] = newType
	}
	return newType, nil
}

// RebuildFunctionWithComponents rebuilds srcParam (a Function type) given
// the already-negotiated argument+result types typeSpecs, in positional
// order (including the trailing result slot), per spec §4.7 step 3's
// "RebuildFunctionWithComponents produces the concrete TypeFunction".
func (r *LocalNamesRebinder) RebuildFunctionWithComponents(srcParam *TypeSpec, typeSpecs []*TypeSpec) (*TypeSpec, error) {
	if !isFunctionType(srcParam) {
		return nil, nudlerr.New(nudlerr.Internal, "RebuildFunctionWithComponents requires a Function, got %s", srcParam.FullName())
	}
	if len(typeSpecs) != len(srcParam.Parameters) {
		return nil, nudlerr.New(nudlerr.Internal,
			"invalid number of types: %d vs. %d", len(typeSpecs), len(srcParam.Parameters))
	}
	needsRebinding := false
	args := make([]BindArg, 0, len(typeSpecs))
	for i, paramTypeSpec := range typeSpecs {
		paramType := srcParam.Parameters[i]
		newType, err := r.RebuildType(paramType, paramTypeSpec)
		if err != nil {
			return nil, nudlerr.Wrap(nudlerr.InvalidArgument, err,
				"rebuilding function argument %d from: %s with: %s", i, paramType.FullName(), paramTypeSpec.FullName())
		}
		if newType != paramType {
			needsRebinding = true
		}
		args = append(args, TypeArg(newType))
	}
	if !needsRebinding {
		return srcParam, nil
	}
	newType, err := srcParam.Bind(args)
	if err != nil {
		return nil, nudlerr.Wrap(nudlerr.InvalidArgument, err,
			"binding function type of changed local type names: %s", srcParam.FullName())
	}
	return newType, nil
}

// updateNamesFrom fills in any of t's empty per-slot parameter names from
// other's, provided other is also a Tuple of the same arity. Grounded on
// types.cc's TypeTuple::UpdateNames.
func (t *TypeSpec) updateNamesFrom(other *TypeSpec) {
	if !isTupleType(other) {
		return
	}
	if len(other.ParameterNames) != len(t.ParameterNames) {
		return
	}
	for i := range t.ParameterNames {
		if t.ParameterNames[i] == "" {
			t.ParameterNames[i] = other.ParameterNames[i]
		}
	}
}
