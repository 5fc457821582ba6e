package funcs

import (
	"fmt"
	"sort"

	"github.com/NunaInc/nudl-go/internal/expr"
	"github.com/NunaInc/nudl-go/internal/nameobj"
	"github.com/NunaInc/nudl-go/internal/nudlerr"
	"github.com/NunaInc/nudl-go/internal/types"
)

// ResolvedArg is one matched (name, expression) slot produced by
// matchArguments, in the candidate's declared argument order.
type ResolvedArg struct {
	Name      string
	Value     expr.Expression
	IsDefault bool
}

// matchArguments implements spec §4.7 step 1a: positional arguments fill
// slots left-to-right, keyword arguments fill by name, and any remaining
// slot falls back to its declared default value; a slot with neither a
// supplied value nor a default rejects the candidate.
func matchArguments(candidate *Function, positional []expr.Expression, keyword map[string]expr.Expression) ([]ResolvedArg, error) {
	n := len(candidate.arguments)
	if len(positional) > n {
		return nil, nudlerr.New(nudlerr.InvalidArgument,
			"%s takes %d arguments, %d given positionally", candidate.FullName(), n, len(positional))
	}
	slots := make([]ResolvedArg, n)
	assigned := make([]bool, n)
	for i, p := range positional {
		slots[i] = ResolvedArg{Name: candidate.arguments[i].Name(), Value: p}
		assigned[i] = true
	}

	keys := make([]string, 0, len(keyword))
	for name := range keyword {
		keys = append(keys, name)
	}
	sort.Strings(keys)
	for _, name := range keys {
		idx := argumentIndex(candidate, name)
		if idx < 0 {
			return nil, nudlerr.New(nudlerr.InvalidArgument,
				"%s has no argument named %s", candidate.FullName(), name)
		}
		if assigned[idx] {
			return nil, nudlerr.New(nudlerr.InvalidArgument,
				"argument %s of %s already given positionally", name, candidate.FullName())
		}
		slots[idx] = ResolvedArg{Name: name, Value: keyword[name]}
		assigned[idx] = true
	}

	for i, ok := range assigned {
		if ok {
			continue
		}
		dv, hasDefault := candidate.DefaultValue(i)
		if !hasDefault {
			return nil, nudlerr.New(nudlerr.InvalidArgument,
				"missing required argument %s of %s", candidate.arguments[i].Name(), candidate.FullName())
		}
		slots[i] = ResolvedArg{Name: candidate.arguments[i].Name(), Value: dv, IsDefault: true}
	}
	return slots, nil
}

func argumentIndex(candidate *Function, name string) int {
	for i, a := range candidate.arguments {
		if a.Name() == name {
			return i
		}
	}
	return -1
}

// convertibilityRank scores how closely actual matches declared, per spec
// §4.7 step 1e: 0 for an exact match, 1 (plus generic depth) for a plain
// ancestor relationship, 2 (plus depth) when a Nullable wrapper is
// involved, and a higher fallback rank for any other admissible
// conversion. ok is false if actual cannot be used for declared at all.
func convertibilityRank(declared, actual *types.TypeSpec) (int, bool) {
	if declared.IsEqual(actual) {
		return 0, true
	}
	depth := typeDepth(actual)
	if declared.TypeID == types.NullableID || actual.TypeID == types.NullableID {
		if declared.IsAncestorOf(actual) || declared.IsConvertibleFrom(actual) {
			return 2 + depth, true
		}
	}
	if declared.IsAncestorOf(actual) {
		return 1 + depth, true
	}
	if declared.IsConvertibleFrom(actual) {
		return 3 + depth, true
	}
	return 0, false
}

// typeDepth counts the deepest chain of nested parameters in t, used to
// break ties between two candidates admitting the same conversion kind at
// different levels of generic nesting.
func typeDepth(t *types.TypeSpec) int {
	if t == nil || len(t.Parameters) == 0 {
		return 0
	}
	max := 0
	for _, p := range t.Parameters {
		if d := typeDepth(p); d > max {
			max = d
		}
	}
	return 1 + max
}

// candidate is one overload's fully-evaluated resolution result.
type candidate struct {
	function *Function
	args     []ResolvedArg
	rebuilt  *types.TypeSpec
	score    int
}

// evaluateCandidate runs spec §4.7 step 1 against one overload: matching
// argument slots, negotiating each against its declared type, feeding the
// (declared, actual) pairs into a fresh LocalNamesRebinder, and scoring the
// admissible result.
func evaluateCandidate(fn *Function, positional []expr.Expression, keyword map[string]expr.Expression) (*candidate, error) {
	slots, err := matchArguments(fn, positional, keyword)
	if err != nil {
		return nil, err
	}

	rebinder := types.NewLocalNamesRebinder()
	argTypes := make([]*types.TypeSpec, len(slots)+1)
	score := 0
	for i, slot := range slots {
		declared := fn.arguments[i].TypeSpec()
		actual, err := slot.Value.NegotiateType(declared)
		if err != nil {
			return nil, nudlerr.Wrap(nudlerr.InvalidArgument, err,
				"negotiating argument %s of %s", slot.Name, fn.FullName())
		}
		if err := rebinder.ProcessType(declared, actual); err != nil {
			return nil, nudlerr.Wrap(nudlerr.InvalidArgument, err,
				"unifying argument %s of %s", slot.Name, fn.FullName())
		}
		rank, ok := convertibilityRank(declared, actual)
		if !ok {
			return nil, nudlerr.New(nudlerr.InvalidArgument,
				"argument %s of %s: %s does not convert to %s", slot.Name, fn.FullName(), actual.FullName(), declared.FullName())
		}
		score += rank
		argTypes[i] = actual
	}
	argTypes[len(slots)] = fn.resultType()

	rebuilt, err := rebinder.RebuildFunctionWithComponents(fn.typeSpec, argTypes)
	if err != nil {
		return nil, nudlerr.Wrap(nudlerr.InvalidArgument, err, "rebinding %s", fn.FullName())
	}
	return &candidate{function: fn, args: slots, rebuilt: rebuilt, score: score}, nil
}

// ResolveCall performs spec §4.7's overload resolution of a call against
// every candidate in group, in declaration order, and returns a binding to
// the lowest-scoring fully-admissible candidate (ties favor the earlier
// declaration, since a strictly-lower score is required to replace the
// current best). If no candidate admits, the rejection reasons for every
// candidate are joined into one error.
func ResolveCall(group *FunctionGroup, callName string, positional []expr.Expression, keyword map[string]expr.Expression) (*FunctionBinding, error) {
	rejects := nudlerr.NewList(callName)
	var best *candidate
	for _, fn := range group.functions {
		c, err := evaluateCandidate(fn, positional, keyword)
		if err != nil {
			rejects.Add(nudlerr.Wrap(nudlerr.InvalidArgument, err, "candidate %s", fn.FullName()))
			continue
		}
		if best == nil || c.score < best.score {
			best = c
		}
	}
	if best == nil {
		return nil, rejects.AsError()
	}

	finalFn := best.function
	if !best.rebuilt.IsEqual(best.function.typeSpec) {
		instance, err := best.function.Instantiate(best.rebuilt)
		if err != nil {
			return nil, err
		}
		finalFn = instance
	}

	dependents := map[nameobj.NamedObject]struct{}{finalFn: {}}
	return &FunctionBinding{function: finalFn, args: best.args, dependents: dependents}, nil
}

// FunctionBinding is the already-overload-resolved callee of a
// FunctionCall: it satisfies internal/expr's Binding seam and records the
// functions the call depends on, for the emitter to enumerate required
// specializations; that set holds only the directly resolved callee.
type FunctionBinding struct {
	function   *Function
	args       []ResolvedArg
	dependents map[nameobj.NamedObject]struct{}
}

// ResultType satisfies expr.Binding.
func (b *FunctionBinding) ResultType() *types.TypeSpec { return b.function.resultType() }

// DebugString satisfies expr.Binding.
func (b *FunctionBinding) DebugString() string {
	return fmt.Sprintf("FunctionBinding(%s)", b.function.FullName())
}

// Function returns the resolved callee (a fresh instance, for an
// abstract-function call).
func (b *FunctionBinding) Function() *Function { return b.function }

// Arguments returns the matched (name, expression) slots, in the callee's
// declared argument order.
func (b *FunctionBinding) Arguments() []ResolvedArg { return b.args }

// DependentFunctions is seeded with only the directly-resolved concrete
// function; the callee's own body isn't guaranteed fully analyzed yet at
// resolution time, so the emitter is expected to walk each nested
// FunctionCall's own DependentFunctions to build the full transitive
// closure at emission time.
func (b *FunctionBinding) DependentFunctions() map[nameobj.NamedObject]struct{} { return b.dependents }
