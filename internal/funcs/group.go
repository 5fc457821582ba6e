package funcs

import (
	"github.com/NunaInc/nudl-go/internal/expr"
	"github.com/NunaInc/nudl-go/internal/nameobj"
	"github.com/NunaInc/nudl-go/internal/nudlerr"
)

// FunctionGroup is the named collection of overload candidates a call
// resolves against, plus the set of concrete instances produced by
// resolving calls to its abstract members.
//
// Grounded on spec §4.7's "function instances... shared between the
// call-site and the FunctionGroup via its function_instances set, so the
// emitter can enumerate all required specializations"; satisfies
// internal/expr's LambdaGroup seam.
type FunctionGroup struct {
	nameobj.Base

	functions []*Function
	instances map[expr.LambdaFunction]struct{}
}

// NewFunctionGroup constructs an empty group under name.
func NewFunctionGroup(name string) *FunctionGroup {
	return &FunctionGroup{
		Base:      nameobj.NewBase(name, nameobj.KindFunctionGroup),
		instances: map[expr.LambdaFunction]struct{}{},
	}
}

// AddCandidate registers f as an overload candidate of the group, in
// declaration order (overload resolution ties break on this order).
func (g *FunctionGroup) AddCandidate(f *Function) error {
	if f.group != nil && f.group != g {
		return nudlerr.New(nudlerr.FailedPrecondition,
			"function %s already belongs to group %s", f.FullName(), f.group.FullName())
	}
	f.group = g
	g.functions = append(g.functions, f)
	return nil
}

// Candidates returns every declared overload, in declaration order.
func (g *FunctionGroup) Candidates() []*Function { return g.functions }

// AddInstance registers fn as a concrete specialization produced by
// resolving a call against this group, satisfying expr.LambdaGroup.
func (g *FunctionGroup) AddInstance(fn expr.LambdaFunction) error {
	if fn == nil {
		return nudlerr.New(nudlerr.InvalidArgument,
			"cannot register a nil function instance in group %s", g.FullName())
	}
	g.instances[fn] = struct{}{}
	return nil
}

// Instances returns every concrete specialization registered so far, in no
// particular order.
func (g *FunctionGroup) Instances() []expr.LambdaFunction {
	out := make([]expr.LambdaFunction, 0, len(g.instances))
	for fn := range g.instances {
		out = append(out, fn)
	}
	return out
}
