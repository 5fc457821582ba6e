package scope

import (
	"sort"

	"github.com/NunaInc/nudl-go/internal/expr"
	"github.com/NunaInc/nudl-go/internal/funcs"
	"github.com/NunaInc/nudl-go/internal/nameobj"
	"github.com/NunaInc/nudl-go/internal/types"
	"github.com/NunaInc/nudl-go/internal/vars"
)

// FieldUsageSet is the set of field names observed on one struct type.
type FieldUsageSet map[string]struct{}

// FieldUsageMap is keyed by the struct TypeSpec a field belongs to.
type FieldUsageMap map[*types.TypeSpec]FieldUsageSet

// FieldUsageVisitor walks a function's expressions recording which
// fields of which struct types are actually read, for the emitter to
// prune synthesized-but-unused fields.
//
// Grounded on dependency_analyzer.h/.cc's FieldUsageVisitor: Visit's
// per-kind dispatch (Identifier/DotAccess/FunctionCall) and the
// RecordField/ProcessIdentifier/ProcessDotAccess/ProcessFunctionCall
// split are reproduced one-to-one. The original's Visit/VisitExpressions
// recursion assumes a callee-visits-children traversal where
// ExpressionVisitor.Visit only decides whether to keep descending;
// internal/expr's Base.VisitExpressions already visits self then
// children (see expr.go), so VisitFunctionExpressions here only needs
// to do the "also walk nested function bodies" half -- the "then
// descend into the node's own children" half happens automatically
// once Visit returns true.
type FieldUsageVisitor struct {
	usageMap FieldUsageMap
}

// NewFieldUsageVisitor constructs an empty visitor.
func NewFieldUsageVisitor() *FieldUsageVisitor {
	return &FieldUsageVisitor{usageMap: FieldUsageMap{}}
}

// UsageMap returns the accumulated type-to-used-fields map.
func (v *FieldUsageVisitor) UsageMap() FieldUsageMap { return v.usageMap }

// UsedFields returns the sorted field names recorded for t, if any.
func (v *FieldUsageVisitor) UsedFields(t *types.TypeSpec) ([]string, bool) {
	set, ok := v.usageMap[t]
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, true
}

// Visit satisfies expr.Visitor.
func (v *FieldUsageVisitor) Visit(e expr.Expression) bool {
	switch e.Kind() {
	case expr.KindIdentifier:
		return v.processIdentifier(e.(*expr.Identifier))
	case expr.KindDotAccess:
		return v.processDotAccess(e.(*expr.DotAccess))
	case expr.KindFunctionCall:
		return v.processFunctionCall(e.(*expr.FunctionCall))
	default:
		VisitFunctionExpressions(e, v)
		return true
	}
}

func (v *FieldUsageVisitor) recordField(field *vars.Field) {
	set, ok := v.usageMap[field.ParentType()]
	if !ok {
		set = FieldUsageSet{}
		v.usageMap[field.ParentType()] = set
	}
	set[field.Name()] = struct{}{}

	parent, ok := field.ParentStore()
	if !ok || parent.Kind() != nameobj.KindField {
		return
	}
	if parentField, ok := parent.(*vars.Field); ok {
		v.recordField(parentField)
	}
}

func (v *FieldUsageVisitor) processIdentifier(e *expr.Identifier) bool {
	if obj, ok := e.NamedObject(); ok && obj.Kind() == nameobj.KindField {
		if field, ok := obj.(*vars.Field); ok {
			v.recordField(field)
		}
	}
	return true
}

func (v *FieldUsageVisitor) processDotAccess(e *expr.DotAccess) bool {
	if obj, ok := e.NamedObject(); ok && obj.Kind() == nameobj.KindField {
		if field, ok := obj.(*vars.Field); ok {
			v.recordField(field)
		}
	}
	VisitFunctionExpressions(e, v)
	return true
}

func (v *FieldUsageVisitor) processFunctionCall(e *expr.FunctionCall) bool {
	for obj := range e.DependentFunctions() {
		if fn, ok := obj.(*funcs.Function); ok {
			visitFunctionBody(fn, v)
		}
	}
	return true
}

func visitFunctionBody(fn *funcs.Function, visitor expr.Visitor) {
	if body, ok := fn.Body(); ok {
		body.VisitExpressions(visitor)
	}
}

// VisitFunctionExpressions additionally walks the function bodies
// reachable from e: either the candidates of a FunctionGroup or the
// single Function that e's named object resolves to, per spec §4.8's
// "when crossing a function-call boundary it descends into the
// callee's expressions" and expression.h's analogous free function.
//
// The original also falls back to a "no named object, but e's static
// type is a Function type" branch over that type's own
// function_instances. Our Function/FunctionGroup design (internal/funcs,
// see DESIGN.md) keeps concrete instances on the FunctionGroup rather
// than on the TypeSpec itself, and every expression kind that can carry
// a bare function value already exposes a named object (Identifier,
// Lambda), so that fallback has no reachable case here and is omitted.
func VisitFunctionExpressions(e expr.Expression, visitor expr.Visitor) {
	obj, ok := e.NamedObject()
	if !ok {
		return
	}
	switch o := obj.(type) {
	case *funcs.FunctionGroup:
		for _, fn := range o.Candidates() {
			visitFunctionBody(fn, visitor)
		}
	case *funcs.Function:
		visitFunctionBody(o, visitor)
	}
}
