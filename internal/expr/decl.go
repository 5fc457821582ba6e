package expr

import (
	"fmt"

	"github.com/NunaInc/nudl-go/internal/nameobj"
	"github.com/NunaInc/nudl-go/internal/types"
)

// These node kinds are not really expressions: they are declarations that
// happen to live in the expression stream because the source allows them
// at statement position. All return Null and side-effect the enclosing
// module/scope, per spec §4.6.

// ModuleRef is the slice of internal/scope.Module an import needs.
type ModuleRef interface {
	nameobj.NamedObject
}

// ImportStatement binds a module under a local alias (or its own name).
//
// Grounded on expression.h's ImportStatementExpression.
type ImportStatement struct {
	Base

	localName string
	isAlias   bool
	module    ModuleRef
	null      *types.TypeSpec
}

// NewImportStatement constructs an import of module under localName.
// null is the built-in Null type returned by negotiateType.
func NewImportStatement(scope Scope, localName string, isAlias bool, module ModuleRef, null *types.TypeSpec) *ImportStatement {
	i := &ImportStatement{Base: NewBase(KindImportStatement, scope, nil), localName: localName, isAlias: isAlias, module: module, null: null}
	i.Init(i)
	return i
}

func (i *ImportStatement) LocalName() string { return i.localName }
func (i *ImportStatement) IsAlias() bool     { return i.isAlias }
func (i *ImportStatement) Module() ModuleRef { return i.module }

func (i *ImportStatement) NamedObject() (nameobj.NamedObject, bool) { return i.module, true }

func (i *ImportStatement) negotiateType(hint *types.TypeSpec) (*types.TypeSpec, error) {
	return i.null, nil
}

func (i *ImportStatement) DebugString() string {
	return fmt.Sprintf("Import(%s as %s)", i.module.Name(), i.localName)
}

func (i *ImportStatement) Clone(override CloneOverride) Expression {
	return NewImportStatement(i.scope, i.localName, i.isAlias, i.module, i.null)
}

// DefinedFunction is the slice of internal/funcs.Function a
// FunctionDefinition holds: just enough identity for DebugString/Clone.
type DefinedFunction interface {
	nameobj.NamedObject
}

// FunctionDefinition declares a function in the enclosing scope.
//
// Grounded on expression.h's FunctionDefinitionExpression.
type FunctionDefinition struct {
	Base

	function DefinedFunction
	null     *types.TypeSpec
}

// NewFunctionDefinition constructs a function-definition statement for
// function. null is the built-in Null type returned by negotiateType.
func NewFunctionDefinition(scope Scope, function DefinedFunction, null *types.TypeSpec) *FunctionDefinition {
	f := &FunctionDefinition{Base: NewBase(KindFunctionDefinition, scope, nil), function: function, null: null}
	f.Init(f)
	return f
}

func (f *FunctionDefinition) DefFunction() DefinedFunction { return f.function }

func (f *FunctionDefinition) NamedObject() (nameobj.NamedObject, bool) { return f.function, true }

func (f *FunctionDefinition) negotiateType(hint *types.TypeSpec) (*types.TypeSpec, error) {
	return f.null, nil
}

func (f *FunctionDefinition) DebugString() string {
	return fmt.Sprintf("FunctionDefinition(%s)", f.function.Name())
}

func (f *FunctionDefinition) Clone(override CloneOverride) Expression {
	return NewFunctionDefinition(f.scope, f.function, f.null)
}

// SchemaDefinition declares a named struct type in the enclosing scope.
//
// Grounded on expression.h's SchemaDefinitionExpression; TypeStruct in the
// original is just a TypeSpec with TypeID == StructID here.
type SchemaDefinition struct {
	Base

	schema *types.TypeSpec
	null   *types.TypeSpec
}

// NewSchemaDefinition constructs a schema-definition statement for schema
// (must be a Struct-derived TypeSpec). null is the built-in Null type
// returned by negotiateType.
func NewSchemaDefinition(scope Scope, schema, null *types.TypeSpec) *SchemaDefinition {
	s := &SchemaDefinition{Base: NewBase(KindSchemaDefinition, scope, nil), schema: schema, null: null}
	s.Init(s)
	return s
}

func (s *SchemaDefinition) DefSchema() *types.TypeSpec { return s.schema }

func (s *SchemaDefinition) negotiateType(hint *types.TypeSpec) (*types.TypeSpec, error) {
	return s.null, nil
}

func (s *SchemaDefinition) DebugString() string {
	return fmt.Sprintf("SchemaDefinition(%s)", s.schema.FullName())
}

func (s *SchemaDefinition) Clone(override CloneOverride) Expression {
	return NewSchemaDefinition(s.scope, s.schema, s.null)
}

// TypeDefinition declares a type alias: `type name = definedTypeSpec`.
//
// Grounded on expression.h's TypeDefinitionExpression.
type TypeDefinition struct {
	Base

	typeName        string
	definedTypeSpec *types.TypeSpec
	null            *types.TypeSpec
}

// NewTypeDefinition constructs a type-definition statement binding
// typeName to definedTypeSpec. null is the built-in Null type returned by
// negotiateType.
func NewTypeDefinition(scope Scope, typeName string, definedTypeSpec, null *types.TypeSpec) *TypeDefinition {
	t := &TypeDefinition{Base: NewBase(KindTypeDefinition, scope, nil), typeName: typeName, definedTypeSpec: definedTypeSpec, null: null}
	t.Init(t)
	return t
}

func (t *TypeDefinition) TypeName() string              { return t.typeName }
func (t *TypeDefinition) DefinedTypeSpec() *types.TypeSpec { return t.definedTypeSpec }

func (t *TypeDefinition) negotiateType(hint *types.TypeSpec) (*types.TypeSpec, error) {
	return t.null, nil
}

func (t *TypeDefinition) DebugString() string {
	return fmt.Sprintf("TypeDefinition(%s = %s)", t.typeName, t.definedTypeSpec.FullName())
}

func (t *TypeDefinition) Clone(override CloneOverride) Expression {
	return NewTypeDefinition(t.scope, t.typeName, t.definedTypeSpec, t.null)
}
