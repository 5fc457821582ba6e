package types

import (
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

// OpenAPISchema renders t as an OpenAPI 3 schema object, backing the
// analyzer's `schema` declaration (expr.SchemaDefinition) side-output: a
// struct's fields become object properties, arrays/maps/iterables become
// typed collections, and the built-in scalar types map onto their closest
// OpenAPI primitive. A type this mapping has no OpenAPI equivalent for
// (Function, Tuple, Dataset, and the analyzer-internal ids) comes back as
// a schema with only a Description naming the NuDL type, since those are
// never the declared type of a schema's own field in valid source.
func (t *TypeSpec) OpenAPISchema() *openapi3.Schema {
	return t.openAPISchema(map[*TypeSpec]*openapi3.Schema{})
}

func (t *TypeSpec) openAPISchema(seen map[*TypeSpec]*openapi3.Schema) *openapi3.Schema {
	if s, ok := seen[t]; ok {
		return s
	}
	s := openapi3.NewSchema()
	seen[t] = s

	switch t.TypeID {
	case IntID, Int8ID, Int16ID, Int32ID, UIntID, UInt8ID, UInt16ID, UInt32ID, IntegralID, NumericID:
		s.Type = openapi3.TypeInteger
	case Float64ID, Float32ID, DecimalID:
		s.Type = openapi3.TypeNumber
	case StringID, BytesID, DateID, DateTimeID, TimestampID, TimeIntervalID:
		s.Type = openapi3.TypeString
	case BoolID:
		s.Type = openapi3.TypeBoolean
	case NullID:
		s.Nullable = true
	case ArrayID, SetID, IterableID, GeneratorID:
		s.Type = openapi3.TypeArray
		if len(t.Parameters) > 0 {
			s.Items = openapi3.NewSchemaRef("", t.Parameters[0].openAPISchema(seen))
		}
	case MapID:
		s.Type = openapi3.TypeObject
		if len(t.Parameters) > 1 {
			s.AdditionalProperties = openapi3.AdditionalProperties{
				Schema: openapi3.NewSchemaRef("", t.Parameters[1].openAPISchema(seen)),
			}
		}
	case NullableID:
		s.Nullable = true
		if len(t.Parameters) > 0 {
			// Parameters is [nullType, inner]; the wrapped type is the
			// last slot, matching nullableIsAncestorOf/nullableIsConvertibleFrom.
			// A shallow copy is marked nullable rather than the cached
			// inner schema itself: inner may be shared with (or, for a
			// self-referential struct reached again through this same
			// Nullable wrapper, identical to) another in-progress schema
			// still being built elsewhere in the walk.
			wrapped := *t.Parameters[len(t.Parameters)-1].openAPISchema(seen)
			wrapped.Nullable = true
			seen[t] = &wrapped
			return &wrapped
		}
	case StructID:
		s.Type = openapi3.TypeObject
		s.Properties = make(openapi3.Schemas, len(t.Parameters))
		for i, field := range t.Parameters {
			name := ""
			if i < len(t.ParameterNames) {
				name = t.ParameterNames[i]
			}
			if name == "" {
				name = fmt.Sprintf("field_%d", i)
			}
			s.Properties[name] = openapi3.NewSchemaRef("", field.openAPISchema(seen))
		}
	case AnyID:
		// no constraints: any JSON value satisfies Any.
	default:
		s.Description = "NuDL type: " + t.FullName()
	}
	return s
}
