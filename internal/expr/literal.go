package expr

import (
	"fmt"

	"github.com/cockroachdb/apd/v3"

	"github.com/NunaInc/nudl-go/internal/nudlerr"
	"github.com/NunaInc/nudl-go/internal/types"
)

// Literal is a constant value of a known build type, optionally
// down-narrowed (e.g. an untyped Int literal negotiated against an Int8
// hint) the first time its type is negotiated.
//
// Grounded on expression.h's Literal: build_type_spec_/value_/str_value_,
// and the CheckType/NegotiateType contract that narrows to the hint.
type Literal struct {
	Base

	buildType *types.TypeSpec
	value     interface{}
	strValue  string

	numeric *types.BaseTypesStore // non-nil only for int-family literals, to validate narrowing
}

// NewLiteral constructs a literal of buildType holding value, with its
// original lexeme strValue kept for DebugString/emission. numeric supplies
// the built-in int-family types consulted when a hint asks for narrowing;
// pass nil if buildType isn't an int-family type.
func NewLiteral(scope Scope, buildType *types.TypeSpec, value interface{}, strValue string, numeric *types.BaseTypesStore) *Literal {
	l := &Literal{Base: NewBase(KindLiteral, scope, nil), buildType: buildType, value: value, strValue: strValue, numeric: numeric}
	l.Init(l)
	return l
}

// BuildTypeSpec is the type used for building the expression, before any
// hint-driven narrowing.
func (l *Literal) BuildTypeSpec() *types.TypeSpec { return l.buildType }

// Value is the literal's held Go value.
func (l *Literal) Value() interface{} { return l.value }

// StrValue is the literal's original source lexeme.
func (l *Literal) StrValue() string { return l.strValue }

func (l *Literal) StaticValue() (interface{}, bool) { return l.value, true }

// CheckType reports whether value's dynamic Go type matches what typeSpec's
// type-id expects (int64 for the Int family, string for String/Bytes, bool
// for Bool, float64 for the Float family, *apd.Decimal checked against the
// bound precision for Decimal).
func CheckType(typeSpec *types.TypeSpec, value interface{}) error {
	switch typeSpec.TypeID {
	case types.IntID, types.Int8ID, types.Int16ID, types.Int32ID,
		types.UIntID, types.UInt8ID, types.UInt16ID, types.UInt32ID:
		if _, ok := value.(int64); !ok {
			return nudlerr.New(nudlerr.InvalidArgument,
				"literal value %v does not match expected integer type %s", value, typeSpec.FullName())
		}
	case types.StringID, types.BytesID:
		if _, ok := value.(string); !ok {
			return nudlerr.New(nudlerr.InvalidArgument,
				"literal value %v does not match expected type %s", value, typeSpec.FullName())
		}
	case types.BoolID:
		if _, ok := value.(bool); !ok {
			return nudlerr.New(nudlerr.InvalidArgument,
				"literal value %v does not match expected type %s", value, typeSpec.FullName())
		}
	case types.Float32ID, types.Float64ID:
		if _, ok := value.(float64); !ok {
			return nudlerr.New(nudlerr.InvalidArgument,
				"literal value %v does not match expected type %s", value, typeSpec.FullName())
		}
	case types.DecimalID:
		dec, ok := value.(*apd.Decimal)
		if !ok {
			return nudlerr.New(nudlerr.InvalidArgument,
				"literal value %v does not match expected type %s", value, typeSpec.FullName())
		}
		if digits := len(dec.Coeff.Text(10)); digits > typeSpec.DecimalPrecision {
			return nudlerr.New(nudlerr.InvalidArgument,
				"literal %s has %d digits, exceeding %s", dec.String(), digits, typeSpec.FullName())
		}
	}
	return nil
}

func (l *Literal) negotiateType(hint *types.TypeSpec) (*types.TypeSpec, error) {
	if err := CheckType(l.buildType, l.value); err != nil {
		return nil, err
	}
	if hint == nil || l.numeric == nil {
		return l.buildType, nil
	}
	// Per spec §4.6: "negotiation can down-narrow an integer to Int8 when
	// the hint permits" - only for the default Int build type, and only
	// when the hint is itself an ancestor-compatible int-family type that
	// actually fits the value.
	if l.buildType.TypeID != types.IntID || !l.buildType.IsAncestorOf(hint) {
		return l.buildType, nil
	}
	v, ok := l.value.(int64)
	if !ok {
		return l.buildType, nil
	}
	for _, narrow := range []*types.TypeSpec{l.numeric.Int8, l.numeric.Int16, l.numeric.Int32} {
		if narrow == nil || narrow.TypeID != hint.TypeID {
			continue
		}
		if fitsIntWidth(v, narrow.TypeID) {
			return narrow, nil
		}
	}
	return l.buildType, nil
}

func fitsIntWidth(v int64, id types.ID) bool {
	switch id {
	case types.Int8ID:
		return v >= -128 && v <= 127
	case types.Int16ID:
		return v >= -32768 && v <= 32767
	case types.Int32ID:
		return v >= -2147483648 && v <= 2147483647
	default:
		return false
	}
}

func (l *Literal) DebugString() string {
	return fmt.Sprintf("Literal(%s, %s)", l.buildType.FullName(), l.strValue)
}

func (l *Literal) Clone(override CloneOverride) Expression {
	return NewLiteral(l.scope, l.buildType, l.value, l.strValue, l.numeric)
}
