package types

// ID is the type-id space of spec §6: built-in types use a closed enum,
// user-declared and synthesized types allocate from a monotonic counter
// starting above the built-in range.
type ID int

const (
	AnyID ID = iota
	NullID
	NumericID
	IntegralID
	IntID
	Int8ID
	Int16ID
	Int32ID
	UIntID
	UInt8ID
	UInt16ID
	UInt32ID
	Float64ID
	Float32ID
	DecimalID
	StringID
	BytesID
	BoolID
	TimestampID
	DateID
	DateTimeID
	TimeIntervalID
	IterableID
	ContainerID
	ArrayID
	SetID
	MapID
	GeneratorID
	TupleID
	StructID
	FunctionID
	UnionID
	NullableID
	DatasetID
	TypeID_ // the type of a type named object; trailing underscore avoids colliding with the package name
	ModuleID
	TupleJoinID
	DatasetAggregateID
	DatasetJoinID
	UnknownID

	// firstUserID is the first id handed out by a monotonic counter for
	// user-declared and synthesized types.
	firstUserID = 1000
)

// idNames gives the builtin display name for every builtin ID, used by the
// bootstrap and by TypeSignature.
var idNames = map[ID]string{
	AnyID:              "Any",
	NullID:             "Null",
	NumericID:          "Numeric",
	IntegralID:         "Integral",
	IntID:              "Int",
	Int8ID:             "Int8",
	Int16ID:            "Int16",
	Int32ID:            "Int32",
	UIntID:             "UInt",
	UInt8ID:            "UInt8",
	UInt16ID:           "UInt16",
	UInt32ID:           "UInt32",
	Float64ID:          "Float64",
	Float32ID:          "Float32",
	DecimalID:          "Decimal",
	StringID:           "String",
	BytesID:            "Bytes",
	BoolID:             "Bool",
	TimestampID:        "Timestamp",
	DateID:             "Date",
	DateTimeID:         "DateTime",
	TimeIntervalID:     "TimeInterval",
	IterableID:         "Iterable",
	ContainerID:        "Container",
	ArrayID:            "Array",
	SetID:              "Set",
	MapID:              "Map",
	GeneratorID:        "Generator",
	TupleID:            "Tuple",
	StructID:           "Struct",
	FunctionID:         "Function",
	UnionID:            "Union",
	NullableID:         "Nullable",
	DatasetID:          "Dataset",
	TypeID_:            "Type",
	ModuleID:           "Module",
	TupleJoinID:        "TupleJoin",
	DatasetAggregateID: "DatasetAggregate",
	DatasetJoinID:      "DatasetJoin",
	UnknownID:          "Unknown",
}

// TypeIDCounter is the process-wide monotonic counter issuing fresh type-ids
// for user-declared and synthesized types (spec §5 "a monotonic counter
// issuing fresh type-ids for synthesized types"). It is narrowly scoped:
// only the type-synthesizing Binds (DatasetAggregate/DatasetJoin) touch it.
type TypeIDCounter struct {
	next int
}

// NewTypeIDCounter starts a counter above the built-in id range.
func NewTypeIDCounter() *TypeIDCounter { return &TypeIDCounter{next: firstUserID} }

// Next returns a fresh, never-before-issued type id.
func (c *TypeIDCounter) Next() ID {
	id := ID(c.next)
	c.next++
	return id
}
