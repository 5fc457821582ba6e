package types

// BaseTypesStore holds the built-in hierarchy (spec §4.3, pre-populated
// at construction) plus a few named conveniences used by the rest of the
// analyzer (Any, Null, Union, Nullable...). Grounded on the original
// NunaInc/nudl analyzer's TypeUtils::EnsureType bootstrap sequence in
// type_utils.cc, which builds the lattice in exactly this ancestor-first
// order.
type BaseTypesStore struct {
	byName  map[string]*TypeSpec
	counter *TypeIDCounter

	Any, Null, Numeric, Integral, Int, Int8, Int16, Int32 *TypeSpec
	UInt, UInt8, UInt16, UInt32                           *TypeSpec
	Float64, Float32, Decimal                             *TypeSpec
	String, Bytes, Bool                                   *TypeSpec
	Timestamp, Date, DateTime, TimeInterval               *TypeSpec
	Iterable, Container, Array, Set, Map, Generator       *TypeSpec
	Tuple, Struct, Function, Union, Nullable, Dataset     *TypeSpec
	Type, Module                                          *TypeSpec
	TupleJoin, DatasetAggregate, DatasetJoin              *TypeSpec
	Unknown                                               *TypeSpec
}

// newBuiltinType constructs a base TypeSpec: allocates its member store
// (rooted at root), sets ancestor, bound flag, and optional custom
// binder, and registers it in root and byName.
func (b *BaseTypesStore) newBuiltinType(id ID, ancestor *TypeSpec, bound bool, bind binder) *TypeSpec {
	name := idNames[id]
	t := &TypeSpec{TypeID: id, name: name, Ancestor: ancestor, isBoundSelf: bound, bind: bind}
	t.MemberStore = NewMemberStore(name, t, nil)
	b.byName[name] = t
	return t
}

// NewBaseTypesStore builds and returns the full built-in hierarchy of
// spec §4.3.
func NewBaseTypesStore() *BaseTypesStore {
	b := &BaseTypesStore{byName: map[string]*TypeSpec{}, counter: NewTypeIDCounter()}

	b.Any = b.newBuiltinType(AnyID, nil, false, nil)
	b.Null = b.newBuiltinType(NullID, b.Any, true, nil) // bind wired below, once Nullable exists

	b.Numeric = b.newBuiltinType(NumericID, b.Any, false, nil)
	b.Integral = b.newBuiltinType(IntegralID, b.Numeric, false, nil)
	b.Int = b.newBuiltinType(IntID, b.Integral, true, nil)
	b.Int8 = b.newBuiltinType(Int8ID, b.Int, true, nil)
	b.Int16 = b.newBuiltinType(Int16ID, b.Int, true, nil)
	b.Int32 = b.newBuiltinType(Int32ID, b.Int, true, nil)
	b.UInt = b.newBuiltinType(UIntID, b.Integral, true, nil)
	b.UInt8 = b.newBuiltinType(UInt8ID, b.UInt, true, nil)
	b.UInt16 = b.newBuiltinType(UInt16ID, b.UInt, true, nil)
	b.UInt32 = b.newBuiltinType(UInt32ID, b.UInt, true, nil)
	b.Float64 = b.newBuiltinType(Float64ID, b.Numeric, true, nil)
	b.Float32 = b.newBuiltinType(Float32ID, b.Float64, true, nil)
	b.Decimal = b.newBuiltinType(DecimalID, b.Numeric, true, newDecimalBinder())

	b.String = b.newBuiltinType(StringID, b.Any, true, nil)
	b.Bytes = b.newBuiltinType(BytesID, b.Any, true, nil)
	b.Bool = b.newBuiltinType(BoolID, b.Any, true, nil)

	b.Timestamp = b.newBuiltinType(TimestampID, b.Any, false, nil)
	b.Date = b.newBuiltinType(DateID, b.Timestamp, true, nil)
	b.DateTime = b.newBuiltinType(DateTimeID, b.Timestamp, true, nil)
	b.TimeInterval = b.newBuiltinType(TimeIntervalID, b.Any, true, nil)

	b.Iterable = b.newBuiltinType(IterableID, b.Any, false, nil)
	b.Container = b.newBuiltinType(ContainerID, b.Iterable, false, nil)
	b.Array = b.newBuiltinType(ArrayID, b.Container, true, nil)
	b.Set = b.newBuiltinType(SetID, b.Container, true, nil)
	b.Map = b.newBuiltinType(MapID, b.Container, true, nil)
	b.Generator = b.newBuiltinType(GeneratorID, b.Iterable, true, nil)

	b.Tuple = b.newBuiltinType(TupleID, b.Any, true, nil)
	b.Struct = b.newBuiltinType(StructID, b.Any, true, nil)
	b.Function = b.newBuiltinType(FunctionID, b.Any, true, nil)
	b.Function.bind = newFunctionBinder()

	b.Union = b.newBuiltinType(UnionID, b.Any, true, nil)
	b.Union.bind = newUnionBinder()
	b.Union.build = b.Union.bind

	b.Nullable = b.newBuiltinType(NullableID, b.Union, true, nil)
	b.Nullable.bind = newNullableBinder(b.Null)
	b.Nullable.build = b.Nullable.bind
	b.Null.bind = newNullBinder(b.Nullable)

	b.Dataset = b.newBuiltinType(DatasetID, b.Any, true, nil)

	b.Type = b.newBuiltinType(TypeID_, b.Any, true, nil)
	b.Module = b.newBuiltinType(ModuleID, b.Any, true, nil)

	b.TupleJoin = b.newBuiltinType(TupleJoinID, b.Tuple, true, nil)
	b.TupleJoin.bind = newTupleJoinBinder()
	b.TupleJoin.build = b.TupleJoin.bind

	b.DatasetAggregate = b.newBuiltinType(DatasetAggregateID, b.Dataset, true, nil)
	b.DatasetAggregate.bind = newDatasetAggregateBinder(b, b.counter)
	b.DatasetAggregate.build = b.DatasetAggregate.bind

	b.DatasetJoin = b.newBuiltinType(DatasetJoinID, b.Dataset, true, nil)
	b.DatasetJoin.bind = newDatasetJoinBinder(b, b.counter)
	b.DatasetJoin.build = b.DatasetJoin.bind

	b.Unknown = b.newBuiltinType(UnknownID, nil, false, nil)

	return b
}

// ByName looks up a built-in type by its unparameterized name.
func (b *BaseTypesStore) ByName(name string) (*TypeSpec, bool) {
	t, ok := b.byName[name]
	return t, ok
}

// Counter returns the process-wide monotonic type-id counter shared by
// every synthesizing generator bound against this store.
func (b *BaseTypesStore) Counter() *TypeIDCounter { return b.counter }
