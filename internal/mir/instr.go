package mir

import "moveck/internal/types"

// StatementKind enumerates statement kinds.
type StatementKind uint8

const (
	// StmtNop does nothing.
	StmtNop StatementKind = iota
	// StmtAssign writes an rvalue into a place.
	StmtAssign
	// StmtFakeRead is a read inserted for borrow checking only.
	StmtFakeRead
	// StmtStorageLive marks the start of a local's storage.
	StmtStorageLive
	// StmtStorageDead marks the end of a local's storage.
	StmtStorageDead
	// StmtSetDiscriminant writes an enum discriminant.
	StmtSetDiscriminant
	// StmtDeinit marks a place as uninitialized.
	StmtDeinit
	// StmtRetag is an aliasing-model marker.
	StmtRetag
	// StmtAscribeUserType records a user type annotation.
	StmtAscribeUserType
	// StmtPlaceMention evaluates a place without reading it.
	StmtPlaceMention
	// StmtCoverage is a coverage instrumentation marker.
	StmtCoverage
	// StmtIntrinsic is a non-diverging intrinsic call.
	StmtIntrinsic
	// StmtConstEvalCounter bumps the const-eval step counter.
	StmtConstEvalCounter
)

// Statement represents a MIR statement.
type Statement struct {
	Kind StatementKind

	Assign    AssignStmt
	FakeRead  FakeReadStmt
	Local     LocalID // StorageLive, StorageDead
	Place     Place   // SetDiscriminant, Deinit, Retag, AscribeUserType, PlaceMention
	Variant   int     // SetDiscriminant
	Intrinsic IntrinsicStmt
}

// AssignStmt represents `Dst = Src`.
type AssignStmt struct {
	Dst Place
	Src RValue
}

// FakeReadCause explains why a fake read was inserted.
type FakeReadCause uint8

const (
	FakeReadForMatchedPlace FakeReadCause = iota
	FakeReadForLet
	FakeReadForIndex
)

// FakeReadStmt represents a fake read of Place.
type FakeReadStmt struct {
	Cause FakeReadCause
	Place Place
}

// IntrinsicStmt represents assume / copy_nonoverlapping style intrinsics.
type IntrinsicStmt struct {
	Name     string
	Operands []Operand
}

// OperandKind distinguishes operand types.
type OperandKind uint8

const (
	// OperandConst represents a constant operand.
	OperandConst OperandKind = iota
	// OperandCopy represents a copy operand.
	OperandCopy
	// OperandMove represents a move operand.
	OperandMove
)

// Operand represents a MIR operand.
type Operand struct {
	Kind  OperandKind
	Place Place
	Const Const
}

// Const represents a constant. Text preserves the literal as written.
type Const struct {
	Type types.TypeID
	Text string
}

// Move returns a move operand of p.
func Move(p Place) Operand { return Operand{Kind: OperandMove, Place: p} }

// Copy returns a copy operand of p.
func Copy(p Place) Operand { return Operand{Kind: OperandCopy, Place: p} }

// Constant returns a constant operand.
func Constant(ty types.TypeID, text string) Operand {
	return Operand{Kind: OperandConst, Const: Const{Type: ty, Text: text}}
}

// RValueKind distinguishes right-hand value kinds.
type RValueKind uint8

const (
	// RValueUse represents a use of an operand.
	RValueUse RValueKind = iota
	// RValueRepeat represents [op; n].
	RValueRepeat
	// RValueRef represents &place / &mut place.
	RValueRef
	// RValueThreadLocalRef represents a reference to a thread local.
	RValueThreadLocalRef
	// RValueAddressOf represents &raw const place / &raw mut place.
	RValueAddressOf
	// RValueLen represents the length of an array or slice place.
	RValueLen
	// RValueCast represents a cast operation.
	RValueCast
	// RValueBinaryOp represents a binary operation.
	RValueBinaryOp
	// RValueCheckedBinaryOp represents an overflow-checked binary operation.
	RValueCheckedBinaryOp
	// RValueNullaryOp represents size_of / align_of style operations.
	RValueNullaryOp
	// RValueUnaryOp represents a unary operation.
	RValueUnaryOp
	// RValueDiscriminant reads an enum discriminant.
	RValueDiscriminant
	// RValueAggregate builds a tuple, array, ADT, closure or coroutine.
	RValueAggregate
	// RValueShallowInitBox turns a raw allocation into a box whose contents
	// are not yet initialized.
	RValueShallowInitBox
	// RValueCopyForDeref caches a dereferenced place in a deref temporary.
	RValueCopyForDeref
)

// RValue represents a right-hand value in MIR.
type RValue struct {
	Kind RValueKind

	Use            Operand
	Repeat         RepeatOp
	Ref            RefOp   // Ref, AddressOf
	Place          Place   // Len, Discriminant, CopyForDeref
	ThreadLocal    string
	Cast           CastOp
	Binary         BinaryOp // BinaryOp, CheckedBinaryOp
	Nullary        NullaryOp
	Unary          UnaryOp
	Aggregate      Aggregate
	ShallowInitBox ShallowInitBox
}

// RepeatOp represents [Value; Count].
type RepeatOp struct {
	Value Operand
	Count uint64
}

// RefOp represents a borrow or raw address-of.
type RefOp struct {
	Mutable bool
	Place   Place
}

// CastOp represents a cast operation.
type CastOp struct {
	Value    Operand
	TargetTy types.TypeID
}

// BinaryOp represents a binary operation.
type BinaryOp struct {
	Op    string
	Left  Operand
	Right Operand
}

// NullaryOp represents an operation on a type alone.
type NullaryOp struct {
	Op string
	Ty types.TypeID
}

// UnaryOp represents a unary operation.
type UnaryOp struct {
	Op      string
	Operand Operand
}

// AggregateKind distinguishes aggregate constructors.
type AggregateKind uint8

const (
	AggregateTuple AggregateKind = iota
	AggregateArray
	AggregateAdt
	AggregateClosure
	AggregateCoroutine
)

// Aggregate builds a value from its parts.
type Aggregate struct {
	Kind     AggregateKind
	Type     types.TypeID
	Variant  int
	Operands []Operand
}

// ShallowInitBox represents ShallowInitBox(Ptr, Elem).
type ShallowInitBox struct {
	Ptr  Operand
	Elem types.TypeID
}

// InitializationState describes how much of the destination an rvalue
// initializes.
type InitializationState uint8

const (
	// InitDeep means the value and everything beneath it is initialized.
	InitDeep InitializationState = iota
	// InitShallow means only the outer value is initialized (e.g. a fresh box
	// whose contents are written later).
	InitShallow
)

// InitializationState reports how assigning rv initializes its destination.
func (rv *RValue) InitializationState() InitializationState {
	if rv.Kind == RValueShallowInitBox {
		return InitShallow
	}
	return InitDeep
}

// Assign builds an assignment statement.
func Assign(dst Place, src RValue) Statement {
	return Statement{Kind: StmtAssign, Assign: AssignStmt{Dst: dst, Src: src}}
}

// Use builds an RValueUse.
func Use(op Operand) RValue {
	return RValue{Kind: RValueUse, Use: op}
}

// StorageDead builds a StorageDead statement.
func StorageDead(l LocalID) Statement {
	return Statement{Kind: StmtStorageDead, Local: l}
}

// StorageLive builds a StorageLive statement.
func StorageLive(l LocalID) Statement {
	return Statement{Kind: StmtStorageLive, Local: l}
}
