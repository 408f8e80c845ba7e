package types

import "fmt"

// TypeID uniquely identifies a type inside the interner.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// Kind enumerates all supported kinds of types.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindUnit
	KindNever
	KindBool
	KindChar
	KindInt
	KindUint
	KindFloat
	KindStr
	KindArray
	KindSlice
	KindReference
	KindPointer
	KindAdt
	KindTuple
	KindClosure
	KindCoroutine
	KindFnPtr
	KindDynamic
	KindParam
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindUnit:
		return "unit"
	case KindNever:
		return "never"
	case KindBool:
		return "bool"
	case KindChar:
		return "char"
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindFloat:
		return "float"
	case KindStr:
		return "str"
	case KindArray:
		return "array"
	case KindSlice:
		return "slice"
	case KindReference:
		return "reference"
	case KindPointer:
		return "pointer"
	case KindAdt:
		return "adt"
	case KindTuple:
		return "tuple"
	case KindClosure:
		return "closure"
	case KindCoroutine:
		return "coroutine"
	case KindFnPtr:
		return "fnptr"
	case KindDynamic:
		return "dynamic"
	case KindParam:
		return "param"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Width captures the precision of integers/floats.
type Width uint8

const (
	WidthAny  Width = 0
	Width8    Width = 8
	Width16   Width = 16
	Width32   Width = 32
	Width64   Width = 64
	Width128  Width = 128
	WidthSize Width = 255 // isize / usize
)

// Type is a compact descriptor for any supported type.
//
// Payload indexes a side table whose meaning depends on Kind: ADT slot for
// KindAdt, member list for tuples/closures/coroutines, symbolic length for
// arrays whose Count is ArraySymbolicLength, name slot for params and dyn.
type Type struct {
	Kind    Kind
	Elem    TypeID
	Count   uint64
	Width   Width
	Mutable bool
	Payload uint32
}

// ArraySymbolicLength marks arrays whose length is a named constant that
// has to be evaluated against a ParamEnv.
const ArraySymbolicLength = ^uint64(0)

// Descriptor helpers ---------------------------------------------------------

// MakeInt describes a signed integer of the given width.
func MakeInt(width Width) Type {
	return Type{Kind: KindInt, Width: width}
}

// MakeUint describes an unsigned integer type.
func MakeUint(width Width) Type {
	return Type{Kind: KindUint, Width: width}
}

// MakeFloat describes a floating-point type.
func MakeFloat(width Width) Type {
	return Type{Kind: KindFloat, Width: width}
}

// MakeArray describes a fixed-size array [T; n].
func MakeArray(elem TypeID, count uint64) Type {
	return Type{Kind: KindArray, Elem: elem, Count: count}
}

// MakeSlice describes an unsized slice [T].
func MakeSlice(elem TypeID) Type {
	return Type{Kind: KindSlice, Elem: elem}
}

// MakePointer describes *const T or *mut T.
func MakePointer(elem TypeID, mutable bool) Type {
	return Type{Kind: KindPointer, Elem: elem, Mutable: mutable}
}

// MakeReference describes &T or &mut T depending on the mutable flag.
func MakeReference(elem TypeID, mutable bool) Type {
	return Type{Kind: KindReference, Elem: elem, Mutable: mutable}
}
