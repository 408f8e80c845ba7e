package types

import (
	"fmt"
	"strconv"
	"strings"

	"fortio.org/safecast"
)

// Builtins stores TypeIDs for common primitive types.
type Builtins struct {
	Invalid TypeID
	Unit    TypeID
	Never   TypeID
	Bool    TypeID
	Char    TypeID
	Str     TypeID
	Int     TypeID
	Uint    TypeID
	Usize   TypeID
	Float   TypeID
}

// Interner provides stable TypeIDs by hashing structural descriptors.
//
// An Interner is not safe for concurrent mutation. Once every type of a body
// is registered it may be shared read-only between goroutines.
type Interner struct {
	types    []Type
	index    map[Type]TypeID
	builtins Builtins

	adts    []AdtInfo
	boxSlot uint32

	members     [][]TypeID
	memberIndex map[string]uint32

	names     []string
	nameIndex map[string]uint32
}

// NewInterner constructs an interner seeded with built-in primitives.
func NewInterner() *Interner {
	in := &Interner{
		index:       make(map[Type]TypeID, 64),
		memberIndex: make(map[string]uint32, 16),
		nameIndex:   make(map[string]uint32, 16),
	}
	// slot 0 of every side table is an invalid sentinel
	in.adts = append(in.adts, AdtInfo{})
	in.members = append(in.members, nil)
	in.names = append(in.names, "")
	in.boxSlot = in.appendAdt(AdtInfo{Name: "Box", Kind: AdtStruct, Box: true})

	in.builtins.Invalid = in.internRaw(Type{Kind: KindInvalid})
	in.builtins.Unit = in.Intern(Type{Kind: KindUnit})
	in.builtins.Never = in.Intern(Type{Kind: KindNever})
	in.builtins.Bool = in.Intern(Type{Kind: KindBool})
	in.builtins.Char = in.Intern(Type{Kind: KindChar})
	in.builtins.Str = in.Intern(Type{Kind: KindStr})
	in.builtins.Int = in.Intern(MakeInt(Width32))
	in.builtins.Uint = in.Intern(MakeUint(Width32))
	in.builtins.Usize = in.Intern(MakeUint(WidthSize))
	in.builtins.Float = in.Intern(MakeFloat(Width64))
	return in
}

// Builtins returns TypeIDs for primitive types.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// Intern ensures the provided descriptor has a stable TypeID.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	if id, ok := in.index[t]; ok {
		return id
	}
	return in.internRaw(t)
}

// internRaw adds the descriptor to the storage without consulting the map.
func (in *Interner) internRaw(t Type) TypeID {
	lenTypes, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id := TypeID(lenTypes)
	in.types = append(in.types, t)
	in.index[t] = id
	return id
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if in == nil || id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	tt, ok := in.Lookup(id)
	if !ok {
		panic("types: invalid TypeID")
	}
	return tt
}

// Len reports how many descriptors are stored, including the sentinel.
func (in *Interner) Len() int {
	if in == nil {
		return 0
	}
	return len(in.types)
}

// Box interns Box<elem>.
func (in *Interner) Box(elem TypeID) TypeID {
	return in.Intern(Type{Kind: KindAdt, Elem: elem, Payload: in.boxSlot})
}

// Tuple interns a tuple of the given element types. The empty tuple is unit.
func (in *Interner) Tuple(elems ...TypeID) TypeID {
	if len(elems) == 0 {
		return in.builtins.Unit
	}
	return in.Intern(Type{Kind: KindTuple, Payload: in.internMembers(elems)})
}

// Closure interns a closure environment with the given captured types.
// The name keeps otherwise identical environments apart.
func (in *Interner) Closure(name string, upvars ...TypeID) TypeID {
	return in.Intern(Type{Kind: KindClosure, Payload: in.internMembers(upvars), Count: uint64(in.internName(name))})
}

// Coroutine interns a coroutine state with the given saved locals.
func (in *Interner) Coroutine(name string, saved ...TypeID) TypeID {
	return in.Intern(Type{Kind: KindCoroutine, Payload: in.internMembers(saved), Count: uint64(in.internName(name))})
}

// Param interns a generic type parameter.
func (in *Interner) Param(name string) TypeID {
	return in.Intern(Type{Kind: KindParam, Payload: in.internName(name)})
}

// Dynamic interns a trait object type `dyn name`.
func (in *Interner) Dynamic(name string) TypeID {
	return in.Intern(Type{Kind: KindDynamic, Payload: in.internName(name)})
}

// FnPtr interns the opaque function pointer type.
func (in *Interner) FnPtr() TypeID {
	return in.Intern(Type{Kind: KindFnPtr})
}

// ArrayParam interns [elem; name] whose length is a symbolic constant.
func (in *Interner) ArrayParam(elem TypeID, name string) TypeID {
	return in.Intern(Type{Kind: KindArray, Elem: elem, Count: ArraySymbolicLength, Payload: in.internName(name)})
}

// Members returns element types of tuples, closure upvars and coroutine saved locals.
func (in *Interner) Members(id TypeID) ([]TypeID, bool) {
	tt, ok := in.Lookup(id)
	if !ok {
		return nil, false
	}
	switch tt.Kind {
	case KindTuple, KindClosure, KindCoroutine:
		if int(tt.Payload) >= len(in.members) {
			return nil, false
		}
		return in.members[tt.Payload], true
	case KindUnit:
		return nil, true
	default:
		return nil, false
	}
}

// Name returns the name attached to params, trait objects, closures,
// coroutines and symbolic array lengths.
func (in *Interner) Name(id TypeID) string {
	tt, ok := in.Lookup(id)
	if !ok {
		return ""
	}
	switch tt.Kind {
	case KindParam, KindDynamic:
		return in.nameAt(tt.Payload)
	case KindClosure, KindCoroutine:
		if tt.Count >= uint64(len(in.names)) {
			return ""
		}
		slot, err := safecast.Conv[uint32](tt.Count)
		if err != nil {
			return ""
		}
		return in.nameAt(slot)
	case KindArray:
		if tt.Count == ArraySymbolicLength {
			return in.nameAt(tt.Payload)
		}
	case KindAdt:
		if info, ok := in.AdtInfo(id); ok {
			return info.Name
		}
	}
	return ""
}

func (in *Interner) nameAt(slot uint32) string {
	if int(slot) >= len(in.names) {
		return ""
	}
	return in.names[slot]
}

func (in *Interner) internMembers(elems []TypeID) uint32 {
	var key strings.Builder
	for i, e := range elems {
		if i > 0 {
			key.WriteByte(',')
		}
		key.WriteString(strconv.FormatUint(uint64(e), 10))
	}
	if slot, ok := in.memberIndex[key.String()]; ok {
		return slot
	}
	slot, err := safecast.Conv[uint32](len(in.members))
	if err != nil {
		panic(fmt.Errorf("members overflow: %w", err))
	}
	in.members = append(in.members, append([]TypeID(nil), elems...))
	in.memberIndex[key.String()] = slot
	return slot
}

func (in *Interner) internName(name string) uint32 {
	if slot, ok := in.nameIndex[name]; ok {
		return slot
	}
	slot, err := safecast.Conv[uint32](len(in.names))
	if err != nil {
		panic(fmt.Errorf("names overflow: %w", err))
	}
	in.names = append(in.names, name)
	in.nameIndex[name] = slot
	return slot
}
