package types

import (
	"fmt"
	"slices"

	"fortio.org/safecast"
)

// AdtKind distinguishes nominal aggregate flavours.
type AdtKind uint8

const (
	AdtStruct AdtKind = iota
	AdtEnum
	AdtUnion
)

func (k AdtKind) String() string {
	switch k {
	case AdtStruct:
		return "struct"
	case AdtEnum:
		return "enum"
	case AdtUnion:
		return "union"
	default:
		return fmt.Sprintf("AdtKind(%d)", k)
	}
}

// VariantInfo describes one variant of an ADT. Structs and unions have
// exactly one variant.
type VariantInfo struct {
	Name   string
	Fields []TypeID
}

// AdtInfo stores metadata for a nominal struct, enum or union.
type AdtInfo struct {
	Name     string
	Kind     AdtKind
	Box      bool
	HasDtor  bool
	Variants []VariantInfo
}

// RegisterAdt allocates a nominal ADT slot and returns its TypeID.
func (in *Interner) RegisterAdt(name string, kind AdtKind, hasDtor bool) TypeID {
	slot := in.appendAdt(AdtInfo{Name: name, Kind: kind, HasDtor: hasDtor})
	return in.internRaw(Type{Kind: KindAdt, Payload: slot})
}

// SetAdtVariants stores the resolved variants for the ADT.
func (in *Interner) SetAdtVariants(id TypeID, variants []VariantInfo) {
	info := in.adtInfo(id)
	if info == nil || info.Box {
		return
	}
	info.Variants = make([]VariantInfo, len(variants))
	for i, v := range variants {
		info.Variants[i] = VariantInfo{Name: v.Name, Fields: slices.Clone(v.Fields)}
	}
}

// AdtInfo returns metadata for the provided ADT TypeID.
func (in *Interner) AdtInfo(id TypeID) (*AdtInfo, bool) {
	info := in.adtInfo(id)
	if info == nil {
		return nil, false
	}
	return info, true
}

// IsBox reports whether id is Box<T>.
func (in *Interner) IsBox(id TypeID) bool {
	info := in.adtInfo(id)
	return info != nil && info.Box
}

// BoxedType returns T for Box<T>.
func (in *Interner) BoxedType(id TypeID) (TypeID, bool) {
	if !in.IsBox(id) {
		return NoTypeID, false
	}
	return in.types[id].Elem, true
}

// IsUnion reports whether id is an untagged union.
func (in *Interner) IsUnion(id TypeID) bool {
	info := in.adtInfo(id)
	return info != nil && info.Kind == AdtUnion
}

// HasDestructor reports whether id is an ADT with a user-defined destructor.
func (in *Interner) HasDestructor(id TypeID) bool {
	info := in.adtInfo(id)
	return info != nil && info.HasDtor
}

// VariantIndex resolves a variant name of an enum.
func (in *Interner) VariantIndex(id TypeID, name string) (int, bool) {
	info := in.adtInfo(id)
	if info == nil || info.Kind != AdtEnum {
		return 0, false
	}
	for i, v := range info.Variants {
		if v.Name == name {
			return i, true
		}
	}
	return 0, false
}

// FieldType returns the type of field `field` of `id`. For enums variant
// selects the variant; it must be a valid variant index. Structs and unions
// ignore a negative variant.
func (in *Interner) FieldType(id TypeID, variant, field int) (TypeID, bool) {
	if field < 0 {
		return NoTypeID, false
	}
	tt, ok := in.Lookup(id)
	if !ok {
		return NoTypeID, false
	}
	switch tt.Kind {
	case KindTuple, KindClosure, KindCoroutine:
		members, _ := in.Members(id)
		if field >= len(members) {
			return NoTypeID, false
		}
		return members[field], true
	case KindAdt:
		info := in.adtInfo(id)
		if info == nil || info.Box {
			return NoTypeID, false
		}
		if variant < 0 {
			if info.Kind == AdtEnum {
				return NoTypeID, false
			}
			variant = 0
		}
		if variant >= len(info.Variants) || field >= len(info.Variants[variant].Fields) {
			return NoTypeID, false
		}
		return info.Variants[variant].Fields[field], true
	default:
		return NoTypeID, false
	}
}

func (in *Interner) appendAdt(info AdtInfo) uint32 {
	slot, err := safecast.Conv[uint32](len(in.adts))
	if err != nil {
		panic(fmt.Errorf("adts overflow: %w", err))
	}
	in.adts = append(in.adts, info)
	return slot
}

func (in *Interner) adtInfo(id TypeID) *AdtInfo {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindAdt {
		return nil
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.adts) {
		return nil
	}
	return &in.adts[tt.Payload]
}
