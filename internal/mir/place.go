package mir

import (
	"fmt"
	"slices"
	"strings"

	"moveck/internal/types"
)

// PlaceElemKind enumerates projection kinds.
type PlaceElemKind uint8

const (
	// ProjDeref dereferences a reference, raw pointer or box.
	ProjDeref PlaceElemKind = iota
	// ProjField selects a field by index.
	ProjField
	// ProjIndex indexes an array or slice by the value of a local.
	ProjIndex
	// ProjConstantIndex indexes by a constant offset, optionally from the end.
	ProjConstantIndex
	// ProjSubslice selects the half-open range [From, To) (or [From, len-To)
	// when FromEnd).
	ProjSubslice
	// ProjDowncast reinterprets an enum as one of its variants.
	ProjDowncast
	// ProjOpaqueCast reveals the hidden type behind an opaque type.
	ProjOpaqueCast
	// ProjSubtype reinterprets a place at a subtype.
	ProjSubtype
)

func (k PlaceElemKind) String() string {
	switch k {
	case ProjDeref:
		return "deref"
	case ProjField:
		return "field"
	case ProjIndex:
		return "index"
	case ProjConstantIndex:
		return "constant_index"
	case ProjSubslice:
		return "subslice"
	case ProjDowncast:
		return "downcast"
	case ProjOpaqueCast:
		return "opaque_cast"
	case ProjSubtype:
		return "subtype"
	default:
		return fmt.Sprintf("PlaceElemKind(%d)", k)
	}
}

// PlaceElem is one projection step. Only the fields relevant to Kind are set.
type PlaceElem struct {
	Kind PlaceElemKind

	Field int
	Type  types.TypeID // field type, or target type of casts

	Index LocalID

	Offset    uint64
	MinLength uint64
	From      uint64
	To        uint64
	FromEnd   bool

	Variant     int
	VariantName string
}

func Deref() PlaceElem { return PlaceElem{Kind: ProjDeref} }

func Field(idx int, ty types.TypeID) PlaceElem {
	return PlaceElem{Kind: ProjField, Field: idx, Type: ty}
}

func Index(local LocalID) PlaceElem { return PlaceElem{Kind: ProjIndex, Index: local} }

func ConstantIndex(offset, minLength uint64, fromEnd bool) PlaceElem {
	return PlaceElem{Kind: ProjConstantIndex, Offset: offset, MinLength: minLength, FromEnd: fromEnd}
}

func Subslice(from, to uint64, fromEnd bool) PlaceElem {
	return PlaceElem{Kind: ProjSubslice, From: from, To: to, FromEnd: fromEnd}
}

func Downcast(variant int, name string) PlaceElem {
	return PlaceElem{Kind: ProjDowncast, Variant: variant, VariantName: name}
}

func OpaqueCast(ty types.TypeID) PlaceElem { return PlaceElem{Kind: ProjOpaqueCast, Type: ty} }

func Subtype(ty types.TypeID) PlaceElem { return PlaceElem{Kind: ProjSubtype, Type: ty} }

// Place is a root local plus a projection chain. Places are values: methods
// never mutate the receiver's projection slice.
type Place struct {
	Local LocalID
	Proj  []PlaceElem
}

// LocalPlace returns the bare place for a local.
func LocalPlace(l LocalID) Place {
	return Place{Local: l}
}

// IsValid reports whether the place names a local.
func (p Place) IsValid() bool {
	return p.Local != NoLocalID
}

// AsLocal returns the local when the place has no projections.
func (p Place) AsLocal() (LocalID, bool) {
	if len(p.Proj) != 0 {
		return NoLocalID, false
	}
	return p.Local, true
}

// Project returns a new place extended by elems.
func (p Place) Project(elems ...PlaceElem) Place {
	proj := make([]PlaceElem, 0, len(p.Proj)+len(elems))
	proj = append(proj, p.Proj...)
	proj = append(proj, elems...)
	return Place{Local: p.Local, Proj: proj}
}

// Prefix returns the place made of the first n projections.
func (p Place) Prefix(n int) Place {
	if n >= len(p.Proj) {
		return p
	}
	return Place{Local: p.Local, Proj: p.Proj[:n:n]}
}

// LastProjection splits off the final projection.
func (p Place) LastProjection() (base Place, elem PlaceElem, ok bool) {
	if len(p.Proj) == 0 {
		return p, PlaceElem{}, false
	}
	n := len(p.Proj) - 1
	return p.Prefix(n), p.Proj[n], true
}

// Equal compares places structurally.
func (p Place) Equal(o Place) bool {
	return p.Local == o.Local && slices.Equal(p.Proj, o.Proj)
}

// String renders the place in textual MIR syntax, e.g. `(*_1).0[2 of 4]`.
func (p Place) String() string {
	s := p.Local.String()
	for _, e := range p.Proj {
		switch e.Kind {
		case ProjDeref:
			s = "(*" + s + ")"
		case ProjField:
			s = fmt.Sprintf("%s.%d", s, e.Field)
		case ProjIndex:
			s = fmt.Sprintf("%s[%s]", s, e.Index)
		case ProjConstantIndex:
			if e.FromEnd {
				s = fmt.Sprintf("%s[-%d of %d]", s, e.Offset, e.MinLength)
			} else {
				s = fmt.Sprintf("%s[%d of %d]", s, e.Offset, e.MinLength)
			}
		case ProjSubslice:
			if e.FromEnd {
				s = fmt.Sprintf("%s[%d:-%d]", s, e.From, e.To)
			} else {
				s = fmt.Sprintf("%s[%d..%d]", s, e.From, e.To)
			}
		case ProjDowncast:
			name := e.VariantName
			if name == "" {
				name = fmt.Sprintf("#%d", e.Variant)
			}
			s = "(" + s + " as " + name + ")"
		case ProjOpaqueCast:
			s = "(" + s + " opaque)"
		case ProjSubtype:
			s = "(" + s + " subtype)"
		}
	}
	return s
}

// Key returns a canonical string usable as a map key for structural identity.
func (p Place) Key() string {
	var sb strings.Builder
	sb.WriteString(p.Local.String())
	for _, e := range p.Proj {
		fmt.Fprintf(&sb, "|%d:%d:%d:%d:%d:%d:%d:%d:%t:%d", e.Kind, e.Field, e.Type, e.Index,
			e.Offset, e.MinLength, e.From, e.To, e.FromEnd, e.Variant)
	}
	return sb.String()
}
