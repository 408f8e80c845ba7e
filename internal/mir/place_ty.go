package mir

import (
	"fmt"

	"moveck/internal/types"
)

// NoVariant marks a PlaceTy that has not been downcast.
const NoVariant = -1

// PlaceTy is the type of a place, plus the selected variant when the place
// was produced by a downcast.
type PlaceTy struct {
	Ty      types.TypeID
	Variant int
}

// FromTy wraps a plain type.
func FromTy(ty types.TypeID) PlaceTy {
	return PlaceTy{Ty: ty, Variant: NoVariant}
}

// Project computes the type after applying elem.
func (pt PlaceTy) Project(in *types.Interner, elem PlaceElem) (PlaceTy, error) {
	tt, ok := in.Lookup(pt.Ty)
	if !ok {
		return PlaceTy{}, fmt.Errorf("unknown type %d", pt.Ty)
	}
	switch elem.Kind {
	case ProjDeref:
		switch {
		case tt.Kind == types.KindReference || tt.Kind == types.KindPointer:
			return FromTy(tt.Elem), nil
		case in.IsBox(pt.Ty):
			return FromTy(tt.Elem), nil
		}
		return PlaceTy{}, fmt.Errorf("deref of non-pointer type %s", types.Label(in, pt.Ty))
	case ProjField:
		if elem.Type != types.NoTypeID {
			return FromTy(elem.Type), nil
		}
		ft, ok := in.FieldType(pt.Ty, pt.Variant, elem.Field)
		if !ok {
			return PlaceTy{}, fmt.Errorf("no field %d on %s", elem.Field, types.Label(in, pt.Ty))
		}
		return FromTy(ft), nil
	case ProjIndex, ProjConstantIndex:
		if tt.Kind == types.KindArray || tt.Kind == types.KindSlice {
			return FromTy(tt.Elem), nil
		}
		return PlaceTy{}, fmt.Errorf("index of non-array type %s", types.Label(in, pt.Ty))
	case ProjSubslice:
		switch tt.Kind {
		case types.KindSlice:
			return pt, nil
		case types.KindArray:
			if elem.FromEnd {
				_, length, _ := in.ArrayInfo(pt.Ty)
				if length.Symbolic() || elem.From+elem.To > length.Count {
					return FromTy(in.Intern(types.MakeSlice(tt.Elem))), nil
				}
				return FromTy(in.Intern(types.MakeArray(tt.Elem, length.Count-elem.From-elem.To))), nil
			}
			if elem.To < elem.From {
				return PlaceTy{}, fmt.Errorf("subslice %d..%d is reversed", elem.From, elem.To)
			}
			return FromTy(in.Intern(types.MakeArray(tt.Elem, elem.To-elem.From))), nil
		}
		return PlaceTy{}, fmt.Errorf("subslice of non-array type %s", types.Label(in, pt.Ty))
	case ProjDowncast:
		return PlaceTy{Ty: pt.Ty, Variant: elem.Variant}, nil
	case ProjOpaqueCast, ProjSubtype:
		if elem.Type == types.NoTypeID {
			return pt, nil
		}
		return FromTy(elem.Type), nil
	}
	return PlaceTy{}, fmt.Errorf("unknown projection %s", elem.Kind)
}

// PlaceTy computes the type of place.
func (b *Body) PlaceTy(in *types.Interner, place Place) (PlaceTy, error) {
	l, ok := b.Local(place.Local)
	if !ok {
		return PlaceTy{}, fmt.Errorf("local %s does not exist", place.Local)
	}
	pt := FromTy(l.Type)
	for i, elem := range place.Proj {
		next, err := pt.Project(in, elem)
		if err != nil {
			return PlaceTy{}, fmt.Errorf("%s: projection %d: %w", place, i, err)
		}
		pt = next
	}
	return pt, nil
}
