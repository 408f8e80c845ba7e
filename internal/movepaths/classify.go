package movepaths

import (
	"fmt"

	"moveck/internal/mir"
	"moveck/internal/types"
)

type stepKind uint8

const (
	stepLegal stepKind = iota
	stepIllegal
	stepEnterUnion
)

type step struct {
	kind    stepKind
	illegal IllegalMoveKind
	isIndex bool
}

// classify decides whether moving through elem out of a value of type ty
// can be tracked. An error means the body is malformed.
func classify(in *types.Interner, ty types.TypeID, elem mir.PlaceElem) (step, error) {
	tt, ok := in.Lookup(ty)
	if !ok {
		return step{}, fmt.Errorf("unknown type %d", ty)
	}
	switch elem.Kind {
	case mir.ProjDeref:
		switch {
		case tt.Kind == types.KindReference || tt.Kind == types.KindPointer:
			return step{kind: stepIllegal, illegal: BorrowedContent}, nil
		case in.IsBox(ty):
			return step{kind: stepLegal}, nil
		}
	case mir.ProjField:
		switch tt.Kind {
		case types.KindAdt:
			if in.HasDestructor(ty) {
				return step{kind: stepIllegal, illegal: InteriorOfTypeWithDestructor}, nil
			}
			if in.IsUnion(ty) {
				return step{kind: stepEnterUnion}, nil
			}
			return step{kind: stepLegal}, nil
		case types.KindClosure, types.KindCoroutine, types.KindTuple:
			return step{kind: stepLegal}, nil
		}
	case mir.ProjConstantIndex, mir.ProjSubslice:
		switch tt.Kind {
		case types.KindSlice:
			return step{kind: stepIllegal, illegal: InteriorOfSliceOrArray}, nil
		case types.KindArray:
			return step{kind: stepLegal}, nil
		}
	case mir.ProjIndex:
		if tt.Kind == types.KindArray || tt.Kind == types.KindSlice {
			return step{kind: stepIllegal, illegal: InteriorOfSliceOrArray, isIndex: true}, nil
		}
	case mir.ProjDowncast, mir.ProjOpaqueCast, mir.ProjSubtype:
		return step{kind: stepLegal}, nil
	}
	return step{}, fmt.Errorf("no move rule for %s of %s", elem.Kind, types.Label(in, ty))
}
