package diag

import (
	"fmt"

	"moveck/internal/movepaths"
	"moveck/internal/types"
)

// codeFor maps an illegal move to its diagnostic code.
func codeFor(o *movepaths.IllegalMoveOrigin) Code {
	switch o.Kind {
	case movepaths.BorrowedContent:
		return MovBorrowedContent
	case movepaths.InteriorOfTypeWithDestructor:
		return MovInteriorOfTypeWithDestructor
	case movepaths.InteriorOfSliceOrArray:
		if o.IsIndex {
			return MovIndexedContent
		}
		return MovInteriorOfSlice
	}
	return UnknownCode
}

// ReportIllegalMoves emits one error per illegal move recorded in data.
// Types are rendered through in when it is not nil.
func ReportIllegalMoves(r Reporter, file string, data *movepaths.MoveData, in *types.Interner) {
	if data == nil {
		return
	}
	for i := range data.IllegalMoves {
		im := &data.IllegalMoves[i]
		o := &im.Origin
		pos := At(file, data.Body, o.Location)
		b := ReportError(r, codeFor(o), pos, fmt.Sprintf("%s %s", codeFor(o).Title(), im.Place))
		if !o.Place.Equal(im.Place) {
			b.WithNote(pos, fmt.Sprintf("%s is not movable", o.Place))
		}
		if in != nil {
			b.WithNote(pos, "through a value of type "+types.Label(in, o.Type))
		}
		b.Emit()
	}
}

// FromInternalError describes an analyzer fault in file.
func FromInternalError(file string, ice *movepaths.InternalError) Diagnostic {
	return NewError(IceInternal, At(file, ice.Body, ice.Location), ice.Msg)
}
