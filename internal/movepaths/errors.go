package movepaths

import (
	"errors"
	"fmt"

	"moveck/internal/mir"
	"moveck/internal/types"
)

// ErrUntrackedLocal matches a MoveError whose root local is not tracked.
var ErrUntrackedLocal = errors.New("untracked local")

// MoveErrorKind classifies why a place has no move path of its own.
type MoveErrorKind uint8

const (
	// MoveErrUntrackedLocal: the root local is excluded from tracking.
	MoveErrUntrackedLocal MoveErrorKind = iota
	// MoveErrIllegal: the place cannot be moved out of.
	MoveErrIllegal
	// MoveErrUnion: the place lies inside a union; Path is the union's node.
	MoveErrUnion
)

func (k MoveErrorKind) String() string {
	switch k {
	case MoveErrUntrackedLocal:
		return "untracked_local"
	case MoveErrIllegal:
		return "illegal_move"
	case MoveErrUnion:
		return "union_move"
	default:
		return fmt.Sprintf("MoveErrorKind(%d)", k)
	}
}

// IllegalMoveKind is the reason a move out of a place is rejected.
type IllegalMoveKind uint8

const (
	// BorrowedContent: the place is behind a reference or raw pointer.
	BorrowedContent IllegalMoveKind = iota
	// InteriorOfTypeWithDestructor: the place is a field of a type with a destructor.
	InteriorOfTypeWithDestructor
	// InteriorOfSliceOrArray: the place is an element of a slice, or a
	// dynamically indexed element of an array.
	InteriorOfSliceOrArray
)

func (k IllegalMoveKind) String() string {
	switch k {
	case BorrowedContent:
		return "borrowed_content"
	case InteriorOfTypeWithDestructor:
		return "interior_of_type_with_destructor"
	case InteriorOfSliceOrArray:
		return "interior_of_slice_or_array"
	default:
		return fmt.Sprintf("IllegalMoveKind(%d)", k)
	}
}

// IllegalMoveOrigin describes the projection step that made a move illegal.
type IllegalMoveOrigin struct {
	Location mir.Location
	Kind     IllegalMoveKind
	// Place is the sub-place up to and including the offending projection.
	Place mir.Place
	// Type is the pre-projection type: the pointer, the container with a
	// destructor, or the slice/array.
	Type    types.TypeID
	IsIndex bool
}

// MoveError is the recoverable outcome of resolving a place that has no
// move path of its own.
type MoveError struct {
	Kind   MoveErrorKind
	Path   MovePathIndex // MoveErrUnion
	Origin IllegalMoveOrigin
}

func (e *MoveError) Error() string {
	switch e.Kind {
	case MoveErrUntrackedLocal:
		return ErrUntrackedLocal.Error()
	case MoveErrUnion:
		return fmt.Sprintf("move out of union at path %d", e.Path)
	default:
		o := &e.Origin
		switch o.Kind {
		case BorrowedContent:
			return fmt.Sprintf("%s: cannot move out of %s: borrowed content", o.Location, o.Place)
		case InteriorOfTypeWithDestructor:
			return fmt.Sprintf("%s: cannot move out of %s: type with destructor", o.Location, o.Place)
		default:
			if o.IsIndex {
				return fmt.Sprintf("%s: cannot move out of %s: indexed element", o.Location, o.Place)
			}
			return fmt.Sprintf("%s: cannot move out of %s: slice element", o.Location, o.Place)
		}
	}
}

// Is reports ErrUntrackedLocal for untracked-local errors.
func (e *MoveError) Is(target error) bool {
	return target == ErrUntrackedLocal && e.Kind == MoveErrUntrackedLocal
}

func errUntracked() *MoveError {
	return &MoveError{Kind: MoveErrUntrackedLocal, Path: NoMovePath}
}

// InternalError reports a malformed body: a construct that earlier stages
// must have eliminated, or a projection the classifier has no rule for.
// It is raised with panic and recovered per compilation unit by the driver.
type InternalError struct {
	Body     string
	Location mir.Location
	Msg      string
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal error: %s at %s: %s", e.Body, e.Location, e.Msg)
}

// AsInternalError converts a recovered panic value into an *InternalError.
func AsInternalError(r any) (*InternalError, bool) {
	ice, ok := r.(*InternalError)
	return ice, ok
}
