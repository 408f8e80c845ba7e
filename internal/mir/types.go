package mir

import (
	"fmt"

	"moveck/internal/types"
)

type BlockID int32
type LocalID int32

const (
	NoBlockID BlockID = -1
	NoLocalID LocalID = -1
)

// ReturnPlace is the local holding the function result.
const ReturnPlace LocalID = 0

func (b BlockID) String() string {
	if b == NoBlockID {
		return "bb?"
	}
	return fmt.Sprintf("bb%d", int32(b))
}

func (l LocalID) String() string {
	if l == NoLocalID {
		return "_?"
	}
	return fmt.Sprintf("_%d", int32(l))
}

// Local describes one storage slot of a body.
type Local struct {
	Name string
	Type types.TypeID

	// DerefTemp marks temporaries introduced to cache a dereference
	// (assigned only by CopyForDeref). They never own storage.
	DerefTemp bool
}

// Location identifies a program point: a statement index inside a block.
// The terminator of a block sits at index len(Statements).
type Location struct {
	Block     BlockID
	Statement int
}

func (l Location) String() string {
	return fmt.Sprintf("%s[%d]", l.Block, l.Statement)
}

// Successor returns the location of the next statement in the same block.
func (l Location) Successor() Location {
	return Location{Block: l.Block, Statement: l.Statement + 1}
}
