package movepaths

import (
	"fmt"
	"io"
	"strconv"

	"github.com/mattn/go-runewidth"

	"moveck/internal/mir"
)

type (
	MovePathIndex int32
	MoveOutIndex  int32
	InitIndex     int32
)

// NoMovePath marks an absent parent, child or sibling link.
const NoMovePath MovePathIndex = -1

// MovePath is one node of the move-path forest. Links are arena indices;
// siblings form an intrusive list headed by the parent's FirstChild.
type MovePath struct {
	Place       mir.Place
	Parent      MovePathIndex
	FirstChild  MovePathIndex
	NextSibling MovePathIndex
}

// MoveOut records that Path was moved out at Source.
type MoveOut struct {
	Path   MovePathIndex
	Source mir.Location
}

// InitKind says how much of a path an init covers.
type InitKind uint8

const (
	// InitKindDeep initializes the path and everything beneath it.
	InitKindDeep InitKind = iota
	// InitKindShallow initializes only the path itself.
	InitKindShallow
	// InitKindNonPanicPathOnly initializes along the normal return edge only.
	InitKindNonPanicPathOnly
)

func (k InitKind) String() string {
	switch k {
	case InitKindDeep:
		return "deep"
	case InitKindShallow:
		return "shallow"
	case InitKindNonPanicPathOnly:
		return "non_panic_path_only"
	default:
		return fmt.Sprintf("InitKind(%d)", k)
	}
}

// InitLocationKind distinguishes argument inits from statement inits.
type InitLocationKind uint8

const (
	InitLocArgument InitLocationKind = iota
	InitLocStatement
)

// InitLocation is either a function argument or a program point.
type InitLocation struct {
	Kind     InitLocationKind
	Local    mir.LocalID  // InitLocArgument
	Location mir.Location // InitLocStatement
}

func (l InitLocation) String() string {
	if l.Kind == InitLocArgument {
		return "arg " + l.Local.String()
	}
	return l.Location.String()
}

// Init records that Path became initialized.
type Init struct {
	Path     MovePathIndex
	Location InitLocation
	Kind     InitKind
}

// IllegalMove is a move site whose operand cannot be moved out of.
type IllegalMove struct {
	Place  mir.Place
	Origin IllegalMoveOrigin
}

// LocationMap keeps a list of T per program point. The terminator of a
// block sits at index len(statements).
type LocationMap[T any] struct {
	blocks [][][]T
}

func newLocationMap[T any](body *mir.Body) LocationMap[T] {
	m := LocationMap[T]{blocks: make([][][]T, len(body.Blocks))}
	for i := range body.Blocks {
		m.blocks[i] = make([][]T, len(body.Blocks[i].Statements)+1)
	}
	return m
}

// At returns the entries recorded at loc.
func (m *LocationMap[T]) At(loc mir.Location) []T {
	if loc.Block < 0 || int(loc.Block) >= len(m.blocks) {
		return nil
	}
	stmts := m.blocks[loc.Block]
	if loc.Statement < 0 || loc.Statement >= len(stmts) {
		return nil
	}
	return stmts[loc.Statement]
}

func (m *LocationMap[T]) push(loc mir.Location, v T) {
	m.blocks[loc.Block][loc.Statement] = append(m.blocks[loc.Block][loc.Statement], v)
}

// MoveData is the result of GatherMoves. It is immutable once returned and
// may be shared between goroutines.
type MoveData struct {
	Body string

	MovePaths []MovePath
	Moves     []MoveOut
	// LocMap lists the moves at each location.
	LocMap LocationMap[MoveOutIndex]
	// PathMap lists the moves of each path.
	PathMap   [][]MoveOutIndex
	RevLookup MovePathLookup

	Inits       []Init
	InitLocMap  LocationMap[InitIndex]
	InitPathMap [][]InitIndex

	// IllegalMoves lists move operands that were rejected, in program order.
	IllegalMoves []IllegalMove
}

// Path returns the node at idx.
func (d *MoveData) Path(idx MovePathIndex) *MovePath {
	return &d.MovePaths[idx]
}

// Children lists the direct children of idx, most recently created first.
// Callers must not depend on the order.
func (d *MoveData) Children(idx MovePathIndex) []MovePathIndex {
	var out []MovePathIndex
	for c := d.MovePaths[idx].FirstChild; c != NoMovePath; c = d.MovePaths[c].NextSibling {
		out = append(out, c)
	}
	return out
}

// Parents lists the ancestors of idx from the immediate parent up to the root.
func (d *MoveData) Parents(idx MovePathIndex) []MovePathIndex {
	var out []MovePathIndex
	for p := d.MovePaths[idx].Parent; p != NoMovePath; p = d.MovePaths[p].Parent {
		out = append(out, p)
	}
	return out
}

// Roots lists every node without a parent, in creation order.
func (d *MoveData) Roots() []MovePathIndex {
	var out []MovePathIndex
	for i := range d.MovePaths {
		if d.MovePaths[i].Parent == NoMovePath {
			out = append(out, MovePathIndex(i))
		}
	}
	return out
}

// BaseLocal returns the local at the root of idx's tree.
func (d *MoveData) BaseLocal(idx MovePathIndex) mir.LocalID {
	for d.MovePaths[idx].Parent != NoMovePath {
		idx = d.MovePaths[idx].Parent
	}
	return d.MovePaths[idx].Place.Local
}

// FindInMovePathOrItsDescendants returns the first node in the subtree of
// root, root included, for which pred holds.
func (d *MoveData) FindInMovePathOrItsDescendants(root MovePathIndex, pred func(MovePathIndex) bool) (MovePathIndex, bool) {
	if pred(root) {
		return root, true
	}
	stack := []MovePathIndex{}
	if first := d.MovePaths[root].FirstChild; first != NoMovePath {
		stack = append(stack, first)
	}
	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if pred(idx) {
			return idx, true
		}
		node := &d.MovePaths[idx]
		if node.NextSibling != NoMovePath {
			stack = append(stack, node.NextSibling)
		}
		if node.FirstChild != NoMovePath {
			stack = append(stack, node.FirstChild)
		}
	}
	return NoMovePath, false
}

// MovesAt returns the moves recorded at loc.
func (d *MoveData) MovesAt(loc mir.Location) []MoveOut {
	idxs := d.LocMap.At(loc)
	out := make([]MoveOut, len(idxs))
	for i, m := range idxs {
		out[i] = d.Moves[m]
	}
	return out
}

// InitsAt returns the inits recorded at loc.
func (d *MoveData) InitsAt(loc mir.Location) []Init {
	idxs := d.InitLocMap.At(loc)
	out := make([]Init, len(idxs))
	for i, n := range idxs {
		out[i] = d.Inits[n]
	}
	return out
}

// MovesOf returns the moves of path and every path beneath it.
func (d *MoveData) MovesOf(path MovePathIndex) []MoveOut {
	var out []MoveOut
	d.FindInMovePathOrItsDescendants(path, func(idx MovePathIndex) bool {
		for _, m := range d.PathMap[idx] {
			out = append(out, d.Moves[m])
		}
		return false
	})
	return out
}

// InitsOf returns the inits of path and every path beneath it.
func (d *MoveData) InitsOf(path MovePathIndex) []Init {
	var out []Init
	d.FindInMovePathOrItsDescendants(path, func(idx MovePathIndex) bool {
		for _, n := range d.InitPathMap[idx] {
			out = append(out, d.Inits[n])
		}
		return false
	})
	return out
}

// Find looks up the move path of place.
func (d *MoveData) Find(place mir.Place) LookupResult {
	return d.RevLookup.Find(place)
}

// Dump writes the paths, moves and inits as aligned columns. It stops
// writing at the first error from w and returns it.
func (d *MoveData) Dump(w io.Writer) error {
	dw := &dumpWriter{w: w}
	dw.printf("move data for %s:\n", d.Body)

	width := 0
	for i := range d.MovePaths {
		width = max(width, runewidth.StringWidth(d.MovePaths[i].Place.String()))
	}

	dw.printf("  paths:\n")
	for i := range d.MovePaths {
		p := &d.MovePaths[i]
		dw.printf("    mp%-3d %s parent=%s\n",
			i, runewidth.FillRight(p.Place.String(), width), pathName(p.Parent))
	}

	dw.printf("  moves:\n")
	for i, m := range d.Moves {
		dw.printf("    mo%-3d %-8s %s\n", i, m.Source, d.MovePaths[m.Path].Place)
	}

	dw.printf("  inits:\n")
	for i, n := range d.Inits {
		dw.printf("    in%-3d %-8s %s %s\n", i, n.Location, runewidth.FillRight(d.MovePaths[n.Path].Place.String(), width), n.Kind)
	}

	if len(d.IllegalMoves) > 0 {
		dw.printf("  illegal moves:\n")
		for _, im := range d.IllegalMoves {
			dw.printf("    %-8s %s (%s)\n", im.Origin.Location, im.Place, im.Origin.Kind)
		}
	}
	return dw.err
}

// dumpWriter keeps the first write error; later writes are dropped.
type dumpWriter struct {
	w   io.Writer
	err error
}

func (dw *dumpWriter) printf(format string, args ...any) {
	if dw.err != nil {
		return
	}
	_, dw.err = fmt.Fprintf(dw.w, format, args...)
}

func pathName(idx MovePathIndex) string {
	if idx == NoMovePath {
		return "-"
	}
	return "mp" + strconv.Itoa(int(idx))
}
