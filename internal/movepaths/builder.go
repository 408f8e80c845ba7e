package movepaths

import (
	"fmt"
	"strconv"

	"fortio.org/safecast"

	"moveck/internal/mir"
	"moveck/internal/trace"
	"moveck/internal/types"
)

// Options tune a GatherMoves run.
type Options struct {
	// Tracer receives a body span and, at debug level, one point per record.
	Tracer trace.Tracer
	// ParentSpan links the body span to the caller's span.
	ParentSpan uint64
	// Unit labels the body span, usually with the body file path.
	Unit string
}

type builder struct {
	body  *mir.Body
	types *types.Interner
	env   types.ParamEnv
	data  *MoveData

	// loc is the program point being gathered
	loc       mir.Location
	finalized bool

	tracer trace.Tracer
	span   uint64
	debug  bool
}

// GatherMoves builds the move-path forest of body and records every move
// and init in one pass over its blocks. Malformed bodies panic with
// *InternalError.
func GatherMoves(body *mir.Body, in *types.Interner, env types.ParamEnv, opts Options) *MoveData {
	tracer := opts.Tracer
	if tracer == nil {
		tracer = trace.Nop
	}
	span := trace.BeginIn(tracer, trace.ScopeBody, "gather_moves:"+body.Name, opts.ParentSpan, opts.Unit)

	b := newBuilder(body, in, env)
	b.tracer = tracer
	b.span = span.ID()
	b.debug = tracer.Enabled() && tracer.Level() >= trace.LevelDebug

	b.gatherArgs()
	for i := range body.Blocks {
		bb := mir.BlockID(i)
		block := &body.Blocks[i]
		for j := range block.Statements {
			b.loc = mir.Location{Block: bb, Statement: j}
			b.gatherStatement(&block.Statements[j])
		}
		b.loc = body.TerminatorLoc(bb)
		b.gatherTerminator(&block.Term)
	}

	data := b.finalize()
	span.WithExtra("paths", strconv.Itoa(len(data.MovePaths))).
		WithExtra("moves", strconv.Itoa(len(data.Moves))).
		WithExtra("inits", strconv.Itoa(len(data.Inits))).
		End("")
	return data
}

// newBuilder creates one root per local. Deref temps start untracked until
// their CopyForDeref is seen.
func newBuilder(body *mir.Body, in *types.Interner, env types.ParamEnv) *builder {
	b := &builder{
		body:  body,
		types: in,
		env:   env,
		data: &MoveData{
			Body:       body.Name,
			LocMap:     newLocationMap[MoveOutIndex](body),
			InitLocMap: newLocationMap[InitIndex](body),
			RevLookup:  newMovePathLookup(len(body.Locals)),
		},
		tracer: trace.Nop,
	}
	for i := range body.Locals {
		if body.Locals[i].DerefTemp {
			continue
		}
		local := mir.LocalID(i)
		b.data.RevLookup.locals[i] = b.newMovePath(NoMovePath, mir.LocalPlace(local))
	}
	return b
}

func (b *builder) newMovePath(parent MovePathIndex, place mir.Place) MovePathIndex {
	idx := toIndex[MovePathIndex](len(b.data.MovePaths))
	node := MovePath{Place: place, Parent: parent, FirstChild: NoMovePath, NextSibling: NoMovePath}
	if parent != NoMovePath {
		node.NextSibling = b.data.MovePaths[parent].FirstChild
		b.data.MovePaths[parent].FirstChild = idx
	}
	b.data.MovePaths = append(b.data.MovePaths, node)
	b.data.PathMap = append(b.data.PathMap, nil)
	b.data.InitPathMap = append(b.data.InitPathMap, nil)
	return idx
}

// addMovePath returns the child of base for elem, creating it on first use.
func (b *builder) addMovePath(base MovePathIndex, elem mir.PlaceElem, variant int, place mir.Place) MovePathIndex {
	key := lift(base, elem, variant)
	if idx, ok := b.data.RevLookup.projections[key]; ok {
		return idx
	}
	idx := b.newMovePath(base, place)
	b.data.RevLookup.projections[key] = idx
	return idx
}

// movePathFor resolves place to its node, creating nodes along the way.
//
// After the first illegal step the walk goes on without creating nodes so
// that the pre-projection types are still checked; the first illegal step is
// the one reported. Entering a union field stops node creation as well and
// yields MoveErrUnion on the union's node unless an illegal step was seen.
func (b *builder) movePathFor(place mir.Place) (MovePathIndex, *MoveError) {
	b.checkLive()
	lookup := &b.data.RevLookup
	place = lookup.expand(place)

	base, ok := lookup.FindLocal(place.Local)
	if !ok {
		return NoMovePath, errUntracked()
	}

	pt := mir.FromTy(b.body.Locals[place.Local].Type)
	unionPath := NoMovePath
	var illegal *MoveError
	variant := mir.NoVariant

	for i, elem := range place.Proj {
		st, err := classify(b.types, pt.Ty, elem)
		if err != nil {
			b.bug("%s: %v", place, err)
		}
		switch st.kind {
		case stepIllegal:
			if illegal == nil {
				illegal = &MoveError{
					Kind: MoveErrIllegal,
					Path: NoMovePath,
					Origin: IllegalMoveOrigin{
						Location: b.loc,
						Kind:     st.illegal,
						Place:    place.Prefix(i + 1),
						Type:     pt.Ty,
						IsIndex:  st.isIndex,
					},
				}
			}
		case stepEnterUnion:
			if illegal == nil && unionPath == NoMovePath {
				unionPath = base
			}
		}

		next, err := pt.Project(b.types, elem)
		if err != nil {
			b.bug("%s: %v", place, err)
		}
		pt = next

		if illegal != nil || unionPath != NoMovePath {
			continue
		}
		if elem.Kind == mir.ProjDowncast {
			variant = elem.Variant
			continue
		}
		if !createsNode(elem.Kind) {
			continue
		}
		base = b.addMovePath(base, elem, variant, place.Prefix(i+1))
		variant = mir.NoVariant
	}

	if illegal != nil {
		return NoMovePath, illegal
	}
	if unionPath != NoMovePath {
		return NoMovePath, &MoveError{Kind: MoveErrUnion, Path: unionPath}
	}
	return base, nil
}

// createMovePath registers place for a non-moving access such as an
// overwrite. Places that cannot be move paths are fine here.
func (b *builder) createMovePath(place mir.Place) {
	_, _ = b.movePathFor(place)
}

// finalize hands the data over. The builder is unusable afterwards.
func (b *builder) finalize() *MoveData {
	b.checkLive()
	b.finalized = true
	data := b.data
	b.data = nil

	if b.debug {
		for i := range data.MovePaths {
			p := &data.MovePaths[i]
			trace.Point(b.tracer, trace.ScopeNode, "path", b.span,
				fmt.Sprintf("mp%d = %s parent=%s", i, p.Place, pathName(p.Parent)))
		}
	}
	return data
}

func (b *builder) checkLive() {
	if b.finalized {
		panic("movepaths: builder used after finalize")
	}
}

func (b *builder) bug(format string, args ...any) {
	panic(&InternalError{Body: b.body.Name, Location: b.loc, Msg: fmt.Sprintf(format, args...)})
}

func toIndex[T ~int32](n int) T {
	v, err := safecast.Conv[int32](n)
	if err != nil {
		panic(fmt.Errorf("movepaths: index overflow: %w", err))
	}
	return T(v)
}
