package movepaths

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moveck/internal/mir"
	"moveck/internal/trace"
	"moveck/internal/types"
)

func local(ty types.TypeID) mir.Local { return mir.Local{Type: ty} }

func derefTemp(ty types.TypeID) mir.Local { return mir.Local{Type: ty, DerefTemp: true} }

func ret() mir.Terminator { return mir.Terminator{Kind: mir.TermReturn} }

// body builds bb0 {stmts; term}, bb1 {return} and bb2 {resume}.
func body(argc int, locals []mir.Local, term mir.Terminator, stmts ...mir.Statement) *mir.Body {
	return &mir.Body{
		Name:     "test",
		ArgCount: argc,
		Locals:   locals,
		Blocks: []mir.Block{
			{Statements: stmts, Term: term},
			{Term: ret()},
			{Term: mir.Terminator{Kind: mir.TermUnwindResume}},
		},
	}
}

func moveOf(p mir.Place) mir.RValue { return mir.Use(mir.Move(p)) }

func place(l mir.LocalID, elems ...mir.PlaceElem) mir.Place {
	return mir.LocalPlace(l).Project(elems...)
}

func field(i int) mir.PlaceElem { return mir.Field(i, types.NoTypeID) }

func gather(t *testing.T, b *mir.Body, in *types.Interner) *MoveData {
	t.Helper()
	return GatherMoves(b, in, types.ParamEnv{}, Options{})
}

func requireExact(t *testing.T, d *MoveData, p mir.Place) MovePathIndex {
	t.Helper()
	res := d.Find(p)
	require.Equal(t, LookupExact, res.Kind, "no exact path for %s", p)
	return res.Path
}

// checkForest verifies the tree links: acyclic, one parent per non-root,
// and each node is listed exactly once among its parent's children.
func checkForest(t *testing.T, d *MoveData) {
	t.Helper()
	seen := make(map[MovePathIndex]int)
	for _, root := range d.Roots() {
		stack := []MovePathIndex{root}
		for len(stack) > 0 {
			idx := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			seen[idx]++
			require.LessOrEqual(t, seen[idx], 1, "node mp%d reached twice", idx)
			for _, c := range d.Children(idx) {
				require.Equal(t, idx, d.Path(c).Parent)
				stack = append(stack, c)
			}
		}
	}
	require.Len(t, seen, len(d.MovePaths), "every node must be reachable from a root")
}

func TestRootsPerLocal(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	ref := in.Intern(types.MakeReference(b.Int, false))
	bd := body(1, []mir.Local{local(b.Int), local(ref), derefTemp(ref), local(b.Bool)}, ret())

	d := gather(t, bd, in)
	require.Len(t, d.MovePaths, 3)
	assert.Equal(t, []MovePathIndex{0, 1, 2}, d.Roots())

	for _, l := range []mir.LocalID{0, 1, 3} {
		idx, ok := d.RevLookup.FindLocal(l)
		require.True(t, ok)
		assert.Equal(t, l, d.BaseLocal(idx))
	}
	_, ok := d.RevLookup.FindLocal(2)
	assert.False(t, ok, "deref temps start untracked")

	// argument gets a deep init at its argument location
	require.Len(t, d.Inits, 1)
	assert.Equal(t, Init{Path: 1, Location: InitLocation{Kind: InitLocArgument, Local: 1}, Kind: InitKindDeep}, d.Inits[0])
	assert.Empty(t, d.InitLocMap.At(mir.Location{Block: 0, Statement: 0}))
}

func TestMovePathMemoized(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	inner := in.Tuple(b.Int, b.Str)
	outer := in.Tuple(inner, b.Bool)
	bd := body(0, []mir.Local{local(b.Unit), local(outer)}, ret())

	bl := newBuilder(bd, in, types.ParamEnv{})
	p := place(1, field(0), field(1))
	first, err := bl.movePathFor(p)
	require.Nil(t, err)
	second, err := bl.movePathFor(place(1, field(0), field(1)))
	require.Nil(t, err)
	assert.Equal(t, first, second)

	sibling, err := bl.movePathFor(place(1, field(0), field(0)))
	require.Nil(t, err)
	assert.NotEqual(t, first, sibling)

	d := bl.finalize()
	// _0, _1, _1.0, _1.0.1, _1.0.0
	require.Len(t, d.MovePaths, 5)
	assert.Equal(t, d.Path(first).Parent, d.Path(sibling).Parent)
	assert.Equal(t, first, requireExact(t, d, p))
	// head insertion: the newest child comes first
	assert.Equal(t, []MovePathIndex{sibling, first}, d.Children(d.Path(first).Parent))
	checkForest(t, d)
}

func TestFinalizeIsOneShot(t *testing.T) {
	in := types.NewInterner()
	bd := body(0, []mir.Local{local(in.Builtins().Unit)}, ret())
	bl := newBuilder(bd, in, types.ParamEnv{})
	bl.finalize()
	assert.Panics(t, func() { bl.finalize() })
	assert.Panics(t, func() { _, _ = bl.movePathFor(mir.LocalPlace(0)) })
}

func TestSubsliceMoveSplitsIntoElements(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	boxed := in.Box(b.Int)
	arr := in.Intern(types.MakeArray(boxed, 5))
	sub := in.Intern(types.MakeArray(boxed, 2))
	bd := body(0, []mir.Local{local(b.Unit), local(arr), local(sub)}, ret(),
		mir.Assign(mir.LocalPlace(2), moveOf(place(1, mir.Subslice(0, 2, false)))),
	)

	d := gather(t, bd, in)
	loc := mir.Location{Block: 0, Statement: 0}
	moves := d.MovesAt(loc)
	require.Len(t, moves, 2)

	root, _ := d.RevLookup.FindLocal(1)
	for i, m := range moves {
		p := d.Path(m.Path)
		assert.Equal(t, root, p.Parent)
		assert.Equal(t, loc, m.Source)
		assert.Equal(t, place(1, mir.ConstantIndex(uint64(i), 5, false)).String(), p.Place.String())
	}
	assert.NotEqual(t, moves[0].Path, moves[1].Path)
	// no node for the subslice itself
	assert.Equal(t, LookupParent, d.Find(place(1, mir.Subslice(0, 2, false))).Kind)
	checkForest(t, d)
}

func TestSubsliceMoveSymbolicLength(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	arr := in.ArrayParam(b.Str, "N")
	bd := body(0, []mir.Local{local(b.Unit), local(arr), local(arr)}, ret(),
		mir.Assign(mir.LocalPlace(2), moveOf(place(1, mir.Subslice(1, 4, false)))),
	)

	d := GatherMoves(bd, in, types.NewParamEnv(map[string]uint64{"N": 6}), Options{})
	moves := d.MovesAt(mir.Location{Block: 0, Statement: 0})
	require.Len(t, moves, 3)
	assert.Equal(t, "_1[1 of 6]", d.Path(moves[0].Path).Place.String())
	assert.Equal(t, "_1[3 of 6]", d.Path(moves[2].Path).Place.String())

	assert.Panics(t, func() { gather(t, bd, in) }, "unbound length is a malformed body")
}

func TestUnionFieldsMoveWholeUnion(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	u := in.RegisterAdt("U", types.AdtUnion, false)
	in.SetAdtVariants(u, []types.VariantInfo{{Fields: []types.TypeID{b.Int, b.Float}}})
	bd := body(0, []mir.Local{local(b.Unit), local(u), local(b.Int), local(b.Float)}, ret(),
		mir.Assign(mir.LocalPlace(2), moveOf(place(1, field(0)))),
		mir.Assign(mir.LocalPlace(3), moveOf(place(1, field(1)))),
		mir.Assign(place(1, field(0)), mir.Use(mir.Constant(b.Int, "1"))),
	)

	d := gather(t, bd, in)
	root, _ := d.RevLookup.FindLocal(1)
	first := d.MovesAt(mir.Location{Block: 0, Statement: 0})
	second := d.MovesAt(mir.Location{Block: 0, Statement: 1})
	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, root, first[0].Path)
	assert.Equal(t, root, second[0].Path)
	assert.Empty(t, d.Children(root), "union members get no nodes")

	// assigning a union field re-initializes the union
	inits := d.InitsAt(mir.Location{Block: 0, Statement: 2})
	require.Len(t, inits, 1)
	assert.Equal(t, root, inits[0].Path)
	assert.Equal(t, InitKindDeep, inits[0].Kind)
}

func TestIllegalWinsOverUnion(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	ref := in.Intern(types.MakeReference(in.Box(b.Int), false))
	u := in.RegisterAdt("U", types.AdtUnion, false)
	in.SetAdtVariants(u, []types.VariantInfo{{Fields: []types.TypeID{ref}}})
	bd := body(0, []mir.Local{local(b.Unit), local(u)}, ret())

	bl := newBuilder(bd, in, types.ParamEnv{})
	_, err := bl.movePathFor(place(1, field(0), mir.Deref()))
	require.NotNil(t, err)
	assert.Equal(t, MoveErrIllegal, err.Kind)
	assert.Equal(t, BorrowedContent, err.Origin.Kind)
	assert.Equal(t, "(*_1.0)", err.Origin.Place.String())

	_, err = bl.movePathFor(place(1, field(0)))
	require.NotNil(t, err)
	assert.Equal(t, MoveErrUnion, err.Kind)
	assert.Equal(t, MovePathIndex(1), err.Path)
}

func TestDerefLegality(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	ref := in.Intern(types.MakeReference(b.Str, true))
	ptr := in.Intern(types.MakePointer(b.Str, false))
	boxRef := in.Box(ref)
	boxBox := in.Box(in.Box(b.Str))
	bd := body(0, []mir.Local{local(b.Unit), local(ref), local(ptr), local(boxRef), local(boxBox)}, ret())

	tests := []struct {
		name    string
		place   mir.Place
		illegal bool
		origin  string
	}{
		{"reference", place(1, mir.Deref()), true, "(*_1)"},
		{"raw_pointer", place(2, mir.Deref()), true, "(*_2)"},
		{"reference_in_box", place(3, mir.Deref(), mir.Deref()), true, "(*(*_3))"},
		{"box", place(3, mir.Deref()), false, ""},
		{"box_in_box", place(4, mir.Deref(), mir.Deref()), false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bl := newBuilder(bd, in, types.ParamEnv{})
			_, err := bl.movePathFor(tt.place)
			if !tt.illegal {
				assert.Nil(t, err)
				return
			}
			require.NotNil(t, err)
			assert.Equal(t, MoveErrIllegal, err.Kind)
			assert.Equal(t, BorrowedContent, err.Origin.Kind)
			assert.Equal(t, tt.origin, err.Origin.Place.String())
		})
	}
}

func TestIllegalMovesCollected(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	boxed := in.Box(b.Int)
	guard := in.RegisterAdt("Guard", types.AdtStruct, true)
	in.SetAdtVariants(guard, []types.VariantInfo{{Fields: []types.TypeID{boxed}}})
	slice := in.Intern(types.MakeSlice(boxed))
	sliceRef := in.Intern(types.MakeReference(slice, false))
	arr := in.Intern(types.MakeArray(boxed, 3))
	bd := body(0, []mir.Local{
		local(b.Unit), local(guard), local(sliceRef), local(arr), local(b.Usize), local(boxed),
	}, ret(),
		mir.Assign(mir.LocalPlace(5), moveOf(place(1, field(0)))),
		mir.Assign(mir.LocalPlace(5), moveOf(place(3, mir.Index(4)))),
		mir.Assign(mir.LocalPlace(5), moveOf(place(3, mir.ConstantIndex(1, 3, false)))),
	)

	d := gather(t, bd, in)
	require.Len(t, d.IllegalMoves, 2)

	dtor := d.IllegalMoves[0]
	assert.Equal(t, InteriorOfTypeWithDestructor, dtor.Origin.Kind)
	assert.Equal(t, guard, dtor.Origin.Type)
	assert.Equal(t, "_1.0", dtor.Place.String())

	index := d.IllegalMoves[1]
	assert.Equal(t, InteriorOfSliceOrArray, index.Origin.Kind)
	assert.True(t, index.Origin.IsIndex)
	assert.Equal(t, mir.Location{Block: 0, Statement: 1}, index.Origin.Location)

	// constant index into an array is tracked
	assert.Empty(t, d.MovesAt(mir.Location{Block: 0, Statement: 0}))
	assert.Empty(t, d.MovesAt(mir.Location{Block: 0, Statement: 1}))
	require.Len(t, d.MovesAt(mir.Location{Block: 0, Statement: 2}), 1)

	bl := newBuilder(bd, in, types.ParamEnv{})
	_, err := bl.movePathFor(place(2, mir.Deref(), mir.ConstantIndex(0, 1, false)))
	require.NotNil(t, err)
	assert.Equal(t, BorrowedContent, err.Origin.Kind, "the outermost problem is kept")
}

func TestNoNodesBelowIllegalStep(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	pair := in.RegisterAdt("Pair", types.AdtStruct, false)
	in.SetAdtVariants(pair, []types.VariantInfo{{Fields: []types.TypeID{b.Str, b.Str}}})
	pairRef := in.Intern(types.MakeReference(pair, false))
	bd := body(1, []mir.Local{local(b.Unit), local(pairRef), local(b.Str)}, ret(),
		mir.Assign(mir.LocalPlace(2), moveOf(place(1, mir.Deref(), field(0)))),
	)

	bl := newBuilder(bd, in, types.ParamEnv{})
	before := len(bl.data.MovePaths)
	_, err := bl.movePathFor(place(1, mir.Deref(), field(0)))
	require.NotNil(t, err)
	assert.Equal(t, BorrowedContent, err.Origin.Kind)
	assert.Len(t, bl.data.MovePaths, before, "an illegal walk must not grow the tree")

	d := gather(t, bd, in)
	assert.Len(t, d.MovePaths, len(bd.Locals))
	require.Len(t, d.IllegalMoves, 1)
	root := requireExact(t, d, mir.LocalPlace(1))
	for _, p := range []mir.Place{place(1, mir.Deref()), place(1, mir.Deref(), field(0))} {
		res := d.Find(p)
		assert.Equal(t, LookupParent, res.Kind, "%s", p)
		assert.Equal(t, root, res.Path, "%s", p)
	}
	assert.Empty(t, d.Children(root))
	checkForest(t, d)
}

func TestSliceElementIllegal(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	slice := in.Intern(types.MakeSlice(b.Str))
	bd := body(0, []mir.Local{local(b.Unit), local(in.Box(slice))}, ret())

	bl := newBuilder(bd, in, types.ParamEnv{})
	_, err := bl.movePathFor(place(1, mir.Deref(), mir.ConstantIndex(0, 1, false)))
	require.NotNil(t, err)
	assert.Equal(t, InteriorOfSliceOrArray, err.Origin.Kind)
	assert.False(t, err.Origin.IsIndex)
	assert.Equal(t, slice, err.Origin.Type)

	_, err = bl.movePathFor(place(1, mir.Deref(), mir.Index(0)))
	require.NotNil(t, err)
	assert.True(t, err.Origin.IsIndex)
}

func TestStorageDead(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	boxed := in.Box(in.Box(b.Int))
	bd := body(0, []mir.Local{local(b.Unit), local(boxed), derefTemp(boxed)}, ret(),
		mir.Assign(mir.LocalPlace(2), mir.RValue{Kind: mir.RValueCopyForDeref, Place: mir.LocalPlace(1)}),
		mir.StorageDead(2),
		mir.StorageDead(1),
	)

	d := gather(t, bd, in)
	assert.Empty(t, d.MovesAt(mir.Location{Block: 0, Statement: 1}), "deref temps own no storage")
	moves := d.MovesAt(mir.Location{Block: 0, Statement: 2})
	require.Len(t, moves, 1)
	root, _ := d.RevLookup.FindLocal(1)
	assert.Equal(t, root, moves[0].Path)
}

func TestDerefTempAliasesBase(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	innerBox := in.Box(b.Int)
	outer := in.Box(in.Tuple(innerBox, b.Int))
	bd := body(0, []mir.Local{local(b.Int), local(outer), derefTemp(innerBox)}, ret(),
		mir.Assign(mir.LocalPlace(2), mir.RValue{Kind: mir.RValueCopyForDeref, Place: place(1, mir.Deref(), field(0))}),
		mir.Assign(mir.LocalPlace(0), moveOf(place(2, mir.Deref()))),
	)

	d := gather(t, bd, in)
	root1, _ := d.RevLookup.FindLocal(1)
	root2, ok := d.RevLookup.FindLocal(2)
	require.True(t, ok)
	assert.Equal(t, root1, root2)

	alias, ok := d.RevLookup.DerefAlias(2)
	require.True(t, ok)
	assert.Equal(t, "(*_1).0", alias.String())

	moves := d.MovesAt(mir.Location{Block: 0, Statement: 1})
	require.Len(t, moves, 1)
	assert.Equal(t, "(*(*_1).0)", d.Path(moves[0].Path).Place.String())
	assert.Equal(t, mir.LocalID(1), d.BaseLocal(moves[0].Path))
	assert.Equal(t, moves[0].Path, requireExact(t, d, place(2, mir.Deref())))
	checkForest(t, d)
}

func TestDowncastKeepsVariantsApart(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	boxed := in.Box(b.Int)
	e := in.RegisterAdt("E", types.AdtEnum, false)
	in.SetAdtVariants(e, []types.VariantInfo{
		{Name: "A", Fields: []types.TypeID{boxed}},
		{Name: "B", Fields: []types.TypeID{boxed}},
	})
	bd := body(0, []mir.Local{local(b.Unit), local(e), local(boxed)}, ret(),
		mir.Assign(mir.LocalPlace(2), moveOf(place(1, mir.Downcast(0, "A"), field(0)))),
		mir.Assign(mir.LocalPlace(2), moveOf(place(1, mir.Downcast(1, "B"), field(0)))),
	)

	d := gather(t, bd, in)
	a := d.MovesAt(mir.Location{Block: 0, Statement: 0})
	bm := d.MovesAt(mir.Location{Block: 0, Statement: 1})
	require.Len(t, a, 1)
	require.Len(t, bm, 1)
	assert.NotEqual(t, a[0].Path, bm[0].Path)

	root, _ := d.RevLookup.FindLocal(1)
	assert.Equal(t, root, d.Path(a[0].Path).Parent, "downcast creates no node")
	assert.Equal(t, a[0].Path, requireExact(t, d, place(1, mir.Downcast(0, "A"), field(0))))
	assert.Equal(t, root, requireExact(t, d, place(1, mir.Downcast(1, "B"))))
}

func TestCallInitsDestinationOnReturnEdge(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	boxed := in.Box(b.Int)
	locals := []mir.Local{local(b.Unit), local(boxed), local(boxed), local(in.FnPtr())}

	call := func(target mir.BlockID) mir.Terminator {
		return mir.Terminator{Kind: mir.TermCall, Call: mir.CallTerm{
			Func:        mir.Copy(mir.LocalPlace(3)),
			Args:        []mir.Operand{mir.Move(mir.LocalPlace(1))},
			Destination: mir.LocalPlace(2),
			Target:      target,
			Unwind:      mir.UnwindAction{Kind: mir.UnwindCleanup, Block: 2},
		}}
	}

	d := gather(t, body(0, locals, call(1)), in)
	termLoc := mir.Location{Block: 0, Statement: 0}
	inits := d.InitsAt(termLoc)
	require.Len(t, inits, 1)
	dest, _ := d.RevLookup.FindLocal(2)
	assert.Equal(t, Init{Path: dest, Location: InitLocation{Kind: InitLocStatement, Location: termLoc}, Kind: InitKindNonPanicPathOnly}, inits[0])
	moves := d.MovesAt(termLoc)
	require.Len(t, moves, 1)
	arg, _ := d.RevLookup.FindLocal(1)
	assert.Equal(t, arg, moves[0].Path)

	d = gather(t, body(0, locals, call(mir.NoBlockID)), in)
	assert.Empty(t, d.InitsAt(termLoc), "diverging calls never write the destination")
	assert.Len(t, d.MovesAt(termLoc), 1)
}

func TestShallowInitBox(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	boxed := in.Box(b.Str)
	ptr := in.Intern(types.MakePointer(b.Str, true))
	bd := body(0, []mir.Local{local(b.Unit), local(boxed), local(ptr)}, ret(),
		mir.Assign(mir.LocalPlace(1), mir.RValue{Kind: mir.RValueShallowInitBox, ShallowInitBox: mir.ShallowInitBox{
			Ptr: mir.Move(mir.LocalPlace(2)), Elem: b.Str,
		}}),
	)

	d := gather(t, bd, in)
	loc := mir.Location{Block: 0, Statement: 0}
	outer := requireExact(t, d, mir.LocalPlace(1))
	interior := requireExact(t, d, place(1, mir.Deref()))
	assert.Equal(t, outer, d.Path(interior).Parent)

	inits := d.InitsAt(loc)
	require.Len(t, inits, 1)
	assert.Equal(t, outer, inits[0].Path)
	assert.Equal(t, InitKindShallow, inits[0].Kind)
	assert.Empty(t, d.InitPathMap[interior])
	assert.Len(t, d.MovesAt(loc), 1, "the raw pointer operand is moved")
}

func TestYieldAndInlineAsm(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	boxed := in.Box(b.Int)
	locals := []mir.Local{local(b.Unit), local(boxed), local(boxed), local(b.Int), local(b.Int)}

	yield := mir.Terminator{Kind: mir.TermYield, Yield: mir.YieldTerm{
		Value: mir.Move(mir.LocalPlace(1)), Resume: 1, ResumeArg: mir.LocalPlace(2), Drop: mir.NoBlockID,
	}}
	d := gather(t, body(0, locals, yield), in)
	loc := mir.Location{Block: 0, Statement: 0}
	require.Len(t, d.MovesAt(loc), 1)
	inits := d.InitsAt(loc)
	require.Len(t, inits, 1)
	assert.Equal(t, InitKindDeep, inits[0].Kind)
	assert.Equal(t, requireExact(t, d, mir.LocalPlace(2)), inits[0].Path)

	asm := mir.Terminator{Kind: mir.TermInlineAsm, InlineAsm: mir.InlineAsmTerm{
		Operands: []mir.AsmOperand{
			{Kind: mir.AsmIn, In: mir.Move(mir.LocalPlace(1))},
			{Kind: mir.AsmOut, Out: mir.LocalPlace(3), HasOut: true},
			{Kind: mir.AsmOut},
			{Kind: mir.AsmInOut, In: mir.Move(mir.LocalPlace(2)), Out: mir.LocalPlace(4), HasOut: true},
			{Kind: mir.AsmConst, Value: mir.Constant(b.Int, "1")},
		},
		Destination: 1,
	}}
	d = gather(t, body(0, locals, asm), in)
	assert.Len(t, d.MovesAt(loc), 2)
	assert.Len(t, d.InitsAt(loc), 2)
}

func TestFakeReadCreatesPathOnly(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	tup := in.Tuple(b.Int, b.Int)
	bd := body(0, []mir.Local{local(b.Unit), local(tup)}, ret(),
		mir.Statement{Kind: mir.StmtFakeRead, FakeRead: mir.FakeReadStmt{Cause: mir.FakeReadForLet, Place: place(1, field(1))}},
	)
	d := gather(t, bd, in)
	requireExact(t, d, place(1, field(1)))
	assert.Empty(t, d.Moves)
	assert.Empty(t, d.Inits)
}

func TestInternalErrors(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	tests := []struct {
		name string
		stmt mir.Statement
	}{
		{"set_discriminant", mir.Statement{Kind: mir.StmtSetDiscriminant, Place: mir.LocalPlace(1)}},
		{"deinit", mir.Statement{Kind: mir.StmtDeinit, Place: mir.LocalPlace(1)}},
		{"deref_of_int", mir.Assign(mir.LocalPlace(0), moveOf(place(1, mir.Deref())))},
		{"field_of_int", mir.Assign(mir.LocalPlace(0), moveOf(place(1, field(0))))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bd := body(0, []mir.Local{local(b.Int), local(b.Int)}, ret(), tt.stmt)
			defer func() {
				r := recover()
				ice, ok := AsInternalError(r)
				require.True(t, ok, "expected *InternalError, got %v", r)
				assert.Equal(t, mir.Location{Block: 0, Statement: 0}, ice.Location)
				assert.Contains(t, ice.Error(), "internal error: test")
			}()
			gather(t, bd, in)
		})
	}
}

func TestMoveErrorIs(t *testing.T) {
	var err error = errUntracked()
	assert.True(t, errors.Is(err, ErrUntrackedLocal))
	err = &MoveError{Kind: MoveErrUnion, Path: 3}
	assert.False(t, errors.Is(err, ErrUntrackedLocal))
}

func TestQueriesAndOutput(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	boxed := in.Box(b.Int)
	tup := in.Tuple(boxed, in.Tuple(boxed, boxed))
	bd := body(1, []mir.Local{local(b.Unit), local(tup), local(boxed)}, ret(),
		mir.Assign(mir.LocalPlace(2), moveOf(place(1, field(1), field(0)))),
		mir.Assign(mir.LocalPlace(2), moveOf(place(1, field(0)))),
		mir.Assign(place(1, field(0)), moveOf(mir.LocalPlace(2))),
	)

	var traced bytes.Buffer
	tracer := trace.NewStreamTracer(&traced, trace.LevelDebug, trace.FormatText)
	d := GatherMoves(bd, in, types.ParamEnv{}, Options{Tracer: tracer})

	root, _ := d.RevLookup.FindLocal(1)
	deep := requireExact(t, d, place(1, field(1), field(0)))
	assert.Equal(t, []MovePathIndex{requireExact(t, d, place(1, field(1))), root}, d.Parents(deep))
	assert.Len(t, d.MovesOf(root), 2)
	assert.Len(t, d.MovesOf(deep), 1)
	// the argument init plus the write into _1.0
	assert.Len(t, d.InitsOf(root), 2)

	found, ok := d.FindInMovePathOrItsDescendants(root, func(idx MovePathIndex) bool {
		return len(d.PathMap[idx]) > 0
	})
	require.True(t, ok)
	assert.NotEqual(t, root, found)
	_, ok = d.FindInMovePathOrItsDescendants(deep, func(idx MovePathIndex) bool { return idx == root })
	assert.False(t, ok)

	// lookup of an unknown child falls back to the closest ancestor
	res := d.Find(place(1, field(1), field(1)))
	assert.Equal(t, LookupResult{Kind: LookupParent, Path: requireExact(t, d, place(1, field(1)))}, res)

	snap := d.Snapshot()
	assert.Equal(t, "test", snap.Body)
	assert.Len(t, snap.Paths, len(d.MovePaths))
	assert.Equal(t, int32(-1), snap.Paths[root].Parent)
	assert.Equal(t, "bb0[0]", snap.Moves[0].Location)
	assert.Equal(t, "arg _1", snap.Inits[0].Location)

	var dump bytes.Buffer
	require.NoError(t, d.Dump(&dump))
	assert.Contains(t, dump.String(), "move data for test:")
	assert.Contains(t, dump.String(), "_1.1.0")

	assert.Contains(t, traced.String(), "gather_moves:test")
	assert.Contains(t, traced.String(), "move (mo0 bb0[0] _1.1.0")
	checkForest(t, d)
}

// shortWriter accepts limit bytes, then fails every write.
type shortWriter struct {
	limit  int
	writes int
}

var errShortWrite = errors.New("no space left")

func (w *shortWriter) Write(p []byte) (int, error) {
	w.writes++
	if len(p) > w.limit {
		n := w.limit
		w.limit = 0
		return n, errShortWrite
	}
	w.limit -= len(p)
	return len(p), nil
}

func TestDumpReportsWriteErrors(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	boxed := in.Box(b.Int)
	bd := body(1, []mir.Local{local(b.Unit), local(boxed), local(boxed)}, ret(),
		mir.Assign(mir.LocalPlace(2), moveOf(mir.LocalPlace(1))),
	)
	d := gather(t, bd, in)

	var full bytes.Buffer
	require.NoError(t, d.Dump(&full))
	require.Greater(t, full.Len(), 40)

	// fail in the middle of the path table, past the header
	w := &shortWriter{limit: 40}
	err := d.Dump(w)
	require.ErrorIs(t, err, errShortWrite)
	failedAt := w.writes
	assert.Less(t, failedAt, strings.Count(full.String(), "\n"), "writes after the failure")

	// a writer that fails right away gets exactly one attempt
	w = &shortWriter{}
	require.ErrorIs(t, d.Dump(w), errShortWrite)
	assert.Equal(t, 1, w.writes)
}
