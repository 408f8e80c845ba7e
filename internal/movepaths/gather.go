package movepaths

import (
	"fmt"

	"moveck/internal/mir"
	"moveck/internal/trace"
)

// gatherArgs deep-initializes every tracked argument on entry.
func (b *builder) gatherArgs() {
	for _, arg := range b.body.Args() {
		path, ok := b.data.RevLookup.FindLocal(arg)
		if !ok {
			continue
		}
		idx := toIndex[InitIndex](len(b.data.Inits))
		b.data.Inits = append(b.data.Inits, Init{
			Path:     path,
			Location: InitLocation{Kind: InitLocArgument, Local: arg},
			Kind:     InitKindDeep,
		})
		b.data.InitPathMap[path] = append(b.data.InitPathMap[path], idx)
		if b.debug {
			trace.Point(b.tracer, trace.ScopeNode, "init", b.span,
				fmt.Sprintf("in%d arg %s deep", idx, arg))
		}
	}
}

func (b *builder) gatherStatement(st *mir.Statement) {
	switch st.Kind {
	case mir.StmtAssign:
		dst, src := st.Assign.Dst, &st.Assign.Src
		if src.Kind == mir.RValueCopyForDeref {
			local, ok := dst.AsLocal()
			if !ok || !b.body.IsDerefTemp(local) {
				b.bug("CopyForDeref into %s, which is not a deref temp", dst)
			}
			b.data.RevLookup.addDerefAlias(local, src.Place)
			return
		}
		b.createMovePath(dst)
		if src.InitializationState() == mir.InitShallow {
			// the box starts out empty; its interior gets a path of its own
			b.createMovePath(dst.Project(mir.Deref()))
			b.gatherInit(dst, InitKindShallow)
		} else {
			b.gatherInit(dst, InitKindDeep)
		}
		b.gatherRValue(src)
	case mir.StmtFakeRead:
		b.createMovePath(st.FakeRead.Place)
	case mir.StmtPlaceMention:
		b.createMovePath(st.Place)
	case mir.StmtStorageDead:
		// deref temps never own storage
		if !b.body.IsDerefTemp(st.Local) {
			b.gatherMove(mir.LocalPlace(st.Local))
		}
	case mir.StmtSetDiscriminant:
		b.bug("SetDiscriminant on %s must be lowered before move analysis", st.Place)
	case mir.StmtDeinit:
		b.bug("Deinit of %s must be lowered before move analysis", st.Place)
	case mir.StmtStorageLive, mir.StmtRetag, mir.StmtAscribeUserType, mir.StmtCoverage,
		mir.StmtIntrinsic, mir.StmtConstEvalCounter, mir.StmtNop:
	default:
		b.bug("unknown statement kind %d", st.Kind)
	}
}

func (b *builder) gatherRValue(rv *mir.RValue) {
	switch rv.Kind {
	case mir.RValueUse:
		b.gatherOperand(rv.Use)
	case mir.RValueRepeat:
		b.gatherOperand(rv.Repeat.Value)
	case mir.RValueCast:
		b.gatherOperand(rv.Cast.Value)
	case mir.RValueShallowInitBox:
		b.gatherOperand(rv.ShallowInitBox.Ptr)
	case mir.RValueUnaryOp:
		b.gatherOperand(rv.Unary.Operand)
	case mir.RValueBinaryOp, mir.RValueCheckedBinaryOp:
		b.gatherOperand(rv.Binary.Left)
		b.gatherOperand(rv.Binary.Right)
	case mir.RValueAggregate:
		for _, op := range rv.Aggregate.Operands {
			b.gatherOperand(op)
		}
	case mir.RValueCopyForDeref:
		b.bug("CopyForDeref outside of a deref temp assignment")
	case mir.RValueThreadLocalRef, mir.RValueRef, mir.RValueAddressOf, mir.RValueDiscriminant,
		mir.RValueLen, mir.RValueNullaryOp:
	}
}

func (b *builder) gatherTerminator(t *mir.Terminator) {
	switch t.Kind {
	case mir.TermAssert:
		b.gatherOperand(t.Assert.Cond)
	case mir.TermSwitchInt:
		b.gatherOperand(t.SwitchInt.Discr)
	case mir.TermYield:
		b.gatherOperand(t.Yield.Value)
		b.createMovePath(t.Yield.ResumeArg)
		b.gatherInit(t.Yield.ResumeArg, InitKindDeep)
	case mir.TermCall:
		call := &t.Call
		b.gatherOperand(call.Func)
		for _, arg := range call.Args {
			b.gatherOperand(arg)
		}
		// the destination is written only on the normal return edge
		if call.Target != mir.NoBlockID {
			b.createMovePath(call.Destination)
			b.gatherInit(call.Destination, InitKindNonPanicPathOnly)
		}
	case mir.TermInlineAsm:
		for _, op := range t.InlineAsm.Operands {
			switch op.Kind {
			case mir.AsmIn:
				b.gatherOperand(op.In)
			case mir.AsmOut:
				if op.HasOut {
					b.createMovePath(op.Out)
					b.gatherInit(op.Out, InitKindDeep)
				}
			case mir.AsmInOut:
				b.gatherOperand(op.In)
				if op.HasOut {
					b.createMovePath(op.Out)
					b.gatherInit(op.Out, InitKindDeep)
				}
			}
		}
	case mir.TermNone:
		b.bug("unterminated block")
	}
	// Goto, FalseEdge, FalseUnwind, Return, UnwindResume, UnwindTerminate,
	// CoroutineDrop, Unreachable and Drop neither move nor init. Return
	// moves the return place into the caller, but nothing can observe it
	// afterwards.
}

func (b *builder) gatherOperand(op mir.Operand) {
	if op.Kind == mir.OperandMove {
		b.gatherMove(op.Place)
	}
}

func (b *builder) gatherMove(place mir.Place) {
	if base, elem, ok := place.LastProjection(); ok && elem.Kind == mir.ProjSubslice && !elem.FromEnd {
		b.gatherSubsliceMove(place, base, elem)
		return
	}
	path, err := b.movePathFor(place)
	if err == nil {
		b.recordMove(place, path)
		return
	}
	switch err.Kind {
	case MoveErrUnion:
		b.recordMove(place, err.Path)
	case MoveErrIllegal:
		b.recordIllegal(place, err)
	}
}

// gatherSubsliceMove splits a move of base[from..to] into one move per
// element so that tracked paths stay disjoint.
func (b *builder) gatherSubsliceMove(place, base mir.Place, elem mir.PlaceElem) {
	basePath, err := b.movePathFor(base)
	if err != nil {
		switch err.Kind {
		case MoveErrUnion:
			b.recordMove(place, err.Path)
		case MoveErrIllegal:
			b.recordIllegal(place, err)
		}
		return
	}

	base = b.data.RevLookup.expand(base)
	baseTy, perr := b.body.PlaceTy(b.types, base)
	if perr != nil {
		b.bug("%s: %v", place, perr)
	}
	n, lerr := b.types.EvalArrayLen(baseTy.Ty, b.env)
	if lerr != nil {
		b.bug("subslice move of %s: %v", place, lerr)
	}
	if elem.From > elem.To || elem.To > n {
		b.bug("subslice %d..%d out of bounds for length %d", elem.From, elem.To, n)
	}
	for offset := elem.From; offset < elem.To; offset++ {
		ci := mir.ConstantIndex(offset, n, false)
		path := b.addMovePath(basePath, ci, mir.NoVariant, base.Project(ci))
		b.recordMove(place, path)
	}
}

func (b *builder) recordMove(place mir.Place, path MovePathIndex) {
	idx := toIndex[MoveOutIndex](len(b.data.Moves))
	b.data.Moves = append(b.data.Moves, MoveOut{Path: path, Source: b.loc})
	b.data.PathMap[path] = append(b.data.PathMap[path], idx)
	b.data.LocMap.push(b.loc, idx)
	if b.debug {
		trace.Point(b.tracer, trace.ScopeNode, "move", b.span,
			fmt.Sprintf("mo%d %s %s -> mp%d", idx, b.loc, place, path))
	}
}

func (b *builder) recordIllegal(place mir.Place, err *MoveError) {
	b.data.IllegalMoves = append(b.data.IllegalMoves, IllegalMove{Place: place, Origin: err.Origin})
	if b.debug {
		trace.Point(b.tracer, trace.ScopeNode, "illegal_move", b.span, err.Error())
	}
}

// gatherInit records an init of place when it has a node of its own.
// Assigning a union field re-initializes the whole union.
func (b *builder) gatherInit(place mir.Place, kind InitKind) {
	if base, elem, ok := place.LastProjection(); ok && elem.Kind == mir.ProjField {
		pt, err := b.body.PlaceTy(b.types, b.data.RevLookup.expand(base))
		if err == nil && b.types.IsUnion(pt.Ty) {
			place = base
		}
	}

	res := b.data.RevLookup.Find(place)
	if res.Kind != LookupExact {
		return
	}
	idx := toIndex[InitIndex](len(b.data.Inits))
	b.data.Inits = append(b.data.Inits, Init{
		Path:     res.Path,
		Location: InitLocation{Kind: InitLocStatement, Location: b.loc},
		Kind:     kind,
	})
	b.data.InitPathMap[res.Path] = append(b.data.InitPathMap[res.Path], idx)
	b.data.InitLocMap.push(b.loc, idx)
	if b.debug {
		trace.Point(b.tracer, trace.ScopeNode, "init", b.span,
			fmt.Sprintf("in%d %s %s %s", idx, b.loc, place, kind))
	}
}
