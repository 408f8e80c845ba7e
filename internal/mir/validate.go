package mir

import (
	"errors"
	"fmt"

	"moveck/internal/types"
)

// Validate checks structural body invariants.
// Returns error if any invariant is violated.
func Validate(b *Body, typesIn *types.Interner) error {
	if b == nil {
		return nil
	}

	var errs []error

	if b.ArgCount < 0 || (b.ArgCount > 0 && b.ArgCount >= len(b.Locals)) {
		errs = append(errs, fmt.Errorf("arg count %d exceeds locals (%d)", b.ArgCount, len(b.Locals)))
	}

	// 1. Check all blocks terminated
	if err := validateBlocksTerminated(b); err != nil {
		errs = append(errs, err)
	}

	// 2. Check block targets exist
	if err := validateBlockTargets(b); err != nil {
		errs = append(errs, err)
	}

	// 3. Check local IDs exist in statements and terminators
	if err := validateLocalIDs(b); err != nil {
		errs = append(errs, err)
	}

	// 4. Deref temps are only written by CopyForDeref
	if err := validateDerefTemps(b); err != nil {
		errs = append(errs, err)
	}

	// 5. Every place can be typed
	if typesIn != nil {
		if err := validatePlaceTypes(b, typesIn); err != nil {
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("function %s: %w", b.Name, err)
	}
	return nil
}

// validateBlocksTerminated checks that every block ends with a terminator.
func validateBlocksTerminated(b *Body) error {
	var errs []error
	for i := range b.Blocks {
		if b.Blocks[i].Term.Kind == TermNone {
			errs = append(errs, fmt.Errorf("bb%d: unterminated block", i))
		}
	}
	return errors.Join(errs...)
}

// validateBlockTargets checks that all block target IDs exist.
func validateBlockTargets(b *Body) error {
	var errs []error
	for i := range b.Blocks {
		for _, target := range b.Blocks[i].Term.Successors() {
			if target < 0 || int(target) >= len(b.Blocks) {
				errs = append(errs, fmt.Errorf("bb%d: target %s does not exist", i, target))
			}
		}
	}
	return errors.Join(errs...)
}

// validateLocalIDs checks that all LocalID references are valid.
func validateLocalIDs(b *Body) error {
	var errs []error

	localExists := func(id LocalID) bool {
		return id >= 0 && int(id) < len(b.Locals)
	}

	WalkPlaces(b, func(loc Location, p Place) {
		if !localExists(p.Local) {
			errs = append(errs, fmt.Errorf("%s: local %s does not exist", loc, p.Local))
		}
		for _, proj := range p.Proj {
			if proj.Kind == ProjIndex && !localExists(proj.Index) {
				errs = append(errs, fmt.Errorf("%s: index local %s does not exist", loc, proj.Index))
			}
		}
	})

	for i := range b.Blocks {
		for j, st := range b.Blocks[i].Statements {
			if st.Kind != StmtStorageLive && st.Kind != StmtStorageDead {
				continue
			}
			if !localExists(st.Local) {
				loc := Location{Block: BlockID(i), Statement: j}
				errs = append(errs, fmt.Errorf("%s: local %s does not exist", loc, st.Local))
			}
		}
	}
	return errors.Join(errs...)
}

// validateDerefTemps checks that CopyForDeref writes bare deref temps and
// that nothing else writes them.
func validateDerefTemps(b *Body) error {
	var errs []error
	for i := range b.Blocks {
		for j := range b.Blocks[i].Statements {
			st := &b.Blocks[i].Statements[j]
			if st.Kind != StmtAssign {
				continue
			}
			loc := Location{Block: BlockID(i), Statement: j}
			dst := st.Assign.Dst
			local, bare := dst.AsLocal()
			isTemp := bare && b.IsDerefTemp(local)
			if st.Assign.Src.Kind == RValueCopyForDeref {
				if !isTemp {
					errs = append(errs, fmt.Errorf("%s: CopyForDeref into %s which is not a deref temp", loc, dst))
				}
				continue
			}
			if b.IsDerefTemp(dst.Local) {
				errs = append(errs, fmt.Errorf("%s: deref temp %s written by non-CopyForDeref rvalue", loc, dst.Local))
			}
		}
	}
	return errors.Join(errs...)
}

// validatePlaceTypes checks that every projection chain type-checks.
func validatePlaceTypes(b *Body, typesIn *types.Interner) error {
	var errs []error
	WalkPlaces(b, func(loc Location, p Place) {
		if p.Local < 0 || int(p.Local) >= len(b.Locals) {
			return
		}
		if _, err := b.PlaceTy(typesIn, p); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", loc, err))
		}
	})
	return errors.Join(errs...)
}

// WalkPlaces calls fn for every place mentioned by a statement or
// terminator, in program order.
func WalkPlaces(b *Body, fn func(Location, Place)) {
	for i := range b.Blocks {
		bb := &b.Blocks[i]
		for j := range bb.Statements {
			loc := Location{Block: BlockID(i), Statement: j}
			walkStatementPlaces(&bb.Statements[j], func(p Place) { fn(loc, p) })
		}
		loc := Location{Block: BlockID(i), Statement: len(bb.Statements)}
		walkTerminatorPlaces(&bb.Term, func(p Place) { fn(loc, p) })
	}
}

func walkOperand(op Operand, fn func(Place)) {
	if op.Kind == OperandMove || op.Kind == OperandCopy {
		fn(op.Place)
	}
}

func walkStatementPlaces(st *Statement, fn func(Place)) {
	switch st.Kind {
	case StmtAssign:
		fn(st.Assign.Dst)
		walkRValuePlaces(&st.Assign.Src, fn)
	case StmtFakeRead:
		fn(st.FakeRead.Place)
	case StmtSetDiscriminant, StmtDeinit, StmtRetag, StmtAscribeUserType, StmtPlaceMention:
		fn(st.Place)
	case StmtIntrinsic:
		for _, op := range st.Intrinsic.Operands {
			walkOperand(op, fn)
		}
	}
}

func walkRValuePlaces(rv *RValue, fn func(Place)) {
	switch rv.Kind {
	case RValueUse:
		walkOperand(rv.Use, fn)
	case RValueRepeat:
		walkOperand(rv.Repeat.Value, fn)
	case RValueRef, RValueAddressOf:
		fn(rv.Ref.Place)
	case RValueLen, RValueDiscriminant, RValueCopyForDeref:
		fn(rv.Place)
	case RValueCast:
		walkOperand(rv.Cast.Value, fn)
	case RValueBinaryOp, RValueCheckedBinaryOp:
		walkOperand(rv.Binary.Left, fn)
		walkOperand(rv.Binary.Right, fn)
	case RValueUnaryOp:
		walkOperand(rv.Unary.Operand, fn)
	case RValueAggregate:
		for _, op := range rv.Aggregate.Operands {
			walkOperand(op, fn)
		}
	case RValueShallowInitBox:
		walkOperand(rv.ShallowInitBox.Ptr, fn)
	}
}

func walkTerminatorPlaces(t *Terminator, fn func(Place)) {
	switch t.Kind {
	case TermSwitchInt:
		walkOperand(t.SwitchInt.Discr, fn)
	case TermDrop:
		fn(t.Drop.Place)
	case TermCall:
		walkOperand(t.Call.Func, fn)
		for _, arg := range t.Call.Args {
			walkOperand(arg, fn)
		}
		fn(t.Call.Destination)
	case TermAssert:
		walkOperand(t.Assert.Cond, fn)
	case TermYield:
		walkOperand(t.Yield.Value, fn)
		fn(t.Yield.ResumeArg)
	case TermInlineAsm:
		for _, op := range t.InlineAsm.Operands {
			switch op.Kind {
			case AsmIn:
				walkOperand(op.In, fn)
			case AsmOut:
				if op.HasOut {
					fn(op.Out)
				}
			case AsmInOut:
				walkOperand(op.In, fn)
				if op.HasOut {
					fn(op.Out)
				}
			}
		}
	}
}
