package mir

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"moveck/internal/types"
)

// DumpBody writes a human-readable representation of a body using the same
// textual syntax the body-file loader accepts.
func DumpBody(w io.Writer, b *Body, typesIn *types.Interner) error {
	if w == nil || b == nil {
		return nil
	}
	if _, err := fmt.Fprintf(w, "fn %s (args=%d):\n", b.Name, b.ArgCount); err != nil {
		return err
	}

	fmt.Fprintf(w, "  locals:\n")
	for i := range b.Locals {
		l := b.Locals[i]
		name := l.Name
		if name == "" {
			name = "_"
		}
		flags := ""
		if l.DerefTemp {
			flags = " [deref_temp]"
		}
		fmt.Fprintf(w, "    %s: %s%s name=%s\n", LocalID(i), types.Label(typesIn, l.Type), flags, name)
	}

	for i := range b.Blocks {
		bb := &b.Blocks[i]
		fmt.Fprintf(w, "  %s:\n", BlockID(i))
		for j := range bb.Statements {
			fmt.Fprintf(w, "    %s\n", FormatStatement(typesIn, &bb.Statements[j]))
		}
		fmt.Fprintf(w, "    %s\n", FormatTerminator(typesIn, &bb.Term))
	}
	return nil
}

// FormatOperand renders an operand.
func FormatOperand(op Operand) string {
	switch op.Kind {
	case OperandMove:
		return "move " + op.Place.String()
	case OperandCopy:
		return "copy " + op.Place.String()
	default:
		text := op.Const.Text
		if text == "" {
			text = "_"
		}
		return "const " + text
	}
}

func formatOperands(ops []Operand) string {
	parts := make([]string, len(ops))
	for i, op := range ops {
		parts[i] = FormatOperand(op)
	}
	return strings.Join(parts, ", ")
}

// FormatRValue renders an rvalue.
func FormatRValue(typesIn *types.Interner, rv *RValue) string {
	switch rv.Kind {
	case RValueUse:
		return FormatOperand(rv.Use)
	case RValueRepeat:
		return fmt.Sprintf("[%s; %d]", FormatOperand(rv.Repeat.Value), rv.Repeat.Count)
	case RValueRef:
		if rv.Ref.Mutable {
			return "&mut " + rv.Ref.Place.String()
		}
		return "&" + rv.Ref.Place.String()
	case RValueAddressOf:
		if rv.Ref.Mutable {
			return "&raw mut " + rv.Ref.Place.String()
		}
		return "&raw const " + rv.Ref.Place.String()
	case RValueThreadLocalRef:
		return "thread_local " + rv.ThreadLocal
	case RValueLen:
		return "Len(" + rv.Place.String() + ")"
	case RValueCast:
		return FormatOperand(rv.Cast.Value) + " as " + types.Label(typesIn, rv.Cast.TargetTy)
	case RValueBinaryOp:
		return fmt.Sprintf("%s(%s, %s)", rv.Binary.Op, FormatOperand(rv.Binary.Left), FormatOperand(rv.Binary.Right))
	case RValueCheckedBinaryOp:
		return fmt.Sprintf("Checked%s(%s, %s)", rv.Binary.Op, FormatOperand(rv.Binary.Left), FormatOperand(rv.Binary.Right))
	case RValueNullaryOp:
		return fmt.Sprintf("%s(%s)", rv.Nullary.Op, types.Label(typesIn, rv.Nullary.Ty))
	case RValueUnaryOp:
		return fmt.Sprintf("%s(%s)", rv.Unary.Op, FormatOperand(rv.Unary.Operand))
	case RValueDiscriminant:
		return "discriminant(" + rv.Place.String() + ")"
	case RValueAggregate:
		return formatAggregate(typesIn, &rv.Aggregate)
	case RValueShallowInitBox:
		return fmt.Sprintf("ShallowInitBox(%s, %s)", FormatOperand(rv.ShallowInitBox.Ptr), types.Label(typesIn, rv.ShallowInitBox.Elem))
	case RValueCopyForDeref:
		return "CopyForDeref(" + rv.Place.String() + ")"
	}
	return fmt.Sprintf("<rvalue %d>", rv.Kind)
}

func formatAggregate(typesIn *types.Interner, agg *Aggregate) string {
	ops := formatOperands(agg.Operands)
	switch agg.Kind {
	case AggregateTuple:
		if len(agg.Operands) == 1 {
			return "(" + ops + ",)"
		}
		return "(" + ops + ")"
	case AggregateArray:
		return "[" + ops + "]"
	case AggregateClosure:
		return "closure " + typesIn.Name(agg.Type) + " {" + ops + "}"
	case AggregateCoroutine:
		return "coroutine " + typesIn.Name(agg.Type) + " {" + ops + "}"
	default:
		name := types.Label(typesIn, agg.Type)
		if info, ok := typesIn.AdtInfo(agg.Type); ok && info.Kind == types.AdtEnum &&
			agg.Variant >= 0 && agg.Variant < len(info.Variants) {
			name += "::" + info.Variants[agg.Variant].Name
		}
		return name + " {" + ops + "}"
	}
}

// FormatStatement renders a statement.
func FormatStatement(typesIn *types.Interner, st *Statement) string {
	switch st.Kind {
	case StmtAssign:
		return st.Assign.Dst.String() + " = " + FormatRValue(typesIn, &st.Assign.Src)
	case StmtFakeRead:
		return fmt.Sprintf("FakeRead(%s, %s)", fakeReadCauseName(st.FakeRead.Cause), st.FakeRead.Place)
	case StmtStorageLive:
		return "StorageLive(" + st.Local.String() + ")"
	case StmtStorageDead:
		return "StorageDead(" + st.Local.String() + ")"
	case StmtSetDiscriminant:
		return fmt.Sprintf("discriminant(%s) = %d", st.Place, st.Variant)
	case StmtDeinit:
		return "Deinit(" + st.Place.String() + ")"
	case StmtRetag:
		return "Retag(" + st.Place.String() + ")"
	case StmtAscribeUserType:
		return "AscribeUserType(" + st.Place.String() + ")"
	case StmtPlaceMention:
		return "PlaceMention(" + st.Place.String() + ")"
	case StmtCoverage:
		return "Coverage"
	case StmtIntrinsic:
		return fmt.Sprintf("intrinsic %s(%s)", st.Intrinsic.Name, formatOperands(st.Intrinsic.Operands))
	case StmtConstEvalCounter:
		return "ConstEvalCounter"
	default:
		return "nop"
	}
}

func fakeReadCauseName(c FakeReadCause) string {
	switch c {
	case FakeReadForLet:
		return "ForLet"
	case FakeReadForIndex:
		return "ForIndex"
	default:
		return "ForMatchedPlace"
	}
}

func formatUnwind(u UnwindAction) string {
	switch u.Kind {
	case UnwindUnreachable:
		return "unreachable"
	case UnwindTerminate:
		return "terminate"
	case UnwindCleanup:
		return u.Block.String()
	default:
		return "continue"
	}
}

// FormatTerminator renders a terminator.
func FormatTerminator(typesIn *types.Interner, t *Terminator) string {
	switch t.Kind {
	case TermGoto:
		return "goto -> " + t.Goto.Target.String()
	case TermSwitchInt:
		parts := make([]string, 0, len(t.SwitchInt.Targets)+1)
		for i, target := range t.SwitchInt.Targets {
			var v uint64
			if i < len(t.SwitchInt.Values) {
				v = t.SwitchInt.Values[i]
			}
			parts = append(parts, fmt.Sprintf("%d: %s", v, target))
		}
		parts = append(parts, "otherwise: "+t.SwitchInt.Otherwise.String())
		return fmt.Sprintf("switchInt(%s) -> [%s]", FormatOperand(t.SwitchInt.Discr), strings.Join(parts, ", "))
	case TermUnwindResume:
		return "resume"
	case TermUnwindTerminate:
		return "terminate"
	case TermReturn:
		return "return"
	case TermUnreachable:
		return "unreachable"
	case TermCoroutineDrop:
		return "coroutine_drop"
	case TermDrop:
		return fmt.Sprintf("drop(%s) -> [return: %s, unwind: %s]", t.Drop.Place, t.Drop.Target, formatUnwind(t.Drop.Unwind))
	case TermCall:
		c := &t.Call
		head := fmt.Sprintf("%s = call %s(%s)", c.Destination, FormatOperand(c.Func), formatOperands(c.Args))
		if c.Target == NoBlockID {
			return fmt.Sprintf("%s -> [unwind: %s]", head, formatUnwind(c.Unwind))
		}
		return fmt.Sprintf("%s -> [return: %s, unwind: %s]", head, c.Target, formatUnwind(c.Unwind))
	case TermAssert:
		a := &t.Assert
		return fmt.Sprintf("assert(%s, %t) -> [success: %s, unwind: %s]", FormatOperand(a.Cond), a.Expected, a.Target, formatUnwind(a.Unwind))
	case TermYield:
		y := &t.Yield
		drop := ""
		if y.Drop != NoBlockID {
			drop = ", drop: " + y.Drop.String()
		}
		return fmt.Sprintf("%s = yield(%s) -> [resume: %s%s]", y.ResumeArg, FormatOperand(y.Value), y.Resume, drop)
	case TermFalseEdge:
		return fmt.Sprintf("falseEdge -> [real: %s, imaginary: %s]", t.FalseEdge.Real, t.FalseEdge.Imaginary)
	case TermFalseUnwind:
		return fmt.Sprintf("falseUnwind -> [real: %s, unwind: %s]", t.FalseUnwind.Real, formatUnwind(t.FalseUnwind.Unwind))
	case TermInlineAsm:
		return formatInlineAsm(&t.InlineAsm)
	}
	return "<unterminated>"
}

func formatInlineAsm(a *InlineAsmTerm) string {
	parts := []string{strconv.Quote(a.Template)}
	for _, op := range a.Operands {
		parts = append(parts, formatAsmOperand(op))
	}
	head := "asm!(" + strings.Join(parts, ", ") + ")"
	if a.Destination == NoBlockID {
		return fmt.Sprintf("%s -> [unwind: %s]", head, formatUnwind(a.Unwind))
	}
	return fmt.Sprintf("%s -> [return: %s, unwind: %s]", head, a.Destination, formatUnwind(a.Unwind))
}

func formatAsmOperand(op AsmOperand) string {
	out := "_"
	if op.HasOut {
		out = op.Out.String()
	}
	late := ""
	if op.Late {
		late = "late"
	}
	switch op.Kind {
	case AsmIn:
		return fmt.Sprintf("in(%s) %s", op.Reg, FormatOperand(op.In))
	case AsmOut:
		return fmt.Sprintf("%sout(%s) %s", late, op.Reg, out)
	case AsmInOut:
		return fmt.Sprintf("%sinout(%s) %s => %s", late, op.Reg, FormatOperand(op.In), out)
	case AsmConst:
		return "const " + op.Value.Const.Text
	case AsmSymFn:
		return "sym fn " + op.Value.Const.Text
	default:
		return "sym static " + op.Symbol
	}
}
