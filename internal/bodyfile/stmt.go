package bodyfile

import (
	"moveck/internal/mir"
	"moveck/internal/types"
)

var (
	binaryOps = map[string]bool{
		"Add": true, "Sub": true, "Mul": true, "Div": true, "Rem": true,
		"BitXor": true, "BitAnd": true, "BitOr": true, "Shl": true, "Shr": true,
		"Eq": true, "Lt": true, "Le": true, "Ne": true, "Ge": true, "Gt": true,
		"Cmp": true, "Offset": true,
	}
	checkedOps = map[string]string{
		"CheckedAdd": "Add", "CheckedSub": "Sub", "CheckedMul": "Mul",
	}
	unaryOps   = map[string]bool{"Not": true, "Neg": true, "PtrMetadata": true}
	nullaryOps = map[string]bool{"SizeOf": true, "AlignOf": true, "OffsetOf": true, "UbChecks": true}
)

func (p *parser) placeArg() mir.Place {
	p.expect("(")
	place := p.parsePlace()
	p.expect(")")
	return place
}

// parseRValue parses the syntax produced by mir.FormatRValue.
func (p *parser) parseRValue() mir.RValue {
	if p.failed() {
		return mir.RValue{}
	}
	switch {
	case p.is("move"), p.is("copy"), p.is("const"):
		op := p.parseOperand()
		if p.accept("as") {
			return mir.RValue{Kind: mir.RValueCast, Cast: mir.CastOp{Value: op, TargetTy: p.parseType()}}
		}
		return mir.Use(op)
	case p.accept("&"):
		kind, mut := mir.RValueRef, false
		if p.accept("raw") {
			kind = mir.RValueAddressOf
			if !p.accept("const") {
				p.expect("mut")
				mut = true
			}
		} else {
			mut = p.accept("mut")
		}
		return mir.RValue{Kind: kind, Ref: mir.RefOp{Mutable: mut, Place: p.parsePlace()}}
	case p.accept("["):
		if p.accept("]") {
			return aggregate(mir.AggregateArray, types.NoTypeID, 0, nil)
		}
		first := p.parseOperand()
		if p.accept(";") {
			n := p.uint()
			p.expect("]")
			return mir.RValue{Kind: mir.RValueRepeat, Repeat: mir.RepeatOp{Value: first, Count: n}}
		}
		ops := []mir.Operand{first}
		if p.accept(",") {
			ops = append(ops, p.operandList("]")...)
		} else {
			p.expect("]")
		}
		return aggregate(mir.AggregateArray, types.NoTypeID, 0, ops)
	case p.accept("("):
		return aggregate(mir.AggregateTuple, types.NoTypeID, 0, p.operandList(")"))
	case p.accept("thread_local"):
		return mir.RValue{Kind: mir.RValueThreadLocalRef, ThreadLocal: p.ident()}
	case p.is("closure"), p.is("coroutine"):
		kind := mir.AggregateClosure
		if p.ident() == "coroutine" {
			kind = mir.AggregateCoroutine
		}
		pos := p.s.tok.pos
		name := p.ident()
		ty, ok := p.closures[name]
		if !ok && !p.failed() {
			p.failAt(pos, "unknown closure or coroutine %q", name)
		}
		p.expect("{")
		return aggregate(kind, ty, 0, p.operandList("}"))
	}

	pos := p.s.tok.pos
	name := p.ident()
	if p.failed() {
		return mir.RValue{}
	}
	switch {
	case name == "Len":
		return mir.RValue{Kind: mir.RValueLen, Place: p.placeArg()}
	case name == "discriminant":
		return mir.RValue{Kind: mir.RValueDiscriminant, Place: p.placeArg()}
	case name == "CopyForDeref":
		return mir.RValue{Kind: mir.RValueCopyForDeref, Place: p.placeArg()}
	case name == "ShallowInitBox":
		p.expect("(")
		ptr := p.parseOperand()
		p.expect(",")
		elem := p.parseType()
		p.expect(")")
		return mir.RValue{Kind: mir.RValueShallowInitBox, ShallowInitBox: mir.ShallowInitBox{Ptr: ptr, Elem: elem}}
	case binaryOps[name] || checkedOps[name] != "":
		kind, op := mir.RValueBinaryOp, name
		if base := checkedOps[name]; base != "" {
			kind, op = mir.RValueCheckedBinaryOp, base
		}
		p.expect("(")
		left := p.parseOperand()
		p.expect(",")
		right := p.parseOperand()
		p.expect(")")
		return mir.RValue{Kind: kind, Binary: mir.BinaryOp{Op: op, Left: left, Right: right}}
	case unaryOps[name]:
		p.expect("(")
		operand := p.parseOperand()
		p.expect(")")
		return mir.RValue{Kind: mir.RValueUnaryOp, Unary: mir.UnaryOp{Op: name, Operand: operand}}
	case nullaryOps[name]:
		p.expect("(")
		ty := p.parseType()
		p.expect(")")
		return mir.RValue{Kind: mir.RValueNullaryOp, Nullary: mir.NullaryOp{Op: name, Ty: ty}}
	}

	ty, ok := p.adts[name]
	if !ok {
		p.failAt(pos, "unknown rvalue or type %q", name)
		return mir.RValue{}
	}
	variant := 0
	if p.accept("::") {
		vpos := p.s.tok.pos
		vname := p.ident()
		v, ok := p.in.VariantIndex(ty, vname)
		if !ok && !p.failed() {
			p.failAt(vpos, "%s has no variant %q", name, vname)
		}
		variant = v
	}
	p.expect("{")
	return aggregate(mir.AggregateAdt, ty, variant, p.operandList("}"))
}

func aggregate(kind mir.AggregateKind, ty types.TypeID, variant int, ops []mir.Operand) mir.RValue {
	return mir.RValue{Kind: mir.RValueAggregate, Aggregate: mir.Aggregate{Kind: kind, Type: ty, Variant: variant, Operands: ops}}
}

var fakeReadCauses = map[string]mir.FakeReadCause{
	"ForMatchedPlace": mir.FakeReadForMatchedPlace,
	"ForLet":          mir.FakeReadForLet,
	"ForIndex":        mir.FakeReadForIndex,
}

// parseStatement parses the syntax produced by mir.FormatStatement.
func (p *parser) parseStatement() mir.Statement {
	if p.atPlace() {
		dst := p.parsePlace()
		p.expect("=")
		return mir.Assign(dst, p.parseRValue())
	}

	pos := p.s.tok.pos
	switch name := p.ident(); name {
	case "FakeRead":
		p.expect("(")
		cpos := p.s.tok.pos
		cause, ok := fakeReadCauses[p.ident()]
		if !ok && !p.failed() {
			p.failAt(cpos, "unknown fake read cause")
		}
		p.expect(",")
		place := p.parsePlace()
		p.expect(")")
		return mir.Statement{Kind: mir.StmtFakeRead, FakeRead: mir.FakeReadStmt{Cause: cause, Place: place}}
	case "StorageLive", "StorageDead":
		p.expect("(")
		local := p.local()
		p.expect(")")
		if name == "StorageLive" {
			return mir.StorageLive(local)
		}
		return mir.StorageDead(local)
	case "discriminant":
		place := p.placeArg()
		p.expect("=")
		return mir.Statement{Kind: mir.StmtSetDiscriminant, Place: place, Variant: p.int()}
	case "Deinit":
		return mir.Statement{Kind: mir.StmtDeinit, Place: p.placeArg()}
	case "Retag":
		return mir.Statement{Kind: mir.StmtRetag, Place: p.placeArg()}
	case "AscribeUserType":
		return mir.Statement{Kind: mir.StmtAscribeUserType, Place: p.placeArg()}
	case "PlaceMention":
		return mir.Statement{Kind: mir.StmtPlaceMention, Place: p.placeArg()}
	case "Coverage":
		return mir.Statement{Kind: mir.StmtCoverage}
	case "ConstEvalCounter":
		return mir.Statement{Kind: mir.StmtConstEvalCounter}
	case "nop":
		return mir.Statement{Kind: mir.StmtNop}
	case "intrinsic":
		iname := p.ident()
		p.expect("(")
		return mir.Statement{Kind: mir.StmtIntrinsic, Intrinsic: mir.IntrinsicStmt{Name: iname, Operands: p.operandList(")")}}
	default:
		p.failAt(pos, "unknown statement %q", name)
	}
	return mir.Statement{}
}
