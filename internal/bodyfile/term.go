package bodyfile

import (
	"strconv"

	"moveck/internal/mir"
	"moveck/internal/types"
)

type edge struct {
	key string
	val string
	pos int
}

// edges parses `-> [key: value, ...]`.
func (p *parser) edges() []edge {
	p.expect("->")
	p.expect("[")
	var out []edge
	for !p.failed() && !p.accept("]") {
		e := edge{key: p.s.tok.text, pos: p.s.tok.pos}
		if p.s.tok.kind != tokIdent && p.s.tok.kind != tokInt {
			p.fail("expected edge label, found %s", p.describe())
			break
		}
		p.s.next()
		p.expect(":")
		e.val = p.ident()
		out = append(out, e)
		if !p.accept(",") {
			p.expect("]")
			break
		}
	}
	return out
}

func (p *parser) blockName(text string, pos int) mir.BlockID {
	if len(text) > 2 && text[:2] == "bb" {
		if n, err := strconv.ParseInt(text[2:], 10, 32); err == nil && n >= 0 {
			return mir.BlockID(n)
		}
	}
	p.failAt(pos, "expected block, found %q", text)
	return mir.NoBlockID
}

func (p *parser) unwindName(text string, pos int) mir.UnwindAction {
	switch text {
	case "continue":
		return mir.UnwindAction{Kind: mir.UnwindContinue}
	case "unreachable":
		return mir.UnwindAction{Kind: mir.UnwindUnreachable}
	case "terminate":
		return mir.UnwindAction{Kind: mir.UnwindTerminate}
	}
	return mir.UnwindAction{Kind: mir.UnwindCleanup, Block: p.blockName(text, pos)}
}

// edgeSet matches parsed edges against the labels a terminator accepts.
type edgeSet struct {
	p     *parser
	edges []edge
	used  []bool
}

func (p *parser) edgeSet() *edgeSet {
	es := p.edges()
	return &edgeSet{p: p, edges: es, used: make([]bool, len(es))}
}

func (s *edgeSet) find(key string) (edge, bool) {
	for i, e := range s.edges {
		if e.key == key && !s.used[i] {
			s.used[i] = true
			return e, true
		}
	}
	return edge{}, false
}

func (s *edgeSet) block(key string) mir.BlockID {
	e, ok := s.find(key)
	if !ok {
		s.p.fail("missing %q edge", key)
		return mir.NoBlockID
	}
	return s.p.blockName(e.val, e.pos)
}

func (s *edgeSet) optBlock(key string) mir.BlockID {
	e, ok := s.find(key)
	if !ok {
		return mir.NoBlockID
	}
	return s.p.blockName(e.val, e.pos)
}

func (s *edgeSet) unwind() mir.UnwindAction {
	e, ok := s.find("unwind")
	if !ok {
		return mir.UnwindAction{Kind: mir.UnwindContinue}
	}
	return s.p.unwindName(e.val, e.pos)
}

// done rejects unknown or repeated labels.
func (s *edgeSet) done() {
	for i, e := range s.edges {
		if !s.used[i] {
			s.p.failAt(e.pos, "unexpected %q edge", e.key)
			return
		}
	}
}

// parseTerminator parses the syntax produced by mir.FormatTerminator.
func (p *parser) parseTerminator() mir.Terminator {
	if p.atPlace() {
		dst := p.parsePlace()
		p.expect("=")
		switch {
		case p.accept("call"):
			return p.callTail(dst)
		case p.accept("yield"):
			return p.yieldTail(dst)
		}
		p.fail("expected call or yield, found %s", p.describe())
		return mir.Terminator{}
	}

	pos := p.s.tok.pos
	switch name := p.ident(); name {
	case "goto":
		p.expect("->")
		return mir.Terminator{Kind: mir.TermGoto, Goto: mir.GotoTerm{Target: p.block()}}
	case "resume":
		return mir.Terminator{Kind: mir.TermUnwindResume}
	case "terminate":
		return mir.Terminator{Kind: mir.TermUnwindTerminate}
	case "return":
		return mir.Terminator{Kind: mir.TermReturn}
	case "unreachable":
		return mir.Terminator{Kind: mir.TermUnreachable}
	case "coroutine_drop":
		return mir.Terminator{Kind: mir.TermCoroutineDrop}
	case "switchInt":
		p.expect("(")
		discr := p.parseOperand()
		p.expect(")")
		sw := mir.SwitchIntTerm{Discr: discr, Otherwise: mir.NoBlockID}
		for _, e := range p.edges() {
			if e.key == "otherwise" {
				sw.Otherwise = p.blockName(e.val, e.pos)
				continue
			}
			v, err := strconv.ParseUint(e.key, 10, 64)
			if err != nil {
				p.failAt(e.pos, "bad switch value %q", e.key)
				break
			}
			sw.Values = append(sw.Values, v)
			sw.Targets = append(sw.Targets, p.blockName(e.val, e.pos))
		}
		if sw.Otherwise == mir.NoBlockID {
			p.failAt(pos, "switchInt without otherwise edge")
		}
		return mir.Terminator{Kind: mir.TermSwitchInt, SwitchInt: sw}
	case "drop":
		place := p.placeArg()
		es := p.edgeSet()
		t := mir.Terminator{Kind: mir.TermDrop, Drop: mir.DropTerm{Place: place, Target: es.block("return"), Unwind: es.unwind()}}
		es.done()
		return t
	case "assert":
		p.expect("(")
		cond := p.parseOperand()
		p.expect(",")
		expected := p.bool()
		p.expect(")")
		es := p.edgeSet()
		t := mir.Terminator{Kind: mir.TermAssert, Assert: mir.AssertTerm{Cond: cond, Expected: expected, Target: es.block("success"), Unwind: es.unwind()}}
		es.done()
		return t
	case "falseEdge":
		es := p.edgeSet()
		t := mir.Terminator{Kind: mir.TermFalseEdge, FalseEdge: mir.FalseEdgeTerm{Real: es.block("real"), Imaginary: es.block("imaginary")}}
		es.done()
		return t
	case "falseUnwind":
		es := p.edgeSet()
		t := mir.Terminator{Kind: mir.TermFalseUnwind, FalseUnwind: mir.FalseUnwindTerm{Real: es.block("real"), Unwind: es.unwind()}}
		es.done()
		return t
	case "asm":
		p.expect("!")
		return p.asmTail()
	default:
		p.failAt(pos, "unknown terminator %q", name)
	}
	return mir.Terminator{}
}

func (p *parser) callTail(dst mir.Place) mir.Terminator {
	fn := p.parseCallee()
	p.expect("(")
	args := p.operandList(")")
	es := p.edgeSet()
	t := mir.Terminator{Kind: mir.TermCall, Call: mir.CallTerm{
		Func:        fn,
		Args:        args,
		Destination: dst,
		Target:      es.optBlock("return"),
		Unwind:      es.unwind(),
	}}
	es.done()
	return t
}

func (p *parser) yieldTail(resumeArg mir.Place) mir.Terminator {
	p.expect("(")
	value := p.parseOperand()
	p.expect(")")
	es := p.edgeSet()
	t := mir.Terminator{Kind: mir.TermYield, Yield: mir.YieldTerm{
		Value:     value,
		Resume:    es.block("resume"),
		ResumeArg: resumeArg,
		Drop:      es.optBlock("drop"),
	}}
	es.done()
	return t
}

func (p *parser) asmTail() mir.Terminator {
	p.expect("(")
	var asm mir.InlineAsmTerm
	if p.s.tok.kind != tokString {
		p.fail("expected asm template, found %s", p.describe())
		return mir.Terminator{}
	}
	asm.Template = p.s.tok.text
	p.s.next()
	for !p.failed() && p.accept(",") {
		asm.Operands = append(asm.Operands, p.asmOperand())
	}
	p.expect(")")
	es := p.edgeSet()
	asm.Destination = es.optBlock("return")
	asm.Unwind = es.unwind()
	es.done()
	return mir.Terminator{Kind: mir.TermInlineAsm, InlineAsm: asm}
}

func (p *parser) asmOut(op *mir.AsmOperand) {
	if p.accept("_") {
		return
	}
	op.Out = p.parsePlace()
	op.HasOut = true
}

func (p *parser) asmReg() string {
	p.expect("(")
	reg := p.ident()
	p.expect(")")
	return reg
}

func (p *parser) asmOperand() mir.AsmOperand {
	pos := p.s.tok.pos
	switch kw := p.ident(); kw {
	case "in":
		return mir.AsmOperand{Kind: mir.AsmIn, Reg: p.asmReg(), In: p.parseOperand()}
	case "out", "lateout":
		op := mir.AsmOperand{Kind: mir.AsmOut, Late: kw == "lateout", Reg: p.asmReg()}
		p.asmOut(&op)
		return op
	case "inout", "lateinout":
		op := mir.AsmOperand{Kind: mir.AsmInOut, Late: kw == "lateinout", Reg: p.asmReg()}
		op.In = p.parseOperand()
		p.expect("=>")
		p.asmOut(&op)
		return op
	case "const":
		return mir.AsmOperand{Kind: mir.AsmConst, Value: mir.Constant(types.NoTypeID, p.s.raw())}
	case "sym":
		switch {
		case p.accept("fn"):
			return mir.AsmOperand{Kind: mir.AsmSymFn, Value: mir.Constant(types.NoTypeID, p.s.raw())}
		case p.accept("static"):
			return mir.AsmOperand{Kind: mir.AsmSymStatic, Symbol: p.ident()}
		}
		p.fail("expected fn or static after sym")
	default:
		p.failAt(pos, "unknown asm operand %q", kw)
	}
	return mir.AsmOperand{}
}
