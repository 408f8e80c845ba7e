package bodyfile

import (
	"moveck/internal/mir"
	"moveck/internal/types"
)

// parsePlace parses the syntax produced by mir.Place.String:
//
//	_1  (*_1)  _1.0  _1[_2]  _1[3 of 4]  _1[-1 of 4]  _1[1..3]  _1[1:-1]
//	(_1 as Some)  (_1 as #1)  (_1 opaque)  (_1 subtype)
func (p *parser) parsePlace() mir.Place {
	var place mir.Place
	switch {
	case p.failed():
		return place
	case p.accept("("):
		if p.accept("*") {
			place = p.parsePlace().Project(mir.Deref())
		} else {
			place = p.parsePlace()
			pos := p.s.tok.pos
			switch kw := p.ident(); kw {
			case "as":
				place = place.Project(p.downcast(place))
			case "opaque":
				place = place.Project(mir.OpaqueCast(types.NoTypeID))
			case "subtype":
				place = place.Project(mir.Subtype(types.NoTypeID))
			default:
				p.failAt(pos, "expected as, opaque or subtype, found %q", kw)
			}
		}
		p.expect(")")
	default:
		place = mir.LocalPlace(p.local())
	}

	for !p.failed() {
		switch {
		case p.accept("."):
			place = place.Project(mir.Field(p.int(), types.NoTypeID))
		case p.accept("["):
			place = place.Project(p.indexElem())
			p.expect("]")
		default:
			return place
		}
	}
	return place
}

func (p *parser) indexElem() mir.PlaceElem {
	if p.s.tok.kind == tokIdent {
		return mir.Index(p.local())
	}
	fromEnd := p.accept("-")
	first := p.uint()
	switch {
	case p.accept("of"):
		return mir.ConstantIndex(first, p.uint(), fromEnd)
	case !fromEnd && p.accept(".."):
		return mir.Subslice(first, p.uint(), false)
	case !fromEnd && p.accept(":"):
		p.expect("-")
		return mir.Subslice(first, p.uint(), true)
	}
	p.fail("expected of, .. or : in index, found %s", p.describe())
	return mir.PlaceElem{}
}

// downcast resolves `#N` or a variant name against the enum type of base.
func (p *parser) downcast(base mir.Place) mir.PlaceElem {
	if p.accept("#") {
		return mir.Downcast(p.int(), "")
	}
	pos := p.s.tok.pos
	name := p.ident()
	if p.failed() {
		return mir.PlaceElem{}
	}
	if p.body == nil {
		p.failAt(pos, "downcast outside of a body")
		return mir.PlaceElem{}
	}
	pt, err := p.body.PlaceTy(p.in, base)
	if err != nil {
		p.failAt(pos, "cannot type %s: %v", base, err)
		return mir.PlaceElem{}
	}
	v, ok := p.in.VariantIndex(pt.Ty, name)
	if !ok {
		p.failAt(pos, "%s has no variant %q", types.Label(p.in, pt.Ty), name)
		return mir.PlaceElem{}
	}
	return mir.Downcast(v, name)
}

// parseOperand parses `move P`, `copy P` or `const TEXT`.
func (p *parser) parseOperand() mir.Operand { return p.operand(false) }

// parseCallee is parseOperand for the function of a call, whose constant
// text ends where the argument list begins.
func (p *parser) parseCallee() mir.Operand { return p.operand(true) }

func (p *parser) operand(callee bool) mir.Operand {
	switch {
	case p.failed():
		return mir.Operand{}
	case p.accept("move"):
		return mir.Move(p.parsePlace())
	case p.accept("copy"):
		return mir.Copy(p.parsePlace())
	case p.is("const"):
		p.s.next()
		var text string
		if callee {
			text = p.s.rawCallee()
		} else {
			text = p.s.raw()
		}
		if text == "" {
			p.fail("expected constant")
		}
		if text == "_" {
			text = ""
		}
		return mir.Constant(types.NoTypeID, text)
	}
	p.fail("expected operand, found %s", p.describe())
	return mir.Operand{}
}

// operandList parses comma separated operands up to close, which is consumed.
func (p *parser) operandList(close string) []mir.Operand {
	var ops []mir.Operand
	for !p.failed() && !p.accept(close) {
		ops = append(ops, p.parseOperand())
		if !p.accept(",") {
			p.expect(close)
			break
		}
	}
	return ops
}
