package bodyfile

import (
	"moveck/internal/types"
)

var primitives = map[string]types.Type{
	"bool":  {Kind: types.KindBool},
	"char":  {Kind: types.KindChar},
	"str":   {Kind: types.KindStr},
	"i8":    types.MakeInt(types.Width8),
	"i16":   types.MakeInt(types.Width16),
	"i32":   types.MakeInt(types.Width32),
	"i64":   types.MakeInt(types.Width64),
	"i128":  types.MakeInt(types.Width128),
	"isize": types.MakeInt(types.WidthSize),
	"u8":    types.MakeUint(types.Width8),
	"u16":   types.MakeUint(types.Width16),
	"u32":   types.MakeUint(types.Width32),
	"u64":   types.MakeUint(types.Width64),
	"u128":  types.MakeUint(types.Width128),
	"usize": types.MakeUint(types.WidthSize),
	"f32":   types.MakeFloat(types.Width32),
	"f64":   types.MakeFloat(types.Width64),
}

// parseType parses the syntax produced by types.Label.
func (p *parser) parseType() types.TypeID {
	if p.failed() {
		return types.NoTypeID
	}
	in := p.in
	switch {
	case p.accept("&"):
		mut := p.accept("mut")
		return in.Intern(types.MakeReference(p.parseType(), mut))
	case p.accept("*"):
		mut := false
		switch {
		case p.accept("mut"):
			mut = true
		case p.accept("const"):
		default:
			p.fail("expected const or mut after *")
		}
		return in.Intern(types.MakePointer(p.parseType(), mut))
	case p.accept("!"):
		return in.Builtins().Never
	case p.accept("["):
		elem := p.parseType()
		if !p.accept(";") {
			p.expect("]")
			return in.Intern(types.MakeSlice(elem))
		}
		var id types.TypeID
		if p.s.tok.kind == tokIdent {
			id = in.ArrayParam(elem, p.ident())
		} else {
			id = in.Intern(types.MakeArray(elem, p.uint()))
		}
		p.expect("]")
		return id
	case p.accept("("):
		elems, trailing := p.typeList(")")
		if len(elems) == 1 && !trailing {
			return elems[0]
		}
		return in.Tuple(elems...)
	}

	pos := p.s.tok.pos
	name := p.ident()
	if p.failed() {
		return types.NoTypeID
	}
	if t, ok := primitives[name]; ok {
		return in.Intern(t)
	}
	switch name {
	case "fn":
		return in.FnPtr()
	case "dyn":
		return in.Dynamic(p.ident())
	case "Box":
		p.expect("<")
		elem := p.parseType()
		p.expect(">")
		return in.Box(elem)
	case "closure", "coroutine":
		cname := p.ident()
		p.expect("(")
		members, _ := p.typeList(")")
		var id types.TypeID
		if name == "closure" {
			id = in.Closure(cname, members...)
		} else {
			id = in.Coroutine(cname, members...)
		}
		if !p.failed() {
			p.closures[cname] = id
		}
		return id
	}
	if id, ok := p.adts[name]; ok {
		return id
	}
	if p.generics[name] {
		return in.Param(name)
	}
	p.failAt(pos, "unknown type %q", name)
	return types.NoTypeID
}

// typeList parses comma separated types up to close, which is consumed.
// trailing reports a comma before close.
func (p *parser) typeList(close string) (elems []types.TypeID, trailing bool) {
	for !p.failed() && !p.accept(close) {
		elems = append(elems, p.parseType())
		trailing = false
		if !p.accept(",") {
			p.expect(close)
			break
		}
		trailing = true
	}
	return elems, trailing
}
