package bodyfile

import (
	"strconv"

	"fortio.org/safecast"

	"moveck/internal/mir"
	"moveck/internal/types"
)

// scope holds the names a line of textual MIR may refer to.
type scope struct {
	in       *types.Interner
	adts     map[string]types.TypeID
	generics map[string]bool
	closures map[string]types.TypeID
	body     *mir.Body // nil while parsing ADT and local types
}

// parser parses one line. The first error sticks; later calls become no-ops
// returning zero values.
type parser struct {
	*scope
	s   *scanner
	err error
}

func newParser(sc *scope, src string) *parser {
	return &parser{scope: sc, s: newScanner(src)}
}

func (p *parser) failed() bool {
	if p.err == nil && p.s.err != nil {
		p.err = p.s.err
	}
	return p.err != nil
}

func (p *parser) fail(format string, args ...any) {
	p.failAt(p.s.tok.pos, format, args...)
}

func (p *parser) failAt(pos int, format string, args ...any) {
	if p.failed() {
		return
	}
	p.err = errorf(pos, format, args...)
	p.s.err = p.err
	p.s.tok = token{kind: tokEOF, pos: pos}
}

func (p *parser) is(text string) bool {
	return (p.s.tok.kind == tokPunct || p.s.tok.kind == tokIdent) && p.s.tok.text == text
}

func (p *parser) accept(text string) bool {
	if p.is(text) {
		p.s.next()
		return true
	}
	return false
}

func (p *parser) expect(text string) {
	if !p.accept(text) {
		p.fail("expected %q, found %s", text, p.describe())
	}
}

func (p *parser) describe() string {
	if p.s.tok.kind == tokEOF {
		return "end of input"
	}
	return strconv.Quote(p.s.tok.text)
}

func (p *parser) ident() string {
	if p.s.tok.kind != tokIdent {
		p.fail("expected identifier, found %s", p.describe())
		return ""
	}
	text := p.s.tok.text
	p.s.next()
	return text
}

func (p *parser) uint() uint64 {
	if p.s.tok.kind != tokInt {
		p.fail("expected integer, found %s", p.describe())
		return 0
	}
	v, err := strconv.ParseUint(p.s.tok.text, 10, 64)
	if err != nil {
		p.fail("bad integer %s: %v", p.s.tok.text, err)
		return 0
	}
	p.s.next()
	return v
}

func (p *parser) int() int {
	v, err := safecast.Conv[int](p.uint())
	if err != nil {
		p.fail("integer out of range: %v", err)
	}
	return v
}

func (p *parser) bool() bool {
	switch {
	case p.accept("true"):
		return true
	case p.accept("false"):
		return false
	}
	p.fail("expected true or false, found %s", p.describe())
	return false
}

// end checks that the whole line was consumed.
func (p *parser) end() error {
	if !p.failed() && p.s.tok.kind != tokEOF {
		p.fail("unexpected %s", p.describe())
	}
	return p.err
}

// numbered parses `<prefix><n>` identifiers such as _3 and bb2.
func (p *parser) numbered(prefix string) (int32, bool) {
	if p.s.tok.kind != tokIdent || len(p.s.tok.text) <= len(prefix) || p.s.tok.text[:len(prefix)] != prefix {
		return 0, false
	}
	n, err := strconv.ParseInt(p.s.tok.text[len(prefix):], 10, 32)
	if err != nil || n < 0 {
		return 0, false
	}
	p.s.next()
	return int32(n), true
}

// atPlace reports whether the lookahead starts a place.
func (p *parser) atPlace() bool {
	if p.is("(") {
		return true
	}
	text := p.s.tok.text
	if p.s.tok.kind != tokIdent || len(text) < 2 || text[0] != '_' {
		return false
	}
	for i := 1; i < len(text); i++ {
		if text[i] < '0' || text[i] > '9' {
			return false
		}
	}
	return true
}

func (p *parser) local() mir.LocalID {
	n, ok := p.numbered("_")
	if !ok {
		p.fail("expected local, found %s", p.describe())
		return mir.NoLocalID
	}
	return mir.LocalID(n)
}

func (p *parser) block() mir.BlockID {
	n, ok := p.numbered("bb")
	if !ok {
		p.fail("expected block, found %s", p.describe())
		return mir.NoBlockID
	}
	return mir.BlockID(n)
}
