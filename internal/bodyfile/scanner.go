package bodyfile

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

type tokKind uint8

const (
	tokEOF tokKind = iota
	tokIdent
	tokInt
	tokString
	tokPunct
)

type token struct {
	kind tokKind
	text string
	pos  int
}

// scanner tokenizes one line of textual MIR. It keeps a single token of
// lookahead in tok.
type scanner struct {
	src string
	off int
	tok token
	err error
}

func newScanner(src string) *scanner {
	s := &scanner{src: src}
	s.next()
	return s
}

func (s *scanner) next() {
	s.tok = s.scan()
}

func (s *scanner) skipSpace() {
	for s.off < len(s.src) {
		r, sz := utf8.DecodeRuneInString(s.src[s.off:])
		if !unicode.IsSpace(r) {
			return
		}
		s.off += sz
	}
}

var punct2 = []string{"::", "..", "->", "=>"}

func (s *scanner) scan() token {
	if s.err != nil {
		return token{kind: tokEOF, pos: len(s.src)}
	}
	s.skipSpace()
	start := s.off
	if start >= len(s.src) {
		return token{kind: tokEOF, pos: start}
	}
	r, sz := utf8.DecodeRuneInString(s.src[start:])
	switch {
	case r == '_' || unicode.IsLetter(r):
		s.off += sz
		for s.off < len(s.src) {
			r2, sz2 := utf8.DecodeRuneInString(s.src[s.off:])
			if r2 != '_' && !unicode.IsLetter(r2) && !unicode.IsDigit(r2) && !unicode.Is(unicode.Mn, r2) {
				break
			}
			s.off += sz2
		}
		return token{kind: tokIdent, text: norm.NFC.String(s.src[start:s.off]), pos: start}
	case r >= '0' && r <= '9':
		for s.off < len(s.src) && s.src[s.off] >= '0' && s.src[s.off] <= '9' {
			s.off++
		}
		return token{kind: tokInt, text: s.src[start:s.off], pos: start}
	case r == '"':
		end := s.off + 1
		for end < len(s.src) && s.src[end] != '"' {
			if s.src[end] == '\\' {
				end++
			}
			end++
		}
		if end >= len(s.src) {
			s.err = errorf(start, "unterminated string")
			return token{kind: tokEOF, pos: start}
		}
		text, err := strconv.Unquote(s.src[start : end+1])
		if err != nil {
			s.err = errorf(start, "bad string literal: %v", err)
			return token{kind: tokEOF, pos: start}
		}
		s.off = end + 1
		return token{kind: tokString, text: text, pos: start}
	}
	for _, p := range punct2 {
		if strings.HasPrefix(s.src[start:], p) {
			s.off += len(p)
			return token{kind: tokPunct, text: p, pos: start}
		}
	}
	s.off += sz
	return token{kind: tokPunct, text: string(r), pos: start}
}

// raw returns the literal text starting at the current token up to the next
// delimiter at nesting depth zero, and re-synchronizes after it. Quoted
// strings are returned verbatim.
func (s *scanner) raw() string { return s.rawText(false) }

// rawCallee is raw for a call's callee: it also stops before an opening
// parenthesis at depth zero, which starts the argument list.
func (s *scanner) rawCallee() string { return s.rawText(true) }

func (s *scanner) rawText(callee bool) string {
	if s.tok.kind == tokEOF {
		return ""
	}
	start := s.tok.pos
	if s.tok.kind == tokString {
		text := s.src[start:s.off]
		s.next()
		return text
	}
	depth := 0
	end := start
loop:
	for end < len(s.src) {
		switch c := s.src[end]; c {
		case '(':
			if callee && depth == 0 && end > start {
				break loop
			}
			depth++
		case '[', '{':
			depth++
		case ')', ']', '}':
			if depth == 0 {
				break loop
			}
			depth--
		case ',', ';':
			if depth == 0 {
				break loop
			}
		case ' ', '\t':
			if depth == 0 {
				break loop
			}
		}
		end++
	}
	s.off = end
	s.next()
	return s.src[start:end]
}
