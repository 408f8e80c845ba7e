package bodyfile

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"fortio.org/safecast"
	"github.com/BurntSushi/toml"
	"golang.org/x/text/unicode/norm"

	"moveck/internal/mir"
	"moveck/internal/types"
)

// File is a decoded body file: a type universe shared by its bodies.
type File struct {
	Path     string
	Types    *types.Interner
	Env      types.ParamEnv
	Params   map[string]uint64
	Generics []string
	// Adts lists the declared ADTs in file order.
	Adts   []types.TypeID
	Bodies []*mir.Body
}

// Body returns the body named name.
func (f *File) Body(name string) (*mir.Body, bool) {
	for _, b := range f.Bodies {
		if b.Name == name {
			return b, true
		}
	}
	return nil, false
}

// Load reads and parses the body file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{File: path, Err: err}
	}
	return Parse(path, data)
}

// tomlMessage is the text of a TOML syntax error without its
// "toml: line N[ (last key ...)]: " prefix; the line is reported separately.
func tomlMessage(perr toml.ParseError) string {
	msg := strings.TrimPrefix(perr.Error(), "toml: ")
	if !strings.HasPrefix(msg, "line ") {
		return msg
	}
	if perr.LastKey != "" {
		if _, rest, ok := strings.Cut(msg, fmt.Sprintf("(last key %q): ", perr.LastKey)); ok {
			return rest
		}
	}
	if _, rest, ok := strings.Cut(msg, ": "); ok {
		return rest
	}
	return msg
}

// Parse decodes a body file. All problems found are returned joined; each
// is an *Error.
func Parse(path string, data []byte) (*File, error) {
	var schema fileSchema
	meta, err := toml.Decode(string(data), &schema)
	if err != nil {
		e := &Error{File: path, Err: err}
		var perr toml.ParseError
		if errors.As(err, &perr) {
			e.Line = perr.Position.Line
			e.Err = errors.New(tomlMessage(perr))
		}
		return nil, e
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, &Error{File: path, Err: fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))}
	}

	l := &loader{
		path: path,
		scope: &scope{
			in:       types.NewInterner(),
			adts:     make(map[string]types.TypeID, len(schema.Adts)),
			generics: make(map[string]bool, len(schema.Generics)),
			closures: make(map[string]types.TypeID),
		},
	}
	f := &File{Path: path, Types: l.in}
	for _, g := range schema.Generics {
		g = name(g)
		if !l.generics[g] {
			f.Generics = append(f.Generics, g)
		}
		l.generics[g] = true
	}
	f.Params = l.params(schema.Params)
	f.Env = types.NewParamEnv(f.Params)
	f.Adts = l.declareAdts(schema.Adts)
	l.defineAdts(schema.Adts)

	seen := make(map[string]bool, len(schema.Bodies))
	for i := range schema.Bodies {
		bs := &schema.Bodies[i]
		bname := name(bs.Name)
		switch {
		case bname == "":
			l.errorf("", "body #%d has no name", i)
			continue
		case seen[bname]:
			l.errorf(bname, "duplicate body")
			continue
		}
		seen[bname] = true
		if b := l.body(bname, bs); b != nil {
			f.Bodies = append(f.Bodies, b)
		}
	}
	if err := errors.Join(l.errs...); err != nil {
		return nil, err
	}
	return f, nil
}

func name(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

type loader struct {
	*scope
	path string
	errs []error
}

func (l *loader) errorf(body, format string, args ...any) {
	l.errs = append(l.errs, &Error{File: l.path, Body: body, Err: fmt.Errorf(format, args...)})
}

func (l *loader) errorAt(body string, loc mir.Location, err error) {
	l.errs = append(l.errs, &Error{File: l.path, Body: body, Loc: loc, HasLoc: true, Err: err})
}

func (l *loader) params(raw map[string]int64) map[string]uint64 {
	consts := make(map[string]uint64, len(raw))
	for k, v := range raw {
		n, err := safecast.Conv[uint64](v)
		if err != nil {
			l.errorf("", "param %s: %v", k, err)
			continue
		}
		consts[name(k)] = n
	}
	return consts
}

// parseType parses a standalone type string.
func (l *loader) parseType(src string) (types.TypeID, error) {
	p := newParser(l.scope, src)
	id := p.parseType()
	if err := p.end(); err != nil {
		return types.NoTypeID, fmt.Errorf("type %q: %w", src, err)
	}
	return id, nil
}

var adtKinds = map[string]types.AdtKind{
	"":       types.AdtStruct,
	"struct": types.AdtStruct,
	"enum":   types.AdtEnum,
	"union":  types.AdtUnion,
}

// declareAdts registers every ADT name before any field type is parsed so
// that ADTs may refer to each other.
func (l *loader) declareAdts(adts []adtSchema) []types.TypeID {
	var ids []types.TypeID
	for i := range adts {
		a := &adts[i]
		n := name(a.Name)
		kind, ok := adtKinds[a.Kind]
		switch {
		case n == "":
			l.errorf("", "adt #%d has no name", i)
			continue
		case !ok:
			l.errorf("", "adt %s: unknown kind %q", n, a.Kind)
			continue
		case l.adts[n] != types.NoTypeID || primitives[n] != (types.Type{}):
			l.errorf("", "adt %s: duplicate type name", n)
			continue
		}
		id := l.in.RegisterAdt(n, kind, a.Dtor)
		l.adts[n] = id
		ids = append(ids, id)
	}
	return ids
}

func (l *loader) defineAdts(adts []adtSchema) {
	for i := range adts {
		a := &adts[i]
		n := name(a.Name)
		id, ok := l.adts[n]
		if !ok {
			continue
		}
		info, _ := l.in.AdtInfo(id)
		if info.Variants != nil {
			// duplicate entry, already reported
			continue
		}
		var variants []types.VariantInfo
		if info.Kind == types.AdtEnum {
			if len(a.Fields) > 0 {
				l.errorf("", "enum %s: fields belong to variants", n)
			}
			for _, v := range a.Variants {
				variants = append(variants, types.VariantInfo{Name: name(v.Name), Fields: l.fieldTypes(n, v.Fields)})
			}
		} else {
			if len(a.Variants) > 0 {
				l.errorf("", "%s %s: only enums have variants", info.Kind, n)
			}
			variants = []types.VariantInfo{{Name: n, Fields: l.fieldTypes(n, a.Fields)}}
		}
		if variants == nil {
			variants = []types.VariantInfo{}
		}
		l.in.SetAdtVariants(id, variants)
	}
}

func (l *loader) fieldTypes(adt string, srcs []string) []types.TypeID {
	out := make([]types.TypeID, 0, len(srcs))
	for _, src := range srcs {
		id, err := l.parseType(src)
		if err != nil {
			l.errorf("", "adt %s: %v", adt, err)
		}
		out = append(out, id)
	}
	return out
}

func (l *loader) body(bname string, bs *bodySchema) *mir.Body {
	nerrs := len(l.errs)
	b := &mir.Body{
		Name:     bname,
		ArgCount: bs.Args,
		Locals:   make([]mir.Local, len(bs.Locals)),
		Blocks:   make([]mir.Block, len(bs.Blocks)),
	}
	for i, ls := range bs.Locals {
		ty, err := l.parseType(ls.Type)
		if err != nil {
			l.errorf(bname, "local _%d: %v", i, err)
		}
		b.Locals[i] = mir.Local{Name: name(ls.Name), Type: ty, DerefTemp: ls.DerefTemp}
	}
	if len(l.errs) > nerrs {
		return nil
	}

	l.scope.body = b
	defer func() { l.scope.body = nil }()
	for i, bb := range bs.Blocks {
		blk := &b.Blocks[i]
		blk.Statements = make([]mir.Statement, 0, len(bb.Stmts))
		for j, src := range bb.Stmts {
			loc := mir.Location{Block: mir.BlockID(i), Statement: j}
			p := newParser(l.scope, src)
			st := p.parseStatement()
			if err := p.end(); err != nil {
				l.errorAt(bname, loc, fmt.Errorf("%q: %w", src, err))
				continue
			}
			blk.Statements = append(blk.Statements, st)
		}
		loc := mir.Location{Block: mir.BlockID(i), Statement: len(bb.Stmts)}
		if strings.TrimSpace(bb.Term) == "" {
			l.errorAt(bname, loc, errors.New("block has no terminator"))
			continue
		}
		p := newParser(l.scope, bb.Term)
		term := p.parseTerminator()
		if err := p.end(); err != nil {
			l.errorAt(bname, loc, fmt.Errorf("%q: %w", bb.Term, err))
			continue
		}
		blk.Term = term
	}
	if len(l.errs) > nerrs {
		return nil
	}
	return b
}
