package bodyfile

import (
	"fmt"
	"io"

	"fortio.org/safecast"
	"github.com/BurntSushi/toml"

	"moveck/internal/mir"
	"moveck/internal/types"
)

// Encode writes f back in body-file form. Parsing the output yields an
// equivalent file.
func Encode(w io.Writer, f *File) error {
	schema := fileSchema{Generics: f.Generics}
	if len(f.Params) > 0 {
		schema.Params = make(map[string]int64, len(f.Params))
		for k, v := range f.Params {
			n, err := safecast.Conv[int64](v)
			if err != nil {
				return fmt.Errorf("param %s: %w", k, err)
			}
			schema.Params[k] = n
		}
	}
	for _, id := range f.Adts {
		schema.Adts = append(schema.Adts, encodeAdt(f.Types, id))
	}
	for _, b := range f.Bodies {
		schema.Bodies = append(schema.Bodies, encodeBody(f.Types, b))
	}
	return toml.NewEncoder(w).Encode(schema)
}

func typeLabels(in *types.Interner, ids []types.TypeID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = types.Label(in, id)
	}
	return out
}

func encodeAdt(in *types.Interner, id types.TypeID) adtSchema {
	info, _ := in.AdtInfo(id)
	as := adtSchema{Name: info.Name, Kind: info.Kind.String(), Dtor: info.HasDtor}
	if info.Kind == types.AdtEnum {
		for _, v := range info.Variants {
			as.Variants = append(as.Variants, variantSchema{Name: v.Name, Fields: typeLabels(in, v.Fields)})
		}
		return as
	}
	if len(info.Variants) > 0 {
		as.Fields = typeLabels(in, info.Variants[0].Fields)
	}
	return as
}

func encodeBody(in *types.Interner, b *mir.Body) bodySchema {
	bs := bodySchema{Name: b.Name, Args: b.ArgCount}
	for _, l := range b.Locals {
		bs.Locals = append(bs.Locals, localSchema{Type: types.Label(in, l.Type), Name: l.Name, DerefTemp: l.DerefTemp})
	}
	for i := range b.Blocks {
		blk := &b.Blocks[i]
		var bb blockSchema
		for j := range blk.Statements {
			bb.Stmts = append(bb.Stmts, mir.FormatStatement(in, &blk.Statements[j]))
		}
		bb.Term = mir.FormatTerminator(in, &blk.Term)
		bs.Blocks = append(bs.Blocks, bb)
	}
	return bs
}
