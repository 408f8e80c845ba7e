package fuzztests

import (
	"os"
	"path/filepath"
	"testing"
)

// fuzz inputs past this size only slow the parser down
const maxInput = 64 << 10

// inlineSeeds cover shapes the body file testdata does not: empty input,
// a body without locals, a constant index and a symbolic array length.
var inlineSeeds = []string{
	"",
	"[[body]]\nname = \"empty\"\n",
	"[[body]]\nname = \"b\"\n[[body.local]]\ntype = \"()\"\n[[body.block]]\nterm = \"return\"\n",
	"[[body]]\nname = \"b\"\nargs = 1\n[[body.local]]\ntype = \"()\"\n[[body.local]]\ntype = \"&[u8]\"\n" +
		"[[body.local]]\ntype = \"u8\"\n[[body.block]]\nstmts = [\"_2 = move (*_1)[0 of 1]\"]\nterm = \"return\"\n",
	"[params]\nN = 2\n[[body]]\nname = \"b\"\n[[body.local]]\ntype = \"()\"\n[[body.local]]\ntype = \"[u8; N]\"\n" +
		"[[body.local]]\ntype = \"[u8; 2]\"\n[[body.block]]\nstmts = [\"_2 = move _1[0..2]\"]\nterm = \"return\"\n",
}

// addCorpusSeeds seeds f with every testdata body file and the inline seeds.
func addCorpusSeeds(f *testing.F) {
	paths, _ := filepath.Glob(filepath.Join("..", "bodyfile", "testdata", "*.toml"))
	for _, p := range paths {
		// #nosec G304 -- repository testdata
		if src, err := os.ReadFile(p); err == nil {
			f.Add(clampInput(src))
		}
	}
	for _, s := range inlineSeeds {
		f.Add([]byte(s))
	}
}

// clampInput returns a private copy of at most maxInput bytes.
func clampInput(in []byte) []byte {
	return append([]byte(nil), in[:min(len(in), maxInput)]...)
}
