package bodyfile

// fileSchema mirrors the TOML layout of a body file.
type fileSchema struct {
	Generics []string         `toml:"generics,omitempty"`
	Params   map[string]int64 `toml:"params,omitempty"`
	Adts     []adtSchema      `toml:"adt,omitempty"`
	Bodies   []bodySchema     `toml:"body"`
}

type adtSchema struct {
	Name     string          `toml:"name"`
	Kind     string          `toml:"kind"` // struct (default), enum or union
	Dtor     bool            `toml:"dtor,omitempty"`
	Fields   []string        `toml:"fields,omitempty"`
	Variants []variantSchema `toml:"variant,omitempty"`
}

type variantSchema struct {
	Name   string   `toml:"name"`
	Fields []string `toml:"fields"`
}

type bodySchema struct {
	Name   string        `toml:"name"`
	Args   int           `toml:"args"`
	Locals []localSchema `toml:"local"`
	Blocks []blockSchema `toml:"block"`
}

type localSchema struct {
	Type      string `toml:"type"`
	Name      string `toml:"name,omitempty"`
	DerefTemp bool   `toml:"deref_temp,omitempty"`
}

type blockSchema struct {
	Stmts []string `toml:"stmts,omitempty"`
	Term  string   `toml:"term"`
}
