package mir

// Body is a lowered function body: locals plus a control-flow graph of
// basic blocks. Local 0 is the return place; locals 1..=ArgCount are the
// arguments.
type Body struct {
	Name     string
	Locals   []Local
	Blocks   []Block
	ArgCount int
}

// Args returns the argument locals in declaration order.
func (b *Body) Args() []LocalID {
	if b == nil || b.ArgCount <= 0 {
		return nil
	}
	out := make([]LocalID, 0, b.ArgCount)
	for i := 1; i <= b.ArgCount && i < len(b.Locals); i++ {
		out = append(out, LocalID(i))
	}
	return out
}

// Local returns the declaration of id.
func (b *Body) Local(id LocalID) (*Local, bool) {
	if b == nil || id < 0 || int(id) >= len(b.Locals) {
		return nil, false
	}
	return &b.Locals[id], true
}

// IsDerefTemp reports whether id is a dereference-materialization temporary.
func (b *Body) IsDerefTemp(id LocalID) bool {
	l, ok := b.Local(id)
	return ok && l.DerefTemp
}

// Block returns the block with the given id.
func (b *Body) Block(id BlockID) (*Block, bool) {
	if b == nil || id < 0 || int(id) >= len(b.Blocks) {
		return nil, false
	}
	return &b.Blocks[id], true
}

// TerminatorLoc returns the location of bb's terminator.
func (b *Body) TerminatorLoc(bb BlockID) Location {
	blk, ok := b.Block(bb)
	if !ok {
		return Location{Block: bb}
	}
	return Location{Block: bb, Statement: len(blk.Statements)}
}
