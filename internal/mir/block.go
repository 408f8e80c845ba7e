package mir

type Block struct {
	Statements []Statement
	Term       Terminator
}

func (b *Block) Terminated() bool {
	if b == nil {
		return true
	}
	return b.Term.Kind != TermNone
}
