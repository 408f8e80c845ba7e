package trace

import "time"

// Kind is the shape of an event.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint
)

var kindNames = [...]string{"unknown", "begin", "end", "point"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return kindNames[0]
}

// glyph marks the kind in text output.
func (k Kind) glyph() string {
	switch k {
	case KindSpanBegin:
		return "→"
	case KindSpanEnd:
		return "←"
	default:
		return "•"
	}
}

// Scope is the granularity of an event; smaller is coarser.
type Scope uint8

const (
	// ScopeDriver covers a whole run over many files.
	ScopeDriver Scope = iota + 1
	// ScopePass covers one body file.
	ScopePass
	// ScopeBody covers gathering one body.
	ScopeBody
	// ScopeNode is a single move path, move or init.
	ScopeNode
)

var scopeNames = [...]string{"unknown", "driver", "pass", "body", "node"}

func (s Scope) String() string {
	if int(s) < len(scopeNames) {
		return scopeNames[s]
	}
	return scopeNames[0]
}

// Event is one trace record.
type Event struct {
	Time     time.Time
	Seq      uint64 // global, monotonic
	Kind     Kind
	Scope    Scope
	SpanID   uint64 // 0 for points
	ParentID uint64 // 0 for roots
	Unit     string // body file the event belongs to, if any
	Name     string // e.g. "analyze_file", "gather_moves:main"
	Detail   string
	Extra    map[string]string
}
