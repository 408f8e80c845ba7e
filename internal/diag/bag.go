package diag

import (
	"cmp"
	"slices"
)

// Bag collects the diagnostics of one file or run. A bag with a limit
// keeps the first diagnostics and counts the rest as dropped.
type Bag struct {
	items   []Diagnostic
	max     int
	dropped int
}

// NewBag creates a bag holding at most limit diagnostics; limit <= 0
// means no limit.
func NewBag(limit int) *Bag {
	limit = max(limit, 0)
	return &Bag{items: make([]Diagnostic, 0, min(limit, 64)), max: limit}
}

// Add appends d, or counts it as dropped and returns false when full.
func (b *Bag) Add(d Diagnostic) bool {
	if b.max > 0 && len(b.items) >= b.max {
		b.dropped++
		return false
	}
	b.items = append(b.items, d)
	return true
}

func (b *Bag) Cap() int { return b.max }

func (b *Bag) Len() int { return len(b.items) }

// Dropped is the number of diagnostics refused by Add.
func (b *Bag) Dropped() int { return b.dropped }

// AddDropped counts n diagnostics as refused without seeing them, as when
// a result is restored from a cache.
func (b *Bag) AddDropped(n int) {
	if n > 0 {
		b.dropped += n
	}
}

// Items returns the bag's backing slice. Callers must not modify it.
func (b *Bag) Items() []Diagnostic { return b.items }

// Count returns how many diagnostics are at least sev.
func (b *Bag) Count(sev Severity) int {
	n := 0
	for i := range b.items {
		if b.items[i].Severity >= sev {
			n++
		}
	}
	return n
}

func (b *Bag) HasErrors() bool { return b.Count(SevError) > 0 }

// HasWarnings is true for warnings and errors alike.
func (b *Bag) HasWarnings() bool { return b.Count(SevWarning) > 0 }

// Merge appends everything in other, raising the limit to fit. Dropped
// counts add up.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	b.items = append(b.items, other.items...)
	if b.max > 0 {
		b.max = max(b.max, len(b.items))
	}
	b.dropped += other.dropped
}

// Sort orders diagnostics by position, then by severity (errors first),
// then by code. Positions compare by file, line, body, then program point;
// file-level positions come before located ones.
func (b *Bag) Sort() {
	slices.SortStableFunc(b.items, func(x, y Diagnostic) int {
		px, py := x.Primary, y.Primary
		if c := cmp.Or(
			cmp.Compare(px.File, py.File),
			cmp.Compare(px.Line, py.Line),
			cmp.Compare(px.Body, py.Body),
			compareBool(px.HasLoc, py.HasLoc),
			cmp.Compare(px.Loc.Block, py.Loc.Block),
			cmp.Compare(px.Loc.Statement, py.Loc.Statement),
		); c != 0 {
			return c
		}
		return cmp.Or(cmp.Compare(y.Severity, x.Severity), cmp.Compare(x.Code, y.Code))
	})
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	}
	return 1
}

// Dedup drops diagnostics repeating an earlier code, severity, position
// and message.
func (b *Bag) Dedup() {
	seen := make(map[dedupKey]struct{}, len(b.items))
	b.items = slices.DeleteFunc(b.items, func(d Diagnostic) bool {
		k := keyOf(d)
		if _, dup := seen[k]; dup {
			return true
		}
		seen[k] = struct{}{}
		return false
	})
}
