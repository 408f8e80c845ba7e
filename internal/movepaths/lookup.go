package movepaths

import (
	"moveck/internal/mir"
)

// projKey identifies a child node: the parent plus the projection with its
// type and index operand dropped. Field children also carry the variant
// selected by a preceding downcast so fields of different variants stay
// apart.
type projKey struct {
	parent    MovePathIndex
	kind      mir.PlaceElemKind
	field     int
	variant   int
	offset    uint64
	minLength uint64
	from      uint64
	to        uint64
	fromEnd   bool
}

func lift(parent MovePathIndex, elem mir.PlaceElem, variant int) projKey {
	k := projKey{parent: parent, kind: elem.Kind, variant: mir.NoVariant}
	switch elem.Kind {
	case mir.ProjField:
		k.field = elem.Field
		k.variant = variant
	case mir.ProjConstantIndex:
		k.offset, k.minLength, k.fromEnd = elem.Offset, elem.MinLength, elem.FromEnd
	case mir.ProjSubslice:
		k.from, k.to, k.fromEnd = elem.From, elem.To, elem.FromEnd
	}
	return k
}

// createsNode reports whether a projection gets a node of its own.
// Downcasts and casts change interpretation, not storage.
func createsNode(kind mir.PlaceElemKind) bool {
	switch kind {
	case mir.ProjDowncast, mir.ProjOpaqueCast, mir.ProjSubtype:
		return false
	}
	return true
}

// LookupKind tells whether Find matched the whole place.
type LookupKind uint8

const (
	// LookupExact: Path is the node of the place itself.
	LookupExact LookupKind = iota
	// LookupParent: the place has no node; Path is the closest tracked
	// ancestor, or NoMovePath.
	LookupParent
)

// LookupResult is the outcome of MovePathLookup.Find.
type LookupResult struct {
	Kind LookupKind
	Path MovePathIndex
}

// MovePathLookup maps places back to move paths.
type MovePathLookup struct {
	locals      []MovePathIndex
	projections map[projKey]MovePathIndex
	// derefs maps a deref temp to the fully expanded place it caches.
	derefs map[mir.LocalID]mir.Place
}

func newMovePathLookup(nlocals int) MovePathLookup {
	locals := make([]MovePathIndex, nlocals)
	for i := range locals {
		locals[i] = NoMovePath
	}
	return MovePathLookup{
		locals:      locals,
		projections: make(map[projKey]MovePathIndex),
		derefs:      make(map[mir.LocalID]mir.Place),
	}
}

// FindLocal returns the root node of local.
func (l *MovePathLookup) FindLocal(local mir.LocalID) (MovePathIndex, bool) {
	if local < 0 || int(local) >= len(l.locals) {
		return NoMovePath, false
	}
	idx := l.locals[local]
	return idx, idx != NoMovePath
}

// Find resolves place without creating nodes.
func (l *MovePathLookup) Find(place mir.Place) LookupResult {
	place = l.expand(place)
	result, ok := l.FindLocal(place.Local)
	if !ok {
		return LookupResult{Kind: LookupParent, Path: NoMovePath}
	}
	variant := mir.NoVariant
	for _, elem := range place.Proj {
		if elem.Kind == mir.ProjDowncast {
			variant = elem.Variant
			continue
		}
		if !createsNode(elem.Kind) {
			continue
		}
		child, ok := l.projections[lift(result, elem, variant)]
		if !ok {
			return LookupResult{Kind: LookupParent, Path: result}
		}
		result = child
		variant = mir.NoVariant
	}
	return LookupResult{Kind: LookupExact, Path: result}
}

// DerefAlias returns the place a deref temp caches.
func (l *MovePathLookup) DerefAlias(local mir.LocalID) (mir.Place, bool) {
	p, ok := l.derefs[local]
	return p, ok
}

// expand rewrites a place rooted at a deref temp into the place it aliases.
func (l *MovePathLookup) expand(place mir.Place) mir.Place {
	alias, ok := l.derefs[place.Local]
	if !ok {
		return place
	}
	return alias.Project(place.Proj...)
}

// addDerefAlias records that temp caches target and makes temp share the
// root node of target's base local.
func (l *MovePathLookup) addDerefAlias(temp mir.LocalID, target mir.Place) {
	target = l.expand(target)
	l.derefs[temp] = target
	l.locals[temp] = l.locals[target.Local]
}
