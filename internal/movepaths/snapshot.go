package movepaths

// Snapshot is a flat, serializable copy of MoveData. Places are rendered in
// textual form; links use -1 for "none".
type Snapshot struct {
	Body         string            `json:"body" msgpack:"body"`
	Paths        []PathSnapshot    `json:"paths" msgpack:"paths"`
	Moves        []MoveSnapshot    `json:"moves" msgpack:"moves"`
	Inits        []InitSnapshot    `json:"inits" msgpack:"inits"`
	IllegalMoves []IllegalSnapshot `json:"illegal_moves,omitempty" msgpack:"illegal_moves,omitempty"`
}

type PathSnapshot struct {
	Place       string `json:"place" msgpack:"place"`
	Parent      int32  `json:"parent" msgpack:"parent"`
	FirstChild  int32  `json:"first_child" msgpack:"first_child"`
	NextSibling int32  `json:"next_sibling" msgpack:"next_sibling"`
}

type MoveSnapshot struct {
	Path     int32  `json:"path" msgpack:"path"`
	Location string `json:"location" msgpack:"location"`
}

type InitSnapshot struct {
	Path     int32  `json:"path" msgpack:"path"`
	Location string `json:"location" msgpack:"location"`
	Kind     string `json:"kind" msgpack:"kind"`
}

type IllegalSnapshot struct {
	Place    string `json:"place" msgpack:"place"`
	Location string `json:"location" msgpack:"location"`
	Kind     string `json:"kind" msgpack:"kind"`
	Origin   string `json:"origin" msgpack:"origin"`
	IsIndex  bool   `json:"is_index,omitempty" msgpack:"is_index,omitempty"`
}

// Snapshot exports d.
func (d *MoveData) Snapshot() Snapshot {
	s := Snapshot{
		Body:  d.Body,
		Paths: make([]PathSnapshot, len(d.MovePaths)),
		Moves: make([]MoveSnapshot, len(d.Moves)),
		Inits: make([]InitSnapshot, len(d.Inits)),
	}
	for i := range d.MovePaths {
		p := &d.MovePaths[i]
		s.Paths[i] = PathSnapshot{
			Place:       p.Place.String(),
			Parent:      int32(p.Parent),
			FirstChild:  int32(p.FirstChild),
			NextSibling: int32(p.NextSibling),
		}
	}
	for i, m := range d.Moves {
		s.Moves[i] = MoveSnapshot{Path: int32(m.Path), Location: m.Source.String()}
	}
	for i, n := range d.Inits {
		s.Inits[i] = InitSnapshot{Path: int32(n.Path), Location: n.Location.String(), Kind: n.Kind.String()}
	}
	for _, im := range d.IllegalMoves {
		s.IllegalMoves = append(s.IllegalMoves, IllegalSnapshot{
			Place:    im.Place.String(),
			Location: im.Origin.Location.String(),
			Kind:     im.Origin.Kind.String(),
			Origin:   im.Origin.Place.String(),
			IsIndex:  im.Origin.IsIndex,
		})
	}
	return s
}
