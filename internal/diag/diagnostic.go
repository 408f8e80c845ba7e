package diag

import (
	"fmt"

	"moveck/internal/mir"
)

// Position points into a body file: optionally a source line of the file
// and optionally a program point of one of its bodies.
type Position struct {
	File string
	Line int // 0 when unknown
	Body string
	Loc  mir.Location
	// HasLoc marks Loc as meaningful.
	HasLoc bool
}

// At returns a position for a program point of body in file.
func At(file, body string, loc mir.Location) Position {
	return Position{File: file, Body: body, Loc: loc, HasLoc: true}
}

// InFile returns a position for a line of file; line 0 means the whole file.
func InFile(file string, line int) Position {
	return Position{File: file, Line: line}
}

func (p Position) String() string {
	s := p.File
	if p.Line > 0 {
		s += fmt.Sprintf(":%d", p.Line)
	}
	if p.Body != "" {
		s += ":" + p.Body
	}
	if p.HasLoc {
		s += ":" + p.Loc.String()
	}
	return s
}

type Note struct {
	Pos Position
	Msg string
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  Position
	Notes    []Note
}
