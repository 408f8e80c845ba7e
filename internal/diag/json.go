package diag

import (
	"encoding/json"
	"io"
)

// LocationJSON is the JSON form of a Position.
type LocationJSON struct {
	File     string `json:"file"`
	Line     int    `json:"line,omitempty"`
	Body     string `json:"body,omitempty"`
	Location string `json:"location,omitempty"`
}

type NoteJSON struct {
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
}

type DiagnosticJSON struct {
	Severity string       `json:"severity"`
	Code     string       `json:"code"`
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
	Notes    []NoteJSON   `json:"notes,omitempty"`
}

// DiagnosticsOutput is the root of the JSON output.
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
}

func makeLocation(p Position) LocationJSON {
	loc := LocationJSON{File: p.File, Line: p.Line, Body: p.Body}
	if p.HasLoc {
		loc.Location = p.Loc.String()
	}
	return loc
}

// BuildJSON converts the bag without serializing it.
func BuildJSON(bag *Bag, includeNotes bool) DiagnosticsOutput {
	out := DiagnosticsOutput{Diagnostics: make([]DiagnosticJSON, 0, bag.Len())}
	for _, d := range bag.Items() {
		dj := DiagnosticJSON{
			Severity: d.Severity.String(),
			Code:     d.Code.ID(),
			Message:  d.Message,
			Location: makeLocation(d.Primary),
		}
		if includeNotes {
			for _, n := range d.Notes {
				dj.Notes = append(dj.Notes, NoteJSON{Message: n.Msg, Location: makeLocation(n.Pos)})
			}
		}
		out.Diagnostics = append(out.Diagnostics, dj)
	}
	out.Count = len(out.Diagnostics)
	return out
}

// WriteJSON writes the bag as indented JSON.
func WriteJSON(w io.Writer, bag *Bag, includeNotes bool) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(BuildJSON(bag, includeNotes))
}
