package diag

import "slices"

// New returns a diagnostic without notes.
func New(sev Severity, code Code, primary Position, msg string) Diagnostic {
	return Diagnostic{Severity: sev, Code: code, Primary: primary, Message: msg}
}

func NewError(code Code, primary Position, msg string) Diagnostic {
	return New(SevError, code, primary, msg)
}

// WithNote returns a copy of d with one more note.
func (d Diagnostic) WithNote(pos Position, msg string) Diagnostic {
	d.Notes = append(slices.Clip(d.Notes), Note{Pos: pos, Msg: msg})
	return d
}

