package bodyfile

import (
	"errors"
	"fmt"

	"moveck/internal/mir"
)

// syntaxError is a failure inside one line of textual MIR.
type syntaxError struct {
	col int
	msg string
}

func (e *syntaxError) Error() string {
	return fmt.Sprintf("col %d: %s", e.col+1, e.msg)
}

func errorf(col int, format string, args ...any) *syntaxError {
	return &syntaxError{col: col, msg: fmt.Sprintf(format, args...)}
}

// Error locates a problem in a body file. Body is empty for file-level
// problems; HasLoc is set when the problem is inside a statement or
// terminator.
type Error struct {
	File   string
	Line   int // TOML syntax errors only
	Body   string
	Loc    mir.Location
	HasLoc bool
	Err    error
}

func (e *Error) Error() string {
	s := e.File
	if e.Line > 0 {
		s += fmt.Sprintf(":%d", e.Line)
	}
	if e.Body != "" {
		s += ": " + e.Body
	}
	if e.HasLoc {
		s += ": " + e.Loc.String()
	}
	return s + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// Errors flattens err (possibly an errors.Join tree) into its *Error leaves.
func Errors(err error) []*Error {
	var out []*Error
	var walk func(error)
	walk = func(err error) {
		if err == nil {
			return
		}
		if fe, ok := err.(*Error); ok {
			out = append(out, fe)
			return
		}
		if multi, ok := err.(interface{ Unwrap() []error }); ok {
			for _, e := range multi.Unwrap() {
				walk(e)
			}
			return
		}
		var fe *Error
		if errors.As(err, &fe) {
			out = append(out, fe)
		}
	}
	walk(err)
	return out
}
