package diag

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color     bool
	ShowNotes bool
}

type palette struct {
	sev  map[Severity]*color.Color
	code *color.Color
	pos  *color.Color
	note *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		sev: map[Severity]*color.Color{
			SevInfo:    color.New(color.FgCyan, color.Bold),
			SevWarning: color.New(color.FgYellow, color.Bold),
			SevError:   color.New(color.FgRed, color.Bold),
		},
		code: color.New(color.Bold),
		pos:  color.New(color.FgBlue),
		note: color.New(color.FgGreen),
	}
	all := []*color.Color{p.code, p.pos, p.note}
	for _, c := range p.sev {
		all = append(all, c)
	}
	for _, c := range all {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Pretty writes diagnostics in a human-readable form:
//
//	error[MOV1001]: cannot move out of borrowed content (*_1).0
//	  --> bodies/a.toml:main:bb0[1]
//	  = note: through a value of type &(String, i32)
//
// Items are written in bag order; call Sort first for stable output.
func Pretty(w io.Writer, bag *Bag, opts PrettyOpts) error {
	p := newPalette(opts.Color)
	for _, d := range bag.Items() {
		sev := p.sev[d.Severity]
		if sev == nil {
			sev = p.sev[SevError]
		}
		if _, err := fmt.Fprintf(w, "%s%s: %s\n",
			sev.Sprint(d.Severity.String()),
			p.code.Sprintf("[%s]", d.Code.ID()),
			d.Message); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "  %s %s\n", p.pos.Sprint("-->"), d.Primary); err != nil {
			return err
		}
		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			prefix := p.note.Sprint("= note:")
			var err error
			if n.Pos == d.Primary {
				_, err = fmt.Fprintf(w, "  %s %s\n", prefix, n.Msg)
			} else {
				_, err = fmt.Fprintf(w, "  %s %s (%s)\n", prefix, n.Msg, n.Pos)
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// FormatShort renders one line per diagnostic (and per note when
// includeNotes is set), suitable for golden files and --format short.
func FormatShort(bag *Bag, includeNotes bool) string {
	var b strings.Builder
	for _, d := range bag.Items() {
		fmt.Fprintf(&b, "%s %s %s %s\n", d.Severity.String(), d.Code.ID(), d.Primary, oneLine(d.Message))
		if !includeNotes {
			continue
		}
		for _, n := range d.Notes {
			fmt.Fprintf(&b, "note %s %s %s\n", d.Code.ID(), n.Pos, oneLine(n.Msg))
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
