package diag

import (
	"bytes"
	"strings"
	"testing"

	"moveck/internal/mir"
	"moveck/internal/movepaths"
	"moveck/internal/types"
)

func illegalData(in *types.Interner) *movepaths.MoveData {
	b := in.Builtins()
	ref := in.Intern(types.MakeReference(in.Tuple(b.Int, b.Int), false))
	slice := in.Intern(types.MakeSlice(b.Int))
	origin := mir.LocalPlace(1).Project(mir.Deref())
	return &movepaths.MoveData{
		Body: "f",
		IllegalMoves: []movepaths.IllegalMove{
			{
				Place: origin.Project(mir.Field(0, b.Int)),
				Origin: movepaths.IllegalMoveOrigin{
					Location: mir.Location{Block: 1, Statement: 0},
					Kind:     movepaths.BorrowedContent,
					Place:    origin,
					Type:     ref,
				},
			},
			{
				Place: mir.LocalPlace(2).Project(mir.Index(3)),
				Origin: movepaths.IllegalMoveOrigin{
					Location: mir.Location{Block: 0, Statement: 2},
					Kind:     movepaths.InteriorOfSliceOrArray,
					Place:    mir.LocalPlace(2).Project(mir.Index(3)),
					Type:     slice,
					IsIndex:  true,
				},
			},
		},
	}
}

func TestCodeIDs(t *testing.T) {
	tests := []struct {
		code Code
		want string
	}{
		{MovBorrowedContent, "MOV1001"},
		{BodParseError, "BOD2001"},
		{IceInternal, "ICE3001"},
		{IOLoadFileError, "IO4001"},
		{ObsTimings, "OBS6001"},
		{UnknownCode, "E0000"},
	}
	for _, tt := range tests {
		if got := tt.code.ID(); got != tt.want {
			t.Errorf("%d.ID() = %q, want %q", tt.code, got, tt.want)
		}
	}
	if Code(1999).Title() != "Unknown error" {
		t.Errorf("unregistered code should fall back to the unknown title")
	}
}

func TestReportIllegalMoves(t *testing.T) {
	in := types.NewInterner()
	bag := NewBag(0)
	ReportIllegalMoves(BagReporter{Bag: bag}, "a.toml", illegalData(in), in)
	bag.Sort()

	if bag.Len() != 2 {
		t.Fatalf("want 2 diagnostics, got %d", bag.Len())
	}
	first, second := bag.Items()[0], bag.Items()[1]
	if first.Code != MovIndexedContent || first.Primary.String() != "a.toml:f:bb0[2]" {
		t.Errorf("unexpected first diagnostic: %s at %s", first.Code.ID(), first.Primary)
	}
	if len(first.Notes) != 1 {
		t.Errorf("place equal to its origin should only get the type note, got %d notes", len(first.Notes))
	}
	if second.Code != MovBorrowedContent {
		t.Errorf("second code = %s, want MOV1001", second.Code.ID())
	}
	if !strings.Contains(second.Message, "(*_1).0") {
		t.Errorf("message %q should name the moved place", second.Message)
	}
	if len(second.Notes) != 2 || !strings.Contains(second.Notes[0].Msg, "(*_1) is not movable") {
		t.Errorf("unexpected notes: %+v", second.Notes)
	}
	if !bag.HasErrors() || !bag.HasWarnings() {
		t.Errorf("errors count as warnings too")
	}
}

func TestFormatShort(t *testing.T) {
	bag := NewBag(0)
	ReportIllegalMoves(BagReporter{Bag: bag}, "a.toml", illegalData(types.NewInterner()), nil)
	bag.Add(NewError(BodParseError, InFile("b.toml", 3), "bad\n  place"))
	bag.Sort()

	want := "error MOV1004 a.toml:f:bb0[2] cannot move out of indexed content _2[_3]\n" +
		"error MOV1001 a.toml:f:bb1[0] cannot move out of borrowed content (*_1).0\n" +
		"note MOV1001 a.toml:f:bb1[0] (*_1) is not movable\n" +
		"error BOD2001 b.toml:3 bad place"
	if got := FormatShort(bag, true); got != want {
		t.Fatalf("unexpected short output:\nwant:\n%s\n\ngot:\n%s", want, got)
	}
}

func TestBagLimitAndMerge(t *testing.T) {
	bag := NewBag(1)
	if !bag.Add(NewError(IceInternal, InFile("a", 0), "x")) {
		t.Fatalf("first add must succeed")
	}
	if bag.Add(NewError(IceInternal, InFile("a", 0), "y")) {
		t.Fatalf("add past the limit must fail")
	}
	other := NewBag(0)
	other.Add(NewError(IceInternal, InFile("a", 0), "x"))
	other.Add(New(SevWarning, BodInvalid, InFile("b", 0), "z"))
	bag.Merge(other)
	if bag.Len() != 3 || bag.Cap() != 3 || bag.Dropped() != 1 {
		t.Fatalf("merge: len=%d cap=%d dropped=%d", bag.Len(), bag.Cap(), bag.Dropped())
	}
	if bag.Count(SevError) != 2 || bag.Count(SevWarning) != 3 {
		t.Fatalf("counts: errors=%d warnings+=%d", bag.Count(SevError), bag.Count(SevWarning))
	}
	bag.Dedup()
	if bag.Len() != 2 {
		t.Fatalf("dedup left %d items", bag.Len())
	}
}

func TestDedupReporter(t *testing.T) {
	bag := NewBag(0)
	r := NewDedupReporter(BagReporter{Bag: bag})
	pos := At("a.toml", "f", mir.Location{Block: 0, Statement: 1})
	for range 3 {
		ReportError(r, MovBorrowedContent, pos, "m").Emit()
	}
	ReportWarning(r, MovBorrowedContent, pos, "m").Emit()
	if bag.Len() != 2 {
		t.Fatalf("want 2 unique diagnostics, got %d", bag.Len())
	}
}

func TestReporterFunc(t *testing.T) {
	var got []Code
	r := ReporterFunc(func(d Diagnostic) { got = append(got, d.Code) })
	ReportWarning(r, BodInvalid, InFile("a", 0), "w").Emit()
	if len(got) != 1 || got[0] != BodInvalid {
		t.Fatalf("got %v", got)
	}
}

func TestReportBuilderEmitsOnce(t *testing.T) {
	bag := NewBag(0)
	b := ReportError(BagReporter{Bag: bag}, IceInternal, InFile("a", 0), "boom")
	b.Emit()
	b.Emit()
	if bag.Len() != 1 {
		t.Fatalf("builder emitted %d times", bag.Len())
	}
}

func TestPrettyPlain(t *testing.T) {
	in := types.NewInterner()
	bag := NewBag(0)
	ReportIllegalMoves(BagReporter{Bag: bag}, "a.toml", illegalData(in), in)
	bag.Sort()

	var buf bytes.Buffer
	if err := Pretty(&buf, bag, PrettyOpts{Color: false, ShowNotes: true}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"error[MOV1001]: cannot move out of borrowed content (*_1).0\n",
		"  --> a.toml:f:bb1[0]\n",
		"  = note: (*_1) is not movable\n",
		"  = note: through a value of type &(",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("plain output contains escape codes")
	}
}

func TestBuildJSON(t *testing.T) {
	bag := NewBag(0)
	ReportIllegalMoves(BagReporter{Bag: bag}, "a.toml", illegalData(types.NewInterner()), nil)
	out := BuildJSON(bag, false)
	if out.Count != 2 || out.Diagnostics[0].Location.Location != "bb1[0]" || out.Diagnostics[0].Notes != nil {
		t.Fatalf("unexpected json output: %+v", out)
	}
	var buf bytes.Buffer
	if err := WriteJSON(&buf, bag, true); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"code": "MOV1001"`) {
		t.Errorf("json lacks code: %s", buf.String())
	}
}
