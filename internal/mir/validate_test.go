package mir_test

import (
	"strings"
	"testing"

	"moveck/internal/mir"
	"moveck/internal/types"
)

func retTerm() mir.Terminator { return mir.Terminator{Kind: mir.TermReturn} }

func gotoTerm(target mir.BlockID) mir.Terminator {
	return mir.Terminator{Kind: mir.TermGoto, Goto: mir.GotoTerm{Target: target}}
}

// simpleBody builds `fn f(_1: &T) -> T` with a deref temp.
func simpleBody(in *types.Interner) *mir.Body {
	intTy := in.Builtins().Int
	refTy := in.Intern(types.MakeReference(intTy, false))
	return &mir.Body{
		Name:     "f",
		ArgCount: 1,
		Locals: []mir.Local{
			{Name: "ret", Type: intTy},
			{Name: "r", Type: refTy},
			{Name: "tmp", Type: refTy, DerefTemp: true},
		},
		Blocks: []mir.Block{
			{
				Statements: []mir.Statement{
					mir.Assign(mir.LocalPlace(2), mir.RValue{Kind: mir.RValueCopyForDeref, Place: mir.LocalPlace(1)}),
					mir.Assign(mir.LocalPlace(0), mir.Use(mir.Copy(mir.LocalPlace(2).Project(mir.Deref())))),
				},
				Term: gotoTerm(1),
			},
			{Term: retTerm()},
		},
	}
}

func TestValidate_ValidBody(t *testing.T) {
	in := types.NewInterner()
	if err := mir.Validate(simpleBody(in), in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(b *mir.Body, in *types.Interner)
		want   string
	}{
		{
			name: "unterminated",
			mutate: func(b *mir.Body, _ *types.Interner) {
				b.Blocks[1].Term = mir.Terminator{}
			},
			want: "unterminated block",
		},
		{
			name: "missing_target",
			mutate: func(b *mir.Body, _ *types.Interner) {
				b.Blocks[0].Term = gotoTerm(7)
			},
			want: "target bb7 does not exist",
		},
		{
			name: "missing_local",
			mutate: func(b *mir.Body, _ *types.Interner) {
				b.Blocks[1].Statements = []mir.Statement{mir.StorageDead(9)}
			},
			want: "local _9 does not exist",
		},
		{
			name: "copy_for_deref_into_plain_local",
			mutate: func(b *mir.Body, _ *types.Interner) {
				b.Locals[2].DerefTemp = false
			},
			want: "not a deref temp",
		},
		{
			name: "deref_temp_written_by_use",
			mutate: func(b *mir.Body, _ *types.Interner) {
				b.Blocks[1].Statements = []mir.Statement{
					mir.Assign(mir.LocalPlace(2), mir.Use(mir.Copy(mir.LocalPlace(1)))),
				}
			},
			want: "written by non-CopyForDeref",
		},
		{
			name: "deref_of_int",
			mutate: func(b *mir.Body, _ *types.Interner) {
				b.Blocks[1].Statements = []mir.Statement{
					mir.Assign(mir.LocalPlace(0), mir.Use(mir.Copy(mir.LocalPlace(0).Project(mir.Deref())))),
				}
			},
			want: "deref of non-pointer",
		},
		{
			name: "arg_count",
			mutate: func(b *mir.Body, _ *types.Interner) {
				b.ArgCount = 5
			},
			want: "arg count 5",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := types.NewInterner()
			b := simpleBody(in)
			tt.mutate(b, in)
			err := mir.Validate(b, in)
			if err == nil {
				t.Fatalf("expected error containing %q", tt.want)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not contain %q", err, tt.want)
			}
			if !strings.HasPrefix(err.Error(), "function f:") {
				t.Fatalf("error %q is not prefixed by the body name", err)
			}
		})
	}
}

func TestWalkPlacesOrder(t *testing.T) {
	in := types.NewInterner()
	b := simpleBody(in)
	var got []string
	mir.WalkPlaces(b, func(loc mir.Location, p mir.Place) {
		got = append(got, loc.String()+" "+p.String())
	})
	want := []string{
		"bb0[0] _2",
		"bb0[0] _1",
		"bb0[1] _0",
		"bb0[1] (*_2)",
	}
	if strings.Join(got, ";") != strings.Join(want, ";") {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestSuccessors(t *testing.T) {
	tests := []struct {
		name string
		term mir.Terminator
		want []mir.BlockID
	}{
		{"return", retTerm(), nil},
		{"goto", gotoTerm(3), []mir.BlockID{3}},
		{
			name: "diverging_call",
			term: mir.Terminator{Kind: mir.TermCall, Call: mir.CallTerm{
				Target: mir.NoBlockID,
				Unwind: mir.UnwindAction{Kind: mir.UnwindCleanup, Block: 4},
			}},
			want: []mir.BlockID{4},
		},
		{
			name: "switch",
			term: mir.Terminator{Kind: mir.TermSwitchInt, SwitchInt: mir.SwitchIntTerm{
				Values: []uint64{0, 1}, Targets: []mir.BlockID{1, 2}, Otherwise: 3,
			}},
			want: []mir.BlockID{1, 2, 3},
		},
		{
			name: "yield_without_drop",
			term: mir.Terminator{Kind: mir.TermYield, Yield: mir.YieldTerm{Resume: 5, Drop: mir.NoBlockID}},
			want: []mir.BlockID{5},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.term.Successors()
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}
