package mir_test

import (
	"testing"

	"moveck/internal/mir"
	"moveck/internal/types"
)

func TestPlaceString(t *testing.T) {
	tests := []struct {
		place mir.Place
		want  string
	}{
		{mir.LocalPlace(1), "_1"},
		{mir.LocalPlace(1).Project(mir.Deref()), "(*_1)"},
		{mir.LocalPlace(1).Project(mir.Deref(), mir.Field(0, types.NoTypeID)), "(*_1).0"},
		{mir.LocalPlace(2).Project(mir.Index(3)), "_2[_3]"},
		{mir.LocalPlace(2).Project(mir.ConstantIndex(1, 4, false)), "_2[1 of 4]"},
		{mir.LocalPlace(2).Project(mir.ConstantIndex(1, 4, true)), "_2[-1 of 4]"},
		{mir.LocalPlace(2).Project(mir.Subslice(0, 2, false)), "_2[0..2]"},
		{mir.LocalPlace(2).Project(mir.Subslice(1, 1, true)), "_2[1:-1]"},
		{mir.LocalPlace(4).Project(mir.Downcast(1, "Some"), mir.Field(0, types.NoTypeID)), "(_4 as Some).0"},
		{mir.LocalPlace(4).Project(mir.OpaqueCast(types.NoTypeID)), "(_4 opaque)"},
	}
	for _, tt := range tests {
		if got := tt.place.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestPlaceProjectDoesNotAlias(t *testing.T) {
	base := mir.LocalPlace(1).Project(mir.Deref())
	a := base.Project(mir.Field(0, types.NoTypeID))
	b := base.Project(mir.Field(1, types.NoTypeID))
	if a.Proj[1].Field != 0 || b.Proj[1].Field != 1 {
		t.Fatalf("projections share storage: %s %s", a, b)
	}
	prefix := a.Prefix(1)
	extended := prefix.Project(mir.Field(7, types.NoTypeID))
	if a.Proj[1].Field != 0 {
		t.Fatalf("Prefix leaked capacity into the original: %s", extended)
	}
}

func TestPlaceLastProjection(t *testing.T) {
	p := mir.LocalPlace(1).Project(mir.Deref(), mir.Field(2, types.NoTypeID))
	base, elem, ok := p.LastProjection()
	if !ok || elem.Kind != mir.ProjField || elem.Field != 2 {
		t.Fatalf("unexpected last projection %+v", elem)
	}
	if !base.Equal(mir.LocalPlace(1).Project(mir.Deref())) {
		t.Fatalf("unexpected base %s", base)
	}
	if _, _, ok := mir.LocalPlace(1).LastProjection(); ok {
		t.Fatalf("bare local has no projection")
	}
	if l, ok := mir.LocalPlace(3).AsLocal(); !ok || l != 3 {
		t.Fatalf("AsLocal failed")
	}
}

func TestPlaceKeyIdentity(t *testing.T) {
	a := mir.LocalPlace(1).Project(mir.Field(0, types.NoTypeID))
	b := mir.LocalPlace(1).Project(mir.Field(0, types.NoTypeID))
	c := mir.LocalPlace(1).Project(mir.Field(1, types.NoTypeID))
	if a.Key() != b.Key() {
		t.Fatalf("equal places should share a key")
	}
	if a.Key() == c.Key() {
		t.Fatalf("distinct places should not share a key")
	}
}

func TestPlaceTy(t *testing.T) {
	in := types.NewInterner()
	b := in.Builtins()
	arr := in.Intern(types.MakeArray(b.Int, 5))
	slice := in.Intern(types.MakeSlice(b.Int))
	boxed := in.Box(in.Tuple(b.Int, b.Bool))
	opt := in.RegisterAdt("Option", types.AdtEnum, false)
	in.SetAdtVariants(opt, []types.VariantInfo{{Name: "None"}, {Name: "Some", Fields: []types.TypeID{b.Str}}})

	body := &mir.Body{Locals: []mir.Local{
		{Type: b.Unit},
		{Type: arr},
		{Type: slice},
		{Type: boxed},
		{Type: opt},
	}}
	tests := []struct {
		name  string
		place mir.Place
		want  types.TypeID
	}{
		{"array_index", mir.LocalPlace(1).Project(mir.ConstantIndex(0, 5, false)), b.Int},
		{"array_subslice", mir.LocalPlace(1).Project(mir.Subslice(1, 3, false)), in.Intern(types.MakeArray(b.Int, 2))},
		{"array_subslice_from_end", mir.LocalPlace(1).Project(mir.Subslice(1, 1, true)), in.Intern(types.MakeArray(b.Int, 3))},
		{"slice_subslice", mir.LocalPlace(2).Project(mir.Subslice(1, 1, true)), slice},
		{"box_field", mir.LocalPlace(3).Project(mir.Deref(), mir.Field(1, types.NoTypeID)), b.Bool},
		{"downcast_field", mir.LocalPlace(4).Project(mir.Downcast(1, "Some"), mir.Field(0, types.NoTypeID)), b.Str},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pt, err := body.PlaceTy(in, tt.place)
			if err != nil {
				t.Fatalf("PlaceTy: %v", err)
			}
			if pt.Ty != tt.want {
				t.Fatalf("got %s, want %s", types.Label(in, pt.Ty), types.Label(in, tt.want))
			}
		})
	}

	if _, err := body.PlaceTy(in, mir.LocalPlace(4).Project(mir.Field(0, types.NoTypeID))); err == nil {
		t.Fatalf("field of an enum without downcast should fail")
	}
}
