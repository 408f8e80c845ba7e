package types

import (
	"fmt"
	"maps"
)

// Length is the statically declared length of a fixed-size array: either a
// concrete count or the name of a constant evaluated later.
type Length struct {
	Count uint64
	Param string
}

// Symbolic reports whether the length still has to be evaluated.
func (l Length) Symbolic() bool {
	return l.Param != ""
}

func (l Length) String() string {
	if l.Symbolic() {
		return l.Param
	}
	return fmt.Sprintf("%d", l.Count)
}

// ArrayInfo returns (elem, length, true) if id is a fixed-size array.
func (in *Interner) ArrayInfo(id TypeID) (elem TypeID, length Length, ok bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindArray {
		return NoTypeID, Length{}, false
	}
	if tt.Count == ArraySymbolicLength {
		return tt.Elem, Length{Param: in.nameAt(tt.Payload)}, true
	}
	return tt.Elem, Length{Count: tt.Count}, true
}

// SliceElem returns the element type of an unsized slice.
func (in *Interner) SliceElem(id TypeID) (TypeID, bool) {
	tt, ok := in.Lookup(id)
	if !ok || tt.Kind != KindSlice {
		return NoTypeID, false
	}
	return tt.Elem, true
}

// ParamEnv supplies values for symbolic constants appearing in array lengths.
// The zero value is an empty environment.
type ParamEnv struct {
	consts map[string]uint64
}

// NewParamEnv builds an environment from name/value pairs.
func NewParamEnv(consts map[string]uint64) ParamEnv {
	return ParamEnv{consts: maps.Clone(consts)}
}

// Lookup returns the value bound to name.
func (e ParamEnv) Lookup(name string) (uint64, bool) {
	v, ok := e.consts[name]
	return v, ok
}

// Len returns the number of bound constants.
func (e ParamEnv) Len() int {
	return len(e.consts)
}

// EvalArrayLen evaluates the length of the fixed-size array id to a
// concrete integer.
func (in *Interner) EvalArrayLen(id TypeID, env ParamEnv) (uint64, error) {
	_, length, ok := in.ArrayInfo(id)
	if !ok {
		return 0, fmt.Errorf("type %s is not a fixed-size array", Label(in, id))
	}
	if !length.Symbolic() {
		return length.Count, nil
	}
	n, ok := env.Lookup(length.Param)
	if !ok {
		return 0, fmt.Errorf("array length %q is not bound in the environment", length.Param)
	}
	return n, nil
}
