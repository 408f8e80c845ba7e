package mir

type TermKind uint8

const (
	TermNone TermKind = iota
	TermGoto
	TermSwitchInt
	TermUnwindResume
	TermUnwindTerminate
	TermReturn
	TermUnreachable
	TermDrop
	TermCall
	TermAssert
	TermYield
	TermCoroutineDrop
	TermFalseEdge
	TermFalseUnwind
	TermInlineAsm
)

type Terminator struct {
	Kind TermKind

	Goto        GotoTerm
	SwitchInt   SwitchIntTerm
	Drop        DropTerm
	Call        CallTerm
	Assert      AssertTerm
	Yield       YieldTerm
	FalseEdge   FalseEdgeTerm
	FalseUnwind FalseUnwindTerm
	InlineAsm   InlineAsmTerm
}

type UnwindKind uint8

const (
	UnwindContinue UnwindKind = iota
	UnwindUnreachable
	UnwindTerminate
	UnwindCleanup
)

// UnwindAction says where control goes if the terminator panics.
type UnwindAction struct {
	Kind  UnwindKind
	Block BlockID // UnwindCleanup only
}

type GotoTerm struct {
	Target BlockID
}

type SwitchIntTerm struct {
	Discr     Operand
	Values    []uint64
	Targets   []BlockID
	Otherwise BlockID
}

type DropTerm struct {
	Place  Place
	Target BlockID
	Unwind UnwindAction
}

// CallTerm calls Func. Target is NoBlockID for diverging calls; Destination
// is only written along the Target edge.
type CallTerm struct {
	Func        Operand
	Args        []Operand
	Destination Place
	Target      BlockID
	Unwind      UnwindAction
}

type AssertTerm struct {
	Cond     Operand
	Expected bool
	Msg      string
	Target   BlockID
	Unwind   UnwindAction
}

// YieldTerm suspends a coroutine with Value; on resume the resume argument
// is written to ResumeArg.
type YieldTerm struct {
	Value     Operand
	Resume    BlockID
	ResumeArg Place
	Drop      BlockID
}

type FalseEdgeTerm struct {
	Real      BlockID
	Imaginary BlockID
}

type FalseUnwindTerm struct {
	Real   BlockID
	Unwind UnwindAction
}

type AsmOperandKind uint8

const (
	AsmIn AsmOperandKind = iota
	AsmOut
	AsmInOut
	AsmConst
	AsmSymFn
	AsmSymStatic
)

// AsmOperand is one operand of an inline assembly block. Out and InOut may
// omit their output place (HasOut=false) when the value is discarded.
type AsmOperand struct {
	Kind   AsmOperandKind
	Reg    string
	Late   bool
	In     Operand
	Out    Place
	HasOut bool
	Value  Operand // Const, SymFn
	Symbol string  // SymStatic
}

type InlineAsmTerm struct {
	Template    string
	Operands    []AsmOperand
	Destination BlockID // NoBlockID when the asm never returns
	Unwind      UnwindAction
}

// Successors lists every block reachable from t, unwind edges included.
func (t *Terminator) Successors() []BlockID {
	var out []BlockID
	unwind := func(u UnwindAction) {
		if u.Kind == UnwindCleanup {
			out = append(out, u.Block)
		}
	}
	some := func(b BlockID) {
		if b != NoBlockID {
			out = append(out, b)
		}
	}
	switch t.Kind {
	case TermGoto:
		out = append(out, t.Goto.Target)
	case TermSwitchInt:
		out = append(out, t.SwitchInt.Targets...)
		out = append(out, t.SwitchInt.Otherwise)
	case TermDrop:
		out = append(out, t.Drop.Target)
		unwind(t.Drop.Unwind)
	case TermCall:
		some(t.Call.Target)
		unwind(t.Call.Unwind)
	case TermAssert:
		out = append(out, t.Assert.Target)
		unwind(t.Assert.Unwind)
	case TermYield:
		out = append(out, t.Yield.Resume)
		some(t.Yield.Drop)
	case TermFalseEdge:
		out = append(out, t.FalseEdge.Real, t.FalseEdge.Imaginary)
	case TermFalseUnwind:
		out = append(out, t.FalseUnwind.Real)
		unwind(t.FalseUnwind.Unwind)
	case TermInlineAsm:
		some(t.InlineAsm.Destination)
		unwind(t.InlineAsm.Unwind)
	}
	return out
}
