package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Move-site diagnostics
	MovInfo                         Code = 1000
	MovBorrowedContent              Code = 1001
	MovInteriorOfTypeWithDestructor Code = 1002
	MovInteriorOfSlice              Code = 1003
	MovIndexedContent               Code = 1004

	// Body file diagnostics
	BodInfo          Code = 2000
	BodParseError    Code = 2001
	BodInvalid       Code = 2002
	BodUnknownType   Code = 2003
	BodUnknownLocal  Code = 2004
	BodDuplicateName Code = 2005

	// Analyzer faults
	IceInternal Code = 3001

	IOLoadFileError Code = 4001

	ObsTimings Code = 6001
)

var (
	codeDescription = map[Code]string{
		UnknownCode:                     "Unknown error",
		MovInfo:                         "Move information",
		MovBorrowedContent:              "cannot move out of borrowed content",
		MovInteriorOfTypeWithDestructor: "cannot move out of type with a destructor",
		MovInteriorOfSlice:              "cannot move out of slice element",
		MovIndexedContent:               "cannot move out of indexed content",
		BodInfo:                         "Body file information",
		BodParseError:                   "Body file syntax error",
		BodInvalid:                      "Malformed body",
		BodUnknownType:                  "Unknown type",
		BodUnknownLocal:                 "Unknown local",
		BodDuplicateName:                "Duplicate name",
		IceInternal:                     "Internal analyzer error",
		IOLoadFileError:                 "I/O load file error",
		ObsTimings:                      "Pipeline timings",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("MOV%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("BOD%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("ICE%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
