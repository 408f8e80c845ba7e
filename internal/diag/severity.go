package diag

// Severity orders diagnostics; a check fails on SevError.
type Severity uint8

const (
	SevInfo Severity = iota
	SevWarning
	SevError
)

var sevNames = [...]string{SevInfo: "info", SevWarning: "warning", SevError: "error"}

// String is the lowercase label used in every output format.
func (s Severity) String() string {
	if int(s) < len(sevNames) {
		return sevNames[s]
	}
	return "unknown"
}
