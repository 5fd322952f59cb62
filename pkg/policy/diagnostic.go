package policy

import "fmt"

// SourceUnit is one submitted script.
type SourceUnit struct {
	Filename string
	Text     string
}

// Diagnostic is a single validation finding. Line is 0 only for findings
// that refer to the whole unit.
type Diagnostic struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// String renders the diagnostic the way it is reported to users,
// e.g. "Line 1: Blocked import 'os'".
func (d Diagnostic) String() string {
	if d.Line <= 0 {
		return d.Message
	}
	return fmt.Sprintf("Line %d: %s", d.Line, d.Message)
}
