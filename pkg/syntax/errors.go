package syntax

import "fmt"

// SyntaxError reports source that could not be parsed. Line is 0 when the
// error refers to the whole unit.
type SyntaxError struct {
	Filename string
	Line     int
	Column   int
	Msg      string
}

func (e *SyntaxError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("%s (%s)", e.Msg, e.Filename)
	}
	return fmt.Sprintf("%s (%s, line %d)", e.Msg, e.Filename, e.Line)
}
