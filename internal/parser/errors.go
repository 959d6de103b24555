package parser

import "fmt"

// Severity classifies a parse issue.
type Severity string

// Issue severities.
const (
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Issue is a recoverable problem found while scanning a dump.
// Parsing always continues past an issue.
type Issue struct {
	Line     int      `json:"line"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

func (i Issue) String() string {
	return fmt.Sprintf("line %d: %s: %s", i.Line, i.Severity, i.Message)
}

// ReadError is returned when the dump cannot be opened or read.
type ReadError struct {
	Path string
	Line int
	Err  error
}

func (e *ReadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("read dump: %v", e.Err)
	}
	if e.Line > 0 {
		return fmt.Sprintf("read dump %s:%d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("read dump %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}
