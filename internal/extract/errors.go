package extract

import "fmt"

// ParseError reports a line or row whose required fields (date, amount)
// could not be recovered.
type ParseError struct {
	Line int    // 1-based line or row number within the source
	Text string // offending content, trimmed for display
	Err  error
}

func (e *ParseError) Error() string {
	text := e.Text
	if len(text) > 80 {
		text = text[:80] + "..."
	}
	return fmt.Sprintf("line %d: %v: %q", e.Line, e.Err, text)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func newParseError(line int, text string, err error) *ParseError {
	return &ParseError{Line: line, Text: text, Err: err}
}
