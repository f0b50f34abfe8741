package wwriff

import "fmt"

// ParseError reports a structural problem found while walking the RIFF/RIFX
// container: a missing or malformed chunk, a field value outside what the
// converter understands, or inconsistent framing between chunks.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("wwriff: %s", e.Reason)
}

func errParse(reason string) error {
	return &ParseError{Reason: reason}
}
