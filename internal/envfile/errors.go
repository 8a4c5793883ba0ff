package envfile

import (
	"errors"
	"fmt"
)

var (
	ErrMissingSeparator  = errors.New("expected KEY=value")
	ErrInvalidKey        = errors.New("invalid key")
	ErrUnterminatedQuote = errors.New("unterminated quoted value")
	ErrTrailingText      = errors.New("unexpected text after quoted value")
)

// ParseError reports the first malformed line of a document.
type ParseError struct {
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v: %q", e.Line, e.Err, e.Text)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
