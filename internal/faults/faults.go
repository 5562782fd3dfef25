// Package faults holds the error kinds shared by the codecs and the
// conversion boundary, so callers can match them with errors.Is at any
// layer.
package faults

import (
	"errors"
	"fmt"
)

var (
	// input path does not exist
	ErrNotFound = errors.New("file not found")
	// input path has an extension the direction does not accept
	ErrInvalidExtension = errors.New("invalid file extension")
	// XML not well formed, or TextGrid lines not in the expected shape
	ErrMalformedInput = errors.New("malformed input")
	// a required id or reference is missing or dangling
	ErrStructural = errors.New("structural error")
	// syntax variant outside short and long
	ErrUnsupportedVariant = errors.New("unsupported variant")
	// well-formed input the converter cannot represent in the target format
	ErrUnsupportedInput = errors.New("unsupported input")
)

// malformed input located at a specific line
type SyntaxError struct {
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s at line %d: %s", ErrMalformedInput, e.Line, e.Msg)
}

func (e *SyntaxError) Unwrap() error {
	return ErrMalformedInput
}

func Syntaxf(line int, format string, args ...any) *SyntaxError {
	return &SyntaxError{Line: line, Msg: fmt.Sprintf(format, args...)}
}
