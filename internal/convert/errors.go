package convert

import (
	"github.com/mgpai22/tiergrid/internal/faults"
)

var (
	ErrNotFound           = faults.ErrNotFound
	ErrInvalidExtension   = faults.ErrInvalidExtension
	ErrMalformedInput     = faults.ErrMalformedInput
	ErrStructural         = faults.ErrStructural
	ErrUnsupportedVariant = faults.ErrUnsupportedVariant
	ErrUnsupportedInput   = faults.ErrUnsupportedInput
)

// conversion direction, used as the prefix of every boundary error
type Direction string

const (
	ToTextGrid Direction = "EAF→TextGrid"
	ToEAF      Direction = "TextGrid→EAF"
)

// the only error the boundary functions return
type ConversionError struct {
	Direction Direction
	Err       error
}

func (e *ConversionError) Error() string {
	return string(e.Direction) + ": " + e.Err.Error()
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

func wrap(dir Direction, err error) error {
	if err == nil {
		return nil
	}
	return &ConversionError{Direction: dir, Err: err}
}
