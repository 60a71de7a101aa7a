package errors

import (
	stderrors "errors"
	"fmt"
)

// DisplayCollector turns a formatted message into the value carried by the
// custom arm of Error. Value models use it to report their own constraint
// violations through the codec.
type DisplayCollector interface {
	Collect(format string, args ...any) error
}

// Discard drops the message and returns a shared sentinel. Together with
// Custom it produces custom errors without allocating.
type Discard struct{}

// Collect implements DisplayCollector.
func (Discard) Collect(string, ...any) error {
	return ErrMessageDiscarded
}

// Capture formats and keeps the message.
type Capture struct{}

// Collect implements DisplayCollector.
func (Capture) Collect(format string, args ...any) error {
	if len(args) == 0 {
		return &CustomError{Msg: format}
	}
	return &CustomError{Msg: fmt.Sprintf(format, args...)}
}

// CustomError is the value produced by Capture.
type CustomError struct {
	Msg string
}

func (e *CustomError) Error() string {
	return e.Msg
}

type discarded struct{}

func (discarded) Error() string { return "custom error (message discarded)" }

// ErrMessageDiscarded is the custom value produced by Discard.
var ErrMessageDiscarded error = discarded{}

var (
	discardedEncode = Error{Phase: PhaseEncode, Kind: KindCustom, Cause: ErrMessageDiscarded}
	discardedDecode = Error{Phase: PhaseDecode, Kind: KindCustom, Cause: ErrMessageDiscarded}
)

// Custom builds a custom-arm error from a formatted message. A nil collector
// behaves as Capture.
func Custom(phase Phase, c DisplayCollector, format string, args ...any) *Error {
	if c == nil {
		c = Capture{}
	}
	cause := c.Collect(format, args...)
	if cause == ErrMessageDiscarded {
		switch phase {
		case PhaseEncode:
			return &discardedEncode
		case PhaseDecode:
			return &discardedDecode
		}
	}
	return &Error{
		Phase: phase,
		Kind:  KindCustom,
		Cause: cause,
	}
}

// CustomCause returns the collected value when err is a custom-arm error.
func CustomCause(err error) (error, bool) {
	var e *Error
	if !stderrors.As(err, &e) || e.Kind != KindCustom {
		return nil, false
	}
	return e.Cause, true
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if !stderrors.As(err, &e) {
		return "", false
	}
	return e.Kind, true
}
