package transport

import (
	stderrors "errors"

	"github.com/wippyai/wirecodec/errors"
)

// ErrCannotBorrow is returned by Reader.Read when the source cannot lend a
// view into its storage. Callers fall back to ReadInto.
var ErrCannotBorrow = stderrors.New("transport: source cannot borrow")

// Reader is a byte source.
type Reader interface {
	// Read returns a view of the next n bytes and advances past them.
	// The view stays valid until the underlying storage is modified.
	Read(n int) ([]byte, error)
	// ReadInto fills dst with the next len(dst) bytes.
	ReadInto(dst []byte) error
	// HasMore reports whether at least one more byte is available.
	HasMore() bool
}

// Writer is a byte sink.
type Writer interface {
	// Write appends all of p or fails. Implementations must not modify p
	// or retain it after returning.
	Write(p []byte) error
}

func insufficient(need, have int) error {
	return errors.InsufficientData(errors.PhaseDecode, need, have)
}

func negative(n int) error {
	return errors.New(errors.PhaseDecode, errors.KindInvalidData).
		Value(n).
		Detail("negative read length %d", n).
		Build()
}
