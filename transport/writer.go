package transport

import (
	"io"

	"github.com/wippyai/wirecodec/errors"
)

// BufferWriter appends to a growable in-memory buffer.
type BufferWriter struct {
	buf []byte
}

// NewBufferWriter returns a writer with the given initial capacity.
func NewBufferWriter(capacity int) *BufferWriter {
	return &BufferWriter{buf: make([]byte, 0, capacity)}
}

// Write appends p.
func (w *BufferWriter) Write(p []byte) error {
	w.buf = append(w.buf, p...)
	return nil
}

// Bytes returns the written bytes. The slice aliases the internal buffer.
func (w *BufferWriter) Bytes() []byte {
	return w.buf
}

// Len returns the number of bytes written.
func (w *BufferWriter) Len() int {
	return len(w.buf)
}

// Reset discards written bytes and keeps the allocation.
func (w *BufferWriter) Reset() {
	w.buf = w.buf[:0]
}

// FixedWriter writes into a caller-provided buffer of fixed size.
type FixedWriter struct {
	buf []byte
	n   int
}

// NewFixedWriter writes into buf[0:len(buf)].
func NewFixedWriter(buf []byte) *FixedWriter {
	return &FixedWriter{buf: buf}
}

// Write copies p into the buffer or fails with a capacity error, writing
// nothing.
func (w *FixedWriter) Write(p []byte) error {
	if len(p) > len(w.buf)-w.n {
		return errors.Capacity(errors.PhaseEncode, len(p), len(w.buf)-w.n)
	}
	w.n += copy(w.buf[w.n:], p)
	return nil
}

// Bytes returns the written prefix of the buffer.
func (w *FixedWriter) Bytes() []byte {
	return w.buf[:w.n]
}

// Len returns the number of bytes written.
func (w *FixedWriter) Len() int {
	return w.n
}

// Free returns the remaining capacity.
func (w *FixedWriter) Free() int {
	return len(w.buf) - w.n
}

// IOWriter adapts an io.Writer.
type IOWriter struct {
	w io.Writer
}

// NewIOWriter wraps w.
func NewIOWriter(w io.Writer) *IOWriter {
	return &IOWriter{w: w}
}

// Write forwards p to the wrapped writer. A short write without an error is
// reported as insufficient data, any error as a transport failure.
func (w *IOWriter) Write(p []byte) error {
	n, err := w.w.Write(p)
	if err != nil {
		return errors.Transport(errors.PhaseEncode, err)
	}
	if n < len(p) {
		return errors.New(errors.PhaseEncode, errors.KindInsufficientData).
			Value(len(p)).
			Detail("short write: %d of %d bytes", n, len(p)).
			Build()
	}
	return nil
}

// Unwrap returns the wrapped writer.
func (w *IOWriter) Unwrap() io.Writer {
	return w.w
}
