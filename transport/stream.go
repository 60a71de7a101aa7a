package transport

import (
	"bufio"
	stderrors "errors"
	"io"

	"github.com/wippyai/wirecodec/errors"
)

// StreamReader reads from an io.Reader. It never borrows: Read always
// returns ErrCannotBorrow and callers stage through ReadInto.
type StreamReader struct {
	r   *bufio.Reader
	err error // first non-EOF failure seen by HasMore
}

// NewStreamReader wraps r. An existing *bufio.Reader is used as is.
func NewStreamReader(r io.Reader) *StreamReader {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &StreamReader{r: br}
}

// Read implements Reader. Streams have no storage to lend.
func (s *StreamReader) Read(int) ([]byte, error) {
	return nil, ErrCannotBorrow
}

// ReadInto fills dst from the stream. End of input before dst is full is
// reported as insufficient data; any other failure as a transport error.
func (s *StreamReader) ReadInto(dst []byte) error {
	if len(dst) == 0 {
		return nil
	}
	if s.err != nil {
		return errors.Transport(errors.PhaseDecode, s.err)
	}
	// Fits in the buffer: peek first so a short stream consumes nothing.
	if len(dst) <= s.r.Size() {
		p, err := s.r.Peek(len(dst))
		if len(p) < len(dst) {
			if err == nil || stderrors.Is(err, io.EOF) || stderrors.Is(err, bufio.ErrBufferFull) {
				return insufficient(len(dst), len(p))
			}
			return errors.Transport(errors.PhaseDecode, err)
		}
		copy(dst, p)
		_, _ = s.r.Discard(len(dst))
		return nil
	}
	n, err := io.ReadFull(s.r, dst)
	switch {
	case err == nil:
		return nil
	case stderrors.Is(err, io.EOF), stderrors.Is(err, io.ErrUnexpectedEOF):
		return insufficient(len(dst), n)
	default:
		return errors.Transport(errors.PhaseDecode, err)
	}
}

// HasMore peeks one byte. Only a clean end of input reports false: any other
// failure reports true and is returned by the next ReadInto.
func (s *StreamReader) HasMore() bool {
	if s.err != nil {
		return true
	}
	_, err := s.r.Peek(1)
	if err != nil && !stderrors.Is(err, io.EOF) {
		s.err = err
	}
	return err == nil || s.err != nil
}
