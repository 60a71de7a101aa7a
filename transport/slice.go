package transport

// SliceReader reads from an in-memory byte slice and borrows without copying.
type SliceReader struct {
	buf []byte
	off int
}

// NewSliceReader returns a reader positioned at the start of buf.
func NewSliceReader(buf []byte) *SliceReader {
	return &SliceReader{buf: buf}
}

// Read returns buf[off:off+n] and advances the cursor.
func (r *SliceReader) Read(n int) ([]byte, error) {
	if n < 0 {
		return nil, negative(n)
	}
	if n > len(r.buf)-r.off {
		return nil, insufficient(n, len(r.buf)-r.off)
	}
	v := r.buf[r.off : r.off+n : r.off+n]
	r.off += n
	return v, nil
}

// ReadInto copies the next len(dst) bytes into dst.
func (r *SliceReader) ReadInto(dst []byte) error {
	if len(dst) > len(r.buf)-r.off {
		return insufficient(len(dst), len(r.buf)-r.off)
	}
	r.off += copy(dst, r.buf[r.off:])
	return nil
}

// HasMore reports whether unread bytes remain.
func (r *SliceReader) HasMore() bool {
	return r.off < len(r.buf)
}

// Offset returns the number of bytes consumed so far.
func (r *SliceReader) Offset() int {
	return r.off
}

// Len returns the number of unread bytes.
func (r *SliceReader) Len() int {
	return len(r.buf) - r.off
}
