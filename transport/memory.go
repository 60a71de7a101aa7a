package transport

import (
	"math"

	"github.com/tetratelabs/wazero/api"
	"github.com/wippyai/wirecodec/errors"
)

// MemoryReader reads a region of WebAssembly linear memory. Views returned by
// Read alias guest memory and are invalidated when the guest writes to the
// region or grows its memory.
type MemoryReader struct {
	mem  api.Memory
	base uint32
	end  uint32
	off  uint32
}

// NewMemoryReader reads the region [offset, offset+length) of mem. The region
// is checked against the current memory size.
func NewMemoryReader(mem api.Memory, offset, length uint32) (*MemoryReader, error) {
	if err := checkRegion(errors.PhaseDecode, mem, offset, length); err != nil {
		return nil, err
	}
	return &MemoryReader{mem: mem, base: offset, end: offset + length, off: offset}, nil
}

// Read returns a view of the next n bytes of guest memory.
func (r *MemoryReader) Read(n int) ([]byte, error) {
	if n < 0 {
		return nil, negative(n)
	}
	if n > r.Len() {
		return nil, insufficient(n, r.Len())
	}
	v, ok := r.mem.Read(r.off, uint32(n))
	if !ok {
		return nil, outOfBounds(errors.PhaseDecode, r.off, n)
	}
	r.off += uint32(n)
	return v, nil
}

// ReadInto copies the next len(dst) bytes of guest memory into dst.
func (r *MemoryReader) ReadInto(dst []byte) error {
	v, err := r.Read(len(dst))
	if err != nil {
		return err
	}
	copy(dst, v)
	return nil
}

// HasMore reports whether unread bytes remain in the region.
func (r *MemoryReader) HasMore() bool {
	return r.off < r.end
}

// Offset returns the number of bytes consumed from the region.
func (r *MemoryReader) Offset() int {
	return int(r.off - r.base)
}

// Len returns the number of unread bytes in the region.
func (r *MemoryReader) Len() int {
	return int(r.end - r.off)
}

// MemoryWriter writes into a region of WebAssembly linear memory.
type MemoryWriter struct {
	mem  api.Memory
	base uint32
	end  uint32
	off  uint32
}

// NewMemoryWriter writes into the region [offset, offset+length) of mem.
func NewMemoryWriter(mem api.Memory, offset, length uint32) (*MemoryWriter, error) {
	if err := checkRegion(errors.PhaseEncode, mem, offset, length); err != nil {
		return nil, err
	}
	return &MemoryWriter{mem: mem, base: offset, end: offset + length, off: offset}, nil
}

// Write stores p at the cursor. Writes past the region fail with a capacity
// error and store nothing.
func (w *MemoryWriter) Write(p []byte) error {
	free := int(w.end - w.off)
	if len(p) > free {
		return errors.Capacity(errors.PhaseEncode, len(p), free)
	}
	if !w.mem.Write(w.off, p) {
		return outOfBounds(errors.PhaseEncode, w.off, len(p))
	}
	w.off += uint32(len(p))
	return nil
}

// Len returns the number of bytes written into the region.
func (w *MemoryWriter) Len() int {
	return int(w.off - w.base)
}

// Offset returns the absolute memory offset of the next write.
func (w *MemoryWriter) Offset() uint32 {
	return w.off
}

func checkRegion(phase errors.Phase, mem api.Memory, offset, length uint32) error {
	if mem == nil {
		return errors.NilPointer(phase, nil, "api.Memory")
	}
	if uint64(offset)+uint64(length) > math.MaxUint32 || offset+length > mem.Size() {
		return errors.New(phase, errors.KindCapacity).
			Value(uint64(offset) + uint64(length)).
			Detail("region [%d, %d) exceeds memory size %d", offset, uint64(offset)+uint64(length), mem.Size()).
			Build()
	}
	return nil
}

func outOfBounds(phase errors.Phase, off uint32, n int) error {
	return errors.New(phase, errors.KindTransport).
		Detail("memory access out of bounds: offset=%d, length=%d", off, n).
		Build()
}
