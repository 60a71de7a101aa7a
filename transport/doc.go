// Package transport defines the byte source and sink contracts used by the
// codec, together with the implementations shipped with the module.
//
// A Reader hands out bytes in one of two ways. Read returns a view into the
// underlying storage without copying (a borrowed slice) or ErrCannotBorrow when
// the source has no stable storage to lend. ReadInto copies the next bytes into
// caller-provided scratch and always works. Both advance the cursor; a read
// that cannot be satisfied consumes nothing.
//
//	Reader          Borrows   Source
//	──────────────────────────────────────────────
//	SliceReader     yes       in-memory []byte
//	StreamReader    no        io.Reader (bufio staged)
//	MemoryReader    yes       wazero linear memory
//
// A Writer appends whole tokens. A write that cannot be completed fails
// without leaving a partial token behind where the sink allows it.
//
//	Writer          Bound     Sink
//	──────────────────────────────────────────────
//	BufferWriter    none      growable []byte
//	FixedWriter     len(buf)  caller []byte
//	IOWriter        none      io.Writer
//	MemoryWriter    region    wazero linear memory
//
// Implementations are not safe for concurrent use.
package transport
