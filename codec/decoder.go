package codec

import (
	"encoding/binary"
	stderrors "errors"
	"math"
	"slices"
	"unicode/utf8"
	"unsafe"

	"github.com/wippyai/wirecodec/delegate"
	"github.com/wippyai/wirecodec/errors"
	"github.com/wippyai/wirecodec/transport"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Decoder reads values from a transport.Reader.
//
// DecodeStr and DecodeBorrowedBytes return views into the reader's storage
// when it can lend them. Such values stay valid until that storage is
// modified. The owned variants always copy.
//
// A failed read consumes nothing for fixed-width tokens. Self-delimiting
// tokens (delegate.Variable) are pulled one byte at a time, so a token
// truncated by the end of input has already consumed its leading bytes; the
// decoder is not usable after any error.
//
// A Decoder is not safe for concurrent use.
type Decoder struct {
	r          transport.Reader
	order      binary.ByteOrder
	del        delegate.Delegate
	collector  errors.DisplayCollector
	log        *zap.Logger
	maxLength  uint64
	borrowOnly bool
	scratch    [delegate.MaxTokenLen]byte
	varint     [delegate.MaxTokenLen]byte
}

// NewDecoder creates a decoder reading from r.
func NewDecoder(r transport.Reader, opts Options) *Decoder {
	opts = opts.withDefaults()
	return &Decoder{
		r:          r,
		order:      opts.Order,
		del:        opts.Delegate,
		collector:  opts.Collector,
		log:        opts.Logger,
		maxLength:  opts.MaxLength,
		borrowOnly: opts.BorrowOnly,
	}
}

// NewDecoderWithDefaults creates a decoder with DefaultOptions.
func NewDecoderWithDefaults(r transport.Reader) *Decoder {
	return NewDecoder(r, DefaultOptions())
}

// Reader returns the underlying transport.
func (d *Decoder) Reader() transport.Reader {
	return d.r
}

// Logger returns the decoder's logger.
func (d *Decoder) Logger() *zap.Logger {
	return d.log
}

// HasMore reports whether the reader has unread input.
func (d *Decoder) HasMore() bool {
	return d.r.HasMore()
}

// Custom returns a custom error built through the configured collector.
func (d *Decoder) Custom(format string, args ...any) error {
	return errors.Custom(errors.PhaseDecode, d.collector, format, args...)
}

// DecodeBool reads one byte. Any nonzero value is true.
func (d *Decoder) DecodeBool() (bool, error) {
	b, err := d.read(1)
	if err != nil {
		return false, err
	}
	return b[0] != 0, nil
}

func (d *Decoder) DecodeI8() (int8, error) {
	v, err := d.DecodeU8()
	return int8(v), err
}

func (d *Decoder) DecodeI16() (int16, error) {
	v, err := d.DecodeU16()
	return int16(v), err
}

func (d *Decoder) DecodeI32() (int32, error) {
	v, err := d.DecodeU32()
	return int32(v), err
}

func (d *Decoder) DecodeI64() (int64, error) {
	v, err := d.DecodeU64()
	return int64(v), err
}

func (d *Decoder) DecodeU8() (uint8, error) {
	b, err := d.read(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (d *Decoder) DecodeU16() (uint16, error) {
	b, err := d.read(2)
	if err != nil {
		return 0, err
	}
	return d.order.Uint16(b), nil
}

func (d *Decoder) DecodeU32() (uint32, error) {
	b, err := d.read(4)
	if err != nil {
		return 0, err
	}
	return d.order.Uint32(b), nil
}

func (d *Decoder) DecodeU64() (uint64, error) {
	b, err := d.read(8)
	if err != nil {
		return 0, err
	}
	return d.order.Uint64(b), nil
}

func (d *Decoder) DecodeF32() (float32, error) {
	v, err := d.DecodeU32()
	return math.Float32frombits(v), err
}

func (d *Decoder) DecodeF64() (float64, error) {
	v, err := d.DecodeU64()
	return math.Float64frombits(v), err
}

// DecodeChar reads a character code through the delegate. Codes that are not
// Unicode scalar values fail with the raw code in the error.
func (d *Decoder) DecodeChar() (rune, error) {
	var r rune
	var cerr error
	err := d.token(d.del.CharSize(), "char", func(b []byte) int {
		var n int
		r, n, cerr = d.del.DecodeChar(b, d.order)
		return n
	})
	if err != nil {
		return 0, err
	}
	return r, cerr
}

// DecodeStr reads a string, borrowing from the reader when it can lend its
// storage and copying otherwise. With Options.BorrowOnly the copy fallback
// fails as unsupported.
func (d *Decoder) DecodeStr() (string, error) {
	n, err := d.length()
	if err != nil {
		return "", err
	}
	b, err := d.r.Read(n)
	if err != nil {
		if !stderrors.Is(err, transport.ErrCannotBorrow) {
			return "", err
		}
		if d.borrowOnly {
			return "", errors.Wrap(errors.PhaseDecode, errors.KindUnsupported, err, "borrowed string from a non-borrowing source")
		}
		if b, err = d.stage(n); err != nil {
			return "", err
		}
	}
	if !utf8.Valid(b) {
		return "", errors.InvalidUTF8(errors.PhaseDecode, nil, b)
	}
	return unsafe.String(unsafe.SliceData(b), len(b)), nil
}

// DecodeString reads a string into newly allocated memory.
func (d *Decoder) DecodeString() (string, error) {
	b, err := d.DecodeBytes()
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", errors.InvalidUTF8(errors.PhaseDecode, nil, b)
	}
	return unsafe.String(unsafe.SliceData(b), len(b)), nil
}

// DecodeBorrowedBytes returns a view of the next byte string. It fails as
// unsupported when the reader cannot lend its storage.
func (d *Decoder) DecodeBorrowedBytes() ([]byte, error) {
	n, err := d.length()
	if err != nil {
		return nil, err
	}
	b, err := d.r.Read(n)
	if err != nil {
		if stderrors.Is(err, transport.ErrCannotBorrow) {
			return nil, errors.Wrap(errors.PhaseDecode, errors.KindUnsupported, err, "borrowed bytes from a non-borrowing source")
		}
		return nil, err
	}
	return b, nil
}

// DecodeBytes reads a byte string into newly allocated memory.
func (d *Decoder) DecodeBytes() ([]byte, error) {
	n, err := d.length()
	if err != nil {
		return nil, err
	}
	b, err := d.r.Read(n)
	switch {
	case err == nil:
		out := make([]byte, n)
		copy(out, b)
		return out, nil
	case stderrors.Is(err, transport.ErrCannotBorrow):
		return d.stage(n)
	default:
		return nil, err
	}
}

// DecodeOption reads an option discriminant: 0 is absent, 1 is present.
// The caller decodes the payload when present.
func (d *Decoder) DecodeOption() (bool, error) {
	v, err := d.variant()
	if err != nil {
		return false, err
	}
	switch v {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, errors.New(errors.PhaseDecode, errors.KindInvalidDiscriminant).
			Value(v).
			Detail("unexpected variant %d for option", v).
			Build()
	}
}

// DecodeUnit reads nothing.
func (d *Decoder) DecodeUnit() error { return nil }

// DecodeUnitStruct reads nothing.
func (d *Decoder) DecodeUnitStruct() error { return nil }

// DecodeNewtypeStruct decodes the wrapped value with fn.
func (d *Decoder) DecodeNewtypeStruct(fn func(*Decoder) error) error {
	return fn(d)
}

// DecodeSeq reads a sequence length and returns a cursor over the elements.
// With a delegate that writes no sequence length, the cursor runs until the
// input is exhausted.
func (d *Decoder) DecodeSeq() (*SeqAccess, error) {
	n, known, err := d.seqLength()
	if err != nil {
		return nil, err
	}
	d.trace(KindSeq, n, known)
	return &SeqAccess{dec: d, remaining: n, bounded: known}, nil
}

// DecodeMap reads an entry count and returns a cursor over the entries.
func (d *Decoder) DecodeMap() (*MapAccess, error) {
	n, known, err := d.seqLength()
	if err != nil {
		return nil, err
	}
	d.trace(KindMap, n, known)
	return &MapAccess{dec: d, remaining: n, bounded: known}, nil
}

// DecodeTuple returns a cursor over n elements. Nothing is read up front.
func (d *Decoder) DecodeTuple(n int) *SeqAccess {
	return &SeqAccess{dec: d, remaining: n, bounded: true}
}

// DecodeTupleStruct returns a cursor over n fields.
func (d *Decoder) DecodeTupleStruct(n int) *SeqAccess {
	return &SeqAccess{dec: d, remaining: n, bounded: true}
}

// DecodeStruct returns a cursor over the given fields in order.
func (d *Decoder) DecodeStruct(fields []string) *SeqAccess {
	return &SeqAccess{dec: d, remaining: len(fields), bounded: true}
}

// DecodeEnum reads a variant index and returns an accessor for the payload.
func (d *Decoder) DecodeEnum() (*EnumAccess, error) {
	v, err := d.variant()
	if err != nil {
		return nil, err
	}
	return &EnumAccess{dec: d, idx: v}, nil
}

// DecodeAny fails: the format is not self-describing.
func (d *Decoder) DecodeAny() (any, error) {
	return nil, errors.Unsupported(errors.PhaseDecode, "decode any: format is not self-describing")
}

// DecodeIdentifier fails: field and variant names are never written.
func (d *Decoder) DecodeIdentifier() (string, error) {
	return "", errors.Unsupported(errors.PhaseDecode, "decode identifier: format is not self-describing")
}

// DecodeIgnored fails: a value of unknown shape cannot be skipped.
func (d *Decoder) DecodeIgnored() error {
	return errors.Unsupported(errors.PhaseDecode, "decode ignored any: format is not self-describing")
}

// read returns the next n bytes, borrowed when possible and staged in scratch
// otherwise. The result is only valid until the next read.
func (d *Decoder) read(n int) ([]byte, error) {
	b, err := d.r.Read(n)
	if err == nil {
		return b, nil
	}
	if !stderrors.Is(err, transport.ErrCannotBorrow) {
		return nil, err
	}
	var buf []byte
	if n <= len(d.scratch) {
		buf = d.scratch[:n]
	} else {
		buf = make([]byte, n)
	}
	if err := d.r.ReadInto(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// stageChunk bounds how far a staged buffer grows ahead of the bytes that
// have actually arrived.
const stageChunk = 64 << 10

// stage copies the next n bytes into a new buffer. Readers that do not know
// their remaining length are read in growing chunks, so a declared length
// costs memory only as its bytes arrive.
func (d *Decoder) stage(n int) ([]byte, error) {
	if _, ok := d.r.(sized); ok || n <= stageChunk {
		buf := make([]byte, n)
		if err := d.r.ReadInto(buf); err != nil {
			return nil, err
		}
		return buf, nil
	}

	buf := make([]byte, 0, stageChunk)
	for len(buf) < n {
		step := min(n-len(buf), max(stageChunk, len(buf)))
		buf = slices.Grow(buf, step)
		if err := d.r.ReadInto(buf[len(buf) : len(buf)+step]); err != nil {
			if kind, _ := errors.KindOf(err); kind == errors.KindInsufficientData {
				return nil, errors.InsufficientData(errors.PhaseDecode, n, len(buf))
			}
			return nil, err
		}
		buf = buf[:len(buf)+step]
	}
	return buf, nil
}

// token reads one delegate token and passes it to decode, which reports the
// bytes consumed: 0 for incomplete, negative for overflow. Fixed-size tokens
// are read whole, variable ones a byte at a time. A variable token cut short by
// the end of input leaves its leading bytes consumed.
func (d *Decoder) token(size int, what string, decode func([]byte) int) error {
	switch {
	case size > 0:
		b, err := d.read(size)
		if err != nil {
			return err
		}
		if n := decode(b); n <= 0 {
			return errors.InvalidData(errors.PhaseDecode, nil, "malformed "+what+" token")
		}
		return nil
	case size == delegate.Variable:
		buf := d.varint[:0]
		for len(buf) < cap(buf) {
			b, err := d.read(1)
			if err != nil {
				return err
			}
			buf = append(buf, b[0])
			n := decode(buf)
			if n > 0 {
				return nil
			}
			if n < 0 {
				return errors.New(errors.PhaseDecode, errors.KindOverflow).
					Detail("%s token overflows after %d bytes", what, len(buf)).
					Build()
			}
		}
		return errors.New(errors.PhaseDecode, errors.KindOverflow).
			Detail("%s token longer than %d bytes", what, len(buf)).
			Build()
	default:
		return errors.InvalidData(errors.PhaseDecode, nil, "delegate has no "+what+" token")
	}
}

func (d *Decoder) variant() (uint32, error) {
	var v uint32
	err := d.token(d.del.VariantSize(), "variant", func(b []byte) int {
		var n int
		v, n = d.del.DecodeVariant(b, d.order)
		return n
	})
	return v, err
}

// sized is implemented by readers that know how much input remains.
type sized interface {
	Len() int
}

// length reads a string or byte length and checks it against MaxLength and,
// when the reader knows it, the remaining input.
func (d *Decoder) length() (int, error) {
	var v uint64
	err := d.token(d.del.LengthSize(), "length", func(b []byte) int {
		var n int
		v, n = d.del.DecodeLength(b, d.order)
		return n
	})
	if err != nil {
		return 0, err
	}
	n, err := d.checkCount(v)
	if err != nil {
		return 0, err
	}
	if s, ok := d.r.(sized); ok && n > s.Len() {
		return 0, errors.InsufficientData(errors.PhaseDecode, n, s.Len())
	}
	return n, nil
}

func (d *Decoder) seqLength() (int, bool, error) {
	size := d.del.SequenceLengthSize()
	if size == 0 {
		return 0, false, nil
	}
	var v uint64
	var known bool
	err := d.token(size, "sequence length", func(b []byte) int {
		var n int
		v, known, n = d.del.DecodeSequenceLength(b, d.order)
		return n
	})
	if err != nil || !known {
		return 0, false, err
	}
	n, err := d.checkCount(v)
	return n, true, err
}

func (d *Decoder) checkCount(v uint64) (int, error) {
	if v > d.maxLength || v > math.MaxInt {
		return 0, errors.Overflow(errors.PhaseDecode, nil, v, "maximum length")
	}
	return int(v), nil
}

func (d *Decoder) trace(kind Kind, n int, known bool) {
	if ce := d.log.Check(zapcore.DebugLevel, "decode container"); ce != nil {
		ce.Write(zap.Stringer("kind", kind), zap.Int("len", n), zap.Bool("known", known))
	}
}
