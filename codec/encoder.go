package codec

import (
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/wippyai/wirecodec/delegate"
	"github.com/wippyai/wirecodec/errors"
	"github.com/wippyai/wirecodec/transport"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Encoder writes values to a transport.Writer. It holds no buffered state:
// every call writes its bytes before returning, and the first failure is
// returned unchanged.
//
// An Encoder is not safe for concurrent use.
type Encoder struct {
	w         transport.Writer
	order     binary.ByteOrder
	del       delegate.Delegate
	bounds    delegate.Bounded
	collector errors.DisplayCollector
	log       *zap.Logger
	buf       [delegate.MaxTokenLen]byte
}

// NewEncoder creates an encoder writing to w.
func NewEncoder(w transport.Writer, opts Options) *Encoder {
	opts = opts.withDefaults()
	bounds, _ := opts.Delegate.(delegate.Bounded)
	return &Encoder{
		w:         w,
		order:     opts.Order,
		del:       opts.Delegate,
		bounds:    bounds,
		collector: opts.Collector,
		log:       opts.Logger,
	}
}

// NewEncoderWithDefaults creates an encoder with DefaultOptions.
func NewEncoderWithDefaults(w transport.Writer) *Encoder {
	return NewEncoder(w, DefaultOptions())
}

// Fork returns an encoder with the same configuration writing to w.
func (e *Encoder) Fork(w transport.Writer) *Encoder {
	f := *e
	f.w = w
	return &f
}

// Writer returns the underlying transport.
func (e *Encoder) Writer() transport.Writer {
	return e.w
}

// Logger returns the encoder's logger.
func (e *Encoder) Logger() *zap.Logger {
	return e.log
}

// Custom returns a custom error built through the configured collector.
func (e *Encoder) Custom(format string, args ...any) error {
	return errors.Custom(errors.PhaseEncode, e.collector, format, args...)
}

func (e *Encoder) EncodeBool(v bool) error {
	b := e.buf[:1]
	b[0] = 0
	if v {
		b[0] = 1
	}
	return e.w.Write(b)
}

func (e *Encoder) EncodeI8(v int8) error   { return e.EncodeU8(uint8(v)) }
func (e *Encoder) EncodeI16(v int16) error { return e.EncodeU16(uint16(v)) }
func (e *Encoder) EncodeI32(v int32) error { return e.EncodeU32(uint32(v)) }
func (e *Encoder) EncodeI64(v int64) error { return e.EncodeU64(uint64(v)) }

func (e *Encoder) EncodeU8(v uint8) error {
	b := e.buf[:1]
	b[0] = v
	return e.w.Write(b)
}

func (e *Encoder) EncodeU16(v uint16) error {
	b := e.buf[:2]
	e.order.PutUint16(b, v)
	return e.w.Write(b)
}

func (e *Encoder) EncodeU32(v uint32) error {
	b := e.buf[:4]
	e.order.PutUint32(b, v)
	return e.w.Write(b)
}

func (e *Encoder) EncodeU64(v uint64) error {
	b := e.buf[:8]
	e.order.PutUint64(b, v)
	return e.w.Write(b)
}

// EncodeF32 writes the IEEE 754 bit pattern, NaN payloads included.
func (e *Encoder) EncodeF32(v float32) error { return e.EncodeU32(math.Float32bits(v)) }

// EncodeF64 writes the IEEE 754 bit pattern, NaN payloads included.
func (e *Encoder) EncodeF64(v float64) error { return e.EncodeU64(math.Float64bits(v)) }

// EncodeChar writes a character code through the delegate.
func (e *Encoder) EncodeChar(r rune) error {
	b, err := e.del.AppendChar(e.buf[:0], e.order, r)
	if err != nil {
		return err
	}
	return e.w.Write(b)
}

// EncodeString writes a length token followed by the UTF-8 bytes of s.
func (e *Encoder) EncodeString(s string) error {
	if err := e.length(uint64(len(s))); err != nil {
		return err
	}
	if len(s) == 0 {
		return nil
	}
	return e.w.Write(unsafe.Slice(unsafe.StringData(s), len(s)))
}

// EncodeBytes writes a length token followed by b.
func (e *Encoder) EncodeBytes(b []byte) error {
	if err := e.length(uint64(len(b))); err != nil {
		return err
	}
	if len(b) == 0 {
		return nil
	}
	return e.w.Write(b)
}

// EncodeNone writes an absent option.
func (e *Encoder) EncodeNone() error {
	return e.variant(0)
}

// EncodeSome writes a present option followed by the payload written by fn.
func (e *Encoder) EncodeSome(fn func(*Encoder) error) error {
	if err := e.variant(1); err != nil {
		return err
	}
	return fn(e)
}

// EncodeUnit writes nothing.
func (e *Encoder) EncodeUnit() error { return nil }

// EncodeUnitStruct writes nothing.
func (e *Encoder) EncodeUnitStruct() error { return nil }

// EncodeNewtypeStruct writes the wrapped value only.
func (e *Encoder) EncodeNewtypeStruct(fn func(*Encoder) error) error {
	return fn(e)
}

// EncodeUnitVariant writes the variant index.
func (e *Encoder) EncodeUnitVariant(idx uint32) error {
	return e.variant(idx)
}

// EncodeNewtypeVariant writes the variant index and the payload.
func (e *Encoder) EncodeNewtypeVariant(idx uint32, fn func(*Encoder) error) error {
	if err := e.variant(idx); err != nil {
		return err
	}
	return fn(e)
}

// EncodeTupleVariant writes the variant index and returns an encoder for n
// elements.
func (e *Encoder) EncodeTupleVariant(idx uint32, n int) (*SeqEncoder, error) {
	if err := e.variant(idx); err != nil {
		return nil, err
	}
	return e.open(KindTupleVariant, n, true), nil
}

// EncodeStructVariant writes the variant index and returns an encoder for n
// fields.
func (e *Encoder) EncodeStructVariant(idx uint32, n int) (*StructEncoder, error) {
	if err := e.variant(idx); err != nil {
		return nil, err
	}
	e.trace(KindStructVariant, n)
	return &StructEncoder{enc: e, kind: KindStructVariant, len: n}, nil
}

// EncodeSeq writes the sequence length and returns an element encoder. A
// sequence of unknown length is only accepted by delegates that write no
// sequence length.
func (e *Encoder) EncodeSeq(n int, known bool) (*SeqEncoder, error) {
	if err := e.seqLength(n, known); err != nil {
		return nil, err
	}
	return e.open(KindSeq, n, known), nil
}

// EncodeMap writes the entry count and returns an entry encoder.
func (e *Encoder) EncodeMap(n int, known bool) (*MapEncoder, error) {
	if err := e.seqLength(n, known); err != nil {
		return nil, err
	}
	e.trace(KindMap, n)
	return &MapEncoder{enc: e, len: n, known: known}, nil
}

// EncodeTuple returns an encoder for n elements. Nothing is written up front.
func (e *Encoder) EncodeTuple(n int) *SeqEncoder {
	return e.open(KindTuple, n, true)
}

// EncodeTupleStruct returns an encoder for n fields. Nothing is written up
// front.
func (e *Encoder) EncodeTupleStruct(n int) *SeqEncoder {
	return e.open(KindTupleStruct, n, true)
}

// EncodeStruct returns an encoder for n named fields. Field names are not
// written.
func (e *Encoder) EncodeStruct(n int) *StructEncoder {
	e.trace(KindStruct, n)
	return &StructEncoder{enc: e, kind: KindStruct, len: n}
}

// EncodeAny fails: the format is not self-describing.
func (e *Encoder) EncodeAny(any) error {
	return errors.Unsupported(errors.PhaseEncode, "encode any: format is not self-describing")
}

// EncodeIdentifier fails: field and variant names are never written.
func (e *Encoder) EncodeIdentifier(string) error {
	return errors.Unsupported(errors.PhaseEncode, "encode identifier: format is not self-describing")
}

// EncodeIgnored fails: there is no way to skip a value of unknown shape.
func (e *Encoder) EncodeIgnored() error {
	return errors.Unsupported(errors.PhaseEncode, "encode ignored any: format is not self-describing")
}

func (e *Encoder) variant(idx uint32) error {
	if e.bounds != nil && idx > e.bounds.VariantLimit() {
		return errors.Overflow(errors.PhaseEncode, nil, idx, "variant token")
	}
	return e.w.Write(e.del.AppendVariant(e.buf[:0], e.order, idx))
}

func (e *Encoder) length(n uint64) error {
	if e.bounds != nil && n > e.bounds.LengthLimit() {
		return errors.Overflow(errors.PhaseEncode, nil, n, "length token")
	}
	return e.w.Write(e.del.AppendLength(e.buf[:0], e.order, n))
}

func (e *Encoder) seqLength(n int, known bool) error {
	size := e.del.SequenceLengthSize()
	if !known {
		if size != 0 {
			return errors.Unsupported(errors.PhaseEncode, "sequence of unknown length: delegate requires a length prefix")
		}
		return nil
	}
	if n < 0 {
		return errors.InvalidData(errors.PhaseEncode, nil, "negative sequence length")
	}
	if size == 0 {
		return nil
	}
	if e.bounds != nil && uint64(n) > e.bounds.LengthLimit() {
		return errors.Overflow(errors.PhaseEncode, nil, n, "sequence length token")
	}
	return e.w.Write(e.del.AppendSequenceLength(e.buf[:0], e.order, uint64(n)))
}

func (e *Encoder) open(kind Kind, n int, known bool) *SeqEncoder {
	e.trace(kind, n)
	return &SeqEncoder{enc: e, kind: kind, len: n, known: known}
}

func (e *Encoder) trace(kind Kind, n int) {
	if ce := e.log.Check(zapcore.DebugLevel, "encode container"); ce != nil {
		ce.Write(zap.Stringer("kind", kind), zap.Int("len", n))
	}
}

// finish checks a container's declared count against what was written.
func (e *Encoder) finish(kind Kind, known bool, declared, written int) error {
	if !known || declared == written {
		return nil
	}
	if ce := e.log.Check(zapcore.DebugLevel, "container length mismatch"); ce != nil {
		ce.Write(zap.Stringer("kind", kind), zap.Int("declared", declared), zap.Int("written", written))
	}
	return errors.New(errors.PhaseEncode, errors.KindLengthMismatch).
		Value(written).
		Detail("%s declared %d elements, wrote %d", kind, declared, written).
		Build()
}
