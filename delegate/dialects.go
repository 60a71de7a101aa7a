package delegate

import (
	"encoding/binary"
	"math"
)

// Compact uses 2-byte variant indices and 4-byte lengths. Values that do not
// fit are rejected by the encoder through Bounded.
type Compact struct{ Fixed }

func (Compact) VariantSize() int { return 2 }

func (Compact) AppendVariant(dst []byte, o binary.ByteOrder, v uint32) []byte {
	return appendU16(dst, o, uint16(v))
}

func (Compact) DecodeVariant(src []byte, o binary.ByteOrder) (uint32, int) {
	if len(src) < 2 {
		return 0, 0
	}
	return uint32(o.Uint16(src)), 2
}

func (Compact) LengthSize() int { return 4 }

func (Compact) AppendLength(dst []byte, o binary.ByteOrder, n uint64) []byte {
	return appendU32(dst, o, uint32(n))
}

func (Compact) DecodeLength(src []byte, o binary.ByteOrder) (uint64, int) {
	if len(src) < 4 {
		return 0, 0
	}
	return uint64(o.Uint32(src)), 4
}

func (Compact) SequenceLengthSize() int { return 4 }

func (c Compact) AppendSequenceLength(dst []byte, o binary.ByteOrder, n uint64) []byte {
	return c.AppendLength(dst, o, n)
}

func (c Compact) DecodeSequenceLength(src []byte, o binary.ByteOrder) (uint64, bool, int) {
	n, k := c.DecodeLength(src, o)
	return n, true, k
}

func (Compact) VariantLimit() uint32 { return math.MaxUint16 }
func (Compact) LengthLimit() uint64  { return math.MaxUint32 }

// Streaming is Fixed without sequence lengths. Sequences and maps are written
// as bare elements and read until the input ends, so an unbounded sequence
// must be the last value in the stream.
type Streaming struct{ Fixed }

func (Streaming) SequenceLengthSize() int { return 0 }

func (Streaming) AppendSequenceLength(dst []byte, _ binary.ByteOrder, _ uint64) []byte {
	return dst
}

func (Streaming) DecodeSequenceLength([]byte, binary.ByteOrder) (uint64, bool, int) {
	return 0, false, 0
}
