package delegate

import (
	"encoding/binary"
	"math"

	"github.com/wippyai/wirecodec/errors"
)

// LEB128 writes every token as an unsigned LEB128 varint. Byte order does not
// apply to varints and is ignored.
type LEB128 struct{}

func (LEB128) VariantSize() int { return Variable }

func (LEB128) AppendVariant(dst []byte, _ binary.ByteOrder, v uint32) []byte {
	return AppendLEB128u64(dst, uint64(v))
}

func (LEB128) DecodeVariant(src []byte, _ binary.ByteOrder) (uint32, int) {
	return decodeLEB128u32(src)
}

func (LEB128) LengthSize() int { return Variable }

func (LEB128) AppendLength(dst []byte, _ binary.ByteOrder, n uint64) []byte {
	return AppendLEB128u64(dst, n)
}

func (LEB128) DecodeLength(src []byte, _ binary.ByteOrder) (uint64, int) {
	return DecodeLEB128u64(src)
}

func (LEB128) CharSize() int { return Variable }

func (LEB128) AppendChar(dst []byte, _ binary.ByteOrder, r rune) ([]byte, error) {
	if !ValidChar(r) {
		return dst, errors.InvalidChar(errors.PhaseEncode, nil, uint32(r))
	}
	return AppendLEB128u64(dst, uint64(r)), nil
}

func (LEB128) DecodeChar(src []byte, _ binary.ByteOrder) (rune, int, error) {
	code, n := decodeLEB128u32(src)
	if n <= 0 {
		return 0, n, nil
	}
	if code > 0x10FFFF || !ValidChar(rune(code)) {
		return 0, n, errors.InvalidChar(errors.PhaseDecode, nil, code)
	}
	return rune(code), n, nil
}

func (LEB128) SequenceLengthSize() int { return Variable }

func (LEB128) AppendSequenceLength(dst []byte, _ binary.ByteOrder, n uint64) []byte {
	return AppendLEB128u64(dst, n)
}

func (LEB128) DecodeSequenceLength(src []byte, _ binary.ByteOrder) (uint64, bool, int) {
	n, c := DecodeLEB128u64(src)
	return n, true, c
}

// AppendLEB128u64 appends v as an unsigned LEB128 value.
func AppendLEB128u64(dst []byte, v uint64) []byte {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		dst = append(dst, b)
		if v == 0 {
			return dst
		}
	}
}

// DecodeLEB128u64 decodes an unsigned LEB128 value from the front of src.
// It returns the value and the number of bytes consumed: 0 if src ends
// before the value does, negative if the value exceeds 64 bits.
func DecodeLEB128u64(src []byte) (uint64, int) {
	var result uint64
	var shift uint
	for i, b := range src {
		if i == binary.MaxVarintLen64-1 && b > 1 {
			return 0, -(i + 1)
		}
		result |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, i + 1
		}
		shift += 7
	}
	return 0, 0
}

func decodeLEB128u32(src []byte) (uint32, int) {
	v, n := DecodeLEB128u64(src)
	if n > 0 && v > math.MaxUint32 {
		return 0, -n
	}
	return uint32(v), n
}
