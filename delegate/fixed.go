package delegate

import (
	"encoding/binary"

	"github.com/wippyai/wirecodec/errors"
)

// Fixed is the default delegate. Lengths are 8 bytes wide on every platform
// so that output does not depend on the host word size.
type Fixed struct{}

func (Fixed) VariantSize() int { return 4 }

func (Fixed) AppendVariant(dst []byte, o binary.ByteOrder, v uint32) []byte {
	return appendU32(dst, o, v)
}

func (Fixed) DecodeVariant(src []byte, o binary.ByteOrder) (uint32, int) {
	if len(src) < 4 {
		return 0, 0
	}
	return o.Uint32(src), 4
}

func (Fixed) LengthSize() int { return 8 }

func (Fixed) AppendLength(dst []byte, o binary.ByteOrder, n uint64) []byte {
	return appendU64(dst, o, n)
}

func (Fixed) DecodeLength(src []byte, o binary.ByteOrder) (uint64, int) {
	if len(src) < 8 {
		return 0, 0
	}
	return o.Uint64(src), 8
}

func (Fixed) CharSize() int { return 4 }

// AppendChar writes the scalar value as a 4-byte code.
func (Fixed) AppendChar(dst []byte, o binary.ByteOrder, r rune) ([]byte, error) {
	if !ValidChar(r) {
		return dst, errors.InvalidChar(errors.PhaseEncode, nil, uint32(r))
	}
	return appendU32(dst, o, uint32(r)), nil
}

// DecodeChar reads a 4-byte code. Surrogates and codes above U+10FFFF are
// rejected with the raw code attached to the error.
func (Fixed) DecodeChar(src []byte, o binary.ByteOrder) (rune, int, error) {
	if len(src) < 4 {
		return 0, 0, nil
	}
	code := o.Uint32(src)
	if code > 0x10FFFF || !ValidChar(rune(code)) {
		return 0, 4, errors.InvalidChar(errors.PhaseDecode, nil, code)
	}
	return rune(code), 4, nil
}

func (Fixed) SequenceLengthSize() int { return 8 }

func (f Fixed) AppendSequenceLength(dst []byte, o binary.ByteOrder, n uint64) []byte {
	return f.AppendLength(dst, o, n)
}

func (f Fixed) DecodeSequenceLength(src []byte, o binary.ByteOrder) (uint64, bool, int) {
	n, c := f.DecodeLength(src, o)
	return n, true, c
}

func appendU16(dst []byte, o binary.ByteOrder, v uint16) []byte {
	var b [2]byte
	o.PutUint16(b[:], v)
	return append(dst, b[:]...)
}

func appendU32(dst []byte, o binary.ByteOrder, v uint32) []byte {
	var b [4]byte
	o.PutUint32(b[:], v)
	return append(dst, b[:]...)
}

func appendU64(dst []byte, o binary.ByteOrder, v uint64) []byte {
	var b [8]byte
	o.PutUint64(b[:], v)
	return append(dst, b[:]...)
}
