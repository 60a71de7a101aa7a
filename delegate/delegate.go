// Package delegate defines how the codec writes and reads its wire tokens:
// option and enum discriminants, string and byte lengths, character codes,
// and sequence lengths.
//
// Every method of Fixed can be overridden independently by embedding it:
//
//	type byteTags struct{ delegate.Fixed }
//
//	func (byteTags) VariantSize() int { return 1 }
//
//	func (byteTags) AppendVariant(dst []byte, _ binary.ByteOrder, v uint32) []byte {
//		return append(dst, byte(v))
//	}
//
//	func (byteTags) DecodeVariant(src []byte, _ binary.ByteOrder) (uint32, int) {
//		return uint32(src[0]), 1
//	}
//
// Token sizes follow one convention. A positive size is a fixed width and the
// codec reads exactly that many bytes before calling the matching Decode
// method. Variable marks a self-delimiting token: the codec feeds it one byte
// at a time until Decode reports a positive byte count; zero means more input
// is needed and a negative count means the token overflowed, as with
// encoding/binary.Uvarint. Zero is only meaningful for SequenceLengthSize and
// means sequences carry no length at all.
package delegate

import "encoding/binary"

// Variable marks a self-delimiting token.
const Variable = -1

// MaxTokenLen bounds the encoded size of any single token.
const MaxTokenLen = 16

// Delegate produces and consumes wire tokens.
type Delegate interface {
	VariantSize() int
	AppendVariant(dst []byte, o binary.ByteOrder, v uint32) []byte
	DecodeVariant(src []byte, o binary.ByteOrder) (uint32, int)

	LengthSize() int
	AppendLength(dst []byte, o binary.ByteOrder, n uint64) []byte
	DecodeLength(src []byte, o binary.ByteOrder) (uint64, int)

	CharSize() int
	AppendChar(dst []byte, o binary.ByteOrder, r rune) ([]byte, error)
	DecodeChar(src []byte, o binary.ByteOrder) (rune, int, error)

	SequenceLengthSize() int
	AppendSequenceLength(dst []byte, o binary.ByteOrder, n uint64) []byte
	DecodeSequenceLength(src []byte, o binary.ByteOrder) (n uint64, known bool, consumed int)
}

// Bounded is implemented by delegates whose tokens cannot represent every
// uint32 variant index or uint64 length. The encoder checks values against
// these limits before appending.
type Bounded interface {
	VariantLimit() uint32
	LengthLimit() uint64
}

// Default returns the fixed-width delegate: 4-byte variant indices, 8-byte
// lengths, 4-byte character codes.
func Default() Delegate {
	return Fixed{}
}

// ByName returns a built-in delegate. Names are "fixed", "leb128",
// "compact", and "streaming".
func ByName(name string) (Delegate, bool) {
	switch name {
	case "", "fixed", "default":
		return Fixed{}, true
	case "leb128", "varint":
		return LEB128{}, true
	case "compact":
		return Compact{}, true
	case "streaming":
		return Streaming{}, true
	}
	return nil, false
}

// Names lists the built-in delegate names accepted by ByName.
func Names() []string {
	return []string{"fixed", "leb128", "compact", "streaming"}
}

// ValidChar reports whether r is a Unicode scalar value.
func ValidChar(r rune) bool {
	if r >= 0xD800 && r <= 0xDFFF {
		return false
	}
	return r >= 0 && r < 0x110000
}
