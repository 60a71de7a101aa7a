package codec

import "github.com/wippyai/wirecodec/errors"

// SeqAccess pulls the elements of a sequence, tuple, or struct.
//
// The remaining count is decremented when a pull starts and is not restored
// if the element fails to decode. A cursor is only valid until its parent
// Decoder is used for anything else.
type SeqAccess struct {
	dec       *Decoder
	remaining int
	bounded   bool
}

// Next decodes the next element with fn. It returns false once the sequence
// is exhausted.
func (s *SeqAccess) Next(fn func(*Decoder) error) (bool, error) {
	if !s.advance() {
		return false, nil
	}
	if err := fn(s.dec); err != nil {
		return false, err
	}
	return true, nil
}

// Remaining returns the number of elements left and whether that number is
// known. Unbounded cursors end when the input does.
func (s *SeqAccess) Remaining() (int, bool) {
	return s.remaining, s.bounded
}

// Each decodes every remaining element with fn.
func (s *SeqAccess) Each(fn func(*Decoder) error) error {
	for {
		ok, err := s.Next(fn)
		if err != nil || !ok {
			return err
		}
	}
}

func (s *SeqAccess) advance() bool {
	if s.bounded {
		if s.remaining == 0 {
			return false
		}
		s.remaining--
		return true
	}
	return s.dec.r.HasMore()
}

// MapAccess pulls map entries as a key followed by its value.
type MapAccess struct {
	dec       *Decoder
	remaining int
	bounded   bool
	pending   bool
}

// NextKey decodes the next key with fn. It returns false once the map is
// exhausted. Every key must be followed by a call to Value.
func (m *MapAccess) NextKey(fn func(*Decoder) error) (bool, error) {
	if m.pending {
		return false, errors.InvalidData(errors.PhaseDecode, nil, "map key requested before the previous value")
	}
	if m.bounded {
		if m.remaining == 0 {
			return false, nil
		}
		m.remaining--
	} else if !m.dec.r.HasMore() {
		return false, nil
	}
	m.pending = true
	if err := fn(m.dec); err != nil {
		return false, err
	}
	return true, nil
}

// Value decodes the value belonging to the last key.
func (m *MapAccess) Value(fn func(*Decoder) error) error {
	if !m.pending {
		return errors.InvalidData(errors.PhaseDecode, nil, "map value requested without a key")
	}
	m.pending = false
	return fn(m.dec)
}

// Next decodes one entry.
func (m *MapAccess) Next(key, value func(*Decoder) error) (bool, error) {
	ok, err := m.NextKey(key)
	if err != nil || !ok {
		return ok, err
	}
	return true, m.Value(value)
}

// Remaining returns the number of entries left and whether it is known.
func (m *MapAccess) Remaining() (int, bool) {
	return m.remaining, m.bounded
}

// EnumAccess decodes the payload of an enum variant after its index has been
// read.
type EnumAccess struct {
	dec *Decoder
	idx uint32
}

// Variant returns the decoded variant index.
func (a *EnumAccess) Variant() uint32 {
	return a.idx
}

// Check fails with an invalid discriminant error if the index is not below
// cases.
func (a *EnumAccess) Check(cases int) error {
	if cases <= 0 || uint64(a.idx) >= uint64(cases) {
		return errors.New(errors.PhaseDecode, errors.KindInvalidDiscriminant).
			Value(a.idx).
			Detail("unexpected variant %d, expected fewer than %d", a.idx, cases).
			Build()
	}
	return nil
}

// Unit accepts a variant without payload.
func (a *EnumAccess) Unit() error {
	return nil
}

// Newtype decodes a single payload value with fn.
func (a *EnumAccess) Newtype(fn func(*Decoder) error) error {
	return fn(a.dec)
}

// Tuple returns a cursor over n payload elements.
func (a *EnumAccess) Tuple(n int) *SeqAccess {
	a.dec.trace(KindTupleVariant, n, true)
	return a.dec.DecodeTuple(n)
}

// Struct returns a cursor over the payload fields.
func (a *EnumAccess) Struct(fields []string) *SeqAccess {
	a.dec.trace(KindStructVariant, len(fields), true)
	return a.dec.DecodeStruct(fields)
}
