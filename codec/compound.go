package codec

import "github.com/wippyai/wirecodec/errors"

// SeqEncoder writes the elements of a sequence, tuple, tuple struct, or tuple
// variant.
type SeqEncoder struct {
	enc   *Encoder
	kind  Kind
	len   int
	n     int
	known bool
}

// Element writes one element.
func (s *SeqEncoder) Element(fn func(*Encoder) error) error {
	s.n++
	return fn(s.enc)
}

// Written returns the number of elements written so far.
func (s *SeqEncoder) Written() int {
	return s.n
}

// End closes the container. It fails if a known length was declared and a
// different number of elements was written.
func (s *SeqEncoder) End() error {
	return s.enc.finish(s.kind, s.known, s.len, s.n)
}

// MapEncoder writes map entries as key, value pairs.
type MapEncoder struct {
	enc     *Encoder
	len     int
	n       int
	known   bool
	pending bool
}

// Key writes an entry key. Each key must be followed by Value.
func (m *MapEncoder) Key(fn func(*Encoder) error) error {
	if m.pending {
		return errors.InvalidData(errors.PhaseEncode, nil, "map key written twice without a value")
	}
	m.pending = true
	m.n++
	return fn(m.enc)
}

// Value writes the value for the preceding key.
func (m *MapEncoder) Value(fn func(*Encoder) error) error {
	if !m.pending {
		return errors.InvalidData(errors.PhaseEncode, nil, "map value written without a key")
	}
	m.pending = false
	return fn(m.enc)
}

// Entry writes a key and its value.
func (m *MapEncoder) Entry(key, value func(*Encoder) error) error {
	if err := m.Key(key); err != nil {
		return err
	}
	return m.Value(value)
}

// End closes the map.
func (m *MapEncoder) End() error {
	if m.pending {
		return errors.InvalidData(errors.PhaseEncode, nil, "map closed after a key without a value")
	}
	return m.enc.finish(KindMap, m.known, m.len, m.n)
}

// StructEncoder writes the fields of a struct or struct variant in order.
type StructEncoder struct {
	enc  *Encoder
	kind Kind
	len  int
	n    int
}

// Field writes one field. The name is not part of the output.
func (s *StructEncoder) Field(_ string, fn func(*Encoder) error) error {
	s.n++
	return fn(s.enc)
}

// End closes the struct.
func (s *StructEncoder) End() error {
	return s.enc.finish(s.kind, true, s.len, s.n)
}
