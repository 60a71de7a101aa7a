// Package codec implements a compact, non-self-describing binary format.
//
// An Encoder turns a sequence of typed calls into bytes and a Decoder reads
// them back, provided the caller asks for the same shapes in the same order.
// Neither field names nor type tags are written:
//
//	Kind                Wire (default delegate)
//	──────────────────────────────────────────────────────────────
//	bool                1 byte, 0 or 1 (any nonzero decodes as true)
//	i8..u64, f32, f64   fixed width in the configured byte order
//	char                4-byte Unicode scalar value
//	string, bytes       8-byte length, raw bytes
//	option              4-byte discriminant 0/1, payload if 1
//	unit, unit struct   nothing
//	newtype struct      payload only
//	seq, map            8-byte count, elements (map: key, value, ...)
//	tuple, struct       elements only
//	enum variant        4-byte index, payload
//
// Discriminants, lengths, and character codes are produced by a
// delegate.Delegate, so alternative token encodings (varints, narrower tags)
// plug in without touching the codec.
//
// # Encoding
//
//	w := transport.NewBufferWriter(64)
//	enc := codec.NewEncoderWithDefaults(w)
//	st := enc.EncodeStruct(2)
//	st.Field("x", func(e *codec.Encoder) error { return e.EncodeU32(17) })
//	st.Field("name", func(e *codec.Encoder) error { return e.EncodeString("here") })
//	err := st.End()
//
// # Decoding
//
//	dec := codec.NewDecoderWithDefaults(transport.NewSliceReader(w.Bytes()))
//	seq := dec.DecodeStruct([]string{"x", "name"})
//	seq.Next(func(d *codec.Decoder) (err error) { x, err = d.DecodeU32(); return })
//	seq.Next(func(d *codec.Decoder) (err error) { name, err = d.DecodeStr(); return })
//
// Value models such as the model and witvalue packages drive these calls from
// Go types or WIT type descriptions.
package codec
