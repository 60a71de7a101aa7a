package codec

import (
	"bytes"
	"encoding/binary"
	stderrors "errors"
	"math"
	"runtime"
	"testing"
	"unsafe"

	"github.com/google/go-cmp/cmp"
	"github.com/wippyai/wirecodec/delegate"
	"github.com/wippyai/wirecodec/errors"
	"github.com/wippyai/wirecodec/transport"
)

func encode(t *testing.T, opts Options, fn func(*Encoder) error) []byte {
	t.Helper()
	w := transport.NewBufferWriter(0)
	if err := fn(NewEncoder(w, opts)); err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	return w.Bytes()
}

func TestEncode_Point3d(t *testing.T) {
	got := encode(t, DefaultOptions(), func(e *Encoder) error {
		st := e.EncodeStruct(3)
		for _, v := range []uint32{17, 7, 0} {
			if err := st.Field("", func(e *Encoder) error { return e.EncodeU32(v) }); err != nil {
				return err
			}
		}
		return st.End()
	})
	want := []byte{17, 0, 0, 0, 7, 0, 0, 0, 0, 0, 0, 0}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Point3d mismatch (-want +got):\n%s", diff)
	}

	dec := NewDecoderWithDefaults(transport.NewSliceReader(got))
	seq := dec.DecodeStruct([]string{"x", "y", "z"})
	var xs []uint32
	err := seq.Each(func(d *Decoder) error {
		v, err := d.DecodeU32()
		xs = append(xs, v)
		return err
	})
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if diff := cmp.Diff([]uint32{17, 7, 0}, xs); diff != "" {
		t.Errorf("decoded mismatch (-want +got):\n%s", diff)
	}
}

func TestString_Borrowed(t *testing.T) {
	got := encode(t, DefaultOptions(), func(e *Encoder) error { return e.EncodeString("here") })
	want := []byte{4, 0, 0, 0, 0, 0, 0, 0, 'h', 'e', 'r', 'e'}
	if !bytes.Equal(got, want) {
		t.Fatalf("EncodeString = %v, want %v", got, want)
	}

	dec := NewDecoderWithDefaults(transport.NewSliceReader(got))
	s, err := dec.DecodeStr()
	if err != nil {
		t.Fatalf("DecodeStr failed: %v", err)
	}
	if s != "here" {
		t.Errorf("DecodeStr = %q", s)
	}
	if unsafe.StringData(s) != &got[8] {
		t.Error("DecodeStr should borrow the encoded region")
	}
}

func TestString_OwnedFromStream(t *testing.T) {
	data := []byte{4, 0, 0, 0, 0, 0, 0, 0, 'h', 'e', 'r', 'e'}
	dec := NewDecoderWithDefaults(transport.NewStreamReader(bytes.NewReader(data)))
	s, err := dec.DecodeStr()
	if err != nil {
		t.Fatalf("DecodeStr failed: %v", err)
	}
	if s != "here" {
		t.Errorf("DecodeStr = %q", s)
	}

	opts := DefaultOptions()
	opts.BorrowOnly = true
	dec = NewDecoder(transport.NewStreamReader(bytes.NewReader(data)), opts)
	_, err = dec.DecodeStr()
	if kind, _ := errors.KindOf(err); kind != errors.KindUnsupported {
		t.Errorf("BorrowOnly from stream: kind = %v, want unsupported", kind)
	}
	if !stderrors.Is(err, transport.ErrCannotBorrow) {
		t.Error("unsupported error should wrap ErrCannotBorrow")
	}
}

func TestBytes_OwnedAndBorrowed(t *testing.T) {
	data := encode(t, DefaultOptions(), func(e *Encoder) error { return e.EncodeBytes([]byte{9, 8, 7}) })

	dec := NewDecoderWithDefaults(transport.NewSliceReader(data))
	b, err := dec.DecodeBorrowedBytes()
	if err != nil {
		t.Fatalf("DecodeBorrowedBytes failed: %v", err)
	}
	if &b[0] != &data[8] {
		t.Error("DecodeBorrowedBytes should alias the source")
	}

	dec = NewDecoderWithDefaults(transport.NewSliceReader(data))
	owned, err := dec.DecodeBytes()
	if err != nil {
		t.Fatalf("DecodeBytes failed: %v", err)
	}
	owned[0] = 0
	if data[8] != 9 {
		t.Error("DecodeBytes should copy")
	}

	dec = NewDecoderWithDefaults(transport.NewStreamReader(bytes.NewReader(data)))
	if _, err := dec.DecodeBorrowedBytes(); err == nil {
		t.Error("DecodeBorrowedBytes from a stream should fail")
	}
}

func TestOption(t *testing.T) {
	none := encode(t, DefaultOptions(), func(e *Encoder) error { return e.EncodeNone() })
	if !bytes.Equal(none, []byte{0, 0, 0, 0}) {
		t.Errorf("None = %v", none)
	}
	some := encode(t, DefaultOptions(), func(e *Encoder) error {
		return e.EncodeSome(func(e *Encoder) error { return e.EncodeU8(5) })
	})
	if !bytes.Equal(some, []byte{1, 0, 0, 0, 5}) {
		t.Errorf("Some(5) = %v", some)
	}

	dec := NewDecoderWithDefaults(transport.NewSliceReader(some))
	present, err := dec.DecodeOption()
	if err != nil || !present {
		t.Fatalf("DecodeOption = %v, %v", present, err)
	}
	if v, err := dec.DecodeU8(); err != nil || v != 5 {
		t.Errorf("payload = %d, %v", v, err)
	}
}

func TestOption_InvalidDiscriminant(t *testing.T) {
	dec := NewDecoderWithDefaults(transport.NewSliceReader([]byte{2, 0, 0, 0}))
	_, err := dec.DecodeOption()
	var e *errors.Error
	if !stderrors.As(err, &e) {
		t.Fatalf("expected *errors.Error, got %v", err)
	}
	if e.Kind != errors.KindInvalidDiscriminant || e.Value != uint32(2) {
		t.Errorf("error = %v, want invalid discriminant carrying 2", e)
	}
}

func TestNestedOption(t *testing.T) {
	// Some(None) and Some(Some(7))
	data := encode(t, DefaultOptions(), func(e *Encoder) error {
		if err := e.EncodeSome(func(e *Encoder) error { return e.EncodeNone() }); err != nil {
			return err
		}
		return e.EncodeSome(func(e *Encoder) error {
			return e.EncodeSome(func(e *Encoder) error { return e.EncodeI16(7) })
		})
	})
	want := []byte{1, 0, 0, 0, 0, 0, 0, 0, 1, 0, 0, 0, 1, 0, 0, 0, 7, 0}
	if diff := cmp.Diff(want, data); diff != "" {
		t.Fatalf("nested options mismatch (-want +got):\n%s", diff)
	}

	dec := NewDecoderWithDefaults(transport.NewSliceReader(data))
	var tags []bool
	for i := 0; i < 4; i++ {
		p, err := dec.DecodeOption()
		if err != nil {
			t.Fatalf("DecodeOption %d failed: %v", i, err)
		}
		tags = append(tags, p)
	}
	if diff := cmp.Diff([]bool{true, false, true, true}, tags); diff != "" {
		t.Errorf("tags mismatch (-want +got):\n%s", diff)
	}
	v, err := dec.DecodeI16()
	if err != nil || v != 7 {
		t.Errorf("inner value = %d, %v", v, err)
	}
}

func TestPrimitives_RoundTrip(t *testing.T) {
	nan := math.Float64frombits(0x7ff8_dead_beef_0001)
	nan32 := math.Float32frombits(0x7fc0_1234)

	for _, order := range []binary.ByteOrder{binary.LittleEndian, binary.BigEndian} {
		t.Run(order.String(), func(t *testing.T) {
			opts := DefaultOptions()
			opts.Order = order
			data := encode(t, opts, func(e *Encoder) error {
				return firstErr(
					e.EncodeBool(true), e.EncodeBool(false),
					e.EncodeI8(math.MinInt8), e.EncodeI16(math.MinInt16),
					e.EncodeI32(math.MinInt32), e.EncodeI64(math.MinInt64),
					e.EncodeU8(math.MaxUint8), e.EncodeU16(math.MaxUint16),
					e.EncodeU32(math.MaxUint32), e.EncodeU64(math.MaxUint64),
					e.EncodeF32(nan32), e.EncodeF64(nan),
					e.EncodeF64(math.Inf(-1)), e.EncodeChar('€'),
					e.EncodeString(""), e.EncodeBytes(nil),
				)
			})

			dec := NewDecoder(transport.NewSliceReader(data), opts)
			must := func(err error) {
				t.Helper()
				if err != nil {
					t.Fatalf("decode failed: %v", err)
				}
			}
			b1, err := dec.DecodeBool()
			must(err)
			b2, err := dec.DecodeBool()
			must(err)
			i8, err := dec.DecodeI8()
			must(err)
			i16, err := dec.DecodeI16()
			must(err)
			i32, err := dec.DecodeI32()
			must(err)
			i64, err := dec.DecodeI64()
			must(err)
			u8, err := dec.DecodeU8()
			must(err)
			u16, err := dec.DecodeU16()
			must(err)
			u32, err := dec.DecodeU32()
			must(err)
			u64, err := dec.DecodeU64()
			must(err)
			f32, err := dec.DecodeF32()
			must(err)
			f64, err := dec.DecodeF64()
			must(err)
			inf, err := dec.DecodeF64()
			must(err)
			r, err := dec.DecodeChar()
			must(err)
			s, err := dec.DecodeStr()
			must(err)
			b, err := dec.DecodeBytes()
			must(err)

			if !b1 || b2 || i8 != math.MinInt8 || i16 != math.MinInt16 || i32 != math.MinInt32 || i64 != math.MinInt64 {
				t.Error("signed or bool mismatch")
			}
			if u8 != math.MaxUint8 || u16 != math.MaxUint16 || u32 != math.MaxUint32 || u64 != math.MaxUint64 {
				t.Error("unsigned mismatch")
			}
			if math.Float32bits(f32) != 0x7fc0_1234 || math.Float64bits(f64) != 0x7ff8_dead_beef_0001 {
				t.Error("NaN payload not preserved")
			}
			if !math.IsInf(inf, -1) || r != '€' || s != "" || len(b) != 0 {
				t.Error("inf, char, or empty value mismatch")
			}
			if dec.HasMore() {
				t.Error("trailing bytes after round trip")
			}
		})
	}
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func TestBool_NonzeroIsTrue(t *testing.T) {
	dec := NewDecoderWithDefaults(transport.NewSliceReader([]byte{7}))
	v, err := dec.DecodeBool()
	if err != nil || !v {
		t.Errorf("DecodeBool(7) = %v, %v; want true", v, err)
	}
}

func TestChar_Invalid(t *testing.T) {
	w := transport.NewBufferWriter(0)
	enc := NewEncoderWithDefaults(w)
	if err := enc.EncodeChar(0xD800); err == nil {
		t.Error("EncodeChar should reject surrogates")
	}
	if w.Len() != 0 {
		t.Error("failed EncodeChar wrote bytes")
	}

	dec := NewDecoderWithDefaults(transport.NewSliceReader([]byte{0x00, 0xD8, 0, 0}))
	_, err := dec.DecodeChar()
	var e *errors.Error
	if !stderrors.As(err, &e) || e.Kind != errors.KindInvalidChar || e.Value != uint32(0xD800) {
		t.Errorf("DecodeChar error = %v, want invalid char carrying 0xD800", err)
	}
}

func TestString_InvalidUTF8(t *testing.T) {
	data := []byte{2, 0, 0, 0, 0, 0, 0, 0, 0xff, 0xfe}
	for name, fn := range map[string]func(*Decoder) (string, error){
		"borrowed": (*Decoder).DecodeStr,
		"owned":    (*Decoder).DecodeString,
	} {
		t.Run(name, func(t *testing.T) {
			dec := NewDecoderWithDefaults(transport.NewSliceReader(data))
			_, err := fn(dec)
			if kind, _ := errors.KindOf(err); kind != errors.KindInvalidUTF8 {
				t.Errorf("kind = %v, want invalid_utf8", kind)
			}
		})
	}
}

func TestInsufficientData_ConsumesNothing(t *testing.T) {
	r := transport.NewSliceReader([]byte{1, 2, 3})
	dec := NewDecoderWithDefaults(r)
	_, err := dec.DecodeU64()
	var e *errors.Error
	if !stderrors.As(err, &e) || e.Kind != errors.KindInsufficientData {
		t.Fatalf("DecodeU64 error = %v, want insufficient data", err)
	}
	if e.Value != 8 {
		t.Errorf("requested count = %v, want 8", e.Value)
	}
	if r.Offset() != 0 {
		t.Errorf("failed read consumed %d bytes", r.Offset())
	}
	if v, err := dec.DecodeU16(); err != nil || v != 0x0201 {
		t.Errorf("DecodeU16 after failure = %x, %v", v, err)
	}
}

func TestLength_ExceedsInput(t *testing.T) {
	data := []byte{100, 0, 0, 0, 0, 0, 0, 0, 'a'}
	dec := NewDecoderWithDefaults(transport.NewSliceReader(data))
	_, err := dec.DecodeBytes()
	if kind, _ := errors.KindOf(err); kind != errors.KindInsufficientData {
		t.Errorf("kind = %v, want insufficient_data", kind)
	}

	opts := DefaultOptions()
	opts.MaxLength = 10
	dec = NewDecoder(transport.NewStreamReader(bytes.NewReader(data)), opts)
	_, err = dec.DecodeBytes()
	if kind, _ := errors.KindOf(err); kind != errors.KindOverflow {
		t.Errorf("kind = %v, want overflow", kind)
	}
}

func TestStage_HugeLengthOnStream(t *testing.T) {
	data := []byte{0, 0, 0, 0x20, 0, 0, 0, 0, 'x'} // declares 512 MiB
	dec := NewDecoderWithDefaults(transport.NewStreamReader(bytes.NewReader(data)))

	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	_, err := dec.DecodeBytes()
	runtime.ReadMemStats(&after)

	var e *errors.Error
	if !stderrors.As(err, &e) || e.Kind != errors.KindInsufficientData {
		t.Fatalf("DecodeBytes error = %v, want insufficient data", err)
	}
	if e.Value != 512<<20 {
		t.Errorf("requested count = %v, want %d", e.Value, 512<<20)
	}
	if grew := after.TotalAlloc - before.TotalAlloc; grew > 8<<20 {
		t.Errorf("truncated stream allocated %d bytes", grew)
	}
}

func TestStage_LargeStream(t *testing.T) {
	payload := bytes.Repeat([]byte("0123456789abcdef"), 20000) // 320000 bytes
	data := encode(t, DefaultOptions(), func(e *Encoder) error { return e.EncodeBytes(payload) })
	dec := NewDecoderWithDefaults(transport.NewStreamReader(bytes.NewReader(data)))
	got, err := dec.DecodeBytes()
	if err != nil {
		t.Fatalf("DecodeBytes failed: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("staged bytes differ: got %d bytes, want %d", len(got), len(payload))
	}
}

func TestSeq_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   []uint16
	}{
		{"empty", []uint16{}},
		{"one", []uint16{42}},
		{"many", []uint16{1, 2, 3, 65535}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := encode(t, DefaultOptions(), func(e *Encoder) error {
				seq, err := e.EncodeSeq(len(tt.in), true)
				if err != nil {
					return err
				}
				for _, v := range tt.in {
					if err := seq.Element(func(e *Encoder) error { return e.EncodeU16(v) }); err != nil {
						return err
					}
				}
				return seq.End()
			})
			if len(data) != 8+2*len(tt.in) {
				t.Errorf("encoded %d bytes, want %d", len(data), 8+2*len(tt.in))
			}

			dec := NewDecoderWithDefaults(transport.NewSliceReader(data))
			seq, err := dec.DecodeSeq()
			if err != nil {
				t.Fatalf("DecodeSeq failed: %v", err)
			}
			if n, known := seq.Remaining(); n != len(tt.in) || !known {
				t.Errorf("Remaining = %d, %v", n, known)
			}
			got := []uint16{}
			err = seq.Each(func(d *Decoder) error {
				v, err := d.DecodeU16()
				got = append(got, v)
				return err
			})
			if err != nil {
				t.Fatalf("decode failed: %v", err)
			}
			if diff := cmp.Diff(tt.in, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSeq_CountNotRolledBack(t *testing.T) {
	// Two declared u32 elements, only one present.
	data := []byte{2, 0, 0, 0, 0, 0, 0, 0, 1, 0, 0, 0}
	dec := NewDecoderWithDefaults(transport.NewSliceReader(data))
	seq, err := dec.DecodeSeq()
	if err != nil {
		t.Fatalf("DecodeSeq failed: %v", err)
	}
	read := func(d *Decoder) error { _, err := d.DecodeU32(); return err }
	if ok, err := seq.Next(read); !ok || err != nil {
		t.Fatalf("first Next = %v, %v", ok, err)
	}
	if _, err := seq.Next(read); err == nil {
		t.Fatal("second Next should fail")
	}
	if n, _ := seq.Remaining(); n != 0 {
		t.Errorf("Remaining after failed pull = %d, want 0", n)
	}
}

func TestSeq_LengthMismatch(t *testing.T) {
	w := transport.NewBufferWriter(0)
	enc := NewEncoderWithDefaults(w)
	seq, err := enc.EncodeSeq(3, true)
	if err != nil {
		t.Fatalf("EncodeSeq failed: %v", err)
	}
	_ = seq.Element(func(e *Encoder) error { return e.EncodeU8(1) })
	err = seq.End()
	if kind, _ := errors.KindOf(err); kind != errors.KindLengthMismatch {
		t.Errorf("End kind = %v, want length_mismatch", kind)
	}
}

func TestSeq_UnknownLength(t *testing.T) {
	enc := NewEncoderWithDefaults(transport.NewBufferWriter(0))
	_, err := enc.EncodeSeq(0, false)
	if kind, _ := errors.KindOf(err); kind != errors.KindUnsupported {
		t.Fatalf("unknown length with fixed delegate: kind = %v, want unsupported", kind)
	}

	opts := DefaultOptions()
	opts.Delegate = delegate.Streaming{}
	data := encode(t, opts, func(e *Encoder) error {
		seq, err := e.EncodeSeq(0, false)
		if err != nil {
			return err
		}
		for _, v := range []uint8{3, 4, 5} {
			if err := seq.Element(func(e *Encoder) error { return e.EncodeU8(v) }); err != nil {
				return err
			}
		}
		return seq.End()
	})
	if !bytes.Equal(data, []byte{3, 4, 5}) {
		t.Fatalf("streaming seq = %v", data)
	}

	dec := NewDecoder(transport.NewStreamReader(bytes.NewReader(data)), opts)
	seq, err := dec.DecodeSeq()
	if err != nil {
		t.Fatalf("DecodeSeq failed: %v", err)
	}
	if _, known := seq.Remaining(); known {
		t.Error("streaming seq should have unknown length")
	}
	var got []uint8
	err = seq.Each(func(d *Decoder) error {
		v, err := d.DecodeU8()
		got = append(got, v)
		return err
	})
	if err != nil || !bytes.Equal(got, []byte{3, 4, 5}) {
		t.Errorf("decoded %v, %v", got, err)
	}
}

func TestMap_RoundTrip(t *testing.T) {
	keys := []string{"a", "bb"}
	vals := []int32{-1, 2}
	data := encode(t, DefaultOptions(), func(e *Encoder) error {
		m, err := e.EncodeMap(len(keys), true)
		if err != nil {
			return err
		}
		for i := range keys {
			err := m.Entry(
				func(e *Encoder) error { return e.EncodeString(keys[i]) },
				func(e *Encoder) error { return e.EncodeI32(vals[i]) },
			)
			if err != nil {
				return err
			}
		}
		return m.End()
	})

	dec := NewDecoderWithDefaults(transport.NewSliceReader(data))
	m, err := dec.DecodeMap()
	if err != nil {
		t.Fatalf("DecodeMap failed: %v", err)
	}
	got := map[string]int32{}
	for {
		var k string
		var v int32
		ok, err := m.Next(
			func(d *Decoder) (err error) { k, err = d.DecodeString(); return },
			func(d *Decoder) (err error) { v, err = d.DecodeI32(); return },
		)
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		if !ok {
			break
		}
		got[k] = v
	}
	if diff := cmp.Diff(map[string]int32{"a": -1, "bb": 2}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestMap_ValueWithoutKey(t *testing.T) {
	enc := NewEncoderWithDefaults(transport.NewBufferWriter(0))
	m, err := enc.EncodeMap(1, true)
	if err != nil {
		t.Fatalf("EncodeMap failed: %v", err)
	}
	if err := m.Value(func(e *Encoder) error { return e.EncodeU8(1) }); err == nil {
		t.Error("Value without Key should fail")
	}
}

func TestEnum_AllForms(t *testing.T) {
	data := encode(t, DefaultOptions(), func(e *Encoder) error {
		if err := e.EncodeUnitVariant(0); err != nil {
			return err
		}
		if err := e.EncodeNewtypeVariant(1, func(e *Encoder) error { return e.EncodeU8(9) }); err != nil {
			return err
		}
		tv, err := e.EncodeTupleVariant(2, 2)
		if err != nil {
			return err
		}
		_ = tv.Element(func(e *Encoder) error { return e.EncodeU8(1) })
		_ = tv.Element(func(e *Encoder) error { return e.EncodeU8(2) })
		if err := tv.End(); err != nil {
			return err
		}
		sv, err := e.EncodeStructVariant(3, 1)
		if err != nil {
			return err
		}
		_ = sv.Field("name", func(e *Encoder) error { return e.EncodeString("x") })
		return sv.End()
	})

	want := []byte{
		0, 0, 0, 0,
		1, 0, 0, 0, 9,
		2, 0, 0, 0, 1, 2,
		3, 0, 0, 0, 1, 0, 0, 0, 0, 0, 0, 0, 'x',
	}
	if diff := cmp.Diff(want, data); diff != "" {
		t.Fatalf("enum bytes mismatch (-want +got):\n%s", diff)
	}

	dec := NewDecoderWithDefaults(transport.NewSliceReader(data))
	for want := uint32(0); want < 4; want++ {
		ea, err := dec.DecodeEnum()
		if err != nil {
			t.Fatalf("DecodeEnum failed: %v", err)
		}
		if ea.Variant() != want {
			t.Fatalf("Variant = %d, want %d", ea.Variant(), want)
		}
		if err := ea.Check(4); err != nil {
			t.Fatalf("Check failed: %v", err)
		}
		switch want {
		case 0:
			err = ea.Unit()
		case 1:
			err = ea.Newtype(func(d *Decoder) error { _, err := d.DecodeU8(); return err })
		case 2:
			err = ea.Tuple(2).Each(func(d *Decoder) error { _, err := d.DecodeU8(); return err })
		case 3:
			err = ea.Struct([]string{"name"}).Each(func(d *Decoder) error { _, err := d.DecodeStr(); return err })
		}
		if err != nil {
			t.Fatalf("payload %d failed: %v", want, err)
		}
	}
	if dec.HasMore() {
		t.Error("trailing bytes")
	}
}

func TestEnum_DialectLayout(t *testing.T) {
	tests := []struct {
		name string
		del  delegate.Delegate
		want []byte
	}{
		{"fixed", delegate.Fixed{}, []byte{3, 0, 0, 0, 1, 0, 0, 0, 0, 0, 0, 0, 'x'}},
		{"compact", delegate.Compact{}, []byte{3, 0, 1, 0, 0, 0, 'x'}},
		{"leb128", delegate.LEB128{}, []byte{3, 1, 'x'}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			opts.Delegate = tt.del
			data := encode(t, opts, func(e *Encoder) error {
				sv, err := e.EncodeStructVariant(3, 1)
				if err != nil {
					return err
				}
				_ = sv.Field("name", func(e *Encoder) error { return e.EncodeString("x") })
				return sv.End()
			})
			if diff := cmp.Diff(tt.want, data); diff != "" {
				t.Fatalf("enum bytes mismatch (-want +got):\n%s", diff)
			}

			dec := NewDecoder(transport.NewSliceReader(data), opts)
			ea, err := dec.DecodeEnum()
			if err != nil || ea.Variant() != 3 {
				t.Fatalf("DecodeEnum = %v, %v", ea, err)
			}
			var name string
			err = ea.Struct([]string{"name"}).Each(func(d *Decoder) (err error) { name, err = d.DecodeString(); return })
			if err != nil || name != "x" {
				t.Errorf("payload = %q, %v", name, err)
			}
		})
	}
}

func TestEnum_CheckOutOfRange(t *testing.T) {
	dec := NewDecoderWithDefaults(transport.NewSliceReader([]byte{5, 0, 0, 0}))
	ea, err := dec.DecodeEnum()
	if err != nil {
		t.Fatalf("DecodeEnum failed: %v", err)
	}
	err = ea.Check(3)
	var e *errors.Error
	if !stderrors.As(err, &e) || e.Kind != errors.KindInvalidDiscriminant || e.Value != uint32(5) {
		t.Errorf("Check error = %v", err)
	}
}

func TestUnsupported(t *testing.T) {
	dec := NewDecoderWithDefaults(transport.NewSliceReader(nil))
	if _, err := dec.DecodeAny(); !stderrors.Is(err, &errors.Error{Phase: errors.PhaseDecode, Kind: errors.KindUnsupported}) {
		t.Errorf("DecodeAny = %v", err)
	}
	if _, err := dec.DecodeIdentifier(); err == nil {
		t.Error("DecodeIdentifier should fail")
	}
	if err := dec.DecodeIgnored(); err == nil {
		t.Error("DecodeIgnored should fail")
	}

	enc := NewEncoderWithDefaults(transport.NewBufferWriter(0))
	if err := enc.EncodeAny(1); err == nil {
		t.Error("EncodeAny should fail")
	}
}

func TestUnitsWriteNothing(t *testing.T) {
	data := encode(t, DefaultOptions(), func(e *Encoder) error {
		return firstErr(e.EncodeUnit(), e.EncodeUnitStruct(),
			e.EncodeNewtypeStruct(func(e *Encoder) error { return e.EncodeU8(1) }))
	})
	if !bytes.Equal(data, []byte{1}) {
		t.Errorf("units wrote %v", data)
	}
}

func TestDeterminism(t *testing.T) {
	build := func(e *Encoder) error {
		st := e.EncodeStruct(2)
		_ = st.Field("a", func(e *Encoder) error { return e.EncodeString("same") })
		_ = st.Field("b", func(e *Encoder) error { return e.EncodeF64(1.5) })
		return st.End()
	}
	a := encode(t, DefaultOptions(), build)
	b := encode(t, DefaultOptions(), build)
	if !bytes.Equal(a, b) {
		t.Error("identical input produced different bytes")
	}
}

func TestTransportErrorPropagates(t *testing.T) {
	enc := NewEncoderWithDefaults(transport.NewFixedWriter(make([]byte, 6)))
	err := enc.EncodeString("toolong")
	if kind, _ := errors.KindOf(err); kind != errors.KindCapacity {
		t.Errorf("kind = %v, want capacity", kind)
	}
}

func TestDelegates_RoundTrip(t *testing.T) {
	for _, name := range delegate.Names() {
		if name == "streaming" {
			continue
		}
		t.Run(name, func(t *testing.T) {
			d, _ := delegate.ByName(name)
			opts := DefaultOptions()
			opts.Delegate = d
			data := encode(t, opts, func(e *Encoder) error {
				seq, err := e.EncodeSeq(2, true)
				if err != nil {
					return err
				}
				_ = seq.Element(func(e *Encoder) error { return e.EncodeString("héllo") })
				_ = seq.Element(func(e *Encoder) error { return e.EncodeChar('ß') })
				if err := seq.End(); err != nil {
					return err
				}
				return e.EncodeNewtypeVariant(300, func(e *Encoder) error { return e.EncodeNone() })
			})

			dec := NewDecoder(transport.NewStreamReader(bytes.NewReader(data)), opts)
			seq, err := dec.DecodeSeq()
			if err != nil {
				t.Fatalf("DecodeSeq failed: %v", err)
			}
			var s string
			var r rune
			_, _ = seq.Next(func(d *Decoder) (err error) { s, err = d.DecodeStr(); return })
			_, err = seq.Next(func(d *Decoder) (err error) { r, err = d.DecodeChar(); return })
			if err != nil || s != "héllo" || r != 'ß' {
				t.Fatalf("seq = %q %q %v", s, r, err)
			}
			ea, err := dec.DecodeEnum()
			if err != nil || ea.Variant() != 300 {
				t.Fatalf("enum = %v, %v", ea, err)
			}
			if present, err := dec.DecodeOption(); err != nil || present {
				t.Errorf("option = %v, %v", present, err)
			}
		})
	}
}

func TestCompact_VariantOverflow(t *testing.T) {
	opts := DefaultOptions()
	opts.Delegate = delegate.Compact{}
	enc := NewEncoder(transport.NewBufferWriter(0), opts)
	err := enc.EncodeUnitVariant(70000)
	if kind, _ := errors.KindOf(err); kind != errors.KindOverflow {
		t.Errorf("kind = %v, want overflow", kind)
	}
}

func TestLEB128_OverlongToken(t *testing.T) {
	opts := DefaultOptions()
	opts.Delegate = delegate.LEB128{}
	data := bytes.Repeat([]byte{0x80}, 12)
	dec := NewDecoder(transport.NewSliceReader(data), opts)
	_, err := dec.DecodeBytes()
	if kind, _ := errors.KindOf(err); kind != errors.KindOverflow {
		t.Errorf("kind = %v, want overflow", kind)
	}
}

func TestCustomErrors(t *testing.T) {
	enc := NewEncoderWithDefaults(transport.NewBufferWriter(0))
	err := enc.Custom("value %d rejected", 3)
	cause, ok := errors.CustomCause(err)
	if !ok || cause.Error() != "value 3 rejected" {
		t.Errorf("custom cause = %v, %v", cause, ok)
	}

	opts := DefaultOptions()
	opts.Collector = errors.Discard{}
	dec := NewDecoder(transport.NewSliceReader(nil), opts)
	err = dec.Custom("dropped %s", "message")
	if !stderrors.Is(err, errors.ErrMessageDiscarded) {
		t.Errorf("discarded custom error = %v", err)
	}
}

func TestKind(t *testing.T) {
	if KindStructVariant.String() != "struct_variant" || Kind(200).String() != "unknown" {
		t.Error("Kind names wrong")
	}
	if !KindF64.IsPrimitive() || KindChar.IsPrimitive() {
		t.Error("IsPrimitive wrong")
	}
	if KindU16.Width() != 2 || KindString.Width() != 0 {
		t.Error("Width wrong")
	}
	if !KindTupleVariant.IsVariant() || KindTuple.IsVariant() {
		t.Error("IsVariant wrong")
	}
}
