package model

import (
	"bytes"
	"reflect"
	"slices"
	"strconv"

	"github.com/wippyai/wirecodec/codec"
	"github.com/wippyai/wirecodec/errors"
	"github.com/wippyai/wirecodec/transport"
	"go.uber.org/zap"
)

// Marshal encodes v with the default compiler.
func Marshal(enc *codec.Encoder, v any) error {
	return defaultCompiler.Marshal(enc, v)
}

// Marshal encodes v.
func (c *Compiler) Marshal(enc *codec.Encoder, v any) error {
	if v == nil {
		return errors.NilPointer(errors.PhaseEncode, nil, "nil")
	}
	rv := reflect.ValueOf(v)
	p, err := c.Compile(rv.Type())
	if err != nil {
		return err
	}
	if err := encodeValue(enc, p, rv); err != nil {
		enc.Logger().Debug("marshal failed", zap.Stringer("type", rv.Type()), zap.Error(err))
		return err
	}
	return nil
}

func encodeValue(enc *codec.Encoder, p *Plan, v reflect.Value) error {
	if p.marshaler {
		return marshalHook(enc, v)
	}

	switch p.Kind {
	case codec.KindBool:
		return enc.EncodeBool(v.Bool())
	case codec.KindI8:
		return enc.EncodeI8(int8(v.Int()))
	case codec.KindI16:
		return enc.EncodeI16(int16(v.Int()))
	case codec.KindI32:
		return enc.EncodeI32(int32(v.Int()))
	case codec.KindI64:
		return enc.EncodeI64(v.Int())
	case codec.KindU8:
		return enc.EncodeU8(uint8(v.Uint()))
	case codec.KindU16:
		return enc.EncodeU16(uint16(v.Uint()))
	case codec.KindU32:
		return enc.EncodeU32(uint32(v.Uint()))
	case codec.KindU64:
		return enc.EncodeU64(v.Uint())
	case codec.KindF32:
		return enc.EncodeF32(float32(v.Float()))
	case codec.KindF64:
		return enc.EncodeF64(v.Float())
	case codec.KindChar:
		return enc.EncodeChar(rune(v.Int()))
	case codec.KindString:
		return enc.EncodeString(v.String())
	case codec.KindBytes:
		return enc.EncodeBytes(v.Bytes())
	case codec.KindUnit:
		return enc.EncodeUnit()

	case codec.KindOption:
		if v.IsNil() {
			return enc.EncodeNone()
		}
		return enc.EncodeSome(func(e *codec.Encoder) error {
			return encodeValue(e, p.Elem, v.Elem())
		})

	case codec.KindSeq:
		n := v.Len()
		seq, err := enc.EncodeSeq(n, true)
		if err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			if err := seq.Element(func(e *codec.Encoder) error {
				return encodeValue(e, p.Elem, v.Index(i))
			}); err != nil {
				return prefix(err, "["+strconv.Itoa(i)+"]")
			}
		}
		return seq.End()

	case codec.KindTuple:
		tup := enc.EncodeTuple(p.Len)
		for i := 0; i < p.Len; i++ {
			if err := tup.Element(func(e *codec.Encoder) error {
				return encodeValue(e, p.Elem, v.Index(i))
			}); err != nil {
				return prefix(err, "["+strconv.Itoa(i)+"]")
			}
		}
		return tup.End()

	case codec.KindMap:
		return encodeMap(enc, p, v)

	case codec.KindStruct:
		st := enc.EncodeStruct(len(p.Fields))
		if err := encodeFields(p.Fields, v, st.Field); err != nil {
			return err
		}
		return st.End()

	case codec.KindEnum:
		return encodeUnion(enc, p, v)
	}
	return errors.Unsupported(errors.PhaseEncode, "kind "+p.Kind.String())
}

func encodeFields(fields []Field, v reflect.Value, field func(string, func(*codec.Encoder) error) error) error {
	for _, f := range fields {
		fv := v.Field(f.Index)
		if err := field(f.Name, func(e *codec.Encoder) error {
			return encodeValue(e, f.Plan, fv)
		}); err != nil {
			return prefix(err, f.Name)
		}
	}
	return nil
}

type mapEntry struct {
	key []byte
	val reflect.Value
}

// encodeMap writes entries ordered by their encoded keys so that equal maps
// always produce equal bytes.
func encodeMap(enc *codec.Encoder, p *Plan, v reflect.Value) error {
	entries := make([]mapEntry, 0, v.Len())
	buf := transport.NewBufferWriter(64)
	keyEnc := enc.Fork(buf)
	iter := v.MapRange()
	for iter.Next() {
		buf.Reset()
		if err := encodeValue(keyEnc, p.Key, iter.Key()); err != nil {
			return prefix(err, "<key>")
		}
		entries = append(entries, mapEntry{key: bytes.Clone(buf.Bytes()), val: iter.Value()})
	}
	slices.SortFunc(entries, func(a, b mapEntry) int { return bytes.Compare(a.key, b.key) })

	m, err := enc.EncodeMap(len(entries), true)
	if err != nil {
		return err
	}
	for _, ent := range entries {
		err := m.Entry(
			func(e *codec.Encoder) error { return e.Writer().Write(ent.key) },
			func(e *codec.Encoder) error { return encodeValue(e, p.Elem, ent.val) },
		)
		if err != nil {
			return err
		}
	}
	return m.End()
}

func encodeUnion(enc *codec.Encoder, p *Plan, v reflect.Value) error {
	sel := -1
	for i, c := range p.Cases {
		if v.Field(c.Index).IsNil() {
			continue
		}
		if sel >= 0 {
			return errors.New(errors.PhaseEncode, errors.KindInvalidData).
				GoType(p.GoType.String()).
				Detail("union cases %s and %s are both set", p.Cases[sel].Name, c.Name).
				Build()
		}
		sel = i
	}
	if sel < 0 {
		return errors.New(errors.PhaseEncode, errors.KindInvalidData).
			GoType(p.GoType.String()).
			Detail("no union case is set").
			Build()
	}

	c := p.Cases[sel]
	idx := uint32(sel)
	payload := v.Field(c.Index).Elem()
	var err error
	switch c.Form {
	case codec.KindUnitVariant:
		err = enc.EncodeUnitVariant(idx)
	case codec.KindStructVariant:
		var sv *codec.StructEncoder
		if sv, err = enc.EncodeStructVariant(idx, len(c.Plan.Fields)); err == nil {
			if err = encodeFields(c.Plan.Fields, payload, sv.Field); err == nil {
				err = sv.End()
			}
		}
	case codec.KindTupleVariant:
		var tv *codec.SeqEncoder
		if tv, err = enc.EncodeTupleVariant(idx, c.Plan.Len); err == nil {
			for i := 0; i < c.Plan.Len && err == nil; i++ {
				err = tv.Element(func(e *codec.Encoder) error {
					return encodeValue(e, c.Plan.Elem, payload.Index(i))
				})
			}
			if err == nil {
				err = tv.End()
			}
		}
	default:
		err = enc.EncodeNewtypeVariant(idx, func(e *codec.Encoder) error {
			return encodeValue(e, c.Plan, payload)
		})
	}
	if err != nil {
		return prefix(err, c.Name)
	}
	return nil
}

func marshalHook(enc *codec.Encoder, v reflect.Value) error {
	if m, ok := v.Interface().(Marshaler); ok {
		return m.MarshalWire(enc)
	}
	if v.CanAddr() {
		return v.Addr().Interface().(Marshaler).MarshalWire(enc)
	}
	ptr := reflect.New(v.Type())
	ptr.Elem().Set(v)
	return ptr.Interface().(Marshaler).MarshalWire(enc)
}
