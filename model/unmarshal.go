package model

import (
	"reflect"
	"strconv"

	"github.com/wippyai/wirecodec/codec"
	"github.com/wippyai/wirecodec/errors"
	"go.uber.org/zap"
)

// preallocLimit caps capacity reserved from a decoded count before the
// elements have actually been read.
const preallocLimit = 1024

// Unmarshal decodes into the value ptr points to, using the default compiler.
func Unmarshal(dec *codec.Decoder, ptr any) error {
	return defaultCompiler.Unmarshal(dec, ptr)
}

// Unmarshal decodes into the value ptr points to.
func (c *Compiler) Unmarshal(dec *codec.Decoder, ptr any) error {
	if ptr == nil {
		return errors.NilPointer(errors.PhaseDecode, nil, "nil")
	}
	rv := reflect.ValueOf(ptr)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return errors.NilPointer(errors.PhaseDecode, nil, reflect.TypeOf(ptr).String())
	}
	p, err := c.Compile(rv.Type().Elem())
	if err != nil {
		return err
	}
	if err := decodeValue(dec, p, rv.Elem()); err != nil {
		dec.Logger().Debug("unmarshal failed", zap.Stringer("type", rv.Type().Elem()), zap.Error(err))
		return err
	}
	return nil
}

func decodeValue(dec *codec.Decoder, p *Plan, v reflect.Value) error {
	if p.unmarshaler {
		return v.Addr().Interface().(Unmarshaler).UnmarshalWire(dec)
	}

	switch p.Kind {
	case codec.KindBool:
		b, err := dec.DecodeBool()
		v.SetBool(b)
		return err
	case codec.KindI8:
		n, err := dec.DecodeI8()
		v.SetInt(int64(n))
		return err
	case codec.KindI16:
		n, err := dec.DecodeI16()
		v.SetInt(int64(n))
		return err
	case codec.KindI32:
		n, err := dec.DecodeI32()
		v.SetInt(int64(n))
		return err
	case codec.KindI64:
		n, err := dec.DecodeI64()
		if err != nil {
			return err
		}
		if v.OverflowInt(n) {
			return errors.Overflow(errors.PhaseDecode, nil, n, v.Type().String())
		}
		v.SetInt(n)
		return nil
	case codec.KindU8:
		n, err := dec.DecodeU8()
		v.SetUint(uint64(n))
		return err
	case codec.KindU16:
		n, err := dec.DecodeU16()
		v.SetUint(uint64(n))
		return err
	case codec.KindU32:
		n, err := dec.DecodeU32()
		v.SetUint(uint64(n))
		return err
	case codec.KindU64:
		n, err := dec.DecodeU64()
		if err != nil {
			return err
		}
		if v.OverflowUint(n) {
			return errors.Overflow(errors.PhaseDecode, nil, n, v.Type().String())
		}
		v.SetUint(n)
		return nil
	case codec.KindF32:
		f, err := dec.DecodeF32()
		v.SetFloat(float64(f))
		return err
	case codec.KindF64:
		f, err := dec.DecodeF64()
		v.SetFloat(f)
		return err
	case codec.KindChar:
		r, err := dec.DecodeChar()
		v.SetInt(int64(r))
		return err
	case codec.KindString:
		s, err := dec.DecodeString()
		v.SetString(s)
		return err
	case codec.KindBytes:
		b, err := dec.DecodeBytes()
		if err != nil {
			return err
		}
		v.SetBytes(b)
		return nil
	case codec.KindUnit:
		return dec.DecodeUnit()

	case codec.KindOption:
		present, err := dec.DecodeOption()
		if err != nil {
			return err
		}
		if !present {
			v.SetZero()
			return nil
		}
		if v.IsNil() {
			v.Set(reflect.New(p.GoType.Elem()))
		}
		return decodeValue(dec, p.Elem, v.Elem())

	case codec.KindSeq:
		seq, err := dec.DecodeSeq()
		if err != nil {
			return err
		}
		n, _ := seq.Remaining()
		s := reflect.MakeSlice(p.GoType, 0, min(n, preallocLimit))
		for i := 0; ; i++ {
			s = reflect.Append(s, reflect.Zero(p.Elem.GoType))
			ok, err := seq.Next(func(d *codec.Decoder) error {
				return decodeValue(d, p.Elem, s.Index(i))
			})
			if err != nil {
				return prefix(err, "["+strconv.Itoa(i)+"]")
			}
			if !ok {
				s = s.Slice(0, i)
				break
			}
		}
		v.Set(s)
		return nil

	case codec.KindTuple:
		tup := dec.DecodeTuple(p.Len)
		for i := 0; i < p.Len; i++ {
			if _, err := tup.Next(func(d *codec.Decoder) error {
				return decodeValue(d, p.Elem, v.Index(i))
			}); err != nil {
				return prefix(err, "["+strconv.Itoa(i)+"]")
			}
		}
		return nil

	case codec.KindMap:
		m, err := dec.DecodeMap()
		if err != nil {
			return err
		}
		n, _ := m.Remaining()
		out := reflect.MakeMapWithSize(p.GoType, min(n, preallocLimit))
		for {
			key := reflect.New(p.Key.GoType).Elem()
			val := reflect.New(p.Elem.GoType).Elem()
			ok, err := m.Next(
				func(d *codec.Decoder) error { return decodeValue(d, p.Key, key) },
				func(d *codec.Decoder) error { return decodeValue(d, p.Elem, val) },
			)
			if err != nil {
				return err
			}
			if !ok {
				break
			}
			out.SetMapIndex(key, val)
		}
		v.Set(out)
		return nil

	case codec.KindStruct:
		return decodeFields(dec.DecodeStruct(p.names), p.Fields, v)

	case codec.KindEnum:
		return decodeUnion(dec, p, v)
	}
	return errors.Unsupported(errors.PhaseDecode, "kind "+p.Kind.String())
}

func decodeFields(seq *codec.SeqAccess, fields []Field, v reflect.Value) error {
	for _, f := range fields {
		fv := v.Field(f.Index)
		if _, err := seq.Next(func(d *codec.Decoder) error {
			return decodeValue(d, f.Plan, fv)
		}); err != nil {
			return prefix(err, f.Name)
		}
	}
	return nil
}

func decodeUnion(dec *codec.Decoder, p *Plan, v reflect.Value) error {
	ea, err := dec.DecodeEnum()
	if err != nil {
		return err
	}
	if err := ea.Check(len(p.Cases)); err != nil {
		e := err.(*errors.Error)
		e.GoType = p.GoType.String()
		return e
	}

	c := p.Cases[ea.Variant()]
	payload := reflect.New(c.Plan.GoType)
	switch c.Form {
	case codec.KindUnitVariant:
		err = ea.Unit()
	case codec.KindStructVariant:
		err = decodeFields(ea.Struct(c.Plan.names), c.Plan.Fields, payload.Elem())
	case codec.KindTupleVariant:
		tup := ea.Tuple(c.Plan.Len)
		for i := 0; i < c.Plan.Len && err == nil; i++ {
			_, err = tup.Next(func(d *codec.Decoder) error {
				return decodeValue(d, c.Plan.Elem, payload.Elem().Index(i))
			})
		}
	default:
		err = ea.Newtype(func(d *codec.Decoder) error {
			return decodeValue(d, c.Plan, payload.Elem())
		})
	}
	if err != nil {
		return prefix(err, c.Name)
	}

	for _, other := range p.Cases {
		v.Field(other.Index).SetZero()
	}
	v.Field(c.Index).Set(payload)
	return nil
}
