package witvalue

import (
	"fmt"

	"github.com/wippyai/wirecodec/codec"
	"github.com/wippyai/wirecodec/errors"
	"github.com/wippyai/wirecodec/shape"
	"go.bytecodealliance.org/wit"
	"go.uber.org/zap"
)

// Decode reads a value of type t.
func Decode(dec *codec.Decoder, t wit.Type) (any, error) {
	v, err := decodeValue(dec, t)
	if err != nil {
		dec.Logger().Debug("witvalue decode failed", zap.String("type", shape.TypeString(t)), zap.Error(err))
		return nil, err
	}
	return v, nil
}

func decodeValue(dec *codec.Decoder, t wit.Type) (any, error) {
	switch tt := t.(type) {
	case wit.Bool:
		return dec.DecodeBool()
	case wit.U8:
		return dec.DecodeU8()
	case wit.U16:
		return dec.DecodeU16()
	case wit.U32:
		return dec.DecodeU32()
	case wit.U64:
		return dec.DecodeU64()
	case wit.S8:
		return dec.DecodeI8()
	case wit.S16:
		return dec.DecodeI16()
	case wit.S32:
		return dec.DecodeI32()
	case wit.S64:
		return dec.DecodeI64()
	case wit.F32:
		return dec.DecodeF32()
	case wit.F64:
		return dec.DecodeF64()
	case wit.Char:
		return dec.DecodeChar()
	case wit.String:
		return dec.DecodeString()
	case *wit.TypeDef:
		return decodeTypeDef(dec, tt)
	}
	return nil, errors.Unsupported(errors.PhaseDecode, "WIT type "+shape.TypeString(t))
}

func decodeTypeDef(dec *codec.Decoder, td *wit.TypeDef) (any, error) {
	switch k := td.Kind.(type) {
	case *wit.Record:
		names := make([]string, len(k.Fields))
		for i, f := range k.Fields {
			names[i] = f.Name
		}
		out := make(map[string]any, len(k.Fields))
		fields := dec.DecodeStruct(names)
		for _, f := range k.Fields {
			if _, err := fields.Next(func(d *codec.Decoder) error {
				v, err := decodeValue(d, f.Type)
				out[f.Name] = v
				return err
			}); err != nil {
				return nil, prefix(err, f.Name)
			}
		}
		return out, nil

	case *wit.List:
		if _, ok := k.Type.(wit.U8); ok {
			return dec.DecodeBytes()
		}
		seq, err := dec.DecodeSeq()
		if err != nil {
			return nil, err
		}
		n, _ := seq.Remaining()
		out := make([]any, 0, min(n, 1024))
		for {
			ok, err := seq.Next(func(d *codec.Decoder) error {
				v, err := decodeValue(d, k.Type)
				if err == nil {
					out = append(out, v)
				}
				return err
			})
			if err != nil {
				return nil, prefix(err, index(len(out)))
			}
			if !ok {
				return out, nil
			}
		}

	case *wit.Tuple:
		out := make([]any, len(k.Types))
		elems := dec.DecodeTuple(len(k.Types))
		for i, et := range k.Types {
			if _, err := elems.Next(func(d *codec.Decoder) error {
				v, err := decodeValue(d, et)
				out[i] = v
				return err
			}); err != nil {
				return nil, prefix(err, index(i))
			}
		}
		return out, nil

	case *wit.Option:
		some, err := dec.DecodeOption()
		if err != nil || !some {
			return nil, err
		}
		v, err := decodeValue(dec, k.Type)
		if err != nil || !isOption(k.Type) {
			return v, err
		}
		return Some{Value: v}, nil

	case *wit.Result:
		acc, err := dec.DecodeEnum()
		if err != nil {
			return nil, err
		}
		if err := acc.Check(2); err != nil {
			return nil, shaped(err, td)
		}
		if acc.Variant() == 0 {
			return decodeCase(acc, "ok", k.OK)
		}
		return decodeCase(acc, "err", k.Err)

	case *wit.Variant:
		acc, err := dec.DecodeEnum()
		if err != nil {
			return nil, err
		}
		if err := acc.Check(len(k.Cases)); err != nil {
			return nil, shaped(err, td)
		}
		c := k.Cases[acc.Variant()]
		return decodeCase(acc, c.Name, c.Type)

	case *wit.Enum:
		acc, err := dec.DecodeEnum()
		if err != nil {
			return nil, err
		}
		if err := acc.Check(len(k.Cases)); err != nil {
			return nil, shaped(err, td)
		}
		return acc.Variant(), acc.Unit()

	case *wit.Flags:
		return decodeFlags(dec, td, k)

	case wit.Type:
		return decodeValue(dec, k)
	}
	return nil, errors.Unsupported(errors.PhaseDecode, "WIT type "+shape.KindString(td))
}

func decodeCase(acc *codec.EnumAccess, name string, payload wit.Type) (any, error) {
	if payload == nil {
		return map[string]any{name: nil}, acc.Unit()
	}
	var v any
	if err := acc.Newtype(func(d *codec.Decoder) error {
		var err error
		v, err = decodeValue(d, payload)
		return err
	}); err != nil {
		return nil, prefix(err, name)
	}
	return map[string]any{name: v}, nil
}

func decodeFlags(dec *codec.Decoder, td *wit.TypeDef, f *wit.Flags) (any, error) {
	n := len(f.Flags)
	var bits uint64
	switch {
	case n <= 32:
		v, err := dec.DecodeU32()
		if err != nil {
			return nil, err
		}
		bits = uint64(v)
	case n <= 64:
		v, err := dec.DecodeU64()
		if err != nil {
			return nil, err
		}
		bits = v
	default:
		return nil, errors.Unsupported(errors.PhaseDecode, fmt.Sprintf("flags with %d members", n))
	}
	if n < 64 && bits>>n != 0 {
		return nil, errors.New(errors.PhaseDecode, errors.KindInvalidData).
			Shape(shape.TypeString(td)).
			Value(bits).
			Detail("flag bits set beyond the %d defined flags", n).
			Build()
	}
	return bits, nil
}

func shaped(err error, td *wit.TypeDef) error {
	if e, ok := err.(*errors.Error); ok && e.Shape == "" {
		e.Shape = shape.TypeString(td)
	}
	return err
}
