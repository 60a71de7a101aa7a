package witvalue

import (
	"fmt"
	"reflect"
	"strconv"
	"unicode/utf8"

	"github.com/wippyai/wirecodec/codec"
	"github.com/wippyai/wirecodec/errors"
	"github.com/wippyai/wirecodec/shape"
	"go.bytecodealliance.org/wit"
	"go.uber.org/zap"
)

// Encode writes v as a value of type t.
func Encode(enc *codec.Encoder, t wit.Type, v any) error {
	if err := encodeValue(enc, t, v); err != nil {
		enc.Logger().Debug("witvalue encode failed", zap.String("type", shape.TypeString(t)), zap.Error(err))
		return err
	}
	return nil
}

func encodeValue(enc *codec.Encoder, t wit.Type, v any) error {
	switch tt := t.(type) {
	case wit.Bool:
		b, ok := v.(bool)
		if !ok {
			return mismatch(errors.PhaseEncode, v, t)
		}
		return enc.EncodeBool(b)
	case wit.U8:
		n, err := unsignedArg(v, t, 8)
		if err != nil {
			return err
		}
		return enc.EncodeU8(uint8(n))
	case wit.U16:
		n, err := unsignedArg(v, t, 16)
		if err != nil {
			return err
		}
		return enc.EncodeU16(uint16(n))
	case wit.U32:
		n, err := unsignedArg(v, t, 32)
		if err != nil {
			return err
		}
		return enc.EncodeU32(uint32(n))
	case wit.U64:
		n, err := unsignedArg(v, t, 64)
		if err != nil {
			return err
		}
		return enc.EncodeU64(n)
	case wit.S8:
		n, err := signedArg(v, t, 8)
		if err != nil {
			return err
		}
		return enc.EncodeI8(int8(n))
	case wit.S16:
		n, err := signedArg(v, t, 16)
		if err != nil {
			return err
		}
		return enc.EncodeI16(int16(n))
	case wit.S32:
		n, err := signedArg(v, t, 32)
		if err != nil {
			return err
		}
		return enc.EncodeI32(int32(n))
	case wit.S64:
		n, err := signedArg(v, t, 64)
		if err != nil {
			return err
		}
		return enc.EncodeI64(n)
	case wit.F32:
		f, ok := toFloat(v)
		if !ok {
			return mismatch(errors.PhaseEncode, v, t)
		}
		return enc.EncodeF32(float32(f))
	case wit.F64:
		f, ok := toFloat(v)
		if !ok {
			return mismatch(errors.PhaseEncode, v, t)
		}
		return enc.EncodeF64(f)
	case wit.Char:
		r, err := charArg(v)
		if err != nil {
			return err
		}
		return enc.EncodeChar(r)
	case wit.String:
		s, ok := v.(string)
		if !ok {
			return mismatch(errors.PhaseEncode, v, t)
		}
		return enc.EncodeString(s)
	case *wit.TypeDef:
		return encodeTypeDef(enc, tt, v)
	}
	return errors.Unsupported(errors.PhaseEncode, "WIT type "+shape.TypeString(t))
}

func encodeTypeDef(enc *codec.Encoder, td *wit.TypeDef, v any) error {
	switch k := td.Kind.(type) {
	case *wit.Record:
		return encodeRecord(enc, td, k, v)
	case *wit.List:
		return encodeList(enc, td, k, v)
	case *wit.Tuple:
		elems, ok := elements(v)
		if !ok {
			return mismatch(errors.PhaseEncode, v, td)
		}
		if len(elems) != len(k.Types) {
			return errors.LengthMismatch(errors.PhaseEncode, nil, len(k.Types), len(elems))
		}
		seq := enc.EncodeTuple(len(k.Types))
		for i, et := range k.Types {
			if err := seq.Element(func(e *codec.Encoder) error {
				return encodeValue(e, et, elems[i])
			}); err != nil {
				return prefix(err, index(i))
			}
		}
		return seq.End()
	case *wit.Option:
		inner, some := optionArg(v)
		if !some {
			return enc.EncodeNone()
		}
		return enc.EncodeSome(func(e *codec.Encoder) error {
			return encodeValue(e, k.Type, inner)
		})
	case *wit.Result:
		return encodeResult(enc, td, k, v)
	case *wit.Variant:
		return encodeVariant(enc, td, k, v)
	case *wit.Enum:
		idx, err := caseIndex(v, td, len(k.Cases), func(name string) int {
			for i, c := range k.Cases {
				if c.Name == name {
					return i
				}
			}
			return -1
		})
		if err != nil {
			return err
		}
		return enc.EncodeUnitVariant(idx)
	case *wit.Flags:
		return encodeFlags(enc, td, k, v)
	case wit.Type:
		return encodeValue(enc, k, v)
	}
	return errors.Unsupported(errors.PhaseEncode, "WIT type "+shape.KindString(td))
}

func encodeRecord(enc *codec.Encoder, td *wit.TypeDef, r *wit.Record, v any) error {
	m, ok := v.(map[string]any)
	if !ok {
		return mismatch(errors.PhaseEncode, v, td)
	}
	st := enc.EncodeStruct(len(r.Fields))
	for _, f := range r.Fields {
		fv, found := m[f.Name]
		if !found && !isOption(f.Type) {
			return errors.FieldMissing(errors.PhaseEncode, []string{f.Name}, f.Name)
		}
		if err := st.Field(f.Name, func(e *codec.Encoder) error {
			return encodeValue(e, f.Type, fv)
		}); err != nil {
			return prefix(err, f.Name)
		}
	}
	return st.End()
}

func encodeList(enc *codec.Encoder, td *wit.TypeDef, l *wit.List, v any) error {
	if _, ok := l.Type.(wit.U8); ok {
		if b, ok := v.([]byte); ok {
			return enc.EncodeBytes(b)
		}
	}
	elems, ok := elements(v)
	if !ok {
		return mismatch(errors.PhaseEncode, v, td)
	}
	if _, ok := l.Type.(wit.U8); ok {
		b := make([]byte, len(elems))
		for i, ev := range elems {
			n, err := unsignedArg(ev, l.Type, 8)
			if err != nil {
				return prefix(err, index(i))
			}
			b[i] = uint8(n)
		}
		return enc.EncodeBytes(b)
	}

	seq, err := enc.EncodeSeq(len(elems), true)
	if err != nil {
		return err
	}
	for i, ev := range elems {
		if err := seq.Element(func(e *codec.Encoder) error {
			return encodeValue(e, l.Type, ev)
		}); err != nil {
			return prefix(err, index(i))
		}
	}
	return seq.End()
}

func encodeResult(enc *codec.Encoder, td *wit.TypeDef, r *wit.Result, v any) error {
	m, ok := v.(map[string]any)
	if !ok {
		return mismatch(errors.PhaseEncode, v, td)
	}
	okVal, hasOK := m["ok"]
	errVal, hasErr := m["err"]
	switch {
	case hasOK && !hasErr:
		return encodeCase(enc, 0, "ok", r.OK, okVal)
	case hasErr && !hasOK:
		return encodeCase(enc, 1, "err", r.Err, errVal)
	}
	return errors.New(errors.PhaseEncode, errors.KindInvalidData).
		Shape(shape.TypeString(td)).
		Detail("result must have exactly one of the keys ok and err").
		Build()
}

func encodeVariant(enc *codec.Encoder, td *wit.TypeDef, vr *wit.Variant, v any) error {
	find := func(name string) int {
		for i, c := range vr.Cases {
			if c.Name == name {
				return i
			}
		}
		return -1
	}

	// A bare case name selects a case without payload.
	if name, ok := v.(string); ok {
		i := find(name)
		if i < 0 || vr.Cases[i].Type != nil {
			return unknownCase(td, name)
		}
		return enc.EncodeUnitVariant(uint32(i))
	}

	m, ok := v.(map[string]any)
	if !ok {
		return mismatch(errors.PhaseEncode, v, td)
	}
	if len(m) != 1 {
		return errors.New(errors.PhaseEncode, errors.KindInvalidData).
			Shape(shape.TypeString(td)).
			Detail("variant must have exactly one case key, got %d", len(m)).
			Build()
	}
	for name, payload := range m {
		i := find(name)
		if i < 0 {
			return unknownCase(td, name)
		}
		return encodeCase(enc, uint32(i), name, vr.Cases[i].Type, payload)
	}
	return nil
}

func encodeCase(enc *codec.Encoder, idx uint32, name string, payload wit.Type, v any) error {
	if payload == nil {
		return enc.EncodeUnitVariant(idx)
	}
	if err := enc.EncodeNewtypeVariant(idx, func(e *codec.Encoder) error {
		return encodeValue(e, payload, v)
	}); err != nil {
		return prefix(err, name)
	}
	return nil
}

func encodeFlags(enc *codec.Encoder, td *wit.TypeDef, f *wit.Flags, v any) error {
	n := len(f.Flags)
	if n > 64 {
		return errors.Unsupported(errors.PhaseEncode, fmt.Sprintf("flags with %d members", n))
	}

	var bits uint64
	set := func(name string) error {
		for i, fl := range f.Flags {
			if fl.Name == name {
				bits |= 1 << i
				return nil
			}
		}
		return errors.New(errors.PhaseEncode, errors.KindInvalidData).
			Shape(shape.TypeString(td)).
			Value(name).
			Detail("unknown flag %q", name).
			Build()
	}

	switch val := v.(type) {
	case map[string]bool:
		for name, on := range val {
			if !on {
				continue
			}
			if err := set(name); err != nil {
				return err
			}
		}
	case map[string]any:
		for name, on := range val {
			if b, ok := on.(bool); !ok || !b {
				continue
			}
			if err := set(name); err != nil {
				return err
			}
		}
	case []string:
		for _, name := range val {
			if err := set(name); err != nil {
				return err
			}
		}
	case []any:
		for i, item := range val {
			name, ok := item.(string)
			if !ok {
				return prefix(mismatch(errors.PhaseEncode, item, wit.String{}), index(i))
			}
			if err := set(name); err != nil {
				return err
			}
		}
	default:
		num, ok := toInteger(v)
		if !ok {
			return mismatch(errors.PhaseEncode, v, td)
		}
		if !num.fitsUnsigned(n) {
			return errors.Overflow(errors.PhaseEncode, nil, v, shape.TypeString(td))
		}
		bits = num.u
	}

	if n <= 32 {
		return enc.EncodeU32(uint32(bits))
	}
	return enc.EncodeU64(bits)
}

func unsignedArg(v any, t wit.Type, bits int) (uint64, error) {
	n, ok := toInteger(v)
	if !ok {
		return 0, mismatch(errors.PhaseEncode, v, t)
	}
	if !n.fitsUnsigned(bits) {
		return 0, errors.Overflow(errors.PhaseEncode, nil, v, shape.TypeString(t))
	}
	return n.u, nil
}

func signedArg(v any, t wit.Type, bits int) (int64, error) {
	n, ok := toInteger(v)
	if !ok {
		return 0, mismatch(errors.PhaseEncode, v, t)
	}
	if !n.fitsSigned(bits) {
		return 0, errors.Overflow(errors.PhaseEncode, nil, v, shape.TypeString(t))
	}
	return n.signed(), nil
}

func charArg(v any) (rune, error) {
	switch val := v.(type) {
	case rune:
		return val, nil
	case string:
		r, size := utf8.DecodeRuneInString(val)
		if size == 0 || size != len(val) || r == utf8.RuneError && size == 1 {
			return 0, errors.New(errors.PhaseEncode, errors.KindInvalidData).
				Shape("char").
				Value(val).
				Detail("char must be a string of exactly one character").
				Build()
		}
		return r, nil
	}
	return 0, mismatch(errors.PhaseEncode, v, wit.Char{})
}

// caseIndex resolves an enum value given as a case name or an index.
func caseIndex(v any, td *wit.TypeDef, cases int, find func(string) int) (uint32, error) {
	if name, ok := v.(string); ok {
		i := find(name)
		if i < 0 {
			return 0, unknownCase(td, name)
		}
		return uint32(i), nil
	}
	n, ok := toInteger(v)
	if !ok {
		return 0, mismatch(errors.PhaseEncode, v, td)
	}
	if cases == 0 || n.neg || n.huge || n.u >= uint64(cases) {
		return 0, errors.New(errors.PhaseEncode, errors.KindInvalidDiscriminant).
			Shape(shape.TypeString(td)).
			Value(v).
			Detail("case index %v out of range for %d cases", v, cases).
			Build()
	}
	return uint32(n.u), nil
}

// Some is a present option whose payload is itself an option. Decode returns
// it for every such layer so that a present inner none differs from an absent
// outer option; Encode accepts it for any option.
type Some struct {
	Value any
}

func optionArg(v any) (any, bool) {
	switch s := v.(type) {
	case nil:
		return nil, false
	case Some:
		return s.Value, true
	case *Some:
		if s == nil {
			return nil, false
		}
		return s.Value, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}
		return rv.Elem().Interface(), true
	}
	return v, true
}

// elements returns the items of any slice or array.
func elements(v any) ([]any, bool) {
	if items, ok := v.([]any); ok {
		return items, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items, true
}

func isOption(t wit.Type) bool {
	for {
		td, ok := t.(*wit.TypeDef)
		if !ok {
			return false
		}
		switch k := td.Kind.(type) {
		case *wit.Option:
			return true
		case wit.Type:
			t = k
		default:
			return false
		}
	}
}

func unknownCase(td *wit.TypeDef, name string) error {
	return errors.New(errors.PhaseEncode, errors.KindInvalidData).
		Shape(shape.TypeString(td)).
		Value(name).
		Detail("unknown case %q", name).
		Build()
}

func mismatch(phase errors.Phase, v any, t wit.Type) error {
	goType := "nil"
	if v != nil {
		goType = reflect.TypeOf(v).String()
	}
	return errors.TypeMismatch(phase, nil, goType, shape.TypeString(t))
}

func index(i int) string {
	return "[" + strconv.Itoa(i) + "]"
}

func prefix(err error, seg string) error {
	e, ok := err.(*errors.Error)
	if !ok || e.Kind == errors.KindCustom {
		return err
	}
	e.Path = append([]string{seg}, e.Path...)
	return e
}
