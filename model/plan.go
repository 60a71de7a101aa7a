package model

import (
	"reflect"
	"strings"
	"sync"

	"github.com/wippyai/wirecodec/codec"
	"github.com/wippyai/wirecodec/errors"
)

// Union marks a struct as an enum. Embed it as the first field.
type Union struct{}

// Marshaler is implemented by types that encode themselves.
type Marshaler interface {
	MarshalWire(*codec.Encoder) error
}

// Unmarshaler is implemented by types that decode themselves.
type Unmarshaler interface {
	UnmarshalWire(*codec.Decoder) error
}

var (
	unionType       = reflect.TypeOf(Union{})
	marshalerType   = reflect.TypeOf((*Marshaler)(nil)).Elem()
	unmarshalerType = reflect.TypeOf((*Unmarshaler)(nil)).Elem()
)

// Plan is the compiled encoding of one Go type.
type Plan struct {
	GoType reflect.Type
	Elem   *Plan // option, seq, tuple, and map value
	Key    *Plan // map key
	Fields []Field
	Cases  []Case
	Len    int // tuple length
	Kind   codec.Kind

	names       []string
	marshaler   bool // MarshalWire and UnmarshalWire replace the structural encoding
	unmarshaler bool
}

// Field is one encoded struct field.
type Field struct {
	Plan  *Plan
	Name  string
	Index int
}

// Case is one union case. Plan describes the pointee of the case field.
type Case struct {
	Plan  *Plan
	Name  string
	Index int
	Form  codec.Kind // unit, newtype, tuple, or struct variant
}

// Compiler builds and caches plans.
type Compiler struct {
	cache sync.Map // reflect.Type -> *Plan
}

// NewCompiler returns an empty compiler.
func NewCompiler() *Compiler {
	return &Compiler{}
}

var defaultCompiler = NewCompiler()

// Compile returns the plan for t.
func (c *Compiler) Compile(t reflect.Type) (*Plan, error) {
	if t == nil {
		return nil, errors.New(errors.PhaseCompile, errors.KindNilPointer).
			Detail("Go type cannot be nil").
			Build()
	}
	if cached, ok := c.cache.Load(t); ok {
		return cached.(*Plan), nil
	}

	building := make(map[reflect.Type]*Plan)
	p, err := c.compile(t, building, false)
	if err != nil {
		return nil, err
	}
	for bt, bp := range building {
		c.cache.LoadOrStore(bt, bp)
	}
	if cached, ok := c.cache.Load(t); ok {
		return cached.(*Plan), nil
	}
	return p, nil
}

func (c *Compiler) compile(t reflect.Type, building map[reflect.Type]*Plan, char bool) (*Plan, error) {
	if char {
		if t.Kind() != reflect.Int32 {
			return nil, errors.TypeMismatch(errors.PhaseCompile, nil, t.String(), "char (int32)")
		}
		return &Plan{GoType: t, Kind: codec.KindChar}, nil
	}
	if cached, ok := c.cache.Load(t); ok {
		return cached.(*Plan), nil
	}
	if p, ok := building[t]; ok {
		return p, nil
	}

	p := &Plan{GoType: t}
	building[t] = p

	// Pointers are options; a hook on the pointee is found on the element plan.
	if t.Kind() != reflect.Pointer {
		p.marshaler = t.Implements(marshalerType) || reflect.PointerTo(t).Implements(marshalerType)
		p.unmarshaler = reflect.PointerTo(t).Implements(unmarshalerType)
	}
	if p.marshaler != p.unmarshaler {
		delete(building, t)
		return nil, errors.New(errors.PhaseCompile, errors.KindUnsupported).
			GoType(t.String()).
			Detail("type must implement both Marshaler and Unmarshaler").
			Build()
	}
	if p.marshaler {
		p.Kind = codec.KindNewtypeStruct
		return p, nil
	}

	var err error
	switch t.Kind() {
	case reflect.Bool:
		p.Kind = codec.KindBool
	case reflect.Int8:
		p.Kind = codec.KindI8
	case reflect.Int16:
		p.Kind = codec.KindI16
	case reflect.Int32:
		p.Kind = codec.KindI32
	case reflect.Int64, reflect.Int:
		p.Kind = codec.KindI64
	case reflect.Uint8:
		p.Kind = codec.KindU8
	case reflect.Uint16:
		p.Kind = codec.KindU16
	case reflect.Uint32:
		p.Kind = codec.KindU32
	case reflect.Uint64, reflect.Uint, reflect.Uintptr:
		p.Kind = codec.KindU64
	case reflect.Float32:
		p.Kind = codec.KindF32
	case reflect.Float64:
		p.Kind = codec.KindF64
	case reflect.String:
		p.Kind = codec.KindString
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			p.Kind = codec.KindBytes
			break
		}
		p.Kind = codec.KindSeq
		p.Elem, err = c.compile(t.Elem(), building, false)
	case reflect.Array:
		p.Kind = codec.KindTuple
		p.Len = t.Len()
		p.Elem, err = c.compile(t.Elem(), building, false)
	case reflect.Pointer:
		p.Kind = codec.KindOption
		p.Elem, err = c.compile(t.Elem(), building, false)
	case reflect.Map:
		p.Kind = codec.KindMap
		if p.Key, err = c.compile(t.Key(), building, false); err == nil {
			p.Elem, err = c.compile(t.Elem(), building, false)
		}
	case reflect.Struct:
		err = c.compileStruct(p, t, building)
	default:
		err = errors.New(errors.PhaseCompile, errors.KindUnsupported).
			GoType(t.String()).
			Detail("unsupported Go kind: %s", t.Kind()).
			Build()
	}
	if err != nil {
		delete(building, t)
		return nil, err
	}
	return p, nil
}

func (c *Compiler) compileStruct(p *Plan, t reflect.Type, building map[reflect.Type]*Plan) error {
	if t.NumField() == 0 {
		p.Kind = codec.KindUnit
		return nil
	}
	if isUnion(t) {
		p.Kind = codec.KindEnum
		return c.compileUnion(p, t, building)
	}

	p.Kind = codec.KindStruct
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		name, opts := parseTag(sf.Tag.Get("wire"))
		if name == "-" && opts == "" {
			continue
		}
		if name == "" {
			name = sf.Name
		}
		fp, err := c.compile(sf.Type, building, hasOption(opts, "char"))
		if err != nil {
			return prefix(err, sf.Name)
		}
		p.Fields = append(p.Fields, Field{Plan: fp, Name: name, Index: i})
		p.names = append(p.names, name)
	}
	return nil
}

func (c *Compiler) compileUnion(p *Plan, t reflect.Type, building map[reflect.Type]*Plan) error {
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.Anonymous && sf.Type == unionType {
			continue
		}
		if !sf.IsExported() || sf.Tag.Get("wire") == "-" {
			continue
		}
		if sf.Type.Kind() != reflect.Pointer {
			return errors.TypeMismatch(errors.PhaseCompile, []string{sf.Name}, sf.Type.String(), "pointer union case")
		}
		name, _ := parseTag(sf.Tag.Get("wire"))
		if name == "" {
			name = sf.Name
		}

		payload := sf.Type.Elem()
		cp, err := c.compile(payload, building, false)
		if err != nil {
			return prefix(err, sf.Name)
		}
		form := codec.KindNewtypeVariant
		switch {
		case cp.marshaler || cp.unmarshaler:
		case payload.Kind() == reflect.Struct && payload.NumField() == 0:
			form = codec.KindUnitVariant
		case cp.Kind == codec.KindStruct:
			form = codec.KindStructVariant
		case cp.Kind == codec.KindTuple:
			form = codec.KindTupleVariant
		}
		p.Cases = append(p.Cases, Case{Plan: cp, Name: name, Index: i, Form: form})
	}
	if len(p.Cases) == 0 {
		return errors.InvalidData(errors.PhaseCompile, nil, "union has no cases")
	}
	return nil
}

func isUnion(t reflect.Type) bool {
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.Anonymous && sf.Type == unionType {
			return true
		}
	}
	return false
}

func parseTag(tag string) (string, string) {
	name, opts, _ := strings.Cut(tag, ",")
	return name, opts
}

func hasOption(opts, want string) bool {
	for opts != "" {
		var o string
		o, opts, _ = strings.Cut(opts, ",")
		if o == want {
			return true
		}
	}
	return false
}

// prefix adds a path segment to structural errors as they unwind. Custom
// errors are left untouched.
func prefix(err error, seg string) error {
	e, ok := err.(*errors.Error)
	if !ok || e.Kind == errors.KindCustom {
		return err
	}
	e.Path = append([]string{seg}, e.Path...)
	return e
}
