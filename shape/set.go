package shape

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/wippyai/wirecodec/errors"
	"go.bytecodealliance.org/wit"
)

// Set is a collection of named types.
type Set struct {
	types map[string]wit.Type
	order []string
}

// NewSet returns an empty set.
func NewSet() *Set {
	return &Set{types: make(map[string]wit.Type)}
}

// Load reads a shape file. Files ending in .json are WIT JSON resolves,
// everything else is parsed as YAML.
func Load(path string) (*Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.ParseFailed(path, err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".json") {
		return ParseWITJSON(f)
	}
	return ParseYAML(f)
}

// ParseWITJSON reads the named type definitions of a WIT JSON resolve. When
// several interfaces define the same name the first definition wins.
func ParseWITJSON(r io.Reader) (*Set, error) {
	res, err := wit.DecodeJSON(r)
	if err != nil {
		return nil, errors.ParseFailed("WIT JSON", err)
	}
	s := NewSet()
	for _, td := range res.TypeDefs {
		if td == nil || td.Name == nil {
			continue
		}
		if _, dup := s.types[*td.Name]; dup {
			continue
		}
		s.add(*td.Name, td)
	}
	return s, nil
}

// Lookup returns the type registered under name.
func (s *Set) Lookup(name string) (wit.Type, bool) {
	t, ok := s.types[name]
	return t, ok
}

// Resolve returns the named type, or parses expr as a type expression whose
// references are looked up in s.
func (s *Set) Resolve(expr string) (wit.Type, error) {
	if t, ok := s.types[expr]; ok {
		return t, nil
	}
	return parseExpr(expr, s.types)
}

// Names returns type names in definition order.
func (s *Set) Names() []string {
	return append([]string(nil), s.order...)
}

// Len returns the number of named types.
func (s *Set) Len() int {
	return len(s.order)
}

func (s *Set) add(name string, t wit.Type) {
	s.types[name] = t
	s.order = append(s.order, name)
}

// TypeString renders t as a type expression. Named definitions render as
// their name.
func TypeString(t wit.Type) string {
	switch v := t.(type) {
	case nil:
		return "_"
	case wit.Bool:
		return "bool"
	case wit.U8:
		return "u8"
	case wit.S8:
		return "s8"
	case wit.U16:
		return "u16"
	case wit.S16:
		return "s16"
	case wit.U32:
		return "u32"
	case wit.S32:
		return "s32"
	case wit.U64:
		return "u64"
	case wit.S64:
		return "s64"
	case wit.F32:
		return "f32"
	case wit.F64:
		return "f64"
	case wit.Char:
		return "char"
	case wit.String:
		return "string"
	case *wit.TypeDef:
		if v.Name != nil {
			return *v.Name
		}
		return KindString(v)
	default:
		return fmt.Sprintf("%T", t)
	}
}

// KindString renders the structure of a definition, ignoring its name.
func KindString(td *wit.TypeDef) string {
	switch k := td.Kind.(type) {
	case *wit.Record:
		parts := make([]string, len(k.Fields))
		for i, f := range k.Fields {
			parts[i] = f.Name + ": " + TypeString(f.Type)
		}
		return "record { " + strings.Join(parts, ", ") + " }"
	case *wit.Variant:
		parts := make([]string, len(k.Cases))
		for i, c := range k.Cases {
			parts[i] = c.Name
			if c.Type != nil {
				parts[i] += "(" + TypeString(c.Type) + ")"
			}
		}
		return "variant { " + strings.Join(parts, ", ") + " }"
	case *wit.Enum:
		parts := make([]string, len(k.Cases))
		for i, c := range k.Cases {
			parts[i] = c.Name
		}
		return "enum { " + strings.Join(parts, ", ") + " }"
	case *wit.Flags:
		parts := make([]string, len(k.Flags))
		for i, f := range k.Flags {
			parts[i] = f.Name
		}
		return "flags { " + strings.Join(parts, ", ") + " }"
	case *wit.List:
		return "list<" + TypeString(k.Type) + ">"
	case *wit.Option:
		return "option<" + TypeString(k.Type) + ">"
	case *wit.Result:
		if k.OK == nil && k.Err == nil {
			return "result"
		}
		return "result<" + TypeString(k.OK) + ", " + TypeString(k.Err) + ">"
	case *wit.Tuple:
		parts := make([]string, len(k.Types))
		for i, e := range k.Types {
			parts[i] = TypeString(e)
		}
		return "tuple<" + strings.Join(parts, ", ") + ">"
	case wit.Type:
		return TypeString(k)
	default:
		return fmt.Sprintf("%T", td.Kind)
	}
}
