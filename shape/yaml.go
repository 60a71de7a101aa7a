package shape

import (
	"fmt"
	"io"

	"github.com/wippyai/wirecodec/errors"
	"go.bytecodealliance.org/wit"
	"gopkg.in/yaml.v3"
)

// ParseYAML reads a shape document.
func ParseYAML(r io.Reader) (*Set, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return NewSet(), nil
		}
		return nil, errors.ParseFailed("shape document", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return NewSet(), nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, nodeErr(root, "document must be a mapping with a types key")
	}

	var types *yaml.Node
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value == "types" {
			types = root.Content[i+1]
		}
	}
	if types == nil {
		return nil, nodeErr(root, "missing types key")
	}
	if types.Kind != yaml.MappingNode {
		return nil, nodeErr(types, "types must be a mapping")
	}

	// Every name gets a definition up front so references may point forward.
	s := NewSet()
	defs := make([]*wit.TypeDef, 0, len(types.Content)/2)
	for i := 0; i+1 < len(types.Content); i += 2 {
		name := types.Content[i].Value
		if _, dup := s.types[name]; dup {
			return nil, nodeErr(types.Content[i], fmt.Sprintf("type %q defined twice", name))
		}
		td := &wit.TypeDef{Name: &name}
		defs = append(defs, td)
		s.add(name, td)
	}

	for i, td := range defs {
		kind, err := parseKind(types.Content[2*i+1], s.types)
		if err != nil {
			return nil, prefixParse(err, *td.Name)
		}
		td.Kind = kind
	}

	for _, td := range defs {
		if err := checkAlias(td); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func parseKind(n *yaml.Node, names map[string]wit.Type) (wit.TypeDefKind, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		return parseExpr(n.Value, names)
	case yaml.MappingNode:
	default:
		return nil, nodeErr(n, "type must be an expression or a mapping")
	}
	if len(n.Content) != 2 {
		return nil, nodeErr(n, "type mapping must have exactly one key")
	}

	key, body := n.Content[0].Value, n.Content[1]
	switch key {
	case "record":
		fields, err := pairs(body, names, false)
		if err != nil {
			return nil, err
		}
		r := &wit.Record{}
		for _, f := range fields {
			r.Fields = append(r.Fields, wit.Field{Name: f.name, Type: f.typ})
		}
		return r, nil

	case "variant":
		cases, err := pairs(body, names, true)
		if err != nil {
			return nil, err
		}
		v := &wit.Variant{}
		for _, c := range cases {
			v.Cases = append(v.Cases, wit.Case{Name: c.name, Type: c.typ})
		}
		return v, nil

	case "enum":
		ids, err := idents(body)
		if err != nil {
			return nil, err
		}
		e := &wit.Enum{}
		for _, id := range ids {
			e.Cases = append(e.Cases, wit.EnumCase{Name: id})
		}
		return e, nil

	case "flags":
		ids, err := idents(body)
		if err != nil {
			return nil, err
		}
		f := &wit.Flags{}
		for _, id := range ids {
			f.Flags = append(f.Flags, wit.Flag{Name: id})
		}
		return f, nil

	case "tuple":
		if body.Kind != yaml.SequenceNode {
			return nil, nodeErr(body, "tuple must be a sequence of types")
		}
		tup := &wit.Tuple{}
		for _, item := range body.Content {
			t, err := parseExpr(item.Value, names)
			if err != nil {
				return nil, err
			}
			tup.Types = append(tup.Types, t)
		}
		return tup, nil
	}
	return nil, nodeErr(n.Content[0], fmt.Sprintf("unknown type kind %q", key))
}

type namedType struct {
	name string
	typ  wit.Type
}

func pairs(n *yaml.Node, names map[string]wit.Type, optional bool) ([]namedType, error) {
	if n.Kind != yaml.MappingNode {
		return nil, nodeErr(n, "expected a mapping of names to types")
	}
	out := make([]namedType, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		name, val := n.Content[i].Value, n.Content[i+1]
		var t wit.Type
		if !(optional && (val.Tag == "!!null" || val.Value == "_")) {
			var err error
			if t, err = parseExpr(val.Value, names); err != nil {
				return nil, prefixParse(err, name)
			}
		}
		out = append(out, namedType{name: name, typ: t})
	}
	return out, nil
}

func idents(n *yaml.Node) ([]string, error) {
	if n.Kind != yaml.SequenceNode {
		return nil, nodeErr(n, "expected a sequence of names")
	}
	out := make([]string, len(n.Content))
	for i, item := range n.Content {
		out[i] = item.Value
	}
	return out, nil
}

func checkAlias(td *wit.TypeDef) error {
	seen := map[*wit.TypeDef]bool{td: true}
	cur := td
	for {
		next, ok := cur.Kind.(*wit.TypeDef)
		if !ok {
			return nil
		}
		if seen[next] {
			return errors.New(errors.PhaseParse, errors.KindInvalidData).
				Path(*td.Name).
				Detail("alias cycle through %s", TypeString(next)).
				Build()
		}
		seen[next] = true
		cur = next
	}
}

func nodeErr(n *yaml.Node, msg string) error {
	return errors.New(errors.PhaseParse, errors.KindInvalidData).
		Detail("line %d: %s", n.Line, msg).
		Build()
}

func prefixParse(err error, seg string) error {
	if e, ok := err.(*errors.Error); ok {
		e.Path = append([]string{seg}, e.Path...)
	}
	return err
}
