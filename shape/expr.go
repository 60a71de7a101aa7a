package shape

import (
	"fmt"
	"strings"

	"github.com/wippyai/wirecodec/errors"
	"go.bytecodealliance.org/wit"
)

var primitives = map[string]wit.Type{
	"bool":   wit.Bool{},
	"u8":     wit.U8{},
	"u16":    wit.U16{},
	"u32":    wit.U32{},
	"u64":    wit.U64{},
	"s8":     wit.S8{},
	"s16":    wit.S16{},
	"s32":    wit.S32{},
	"s64":    wit.S64{},
	"f32":    wit.F32{},
	"f64":    wit.F64{},
	"char":   wit.Char{},
	"string": wit.String{},
}

// ParseType parses a standalone type expression without named references.
func ParseType(expr string) (wit.Type, error) {
	return parseExpr(expr, nil)
}

func parseExpr(expr string, names map[string]wit.Type) (wit.Type, error) {
	p := &exprParser{src: expr, names: names}
	p.next()
	t, err := p.parseType(false)
	if err != nil {
		return nil, err
	}
	if p.tok != "" {
		return nil, p.errorf("unexpected %q after type", p.tok)
	}
	return t, nil
}

// exprParser is a recursive descent parser over a one-token lookahead.
type exprParser struct {
	names map[string]wit.Type
	src   string
	tok   string
	pos   int
}

func (p *exprParser) next() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
	if p.pos >= len(p.src) {
		p.tok = ""
		return
	}
	start := p.pos
	switch p.src[p.pos] {
	case '<', '>', ',':
		p.pos++
	default:
		for p.pos < len(p.src) && !strings.ContainsRune("<>, \t", rune(p.src[p.pos])) {
			p.pos++
		}
	}
	p.tok = p.src[start:p.pos]
}

func (p *exprParser) expect(tok string) error {
	if p.tok != tok {
		if p.tok == "" {
			return p.errorf("expected %q, got end of expression", tok)
		}
		return p.errorf("expected %q, got %q", tok, p.tok)
	}
	p.next()
	return nil
}

// parseType parses one type. With blank set, "_" is accepted and yields nil.
func (p *exprParser) parseType(blank bool) (wit.Type, error) {
	name := p.tok
	switch name {
	case "":
		return nil, p.errorf("expected a type, got end of expression")
	case "<", ">", ",":
		return nil, p.errorf("expected a type, got %q", name)
	case "_":
		if !blank {
			return nil, p.errorf("_ is only allowed inside result<...>")
		}
		p.next()
		return nil, nil
	}
	p.next()

	if t, ok := primitives[name]; ok {
		return t, nil
	}

	switch name {
	case "list", "option":
		args, err := p.parseArgs(1, 1, false)
		if err != nil {
			return nil, err
		}
		if name == "list" {
			return &wit.TypeDef{Kind: &wit.List{Type: args[0]}}, nil
		}
		return &wit.TypeDef{Kind: &wit.Option{Type: args[0]}}, nil
	case "result":
		if p.tok != "<" {
			return &wit.TypeDef{Kind: &wit.Result{}}, nil
		}
		args, err := p.parseArgs(1, 2, true)
		if err != nil {
			return nil, err
		}
		r := &wit.Result{OK: args[0]}
		if len(args) == 2 {
			r.Err = args[1]
		}
		return &wit.TypeDef{Kind: r}, nil
	case "tuple":
		args, err := p.parseArgs(1, -1, false)
		if err != nil {
			return nil, err
		}
		return &wit.TypeDef{Kind: &wit.Tuple{Types: args}}, nil
	}

	if t, ok := p.names[name]; ok {
		return t, nil
	}
	return nil, p.errorf("unknown type %q", name)
}

func (p *exprParser) parseArgs(lo, hi int, blank bool) ([]wit.Type, error) {
	if err := p.expect("<"); err != nil {
		return nil, err
	}
	var args []wit.Type
	for {
		t, err := p.parseType(blank)
		if err != nil {
			return nil, err
		}
		args = append(args, t)
		if p.tok != "," {
			break
		}
		p.next()
	}
	if err := p.expect(">"); err != nil {
		return nil, err
	}
	if len(args) < lo || (hi >= 0 && len(args) > hi) {
		return nil, p.errorf("wrong number of type arguments: %d", len(args))
	}
	return args, nil
}

func (p *exprParser) errorf(format string, args ...any) error {
	return errors.New(errors.PhaseParse, errors.KindInvalidData).
		Value(p.src).
		Detail("type expression %q: %s", p.src, fmt.Sprintf(format, args...)).
		Build()
}
