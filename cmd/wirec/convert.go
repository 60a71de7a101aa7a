package main

import (
	"bytes"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/wippyai/wirecodec/witvalue"
	"go.bytecodealliance.org/wit"
)

// display rewrites a decoded value into the form witvalue accepts on encode
// and JSON renders readably: chars become strings, byte lists become number
// arrays, enums become case names, and flags become name lists.
func display(t wit.Type, v any) any {
	switch tt := t.(type) {
	case wit.Char:
		if r, ok := v.(rune); ok {
			return string(r)
		}
	case *wit.TypeDef:
		return displayTypeDef(tt, v)
	}
	return v
}

func displayTypeDef(td *wit.TypeDef, v any) any {
	switch k := td.Kind.(type) {
	case *wit.Record:
		m, ok := v.(map[string]any)
		if !ok {
			return v
		}
		out := make(map[string]any, len(m))
		for _, f := range k.Fields {
			out[f.Name] = display(f.Type, m[f.Name])
		}
		return out
	case *wit.List:
		if b, ok := v.([]byte); ok {
			out := make([]int, len(b))
			for i, c := range b {
				out[i] = int(c)
			}
			return out
		}
		items, ok := v.([]any)
		if !ok {
			return v
		}
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = display(k.Type, item)
		}
		return out
	case *wit.Tuple:
		items, ok := v.([]any)
		if !ok {
			return v
		}
		out := make([]any, len(items))
		for i, item := range items {
			if i < len(k.Types) {
				out[i] = display(k.Types[i], item)
			}
		}
		return out
	case *wit.Option:
		// JSON has no form for a present inner none; it displays as null.
		if s, ok := v.(witvalue.Some); ok {
			v = s.Value
		}
		if v == nil {
			return nil
		}
		return display(k.Type, v)
	case *wit.Result:
		m, ok := v.(map[string]any)
		if !ok {
			return v
		}
		if val, ok := m["ok"]; ok {
			return map[string]any{"ok": display(k.OK, val)}
		}
		return map[string]any{"err": display(k.Err, m["err"])}
	case *wit.Variant:
		m, ok := v.(map[string]any)
		if !ok {
			return v
		}
		for _, c := range k.Cases {
			if val, ok := m[c.Name]; ok {
				if c.Type == nil {
					return c.Name
				}
				return map[string]any{c.Name: display(c.Type, val)}
			}
		}
		return v
	case *wit.Enum:
		if idx, ok := v.(uint32); ok && int(idx) < len(k.Cases) {
			return k.Cases[idx].Name
		}
	case *wit.Flags:
		bits, ok := v.(uint64)
		if !ok {
			return v
		}
		names := []string{}
		for i, f := range k.Flags {
			if bits&(1<<i) != 0 {
				names = append(names, f.Name)
			}
		}
		return names
	case wit.Type:
		return display(k, v)
	}
	return v
}

// parseJSON decodes one JSON document keeping numbers exact.
func parseJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("unexpected data after the JSON value")
	}
	return v, nil
}

// parseField reads a value typed into a form field. Strings and chars are
// taken literally, everything else is JSON.
func parseField(text string, t wit.Type) (any, error) {
	switch t.(type) {
	case wit.String, wit.Char:
		return text, nil
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	return parseJSON([]byte(text))
}

// hexDump renders data as offset, hex, and printable columns.
func hexDump(data []byte, width int) string {
	if width <= 0 {
		width = 16
	}
	var b strings.Builder
	for off := 0; off < len(data); off += width {
		line := data[off:min(off+width, len(data))]
		fmt.Fprintf(&b, "%08x ", off)
		for i := 0; i < width; i++ {
			if i < len(line) {
				fmt.Fprintf(&b, " %02x", line[i])
			} else {
				b.WriteString("   ")
			}
		}
		b.WriteString("  |")
		for _, c := range line {
			if c >= 0x20 && c < 0x7f {
				b.WriteByte(c)
			} else {
				b.WriteByte('.')
			}
		}
		b.WriteString("|\n")
	}
	return b.String()
}
