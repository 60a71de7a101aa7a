package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	json "github.com/goccy/go-json"
	"github.com/wippyai/wirecodec/codec"
	"github.com/wippyai/wirecodec/shape"
	"go.bytecodealliance.org/wit"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type interactiveModel struct {
	err      error
	opts     codec.Options
	types    []typeInfo
	inputs   []textinput.Model
	hex      string
	decoded  string
	title    string
	width    int
	selected int
	focusIdx int
	state    modelState
}

type typeInfo struct {
	name   string
	typ    wit.Type
	desc   string
	fields []fieldInfo
}

// fieldInfo is one form input. Records get one per field, every other type
// a single input for the whole value.
type fieldInfo struct {
	name    string
	witType wit.Type
	typeStr string
}

type modelState int

const (
	stateSelectType modelState = iota
	stateInputFields
	stateShowResult
)

func newInteractiveModel(set *shape.Set, cfg config, opts codec.Options) *interactiveModel {
	m := &interactiveModel{
		opts:  opts,
		title: cfg.Dialect + "/" + cfg.Order,
		width: cfg.HexWidth,
		state: stateSelectType,
	}
	for _, name := range set.Names() {
		t, _ := set.Lookup(name)
		m.types = append(m.types, describe(name, t))
	}
	return m
}

func describe(name string, t wit.Type) typeInfo {
	ti := typeInfo{name: name, typ: t, desc: shape.TypeString(t)}
	td, _ := t.(*wit.TypeDef)
	if td != nil {
		ti.desc = shape.KindString(td)
	}
	if rec, ok := recordOf(t); ok {
		for _, f := range rec.Fields {
			ti.fields = append(ti.fields, fieldInfo{
				name:    f.Name,
				witType: f.Type,
				typeStr: shape.TypeString(f.Type),
			})
		}
		return ti
	}
	ti.fields = []fieldInfo{{name: "value", witType: t, typeStr: ti.desc}}
	return ti
}

func recordOf(t wit.Type) (*wit.Record, bool) {
	for {
		td, ok := t.(*wit.TypeDef)
		if !ok {
			return nil, false
		}
		switch k := td.Kind.(type) {
		case *wit.Record:
			return k, true
		case wit.Type:
			t = k
		default:
			return nil, false
		}
	}
}

type encodedMsg struct {
	err     error
	hex     string
	decoded string
}

func (m *interactiveModel) Init() tea.Cmd {
	return nil
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "q":
			if m.state != stateInputFields {
				return m, tea.Quit
			}

		case "up", "k":
			if m.state == stateSelectType && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectType && m.selected < len(m.types)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateSelectType:
				if len(m.types) == 0 {
					return m, nil
				}
				m.prepareInputs()
				m.state = stateInputFields
				return m, nil

			case stateInputFields:
				return m, m.encode

			case stateShowResult:
				m.reset()
			}

		case "tab", "shift+tab":
			if m.state == stateInputFields && len(m.inputs) > 1 {
				m.inputs[m.focusIdx].Blur()
				step := 1
				if msg.String() == "shift+tab" {
					step = len(m.inputs) - 1
				}
				m.focusIdx = (m.focusIdx + step) % len(m.inputs)
				m.inputs[m.focusIdx].Focus()
			}

		case "esc":
			switch m.state {
			case stateInputFields:
				m.state = stateSelectType
				m.inputs = nil
			case stateShowResult:
				m.reset()
			}
		}

	case encodedMsg:
		m.hex = msg.hex
		m.decoded = msg.decoded
		m.err = msg.err
		m.state = stateShowResult
	}

	if m.state == stateInputFields {
		var cmd tea.Cmd
		m.inputs[m.focusIdx], cmd = m.inputs[m.focusIdx].Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *interactiveModel) reset() {
	m.state = stateSelectType
	m.hex = ""
	m.decoded = ""
	m.err = nil
}

func (m *interactiveModel) prepareInputs() {
	ti := m.types[m.selected]
	m.inputs = make([]textinput.Model, len(ti.fields))
	for i, f := range ti.fields {
		in := textinput.New()
		in.Placeholder = f.typeStr
		in.Prompt = f.name + ": "
		in.Width = 40
		if i == 0 {
			in.Focus()
		}
		m.inputs[i] = in
	}
	m.focusIdx = 0
}

// value assembles the form inputs into a witvalue value.
func (m *interactiveModel) value() (any, error) {
	ti := m.types[m.selected]
	values := make([]any, len(ti.fields))
	for i, f := range ti.fields {
		v, err := parseField(m.inputs[i].Value(), f.witType)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.name, err)
		}
		values[i] = v
	}
	if _, ok := recordOf(ti.typ); !ok {
		return values[0], nil
	}
	rec := make(map[string]any, len(values))
	for i, f := range ti.fields {
		if values[i] != nil {
			rec[f.name] = values[i]
		}
	}
	return rec, nil
}

func (m *interactiveModel) encode() tea.Msg {
	ti := m.types[m.selected]
	v, err := m.value()
	if err != nil {
		return encodedMsg{err: err}
	}
	data, err := encodeValue(ti.typ, v, m.opts)
	if err != nil {
		return encodedMsg{err: err}
	}
	back, err := decodeValue(ti.typ, data, m.opts)
	if err != nil {
		return encodedMsg{hex: hexDump(data, m.width), err: err}
	}
	out, err := json.MarshalIndent(display(ti.typ, back), "", "  ")
	if err != nil {
		return encodedMsg{hex: hexDump(data, m.width), err: err}
	}
	return encodedMsg{hex: hexDump(data, m.width), decoded: string(out)}
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Wire Codec"))
	b.WriteString(" ")
	b.WriteString(m.title)
	b.WriteString("\n\n")

	if len(m.types) == 0 {
		b.WriteString(errorStyle.Render("No types loaded. Pass a shape file with -shape."))
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("q quit"))
		return b.String()
	}

	switch m.state {
	case stateSelectType:
		b.WriteString("Select a type to encode:\n\n")
		for i, ti := range m.types {
			line := ti.name + " = " + typeStyle.Render(ti.desc)
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + ti.name))
				b.WriteString(" = " + typeStyle.Render(ti.desc))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter edit • q quit"))

	case stateInputFields:
		ti := m.types[m.selected]
		b.WriteString(fmt.Sprintf("Encoding %s\n\n", resultStyle.Render(ti.name)))
		for i, in := range m.inputs {
			b.WriteString(in.View())
			b.WriteString(" ")
			b.WriteString(typeStyle.Render(ti.fields[i].typeStr))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("JSON values, strings as typed • tab next field • enter encode • esc back"))

	case stateShowResult:
		ti := m.types[m.selected]
		b.WriteString(fmt.Sprintf("Encoded %s:\n\n", resultStyle.Render(ti.name)))
		if m.hex != "" {
			b.WriteString(m.hex)
			b.WriteString("\n")
		}
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString("Decoded:\n")
			b.WriteString(resultStyle.Render(m.decoded))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter continue • q quit"))
	}

	return b.String()
}

func runInteractive(set *shape.Set, cfg config, opts codec.Options) error {
	p := tea.NewProgram(newInteractiveModel(set, cfg, opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
