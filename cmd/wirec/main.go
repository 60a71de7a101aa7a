package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	json "github.com/goccy/go-json"
	"github.com/wippyai/wirecodec/codec"
	"github.com/wippyai/wirecodec/errors"
	"github.com/wippyai/wirecodec/shape"
	"github.com/wippyai/wirecodec/transport"
	"github.com/wippyai/wirecodec/witvalue"
	"go.bytecodealliance.org/wit"
	"go.uber.org/zap"
	"golang.org/x/term"
)

var (
	nameStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#98FB98"))

	kindStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))
)

func main() {
	var (
		shapeFile   = flag.String("shape", "", "Shape file (YAML, or WIT JSON with a .json extension)")
		typeName    = flag.String("type", "", "Type name or type expression to encode or decode")
		configFile  = flag.String("config", "", "TOML config file")
		order       = flag.String("order", "", "Byte order: little or big")
		dialect     = flag.String("dialect", "", "Wire dialect: fixed, leb128, compact, or streaming")
		hexOut      = flag.Bool("hex", false, "Write encoded output as a hex dump")
		verbose     = flag.Bool("v", false, "Log codec events to stderr")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	cfg := defaultConfig()
	if *configFile != "" {
		var err error
		if cfg, err = loadConfig(*configFile); err != nil {
			fail(err)
		}
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "shape":
			cfg.Shape = *shapeFile
		case "order":
			cfg.Order = *order
		case "dialect":
			cfg.Dialect = *dialect
		}
	})

	opts, err := cfg.options()
	if err != nil {
		fail(err)
	}

	logger := zap.NewNop()
	if *verbose {
		if logger, err = zap.NewDevelopment(); err != nil {
			fail(err)
		}
	}
	defer logger.Sync()
	codec.SetLogger(logger)
	opts.Logger = logger

	set := shape.NewSet()
	if cfg.Shape != "" {
		if set, err = shape.Load(cfg.Shape); err != nil {
			fail(err)
		}
	}

	if *interactive {
		if err := runInteractive(set, cfg, opts); err != nil {
			fail(err)
		}
		return
	}

	args := flag.Args()
	if len(args) == 0 {
		usage()
	}

	switch args[0] {
	case "types":
		err = listTypes(os.Stdout, set)
	case "encode", "decode":
		if *typeName == "" {
			usage()
		}
		var t wit.Type
		if t, err = set.Resolve(*typeName); err != nil {
			break
		}
		in, closeIn, openErr := input(args[1:])
		if openErr != nil {
			fail(openErr)
		}
		defer closeIn()
		if args[0] == "encode" {
			hex := *hexOut || term.IsTerminal(int(os.Stdout.Fd()))
			err = encodeCmd(in, os.Stdout, t, opts, hex, cfg.HexWidth)
		} else {
			err = decodeCmd(in, os.Stdout, t, opts)
		}
	default:
		usage()
	}

	if err != nil {
		logger.Debug("command failed", zap.String("command", args[0]), zap.Error(err))
		fail(err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: wirec [-shape file] -type name encode [file.json]")
	fmt.Fprintln(os.Stderr, "       wirec [-shape file] -type name decode [file.bin]")
	fmt.Fprintln(os.Stderr, "       wirec -shape file types")
	fmt.Fprintln(os.Stderr, "       wirec -shape file -i  (interactive mode)")
	fmt.Fprintln(os.Stderr, "")
	flag.PrintDefaults()
	os.Exit(1)
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

// input opens the named file, or stdin when no name is given.
func input(args []string) (io.Reader, func(), error) {
	if len(args) == 0 || args[0] == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}

// encodeCmd reads one JSON document from r and writes its encoding as t.
func encodeCmd(r io.Reader, w io.Writer, t wit.Type, opts codec.Options, hex bool, width int) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	v, err := parseJSON(data)
	if err != nil {
		return errors.ParseFailed("JSON input", err)
	}
	out, err := encodeValue(t, v, opts)
	if err != nil {
		return err
	}
	if hex {
		_, err = io.WriteString(w, hexDump(out, width))
		return err
	}
	_, err = w.Write(out)
	return err
}

// decodeCmd decodes one value of type t from r and writes it as JSON.
func decodeCmd(r io.Reader, w io.Writer, t wit.Type, opts codec.Options) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	v, err := decodeValue(t, data, opts)
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(display(t, v), "", "  ")
	if err != nil {
		return err
	}
	out = append(out, '\n')
	_, err = w.Write(out)
	return err
}

func encodeValue(t wit.Type, v any, opts codec.Options) ([]byte, error) {
	buf := transport.NewBufferWriter(64)
	if err := witvalue.Encode(codec.NewEncoder(buf, opts), t, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeValue(t wit.Type, data []byte, opts codec.Options) (any, error) {
	r := transport.NewSliceReader(data)
	v, err := witvalue.Decode(codec.NewDecoder(r, opts), t)
	if err != nil {
		return nil, err
	}
	if r.Len() > 0 {
		return nil, errors.New(errors.PhaseDecode, errors.KindInvalidData).
			Value(r.Len()).
			Detail("%d trailing bytes after value", r.Len()).
			Build()
	}
	return v, nil
}

func listTypes(w io.Writer, set *shape.Set) error {
	if set.Len() == 0 {
		_, err := fmt.Fprintln(w, "no types loaded (use -shape)")
		return err
	}
	var b strings.Builder
	for _, name := range set.Names() {
		t, _ := set.Lookup(name)
		desc := shape.TypeString(t)
		if td, ok := t.(*wit.TypeDef); ok {
			desc = shape.KindString(td)
		}
		b.WriteString(nameStyle.Render(name))
		b.WriteString(" = ")
		b.WriteString(kindStyle.Render(desc))
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}
