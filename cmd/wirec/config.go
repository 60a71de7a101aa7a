package main

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/wippyai/wirecodec/codec"
	"github.com/wippyai/wirecodec/delegate"
)

// config holds the settings shared by all subcommands.
type config struct {
	Order     string
	Dialect   string
	Shape     string
	MaxLength uint64
	HexWidth  int
}

// wirec config.toml key mapping.
type fileConfig struct {
	Order     string `toml:"order"`
	Dialect   string `toml:"dialect"`
	Shape     string `toml:"shape"`
	MaxLength uint64 `toml:"max_length"`
	HexWidth  int    `toml:"hex_width"`
}

func defaultConfig() config {
	return config{
		Order:     "little",
		Dialect:   "fixed",
		MaxLength: codec.DefaultMaxLength,
		HexWidth:  16,
	}
}

// loadConfig overlays the keys present in the TOML file at path on the
// defaults.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return config{}, fmt.Errorf("load config: %w", err)
	}

	if meta.IsDefined("order") {
		cfg.Order = strings.TrimSpace(raw.Order)
	}
	if meta.IsDefined("dialect") {
		cfg.Dialect = strings.TrimSpace(raw.Dialect)
	}
	if meta.IsDefined("shape") {
		cfg.Shape = strings.TrimSpace(raw.Shape)
	}
	if meta.IsDefined("max_length") {
		cfg.MaxLength = raw.MaxLength
	}
	if meta.IsDefined("hex_width") {
		cfg.HexWidth = raw.HexWidth
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return config{}, fmt.Errorf("load config: unknown key %q", undecoded[0].String())
	}
	if cfg.HexWidth <= 0 {
		return config{}, fmt.Errorf("load config: hex_width must be positive, got %d", cfg.HexWidth)
	}
	return cfg, nil
}

// options converts the settings to codec options.
func (c config) options() (codec.Options, error) {
	opts := codec.DefaultOptions()

	switch strings.ToLower(c.Order) {
	case "", "little", "le":
		opts.Order = binary.LittleEndian
	case "big", "be":
		opts.Order = binary.BigEndian
	default:
		return codec.Options{}, fmt.Errorf("unknown byte order %q (expected little or big)", c.Order)
	}

	del, ok := delegate.ByName(c.Dialect)
	if !ok {
		return codec.Options{}, fmt.Errorf("unknown dialect %q (expected one of %s)",
			c.Dialect, strings.Join(delegate.Names(), ", "))
	}
	opts.Delegate = del
	opts.MaxLength = c.MaxLength
	return opts, nil
}
