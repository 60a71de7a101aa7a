package codec

import (
	"encoding/binary"

	"github.com/wippyai/wirecodec/delegate"
	"github.com/wippyai/wirecodec/errors"
	"go.uber.org/zap"
)

// DefaultMaxLength bounds decoded lengths and element counts.
const DefaultMaxLength = 1 << 30

// Options configures an Encoder or Decoder. The zero value of each field
// selects its default.
type Options struct {
	// Order is the byte order of fixed-width integers and tokens.
	// Defaults to little-endian.
	Order binary.ByteOrder

	// Delegate produces and consumes wire tokens. Defaults to delegate.Default().
	Delegate delegate.Delegate

	// Collector builds the payload of custom errors. Defaults to errors.Capture.
	Collector errors.DisplayCollector

	// Logger receives debug events. Defaults to the package logger.
	Logger *zap.Logger

	// MaxLength rejects decoded lengths and counts above it. Zero means
	// DefaultMaxLength.
	MaxLength uint64

	// BorrowOnly makes DecodeStr fail instead of copying when the source
	// cannot lend its storage.
	BorrowOnly bool
}

// DefaultOptions returns little-endian options with the fixed-width delegate.
func DefaultOptions() Options {
	return Options{
		Order:     binary.LittleEndian,
		Delegate:  delegate.Default(),
		Collector: errors.Capture{},
		MaxLength: DefaultMaxLength,
	}
}

func (o Options) withDefaults() Options {
	if o.Order == nil {
		o.Order = binary.LittleEndian
	}
	if o.Delegate == nil {
		o.Delegate = delegate.Default()
	}
	if o.Collector == nil {
		o.Collector = errors.Capture{}
	}
	if o.Logger == nil {
		o.Logger = Logger()
	}
	if o.MaxLength == 0 {
		o.MaxLength = DefaultMaxLength
	}
	return o
}
