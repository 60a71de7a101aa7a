package wirecodec

import (
	"io"

	"github.com/tetratelabs/wazero/api"
	"github.com/wippyai/wirecodec/codec"
	"github.com/wippyai/wirecodec/errors"
	"github.com/wippyai/wirecodec/model"
	"github.com/wippyai/wirecodec/transport"
)

// Marshal encodes v with the default options.
func Marshal(v any) ([]byte, error) {
	return MarshalWithOptions(v, codec.DefaultOptions())
}

// MarshalWithOptions encodes v into a new byte slice.
func MarshalWithOptions(v any, opts codec.Options) ([]byte, error) {
	w := transport.NewBufferWriter(64)
	if err := model.Marshal(codec.NewEncoder(w, opts), v); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// Unmarshal decodes data into the value pointed to by ptr with the default
// options. Bytes left over after the value are an error.
func Unmarshal(data []byte, ptr any) error {
	return UnmarshalWithOptions(data, ptr, codec.DefaultOptions())
}

// UnmarshalWithOptions decodes data into the value pointed to by ptr.
// Strings and byte slices in the result never alias data.
func UnmarshalWithOptions(data []byte, ptr any, opts codec.Options) error {
	r := transport.NewSliceReader(data)
	if err := model.Unmarshal(codec.NewDecoder(r, opts), ptr); err != nil {
		return err
	}
	return trailing(r)
}

// MarshalTo encodes v to w with the default options.
func MarshalTo(w io.Writer, v any) error {
	return MarshalToWithOptions(w, v, codec.DefaultOptions())
}

// MarshalToWithOptions encodes v to w. Bytes are written as they are
// produced.
func MarshalToWithOptions(w io.Writer, v any, opts codec.Options) error {
	return model.Marshal(codec.NewEncoder(transport.NewIOWriter(w), opts), v)
}

// UnmarshalFrom decodes one value from r with the default options.
func UnmarshalFrom(r io.Reader, ptr any) error {
	return UnmarshalFromWithOptions(r, ptr, codec.DefaultOptions())
}

// UnmarshalFromWithOptions decodes one value from r. Input after the value is
// left unread in the buffered reader when r is a *bufio.Reader.
func UnmarshalFromWithOptions(r io.Reader, ptr any, opts codec.Options) error {
	return model.Unmarshal(codec.NewDecoder(transport.NewStreamReader(r), opts), ptr)
}

// MarshalToMemory encodes v into the region [offset, offset+length) of a
// wasm linear memory and returns the number of bytes written.
func MarshalToMemory(mem api.Memory, offset, length uint32, v any, opts codec.Options) (uint32, error) {
	w, err := transport.NewMemoryWriter(mem, offset, length)
	if err != nil {
		return 0, err
	}
	if err := model.Marshal(codec.NewEncoder(w, opts), v); err != nil {
		return 0, err
	}
	return uint32(w.Len()), nil
}

// UnmarshalFromMemory decodes a value from the region [offset, offset+length)
// of a wasm linear memory. The whole region must be consumed.
func UnmarshalFromMemory(mem api.Memory, offset, length uint32, ptr any, opts codec.Options) error {
	r, err := transport.NewMemoryReader(mem, offset, length)
	if err != nil {
		return err
	}
	if err := model.Unmarshal(codec.NewDecoder(r, opts), ptr); err != nil {
		return err
	}
	return trailing(r)
}

func trailing(r interface{ Len() int }) error {
	if n := r.Len(); n > 0 {
		return errors.New(errors.PhaseDecode, errors.KindInvalidData).
			Value(n).
			Detail("%d trailing bytes after value", n).
			Build()
	}
	return nil
}
