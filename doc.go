// Package wirecodec is a binary serialization framework that keeps the data
// model separate from the wire format.
//
// Values describe themselves to an Encoder, and a Decoder drives a value
// model that pulls typed primitives and container cursors back out. The byte
// layout of tokens such as lengths, variant indices, and characters is owned
// by a pluggable delegate, so one value model can target several wire
// dialects.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	wirecodec/       Convenience API over byte slices, io streams, and wasm memory
//	├── codec/       Encoder, Decoder, container encoders and cursors
//	├── delegate/    Wire token dialects: fixed, leb128, compact, streaming
//	├── transport/   Byte sources and sinks
//	├── model/       Reflection value model for Go structs, slices, maps, unions
//	├── witvalue/    Dynamic value model driven by WIT types
//	├── shape/       WIT type sets loaded from YAML or WIT JSON
//	├── errors/      Structured error types
//	└── cmd/wirec/   Command line encoder, decoder, and explorer
//
// # Quick Start
//
//	type Point3d struct{ X, Y, Z uint32 }
//
//	data, err := wirecodec.Marshal(Point3d{X: 17, Y: 7})
//	// data = [17 0 0 0 7 0 0 0 0 0 0 0]
//
//	var p Point3d
//	err = wirecodec.Unmarshal(data, &p)
//
// Options select the byte order and the dialect:
//
//	opts := codec.DefaultOptions()
//	opts.Order = binary.BigEndian
//	opts.Delegate = delegate.LEB128{}
//	data, err := wirecodec.MarshalWithOptions(v, opts)
//
// # Driving the codec directly
//
// Hand-written value models talk to the codec without reflection:
//
//	enc := codec.NewEncoderWithDefaults(transport.NewBufferWriter(64))
//	seq, _ := enc.EncodeSeq(len(xs), true)
//	for _, x := range xs {
//	    seq.Element(func(e *codec.Encoder) error { return e.EncodeU16(x) })
//	}
//	err := seq.End()
//
// # Error Handling
//
// Every failure is an *errors.Error carrying a phase, a kind, and for the
// value models the path to the offending field:
//
//	var e *errors.Error
//	if stderrors.As(err, &e) {
//	    fmt.Println(e.Kind, strings.Join(e.Path, "."))
//	}
package wirecodec
