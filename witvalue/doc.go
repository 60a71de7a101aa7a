// Package witvalue encodes and decodes dynamic Go values whose shape is given
// by a WIT type rather than a Go type.
//
// It is the value model used by tooling that only learns the shape at run
// time, such as the wirec CLI reading JSON documents. Values use the same
// representation as JSON decoding into any:
//
//	WIT type            Go value on encode                  Go value on decode
//	bool                bool                                bool
//	u8 .. u64, s8 .. s64  any integer, integral float, json.Number  uint8 .. int64
//	f32, f64            any number, json.Number             float32, float64
//	char                rune or one-character string        rune
//	string              string                              string
//	record              map[string]any                      map[string]any
//	list<u8>            []byte or any slice of numbers      []byte
//	list<T>             any slice or array                  []any
//	tuple<...>          any slice or array                  []any
//	option<T>           nil, a pointer, Some, or the value  nil or the value
//	option<option<T>>   as above                            nil or Some
//	result<T, E>        map[string]any{"ok": v} or {"err": v}  same
//	variant             map[string]any{case: payload}       same
//	enum                case name or index                  uint32 index
//	flags               bit set, map[string]bool, or names  uint64 bit set
//
// On the wire a record is a struct, list<u8> is a byte string, other lists
// are sequences, tuples are tuples, and result, variant and enum are enum
// variants whose index is the case position. Cases without a payload are
// unit variants, cases with one are newtype variants. Flags are written as a
// u32 when there are at most 32 of them and as a u64 otherwise.
//
// An option whose payload is another option decodes its present case as
// Some, so option<option<u8>> distinguishes nil (none), Some{nil} (some
// none) and Some{uint8(0)}.
//
// Errors carry the path to the offending value in errors.Error.Path:
//
//	err := witvalue.Encode(enc, t, map[string]any{"points": []any{nil}})
//	// [encode] type_mismatch at points.[0]: Go type nil, shape point
package witvalue
