// Package model drives the codec from ordinary Go values using reflection.
//
// Go types map to codec shapes as follows:
//
//	Go type                     Shape
//	──────────────────────────────────────────────────
//	bool, int8..int64, uint8..  fixed-width scalar
//	int, uint                   i64, u64
//	float32, float64            f32, f64
//	string                      string
//	[]byte                      bytes
//	*T                          option<T>
//	[]T                         seq<T>
//	[N]T                        tuple of N elements
//	map[K]V                     map, entries sorted by encoded key
//	struct{}                    unit
//	struct                      struct of exported fields in order
//	struct embedding Union      enum, one case per pointer field
//
// Field tags use the "wire" key: `wire:"-"` skips a field and
// `wire:",char"` encodes an int32 field as a character. A union case whose
// payload is *struct{} is a unit variant, a pointer to a struct is a struct
// variant, a pointer to an array is a tuple variant, anything else is a
// newtype variant:
//
//	type Shape struct {
//		model.Union
//		Empty  *struct{}
//		Circle *float64
//		Rect   *Rect
//	}
//
// Types implementing both Marshaler and Unmarshaler take over their own
// encoding; their fields are not inspected. Implementing only one of the two
// is a compile error. A pointer to a hooked type is still an option, with the
// hook applied to the pointee.
//
// Plans are compiled once per type and cached; a Compiler is safe for
// concurrent use.
package model
