// Package shape loads named type descriptions for the dynamic value model.
//
// Two sources are supported. YAML shape documents list types under a
// top-level "types" key:
//
//	types:
//	  point:
//	    record:
//	      x: u32
//	      y: u32
//	  color:
//	    enum: [red, green, blue]
//	  shape:
//	    variant:
//	      none: _
//	      circle: f64
//	      poly: list<point>
//	  reply: result<list<string>, string>
//
// Type expressions are WIT-like: primitives (bool, u8..u64, s8..s64, f32,
// f64, char, string), list<T>, option<T>, result<T, E> with _ for an absent
// side, tuple<A, B, ...>, and references to other named types in any order.
//
// WIT JSON documents as produced by `wasm-tools component wit --json` are
// loaded through the resolve decoder of go.bytecodealliance.org/wit.
package shape
