// Package errors provides the structured error type shared by the codec,
// its transports, and the value models.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). Kind doubles as the arm of a two-armed union: KindCustom errors
// carry a value produced by a DisplayCollector, every other kind is raised by
// the codec itself (transport failures, insufficient data, invalid UTF-8,
// invalid characters, unexpected discriminants, unsupported operations).
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDecode, errors.KindInvalidDiscriminant).
//		Path("order", "status").
//		Value(uint32(7)).
//		Detail("unexpected option tag").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.InsufficientData(errors.PhaseDecode, 8, 3)
//	err := errors.InvalidChar(errors.PhaseDecode, path, 0xD800)
//
// Custom errors go through a DisplayCollector. Discard keeps nothing and
// returns preallocated errors, Capture stores the formatted message:
//
//	err := errors.Custom(errors.PhaseDecode, errors.Capture{}, "age %d out of range", age)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
