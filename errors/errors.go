package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseEncode  Phase = "encode"  // value to bytes
	PhaseDecode  Phase = "decode"  // bytes to value
	PhaseCompile Phase = "compile" // value-model plan construction
	PhaseParse   Phase = "parse"   // shape documents
)

// Kind categorizes the error
type Kind string

const (
	KindTransport           Kind = "transport"
	KindInsufficientData    Kind = "insufficient_data"
	KindCapacity            Kind = "capacity"
	KindInvalidUTF8         Kind = "invalid_utf8"
	KindInvalidChar         Kind = "invalid_char"
	KindInvalidDiscriminant Kind = "invalid_discriminant"
	KindUnsupported         Kind = "unsupported"
	KindCustom              Kind = "custom"
	KindLengthMismatch      Kind = "length_mismatch"
	KindOverflow            Kind = "overflow"
	KindTypeMismatch        Kind = "type_mismatch"
	KindNilPointer          Kind = "nil_pointer"
	KindFieldMissing        Kind = "field_missing"
	KindInvalidData         Kind = "invalid_data"
)

// Error is the structured error type used by every package of the module.
//
// Kind selects the arm: KindCustom errors carry a caller-collected value in
// Cause (see DisplayCollector); every other kind is a structural or transport
// failure raised by the codec itself.
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	GoType string
	Shape  string
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.GoType != "" || e.Shape != "" {
		b.WriteString(": ")
		if e.GoType != "" && e.Shape != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
			b.WriteString(", shape ")
			b.WriteString(e.Shape)
		} else if e.GoType != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
		} else {
			b.WriteString("shape ")
			b.WriteString(e.Shape)
		}
	}

	if e.Detail != "" {
		if e.GoType != "" || e.Shape != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// GoType sets the Go type name
func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
	return b
}

// Shape sets the value-shape name
func (b *Builder) Shape(s string) *Builder {
	b.err.Shape = s
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// Transport wraps a failure reported by the underlying byte source or sink.
func Transport(phase Phase, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTransport,
		Detail: "transport failure",
		Cause:  cause,
	}
}

// InsufficientData reports a read that asked for more bytes than remain, or a
// short write.
func InsufficientData(phase Phase, need, have int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInsufficientData,
		Detail: fmt.Sprintf("need %d bytes, have %d", need, have),
		Value:  need,
	}
}

// Capacity reports a write exceeding the sink's bound.
func Capacity(phase Phase, need, free int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindCapacity,
		Detail: fmt.Sprintf("write of %d bytes exceeds remaining capacity %d", need, free),
		Value:  need,
	}
}

// TypeMismatch creates a type mismatch error
func TypeMismatch(phase Phase, path []string, goType, shape string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTypeMismatch,
		Path:   path,
		GoType: goType,
		Shape:  shape,
	}
}

// InvalidUTF8 creates an invalid UTF-8 error
func InvalidUTF8(phase Phase, path []string, data []byte) *Error {
	preview := data
	if len(preview) > 32 {
		preview = preview[:32]
	}
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidUTF8,
		Path:   path,
		Detail: fmt.Sprintf("invalid UTF-8 sequence: %x", preview),
	}
}

// InvalidChar reports a character code that is not a Unicode scalar value.
// Value holds the raw 32-bit code.
func InvalidChar(phase Phase, path []string, code uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidChar,
		Path:   path,
		Detail: fmt.Sprintf("invalid Unicode scalar value: 0x%X", code),
		Value:  code,
	}
}

// InvalidDiscriminant creates an invalid discriminant error for options and enums
func InvalidDiscriminant(phase Phase, path []string, disc uint32, maxValid uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidDiscriminant,
		Path:   path,
		Detail: fmt.Sprintf("discriminant %d out of range (max %d)", disc, maxValid),
		Value:  disc,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// LengthMismatch reports a container whose declared length differs from the
// number of elements actually produced.
func LengthMismatch(phase Phase, path []string, declared, actual int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindLengthMismatch,
		Path:   path,
		Detail: fmt.Sprintf("declared %d elements, got %d", declared, actual),
		Value:  actual,
	}
}

// Overflow creates an overflow error
func Overflow(phase Phase, path []string, value any, target string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOverflow,
		Path:   path,
		Shape:  target,
		Detail: fmt.Sprintf("value %v overflows %s", value, target),
		Value:  value,
	}
}

// NilPointer creates a nil pointer error
func NilPointer(phase Phase, path []string, goType string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNilPointer,
		Path:   path,
		GoType: goType,
		Detail: "nil pointer",
	}
}

// FieldMissing creates a missing field error
func FieldMissing(phase Phase, path []string, fieldName string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindFieldMissing,
		Path:   path,
		Detail: fmt.Sprintf("required field %q not found", fieldName),
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// ParseFailed creates a parsing error
func ParseFailed(what string, cause error) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindInvalidData,
		Detail: fmt.Sprintf("parse %s", what),
		Cause:  cause,
	}
}
