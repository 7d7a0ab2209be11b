package errors

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/wippyai/object-abi/object"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseDescribe  Phase = "describe"  // interface and method descriptors
	PhaseMarshal   Phase = "marshal"   // Go value to slot bytes
	PhaseUnmarshal Phase = "unmarshal" // slot bytes to Go value
	PhaseDispatch  Phase = "dispatch"  // dispatcher checks and handlers
	PhaseTransport Phase = "transport" // handle tables and foreign memory
	PhaseParse     Phase = "parse"     // declaration files
	PhaseConfig    Phase = "config"    // configuration loading
)

// Kind categorizes the error
type Kind string

const (
	KindTypeMismatch   Kind = "type_mismatch"
	KindOutOfBounds    Kind = "out_of_bounds"
	KindInvalidData    Kind = "invalid_data"
	KindUnsupported    Kind = "unsupported"
	KindSizeMismatch   Kind = "size_mismatch"
	KindOverflow       Kind = "overflow"
	KindNilPointer     Kind = "nil_pointer"
	KindNotFound       Kind = "not_found"
	KindDuplicate      Kind = "duplicate"
	KindInvalidInput   Kind = "invalid_input"
	KindShape          Kind = "shape"
	KindNotInitialized Kind = "not_initialized"
)

// Error is the structured error type used throughout the module
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	GoType string
	Type   string
	Detail string
	Path   []string
	Status object.Status
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

	if e.GoType != "" || e.Type != "" {
		b.WriteString(": ")
		if e.GoType != "" && e.Type != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
			b.WriteString(", ABI type ")
			b.WriteString(e.Type)
		} else if e.GoType != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
		} else {
			b.WriteString("ABI type ")
			b.WriteString(e.Type)
		}
	}

	if e.Detail != "" {
		if e.GoType != "" || e.Type != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Status != object.OK {
		b.WriteString(" [status ")
		b.WriteString(e.Status.String())
		b.WriteByte(']')
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

// Type sets the ABI type name
func (b *Builder) Type(t string) *Builder {
	b.err.Type = t
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

// Status sets the status code reported when the error crosses an invoke
func (b *Builder) Status(s object.Status) *Builder {
	b.err.Status = s
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

// StatusOf converts err into the status code an invocation returns.
//
// nil maps to OK. An object.Status anywhere in the chain is returned as is,
// so transport codes pass through unchanged. An *Error with a Status set
// reports it. Everything else is a generic error.
func StatusOf(err error) object.Status {
	if err == nil {
		return object.OK
	}
	var e *Error
	if stderrors.As(err, &e) && e.Status != object.OK {
		return e.Status
	}
	var s object.Status
	if stderrors.As(err, &s) {
		return s
	}
	return object.Error
}

// As is errors.As from the standard library.
func As(err error, target any) bool { return stderrors.As(err, target) }

// Is is errors.Is from the standard library.
func Is(err, target error) bool { return stderrors.Is(err, target) }

// Convenience constructors for common error patterns

// TypeMismatch creates a type mismatch error
func TypeMismatch(phase Phase, path []string, goType, abiType string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTypeMismatch,
		Path:   path,
		GoType: goType,
		Type:   abiType,
		Status: object.ErrorInvalid,
	}
}

// SizeMismatch creates an error for a buffer whose length does not match the
// size a slot expects
func SizeMismatch(phase Phase, path []string, want, got int, status object.Status) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindSizeMismatch,
		Path:   path,
		Detail: fmt.Sprintf("want %d bytes, got %d", want, got),
		Value:  got,
		Status: status,
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

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, path []string, index, length int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Path:   path,
		Detail: fmt.Sprintf("index %d out of bounds (length %d)", index, length),
		Value:  index,
		Status: object.ErrorInvalid,
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

// Overflow creates an overflow error
func Overflow(phase Phase, path []string, value any, limit string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOverflow,
		Path:   path,
		Detail: fmt.Sprintf("value %v overflows %s", value, limit),
		Value:  value,
	}
}

// NotFound creates a lookup failure error
func NotFound(phase Phase, path []string, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Path:   path,
		Detail: fmt.Sprintf("%s not found", what),
	}
}

// Duplicate creates an error for a name or id declared twice
func Duplicate(phase Phase, path []string, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindDuplicate,
		Path:   path,
		Detail: fmt.Sprintf("duplicate %s", what),
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
