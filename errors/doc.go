// Package errors provides structured error types for the object ABI packages.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: field path, Go/ABI type names, cause chain and
// the status code the error maps to when it crosses an invocation.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDescribe, errors.KindShape).
//		Path("ITest1", "multiple_primitive").
//		Status(object.ErrorMaxArgs).
//		Detail("%d input buffers", 16).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.SizeMismatch(errors.PhaseDispatch, path, 4, 8, object.ErrorInvalid)
//	err := errors.OutOfBounds(errors.PhaseUnmarshal, path, 10, 5)
//
// StatusOf turns any error into an object.Status: nil is OK, status values
// pass through unchanged, and unknown errors become the generic error.
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
