// Package object defines the binary calling convention shared by every
// interface: the Op and Counts encodings, the argument array, the Object
// handle and its reference counting protocol, and the status codes.
//
// # Argument Array
//
// An invocation carries a slice of Arg slots. Counts packs four 4-bit
// segment sizes (buffers in, buffers out, objects in, objects out) and the
// segments always appear in that order:
//
//	k := object.Pack(1, 1, 0, 1)
//	args[k.IndexBI()] // first input buffer
//	args[k.IndexBO()] // first output buffer
//	args[k.IndexOO()] // first output object
//
// # Reference Counting
//
// Every object answers OpRetain and OpRelease with empty counts. Copying an
// Object never retains it; Replace, Init and AssignNull compose the two
// primitives for slot assignment. Refs is an atomic counter implementations
// embed to satisfy the protocol.
package object
