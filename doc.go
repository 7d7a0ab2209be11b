// Package objectabi is a Go implementation of a binary object invocation
// ABI: one entry point per object, a 32-bit operation code, a flat array of
// argument slots and a packed shape word.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	objectabi/
//	├── object/     Op, Counts, Status, Arg and Object; reference counting
//	├── errors/     Structured error types carrying an ABI status
//	├── layout/     Fixed-size value layout and little-endian codec
//	├── iface/      Interface descriptors, slot plans and TOML declarations
//	├── dispatch/   Callee side: validate a call and run a typed handler
//	├── proxy/      Caller side: build the argument array and read results
//	├── handle/     Handle table mapping integers to objects
//	└── wasmhost/   wazero host module letting wasm guests invoke objects
//
// # Calling Convention
//
// An object is {Invoke, Context}. Callers invoke it with an op, an argument
// slice and Counts, four 4-bit fields giving the number of buffer inputs,
// buffer outputs, object inputs and object outputs, in that order in the
// slice. Release and retain are the reserved ops 0xFFFF and 0xFFFE.
//
//	r := proxy.NewRequest(method)
//	proxy.Put(r, "a", uint32(7))
//	if err := r.Invoke(obj).Err(); err != nil {
//	    return err
//	}
//	b, err := proxy.Get[uint32](r, "b")
//
// # Ownership
//
// Input objects are borrowed for the duration of a call. Output objects
// carry one reference that the caller must release. Output values are only
// written back when the call returns OK.
//
// # Thread Safety
//
// Objects produced by dispatchers may be invoked concurrently; handlers
// synchronize their own state. Handle tables and hosts are safe for
// concurrent use.
package objectabi
