// Package wasmhost is a transport that lets WebAssembly guests running in
// wazero invoke Go objects.
//
// Guests import one function:
//
//	(import "objabi" "invoke" (func (param i32 i32 i32 i32) (result i32)))
//
// taking a handle, an op, the address of an argument slot array and the
// packed counts. Every slot is 8 bytes, little-endian: buffers are
// {ptr u32, size u32}, objects are {handle u32, 0}. On return, output
// buffer sizes hold the written length and output object slots hold new
// handles owned by the guest.
//
// The host never forwards release or retain: both are answered by the
// handle table. Any other op with the Local bit is refused with
// ErrorRemote. Input buffers are copied out of guest memory before the
// call and the forwarded op carries RemoteBufs. Failures of the transport
// itself are reported with the negative transport statuses.
package wasmhost
