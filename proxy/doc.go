// Package proxy builds typed calls against object handles.
//
// A Request is shaped from a method's plan: inputs are encoded into their
// slots (or the shared bundle), outputs are reserved, and Invoke performs
// the raw call. Any non-OK status, including transport codes, is returned
// exactly as the callee or transport produced it.
//
//	m, _ := ICalc.Method("echo")
//	r := proxy.NewRequest(m)
//	_ = proxy.Put(r, "v", uint32(0xdead))
//	if st := r.Invoke(p.Object); st != object.OK {
//		return st
//	}
//	v, _ := proxy.Get[uint32](r, "r")
//
// Output objects follow the not-retained convention: the handle written by
// the callee is the caller's reference and must be released when done.
package proxy
