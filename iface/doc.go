// Package iface describes interfaces: ordered method tables whose
// parameters compile into a fixed argument array shape.
//
// A Method lists its parameters; New compiles each method into a Plan that
// records the packed object.Counts, the expected size of every buffer slot
// and where each parameter lives. Dispatchers validate raw invocations
// against the plan and proxies build argument arrays from it, so both sides
// agree on the layout without generated code.
//
//	var ICounter = iface.MustNew("ICounter", nil,
//		iface.NewMethod(0, "add", iface.In("n", layout.Uint32), iface.Out("total", layout.Uint64)),
//		iface.NewMethod(1, "snapshot", iface.OutObject("copy", "ICounter")),
//	)
//
// Interfaces may also be declared in TOML files; see Parse.
package iface
