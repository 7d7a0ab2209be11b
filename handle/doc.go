// Package handle maps small integer handles to objects for transports that
// cannot hold Go values directly, such as WebAssembly guests.
//
// A Table keeps two counts per entry. The guest count tracks how many
// references the other side holds to the handle; Retain and Release adjust
// it. Independently the table itself owns exactly one reference to the
// object, released when the guest count reaches zero or on Close.
//
//	t := handle.NewTable(1024)
//	h, err := t.Insert(obj) // takes over one reference to obj
//	...
//	t.Release(h) // last guest reference: obj.Release()
//
// Handle 0 is never issued. Freed handles are reused, most recently freed
// first. Observers receive Inserted, Retained, Released and Dropped events
// after the table lock is released.
package handle
