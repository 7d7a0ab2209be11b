package object

import (
	"fmt"
	"sync/atomic"
)

// Refs is an atomic reference counter meant to be embedded in object
// state. The zero value is not usable; call Init before publishing the
// owning object.
type Refs struct {
	count   atomic.Int64
	destroy func()
}

// Init sets the count to 1 and records the function run when the count
// reaches zero.
func (r *Refs) Init(destroy func()) {
	r.destroy = destroy
	r.count.Store(1)
}

// Count returns the current reference count.
func (r *Refs) Count() int64 {
	return r.count.Load()
}

// Retain increments the count.
func (r *Refs) Retain() Status {
	if v := r.count.Add(1); v <= 1 {
		panic(fmt.Sprintf("object: retain of released object %p (count %d)", r, v-1))
	}
	return OK
}

// Release decrements the count and runs the destroy function when it
// reaches zero. Releasing an object whose count is already zero panics.
func (r *Refs) Release() Status {
	switch v := r.count.Add(-1); {
	case v < 0:
		panic(fmt.Sprintf("object: release of object %p with count %d", r, v+1))
	case v == 0:
		if r.destroy != nil {
			r.destroy()
		}
	}
	return OK
}
