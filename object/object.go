package object

// Arg is one slot of an argument array. Buffer slots use Buf, object slots
// use Obj; which field is meaningful is implied by the slot's position as
// described by Counts.
//
// For an output buffer, Buf carries the caller's capacity on entry and the
// callee reslices it to the number of bytes written before returning.
type Arg struct {
	Buf []byte
	Obj Object
}

// BufArg returns a buffer slot.
func BufArg(b []byte) Arg { return Arg{Buf: b} }

// ObjArg returns an object slot.
func ObjArg(o Object) Arg { return Arg{Obj: o} }

// InvokeFunc is the single call primitive shared by every interface.
type InvokeFunc func(cx any, op Op, args []Arg, k Counts) Status

// Object is an invoke function paired with its opaque context. The zero
// value is the null object.
//
// Copying an Object does not retain it.
type Object struct {
	Invoke  InvokeFunc
	Context any
}

// Null is the null object.
var Null Object

// New pairs fn with cx.
func New(fn InvokeFunc, cx any) Object {
	return Object{Invoke: fn, Context: cx}
}

// IsNull reports whether o has no invoke function.
func (o Object) IsNull() bool {
	return o.Invoke == nil
}

// Call invokes op on o. Invoking the null object yields ErrorBadObj.
func (o Object) Call(op Op, args []Arg, k Counts) Status {
	if o.Invoke == nil {
		return ErrorBadObj
	}
	return o.Invoke(o.Context, op, args, k)
}

// Retain increments the reference count of o.
func (o Object) Retain() Status {
	return o.Call(OpRetain, nil, 0)
}

// Release decrements the reference count of o, destroying it at zero.
func (o Object) Release() Status {
	return o.Call(OpRelease, nil, 0)
}

// IsNull reports whether o is the null object.
func IsNull(o Object) bool {
	return o.IsNull()
}

// Replace stores o into loc, retaining o and releasing the previous value.
// The new value is retained first so that storing a slot's own value back
// into it never destroys the object.
func Replace(loc *Object, o Object) {
	if !o.IsNull() {
		o.Retain()
	}
	if old := *loc; !old.IsNull() {
		old.Release()
	}
	*loc = o
}

// Init stores o into an empty slot, retaining it when non-null.
func Init(loc *Object, o Object) {
	if !o.IsNull() {
		o.Retain()
	}
	*loc = o
}

// AssignNull releases the value held in loc, if any, and clears it.
func AssignNull(loc *Object) {
	Replace(loc, Null)
}

// ReleaseIf releases o when it is not null.
func ReleaseIf(o Object) {
	if !o.IsNull() {
		o.Release()
	}
}

// Counted is implemented by object state that answers the reference count
// protocol.
type Counted interface {
	Retain() Status
	Release() Status
}
