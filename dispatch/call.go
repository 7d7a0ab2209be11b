package dispatch

import (
	"bytes"

	"github.com/wippyai/object-abi/errors"
	"github.com/wippyai/object-abi/iface"
	"github.com/wippyai/object-abi/layout"
	"github.com/wippyai/object-abi/object"
)

// Call gives a handler typed access to one invocation. Inputs are read
// from the argument array; outputs are staged and only written back when
// the handler returns success.
type Call struct {
	method *iface.Method
	plan   *iface.Plan
	op     object.Op
	args   []object.Arg

	bundle []byte                  // staged output bundle
	vals   map[int][]byte          // staged fixed outputs and variable output contents
	lens   map[int]int             // written byte length of variable outputs
	objs   map[int][]object.Object // staged output objects
}

func newCall(m *iface.Method, op object.Op, args []object.Arg) *Call {
	return &Call{
		method: m,
		plan:   m.Plan(),
		op:     op,
		args:   args,
	}
}

// Op returns the op the call was made with, modifiers included.
func (c *Call) Op() object.Op { return c.op }

// Method returns the method being served.
func (c *Call) Method() *iface.Method { return c.method }

func (c *Call) param(name string, dir iface.Dir, kinds ...iface.ParamKind) (int, iface.Param, error) {
	i := c.method.Param(name)
	if i < 0 {
		return -1, iface.Param{}, errors.NotFound(errors.PhaseDispatch, []string{c.method.Name, name}, "parameter")
	}
	p := c.method.Params[i]
	if p.Dir != dir {
		return -1, p, errors.New(errors.PhaseDispatch, errors.KindInvalidInput).
			Path(c.method.Name, name).
			Detail("parameter is %s", p.Dir).
			Build()
	}
	for _, k := range kinds {
		if p.Kind == k {
			return i, p, nil
		}
	}
	return -1, p, errors.New(errors.PhaseDispatch, errors.KindTypeMismatch).
		Path(c.method.Name, name).
		Type(p.TypeString()).
		Detail("parameter kind is %s", p.Kind).
		Build()
}

func checkType[V any](c *Call, p iface.Param) error {
	t, err := layout.TypeFor[V]()
	if err != nil {
		return err
	}
	if !layout.Same(t, p.Type) {
		return errors.TypeMismatch(errors.PhaseDispatch, []string{c.method.Name, p.Name}, t.String(), p.Type.String())
	}
	return nil
}

// inputBytes returns the encoded bytes of an input value param.
func (c *Call) inputBytes(i int, p iface.Param) []byte {
	pl := c.plan.Params[i]
	buf := c.args[pl.Slot].Buf
	if pl.Bundled {
		return buf[pl.Offset : pl.Offset+p.Size()]
	}
	return buf
}

// In decodes the named input value. Embedded objects are filled from their
// object slots and, like InObject results, are borrowed.
func In[V any](c *Call, name string) (V, error) {
	var v V
	i, p, err := c.param(name, iface.DirIn, iface.KindValue)
	if err != nil {
		return v, err
	}
	if err := checkType[V](c, p); err != nil {
		return v, err
	}
	if err := layout.Unmarshal(c.inputBytes(i, p), &v); err != nil {
		return v, err
	}
	if pl := c.plan.Params[i]; pl.Objects > 0 {
		objs := make([]object.Object, pl.Objects)
		for j := range objs {
			objs[j] = c.args[pl.ObjSlot+j].Obj
		}
		err = layout.InjectObjects(&v, objs)
	}
	return v, err
}

// InSlice decodes the named variable-length input array. The result never
// aliases the caller's buffer.
func InSlice[V any](c *Call, name string) ([]V, error) {
	i, p, err := c.param(name, iface.DirIn, iface.KindArray, iface.KindBuffer)
	if err != nil {
		return nil, err
	}
	if err := checkType[V](c, p); err != nil {
		return nil, err
	}
	var vs []V
	err = layout.Unmarshal(c.inputBytes(i, p), &vs)
	return vs, err
}

// InBytes returns the raw contents of the named input buffer or array.
// The bytes alias the caller's memory and must not be modified or retained
// past the call, except when the op carries RemoteBufs, in which case they
// are a private copy.
func InBytes(c *Call, name string) ([]byte, error) {
	i, p, err := c.param(name, iface.DirIn, iface.KindBuffer, iface.KindArray)
	if err != nil {
		return nil, err
	}
	b := c.inputBytes(i, p)
	if c.op.IsRemoteBufs() {
		return bytes.Clone(b), nil
	}
	return b, nil
}

// InObject returns the named input object. The callee does not own it and
// must Retain before keeping it past the call.
func InObject(c *Call, name string) (object.Object, error) {
	i, _, err := c.param(name, iface.DirIn, iface.KindObject)
	if err != nil {
		return object.Null, err
	}
	return c.args[c.plan.Params[i].Slot].Obj, nil
}

// InObjects returns the named input object array. Entries may be null.
func InObjects(c *Call, name string) ([]object.Object, error) {
	i, p, err := c.param(name, iface.DirIn, iface.KindObjectArray)
	if err != nil {
		return nil, err
	}
	start := c.plan.Params[i].Slot
	out := make([]object.Object, p.Count)
	for j := range out {
		out[j] = c.args[start+j].Obj
	}
	return out, nil
}

// Out stages the named output value. When v embeds objects the call takes
// over one reference to each, as with SetObject; on error the caller keeps
// them.
func Out[V any](c *Call, name string, v V) error {
	i, p, err := c.param(name, iface.DirOut, iface.KindValue)
	if err != nil {
		return err
	}
	if err := checkType[V](c, p); err != nil {
		return err
	}
	pl := c.plan.Params[i]
	if pl.Bundled {
		if c.bundle == nil {
			c.bundle = make([]byte, c.plan.OutBundle.Size)
		}
		return layout.MarshalTo(c.bundle[pl.Offset:pl.Offset+p.Size()], v)
	}
	buf := make([]byte, p.Size())
	if err := layout.MarshalTo(buf, v); err != nil {
		return err
	}
	if pl.Objects > 0 {
		objs, err := layout.ExtractObjects(v)
		if err != nil {
			return err
		}
		c.setObjects(i, objs)
	}
	c.stage(i, buf, len(buf))
	return nil
}

// OutSlice stages the named variable-length output array. It fails with
// ErrorSizeOut when vs does not fit the caller's buffer.
func OutSlice[V any](c *Call, name string, vs []V) error {
	i, p, err := c.param(name, iface.DirOut, iface.KindArray, iface.KindBuffer)
	if err != nil {
		return err
	}
	if err := checkType[V](c, p); err != nil {
		return err
	}
	capacity := len(c.args[c.plan.Params[i].Slot].Buf)
	n := len(vs) * p.Size()
	if n > capacity {
		return errors.SizeMismatch(errors.PhaseDispatch, []string{c.method.Name, name}, n, capacity, object.ErrorSizeOut)
	}
	buf := make([]byte, capacity)
	if err := layout.MarshalTo(buf[:n], vs); err != nil {
		return err
	}
	c.stage(i, buf, n)
	return nil
}

// OutBytes returns a writable buffer with the capacity of the named output
// buffer or array. Its written length defaults to the full capacity; use
// SetOutLen to shorten it.
func OutBytes(c *Call, name string) ([]byte, error) {
	i, _, err := c.param(name, iface.DirOut, iface.KindBuffer, iface.KindArray)
	if err != nil {
		return nil, err
	}
	if b, ok := c.vals[i]; ok {
		return b[:cap(b)], nil
	}
	b := make([]byte, len(c.args[c.plan.Params[i].Slot].Buf))
	c.stage(i, b, len(b))
	return b, nil
}

// OutCap returns how many elements the caller reserved for the named output
// buffer or array.
func OutCap(c *Call, name string) (int, error) {
	i, p, err := c.param(name, iface.DirOut, iface.KindBuffer, iface.KindArray)
	if err != nil {
		return 0, err
	}
	return len(c.args[c.plan.Params[i].Slot].Buf) / p.Size(), nil
}

// SetOutLen sets the number of elements written to the named output
// buffer or array.
func SetOutLen(c *Call, name string, n int) error {
	i, p, err := c.param(name, iface.DirOut, iface.KindBuffer, iface.KindArray)
	if err != nil {
		return err
	}
	capacity := len(c.args[c.plan.Params[i].Slot].Buf)
	size := n * p.Size()
	if n < 0 || size > capacity {
		return errors.SizeMismatch(errors.PhaseDispatch, []string{c.method.Name, name}, size, capacity, object.ErrorSizeOut)
	}
	b, ok := c.vals[i]
	if !ok {
		b = make([]byte, capacity)
	}
	c.stage(i, b[:cap(b)], size)
	return nil
}

// SetObject stages the named output object. The call takes over one
// reference to o: it is handed to the caller on success and released if
// the handler fails.
func SetObject(c *Call, name string, o object.Object) error {
	i, _, err := c.param(name, iface.DirOut, iface.KindObject)
	if err != nil {
		return err
	}
	c.setObjects(i, []object.Object{o})
	return nil
}

// SetObjects stages the named output object array. list must have exactly
// the declared length; ownership follows SetObject.
func SetObjects(c *Call, name string, list []object.Object) error {
	i, p, err := c.param(name, iface.DirOut, iface.KindObjectArray)
	if err != nil {
		return err
	}
	if len(list) != p.Count {
		return errors.New(errors.PhaseDispatch, errors.KindShape).
			Path(c.method.Name, name).
			Status(object.ErrorInvalid).
			Detail("want %d objects, got %d", p.Count, len(list)).
			Build()
	}
	c.setObjects(i, append([]object.Object(nil), list...))
	return nil
}

func (c *Call) setObjects(i int, list []object.Object) {
	if c.objs == nil {
		c.objs = make(map[int][]object.Object)
	}
	for _, prev := range c.objs[i] {
		object.ReleaseIf(prev)
	}
	c.objs[i] = list
}

func (c *Call) stage(i int, b []byte, n int) {
	if c.vals == nil {
		c.vals = make(map[int][]byte)
		c.lens = make(map[int]int)
	}
	c.vals[i] = b
	c.lens[i] = n
}

// commit writes staged outputs into the argument array.
func (c *Call) commit() {
	if c.bundle != nil {
		copy(c.args[c.plan.OutBundle.Slot].Buf, c.bundle)
	}
	for i, b := range c.vals {
		slot := c.plan.Params[i].Slot
		n := c.lens[i]
		copy(c.args[slot].Buf, b[:n])
		if c.method.Params[i].Kind != iface.KindValue {
			c.args[slot].Buf = c.args[slot].Buf[:n]
		}
	}
	for i, list := range c.objs {
		slot := c.objSlot(i)
		for j, o := range list {
			c.args[slot+j].Obj = o
		}
	}
}

// objSlot returns the first object slot of param i.
func (c *Call) objSlot(i int) int {
	if pl := c.plan.Params[i]; pl.Objects > 0 {
		return pl.ObjSlot
	}
	return c.plan.Params[i].Slot
}

// discard drops staged outputs after a failed handler.
func (c *Call) discard() {
	for _, list := range c.objs {
		for _, o := range list {
			object.ReleaseIf(o)
		}
	}
	c.objs = nil
	c.vals = nil
	c.bundle = nil
}
