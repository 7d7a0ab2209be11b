package proxy

import (
	"github.com/wippyai/object-abi/errors"
	"github.com/wippyai/object-abi/iface"
	"github.com/wippyai/object-abi/layout"
	"github.com/wippyai/object-abi/object"
)

// Put encodes the named input value. Embedded objects go to their object
// slots and are not retained.
func Put[V any](r *Request, name string, v V) error {
	i, p, err := r.param(name, iface.DirIn, iface.KindValue)
	if err != nil {
		return err
	}
	t, err := layout.TypeFor[V]()
	if err != nil {
		return err
	}
	if err := r.checkType(t, p); err != nil {
		return err
	}
	if err := layout.MarshalTo(r.valueBytes(i, p), v); err != nil {
		return err
	}
	pl := r.plan.Params[i]
	if pl.Objects == 0 {
		return nil
	}
	objs, err := layout.ExtractObjects(v)
	if err != nil {
		return err
	}
	for j, o := range objs {
		r.args[pl.ObjSlot+j].Obj = o
	}
	return nil
}

// PutSlice encodes the named variable-length input array.
func PutSlice[V any](r *Request, name string, vs []V) error {
	i, p, err := r.param(name, iface.DirIn, iface.KindArray, iface.KindBuffer)
	if err != nil {
		return err
	}
	t, err := layout.TypeFor[V]()
	if err != nil {
		return err
	}
	if err := r.checkType(t, p); err != nil {
		return err
	}
	b, err := layout.Marshal(vs)
	if err != nil {
		return err
	}
	r.args[r.plan.Params[i].Slot].Buf = b
	return nil
}

// PutBytes passes b as the named input buffer without copying. Its length
// must be a multiple of the element size for typed arrays.
func PutBytes(r *Request, name string, b []byte) error {
	i, p, err := r.param(name, iface.DirIn, iface.KindBuffer, iface.KindArray)
	if err != nil {
		return err
	}
	if size := p.Size(); size > 1 && len(b)%size != 0 {
		return errors.SizeMismatch(errors.PhaseMarshal, []string{r.method.Name, name}, (len(b)/size+1)*size, len(b), object.ErrorInvalid)
	}
	r.args[r.plan.Params[i].Slot].Buf = b
	return nil
}

// PutObject passes o as the named input object. It is not retained.
func PutObject(r *Request, name string, o object.Object) error {
	i, _, err := r.param(name, iface.DirIn, iface.KindObject)
	if err != nil {
		return err
	}
	r.args[r.plan.Params[i].Slot].Obj = o
	return nil
}

// PutObjects passes the named input object array. Null entries are allowed.
func PutObjects(r *Request, name string, list []object.Object) error {
	i, p, err := r.param(name, iface.DirIn, iface.KindObjectArray)
	if err != nil {
		return err
	}
	if len(list) != p.Count {
		return errors.New(errors.PhaseMarshal, errors.KindShape).
			Path(r.method.Name, name).
			Status(object.ErrorInvalid).
			Detail("want %d objects, got %d", p.Count, len(list)).
			Build()
	}
	start := r.plan.Params[i].Slot
	for j, o := range list {
		r.args[start+j].Obj = o
	}
	return nil
}

// Reserve sizes the named variable-length output array for n elements.
func Reserve[V any](r *Request, name string, n int) error {
	i, p, err := r.param(name, iface.DirOut, iface.KindArray, iface.KindBuffer)
	if err != nil {
		return err
	}
	t, err := layout.TypeFor[V]()
	if err != nil {
		return err
	}
	if err := r.checkType(t, p); err != nil {
		return err
	}
	if n < 0 {
		return errors.SizeMismatch(errors.PhaseMarshal, []string{r.method.Name, name}, 0, n, object.ErrorInvalid)
	}
	r.args[r.plan.Params[i].Slot].Buf = make([]byte, n*p.Size())
	return nil
}

// OutBuffer passes b as the capacity of the named output buffer. The callee
// writes into b directly and the result is b[:written].
func OutBuffer(r *Request, name string, b []byte) error {
	i, _, err := r.param(name, iface.DirOut, iface.KindBuffer, iface.KindArray)
	if err != nil {
		return err
	}
	r.args[r.plan.Params[i].Slot].Buf = b
	return nil
}

// Get decodes the named output value after a successful Invoke. The caller
// owns any objects embedded in the result.
func Get[V any](r *Request, name string) (V, error) {
	var v V
	if err := r.ready(); err != nil {
		return v, err
	}
	i, p, err := r.param(name, iface.DirOut, iface.KindValue)
	if err != nil {
		return v, err
	}
	t, err := layout.TypeFor[V]()
	if err != nil {
		return v, err
	}
	if err := r.checkType(t, p); err != nil {
		return v, err
	}
	if err := layout.Unmarshal(r.valueBytes(i, p), &v); err != nil {
		return v, err
	}
	if pl := r.plan.Params[i]; pl.Objects > 0 {
		objs := make([]object.Object, pl.Objects)
		for j := range objs {
			objs[j] = r.args[pl.ObjSlot+j].Obj
		}
		err = layout.InjectObjects(&v, objs)
	}
	return v, err
}

// GetSlice decodes the named output array after a successful Invoke.
func GetSlice[V any](r *Request, name string) ([]V, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	i, p, err := r.param(name, iface.DirOut, iface.KindArray, iface.KindBuffer)
	if err != nil {
		return nil, err
	}
	t, err := layout.TypeFor[V]()
	if err != nil {
		return nil, err
	}
	if err := r.checkType(t, p); err != nil {
		return nil, err
	}
	var vs []V
	err = layout.Unmarshal(r.args[r.plan.Params[i].Slot].Buf, &vs)
	return vs, err
}

// Bytes returns the written part of the named output buffer.
func Bytes(r *Request, name string) ([]byte, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	i, _, err := r.param(name, iface.DirOut, iface.KindBuffer, iface.KindArray)
	if err != nil {
		return nil, err
	}
	return r.args[r.plan.Params[i].Slot].Buf, nil
}

// Object returns the named output object. The caller owns the returned
// reference and must release it.
func Object(r *Request, name string) (object.Object, error) {
	if err := r.ready(); err != nil {
		return object.Null, err
	}
	i, _, err := r.param(name, iface.DirOut, iface.KindObject)
	if err != nil {
		return object.Null, err
	}
	return r.args[r.plan.Params[i].Slot].Obj, nil
}

// Objects returns the named output object array. The caller owns every
// returned reference.
func Objects(r *Request, name string) ([]object.Object, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	i, p, err := r.param(name, iface.DirOut, iface.KindObjectArray)
	if err != nil {
		return nil, err
	}
	start := r.plan.Params[i].Slot
	out := make([]object.Object, p.Count)
	for j := range out {
		out[j] = r.args[start+j].Obj
	}
	return out, nil
}
