package proxy

import (
	"github.com/wippyai/object-abi/errors"
	"github.com/wippyai/object-abi/iface"
	"github.com/wippyai/object-abi/layout"
	"github.com/wippyai/object-abi/object"
)

// Proxy wraps an object handle for typed calls. Copying a Proxy does not
// retain the handle.
type Proxy struct {
	object.Object
}

// Wrap returns a proxy over o without retaining it.
func Wrap(o object.Object) Proxy {
	return Proxy{Object: o}
}

// Request builds the argument array for one method call.
type Request struct {
	method *iface.Method
	plan   *iface.Plan
	args   []object.Arg
	done   bool
}

// NewRequest allocates an argument array shaped for m. Fixed-size input
// and output slots are preallocated and zeroed; variable outputs need
// Reserve or OutBuffer.
func NewRequest(m *iface.Method) *Request {
	plan := m.Plan()
	r := &Request{
		method: m,
		plan:   plan,
		args:   make([]object.Arg, plan.Counts.Total()),
	}
	for _, s := range plan.Slots {
		if s.Kind.IsBuffer() && s.Size != iface.Variable {
			r.args[s.Index].Buf = make([]byte, s.Size)
		}
	}
	return r
}

// Counts returns the packed shape of the request.
func (r *Request) Counts() object.Counts { return r.plan.Counts }

// Method returns the method being called.
func (r *Request) Method() *iface.Method { return r.method }

// Invoke calls the method on o. The status is returned unchanged; results
// are only meaningful when it is OK.
func (r *Request) Invoke(o object.Object) object.Status {
	st := o.Call(r.method.ID, r.args, r.plan.Counts)
	r.done = st.IsOK()
	return st
}

func (r *Request) param(name string, dir iface.Dir, kinds ...iface.ParamKind) (int, iface.Param, error) {
	i := r.method.Param(name)
	if i < 0 {
		return -1, iface.Param{}, errors.NotFound(errors.PhaseMarshal, []string{r.method.Name, name}, "parameter")
	}
	p := r.method.Params[i]
	if p.Dir != dir {
		return -1, p, errors.New(errors.PhaseMarshal, errors.KindInvalidInput).
			Path(r.method.Name, name).
			Detail("parameter is %s", p.Dir).
			Build()
	}
	for _, k := range kinds {
		if p.Kind == k {
			return i, p, nil
		}
	}
	return -1, p, errors.New(errors.PhaseMarshal, errors.KindTypeMismatch).
		Path(r.method.Name, name).
		Type(p.TypeString()).
		Detail("parameter kind is %s", p.Kind).
		Build()
}

func (r *Request) checkType(t *layout.Type, p iface.Param) error {
	if !layout.Same(t, p.Type) {
		return errors.TypeMismatch(errors.PhaseMarshal, []string{r.method.Name, p.Name}, t.String(), p.Type.String())
	}
	return nil
}

// valueBytes returns the region of the argument array holding value i.
func (r *Request) valueBytes(i int, p iface.Param) []byte {
	pl := r.plan.Params[i]
	buf := r.args[pl.Slot].Buf
	if pl.Bundled {
		return buf[pl.Offset : pl.Offset+p.Size()]
	}
	return buf
}

func (r *Request) ready() error {
	if !r.done {
		return errors.New(errors.PhaseUnmarshal, errors.KindNotInitialized).
			Path(r.method.Name).
			Detail("results read before a successful invoke").
			Build()
	}
	return nil
}
