package dispatch

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/wippyai/object-abi/errors"
	"github.com/wippyai/object-abi/iface"
	"github.com/wippyai/object-abi/object"
)

// Handler implements one method for implementation type T. The returned
// error is converted with errors.StatusOf; returning an object.Status
// passes it through unchanged.
type Handler[T any] func(impl T, c *Call) error

// Handlers maps method names to their implementations.
type Handlers[T any] map[string]Handler[T]

type entry[T any] struct {
	method  *iface.Method
	handler Handler[T]
}

// Dispatcher serves the raw invoke contract for implementations of T.
type Dispatcher[T object.Counted] struct {
	ifc     *iface.Interface
	methods map[object.Op]entry[T]
}

// New binds handlers to every method answered by ifc, including base
// methods. Missing or unknown handler names are errors.
func New[T object.Counted](ifc *iface.Interface, hs Handlers[T]) (*Dispatcher[T], error) {
	d := &Dispatcher[T]{
		ifc:     ifc,
		methods: make(map[object.Op]entry[T]),
	}
	for _, m := range ifc.All() {
		h, ok := hs[m.Name]
		if !ok || h == nil {
			return nil, errors.NotFound(errors.PhaseDispatch, []string{ifc.Name, m.Name}, "handler")
		}
		d.methods[m.ID] = entry[T]{method: m, handler: h}
	}
	for name := range hs {
		if _, ok := ifc.Method(name); !ok {
			return nil, errors.NotFound(errors.PhaseDispatch, []string{ifc.Name, name}, "method")
		}
	}
	return d, nil
}

// Must is New for package-level dispatchers; it panics on error.
func Must[T object.Counted](ifc *iface.Interface, hs Handlers[T]) *Dispatcher[T] {
	d, err := New(ifc, hs)
	if err != nil {
		panic(err)
	}
	return d
}

// Interface returns the descriptor the dispatcher serves.
func (d *Dispatcher[T]) Interface() *iface.Interface {
	return d.ifc
}

// Object wraps impl. The returned handle carries impl's existing reference.
func (d *Dispatcher[T]) Object(impl T) object.Object {
	return object.New(d.Invoke, impl)
}

// Invoke validates a raw invocation against the method plan, runs the
// handler and commits its outputs. Nothing is written to args unless the
// handler succeeds.
func (d *Dispatcher[T]) Invoke(cx any, op object.Op, args []object.Arg, k object.Counts) object.Status {
	impl, ok := cx.(T)
	if !ok {
		Logger().Debug("context type mismatch",
			zap.String("interface", d.ifc.Name),
			zap.String("got", typeName(cx)))
		return object.ErrorBadObj
	}

	switch id := op.MethodID(); id {
	case object.OpRelease, object.OpRetain:
		if k != 0 {
			d.reject("refcount op with arguments", nil, op, 0, k)
			return object.ErrorInvalid
		}
		if id == object.OpRelease {
			return impl.Release()
		}
		return impl.Retain()
	}

	e, ok := d.methods[op.MethodID()]
	if !ok {
		d.reject("unknown method", nil, op, 0, k)
		return object.ErrorInvalid
	}
	plan := e.method.Plan()
	if k != plan.Counts {
		d.reject("counts mismatch", e.method, op, plan.Counts, k)
		return object.ErrorInvalid
	}
	if len(args) < k.Total() {
		d.reject("argument array too short", e.method, op, plan.Counts, k)
		return object.ErrorInvalid
	}
	if st := checkSizes(plan, args); st != object.OK {
		d.reject("buffer size mismatch", e.method, op, plan.Counts, k)
		return st
	}

	c := newCall(e.method, op, args)
	if st := errors.StatusOf(e.handler(impl, c)); st != object.OK {
		c.discard()
		return st
	}
	c.commit()
	return object.OK
}

// checkSizes verifies every buffer slot against its expected size.
func checkSizes(plan *iface.Plan, args []object.Arg) object.Status {
	for _, s := range plan.Slots {
		if !s.Kind.IsBuffer() {
			continue
		}
		n := len(args[s.Index].Buf)
		switch {
		case s.Size == iface.Variable:
			if s.Kind == iface.SlotBufIn && s.Elem > 1 && n%s.Elem != 0 {
				return object.ErrorInvalid
			}
		case n == s.Size:
		case s.Kind == iface.SlotBufIn:
			return object.ErrorInvalid
		case s.Param < 0:
			// output bundle
			return object.ErrorInvalid
		default:
			return object.ErrorSizeOut
		}
	}
	return object.OK
}

func (d *Dispatcher[T]) reject(msg string, m *iface.Method, op object.Op, want, got object.Counts) {
	log := Logger()
	if ce := log.Check(zap.DebugLevel, msg); ce != nil {
		fields := []zap.Field{
			zap.String("interface", d.ifc.Name),
			zap.Uint32("id", uint32(op.MethodID())),
			zap.Uint32("want", uint32(want)),
			zap.Uint32("got", uint32(got)),
		}
		if m != nil {
			fields = append(fields, zap.String("method", m.Name))
		}
		ce.Write(fields...)
	}
}

func typeName(v any) string {
	return fmt.Sprintf("%T", v)
}
