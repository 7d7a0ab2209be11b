package wasmhost

import (
	"bytes"
	"context"
	"encoding/binary"
	stderrors "errors"
	"sync/atomic"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/object-abi/errors"
	"github.com/wippyai/object-abi/handle"
	"github.com/wippyai/object-abi/object"
)

// SlotSize is the size of one guest argument slot.
const SlotSize = 8

// Host exposes Go objects to WebAssembly guests through handles.
type Host struct {
	table      *handle.Table
	log        *zap.Logger
	name       string
	maxHandles int
	maxData    int
	closed     atomic.Bool
}

// New creates a host with its own handle table.
func New(opts ...Option) *Host {
	h := &Host{
		name:       DefaultModuleName,
		maxHandles: DefaultMaxHandles,
		maxData:    DefaultMaxData,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.log == nil {
		h.log = Logger()
	}
	h.table = handle.NewTable(h.maxHandles)
	h.table.Subscribe(&tableLog{log: h.log})
	return h
}

// ModuleName returns the name guests import invoke from.
func (h *Host) ModuleName() string { return h.name }

// Table returns the host's handle table.
func (h *Host) Table() *handle.Table { return h.table }

// Export publishes o to guests. The caller keeps its own reference; the
// table holds a new one until the guest releases the handle.
func (h *Host) Export(o object.Object) (handle.Handle, error) {
	if o.IsNull() {
		return 0, errors.NilPointer(errors.PhaseTransport, nil, "object.Object")
	}
	if st := o.Retain(); st != object.OK {
		return 0, errors.New(errors.PhaseTransport, errors.KindInvalidInput).
			Status(st).
			Detail("retain failed").
			Build()
	}
	hd, err := h.table.Insert(o)
	if err != nil {
		o.Release()
		return 0, errors.New(errors.PhaseTransport, errors.KindOverflow).
			Cause(err).
			Status(tableStatus(err)).
			Build()
	}
	return hd, nil
}

// Lookup returns the object behind hd without retaining it.
func (h *Host) Lookup(hd handle.Handle) (object.Object, bool) {
	return h.table.Get(hd)
}

// Instantiate registers the host module with rt.
func (h *Host) Instantiate(ctx context.Context, rt wazero.Runtime) (api.Module, error) {
	i32 := api.ValueTypeI32
	return rt.NewHostModuleBuilder(h.name).
		NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(h.invoke), []api.ValueType{i32, i32, i32, i32}, []api.ValueType{i32}).
		WithParameterNames("handle", "op", "args", "counts").
		Export("invoke").
		Instantiate(ctx)
}

func (h *Host) invoke(ctx context.Context, mod api.Module, stack []uint64) {
	st := h.Invoke(ctx, mod.Memory(),
		handle.Handle(api.DecodeU32(stack[0])),
		object.Op(api.DecodeU32(stack[1])),
		api.DecodeU32(stack[2]),
		object.Counts(api.DecodeU32(stack[3])))
	stack[0] = api.EncodeI32(int32(st))
}

// Invoke performs a guest invocation against the object behind target.
// args is the guest address of the slot array described by k.
func (h *Host) Invoke(ctx context.Context, mem api.Memory, target handle.Handle, op object.Op, args uint32, k object.Counts) object.Status {
	if err := ctx.Err(); err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) {
			return object.ErrorTimeout
		}
		return object.ErrorAbort
	}
	if h.closed.Load() {
		return object.ErrorDefunct
	}

	switch op.MethodID() {
	case object.OpRetain, object.OpRelease:
		return h.refOp(target, op, k)
	}
	if op.IsLocal() {
		h.debug("local op refused", target, op)
		return object.ErrorRemote
	}
	if k&object.ReservedCountsMask != 0 {
		h.debug("reserved count bits set", target, op, zap.Uint32("counts", uint32(k)))
		return object.ErrorMaxArgs
	}

	obj, ok := h.table.Acquire(target)
	if !ok {
		h.debug("unknown target handle", target, op)
		return object.ErrorBadObj
	}
	defer obj.Release()

	n := k.Total()
	if mem == nil && n > 0 {
		return object.ErrorMaxData
	}
	var slots []byte
	if n > 0 {
		raw, ok := mem.Read(args, uint32(n*SlotSize))
		if !ok {
			h.debug("argument array out of bounds", target, op, zap.Uint32("args", args))
			return object.ErrorMaxData
		}
		slots = bytes.Clone(raw)
	}

	callArgs := make([]object.Arg, n)
	var held []object.Object
	defer func() {
		for _, o := range held {
			o.Release()
		}
	}()
	total := 0
	for i := 0; i < n; i++ {
		lo := binary.LittleEndian.Uint32(slots[i*SlotSize:])
		hi := binary.LittleEndian.Uint32(slots[i*SlotSize+4:])
		switch {
		case i < k.IndexOI():
			total += int(hi)
			if total > h.maxData {
				h.debug("buffers exceed limit", target, op, zap.Int("total", total))
				return object.ErrorMaxData
			}
			b, ok := mem.Read(lo, hi)
			if !ok {
				h.debug("buffer out of bounds", target, op, zap.Int("slot", i))
				return object.ErrorMaxData
			}
			if i < k.IndexBO() {
				callArgs[i].Buf = bytes.Clone(b)
			} else {
				callArgs[i].Buf = make([]byte, hi)
			}
		case i < k.IndexOO():
			if lo == 0 {
				continue
			}
			o, ok := h.table.Acquire(handle.Handle(lo))
			if !ok {
				h.debug("unknown input handle", target, op, zap.Int("slot", i))
				return object.ErrorBadObj
			}
			held = append(held, o)
			callArgs[i] = object.ObjArg(o)
		}
	}

	if st := obj.Call(op.WithModifiers(object.RemoteBufs), callArgs, k); st != object.OK {
		return st
	}
	return h.publish(mem, args, slots, callArgs, k, target, op)
}

// publish writes outputs of a successful call back into guest memory.
func (h *Host) publish(mem api.Memory, args uint32, slots []byte, callArgs []object.Arg, k object.Counts, target handle.Handle, op object.Op) object.Status {
	first := k.IndexOO()
	handles := make([]handle.Handle, k.NumOO())
	for j := range handles {
		o := callArgs[first+j].Obj
		if o.IsNull() {
			continue
		}
		hd, err := h.table.Insert(o)
		if err != nil {
			h.debug("cannot publish output object", target, op, zap.Error(err))
			for _, prev := range handles[:j] {
				if prev != 0 {
					h.table.Release(prev)
				}
			}
			for _, rest := range callArgs[first+j:] {
				object.ReleaseIf(rest.Obj)
			}
			return tableStatus(err)
		}
		handles[j] = hd
	}

	for i := k.IndexBO(); i < k.IndexOI(); i++ {
		ptr := binary.LittleEndian.Uint32(slots[i*SlotSize:])
		capacity := binary.LittleEndian.Uint32(slots[i*SlotSize+4:])
		out := callArgs[i].Buf
		if uint32(len(out)) > capacity {
			out = out[:capacity]
		}
		if !mem.Write(ptr, out) || !mem.WriteUint32Le(args+uint32(i*SlotSize+4), uint32(len(out))) {
			h.unpublish(handles)
			return object.ErrorMaxData
		}
	}
	for j, hd := range handles {
		at := args + uint32((first+j)*SlotSize)
		if !mem.WriteUint32Le(at, uint32(hd)) || !mem.WriteUint32Le(at+4, 0) {
			h.unpublish(handles)
			return object.ErrorMaxData
		}
	}
	return object.OK
}

func (h *Host) unpublish(handles []handle.Handle) {
	for _, hd := range handles {
		if hd != 0 {
			h.table.Release(hd)
		}
	}
}

func (h *Host) refOp(target handle.Handle, op object.Op, k object.Counts) object.Status {
	if k != 0 {
		return object.ErrorInvalid
	}
	var err error
	if op.MethodID() == object.OpRetain {
		err = h.table.Retain(target)
	} else {
		err = h.table.Release(target)
	}
	if err != nil {
		h.debug("reference op failed", target, op, zap.Error(err))
		return tableStatus(err)
	}
	return object.OK
}

// Close releases every object still held for guests. Later invocations
// return ErrorDefunct.
func (h *Host) Close() error {
	if h.closed.Swap(true) {
		return nil
	}
	return h.table.Close()
}

func (h *Host) debug(msg string, target handle.Handle, op object.Op, fields ...zap.Field) {
	if ce := h.log.Check(zap.DebugLevel, msg); ce != nil {
		ce.Write(append([]zap.Field{
			zap.Uint32("handle", uint32(target)),
			zap.Uint32("op", uint32(op)),
		}, fields...)...)
	}
}

func tableStatus(err error) object.Status {
	switch {
	case stderrors.Is(err, handle.ErrFull):
		return object.ErrorNoSlots
	case stderrors.Is(err, handle.ErrClosed):
		return object.ErrorDefunct
	default:
		return object.ErrorBadObj
	}
}

type tableLog struct {
	log *zap.Logger
}

func (t *tableLog) OnHandleEvent(e handle.Event) {
	if ce := t.log.Check(zap.DebugLevel, "handle "+e.Type.String()); ce != nil {
		ce.Write(zap.Uint32("handle", uint32(e.Handle)), zap.Uint32("refs", e.Refs))
	}
}
