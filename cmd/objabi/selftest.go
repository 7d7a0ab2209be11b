package main

import (
	"context"
	"fmt"
	"io"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"golang.org/x/sync/errgroup"

	"github.com/wippyai/object-abi/handle"
	"github.com/wippyai/object-abi/iface"
	"github.com/wippyai/object-abi/internal/config"
	"github.com/wippyai/object-abi/internal/itest"
	"github.com/wippyai/object-abi/object"
	"github.com/wippyai/object-abi/wasmhost"
)

type scenario struct {
	name string
	run  func(ctx context.Context, cfg *config.Config) error
}

var scenarios = []scenario{
	{"direct/check", func(context.Context, *config.Config) error {
		p := itest.AsITest1(itest.NewITest1(0))
		defer p.Release()
		return itest.Check(p)
	}},
	{"direct/obj_array_roundtrip", directObjArrays},
	{"direct/entrypoint", func(context.Context, *config.Config) error {
		drv := itest.AsITest2(itest.NewITest2())
		defer drv.Release()
		target := itest.NewITest1(0)
		defer target.Release()
		return drv.Entrypoint(target)
	}},
	{"direct/inheritance", func(context.Context, *config.Config) error {
		p := itest.AsITest3(itest.NewITest3(0))
		defer p.Release()
		if err := itest.Check(p.ITest1Proxy); err != nil {
			return err
		}
		v, err := p.ExtraTest3()
		if err != nil {
			return err
		}
		return expect("extra_test3", v, itest.SuccessFlag)
	}},
	{"direct/object_in_struct", func(context.Context, *config.Config) error {
		drv := itest.AsITest2(itest.NewITest2())
		defer drv.Release()
		target := itest.NewITest1(0)
		defer target.Release()

		h, err := drv.Hold(itest.Holder{Tag: 1, Obj: target})
		if err != nil {
			return err
		}
		defer object.ReleaseIf(h.Obj)
		if err := expect("hold tag", h.Tag, uint32(2)); err != nil {
			return err
		}
		return itest.Check(itest.AsITest1(h.Obj))
	}},
	{"wasm/single_out", wasmSingleOut},
	{"wasm/local_refused", wasmLocalRefused},
	{"wasm/objects_out", wasmObjectsOut},
	{"wasm/entrypoint", wasmEntrypoint},
	{"wasm/object_in_struct", wasmObjectInStruct},
}

type result struct {
	name string
	err  error
}

// runSelftest runs every scenario concurrently and reports whether all
// passed and no fixture object leaked.
func runSelftest(ctx context.Context, cfg *config.Config, w io.Writer, st styles) bool {
	before := itest.Live()
	results := make([]result, len(scenarios))

	var g errgroup.Group
	for i, sc := range scenarios {
		g.Go(func() error {
			results[i] = result{name: sc.name, err: sc.run(ctx, cfg)}
			return nil
		})
	}
	g.Wait()

	if leaked := itest.Live() - before; leaked != 0 {
		results = append(results, result{name: "leaks", err: fmt.Errorf("%d objects not destroyed", leaked)})
	} else {
		results = append(results, result{name: "leaks"})
	}

	ok := true
	for _, r := range results {
		if r.err != nil {
			ok = false
			fmt.Fprintf(w, "%s %s: %v\n", st.fail.Render("FAIL"), r.name, r.err)
			continue
		}
		fmt.Fprintf(w, "%s %s\n", st.pass.Render("PASS"), r.name)
	}
	return ok
}

func expect[V comparable](what string, got, want V) error {
	if got != want {
		return fmt.Errorf("%s = %v, want %v", what, got, want)
	}
	return nil
}

func directObjArrays(context.Context, *config.Config) error {
	p := itest.AsITest1(itest.NewITest1(0))
	defer p.Release()

	objs, a, err := p.TestObjArrayOut()
	if err != nil {
		return err
	}
	defer func() {
		for _, o := range objs {
			object.ReleaseIf(o)
		}
	}()
	if err := expect("test_obj_array_out flag", a, itest.SuccessFlag); err != nil {
		return err
	}
	a, err = p.TestObjArrayIn([]object.Object{objs[0], object.Null, objs[2]})
	if err != nil {
		return err
	}
	return expect("test_obj_array_in flag", a, itest.SuccessFlag)
}

// Guest slot array and scratch buffer addresses.
const (
	argsAt = 0x100
	bufAt  = 0x200
)

type guest struct {
	host *wasmhost.Host
	mod  api.Module
}

func withGuest(ctx context.Context, cfg *config.Config, fn func(*guest) error) error {
	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)

	opts := append(cfg.HostOptions(), wasmhost.WithLogger(wasmhost.Logger().Named("selftest")))
	h := wasmhost.New(opts...)
	defer h.Close()
	if _, err := h.Instantiate(ctx, rt); err != nil {
		return fmt.Errorf("instantiate host: %w", err)
	}
	mod, err := rt.InstantiateWithConfig(ctx, itest.GuestModule(h.ModuleName()), wazero.NewModuleConfig().WithName("guest"))
	if err != nil {
		return fmt.Errorf("instantiate guest: %w", err)
	}
	return fn(&guest{host: h, mod: mod})
}

// export hands o to the guest, consuming the caller's reference.
func (g *guest) export(o object.Object) (handle.Handle, error) {
	defer o.Release()
	return g.host.Export(o)
}

func (g *guest) slot(i int, lo, hi uint32) {
	mem := g.mod.Memory()
	mem.WriteUint32Le(argsAt+uint32(i*wasmhost.SlotSize), lo)
	mem.WriteUint32Le(argsAt+uint32(i*wasmhost.SlotSize)+4, hi)
}

func (g *guest) readSlot(i int) uint32 {
	v, _ := g.mod.Memory().ReadUint32Le(argsAt + uint32(i*wasmhost.SlotSize))
	return v
}

func (g *guest) call(ctx context.Context, hd handle.Handle, op object.Op, k object.Counts) (object.Status, error) {
	res, err := g.mod.ExportedFunction("call").Call(ctx, uint64(hd), uint64(op), argsAt, uint64(k))
	if err != nil {
		return 0, err
	}
	return object.Status(int32(uint32(res[0]))), nil
}

func (g *guest) mustCall(ctx context.Context, hd handle.Handle, op object.Op, k object.Counts) error {
	st, err := g.call(ctx, hd, op, k)
	if err != nil {
		return err
	}
	return st.Err()
}

func methodOp(ifc *iface.Interface, method string) object.Op {
	m, ok := ifc.Method(method)
	if !ok {
		panic("selftest: unknown method " + method)
	}
	return m.ID
}

func wasmSingleOut(ctx context.Context, cfg *config.Config) error {
	return withGuest(ctx, cfg, func(g *guest) error {
		hd, err := g.export(itest.NewITest1(0))
		if err != nil {
			return err
		}
		g.slot(0, bufAt, 4)
		if err := g.mustCall(ctx, hd, methodOp(itest.ITest1, "single_out"), object.Pack(0, 1, 0, 0)); err != nil {
			return err
		}
		v, _ := g.mod.Memory().ReadUint32Le(bufAt)
		return expect("guest memory", v, itest.SuccessFlag)
	})
}

func wasmLocalRefused(ctx context.Context, cfg *config.Config) error {
	return withGuest(ctx, cfg, func(g *guest) error {
		hd, err := g.export(itest.NewITest1(0))
		if err != nil {
			return err
		}
		g.slot(0, bufAt, 4)
		st, err := g.call(ctx, hd, object.Local|methodOp(itest.ITest1, "single_out"), object.Pack(0, 1, 0, 0))
		if err != nil {
			return err
		}
		return expect("status", st, object.ErrorRemote)
	})
}

func wasmObjectsOut(ctx context.Context, cfg *config.Config) error {
	return withGuest(ctx, cfg, func(g *guest) error {
		hd, err := g.export(itest.NewITest1(0))
		if err != nil {
			return err
		}
		for i := 0; i < 4; i++ {
			g.slot(i, 0, 0)
		}
		g.slot(0, bufAt, 4)
		if err := g.mustCall(ctx, hd, methodOp(itest.ITest1, "test_obj_array_out"), object.Pack(0, 1, 0, 3)); err != nil {
			return err
		}
		for i := 1; i <= 3; i++ {
			out := handle.Handle(g.readSlot(i))
			o, ok := g.host.Lookup(out)
			if !ok {
				return fmt.Errorf("output handle %d not published", out)
			}
			if err := itest.Check(itest.AsITest1(o)); err != nil {
				return err
			}
			if err := g.mustCall(ctx, out, object.OpRelease, 0); err != nil {
				return err
			}
		}
		return expect("guest handles", g.host.Table().Len(), 1)
	})
}

func wasmEntrypoint(ctx context.Context, cfg *config.Config) error {
	return withGuest(ctx, cfg, func(g *guest) error {
		drv, err := g.export(itest.NewITest2())
		if err != nil {
			return err
		}
		target, err := g.export(itest.NewITest1(0))
		if err != nil {
			return err
		}
		g.slot(0, uint32(target), 0)
		return g.mustCall(ctx, drv, methodOp(itest.ITest2, "entrypoint"), object.Pack(0, 0, 1, 0))
	})
}

// wasmObjectInStruct sends a Holder from guest memory: the struct bytes in
// a buffer slot, its object as a handle in the following object slot.
func wasmObjectInStruct(ctx context.Context, cfg *config.Config) error {
	return withGuest(ctx, cfg, func(g *guest) error {
		drv, err := g.export(itest.NewITest2())
		if err != nil {
			return err
		}
		target, err := g.export(itest.NewITest1(0))
		if err != nil {
			return err
		}
		mem := g.mod.Memory()
		mem.Write(bufAt, make([]byte, 48))
		mem.WriteUint32Le(bufAt, 41)
		g.slot(0, bufAt, 24)
		g.slot(1, bufAt+24, 24)
		g.slot(2, uint32(target), 0)
		g.slot(3, 0, 0)
		if err := g.mustCall(ctx, drv, methodOp(itest.ITest2, "hold"), object.Pack(1, 1, 1, 1)); err != nil {
			return err
		}

		tag, _ := mem.ReadUint32Le(bufAt + 24)
		if err := expect("h_out.tag", tag, uint32(42)); err != nil {
			return err
		}
		out := handle.Handle(g.readSlot(3))
		o, ok := g.host.Lookup(out)
		if !ok {
			return fmt.Errorf("output handle %d not published", out)
		}
		if err := itest.Check(itest.AsITest1(o)); err != nil {
			return err
		}
		return g.mustCall(ctx, out, object.OpRelease, 0)
	})
}
