package itest

import (
	"github.com/wippyai/object-abi/object"
	"github.com/wippyai/object-abi/proxy"
)

// ITest1Proxy is the typed client side of ITest1.
type ITest1Proxy struct {
	proxy.Proxy
}

// AsITest1 wraps o without retaining it.
func AsITest1(o object.Object) ITest1Proxy {
	return ITest1Proxy{proxy.Wrap(o)}
}

func (p ITest1Proxy) call(r *proxy.Request) error {
	return r.Invoke(p.Object).Err()
}

func (p ITest1Proxy) TestF1(a uint32) (uint32, error) {
	r := proxy.NewRequest(mTestF1)
	if err := proxy.Put(r, "a", a); err != nil {
		return 0, err
	}
	if err := p.call(r); err != nil {
		return 0, err
	}
	return proxy.Get[uint32](r, "b")
}

func (p ITest1Proxy) InStruct(c Collection) error {
	r := proxy.NewRequest(mInStruct)
	if err := proxy.Put(r, "input", c); err != nil {
		return err
	}
	return p.call(r)
}

func (p ITest1Proxy) OutStruct() (Collection, error) {
	r := proxy.NewRequest(mOutStruct)
	if err := p.call(r); err != nil {
		return Collection{}, err
	}
	return proxy.Get[Collection](r, "output")
}

func (p ITest1Proxy) InSmallStruct(s SingleEncapsulated) error {
	r := proxy.NewRequest(mInSmallStruct)
	if err := proxy.Put(r, "input", s); err != nil {
		return err
	}
	return p.call(r)
}

func (p ITest1Proxy) OutSmallStruct() (SingleEncapsulated, error) {
	r := proxy.NewRequest(mOutSmallStruct)
	if err := p.call(r); err != nil {
		return SingleEncapsulated{}, err
	}
	return proxy.Get[SingleEncapsulated](r, "output")
}

func (p ITest1Proxy) SingleOut() (uint32, error) {
	r := proxy.NewRequest(mSingleOut)
	if err := p.call(r); err != nil {
		return 0, err
	}
	return proxy.Get[uint32](r, "output")
}

func (p ITest1Proxy) SingleIn(v uint32) error {
	r := proxy.NewRequest(mSingleIn)
	if err := proxy.Put(r, "input", v); err != nil {
		return err
	}
	return p.call(r)
}

// MultiplePrimitive sends empty side buffers and a null object alongside
// the two values.
func (p ITest1Proxy) MultiplePrimitive(input uint16, input2 uint32) (uint16, uint64, error) {
	r := proxy.NewRequest(mMultiplePrimitive)
	if err := proxy.Put(r, "input", input); err != nil {
		return 0, 0, err
	}
	if err := proxy.Put(r, "input2", input2); err != nil {
		return 0, 0, err
	}
	if err := p.call(r); err != nil {
		return 0, 0, err
	}
	if o, err := proxy.Object(r, "unused_obj_out"); err == nil {
		object.ReleaseIf(o)
	}
	out, err := proxy.Get[uint16](r, "output")
	if err != nil {
		return 0, 0, err
	}
	out2, err := proxy.Get[uint64](r, "output2")
	return out, out2, err
}

func (p ITest1Proxy) PrimitivePlusStructIn(s SingleEncapsulated, magic uint32) error {
	r := proxy.NewRequest(mPrimitivePlusStructIn)
	if err := proxy.Put(r, "encapsulated", s); err != nil {
		return err
	}
	if err := proxy.Put(r, "magic", magic); err != nil {
		return err
	}
	return p.call(r)
}

func (p ITest1Proxy) PrimitivePlusStructOut() (SingleEncapsulated, uint32, error) {
	r := proxy.NewRequest(mPrimitivePlusStructOut)
	if err := p.call(r); err != nil {
		return SingleEncapsulated{}, 0, err
	}
	s, err := proxy.Get[SingleEncapsulated](r, "encapsulated")
	if err != nil {
		return s, 0, err
	}
	magic, err := proxy.Get[uint32](r, "magic")
	return s, magic, err
}

func (p ITest1Proxy) BundledWithUnbundled(b SingleEncapsulated, magic uint32, u Collection) error {
	r := proxy.NewRequest(mBundledWithUnbundled)
	if err := proxy.Put(r, "bundled", b); err != nil {
		return err
	}
	if err := proxy.Put(r, "magic", magic); err != nil {
		return err
	}
	if err := proxy.Put(r, "unbundled", u); err != nil {
		return err
	}
	return p.call(r)
}

func (p ITest1Proxy) StructArrayIn(in []Collection) error {
	r := proxy.NewRequest(mStructArrayIn)
	if err := proxy.PutSlice(r, "s_in", in); err != nil {
		return err
	}
	return p.call(r)
}

// StructArrayOut asks for n elements and returns what the callee wrote.
func (p ITest1Proxy) StructArrayOut(n int) ([]Collection, error) {
	r := proxy.NewRequest(mStructArrayOut)
	if err := proxy.Reserve[Collection](r, "s_out", n); err != nil {
		return nil, err
	}
	if err := p.call(r); err != nil {
		return nil, err
	}
	return proxy.GetSlice[Collection](r, "s_out")
}

func (p ITest1Proxy) WellDocumentedMethod(foo uint32) (uint32, error) {
	r := proxy.NewRequest(mWellDocumented)
	if err := proxy.Put(r, "foo", foo); err != nil {
		return 0, err
	}
	if err := p.call(r); err != nil {
		return 0, err
	}
	return proxy.Get[uint32](r, "bar")
}

// TestObjArrayIn passes exactly three objects; null entries are allowed.
func (p ITest1Proxy) TestObjArrayIn(objs []object.Object) (uint32, error) {
	r := proxy.NewRequest(mObjArrayIn)
	if err := proxy.PutObjects(r, "o_in", objs); err != nil {
		return 0, err
	}
	if err := p.call(r); err != nil {
		return 0, err
	}
	return proxy.Get[uint32](r, "a")
}

// TestObjArrayOut returns three objects owned by the caller.
func (p ITest1Proxy) TestObjArrayOut() ([]object.Object, uint32, error) {
	r := proxy.NewRequest(mObjArrayOut)
	if err := p.call(r); err != nil {
		return nil, 0, err
	}
	return objectsWith[uint32](r, "o_out", "a")
}

// objectsWith reads an owned object array and one value from a finished
// request. The objects are released when the value cannot be read.
func objectsWith[V any](r *proxy.Request, objs, value string) ([]object.Object, V, error) {
	var zero V
	list, err := proxy.Objects(r, objs)
	if err != nil {
		return nil, zero, err
	}
	v, err := proxy.Get[V](r, value)
	if err != nil {
		for _, o := range list {
			object.ReleaseIf(o)
		}
		return nil, zero, err
	}
	return list, v, nil
}

// ITest3Proxy is the typed client side of ITest3.
type ITest3Proxy struct {
	ITest1Proxy
}

// AsITest3 wraps o without retaining it.
func AsITest3(o object.Object) ITest3Proxy {
	return ITest3Proxy{AsITest1(o)}
}

func (p ITest3Proxy) ExtraTest3() (uint32, error) {
	r := proxy.NewRequest(mExtraTest3)
	if err := p.call(r); err != nil {
		return 0, err
	}
	return proxy.Get[uint32](r, "flag")
}

// ITest2Proxy is the typed client side of ITest2.
type ITest2Proxy struct {
	proxy.Proxy
}

// AsITest2 wraps o without retaining it.
func AsITest2(o object.Object) ITest2Proxy {
	return ITest2Proxy{proxy.Wrap(o)}
}

func (p ITest2Proxy) Entrypoint(o object.Object) error {
	r := proxy.NewRequest(mEntrypoint)
	if err := proxy.PutObject(r, "o", o); err != nil {
		return err
	}
	return r.Invoke(p.Object).Err()
}

// Hold sends h and returns the holder it comes back in. The caller owns
// the returned object.
func (p ITest2Proxy) Hold(h Holder) (Holder, error) {
	r := proxy.NewRequest(mHold)
	if err := proxy.Put(r, "h_in", h); err != nil {
		return Holder{}, err
	}
	if err := r.Invoke(p.Object).Err(); err != nil {
		return Holder{}, err
	}
	return proxy.Get[Holder](r, "h_out")
}
