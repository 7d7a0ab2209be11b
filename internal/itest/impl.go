package itest

import (
	"sync/atomic"

	"github.com/wippyai/object-abi/dispatch"
	"github.com/wippyai/object-abi/object"
)

var live atomic.Int64

// Live returns the number of fixture implementations not yet destroyed.
func Live() int64 { return live.Load() }

func track(r *object.Refs) {
	live.Add(1)
	r.Init(func() { live.Add(-1) })
}

// Test1 is the reference ITest1 (and ITest3) implementation.
type Test1 struct {
	object.Refs
	Value uint32
}

// NewTest1 returns an implementation holding one reference.
func NewTest1(value uint32) *Test1 {
	t := &Test1{Value: value}
	track(&t.Refs)
	return t
}

func (t *Test1) TestF1(a uint32) (uint32, error) {
	return t.Value + a + 1000, nil
}

func (t *Test1) InStruct(c Collection) error {
	if c != Truth {
		return Mismatch
	}
	return nil
}

func (t *Test1) OutStruct() (Collection, error) {
	return Truth, nil
}

func (t *Test1) InSmallStruct(s SingleEncapsulated) error {
	if s != Truth2 {
		return Mismatch
	}
	return nil
}

func (t *Test1) OutSmallStruct() (SingleEncapsulated, error) {
	return Truth2, nil
}

func (t *Test1) SingleOut() (uint32, error) {
	return SuccessFlag, nil
}

func (t *Test1) SingleIn(v uint32) error {
	if v != SuccessFlag {
		return Mismatch
	}
	return nil
}

func (t *Test1) MultiplePrimitive(input uint16, input2 uint32) (uint16, uint64, error) {
	if input != uint16(SuccessFlag) || input2 != SuccessFlag {
		return 0, 0, Mismatch
	}
	return uint16(SuccessFlag), uint64(SuccessFlag), nil
}

func (t *Test1) PrimitivePlusStructIn(s SingleEncapsulated, magic uint32) error {
	if s.Inner != SuccessFlag || magic != SuccessFlag {
		return Mismatch
	}
	return nil
}

func (t *Test1) PrimitivePlusStructOut() (SingleEncapsulated, uint32, error) {
	return SingleEncapsulated{Inner: SuccessFlag}, SuccessFlag, nil
}

func (t *Test1) BundledWithUnbundled(b SingleEncapsulated, magic uint32, u Collection) error {
	if b.Inner != SuccessFlag || magic != SuccessFlag || u != Truth {
		return Mismatch
	}
	return nil
}

func (t *Test1) StructArrayIn(in []Collection) error {
	for _, c := range in {
		if c != Truth {
			return Mismatch
		}
	}
	return nil
}

// StructArrayOut fills every element of out with Truth.
func (t *Test1) StructArrayOut(out []Collection) error {
	for i := range out {
		out[i] = Truth
	}
	return nil
}

// WellDocumentedMethod echoes SuccessFlag and rejects anything else.
func (t *Test1) WellDocumentedMethod(foo uint32) (uint32, error) {
	if foo != SuccessFlag {
		return 0, Mismatch
	}
	return SuccessFlag, nil
}

// TestObjArrayIn checks every non-null object in the array. Null entries
// are skipped.
func (t *Test1) TestObjArrayIn(objs []object.Object) (uint32, error) {
	for _, o := range objs {
		if o.IsNull() {
			continue
		}
		if err := Check(AsITest1(o)); err != nil {
			return 0, err
		}
	}
	return SuccessFlag, nil
}

// TestObjArrayOut returns three new objects; the caller owns them.
func (t *Test1) TestObjArrayOut() ([]object.Object, uint32, error) {
	return []object.Object{NewITest1(0), NewITest1(1), NewITest1(2)}, SuccessFlag, nil
}

func (t *Test1) ExtraTest3() (uint32, error) {
	return SuccessFlag, nil
}

// Test2 is the reference ITest2 implementation.
type Test2 struct {
	object.Refs
}

// NewTest2 returns an implementation holding one reference.
func NewTest2() *Test2 {
	t := &Test2{}
	track(&t.Refs)
	return t
}

// Entrypoint exercises o the way a foreign caller would: single object
// checks, an object array with a null hole, and freshly created outputs.
func (t *Test2) Entrypoint(o object.Object) error {
	p := AsITest1(o)
	if err := Check(p); err != nil {
		return err
	}

	in := []object.Object{NewITest1(1), object.Null, NewITest1(2)}
	flag, err := p.TestObjArrayIn(in)
	for _, x := range in {
		object.ReleaseIf(x)
	}
	if err != nil {
		return err
	}
	if flag != SuccessFlag {
		return Mismatch
	}

	outs, flag, err := p.TestObjArrayOut()
	if err != nil {
		return err
	}
	defer func() {
		for _, x := range outs {
			object.ReleaseIf(x)
		}
	}()
	if flag != SuccessFlag {
		return Mismatch
	}
	for _, x := range outs {
		if err := Check(AsITest1(x)); err != nil {
			return err
		}
	}
	return nil
}

// Hold answers a holder with the same object, one more reference and the
// next tag. A holder without an object is a mismatch.
func (t *Test2) Hold(h Holder) (Holder, error) {
	if h.Obj.IsNull() {
		return Holder{}, Mismatch
	}
	if st := h.Obj.Retain(); st != object.OK {
		return Holder{}, st
	}
	return Holder{Tag: h.Tag + 1, Obj: h.Obj}, nil
}

var (
	test1Dispatcher *dispatch.Dispatcher[*Test1]
	test3Dispatcher *dispatch.Dispatcher[*Test1]
	test2Dispatcher *dispatch.Dispatcher[*Test2]
)

func init() {
	test1Dispatcher = dispatch.Must(ITest1, test1Handlers)

	h3 := dispatch.Handlers[*Test1]{"extra_test3": extraTest3}
	for name, h := range test1Handlers {
		h3[name] = h
	}
	test3Dispatcher = dispatch.Must(ITest3, h3)

	test2Dispatcher = dispatch.Must(ITest2, test2Handlers)
}

// NewITest1 returns a new ITest1 object holding one reference.
func NewITest1(value uint32) object.Object {
	return test1Dispatcher.Object(NewTest1(value))
}

// NewITest3 returns a new ITest3 object holding one reference.
func NewITest3(value uint32) object.Object {
	return test3Dispatcher.Object(NewTest1(value))
}

// NewITest2 returns a new ITest2 object holding one reference.
func NewITest2() object.Object {
	return test2Dispatcher.Object(NewTest2())
}
