// Package itest holds the fixture interfaces used by end-to-end tests and
// the CLI self test: descriptors, dispatcher bindings, typed proxies and
// reference implementations for ITest1, ITest2 and ITest3.
package itest

import (
	"github.com/wippyai/object-abi/iface"
	"github.com/wippyai/object-abi/layout"
	"github.com/wippyai/object-abi/object"
)

// SuccessFlag is the value fixture methods accept and return on success.
const SuccessFlag uint32 = 0xdead

// Mismatch is returned when an implementation receives unexpected input.
const Mismatch = object.ErrorUserBase

// Collection is the four-field reference struct.
type Collection struct {
	A uint32
	B uint32
	C uint32
	D uint32
}

// SingleEncapsulated wraps one value in a struct.
type SingleEncapsulated struct {
	Inner uint32
}

// Holder carries an ITest1 reference inside a struct. Tag is followed by
// padding so Obj starts at offset 8.
type Holder struct {
	Tag uint32
	Obj object.Object
}

var (
	// Truth is the Collection every in_struct call must receive.
	Truth = Collection{A: 0, B: 1, C: 2, D: 3}

	// Truth2 is the SingleEncapsulated in_small_struct must receive.
	Truth2 = SingleEncapsulated{Inner: 0}
)

var (
	collectionType = mustType[Collection]()
	encapType      = mustType[SingleEncapsulated]()
	holderType     = mustType[Holder]()
)

func mustType[V any]() *layout.Type {
	t, err := layout.TypeFor[V]()
	if err != nil {
		panic(err)
	}
	return t
}

// ITest1 methods.
var (
	mTestF1 = iface.NewMethod(0, "test_f1",
		iface.In("a", layout.Uint32), iface.Out("b", layout.Uint32))
	mInStruct = iface.NewMethod(1, "in_struct",
		iface.In("input", collectionType))
	mOutStruct = iface.NewMethod(2, "out_struct",
		iface.Out("output", collectionType))
	mInSmallStruct = iface.NewMethod(3, "in_small_struct",
		iface.In("input", encapType))
	mOutSmallStruct = iface.NewMethod(4, "out_small_struct",
		iface.Out("output", encapType))
	mSingleOut = iface.NewMethod(5, "single_out",
		iface.Out("output", layout.Uint32))
	mSingleIn = iface.NewMethod(6, "single_in",
		iface.In("input", layout.Uint32))
	mMultiplePrimitive = iface.NewMethod(7, "multiple_primitive",
		iface.InBuffer("unused_in"),
		iface.OutBuffer("unused_out"),
		iface.In("input", layout.Uint16),
		iface.InObject("unused_obj_in", ""),
		iface.In("input2", layout.Uint32),
		iface.OutBuffer("unused_out2"),
		iface.Out("output", layout.Uint16),
		iface.OutObject("unused_obj_out", ""),
		iface.Out("output2", layout.Uint64))
	mPrimitivePlusStructIn = iface.NewMethod(8, "primitive_plus_struct_in",
		iface.In("encapsulated", encapType), iface.In("magic", layout.Uint32))
	mPrimitivePlusStructOut = iface.NewMethod(9, "primitive_plus_struct_out",
		iface.Out("encapsulated", encapType), iface.Out("magic", layout.Uint32))
	mBundledWithUnbundled = iface.NewMethod(10, "bundled_with_unbundled",
		iface.In("bundled", encapType), iface.In("magic", layout.Uint32), iface.In("unbundled", collectionType))
	mStructArrayIn = iface.NewMethod(11, "struct_array_in",
		iface.InArray("s_in", collectionType))
	mStructArrayOut = iface.NewMethod(12, "struct_array_out",
		iface.OutArray("s_out", collectionType))
	mWellDocumented = iface.NewMethod(13, "well_documented_method",
		iface.In("foo", layout.Uint32), iface.Out("bar", layout.Uint32))
	mObjArrayIn = iface.NewMethod(14, "test_obj_array_in",
		iface.InObjects("o_in", "ITest1", 3), iface.Out("a", layout.Uint32))
	mObjArrayOut = iface.NewMethod(15, "test_obj_array_out",
		iface.OutObjects("o_out", "ITest1", 3), iface.Out("a", layout.Uint32))
)

// ITest1 is the main fixture interface.
var ITest1 = iface.MustNew("ITest1", nil,
	mTestF1,
	mInStruct,
	mOutStruct,
	mInSmallStruct,
	mOutSmallStruct,
	mSingleOut,
	mSingleIn,
	mMultiplePrimitive,
	mPrimitivePlusStructIn,
	mPrimitivePlusStructOut,
	mBundledWithUnbundled,
	mStructArrayIn,
	mStructArrayOut,
	mWellDocumented,
	mObjArrayIn,
	mObjArrayOut,
)

var mExtraTest3 = iface.NewMethod(16, "extra_test3", iface.Out("flag", layout.Uint32))

// ITest3 extends ITest1 with one method.
var ITest3 = iface.MustNew("ITest3", ITest1, mExtraTest3)

var (
	mEntrypoint = iface.NewMethod(0, "entrypoint", iface.InObject("o", "ITest1"))
	mHold       = iface.NewMethod(1, "hold", iface.In("h_in", holderType), iface.Out("h_out", holderType))
)

// ITest2 drives an ITest1 object through its own proxy and passes objects
// inside structs.
var ITest2 = iface.MustNew("ITest2", nil, mEntrypoint, mHold)
