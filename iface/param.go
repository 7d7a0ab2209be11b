package iface

import (
	"strconv"

	"github.com/wippyai/object-abi/layout"
)

// Dir is the direction of a parameter.
type Dir uint8

const (
	DirIn Dir = iota
	DirOut
)

func (d Dir) String() string {
	if d == DirOut {
		return "out"
	}
	return "in"
}

// ParamKind selects how a parameter maps onto argument slots.
type ParamKind uint8

const (
	// KindValue is a fixed-size value in one buffer slot (or a bundle).
	KindValue ParamKind = iota
	// KindArray is a variable-length run of fixed-size elements in one
	// buffer slot.
	KindArray
	// KindBuffer is an untyped byte buffer in one buffer slot.
	KindBuffer
	// KindObject is a single object slot.
	KindObject
	// KindObjectArray is a fixed-length run of object slots.
	KindObjectArray
)

var paramKindNames = [...]string{
	KindValue:       "value",
	KindArray:       "array",
	KindBuffer:      "buffer",
	KindObject:      "object",
	KindObjectArray: "object-array",
}

func (k ParamKind) String() string {
	if int(k) < len(paramKindNames) {
		return paramKindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// IsObject reports whether k occupies object slots.
func (k ParamKind) IsObject() bool {
	return k == KindObject || k == KindObjectArray
}

// SmallSize is the largest value that may travel in a bundle.
const SmallSize = 16

// Param describes one declared parameter.
type Param struct {
	Name      string
	Dir       Dir
	Kind      ParamKind
	Type      *layout.Type // value type, or element type of an array
	Count     int          // length of an object array
	Interface string       // expected interface of object params, informational
}

// In declares an input value.
func In(name string, t *layout.Type) Param {
	return Param{Name: name, Dir: DirIn, Kind: KindValue, Type: t}
}

// Out declares an output value.
func Out(name string, t *layout.Type) Param {
	return Param{Name: name, Dir: DirOut, Kind: KindValue, Type: t}
}

// InArray declares a variable-length input array of elem.
func InArray(name string, elem *layout.Type) Param {
	return Param{Name: name, Dir: DirIn, Kind: KindArray, Type: elem}
}

// OutArray declares a variable-length output array of elem.
func OutArray(name string, elem *layout.Type) Param {
	return Param{Name: name, Dir: DirOut, Kind: KindArray, Type: elem}
}

// InBuffer declares an untyped input buffer.
func InBuffer(name string) Param {
	return Param{Name: name, Dir: DirIn, Kind: KindBuffer, Type: layout.Uint8}
}

// OutBuffer declares an untyped output buffer.
func OutBuffer(name string) Param {
	return Param{Name: name, Dir: DirOut, Kind: KindBuffer, Type: layout.Uint8}
}

// InObject declares an input object.
func InObject(name, iface string) Param {
	return Param{Name: name, Dir: DirIn, Kind: KindObject, Count: 1, Interface: iface}
}

// OutObject declares an output object.
func OutObject(name, iface string) Param {
	return Param{Name: name, Dir: DirOut, Kind: KindObject, Count: 1, Interface: iface}
}

// InObjects declares a fixed-length input object array.
func InObjects(name, iface string, n int) Param {
	return Param{Name: name, Dir: DirIn, Kind: KindObjectArray, Count: n, Interface: iface}
}

// OutObjects declares a fixed-length output object array.
func OutObjects(name, iface string, n int) Param {
	return Param{Name: name, Dir: DirOut, Kind: KindObjectArray, Count: n, Interface: iface}
}

// Size returns the exact byte size of a value param, or the element size of
// an array or buffer param. Object params report 0.
func (p Param) Size() int {
	if p.Kind.IsObject() || p.Type == nil {
		return 0
	}
	return layout.SizeOf(p.Type)
}

// Small reports whether p is a value eligible for bundling. Values with
// embedded objects always take their own slot.
func (p Param) Small() bool {
	return p.Kind == KindValue && p.Type != nil && p.Size() <= SmallSize && !layout.HasObjects(p.Type)
}

// Embedded returns the objects carried inside a value param. Each one
// takes an object slot after the value's buffer slot.
func (p Param) Embedded() []layout.ObjectField {
	if p.Kind != KindValue {
		return nil
	}
	return layout.Objects(p.Type)
}

// TypeString renders the param type in declaration syntax.
func (p Param) TypeString() string {
	switch p.Kind {
	case KindArray:
		return p.Type.String() + "[]"
	case KindBuffer:
		return "buffer"
	case KindObject:
		if p.Interface != "" {
			return "object:" + p.Interface
		}
		return "object"
	case KindObjectArray:
		s := "object"
		if p.Interface != "" {
			s += ":" + p.Interface
		}
		return s + "[" + strconv.Itoa(p.Count) + "]"
	default:
		return p.Type.String()
	}
}

func (p Param) String() string {
	return p.Dir.String() + " " + p.TypeString() + " " + p.Name
}
