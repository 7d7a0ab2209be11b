package layout

import (
	"strconv"
	"strings"
)

// Kind identifies the shape of a Type.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindBool
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindFloat32
	KindFloat64
	KindArray
	KindStruct
	KindObject
)

var kindNames = [...]string{
	KindInvalid: "invalid",
	KindBool:    "bool",
	KindUint8:   "uint8",
	KindUint16:  "uint16",
	KindUint32:  "uint32",
	KindUint64:  "uint64",
	KindInt8:    "int8",
	KindInt16:   "int16",
	KindInt32:   "int32",
	KindInt64:   "int64",
	KindFloat32: "float32",
	KindFloat64: "float64",
	KindArray:   "array",
	KindStruct:  "struct",
	KindObject:  "object",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// IsPrimitive reports whether k is a scalar kind.
func (k Kind) IsPrimitive() bool {
	return k >= KindBool && k <= KindFloat64
}

// Type describes a fixed-size value crossing an argument slot.
type Type struct {
	Kind   Kind
	Name   string  // struct name, or interface of an object
	Elem   *Type   // array element
	Len    int     // array length
	Fields []Field // struct fields in declaration order
}

// Field is one member of a struct Type.
type Field struct {
	Name string
	Type *Type
}

// Primitive types.
var (
	Bool    = &Type{Kind: KindBool}
	Uint8   = &Type{Kind: KindUint8}
	Uint16  = &Type{Kind: KindUint16}
	Uint32  = &Type{Kind: KindUint32}
	Uint64  = &Type{Kind: KindUint64}
	Int8    = &Type{Kind: KindInt8}
	Int16   = &Type{Kind: KindInt16}
	Int32   = &Type{Kind: KindInt32}
	Int64   = &Type{Kind: KindInt64}
	Float32 = &Type{Kind: KindFloat32}
	Float64 = &Type{Kind: KindFloat64}
)

var primitives = map[string]*Type{
	"bool":    Bool,
	"uint8":   Uint8,
	"uint16":  Uint16,
	"uint32":  Uint32,
	"uint64":  Uint64,
	"int8":    Int8,
	"int16":   Int16,
	"int32":   Int32,
	"int64":   Int64,
	"float32": Float32,
	"float64": Float64,

	// short spellings used by declaration files
	"u8":  Uint8,
	"u16": Uint16,
	"u32": Uint32,
	"u64": Uint64,
	"i8":  Int8,
	"i16": Int16,
	"i32": Int32,
	"i64": Int64,
	"f32": Float32,
	"f64": Float64,
}

// ParsePrimitive returns the primitive type spelled name.
func ParsePrimitive(name string) (*Type, bool) {
	t, ok := primitives[name]
	return t, ok
}

// Object is an object reference embedded in a struct. It occupies
// ObjectSize bytes that are always zero on the wire; the reference itself
// travels in an object slot.
var Object = &Type{Kind: KindObject}

// ObjectOf returns an embedded object type expecting interface iface.
func ObjectOf(iface string) *Type {
	if iface == "" {
		return Object
	}
	return &Type{Kind: KindObject, Name: iface}
}

// ArrayOf returns a fixed-length array of n elements.
func ArrayOf(elem *Type, n int) *Type {
	return &Type{Kind: KindArray, Elem: elem, Len: n}
}

// StructOf returns a struct type.
func StructOf(name string, fields ...Field) *Type {
	return &Type{Kind: KindStruct, Name: name, Fields: fields}
}

// String renders t the way declaration files spell it.
func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	switch t.Kind {
	case KindArray:
		return t.Elem.String() + "[" + strconv.Itoa(t.Len) + "]"
	case KindObject:
		if t.Name != "" {
			return "object:" + t.Name
		}
		return "object"
	case KindStruct:
		if t.Name != "" {
			return t.Name
		}
		parts := make([]string, len(t.Fields))
		for i, f := range t.Fields {
			parts[i] = f.Name + " " + f.Type.String()
		}
		return "struct{" + strings.Join(parts, "; ") + "}"
	default:
		return t.Kind.String()
	}
}

// Same reports whether a and b have the same memory representation.
// Names are ignored and bool is interchangeable with uint8.
func Same(a, b *Type) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	ka, kb := a.Kind, b.Kind
	if ka == KindBool {
		ka = KindUint8
	}
	if kb == KindBool {
		kb = KindUint8
	}
	if ka != kb {
		return false
	}
	switch ka {
	case KindArray:
		return a.Len == b.Len && Same(a.Elem, b.Elem)
	case KindStruct:
		if len(a.Fields) != len(b.Fields) {
			return false
		}
		for i := range a.Fields {
			if !Same(a.Fields[i].Type, b.Fields[i].Type) {
				return false
			}
		}
	}
	return true
}

// ObjectField locates one object embedded in a value.
type ObjectField struct {
	Path      string // field path, with [i] for array elements
	Offset    uint32
	Interface string
}

// HasObjects reports whether t embeds any object.
func HasObjects(t *Type) bool {
	if t == nil || t.Kind.IsPrimitive() {
		return false
	}
	switch t.Kind {
	case KindObject:
		return true
	case KindArray:
		return t.Len > 0 && HasObjects(t.Elem)
	case KindStruct:
		for _, f := range t.Fields {
			if HasObjects(f.Type) {
				return true
			}
		}
	}
	return false
}

// Objects lists the objects embedded in t in layout order.
func Objects(t *Type) []ObjectField {
	if !HasObjects(t) {
		return nil
	}
	var out []ObjectField
	collectObjects(t, "", 0, &out)
	return out
}

func collectObjects(t *Type, path string, base uint32, out *[]ObjectField) {
	switch t.Kind {
	case KindObject:
		*out = append(*out, ObjectField{Path: path, Offset: base, Interface: t.Name})
	case KindArray:
		size := uint32(SizeOf(t.Elem))
		for i := 0; i < t.Len; i++ {
			collectObjects(t.Elem, path+"["+strconv.Itoa(i)+"]", base+uint32(i)*size, out)
		}
	case KindStruct:
		info := Calc(t)
		for i, f := range t.Fields {
			p := f.Name
			if path != "" {
				p = path + "." + f.Name
			}
			collectObjects(f.Type, p, base+info.Offsets[i], out)
		}
	}
}
