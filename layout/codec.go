package layout

import (
	"encoding/binary"
	"fmt"
	"math"
	"reflect"
	"sync"

	"github.com/wippyai/object-abi/errors"
	"github.com/wippyai/object-abi/object"
)

var goTypes sync.Map // reflect.Type -> *Type

var objectType = reflect.TypeFor[object.Object]()

// TypeOf derives the layout Type of a Go type. Exported struct fields are
// laid out in declaration order; an `abi:"name"` tag renames a field.
// object.Object fields become embedded objects. Platform-sized integers, pointers, slices, maps and strings are rejected.
func TypeOf(rt reflect.Type) (*Type, error) {
	if rt == nil {
		return nil, errors.NilPointer(errors.PhaseMarshal, nil, "reflect.Type")
	}
	if cached, ok := goTypes.Load(rt); ok {
		return cached.(*Type), nil
	}
	t, err := typeOf(rt, nil)
	if err != nil {
		return nil, err
	}
	actual, _ := goTypes.LoadOrStore(rt, t)
	return actual.(*Type), nil
}

// TypeFor is TypeOf for a type parameter.
func TypeFor[V any]() (*Type, error) {
	return TypeOf(reflect.TypeFor[V]())
}

func typeOf(rt reflect.Type, path []string) (*Type, error) {
	if rt == objectType {
		return Object, nil
	}
	switch rt.Kind() {
	case reflect.Bool:
		return Bool, nil
	case reflect.Uint8:
		return Uint8, nil
	case reflect.Uint16:
		return Uint16, nil
	case reflect.Uint32:
		return Uint32, nil
	case reflect.Uint64:
		return Uint64, nil
	case reflect.Int8:
		return Int8, nil
	case reflect.Int16:
		return Int16, nil
	case reflect.Int32:
		return Int32, nil
	case reflect.Int64:
		return Int64, nil
	case reflect.Float32:
		return Float32, nil
	case reflect.Float64:
		return Float64, nil
	case reflect.Array:
		elem, err := typeOf(rt.Elem(), append(path, "[]"))
		if err != nil {
			return nil, err
		}
		return ArrayOf(elem, rt.Len()), nil
	case reflect.Struct:
		t := &Type{Kind: KindStruct, Name: rt.Name()}
		for i := 0; i < rt.NumField(); i++ {
			f := rt.Field(i)
			if !f.IsExported() {
				continue
			}
			name := f.Name
			if tag := f.Tag.Get("abi"); tag != "" {
				name = tag
			}
			ft, err := typeOf(f.Type, append(path, name))
			if err != nil {
				return nil, err
			}
			t.Fields = append(t.Fields, Field{Name: name, Type: ft})
		}
		return t, nil
	default:
		return nil, errors.New(errors.PhaseMarshal, errors.KindUnsupported).
			Path(path...).
			GoType(rt.String()).
			Detail("no fixed-size representation").
			Build()
	}
}

// Marshal encodes v. A slice encodes as its elements back to back.
func Marshal(v any) ([]byte, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, errors.NilPointer(errors.PhaseMarshal, nil, rv.Type().String())
		}
		rv = rv.Elem()
	}
	n, elem, err := measure(rv)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, n*SizeOf(elem))
	encodeValue(buf, rv, elem)
	return buf, nil
}

// MarshalTo encodes v into dst, which must be exactly the encoded size.
// Padding bytes are zeroed.
func MarshalTo(dst []byte, v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return errors.NilPointer(errors.PhaseMarshal, nil, rv.Type().String())
		}
		rv = rv.Elem()
	}
	n, elem, err := measure(rv)
	if err != nil {
		return err
	}
	if want := n * SizeOf(elem); len(dst) != want {
		return errors.SizeMismatch(errors.PhaseMarshal, []string{elem.String()}, want, len(dst), object.ErrorSizeOut)
	}
	encodeValue(dst, rv, elem)
	return nil
}

// Unmarshal decodes src into the value ptr points to. src must be exactly
// the encoded size, or a multiple of the element size when ptr points to
// a slice.
func Unmarshal(src []byte, ptr any) error {
	rv := reflect.ValueOf(ptr)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return errors.NilPointer(errors.PhaseUnmarshal, nil, fmt.Sprintf("%T", ptr))
	}
	rv = rv.Elem()

	if rv.Kind() == reflect.Slice {
		elem, err := TypeOf(rv.Type().Elem())
		if err != nil {
			return err
		}
		size := SizeOf(elem)
		if size == 0 {
			return errors.Unsupported(errors.PhaseUnmarshal, "slice of zero-size elements")
		}
		if len(src)%size != 0 {
			return errors.SizeMismatch(errors.PhaseUnmarshal, []string{elem.String() + "[]"}, (len(src)/size+1)*size, len(src), object.ErrorInvalid)
		}
		n := len(src) / size
		s := reflect.MakeSlice(rv.Type(), n, n)
		for i := 0; i < n; i++ {
			decode(src[i*size:], s.Index(i), elem)
		}
		rv.Set(s)
		return nil
	}

	t, err := TypeOf(rv.Type())
	if err != nil {
		return err
	}
	if want := SizeOf(t); len(src) != want {
		return errors.SizeMismatch(errors.PhaseUnmarshal, []string{t.String()}, want, len(src), object.ErrorInvalid)
	}
	decode(src, rv, t)
	return nil
}

// measure returns the element count and element type of rv. Non-slices
// count as one element.
func measure(rv reflect.Value) (int, *Type, error) {
	if !rv.IsValid() {
		return 0, nil, errors.NilPointer(errors.PhaseMarshal, nil, "nil")
	}
	if rv.Kind() == reflect.Slice {
		elem, err := TypeOf(rv.Type().Elem())
		if err != nil {
			return 0, nil, err
		}
		return rv.Len(), elem, nil
	}
	t, err := TypeOf(rv.Type())
	if err != nil {
		return 0, nil, err
	}
	return 1, t, nil
}

func encodeValue(dst []byte, rv reflect.Value, elem *Type) {
	clear(dst)
	if rv.Kind() != reflect.Slice {
		encode(dst, rv, elem)
		return
	}
	size := SizeOf(elem)
	for i := 0; i < rv.Len(); i++ {
		encode(dst[i*size:], rv.Index(i), elem)
	}
}

func encode(dst []byte, v reflect.Value, t *Type) {
	le := binary.LittleEndian
	switch t.Kind {
	case KindBool:
		if v.Bool() {
			dst[0] = 1
		}
	case KindUint8:
		dst[0] = uint8(v.Uint())
	case KindUint16:
		le.PutUint16(dst, uint16(v.Uint()))
	case KindUint32:
		le.PutUint32(dst, uint32(v.Uint()))
	case KindUint64:
		le.PutUint64(dst, v.Uint())
	case KindInt8:
		dst[0] = uint8(v.Int())
	case KindInt16:
		le.PutUint16(dst, uint16(v.Int()))
	case KindInt32:
		le.PutUint32(dst, uint32(v.Int()))
	case KindInt64:
		le.PutUint64(dst, uint64(v.Int()))
	case KindFloat32:
		le.PutUint32(dst, math.Float32bits(float32(v.Float())))
	case KindFloat64:
		le.PutUint64(dst, math.Float64bits(v.Float()))
	case KindObject:
		// zero on the wire
	case KindArray:
		size := SizeOf(t.Elem)
		for i := 0; i < t.Len; i++ {
			encode(dst[i*size:], v.Index(i), t.Elem)
		}
	case KindStruct:
		info := Calc(t)
		j := 0
		for i := 0; i < v.NumField(); i++ {
			if !v.Type().Field(i).IsExported() {
				continue
			}
			encode(dst[info.Offsets[j]:], v.Field(i), t.Fields[j].Type)
			j++
		}
	}
}

func decode(src []byte, v reflect.Value, t *Type) {
	le := binary.LittleEndian
	switch t.Kind {
	case KindBool:
		v.SetBool(src[0] != 0)
	case KindUint8:
		v.SetUint(uint64(src[0]))
	case KindUint16:
		v.SetUint(uint64(le.Uint16(src)))
	case KindUint32:
		v.SetUint(uint64(le.Uint32(src)))
	case KindUint64:
		v.SetUint(le.Uint64(src))
	case KindInt8:
		v.SetInt(int64(int8(src[0])))
	case KindInt16:
		v.SetInt(int64(int16(le.Uint16(src))))
	case KindInt32:
		v.SetInt(int64(int32(le.Uint32(src))))
	case KindInt64:
		v.SetInt(int64(le.Uint64(src)))
	case KindFloat32:
		v.SetFloat(float64(math.Float32frombits(le.Uint32(src))))
	case KindFloat64:
		v.SetFloat(math.Float64frombits(le.Uint64(src)))
	case KindObject:
		v.Set(reflect.Zero(v.Type()))
	case KindArray:
		size := SizeOf(t.Elem)
		for i := 0; i < t.Len; i++ {
			decode(src[i*size:], v.Index(i), t.Elem)
		}
	case KindStruct:
		info := Calc(t)
		j := 0
		for i := 0; i < v.NumField(); i++ {
			if !v.Type().Field(i).IsExported() {
				continue
			}
			decode(src[info.Offsets[j]:], v.Field(i), t.Fields[j].Type)
			j++
		}
	}
}

// ExtractObjects returns the objects embedded in v in layout order. The
// encoded bytes of v never carry them.
func ExtractObjects(v any) ([]object.Object, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, errors.NilPointer(errors.PhaseMarshal, nil, rv.Type().String())
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil, errors.NilPointer(errors.PhaseMarshal, nil, "nil")
	}
	t, err := TypeOf(rv.Type())
	if err != nil {
		return nil, err
	}
	if !HasObjects(t) {
		return nil, nil
	}
	var out []object.Object
	walkObjects(rv, t, func(f reflect.Value) {
		out = append(out, f.Interface().(object.Object))
	})
	return out, nil
}

// InjectObjects stores objs into the objects embedded in the value ptr
// points to, in layout order.
func InjectObjects(ptr any, objs []object.Object) error {
	rv := reflect.ValueOf(ptr)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return errors.NilPointer(errors.PhaseUnmarshal, nil, fmt.Sprintf("%T", ptr))
	}
	rv = rv.Elem()
	t, err := TypeOf(rv.Type())
	if err != nil {
		return err
	}
	if want := len(Objects(t)); want != len(objs) {
		return errors.New(errors.PhaseUnmarshal, errors.KindShape).
			Type(t.String()).
			Status(object.ErrorInvalid).
			Detail("want %d objects, got %d", want, len(objs)).
			Build()
	}
	i := 0
	walkObjects(rv, t, func(f reflect.Value) {
		f.Set(reflect.ValueOf(objs[i]))
		i++
	})
	return nil
}

func walkObjects(v reflect.Value, t *Type, fn func(reflect.Value)) {
	switch t.Kind {
	case KindObject:
		fn(v)
	case KindArray:
		if !HasObjects(t.Elem) {
			return
		}
		for i := 0; i < t.Len; i++ {
			walkObjects(v.Index(i), t.Elem, fn)
		}
	case KindStruct:
		j := 0
		for i := 0; i < v.NumField(); i++ {
			if !v.Type().Field(i).IsExported() {
				continue
			}
			walkObjects(v.Field(i), t.Fields[j].Type, fn)
			j++
		}
	}
}
