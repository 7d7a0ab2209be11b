package layout

import "sync"

// ObjectSize is the in-struct footprint of an embedded object: an invoke
// pointer and a context pointer.
const ObjectSize = 16

// Info is the memory layout of a Type.
type Info struct {
	Size    uint32
	Align   uint32
	Offsets []uint32 // struct field offsets, in field order
}

// Calculator computes and caches layouts.
type Calculator struct {
	mu    sync.Mutex
	cache map[*Type]Info
}

func NewCalculator() *Calculator {
	return &Calculator{
		cache: make(map[*Type]Info),
	}
}

var defaultCalc = NewCalculator()

// Calc returns the layout of t using a shared calculator.
func Calc(t *Type) Info {
	return defaultCalc.Calculate(t)
}

// SizeOf returns the size of t in bytes.
func SizeOf(t *Type) int {
	return int(Calc(t).Size)
}

// AlignOf returns the alignment of t in bytes.
func AlignOf(t *Type) int {
	return int(Calc(t).Align)
}

// AlignTo rounds offset up to a multiple of align.
func AlignTo(offset, align uint32) uint32 {
	if align == 0 {
		return offset
	}
	return (offset + align - 1) &^ (align - 1)
}

func (c *Calculator) Calculate(t *Type) Info {
	if t == nil {
		return Info{Size: 0, Align: 1}
	}
	switch t.Kind {
	case KindBool, KindUint8, KindInt8:
		return Info{Size: 1, Align: 1}
	case KindUint16, KindInt16:
		return Info{Size: 2, Align: 2}
	case KindUint32, KindInt32, KindFloat32:
		return Info{Size: 4, Align: 4}
	case KindUint64, KindInt64, KindFloat64:
		return Info{Size: 8, Align: 8}
	case KindObject:
		return Info{Size: ObjectSize, Align: 8}
	}

	c.mu.Lock()
	cached, ok := c.cache[t]
	c.mu.Unlock()
	if ok {
		return cached
	}

	var info Info
	switch t.Kind {
	case KindArray:
		info = c.calculateArray(t)
	case KindStruct:
		info = c.calculateStruct(t)
	default:
		info = Info{Size: 0, Align: 1}
	}

	c.mu.Lock()
	c.cache[t] = info
	c.mu.Unlock()
	return info
}

func (c *Calculator) calculateArray(t *Type) Info {
	elem := c.Calculate(t.Elem)
	return Info{
		Size:  elem.Size * uint32(t.Len),
		Align: elem.Align,
	}
}

func (c *Calculator) calculateStruct(t *Type) Info {
	if len(t.Fields) == 0 {
		return Info{Size: 0, Align: 1}
	}

	offsets := make([]uint32, len(t.Fields))
	maxAlign := uint32(1)
	offset := uint32(0)

	for i, field := range t.Fields {
		fieldLayout := c.Calculate(field.Type)

		offset = AlignTo(offset, fieldLayout.Align)
		offsets[i] = offset

		if fieldLayout.Align > maxAlign {
			maxAlign = fieldLayout.Align
		}

		offset += fieldLayout.Size
	}

	return Info{
		Size:    AlignTo(offset, maxAlign),
		Align:   maxAlign,
		Offsets: offsets,
	}
}
