// Package layout computes C-compatible memory layouts for values carried in
// buffer slots and encodes Go values to and from them.
//
// # Layout Rules
//
//   - Primitives: size equals alignment (uint8=1, uint32=4, float64=8, etc.)
//   - Fixed arrays: element size times length, element alignment
//   - Structs: fields in declaration order, each at its natural alignment,
//     total size rounded up to the largest field alignment
//
// Values are little-endian and padding bytes are always zero, so two
// encoders produce byte-identical buffers for equal values.
//
// # Usage
//
//	t, _ := layout.TypeFor[Collection]()
//	info := layout.Calc(t) // info.Size, info.Align, info.Offsets
//	buf, _ := layout.Marshal(Collection{A: 1})
//	var c Collection
//	_ = layout.Unmarshal(buf, &c)
package layout
