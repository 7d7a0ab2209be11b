package object

// Counts describes the shape of an argument array: the number of input
// buffers (BI), output buffers (BO), input objects (OI) and output objects
// (OO), packed as 4-bit fields at nibble offsets 0, 1, 2 and 3.
//
// Slots are laid out in the fixed order BI, BO, OI, OO. Bits 16-31 are
// reserved.
type Counts uint32

// Per-segment maximums.
const (
	MaxBI = 0xF
	MaxBO = 0xF
	MaxOI = 0xF
	MaxOO = 0xF

	// MaxArgs is the largest possible argument array.
	MaxArgs = MaxBI + MaxBO + MaxOI + MaxOO

	// ReservedCountsMask selects the bits of a Counts value that no
	// current encoder sets.
	ReservedCountsMask Counts = 0xFFFF0000
)

// Pack builds a Counts value. Every argument must be within [0, 15]; larger
// values silently corrupt neighbouring fields, so only descriptor code that
// has already validated its shape should call Pack.
func Pack(bi, bo, oi, oo int) Counts {
	return Counts(uint32(bi) | uint32(bo)<<4 | uint32(oi)<<8 | uint32(oo)<<12)
}

// NumBI returns the number of input buffers.
func (k Counts) NumBI() int { return int(k>>0) & MaxBI }

// NumBO returns the number of output buffers.
func (k Counts) NumBO() int { return int(k>>4) & MaxBO }

// NumOI returns the number of input objects.
func (k Counts) NumOI() int { return int(k>>8) & MaxOI }

// NumOO returns the number of output objects.
func (k Counts) NumOO() int { return int(k>>12) & MaxOO }

// NumBuffers returns the number of buffer slots in either direction.
func (k Counts) NumBuffers() int { return k.NumBI() + k.NumBO() }

// NumObjects returns the number of object slots in either direction.
func (k Counts) NumObjects() int { return k.NumOI() + k.NumOO() }

// IndexBI returns the first input buffer slot. It is always 0.
func (k Counts) IndexBI() int { return 0 }

// IndexBO returns the first output buffer slot.
func (k Counts) IndexBO() int { return k.IndexBI() + k.NumBI() }

// IndexOI returns the first input object slot.
func (k Counts) IndexOI() int { return k.IndexBO() + k.NumBO() }

// IndexOO returns the first output object slot.
func (k Counts) IndexOO() int { return k.IndexOI() + k.NumOI() }

// IndexBuffers returns the first buffer slot.
func (k Counts) IndexBuffers() int { return k.IndexBI() }

// IndexObjects returns the first object slot.
func (k Counts) IndexObjects() int { return k.IndexOI() }

// Total returns the number of argument slots described by k.
func (k Counts) Total() int { return k.IndexOO() + k.NumOO() }

// Unpack returns the four segment counts in BI, BO, OI, OO order.
func (k Counts) Unpack() (bi, bo, oi, oo int) {
	return k.NumBI(), k.NumBO(), k.NumOI(), k.NumOO()
}
