package object

// Op identifies the method requested by an invocation together with the
// modifier bits owned by transports.
//
// Bits 0-15 carry the method id. Bits 16-31 are modifiers; the encoding
// layer never alters them.
type Op uint32

const (
	// MethodMask selects the method id bits of an Op.
	MethodMask Op = 0x0000FFFF

	// MethodUserMax is the last method id available to interface authors.
	MethodUserMax Op = 0x00003FFF

	// ModifierMask selects the transport modifier bits of an Op.
	ModifierMask Op = 0xFFFF0000

	// Local marks an operation that transports must never forward.
	Local Op = 0x00008000

	// RemoteBufs is set by transports when buffers may live in untrusted,
	// possibly unaligned memory. It is a hint only.
	RemoteBufs Op = 0x00010000
)

// Reserved method ids. Every object answers OpRelease and OpRetain.
// OpInterface is held back for interface queries; objects that do not
// implement it refuse it like any unknown method.
const (
	OpRelease   Op = MethodMask - 0
	OpRetain    Op = MethodMask - 1
	OpInterface Op = MethodMask - 2
)

// MethodID returns the method id bits of op.
func (op Op) MethodID() Op {
	return op & MethodMask
}

// Modifiers returns the transport modifier bits of op.
func (op Op) Modifiers() Op {
	return op & ModifierMask
}

// IsLocal reports whether op must stay within the current domain.
func (op Op) IsLocal() bool {
	return op&Local != 0
}

// IsRemoteBufs reports whether the caller flagged its buffers as untrusted.
func (op Op) IsRemoteBufs() bool {
	return op&RemoteBufs != 0
}

// WithModifiers returns op with the given modifier bits set.
// Method id bits in mods are ignored.
func (op Op) WithModifiers(mods Op) Op {
	return op | (mods & ModifierMask)
}

// IsUser reports whether op addresses a method in the interface-author range.
func (op Op) IsUser() bool {
	return op.MethodID() <= MethodUserMax
}
