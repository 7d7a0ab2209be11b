package object

import "testing"

func TestCounts_PackUnpack(t *testing.T) {
	for bi := 0; bi <= MaxBI; bi++ {
		for bo := 0; bo <= MaxBO; bo++ {
			for oi := 0; oi <= MaxOI; oi++ {
				for oo := 0; oo <= MaxOO; oo++ {
					k := Pack(bi, bo, oi, oo)
					gbi, gbo, goi, goo := k.Unpack()
					if gbi != bi || gbo != bo || goi != oi || goo != oo {
						t.Fatalf("Pack(%d,%d,%d,%d) unpacked to (%d,%d,%d,%d)", bi, bo, oi, oo, gbi, gbo, goi, goo)
					}
					if k&ReservedCountsMask != 0 {
						t.Fatalf("Pack(%d,%d,%d,%d) set reserved bits: %#x", bi, bo, oi, oo, uint32(k))
					}
					if k.IndexBO() != bi || k.IndexOI() != bi+bo || k.IndexOO() != bi+bo+oi {
						t.Fatalf("bad offsets for %#x: %d %d %d", uint32(k), k.IndexBO(), k.IndexOI(), k.IndexOO())
					}
					if k.Total() != bi+bo+oi+oo {
						t.Fatalf("Total(%#x) = %d", uint32(k), k.Total())
					}
				}
			}
		}
	}
}

func TestCounts_NibbleLayout(t *testing.T) {
	tests := []struct {
		name           string
		bi, bo, oi, oo int
		want           Counts
	}{
		{"empty", 0, 0, 0, 0, 0},
		{"single in", 1, 0, 0, 0, 0x0001},
		{"single out", 0, 1, 0, 0, 0x0010},
		{"object in", 0, 0, 1, 0, 0x0100},
		{"object out", 0, 0, 0, 1, 0x1000},
		{"mixed", 2, 1, 3, 4, 0x4312},
		{"full", 15, 15, 15, 15, 0xFFFF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Pack(tt.bi, tt.bo, tt.oi, tt.oo); got != tt.want {
				t.Errorf("Pack = %#x, want %#x", uint32(got), uint32(tt.want))
			}
		})
	}
}

func TestCounts_SegmentsDoNotOverlap(t *testing.T) {
	k := Pack(2, 3, 1, 4)

	// Each slot index belongs to exactly one segment.
	owner := make([]string, k.Total())
	mark := func(name string, start, n int) {
		for i := start; i < start+n; i++ {
			if owner[i] != "" {
				t.Fatalf("slot %d claimed by %s and %s", i, owner[i], name)
			}
			owner[i] = name
		}
	}
	mark("bi", k.IndexBI(), k.NumBI())
	mark("bo", k.IndexBO(), k.NumBO())
	mark("oi", k.IndexOI(), k.NumOI())
	mark("oo", k.IndexOO(), k.NumOO())

	for i, o := range owner {
		if o == "" {
			t.Errorf("slot %d not covered", i)
		}
	}
	if k.NumBuffers() != 5 || k.NumObjects() != 5 {
		t.Errorf("NumBuffers=%d NumObjects=%d", k.NumBuffers(), k.NumObjects())
	}
	if k.IndexBuffers() != 0 || k.IndexObjects() != 5 {
		t.Errorf("IndexBuffers=%d IndexObjects=%d", k.IndexBuffers(), k.IndexObjects())
	}
	if MaxArgs != 60 {
		t.Errorf("MaxArgs = %d", MaxArgs)
	}
}

func TestOp_Bits(t *testing.T) {
	if OpRelease != 0xFFFF || OpRetain != 0xFFFE || OpInterface != 0xFFFD {
		t.Fatalf("reserved ids = %#x %#x %#x", uint32(OpRelease), uint32(OpRetain), uint32(OpInterface))
	}
	for _, op := range []Op{OpRelease, OpRetain, OpInterface} {
		if !op.IsLocal() {
			t.Errorf("%#x must carry the local bit", uint32(op))
		}
		if op.IsUser() {
			t.Errorf("%#x must not be a user method", uint32(op))
		}
	}

	op := Op(7).WithModifiers(RemoteBufs | 0x1234)
	if op.MethodID() != 7 {
		t.Errorf("MethodID = %#x", uint32(op.MethodID()))
	}
	if !op.IsRemoteBufs() {
		t.Error("RemoteBufs not set")
	}
	if op.Modifiers() != RemoteBufs {
		t.Errorf("Modifiers = %#x", uint32(op.Modifiers()))
	}
	if op.IsLocal() {
		t.Error("unexpected local bit")
	}
	if !MethodUserMax.IsUser() || (MethodUserMax + 1).IsUser() {
		t.Error("user range boundary")
	}
}

func TestStatus(t *testing.T) {
	tests := []struct {
		s         Status
		name      string
		transport bool
		user      bool
	}{
		{OK, "OK", false, false},
		{ErrorInvalid, "Invalid", false, false},
		{ErrorSizeOut, "BufferTooSmall", false, false},
		{ErrorDefunct, "ObjectDefunct", true, false},
		{ErrorWrongObj, "WrongObjectType", true, false},
		{ErrorUserBase, "InterfaceSpecificError(10)", false, true},
		{42, "InterfaceSpecificError(42)", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.s.String(); got != tt.name {
				t.Errorf("String() = %q, want %q", got, tt.name)
			}
			if tt.s.IsTransport() != tt.transport {
				t.Errorf("IsTransport() = %v", tt.s.IsTransport())
			}
			if tt.s.IsUser() != tt.user {
				t.Errorf("IsUser() = %v", tt.s.IsUser())
			}
		})
	}

	if OK.Err() != nil {
		t.Error("OK.Err() should be nil")
	}
	if err := ErrorBusy.Err(); err != ErrorBusy {
		t.Errorf("Err() = %v", err)
	}
}
