package iface

import (
	"sort"

	"github.com/wippyai/object-abi/errors"
	"github.com/wippyai/object-abi/layout"
	"github.com/wippyai/object-abi/object"
)

// SlotKind is the segment a slot belongs to.
type SlotKind uint8

const (
	SlotBufIn SlotKind = iota
	SlotBufOut
	SlotObjIn
	SlotObjOut
)

var slotKindNames = [...]string{"BI", "BO", "OI", "OO"}

func (k SlotKind) String() string {
	if int(k) < len(slotKindNames) {
		return slotKindNames[k]
	}
	return "??"
}

// IsBuffer reports whether k is a buffer segment.
func (k SlotKind) IsBuffer() bool { return k == SlotBufIn || k == SlotBufOut }

// Variable marks a buffer slot without an exact size.
const Variable = -1

// Slot is the expectation for one argument slot.
type Slot struct {
	Kind  SlotKind
	Index int    // absolute index in the argument array
	Param int    // index into Method.Params, or -1 for a bundle
	Size  int    // exact byte size, or Variable
	Elem  int    // element size of a variable slot
	Field string // embedded object path, for object slots of a value
}

// Placement locates one parameter in the argument array.
type Placement struct {
	Slot    int // absolute index of the (first) slot
	Count   int // number of slots spanned; 0 for bundled values
	Bundled bool
	Offset  int // byte offset inside the bundle

	// Object slots of a value with embedded objects.
	ObjSlot int
	Objects int
}

// Bundle packs several small values into one buffer slot.
type Bundle struct {
	Slot    int   // absolute slot index, or -1 when the method has no bundle
	Size    int   // total size, rounded to Align
	Align   int   // largest member alignment
	Members []int // param indexes in layout order
}

// Used reports whether the bundle carries any values.
func (b Bundle) Used() bool { return b.Slot >= 0 }

// Plan is the compiled slot layout of a method.
type Plan struct {
	Counts    object.Counts
	Slots     []Slot
	Params    []Placement
	InBundle  Bundle
	OutBundle Bundle
}

// Compile computes the slot plan for params.
//
// Segments are filled in declaration order. When two or more small values
// travel in the same direction they share a bundle placed first in its
// buffer segment. A value with embedded objects takes one buffer slot plus
// one object slot per object, in the object segment of its direction.
func Compile(params []Param) (*Plan, error) {
	if err := checkParams(params); err != nil {
		return nil, err
	}

	var smallIn, smallOut []int
	for i, p := range params {
		if !p.Small() {
			continue
		}
		if p.Dir == DirIn {
			smallIn = append(smallIn, i)
		} else {
			smallOut = append(smallOut, i)
		}
	}
	bundleIn := len(smallIn) > 1
	bundleOut := len(smallOut) > 1

	bundled := func(i int) bool {
		p := params[i]
		if !p.Small() {
			return false
		}
		if p.Dir == DirIn {
			return bundleIn
		}
		return bundleOut
	}

	// Slot contents per segment before absolute indexes are known.
	type pending struct {
		param    int
		count    int
		embedded bool
	}
	var segs [4][]pending
	if bundleIn {
		segs[SlotBufIn] = append(segs[SlotBufIn], pending{param: -1, count: 1})
	}
	if bundleOut {
		segs[SlotBufOut] = append(segs[SlotBufOut], pending{param: -1, count: 1})
	}
	for i, p := range params {
		if bundled(i) {
			continue
		}
		var seg SlotKind
		switch {
		case p.Kind.IsObject() && p.Dir == DirIn:
			seg = SlotObjIn
		case p.Kind.IsObject():
			seg = SlotObjOut
		case p.Dir == DirIn:
			seg = SlotBufIn
		default:
			seg = SlotBufOut
		}
		n := 1
		if p.Kind.IsObject() {
			n = p.Count
		}
		segs[seg] = append(segs[seg], pending{param: i, count: n})

		if objs := p.Embedded(); len(objs) > 0 {
			oseg := SlotObjIn
			if p.Dir == DirOut {
				oseg = SlotObjOut
			}
			segs[oseg] = append(segs[oseg], pending{param: i, count: len(objs), embedded: true})
		}
	}

	var n [4]int
	for seg := range segs {
		for _, e := range segs[seg] {
			n[seg] += e.count
		}
		if n[seg] > 0xF {
			return nil, errors.New(errors.PhaseDescribe, errors.KindShape).
				Path(SlotKind(seg).String()).
				Value(n[seg]).
				Status(object.ErrorMaxArgs).
				Detail("%d slots exceed the 4-bit segment count", n[seg]).
				Build()
		}
	}

	plan := &Plan{
		Counts: object.Pack(n[SlotBufIn], n[SlotBufOut], n[SlotObjIn], n[SlotObjOut]),
		Params: make([]Placement, len(params)),
	}
	plan.InBundle = buildBundle(params, smallIn, bundleIn)
	plan.OutBundle = buildBundle(params, smallOut, bundleOut)

	k := plan.Counts
	base := [4]int{k.IndexBI(), k.IndexBO(), k.IndexOI(), k.IndexOO()}
	for seg := range segs {
		idx := base[seg]
		for _, e := range segs[seg] {
			switch {
			case e.param < 0:
				b := &plan.InBundle
				if SlotKind(seg) == SlotBufOut {
					b = &plan.OutBundle
				}
				b.Slot = idx
				plan.Slots = append(plan.Slots, Slot{Kind: SlotKind(seg), Index: idx, Param: -1, Size: b.Size})
			case SlotKind(seg).IsBuffer():
				p := params[e.param]
				s := Slot{Kind: SlotKind(seg), Index: idx, Param: e.param, Size: p.Size()}
				if p.Kind != KindValue {
					s.Size, s.Elem = Variable, p.Size()
				}
				plan.Slots = append(plan.Slots, s)
				plan.Params[e.param] = Placement{Slot: idx, Count: 1}
			case e.embedded:
				for j, f := range params[e.param].Embedded() {
					plan.Slots = append(plan.Slots, Slot{Kind: SlotKind(seg), Index: idx + j, Param: e.param, Field: f.Path})
				}
				plan.Params[e.param].ObjSlot = idx
				plan.Params[e.param].Objects = e.count
			default:
				for j := 0; j < e.count; j++ {
					plan.Slots = append(plan.Slots, Slot{Kind: SlotKind(seg), Index: idx + j, Param: e.param})
				}
				plan.Params[e.param] = Placement{Slot: idx, Count: e.count}
			}
			idx += e.count
		}
	}

	for _, b := range []Bundle{plan.InBundle, plan.OutBundle} {
		if !b.Used() {
			continue
		}
		off := 0
		for _, i := range b.Members {
			a := layout.AlignOf(params[i].Type)
			off = int(layout.AlignTo(uint32(off), uint32(a)))
			plan.Params[i] = Placement{Slot: b.Slot, Bundled: true, Offset: off}
			off += params[i].Size()
		}
	}

	return plan, nil
}

func buildBundle(params []Param, members []int, used bool) Bundle {
	if !used {
		return Bundle{Slot: -1}
	}
	ordered := append([]int(nil), members...)
	sort.SliceStable(ordered, func(a, b int) bool {
		pa, pb := params[ordered[a]], params[ordered[b]]
		aa, ab := layout.AlignOf(pa.Type), layout.AlignOf(pb.Type)
		if aa != ab {
			return aa > ab
		}
		return pa.Size() > pb.Size()
	})

	off, maxAlign := 0, 1
	for _, i := range ordered {
		a := layout.AlignOf(params[i].Type)
		if a > maxAlign {
			maxAlign = a
		}
		off = int(layout.AlignTo(uint32(off), uint32(a))) + params[i].Size()
	}
	return Bundle{
		Size:    int(layout.AlignTo(uint32(off), uint32(maxAlign))),
		Align:   maxAlign,
		Members: ordered,
	}
}

func checkParams(params []Param) error {
	seen := make(map[string]bool, len(params))
	for _, p := range params {
		path := []string{p.Name}
		if p.Name == "" {
			return errors.InvalidData(errors.PhaseDescribe, nil, "parameter without a name")
		}
		if seen[p.Name] {
			return errors.Duplicate(errors.PhaseDescribe, path, "parameter name")
		}
		seen[p.Name] = true

		switch p.Kind {
		case KindValue, KindArray, KindBuffer:
			if p.Type == nil {
				return errors.New(errors.PhaseDescribe, errors.KindNilPointer).
					Path(path...).
					Detail("%s parameter without a type", p.Kind).
					Build()
			}
			if p.Kind != KindValue && layout.SizeOf(p.Type) == 0 {
				return errors.New(errors.PhaseDescribe, errors.KindShape).
					Path(path...).
					Type(p.Type.String()).
					Detail("array elements must not be empty").
					Build()
			}
			if p.Kind != KindValue && layout.HasObjects(p.Type) {
				return errors.New(errors.PhaseDescribe, errors.KindUnsupported).
					Path(path...).
					Type(p.Type.String()).
					Detail("variable arrays cannot carry objects").
					Build()
			}
			if p.Type.Kind == layout.KindObject {
				return errors.New(errors.PhaseDescribe, errors.KindShape).
					Path(path...).
					Detail("declare objects as object parameters").
					Build()
			}
		case KindObject:
			if p.Count != 1 {
				return errors.New(errors.PhaseDescribe, errors.KindShape).
					Path(path...).
					Detail("object parameter spans %d slots", p.Count).
					Build()
			}
		case KindObjectArray:
			if p.Count < 1 || p.Count > 0xF {
				return errors.New(errors.PhaseDescribe, errors.KindShape).
					Path(path...).
					Value(p.Count).
					Status(object.ErrorMaxArgs).
					Detail("object array length %d out of range [1, 15]", p.Count).
					Build()
			}
		default:
			return errors.Unsupported(errors.PhaseDescribe, p.Kind.String())
		}
		if p.Dir != DirIn && p.Dir != DirOut {
			return errors.InvalidData(errors.PhaseDescribe, path, "unknown direction")
		}
	}
	return nil
}

// Slot returns the expectation for absolute slot index i.
func (p *Plan) Slot(i int) Slot {
	return p.Slots[i]
}
