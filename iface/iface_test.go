package iface

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	abierrors "github.com/wippyai/object-abi/errors"
	"github.com/wippyai/object-abi/layout"
	"github.com/wippyai/object-abi/object"
)

var quad = layout.StructOf("Quad",
	layout.Field{Name: "a", Type: layout.Uint32},
	layout.Field{Name: "b", Type: layout.Uint32},
	layout.Field{Name: "c", Type: layout.Uint32},
	layout.Field{Name: "d", Type: layout.Uint32},
)

var big = layout.StructOf("Big",
	layout.Field{Name: "q", Type: layout.ArrayOf(quad, 2)},
)

var solo = layout.StructOf("Solo",
	layout.Field{Name: "obj", Type: layout.ObjectOf("IThing")},
)

var twin = layout.StructOf("Twin",
	layout.Field{Name: "objs", Type: layout.ArrayOf(layout.Object, 2)},
)

func TestCompile_Counts(t *testing.T) {
	tests := []struct {
		name   string
		params []Param
		want   object.Counts
	}{
		{"empty", nil, 0},
		{"single in", []Param{In("a", layout.Uint32)}, object.Pack(1, 0, 0, 0)},
		{"single out", []Param{Out("a", layout.Uint32)}, object.Pack(0, 1, 0, 0)},
		{"bundled ins", []Param{In("a", layout.Uint32), In("b", layout.Uint8)}, object.Pack(1, 0, 0, 0)},
		{"bundled both", []Param{
			In("a", layout.Uint32), In("b", layout.Uint8),
			Out("c", layout.Uint16), Out("d", layout.Uint64),
		}, object.Pack(1, 1, 0, 0)},
		{"big struct is not bundled", []Param{In("a", big), In("b", layout.Uint8)}, object.Pack(2, 0, 0, 0)},
		{"arrays", []Param{InArray("xs", layout.Uint16), OutBuffer("buf")}, object.Pack(1, 1, 0, 0)},
		{"objects", []Param{InObject("o", ""), OutObjects("outs", "", 3)}, object.Pack(0, 0, 1, 3)},
		{"object array in", []Param{InObjects("xs", "ITest1", 3), Out("flag", layout.Uint32)}, object.Pack(0, 1, 3, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := Compile(tt.params)
			if err != nil {
				t.Fatal(err)
			}
			if plan.Counts != tt.want {
				t.Errorf("Counts = %#x, want %#x", uint32(plan.Counts), uint32(tt.want))
			}
			if len(plan.Slots) != plan.Counts.Total() {
				t.Errorf("%d slots for total %d", len(plan.Slots), plan.Counts.Total())
			}
			for i, s := range plan.Slots {
				if s.Index != i {
					t.Errorf("slot %d has index %d", i, s.Index)
				}
			}
		})
	}
}

func TestCompile_BundleLayout(t *testing.T) {
	params := []Param{
		In("a", layout.Uint8),
		In("b", layout.Uint64),
		In("c", layout.Uint16),
		In("q", quad),
		InBuffer("raw"),
	}
	plan, err := Compile(params)
	if err != nil {
		t.Fatal(err)
	}

	b := plan.InBundle
	if !b.Used() || b.Slot != 0 {
		t.Fatalf("bundle = %+v", b)
	}
	if diff := cmp.Diff([]int{1, 3, 2, 0}, b.Members); diff != "" {
		t.Errorf("member order (-want +got):\n%s", diff)
	}
	if b.Size != 32 || b.Align != 8 {
		t.Errorf("bundle size/align = %d/%d, want 32/8", b.Size, b.Align)
	}

	want := []Placement{
		{Slot: 0, Bundled: true, Offset: 26},
		{Slot: 0, Bundled: true, Offset: 0},
		{Slot: 0, Bundled: true, Offset: 24},
		{Slot: 0, Bundled: true, Offset: 8},
		{Slot: 1, Count: 1},
	}
	if diff := cmp.Diff(want, plan.Params); diff != "" {
		t.Errorf("placements (-want +got):\n%s", diff)
	}

	if s := plan.Slot(0); s.Param != -1 || s.Size != 32 {
		t.Errorf("bundle slot = %+v", s)
	}
	if s := plan.Slot(1); s.Size != Variable || s.Elem != 1 {
		t.Errorf("buffer slot = %+v", s)
	}
	if plan.OutBundle.Used() {
		t.Error("unexpected output bundle")
	}
}

func TestCompile_SegmentOrder(t *testing.T) {
	params := []Param{
		OutObject("made", ""),
		Out("n", layout.Uint32),
		InObjects("peers", "", 2),
		In("key", quad),
		OutArray("vals", layout.Int64),
	}
	plan, err := Compile(params)
	if err != nil {
		t.Fatal(err)
	}
	if plan.Counts != object.Pack(1, 2, 2, 1) {
		t.Fatalf("Counts = %#x", uint32(plan.Counts))
	}

	want := []Slot{
		{Kind: SlotBufIn, Index: 0, Param: 3, Size: 16},
		{Kind: SlotBufOut, Index: 1, Param: 1, Size: 4},
		{Kind: SlotBufOut, Index: 2, Param: 4, Size: Variable, Elem: 8},
		{Kind: SlotObjIn, Index: 3, Param: 2},
		{Kind: SlotObjIn, Index: 4, Param: 2},
		{Kind: SlotObjOut, Index: 5, Param: 0},
	}
	if diff := cmp.Diff(want, plan.Slots); diff != "" {
		t.Errorf("slots (-want +got):\n%s", diff)
	}
	if p := plan.Params[2]; p.Slot != 3 || p.Count != 2 {
		t.Errorf("object run placement = %+v", p)
	}
}

func TestCompile_Errors(t *testing.T) {
	many := make([]Param, 16)
	for i := range many {
		many[i] = InBuffer(string(rune('a' + i)))
	}

	tests := []struct {
		name   string
		params []Param
		kind   abierrors.Kind
	}{
		{"too many buffers", many, abierrors.KindShape},
		{"empty object array", []Param{InObjects("xs", "", 0)}, abierrors.KindShape},
		{"huge object array", []Param{OutObjects("xs", "", 16)}, abierrors.KindShape},
		{"missing type", []Param{{Name: "x", Kind: KindValue}}, abierrors.KindNilPointer},
		{"duplicate name", []Param{In("x", layout.Uint8), Out("x", layout.Uint8)}, abierrors.KindDuplicate},
		{"unnamed", []Param{In("", layout.Uint8)}, abierrors.KindInvalidData},
		{"objects in variable array", []Param{InArray("xs", solo)}, abierrors.KindUnsupported},
		{"bare object value", []Param{In("o", layout.Object)}, abierrors.KindShape},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.params)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, &abierrors.Error{Phase: abierrors.PhaseDescribe, Kind: tt.kind}) {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestCompile_EmbeddedObjects(t *testing.T) {
	params := []Param{
		InObject("first", ""),
		In("s", solo),
		In("n", layout.Uint8),
		Out("twins", twin),
		OutObject("made", ""),
	}
	plan, err := Compile(params)
	if err != nil {
		t.Fatal(err)
	}
	if want := object.Pack(2, 1, 2, 3); plan.Counts != want {
		t.Fatalf("Counts = %#x, want %#x", uint32(plan.Counts), uint32(want))
	}
	if plan.InBundle.Used() {
		t.Error("a value with an embedded object was bundled")
	}

	want := []Placement{
		{Slot: 3, Count: 1},
		{Slot: 0, Count: 1, ObjSlot: 4, Objects: 1},
		{Slot: 1, Count: 1},
		{Slot: 2, Count: 1, ObjSlot: 5, Objects: 2},
		{Slot: 7, Count: 1},
	}
	if diff := cmp.Diff(want, plan.Params); diff != "" {
		t.Errorf("placements (-want +got):\n%s", diff)
	}

	fields := map[int]string{}
	for _, s := range plan.Slots {
		if s.Field != "" {
			fields[s.Index] = s.Field
		}
	}
	if diff := cmp.Diff(map[int]string{4: "obj", 5: "objs[0]", 6: "objs[1]"}, fields); diff != "" {
		t.Errorf("embedded slots (-want +got):\n%s", diff)
	}
	if plan.Slot(0).Size != 16 || plan.Slot(2).Size != 32 {
		t.Errorf("buffer sizes = %d, %d; want 16, 32", plan.Slot(0).Size, plan.Slot(2).Size)
	}
}

func TestInterface_Inheritance(t *testing.T) {
	base := MustNew("IBase", nil,
		NewMethod(0, "ping"),
		NewMethod(1, "echo", In("v", layout.Uint32), Out("r", layout.Uint32)),
	)
	derived, err := New("IDerived", base,
		NewMethod(2, "extra", InBuffer("data")),
	)
	if err != nil {
		t.Fatal(err)
	}

	if m, ok := derived.Lookup(1); !ok || m.Name != "echo" {
		t.Errorf("Lookup(1) = %v, %v", m, ok)
	}
	if m, ok := derived.Lookup(object.Op(2) | object.RemoteBufs); !ok || m.Name != "extra" {
		t.Error("Lookup should ignore modifier bits")
	}
	if _, ok := base.Lookup(2); ok {
		t.Error("base must not answer derived methods")
	}
	if _, ok := derived.Method("ping"); !ok {
		t.Error("Method should search the base chain")
	}

	var names []string
	for _, m := range derived.All() {
		names = append(names, m.Name)
	}
	if diff := cmp.Diff([]string{"ping", "echo", "extra"}, names); diff != "" {
		t.Errorf("All (-want +got):\n%s", diff)
	}
	if !derived.Extends("IBase") || base.Extends("IDerived") {
		t.Error("Extends")
	}
	if derived.MaxID() != 2 {
		t.Errorf("MaxID = %d", derived.MaxID())
	}

	if _, err := New("IBad", base, NewMethod(1, "clash")); err == nil {
		t.Error("duplicate id along the chain must fail")
	}
	if _, err := New("IBad", nil, NewMethod(object.MethodUserMax+1, "high")); err == nil {
		t.Error("id outside the user range must fail")
	}
	if _, err := New("IBad", nil, NewMethod(0, "a"), NewMethod(1, "a")); err == nil {
		t.Error("duplicate name must fail")
	}
}

func TestMustNew_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	MustNew("IBad", nil, NewMethod(0, "x", InObjects("o", "", 0)))
}

const declSample = `
[[struct]]
name = "Quad"
fields = [
  { name = "a", type = "u32" },
  { name = "b", type = "u32" },
  { name = "c", type = "u32" },
  { name = "d", type = "u32" },
]

[[struct]]
name = "Wrap"
fields = [{ name = "inner", type = "Quad" }, { name = "tags", type = "u8[4]" }]

[[interface]]
name = "IBase"
[[interface.method]]
name = "ping"

[[interface]]
name = "IThing"
base = "IBase"
[[interface.method]]
name = "put"
params = [
  { name = "w", dir = "in", type = "Wrap" },
  { name = "xs", dir = "in", type = "i16[]" },
]
[[interface.method]]
name = "make"
id = 10
params = [
  { name = "peer", dir = "in", type = "object:IBase" },
  { name = "outs", dir = "out", type = "object:IThing[2]" },
  { name = "raw", dir = "out", type = "buffer" },
]
[[interface.method]]
name = "next"
params = [{ name = "v", dir = "out", type = "f64" }]
`

func TestParse(t *testing.T) {
	doc, err := Parse([]byte(declSample))
	if err != nil {
		t.Fatal(err)
	}

	wrap, ok := doc.Struct("Wrap")
	if !ok {
		t.Fatal("Wrap not declared")
	}
	if got := layout.SizeOf(wrap); got != 20 {
		t.Errorf("sizeof(Wrap) = %d, want 20", got)
	}

	thing, ok := doc.Interface("IThing")
	if !ok {
		t.Fatal("IThing not declared")
	}
	if thing.Base == nil || thing.Base.Name != "IBase" {
		t.Fatal("base not linked")
	}

	ids := map[string]object.Op{}
	for _, m := range thing.All() {
		ids[m.Name] = m.ID
	}
	if diff := cmp.Diff(map[string]object.Op{"ping": 0, "put": 1, "make": 10, "next": 11}, ids); diff != "" {
		t.Errorf("ids (-want +got):\n%s", diff)
	}

	put, _ := thing.Method("put")
	if put.Counts() != object.Pack(2, 0, 0, 0) {
		t.Errorf("put counts = %#x", uint32(put.Counts()))
	}
	if put.Params[1].Kind != KindArray || put.Params[1].Type != layout.Int16 {
		t.Errorf("xs = %s", put.Params[1])
	}

	mk, _ := thing.Method("make")
	if mk.Counts() != object.Pack(0, 1, 1, 2) {
		t.Errorf("make counts = %#x", uint32(mk.Counts()))
	}
	if p := mk.Params[1]; p.Kind != KindObjectArray || p.Count != 2 || p.Interface != "IThing" {
		t.Errorf("outs = %+v", p)
	}
	if got := mk.Params[1].String(); got != "out object:IThing[2] outs" {
		t.Errorf("String() = %q", got)
	}

	var names []string
	for _, ifc := range doc.Interfaces() {
		names = append(names, ifc.Name)
	}
	if diff := cmp.Diff([]string{"IBase", "IThing"}, names); diff != "" {
		t.Error(diff)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		kind abierrors.Kind
	}{
		{"syntax", "[[interface]\n", abierrors.KindInvalidData},
		{"unknown key", "[[interface]]\nname = \"I\"\ncolour = 1\n", abierrors.KindInvalidInput},
		{"unknown type", "[[interface]]\nname = \"I\"\n[[interface.method]]\nname = \"m\"\nparams = [{ name = \"x\", type = \"Nope\" }]\n", abierrors.KindNotFound},
		{"unknown base", "[[interface]]\nname = \"I\"\nbase = \"J\"\n", abierrors.KindNotFound},
		{"bad dir", "[[interface]]\nname = \"I\"\n[[interface.method]]\nname = \"m\"\nparams = [{ name = \"x\", dir = \"both\", type = \"u8\" }]\n", abierrors.KindInvalidData},
		{"variable field", "[[struct]]\nname = \"S\"\nfields = [{ name = \"x\", type = \"u8[]\" }]\n", abierrors.KindInvalidData},
		{"duplicate struct", "[[struct]]\nname = \"S\"\n[[struct]]\nname = \"S\"\n", abierrors.KindDuplicate},
		{"objects in array param", "[[struct]]\nname = \"S\"\nfields = [{ name = \"o\", type = \"object\" }]\n[[interface]]\nname = \"I\"\n[[interface.method]]\nname = \"m\"\nparams = [{ name = \"xs\", type = \"S[]\" }]\n", abierrors.KindUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src))
			if err == nil {
				t.Fatal("expected error")
			}
			var e *abierrors.Error
			if !errors.As(err, &e) || e.Kind != tt.kind {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

const objectFieldSample = `
[[struct]]
name = "Holder"
fields = [
  { name = "tag", type = "u32" },
  { name = "obj", type = "object:IThing" },
  { name = "more", type = "object[2]" },
]

[[interface]]
name = "IThing"

[[interface.method]]
name = "hold"
params = [
  { name = "h", dir = "in", type = "Holder" },
  { name = "r", dir = "out", type = "Holder" },
]
`

func TestParse_ObjectFields(t *testing.T) {
	doc, err := Parse([]byte(objectFieldSample))
	if err != nil {
		t.Fatal(err)
	}
	holder, _ := doc.Struct("Holder")
	if got := layout.SizeOf(holder); got != 56 {
		t.Errorf("sizeof(Holder) = %d, want 56", got)
	}
	want := []layout.ObjectField{
		{Path: "obj", Offset: 8, Interface: "IThing"},
		{Path: "more[0]", Offset: 24},
		{Path: "more[1]", Offset: 40},
	}
	if diff := cmp.Diff(want, layout.Objects(holder)); diff != "" {
		t.Errorf("objects (-want +got):\n%s", diff)
	}

	ifc, _ := doc.Interface("IThing")
	hold, _ := ifc.Method("hold")
	if got := hold.Counts(); got != object.Pack(1, 1, 3, 3) {
		t.Errorf("hold counts = %#x", uint32(got))
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "decl.toml")
	if err := os.WriteFile(path, []byte(declSample), 0o644); err != nil {
		t.Fatal(err)
	}
	doc, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := doc.Interface("IThing"); !ok {
		t.Error("IThing missing")
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("missing file should fail")
	}
}
