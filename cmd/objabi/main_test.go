package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/object-abi/iface"
	"github.com/wippyai/object-abi/internal/config"
	"github.com/wippyai/object-abi/internal/itest"
)

func method(t *testing.T, ifc *iface.Interface, name string) *iface.Method {
	t.Helper()
	m, ok := ifc.Method(name)
	if !ok {
		t.Fatalf("%s has no method %s", ifc.Name, name)
	}
	return m
}

func TestSlotLines(t *testing.T) {
	tests := []struct {
		method string
		want   []string
	}{
		{
			method: "multiple_primitive",
			want: []string{
				"[0] BI bundle 8B: input2@0 uint32, input@4 uint16",
				"[1] BI n*1B in buffer unused_in",
				"[2] BO bundle 16B: output2@0 uint64, output@8 uint16",
				"[3] BO n*1B out buffer unused_out",
				"[4] BO n*1B out buffer unused_out2",
				"[5] OI in object unused_obj_in",
				"[6] OO out object unused_obj_out",
			},
		},
		{
			method: "test_obj_array_in",
			want: []string{
				"[0] BO 4B out uint32 a",
				"[1] OI in object:ITest1[3] o_in #0",
				"[2] OI in object:ITest1[3] o_in #1",
				"[3] OI in object:ITest1[3] o_in #2",
			},
		},
		{
			method: "struct_array_out",
			want: []string{
				"[0] BO n*16B out Collection[] s_out",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			got := slotLines(method(t, itest.ITest1, tt.method))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("slot lines (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSlotLines_EmbeddedObject(t *testing.T) {
	want := []string{
		"[0] BI 24B in Holder h_in",
		"[1] BO 24B out Holder h_out",
		"[2] OI in Holder h_in .Obj",
		"[3] OO out Holder h_out .Obj",
	}
	got := slotLines(method(t, itest.ITest2, "hold"))
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("slot lines (-want +got):\n%s", diff)
	}
}

func TestCountsLine(t *testing.T) {
	got := countsLine(method(t, itest.ITest1, "multiple_primitive"))
	want := "counts 0x1132  BI=2 BO=3 OI=1 OO=1"
	if got != want {
		t.Errorf("countsLine = %q, want %q", got, want)
	}
}

func TestRenderInterface(t *testing.T) {
	var buf bytes.Buffer
	renderInterface(&buf, itest.ITest3, plainStyles())
	out := buf.String()
	for _, want := range []string{"ITest3 : ITest1", "  16 extra_test3", "   0 test_f1"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestLoadInterfaces(t *testing.T) {
	all, err := loadInterfaces("", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Errorf("built-in declaration has %d interfaces, want 3", len(all))
	}

	one, err := loadInterfaces("", "ITest2")
	if err != nil {
		t.Fatal(err)
	}
	if len(one) != 1 || one[0].Name != "ITest2" {
		t.Errorf("filtered = %v", one)
	}

	if _, err := loadInterfaces("", "Missing"); err == nil {
		t.Error("unknown interface accepted")
	}

	path := filepath.Join(t.TempDir(), "decl.toml")
	if err := os.WriteFile(path, itest.Declaration(), 0o644); err != nil {
		t.Fatal(err)
	}
	fromFile, err := loadInterfaces(path, "ITest1")
	if err != nil {
		t.Fatal(err)
	}
	if got := len(fromFile[0].All()); got != 16 {
		t.Errorf("ITest1 from file has %d methods, want 16", got)
	}
}

func TestNewLogger(t *testing.T) {
	cfg := config.Default()
	log, err := newLogger(cfg, false)
	if err != nil {
		t.Fatal(err)
	}
	if log.Core().Enabled(zapcore.DebugLevel) {
		t.Error("debug enabled at info level")
	}
	log, err = newLogger(cfg, true)
	if err != nil {
		t.Fatal(err)
	}
	if !log.Core().Enabled(zapcore.DebugLevel) {
		t.Error("-v did not enable debug")
	}
}

func TestSelftest(t *testing.T) {
	var buf bytes.Buffer
	if !runSelftest(context.Background(), config.Default(), &buf, plainStyles()) {
		t.Fatalf("selftest failed:\n%s", buf.String())
	}
	out := buf.String()
	if strings.Contains(out, "FAIL") {
		t.Errorf("unexpected failure:\n%s", out)
	}
	if got := strings.Count(out, "PASS"); got != len(scenarios)+1 {
		t.Errorf("%d passes, want %d:\n%s", got, len(scenarios)+1, out)
	}
}

func TestInteractiveFilter(t *testing.T) {
	m := newInteractiveModel("test", []*iface.Interface{itest.ITest1, itest.ITest2})
	if len(m.visible) != 18 {
		t.Fatalf("visible = %d, want 18", len(m.visible))
	}

	for _, r := range "obj_array" {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	var names []string
	for _, e := range m.visible {
		names = append(names, e.label())
	}
	want := []string{"ITest1.test_obj_array_in", "ITest1.test_obj_array_out"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("filtered (-want +got):\n%s", diff)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.state != stateShowLayout {
		t.Fatal("enter did not open the layout view")
	}
	if view := m.View(); !strings.Contains(view, "ITest1.test_obj_array_out") || !strings.Contains(view, "OO") {
		t.Errorf("layout view:\n%s", view)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.state != stateSelectMethod {
		t.Error("esc did not return to the method list")
	}
}
