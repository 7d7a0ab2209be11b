package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/wippyai/object-abi/object"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseUnmarshal,
				Kind:   KindTypeMismatch,
				Path:   []string{"Collection", "b"},
				GoType: "string",
				Type:   "uint32",
				Detail: "cannot convert",
			},
			contains: []string{"[unmarshal]", "type_mismatch", "Collection.b", "string", "uint32", "cannot convert"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseDispatch,
				Kind:  KindOutOfBounds,
			},
			contains: []string{"[dispatch]", "out_of_bounds"},
		},
		{
			name: "error with status",
			err: &Error{
				Phase:  PhaseTransport,
				Kind:   KindNotFound,
				Status: object.ErrorBadObj,
			},
			contains: []string{"[transport]", "not_found", "BadObject"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseConfig,
				Kind:   KindInvalidData,
				Detail: "bad file",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[config]", "invalid_data", "bad file", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseMarshal,
		Kind:  KindInvalidData,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhaseDescribe,
		Kind:  KindShape,
		Path:  []string{"foo"},
	}

	if !err.Is(&Error{Phase: PhaseDescribe, Kind: KindShape}) {
		t.Error("Is should match same phase and kind")
	}
	if err.Is(&Error{Phase: PhaseParse, Kind: KindShape}) {
		t.Error("Is should not match different phase")
	}
	if err.Is(&Error{Phase: PhaseDescribe, Kind: KindDuplicate}) {
		t.Error("Is should not match different kind")
	}
	if !errors.Is(fmt.Errorf("wrapped: %w", err), &Error{Phase: PhaseDescribe, Kind: KindShape}) {
		t.Error("errors.Is should match through wrapping")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseDispatch, KindSizeMismatch).
		Path("ITest1", "in_struct").
		GoType("itest.Collection").
		Type("Collection").
		Value(8).
		Status(object.ErrorSizeOut).
		Cause(cause).
		Detail("want %d, got %d", 16, 8).
		Build()

	if err.Phase != PhaseDispatch || err.Kind != KindSizeMismatch {
		t.Errorf("phase/kind = %v/%v", err.Phase, err.Kind)
	}
	if len(err.Path) != 2 || err.Path[1] != "in_struct" {
		t.Errorf("Path = %v", err.Path)
	}
	if err.Detail != "want 16, got 8" {
		t.Errorf("Detail = %q", err.Detail)
	}
	if err.Status != object.ErrorSizeOut {
		t.Errorf("Status = %v", err.Status)
	}
	if err.Value != 8 {
		t.Errorf("Value = %v", err.Value)
	}
	if !errors.Is(err, cause) {
		t.Error("cause not reachable")
	}
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want object.Status
	}{
		{"nil", nil, object.OK},
		{"status", object.ErrorBusy, object.ErrorBusy},
		{"wrapped status", fmt.Errorf("call: %w", object.ErrorTimeout), object.ErrorTimeout},
		{"user status", object.Status(12), object.Status(12)},
		{"structured", SizeMismatch(PhaseDispatch, nil, 4, 2, object.ErrorSizeOut), object.ErrorSizeOut},
		{"structured without status", InvalidData(PhaseMarshal, nil, "x"), object.Error},
		{"structured with status cause", Wrap(PhaseTransport, KindInvalidData, object.ErrorDefunct, "closed"), object.ErrorDefunct},
		{"plain", errors.New("boom"), object.Error},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusOf(tt.err); got != tt.want {
				t.Errorf("StatusOf = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConvenienceConstructors(t *testing.T) {
	tests := []struct {
		name   string
		err    *Error
		kind   Kind
		status object.Status
	}{
		{"type mismatch", TypeMismatch(PhaseUnmarshal, nil, "int", "uint8"), KindTypeMismatch, object.ErrorInvalid},
		{"out of bounds", OutOfBounds(PhaseUnmarshal, nil, 10, 5), KindOutOfBounds, object.ErrorInvalid},
		{"unsupported", Unsupported(PhaseMarshal, "maps"), KindUnsupported, object.OK},
		{"nil pointer", NilPointer(PhaseMarshal, nil, "*T"), KindNilPointer, object.OK},
		{"overflow", Overflow(PhaseDescribe, nil, 16, "4-bit count"), KindOverflow, object.OK},
		{"not found", NotFound(PhaseParse, nil, "struct Foo"), KindNotFound, object.OK},
		{"duplicate", Duplicate(PhaseDescribe, nil, "method id 3"), KindDuplicate, object.OK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", tt.err.Kind, tt.kind)
			}
			if tt.err.Status != tt.status {
				t.Errorf("Status = %v, want %v", tt.err.Status, tt.status)
			}
			if tt.err.Error() == "" {
				t.Error("empty message")
			}
		})
	}
}
