package errors

import (
	"errors"
	"strings"
	"testing"
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
				Phase:  PhaseDecode,
				Kind:   KindTypeMismatch,
				Path:   []string{"user", "address", "zip"},
				GoType: "string",
				Shape:  "u32",
				Detail: "cannot convert",
			},
			contains: []string{"[decode]", "type_mismatch", "user.address.zip", "string", "u32", "cannot convert"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseDecode,
				Kind:  KindInsufficientData,
			},
			contains: []string{"[decode]", "insufficient_data"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseEncode,
				Kind:   KindTransport,
				Detail: "sink closed",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[encode]", "transport", "sink closed", "caused by", "underlying error"},
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
	err := Transport(PhaseEncode, cause)

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause through the chain")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhaseDecode,
		Kind:  KindInvalidDiscriminant,
		Path:  []string{"foo"},
	}

	if !err.Is(&Error{Phase: PhaseDecode, Kind: KindInvalidDiscriminant}) {
		t.Error("Is should match same phase and kind")
	}
	if err.Is(&Error{Phase: PhaseEncode, Kind: KindInvalidDiscriminant}) {
		t.Error("Is should not match different phase")
	}
	if err.Is(&Error{Phase: PhaseDecode, Kind: KindOverflow}) {
		t.Error("Is should not match different kind")
	}

	target := &Error{Phase: PhaseDecode, Kind: KindInvalidDiscriminant}
	if !errors.Is(err, target) {
		t.Error("errors.Is should match")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseEncode, KindTypeMismatch).
		Path("user", "name").
		GoType("string").
		Shape("u32").
		Value(42).
		Cause(cause).
		Detail("expected %s, got %s", "string", "int").
		Build()

	if err.Phase != PhaseEncode {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseEncode)
	}
	if err.Kind != KindTypeMismatch {
		t.Errorf("Kind = %v, want %v", err.Kind, KindTypeMismatch)
	}
	if len(err.Path) != 2 || err.Path[0] != "user" || err.Path[1] != "name" {
		t.Errorf("Path = %v, want [user name]", err.Path)
	}
	if err.GoType != "string" || err.Shape != "u32" {
		t.Errorf("GoType=%v Shape=%v", err.GoType, err.Shape)
	}
	if err.Value != 42 {
		t.Errorf("Value = %v, want 42", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "expected string, got int" {
		t.Errorf("Detail = %v, want 'expected string, got int'", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("InsufficientData", func(t *testing.T) {
		err := InsufficientData(PhaseDecode, 8, 3)
		if err.Kind != KindInsufficientData {
			t.Errorf("Kind = %v, want %v", err.Kind, KindInsufficientData)
		}
		if !strings.Contains(err.Detail, "need 8") || !strings.Contains(err.Detail, "have 3") {
			t.Errorf("Detail = %v, should contain counts", err.Detail)
		}
	})

	t.Run("Capacity", func(t *testing.T) {
		err := Capacity(PhaseEncode, 16, 4)
		if err.Kind != KindCapacity {
			t.Errorf("Kind = %v, want %v", err.Kind, KindCapacity)
		}
	})

	t.Run("InvalidUTF8", func(t *testing.T) {
		err := InvalidUTF8(PhaseDecode, []string{"str"}, []byte{0xff, 0xfe})
		if err.Kind != KindInvalidUTF8 {
			t.Errorf("Kind = %v, want %v", err.Kind, KindInvalidUTF8)
		}
		if !strings.Contains(err.Detail, "fffe") {
			t.Errorf("Detail = %v, should contain offending bytes", err.Detail)
		}
	})

	t.Run("InvalidChar", func(t *testing.T) {
		err := InvalidChar(PhaseDecode, nil, 0xD800)
		if err.Kind != KindInvalidChar {
			t.Errorf("Kind = %v, want %v", err.Kind, KindInvalidChar)
		}
		if err.Value != uint32(0xD800) {
			t.Errorf("Value = %v, want raw code 0xD800", err.Value)
		}
	})

	t.Run("InvalidDiscriminant", func(t *testing.T) {
		err := InvalidDiscriminant(PhaseDecode, []string{"option"}, 5, 1)
		if err.Kind != KindInvalidDiscriminant {
			t.Errorf("Kind = %v, want %v", err.Kind, KindInvalidDiscriminant)
		}
		if err.Value != uint32(5) {
			t.Errorf("Value = %v, want 5", err.Value)
		}
	})

	t.Run("Unsupported", func(t *testing.T) {
		err := Unsupported(PhaseDecode, "decode any")
		if err.Kind != KindUnsupported {
			t.Errorf("Kind = %v, want %v", err.Kind, KindUnsupported)
		}
	})

	t.Run("LengthMismatch", func(t *testing.T) {
		err := LengthMismatch(PhaseEncode, nil, 3, 2)
		if err.Kind != KindLengthMismatch {
			t.Errorf("Kind = %v, want %v", err.Kind, KindLengthMismatch)
		}
	})

	t.Run("Overflow", func(t *testing.T) {
		err := Overflow(PhaseEncode, []string{"val"}, 300, "u8")
		if err.Kind != KindOverflow {
			t.Errorf("Kind = %v, want %v", err.Kind, KindOverflow)
		}
		if err.Value != 300 {
			t.Errorf("Value = %v, want 300", err.Value)
		}
	})

	t.Run("NilPointer", func(t *testing.T) {
		err := NilPointer(PhaseDecode, []string{"ptr"}, "*User")
		if err.Kind != KindNilPointer || err.GoType != "*User" {
			t.Errorf("got Kind=%v GoType=%v", err.Kind, err.GoType)
		}
	})

	t.Run("ParseFailed", func(t *testing.T) {
		err := ParseFailed("shape file", errors.New("bad yaml"))
		if err.Phase != PhaseParse || err.Kind != KindInvalidData {
			t.Errorf("got Phase=%v Kind=%v", err.Phase, err.Kind)
		}
	})
}

func TestCustom(t *testing.T) {
	t.Run("capture keeps message", func(t *testing.T) {
		err := Custom(PhaseDecode, Capture{}, "age %d out of range", 200)
		if err.Kind != KindCustom {
			t.Fatalf("Kind = %v, want %v", err.Kind, KindCustom)
		}
		cause, ok := CustomCause(err)
		if !ok {
			t.Fatal("CustomCause should report the custom arm")
		}
		if cause.Error() != "age 200 out of range" {
			t.Errorf("cause = %q", cause.Error())
		}
	})

	t.Run("nil collector captures", func(t *testing.T) {
		err := Custom(PhaseEncode, nil, "plain")
		cause, _ := CustomCause(err)
		if cause == nil || cause.Error() != "plain" {
			t.Errorf("cause = %v, want plain", cause)
		}
	})

	t.Run("discard shares preallocated errors", func(t *testing.T) {
		a := Custom(PhaseDecode, Discard{}, "first %d", 1)
		b := Custom(PhaseDecode, Discard{}, "second")
		if a != b {
			t.Error("Discard should return the same preallocated error per phase")
		}
		if !errors.Is(a, ErrMessageDiscarded) {
			t.Error("discarded error should wrap ErrMessageDiscarded")
		}
	})

	t.Run("discard allocates nothing", func(t *testing.T) {
		allocs := testing.AllocsPerRun(100, func() {
			_ = Custom(PhaseEncode, Discard{}, "msg")
		})
		if allocs != 0 {
			t.Errorf("allocs = %v, want 0", allocs)
		}
	})

	t.Run("inner arm is not custom", func(t *testing.T) {
		if _, ok := CustomCause(Unsupported(PhaseDecode, "x")); ok {
			t.Error("unsupported error must not report a custom cause")
		}
		kind, ok := KindOf(Unsupported(PhaseDecode, "x"))
		if !ok || kind != KindUnsupported {
			t.Errorf("KindOf = %v, %v", kind, ok)
		}
	})
}
