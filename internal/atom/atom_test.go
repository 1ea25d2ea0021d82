package atom

import (
	"errors"
	"testing"
)

func TestMakeRoundTrip(t *testing.T) {
	cases := []struct {
		typ       uint32
		stateBits uint
		wantCode  uint
	}{
		{typ: Empty, stateBits: 62, wantCode: 0},
		{typ: 1, stateBits: 0, wantCode: 1},
		{typ: 4095, stateBits: 50, wantCode: 1},
		{typ: 4096, stateBits: 38, wantCode: 2},
		{typ: 1<<24 - 1, stateBits: 10, wantCode: 2},
		{typ: 1 << 24, stateBits: 34, wantCode: 3},
		{typ: MaxType, stateBits: 0, wantCode: 3},
	}
	for _, tc := range cases {
		a, err := Make(tc.typ, tc.stateBits)
		if err != nil {
			t.Fatalf("Make(%d, %d): %v", tc.typ, tc.stateBits, err)
		}
		if got := a.Type(); got != tc.typ {
			t.Fatalf("Make(%d).Type() = %d", tc.typ, got)
		}
		if a.LengthCode() != tc.wantCode {
			t.Fatalf("type %d: code %d, want %d", tc.typ, a.LengthCode(), tc.wantCode)
		}
		capacity, err := StateCapacity(a.LengthCode())
		if err != nil {
			t.Fatalf("StateCapacity: %v", err)
		}
		if capacity < tc.stateBits {
			t.Fatalf("type %d: capacity %d < requested %d", tc.typ, capacity, tc.stateBits)
		}
	}
}

func TestMakeErrors(t *testing.T) {
	if _, err := Make(MaxType+1, 0); !errors.Is(err, ErrInvalidType) {
		t.Fatalf("expected ErrInvalidType, got %v", err)
	}
	if _, err := Make(1, 51); !errors.Is(err, ErrStateOverflow) {
		t.Fatalf("expected ErrStateOverflow, got %v", err)
	}
	if _, err := Make(1<<24, 35); !errors.Is(err, ErrStateOverflow) {
		t.Fatalf("expected ErrStateOverflow for code 3, got %v", err)
	}
	if _, err := StateCapacity(LengthCodes); !errors.Is(err, ErrInvalidLengthCode) {
		t.Fatalf("expected ErrInvalidLengthCode, got %v", err)
	}
}

func TestStateCapacities(t *testing.T) {
	want := []uint{62, 50, 38, 34}
	for code, w := range want {
		got, err := StateCapacity(uint(code))
		if err != nil || got != w {
			t.Fatalf("StateCapacity(%d) = %d, %v; want %d", code, got, err, w)
		}
	}
}

func TestEmptyIsZeroWord(t *testing.T) {
	var zero Atom
	if !zero.IsEmpty() {
		t.Fatal("zero atom must be empty")
	}
	made := MustMake(Empty, 0)
	if made != zero || !made.Equal(zero) {
		t.Fatalf("Make(Empty) = %v, want zero word", made)
	}
}

func TestStateAccess(t *testing.T) {
	a := MustMake(7, 16)
	b, err := a.WithState(4, 8, 0xab)
	if err != nil {
		t.Fatalf("WithState: %v", err)
	}
	if a.Equal(b) {
		t.Fatal("WithState must return a modified copy")
	}
	got, err := b.State(4, 8)
	if err != nil || got != 0xab {
		t.Fatalf("State = %#x, %v", got, err)
	}
	if b.Type() != 7 {
		t.Fatalf("state write clobbered type: %d", b.Type())
	}
	if _, err := b.WithState(0, 4, 0x1f); !errors.Is(err, ErrStateOverflow) {
		t.Fatalf("expected overflow for wide value, got %v", err)
	}
	if _, err := b.State(45, 6); !errors.Is(err, ErrStateOverflow) {
		t.Fatalf("expected overflow past capacity, got %v", err)
	}
	top, err := b.WithState(49, 1, 1)
	if err != nil {
		t.Fatalf("highest state bit: %v", err)
	}
	if top.Type() != 7 {
		t.Fatalf("highest state bit leaked into type: %d", top.Type())
	}
}

func TestBinaryBigEndian(t *testing.T) {
	a := FromBits(0x0102030405060708)
	data, err := a.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	if data[0] != 0x01 || data[7] != 0x08 {
		t.Fatalf("unexpected byte order: %x", data)
	}
	var b Atom
	if err := b.UnmarshalBinary(data); err != nil {
		t.Fatalf("UnmarshalBinary: %v", err)
	}
	if b != a {
		t.Fatalf("got %v, want %v", b, a)
	}
	if err := b.UnmarshalBinary(data[:3]); err == nil {
		t.Fatal("expected short input to fail")
	}
}

func TestLayoutBits(t *testing.T) {
	a := MustMake(1, 0)
	if a.Bits() != 1<<62|1<<50 {
		t.Fatalf("type 1 layout = %#016x", a.Bits())
	}
	if a.String() != "P0[1/0]" {
		t.Fatalf("String() = %q", a.String())
	}
}
