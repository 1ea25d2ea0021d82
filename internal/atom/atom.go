// Package atom implements the fixed-width lattice cell encoding.
//
// An Atom is a 64-bit word. Bit 63 is the most significant bit.
//
//	bits 63..62                 length code (0-3)
//	next width(code) bits       type field, directly below the code
//	bits capacity-1..0          state, owned by the behavior of the type
//
// The type-field widths for codes 0..3 are 0, 12, 24 and 28 bits, so the
// state capacity is 62, 50, 38 or 34 bits. The all-zero word is the Empty
// atom: length code 0 with the implicit type 0.
package atom

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	// Bits is the total width of an atom.
	Bits = 64
	// LengthCodeBits is the width of the length code header.
	LengthCodeBits = 2
	// LengthCodes is the number of defined length codes.
	LengthCodes = 1 << LengthCodeBits
	// MaxType is the largest type representable by any length code.
	MaxType = 1<<28 - 1

	codeShift = Bits - LengthCodeBits
)

// Empty is the reserved type of the vacuum atom.
const Empty uint32 = 0

var typeWidths = [LengthCodes]uint{0, 12, 24, 28}

var (
	// ErrInvalidType reports a type too wide for every length code.
	ErrInvalidType = errors.New("atom: type not representable")
	// ErrStateOverflow reports a state range or value beyond the atom's capacity.
	ErrStateOverflow = errors.New("atom: state exceeds capacity")
	// ErrInvalidLengthCode reports a length code outside 0..3.
	ErrInvalidLengthCode = errors.New("atom: invalid length code")
	// ErrUnreachableState marks corrupted atom bits; Type panics with it.
	ErrUnreachableState = errors.New("atom: undefined length code in atom bits")
)

// Atom is a value type; copies are independent and equality is bitwise.
type Atom struct {
	bits uint64
}

// Make constructs an atom of the given type with room for at least stateBits
// bits of state. The smallest length code able to hold typ is used.
func Make(typ uint32, stateBits uint) (Atom, error) {
	code, err := LengthCodeFor(typ)
	if err != nil {
		return Atom{}, err
	}
	capacity, _ := StateCapacity(code)
	if stateBits > capacity {
		return Atom{}, fmt.Errorf("%w: %d bits requested, type %d allows %d", ErrStateOverflow, stateBits, typ, capacity)
	}
	return Atom{bits: uint64(code)<<codeShift | uint64(typ)<<capacity}, nil
}

// MustMake is like Make but panics on error. Intended for package-level
// default atoms whose types are known to be valid.
func MustMake(typ uint32, stateBits uint) Atom {
	a, err := Make(typ, stateBits)
	if err != nil {
		panic(err)
	}
	return a
}

// FromBits reinterprets a raw word as an atom.
func FromBits(bits uint64) Atom { return Atom{bits: bits} }

// LengthCodeFor returns the smallest length code whose type field can
// represent typ.
func LengthCodeFor(typ uint32) (uint, error) {
	for code, width := range typeWidths {
		if uint64(typ) < uint64(1)<<width {
			return uint(code), nil
		}
	}
	return 0, fmt.Errorf("%w: %d exceeds %d", ErrInvalidType, typ, MaxType)
}

// StateCapacity returns the number of state bits available under code.
func StateCapacity(code uint) (uint, error) {
	if code >= LengthCodes {
		return 0, fmt.Errorf("%w: %d", ErrInvalidLengthCode, code)
	}
	return Bits - LengthCodeBits - typeWidths[code], nil
}

// Bits returns the raw word.
func (a Atom) Bits() uint64 { return a.bits }

// LengthCode returns the header code.
func (a Atom) LengthCode() uint { return uint(a.bits >> codeShift) }

// DecodeType reads the length code, then the type field of matching width.
func (a Atom) DecodeType() (uint32, error) {
	switch code := a.LengthCode(); code {
	case 0:
		return Empty, nil
	case 1, 2, 3:
		width := typeWidths[code]
		capacity := Bits - LengthCodeBits - width
		return uint32(a.bits>>capacity) & (1<<width - 1), nil
	default:
		return 0, fmt.Errorf("%w: code %d", ErrUnreachableState, code)
	}
}

// Type returns the atom's type. A corrupt header panics.
func (a Atom) Type() uint32 {
	typ, err := a.DecodeType()
	if err != nil {
		panic(err)
	}
	return typ
}

// IsEmpty reports whether a is of the Empty type.
func (a Atom) IsEmpty() bool { return a.Type() == Empty }

// IsType reports whether a is of type typ.
func (a Atom) IsType(typ uint32) bool { return a.Type() == typ }

// StateCapacity returns the number of state bits under the atom's own code.
func (a Atom) StateCapacity() uint {
	capacity, _ := StateCapacity(a.LengthCode())
	return capacity
}

// Equal reports bitwise equality.
func (a Atom) Equal(b Atom) bool { return a.bits == b.bits }

// State reads width bits of state starting at bit pos.
func (a Atom) State(pos, width uint) (uint64, error) {
	if err := a.checkState(pos, width); err != nil {
		return 0, err
	}
	if width == 0 {
		return 0, nil
	}
	return (a.bits >> pos) & mask(width), nil
}

// WithState returns a copy of a with width bits at pos replaced by v.
func (a Atom) WithState(pos, width uint, v uint64) (Atom, error) {
	if err := a.checkState(pos, width); err != nil {
		return a, err
	}
	if width == 0 {
		return a, nil
	}
	m := mask(width)
	if v&^m != 0 {
		return a, fmt.Errorf("%w: value %#x wider than %d bits", ErrStateOverflow, v, width)
	}
	return Atom{bits: a.bits&^(m<<pos) | v<<pos}, nil
}

func (a Atom) checkState(pos, width uint) error {
	capacity := a.StateCapacity()
	if pos > capacity || width > capacity-pos {
		return fmt.Errorf("%w: bits [%d,%d) beyond capacity %d", ErrStateOverflow, pos, pos+width, capacity)
	}
	return nil
}

// MarshalBinary encodes the atom as 8 big-endian bytes.
func (a Atom) MarshalBinary() ([]byte, error) {
	return binary.BigEndian.AppendUint64(nil, a.bits), nil
}

// UnmarshalBinary decodes 8 big-endian bytes.
func (a *Atom) UnmarshalBinary(data []byte) error {
	if len(data) != Bits/8 {
		return fmt.Errorf("atom: want %d bytes, got %d", Bits/8, len(data))
	}
	a.bits = binary.BigEndian.Uint64(data)
	return nil
}

func (a Atom) String() string {
	typ, err := a.DecodeType()
	if err != nil {
		return fmt.Sprintf("P0[corrupt %#016x]", a.bits)
	}
	capacity := a.StateCapacity()
	return fmt.Sprintf("P0[%x/%x]", typ, a.bits&mask(capacity))
}

func mask(width uint) uint64 {
	if width >= 64 {
		return ^uint64(0)
	}
	return 1<<width - 1
}
