package domain

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// ChordSize is the width of an encoded chord: 4 bytes of modifier mask then 8 bytes of keysym
const ChordSize = 12

// ChordKey is the fixed-width byte form of a chord used as the table key
type ChordKey [ChordSize]byte

// Chord is one key combination: the held modifiers plus a single key symbol
type Chord struct {
	Modifiers Modifier
	Symbol    uint64
}

// Key encodes the chord in native byte order. Tables built on one endianness
// cannot be read on the other.
func (c Chord) Key() ChordKey {
	var k ChordKey
	binary.NativeEndian.PutUint32(k[:4], uint32(c.Modifiers))
	binary.NativeEndian.PutUint64(k[4:], c.Symbol)
	return k
}

// DecodeChord is the inverse of Chord.Key
func DecodeChord(b []byte) (Chord, error) {
	if len(b) != ChordSize {
		return Chord{}, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidChordKey, len(b), ChordSize)
	}
	return Chord{
		Modifiers: Modifier(binary.NativeEndian.Uint32(b[:4])),
		Symbol:    binary.NativeEndian.Uint64(b[4:]),
	}, nil
}

// IsZero reports whether neither a modifier nor a symbol is set
func (c Chord) IsZero() bool {
	return c.Modifiers == 0 && c.Symbol == 0
}

// With returns a copy of the chord with extra modifier bits set
func (c Chord) With(mask Modifier) Chord {
	c.Modifiers |= mask
	return c
}

// LockVariants returns the plain, num-locked, caps-locked and fully locked chords.
// With zero lock masks some variants equal the plain chord.
func (c Chord) LockVariants(locks Locks) [4]Chord {
	num := c.With(locks.Num)
	caps := c.With(locks.Caps)
	return [4]Chord{c, num, caps, num.With(caps.Modifiers)}
}

// Compare orders chords by their encoded bytes
func (c Chord) Compare(other Chord) int {
	a, b := c.Key(), other.Key()
	return bytes.Compare(a[:], b[:])
}

func (c Chord) String() string {
	sym := KeysymName(c.Symbol)
	if c.Modifiers == 0 {
		return sym
	}
	if c.Symbol == 0 {
		return c.Modifiers.String()
	}
	return c.Modifiers.String() + "+" + sym
}
