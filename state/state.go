//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package state implements cell-packed bit vectors for cipher states,
// keys, differences, and linear masks.
//
// A state is a sequence of cells, each holding CellBits bits in the
// low bits of one byte. Nibble-oriented ciphers use 4-bit cells and
// byte-oriented ciphers use 8-bit cells. The high bits of a nibble
// cell are undefined and they are never included in parity or
// equality computations.
package state

import (
	"fmt"
	"math/bits"

	"github.com/markkurossi/dlstat/env"
)

// Layout describes the shape of a state: Cells cells of CellBits bits
// each.
type Layout struct {
	Cells    int
	CellBits int
}

// Nibbles returns a layout of n 4-bit cells.
func Nibbles(n int) Layout {
	return Layout{
		Cells:    n,
		CellBits: 4,
	}
}

// Bytes returns a layout of n 8-bit cells.
func Bytes(n int) Layout {
	return Layout{
		Cells:    n,
		CellBits: 8,
	}
}

// Bits returns the number of defined bits in the layout.
func (l Layout) Bits() int {
	return l.Cells * l.CellBits
}

// CellMask returns the mask of the defined bits of a cell.
func (l Layout) CellMask() byte {
	return byte(1<<l.CellBits - 1)
}

// New creates a new all-zero state for the layout.
func (l Layout) New() State {
	return make(State, l.Cells)
}

// Ones creates a new state with all defined bits set.
func (l Layout) Ones() State {
	s := l.New()
	for i := range s {
		s[i] = l.CellMask()
	}
	return s
}

// Mask clears the undefined high bits of every cell of s.
func (l Layout) Mask(s State) {
	m := l.CellMask()
	for i := range s {
		s[i] &= m
	}
}

// Check verifies that s has the width of the layout and that it has no
// undefined bits set.
func (l Layout) Check(s State) error {
	if len(s) != l.Cells {
		return env.ConfigErrorf("state width mismatch: got %d cells, expected %d",
			len(s), l.Cells)
	}
	m := ^l.CellMask()
	for i, c := range s {
		if c&m != 0 {
			return env.ConfigErrorf("cell %d: value %x exceeds %d bits",
				i, c, l.CellBits)
		}
	}
	return nil
}

// String describes the layout.
func (l Layout) String() string {
	switch l.CellBits {
	case 4:
		return fmt.Sprintf("%d×nibble", l.Cells)
	case 8:
		return fmt.Sprintf("%d×byte", l.Cells)
	default:
		return fmt.Sprintf("%d×%d-bit", l.Cells, l.CellBits)
	}
}

// Validate checks that the layout is supported.
func (l Layout) Validate() error {
	if l.CellBits != 4 && l.CellBits != 8 {
		return env.ConfigErrorf("unsupported cell width %d", l.CellBits)
	}
	if l.Cells <= 0 {
		return env.ConfigErrorf("invalid cell count %d", l.Cells)
	}
	return nil
}

// State holds one cell per byte.
type State []byte

// Clone returns a copy of the state.
func (s State) Clone() State {
	result := make(State, len(s))
	copy(result, s)
	return result
}

// IsZero tests if all cells of the state are zero.
func (s State) IsZero() bool {
	for _, c := range s {
		if c != 0 {
			return false
		}
	}
	return true
}

// Equal tests if the states are equal.
func (s State) Equal(o State) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if s[i] != o[i] {
			return false
		}
	}
	return true
}

// Zeroize clears the state.
func (s State) Zeroize() {
	for i := range s {
		s[i] = 0
	}
}

// Xor sets dst to a XOR b. All arguments must have the same length.
func Xor(dst, a, b State) {
	for i := range dst {
		dst[i] = a[i] ^ b[i]
	}
}

// Dot computes the inner product of a and b over GF(2), counting only
// the defined bits of each cell. Dot is symmetric and Dot(x, 0) is 0.
func Dot(a, b State, l Layout) uint {
	var acc byte
	for i := range a {
		acc ^= a[i] & b[i]
	}
	return uint(bits.OnesCount8(acc&l.CellMask()) & 1)
}

// Parity returns the parity of x under the linear mask.
func Parity(x, mask State, l Layout) uint {
	return Dot(x, mask, l)
}

// EqualMasked tests if (a XOR b) AND mask equals diff AND mask.
func EqualMasked(a, b, diff, mask State, l Layout) bool {
	m := l.CellMask()
	for i := range a {
		if (a[i]^b[i]^diff[i])&mask[i]&m != 0 {
			return false
		}
	}
	return true
}

// Weight returns the number of set defined bits of s.
func Weight(s State, l Layout) int {
	var count int
	m := l.CellMask()
	for _, c := range s {
		count += bits.OnesCount8(c & m)
	}
	return count
}
