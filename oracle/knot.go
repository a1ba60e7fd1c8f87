//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package oracle

import (
	"math/bits"

	"github.com/markkurossi/dlstat/state"
)

var (
	knotConstant6 = [63]byte{
		0x01, 0x02, 0x04, 0x08, 0x10, 0x21, 0x03, 0x06,
		0x0c, 0x18, 0x31, 0x22, 0x05, 0x0a, 0x14, 0x29,
		0x13, 0x27, 0x0f, 0x1e, 0x3d, 0x3a, 0x34, 0x28,
		0x11, 0x23, 0x07, 0x0e, 0x1c, 0x39, 0x32, 0x24,
		0x09, 0x12, 0x25, 0x0b, 0x16, 0x2d, 0x1b, 0x37,
		0x2e, 0x1d, 0x3b, 0x36, 0x2c, 0x19, 0x33, 0x26,
		0x0d, 0x1a, 0x35, 0x2a, 0x15, 0x2b, 0x17, 0x2f,
		0x1f, 0x3f, 0x3e, 0x3c, 0x38, 0x30, 0x20,
	}
	knotInvSbox = invertTable(sboxTable(4, knotSubstitute))
)

// KNOT256 implements the 256-bit KNOT permutation. The state is 32
// byte cells holding the rows x0...x3 in big-endian order.
type KNOT256 struct{}

// Name implements Oracle.Name.
func (c KNOT256) Name() string {
	return "knot"
}

// Block implements Oracle.Block.
func (c KNOT256) Block() state.Layout {
	return state.Bytes(32)
}

// Key implements Oracle.Key.
func (c KNOT256) Key() state.Layout {
	return state.Bytes(0)
}

// MaxRounds implements Oracle.MaxRounds.
func (c KNOT256) MaxRounds() int {
	return 52
}

// KeySchedule implements Oracle.KeySchedule.
func (c KNOT256) KeySchedule(key state.State, rounds int) (Schedule, error) {
	if err := checkKey(c, key, rounds); err != nil {
		return nil, err
	}
	return knotSchedule(rounds), nil
}

type knotSchedule int

func (ks knotSchedule) Rounds() int {
	return int(ks)
}

func (ks knotSchedule) Encrypt(dst, src state.State, rounds int) {
	var x [4]uint64
	loadWords(x[:], src)
	for r := 0; r < rounds; r++ {
		x[0] ^= uint64(knotConstant6[r])
		knotSubstitute(x[:])
		x[1] = bits.RotateLeft64(x[1], 1)
		x[2] = bits.RotateLeft64(x[2], 8)
		x[3] = bits.RotateLeft64(x[3], 25)
	}
	storeWords(dst, x[:])
}

func (ks knotSchedule) Decrypt(dst, src state.State, rounds int) {
	var x [4]uint64
	loadWords(x[:], src)
	for r := rounds - 1; r >= 0; r-- {
		x[1] = bits.RotateLeft64(x[1], -1)
		x[2] = bits.RotateLeft64(x[2], -8)
		x[3] = bits.RotateLeft64(x[3], -25)
		applyColumns(x[:], knotInvSbox)
		x[0] ^= uint64(knotConstant6[r])
	}
	storeWords(dst, x[:])
}

func knotSubstitute(x []uint64) {
	a, b, c, d := x[0], x[1], x[2], x[3]

	t1 := ^a
	t2 := b & t1
	t3 := c ^ t2
	h := d ^ t3
	t5 := b | c
	t6 := d ^ t1
	g := t5 ^ t6
	t8 := b ^ d
	t9 := t3 & t6
	e := t8 ^ t9
	t11 := g & t8
	f := t3 ^ t11

	x[0], x[1], x[2], x[3] = e, f, g, h
}
