//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package oracle

import (
	"github.com/markkurossi/dlstat/state"
)

var (
	warpSbox = [16]byte{
		0xc, 0xa, 0xd, 0x3, 0xe, 0xb, 0xf, 0x7,
		0x8, 0x9, 0x1, 0x5, 0x0, 0x2, 0x4, 0x6,
	}
	warpPerm = [32]int{
		31, 6, 29, 14, 1, 12, 21, 8, 27, 2, 3, 0, 25, 4, 23, 10,
		15, 22, 13, 30, 17, 28, 5, 24, 11, 18, 19, 16, 9, 20, 7, 26,
	}
	warpRC0 = [41]byte{
		0x0, 0x0, 0x1, 0x3, 0x7, 0xf, 0xf, 0xf, 0xe, 0xd, 0xa, 0x5, 0xa, 0x5,
		0xb, 0x6, 0xc, 0x9, 0x3, 0x6, 0xd, 0xb, 0x7, 0xe, 0xd, 0xb, 0x6, 0xd,
		0xa, 0x4, 0x9, 0x2, 0x4, 0x9, 0x3, 0x7, 0xe, 0xc, 0x8, 0x1, 0x2,
	}
	warpRC1 = [41]byte{
		0x4, 0xc, 0xc, 0xc, 0xc, 0xc, 0x8, 0x4, 0x8, 0x4, 0x8, 0x4, 0xc, 0x8,
		0x0, 0x4, 0xc, 0x8, 0x4, 0xc, 0xc, 0x8, 0x4, 0xc, 0x8, 0x4, 0x8, 0x0,
		0x4, 0x8, 0x0, 0x4, 0xc, 0xc, 0x8, 0x0, 0x0, 0x4, 0x8, 0x4, 0xc,
	}
)

// WARP implements the WARP block cipher. The 128-bit state and key are
// 32 nibble cells. Even cells form the left branches and odd cells the
// right branches of the generalized Feistel network. Every round,
// including the last one, ends with the nibble shuffle.
type WARP struct{}

// Name implements Oracle.Name.
func (c WARP) Name() string {
	return "warp"
}

// Block implements Oracle.Block.
func (c WARP) Block() state.Layout {
	return state.Nibbles(32)
}

// Key implements Oracle.Key.
func (c WARP) Key() state.Layout {
	return state.Nibbles(32)
}

// MaxRounds implements Oracle.MaxRounds.
func (c WARP) MaxRounds() int {
	return 41
}

// KeySchedule implements Oracle.KeySchedule.
func (c WARP) KeySchedule(key state.State, rounds int) (Schedule, error) {
	if err := checkKey(c, key, rounds); err != nil {
		return nil, err
	}
	ks := &warpSchedule{
		rounds: rounds,
	}
	copy(ks.k[:], key)
	return ks, nil
}

// warpSchedule holds the master key; round r uses its half r%2.
type warpSchedule struct {
	rounds int
	k      [32]byte
}

func (ks *warpSchedule) Rounds() int {
	return ks.rounds
}

func (ks *warpSchedule) feistel(x *[32]byte, r int) {
	k := ks.k[(r%2)*16:]
	for j := 0; j < 16; j++ {
		x[2*j+1] ^= warpSbox[x[2*j]] ^ k[j]
	}
	x[1] ^= warpRC0[r]
	x[3] ^= warpRC1[r]
}

func (ks *warpSchedule) Encrypt(dst, src state.State, rounds int) {
	var x, t [32]byte
	copy(x[:], src)
	for r := 0; r < rounds; r++ {
		ks.feistel(&x, r)
		for j := 0; j < 32; j++ {
			t[warpPerm[j]] = x[j]
		}
		x = t
	}
	copy(dst, x[:])
}

func (ks *warpSchedule) Decrypt(dst, src state.State, rounds int) {
	var x, t [32]byte
	copy(x[:], src)
	for r := rounds - 1; r >= 0; r-- {
		for j := 0; j < 32; j++ {
			t[j] = x[warpPerm[j]]
		}
		x = t
		ks.feistel(&x, r)
	}
	copy(dst, x[:])
}
