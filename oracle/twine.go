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
	twineSbox = [16]byte{
		0xc, 0x0, 0xf, 0xa, 0x2, 0xb, 0x9, 0x5,
		0x8, 0x3, 0xd, 0x7, 0x1, 0xe, 0x6, 0x4,
	}
	twinePi = [16]int{
		5, 0, 1, 4, 7, 12, 3, 8, 13, 6, 9, 2, 15, 10, 11, 14,
	}
	twineCon = [35]byte{
		0x01, 0x02, 0x04, 0x08, 0x10, 0x20, 0x03, 0x06,
		0x0c, 0x18, 0x30, 0x23, 0x05, 0x0a, 0x14, 0x28,
		0x13, 0x26, 0x0f, 0x1e, 0x3c, 0x3b, 0x35, 0x29,
		0x11, 0x22, 0x07, 0x0e, 0x1c, 0x38, 0x33, 0x25,
		0x09, 0x12, 0x24,
	}
)

// TWINE80 implements the TWINE block cipher with an 80-bit key. The
// 64-bit state is 16 nibble cells and the key is 20 nibble cells
// forming the key register directly. Every round, including the last
// one, ends with the block shuffle.
type TWINE80 struct{}

// Name implements Oracle.Name.
func (c TWINE80) Name() string {
	return "twine"
}

// Block implements Oracle.Block.
func (c TWINE80) Block() state.Layout {
	return state.Nibbles(16)
}

// Key implements Oracle.Key.
func (c TWINE80) Key() state.Layout {
	return state.Nibbles(20)
}

// MaxRounds implements Oracle.MaxRounds.
func (c TWINE80) MaxRounds() int {
	return 36
}

// KeySchedule implements Oracle.KeySchedule.
func (c TWINE80) KeySchedule(key state.State, rounds int) (Schedule, error) {
	if err := checkKey(c, key, rounds); err != nil {
		return nil, err
	}
	ks := make(twineSchedule, rounds)

	var k [20]byte
	copy(k[:], key)
	for r := 0; r < rounds; r++ {
		ks[r] = [8]byte{k[1], k[3], k[4], k[6], k[13], k[14], k[15], k[16]}
		if r+1 == rounds {
			break
		}
		k[1] ^= twineSbox[k[0]]
		k[4] ^= twineSbox[k[16]]
		k[7] ^= twineCon[r] >> 3
		k[19] ^= twineCon[r] & 0x7

		// Rotate the first four nibbles by one and the register by
		// four nibbles.
		k[0], k[1], k[2], k[3] = k[1], k[2], k[3], k[0]
		var t [20]byte
		copy(t[:], k[4:])
		copy(t[16:], k[:4])
		k = t
	}
	return ks, nil
}

type twineSchedule [][8]byte

func (ks twineSchedule) Rounds() int {
	return len(ks)
}

func (ks twineSchedule) Encrypt(dst, src state.State, rounds int) {
	var x, t [16]byte
	copy(x[:], src)
	for r := 0; r < rounds; r++ {
		for i := 0; i < 8; i++ {
			x[2*i+1] ^= twineSbox[x[2*i]^ks[r][i]]
		}
		for i := 0; i < 16; i++ {
			t[twinePi[i]] = x[i]
		}
		x = t
	}
	copy(dst, x[:])
}

func (ks twineSchedule) Decrypt(dst, src state.State, rounds int) {
	var x, t [16]byte
	copy(x[:], src)
	for r := rounds - 1; r >= 0; r-- {
		for i := 0; i < 16; i++ {
			t[i] = x[twinePi[i]]
		}
		x = t
		for i := 0; i < 8; i++ {
			x[2*i+1] ^= twineSbox[x[2*i]^ks[r][i]]
		}
	}
	copy(dst, x[:])
}
