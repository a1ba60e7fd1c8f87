//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package oracle

import (
	"github.com/markkurossi/dlstat/state"
)

var lblockSbox = [10][16]byte{
	{14, 9, 15, 0, 13, 4, 10, 11, 1, 2, 8, 3, 7, 6, 12, 5},
	{4, 11, 14, 9, 15, 13, 0, 10, 7, 12, 5, 6, 2, 8, 1, 3},
	{1, 14, 7, 12, 15, 13, 0, 6, 11, 5, 9, 3, 2, 4, 8, 10},
	{7, 6, 8, 11, 0, 15, 3, 14, 9, 10, 12, 13, 5, 2, 4, 1},
	{14, 5, 15, 0, 7, 2, 12, 13, 1, 8, 4, 9, 11, 10, 6, 3},
	{2, 13, 11, 12, 15, 14, 0, 9, 7, 10, 6, 3, 1, 8, 4, 5},
	{11, 9, 4, 14, 0, 15, 10, 13, 6, 12, 5, 7, 3, 8, 1, 2},
	{13, 10, 15, 0, 14, 4, 9, 11, 2, 1, 8, 3, 7, 5, 12, 6},
	{8, 7, 14, 5, 15, 13, 0, 6, 11, 12, 9, 10, 2, 4, 1, 3},
	{11, 5, 15, 0, 7, 2, 9, 13, 4, 8, 1, 12, 14, 10, 3, 6},
}

// lblocksSbox uses the first LBlock S-box in every position.
var lblocksSbox = [10][16]byte{
	lblockSbox[0], lblockSbox[0], lblockSbox[0], lblockSbox[0],
	lblockSbox[0], lblockSbox[0], lblockSbox[0], lblockSbox[0],
	lblockSbox[0], lblockSbox[0],
}

// LBlock implements the LBlock block cipher with an 80-bit key and
// its LBlock-s variant with a single S-box. The 64-bit state is 8 byte
// cells, most significant byte first: cells 0-3 hold the half entering
// the round function. Every round ends by swapping the halves,
// including the last one, so the ciphertext is the published one with
// its halves exchanged. The key is 10 byte cells, most significant
// byte first.
type LBlock struct {
	name string
	sbox *[10][16]byte
}

// NewLBlock creates an LBlock oracle.
func NewLBlock() *LBlock {
	return &LBlock{
		name: "lblock",
		sbox: &lblockSbox,
	}
}

// NewLBlockS creates an LBlock-s oracle.
func NewLBlockS() *LBlock {
	return &LBlock{
		name: "lblocks",
		sbox: &lblocksSbox,
	}
}

// Name implements Oracle.Name.
func (c *LBlock) Name() string {
	return c.name
}

// Block implements Oracle.Block.
func (c *LBlock) Block() state.Layout {
	return state.Bytes(8)
}

// Key implements Oracle.Key.
func (c *LBlock) Key() state.Layout {
	return state.Bytes(10)
}

// MaxRounds implements Oracle.MaxRounds.
func (c *LBlock) MaxRounds() int {
	return 32
}

// KeySchedule implements Oracle.KeySchedule.
func (c *LBlock) KeySchedule(key state.State, rounds int) (Schedule, error) {
	if err := checkKey(c, key, rounds); err != nil {
		return nil, err
	}
	ks := &lblockSchedule{
		sbox: c.sbox,
		rk:   make([][4]byte, rounds),
	}

	var k [10]byte
	for i := 0; i < 10; i++ {
		k[i] = key[9-i]
	}
	for r := 0; r < rounds; r++ {
		if r > 0 {
			// Rotate the 80-bit register left by 29 bits.
			var n [10]byte
			for i := 0; i < 10; i++ {
				n[i] = k[(i+7)%10]<<5 | k[(i+6)%10]>>3
			}
			k = n
			k[9] = c.sbox[9][k[9]>>4]<<4 | c.sbox[8][k[9]&0xf]
			k[6] ^= byte(r>>2) & 0x7
			k[5] ^= byte(r&0x3) << 6
		}
		ks.rk[r] = [4]byte{k[6], k[7], k[8], k[9]}
	}
	return ks, nil
}

type lblockSchedule struct {
	sbox *[10][16]byte
	rk   [][4]byte
}

func (ks *lblockSchedule) Rounds() int {
	return len(ks.rk)
}

// f computes the round function of the left half with the round key.
func (ks *lblockSchedule) f(x []byte, k *[4]byte) [4]byte {
	var s [4]byte
	for i := 0; i < 4; i++ {
		v := x[i] ^ k[i]
		s[i] = ks.sbox[2*i+1][v>>4]<<4 | ks.sbox[2*i][v&0xf]
	}
	return [4]byte{
		s[0]>>4 | s[1]&0xf0,
		s[0]&0xf | s[1]<<4,
		s[2]>>4 | s[3]&0xf0,
		s[2]&0xf | s[3]<<4,
	}
}

func (ks *lblockSchedule) Encrypt(dst, src state.State, rounds int) {
	var x [8]byte
	for i := 0; i < 8; i++ {
		x[i] = src[7-i]
	}
	for r := 0; r < rounds; r++ {
		t := ks.f(x[4:], &ks.rk[r])
		x[0], x[1], x[2], x[3] = x[3]^t[0], x[0]^t[1], x[1]^t[2], x[2]^t[3]
		x[0], x[1], x[2], x[3], x[4], x[5], x[6], x[7] =
			x[4], x[5], x[6], x[7], x[0], x[1], x[2], x[3]
	}
	for i := 0; i < 8; i++ {
		dst[7-i] = x[i]
	}
}

func (ks *lblockSchedule) Decrypt(dst, src state.State, rounds int) {
	var x [8]byte
	for i := 0; i < 8; i++ {
		x[i] = src[7-i]
	}
	for r := rounds - 1; r >= 0; r-- {
		x[0], x[1], x[2], x[3], x[4], x[5], x[6], x[7] =
			x[4], x[5], x[6], x[7], x[0], x[1], x[2], x[3]
		t := ks.f(x[4:], &ks.rk[r])
		x[0], x[1], x[2], x[3] = x[1]^t[1], x[2]^t[2], x[3]^t[3], x[0]^t[0]
	}
	for i := 0; i < 8; i++ {
		dst[7-i] = x[i]
	}
}
