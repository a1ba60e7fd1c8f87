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

// Simeck32 implements the Simeck32/64 block cipher. The 32-bit state
// is 4 byte cells holding the left and right words in big-endian
// order. The 64-bit key is 8 byte cells holding the key words k3, k2,
// k1, k0 in big-endian order.
type Simeck32 struct{}

// Name implements Oracle.Name.
func (c Simeck32) Name() string {
	return "simeck"
}

// Block implements Oracle.Block.
func (c Simeck32) Block() state.Layout {
	return state.Bytes(4)
}

// Key implements Oracle.Key.
func (c Simeck32) Key() state.Layout {
	return state.Bytes(8)
}

// MaxRounds implements Oracle.MaxRounds.
func (c Simeck32) MaxRounds() int {
	return 32
}

// KeySchedule implements Oracle.KeySchedule.
func (c Simeck32) KeySchedule(key state.State, rounds int) (Schedule, error) {
	if err := checkKey(c, key, rounds); err != nil {
		return nil, err
	}
	ks := make(simeckSchedule, rounds)

	var k [4]uint16
	for i := 0; i < 4; i++ {
		k[3-i] = uint16(key[2*i])<<8 | uint16(key[2*i+1])
	}
	constant := uint16(0xfffc)
	sequence := uint32(0x9a42bb1f)

	for r := 0; r < rounds; r++ {
		ks[r] = k[0]
		constant = constant&0xfffc | uint16(sequence&1)
		sequence >>= 1
		k[0], k[1] = k[1], simeckF(k[1])^k[0]^constant
		k[1], k[2], k[3] = k[2], k[3], k[1]
	}
	return ks, nil
}

func simeckF(x uint16) uint16 {
	return x&bits.RotateLeft16(x, 5) ^ bits.RotateLeft16(x, 1)
}

type simeckSchedule []uint16

func (ks simeckSchedule) Rounds() int {
	return len(ks)
}

func (ks simeckSchedule) Encrypt(dst, src state.State, rounds int) {
	l := uint16(src[0])<<8 | uint16(src[1])
	r := uint16(src[2])<<8 | uint16(src[3])
	for i := 0; i < rounds; i++ {
		l, r = simeckF(l)^r^ks[i], l
	}
	simeckStore(dst, l, r)
}

func (ks simeckSchedule) Decrypt(dst, src state.State, rounds int) {
	l := uint16(src[0])<<8 | uint16(src[1])
	r := uint16(src[2])<<8 | uint16(src[3])
	for i := rounds - 1; i >= 0; i-- {
		l, r = r, l^simeckF(r)^ks[i]
	}
	simeckStore(dst, l, r)
}

func simeckStore(dst state.State, l, r uint16) {
	dst[0] = byte(l >> 8)
	dst[1] = byte(l)
	dst[2] = byte(r >> 8)
	dst[3] = byte(r)
}
