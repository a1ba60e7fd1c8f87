//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package oracle

import (
	"fmt"

	"github.com/markkurossi/dlstat/state"
)

var (
	presentSbox = [16]byte{
		0xc, 0x5, 0x6, 0xb, 0x9, 0x0, 0xa, 0xd,
		0x3, 0xe, 0xf, 0x8, 0x4, 0x7, 0x1, 0x2,
	}
	presentInvSbox [16]byte
)

func init() {
	for i, v := range presentSbox {
		presentInvSbox[v] = byte(i)
	}
}

// Present implements the PRESENT block cipher with 80-bit or 128-bit
// keys. The 64-bit state is 16 nibble cells, cell 0 holding the most
// significant nibble. The key cells are ordered the same way. An
// r-round encryption applies r rounds followed by the round key r+1.
type Present struct {
	keyBits int
}

// NewPresent creates a PRESENT oracle for the key size in bits.
func NewPresent(keyBits int) *Present {
	return &Present{
		keyBits: keyBits,
	}
}

// Name implements Oracle.Name.
func (c *Present) Name() string {
	if c.keyBits == 128 {
		return "present128"
	}
	return "present"
}

// Block implements Oracle.Block.
func (c *Present) Block() state.Layout {
	return state.Nibbles(16)
}

// Key implements Oracle.Key.
func (c *Present) Key() state.Layout {
	return state.Nibbles(c.keyBits / 4)
}

// MaxRounds implements Oracle.MaxRounds.
func (c *Present) MaxRounds() int {
	return 31
}

// KeySchedule implements Oracle.KeySchedule.
func (c *Present) KeySchedule(key state.State, rounds int) (Schedule, error) {
	if err := checkKey(c, key, rounds); err != nil {
		return nil, err
	}
	ks := make(presentSchedule, rounds+1)

	hi := packNibbles(key[:16])
	switch c.keyBits {
	case 80:
		lo := uint16(packNibbles(key[16:]))
		for r := 0; r <= rounds; r++ {
			ks[r] = hi
			hi, lo = hi<<61|uint64(lo)<<45|hi>>19, uint16(hi>>3)
			hi = uint64(presentSbox[hi>>60])<<60 | hi&(1<<60-1)
			counter := uint64(r + 1)
			hi ^= counter >> 1
			lo ^= uint16(counter&1) << 15
		}

	case 128:
		lo := packNibbles(key[16:])
		for r := 0; r <= rounds; r++ {
			ks[r] = hi
			hi, lo = hi<<61|lo>>3, lo<<61|hi>>3
			hi = uint64(presentSbox[hi>>60])<<60 |
				uint64(presentSbox[hi>>56&0xf])<<56 | hi&(1<<56-1)
			counter := uint64(r + 1)
			hi ^= counter >> 2
			lo ^= (counter & 3) << 62
		}

	default:
		panic(fmt.Sprintf("invalid PRESENT key size %d", c.keyBits))
	}
	return ks, nil
}

type presentSchedule []uint64

func (ks presentSchedule) Rounds() int {
	return len(ks) - 1
}

func (ks presentSchedule) Encrypt(dst, src state.State, rounds int) {
	x := packNibbles(src)
	if rounds > 0 {
		for r := 0; r < rounds; r++ {
			x ^= ks[r]
			x = presentSubstitute(x, &presentSbox)
			x = presentPermute(x)
		}
		x ^= ks[rounds]
	}
	unpackNibbles(dst, x)
}

func (ks presentSchedule) Decrypt(dst, src state.State, rounds int) {
	x := packNibbles(src)
	if rounds > 0 {
		x ^= ks[rounds]
		for r := rounds - 1; r >= 0; r-- {
			x = presentInvPermute(x)
			x = presentSubstitute(x, &presentInvSbox)
			x ^= ks[r]
		}
	}
	unpackNibbles(dst, x)
}

func presentSubstitute(x uint64, sbox *[16]byte) uint64 {
	var result uint64
	for i := 0; i < 64; i += 4 {
		result |= uint64(sbox[x>>i&0xf]) << i
	}
	return result
}

// presentPermute moves bit i to position 16i mod 63, bit 63 staying in
// place.
func presentPermute(x uint64) uint64 {
	var result uint64
	for i := 0; i < 63; i++ {
		result |= (x >> i & 1) << (16 * i % 63)
	}
	return result | x&(1<<63)
}

func presentInvPermute(x uint64) uint64 {
	var result uint64
	for i := 0; i < 63; i++ {
		result |= (x >> (16 * i % 63) & 1) << i
	}
	return result | x&(1<<63)
}

// packNibbles packs up to 16 nibble cells into a word, cell 0 being
// the most significant nibble.
func packNibbles(s state.State) uint64 {
	var result uint64
	for _, c := range s {
		result = result<<4 | uint64(c&0xf)
	}
	return result
}

func unpackNibbles(s state.State, x uint64) {
	for i := len(s) - 1; i >= 0; i-- {
		s[i] = byte(x & 0xf)
		x >>= 4
	}
}
