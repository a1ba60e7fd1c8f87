//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package oracle

import (
	"encoding/binary"
	"fmt"
	"math/bits"

	"github.com/markkurossi/dlstat/state"
)

const serpentPhi = 0x9e3779b9

var (
	serpentSbox = [8][16]byte{
		{3, 8, 15, 1, 10, 6, 5, 11, 14, 13, 4, 2, 7, 0, 9, 12},
		{15, 12, 2, 7, 9, 0, 5, 10, 1, 11, 14, 8, 6, 13, 3, 4},
		{8, 6, 7, 9, 3, 12, 10, 15, 13, 1, 14, 4, 0, 11, 5, 2},
		{0, 15, 11, 8, 12, 9, 6, 3, 13, 1, 2, 4, 10, 7, 5, 14},
		{1, 15, 8, 3, 12, 0, 11, 6, 2, 5, 4, 10, 9, 14, 7, 13},
		{15, 5, 2, 11, 4, 10, 9, 12, 0, 3, 14, 8, 13, 6, 7, 1},
		{7, 2, 12, 5, 8, 4, 6, 11, 14, 9, 1, 15, 13, 3, 10, 0},
		{1, 13, 15, 0, 14, 8, 2, 11, 7, 4, 12, 10, 9, 3, 5, 6},
	}
	serpentInvSbox [8][16]byte
)

func init() {
	for i := range serpentSbox {
		copy(serpentInvSbox[i][:], invertTable(serpentSbox[i][:]))
	}
}

// Serpent implements the Serpent block cipher with a 256-bit key. The
// 128-bit state is 16 byte cells holding the block as a big-endian
// integer, so cell 0 is the last byte of the standard byte order. The
// key cells are ordered the same way. Round r adds the round key r,
// applies the S-box (offset+r) mod 8 and the linear transformation.
// The reduced-round cipher has no final key addition.
type Serpent struct {
	offset int
}

// NewSerpent creates a Serpent oracle whose first round uses the
// S-box offset mod 8.
func NewSerpent(offset int) *Serpent {
	return &Serpent{
		offset: offset & 7,
	}
}

// Name implements Oracle.Name.
func (c *Serpent) Name() string {
	if c.offset == 0 {
		return "serpent"
	}
	return fmt.Sprintf("serpent-s%d", c.offset)
}

// Block implements Oracle.Block.
func (c *Serpent) Block() state.Layout {
	return state.Bytes(16)
}

// Key implements Oracle.Key.
func (c *Serpent) Key() state.Layout {
	return state.Bytes(32)
}

// MaxRounds implements Oracle.MaxRounds.
func (c *Serpent) MaxRounds() int {
	return 32
}

// KeySchedule implements Oracle.KeySchedule. The schedule holds one
// subkey more than rounds.
func (c *Serpent) KeySchedule(key state.State, rounds int) (Schedule, error) {
	if err := checkKey(c, key, rounds); err != nil {
		return nil, err
	}
	ks := &serpentSchedule{
		offset: c.offset,
		keys:   make([][4]uint32, rounds+1),
	}

	var w [8]uint32
	for i := 0; i < 8; i++ {
		w[i] = binary.BigEndian.Uint32(key[28-4*i:])
	}
	for k := range ks.keys {
		var pre [4]uint32
		for j := 0; j < 4; j++ {
			i := 4*k + j
			v := w[i%8] ^ w[(i+3)%8] ^ w[(i+5)%8] ^ w[(i+7)%8] ^
				serpentPhi ^ uint32(i)
			w[i%8] = bits.RotateLeft32(v, 11)
			pre[j] = w[i%8]
		}
		ks.keys[k] = serpentSubstitute(pre, &serpentSbox[(35-k)%8])
	}
	return ks, nil
}

type serpentSchedule struct {
	offset int
	keys   [][4]uint32
}

func (ks *serpentSchedule) Rounds() int {
	return len(ks.keys) - 1
}

func (ks *serpentSchedule) Encrypt(dst, src state.State, rounds int) {
	x := serpentLoad(src)
	for r := 0; r < rounds; r++ {
		for j := 0; j < 4; j++ {
			x[j] ^= ks.keys[r][j]
		}
		x = serpentSubstitute(x, &serpentSbox[(ks.offset+r)%8])
		x = serpentTransform(x)
	}
	serpentStore(dst, x)
}

func (ks *serpentSchedule) Decrypt(dst, src state.State, rounds int) {
	x := serpentLoad(src)
	for r := rounds - 1; r >= 0; r-- {
		x = serpentInvTransform(x)
		x = serpentSubstitute(x, &serpentInvSbox[(ks.offset+r)%8])
		for j := 0; j < 4; j++ {
			x[j] ^= ks.keys[r][j]
		}
	}
	serpentStore(dst, x)
}

// serpentLoad loads the state into words, word 0 holding the least
// significant bits.
func serpentLoad(s state.State) [4]uint32 {
	var x [4]uint32
	for j := 0; j < 4; j++ {
		x[j] = binary.BigEndian.Uint32(s[12-4*j:])
	}
	return x
}

func serpentStore(s state.State, x [4]uint32) {
	for j := 0; j < 4; j++ {
		binary.BigEndian.PutUint32(s[12-4*j:], x[j])
	}
}

// serpentSubstitute applies the S-box to the 32 columns of the words.
// Bit i of word j is bit j of column i.
func serpentSubstitute(x [4]uint32, sbox *[16]byte) [4]uint32 {
	var y [4]uint32
	for i := 0; i < 32; i++ {
		v := (x[0]>>i)&1 | (x[1]>>i&1)<<1 | (x[2]>>i&1)<<2 | (x[3]>>i&1)<<3
		o := uint32(sbox[v])
		for j := 0; j < 4; j++ {
			y[j] |= (o >> j & 1) << i
		}
	}
	return y
}

func serpentTransform(x [4]uint32) [4]uint32 {
	x[0] = bits.RotateLeft32(x[0], 13)
	x[2] = bits.RotateLeft32(x[2], 3)
	x[1] ^= x[0] ^ x[2]
	x[3] ^= x[2] ^ x[0]<<3
	x[1] = bits.RotateLeft32(x[1], 1)
	x[3] = bits.RotateLeft32(x[3], 7)
	x[0] ^= x[1] ^ x[3]
	x[2] ^= x[3] ^ x[1]<<7
	x[0] = bits.RotateLeft32(x[0], 5)
	x[2] = bits.RotateLeft32(x[2], 22)
	return x
}

func serpentInvTransform(x [4]uint32) [4]uint32 {
	x[2] = bits.RotateLeft32(x[2], -22)
	x[0] = bits.RotateLeft32(x[0], -5)
	x[2] ^= x[3] ^ x[1]<<7
	x[0] ^= x[1] ^ x[3]
	x[3] = bits.RotateLeft32(x[3], -7)
	x[1] = bits.RotateLeft32(x[1], -1)
	x[3] ^= x[2] ^ x[0]<<3
	x[1] ^= x[0] ^ x[2]
	x[2] = bits.RotateLeft32(x[2], -3)
	x[0] = bits.RotateLeft32(x[0], -13)
	return x
}
