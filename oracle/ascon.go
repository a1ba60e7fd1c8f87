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
	asconSbox    = sboxTable(5, asconSubstitute)
	asconInvSbox = invertTable(asconSbox)
	asconRot     = [5][2]int{
		{19, 28},
		{61, 39},
		{1, 6},
		{10, 17},
		{7, 41},
	}
)

// Ascon implements the Ascon-p permutation. The 320-bit state is 40
// byte cells holding the words x0...x4 in big-endian order. The
// r-round permutation uses the round constants of the last r rounds
// of the 12-round permutation.
type Ascon struct{}

// Name implements Oracle.Name.
func (c Ascon) Name() string {
	return "ascon"
}

// Block implements Oracle.Block.
func (c Ascon) Block() state.Layout {
	return state.Bytes(40)
}

// Key implements Oracle.Key.
func (c Ascon) Key() state.Layout {
	return state.Bytes(0)
}

// MaxRounds implements Oracle.MaxRounds.
func (c Ascon) MaxRounds() int {
	return 12
}

// KeySchedule implements Oracle.KeySchedule.
func (c Ascon) KeySchedule(key state.State, rounds int) (Schedule, error) {
	if err := checkKey(c, key, rounds); err != nil {
		return nil, err
	}
	return asconSchedule(rounds), nil
}

type asconSchedule int

func (ks asconSchedule) Rounds() int {
	return int(ks)
}

func asconConstant(rounds, r int) uint64 {
	i := uint64(12 - rounds + r)
	return (0xf-i)<<4 | i
}

func (ks asconSchedule) Encrypt(dst, src state.State, rounds int) {
	var x [5]uint64
	loadWords(x[:], src)
	for r := 0; r < rounds; r++ {
		x[2] ^= asconConstant(rounds, r)
		asconSubstitute(x[:])
		for i := 0; i < 5; i++ {
			x[i] ^= bits.RotateLeft64(x[i], -asconRot[i][0]) ^
				bits.RotateLeft64(x[i], -asconRot[i][1])
		}
	}
	storeWords(dst, x[:])
}

func (ks asconSchedule) Decrypt(dst, src state.State, rounds int) {
	var x [5]uint64
	loadWords(x[:], src)
	for r := rounds - 1; r >= 0; r-- {
		for i := 0; i < 5; i++ {
			x[i] = asconInvDiffusion(x[i], asconRot[i][0], asconRot[i][1])
		}
		applyColumns(x[:], asconInvSbox)
		x[2] ^= asconConstant(rounds, r)
	}
	storeWords(dst, x[:])
}

// asconInvDiffusion inverts x ^ (x >>> a) ^ (x >>> b). The linear map
// has order 64 so its inverse is its 63rd power, the product of its
// powers 2^0...2^5.
func asconInvDiffusion(x uint64, a, b int) uint64 {
	for k := 0; k < 6; k++ {
		ra := (a << k) & 63
		rb := (b << k) & 63
		x ^= bits.RotateLeft64(x, -ra) ^ bits.RotateLeft64(x, -rb)
	}
	return x
}

func asconSubstitute(x []uint64) {
	x[0] ^= x[4]
	x[4] ^= x[3]
	x[2] ^= x[1]

	t0 := x[0] ^ (^x[1] & x[2])
	t1 := x[1] ^ (^x[2] & x[3])
	t2 := x[2] ^ (^x[3] & x[4])
	t3 := x[3] ^ (^x[4] & x[0])
	t4 := x[4] ^ (^x[0] & x[1])

	t1 ^= t0
	t0 ^= t4
	t3 ^= t2
	t2 = ^t2

	x[0], x[1], x[2], x[3], x[4] = t0, t1, t2, t3, t4
}
