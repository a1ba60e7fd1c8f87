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
	clefiaS0 [256]byte
	clefiaS1 = [256]byte{
		0x6c, 0xda, 0xc3, 0xe9, 0x4e, 0x9d, 0x0a, 0x3d,
		0xb8, 0x36, 0xb4, 0x38, 0x13, 0x34, 0x0c, 0xd9,
		0xbf, 0x74, 0x94, 0x8f, 0xb7, 0x9c, 0xe5, 0xdc,
		0x9e, 0x07, 0x49, 0x4f, 0x98, 0x2c, 0xb0, 0x93,
		0x12, 0xeb, 0xcd, 0xb3, 0x92, 0xe7, 0x41, 0x60,
		0xe3, 0x21, 0x27, 0x3b, 0xe6, 0x19, 0xd2, 0x0e,
		0x91, 0x11, 0xc7, 0x3f, 0x2a, 0x8e, 0xa1, 0xbc,
		0x2b, 0xc8, 0xc5, 0x0f, 0x5b, 0xf3, 0x87, 0x8b,
		0xfb, 0xf5, 0xde, 0x20, 0xc6, 0xa7, 0x84, 0xce,
		0xd8, 0x65, 0x51, 0xc9, 0xa4, 0xef, 0x43, 0x53,
		0x25, 0x5d, 0x9b, 0x31, 0xe8, 0x3e, 0x0d, 0xd7,
		0x80, 0xff, 0x69, 0x8a, 0xba, 0x0b, 0x73, 0x5c,
		0x6e, 0x54, 0x15, 0x62, 0xf6, 0x35, 0x30, 0x52,
		0xa3, 0x16, 0xd3, 0x28, 0x32, 0xfa, 0xaa, 0x5e,
		0xcf, 0xea, 0xed, 0x78, 0x33, 0x58, 0x09, 0x7b,
		0x63, 0xc0, 0xc1, 0x46, 0x1e, 0xdf, 0xa9, 0x99,
		0x55, 0x04, 0xc4, 0x86, 0x39, 0x77, 0x82, 0xec,
		0x40, 0x18, 0x90, 0x97, 0x59, 0xdd, 0x83, 0x1f,
		0x9a, 0x37, 0x06, 0x24, 0x64, 0x7c, 0xa5, 0x56,
		0x48, 0x08, 0x85, 0xd0, 0x61, 0x26, 0xca, 0x6f,
		0x7e, 0x6a, 0xb6, 0x71, 0xa0, 0x70, 0x05, 0xd1,
		0x45, 0x8c, 0x23, 0x1c, 0xf0, 0xee, 0x89, 0xad,
		0x7a, 0x4b, 0xc2, 0x2f, 0xdb, 0x5a, 0x4d, 0x76,
		0x67, 0x17, 0x2d, 0xf4, 0xcb, 0xb1, 0x4a, 0xa8,
		0xb5, 0x22, 0x47, 0x3a, 0xd5, 0x10, 0x4c, 0x72,
		0xcc, 0x00, 0xf9, 0xe0, 0xfd, 0xe2, 0xfe, 0xae,
		0xf8, 0x5f, 0xab, 0xf1, 0x1b, 0x42, 0x81, 0xd6,
		0xbe, 0x44, 0x29, 0xa6, 0x57, 0xb9, 0xaf, 0xf2,
		0xd4, 0x75, 0x66, 0xbb, 0x68, 0x9f, 0x50, 0x02,
		0x01, 0x3c, 0x7f, 0x8d, 0x1a, 0x88, 0xbd, 0xac,
		0xf7, 0xe4, 0x79, 0x96, 0xa2, 0xfc, 0x6d, 0xb2,
		0x6b, 0x03, 0xe1, 0x2e, 0x7d, 0x14, 0x95, 0x1d,
	}
	clefiaM0 = [4]byte{1, 2, 4, 6}
	clefiaM1 = [4]byte{1, 8, 2, 10}
)

func init() {
	// S0 combines four 4-bit S-boxes with a multiplication by 2 in
	// GF(2^4).
	ss := [4][16]byte{
		{0xe, 0x6, 0xc, 0xa, 0x8, 0x7, 0x2, 0xf,
			0xb, 0x1, 0x4, 0x0, 0x5, 0x9, 0xd, 0x3},
		{0x6, 0x4, 0x0, 0xd, 0x2, 0xb, 0xa, 0x3,
			0x9, 0xc, 0xe, 0xf, 0x8, 0x7, 0x5, 0x1},
		{0xb, 0x8, 0x5, 0xe, 0xa, 0x6, 0x4, 0xc,
			0xf, 0x7, 0x2, 0x3, 0x1, 0x0, 0xd, 0x9},
		{0xa, 0x2, 0x6, 0xd, 0x3, 0x4, 0x5, 0xe,
			0x0, 0x7, 0x8, 0x9, 0xb, 0xf, 0xc, 0x1},
	}
	mul2 := func(v byte) byte {
		v <<= 1
		if v&0x10 != 0 {
			v ^= 0x13
		}
		return v
	}
	for x := 0; x < 256; x++ {
		t0 := ss[0][x>>4]
		t1 := ss[1][x&0xf]
		u0 := t0 ^ mul2(t1)
		u1 := mul2(t0) ^ t1
		clefiaS0[x] = ss[2][u0]<<4 | ss[3][u1]
	}
}

// clefiaMul multiplies in GF(2^8) defined by z^8+z^4+z^3+z^2+1.
func clefiaMul(a, b byte) byte {
	var r byte
	for ; b != 0; b >>= 1 {
		if b&1 != 0 {
			r ^= a
		}
		if a&0x80 != 0 {
			a = a<<1 ^ 0x1d
		} else {
			a <<= 1
		}
	}
	return r
}

// CLEFIA implements the CLEFIA block cipher with a 128-bit key. The
// 128-bit state and key are 16 byte cells in the standard byte order.
// A round applies F0 and F1 to the four-branch generalized Feistel
// network and rotates the branches left by one, including the last
// round. The reduced-round cipher has no whitening keys.
type CLEFIA struct{}

// Name implements Oracle.Name.
func (c CLEFIA) Name() string {
	return "clefia"
}

// Block implements Oracle.Block.
func (c CLEFIA) Block() state.Layout {
	return state.Bytes(16)
}

// Key implements Oracle.Key.
func (c CLEFIA) Key() state.Layout {
	return state.Bytes(16)
}

// MaxRounds implements Oracle.MaxRounds.
func (c CLEFIA) MaxRounds() int {
	return 18
}

// KeySchedule implements Oracle.KeySchedule.
func (c CLEFIA) KeySchedule(key state.State, rounds int) (Schedule, error) {
	if err := checkKey(c, key, rounds); err != nil {
		return nil, err
	}
	con := clefiaConstants(0x428a, 30)

	// The intermediate key L is GFN(4,12) of the key under the first
	// 24 constants without the final rotation.
	var l [16]byte
	copy(l[:], key)
	for r := 0; r < 12; r++ {
		var rk [8]byte
		copy(rk[:], con[8*r:])
		clefiaRound(&l, &rk)
	}
	clefiaRotate(&l, 12)

	ks := make(clefiaSchedule, 18)
	for i := 0; i < 9; i++ {
		var t [16]byte
		for j := 0; j < 16; j++ {
			t[j] = l[j] ^ con[96+16*i+j]
			if i%2 == 1 {
				t[j] ^= key[j]
			}
		}
		copy(ks[2*i][:], t[:8])
		copy(ks[2*i+1][:], t[8:])
		clefiaDoubleSwap(&l)
	}
	return ks[:rounds], nil
}

// clefiaConstants generates n pairs of 32-bit constants from the
// initial value iv.
func clefiaConstants(iv uint16, n int) []byte {
	con := make([]byte, 0, 8*n)
	t := iv
	for i := 0; i < n; i++ {
		t0 := byte(t >> 8)
		t1 := byte(t)
		rot := t<<1 | t>>15
		con = append(con,
			t0^0xb7, t1^0xe1, ^byte(rot>>8), ^byte(rot),
			^t0^0x24, ^t1^0x3f, t1, t0)

		// Multiply T by the inverse of x in GF(2^16).
		if t&1 != 0 {
			t ^= 0xa830
		}
		t = t>>1 | t<<15
	}
	return con
}

// clefiaDoubleSwap updates the intermediate key with the
// Sigma function.
func clefiaDoubleSwap(l *[16]byte) {
	var t [16]byte
	for i := 0; i < 7; i++ {
		t[i] = l[i]<<7 | l[i+1]>>1
	}
	t[7] = l[7]<<7 | l[15]&0x7f
	t[8] = l[8]>>7 | l[0]&0xfe
	for i := 9; i < 16; i++ {
		t[i] = l[i]>>7 | l[i-1]<<1
	}
	*l = t
}

type clefiaSchedule [][8]byte

func (ks clefiaSchedule) Rounds() int {
	return len(ks)
}

func (ks clefiaSchedule) Encrypt(dst, src state.State, rounds int) {
	var x [16]byte
	copy(x[:], src)
	for r := 0; r < rounds; r++ {
		clefiaRound(&x, &ks[r])
	}
	copy(dst, x[:])
}

func (ks clefiaSchedule) Decrypt(dst, src state.State, rounds int) {
	var x [16]byte
	copy(x[:], src)
	for r := rounds - 1; r >= 0; r-- {
		clefiaRotate(&x, 12)
		clefiaF(x[4:8], x[0:4], ks[r][0:4], &clefiaS0, &clefiaS1, &clefiaM0)
		clefiaF(x[12:16], x[8:12], ks[r][4:8], &clefiaS1, &clefiaS0,
			&clefiaM1)
	}
	copy(dst, x[:])
}

func clefiaRound(x *[16]byte, rk *[8]byte) {
	clefiaF(x[4:8], x[0:4], rk[0:4], &clefiaS0, &clefiaS1, &clefiaM0)
	clefiaF(x[12:16], x[8:12], rk[4:8], &clefiaS1, &clefiaS0, &clefiaM1)
	clefiaRotate(x, 4)
}

// clefiaRotate rotates the state left by n bytes.
func clefiaRotate(x *[16]byte, n int) {
	var t [16]byte
	copy(t[:], x[n:])
	copy(t[16-n:], x[:n])
	*x = t
}

// clefiaF xors the F-function of src and the round key k into dst.
// The S-boxes s and t alternate and the diffusion matrix element
// (i, j) is m[i^j].
func clefiaF(dst, src, k []byte, s, t *[256]byte, m *[4]byte) {
	var z [4]byte
	for i := 0; i < 4; i += 2 {
		z[i] = s[src[i]^k[i]]
		z[i+1] = t[src[i+1]^k[i+1]]
	}
	for i := 0; i < 4; i++ {
		var y byte
		for j := 0; j < 4; j++ {
			y ^= clefiaMul(m[i^j], z[j])
		}
		dst[i] ^= y
	}
}
