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
	aesSbox    [256]byte
	aesInvSbox [256]byte
)

func init() {
	// Walk the multiplicative group with generator 3 and its inverse.
	p := byte(1)
	q := byte(1)
	for {
		hi := p & 0x80
		p ^= p << 1
		if hi != 0 {
			p ^= 0x1b
		}

		q ^= q << 1
		q ^= q << 2
		q ^= q << 4
		if q&0x80 != 0 {
			q ^= 0x09
		}

		aesSbox[p] = q ^ rotl8(q, 1) ^ rotl8(q, 2) ^ rotl8(q, 3) ^
			rotl8(q, 4) ^ 0x63
		if p == 1 {
			break
		}
	}
	aesSbox[0] = 0x63

	for i := 0; i < 256; i++ {
		aesInvSbox[aesSbox[i]] = byte(i)
	}
}

func rotl8(v byte, n uint) byte {
	return v<<n | v>>(8-n)
}

func xtime(v byte) byte {
	if v&0x80 != 0 {
		return v<<1 ^ 0x1b
	}
	return v << 1
}

// AES128 implements AES with a 128-bit key. The state bytes are in the
// standard input order: byte i holds row i%4 of column i/4. The
// reduced-round cipher applies the whitening key followed by r rounds
// where the final round omits MixColumns. With 10 rounds it is the
// full AES-128.
type AES128 struct{}

// Name implements Oracle.Name.
func (c AES128) Name() string {
	return "aes"
}

// Block implements Oracle.Block.
func (c AES128) Block() state.Layout {
	return state.Bytes(16)
}

// Key implements Oracle.Key.
func (c AES128) Key() state.Layout {
	return state.Bytes(16)
}

// MaxRounds implements Oracle.MaxRounds.
func (c AES128) MaxRounds() int {
	return 10
}

// KeySchedule implements Oracle.KeySchedule.
func (c AES128) KeySchedule(key state.State, rounds int) (Schedule, error) {
	if err := checkKey(c, key, rounds); err != nil {
		return nil, err
	}
	ks := &aesSchedule{
		rk: make([][16]byte, rounds+1),
	}
	copy(ks.rk[0][:], key)

	rcon := byte(1)
	for r := 1; r <= rounds; r++ {
		prev := &ks.rk[r-1]
		cur := &ks.rk[r]

		t0 := aesSbox[prev[13]] ^ rcon
		t1 := aesSbox[prev[14]]
		t2 := aesSbox[prev[15]]
		t3 := aesSbox[prev[12]]
		rcon = xtime(rcon)

		cur[0] = prev[0] ^ t0
		cur[1] = prev[1] ^ t1
		cur[2] = prev[2] ^ t2
		cur[3] = prev[3] ^ t3
		for i := 4; i < 16; i++ {
			cur[i] = prev[i] ^ cur[i-4]
		}
	}
	return ks, nil
}

type aesSchedule struct {
	rk [][16]byte
}

func (ks *aesSchedule) Rounds() int {
	return len(ks.rk) - 1
}

func (ks *aesSchedule) Encrypt(dst, src state.State, rounds int) {
	var s [16]byte
	copy(s[:], src)
	if rounds > 0 {
		aesAddRoundKey(&s, &ks.rk[0])
		for r := 1; r <= rounds; r++ {
			aesSubShift(&s)
			if r < rounds {
				aesMixColumns(&s)
			}
			aesAddRoundKey(&s, &ks.rk[r])
		}
	}
	copy(dst, s[:])
}

func (ks *aesSchedule) Decrypt(dst, src state.State, rounds int) {
	var s [16]byte
	copy(s[:], src)
	if rounds > 0 {
		for r := rounds; r >= 1; r-- {
			aesAddRoundKey(&s, &ks.rk[r])
			if r < rounds {
				aesInvMixColumns(&s)
			}
			aesInvSubShift(&s)
		}
		aesAddRoundKey(&s, &ks.rk[0])
	}
	copy(dst, s[:])
}

func aesAddRoundKey(s, k *[16]byte) {
	for i := 0; i < 16; i++ {
		s[i] ^= k[i]
	}
}

// aesSubShift applies SubBytes and ShiftRows.
func aesSubShift(s *[16]byte) {
	var t [16]byte
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			t[r+4*c] = aesSbox[s[r+4*((c+r)%4)]]
		}
	}
	*s = t
}

func aesInvSubShift(s *[16]byte) {
	var t [16]byte
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			t[r+4*((c+r)%4)] = aesInvSbox[s[r+4*c]]
		}
	}
	*s = t
}

func aesMixColumns(s *[16]byte) {
	for c := 0; c < 16; c += 4 {
		a0, a1, a2, a3 := s[c], s[c+1], s[c+2], s[c+3]
		t := a0 ^ a1 ^ a2 ^ a3
		s[c] = a0 ^ t ^ xtime(a0^a1)
		s[c+1] = a1 ^ t ^ xtime(a1^a2)
		s[c+2] = a2 ^ t ^ xtime(a2^a3)
		s[c+3] = a3 ^ t ^ xtime(a3^a0)
	}
}

func aesInvMixColumns(s *[16]byte) {
	for c := 0; c < 16; c += 4 {
		u := xtime(xtime(s[c] ^ s[c+2]))
		v := xtime(xtime(s[c+1] ^ s[c+3]))
		s[c] ^= u
		s[c+1] ^= v
		s[c+2] ^= u
		s[c+3] ^= v
	}
	aesMixColumns(s)
}
