//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package oracle

import (
	"encoding/binary"

	"github.com/markkurossi/dlstat/state"
)

// sboxTable evaluates the bitsliced S-box f for all inputs of n bits.
// Bit k of the table index and value is bit 0 of word k.
func sboxTable(n int, f func(x []uint64)) []byte {
	table := make([]byte, 1<<n)
	x := make([]uint64, n)
	for v := 0; v < len(table); v++ {
		for k := 0; k < n; k++ {
			x[k] = uint64(v>>k) & 1
		}
		f(x)
		var out byte
		for k := 0; k < n; k++ {
			out |= byte(x[k]&1) << k
		}
		table[v] = out
	}
	return table
}

func invertTable(table []byte) []byte {
	inv := make([]byte, len(table))
	for i, v := range table {
		inv[v] = byte(i)
	}
	return inv
}

// applyColumns applies the lookup table to each of the 64 bit columns
// of the words in x.
func applyColumns(x []uint64, table []byte) {
	var out [8]uint64
	for j := 0; j < 64; j++ {
		var v byte
		for k := range x {
			v |= byte(x[k]>>j&1) << k
		}
		v = table[v]
		for k := range x {
			out[k] |= uint64(v>>k&1) << j
		}
	}
	copy(x, out[:len(x)])
}

// loadWords loads big-endian 64-bit words from byte cells.
func loadWords(x []uint64, s state.State) {
	for i := range x {
		x[i] = binary.BigEndian.Uint64(s[i*8:])
	}
}

// storeWords stores the words as big-endian byte cells.
func storeWords(s state.State, x []uint64) {
	for i := range x {
		binary.BigEndian.PutUint64(s[i*8:], x[i])
	}
}
