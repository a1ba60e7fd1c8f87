//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package prng implements the deterministic random sources of the
// estimation engine. Each stream is a ChaCha20 keystream whose key is
// derived with SHAKE256 from the run seed, a domain label, and the
// stream indices. Streams of different workers and experiments are
// independent and the whole run is reproducible from the seed.
package prng

import (
	"encoding/binary"

	"github.com/markkurossi/dlstat/state"
	"golang.org/x/crypto/chacha20"
	"golang.org/x/crypto/sha3"
)

// Stream domain labels.
const (
	LabelKey    = "dlstat key"
	LabelSample = "dlstat sample"
	LabelTest   = "dlstat test"
)

const bufSize = 1024

// Stream implements a buffered ChaCha20 keystream. A Stream is not
// safe for concurrent use; each worker owns its stream.
type Stream struct {
	cipher *chacha20.Cipher
	buf    [bufSize]byte
	pos    int
}

// New creates a stream for the seed, label, and indices.
func New(seed uint64, label string, indices ...uint64) *Stream {
	var tmp [8]byte

	h := sha3.NewShake256()
	binary.BigEndian.PutUint64(tmp[:], seed)
	h.Write(tmp[:])
	h.Write([]byte(label))
	for _, idx := range indices {
		binary.BigEndian.PutUint64(tmp[:], idx)
		h.Write(tmp[:])
	}

	var key [chacha20.KeySize]byte
	var nonce [chacha20.NonceSize]byte
	h.Read(key[:])
	h.Read(nonce[:])

	c, err := chacha20.NewUnauthenticatedCipher(key[:], nonce[:])
	if err != nil {
		// Key and nonce sizes are constant.
		panic(err)
	}
	return &Stream{
		cipher: c,
		pos:    bufSize,
	}
}

func (s *Stream) refill() {
	for i := range s.buf {
		s.buf[i] = 0
	}
	s.cipher.XORKeyStream(s.buf[:], s.buf[:])
	s.pos = 0
}

// Read implements io.Reader. It always fills p and never fails.
func (s *Stream) Read(p []byte) (int, error) {
	var n int
	for n < len(p) {
		if s.pos >= bufSize {
			s.refill()
		}
		l := copy(p[n:], s.buf[s.pos:])
		s.pos += l
		n += l
	}
	return n, nil
}

// Uint64 returns the next 64 bits of the stream.
func (s *Stream) Uint64() uint64 {
	var tmp [8]byte
	s.Read(tmp[:])
	return binary.LittleEndian.Uint64(tmp[:])
}

// Fill fills dst with uniformly random cells of the layout. The
// undefined high bits of each cell are cleared.
func (s *Stream) Fill(dst state.State, l state.Layout) {
	s.Read(dst)
	l.Mask(dst)
}
