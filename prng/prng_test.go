//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package prng

import (
	"bytes"
	"testing"

	"github.com/markkurossi/dlstat/state"
)

func TestDeterministic(t *testing.T) {
	a := New(42, LabelSample, 1, 2)
	b := New(42, LabelSample, 1, 2)

	bufA := make([]byte, 3000)
	bufB := make([]byte, 3000)
	a.Read(bufA[:17])
	a.Read(bufA[17:])
	b.Read(bufB)

	if !bytes.Equal(bufA, bufB) {
		t.Errorf("streams with equal inputs differ")
	}
}

func TestIndependent(t *testing.T) {
	tests := []*Stream{
		New(42, LabelSample, 1, 2),
		New(43, LabelSample, 1, 2),
		New(42, LabelKey, 1, 2),
		New(42, LabelSample, 2, 1),
		New(42, LabelSample, 1),
	}
	var outputs [][]byte
	for _, s := range tests {
		buf := make([]byte, 32)
		s.Read(buf)
		for idx, o := range outputs {
			if bytes.Equal(o, buf) {
				t.Errorf("stream %d equals stream %d", len(outputs), idx)
			}
		}
		outputs = append(outputs, buf)
	}
}

func TestFill(t *testing.T) {
	s := New(1, LabelTest)
	l := state.Nibbles(32)
	x := l.New()

	var seen byte
	for i := 0; i < 100; i++ {
		s.Fill(x, l)
		if err := l.Check(x); err != nil {
			t.Fatalf("Fill: %v", err)
		}
		for _, c := range x {
			seen |= c
		}
	}
	if seen != 0xf {
		t.Errorf("Fill did not exercise all cell bits: %x", seen)
	}
}

func TestUniform(t *testing.T) {
	s := New(7, LabelTest)
	const n = 1 << 16
	var ones int
	for i := 0; i < n; i++ {
		ones += int(s.Uint64() & 1)
	}
	// 6 sigma bound.
	if ones < n/2-768 || ones > n/2+768 {
		t.Errorf("biased low bit: %d ones out of %d", ones, n)
	}
}
