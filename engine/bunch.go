//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package engine

import (
	"github.com/markkurossi/dlstat/oracle"
	"github.com/markkurossi/dlstat/prng"
	"github.com/markkurossi/dlstat/state"
	"github.com/markkurossi/dlstat/trail"
)

// PairSampler draws plaintext pairs with the trail's input difference.
type PairSampler struct {
	trail  *trail.Trail
	source *prng.Stream
}

// NewPairSampler creates a sampler drawing from the source.
func NewPairSampler(t *trail.Trail, source *prng.Stream) *PairSampler {
	return &PairSampler{
		trail:  t,
		source: source,
	}
}

// Sample sets p1 to a uniformly random block and p2 to p1 XOR the
// input difference.
func (s *PairSampler) Sample(p1, p2 state.State) {
	s.source.Fill(p1, s.trail.Layout)
	state.Xor(p2, p1, s.trail.InputDifference)
}

// Bunch evaluates trail queries under one key schedule. A Bunch owns
// its buffers and it is used by one worker only.
type Bunch struct {
	ks      oracle.Schedule
	trail   *trail.Trail
	sampler *PairSampler
	source  *prng.Stream

	p1, p2, p3, p4 state.State
	c1, c2, c3, c4 state.State
}

// NewBunch creates a bunch evaluator for the schedule, trail, and
// random source.
func NewBunch(ks oracle.Schedule, t *trail.Trail, source *prng.Stream) *Bunch {
	l := t.Layout
	return &Bunch{
		ks:      ks,
		trail:   t,
		sampler: NewPairSampler(t, source),
		source:  source,
		p1:      l.New(),
		p2:      l.New(),
		p3:      l.New(),
		p4:      l.New(),
		c1:      l.New(),
		c2:      l.New(),
		c3:      l.New(),
		c4:      l.New(),
	}
}

// Run runs queries independent trials and counts the matches of the
// trail's predicate.
func (b *Bunch) Run(queries uint64) Counters {
	var c Counters
	t := b.trail
	r := t.Rounds

	for i := uint64(0); i < queries; i++ {
		var match bool

		switch t.Mode {
		case trail.DifferentialLinear:
			b.sampler.Sample(b.p1, b.p2)
			b.ks.Encrypt(b.c1, b.p1, r)
			b.ks.Encrypt(b.c2, b.p2, r)
			match = t.MatchParity(b.c1, b.c2)

		case trail.Differential:
			b.sampler.Sample(b.p1, b.p2)
			b.ks.Encrypt(b.c1, b.p1, r)
			b.ks.Encrypt(b.c2, b.p2, r)
			match = t.MatchDifference(b.c1, b.c2)

		case trail.Linear:
			b.source.Fill(b.p1, t.Layout)
			b.ks.Encrypt(b.c1, b.p1, r)
			match = t.MatchLinear(b.p1, b.c1)

		case trail.Boomerang:
			b.sampler.Sample(b.p1, b.p2)
			b.ks.Encrypt(b.c1, b.p1, r)
			b.ks.Encrypt(b.c2, b.p2, r)
			state.Xor(b.c3, b.c1, t.OutputDifference)
			state.Xor(b.c4, b.c2, t.OutputDifference)
			b.ks.Decrypt(b.p3, b.c3, r)
			b.ks.Decrypt(b.p4, b.c4, r)
			match = t.MatchBoomerang(b.p3, b.p4)
		}
		if match {
			c.Match++
		} else {
			c.Mismatch++
		}
	}
	return c
}

// RunBunch runs queries trials of the trail under the schedule with
// random plaintexts from the source.
func RunBunch(ks oracle.Schedule, t *trail.Trail, source *prng.Stream,
	queries uint64) Counters {

	return NewBunch(ks, t, source).Run(queries)
}
