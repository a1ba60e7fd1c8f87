//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package engine

import (
	"math/bits"

	"github.com/markkurossi/dlstat/env"
)

// Counters count the trials where the predicate matched and
// mismatched. The sum of the counters is the number of trials.
type Counters struct {
	Match    uint64
	Mismatch uint64
}

// Add adds the argument counters to c. The addition fails with
// ErrResource if either counter overflows; c is not modified in that
// case.
func (c *Counters) Add(o Counters) error {
	match, carry := bits.Add64(c.Match, o.Match, 0)
	if carry != 0 {
		return env.ResourceErrorf("match counter overflow")
	}
	mismatch, carry := bits.Add64(c.Mismatch, o.Mismatch, 0)
	if carry != 0 {
		return env.ResourceErrorf("mismatch counter overflow")
	}
	c.Match = match
	c.Mismatch = mismatch
	return nil
}

// Queries returns the number of trials. The second return value is
// false if the sum overflows.
func (c Counters) Queries() (uint64, bool) {
	sum, carry := bits.Add64(c.Match, c.Mismatch, 0)
	return sum, carry == 0
}

// AbsDiff returns |Match-Mismatch|.
func (c Counters) AbsDiff() uint64 {
	if c.Match >= c.Mismatch {
		return c.Match - c.Mismatch
	}
	return c.Mismatch - c.Match
}

// Diff returns Match-Mismatch as a signed value and a sign flag. The
// magnitude is AbsDiff.
func (c Counters) Diff() (uint64, bool) {
	if c.Match >= c.Mismatch {
		return c.Match - c.Mismatch, false
	}
	return c.Mismatch - c.Match, true
}
