//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package engine

import (
	"fmt"
	"math"

	"github.com/markkurossi/dlstat/env"
)

// Estimate is a bias estimate on the log2 scale. For correlation
// modes the numerator is |match-mismatch| and for probability modes it
// is the match count.
type Estimate struct {
	Queries     uint64
	Numerator   uint64
	Correlation bool
}

// NewEstimate creates an estimate from the counters.
func NewEstimate(c Counters, correlation bool) (Estimate, error) {
	queries, ok := c.Queries()
	if !ok {
		return Estimate{}, env.ResourceErrorf("query count overflow")
	}
	e := Estimate{
		Queries:     queries,
		Correlation: correlation,
	}
	if correlation {
		e.Numerator = c.AbsDiff()
	} else {
		e.Numerator = c.Match
	}
	return e, nil
}

// Degenerate tests if the numerator is zero and the bias is below the
// detectable resolution.
func (e Estimate) Degenerate() bool {
	return e.Numerator == 0 || e.Queries == 0
}

// Exponent returns the exponent e for which the bias is 2^-e. The
// function returns ErrDegenerate if the numerator is zero.
func (e Estimate) Exponent() (float64, error) {
	if e.Degenerate() {
		return 0, fmt.Errorf("%w: 0 of %d queries", env.ErrDegenerate,
			e.Queries)
	}
	return math.Log2(float64(e.Queries)) - math.Log2(float64(e.Numerator)),
		nil
}

// Value returns the bias as a ratio.
func (e Estimate) Value() float64 {
	if e.Queries == 0 {
		return 0
	}
	return float64(e.Numerator) / float64(e.Queries)
}

// Bound returns the exponent of the resolution limit 1/queries. A
// degenerate estimate means the bias is below 2^-Bound.
func (e Estimate) Bound() float64 {
	if e.Queries == 0 {
		return 0
	}
	return math.Log2(float64(e.Queries))
}

func (e Estimate) String() string {
	exp, err := e.Exponent()
	if err != nil {
		return fmt.Sprintf("< 2^(-%0.2f) (below detectable resolution)",
			e.Bound())
	}
	return fmt.Sprintf("2^(-%0.4f)", exp)
}
