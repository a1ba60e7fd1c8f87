//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package engine

import (
	"math/bits"
	"runtime"

	"github.com/markkurossi/dlstat/env"
)

// Params define the sampling hierarchy of an estimation run: the
// number of experiments, workers (N1), bunches per worker (N2 =
// 2^Deg1), and queries per bunch (N3 = 2^Deg2).
type Params struct {
	Experiments int
	Workers     int
	Deg1        int
	Deg2        int

	// Step is the number of bunches between progress reports.
	Step uint64

	// Task perturbs the seed acquired from the entropy source.
	Task uint64

	// Seed is used instead of the entropy source if FixedSeed is
	// set.
	Seed      uint64
	FixedSeed bool
}

// NewParams returns the default sampling parameters.
func NewParams() *Params {
	return &Params{
		Experiments: 10,
		Workers:     runtime.NumCPU(),
		Deg1:        0,
		Deg2:        25,
		Step:        1 << 9,
	}
}

// Bunches returns the number of bunches per worker.
func (p *Params) Bunches() uint64 {
	return 1 << p.Deg1
}

// Queries returns the number of queries per bunch.
func (p *Params) Queries() uint64 {
	return 1 << p.Deg2
}

// Validate checks the parameters and that the total number of queries
// E×N1×N2×N3 fits the 64-bit counters.
func (p *Params) Validate() error {
	if p.Experiments < 1 {
		return env.ConfigErrorf("invalid number of experiments %d",
			p.Experiments)
	}
	if p.Workers < 1 {
		return env.ConfigErrorf("invalid number of workers %d", p.Workers)
	}
	if p.Deg1 < 0 || p.Deg1 > 63 {
		return env.ConfigErrorf("invalid bunch degree %d", p.Deg1)
	}
	if p.Deg2 < 0 || p.Deg2 > 63 {
		return env.ConfigErrorf("invalid query degree %d", p.Deg2)
	}
	if p.Step == 0 {
		return env.ConfigErrorf("invalid progress step 0")
	}
	_, err := p.TotalQueries()
	return err
}

// PerExperiment returns the number of queries of one experiment.
func (p *Params) PerExperiment() (uint64, error) {
	return mul(uint64(p.Workers), p.Bunches(), p.Queries())
}

// TotalQueries returns E×N1×N2×N3.
func (p *Params) TotalQueries() (uint64, error) {
	return mul(uint64(p.Experiments), uint64(p.Workers), p.Bunches(),
		p.Queries())
}

func mul(values ...uint64) (uint64, error) {
	result := uint64(1)
	for _, v := range values {
		hi, lo := bits.Mul64(result, v)
		if hi != 0 {
			return 0, env.ConfigErrorf("total query count overflows 64 bits")
		}
		result = lo
	}
	return result, nil
}
