//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package engine implements the Monte-Carlo bias estimation engine.
//
// A run consists of sequential experiments. Each experiment draws a
// fresh master key and runs N1 parallel workers, each worker running
// N2 bunches of N3 queries. The match and mismatch counters are
// aggregated per experiment and over the run, and the bias is
// reported on the log2 scale.
package engine

import (
	"fmt"
	"math"
	"time"

	"github.com/markkurossi/dlstat/env"
	"github.com/markkurossi/dlstat/oracle"
	"github.com/markkurossi/dlstat/prng"
	"github.com/markkurossi/dlstat/trail"
	"gonum.org/v1/gonum/stat"
)

// Phase defines the runner phases.
type Phase int

// Runner phases.
const (
	PhaseInit Phase = iota
	PhaseKeySetup
	PhaseSampling
	PhaseAggregate
	PhaseFinalize
	PhaseReport
	PhaseDone
)

var phaseNames = map[Phase]string{
	PhaseInit:      "Init",
	PhaseKeySetup:  "KeySetup",
	PhaseSampling:  "Sampling",
	PhaseAggregate: "Aggregate",
	PhaseFinalize:  "Finalize",
	PhaseReport:    "Report",
	PhaseDone:      "Done",
}

func (p Phase) String() string {
	name, ok := phaseNames[p]
	if ok {
		return name
	}
	return fmt.Sprintf("{Phase %d}", p)
}

// Reporter receives the result of a run.
type Reporter interface {
	Report(result *Result) error
}

// Experiment holds the result of one experiment.
type Experiment struct {
	Index    int
	Counters Counters
	Estimate Estimate
	Elapsed  time.Duration
}

// Result holds the result of a run.
type Result struct {
	Cipher      string
	Trail       *trail.Trail
	Params      Params
	Seed        uint64
	Experiments []Experiment

	// Total holds the counters over all experiments and Estimate the
	// bias computed from them.
	Total    Counters
	Estimate Estimate

	// Average is the estimate from the sum of the per-experiment
	// numerators.
	Average Estimate

	// MeanExponent and StdDevExponent are computed over the
	// experiments with a non-degenerate estimate. Degenerate counts
	// the experiments with a degenerate estimate.
	MeanExponent   float64
	StdDevExponent float64
	Degenerate     int

	Timing *Timing
}

// Runner runs estimation experiments.
type Runner struct {
	Config   *env.Config
	Oracle   oracle.Oracle
	Trail    *trail.Trail
	Params   *Params
	Progress Progress
	Reporter Reporter

	// OnPhase is called on each phase transition if set.
	OnPhase func(p Phase)

	phase Phase
	log   *env.Logger
}

// NewRunner creates a new runner.
func NewRunner(config *env.Config, o oracle.Oracle, t *trail.Trail,
	params *Params) *Runner {

	return &Runner{
		Config: config,
		Oracle: o,
		Trail:  t,
		Params: params,
		log:    config.Logger(),
	}
}

// Phase returns the current phase of the runner.
func (r *Runner) Phase() Phase {
	return r.phase
}

func (r *Runner) setPhase(p Phase) {
	r.phase = p
	r.log.Debugf(" - %s", p)
	if r.OnPhase != nil {
		r.OnPhase(p)
	}
}

func (r *Runner) preflight() error {
	if err := r.Params.Validate(); err != nil {
		return err
	}
	if r.Trail.Layout != r.Oracle.Block() {
		return env.ConfigErrorf("trail width %v does not match %s block %v",
			r.Trail.Layout, r.Oracle.Name(), r.Oracle.Block())
	}
	if r.Trail.Rounds > r.Oracle.MaxRounds() {
		return env.ConfigErrorf("%s: invalid round count %d, max %d",
			r.Oracle.Name(), r.Trail.Rounds, r.Oracle.MaxRounds())
	}
	return nil
}

// Run runs all experiments and reports the result. Configuration
// errors are detected before the entropy source is read. There are no
// retries: any failure ends the run.
func (r *Runner) Run() (*Result, error) {
	r.setPhase(PhaseInit)
	if err := r.preflight(); err != nil {
		return nil, err
	}
	in, out := r.Trail.Weights()
	r.log.Debugf("[+] %d active input bits, %d active output bits", in, out)
	if r.Trail.Trivial() {
		r.log.Warningf("%s trail holds for every query", r.Trail.Mode)
	}

	seed := r.Params.Seed
	if !r.Params.FixedSeed {
		var err error
		seed, err = r.Config.AcquireSeed(r.Params.Task)
		if err != nil {
			return nil, err
		}
	}
	r.log.Debugf("[+] PRNG initialized to 0x%016X", seed)

	perExperiment, err := r.Params.PerExperiment()
	if err != nil {
		return nil, err
	}
	correlation := r.Trail.Mode.Correlation()

	result := &Result{
		Cipher: r.Oracle.Name(),
		Trail:  r.Trail,
		Params: *r.Params,
		Seed:   seed,
		Timing: NewTiming(),
	}
	var numerators Counters
	var exponents []float64

	for e := 0; e < r.Params.Experiments; e++ {
		r.setPhase(PhaseKeySetup)
		keyLayout := r.Oracle.Key()
		key := keyLayout.New()
		prng.New(seed, prng.LabelKey, uint64(e)).Fill(key, keyLayout)

		ks, err := r.Oracle.KeySchedule(key, r.Trail.Rounds)
		if err != nil {
			key.Zeroize()
			return nil, fmt.Errorf("%w: key schedule: %v", env.ErrResource,
				err)
		}
		keyDone := time.Now()

		r.setPhase(PhaseSampling)
		sources := make([]*prng.Stream, r.Params.Workers)
		for i := range sources {
			sources[i] = prng.New(seed, prng.LabelSample, uint64(e), uint64(i))
		}
		counters, err := RunExperiment(e, ks, r.Trail, r.Params, sources,
			r.Progress)
		key.Zeroize()
		if err != nil {
			return nil, err
		}

		r.setPhase(PhaseAggregate)
		if err := result.Total.Add(counters); err != nil {
			return nil, err
		}
		est, err := NewEstimate(counters, correlation)
		if err != nil {
			return nil, err
		}
		if err := numerators.Add(Counters{Match: est.Numerator}); err != nil {
			return nil, err
		}
		if exp, err := est.Exponent(); err == nil {
			exponents = append(exponents, exp)
		} else {
			result.Degenerate++
		}

		sample := result.Timing.Sample(fmt.Sprintf("Exp %d", e),
			[]string{fmt.Sprintf("%d", perExperiment)})
		sample.SubSample("Key setup", keyDone)
		sample.SubSample("Sampling", sample.End)

		result.Experiments = append(result.Experiments, Experiment{
			Index:    e,
			Counters: counters,
			Estimate: est,
			Elapsed:  sample.End.Sub(sample.Start),
		})
		r.log.Debugf("Exp No. %d\t%v\t%s", e, sample.End.Sub(sample.Start),
			est)
	}

	r.setPhase(PhaseFinalize)
	result.Estimate, err = NewEstimate(result.Total, correlation)
	if err != nil {
		return nil, err
	}
	result.Average = Estimate{
		Queries:     result.Estimate.Queries,
		Numerator:   numerators.Match,
		Correlation: correlation,
	}
	if result.Degenerate > 0 {
		r.log.Warningf("%d of %d experiments below detectable resolution",
			result.Degenerate, len(result.Experiments))
	}
	if len(exponents) > 0 {
		mean, std := stat.MeanStdDev(exponents, nil)
		if math.IsNaN(std) {
			std = 0
		}
		result.MeanExponent = mean
		result.StdDevExponent = std
	}

	r.setPhase(PhaseReport)
	if r.Reporter != nil {
		if err := r.Reporter.Report(result); err != nil {
			return nil, err
		}
	}
	r.setPhase(PhaseDone)

	return result, nil
}
