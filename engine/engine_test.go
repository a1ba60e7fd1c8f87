//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package engine

import (
	"errors"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/markkurossi/dlstat/env"
	"github.com/markkurossi/dlstat/oracle"
	"github.com/markkurossi/dlstat/prng"
	"github.com/markkurossi/dlstat/trail"
)

func TestCountersAdd(t *testing.T) {
	c := Counters{Match: 3, Mismatch: 5}
	if err := c.Add(Counters{Match: 1, Mismatch: 2}); err != nil {
		t.Fatal(err)
	}
	if c.Match != 4 || c.Mismatch != 7 {
		t.Errorf("Add: got %+v", c)
	}
	if c.AbsDiff() != 3 {
		t.Errorf("AbsDiff: got %d", c.AbsDiff())
	}
	if d, neg := c.Diff(); d != 3 || !neg {
		t.Errorf("Diff: got %d,%v", d, neg)
	}

	err := c.Add(Counters{Match: math.MaxUint64})
	if !errors.Is(err, env.ErrResource) {
		t.Errorf("overflow: got %v", err)
	}
	if c.Match != 4 {
		t.Errorf("failed Add modified counters: %+v", c)
	}
	_, ok := Counters{Match: math.MaxUint64, Mismatch: 1}.Queries()
	if ok {
		t.Errorf("Queries did not detect overflow")
	}
}

var estimateTests = []struct {
	counters    Counters
	correlation bool
	exponent    float64
}{
	{Counters{Match: 640, Mismatch: 384}, true, 2},
	{Counters{Match: 384, Mismatch: 640}, true, 2},
	{Counters{Match: 256, Mismatch: 768}, false, 2},
	{Counters{Match: 1024}, true, 0},
	{Counters{Match: 1024}, false, 0},
}

func TestEstimate(t *testing.T) {
	for idx, test := range estimateTests {
		e, err := NewEstimate(test.counters, test.correlation)
		if err != nil {
			t.Fatal(err)
		}
		exp, err := e.Exponent()
		if err != nil {
			t.Fatalf("test %d: Exponent: %v", idx, err)
		}
		if math.Abs(exp-test.exponent) > 1e-9 {
			t.Errorf("test %d: got %v, expected %v", idx, exp, test.exponent)
		}
	}
}

func TestEstimateDegenerate(t *testing.T) {
	for _, c := range []Counters{
		{Match: 512, Mismatch: 512},
		{},
	} {
		e, err := NewEstimate(c, true)
		if err != nil {
			t.Fatal(err)
		}
		_, err = e.Exponent()
		if !errors.Is(err, env.ErrDegenerate) {
			t.Errorf("%+v: expected ErrDegenerate, got %v", c, err)
		}
		str := e.String()
		if !strings.Contains(str, "below detectable resolution") ||
			strings.Contains(str, "NaN") || strings.Contains(str, "Inf") {
			t.Errorf("%+v: String: %s", c, str)
		}
	}
	e, _ := NewEstimate(Counters{Match: 0, Mismatch: 64}, false)
	if !e.Degenerate() {
		t.Errorf("zero matches not degenerate")
	}
}

func TestParams(t *testing.T) {
	if err := NewParams().Validate(); err != nil {
		t.Errorf("default params: %v", err)
	}
	p := &Params{
		Experiments: 4,
		Workers:     2,
		Deg1:        31,
		Deg2:        32,
		Step:        1,
	}
	// 4 × 2 × 2^31 × 2^32 = 2^66
	if _, err := p.TotalQueries(); !errors.Is(err, env.ErrConfiguration) {
		t.Errorf("TotalQueries did not detect overflow: %v", err)
	}
	p.Experiments = 1
	p.Workers = 1
	total, err := p.TotalQueries()
	if err != nil || total != 1<<63 {
		t.Errorf("TotalQueries: got %d, %v", total, err)
	}
	for _, bad := range []Params{
		{Experiments: 0, Workers: 1, Step: 1},
		{Experiments: 1, Workers: 0, Step: 1},
		{Experiments: 1, Workers: 1, Deg1: 64, Step: 1},
		{Experiments: 1, Workers: 1, Deg2: -1, Step: 1},
		{Experiments: 1, Workers: 1},
		{Experiments: 3, Workers: 1, Deg1: 32, Deg2: 31, Step: 1},
	} {
		if err := bad.Validate(); !errors.Is(err, env.ErrConfiguration) {
			t.Errorf("Validate(%+v): got %v", bad, err)
		}
	}
}

func newTrail(t *testing.T, o oracle.Oracle, c trail.Config) *trail.Trail {
	tr, err := trail.Parse(o.Block(), c)
	if err != nil {
		t.Fatalf("trail.Parse: %v", err)
	}
	return tr
}

func schedule(t *testing.T, o oracle.Oracle, rounds int) oracle.Schedule {
	key := o.Key().New()
	prng.New(99, prng.LabelKey).Fill(key, o.Key())
	ks, err := o.KeySchedule(key, rounds)
	if err != nil {
		t.Fatal(err)
	}
	return ks
}

type countingProgress struct {
	m       sync.Mutex
	bunches uint64
	reports int
}

func (p *countingProgress) Report(r ProgressReport) {
	p.m.Lock()
	p.bunches += r.Delta
	p.reports++
	p.m.Unlock()
}

func TestConservation(t *testing.T) {
	o, _ := oracle.Lookup("present")
	for _, mode := range []trail.Mode{trail.DifferentialLinear,
		trail.Differential, trail.Linear, trail.Boomerang} {

		tr := newTrail(t, o, trail.Config{
			Mode:             mode,
			Rounds:           3,
			InputDifference:  "0000000009000900",
			InputMask:        "0000000009000900",
			OutputMask:       "0001000000010001",
			OutputDifference: "0001000000010001",
		})
		params := &Params{
			Experiments: 1,
			Workers:     3,
			Deg1:        3,
			Deg2:        5,
			Step:        2,
		}
		sources := []*prng.Stream{
			prng.New(1, prng.LabelSample, 0, 0),
			prng.New(1, prng.LabelSample, 0, 1),
			prng.New(1, prng.LabelSample, 0, 2),
		}
		progress := new(countingProgress)
		c, err := RunExperiment(0, schedule(t, o, 3), tr, params, sources,
			progress)
		if err != nil {
			t.Fatalf("%v: RunExperiment: %v", mode, err)
		}
		if q, _ := c.Queries(); q != 3*8*32 {
			t.Errorf("%v: got %d queries, expected %d", mode, q, 3*8*32)
		}
		if progress.bunches != 3*8 {
			t.Errorf("%v: progress reported %d bunches", mode,
				progress.bunches)
		}
		if progress.reports != 3*4 {
			t.Errorf("%v: got %d progress reports", mode, progress.reports)
		}
	}
}

func TestTrivialTrail(t *testing.T) {
	for _, name := range oracle.Names() {
		o, _ := oracle.Lookup(name)
		zero := o.Block().Format(o.Block().New())
		ones := o.Block().Format(o.Block().Ones())

		tr := newTrail(t, o, trail.Config{
			Mode:            trail.DifferentialLinear,
			Rounds:          o.MaxRounds() / 2,
			InputDifference: zero,
			OutputMask:      ones,
		})
		c := RunBunch(schedule(t, o, tr.Rounds), tr,
			prng.New(2, prng.LabelSample), 64)
		if c.Mismatch != 0 || c.Match != 64 {
			t.Errorf("%s: zero difference: %+v", name, c)
		}

		tr = newTrail(t, o, trail.Config{
			Mode:             trail.Differential,
			Rounds:           0,
			InputDifference:  ones,
			OutputDifference: ones,
		})
		c = RunBunch(schedule(t, o, 0), tr, prng.New(3, prng.LabelSample),
			64)
		if c.Mismatch != 0 {
			t.Errorf("%s: identity differential: %+v", name, c)
		}
	}
}

func TestSplitBunch(t *testing.T) {
	o, _ := oracle.Lookup("twine")
	tr := newTrail(t, o, trail.Config{
		Mode:            trail.DifferentialLinear,
		Rounds:          4,
		InputDifference: "0300000000000000",
		OutputMask:      "0000000c00000000",
	})
	ks := schedule(t, o, 4)

	whole := RunBunch(ks, tr, prng.New(4, prng.LabelSample), 1000)

	source := prng.New(4, prng.LabelSample)
	bunch := NewBunch(ks, tr, source)
	split := bunch.Run(300)
	if err := split.Add(bunch.Run(700)); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(whole, split); diff != "" {
		t.Errorf("split bunch mismatch (-whole +split):\n%s", diff)
	}
}

type recordingReader struct {
	reads int
}

func (r *recordingReader) Read(p []byte) (int, error) {
	r.reads++
	return 0, errors.New("entropy source failed")
}

func TestRunnerErrors(t *testing.T) {
	o, _ := oracle.Lookup("warp")
	tr := newTrail(t, o, trail.Config{
		Mode:            trail.DifferentialLinear,
		Rounds:          11,
		InputDifference: "00000000000000020000000000000000",
		OutputMask:      "00000000000000020000000000000000",
	})
	rand := new(recordingReader)
	config := &env.Config{
		Rand: rand,
	}

	params := NewParams()
	params.Deg2 = 64
	_, err := NewRunner(config, o, tr, params).Run()
	if !errors.Is(err, env.ErrConfiguration) {
		t.Errorf("invalid params: got %v", err)
	}

	other, _ := oracle.Lookup("present")
	_, err = NewRunner(config, other, tr, NewParams()).Run()
	if !errors.Is(err, env.ErrConfiguration) {
		t.Errorf("block mismatch: got %v", err)
	}

	long := *tr
	long.Rounds = 42
	_, err = NewRunner(config, o, &long, NewParams()).Run()
	if !errors.Is(err, env.ErrConfiguration) {
		t.Errorf("too many rounds: got %v", err)
	}
	if rand.reads != 0 {
		t.Errorf("entropy read before configuration was validated")
	}

	_, err = NewRunner(config, o, tr, NewParams()).Run()
	if !errors.Is(err, env.ErrEntropy) {
		t.Errorf("entropy failure: got %v", err)
	}
	if env.ExitCode(err) != 2 {
		t.Errorf("entropy failure: exit code %d", env.ExitCode(err))
	}
}

type captureReporter struct {
	result *Result
}

func (r *captureReporter) Report(result *Result) error {
	r.result = result
	return nil
}

func smallParams(seed uint64) *Params {
	return &Params{
		Experiments: 3,
		Workers:     2,
		Deg1:        1,
		Deg2:        8,
		Step:        1,
		Seed:        seed,
		FixedSeed:   true,
	}
}

func TestRunner(t *testing.T) {
	o, _ := oracle.Lookup("lblock")
	tr := newTrail(t, o, trail.Config{
		Mode:            trail.DifferentialLinear,
		Rounds:          5,
		InputDifference: "000000100900000a",
		OutputMask:      "00000007100000b0",
	})

	var phases []Phase
	reporter := new(captureReporter)
	runner := NewRunner(nil, o, tr, smallParams(42))
	runner.Reporter = reporter
	runner.OnPhase = func(p Phase) {
		phases = append(phases, p)
	}
	result, err := runner.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if reporter.result != result {
		t.Errorf("reporter did not receive the result")
	}
	if runner.Phase() != PhaseDone {
		t.Errorf("final phase: %v", runner.Phase())
	}

	expected := []Phase{PhaseInit}
	for i := 0; i < 3; i++ {
		expected = append(expected, PhaseKeySetup, PhaseSampling,
			PhaseAggregate)
	}
	expected = append(expected, PhaseFinalize, PhaseReport, PhaseDone)
	if diff := cmp.Diff(expected, phases); diff != "" {
		t.Errorf("phases (-want +got):\n%s", diff)
	}

	if result.Seed != 42 {
		t.Errorf("seed: got %d", result.Seed)
	}
	if result.Estimate.Queries != 3*2*2*256 {
		t.Errorf("total queries: got %d", result.Estimate.Queries)
	}
	var sum Counters
	var numerators uint64
	for _, exp := range result.Experiments {
		if q, _ := exp.Counters.Queries(); q != 2*2*256 {
			t.Errorf("experiment %d: %d queries", exp.Index, q)
		}
		sum.Add(exp.Counters)
		numerators += exp.Estimate.Numerator
	}
	if sum != result.Total {
		t.Errorf("experiment counters do not sum to total")
	}
	if result.Estimate.Numerator != result.Total.AbsDiff() {
		t.Errorf("grand numerator: got %d", result.Estimate.Numerator)
	}
	if result.Average.Numerator != numerators {
		t.Errorf("average numerator: got %d, expected %d",
			result.Average.Numerator, numerators)
	}
	if len(result.Timing.Samples) != 3 {
		t.Errorf("timing samples: %d", len(result.Timing.Samples))
	}

	// Runs are reproducible from the seed.
	again, err := NewRunner(nil, o, tr, smallParams(42)).Run()
	if err != nil {
		t.Fatal(err)
	}
	if again.Total != result.Total {
		t.Errorf("runs with equal seeds differ: %+v != %+v",
			again.Total, result.Total)
	}
}

func TestAsconDifferential(t *testing.T) {
	o, _ := oracle.Lookup("ascon")
	tr := newTrail(t, o, trail.Config{
		Mode:   trail.Differential,
		Rounds: 1,
		InputDifference: "8000000000000000" + "0000000000000000" +
			"0000000000000000" + "8000000000000000" + "8000000000000000",
		OutputDifference: "0000000000000000" + "0000000000000000" +
			"c200000000000000" + "0000000000000000" + "0000000000000000",
	})

	// The difference is active in the most significant column only;
	// count the S-box inputs of that column following the trail.
	ks := schedule(t, o, 1)
	var count int
	for v := 0; v < 32; v++ {
		var x1, x2 [40]byte
		for k := 0; k < 5; k++ {
			x1[8*k] = byte(v>>k&1) << 7
			x2[8*k] = x1[8*k] ^ tr.InputDifference[8*k]
		}
		c1, _ := oracle.Encrypt(o, ks, x1[:], 1)
		c2, _ := oracle.Encrypt(o, ks, x2[:], 1)
		if tr.MatchDifference(c1, c2) {
			count++
		}
	}
	exact := float64(count) / 32

	params := &Params{
		Experiments: 1,
		Workers:     4,
		Deg1:        2,
		Deg2:        12,
		Step:        1,
		Seed:        7,
		FixedSeed:   true,
	}
	result, err := NewRunner(nil, o, tr, params).Run()
	if err != nil {
		t.Fatal(err)
	}
	n := float64(result.Estimate.Queries)
	p := result.Estimate.Value()
	sigma := math.Sqrt(exact * (1 - exact) / n)
	if math.Abs(p-exact) > 5*sigma+1/n {
		t.Errorf("probability %v, expected %v ± %v", p, exact, 5*sigma)
	}
}

func TestWARPTrail(t *testing.T) {
	if testing.Short() {
		t.Skip("long test")
	}
	o, _ := oracle.Lookup("warp")
	tr := newTrail(t, o, trail.Config{
		Mode:            trail.DifferentialLinear,
		Rounds:          11,
		InputDifference: "00000000000000020000000000000000",
		OutputMask:      "00000000000000020000000000000000",
	})
	params := &Params{
		Experiments: 2,
		Workers:     2,
		Deg1:        2,
		Deg2:        10,
		Step:        1,
		Seed:        11,
		FixedSeed:   true,
	}
	result, err := NewRunner(nil, o, tr, params).Run()
	if err != nil {
		t.Fatal(err)
	}
	exp, err := result.Estimate.Exponent()
	if err != nil {
		t.Fatalf("Exponent: %v", err)
	}
	if exp > 0.5 {
		t.Errorf("correlation 2^-%v, expected close to 1", exp)
	}
}

func gfDouble(v byte) byte {
	if v&0x80 != 0 {
		return v<<1 ^ 0x1b
	}
	return v << 1
}

func TestAESDifferential(t *testing.T) {
	o, _ := oracle.Lookup("aes")
	tr := newTrail(t, o, trail.Config{
		Mode:             trail.Differential,
		Rounds:           2,
		InputDifference:  "01000000000000000000000000000000",
		OutputMask:       "ffffffffffffff00ffff00ffff00ffff",
		OutputDifference: "c5000000000000000000000000000000",
	})

	// Byte 0 follows 01 -> b -> 2b -> c5 through the two S-box layers
	// and the other bytes of its column are uniform. Tabulate the
	// S-box difference distribution with one-round encryptions.
	ks := schedule(t, o, 1)
	ddt := func(in byte) [256]int {
		var row [256]int
		for v := 0; v < 256; v++ {
			var x1, x2 [16]byte
			x1[0] = byte(v)
			x2[0] = byte(v) ^ in
			c1, _ := oracle.Encrypt(o, ks, x1[:], 1)
			c2, _ := oracle.Encrypt(o, ks, x2[:], 1)
			row[c1[0]^c2[0]]++
		}
		return row
	}
	var count int
	for b, n := range ddt(0x01) {
		if n > 0 {
			count += n * ddt(gfDouble(byte(b)))[0xc5]
		}
	}
	exact := float64(count) / 65536
	if exact == 0 {
		t.Fatalf("trail has zero probability")
	}

	var exponents []float64
	for _, seed := range []uint64{3, 4, 5} {
		params := &Params{
			Experiments: 2,
			Workers:     2,
			Deg1:        2,
			Deg2:        12,
			Step:        1,
			Seed:        seed,
			FixedSeed:   true,
		}
		result, err := NewRunner(nil, o, tr, params).Run()
		if err != nil {
			t.Fatal(err)
		}
		if result.Estimate.Queries != 1<<(1+1+2+12) {
			t.Errorf("queries: got %d", result.Estimate.Queries)
		}
		n := float64(result.Estimate.Queries)
		p := result.Estimate.Value()
		sigma := math.Sqrt(exact * (1 - exact) / n)
		if math.Abs(p-exact) > 5*sigma {
			t.Errorf("seed %d: probability %v, expected %v ± %v", seed, p,
				exact, 5*sigma)
		}
		exp, err := result.Estimate.Exponent()
		if err != nil {
			t.Fatalf("seed %d: Exponent: %v", seed, err)
		}
		exponents = append(exponents, exp)
	}

	// Independent seeds agree well within the resolution of 2^16
	// queries.
	min, max := exponents[0], exponents[0]
	for _, e := range exponents {
		min = math.Min(min, e)
		max = math.Max(max, e)
	}
	if max-min > 0.5 {
		t.Errorf("exponents %v spread over %v", exponents, max-min)
	}
	if math.Abs(min+math.Log2(exact)) > 0.5 {
		t.Errorf("exponent %v, expected %v", min, -math.Log2(exact))
	}
}

func TestRunExperimentStep(t *testing.T) {
	o, _ := oracle.Lookup("present")
	tr := newTrail(t, o, trail.Config{
		Mode:            trail.DifferentialLinear,
		Rounds:          1,
		InputDifference: "0000000000000009",
		OutputMask:      "0000000000000001",
	})
	params := &Params{
		Experiments: 1,
		Workers:     1,
		Deg1:        2,
		Deg2:        4,
		Step:        0,
	}
	_, err := RunExperiment(0, schedule(t, o, 1), tr, params,
		[]*prng.Stream{prng.New(1, prng.LabelSample, 0, 0)}, nil)
	if !errors.Is(err, env.ErrConfiguration) {
		t.Errorf("zero step: got %v", err)
	}
}

func TestRunnerWarnings(t *testing.T) {
	o, _ := oracle.Lookup("present")
	tr := newTrail(t, o, trail.Config{
		Mode:            trail.DifferentialLinear,
		Rounds:          2,
		InputDifference: "0000000000000000",
		OutputMask:      "000000000000000f",
	})
	var buf strings.Builder
	config := &env.Config{
		Out:     &buf,
		Verbose: true,
	}
	result, err := NewRunner(config, o, tr, smallParams(1)).Run()
	if err != nil {
		t.Fatal(err)
	}
	if result.Total.Mismatch != 0 {
		t.Errorf("zero difference: %+v", result.Total)
	}
	for _, line := range []string{
		"[+] 0 active input bits, 4 active output bits\n",
		"warning: dl trail holds for every query\n",
	} {
		if !strings.Contains(buf.String(), line) {
			t.Errorf("log does not contain %q:\n%s", line, buf.String())
		}
	}
}
