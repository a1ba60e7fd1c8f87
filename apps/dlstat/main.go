//
// main.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/pprof"
	"strconv"

	"github.com/markkurossi/dlstat"
	"github.com/markkurossi/dlstat/engine"
	"github.com/markkurossi/dlstat/env"
	"github.com/markkurossi/dlstat/oracle"
	"github.com/markkurossi/dlstat/trail"
	"github.com/markkurossi/tabulate"
	"github.com/schollz/progressbar/v3"
)

func main() {
	defaults := engine.NewParams()

	cipher := flag.String("cipher", "", "cipher `name`")
	mode := flag.String("mode", "dl", "evaluation mode: dl, diff, lin, boomerang")
	rounds := flag.Int("rounds", 0, "number of rounds")
	dp := flag.String("dp", "", "input difference")
	dc := flag.String("dc", "", "output difference")
	lc := flag.String("lc", "", "output linear mask")
	im := flag.String("im", "", "input linear mask")
	problem := flag.String("problem", "", "read cipher and trail from `file`")
	experiments := flag.Int("experiments", defaults.Experiments,
		"number of experiments")
	workers := flag.Int("workers", defaults.Workers,
		"number of parallel workers")
	deg1 := flag.Int("deg1", defaults.Deg1, "bunches per worker: 2^deg1")
	deg2 := flag.Int("deg2", defaults.Deg2, "queries per bunch: 2^deg2")
	task := flag.Uint64("task", 0, "task ID")
	seed := flag.String("seed", "", "fixed PRNG `seed`")
	step := flag.Uint64("step", defaults.Step,
		"number of bunches between progress reports")
	output := flag.String("o", "", "result record `file`")
	selftest := flag.Bool("selftest", false, "check decryption and exit")
	speed := flag.Bool("speed", false, "measure cipher throughput and exit")
	progress := flag.Bool("progress", false, "show progress bar")
	list := flag.Bool("list", false, "list ciphers")
	verbose := flag.Bool("v", false, "verbose output")
	cpuprofile := flag.String("cpuprofile", "", "write cpu profile to `file`")
	flag.Parse()

	log.SetFlags(0)

	if len(*cpuprofile) > 0 {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
	}

	config := &env.Config{
		Verbose: *verbose,
	}
	logger := config.Logger()

	if *list {
		listCiphers()
		return
	}

	var expect *float64
	var o oracle.Oracle
	var t *trail.Trail
	var err error

	if len(*problem) > 0 {
		var p *dlstat.Problem
		p, err = dlstat.LoadProblem(*problem)
		if err == nil {
			expect = p.Expect
			o, t, err = p.Resolve()
		}
	} else {
		o, t, err = parseTrail(*cipher, *mode, *rounds, *dp, *im, *lc, *dc)
	}
	if err != nil {
		exit(err)
	}

	if *selftest {
		for r := 0; r <= o.MaxRounds(); r++ {
			err = oracle.SelfTest(o, config.GetRandom(), r, 16)
			if err != nil {
				exit(err)
			}
		}
		logger.Printf("Check decryption: true")
		return
	}
	if *speed {
		gbps, err := oracle.Speed(o, config.GetRandom(), 1<<20)
		if err != nil {
			exit(err)
		}
		logger.Printf("%s: %d rounds: %.4f GB/s", o.Name(), o.MaxRounds(),
			gbps)
		return
	}

	params := &engine.Params{
		Experiments: *experiments,
		Workers:     *workers,
		Deg1:        *deg1,
		Deg2:        *deg2,
		Step:        *step,
		Task:        *task,
	}
	if len(*seed) > 0 {
		params.Seed, err = strconv.ParseUint(*seed, 0, 64)
		if err != nil {
			exit(env.ConfigErrorf("invalid seed '%s': %v", *seed, err))
		}
		params.FixedSeed = true
	}

	runner := engine.NewRunner(config, o, t, params)
	runner.Reporter = &dlstat.Reporter{
		Path:   *output,
		Expect: expect,
		Timing: *verbose,
	}
	if *progress {
		if err := params.Validate(); err != nil {
			exit(err)
		}
		total := uint64(params.Experiments) * uint64(params.Workers) *
			params.Bunches()
		runner.Progress = &barProgress{
			bar: progressbar.Default(int64(total)),
		}
	} else if *verbose {
		runner.Progress = &engine.LogProgress{
			Log: logger,
		}
	}

	_, err = runner.Run()
	if err != nil {
		exit(err)
	}
}

func parseTrail(cipher, mode string, rounds int, dp, im, lc, dc string) (
	oracle.Oracle, *trail.Trail, error) {

	if len(cipher) == 0 {
		return nil, nil, env.ConfigErrorf("no cipher specified")
	}
	o, err := oracle.Lookup(cipher)
	if err != nil {
		return nil, nil, err
	}
	m, err := trail.ParseMode(mode)
	if err != nil {
		return nil, nil, err
	}
	t, err := trail.Parse(o.Block(), trail.Config{
		Mode:             m,
		Rounds:           rounds,
		InputDifference:  dp,
		InputMask:        im,
		OutputMask:       lc,
		OutputDifference: dc,
	})
	if err != nil {
		return nil, nil, err
	}
	return o, t, nil
}

func listCiphers() {
	tab := tabulate.New(tabulate.UnicodeLight)
	tab.Header("Cipher").SetAlign(tabulate.ML)
	tab.Header("Block").SetAlign(tabulate.MR)
	tab.Header("Key").SetAlign(tabulate.MR)
	tab.Header("Rounds").SetAlign(tabulate.MR)

	for _, name := range oracle.Names() {
		o, err := oracle.Lookup(name)
		if err != nil {
			continue
		}
		row := tab.Row()
		row.Column(name)
		row.Column(o.Block().String())
		row.Column(o.Key().String())
		row.Column(fmt.Sprintf("%d", o.MaxRounds()))
	}
	tab.Print(os.Stdout)
}

func exit(err error) {
	fmt.Fprintf(os.Stderr, "dlstat: %s\n", err)
	pprof.StopCPUProfile()
	os.Exit(env.ExitCode(err))
}

// barProgress shows the progress of the workers as a progress bar.
type barProgress struct {
	bar *progressbar.ProgressBar
}

func (p *barProgress) Report(r engine.ProgressReport) {
	p.bar.Add64(int64(r.Delta))
}
