//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package engine

import (
	"fmt"

	"github.com/markkurossi/dlstat/env"
	"github.com/markkurossi/dlstat/oracle"
	"github.com/markkurossi/dlstat/prng"
	"github.com/markkurossi/dlstat/trail"
)

type workerResult struct {
	worker   int
	counters Counters
	err      error
}

// RunExperiment runs one experiment with len(sources) parallel
// workers. Each worker runs params.Bunches() bunches of
// params.Queries() queries with its own random source and the shared
// schedule. The workers' counters are reduced when all workers have
// completed. The progress argument may be nil. The parameters are
// validated before any worker is started.
func RunExperiment(experiment int, ks oracle.Schedule, t *trail.Trail,
	params *Params, sources []*prng.Stream, progress Progress) (
	Counters, error) {

	if err := params.Validate(); err != nil {
		return Counters{}, err
	}
	if len(sources) == 0 {
		return Counters{}, env.ConfigErrorf("no workers")
	}
	ch := make(chan workerResult)

	for i, source := range sources {
		go func(worker int, source *prng.Stream) {
			bunch := NewBunch(ks, t, source)
			bunches := params.Bunches()
			queries := params.Queries()

			var local Counters
			var reported uint64
			for j := uint64(0); j < bunches; j++ {
				err := local.Add(bunch.Run(queries))
				if err != nil {
					ch <- workerResult{
						worker: worker,
						err:    err,
					}
					return
				}
				done := j + 1
				if progress != nil && (done%params.Step == 0 || done == bunches) {
					progress.Report(ProgressReport{
						Experiment: experiment,
						Worker:     worker,
						Done:       done,
						Total:      bunches,
						Delta:      done - reported,
					})
					reported = done
				}
			}
			ch <- workerResult{
				worker:   worker,
				counters: local,
			}
		}(i, source)
	}

	var result Counters
	var firstErr error
	for range sources {
		r := <-ch
		if r.err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("worker %d: %w", r.worker, r.err)
			}
			continue
		}
		if err := result.Add(r.counters); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return Counters{}, firstErr
	}
	return result, nil
}
