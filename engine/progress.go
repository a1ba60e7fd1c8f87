//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package engine

import (
	"github.com/markkurossi/dlstat/env"
)

// ProgressReport describes the progress of one worker.
type ProgressReport struct {
	Experiment int
	Worker     int

	// Done is the number of bunches the worker has completed out of
	// Total. Delta is the number of bunches completed since the
	// worker's previous report.
	Done  uint64
	Total uint64
	Delta uint64
}

// Progress receives progress reports from workers. Reports are
// observational only and they are delivered concurrently from all
// workers.
type Progress interface {
	Report(r ProgressReport)
}

// LogProgress reports worker progress to a logger.
type LogProgress struct {
	Log *env.Logger
}

// Report implements Progress.Report.
func (p *LogProgress) Report(r ProgressReport) {
	p.Log.Debugf("Exp: %d\tPID: %d\tBunch Number: %d/%d",
		r.Experiment, r.Worker, r.Done, r.Total)
}
