//
// Copyright (c) 2019-2026 Markku Rossi
//
// All rights reserved.
//

// Package dlstat implements the result reporting and problem
// definitions of the bias estimation runs.
package dlstat

import (
	"fmt"
	"io"
	"math"
	"math/bits"
	"os"
	"strings"

	"github.com/markkurossi/dlstat/engine"
	"github.com/markkurossi/tabulate"
	"github.com/markkurossi/text/superscript"
)

// Reporter writes the result record of a run to a file and prints
// the result summary.
type Reporter struct {
	// Path is the result record file. If empty, the record is written
	// to RecordName(rounds, task).
	Path string

	// Out receives the summary. If unset, standard output is used.
	Out io.Writer

	// Expect is the expected bias exponent if known.
	Expect *float64

	// Timing enables the timing table in the summary.
	Timing bool
}

// RecordName returns the default result record file name.
func RecordName(rounds int, task uint64) string {
	return fmt.Sprintf("result_%d_%d.txt", rounds, task)
}

// Report implements engine.Reporter.Report.
func (r *Reporter) Report(result *engine.Result) error {
	path := r.Path
	if len(path) == 0 {
		path = RecordName(result.Trail.Rounds, result.Params.Task)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	err = WriteRecord(f, result, r.Expect)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}

	out := r.Out
	if out == nil {
		out = os.Stdout
	}
	PrintSummary(out, result)
	if r.Timing {
		result.Timing.Print(out, Pow2(result.Estimate.Queries))
	}
	return nil
}

func biasLabel(result *engine.Result) string {
	if result.Trail.Mode.Correlation() {
		return "correlation"
	}
	return "probability"
}

// WriteRecord writes the result record. The record holds the seed and
// the trail so that the run can be reproduced.
func WriteRecord(w io.Writer, result *engine.Result, expect *float64) error {
	t := result.Trail
	est := result.Estimate

	var lines []string
	add := func(format string, a ...interface{}) {
		lines = append(lines, fmt.Sprintf(format, a...))
	}

	add("Initial seed 0x%016X", result.Seed)
	add("%s for %d rounds of %s", t.Mode.Title(), t.Rounds,
		strings.ToUpper(result.Cipher))
	for _, v := range t.Describe() {
		add("%-20s: \t %s", v[0], v[1])
	}
	add("Experiments          = %d", len(result.Experiments))
	add("Number of pairs      = %s", pow2Ascii(est.Queries))
	if t.Mode.Correlation() {
		add("Absolute correlation = %d", est.Numerator)
		diff, neg := result.Total.Diff()
		sign := ""
		if neg {
			sign = "-"
		}
		add("Match - mismatch     = %s%d", sign, diff)
	} else {
		add("Number of satisfying = %d", est.Numerator)
	}
	add("Average %-12s = %s", biasLabel(result), est)
	if result.Average.Numerator != est.Numerator {
		add("Sum of experiments   = %s", result.Average)
	}
	if expect != nil {
		add("Expected %-11s = 2^(-%0.2f)", biasLabel(result), *expect)
	}
	if result.Degenerate < len(result.Experiments) {
		add("Exponent mean        = %0.4f ± %0.4f", result.MeanExponent,
			result.StdDevExponent)
	}
	if result.Degenerate > 0 {
		add("Degenerate           = %d", result.Degenerate)
	}
	add("")
	add("%-4s %20s %20s %24s %s", "Exp", "Match", "Mismatch", "Bias", "Time")
	for _, exp := range result.Experiments {
		add("%-4d %20d %20d %24s %s", exp.Index, exp.Counters.Match,
			exp.Counters.Mismatch, exp.Estimate, exp.Elapsed)
	}

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// PrintSummary prints the per-experiment results and the estimate as
// a table.
func PrintSummary(w io.Writer, result *engine.Result) {
	tab := tabulate.New(tabulate.UnicodeLight)
	tab.Header("Exp").SetAlign(tabulate.MR)
	tab.Header("Match").SetAlign(tabulate.MR)
	tab.Header("Mismatch").SetAlign(tabulate.MR)
	tab.Header("Bias").SetAlign(tabulate.ML)

	for _, exp := range result.Experiments {
		row := tab.Row()
		row.Column(fmt.Sprintf("%d", exp.Index))
		row.Column(fmt.Sprintf("%d", exp.Counters.Match))
		row.Column(fmt.Sprintf("%d", exp.Counters.Mismatch))
		row.Column(exp.Estimate.String())
	}
	row := tab.Row()
	row.Column(Pow2(result.Estimate.Queries)).SetFormat(tabulate.FmtBold)
	row.Column(fmt.Sprintf("%d", result.Total.Match)).
		SetFormat(tabulate.FmtBold)
	row.Column(fmt.Sprintf("%d", result.Total.Mismatch)).
		SetFormat(tabulate.FmtBold)
	row.Column(result.Estimate.String()).SetFormat(tabulate.FmtBold)

	fmt.Fprintf(w, "%s for %d rounds of %s\n", result.Trail.Mode.Title(),
		result.Trail.Rounds, strings.ToUpper(result.Cipher))
	tab.Print(w)

	var exponents []float64
	for _, exp := range result.Experiments {
		e, err := exp.Estimate.Exponent()
		if err != nil {
			e = exp.Estimate.Bound()
		}
		exponents = append(exponents, e)
	}
	fmt.Fprintf(w, "Average %s = %s\t%s\n", biasLabel(result),
		result.Estimate, Sparkline(exponents))
}

// Pow2 formats the value as m×2ⁿ with an odd m. Powers of two are
// formatted as 2ⁿ.
func Pow2(v uint64) string {
	if v == 0 {
		return "0"
	}
	n := bits.TrailingZeros64(v)
	m := v >> n
	if m == 1 {
		return "2" + superscript.Itoa(n)
	}
	if n == 0 {
		return fmt.Sprintf("%d", m)
	}
	return fmt.Sprintf("%d×2%s", m, superscript.Itoa(n))
}

func pow2Ascii(v uint64) string {
	if v == 0 {
		return "0"
	}
	n := bits.TrailingZeros64(v)
	m := v >> n
	if m == 1 {
		return fmt.Sprintf("2^%d", n)
	}
	if n == 0 {
		return fmt.Sprintf("%d", m)
	}
	return fmt.Sprintf("%d*2^%d", m, n)
}

// Sparkline creates a histogram chart of values. The chart is scaled
// to [min...max] containing differences between values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}

	min := math.Inf(1)
	max := math.Inf(-1)

	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	delta := max - min

	var sb strings.Builder
	for _, v := range values {
		var tick int
		if delta == 0 {
			tick = 4
		} else {
			tick = int((v - min) * 7 / delta)
		}
		sb.WriteRune(rune(0x2581 + tick))
	}
	return sb.String()
}
