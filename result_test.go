//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package dlstat

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/markkurossi/dlstat/engine"
	"github.com/markkurossi/dlstat/oracle"
	"github.com/markkurossi/dlstat/trail"
)

var pow2Tests = []struct {
	v        uint64
	expected string
}{
	{0, "0"},
	{1, "2⁰"},
	{1 << 25, "2²⁵"},
	{10 << 25, "5×2²⁶"},
	{7, "7"},
}

func TestPow2(t *testing.T) {
	for _, test := range pow2Tests {
		got := Pow2(test.v)
		if got != test.expected {
			t.Errorf("Pow2(%d)=%q, expected %q", test.v, got, test.expected)
		}
	}
}

func TestSparkline(t *testing.T) {
	if Sparkline(nil) != "" {
		t.Errorf("empty sparkline")
	}
	s := Sparkline([]float64{1, 2, 3})
	if s != "▁▄█" {
		t.Errorf("Sparkline: got %q", s)
	}
	s = Sparkline([]float64{4.5, 4.5})
	if utf8.RuneCountInString(s) != 2 || s != "▅▅" {
		t.Errorf("flat Sparkline: got %q", s)
	}
}

func runSmall(t *testing.T, reporter *Reporter) *engine.Result {
	o, err := oracle.Lookup("present")
	if err != nil {
		t.Fatal(err)
	}
	tr, err := trail.Parse(o.Block(), trail.Config{
		Mode:            trail.DifferentialLinear,
		Rounds:          2,
		InputDifference: "0000000000000009",
		OutputMask:      "0000000000000001",
	})
	if err != nil {
		t.Fatal(err)
	}
	runner := engine.NewRunner(nil, o, tr, &engine.Params{
		Experiments: 2,
		Workers:     2,
		Deg1:        0,
		Deg2:        8,
		Step:        1,
		Seed:        0xdeadbeef,
		FixedSeed:   true,
		Task:        3,
	})
	runner.Reporter = reporter
	result, err := runner.Run()
	if err != nil {
		t.Fatal(err)
	}
	return result
}

func TestReporter(t *testing.T) {
	var out bytes.Buffer
	expect := 1.5
	record := filepath.Join(t.TempDir(), "record.txt")
	runSmall(t, &Reporter{
		Path:   record,
		Out:    &out,
		Expect: &expect,
		Timing: true,
	})

	data, err := os.ReadFile(record)
	if err != nil {
		t.Fatal(err)
	}
	for _, line := range []string{
		"Initial seed 0x00000000DEADBEEF",
		"Diff-Lin distinguisher for 2 rounds of PRESENT",
		"Input difference    : \t 0000000000000009",
		"Output linear mask  : \t 0000000000000001",
		"Experiments          = 2",
		"Number of pairs      = 2^10",
		"Expected correlation = 2^(-1.50)",
	} {
		if !strings.Contains(string(data), line+"\n") {
			t.Errorf("record does not contain %q:\n%s", line, data)
		}
	}

	summary := out.String()
	if !strings.Contains(summary, "Average correlation = ") {
		t.Errorf("summary:\n%s", summary)
	}
	if !strings.Contains(summary, "2¹⁰") {
		t.Errorf("summary does not show query count:\n%s", summary)
	}
}

func TestRecordName(t *testing.T) {
	if RecordName(11, 4) != "result_11_4.txt" {
		t.Errorf("RecordName: %s", RecordName(11, 4))
	}
}
