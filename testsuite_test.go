//
// Copyright (c) 2019-2026 Markku Rossi
//
// All rights reserved.
//

package dlstat

import (
	"errors"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/markkurossi/dlstat/engine"
	"github.com/markkurossi/dlstat/env"
)

const (
	testsuite = "testsuite"
	tolerance = 0.5
)

func TestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("long test")
	}
	filepath.WalkDir(testsuite,
		func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			testFile(t, path)
			return nil
		})
}

func testFile(t *testing.T, file string) {
	if !strings.HasSuffix(file, ".yaml") {
		return
	}
	problem, err := LoadProblem(file)
	if err != nil {
		t.Errorf("failed to load '%s': %s", file, err)
		return
	}
	o, tr, err := problem.Resolve()
	if err != nil {
		t.Errorf("%s: %s", file, err)
		return
	}
	params := &engine.Params{
		Experiments: 2,
		Workers:     2,
		Deg1:        1,
		Deg2:        13,
		Step:        1,
		Seed:        0x5eed,
		FixedSeed:   true,
	}
	record := filepath.Join(t.TempDir(), RecordName(tr.Rounds, 0))
	runner := engine.NewRunner(&env.Config{
		Out: io.Discard,
	}, o, tr, params)
	runner.Reporter = &Reporter{
		Path:   record,
		Out:    io.Discard,
		Expect: problem.Expect,
	}
	result, err := runner.Run()
	if err != nil {
		t.Errorf("%s: run failed: %s", file, err)
		return
	}

	data, err := os.ReadFile(record)
	if err != nil {
		t.Errorf("%s: result record: %s", file, err)
		return
	}
	if strings.Contains(string(data), "NaN") {
		t.Errorf("%s: NaN in result record:\n%s", file, data)
	}

	if problem.Expect == nil {
		return
	}
	exp, err := result.Estimate.Exponent()
	if err != nil {
		t.Errorf("%s: %s", file, err)
		return
	}
	if math.Abs(exp-*problem.Expect) > tolerance {
		t.Errorf("%s: bias 2^-%.2f, expected 2^-%.2f", file, exp,
			*problem.Expect)
	}
}

func TestProblem(t *testing.T) {
	p, err := ParseProblem([]byte(`
cipher: present
rounds: 5
dp: "0000000009000900"
lc: "0001000000010001"
`))
	if err != nil {
		t.Fatal(err)
	}
	if p.Expect != nil {
		t.Errorf("unexpected expect value %v", *p.Expect)
	}
	o, tr, err := p.Resolve()
	if err != nil {
		t.Fatal(err)
	}
	if o.Name() != "present" || tr.Rounds != 5 {
		t.Errorf("Resolve: got %s/%d", o.Name(), tr.Rounds)
	}
	if tr.Layout.Format(tr.OutputMask) != "0001000000010001" {
		t.Errorf("output mask: %s", tr.Layout.Format(tr.OutputMask))
	}
}

var problemErrors = []string{
	`cipher: present
rounds: 5
unknown: 1
`,
	`cipher: [1, 2`,
	`cipher: nosuch
dp: "00"
lc: "00"
`,
	`cipher: present
mode: nosuch
`,
	`cipher: present
rounds: 3
dp: "0000000009000900"
`,
	`cipher: present
rounds: 3
dp: "000000000900090"
lc: "0001000000010001"
`,
}

func TestProblemErrors(t *testing.T) {
	for idx, input := range problemErrors {
		p, err := ParseProblem([]byte(input))
		if err == nil {
			_, _, err = p.Resolve()
		}
		if !errors.Is(err, env.ErrConfiguration) {
			t.Errorf("problem %d: expected configuration error, got %v",
				idx, err)
		}
	}
}
