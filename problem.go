//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package dlstat

import (
	"bytes"
	"fmt"
	"os"

	"github.com/markkurossi/dlstat/env"
	"github.com/markkurossi/dlstat/oracle"
	"github.com/markkurossi/dlstat/trail"
	"gopkg.in/yaml.v3"
)

// Problem defines an estimation problem: the cipher and the trail to
// evaluate. Problems are stored as YAML documents:
//
//	cipher: warp
//	mode: dl
//	rounds: 11
//	dp: "00000000000000020000000000000000"
//	lc: "00000000000000020000000000000000"
//	expect: 0
//
// The vectors are hexadecimal strings in the cipher's block layout.
// The mode defaults to dl. The optional expect field holds the
// expected bias exponent.
type Problem struct {
	Cipher string   `yaml:"cipher"`
	Mode   string   `yaml:"mode"`
	Rounds int      `yaml:"rounds"`
	DP     string   `yaml:"dp"`
	IM     string   `yaml:"im"`
	LC     string   `yaml:"lc"`
	DC     string   `yaml:"dc"`
	Expect *float64 `yaml:"expect"`
}

// ParseProblem parses the YAML problem definition. Unknown fields are
// configuration errors.
func ParseProblem(data []byte) (*Problem, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	p := new(Problem)
	if err := dec.Decode(p); err != nil {
		return nil, env.ConfigErrorf("invalid problem: %v", err)
	}
	return p, nil
}

// LoadProblem loads the problem definition from the file.
func LoadProblem(file string) (*Problem, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, env.ConfigErrorf("%v", err)
	}
	p, err := ParseProblem(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	return p, nil
}

// Resolve resolves the problem's cipher and parses its trail for the
// cipher's block layout.
func (p *Problem) Resolve() (oracle.Oracle, *trail.Trail, error) {
	o, err := oracle.Lookup(p.Cipher)
	if err != nil {
		return nil, nil, err
	}
	name := p.Mode
	if len(name) == 0 {
		name = trail.DifferentialLinear.String()
	}
	mode, err := trail.ParseMode(name)
	if err != nil {
		return nil, nil, err
	}
	t, err := trail.Parse(o.Block(), trail.Config{
		Mode:             mode,
		Rounds:           p.Rounds,
		InputDifference:  p.DP,
		InputMask:        p.IM,
		OutputMask:       p.LC,
		OutputDifference: p.DC,
	})
	if err != nil {
		return nil, nil, err
	}
	return o, t, nil
}
