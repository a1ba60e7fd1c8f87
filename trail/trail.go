//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package trail defines the distinguisher trails and their match
// predicates.
package trail

import (
	"fmt"
	"strings"

	"github.com/markkurossi/dlstat/env"
	"github.com/markkurossi/dlstat/state"
)

// Mode defines how a trail is evaluated.
type Mode int

// Evaluation modes.
const (
	DifferentialLinear Mode = iota
	Differential
	Linear
	Boomerang
)

var modeNames = map[Mode]string{
	DifferentialLinear: "dl",
	Differential:       "diff",
	Linear:             "lin",
	Boomerang:          "boomerang",
}

var modeTitles = map[Mode]string{
	DifferentialLinear: "Diff-Lin distinguisher",
	Differential:       "Differential trail",
	Linear:             "Linear approximation",
	Boomerang:          "Boomerang distinguisher",
}

func (m Mode) String() string {
	name, ok := modeNames[m]
	if ok {
		return name
	}
	return fmt.Sprintf("{Mode %d}", m)
}

// Title returns a human readable description of the mode.
func (m Mode) Title() string {
	title, ok := modeTitles[m]
	if ok {
		return title
	}
	return m.String()
}

// Correlation tests if the mode measures a correlation. Correlation
// modes estimate |match-mismatch| while the other modes estimate the
// match probability.
func (m Mode) Correlation() bool {
	return m == DifferentialLinear || m == Linear
}

// ParseMode parses the mode name.
func ParseMode(name string) (Mode, error) {
	name = strings.ToLower(name)
	for m, n := range modeNames {
		if n == name {
			return m, nil
		}
	}
	return 0, env.ConfigErrorf("unknown mode '%s'", name)
}

// Trail defines a distinguisher over a reduced-round cipher. The
// vectors not used by the mode are zero. A validated trail is
// immutable and shared by all workers of a run.
type Trail struct {
	Mode   Mode
	Rounds int
	Layout state.Layout

	// InputDifference is the plaintext difference Δ of the
	// differential-linear, differential, and boomerang modes.
	InputDifference state.State

	// InputMask is the plaintext mask α of the linear mode.
	InputMask state.State

	// OutputMask is the ciphertext mask λ of the differential-linear
	// and linear modes. In the differential mode it is the
	// truncation mask of the output difference.
	OutputMask state.State

	// OutputDifference is the ciphertext difference of the
	// differential mode and the backward difference ∇ of the
	// boomerang mode.
	OutputDifference state.State
}

// Config specifies a trail in its textual form. Empty vectors are
// absent.
type Config struct {
	Mode             Mode
	Rounds           int
	InputDifference  string
	InputMask        string
	OutputMask       string
	OutputDifference string
}

// Parse parses and validates the trail configuration for the block
// layout.
func Parse(layout state.Layout, c Config) (*Trail, error) {
	t := &Trail{
		Mode:   c.Mode,
		Rounds: c.Rounds,
	}
	var err error
	vectors := []struct {
		name  string
		input string
		dst   *state.State
	}{
		{"input difference", c.InputDifference, &t.InputDifference},
		{"input mask", c.InputMask, &t.InputMask},
		{"output mask", c.OutputMask, &t.OutputMask},
		{"output difference", c.OutputDifference, &t.OutputDifference},
	}
	for _, v := range vectors {
		if len(v.input) == 0 {
			continue
		}
		*v.dst, err = layout.Parse(v.input)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", v.name, err)
		}
	}
	return New(layout, t)
}

// New validates the trail for the block layout and returns a copy
// with absent vectors set to their defaults. The vectors must be
// present as required by the mode. The truncation mask of the
// differential mode defaults to all ones.
func New(layout state.Layout, t *Trail) (*Trail, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	if t.Rounds < 0 {
		return nil, env.ConfigErrorf("invalid round count %d", t.Rounds)
	}
	var required []string
	switch t.Mode {
	case DifferentialLinear:
		required = require(required, t.InputDifference, "input difference")
		required = require(required, t.OutputMask, "output mask")
	case Differential, Boomerang:
		required = require(required, t.InputDifference, "input difference")
		required = require(required, t.OutputDifference, "output difference")
	case Linear:
		required = require(required, t.InputMask, "input mask")
		required = require(required, t.OutputMask, "output mask")
	default:
		return nil, env.ConfigErrorf("invalid mode %v", t.Mode)
	}
	if len(required) > 0 {
		return nil, env.ConfigErrorf("%s mode requires %s",
			t.Mode, strings.Join(required, " and "))
	}

	result := &Trail{
		Mode:   t.Mode,
		Rounds: t.Rounds,
		Layout: layout,
	}
	vectors := []struct {
		name string
		src  state.State
		dst  *state.State
		def  state.State
	}{
		{"input difference", t.InputDifference, &result.InputDifference, nil},
		{"input mask", t.InputMask, &result.InputMask, nil},
		{"output mask", t.OutputMask, &result.OutputMask, nil},
		{"output difference", t.OutputDifference, &result.OutputDifference,
			nil},
	}
	if t.Mode == Differential {
		vectors[2].def = layout.Ones()
	}
	for _, v := range vectors {
		switch {
		case v.src != nil:
			if len(v.src) != layout.Cells {
				return nil, env.ConfigErrorf("%s: got %d cells, expected %d",
					v.name, len(v.src), layout.Cells)
			}
			*v.dst = v.src.Clone()
			layout.Mask(*v.dst)
		case v.def != nil:
			*v.dst = v.def
		default:
			*v.dst = layout.New()
		}
	}
	return result, nil
}

func require(missing []string, v state.State, name string) []string {
	if v == nil {
		return append(missing, name)
	}
	return missing
}

// MatchParity tests the differential-linear predicate: the output
// mask has equal parity over both ciphertexts.
func (t *Trail) MatchParity(c1, c2 state.State) bool {
	return state.Parity(c1, t.OutputMask, t.Layout) ==
		state.Parity(c2, t.OutputMask, t.Layout)
}

// MatchDifference tests the differential predicate: the ciphertext
// difference equals the output difference over the truncation mask.
func (t *Trail) MatchDifference(c1, c2 state.State) bool {
	return state.EqualMasked(c1, c2, t.OutputDifference, t.OutputMask,
		t.Layout)
}

// MatchLinear tests the linear predicate: the input mask parity of
// the plaintext equals the output mask parity of the ciphertext.
func (t *Trail) MatchLinear(p, c state.State) bool {
	return state.Parity(p, t.InputMask, t.Layout) ==
		state.Parity(c, t.OutputMask, t.Layout)
}

// MatchBoomerang tests the boomerang predicate: the returning
// plaintexts have the input difference.
func (t *Trail) MatchBoomerang(p3, p4 state.State) bool {
	for i := range p3 {
		if p3[i]^p4[i] != t.InputDifference[i] {
			return false
		}
	}
	return true
}

// Describe returns the labeled vectors the mode uses.
func (t *Trail) Describe() [][2]string {
	var result [][2]string
	add := func(label string, v state.State) {
		result = append(result, [2]string{label, t.Layout.Format(v)})
	}
	switch t.Mode {
	case DifferentialLinear:
		add("Input difference", t.InputDifference)
		add("Output linear mask", t.OutputMask)
	case Differential:
		add("Input difference", t.InputDifference)
		add("Output difference", t.OutputDifference)
		add("Truncation mask", t.OutputMask)
	case Linear:
		add("Input linear mask", t.InputMask)
		add("Output linear mask", t.OutputMask)
	case Boomerang:
		add("Input difference", t.InputDifference)
		add("Output difference", t.OutputDifference)
	}
	return result
}

// Trivial tests if the trail holds for every query regardless of the
// cipher.
func (t *Trail) Trivial() bool {
	switch t.Mode {
	case DifferentialLinear:
		return t.InputDifference.IsZero() || t.OutputMask.IsZero()
	case Differential, Boomerang:
		return t.InputDifference.IsZero()
	case Linear:
		return t.InputMask.IsZero() && t.OutputMask.IsZero()
	default:
		return false
	}
}

// Weights returns the number of active bits at the input and at the
// output of the trail.
func (t *Trail) Weights() (in, out int) {
	switch t.Mode {
	case DifferentialLinear:
		return state.Weight(t.InputDifference, t.Layout),
			state.Weight(t.OutputMask, t.Layout)
	case Differential, Boomerang:
		return state.Weight(t.InputDifference, t.Layout),
			state.Weight(t.OutputDifference, t.Layout)
	case Linear:
		return state.Weight(t.InputMask, t.Layout),
			state.Weight(t.OutputMask, t.Layout)
	}
	return 0, 0
}
