//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package oracle implements reduced-round block ciphers and
// permutations as pluggable encryption oracles.
//
// An Oracle derives an immutable Schedule from a master key. The
// schedule encrypts and decrypts states for any round prefix up to
// the schedule's round count. Schedules hold no mutable state and
// they are safe for concurrent use by all workers of an experiment.
package oracle

import (
	"sort"

	"github.com/markkurossi/dlstat/env"
	"github.com/markkurossi/dlstat/state"
)

// Oracle defines a reduced-round cipher.
type Oracle interface {
	// Name returns the registry name of the cipher.
	Name() string

	// Block returns the layout of the cipher state.
	Block() state.Layout

	// Key returns the layout of the master key. Permutations have a
	// zero-width key.
	Key() state.Layout

	// MaxRounds returns the maximum number of supported rounds.
	MaxRounds() int

	// KeySchedule derives the round keys for rounds rounds.
	KeySchedule(key state.State, rounds int) (Schedule, error)
}

// Schedule implements keyed encryption and decryption.
type Schedule interface {
	// Rounds returns the number of rounds the schedule was derived
	// for.
	Rounds() int

	// Encrypt encrypts src into dst with the first rounds rounds. The
	// zero round encryption is the identity.
	Encrypt(dst, src state.State, rounds int)

	// Decrypt inverts Encrypt for the same round count.
	Decrypt(dst, src state.State, rounds int)
}

// checkKey validates the key and round count for the key schedule of
// the oracle.
func checkKey(o Oracle, key state.State, rounds int) error {
	if rounds < 0 || rounds > o.MaxRounds() {
		return env.ConfigErrorf("%s: invalid round count %d, max %d",
			o.Name(), rounds, o.MaxRounds())
	}
	if err := o.Key().Check(key); err != nil {
		return env.ConfigErrorf("%s: key: %v", o.Name(), err)
	}
	return nil
}

func checkArgs(o Oracle, ks Schedule, src state.State, rounds int) error {
	if rounds < 0 || rounds > ks.Rounds() {
		return env.ConfigErrorf("%s: round count %d outside schedule of %d rounds",
			o.Name(), rounds, ks.Rounds())
	}
	if err := o.Block().Check(src); err != nil {
		return env.ConfigErrorf("%s: block: %v", o.Name(), err)
	}
	return nil
}

// Encrypt encrypts the plaintext with the schedule after validating
// its width and the round count.
func Encrypt(o Oracle, ks Schedule, pt state.State, rounds int) (
	state.State, error) {

	if err := checkArgs(o, ks, pt, rounds); err != nil {
		return nil, err
	}
	ct := o.Block().New()
	ks.Encrypt(ct, pt, rounds)
	return ct, nil
}

// Decrypt decrypts the ciphertext with the schedule after validating
// its width and the round count.
func Decrypt(o Oracle, ks Schedule, ct state.State, rounds int) (
	state.State, error) {

	if err := checkArgs(o, ks, ct, rounds); err != nil {
		return nil, err
	}
	pt := o.Block().New()
	ks.Decrypt(pt, ct, rounds)
	return pt, nil
}

var registry = map[string]func() Oracle{
	"aes":        func() Oracle { return AES128{} },
	"ascon":      func() Oracle { return Ascon{} },
	"clefia":     func() Oracle { return CLEFIA{} },
	"knot":       func() Oracle { return KNOT256{} },
	"present":    func() Oracle { return NewPresent(80) },
	"present128": func() Oracle { return NewPresent(128) },
	"warp":       func() Oracle { return WARP{} },
	"twine":      func() Oracle { return TWINE80{} },
	"lblock":     func() Oracle { return NewLBlock() },
	"lblocks":    func() Oracle { return NewLBlockS() },
	"serpent":    func() Oracle { return NewSerpent(0) },
	"simeck":     func() Oracle { return Simeck32{} },
}

// Lookup returns the oracle by its name.
func Lookup(name string) (Oracle, error) {
	ctor, ok := registry[name]
	if !ok {
		return nil, env.ConfigErrorf("unknown cipher '%s'", name)
	}
	return ctor(), nil
}

// Names returns the sorted names of all registered oracles.
func Names() []string {
	var names []string
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
