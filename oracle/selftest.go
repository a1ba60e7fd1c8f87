//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package oracle

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/markkurossi/dlstat/state"
)

// ErrSelfTest is reported when an oracle fails its decryption check.
var ErrSelfTest = errors.New("self-test failed")

func randomState(rand io.Reader, l state.Layout) (state.State, error) {
	s := l.New()
	if _, err := io.ReadFull(rand, s); err != nil {
		return nil, err
	}
	l.Mask(s)
	return s, nil
}

// SelfTest encrypts count random plaintexts under random keys with
// rounds rounds and verifies that decryption recovers them.
func SelfTest(o Oracle, rand io.Reader, rounds, count int) error {
	for i := 0; i < count; i++ {
		key, err := randomState(rand, o.Key())
		if err != nil {
			return err
		}
		ks, err := o.KeySchedule(key, rounds)
		if err != nil {
			return err
		}
		pt, err := randomState(rand, o.Block())
		if err != nil {
			return err
		}
		ct, err := Encrypt(o, ks, pt, rounds)
		if err != nil {
			return err
		}
		dec, err := Decrypt(o, ks, ct, rounds)
		if err != nil {
			return err
		}
		if !dec.Equal(pt) {
			return fmt.Errorf("%w: %s: %d rounds: D(E(%s))=%s",
				ErrSelfTest, o.Name(), rounds,
				o.Block().Format(pt), o.Block().Format(dec))
		}
	}
	return nil
}

// Speed measures the encryption throughput of the full-round oracle
// over n encryptions. It returns the throughput in gigabytes per
// second.
func Speed(o Oracle, rand io.Reader, n int) (float64, error) {
	key, err := randomState(rand, o.Key())
	if err != nil {
		return 0, err
	}
	rounds := o.MaxRounds()
	ks, err := o.KeySchedule(key, rounds)
	if err != nil {
		return 0, err
	}
	x, err := randomState(rand, o.Block())
	if err != nil {
		return 0, err
	}

	start := time.Now()
	for i := 0; i < n; i++ {
		ks.Encrypt(x, x, rounds)
	}
	elapsed := time.Since(start)
	if elapsed <= 0 {
		elapsed = time.Nanosecond
	}
	bytes := float64(n) * float64(o.Block().Bits()) / 8
	return bytes / float64(elapsed.Nanoseconds()), nil
}
