//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package env

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

type failingReader struct{}

func (r failingReader) Read(p []byte) (int, error) {
	return 0, errors.New("no entropy")
}

func TestAcquireSeed(t *testing.T) {
	config := &Config{
		Rand: bytes.NewReader([]byte{1, 0, 0, 0, 0, 0, 0, 0}),
	}
	seed, err := config.AcquireSeed(41)
	if err != nil {
		t.Fatalf("AcquireSeed: %v", err)
	}
	if seed != 42 {
		t.Errorf("AcquireSeed: got %d, expected 42", seed)
	}
}

func TestAcquireSeedFailure(t *testing.T) {
	config := &Config{
		Rand: failingReader{},
	}
	_, err := config.AcquireSeed(0)
	if !errors.Is(err, ErrEntropy) {
		t.Fatalf("AcquireSeed: expected ErrEntropy, got %v", err)
	}
	if ExitCode(err) != 2 {
		t.Errorf("ExitCode: got %d, expected 2", ExitCode(err))
	}

	config.Rand = bytes.NewReader([]byte{1, 2, 3})
	_, err = config.AcquireSeed(0)
	if !errors.Is(err, ErrEntropy) {
		t.Errorf("short read: expected ErrEntropy, got %v", err)
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{nil, 0},
		{ConfigErrorf("rounds %d", 99), 1},
		{ResourceErrorf("schedule"), 3},
		{errors.New("other"), 4},
	}
	for _, test := range tests {
		if code := ExitCode(test.err); code != test.code {
			t.Errorf("ExitCode(%v): got %d, expected %d",
				test.err, code, test.code)
		}
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	config := &Config{
		Out: &buf,
	}
	log := config.Logger()
	log.Debugf("hidden")
	log.Printf("shown %d", 1)
	log.Warningf("careful")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("Debugf printed without Verbose: %q", out)
	}
	if !strings.Contains(out, "shown 1\n") {
		t.Errorf("Printf output missing: %q", out)
	}
	if !strings.Contains(out, "warning: careful\n") {
		t.Errorf("Warningf output missing: %q", out)
	}
}
