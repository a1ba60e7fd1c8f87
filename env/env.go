//
// Copyright (c) 2025-2026 Markku Rossi
//
// All rights reserved.
//

// Package env implements the global environment for bias estimation
// runs: the entropy source, diagnostics output, and the error
// taxonomy shared by all packages.
package env

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// Config defines the global configuration for estimation runs. Config
// must not be modified after being passed to any module. It is safe
// for concurrent use by multiple modules as they do not modify it.
type Config struct {
	// Rand is the entropy source for seed acquisition. If unset, the
	// system CSPRNG is used.
	Rand io.Reader

	// Out receives progress and diagnostics. If unset, standard
	// output is used.
	Out io.Writer

	// Verbose enables debug output.
	Verbose bool
}

// GetRandom returns the source of entropy for seed acquisition.
func (config *Config) GetRandom() io.Reader {
	if config != nil && config.Rand != nil {
		return config.Rand
	}
	return rand.Reader
}

// GetOut returns the diagnostics output writer.
func (config *Config) GetOut() io.Writer {
	if config != nil && config.Out != nil {
		return config.Out
	}
	return os.Stdout
}

// Logger returns a logger writing to the configured output.
func (config *Config) Logger() *Logger {
	l := NewLogger(config.GetOut())
	if config != nil {
		l.Verbose = config.Verbose
	}
	return l
}

// AcquireSeed reads a 64-bit initial seed from the entropy source and
// perturbs it with offset. The offset is typically a task identifier
// so that concurrently launched runs use distinct seeds. Failure to
// read entropy is fatal and reported as ErrEntropy.
func (config *Config) AcquireSeed(offset uint64) (uint64, error) {
	var buf [8]byte
	_, err := io.ReadFull(config.GetRandom(), buf[:])
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrEntropy, err)
	}
	return binary.LittleEndian.Uint64(buf[:]) + offset, nil
}
