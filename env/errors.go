//
// Copyright (c) 2025-2026 Markku Rossi
//
// All rights reserved.
//

package env

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration is reported for invalid round counts, key or
	// state width mismatches, and malformed trail strings. It is
	// always detected before any sampling work is done.
	ErrConfiguration = errors.New("configuration error")

	// ErrEntropy is reported when the entropy source fails during
	// seed acquisition.
	ErrEntropy = errors.New("entropy error")

	// ErrResource is reported when round key or counter storage can
	// not be set up.
	ErrResource = errors.New("resource error")

	// ErrDegenerate is reported when an estimate has a zero
	// numerator and its logarithm is undefined.
	ErrDegenerate = errors.New("bias below detectable resolution")
)

// ConfigErrorf creates a new configuration error.
func ConfigErrorf(format string, a ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, a...))
}

// ResourceErrorf creates a new resource error.
func ResourceErrorf(format string, a ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrResource, fmt.Sprintf(format, a...))
}

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrConfiguration):
		return 1
	case errors.Is(err, ErrEntropy):
		return 2
	case errors.Is(err, ErrResource):
		return 3
	default:
		return 4
	}
}
