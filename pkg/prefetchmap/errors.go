package prefetchmap

import (
	"errors"
	"fmt"
)

// Error classification codes.
//
// Implementations MAY wrap these errors with additional context (the
// offending executor name and request index/key). Callers MUST classify
// errors using [errors.Is].
var (
	// ErrKeyNotFound indicates no entry matches a probed key. In the
	// benchmark driver this signals a data-model violation and is treated
	// as fatal: the fill phase guarantees every queried key is present.
	ErrKeyNotFound = errors.New("prefetchmap: key not found")

	// ErrInvalidConfiguration indicates a zero capacity, zero ring size,
	// an AMAC/CORO window larger than the request count, or an invalid
	// Zipfian parameterization (min > max, non-positive skew).
	ErrInvalidConfiguration = errors.New("prefetchmap: invalid configuration")

	// ErrResourceFailure indicates an allocation, CPU-pinning, or
	// result-file write failure; the benchmark driver also returns it when an
	// executor's output fails the key+1 check. Never returned by table or
	// executor operations themselves.
	ErrResourceFailure = errors.New("prefetchmap: resource failure")
)

// wrapInvalidConfiguration builds an [ErrInvalidConfiguration] with the
// given detail.
func wrapInvalidConfiguration(detail string) error {
	return fmt.Errorf("%s: %w", detail, ErrInvalidConfiguration)
}
