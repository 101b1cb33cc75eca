// Package workload generates the request key streams the benchmark driver
// feeds to each executor: a uniform distribution over the key space
// [0, numKeys) and a Zipfian distribution over a configured [min, max] range.
package workload

import (
	"fmt"
	"math/rand/v2"

	"github.com/tratori/prefetchmap/pkg/prefetchmap"
)

var errInvalidWorkload = prefetchmap.ErrInvalidConfiguration

// Uniform generates count keys drawn uniformly from [0, numKeys), using src
// as the source of randomness. numKeys must be greater than zero.
func Uniform(src *rand.Rand, numKeys uint32, count int) ([]uint32, error) {
	if numKeys == 0 {
		return nil, fmt.Errorf("numKeys must be > 0: %w", errInvalidWorkload)
	}

	keys := make([]uint32, count)
	for i := range keys {
		keys[i] = src.Uint32N(numKeys)
	}

	return keys, nil
}
