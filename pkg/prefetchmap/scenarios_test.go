package prefetchmap_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tratori/prefetchmap/pkg/prefetchmap"
)

// Scenario: small uniform table, every executor resolves
// every key correctly.
func Test_Scenario_SmallUniformTable(t *testing.T) {
	t.Parallel()

	table := buildKeyValueTable(t, 64, 1000)

	keys := make([]uint32, 256)
	for i := range keys {
		keys[i] = uint32(i * 3 % 1000)
	}

	scalarOut := make([]uint32, len(keys))
	require.NoError(t, prefetchmap.VectorizedGetScalar(table, keys, scalarOut))

	for i, k := range keys {
		require.Equal(t, k+1, scalarOut[i])
	}

	interleaved := map[string]func(out []uint32) error{
		"gp":   func(out []uint32) error { return prefetchmap.VectorizedGetGP(table, keys, out, nil) },
		"amac": func(out []uint32) error { return prefetchmap.VectorizedGetAMAC(table, keys, out, 4, nil) },
		"coro": func(out []uint32) error { return prefetchmap.VectorizedGetCORO(table, keys, out, 4, nil) },
	}

	for name, call := range interleaved {
		out := make([]uint32, len(keys))
		require.NoError(t, call(out), name)

		for i, k := range keys {
			require.Equal(t, k+1, out[i], "%s: index %d", name, i)
		}
	}
}

// Scenario: capacity=1 forces every key into one bucket;
// AMAC must still resolve every key via the chain walk.
func Test_Scenario_AllKeysCollide(t *testing.T) {
	t.Parallel()

	table := buildKeyValueTable(t, 1, 64)

	keys := make([]uint32, 64)
	for i := range keys {
		keys[i] = uint32(i)
	}

	out := make([]uint32, len(keys))
	require.NoError(t, prefetchmap.VectorizedGetAMAC(table, keys, out, 8, nil))

	for i, k := range keys {
		require.Equal(t, k+1, out[i])
	}
}

// Scenario: missing key is fatal regardless of executor.
func Test_Scenario_MissingKeyIsFatal(t *testing.T) {
	t.Parallel()

	table := buildKeyValueTable(t, 16, 100)

	executors := map[string]func([]uint32, []uint32) error{
		"scalar": func(keys, out []uint32) error {
			return prefetchmap.VectorizedGetScalar(table, keys, out)
		},
		"gp": func(keys, out []uint32) error {
			return prefetchmap.VectorizedGetGP(table, keys, out, nil)
		},
		"amac": func(keys, out []uint32) error {
			return prefetchmap.VectorizedGetAMAC(table, keys, out, 4, nil)
		},
		"coro": func(keys, out []uint32) error {
			return prefetchmap.VectorizedGetCORO(table, keys, out, 4, nil)
		},
	}

	for name, call := range executors {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			out := make([]uint32, 1)
			err := call([]uint32{999}, out)
			require.ErrorIs(t, err, prefetchmap.ErrKeyNotFound)
		})
	}
}

// Scenario: profiler exact accounting. Over many uniform
// queries, sum(hits[s]+misses[s]) must equal the observed stage visits
// regardless of the hit/miss classification's correctness.
func Test_Scenario_ProfilerExactAccounting(t *testing.T) {
	t.Parallel()

	const (
		numKeys    = 10_000
		queryCount = 5_000
		ringSize   = 32
	)

	table := buildKeyValueTable(t, 997, numKeys)

	keys := make([]uint32, queryCount)
	for i := range keys {
		keys[i] = uint32(i * 7 % numKeys)
	}

	profiler, err := prefetchmap.NewProfiler(2, prefetchmap.DefaultProfilerHitThresholdCycles, 0)
	require.NoError(t, err)

	out := make([]uint32, len(keys))
	require.NoError(t, prefetchmap.VectorizedGetAMAC(table, keys, out, ringSize, profiler))

	snap := profiler.Snapshot()

	accounted := snap.Hits[1] + snap.Misses[1]
	require.Equal(t, snap.Visits[1], accounted,
		"every stage-1 visit must increment exactly one of hits/misses, independent of classification")
	require.NotZero(t, snap.Visits[1])
}
