package prefetchmap_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tratori/prefetchmap/pkg/prefetchmap"
)

func Test_NewProfiler_RejectsNonPositiveDepth(t *testing.T) {
	t.Parallel()

	_, err := prefetchmap.NewProfiler(0, 44, 0)
	require.ErrorIs(t, err, prefetchmap.ErrInvalidConfiguration)
}

// Test_Profiler_ExactAccounting is the core accounting property: every
// RecordUse call increments exactly one of hits/misses,
// regardless of whether a latency sample happened to be open. The
// classification itself (hit vs miss) is never asserted, only the count.
func Test_Profiler_ExactAccounting(t *testing.T) {
	t.Parallel()

	profiler, err := prefetchmap.NewProfiler(1, 44, 2)
	require.NoError(t, err)

	const visits = 1000

	for i := 0; i < visits; i++ {
		profiler.RecordPrefetch(0)
		profiler.RecordUse(0)
	}

	snap := profiler.Snapshot()
	require.Equal(t, uint64(visits), snap.Visits[0])
	require.Equal(t, snap.Visits[0], snap.Hits[0]+snap.Misses[0])
}

// Test_Profiler_ExactAccounting_WithoutPrefetch covers the no-sample-window
// path: a RecordUse with no preceding RecordPrefetch still counts exactly
// once.
func Test_Profiler_ExactAccounting_WithoutPrefetch(t *testing.T) {
	t.Parallel()

	profiler, err := prefetchmap.NewProfiler(1, 44, 0)
	require.NoError(t, err)

	profiler.RecordUse(0)
	profiler.RecordUse(0)

	snap := profiler.Snapshot()
	require.Equal(t, uint64(2), snap.Visits[0])
	require.Equal(t, snap.Visits[0], snap.Hits[0]+snap.Misses[0])
}

func Test_Profiler_Reset_ZeroesEverything(t *testing.T) {
	t.Parallel()

	profiler, err := prefetchmap.NewProfiler(2, 44, 0)
	require.NoError(t, err)

	profiler.RecordPrefetch(0)
	profiler.RecordUse(0)
	profiler.RecordPrefetch(1)
	profiler.RecordUse(1)

	profiler.Reset()

	snap := profiler.Snapshot()

	for stage := 0; stage < snap.Depth; stage++ {
		require.Zero(t, snap.Hits[stage])
		require.Zero(t, snap.Misses[stage])
		require.Zero(t, snap.Visits[stage])
		require.Empty(t, snap.Latencies[stage])
	}
}

func Test_Profiler_SamplingDensity_SkipsMostPrefetches(t *testing.T) {
	t.Parallel()

	// sampleEveryPow2=3 means only every 8th RecordPrefetch actually opens a
	// latency window; RecordUse must still account every visit regardless.
	profiler, err := prefetchmap.NewProfiler(1, 44, 3)
	require.NoError(t, err)

	for i := 0; i < 16; i++ {
		profiler.RecordPrefetch(0)
		profiler.RecordUse(0)
	}

	snap := profiler.Snapshot()
	require.Equal(t, uint64(16), snap.Visits[0])
	require.Equal(t, snap.Visits[0], snap.Hits[0]+snap.Misses[0])
	require.Less(t, len(snap.Latencies[0]), 16, "most visits should be unsampled")
}
