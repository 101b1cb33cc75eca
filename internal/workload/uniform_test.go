package workload_test

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tratori/prefetchmap/internal/workload"
	"github.com/tratori/prefetchmap/pkg/prefetchmap"
)

func Test_Uniform_RejectsZeroNumKeys(t *testing.T) {
	t.Parallel()

	_, err := workload.Uniform(rand.New(rand.NewPCG(1, 2)), 0, 10)
	require.ErrorIs(t, err, prefetchmap.ErrInvalidConfiguration)
}

func Test_Uniform_StaysInRange(t *testing.T) {
	t.Parallel()

	const numKeys = 1000

	keys, err := workload.Uniform(rand.New(rand.NewPCG(7, 11)), numKeys, 5000)
	require.NoError(t, err)
	require.Len(t, keys, 5000)

	for _, k := range keys {
		require.Less(t, k, uint32(numKeys))
	}
}

func Test_Uniform_IsDeterministicForFixedSeed(t *testing.T) {
	t.Parallel()

	a, err := workload.Uniform(rand.New(rand.NewPCG(1, 1)), 1000, 100)
	require.NoError(t, err)

	b, err := workload.Uniform(rand.New(rand.NewPCG(1, 1)), 1000, 100)
	require.NoError(t, err)

	require.Equal(t, a, b)
}
