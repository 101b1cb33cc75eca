package workload

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
)

// ZipfParams describes a zipfian_int_distribution(min, max, skew, offset):
// integers in [min, max] are drawn with probability proportional to
// 1 / (rank+1+offset)^skew, rank 0 being the most frequent value (min itself).
//
// Go's standard library rand.Zipf requires skew (its "s" parameter) > 1 and
// has no offset term, so it cannot reproduce a skew=0.99 workload;
// ZipfParams drives a small exact sampler instead (zipf.go).
type ZipfParams struct {
	Min    int64
	Max    int64
	Skew   float64
	Offset float64
}

func (p ZipfParams) validate() error {
	if p.Min > p.Max {
		return fmt.Errorf("min %d > max %d: %w", p.Min, p.Max, errInvalidWorkload)
	}

	if p.Skew <= 0 {
		return fmt.Errorf("skew %v must be > 0: %w", p.Skew, errInvalidWorkload)
	}

	return nil
}

// ZipfSampler draws integers in [Min, Max] from a precomputed cumulative
// distribution via binary search (exact CDF inversion). Construction is
// O(range); sampling is O(log range). This favors correctness and
// reproducibility over raw generation speed: the Zipfian throughput
// assertions are soft performance assertions on the executors, not on the
// generator.
type ZipfSampler struct {
	min    int64
	cdf    []float64
	params ZipfParams
}

// NewZipfSampler builds a sampler for the given parameters.
func NewZipfSampler(params ZipfParams) (*ZipfSampler, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	n := params.Max - params.Min + 1

	weights := make([]float64, n)

	var total float64

	for rank := int64(0); rank < n; rank++ {
		w := 1.0 / math.Pow(float64(rank)+params.Offset+1, params.Skew)
		weights[rank] = w
		total += w
	}

	cdf := make([]float64, n)

	running := 0.0
	for i, w := range weights {
		running += w / total
		cdf[i] = running
	}

	// Guard against floating point drift leaving the final entry below 1.
	cdf[n-1] = 1

	return &ZipfSampler{min: params.Min, cdf: cdf, params: params}, nil
}

// Sample draws one value in [Min, Max] using src as the source of entropy.
func (z *ZipfSampler) Sample(src *rand.Rand) int64 {
	u := src.Float64()
	rank := sort.SearchFloat64s(z.cdf, u)

	return z.min + int64(rank)
}

// Zipfian generates count keys in [params.Min, params.Max] by sampling
// params. Values are converted to uint32 as sampled; they are not clamped to
// any table's key space.
func Zipfian(src *rand.Rand, params ZipfParams, count int) ([]uint32, error) {
	sampler, err := NewZipfSampler(params)
	if err != nil {
		return nil, err
	}

	keys := make([]uint32, count)
	for i := range keys {
		keys[i] = uint32(sampler.Sample(src))
	}

	return keys, nil
}
