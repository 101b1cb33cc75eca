package prefetchmap

import "time"

// DefaultProfilerHitThresholdCycles matches an L1-prefetch latency observed
// on one reference test machine. It is exposed only as a default; the
// threshold is never treated as authoritative, only the exact accounting
// property is.
const DefaultProfilerHitThresholdCycles = 44

// Profiler records per-stage hit/miss counters and periodically sampled
// per-stage latencies. Stages are numbered from zero, the
// initial bucket prefetch.
//
// A Profiler is not safe for concurrent use; each benchmark worker owns one.
type Profiler struct {
	depth            int
	hitThreshold     uint64
	sampleEveryPow2  uint
	hits             []uint64
	misses           []uint64
	visits           []uint64
	latencies        [][]time.Duration
	prefetchIssuedAt []time.Time
	sampleCounter    uint64
}

// NewProfiler constructs a profiler with the given stage depth and hit/miss
// threshold in approximate cycles. sampleEveryPow2 controls sampling
// density: every 2^sampleEveryPow2-th prefetch records a latency sample, the
// rest are skipped to avoid perturbing throughput. depth must be > 0.
func NewProfiler(depth int, hitThresholdCycles uint64, sampleEveryPow2 uint) (*Profiler, error) {
	if depth <= 0 {
		return nil, wrapInvalidConfiguration("profiler depth must be > 0")
	}

	p := &Profiler{
		depth:            depth,
		hitThreshold:     hitThresholdCycles,
		sampleEveryPow2:  sampleEveryPow2,
		hits:             make([]uint64, depth),
		misses:           make([]uint64, depth),
		visits:           make([]uint64, depth),
		latencies:        make([][]time.Duration, depth),
		prefetchIssuedAt: make([]time.Time, depth),
	}

	return p, nil
}

// Depth returns the number of pipeline stages this profiler tracks.
func (p *Profiler) Depth() int {
	return p.depth
}

// RecordPrefetch marks that a prefetch was issued for stage s, starting the
// latency window used by the next RecordUse at the same stage. Only every
// 2^sampleEveryPow2-th call actually starts a sample window; others are
// free of timing overhead.
func (p *Profiler) RecordPrefetch(stage int) {
	p.sampleCounter++

	mask := uint64(1)<<p.sampleEveryPow2 - 1
	if p.sampleCounter&mask != 0 {
		return
	}

	p.prefetchIssuedAt[stage] = timeNow()
}

// RecordUse closes out the latency window for stage s (if one was started
// by a sampled RecordPrefetch) and classifies the stage visit as a hit or a
// miss against the configured threshold. Every call increments exactly one
// of hits[s] or misses[s] — this exact-accounting property holds regardless
// of whether a latency sample was actually taken.
func (p *Profiler) RecordUse(stage int) {
	p.visits[stage]++

	issuedAt := p.prefetchIssuedAt[stage]
	if issuedAt.IsZero() {
		// No sample window open for this visit: count it as a hit without
		// a latency measurement rather than skip accounting entirely.
		p.hits[stage]++

		return
	}

	elapsed := timeNow().Sub(issuedAt)
	p.prefetchIssuedAt[stage] = time.Time{}
	p.latencies[stage] = append(p.latencies[stage], elapsed)

	if durationToCycles(elapsed) <= p.hitThreshold {
		p.hits[stage]++
	} else {
		p.misses[stage]++
	}
}

// MergeFrom folds other's counters and latency samples into p. Used by the
// benchmark driver to combine per-worker profilers after a parallel run;
// other and p must share the same depth.
func (p *Profiler) MergeFrom(other *Profiler) {
	for i := 0; i < p.depth; i++ {
		p.hits[i] += other.hits[i]
		p.misses[i] += other.misses[i]
		p.visits[i] += other.visits[i]
		p.latencies[i] = append(p.latencies[i], other.latencies[i]...)
	}
}

// Reset zeroes all counters and discards all latency samples.
func (p *Profiler) Reset() {
	for i := 0; i < p.depth; i++ {
		p.hits[i] = 0
		p.misses[i] = 0
		p.visits[i] = 0
		p.latencies[i] = nil
		p.prefetchIssuedAt[i] = time.Time{}
	}

	p.sampleCounter = 0
}

// Snapshot is the serializable record returned by [Profiler.Snapshot].
type Snapshot struct {
	Depth     int               `json:"depth"`
	Hits      []uint64          `json:"hits"`
	Misses    []uint64          `json:"misses"`
	Visits    []uint64          `json:"visits"`
	Latencies [][]time.Duration `json:"latencies"`
}

// Snapshot returns a copy of the profiler's current state, safe for the
// caller to serialize or retain after the profiler is reused.
func (p *Profiler) Snapshot() Snapshot {
	hits := make([]uint64, p.depth)
	copy(hits, p.hits)

	misses := make([]uint64, p.depth)
	copy(misses, p.misses)

	visits := make([]uint64, p.depth)
	copy(visits, p.visits)

	latencies := make([][]time.Duration, p.depth)
	for i := range p.latencies {
		latencies[i] = append([]time.Duration(nil), p.latencies[i]...)
	}

	return Snapshot{
		Depth:     p.depth,
		Hits:      hits,
		Misses:    misses,
		Visits:    visits,
		Latencies: latencies,
	}
}

// timeNow is a var so tests can stub it for deterministic latency samples.
var timeNow = time.Now
