package prefetchmap

import (
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"
)

// Distribution names the workload shape a benchmark run queries the table
// with.
type Distribution string

const (
	DistributionUniform Distribution = "uniform"
	DistributionZipfian Distribution = "zipfian"
)

// ExecutorName identifies one of the four vectorized executors.
type ExecutorName string

const (
	ExecutorScalar ExecutorName = "scalar"
	ExecutorGP     ExecutorName = "gp"
	ExecutorAMAC   ExecutorName = "amac"
	ExecutorCORO   ExecutorName = "coro"
)

// Config is the full set of benchmark parameters, assembled from defaults,
// an optional JSONC file, and CLI flags before being handed to
// [Driver.Run].
type Config struct {
	NumKeys          uint32         `json:"num_keys"`
	TotalQueries     int            `json:"total_queries"`
	GroupSize        int            `json:"group_size"`
	AMACRequestsSize int            `json:"amac_requests_size"`
	Capacity         uint64         `json:"capacity"`
	Distributions    []Distribution `json:"distributions"`

	ZipfMin    int64   `json:"zipf_min"`
	ZipfMax    int64   `json:"zipf_max"`
	ZipfSkew   float64 `json:"zipf_skew"`
	ZipfOffset float64 `json:"zipf_offset"`

	Profile                    bool   `json:"profile"`
	ProfilerHitThresholdCycles uint64 `json:"profiler_hit_threshold_cycles"`
	ProfilerSampleEveryPow2    uint   `json:"profiler_sample_every_pow2"`

	Out             string `json:"out"`
	ParallelWorkers int    `json:"parallel_workers"`
	CPUPin          bool   `json:"cpu_pin"`
}

// DefaultConfig returns the conventional baseline for this benchmark
// (10,000,000 keys, 25,000,000 queries, group size 32 — the GP batch size
// and the AMAC/CORO ring size — and 1024 keys per AMAC/CORO invocation),
// extended with this module's ambient fields.
func DefaultConfig() Config {
	return Config{
		NumKeys:                    10_000_000,
		TotalQueries:               25_000_000,
		GroupSize:                  32,
		AMACRequestsSize:           1024,
		Capacity:                   500_000,
		Distributions:              []Distribution{DistributionUniform},
		ZipfMin:                    1,
		ZipfMax:                    1_000_000,
		ZipfSkew:                   0.99,
		ZipfOffset:                 27,
		Profile:                    false,
		ProfilerHitThresholdCycles: DefaultProfilerHitThresholdCycles,
		ProfilerSampleEveryPow2:    4,
		Out:                       "",
		ParallelWorkers:           1,
		CPUPin:                    false,
	}
}

// Validate checks Config invariants, returning [ErrInvalidConfiguration] on
// the first violation found.
func (c Config) Validate() error {
	switch {
	case c.NumKeys == 0:
		return wrapInvalidConfiguration("num_keys must be > 0")
	case c.TotalQueries <= 0:
		return wrapInvalidConfiguration("total_queries must be > 0")
	case c.GroupSize <= 0:
		return wrapInvalidConfiguration("group_size must be > 0")
	case c.AMACRequestsSize <= 0:
		return wrapInvalidConfiguration("amac_requests_size must be > 0")
	case c.AMACRequestsSize < c.GroupSize:
		return wrapInvalidConfiguration("amac_requests_size must be >= group_size")
	case c.Capacity == 0:
		return wrapInvalidConfiguration("capacity must be > 0")
	case len(c.Distributions) == 0:
		return wrapInvalidConfiguration("at least one distribution is required")
	case c.ZipfMin > c.ZipfMax:
		return wrapInvalidConfiguration("zipf_min must be <= zipf_max")
	case c.ZipfSkew <= 0:
		return wrapInvalidConfiguration("zipf_skew must be > 0")
	case c.ParallelWorkers <= 0:
		return wrapInvalidConfiguration("parallel_workers must be > 0")
	}

	return nil
}

// ExecutorResult is one (distribution, executor) measurement.
type ExecutorResult struct {
	TotalTimeSeconds           float64   `json:"total_time_seconds"`
	ThroughputQueriesPerSecond float64   `json:"throughput_queries_per_second"`
	Profiler                   *Snapshot `json:"profiler,omitempty"`
}

// Results is the full benchmark record for one run, keyed first by
// distribution then executor, with Go-runtime provenance appended as
// ambient metadata a benchmark report should carry.
type Results struct {
	System  SystemInfo                                       `json:"system"`
	Results map[Distribution]map[ExecutorName]ExecutorResult `json:"results"`
}

// SystemInfo is ambient provenance describing the machine a run executed
// on.
type SystemInfo struct {
	GoVersion  string `json:"go_version"`
	GOARCH     string `json:"goarch"`
	GOMAXPROCS int    `json:"gomaxprocs"`
}

// QuerySource produces the next batch of request keys for a distribution,
// reusing one generator/distribution pair across every invocation of a
// timed function. Each worker goroutine owns its own instance; a
// QuerySource is not assumed safe for concurrent use.
type QuerySource interface {
	Next(out []uint32)
}

// QuerySourceFactory builds the QuerySource for one (distribution, worker)
// pair. worker is always 0 when Config.ParallelWorkers == 1.
type QuerySourceFactory func(dist Distribution, worker int) (QuerySource, error)

// Driver builds the table once and times each requested (distribution,
// executor) pair against it.
type Driver struct {
	Pinner CPUPinner
	CPU    int // CPU Run pins its calling thread to when Config.CPUPin is set (workers pin to CPU w); ignored otherwise
	Logf   func(format string, args ...any) // progress logger, nil disables logging
}

// NewDriver constructs a driver using pinner for CPU affinity (nil disables
// pinning), pinning Run's calling thread to cpu when Config.CPUPin is set,
// and a default stderr progress logger.
func NewDriver(pinner CPUPinner, cpu int) *Driver {
	if pinner == nil {
		pinner = NoopPinner{}
	}

	return &Driver{Pinner: pinner, CPU: cpu, Logf: defaultProgressLogger}
}

func (d *Driver) logf(format string, args ...any) {
	if d.Logf != nil {
		d.Logf(format, args...)
	}
}

// BuildTable constructs and fills the table with sequential keys
// 0..NumKeys-1, each mapped to key+1.
func BuildTable(cfg Config) (*Table[uint32, uint32], error) {
	table, err := NewTable[uint32, uint32](cfg.Capacity, MixUint32)
	if err != nil {
		return nil, err
	}

	for i := uint32(0); i < cfg.NumKeys; i++ {
		table.Insert(i, i+1)
	}

	return table, nil
}

// Run executes cfg.Distributions × all four executors against a freshly
// built table, returning a [Results] record. It fails fast: the first
// executor to return an error aborts the run, but Results still contains
// every (distribution, executor) pair measured before the failure.
func (d *Driver) Run(cfg Config, newSource QuerySourceFactory) (*Results, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.CPUPin {
		if err := d.Pinner.PinCurrentThread(d.CPU); err != nil {
			return nil, err
		}
	}

	table, err := BuildTable(cfg)
	if err != nil {
		return nil, err
	}

	results := &Results{
		System: SystemInfo{
			GoVersion:  goVersion(),
			GOARCH:     goArch(),
			GOMAXPROCS: goMaxProcs(),
		},
		Results: make(map[Distribution]map[ExecutorName]ExecutorResult),
	}

	for _, dist := range cfg.Distributions {
		perExecutor := make(map[ExecutorName]ExecutorResult)
		results.Results[dist] = perExecutor

		for _, exec := range []ExecutorName{ExecutorScalar, ExecutorGP, ExecutorAMAC, ExecutorCORO} {
			d.logf("prefetchbench: running %s/%s", dist, exec)

			res, err := d.runOne(cfg, table, newSource, dist, exec)
			if err != nil {
				return results, fmt.Errorf("%s/%s: %w", dist, exec, err)
			}

			perExecutor[exec] = res
		}
	}

	return results, nil
}

// runOne times one (distribution, executor) pair. It splits
// cfg.TotalQueries into disjoint shares and runs one worker per share on its
// own goroutine (a single one when cfg.ParallelWorkers == 1, the default) —
// each with its own [QuerySource] instance (sources are not assumed safe for
// concurrent use) and, if cfg.CPUPin is set, pinned to CPU w before the
// clock starts — and reports wall-clock throughput across all of them
// together.
func (d *Driver) runOne(cfg Config, table *Table[uint32, uint32], newSource QuerySourceFactory, dist Distribution, exec ExecutorName) (ExecutorResult, error) {
	numWorkers := cfg.ParallelWorkers
	shares := splitQueries(cfg.TotalQueries, numWorkers)

	type workerResult struct {
		profiler *Profiler
		err      error
	}

	outcomes := make([]workerResult, numWorkers)

	var wg, pinned sync.WaitGroup

	begin := make(chan struct{})

	for w := 0; w < numWorkers; w++ {
		source, err := newSource(dist, w)
		if err != nil {
			close(begin)

			return ExecutorResult{}, err
		}

		wg.Add(1)
		pinned.Add(1)

		go func(w int, source QuerySource, queries int) {
			defer wg.Done()

			if cfg.CPUPin {
				if err := d.Pinner.PinCurrentThread(w); err != nil {
					outcomes[w] = workerResult{err: err}
					pinned.Done()

					return
				}
			}

			pinned.Done()
			<-begin

			profiler, err := runWorker(cfg, table, source, exec, queries)
			outcomes[w] = workerResult{profiler: profiler, err: err}
		}(w, source, shares[w])
	}

	pinned.Wait()

	start := time.Now()

	close(begin)

	wg.Wait()

	totalTime := time.Since(start)

	var mergedProfiler *Profiler

	for _, o := range outcomes {
		if o.err != nil {
			return ExecutorResult{}, o.err
		}

		if o.profiler == nil {
			continue
		}

		if mergedProfiler == nil {
			mergedProfiler = o.profiler
		} else {
			mergedProfiler.MergeFrom(o.profiler)
		}
	}

	result := ExecutorResult{
		TotalTimeSeconds:           totalTime.Seconds(),
		ThroughputQueriesPerSecond: float64(cfg.TotalQueries) / totalTime.Seconds(),
	}

	if mergedProfiler != nil {
		snap := mergedProfiler.Snapshot()
		result.Profiler = &snap
	}

	return result, nil
}

// splitQueries divides total queries as evenly as possible across n
// workers, handing the remainder to the first workers.
func splitQueries(total, n int) []int {
	shares := make([]int, n)
	base := total / n
	remainder := total % n

	for i := range shares {
		shares[i] = base
		if i < remainder {
			shares[i]++
		}
	}

	return shares
}

// runWorker runs one worker's share of queries for exec against table,
// returning its profiler (nil when profiling is disabled) or the first
// error encountered.
func runWorker(cfg Config, table *Table[uint32, uint32], source QuerySource, exec ExecutorName, queries int) (*Profiler, error) {
	invokeSize := cfg.GroupSize
	if exec == ExecutorAMAC || exec == ExecutorCORO {
		invokeSize = cfg.AMACRequestsSize
	}

	if invokeSize > queries {
		invokeSize = queries
	}

	var profiler *Profiler

	if cfg.Profile && invokeSize > 0 {
		// Depth must cover the deepest stage any executor records against:
		// GP records only stage 0 and AMAC tops out at stage 1, CORO
		// additionally records coroStageChain (2), so 3 stages, not 2.
		p, err := NewProfiler(3, cfg.ProfilerHitThresholdCycles, cfg.ProfilerSampleEveryPow2)
		if err != nil {
			return nil, err
		}

		profiler = p
	}

	requests := make([]uint32, invokeSize)
	out := make([]uint32, invokeSize)

	for done := 0; done < queries; done += len(requests) {
		if rest := queries - done; rest < len(requests) {
			requests, out = requests[:rest], out[:rest]
		}

		source.Next(requests)

		var err error

		switch exec {
		case ExecutorScalar:
			err = VectorizedGetScalar(table, requests, out)
		case ExecutorGP:
			err = VectorizedGetGP(table, requests, out, profiler)
		case ExecutorAMAC:
			err = VectorizedGetAMAC(table, requests, out, cfg.GroupSize, profiler)
		case ExecutorCORO:
			err = VectorizedGetCORO(table, requests, out, cfg.GroupSize, profiler)
		}

		if err != nil {
			return profiler, err
		}

		for j, key := range requests {
			if out[j] != key+1 {
				return profiler, fmt.Errorf("%s: index %d key %d: result mismatch: %w", exec, j, key, ErrResourceFailure)
			}
		}
	}

	return profiler, nil
}

func defaultProgressLogger(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}

func goVersion() string { return runtime.Version() }
func goArch() string    { return runtime.GOARCH }
func goMaxProcs() int   { return runtime.GOMAXPROCS(0) }
