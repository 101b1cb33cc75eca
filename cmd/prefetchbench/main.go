// Command prefetchbench builds a chained hash table and measures lookup
// throughput for the scalar, GP, AMAC, and CORO executors under uniform
// and/or Zipfian query distributions, publishing a JSON results record.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/tratori/prefetchmap/internal/workload"
	"github.com/tratori/prefetchmap/pkg/fs"
	"github.com/tratori/prefetchmap/pkg/prefetchmap"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

func run(args []string, errOut *os.File) int {
	flags := flag.NewFlagSet("prefetchbench", flag.ContinueOnError)
	flags.SetOutput(&strings.Builder{}) // discard pflag's own error printing

	flagConfig := flags.String("config", "", "JSONC config `file`")
	flagNumKeys := flags.Uint32("num-keys", 0, "number of keys to insert")
	flagTotalQueries := flags.Int("total-queries", 0, "total lookups per executor")
	flagGroupSize := flags.Int("group-size", 0, "GP executor batch size and AMAC/CORO ring size")
	flagAMACSize := flags.Int("amac-requests-size", 0, "keys per AMAC/CORO invocation")
	flagCapacity := flags.Uint64("capacity", 0, "table bucket count")
	flagDistribution := flags.String("distribution", "", "uniform, zipfian, or both (comma-separated)")
	flagZipfMin := flags.Int64("zipf-min", 0, "Zipfian minimum key")
	flagZipfMax := flags.Int64("zipf-max", 0, "Zipfian maximum key")
	flagZipfSkew := flags.Float64("zipf-skew", 0, "Zipfian skew parameter")
	flagZipfOffset := flags.Float64("zipf-offset", 0, "Zipfian rank offset")
	flagOut := flags.String("out", "", "results `file` (stdout if empty)")
	flagProfile := flags.Bool("profile", false, "enable the per-stage profiler")
	flagParallelWorkers := flags.Int("parallel-workers", 0, "number of concurrent CPU-pinned workers")
	flagCPUPin := flags.Bool("cpu-pin", false, "pin each worker's OS thread to a distinct CPU")

	if err := flags.Parse(args); err != nil {
		fmt.Fprintln(errOut, "prefetchbench: error:", err)

		return 1
	}

	cfg, err := loadConfigFile(*flagConfig)
	if err != nil {
		fmt.Fprintln(errOut, "prefetchbench: error:", err)

		return 1
	}

	applyFlagOverrides(&cfg, flags, flagNumKeys, flagTotalQueries, flagGroupSize, flagAMACSize,
		flagCapacity, flagDistribution, flagZipfMin, flagZipfMax, flagZipfSkew, flagZipfOffset,
		flagOut, flagProfile, flagParallelWorkers, flagCPUPin)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(errOut, "prefetchbench: error:", err)

		return 1
	}

	driver := prefetchmap.NewDriver(prefetchmap.NewRealPinner(), 0)

	results, runErr := driver.Run(cfg, newQuerySource(cfg))
	if results != nil {
		if pubErr := publishResults(cfg.Out, results); pubErr != nil {
			fmt.Fprintln(errOut, "prefetchbench: error:", pubErr)

			return 1
		}
	}

	if runErr != nil {
		fmt.Fprintln(errOut, "prefetchbench: error:", runErr)

		return 1
	}

	return 0
}

func applyFlagOverrides(
	cfg *prefetchmap.Config, flags *flag.FlagSet,
	numKeys *uint32, totalQueries, groupSize, amacSize *int, capacity *uint64,
	distribution *string, zipfMin, zipfMax *int64, zipfSkew, zipfOffset *float64,
	out *string, profile *bool, parallelWorkers *int, cpuPin *bool,
) {
	if flags.Changed("num-keys") {
		cfg.NumKeys = *numKeys
	}

	if flags.Changed("total-queries") {
		cfg.TotalQueries = *totalQueries
	}

	if flags.Changed("group-size") {
		cfg.GroupSize = *groupSize
	}

	if flags.Changed("amac-requests-size") {
		cfg.AMACRequestsSize = *amacSize
	}

	if flags.Changed("capacity") {
		cfg.Capacity = *capacity
	}

	if flags.Changed("distribution") {
		cfg.Distributions = parseDistributions(*distribution)
	}

	if flags.Changed("zipf-min") {
		cfg.ZipfMin = *zipfMin
	}

	if flags.Changed("zipf-max") {
		cfg.ZipfMax = *zipfMax
	}

	if flags.Changed("zipf-skew") {
		cfg.ZipfSkew = *zipfSkew
	}

	if flags.Changed("zipf-offset") {
		cfg.ZipfOffset = *zipfOffset
	}

	if flags.Changed("out") {
		cfg.Out = *out
	}

	if flags.Changed("profile") {
		cfg.Profile = *profile
	}

	if flags.Changed("parallel-workers") {
		cfg.ParallelWorkers = *parallelWorkers
	}

	if flags.Changed("cpu-pin") {
		cfg.CPUPin = *cpuPin
	}
}

func parseDistributions(raw string) []prefetchmap.Distribution {
	parts := strings.Split(raw, ",")
	dists := make([]prefetchmap.Distribution, 0, len(parts))

	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			dists = append(dists, prefetchmap.Distribution(p))
		}
	}

	return dists
}

// newQuerySource builds the request generator for one (distribution,
// worker) pair, each backed by its own deterministic PRNG stream seeded
// from the worker index so concurrent workers don't replay identical query
// sequences against the table.
func newQuerySource(cfg prefetchmap.Config) prefetchmap.QuerySourceFactory {
	return func(dist prefetchmap.Distribution, worker int) (prefetchmap.QuerySource, error) {
		switch dist {
		case prefetchmap.DistributionUniform:
			return &uniformQuerySource{
				rng:     rand.New(rand.NewPCG(1, uint64(worker)*2+2)),
				numKeys: cfg.NumKeys,
			}, nil
		case prefetchmap.DistributionZipfian:
			sampler, err := workload.NewZipfSampler(workload.ZipfParams{
				Min:    cfg.ZipfMin,
				Max:    cfg.ZipfMax,
				Skew:   cfg.ZipfSkew,
				Offset: cfg.ZipfOffset,
			})
			if err != nil {
				return nil, err
			}

			return &zipfQuerySource{
				rng:     rand.New(rand.NewPCG(3, uint64(worker)*2+4)),
				sampler: sampler,
			}, nil
		default:
			return nil, fmt.Errorf("unknown distribution %q: %w", dist, prefetchmap.ErrInvalidConfiguration)
		}
	}
}

type uniformQuerySource struct {
	rng     *rand.Rand
	numKeys uint32
}

func (s *uniformQuerySource) Next(out []uint32) {
	for i := range out {
		out[i] = s.rng.Uint32N(s.numKeys)
	}
}

type zipfQuerySource struct {
	rng     *rand.Rand
	sampler *workload.ZipfSampler
}

func (s *zipfQuerySource) Next(out []uint32) {
	for i := range out {
		out[i] = uint32(s.sampler.Sample(s.rng))
	}
}

func publishResults(path string, results *prefetchmap.Results) error {
	data, err := marshalResults(results)
	if err != nil {
		return err
	}

	if path == "" {
		_, err := os.Stdout.Write(data)

		return err
	}

	writer := fs.NewAtomicWriter(fs.NewReal())

	return writer.WriteWithDefaults(path, bytes.NewReader(data))
}

func marshalResults(results *prefetchmap.Results) ([]byte, error) {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal results: %w", err)
	}

	return append(data, '\n'), nil
}
