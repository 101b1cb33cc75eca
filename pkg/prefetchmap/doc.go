// Package prefetchmap implements a chained hash table together with four
// lookup executors that compute the same result but interleave independent
// DRAM accesses differently:
//
//   - [VectorizedGetScalar]: the naive, one-request-at-a-time oracle.
//   - [VectorizedGetGP]: a fixed-size batch walked in lock-step (Group Prefetch).
//   - [VectorizedGetAMAC]: per-request explicit state machines rotated on a
//     ring (Asynchronous Memory Access Chaining).
//   - [VectorizedGetCORO]: the same idea expressed as a coroutine-shaped
//     state machine per in-flight request.
//
// The interesting engineering is not the hash table itself but overlapping
// the memory latency of many independent lookups behind a software
// [Prefetch] hint: a request's local state is parked on a [Ring] of slots
// so the hardware has time to service earlier prefetches before the
// executor comes back to use them.
//
// # Basic usage
//
//	table, err := prefetchmap.NewTable[uint32, uint32](500_000, prefetchmap.MixUint32)
//	for i := uint32(0); i < 10_000_000; i++ {
//	    table.Insert(i, i+1)
//	}
//
//	out := make([]uint32, len(keys))
//	err = prefetchmap.VectorizedGetAMAC(table, keys, out, 1024, nil)
//
// # Concurrency
//
// A [Table] built once and never mutated again is safe for concurrent reads
// from multiple goroutines (see [Table] invariants). A [Ring] and the four
// vectorized executors are not safe for concurrent use: each invocation owns
// its ring and output slice exclusively for its duration, matching the
// single-threaded-cooperative scheduling model described for this package.
package prefetchmap
