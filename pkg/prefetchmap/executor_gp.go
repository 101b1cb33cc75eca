package prefetchmap

import (
	"fmt"
	"unsafe"
)

const (
	gpStateAdmit    = -1
	gpStateProbing  = 0
	gpStateFinished = 1
)

// VectorizedGetGP resolves all of keys using Group Prefetch: a fixed batch
// walked in lock-step across two stages. Stage A prefetches
// every key's bucket header up front; stage B repeatedly advances every
// still-active request's chain cursor one step, prefetching the next node
// before moving on to the next request in the sweep.
//
// profiler may be nil; when non-nil, every stage-0 prefetch/probe round
// trip is recorded against profiler stage 0.
func VectorizedGetGP(t *Table[uint32, uint32], keys []uint32, out []uint32, profiler *Profiler) error {
	n := len(keys)
	states := make([]int, n)
	cursors := make([]*node[uint32, uint32], n)

	for i := range states {
		states[i] = gpStateAdmit
	}

	for _, k := range keys {
		idx := t.bucketIndex(k)
		Prefetch(unsafe.Pointer(&t.buckets[idx]))
	}

	finished := 0

	for finished < n {
		for i := 0; i < n; i++ {
			switch states[i] {
			case gpStateAdmit:
				idx := t.bucketIndex(keys[i])
				cursors[i] = t.buckets[idx].head

				if profiler != nil {
					profiler.RecordPrefetch(0)
				}

				if cursors[i] != nil {
					Prefetch(unsafe.Pointer(cursors[i]))
				}

				states[i] = gpStateProbing

			case gpStateProbing:
				cur := cursors[i]

				if profiler != nil {
					profiler.RecordUse(0)
				}

				if cur == nil {
					return fmt.Errorf("vectorized_get_gp: index %d key %d: %w", i, keys[i], ErrKeyNotFound)
				}

				if cur.key == keys[i] {
					out[i] = cur.value
					states[i] = gpStateFinished
					finished++

					continue
				}

				cursors[i] = cur.next
				if cursors[i] != nil {
					Prefetch(unsafe.Pointer(cursors[i]))
				}

			case gpStateFinished:
				continue
			}
		}
	}

	return nil
}
