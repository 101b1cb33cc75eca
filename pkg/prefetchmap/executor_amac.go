package prefetchmap

import (
	"fmt"
	"unsafe"
)

const (
	amacStageAdmit = 0
	amacStageProbe = 1
)

// amacSlot is one ring cell's state: the admitted request index, its key, a
// chain cursor, and which of the two stages it's in.
type amacSlot struct {
	stage int
	index int
	key   uint32
	node  *node[uint32, uint32]
}

// VectorizedGetAMAC resolves all of keys using Asynchronous Memory Access
// Chaining: a ring of ringSize explicit per-request state machines, each
// independently admitting a new key (stage 0) or probing its current chain
// node (stage 1). profiler may be nil.
func VectorizedGetAMAC(t *Table[uint32, uint32], keys []uint32, out []uint32, ringSize int, profiler *Profiler) error {
	n := len(keys)

	ring, err := NewRing[amacSlot](ringSize)
	if err != nil {
		return err
	}

	for i := 0; i < ringSize; i++ {
		ring.Slot(i).stage = amacStageAdmit
	}

	numFinished := 0
	admitted := 0

	for numFinished < n {
		slot := ring.Current()
		ring.Advance()

		switch slot.stage {
		case amacStageAdmit:
			if admitted >= n {
				continue
			}

			slot.index = admitted
			slot.key = keys[admitted]
			admitted++

			idx := t.bucketIndex(slot.key)
			slot.node = t.buckets[idx].head
			slot.stage = amacStageProbe

			if profiler != nil {
				profiler.RecordPrefetch(amacStageAdmit)
			}

			if slot.node != nil {
				Prefetch(unsafe.Pointer(slot.node))
			}

		case amacStageProbe:
			if profiler != nil {
				profiler.RecordUse(amacStageProbe)
			}

			if slot.node == nil {
				return fmt.Errorf("vectorized_get_amac: index %d key %d: %w", slot.index, slot.key, ErrKeyNotFound)
			}

			if slot.key == slot.node.key {
				out[slot.index] = slot.node.value
				slot.stage = amacStageAdmit
				numFinished++

				continue
			}

			slot.node = slot.node.next
			if slot.node != nil {
				if profiler != nil {
					profiler.RecordPrefetch(amacStageProbe)
				}

				Prefetch(unsafe.Pointer(slot.node))
			}
		}
	}

	return nil
}
