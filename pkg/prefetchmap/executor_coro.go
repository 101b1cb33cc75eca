package prefetchmap

import (
	"fmt"
	"unsafe"
)

const (
	coroStageEmpty  = 0
	coroStageBucket = 1
	coroStageChain  = 2
)

// coroSlot mirrors one coroutine's suspended state between resumptions. The
// extra coroStageBucket stage (absent from [amacSlot]) is the one genuine
// structural difference from AMAC: the coroutine body suspends once right
// after the bucket-header prefetch, before it ever touches a chain node, so
// a request spends one extra ring visit "pending" relative to AMAC's single
// combined admit step.
type coroSlot struct {
	stage  int
	index  int
	key    uint32
	bucket uint64
	node   *node[uint32, uint32]
}

// VectorizedGetCORO resolves all of keys using a ring of coroutine-shaped
// state machines. Go has no stackless coroutines, so each slot's suspension
// points are compiled into the explicit coroStage* transitions above rather
// than expressed as a suspend keyword. profiler may be nil.
func VectorizedGetCORO(t *Table[uint32, uint32], keys []uint32, out []uint32, ringSize int, profiler *Profiler) error {
	n := len(keys)

	ring, err := NewRing[coroSlot](ringSize)
	if err != nil {
		return err
	}

	numFinished := 0
	admitted := 0

	for numFinished < n {
		slot := ring.Current()
		ring.Advance()

		switch slot.stage {
		case coroStageEmpty:
			if admitted >= n {
				continue
			}

			slot.index = admitted
			slot.key = keys[admitted]
			admitted++

			slot.bucket = t.bucketIndex(slot.key)
			Prefetch(unsafe.Pointer(&t.buckets[slot.bucket]))

			if profiler != nil {
				profiler.RecordPrefetch(coroStageBucket)
			}

			slot.stage = coroStageBucket

		case coroStageBucket:
			if profiler != nil {
				profiler.RecordUse(coroStageBucket)
			}

			slot.node = t.buckets[slot.bucket].head
			if slot.node == nil {
				return fmt.Errorf("vectorized_get_coroutine: index %d key %d: %w", slot.index, slot.key, ErrKeyNotFound)
			}

			Prefetch(unsafe.Pointer(slot.node))

			if profiler != nil {
				profiler.RecordPrefetch(coroStageChain)
			}

			slot.stage = coroStageChain

		case coroStageChain:
			if profiler != nil {
				profiler.RecordUse(coroStageChain)
			}

			if slot.key == slot.node.key {
				out[slot.index] = slot.node.value
				*slot = coroSlot{}
				numFinished++

				continue
			}

			slot.node = slot.node.next
			if slot.node == nil {
				return fmt.Errorf("vectorized_get_coroutine: index %d key %d: %w", slot.index, slot.key, ErrKeyNotFound)
			}

			Prefetch(unsafe.Pointer(slot.node))

			if profiler != nil {
				profiler.RecordPrefetch(coroStageChain)
			}
		}
	}

	return nil
}
