package prefetchmap

// MixUint32 is the default bucket-index mixer for uint32 keys.
//
// It is the finalizer from Austin Appleby's MurmurHash3 (fmix32, widened to
// 64 bits before the final mix) applied to a 32-bit input: fast, branch-free,
// and well distributed, but not cryptographically secure. The exact mixing
// function is unconstrained by this package's contract; any function that
// spreads inputs across buckets is acceptable.
func MixUint32(x uint32) uint64 {
	h := uint64(x)
	h ^= h >> 16
	h *= 0x85ebca6b
	h ^= h >> 13
	h *= 0xc2b2ae35
	h ^= h >> 16

	return h
}
