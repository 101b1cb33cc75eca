package prefetchmap

// VectorizedGetScalar resolves each key in keys one at a time with no
// prefetching or interleaving. It is the oracle every other
// executor's output is checked against.
func VectorizedGetScalar(t *Table[uint32, uint32], keys []uint32, out []uint32) error {
	return t.VectorizedGet(keys, out)
}
