//go:build amd64 && !purego

package prefetchmap

import "unsafe"

// Prefetch issues a non-temporal prefetch hint for the cache line
// containing p. It never faults, even when p is invalid or unaligned; the
// hardware is free to ignore the hint entirely.
//
// p must remain valid until the prefetch would plausibly complete; callers
// typically issue it several ring slots ahead of the load that needs the
// data.
func Prefetch(p unsafe.Pointer) {
	prefetchNTA(p)
}

//go:noescape
func prefetchNTA(p unsafe.Pointer)
