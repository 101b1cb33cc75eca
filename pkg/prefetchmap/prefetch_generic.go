//go:build !amd64 || purego

package prefetchmap

import "unsafe"

// Prefetch is a no-op on platforms without an available prefetch
// instruction wired up (anything but amd64, or builds tagged purego). The
// four vectorized executors remain correct without it; they simply gain
// nothing from latency hiding.
func Prefetch(p unsafe.Pointer) {
	_ = p
}
