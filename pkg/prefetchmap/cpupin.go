package prefetchmap

// CPUPinner binds the calling goroutine's OS thread to a specific CPU
// before a timed benchmark run. It is an explicit dependency the driver is
// handed, never a package-level global,
// so tests can substitute a no-op implementation without touching real
// thread affinity.
type CPUPinner interface {
	// PinCurrentThread pins the calling OS thread to cpu. The pin only holds
	// for as long as the goroutine stays on the same OS thread; [RealPinner]
	// calls runtime.LockOSThread itself before setting the affinity.
	PinCurrentThread(cpu int) error
}

// NoopPinner implements [CPUPinner] by doing nothing. It is the default on
// platforms without a pinning implementation and is useful in tests that
// don't care about affinity.
type NoopPinner struct{}

// PinCurrentThread always returns nil.
func (NoopPinner) PinCurrentThread(int) error {
	return nil
}
