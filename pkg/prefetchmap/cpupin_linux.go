//go:build linux

package prefetchmap

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/unix"
)

// RealPinner implements [CPUPinner] on Linux using sched_setaffinity
// against the calling thread.
type RealPinner struct{}

// NewRealPinner returns the Linux pinner.
func NewRealPinner() RealPinner {
	return RealPinner{}
}

// PinCurrentThread locks the calling goroutine to its current OS thread and
// restricts that thread to cpu. The lock is never released: callers that
// need to unpin must manage runtime.UnlockOSThread themselves.
func (RealPinner) PinCurrentThread(cpu int) error {
	runtime.LockOSThread()

	var mask unix.CPUSet

	mask.Zero()
	mask.Set(cpu)

	if err := unix.SchedSetaffinity(0, &mask); err != nil {
		return fmt.Errorf("pin to cpu %d: %w", cpu, ErrResourceFailure)
	}

	return nil
}
