// Package timing provides the host clock, the device timing scheduler and
// the cooperative task manager that drive the emulated machine.
package timing

import "time"

// Clock is a monotonic host tick source.
type Clock interface {
	// HostFreq returns the number of ticks per second.
	HostFreq() uint64
	// Ticks returns the current tick count.
	Ticks() uint64
}

// SystemClock counts nanoseconds since it was created.
type SystemClock struct {
	start time.Time
}

// NewSystemClock creates a clock backed by the Go monotonic clock.
func NewSystemClock() *SystemClock {
	return &SystemClock{start: time.Now()}
}

// HostFreq implements Clock.
func (c *SystemClock) HostFreq() uint64 {
	return uint64(time.Second)
}

// Ticks implements Clock.
func (c *SystemClock) Ticks() uint64 {
	return uint64(time.Since(c.start))
}

// ManualClock is a Clock advanced explicitly. Tests and deterministic
// runs use it.
type ManualClock struct {
	Freq uint64
	Now  uint64
}

// NewManualClock creates a manual clock with the given frequency.
func NewManualClock(freq uint64) *ManualClock {
	return &ManualClock{Freq: freq}
}

// HostFreq implements Clock.
func (c *ManualClock) HostFreq() uint64 {
	return c.Freq
}

// Ticks implements Clock.
func (c *ManualClock) Ticks() uint64 {
	return c.Now
}

// Advance moves the clock forward by n ticks.
func (c *ManualClock) Advance(n uint64) {
	c.Now += n
}
