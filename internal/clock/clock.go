// Package clock provides the time sources used by recording and replay.
//
// Clock is the host time source: sessions stamp events with it and the
// interactive player measures wall-clock deltas with it. ReplayClock is the
// virtual playback position inside a recording.
package clock

import "time"

// Clock abstracts the host time source so sessions and players can run on
// either real or virtual time.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
	// Since returns the duration elapsed since t.
	Since(t time.Time) time.Duration
	// After returns a channel that receives the current time after duration d.
	After(d time.Duration) <-chan time.Time
}

// RealClock delegates to the standard time package. Since uses the
// monotonic reading, so wall-clock jumps never reorder timestamps.
type RealClock struct{}

func NewRealClock() *RealClock {
	return &RealClock{}
}

func (c *RealClock) Now() time.Time {
	return time.Now()
}

func (c *RealClock) Since(t time.Time) time.Duration {
	return time.Since(t)
}

func (c *RealClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}
