package clock

import (
	"time"

	internalclock "github.com/SmitUplenchwar2687/Rewind/internal/clock"
)

// Clock abstracts time so recordings can be captured against real or virtual time.
type Clock = internalclock.Clock

// RealClock delegates to the standard time package.
type RealClock = internalclock.RealClock

// VirtualClock is a manually advanced clock for deterministic capture.
type VirtualClock = internalclock.VirtualClock

// ReplayClock tracks a playback position within a recording.
type ReplayClock = internalclock.ReplayClock

// NewRealClock creates a real wall-clock implementation.
func NewRealClock() *RealClock {
	return internalclock.NewRealClock()
}

// NewVirtualClock creates a virtual clock starting at the given time.
func NewVirtualClock(start time.Time) *VirtualClock {
	return internalclock.NewVirtualClock(start)
}

// NewReplayClock creates a paused replay clock for a recording of the given duration.
func NewReplayClock(duration time.Duration) *ReplayClock {
	return internalclock.NewReplayClock(duration)
}
