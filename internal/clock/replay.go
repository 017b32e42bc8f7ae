package clock

import (
	"math"
	"time"
)

// ReplayClock tracks the playback position inside a recording of known
// duration. Position is always within [0, Duration] and speed is never
// negative.
//
// A ReplayClock is owned by a single player and is not safe for concurrent use.
type ReplayClock struct {
	position time.Duration
	duration time.Duration
	speed    float64
	playing  bool
}

// NewReplayClock creates a paused clock at position zero with speed 1.
func NewReplayClock(duration time.Duration) *ReplayClock {
	if duration < 0 {
		duration = 0
	}
	return &ReplayClock{duration: duration, speed: 1}
}

func (c *ReplayClock) Position() time.Duration { return c.position }
func (c *ReplayClock) Duration() time.Duration { return c.duration }
func (c *ReplayClock) Speed() float64          { return c.speed }
func (c *ReplayClock) Playing() bool           { return c.playing }

func (c *ReplayClock) Play()   { c.playing = true }
func (c *ReplayClock) Pause()  { c.playing = false }
func (c *ReplayClock) Toggle() { c.playing = !c.playing }

// Seek moves the position to t, clamped to [0, Duration]. Seeking never
// changes whether the clock is playing.
func (c *ReplayClock) Seek(t time.Duration) {
	c.position = c.clamp(t)
}

// SeekBy moves the position by a signed offset.
func (c *ReplayClock) SeekBy(d time.Duration) {
	c.Seek(c.position + d)
}

func (c *ReplayClock) SeekToStart() { c.position = 0 }
func (c *ReplayClock) SeekToEnd()   { c.position = c.duration }

// SetSpeed sets the playback multiplier. Negative and NaN values become 0,
// which holds the position still while playing.
func (c *ReplayClock) SetSpeed(s float64) {
	if math.IsNaN(s) || s < 0 {
		s = 0
	}
	c.speed = s
}

// Advance moves the position by wallDelta scaled by the speed, clamped to
// the duration. It does nothing while paused. Negative deltas count as zero.
// When the position reaches the end the clock stops playing and Advance
// reports true.
func (c *ReplayClock) Advance(wallDelta time.Duration) (reachedEnd bool) {
	if !c.playing {
		return false
	}
	if wallDelta > 0 && c.speed > 0 {
		scaled := float64(wallDelta) * c.speed
		if scaled >= float64(c.duration-c.position) {
			c.position = c.duration
		} else {
			c.position += time.Duration(scaled)
		}
	}
	if c.position >= c.duration {
		c.playing = false
		return true
	}
	return false
}

// Progress returns the position as a fraction of the duration in [0, 1].
// An empty recording reports 1.
func (c *ReplayClock) Progress() float64 {
	if c.duration == 0 {
		return 1
	}
	return float64(c.position) / float64(c.duration)
}

func (c *ReplayClock) AtStart() bool { return c.position == 0 }
func (c *ReplayClock) AtEnd() bool   { return c.position >= c.duration }

// Reset rewinds to zero and pauses, keeping the speed.
func (c *ReplayClock) Reset() {
	c.position = 0
	c.playing = false
}

func (c *ReplayClock) clamp(t time.Duration) time.Duration {
	if t < 0 {
		return 0
	}
	if t > c.duration {
		return c.duration
	}
	return t
}
