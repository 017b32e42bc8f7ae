// Package recording defines the portable recording document: captured input
// events, UI snapshots, the capture configuration and derived statistics,
// together with its canonical JSON codec.
package recording

import "time"

// CaptureFlags selects what a session records.
type CaptureFlags struct {
	Events     bool `json:"events"`
	Snapshots  bool `json:"snapshots"`
	MouseMoves bool `json:"mouse_moves"`
}

// Config describes how a recording was captured.
type Config struct {
	AppName string       `json:"app_name"`
	Capture CaptureFlags `json:"capture"`
}

// DefaultConfig captures everything.
func DefaultConfig(appName string) Config {
	return Config{
		AppName: appName,
		Capture: CaptureFlags{Events: true, Snapshots: true, MouseMoves: true},
	}
}

// MinimalConfig captures discrete input events only. Mouse moves and
// snapshots are skipped, which keeps documents small for test fixtures.
func MinimalConfig(appName string) Config {
	return Config{
		AppName: appName,
		Capture: CaptureFlags{Events: true},
	}
}

// Stats summarises a recording.
type Stats struct {
	TotalEvents    int           `json:"total_events"`
	TotalSnapshots int           `json:"total_snapshots"`
	Duration       time.Duration `json:"duration"`
}

// ComputeStats derives stats from the sequences. Duration is the later of
// the last event and the last snapshot timestamps; both sequences are
// expected to be sorted.
func ComputeStats(events []Event, snapshots []Snapshot) Stats {
	var d time.Duration
	if n := len(events); n > 0 && events[n-1].Timestamp > d {
		d = events[n-1].Timestamp
	}
	if n := len(snapshots); n > 0 && snapshots[n-1].Timestamp > d {
		d = snapshots[n-1].Timestamp
	}
	return Stats{
		TotalEvents:    len(events),
		TotalSnapshots: len(snapshots),
		Duration:       d,
	}
}

// Export is a complete, self-describing recording document.
type Export struct {
	Config    Config     `json:"config"`
	Events    []Event    `json:"events"`
	Snapshots []Snapshot `json:"snapshots"`
	Stats     Stats      `json:"stats"`
}

// Duration returns the recording length.
func (e Export) Duration() time.Duration {
	return e.Stats.Duration
}

// CountByKind tallies events per kind.
func (e Export) CountByKind() map[Kind]int {
	out := make(map[Kind]int)
	for _, ev := range e.Events {
		out[ev.Kind]++
	}
	return out
}
