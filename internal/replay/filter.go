package replay

import (
	"strings"
	"time"

	"github.com/SmitUplenchwar2687/Rewind/internal/recording"
)

// Filter defines criteria for selecting events before playback.
type Filter struct {
	Kinds   []recording.Kind // Only include these kinds (empty = all)
	Targets []string         // Only include events aimed at matching element ids (empty = all)
	After   time.Duration    // Only include events after this offset (zero = no limit)
	Before  time.Duration    // Only include events before this offset (zero = no limit)
}

// Empty reports whether the filter matches everything.
func (f *Filter) Empty() bool {
	return len(f.Kinds) == 0 && len(f.Targets) == 0 && f.After == 0 && f.Before == 0
}

// Match returns true if the event passes the filter.
func (f *Filter) Match(ev recording.Event) bool {
	if len(f.Kinds) > 0 && !containsKind(f.Kinds, ev.Kind) {
		return false
	}
	if len(f.Targets) > 0 && !matchTarget(f.Targets, eventTarget(ev)) {
		return false
	}
	return f.inWindow(ev.Timestamp)
}

func (f *Filter) inWindow(ts time.Duration) bool {
	if f.After != 0 && ts <= f.After {
		return false
	}
	if f.Before != 0 && ts >= f.Before {
		return false
	}
	return true
}

// Apply returns a copy of rec holding only matching events. Snapshots are
// kept when they fall inside the time window. Timestamps are not rebased
// and stats are recomputed.
func (f *Filter) Apply(rec recording.Export) recording.Export {
	out := recording.Export{Config: rec.Config}
	out.Events = make([]recording.Event, 0, len(rec.Events))
	for _, ev := range rec.Events {
		if f.Match(ev) {
			out.Events = append(out.Events, ev)
		}
	}
	out.Snapshots = make([]recording.Snapshot, 0, len(rec.Snapshots))
	for _, snap := range rec.Snapshots {
		if f.inWindow(snap.Timestamp) {
			out.Snapshots = append(out.Snapshots, snap)
		}
	}
	out.Stats = recording.ComputeStats(out.Events, out.Snapshots)
	return out
}

// eventTarget returns the element id an event is aimed at, if any.
func eventTarget(ev recording.Event) string {
	switch d := ev.Data.(type) {
	case recording.Pointer:
		return d.Target
	case recording.Motion:
		return d.Hover
	case recording.Wheel:
		return d.Target
	case recording.Key:
		return d.Focused
	case recording.Text:
		return d.Focused
	case recording.Focus:
		return d.To
	case recording.Hover:
		return d.ElementID
	}
	return ""
}

func containsKind(kinds []recording.Kind, k recording.Kind) bool {
	for _, v := range kinds {
		if v == k {
			return true
		}
	}
	return false
}

func matchTarget(patterns []string, target string) bool {
	if target == "" {
		return false
	}
	for _, p := range patterns {
		if p == target || strings.Contains(target, p) {
			return true
		}
	}
	return false
}
