// Package replay plays recordings back: a Player walks a document along a
// ReplayClock and reports, per update, the events that became due and the
// snapshot in effect.
package replay

import (
	"fmt"
	"sort"
	"time"

	"github.com/SmitUplenchwar2687/Rewind/internal/clock"
	"github.com/SmitUplenchwar2687/Rewind/internal/recording"
)

// DefaultFrameDuration is one frame at 60Hz.
const DefaultFrameDuration = 16667 * time.Microsecond

// Mode selects how Update measures elapsed time.
type Mode int

const (
	// Interactive advances by the wall-clock time between updates.
	Interactive Mode = iota
	// Headless advances by exactly one frame per update.
	Headless
)

func (m Mode) String() string {
	if m == Headless {
		return "headless"
	}
	return "interactive"
}

// ParseMode parses "interactive" or "headless".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "interactive", "":
		return Interactive, nil
	case "headless":
		return Headless, nil
	default:
		return Interactive, fmt.Errorf("unknown replay mode %q, must be one of: interactive, headless", s)
	}
}

// Config controls playback.
type Config struct {
	Speed         float64
	Mode          Mode
	Loop          bool
	FrameDuration time.Duration
}

// DefaultConfig plays interactively at real speed.
func DefaultConfig() Config {
	return Config{Speed: 1, Mode: Interactive, FrameDuration: DefaultFrameDuration}
}

// HeadlessConfig steps one frame per update, for tests and batch runs.
func HeadlessConfig() Config {
	return Config{Speed: 1, Mode: Headless, FrameDuration: DefaultFrameDuration}
}

// State is the playback state of a Player.
type State int

const (
	Idle State = iota
	Playing
	Paused
	Finished
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Finished:
		return "finished"
	default:
		return "unknown"
	}
}

// Frame is the result of one update.
type Frame struct {
	// Events that became due during this update, in timestamp order.
	Events []recording.Event
	// Snapshot is set only when the snapshot in effect changed.
	Snapshot *recording.Snapshot
	Position time.Duration
	Finished bool
}

const (
	noSnapshot      = -1
	snapshotUnknown = -2
)

// Player replays a recording. It is owned by one goroutine and is not safe
// for concurrent use.
type Player struct {
	rec       recording.Export
	cfg       Config
	clock     *clock.ReplayClock
	wall      clock.Clock
	lastWall  time.Time
	state     State
	nextEvent int // index of the first event not yet delivered
	reported  int // index of the last snapshot reported
	sim       *Simulator
}

// Option configures a Player.
type Option func(*Player)

// WithWallClock sets the host clock interactive updates read deltas from.
func WithWallClock(clk clock.Clock) Option {
	return func(p *Player) { p.wall = clk }
}

// New creates an idle player positioned at the start of rec. Sequences
// that are out of order are sorted.
func New(rec recording.Export, cfg Config, opts ...Option) *Player {
	rec.Events = sortedEvents(rec.Events)
	rec.Snapshots = sortedSnapshots(rec.Snapshots)
	rec.Stats = recording.ComputeStats(rec.Events, rec.Snapshots)

	if cfg.FrameDuration <= 0 {
		cfg.FrameDuration = DefaultFrameDuration
	}

	p := &Player{
		rec:      rec,
		cfg:      cfg,
		clock:    clock.NewReplayClock(rec.Stats.Duration),
		reported: noSnapshot,
		sim:      NewSimulator(),
	}
	p.clock.SetSpeed(cfg.Speed)
	for _, opt := range opts {
		opt(p)
	}
	if p.wall == nil {
		p.wall = clock.NewRealClock()
	}
	return p
}

func (p *Player) Recording() recording.Export { return p.rec }
func (p *Player) Config() Config              { return p.cfg }
func (p *Player) State() State                { return p.state }
func (p *Player) Position() time.Duration     { return p.clock.Position() }
func (p *Player) Duration() time.Duration     { return p.clock.Duration() }
func (p *Player) Progress() float64           { return p.clock.Progress() }
func (p *Player) Speed() float64              { return p.clock.Speed() }
func (p *Player) Simulator() *Simulator       { return p.sim }

// HasNext reports whether undelivered events remain.
func (p *Player) HasNext() bool {
	return p.nextEvent < len(p.rec.Events)
}

// Play starts or resumes playback. A finished player stays finished unless
// looping; seek backwards or Reset to play again.
func (p *Player) Play() {
	switch p.state {
	case Playing:
		return
	case Finished:
		if !p.cfg.Loop {
			return
		}
		p.rewind()
	}
	p.state = Playing
	p.lastWall = p.wall.Now()
	p.clock.Play()
}

// Pause stops playback, keeping the position.
func (p *Player) Pause() {
	if p.state != Playing {
		return
	}
	p.state = Paused
	p.clock.Pause()
}

// Toggle switches between playing and paused.
func (p *Player) Toggle() {
	if p.state == Playing {
		p.Pause()
	} else {
		p.Play()
	}
}

// SetSpeed changes the playback multiplier; negative values become 0.
func (p *Player) SetSpeed(s float64) {
	p.clock.SetSpeed(s)
}

// Seek moves playback to t, clamped to the recording. Events at exactly t
// are delivered by the next advancing update, so Seek(0) replays from the
// very beginning. The next update reports the snapshot in effect at t.
func (p *Player) Seek(t time.Duration) {
	p.clock.Seek(t)
	pos := p.clock.Position()

	p.nextEvent = sort.Search(len(p.rec.Events), func(i int) bool {
		return p.rec.Events[i].Timestamp >= pos
	})
	p.reported = snapshotUnknown

	p.sim.Reset()
	for _, ev := range p.rec.Events[:p.nextEvent] {
		p.sim.Apply(ev)
	}

	if p.state == Finished && pos < p.clock.Duration() {
		p.state = Paused
	}
}

// Reset rewinds to the start and returns to Idle. Speed is kept.
func (p *Player) Reset() {
	p.rewind()
	p.clock.Pause()
	p.state = Idle
}

func (p *Player) rewind() {
	p.clock.SeekToStart()
	p.nextEvent = 0
	p.reported = noSnapshot
	p.sim.Reset()
}

// Update advances playback by the time elapsed since the previous update:
// the wall-clock delta in interactive mode, one frame in headless mode.
func (p *Player) Update() Frame {
	var delta time.Duration
	if p.cfg.Mode == Headless {
		delta = p.cfg.FrameDuration
	} else {
		now := p.wall.Now()
		delta = now.Sub(p.lastWall)
		p.lastWall = now
	}
	return p.Advance(delta)
}

// Advance moves playback by an explicit wall-clock delta. Events with
// timestamps in (previous position, new position] are returned exactly
// once. While not playing only a snapshot change can be reported.
func (p *Player) Advance(delta time.Duration) Frame {
	if p.state != Playing {
		return p.frame(nil)
	}

	reachedEnd := p.clock.Advance(delta)
	f := p.frame(p.collect(p.clock.Position()))

	if reachedEnd {
		if p.cfg.Loop {
			p.rewind()
			p.clock.Play()
		} else {
			p.state = Finished
			f.Finished = true
		}
	}
	return f
}

// Step pauses and advances exactly one frame.
func (p *Player) Step() Frame {
	if p.state == Finished {
		return Frame{Position: p.clock.Position(), Finished: true}
	}
	p.clock.Pause()
	p.clock.Seek(p.clock.Position() + p.cfg.FrameDuration)

	f := p.frame(p.collect(p.clock.Position()))
	if p.clock.AtEnd() {
		p.state = Finished
		f.Finished = true
	} else {
		p.state = Paused
	}
	return f
}

// StepBack pauses and moves back one frame. No events are delivered; the
// frame carries the snapshot in effect at the new position.
func (p *Player) StepBack() Frame {
	p.clock.Pause()
	p.Seek(p.clock.Position() - p.cfg.FrameDuration)
	p.state = Paused
	return p.frame(nil)
}

// Upcoming returns the undelivered events due within window of the
// current position, without consuming them.
func (p *Player) Upcoming(window time.Duration) []recording.Event {
	limit := p.clock.Position() + window
	end := p.nextEvent
	for end < len(p.rec.Events) && p.rec.Events[end].Timestamp <= limit {
		end++
	}
	out := make([]recording.Event, end-p.nextEvent)
	copy(out, p.rec.Events[p.nextEvent:end])
	return out
}

// CurrentSnapshot returns the snapshot in effect at the current position,
// or nil before the first snapshot.
func (p *Player) CurrentSnapshot() *recording.Snapshot {
	idx := p.snapshotAt(p.clock.Position())
	if idx < 0 {
		return nil
	}
	snap := p.rec.Snapshots[idx]
	return &snap
}

func (p *Player) collect(pos time.Duration) []recording.Event {
	start := p.nextEvent
	for p.nextEvent < len(p.rec.Events) && p.rec.Events[p.nextEvent].Timestamp <= pos {
		p.sim.Apply(p.rec.Events[p.nextEvent])
		p.nextEvent++
	}
	if start == p.nextEvent {
		return nil
	}
	return p.rec.Events[start:p.nextEvent:p.nextEvent]
}

func (p *Player) frame(events []recording.Event) Frame {
	pos := p.clock.Position()
	f := Frame{Events: events, Position: pos}

	idx := p.snapshotAt(pos)
	if idx != p.reported {
		p.reported = idx
		if idx >= 0 {
			snap := p.rec.Snapshots[idx]
			f.Snapshot = &snap
		}
	}
	return f
}

// snapshotAt returns the index of the latest snapshot at or before pos, or
// noSnapshot.
func (p *Player) snapshotAt(pos time.Duration) int {
	return sort.Search(len(p.rec.Snapshots), func(i int) bool {
		return p.rec.Snapshots[i].Timestamp > pos
	}) - 1
}

func sortedEvents(in []recording.Event) []recording.Event {
	out := make([]recording.Event, len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out
}

func sortedSnapshots(in []recording.Snapshot) []recording.Snapshot {
	out := make([]recording.Snapshot, len(in))
	copy(out, in)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out
}
