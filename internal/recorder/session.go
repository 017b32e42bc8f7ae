// Package recorder implements the recording session: the buffer that
// capture hooks append to while an application runs.
package recorder

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/SmitUplenchwar2687/Rewind/internal/clock"
	"github.com/SmitUplenchwar2687/Rewind/internal/recording"
)

// State is the lifecycle state of a Session.
type State int

const (
	Idle State = iota
	Recording
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Recording:
		return "recording"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Session accumulates events and snapshots between Start and Stop.
//
// Thread-safe for concurrent use. Every method holds the lock only for
// in-memory work, so capture calls never wait on I/O.
type Session struct {
	mu        sync.Mutex
	cfg       recording.Config
	clock     clock.Clock
	logger    *slog.Logger
	state     State
	active    atomic.Bool // mirrors state == Recording for lock-free checks
	startedAt time.Time
	events    []recording.Event
	snapshots []recording.Snapshot
}

// Option configures a Session.
type Option func(*Session)

// WithClock sets the time source used to stamp events.
func WithClock(clk clock.Clock) Option {
	return func(s *Session) { s.clock = clk }
}

// WithLogger sets the logger for lifecycle messages.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// New creates an idle session.
func New(cfg recording.Config, opts ...Option) *Session {
	s := &Session{cfg: cfg}
	for _, opt := range opts {
		opt(s)
	}
	if s.clock == nil {
		s.clock = clock.NewRealClock()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Config returns the configuration the session was created with.
func (s *Session) Config() recording.Config {
	return s.cfg
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// IsRecording reports whether the session is accepting input. It does not
// take the lock.
func (s *Session) IsRecording() bool {
	return s.active.Load()
}

// Start begins recording. Timestamps are measured from this call. It does
// nothing unless the session is idle.
func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Idle {
		return
	}
	s.state = Recording
	s.startedAt = s.clock.Now()
	s.active.Store(true)
	s.logger.Debug("recording started", "app", s.cfg.AppName)
}

// Stop ends recording. It does nothing unless the session is recording.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Recording {
		return
	}
	s.state = Stopped
	s.active.Store(false)
	s.logger.Debug("recording stopped",
		"app", s.cfg.AppName,
		"events", len(s.events),
		"snapshots", len(s.snapshots))
}

// Reset discards everything recorded and returns to Idle. It does nothing
// unless the session is stopped.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Stopped {
		return
	}
	s.state = Idle
	s.active.Store(false)
	s.startedAt = time.Time{}
	s.events = nil
	s.snapshots = nil
}

// Elapsed returns the current offset from Start, or zero when the session
// has not been started.
func (s *Session) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Idle {
		return 0
	}
	return s.clock.Since(s.startedAt)
}

// RecordEvent appends an event stamped with the current offset. It reports
// whether the event was kept: calls outside Recording, payloads that do
// not match kind and payloads holding NaN or infinite numbers are dropped.
func (s *Session) RecordEvent(kind recording.Kind, data recording.Payload) bool {
	if !s.active.Load() {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Recording {
		return false
	}
	var last time.Duration
	if n := len(s.events); n > 0 {
		last = s.events[n-1].Timestamp
	}
	ev, err := recording.NewEvent(s.offset(last), kind, data)
	if err != nil {
		s.logger.Warn("dropping event", "kind", kind, "error", err)
		return false
	}
	s.events = append(s.events, ev)
	return true
}

// RecordSnapshot appends a snapshot stamped with the current offset. The
// element tree is copied, so the caller may reuse it afterwards. Snapshots
// with non-finite sizes or bounds are dropped.
func (s *Session) RecordSnapshot(snap recording.Snapshot) bool {
	if !s.active.Load() {
		return false
	}
	if err := snap.Check(); err != nil {
		s.logger.Warn("dropping snapshot", "error", err)
		return false
	}
	snap.Root = snap.Root.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Recording {
		return false
	}
	var last time.Duration
	if n := len(s.snapshots); n > 0 {
		last = s.snapshots[n-1].Timestamp
	}
	snap.Timestamp = s.offset(last)
	s.snapshots = append(s.snapshots, snap)
	return true
}

// offset returns the elapsed time since Start, never earlier than floor.
// Must be called with s.mu held.
func (s *Session) offset(floor time.Duration) time.Duration {
	ts := s.clock.Since(s.startedAt)
	if ts < floor {
		ts = floor
	}
	return ts
}

// Len returns the number of recorded events and snapshots.
func (s *Session) Len() (events, snapshots int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events), len(s.snapshots)
}

// Stats returns the stats the next export would carry.
func (s *Session) Stats() recording.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return recording.ComputeStats(s.events, s.snapshots)
}

// Export returns a point-in-time document. It is valid in any state and
// later recording does not affect it. Element trees are shared with the
// session and must be treated as read-only.
func (s *Session) Export() recording.Export {
	s.mu.Lock()
	defer s.mu.Unlock()

	events := make([]recording.Event, len(s.events))
	copy(events, s.events)
	snapshots := make([]recording.Snapshot, len(s.snapshots))
	copy(snapshots, s.snapshots)

	return recording.Export{
		Config:    s.cfg,
		Events:    events,
		Snapshots: snapshots,
		Stats:     recording.ComputeStats(events, snapshots),
	}
}

// ExportFile writes the current export to path.
func (s *Session) ExportFile(path string, pretty bool) error {
	return recording.WriteFile(path, s.Export(), pretty)
}
