package recorder

import (
	"log/slog"

	"github.com/SmitUplenchwar2687/Rewind/internal/clock"
	internalrecorder "github.com/SmitUplenchwar2687/Rewind/internal/recorder"
	"github.com/SmitUplenchwar2687/Rewind/internal/recording"
)

// Session accumulates input events and snapshots for one recording.
type Session = internalrecorder.Session

// State is the lifecycle state of a Session.
type State = internalrecorder.State

// Option configures a Session.
type Option = internalrecorder.Option

const (
	Idle      = internalrecorder.Idle
	Recording = internalrecorder.Recording
	Stopped   = internalrecorder.Stopped
)

// New creates an idle session.
func New(cfg recording.Config, opts ...Option) *Session {
	return internalrecorder.New(cfg, opts...)
}

// WithClock sets the clock timestamps are taken from.
func WithClock(clk clock.Clock) Option {
	return internalrecorder.WithClock(clk)
}

// WithLogger sets the session logger.
func WithLogger(l *slog.Logger) Option {
	return internalrecorder.WithLogger(l)
}
