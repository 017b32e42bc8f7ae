package replay

import (
	"context"

	"github.com/SmitUplenchwar2687/Rewind/internal/clock"
	"github.com/SmitUplenchwar2687/Rewind/internal/recording"
	internalreplay "github.com/SmitUplenchwar2687/Rewind/internal/replay"
)

// Player replays a recording frame by frame.
type Player = internalreplay.Player

// Config controls playback.
type Config = internalreplay.Config

// Mode selects how updates measure elapsed time.
type Mode = internalreplay.Mode

// State is the playback state of a Player.
type State = internalreplay.State

// Frame is the result of one update.
type Frame = internalreplay.Frame

// Option configures a Player.
type Option = internalreplay.Option

// Filter defines criteria for selecting events before playback.
type Filter = internalreplay.Filter

// Summary aggregates the outcome of a run.
type Summary = internalreplay.Summary

// Simulator tracks the input state implied by replayed events.
type Simulator = internalreplay.Simulator

const (
	Interactive = internalreplay.Interactive
	Headless    = internalreplay.Headless
)

const (
	Idle     = internalreplay.Idle
	Playing  = internalreplay.Playing
	Paused   = internalreplay.Paused
	Finished = internalreplay.Finished
)

// DefaultFrameDuration is one frame at 60Hz.
const DefaultFrameDuration = internalreplay.DefaultFrameDuration

// New creates a player for rec.
func New(rec recording.Export, cfg Config, opts ...Option) *Player {
	return internalreplay.New(rec, cfg, opts...)
}

// WithWallClock sets the host clock interactive updates read deltas from.
func WithWallClock(clk clock.Clock) Option {
	return internalreplay.WithWallClock(clk)
}

// DefaultConfig plays interactively at real speed.
func DefaultConfig() Config { return internalreplay.DefaultConfig() }

// HeadlessConfig steps one frame per update.
func HeadlessConfig() Config { return internalreplay.HeadlessConfig() }

// ParseMode parses "interactive" or "headless".
func ParseMode(s string) (Mode, error) { return internalreplay.ParseMode(s) }

// NewSimulator creates an empty input simulator.
func NewSimulator() *Simulator { return internalreplay.NewSimulator() }

// Run plays p to the end and calls cb for every frame that delivered
// events or a snapshot.
func Run(ctx context.Context, p *Player, clk clock.Clock, cb func(Frame)) (*Summary, error) {
	return internalreplay.Run(ctx, p, clk, cb)
}
