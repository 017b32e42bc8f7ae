package replay

import (
	"context"
	"errors"
	"time"

	"github.com/SmitUplenchwar2687/Rewind/internal/clock"
	"github.com/SmitUplenchwar2687/Rewind/internal/recording"
)

// Summary aggregates the outcome of a run.
type Summary struct {
	TotalEvents  int                    `json:"total_events"`
	Replayed     int                    `json:"replayed"`
	Snapshots    int                    `json:"snapshots"`
	Frames       int                    `json:"frames"`
	Duration     time.Duration          `json:"duration"`      // virtual time covered
	WallDuration time.Duration          `json:"wall_duration"` // actual wall clock time
	PerKind      map[recording.Kind]int `json:"per_kind"`
}

// Run plays p from its current position to the end, one frame per step,
// and calls cb for every frame that delivered events or a snapshot.
//
// Each step waits one frame on clk and advances the recording by one frame
// scaled by the player's speed. Speed 0 runs instantly at speed 1 with no
// waiting. Looping players are rejected since they never finish.
func Run(ctx context.Context, p *Player, clk clock.Clock, cb func(Frame)) (*Summary, error) {
	if p.Config().Loop {
		return nil, errors.New("cannot run a looping player to completion")
	}
	if clk == nil {
		clk = clock.NewRealClock()
	}

	instant := p.Speed() == 0
	if instant {
		p.SetSpeed(1)
		defer p.SetSpeed(0)
	}

	summary := &Summary{
		TotalEvents: len(p.Recording().Events),
		PerKind:     make(map[recording.Kind]int),
	}
	frame := p.Config().FrameDuration
	start := p.Position()
	wallStart := clk.Now()

	p.Play()
	for p.State() == Playing {
		select {
		case <-ctx.Done():
			p.Pause()
			summary.Duration = p.Position() - start
			summary.WallDuration = clk.Since(wallStart)
			return summary, ctx.Err()
		default:
		}

		if !instant {
			select {
			case <-ctx.Done():
				p.Pause()
				summary.Duration = p.Position() - start
				summary.WallDuration = clk.Since(wallStart)
				return summary, ctx.Err()
			case <-clk.After(frame):
			}
		}

		f := p.Advance(frame)
		summary.Frames++
		summary.Replayed += len(f.Events)
		for _, ev := range f.Events {
			summary.PerKind[ev.Kind]++
		}
		if f.Snapshot != nil {
			summary.Snapshots++
		}
		if cb != nil && (len(f.Events) > 0 || f.Snapshot != nil) {
			cb(f)
		}
	}

	summary.Duration = p.Position() - start
	summary.WallDuration = clk.Since(wallStart)
	return summary, nil
}
