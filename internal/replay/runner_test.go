package replay

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SmitUplenchwar2687/Rewind/internal/clock"
	"github.com/SmitUplenchwar2687/Rewind/internal/recording"
)

func TestRun_Instant(t *testing.T) {
	rec := makeRecording([]time.Duration{0, ms(100), ms(900)}, []time.Duration{0, ms(500)})
	rec.Events[1].Kind = recording.KindDoubleClick
	cfg := HeadlessConfig()
	cfg.Speed = 0
	p := New(rec, cfg)

	var frames int
	summary, err := Run(context.Background(), p, clock.NewVirtualClock(epoch), func(f Frame) {
		frames++
	})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if summary.TotalEvents != 3 || summary.Replayed != 3 {
		t.Errorf("summary events = %d/%d, want 3/3", summary.Replayed, summary.TotalEvents)
	}
	if summary.Snapshots != 2 {
		t.Errorf("snapshots = %d, want 2", summary.Snapshots)
	}
	if summary.PerKind[recording.KindClick] != 2 || summary.PerKind[recording.KindDoubleClick] != 1 {
		t.Errorf("per kind = %v", summary.PerKind)
	}
	if summary.Duration != ms(900) {
		t.Errorf("duration = %v, want 900ms", summary.Duration)
	}
	if summary.WallDuration != 0 {
		t.Errorf("instant run on a virtual clock took %v", summary.WallDuration)
	}
	if frames == 0 || frames > summary.Frames {
		t.Errorf("callback frames = %d, total frames = %d", frames, summary.Frames)
	}
	if p.Speed() != 0 {
		t.Errorf("Run should restore speed 0, got %v", p.Speed())
	}
	if p.State() != Finished {
		t.Errorf("state = %s, want finished", p.State())
	}
}

func TestRun_PacedByClock(t *testing.T) {
	cfg := HeadlessConfig()
	cfg.Speed = 100
	p := New(makeRecording([]time.Duration{0, ms(200)}, nil), cfg)

	summary, err := Run(context.Background(), p, clock.NewRealClock(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Replayed != 2 {
		t.Errorf("replayed = %d, want 2", summary.Replayed)
	}
	if summary.Frames != 1 {
		t.Errorf("frames = %d, want 1 at 100x", summary.Frames)
	}
}

func TestRun_Cancelled(t *testing.T) {
	vc := clock.NewVirtualClock(epoch)
	p := New(makeRecording([]time.Duration{0, time.Minute}, nil), HeadlessConfig())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := Run(ctx, p, vc, nil)
		done <- err
	}()

	// Let one frame through, then cancel while Run waits on the next.
	for vc.Pending() == 0 {
		time.Sleep(time.Millisecond)
	}
	vc.Advance(DefaultFrameDuration)
	for vc.Pending() == 0 {
		time.Sleep(time.Millisecond)
	}
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("err = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if p.State() != Paused {
		t.Errorf("state = %s, want paused", p.State())
	}
}

func TestRun_RejectsLoop(t *testing.T) {
	cfg := HeadlessConfig()
	cfg.Loop = true
	if _, err := Run(context.Background(), New(recording.Export{}, cfg), nil, nil); err == nil {
		t.Error("expected error for looping player")
	}
}
