package recorder

import (
	"testing"
	"time"

	"github.com/SmitUplenchwar2687/Rewind/pkg/clock"
	"github.com/SmitUplenchwar2687/Rewind/pkg/recording"
)

func TestSessionLifecycle(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	vc := clock.NewVirtualClock(start)
	s := New(recording.DefaultConfig("facade"), WithClock(vc))

	if s.State() != Idle {
		t.Fatalf("State() = %s, want idle", s.State())
	}
	if s.RecordEvent(recording.KindClick, recording.Pointer{Button: recording.ButtonLeft}) {
		t.Fatal("idle session accepted an event")
	}

	s.Start()
	vc.Advance(250 * time.Millisecond)
	if !s.RecordEvent(recording.KindClick, recording.Pointer{Button: recording.ButtonLeft}) {
		t.Fatal("recording session dropped an event")
	}
	s.Stop()

	if s.State() != Stopped {
		t.Fatalf("State() = %s, want stopped", s.State())
	}
	e := s.Export()
	if len(e.Events) != 1 || e.Events[0].Timestamp != 250*time.Millisecond {
		t.Fatalf("Events = %+v, want one event at 250ms", e.Events)
	}
}
