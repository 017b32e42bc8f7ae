package capture

import (
	"testing"
	"time"

	"github.com/SmitUplenchwar2687/Rewind/pkg/clock"
	"github.com/SmitUplenchwar2687/Rewind/pkg/recorder"
	"github.com/SmitUplenchwar2687/Rewind/pkg/recording"
)

func TestRun(t *testing.T) {
	vc := clock.NewVirtualClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	e := Run(recording.DefaultConfig("hooks"), vc, func(*recorder.Session) {
		Click(1, 1, recording.ButtonLeft, recording.Modifiers{}, "ok")
		vc.Advance(time.Second)
		TextInput("hi", "field")
		Custom("done", map[string]int{"n": 2})
	})

	if len(e.Events) != 3 {
		t.Fatalf("len(Events) = %d, want 3", len(e.Events))
	}
	if e.Stats.Duration != time.Second {
		t.Errorf("Duration = %s, want 1s", e.Stats.Duration)
	}
	if Installed() != nil {
		t.Error("Run left a session installed")
	}
}

func TestHooksWithoutSession(t *testing.T) {
	if Click(0, 0, recording.ButtonLeft, recording.Modifiers{}, "") {
		t.Fatal("hook recorded without an installed session")
	}
}
