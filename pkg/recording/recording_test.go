package recording

import (
	"errors"
	"testing"
	"time"
)

func TestRoundTrip(t *testing.T) {
	click, err := NewEvent(10*time.Millisecond, KindClick, Pointer{X: 3, Y: 4, Button: ButtonLeft, Target: "ok"})
	if err != nil {
		t.Fatalf("NewEvent() error = %v", err)
	}
	events := []Event{click}
	e := Export{
		Config: DefaultConfig("facade"),
		Events: events,
		Stats:  ComputeStats(events, nil),
	}

	data, err := Marshal(e)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	got, warnings, err := Decode(data, Strict())
	if err != nil || len(warnings) != 0 {
		t.Fatalf("Decode() err=%v warnings=%v", err, warnings)
	}
	if !Equal(got, e) {
		t.Fatal("decoded document differs")
	}
}

func TestDecodeParseError(t *testing.T) {
	_, _, err := Decode([]byte(`not json`))
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("Decode() error = %v, want *ParseError", err)
	}
}

func TestNewEventRejectsMismatch(t *testing.T) {
	if _, err := NewEvent(0, KindKeyDown, Pointer{}); err == nil {
		t.Fatal("expected error for payload that does not match kind")
	}
}
