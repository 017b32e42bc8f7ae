package replay

import (
	"testing"

	"github.com/SmitUplenchwar2687/Rewind/internal/recording"
)

func TestSimulator_TracksPointerAndButtons(t *testing.T) {
	s := NewSimulator()
	if _, _, ok := s.Pointer(); ok {
		t.Error("new simulator should have no pointer")
	}

	s.Apply(recording.Event{Kind: recording.KindMouseDown, Data: recording.Pointer{X: 10, Y: 20, Button: recording.ButtonLeft}})
	if !s.Pressed(recording.ButtonLeft) {
		t.Error("left button should be pressed")
	}
	s.Apply(recording.Event{Kind: recording.KindMouseMove, Data: recording.Motion{X: 30, Y: 40, Hover: "list"}})
	if x, y, ok := s.Pointer(); !ok || x != 30 || y != 40 {
		t.Errorf("Pointer() = %v, %v, %v", x, y, ok)
	}
	if s.Hovered() != "list" {
		t.Errorf("Hovered() = %q, want list", s.Hovered())
	}
	s.Apply(recording.Event{Kind: recording.KindMouseUp, Data: recording.Pointer{X: 30, Y: 40, Button: recording.ButtonLeft}})
	if s.Pressed(recording.ButtonLeft) {
		t.Error("left button should be released")
	}
}

func TestSimulator_KeyboardAndFocus(t *testing.T) {
	s := NewSimulator()
	s.Apply(recording.Event{Kind: recording.KindFocusChange, Data: recording.Focus{To: "name"}})
	s.Apply(recording.Event{Kind: recording.KindKeyDown, Data: recording.Key{Code: "ShiftLeft", Modifiers: recording.Modifiers{Shift: true}}})

	if s.Focused() != "name" {
		t.Errorf("Focused() = %q, want name", s.Focused())
	}
	if !s.Modifiers().Shift {
		t.Error("shift should be held")
	}

	s.Apply(recording.Event{Kind: recording.KindMouseDown, Data: recording.Pointer{Button: recording.ButtonRight, Modifiers: recording.Modifiers{Shift: true}}})
	s.Apply(recording.Event{Kind: recording.KindWindowFocus, Data: recording.WindowFocus{Focused: false}})
	if s.Modifiers().Any() || s.Pressed(recording.ButtonRight) {
		t.Error("losing window focus should release buttons and modifiers")
	}
}

func TestSimulator_HoverLeaveOnlyClearsCurrent(t *testing.T) {
	s := NewSimulator()
	s.Apply(recording.Event{Kind: recording.KindHoverEnter, Data: recording.Hover{ElementID: "a"}})
	s.Apply(recording.Event{Kind: recording.KindHoverLeave, Data: recording.Hover{ElementID: "b"}})
	if s.Hovered() != "a" {
		t.Errorf("Hovered() = %q, want a", s.Hovered())
	}
	s.Apply(recording.Event{Kind: recording.KindHoverLeave, Data: recording.Hover{ElementID: "a"}})
	if s.Hovered() != "" {
		t.Errorf("Hovered() = %q, want empty", s.Hovered())
	}
}

func TestPlayer_SeekRebuildsSimulator(t *testing.T) {
	rec := recording.Export{Events: []recording.Event{
		{Timestamp: ms(10), Kind: recording.KindMouseDown, Data: recording.Pointer{X: 1, Y: 1, Button: recording.ButtonLeft}},
		{Timestamp: ms(20), Kind: recording.KindMouseUp, Data: recording.Pointer{X: 2, Y: 2, Button: recording.ButtonLeft}},
	}}
	p := New(rec, DefaultConfig())
	p.Play()
	p.Advance(ms(30))
	if p.Simulator().Pressed(recording.ButtonLeft) {
		t.Fatal("button should be released at the end")
	}

	p.Seek(ms(15))
	if !p.Simulator().Pressed(recording.ButtonLeft) {
		t.Error("after seeking to 15ms the button should be held")
	}
	if x, _, _ := p.Simulator().Pointer(); x != 1 {
		t.Errorf("pointer x = %v, want 1", x)
	}
}
