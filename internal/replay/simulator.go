package replay

import "github.com/SmitUplenchwar2687/Rewind/internal/recording"

// Simulator tracks the input state implied by replayed events: where the
// pointer is, which buttons and modifiers are held, and which elements
// have focus and hover.
type Simulator struct {
	x, y       float64
	hasPointer bool
	buttons    map[recording.Button]bool
	modifiers  recording.Modifiers
	focused    string
	hovered    string
}

// NewSimulator returns a simulator with no input state.
func NewSimulator() *Simulator {
	return &Simulator{buttons: make(map[recording.Button]bool)}
}

// Apply updates the state with one event.
func (s *Simulator) Apply(ev recording.Event) {
	if x, y, ok := ev.Position(); ok {
		s.x, s.y, s.hasPointer = x, y, true
	}

	switch d := ev.Data.(type) {
	case recording.Pointer:
		s.modifiers = d.Modifiers
		switch ev.Kind {
		case recording.KindMouseDown:
			s.buttons[d.Button] = true
		case recording.KindMouseUp:
			delete(s.buttons, d.Button)
		}
	case recording.Motion:
		if d.Hover != "" {
			s.hovered = d.Hover
		}
	case recording.Key:
		s.modifiers = d.Modifiers
		if d.Focused != "" {
			s.focused = d.Focused
		}
	case recording.Text:
		if d.Focused != "" {
			s.focused = d.Focused
		}
	case recording.Focus:
		s.focused = d.To
	case recording.Hover:
		switch ev.Kind {
		case recording.KindHoverEnter:
			s.hovered = d.ElementID
		case recording.KindHoverLeave:
			if s.hovered == d.ElementID {
				s.hovered = ""
			}
		}
	case recording.WindowFocus:
		// Losing window focus releases everything the window was holding.
		if !d.Focused {
			clear(s.buttons)
			s.modifiers = recording.Modifiers{}
		}
	}
}

// Pointer returns the last known pointer position.
func (s *Simulator) Pointer() (x, y float64, ok bool) {
	return s.x, s.y, s.hasPointer
}

// Pressed reports whether the button is currently held.
func (s *Simulator) Pressed(b recording.Button) bool {
	return s.buttons[b]
}

func (s *Simulator) Modifiers() recording.Modifiers { return s.modifiers }
func (s *Simulator) Focused() string               { return s.focused }
func (s *Simulator) Hovered() string               { return s.hovered }

// Reset clears all state.
func (s *Simulator) Reset() {
	s.x, s.y, s.hasPointer = 0, 0, false
	clear(s.buttons)
	s.modifiers = recording.Modifiers{}
	s.focused = ""
	s.hovered = ""
}
