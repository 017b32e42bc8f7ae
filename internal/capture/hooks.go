// Package capture is the integration point between a host application and
// a recording session. The host installs one session per process and calls
// the hook functions from its input and frame handlers; every hook returns
// immediately when nothing is installed or the session is not recording.
package capture

import (
	"encoding/json"
	"sync/atomic"

	"github.com/SmitUplenchwar2687/Rewind/internal/recorder"
	"github.com/SmitUplenchwar2687/Rewind/internal/recording"
)

var installed atomic.Pointer[recorder.Session]

// Install makes s the process-wide capture target and returns the session
// it replaced, if any. Passing nil uninstalls.
func Install(s *recorder.Session) *recorder.Session {
	return installed.Swap(s)
}

// Uninstall removes the installed session and returns it.
func Uninstall() *recorder.Session {
	return installed.Swap(nil)
}

// Installed returns the current capture target, or nil.
func Installed() *recorder.Session {
	return installed.Load()
}

// active returns the installed session when it is recording.
func active() *recorder.Session {
	s := installed.Load()
	if s == nil || !s.IsRecording() {
		return nil
	}
	return s
}

// RecordEvent forwards an event to the installed session, honouring its
// capture flags. It reports whether the event was recorded.
func RecordEvent(kind recording.Kind, data recording.Payload) bool {
	s := active()
	if s == nil {
		return false
	}
	flags := s.Config().Capture
	if !flags.Events {
		return false
	}
	if kind == recording.KindMouseMove && !flags.MouseMoves {
		return false
	}
	return s.RecordEvent(kind, data)
}

// RecordSnapshot forwards a UI snapshot to the installed session.
func RecordSnapshot(snap recording.Snapshot) bool {
	s := active()
	if s == nil || !s.Config().Capture.Snapshots {
		return false
	}
	return s.RecordSnapshot(snap)
}

func Click(x, y float64, button recording.Button, mods recording.Modifiers, target string) bool {
	return RecordEvent(recording.KindClick, recording.Pointer{X: x, Y: y, Button: button, Modifiers: mods, Target: target})
}

func DoubleClick(x, y float64, button recording.Button, mods recording.Modifiers, target string) bool {
	return RecordEvent(recording.KindDoubleClick, recording.Pointer{X: x, Y: y, Button: button, Modifiers: mods, Target: target})
}

func MouseDown(x, y float64, button recording.Button, mods recording.Modifiers) bool {
	return RecordEvent(recording.KindMouseDown, recording.Pointer{X: x, Y: y, Button: button, Modifiers: mods})
}

func MouseUp(x, y float64, button recording.Button, mods recording.Modifiers) bool {
	return RecordEvent(recording.KindMouseUp, recording.Pointer{X: x, Y: y, Button: button, Modifiers: mods})
}

// MouseMove records pointer motion. It is skipped unless the session
// captures mouse moves.
func MouseMove(x, y float64, hover string) bool {
	return RecordEvent(recording.KindMouseMove, recording.Motion{X: x, Y: y, Hover: hover})
}

func Scroll(x, y, dx, dy float64, target string) bool {
	return RecordEvent(recording.KindScroll, recording.Wheel{X: x, Y: y, DX: dx, DY: dy, Target: target})
}

func KeyDown(code string, mods recording.Modifiers, repeat bool, focused string) bool {
	return RecordEvent(recording.KindKeyDown, recording.Key{Code: code, Modifiers: mods, Repeat: repeat, Focused: focused})
}

func KeyUp(code string, mods recording.Modifiers, focused string) bool {
	return RecordEvent(recording.KindKeyUp, recording.Key{Code: code, Modifiers: mods, Focused: focused})
}

func TextInput(text, focused string) bool {
	return RecordEvent(recording.KindTextInput, recording.Text{Text: text, Focused: focused})
}

func FocusChange(from, to string) bool {
	return RecordEvent(recording.KindFocusChange, recording.Focus{From: from, To: to})
}

func HoverEnter(elementID string, x, y float64) bool {
	return RecordEvent(recording.KindHoverEnter, recording.Hover{ElementID: elementID, X: x, Y: y})
}

func HoverLeave(elementID string, x, y float64) bool {
	return RecordEvent(recording.KindHoverLeave, recording.Hover{ElementID: elementID, X: x, Y: y})
}

func WindowResize(width, height, scale float64) bool {
	return RecordEvent(recording.KindWindowResize, recording.Resize{Width: width, Height: height, ScaleFactor: scale})
}

func WindowFocus(focused bool) bool {
	return RecordEvent(recording.KindWindowFocus, recording.WindowFocus{Focused: focused})
}

// Custom records an application-defined event. payload is encoded as JSON;
// values that cannot be encoded are dropped.
func Custom(name string, payload any) bool {
	if active() == nil {
		return false
	}
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return false
		}
		raw = b
	}
	return RecordEvent(recording.KindCustom, recording.Custom{Name: name, Payload: raw})
}
